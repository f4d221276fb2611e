package editor

import (
	"fmt"
	"slices"

	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

// Snapshot is a serializable copy of an editor's documents, used to park a
// session between requests.
type Snapshot struct {
	NpcID           string                     `json:"npcId"`
	InteractionType npcdoc.InteractionType     `json:"interactionType"`
	Role            npcdoc.RoleDocument        `json:"role"`
	Interaction     npcdoc.InteractionDocument `json:"interaction"`
	Quest           npcdoc.QuestDocument       `json:"quest"`
	Shop            npcdoc.ShopDocument        `json:"shop"`
}

func (e *Editor) Snapshot() Snapshot {
	return Snapshot{
		NpcID:           e.npcID,
		InteractionType: e.interactionType,
		Role:            e.role,
		Interaction:     e.Interaction(),
		Quest:           e.Quest(),
		Shop:            e.Shop(),
	}
}

// Restore builds an editor from a snapshot.
func Restore(s Snapshot, opts ...Option) (*Editor, error) {
	if _, err := npcdoc.ParseInteractionType(string(s.InteractionType)); err != nil {
		return nil, fmt.Errorf("restore snapshot: %w: %v", ErrInvalidFormat, err)
	}
	e := New(opts...)
	e.npcID = s.NpcID
	e.interactionType = s.InteractionType
	e.role = s.Role
	e.interaction = s.Interaction
	e.interaction.Options = slices.Clone(s.Interaction.Options)
	e.quest = s.Quest
	e.quest.Objectives = slices.Clone(s.Quest.Objectives)
	e.quest.Rewards = slices.Clone(s.Quest.Rewards)
	e.shop = s.Shop
	e.shop.Items = slices.Clone(s.Shop.Items)
	return e, nil
}
