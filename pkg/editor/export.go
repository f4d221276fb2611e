package editor

import (
	"fmt"

	"github.com/jwebster45206/npc-forge/pkg/ident"
	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

// Document is one exported file: a path relative to the pack's Server/ root
// and a JSON-serializable body.
type Document struct {
	Path string
	Body any
}

// Export renders the current documents in pack order: role, interaction,
// then the quest or shop selected by the interaction type.
func (e *Editor) Export() ([]Document, error) {
	if e.npcID == "" {
		return nil, ErrMissingNpcID
	}

	docs := []Document{
		{Path: npcdoc.RolePath(e.npcID), Body: e.roleFile()},
		{Path: npcdoc.InteractionPath(e.npcID), Body: e.interactionFile()},
	}
	switch e.interactionType {
	case npcdoc.InteractionQuest:
		docs = append(docs, Document{Path: npcdoc.QuestPath(e.npcID), Body: e.questFile()})
	case npcdoc.InteractionShop:
		docs = append(docs, Document{Path: npcdoc.ShopPath(e.npcID), Body: e.shopFile()})
	}

	e.log.Debug("Documents exported", "npc_id", e.npcID, "type", e.interactionType, "files", len(docs))
	return docs, nil
}

// ExportInteraction renders just the interaction file, as written by Export.
func (e *Editor) ExportInteraction() (npcdoc.InteractionFile, error) {
	if e.npcID == "" {
		return npcdoc.InteractionFile{}, ErrMissingNpcID
	}
	return e.interactionFile(), nil
}

func (e *Editor) roleFile() npcdoc.RoleFile {
	r := e.role
	m := npcdoc.RoleModify{
		Appearance:         orDefault(r.AppearanceID, e.npcID),
		NameTranslationKey: orDefault(r.DisplayName, e.npcID),
		MotionStatic:       r.IsStatic,
		MotionWander:       r.MotionWander,
		GreetRange:         r.GreetRange,
		GreetAnimation:     orDefault(r.GreetAnimation, npcdoc.DefaultGreetAnimation),
		MaxSpeed:           r.MotionSpeed(),
	}
	if m.GreetRange < 1 {
		m.GreetRange = npcdoc.DefaultGreetRange
	}
	switch r.BehaviorType {
	case npcdoc.BehaviorAggressive:
		m.MaxHealth = 200
		m.ViewSector = 250
		m.HearingRange = 10
		m.AttackDistance = 2.5
		m.UseCombatActionEvaluator = true
	case npcdoc.BehaviorNeutral:
		m.MaxHealth = 150
	case npcdoc.BehaviorPassive:
		m.MaxHealth = 100
	default:
		m.MaxHealth = 100
		m.DefaultPlayerAttitude = "Neutral"
	}
	return npcdoc.RoleFile{
		Type:      "Variant",
		Reference: r.Template(),
		Modify:    m,
	}
}

func (e *Editor) interactionFile() npcdoc.InteractionFile {
	doc := e.interaction
	f := npcdoc.InteractionFile{
		Title:   doc.Title,
		Text:    doc.GreetingText,
		Type:    npcdoc.InteractionTagDialog,
		Options: make([]npcdoc.InteractionOption, 0, len(doc.Options)),
	}
	switch e.interactionType {
	case npcdoc.InteractionQuest:
		completed := doc.CompletedText
		f.CompletedText = &completed
		f.Type = npcdoc.InteractionTagQuest
		f.QuestID = npcdoc.QuestID(e.npcID)
	case npcdoc.InteractionShop:
		f.Type = npcdoc.InteractionTagShop
		f.ShopID = npcdoc.ShopID(e.npcID)
	}
	for _, opt := range doc.Options {
		f.Options = append(f.Options, npcdoc.InteractionOption{
			Text:            opt.Text,
			Action:          e.resolveAction(opt),
			RequiredQuestID: ident.StripNamespacePrefix(opt.RequiredQuestID),
		})
	}
	return f
}

// resolveAction returns the option's action for export: the canonical
// encoding if the action is empty or still follows its kind's pattern,
// otherwise the hand-edited value.
func (e *Editor) resolveAction(opt npcdoc.DialogueOption) string {
	if opt.Action == "" || npcdoc.IsDefaultEncodedAction(opt.Action, opt.ActionKind, e.npcID) {
		return npcdoc.EncodeAction(opt.ActionKind, e.npcID)
	}
	return opt.Action
}

func (e *Editor) questFile() npcdoc.QuestFile {
	q := e.quest
	f := npcdoc.QuestFile{
		ID:                npcdoc.QuestID(e.npcID),
		Title:             q.Title,
		Description:       q.Description,
		CompletionMessage: q.CompletionMessage,
		RequiredQuestID:   ident.StripNamespacePrefix(q.RequiredQuestID),
		Objectives:        make([]npcdoc.QuestObjective, 0, len(q.Objectives)),
		Rewards:           make([]npcdoc.QuestReward, 0, len(q.Rewards)),
	}
	for _, o := range q.Objectives {
		f.Objectives = append(f.Objectives, npcdoc.QuestObjective{
			Type:   string(o.Type),
			Target: ident.StripNamespacePrefix(o.TargetItemID),
			Amount: atLeastOne(o.Amount),
		})
	}
	for _, r := range q.Rewards {
		out := npcdoc.QuestReward{Type: string(r.Type), Amount: atLeastOne(r.Amount)}
		if r.Type == npcdoc.RewardItem {
			out.ID = ident.StripNamespacePrefix(r.ItemID)
		}
		f.Rewards = append(f.Rewards, out)
	}
	return f
}

func (e *Editor) shopFile() npcdoc.ShopFile {
	s := e.shop
	dir := s.Direction
	if dir == "" {
		dir = npcdoc.DirectionBuy
	}
	f := npcdoc.ShopFile{
		ID:        npcdoc.ShopID(e.npcID),
		Title:     s.Title,
		Direction: string(dir),
		Items:     make([]npcdoc.ShopFileItem, 0, len(s.Items)),
	}
	for _, it := range s.Items {
		priced := it.Priced(dir)
		f.Items = append(f.Items, npcdoc.ShopFileItem{
			ItemID:    ident.StripNamespacePrefix(priced.ItemID),
			Amount:    atLeastOne(priced.Amount),
			BuyPrice:  priced.BuyPrice,
			SellPrice: priced.SellPrice,
		})
	}
	return f
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Summary is a one-line description of the editor state for logs and UIs.
func (e *Editor) Summary() string {
	return fmt.Sprintf("%s [%s] %d options", e.npcID, e.interactionType, len(e.interaction.Options))
}
