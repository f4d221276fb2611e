package editor

import (
	"fmt"
	"path"
	"strings"

	"github.com/jwebster45206/npc-forge/pkg/ident"
	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

type roleInput struct {
	Reference string           `json:"Reference"`
	Modify    *roleModifyInput `json:"Modify"`
}

type roleModifyInput struct {
	Appearance               *string  `json:"Appearance"`
	NameTranslationKey       *string  `json:"NameTranslationKey"`
	MotionStatic             *bool    `json:"MotionStatic"`
	MotionWander             *bool    `json:"MotionWander"`
	GreetRange               looseInt `json:"GreetRange"`
	GreetAnimation           *string  `json:"GreetAnimation"`
	MaxSpeed                 *float64 `json:"MaxSpeed"`
	UseCombatActionEvaluator *bool    `json:"UseCombatActionEvaluator"`
}

// ImportRole loads a Role document. The NPC id comes from Modify.Appearance,
// falling back to sourceName (a file name, ".json" trimmed) and then to a
// wrapping key. Missing fields take their defaults.
func (e *Editor) ImportRole(data []byte, sourceName string) error {
	body, key, err := unwrap(data, hasAnyKey("Modify"))
	if err != nil {
		return fmt.Errorf("import role: %w", err)
	}
	var in roleInput
	if err := decodeBody(body, &in, "role"); err != nil {
		return fmt.Errorf("import role: %w", err)
	}
	if in.Modify == nil {
		return fmt.Errorf("import role: %w: missing Modify block", ErrInvalidFormat)
	}
	m := in.Modify

	npcID := ""
	if m.Appearance != nil {
		npcID = ident.Sanitize(*m.Appearance)
	}
	if npcID == "" && sourceName != "" {
		npcID = ident.Sanitize(strings.TrimSuffix(path.Base(sourceName), ".json"))
	}
	if npcID == "" {
		npcID = ident.Sanitize(key)
	}
	if npcID == "" {
		return fmt.Errorf("import role: %w: no NPC identifier", ErrInvalidFormat)
	}

	role := npcdoc.NewRoleDocument(npcID)
	if m.Appearance != nil && *m.Appearance != "" {
		role.AppearanceID = *m.Appearance
	}
	if m.NameTranslationKey != nil && *m.NameTranslationKey != "" {
		role.DisplayName = *m.NameTranslationKey
	}
	if m.MotionStatic != nil {
		role.IsStatic = *m.MotionStatic
	}
	if m.MotionWander != nil {
		role.MotionWander = *m.MotionWander
	}
	if m.GreetAnimation != nil && *m.GreetAnimation != "" {
		role.GreetAnimation = *m.GreetAnimation
	}
	role.GreetRange = m.GreetRange.or(npcdoc.DefaultGreetRange)
	if role.GreetRange < 1 {
		role.GreetRange = npcdoc.DefaultGreetRange
	}
	role.BehaviorType = inferBehavior(in.Reference, m)

	e.setNpcID(npcID)
	e.role = role
	e.log.Debug("Role imported", "npc_id", npcID, "behavior", role.BehaviorType)
	return nil
}

// inferBehavior recovers the behavior type from the fields it leaves behind on export.
func inferBehavior(reference string, m *roleModifyInput) npcdoc.BehaviorType {
	if m.UseCombatActionEvaluator != nil && *m.UseCombatActionEvaluator {
		return npcdoc.BehaviorAggressive
	}
	if reference != npcdoc.TemplateIntelligent {
		return npcdoc.BehaviorInteractive
	}
	if m.MaxSpeed != nil {
		switch *m.MaxSpeed {
		case 12:
			return npcdoc.BehaviorAggressive
		case 8:
			return npcdoc.BehaviorNeutral
		}
	}
	return npcdoc.BehaviorPassive
}

type interactionInput struct {
	Title         string  `json:"title"`
	Text          string  `json:"text"`
	CompletedText *string `json:"completedText"`
	Type          string  `json:"type"`
	Options       []struct {
		Text            string `json:"text"`
		Action          string `json:"action"`
		RequiredQuestID string `json:"requiredQuestId"`
	} `json:"options"`
	QuestID string `json:"questId"`
	ShopID  string `json:"shopId"`
}

// ImportInteraction loads a dialogue document, flat or wrapped in its NPC id.
// Option kinds are recovered from action prefixes; the interaction type from
// the type tag or the quest/shop linkage. When no NPC id is set yet it is
// taken from the wrapping key or the linkage ids.
func (e *Editor) ImportInteraction(data []byte) error {
	body, key, err := unwrap(data, hasAnyKey("type"))
	if err != nil {
		return fmt.Errorf("import interaction: %w", err)
	}
	var in interactionInput
	if err := decodeBody(body, &in, "interaction"); err != nil {
		return fmt.Errorf("import interaction: %w", err)
	}

	var t npcdoc.InteractionType
	switch strings.ToUpper(strings.TrimSpace(in.Type)) {
	case npcdoc.InteractionTagQuest:
		t = npcdoc.InteractionQuest
	case npcdoc.InteractionTagShop:
		t = npcdoc.InteractionShop
	case npcdoc.InteractionTagDialog:
		switch {
		case in.QuestID != "":
			t = npcdoc.InteractionQuest
		case in.ShopID != "":
			t = npcdoc.InteractionShop
		default:
			t = npcdoc.InteractionDialogOnly
		}
	default:
		return fmt.Errorf("import interaction: %w: unknown type %q", ErrInvalidFormat, in.Type)
	}

	doc := npcdoc.InteractionDocument{
		Title:        in.Title,
		GreetingText: in.Text,
		Options:      make([]npcdoc.DialogueOption, 0, len(in.Options)),
	}
	if in.CompletedText != nil {
		doc.CompletedText = *in.CompletedText
	}
	for _, o := range in.Options {
		doc.Options = append(doc.Options, npcdoc.DialogueOption{
			Text:            o.Text,
			ActionKind:      npcdoc.DecodeActionKind(o.Action),
			Action:          o.Action,
			RequiredQuestID: o.RequiredQuestID,
		})
	}

	if e.npcID == "" {
		e.setNpcID(interactionOwner(key, in.QuestID, in.ShopID))
	}
	e.interaction = doc
	e.interactionType = t
	switch t {
	case npcdoc.InteractionQuest:
		e.ensureQuest()
	case npcdoc.InteractionShop:
		e.ensureShop()
	}
	e.log.Debug("Interaction imported", "npc_id", e.npcID, "type", t, "options", len(doc.Options))
	return nil
}

func interactionOwner(key, questID, shopID string) string {
	if id := ident.Sanitize(key); id != "" {
		return id
	}
	if id, ok := strings.CutSuffix(ident.Sanitize(questID), "_quest"); ok {
		return id
	}
	if id, ok := strings.CutSuffix(ident.Sanitize(shopID), "_shop"); ok {
		return id
	}
	return ""
}

type questInput struct {
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	CompletionMessage *string `json:"completionMessage"`
	RequiredQuestID   string  `json:"requiredQuestId"`
	Objectives        []struct {
		Type         string   `json:"type"`
		Target       string   `json:"target"`
		TargetItemID string   `json:"targetItemId"`
		Amount       looseInt `json:"amount"`
	} `json:"objectives"`
	Rewards []struct {
		Type   string   `json:"type"`
		ID     string   `json:"id"`
		ItemID string   `json:"itemId"`
		Amount looseInt `json:"amount"`
	} `json:"rewards"`
}

type shopInput struct {
	Title     *string `json:"title"`
	Direction string  `json:"direction"`
	Items     []struct {
		ItemID    string   `json:"itemId"`
		ID        string   `json:"id"`
		Amount    looseInt `json:"amount"`
		BuyPrice  looseInt `json:"buyPrice"`
		SellPrice looseInt `json:"sellPrice"`
	} `json:"items"`
}

// ImportContent loads the quest or shop document matching the current
// interaction type. The type is never sniffed from the content.
func (e *Editor) ImportContent(data []byte) error {
	switch e.interactionType {
	case npcdoc.InteractionQuest:
		return e.importQuest(data)
	case npcdoc.InteractionShop:
		return e.importShop(data)
	default:
		return fmt.Errorf("import content: %w: interaction type %s has no quest or shop", ErrInvalidFormat, e.interactionType)
	}
}

func (e *Editor) importQuest(data []byte) error {
	body, _, err := unwrap(data, hasAnyKey("objectives", "rewards", "description"))
	if err != nil {
		return fmt.Errorf("import quest: %w", err)
	}
	var in questInput
	if err := decodeBody(body, &in, "quest"); err != nil {
		return fmt.Errorf("import quest: %w", err)
	}

	q := npcdoc.NewQuestDocument(e.npcID)
	q.Title = titleFor(e.npcID, npcdoc.DefaultQuestTitle)
	if in.Title != nil {
		q.Title = *in.Title
	}
	if in.Description != nil {
		q.Description = *in.Description
	}
	if in.CompletionMessage != nil {
		q.CompletionMessage = *in.CompletionMessage
	}
	q.RequiredQuestID = in.RequiredQuestID

	for i, o := range in.Objectives {
		typ := npcdoc.ObjectiveCollect
		if o.Type != "" {
			parsed, err := npcdoc.ParseObjectiveType(strings.ToUpper(o.Type))
			if err != nil {
				return fmt.Errorf("import quest: %w: objective %d: %v", ErrInvalidFormat, i, err)
			}
			typ = parsed
		}
		target := o.Target
		if target == "" {
			target = o.TargetItemID
		}
		q.Objectives = append(q.Objectives, npcdoc.Objective{
			Type:         typ,
			TargetItemID: target,
			Amount:       atLeastOne(o.Amount.or(1)),
		})
	}

	for i, r := range in.Rewards {
		typ := npcdoc.RewardMoney
		if r.Type != "" {
			parsed, err := npcdoc.ParseRewardType(strings.ToUpper(r.Type))
			if err != nil {
				return fmt.Errorf("import quest: %w: reward %d: %v", ErrInvalidFormat, i, err)
			}
			typ = parsed
		}
		reward := npcdoc.Reward{Type: typ, Amount: atLeastOne(r.Amount.or(1))}
		if typ == npcdoc.RewardItem {
			reward.ItemID = r.ID
			if reward.ItemID == "" {
				reward.ItemID = r.ItemID
			}
		}
		q.Rewards = append(q.Rewards, reward)
	}

	e.quest = q
	e.log.Debug("Quest imported", "npc_id", e.npcID, "objectives", len(q.Objectives), "rewards", len(q.Rewards))
	return nil
}

func (e *Editor) importShop(data []byte) error {
	body, _, err := unwrap(data, hasAnyKey("items"))
	if err != nil {
		return fmt.Errorf("import shop: %w", err)
	}
	var in shopInput
	if err := decodeBody(body, &in, "shop"); err != nil {
		return fmt.Errorf("import shop: %w", err)
	}

	s := npcdoc.NewShopDocument(e.npcID)
	s.Title = titleFor(e.npcID, npcdoc.DefaultShopTitle)
	if in.Title != nil {
		s.Title = *in.Title
	}
	if in.Direction != "" {
		d, err := npcdoc.ParseDirection(strings.ToLower(in.Direction))
		if err != nil {
			return fmt.Errorf("import shop: %w: %v", ErrInvalidFormat, err)
		}
		s.Direction = d
	}
	for _, it := range in.Items {
		itemID := it.ItemID
		if itemID == "" {
			itemID = it.ID
		}
		s.Items = append(s.Items, npcdoc.ShopItem{
			ItemID:    itemID,
			Amount:    atLeastOne(it.Amount.or(1)),
			BuyPrice:  npcdoc.ClampPrice(it.BuyPrice.or(0)),
			SellPrice: npcdoc.ClampPrice(it.SellPrice.or(0)),
		})
	}

	e.shop = s
	e.log.Debug("Shop imported", "npc_id", e.npcID, "items", len(s.Items))
	return nil
}
