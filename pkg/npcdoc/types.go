// Package npcdoc holds the in-memory NPC content documents (role, dialogue,
// quest and shop), their defaults, the identifier/action derivation rules that
// link them together, and the JSON shapes they take on disk.
package npcdoc

import (
	"fmt"
	"math"
)

// InteractionType selects which linked documents an NPC exposes.
type InteractionType string

const (
	InteractionQuest      InteractionType = "QUEST"
	InteractionShop       InteractionType = "SHOP"
	InteractionDialogOnly InteractionType = "DIALOG_ONLY"
)

// ParseInteractionType validates s as an InteractionType.
func ParseInteractionType(s string) (InteractionType, error) {
	switch t := InteractionType(s); t {
	case InteractionQuest, InteractionShop, InteractionDialogOnly:
		return t, nil
	}
	return "", fmt.Errorf("unknown interaction type %q", s)
}

// ActionKind is the semantic kind of a dialogue option. The option's action
// string is derived from it.
type ActionKind string

const (
	ActionNone            ActionKind = "NONE"
	ActionDialog          ActionKind = "DIALOG"
	ActionQuest           ActionKind = "QUEST"
	ActionCheckQuest      ActionKind = "CHECK_QUEST"
	ActionShop            ActionKind = "SHOP"
	ActionHideIfCompleted ActionKind = "HIDE_IF_COMPLETED"
	ActionShowIfCompleted ActionKind = "SHOW_IF_COMPLETED"
)

// ParseActionKind validates s as an ActionKind.
func ParseActionKind(s string) (ActionKind, error) {
	switch k := ActionKind(s); k {
	case ActionNone, ActionDialog, ActionQuest, ActionCheckQuest, ActionShop,
		ActionHideIfCompleted, ActionShowIfCompleted:
		return k, nil
	}
	return "", fmt.Errorf("unknown action kind %q", s)
}

// QuestRelated reports whether options of this kind refer to the NPC's quest.
func (k ActionKind) QuestRelated() bool {
	switch k {
	case ActionQuest, ActionCheckQuest, ActionHideIfCompleted, ActionShowIfCompleted:
		return true
	}
	return false
}

// BehaviorType drives the role template and motion defaults.
type BehaviorType string

const (
	BehaviorPassive     BehaviorType = "Passive"
	BehaviorNeutral     BehaviorType = "Neutral"
	BehaviorAggressive  BehaviorType = "Aggressive"
	BehaviorInteractive BehaviorType = "Interactive"
)

// ParseBehaviorType validates s as a BehaviorType.
func ParseBehaviorType(s string) (BehaviorType, error) {
	switch b := BehaviorType(s); b {
	case BehaviorPassive, BehaviorNeutral, BehaviorAggressive, BehaviorInteractive:
		return b, nil
	}
	return "", fmt.Errorf("unknown behavior type %q", s)
}

// RoleDocument is the server-side Role record: appearance reference and basic motion.
type RoleDocument struct {
	AppearanceID   string       `json:"appearanceId"`
	DisplayName    string       `json:"displayName"`
	IsStatic       bool         `json:"isStatic"`
	MotionWander   bool         `json:"motionWander"`
	GreetRange     int          `json:"greetRange"`
	GreetAnimation string       `json:"greetAnimation"`
	BehaviorType   BehaviorType `json:"behaviorType"`
}

// Template returns the role template reference for this document.
func (r RoleDocument) Template() string {
	if r.IsStatic || r.BehaviorType == BehaviorInteractive {
		return TemplateTemple
	}
	return TemplateIntelligent
}

// MotionSpeed returns the MaxSpeed the role is exported with.
func (r RoleDocument) MotionSpeed() float64 {
	if r.IsStatic {
		return StaticMotionSpeed
	}
	switch r.BehaviorType {
	case BehaviorAggressive:
		return 12
	case BehaviorNeutral:
		return 8
	default:
		return 6
	}
}

// DialogueOption is one player choice in the dialogue tree.
type DialogueOption struct {
	Text            string     `json:"text"`
	ActionKind      ActionKind `json:"actionKind"`
	Action          string     `json:"action"`
	RequiredQuestID string     `json:"requiredQuestId,omitempty"`
}

// InteractionDocument is the dialogue shown to the player.
type InteractionDocument struct {
	Title         string           `json:"title"`
	GreetingText  string           `json:"greetingText"`
	CompletedText string           `json:"completedText"`
	Options       []DialogueOption `json:"options"`
}

// ObjectiveType is what a quest objective asks of the player.
type ObjectiveType string

const (
	ObjectiveCollect ObjectiveType = "COLLECT"
	ObjectiveKill    ObjectiveType = "KILL"
)

// ParseObjectiveType validates s as an ObjectiveType.
func ParseObjectiveType(s string) (ObjectiveType, error) {
	switch o := ObjectiveType(s); o {
	case ObjectiveCollect, ObjectiveKill:
		return o, nil
	}
	return "", fmt.Errorf("unknown objective type %q", s)
}

// RewardType is what a quest reward pays out.
type RewardType string

const (
	RewardMoney RewardType = "MONEY"
	RewardItem  RewardType = "ITEM"
)

// ParseRewardType validates s as a RewardType.
func ParseRewardType(s string) (RewardType, error) {
	switch r := RewardType(s); r {
	case RewardMoney, RewardItem:
		return r, nil
	}
	return "", fmt.Errorf("unknown reward type %q", s)
}

type Objective struct {
	Type         ObjectiveType `json:"type"`
	TargetItemID string        `json:"targetItemId"`
	Amount       int           `json:"amount"`
}

// Reward pays money or an item. ItemID is only meaningful for RewardItem.
type Reward struct {
	Type   RewardType `json:"type"`
	ItemID string     `json:"itemId,omitempty"`
	Amount int        `json:"amount"`
}

// QuestDocument exists on export only when the interaction type is QUEST.
type QuestDocument struct {
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	CompletionMessage string      `json:"completionMessage"`
	RequiredQuestID   string      `json:"requiredQuestId,omitempty"`
	Objectives        []Objective `json:"objectives"`
	Rewards           []Reward    `json:"rewards"`
}

// Direction is the trade direction of a shop from the player's point of view.
type Direction string

const (
	// DirectionBuy means the player purchases from the shop.
	DirectionBuy Direction = "buy"
	// DirectionSell means the player sells to the shop.
	DirectionSell Direction = "sell"
)

// ParseDirection validates s as a Direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionBuy, DirectionSell:
		return d, nil
	}
	return "", fmt.Errorf("unknown shop direction %q", s)
}

type ShopItem struct {
	ItemID    string `json:"itemId"`
	Amount    int    `json:"amount"`
	BuyPrice  int    `json:"buyPrice"`
	SellPrice int    `json:"sellPrice"`
}

// MaxPrice is the largest price an item may carry. Doubling it still fits in an int.
const MaxPrice = math.MaxInt / 2

// ClampPrice bounds p to [0, MaxPrice].
func ClampPrice(p int) int {
	return min(max(p, 0), MaxPrice)
}

// Priced returns the item with the price field that is inactive for d
// recomputed from the active one.
func (s ShopItem) Priced(d Direction) ShopItem {
	s.BuyPrice = ClampPrice(s.BuyPrice)
	s.SellPrice = ClampPrice(s.SellPrice)
	if d == DirectionSell {
		s.BuyPrice = s.SellPrice * 2
	} else {
		s.SellPrice = s.BuyPrice / 2
	}
	return s
}

// ShopDocument exists on export only when the interaction type is SHOP.
type ShopDocument struct {
	Title     string     `json:"title"`
	Direction Direction  `json:"direction"`
	Items     []ShopItem `json:"items"`
}

// CatalogEntry is a read-only item reference from the item catalog.
type CatalogEntry struct {
	ID       string `json:"id"`
	Category string `json:"category"`
}
