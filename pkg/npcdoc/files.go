package npcdoc

import "path"

// Export paths, relative to the Server/ root of a content pack.
const (
	RolesDir        = "NPC/Roles"
	InteractionsDir = "NPC/Interactions"
	QuestsDir       = "NPC/Quests"
	ShopsDir        = "NPC/Shops"
)

func RolePath(npcID string) string {
	return path.Join(RolesDir, npcID+".json")
}

func InteractionPath(npcID string) string {
	return path.Join(InteractionsDir, npcID+"_interactions.json")
}

func QuestPath(npcID string) string {
	return path.Join(QuestsDir, QuestID(npcID)+".json")
}

func ShopPath(npcID string) string {
	return path.Join(ShopsDir, ShopID(npcID)+".json")
}

// Interaction file type tags.
const (
	InteractionTagDialog = "DIALOG"
	InteractionTagQuest  = "QUEST"
	InteractionTagShop   = "SHOP"
)

// RoleFile is the on-disk shape of NPC/Roles/<npcId>.json.
type RoleFile struct {
	Type      string     `json:"Type"`
	Reference string     `json:"Reference"`
	Modify    RoleModify `json:"Modify"`
}

type RoleModify struct {
	Appearance               string  `json:"Appearance"`
	NameTranslationKey       string  `json:"NameTranslationKey"`
	MotionStatic             bool    `json:"MotionStatic"`
	MotionWander             bool    `json:"MotionWander"`
	GreetRange               int     `json:"GreetRange"`
	GreetAnimation           string  `json:"GreetAnimation"`
	MaxSpeed                 float64 `json:"MaxSpeed"`
	MaxHealth                int     `json:"MaxHealth,omitempty"`
	DefaultPlayerAttitude    string  `json:"DefaultPlayerAttitude,omitempty"`
	ViewSector               int     `json:"ViewSector,omitempty"`
	HearingRange             int     `json:"HearingRange,omitempty"`
	AttackDistance           float64 `json:"AttackDistance,omitempty"`
	UseCombatActionEvaluator bool    `json:"UseCombatActionEvaluator,omitempty"`
}

// InteractionFile is the on-disk shape of NPC/Interactions/<npcId>_interactions.json.
type InteractionFile struct {
	Title         string              `json:"title"`
	Text          string              `json:"text"`
	CompletedText *string             `json:"completedText,omitempty"`
	Type          string              `json:"type"`
	Options       []InteractionOption `json:"options"`
	QuestID       string              `json:"questId,omitempty"`
	ShopID        string              `json:"shopId,omitempty"`
}

type InteractionOption struct {
	Text            string `json:"text"`
	Action          string `json:"action"`
	RequiredQuestID string `json:"requiredQuestId,omitempty"`
}

// QuestFile is the on-disk shape of NPC/Quests/<npcId>_quest.json.
type QuestFile struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	CompletionMessage string           `json:"completionMessage,omitempty"`
	RequiredQuestID   string           `json:"requiredQuestId,omitempty"`
	Objectives        []QuestObjective `json:"objectives"`
	Rewards           []QuestReward    `json:"rewards"`
}

type QuestObjective struct {
	Type   string `json:"type"`
	Target string `json:"target"`
	Amount int    `json:"amount"`
}

type QuestReward struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Amount int    `json:"amount"`
}

// ShopFile is the on-disk shape of NPC/Shops/<npcId>_shop.json.
type ShopFile struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Direction string         `json:"direction,omitempty"`
	Items     []ShopFileItem `json:"items"`
}

type ShopFileItem struct {
	ItemID    string `json:"itemId"`
	Amount    int    `json:"amount"`
	BuyPrice  int    `json:"buyPrice"`
	SellPrice int    `json:"sellPrice"`
}
