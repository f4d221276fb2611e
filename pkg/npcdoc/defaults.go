package npcdoc

import "fmt"

const (
	TemplateTemple      = "Template_Temple"
	TemplateIntelligent = "Template_Intelligent"

	StaticMotionSpeed     = 0.1
	DefaultGreetRange     = 5
	DefaultGreetAnimation = "Wave"

	DefaultCloseText         = "Goodbye."
	DefaultQuestDescription  = "Help me collect some items."
	DefaultCompletionMessage = "Thank you! Here is your reward."

	DefaultRewardAmount    = 100
	DefaultShopBuyPrice    = 10
	DefaultShopSellPrice   = 5
	DefaultObjectiveAmount = 1
)

// NewRoleDocument returns a role with the generator defaults for npcID.
func NewRoleDocument(npcID string) RoleDocument {
	return RoleDocument{
		AppearanceID:   npcID,
		DisplayName:    npcID,
		IsStatic:       true,
		MotionWander:   false,
		GreetRange:     DefaultGreetRange,
		GreetAnimation: DefaultGreetAnimation,
		BehaviorType:   BehaviorInteractive,
	}
}

// CloseOption is the single option a fresh dialogue starts with.
func CloseOption() DialogueOption {
	return DialogueOption{
		Text:       DefaultCloseText,
		ActionKind: ActionNone,
		Action:     ActionClose,
	}
}

// NewInteractionDocument returns a dialogue titled after npcID with one close option.
func NewInteractionDocument(npcID string) InteractionDocument {
	return InteractionDocument{
		Title:   npcID,
		Options: []DialogueOption{CloseOption()},
	}
}

// DefaultOptions returns the canonical option set for an interaction type,
// with actions encoded for npcID.
func DefaultOptions(t InteractionType, npcID string) []DialogueOption {
	opt := func(text string, kind ActionKind) DialogueOption {
		return DialogueOption{Text: text, ActionKind: kind, Action: EncodeAction(kind, npcID)}
	}
	switch t {
	case InteractionQuest:
		return []DialogueOption{
			opt("I'll help you.", ActionQuest),
			opt("I have what you asked for.", ActionCheckQuest),
			CloseOption(),
		}
	case InteractionShop:
		return []DialogueOption{
			opt("Show me your wares.", ActionShop),
			CloseOption(),
		}
	default:
		return []DialogueOption{CloseOption()}
	}
}

// DefaultQuestTitle is the title template a quest starts with.
func DefaultQuestTitle(npcID string) string {
	return fmt.Sprintf("%s's Quest", npcID)
}

// DefaultShopTitle is the title template a shop starts with.
func DefaultShopTitle(npcID string) string {
	return fmt.Sprintf("%s's Shop", npcID)
}

// NewQuestDocument returns an empty quest with default texts for npcID.
func NewQuestDocument(npcID string) QuestDocument {
	return QuestDocument{
		Title:             DefaultQuestTitle(npcID),
		Description:       DefaultQuestDescription,
		CompletionMessage: DefaultCompletionMessage,
		Objectives:        []Objective{},
		Rewards:           []Reward{},
	}
}

// NewShopDocument returns an empty buy-direction shop for npcID.
func NewShopDocument(npcID string) ShopDocument {
	return ShopDocument{
		Title:     DefaultShopTitle(npcID),
		Direction: DirectionBuy,
		Items:     []ShopItem{},
	}
}

func NewObjective() Objective {
	return Objective{Type: ObjectiveCollect, Amount: DefaultObjectiveAmount}
}

func NewReward() Reward {
	return Reward{Type: RewardMoney, Amount: DefaultRewardAmount}
}

func NewShopItem() ShopItem {
	return ShopItem{Amount: 1, BuyPrice: DefaultShopBuyPrice, SellPrice: DefaultShopSellPrice}
}
