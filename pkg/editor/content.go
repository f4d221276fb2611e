package editor

import (
	"context"
	"fmt"

	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

// SetRole replaces the role document after validating it. An empty
// appearance id follows the NPC id.
func (e *Editor) SetRole(role npcdoc.RoleDocument) error {
	if _, err := npcdoc.ParseBehaviorType(string(role.BehaviorType)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if role.GreetRange < 1 {
		return fmt.Errorf("%w: greet range must be positive, got %d", ErrInvalidFormat, role.GreetRange)
	}
	if role.AppearanceID == "" {
		role.AppearanceID = e.npcID
	}
	e.role = role
	return nil
}

// Quest

func (e *Editor) SetQuestInfo(title, description, completionMessage, requiredQuestID string) {
	e.ensureQuest()
	e.quest.Title = title
	e.quest.Description = description
	e.quest.CompletionMessage = completionMessage
	e.quest.RequiredQuestID = requiredQuestID
}

func (e *Editor) AddObjective() int {
	e.ensureQuest()
	e.quest.Objectives = append(e.quest.Objectives, npcdoc.NewObjective())
	return len(e.quest.Objectives) - 1
}

func (e *Editor) SetObjective(index int, obj npcdoc.Objective) error {
	if err := checkIndex(index, len(e.quest.Objectives), "objective"); err != nil {
		return err
	}
	if _, err := npcdoc.ParseObjectiveType(string(obj.Type)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	obj.Amount = atLeastOne(obj.Amount)
	e.quest.Objectives[index] = obj
	return nil
}

func (e *Editor) RemoveObjective(ctx context.Context, index int) error {
	if err := checkIndex(index, len(e.quest.Objectives), "objective"); err != nil {
		return err
	}
	if err := e.confirm(ctx, MsgRemoveObjective); err != nil {
		return err
	}
	e.quest.Objectives = removeAt(e.quest.Objectives, index)
	return nil
}

func (e *Editor) AddReward() int {
	e.ensureQuest()
	e.quest.Rewards = append(e.quest.Rewards, npcdoc.NewReward())
	return len(e.quest.Rewards) - 1
}

// SetReward replaces the reward at index. Money rewards drop any item id.
func (e *Editor) SetReward(index int, r npcdoc.Reward) error {
	if err := checkIndex(index, len(e.quest.Rewards), "reward"); err != nil {
		return err
	}
	if _, err := npcdoc.ParseRewardType(string(r.Type)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if r.Type != npcdoc.RewardItem {
		r.ItemID = ""
	}
	r.Amount = atLeastOne(r.Amount)
	e.quest.Rewards[index] = r
	return nil
}

func (e *Editor) RemoveReward(ctx context.Context, index int) error {
	if err := checkIndex(index, len(e.quest.Rewards), "reward"); err != nil {
		return err
	}
	if err := e.confirm(ctx, MsgRemoveReward); err != nil {
		return err
	}
	e.quest.Rewards = removeAt(e.quest.Rewards, index)
	return nil
}

// Shop

func (e *Editor) SetShopInfo(title string, direction npcdoc.Direction) error {
	if _, err := npcdoc.ParseDirection(string(direction)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	e.ensureShop()
	e.shop.Title = title
	e.shop.Direction = direction
	return nil
}

func (e *Editor) AddShopItem() int {
	e.ensureShop()
	e.shop.Items = append(e.shop.Items, npcdoc.NewShopItem())
	return len(e.shop.Items) - 1
}

func (e *Editor) SetShopItem(index int, item npcdoc.ShopItem) error {
	if err := checkIndex(index, len(e.shop.Items), "shop item"); err != nil {
		return err
	}
	item.Amount = atLeastOne(item.Amount)
	item.BuyPrice = npcdoc.ClampPrice(item.BuyPrice)
	item.SellPrice = npcdoc.ClampPrice(item.SellPrice)
	e.shop.Items[index] = item
	return nil
}

// SetShopItemPrice edits the price that is user-editable for the current
// direction: buyPrice when players buy, sellPrice when they sell. The other
// price is derived on export.
func (e *Editor) SetShopItemPrice(index, price int) error {
	if err := checkIndex(index, len(e.shop.Items), "shop item"); err != nil {
		return err
	}
	price = npcdoc.ClampPrice(price)
	if e.shop.Direction == npcdoc.DirectionSell {
		e.shop.Items[index].SellPrice = price
	} else {
		e.shop.Items[index].BuyPrice = price
	}
	return nil
}

func (e *Editor) RemoveShopItem(ctx context.Context, index int) error {
	if err := checkIndex(index, len(e.shop.Items), "shop item"); err != nil {
		return err
	}
	if err := e.confirm(ctx, MsgRemoveShopItem); err != nil {
		return err
	}
	e.shop.Items = removeAt(e.shop.Items, index)
	return nil
}

func atLeastOne(n int) int {
	return max(n, 1)
}
