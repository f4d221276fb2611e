package editor

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

func paths(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Path
	}
	return out
}

func TestExport_MissingNpcID(t *testing.T) {
	e := New()
	if _, err := e.Export(); !errors.Is(err, ErrMissingNpcID) {
		t.Errorf("expected ErrMissingNpcID, got %v", err)
	}
	if _, err := e.ExportInteraction(); !errors.Is(err, ErrMissingNpcID) {
		t.Errorf("expected ErrMissingNpcID from ExportInteraction, got %v", err)
	}
}

func TestExport_PathsByType(t *testing.T) {
	tests := []struct {
		typ  npcdoc.InteractionType
		want []string
	}{
		{npcdoc.InteractionQuest, []string{
			"NPC/Roles/hermit.json",
			"NPC/Interactions/hermit_interactions.json",
			"NPC/Quests/hermit_quest.json",
		}},
		{npcdoc.InteractionShop, []string{
			"NPC/Roles/hermit.json",
			"NPC/Interactions/hermit_interactions.json",
			"NPC/Shops/hermit_shop.json",
		}},
		{npcdoc.InteractionDialogOnly, []string{
			"NPC/Roles/hermit.json",
			"NPC/Interactions/hermit_interactions.json",
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			e := New(WithConfirmer(AlwaysConfirm))
			e.SetNpcID("hermit")
			if err := e.SetInteractionType(context.Background(), tt.typ); err != nil {
				t.Fatal(err)
			}
			docs, err := e.Export()
			if err != nil {
				t.Fatalf("Export: %v", err)
			}
			if diff := cmp.Diff(tt.want, paths(docs)); diff != "" {
				t.Errorf("paths (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExport_GuardQuestEndToEnd(t *testing.T) {
	e := New(WithConfirmer(AlwaysConfirm))
	role := `{"Modify":{"Appearance":"guard","NameTranslationKey":"Guard Captain","MotionStatic":false}}`
	if err := e.ImportRole([]byte(role), ""); err != nil {
		t.Fatalf("ImportRole: %v", err)
	}
	if err := e.SetInteractionType(context.Background(), npcdoc.InteractionQuest); err != nil {
		t.Fatalf("SetInteractionType: %v", err)
	}
	o := e.AddObjective()
	if err := e.SetObjective(o, npcdoc.Objective{Type: npcdoc.ObjectiveCollect, TargetItemID: "iron_bar", Amount: 5}); err != nil {
		t.Fatal(err)
	}
	r := e.AddReward()
	if err := e.SetReward(r, npcdoc.Reward{Type: npcdoc.RewardMoney, Amount: 100}); err != nil {
		t.Fatal(err)
	}

	docs, err := e.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %v", paths(docs))
	}
	quest := docs[2]
	if quest.Path != "NPC/Quests/guard_quest.json" {
		t.Fatalf("quest path = %q", quest.Path)
	}

	raw, err := json.Marshal(quest.Body)
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Objectives []map[string]any `json:"objectives"`
		Rewards    []map[string]any `json:"rewards"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	wantObjectives := []map[string]any{{"type": "COLLECT", "target": "iron_bar", "amount": float64(5)}}
	wantRewards := []map[string]any{{"type": "MONEY", "amount": float64(100)}}
	if diff := cmp.Diff(wantObjectives, got.Objectives); diff != "" {
		t.Errorf("objectives (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantRewards, got.Rewards); diff != "" {
		t.Errorf("rewards (-want +got):\n%s", diff)
	}

	roleFile, ok := docs[0].Body.(npcdoc.RoleFile)
	if !ok {
		t.Fatalf("role body is %T", docs[0].Body)
	}
	if roleFile.Reference != npcdoc.TemplateTemple || roleFile.Modify.NameTranslationKey != "Guard Captain" {
		t.Errorf("unexpected role file %+v", roleFile)
	}
	if roleFile.Modify.MaxSpeed != 6 {
		t.Errorf("interactive walking speed = %v, want 6", roleFile.Modify.MaxSpeed)
	}
}

func TestExport_InteractionFile(t *testing.T) {
	e := New(WithConfirmer(AlwaysConfirm))
	e.SetNpcID("a")
	// A fresh editor is already QUEST with only a close option; round-trip
	// through DIALOG_ONLY to get the quest defaults.
	_ = e.SetInteractionType(context.Background(), npcdoc.InteractionDialogOnly)
	if err := e.SetInteractionType(context.Background(), npcdoc.InteractionQuest); err != nil {
		t.Fatal(err)
	}
	e.SetDialogueText("Alpha", "Hi.", "Done!")
	idx := e.AddOption()
	_ = e.UpdateOption(idx, FieldText, "Script")
	_ = e.UpdateOption(idx, FieldAction, "CUSTOM_SCRIPT:foo")
	_ = e.UpdateOption(idx, FieldRequiredQuestID, "hytale:hytale:intro_quest")
	e.SetNpcID("b")

	file, err := e.ExportInteraction()
	if err != nil {
		t.Fatal(err)
	}
	completed := "Done!"
	want := npcdoc.InteractionFile{
		Title:         "Alpha",
		Text:          "Hi.",
		CompletedText: &completed,
		Type:          npcdoc.InteractionTagQuest,
		QuestID:       "b_quest",
		Options: []npcdoc.InteractionOption{
			{Text: "I'll help you.", Action: "ACCEPT_QUEST:b_quest"},
			{Text: "I have what you asked for.", Action: "CHECK_QUEST:b_quest"},
			{Text: "Goodbye.", Action: "close"},
			{Text: "Script", Action: "CUSTOM_SCRIPT:foo", RequiredQuestID: "intro_quest"},
		},
	}
	if diff := cmp.Diff(want, file); diff != "" {
		t.Errorf("interaction (-want +got):\n%s", diff)
	}
}

func TestExport_CompletedTextOnlyForQuest(t *testing.T) {
	e := New(WithConfirmer(AlwaysConfirm))
	e.SetNpcID("smith")
	_ = e.SetInteractionType(context.Background(), npcdoc.InteractionShop)
	e.SetDialogueText("Smith", "Need steel?", "unused")

	file, err := e.ExportInteraction()
	if err != nil {
		t.Fatal(err)
	}
	if file.CompletedText != nil {
		t.Errorf("completedText should be omitted for SHOP, got %q", *file.CompletedText)
	}
	if file.ShopID != "smith_shop" || file.Type != npcdoc.InteractionTagShop {
		t.Errorf("unexpected linkage %q / %q", file.ShopID, file.Type)
	}
	raw, _ := json.Marshal(file)
	var m map[string]any
	_ = json.Unmarshal(raw, &m)
	if _, ok := m["completedText"]; ok {
		t.Error("completedText key present in JSON")
	}
}

func TestExport_ShopPricing(t *testing.T) {
	tests := []struct {
		name      string
		direction npcdoc.Direction
		item      npcdoc.ShopItem
		wantBuy   int
		wantSell  int
	}{
		{"buy halves", npcdoc.DirectionBuy, npcdoc.ShopItem{ItemID: "hytale:iron_bar", Amount: 1, BuyPrice: 15, SellPrice: 99}, 15, 7},
		{"buy zero", npcdoc.DirectionBuy, npcdoc.ShopItem{ItemID: "pebble", Amount: 1, BuyPrice: 0, SellPrice: 4}, 0, 0},
		{"sell doubles", npcdoc.DirectionSell, npcdoc.ShopItem{ItemID: "pelt", Amount: 3, BuyPrice: 1, SellPrice: 12}, 24, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithConfirmer(AlwaysConfirm))
			e.SetNpcID("trader")
			if err := e.SetInteractionType(context.Background(), npcdoc.InteractionShop); err != nil {
				t.Fatal(err)
			}
			if err := e.SetShopInfo("Trader", tt.direction); err != nil {
				t.Fatal(err)
			}
			i := e.AddShopItem()
			if err := e.SetShopItem(i, tt.item); err != nil {
				t.Fatal(err)
			}
			docs, err := e.Export()
			if err != nil {
				t.Fatal(err)
			}
			shop, ok := docs[2].Body.(npcdoc.ShopFile)
			if !ok {
				t.Fatalf("shop body is %T", docs[2].Body)
			}
			got := shop.Items[0]
			if got.BuyPrice != tt.wantBuy || got.SellPrice != tt.wantSell {
				t.Errorf("prices = %d/%d, want %d/%d", got.BuyPrice, got.SellPrice, tt.wantBuy, tt.wantSell)
			}
			if got.ItemID == "" || strings.HasPrefix(got.ItemID, "hytale:") {
				t.Errorf("item id not stripped: %q", got.ItemID)
			}
			if shop.Direction != string(tt.direction) {
				t.Errorf("direction = %q", shop.Direction)
			}
		})
	}
}

func TestSetShopItemPrice_EditsActiveField(t *testing.T) {
	e := New(WithConfirmer(AlwaysConfirm))
	e.SetNpcID("trader")
	_ = e.SetInteractionType(context.Background(), npcdoc.InteractionShop)
	i := e.AddShopItem()

	if err := e.SetShopItemPrice(i, 30); err != nil {
		t.Fatal(err)
	}
	if got := e.Shop().Items[i]; got.BuyPrice != 30 || got.SellPrice != npcdoc.DefaultShopSellPrice {
		t.Errorf("buy direction edit: %+v", got)
	}

	_ = e.SetShopInfo("Trader", npcdoc.DirectionSell)
	if err := e.SetShopItemPrice(i, 8); err != nil {
		t.Fatal(err)
	}
	if got := e.Shop().Items[i]; got.SellPrice != 8 || got.BuyPrice != 30 {
		t.Errorf("sell direction edit: %+v", got)
	}
	if err := e.SetShopItemPrice(3, 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestShopPrices_Capped(t *testing.T) {
	e := New(WithConfirmer(AlwaysConfirm))
	e.SetNpcID("trader")
	_ = e.SetInteractionType(context.Background(), npcdoc.InteractionShop)
	_ = e.SetShopInfo("Trader", npcdoc.DirectionSell)
	i := e.AddShopItem()

	if err := e.SetShopItemPrice(i, 1<<62); err != nil {
		t.Fatal(err)
	}
	if got := e.Shop().Items[i].SellPrice; got != npcdoc.MaxPrice {
		t.Errorf("sell price = %d, want %d", got, npcdoc.MaxPrice)
	}
	j := e.AddShopItem()
	if err := e.SetShopItem(j, npcdoc.ShopItem{ItemID: "gem", Amount: 1, BuyPrice: math.MaxInt, SellPrice: math.MaxInt}); err != nil {
		t.Fatal(err)
	}

	for _, it := range e.shopFile().Items {
		if it.BuyPrice < 0 || it.SellPrice < 0 {
			t.Errorf("price overflowed: %+v", it)
		}
		if it.BuyPrice != it.SellPrice*2 {
			t.Errorf("buy price %d is not twice sell price %d", it.BuyPrice, it.SellPrice)
		}
	}
}

func TestExport_QuestStripsPrefixes(t *testing.T) {
	e := New(WithConfirmer(AlwaysConfirm))
	e.SetNpcID("miner")
	e.SetQuestInfo("Deep Work", "Dig.", "", "hytale:cave_quest")
	o := e.AddObjective()
	_ = e.SetObjective(o, npcdoc.Objective{Type: npcdoc.ObjectiveKill, TargetItemID: "hytale:spider", Amount: 0})
	r := e.AddReward()
	_ = e.SetReward(r, npcdoc.Reward{Type: npcdoc.RewardItem, ItemID: "hytale:pickaxe", Amount: 1})
	r = e.AddReward()
	_ = e.SetReward(r, npcdoc.Reward{Type: npcdoc.RewardMoney, ItemID: "ignored", Amount: 50})

	docs, err := e.Export()
	if err != nil {
		t.Fatal(err)
	}
	want := npcdoc.QuestFile{
		ID:              "miner_quest",
		Title:           "Deep Work",
		Description:     "Dig.",
		RequiredQuestID: "cave_quest",
		Objectives:      []npcdoc.QuestObjective{{Type: "KILL", Target: "spider", Amount: 1}},
		Rewards: []npcdoc.QuestReward{
			{Type: "ITEM", ID: "pickaxe", Amount: 1},
			{Type: "MONEY", Amount: 50},
		},
	}
	if diff := cmp.Diff(want, docs[2].Body); diff != "" {
		t.Errorf("quest (-want +got):\n%s", diff)
	}
}

func TestExport_RoleBehaviors(t *testing.T) {
	tests := []struct {
		behavior  npcdoc.BehaviorType
		static    bool
		reference string
		speed     float64
		health    int
		combat    bool
	}{
		{npcdoc.BehaviorAggressive, false, npcdoc.TemplateIntelligent, 12, 200, true},
		{npcdoc.BehaviorNeutral, false, npcdoc.TemplateIntelligent, 8, 150, false},
		{npcdoc.BehaviorPassive, false, npcdoc.TemplateIntelligent, 6, 100, false},
		{npcdoc.BehaviorPassive, true, npcdoc.TemplateTemple, 0.1, 100, false},
		{npcdoc.BehaviorInteractive, false, npcdoc.TemplateTemple, 6, 100, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.behavior), func(t *testing.T) {
			e := New()
			e.SetNpcID("wolf")
			role := e.Role()
			role.BehaviorType = tt.behavior
			role.IsStatic = tt.static
			if err := e.SetRole(role); err != nil {
				t.Fatal(err)
			}
			docs, err := e.Export()
			if err != nil {
				t.Fatal(err)
			}
			f := docs[0].Body.(npcdoc.RoleFile)
			if f.Reference != tt.reference || f.Modify.MaxSpeed != tt.speed {
				t.Errorf("reference/speed = %s/%v, want %s/%v", f.Reference, f.Modify.MaxSpeed, tt.reference, tt.speed)
			}
			if f.Modify.MaxHealth != tt.health || f.Modify.UseCombatActionEvaluator != tt.combat {
				t.Errorf("health/combat = %d/%v", f.Modify.MaxHealth, f.Modify.UseCombatActionEvaluator)
			}
		})
	}
}

func TestSetRole_Validation(t *testing.T) {
	e := New()
	e.SetNpcID("wolf")
	role := e.Role()

	bad := role
	bad.BehaviorType = "Sleepy"
	if err := e.SetRole(bad); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat for behavior, got %v", err)
	}
	bad = role
	bad.GreetRange = 0
	if err := e.SetRole(bad); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat for greet range, got %v", err)
	}
	if diff := cmp.Diff(role, e.Role()); diff != "" {
		t.Errorf("rejected role changed state:\n%s", diff)
	}
}

func TestQuestCollectionsRemove(t *testing.T) {
	c := &recordingConfirmer{answer: true}
	e := New(WithConfirmer(c))
	e.SetNpcID("guard")
	e.AddObjective()
	e.AddObjective()
	e.AddReward()

	if err := e.RemoveObjective(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if err := e.RemoveReward(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if len(e.Quest().Objectives) != 1 || len(e.Quest().Rewards) != 0 {
		t.Errorf("unexpected quest after removal: %+v", e.Quest())
	}
	if diff := cmp.Diff([]string{MsgRemoveObjective, MsgRemoveReward}, c.asked); diff != "" {
		t.Errorf("prompts (-want +got):\n%s", diff)
	}
	if err := e.RemoveReward(context.Background(), 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := e.SetObjective(0, npcdoc.Objective{Type: "ESCORT"}); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}
