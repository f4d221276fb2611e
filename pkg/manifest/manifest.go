// Package manifest describes an NPC pack declaratively in YAML and replays it
// through an editor, so packs can be rebuilt from version-controlled sources.
//
// Example:
//
//	npc_id: guard
//	role_file: roles/guard.json
//	interaction_type: QUEST
//	dialogue:
//	  text: "Halt! State your business."
//	quest:
//	  objectives:
//	    - {type: COLLECT, target: iron_bar, amount: 5}
//	  rewards:
//	    - {type: MONEY, amount: 100}
package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/npc-forge/pkg/archive"
	"github.com/jwebster45206/npc-forge/pkg/editor"
	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

type Manifest struct {
	// NpcID overrides the id derived from imported files.
	NpcID string `yaml:"npc_id"`

	// RoleFile, InteractionFile and ContentFile are JSON documents imported
	// in that order, relative to the manifest's directory.
	RoleFile        string `yaml:"role_file"`
	InteractionFile string `yaml:"interaction_file"`
	ContentFile     string `yaml:"content_file"`

	InteractionType string `yaml:"interaction_type"`

	Role        *Role        `yaml:"role"`
	Dialogue    *Dialogue    `yaml:"dialogue"`
	Quest       *Quest       `yaml:"quest"`
	Shop        *Shop        `yaml:"shop"`
	Attachments []Attachment `yaml:"attachments"`
}

// Role fields left empty keep their current value.
type Role struct {
	Appearance     string `yaml:"appearance"`
	DisplayName    string `yaml:"display_name"`
	Static         *bool  `yaml:"static"`
	Wander         *bool  `yaml:"wander"`
	GreetRange     int    `yaml:"greet_range"`
	GreetAnimation string `yaml:"greet_animation"`
	Behavior       string `yaml:"behavior"`
}

// Dialogue options, when present, replace the current option list.
type Dialogue struct {
	Title         string   `yaml:"title"`
	Text          string   `yaml:"text"`
	CompletedText string   `yaml:"completed_text"`
	Options       []Option `yaml:"options"`
}

type Option struct {
	Text string `yaml:"text"`
	Kind string `yaml:"kind"`
	// Action overrides the encoding derived from Kind.
	Action        string `yaml:"action"`
	RequiresQuest string `yaml:"requires_quest"`
}

type Quest struct {
	Title             string      `yaml:"title"`
	Description       string      `yaml:"description"`
	CompletionMessage string      `yaml:"completion_message"`
	RequiresQuest     string      `yaml:"requires_quest"`
	Objectives        []Objective `yaml:"objectives"`
	Rewards           []Reward    `yaml:"rewards"`
}

type Objective struct {
	Type   string `yaml:"type"`
	Target string `yaml:"target"`
	Amount int    `yaml:"amount"`
}

type Reward struct {
	Type   string `yaml:"type"`
	Item   string `yaml:"item"`
	Amount int    `yaml:"amount"`
}

type Shop struct {
	Title     string `yaml:"title"`
	Direction string `yaml:"direction"`
	Items     []Item `yaml:"items"`
}

// Item's Price is the price for the shop's direction; the other is derived.
type Item struct {
	Item   string `yaml:"item"`
	Amount int    `yaml:"amount"`
	Price  int    `yaml:"price"`
}

// Attachment copies a file from Source into the pack at Path (relative to Server/).
type Attachment struct {
	Path   string `yaml:"path"`
	Source string `yaml:"source"`
}

// Load reads and validates a manifest file.
func Load(filename string) (*Manifest, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %q: %w", filename, err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("manifest: %q: %w", filename, err)
	}
	return m, nil
}

// Decode parses manifest YAML, rejecting unknown keys, and validates it.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty manifest")
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest for errors that do not need the referenced files.
func (m *Manifest) Validate() error {
	var errs []error
	if m.NpcID == "" && m.RoleFile == "" && m.InteractionFile == "" {
		errs = append(errs, errors.New("one of npc_id, role_file or interaction_file is required"))
	}
	if m.InteractionType != "" {
		if _, err := npcdoc.ParseInteractionType(m.InteractionType); err != nil {
			errs = append(errs, fmt.Errorf("interaction_type: %w", err))
		}
	}
	if m.Role != nil && m.Role.Behavior != "" {
		if _, err := npcdoc.ParseBehaviorType(m.Role.Behavior); err != nil {
			errs = append(errs, fmt.Errorf("role.behavior: %w", err))
		}
	}
	if m.Dialogue != nil {
		for i, o := range m.Dialogue.Options {
			if o.Kind == "" {
				continue
			}
			if _, err := npcdoc.ParseActionKind(o.Kind); err != nil {
				errs = append(errs, fmt.Errorf("dialogue.options[%d].kind: %w", i, err))
			}
		}
	}
	if m.Shop != nil && m.Shop.Direction != "" {
		if _, err := npcdoc.ParseDirection(m.Shop.Direction); err != nil {
			errs = append(errs, fmt.Errorf("shop.direction: %w", err))
		}
	}
	for i, a := range m.Attachments {
		if a.Source == "" {
			errs = append(errs, fmt.Errorf("attachments[%d].source is required", i))
		}
		clean := path.Clean(a.Path)
		if a.Path == "" || path.IsAbs(a.Path) || clean == ".." || strings.HasPrefix(clean, "../") {
			errs = append(errs, fmt.Errorf("attachments[%d].path %q must be relative to the pack root", i, a.Path))
		}
	}
	return errors.Join(errs...)
}

// Result is a built manifest: the populated editor plus the attachment files.
type Result struct {
	Editor      *editor.Editor
	Attachments []archive.File
}

// Files returns the exported documents followed by the attachments.
func (r *Result) Files() ([]archive.File, error) {
	docs, err := r.Editor.Export()
	if err != nil {
		return nil, err
	}
	files, err := archive.FromDocuments(docs)
	if err != nil {
		return nil, err
	}
	return append(files, r.Attachments...), nil
}

// Build replays m against a fresh editor. Relative file references resolve
// against baseDir. Destructive steps are confirmed automatically. opts are
// applied after the automatic confirmer, so callers may override it.
func Build(ctx context.Context, m *Manifest, baseDir string, opts ...editor.Option) (*Result, error) {
	e := editor.New(append([]editor.Option{editor.WithConfirmer(editor.AlwaysConfirm)}, opts...)...)
	read := func(name string) ([]byte, error) {
		return os.ReadFile(resolve(baseDir, name))
	}

	if m.RoleFile != "" {
		data, err := read(m.RoleFile)
		if err != nil {
			return nil, fmt.Errorf("manifest: role_file: %w", err)
		}
		if err := e.ImportRole(data, filepath.Base(m.RoleFile)); err != nil {
			return nil, fmt.Errorf("manifest: role_file %s: %w", m.RoleFile, err)
		}
	}
	if m.NpcID != "" {
		e.SetNpcID(m.NpcID)
	}
	if m.InteractionFile != "" {
		data, err := read(m.InteractionFile)
		if err != nil {
			return nil, fmt.Errorf("manifest: interaction_file: %w", err)
		}
		if err := e.ImportInteraction(data); err != nil {
			return nil, fmt.Errorf("manifest: interaction_file %s: %w", m.InteractionFile, err)
		}
	}
	if m.InteractionType != "" {
		if err := e.SetInteractionType(ctx, npcdoc.InteractionType(m.InteractionType)); err != nil {
			return nil, fmt.Errorf("manifest: interaction_type: %w", err)
		}
	}
	if m.Role != nil {
		if err := applyRole(e, m.Role); err != nil {
			return nil, fmt.Errorf("manifest: role: %w", err)
		}
	}
	if m.Dialogue != nil {
		if err := applyDialogue(ctx, e, m.Dialogue); err != nil {
			return nil, fmt.Errorf("manifest: dialogue: %w", err)
		}
	}
	if m.ContentFile != "" {
		data, err := read(m.ContentFile)
		if err != nil {
			return nil, fmt.Errorf("manifest: content_file: %w", err)
		}
		if err := e.ImportContent(data); err != nil {
			return nil, fmt.Errorf("manifest: content_file %s: %w", m.ContentFile, err)
		}
	}
	if m.Quest != nil {
		if e.InteractionType() != npcdoc.InteractionQuest {
			return nil, fmt.Errorf("manifest: quest block needs interaction type QUEST, have %s", e.InteractionType())
		}
		if err := applyQuest(ctx, e, m.Quest); err != nil {
			return nil, fmt.Errorf("manifest: quest: %w", err)
		}
	}
	if m.Shop != nil {
		if e.InteractionType() != npcdoc.InteractionShop {
			return nil, fmt.Errorf("manifest: shop block needs interaction type SHOP, have %s", e.InteractionType())
		}
		if err := applyShop(ctx, e, m.Shop); err != nil {
			return nil, fmt.Errorf("manifest: shop: %w", err)
		}
	}
	if e.NpcID() == "" {
		return nil, fmt.Errorf("manifest: %w", editor.ErrMissingNpcID)
	}

	res := &Result{Editor: e}
	for _, a := range m.Attachments {
		data, err := read(a.Source)
		if err != nil {
			return nil, fmt.Errorf("manifest: attachment %s: %w", a.Path, err)
		}
		res.Attachments = append(res.Attachments, archive.File{Path: path.Clean(a.Path), Data: data})
	}
	return res, nil
}

func resolve(baseDir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(baseDir, filepath.FromSlash(name))
}

func applyRole(e *editor.Editor, r *Role) error {
	role := e.Role()
	if r.Appearance != "" {
		role.AppearanceID = r.Appearance
	}
	if r.DisplayName != "" {
		role.DisplayName = r.DisplayName
	}
	if r.Static != nil {
		role.IsStatic = *r.Static
	}
	if r.Wander != nil {
		role.MotionWander = *r.Wander
	}
	if r.GreetRange != 0 {
		role.GreetRange = r.GreetRange
	}
	if r.GreetAnimation != "" {
		role.GreetAnimation = r.GreetAnimation
	}
	if r.Behavior != "" {
		role.BehaviorType = npcdoc.BehaviorType(r.Behavior)
	}
	return e.SetRole(role)
}

func applyDialogue(ctx context.Context, e *editor.Editor, d *Dialogue) error {
	cur := e.Interaction()
	e.SetDialogueText(
		firstNonEmpty(d.Title, cur.Title),
		firstNonEmpty(d.Text, cur.GreetingText),
		firstNonEmpty(d.CompletedText, cur.CompletedText),
	)
	if len(d.Options) == 0 {
		return nil
	}

	for range cur.Options {
		if err := e.RemoveOption(ctx, 0); err != nil {
			return err
		}
	}
	for i, o := range d.Options {
		idx := e.AddOption()
		if err := e.UpdateOption(idx, editor.FieldText, o.Text); err != nil {
			return fmt.Errorf("options[%d]: %w", i, err)
		}
		if o.Kind != "" {
			if err := e.UpdateOption(idx, editor.FieldActionKind, o.Kind); err != nil {
				return fmt.Errorf("options[%d]: %w", i, err)
			}
		}
		if o.Action != "" {
			if err := e.UpdateOption(idx, editor.FieldAction, o.Action); err != nil {
				return fmt.Errorf("options[%d]: %w", i, err)
			}
		}
		if o.RequiresQuest != "" {
			if err := e.UpdateOption(idx, editor.FieldRequiredQuestID, o.RequiresQuest); err != nil {
				return fmt.Errorf("options[%d]: %w", i, err)
			}
		}
	}
	return nil
}

func applyQuest(ctx context.Context, e *editor.Editor, q *Quest) error {
	cur := e.Quest()
	e.SetQuestInfo(
		firstNonEmpty(q.Title, cur.Title),
		firstNonEmpty(q.Description, cur.Description),
		firstNonEmpty(q.CompletionMessage, cur.CompletionMessage),
		firstNonEmpty(q.RequiresQuest, cur.RequiredQuestID),
	)

	if len(q.Objectives) > 0 {
		for range cur.Objectives {
			if err := e.RemoveObjective(ctx, 0); err != nil {
				return err
			}
		}
		for i, o := range q.Objectives {
			obj := npcdoc.Objective{
				Type:         npcdoc.ObjectiveType(strings.ToUpper(firstNonEmpty(o.Type, string(npcdoc.ObjectiveCollect)))),
				TargetItemID: o.Target,
				Amount:       o.Amount,
			}
			if err := e.SetObjective(e.AddObjective(), obj); err != nil {
				return fmt.Errorf("objectives[%d]: %w", i, err)
			}
		}
	}

	if len(q.Rewards) > 0 {
		for range cur.Rewards {
			if err := e.RemoveReward(ctx, 0); err != nil {
				return err
			}
		}
		for i, r := range q.Rewards {
			reward := npcdoc.Reward{
				Type:   npcdoc.RewardType(strings.ToUpper(firstNonEmpty(r.Type, string(npcdoc.RewardMoney)))),
				ItemID: r.Item,
				Amount: r.Amount,
			}
			if reward.Type == npcdoc.RewardMoney && reward.Amount == 0 {
				reward.Amount = npcdoc.DefaultRewardAmount
			}
			if err := e.SetReward(e.AddReward(), reward); err != nil {
				return fmt.Errorf("rewards[%d]: %w", i, err)
			}
		}
	}
	return nil
}

func applyShop(ctx context.Context, e *editor.Editor, s *Shop) error {
	cur := e.Shop()
	dir := cur.Direction
	if s.Direction != "" {
		dir = npcdoc.Direction(s.Direction)
	}
	if err := e.SetShopInfo(firstNonEmpty(s.Title, cur.Title), dir); err != nil {
		return err
	}
	if len(s.Items) == 0 {
		return nil
	}

	for range cur.Items {
		if err := e.RemoveShopItem(ctx, 0); err != nil {
			return err
		}
	}
	for i, it := range s.Items {
		idx := e.AddShopItem()
		item := e.Shop().Items[idx]
		item.ItemID = it.Item
		if it.Amount != 0 {
			item.Amount = it.Amount
		}
		if err := e.SetShopItem(idx, item); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		if it.Price != 0 {
			if err := e.SetShopItemPrice(idx, it.Price); err != nil {
				return fmt.Errorf("items[%d]: %w", i, err)
			}
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
