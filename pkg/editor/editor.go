// Package editor owns the Role, Interaction, Quest and Shop documents of one
// NPC for the duration of an editing session. It applies edits, keeps derived
// identifiers and action strings consistent with the NPC id, and imports and
// exports the documents in their on-disk shapes.
//
// An Editor is not safe for concurrent use; callers serialize operations.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jwebster45206/npc-forge/pkg/ident"
	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

var (
	// ErrInvalidFormat is returned when imported JSON or an edited value has an unsupported shape.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrMissingNpcID is returned by Export when no NPC id has been set.
	ErrMissingNpcID = errors.New("missing npc id")
	// ErrIndexOutOfRange is returned for an option, objective, reward or item index that does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrCancelled is returned when the user declines a destructive change. State is untouched.
	ErrCancelled = errors.New("cancelled by user")
)

// Confirmation prompts shown before destructive changes.
const (
	MsgChangeType      = "Changing the interaction type will replace your current dialogue options. Continue?"
	MsgRemoveOption    = "Are you sure you want to remove this option?"
	MsgRemoveObjective = "Are you sure you want to remove this objective?"
	MsgRemoveReward    = "Are you sure you want to remove this reward?"
	MsgRemoveShopItem  = "Are you sure you want to remove this item?"
)

// Confirmer asks the user to approve a destructive change.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// AlwaysConfirm approves every change. Use it for declarative callers such as manifests.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Option configures an Editor.
type Option func(*Editor)

// WithConfirmer sets the confirmation capability. Without one, destructive
// changes are declined.
func WithConfirmer(c Confirmer) Option {
	return func(e *Editor) { e.confirmer = c }
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Editor) {
		if log != nil {
			e.log = log
		}
	}
}

type Editor struct {
	npcID           string
	role            npcdoc.RoleDocument
	interactionType npcdoc.InteractionType
	interaction     npcdoc.InteractionDocument
	quest           npcdoc.QuestDocument
	shop            npcdoc.ShopDocument

	confirmer Confirmer
	log       *slog.Logger
}

// New returns an editor for a new NPC. The interaction type starts at QUEST
// with a single close option.
func New(opts ...Option) *Editor {
	e := &Editor{
		role:            npcdoc.NewRoleDocument(""),
		interactionType: npcdoc.InteractionQuest,
		interaction:     npcdoc.NewInteractionDocument(""),
		quest:           npcdoc.NewQuestDocument(""),
		shop:            npcdoc.NewShopDocument(""),
		log:             slog.New(slog.DiscardHandler),
	}
	e.quest.Title = ""
	e.shop.Title = ""
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) NpcID() string                          { return e.npcID }
func (e *Editor) InteractionType() npcdoc.InteractionType { return e.interactionType }
func (e *Editor) Role() npcdoc.RoleDocument              { return e.role }

func (e *Editor) Interaction() npcdoc.InteractionDocument {
	doc := e.interaction
	doc.Options = slices.Clone(e.interaction.Options)
	return doc
}

func (e *Editor) Quest() npcdoc.QuestDocument {
	doc := e.quest
	doc.Objectives = slices.Clone(e.quest.Objectives)
	doc.Rewards = slices.Clone(e.quest.Rewards)
	return doc
}

func (e *Editor) Shop() npcdoc.ShopDocument {
	doc := e.shop
	doc.Items = slices.Clone(e.shop.Items)
	return doc
}

// SetNpcID sanitizes and stores a new NPC id, then re-derives everything that
// still follows the old id: default titles, the appearance reference, and the
// action of every option whose action was never hand edited.
func (e *Editor) SetNpcID(raw string) {
	e.setNpcID(ident.Sanitize(raw))
}

func (e *Editor) setNpcID(newID string) {
	oldID := e.npcID
	if newID == oldID {
		return
	}

	if tracks(e.role.AppearanceID, oldID) {
		e.role.AppearanceID = newID
	}
	if tracks(e.role.DisplayName, oldID) {
		e.role.DisplayName = newID
	}
	if tracks(e.interaction.Title, oldID) {
		e.interaction.Title = newID
	}
	if tracks(e.quest.Title, npcdoc.DefaultQuestTitle(oldID)) {
		e.quest.Title = titleFor(newID, npcdoc.DefaultQuestTitle)
	}
	if tracks(e.shop.Title, npcdoc.DefaultShopTitle(oldID)) {
		e.shop.Title = titleFor(newID, npcdoc.DefaultShopTitle)
	}

	rewritten := 0
	for i, opt := range e.interaction.Options {
		if npcdoc.IsDefaultEncodedAction(opt.Action, opt.ActionKind, oldID) {
			e.interaction.Options[i].Action = npcdoc.EncodeAction(opt.ActionKind, newID)
			rewritten++
		}
	}

	e.npcID = newID
	e.log.Debug("NPC id changed", "old", oldID, "new", newID, "actions_rewritten", rewritten)
}

// tracks reports whether value still holds the default derived from the
// previous id (or was never set).
func tracks(value, oldDefault string) bool {
	return value == "" || value == oldDefault
}

func titleFor(npcID string, tmpl func(string) string) string {
	if npcID == "" {
		return ""
	}
	return tmpl(npcID)
}

// SetInteractionType switches between QUEST, SHOP and DIALOG_ONLY. The option
// list is replaced with the defaults for the new type; when that would discard
// user-authored options, the Confirmer is asked first.
func (e *Editor) SetInteractionType(ctx context.Context, t npcdoc.InteractionType) error {
	if _, err := npcdoc.ParseInteractionType(string(t)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if t == e.interactionType {
		return nil
	}
	if e.hasAuthoredOptions() {
		if err := e.confirm(ctx, MsgChangeType); err != nil {
			return err
		}
	}

	from := e.interactionType
	e.interactionType = t
	e.interaction.Options = npcdoc.DefaultOptions(t, e.npcID)
	switch t {
	case npcdoc.InteractionQuest:
		e.ensureQuest()
	case npcdoc.InteractionShop:
		e.ensureShop()
	}
	e.log.Debug("Interaction type changed", "npc_id", e.npcID, "from", from, "to", t)
	return nil
}

// hasAuthoredOptions reports whether the options differ from what a fresh
// editor or the current type's defaults would hold.
func (e *Editor) hasAuthoredOptions() bool {
	opts := e.interaction.Options
	switch {
	case len(opts) == 0:
		return false
	case len(opts) == 1 && isPristineClose(opts[0]):
		return false
	case slices.Equal(opts, npcdoc.DefaultOptions(e.interactionType, e.npcID)):
		return false
	}
	return true
}

func isPristineClose(o npcdoc.DialogueOption) bool {
	return o.ActionKind == npcdoc.ActionNone &&
		(o.Text == "" || o.Text == npcdoc.DefaultCloseText) &&
		(o.Action == "" || o.Action == npcdoc.ActionClose) &&
		o.RequiredQuestID == ""
}

func (e *Editor) confirm(ctx context.Context, message string) error {
	if e.confirmer == nil {
		return fmt.Errorf("%w: %s", ErrCancelled, message)
	}
	ok, err := e.confirmer.Confirm(ctx, message)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrCancelled, message)
	}
	return nil
}

func (e *Editor) ensureQuest() {
	if e.quest.Title == "" {
		e.quest.Title = titleFor(e.npcID, npcdoc.DefaultQuestTitle)
	}
	if e.quest.Objectives == nil {
		e.quest.Objectives = []npcdoc.Objective{}
	}
	if e.quest.Rewards == nil {
		e.quest.Rewards = []npcdoc.Reward{}
	}
}

func (e *Editor) ensureShop() {
	if e.shop.Title == "" {
		e.shop.Title = titleFor(e.npcID, npcdoc.DefaultShopTitle)
	}
	if e.shop.Direction == "" {
		e.shop.Direction = npcdoc.DirectionBuy
	}
	if e.shop.Items == nil {
		e.shop.Items = []npcdoc.ShopItem{}
	}
}

func checkIndex(index, n int, what string) error {
	if index < 0 || index >= n {
		return fmt.Errorf("%w: %s %d (have %d)", ErrIndexOutOfRange, what, index, n)
	}
	return nil
}

// ArchiveName is the download name of the exported content pack.
func (e *Editor) ArchiveName() string {
	return "AvalonInteractions_" + e.npcID + ".zip"
}
