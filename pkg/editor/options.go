package editor

import (
	"context"
	"fmt"

	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

// OptionField names an editable field of a dialogue option.
type OptionField string

const (
	FieldText            OptionField = "text"
	FieldActionKind      OptionField = "actionKind"
	FieldAction          OptionField = "action"
	FieldRequiredQuestID OptionField = "requiredQuestId"
)

// UpdateOption sets one field of the option at index. Setting the action
// kind always re-encodes the action, discarding any hand-edited value;
// setting the action directly stores it verbatim.
func (e *Editor) UpdateOption(index int, field OptionField, value string) error {
	if err := checkIndex(index, len(e.interaction.Options), "option"); err != nil {
		return err
	}
	opt := e.interaction.Options[index]

	switch field {
	case FieldText:
		opt.Text = value
	case FieldAction:
		opt.Action = value
	case FieldRequiredQuestID:
		opt.RequiredQuestID = value
	case FieldActionKind:
		kind, err := npcdoc.ParseActionKind(value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		opt.ActionKind = kind
		opt.Action = npcdoc.EncodeAction(kind, e.npcID)
		if kind.QuestRelated() {
			e.ensureQuest()
		} else if kind == npcdoc.ActionShop {
			e.ensureShop()
		}
	default:
		return fmt.Errorf("%w: unknown option field %q", ErrInvalidFormat, field)
	}

	e.interaction.Options[index] = opt
	return nil
}

// AddOption appends a close option with empty text.
func (e *Editor) AddOption() int {
	e.interaction.Options = append(e.interaction.Options, npcdoc.DialogueOption{
		ActionKind: npcdoc.ActionNone,
		Action:     npcdoc.ActionClose,
	})
	return len(e.interaction.Options) - 1
}

// RemoveOption deletes the option at index after confirmation.
func (e *Editor) RemoveOption(ctx context.Context, index int) error {
	if err := checkIndex(index, len(e.interaction.Options), "option"); err != nil {
		return err
	}
	if err := e.confirm(ctx, MsgRemoveOption); err != nil {
		return err
	}
	e.interaction.Options = removeAt(e.interaction.Options, index)
	return nil
}

// SetDialogueText replaces the dialogue title, greeting and quest-completed text.
func (e *Editor) SetDialogueText(title, greeting, completed string) {
	e.interaction.Title = title
	e.interaction.GreetingText = greeting
	e.interaction.CompletedText = completed
}

func removeAt[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
