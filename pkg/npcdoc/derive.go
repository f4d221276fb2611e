package npcdoc

import (
	"sort"
	"strings"

	"github.com/jwebster45206/npc-forge/pkg/ident"
)

// ActionClose is the action string of an option that just ends the dialogue.
const ActionClose = "close"

const (
	prefixAcceptQuest     = "ACCEPT_QUEST:"
	prefixCheckQuest      = "CHECK_QUEST:"
	prefixHideIfCompleted = "HIDE_IF_COMPLETED:"
	prefixShowIfCompleted = "SHOW_IF_COMPLETED:"
	prefixOpenShop        = "OPEN_SHOP:"
	actionDialog          = "DIALOG"
)

// QuestID is the quest identifier linked to npcID.
func QuestID(npcID string) string {
	return ident.Sanitize(npcID) + "_quest"
}

// ShopID is the shop identifier linked to npcID.
func ShopID(npcID string) string {
	return ident.Sanitize(npcID) + "_shop"
}

// EncodeAction returns the canonical action string for kind under npcID.
func EncodeAction(kind ActionKind, npcID string) string {
	switch kind {
	case ActionDialog:
		return actionDialog
	case ActionQuest:
		return prefixAcceptQuest + QuestID(npcID)
	case ActionCheckQuest:
		return prefixCheckQuest + QuestID(npcID)
	case ActionHideIfCompleted:
		return prefixHideIfCompleted + QuestID(npcID)
	case ActionShowIfCompleted:
		return prefixShowIfCompleted + QuestID(npcID)
	case ActionShop:
		return prefixOpenShop + ShopID(npcID)
	default:
		return ActionClose
	}
}

// IsDefaultEncodedAction reports whether action is still what EncodeAction
// produces for kind under npcID, i.e. it was never hand edited. An empty
// action counts as default for ActionNone.
func IsDefaultEncodedAction(action string, kind ActionKind, npcID string) bool {
	if kind == ActionNone && (action == "" || action == ActionClose) {
		return true
	}
	return action == EncodeAction(kind, npcID)
}

type actionPrefix struct {
	prefix string
	kind   ActionKind
}

// actionPrefixes is ordered longest first so the most specific prefix wins.
var actionPrefixes = func() []actionPrefix {
	p := []actionPrefix{
		{prefixAcceptQuest, ActionQuest},
		{prefixCheckQuest, ActionCheckQuest},
		{prefixHideIfCompleted, ActionHideIfCompleted},
		{prefixShowIfCompleted, ActionShowIfCompleted},
		{prefixOpenShop, ActionShop},
		{actionDialog, ActionDialog},
	}
	sort.SliceStable(p, func(i, j int) bool { return len(p[i].prefix) > len(p[j].prefix) })
	return p
}()

// DecodeActionKind recovers the action kind of an action string by prefix.
// Unrecognized actions and "close" decode to ActionNone.
func DecodeActionKind(action string) ActionKind {
	for _, p := range actionPrefixes {
		if strings.HasPrefix(action, p.prefix) {
			return p.kind
		}
	}
	return ActionNone
}

// ActionTarget returns the identifier after the prefix of an encoded action,
// or "" if the action carries none.
func ActionTarget(action string) string {
	if i := strings.IndexByte(action, ':'); i >= 0 {
		return action[i+1:]
	}
	return ""
}
