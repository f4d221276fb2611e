package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/jwebster45206/npc-forge/pkg/ident"
	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <pack.zip | pack-dir>...\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, target := range os.Args[1:] {
		fmt.Printf("Validating %s...\n", target)
		if err := validateTarget(target); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Println("Content pack is valid!")
	}
	if failed {
		os.Exit(1)
	}
}

// validateTarget opens a zip or a directory and validates its NPC tree.
// Either may hold the files under a Server/ root.
func validateTarget(target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	var fsys fs.FS
	if info.IsDir() {
		fsys = os.DirFS(target)
	} else {
		zr, err := zip.OpenReader(target)
		if err != nil {
			return fmt.Errorf("failed to open archive %s: %w", target, err)
		}
		defer zr.Close()
		fsys = zr
	}

	if _, err := fs.Stat(fsys, "Server"); err == nil {
		if fsys, err = fs.Sub(fsys, "Server"); err != nil {
			return err
		}
	}

	v := &PackValidator{fsys: fsys}
	return v.Validate()
}

// PackValidator checks every NPC document in a pack: strict JSON shape,
// identifier format and the links between roles, interactions, quests
// and shops.
type PackValidator struct {
	fsys   fs.FS
	errors []string

	roles  map[string]bool
	quests map[string]bool
	shops  map[string]bool
}

func (v *PackValidator) Validate() error {
	v.errors = nil
	v.roles = make(map[string]bool)
	v.quests = make(map[string]bool)
	v.shops = make(map[string]bool)

	roleFiles, err := v.list(npcdoc.RolesDir)
	if err != nil {
		return err
	}
	if len(roleFiles) == 0 {
		return fmt.Errorf("no roles found under %s", npcdoc.RolesDir)
	}

	// Quests and shops first so interactions can be checked against them.
	for _, name := range roleFiles {
		v.validateRole(name)
	}
	questFiles, err := v.list(npcdoc.QuestsDir)
	if err != nil {
		return err
	}
	for _, name := range questFiles {
		v.validateQuest(name)
	}
	shopFiles, err := v.list(npcdoc.ShopsDir)
	if err != nil {
		return err
	}
	for _, name := range shopFiles {
		v.validateShop(name)
	}
	interactionFiles, err := v.list(npcdoc.InteractionsDir)
	if err != nil {
		return err
	}
	for _, name := range interactionFiles {
		v.validateInteraction(name)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

// list returns the .json files directly under dir. A missing dir is empty.
func (v *PackValidator) list(dir string) ([]string, error) {
	entries, err := fs.ReadDir(v.fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), ".json") {
			v.addError(fmt.Sprintf("%s/%s is not a .json file", dir, e.Name()))
			continue
		}
		names = append(names, path.Join(dir, e.Name()))
	}
	return names, nil
}

// decode reads name into out, rejecting unknown fields and trailing data.
func (v *PackValidator) decode(name string, out any) bool {
	data, err := fs.ReadFile(v.fsys, name)
	if err != nil {
		v.addError(fmt.Sprintf("%s: %v", name, err))
		return false
	}
	if !json.Valid(data) {
		v.addError(fmt.Sprintf("%s contains invalid JSON", name))
		return false
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		v.addError(fmt.Sprintf("%s failed strict JSON unmarshaling: %v", name, err))
		return false
	}
	if _, err := decoder.Token(); err != io.EOF {
		v.addError(fmt.Sprintf("%s has data after the document", name))
		return false
	}
	return true
}

func stem(name string) string {
	return strings.TrimSuffix(path.Base(name), ".json")
}

func (v *PackValidator) validateRole(name string) {
	npcID := stem(name)
	v.validateIDFormat(name, "role file name", npcID)
	v.roles[npcID] = true

	var r npcdoc.RoleFile
	if !v.decode(name, &r) {
		return
	}
	if r.Type != "Variant" {
		v.addError(fmt.Sprintf("%s: Type must be Variant, got %q", name, r.Type))
	}
	if r.Reference != npcdoc.TemplateTemple && r.Reference != npcdoc.TemplateIntelligent {
		v.addError(fmt.Sprintf("%s: unknown Reference %q", name, r.Reference))
	}
	if r.Modify.Appearance == "" {
		v.addError(fmt.Sprintf("%s: Modify.Appearance is empty", name))
	}
	if r.Modify.GreetRange < 1 {
		v.addError(fmt.Sprintf("%s: Modify.GreetRange must be at least 1", name))
	}
	if r.Modify.MaxSpeed <= 0 {
		v.addError(fmt.Sprintf("%s: Modify.MaxSpeed must be positive", name))
	}
}

func (v *PackValidator) validateQuest(name string) {
	var q npcdoc.QuestFile
	if !v.decode(name, &q) {
		return
	}
	if q.ID != stem(name) {
		v.addError(fmt.Sprintf("%s: id %q does not match the file name", name, q.ID))
	}
	v.quests[q.ID] = true
	if q.Title == "" {
		v.addError(fmt.Sprintf("%s: title is empty", name))
	}
	v.validateIDFormat(name, "requiredQuestId", q.RequiredQuestID)
	if len(q.Objectives) == 0 {
		v.addError(fmt.Sprintf("%s: quest has no objectives", name))
	}
	for i, o := range q.Objectives {
		field := fmt.Sprintf("objectives[%d]", i)
		if _, err := npcdoc.ParseObjectiveType(o.Type); err != nil {
			v.addError(fmt.Sprintf("%s: %s: %v", name, field, err))
		}
		if o.Target == "" {
			v.addError(fmt.Sprintf("%s: %s.target is empty", name, field))
		}
		v.validateIDFormat(name, field+".target", o.Target)
		if o.Amount < 1 {
			v.addError(fmt.Sprintf("%s: %s.amount must be at least 1", name, field))
		}
	}
	for i, r := range q.Rewards {
		field := fmt.Sprintf("rewards[%d]", i)
		rt, err := npcdoc.ParseRewardType(r.Type)
		if err != nil {
			v.addError(fmt.Sprintf("%s: %s: %v", name, field, err))
		}
		if rt == npcdoc.RewardItem && r.ID == "" {
			v.addError(fmt.Sprintf("%s: %s is an ITEM reward without an id", name, field))
		}
		v.validateIDFormat(name, field+".id", r.ID)
		if r.Amount < 1 {
			v.addError(fmt.Sprintf("%s: %s.amount must be at least 1", name, field))
		}
	}
}

func (v *PackValidator) validateShop(name string) {
	var s npcdoc.ShopFile
	if !v.decode(name, &s) {
		return
	}
	if s.ID != stem(name) {
		v.addError(fmt.Sprintf("%s: id %q does not match the file name", name, s.ID))
	}
	v.shops[s.ID] = true
	if s.Direction != "" {
		if _, err := npcdoc.ParseDirection(s.Direction); err != nil {
			v.addError(fmt.Sprintf("%s: %v", name, err))
		}
	}
	for i, item := range s.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.ItemID == "" {
			v.addError(fmt.Sprintf("%s: %s.itemId is empty", name, field))
		}
		v.validateIDFormat(name, field+".itemId", item.ItemID)
		if item.Amount < 1 {
			v.addError(fmt.Sprintf("%s: %s.amount must be at least 1", name, field))
		}
		if item.BuyPrice < 0 || item.SellPrice < 0 {
			v.addError(fmt.Sprintf("%s: %s has a negative price", name, field))
		}
	}
}

func (v *PackValidator) validateInteraction(name string) {
	npcID, ok := strings.CutSuffix(stem(name), "_interactions")
	if !ok {
		v.addError(fmt.Sprintf("%s: file name must end in _interactions.json", name))
		return
	}
	if !v.roles[npcID] {
		v.addError(fmt.Sprintf("%s: no role %s for this interaction", name, npcdoc.RolePath(npcID)))
	}

	var in npcdoc.InteractionFile
	if !v.decode(name, &in) {
		return
	}

	switch in.Type {
	case npcdoc.InteractionTagQuest:
		if in.QuestID == "" {
			v.addError(fmt.Sprintf("%s: QUEST interaction without questId", name))
		} else if !v.quests[in.QuestID] {
			v.addError(fmt.Sprintf("%s: questId %q has no quest file", name, in.QuestID))
		}
	case npcdoc.InteractionTagShop:
		if in.ShopID == "" {
			v.addError(fmt.Sprintf("%s: SHOP interaction without shopId", name))
		} else if !v.shops[in.ShopID] {
			v.addError(fmt.Sprintf("%s: shopId %q has no shop file", name, in.ShopID))
		}
	case npcdoc.InteractionTagDialog:
	default:
		v.addError(fmt.Sprintf("%s: unknown type %q", name, in.Type))
	}
	if in.CompletedText != nil && in.Type != npcdoc.InteractionTagQuest {
		v.addError(fmt.Sprintf("%s: completedText is only valid for QUEST interactions", name))
	}

	if len(in.Options) == 0 {
		v.addError(fmt.Sprintf("%s: interaction has no options", name))
	}
	for i, o := range in.Options {
		v.validateOption(name, i, o)
	}
}

func (v *PackValidator) validateOption(name string, i int, o npcdoc.InteractionOption) {
	field := fmt.Sprintf("options[%d]", i)
	if o.Action == "" {
		v.addError(fmt.Sprintf("%s: %s.action is empty", name, field))
		return
	}
	v.validateIDFormat(name, field+".requiredQuestId", o.RequiredQuestID)

	target := npcdoc.ActionTarget(o.Action)
	switch npcdoc.DecodeActionKind(o.Action) {
	case npcdoc.ActionQuest, npcdoc.ActionCheckQuest:
		if !v.quests[target] {
			v.addError(fmt.Sprintf("%s: %s action %q references a quest not in this pack", name, field, o.Action))
		}
	case npcdoc.ActionShop:
		if !v.shops[target] {
			v.addError(fmt.Sprintf("%s: %s action %q references a shop not in this pack", name, field, o.Action))
		}
	case npcdoc.ActionHideIfCompleted, npcdoc.ActionShowIfCompleted:
		// These may name quests from other packs.
		v.validateIDFormat(name, field+".action target", target)
	}
}

// validateIDFormat flags ids that are not sanitized or still carry the
// namespace prefix. Empty ids are skipped.
func (v *PackValidator) validateIDFormat(name, fieldName, id string) {
	if id == "" {
		return
	}
	if strings.HasPrefix(id, ident.NamespacePrefix) {
		v.addError(fmt.Sprintf("%s: %s %q still carries the %q prefix", name, fieldName, id, ident.NamespacePrefix))
		return
	}
	if !ident.IsValid(id) {
		v.addError(fmt.Sprintf("%s: %s %q should be lowercase snake_case", name, fieldName, id))
	}
}

func (v *PackValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}
