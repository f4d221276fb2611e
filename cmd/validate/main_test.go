package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jwebster45206/npc-forge/pkg/archive"
	"github.com/jwebster45206/npc-forge/pkg/editor"
	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

// guardPack exports a small quest NPC through the editor.
func guardPack(t *testing.T) []archive.File {
	t.Helper()
	e := editor.New(editor.WithConfirmer(editor.AlwaysConfirm))
	e.SetNpcID("guard")
	i := e.AddObjective()
	if err := e.SetObjective(i, npcdoc.Objective{Type: npcdoc.ObjectiveCollect, TargetItemID: "hytale:iron_bar", Amount: 5}); err != nil {
		t.Fatal(err)
	}
	e.AddReward()
	opt := e.AddOption()
	if err := e.UpdateOption(opt, editor.FieldActionKind, string(npcdoc.ActionQuest)); err != nil {
		t.Fatal(err)
	}

	docs, err := e.Export()
	if err != nil {
		t.Fatal(err)
	}
	files, err := archive.FromDocuments(docs)
	if err != nil {
		t.Fatal(err)
	}
	return files
}

func TestValidateTarget_ExportedPack(t *testing.T) {
	files := guardPack(t)

	dir := t.TempDir()
	if err := archive.WriteTree(dir, files); err != nil {
		t.Fatal(err)
	}
	if err := validateTarget(dir); err != nil {
		t.Errorf("exported tree should be valid: %v", err)
	}

	data, err := archive.Bytes(context.Background(), archive.NewZip(), files)
	if err != nil {
		t.Fatal(err)
	}
	zipPath := filepath.Join(t.TempDir(), "AvalonInteractions_guard.zip")
	if err := os.WriteFile(zipPath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := validateTarget(zipPath); err != nil {
		t.Errorf("exported zip should be valid: %v", err)
	}
}

func TestValidateTarget_Problems(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(files map[string]string)
		wantErr string
	}{
		{
			name: "unknown field",
			mutate: func(f map[string]string) {
				f["NPC/Roles/guard.json"] = `{"Type":"Variant","Reference":"Template_Temple","Modify":{"Appearance":"guard","GreetRange":5,"MaxSpeed":1,"Hat":"yes"}}`
			},
			wantErr: "strict JSON",
		},
		{
			name: "missing quest file",
			mutate: func(f map[string]string) {
				delete(f, "NPC/Quests/guard_quest.json")
			},
			wantErr: "has no quest file",
		},
		{
			name: "quest id mismatch",
			mutate: func(f map[string]string) {
				f["NPC/Quests/guard_quest.json"] = strings.Replace(f["NPC/Quests/guard_quest.json"], `"guard_quest"`, `"other_quest"`, 1)
			},
			wantErr: "does not match the file name",
		},
		{
			name: "prefixed item id",
			mutate: func(f map[string]string) {
				f["NPC/Quests/guard_quest.json"] = strings.Replace(f["NPC/Quests/guard_quest.json"], `"iron_bar"`, `"hytale:iron_bar"`, 1)
			},
			wantErr: "prefix",
		},
		{
			name: "interaction without role",
			mutate: func(f map[string]string) {
				f["NPC/Roles/captain.json"] = f["NPC/Roles/guard.json"]
				delete(f, "NPC/Roles/guard.json")
			},
			wantErr: "no role",
		},
		{
			name: "trailing data",
			mutate: func(f map[string]string) {
				f["NPC/Roles/guard.json"] += "{}"
			},
			wantErr: "invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contents := make(map[string]string)
			for _, f := range guardPack(t) {
				contents[f.Path] = string(f.Data)
			}
			tt.mutate(contents)

			dir := t.TempDir()
			var files []archive.File
			for p, body := range contents {
				files = append(files, archive.File{Path: p, Data: []byte(body)})
			}
			if err := archive.WriteTree(dir, files); err != nil {
				t.Fatal(err)
			}

			err := validateTarget(dir)
			if err == nil {
				t.Fatal("expected validation to fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTarget_NoRoles(t *testing.T) {
	if err := validateTarget(t.TempDir()); err == nil || !strings.Contains(err.Error(), "no roles") {
		t.Errorf("expected no roles error, got %v", err)
	}
}
