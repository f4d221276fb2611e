package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/npc-forge/pkg/archive"
	"github.com/jwebster45206/npc-forge/pkg/editor"
	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

func testPack(t *testing.T, npcID string) *Pack {
	t.Helper()
	e := editor.New(editor.WithConfirmer(editor.AlwaysConfirm))
	e.SetNpcID(npcID)
	e.SetDialogueText("The Gate", "Halt! State your business in the city of Avalon before you pass.", "Thanks for the iron.")
	i := e.AddOption()
	_ = e.UpdateOption(i, editor.FieldText, "I brought iron.")
	_ = e.UpdateOption(i, editor.FieldActionKind, string(npcdoc.ActionCheckQuest))

	docs, err := e.Export()
	if err != nil {
		t.Fatal(err)
	}
	files, err := archive.FromDocuments(docs)
	if err != nil {
		t.Fatal(err)
	}
	files = append(files, archive.File{Path: "Common/Icons/guard.png", Data: []byte{0x89, 'P', 'N', 'G', 0xff, 0xfe}})
	return &Pack{Editor: e, Files: files}
}

func sized(t *testing.T, m PreviewUI) PreviewUI {
	t.Helper()
	model, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return model.(PreviewUI)
}

func key(m PreviewUI, k tea.KeyMsg) (PreviewUI, tea.Cmd) {
	model, cmd := m.Update(k)
	return model.(PreviewUI), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRenderDialogue(t *testing.T) {
	pack := testPack(t, "guard")
	out := renderDialogue(pack.Editor, 30)

	for _, want := range []string{
		"The Gate",
		"QUEST interaction",
		"1. ",
		"close",
		"I brought iron.",
		"CHECK_QUEST:guard_quest",
		"Thanks for the iron.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dialogue preview missing %q:\n%s", want, out)
		}
	}
	// Greeting wraps to the width.
	if strings.Contains(out, "Halt! State your business in the city") {
		t.Error("greeting was not wrapped")
	}
}

func TestRenderDialogue_MissingNpcID(t *testing.T) {
	out := renderDialogue(editor.New(), 40)
	if !strings.Contains(out, editor.ErrMissingNpcID.Error()) {
		t.Errorf("expected missing id error, got %q", out)
	}
}

func TestPreviewUI_StartsOnInteraction(t *testing.T) {
	pack := testPack(t, "guard")
	m := NewPreviewUI("guard.yaml", pack)
	if got := pack.Files[m.selected].Path; got != "NPC/Interactions/guard_interactions.json" {
		t.Errorf("initial selection = %s", got)
	}
}

func TestPreviewUI_Navigation(t *testing.T) {
	m := sized(t, NewPreviewUI("guard.yaml", testPack(t, "guard")))
	n := len(m.pack.Files)
	start := m.selected

	m, _ = key(m, runes("j"))
	if m.selected != (start+1)%n {
		t.Errorf("j: selected = %d", m.selected)
	}
	m, _ = key(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.selected != start {
		t.Errorf("up: selected = %d", m.selected)
	}

	// Wraps around.
	for range n {
		m, _ = key(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.selected != start {
		t.Errorf("after a full cycle selected = %d, want %d", m.selected, start)
	}

	// Binary attachment.
	m.selected = n - 2
	m, _ = key(m, runes("j"))
	if !strings.Contains(m.viewport.View(), "binary file") {
		t.Errorf("binary attachment should not be dumped:\n%s", m.viewport.View())
	}
}

func TestPreviewUI_ToggleJSON(t *testing.T) {
	m := sized(t, NewPreviewUI("guard.yaml", testPack(t, "guard")))
	if strings.Contains(m.viewport.View(), `"options"`) {
		t.Fatal("dialogue view should not show JSON")
	}
	m, _ = key(m, runes("v"))
	if !strings.Contains(m.viewport.View(), `"options"`) {
		t.Errorf("json view expected:\n%s", m.viewport.View())
	}
}

func TestPreviewUI_Copy(t *testing.T) {
	m := sized(t, NewPreviewUI("guard.yaml", testPack(t, "guard")))
	var copied string
	m.copy = func(s string) error { copied = s; return nil }

	m, _ = key(m, runes("c"))
	if !strings.Contains(copied, `"questId": "guard_quest"`) {
		t.Errorf("copied %q", copied)
	}
	if !strings.HasPrefix(m.status, "Copied ") {
		t.Errorf("status = %q", m.status)
	}

	m.copy = func(string) error { return errors.New("no clipboard") }
	m, _ = key(m, runes("c"))
	if m.err == nil {
		t.Error("expected copy error to surface")
	}
}

func TestPreviewUI_WriteZip(t *testing.T) {
	m := sized(t, NewPreviewUI("guard.yaml", testPack(t, "guard")))
	m.outDir = t.TempDir()

	m, cmd := key(m, runes("w"))
	if cmd == nil {
		t.Fatal("expected a write command")
	}
	model, _ := m.Update(cmd())
	m = model.(PreviewUI)
	if m.err != nil {
		t.Fatalf("write failed: %v", m.err)
	}
	if _, err := os.Stat(filepath.Join(m.outDir, "AvalonInteractions_guard.zip")); err != nil {
		t.Errorf("zip not written: %v", err)
	}
}

func TestPreviewUI_Reload(t *testing.T) {
	m := sized(t, NewPreviewUI("guard.yaml", testPack(t, "guard")))
	m.rebuild = func(context.Context, string) (*Pack, error) {
		return testPack(t, "captain"), nil
	}

	m, cmd := key(m, runes("r"))
	model, _ := m.Update(cmd())
	m = model.(PreviewUI)
	if m.pack.Editor.NpcID() != "captain" {
		t.Errorf("pack not replaced: %s", m.pack.Editor.NpcID())
	}

	m.rebuild = func(context.Context, string) (*Pack, error) {
		return nil, errors.New("bad manifest")
	}
	m, cmd = key(m, runes("r"))
	model, _ = m.Update(cmd())
	m = model.(PreviewUI)
	if m.err == nil || m.pack.Editor.NpcID() != "captain" {
		t.Error("failed rebuild should keep the old pack and show the error")
	}
}

func TestPreviewUI_QuitModal(t *testing.T) {
	m := sized(t, NewPreviewUI("guard.yaml", testPack(t, "guard")))
	m, _ = key(m, runes("q"))
	if !m.showQuitModal {
		t.Fatal("q should ask before quitting")
	}
	m, _ = key(m, runes("n"))
	if m.showQuitModal {
		t.Error("n should dismiss the modal")
	}
	m, _ = key(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	_, cmd := key(m, runes("y"))
	if cmd == nil {
		t.Fatal("y should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
