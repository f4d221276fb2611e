// Command console previews the content pack a manifest produces: the
// dialogue as a player sees it and every exported JSON document.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/npc-forge/pkg/archive"
	"github.com/jwebster45206/npc-forge/pkg/editor"
	"github.com/jwebster45206/npc-forge/pkg/manifest"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <manifest.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	pack, err := loadPack(context.Background(), os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewPreviewUI(os.Args[1], pack),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// Pack is a built manifest ready to preview.
type Pack struct {
	Editor *editor.Editor
	Files  []archive.File
}

func loadPack(ctx context.Context, manifestPath string) (*Pack, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	res, err := manifest.Build(ctx, m, filepath.Dir(manifestPath))
	if err != nil {
		return nil, err
	}
	files, err := res.Files()
	if err != nil {
		return nil, err
	}
	return &Pack{Editor: res.Editor, Files: files}, nil
}

// writePack saves the pack's zip into dir and returns its path.
func writePack(ctx context.Context, pack *Pack, dir string) (string, error) {
	data, err := archive.Bytes(ctx, archive.NewZip(), pack.Files)
	if err != nil {
		return "", err
	}
	name := filepath.Join(dir, pack.Editor.ArchiveName())
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return name, nil
}
