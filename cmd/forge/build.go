package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jwebster45206/npc-forge/pkg/archive"
	"github.com/jwebster45206/npc-forge/pkg/catalog"
	"github.com/jwebster45206/npc-forge/pkg/editor"
	"github.com/jwebster45206/npc-forge/pkg/manifest"
	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

var (
	outDir   string
	writeDir bool
	watch    bool
	jobs     int
)

var buildCmd = &cobra.Command{
	Use:   "build <manifest.yaml>...",
	Short: "Build a content pack from each manifest",
	Long: `Build replays each manifest against a fresh editor and writes
AvalonInteractions_<npcId>.zip to the output directory. With --watch the
manifests are rebuilt whenever they change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		b := &builder{
			outDir:  outDir,
			tree:    writeDir,
			catalog: catalog.LoadOrEmpty(ctx, catalogSource, slog.Default()),
			log:     slog.Default(),
		}
		if err := b.buildAll(ctx, args, jobs); err != nil && !watch {
			return err
		}
		if !watch {
			return nil
		}
		return watchManifests(ctx, args, b)
	},
}

func init() {
	buildCmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	buildCmd.Flags().BoolVar(&writeDir, "tree", false, "Also write the unpacked Server/ tree")
	buildCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild manifests when they change")
	buildCmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "Manifests built concurrently")
}

type builder struct {
	outDir  string
	tree    bool
	catalog *catalog.Catalog
	log     *slog.Logger
}

// buildAll builds every manifest with at most limit running at once. Each
// manifest gets its own editor, so builds share nothing.
func (b *builder) buildAll(ctx context.Context, paths []string, limit int) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, path := range paths {
		g.Go(func() error {
			_, err := b.build(gctx, path)
			return err
		})
	}
	return g.Wait()
}

// build writes the pack for one manifest and returns the archive path.
func (b *builder) build(ctx context.Context, path string) (string, error) {
	log := b.log.With("manifest", path)

	m, err := manifest.Load(path)
	if err != nil {
		log.Error("Invalid manifest", "error", err)
		return "", err
	}
	res, err := manifest.Build(ctx, m, filepath.Dir(path), editor.WithLogger(log))
	if err != nil {
		log.Error("Build failed", "error", err)
		return "", err
	}
	files, err := res.Files()
	if err != nil {
		log.Error("Export failed", "error", err)
		return "", fmt.Errorf("%s: %w", path, err)
	}

	for _, id := range unknownItems(res.Editor, b.catalog) {
		log.Warn("Item not in catalog", "item_id", id)
	}

	name := filepath.Join(b.outDir, res.Editor.ArchiveName())
	if err := writeArchive(ctx, name, files); err != nil {
		log.Error("Failed to write pack", "error", err)
		return "", err
	}
	if b.tree {
		dir := strings.TrimSuffix(name, filepath.Ext(name))
		if err := archive.WriteTree(dir, files); err != nil {
			return "", err
		}
	}

	log.Info("Pack written", "npc_id", res.Editor.NpcID(), "path", name, "files", len(files))
	return name, nil
}

// writeArchive packages into a temp file and renames it over name, so a
// watcher never sees a half-written zip.
func writeArchive(ctx context.Context, name string, files []archive.File) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), ".forge-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create temp archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := archive.NewZip().Package(ctx, tmp, files); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	return nil
}

// unknownItems lists item ids referenced by the editor's quest or shop that
// the catalog does not know. An empty catalog checks nothing.
func unknownItems(e *editor.Editor, cat *catalog.Catalog) []string {
	if cat == nil || cat.Len() == 0 {
		return nil
	}
	var ids []string
	switch e.InteractionType() {
	case npcdoc.InteractionQuest:
		q := e.Quest()
		for _, o := range q.Objectives {
			if o.Type == npcdoc.ObjectiveCollect {
				ids = append(ids, o.TargetItemID)
			}
		}
		for _, r := range q.Rewards {
			ids = append(ids, r.ItemID)
		}
	case npcdoc.InteractionShop:
		for _, item := range e.Shop().Items {
			ids = append(ids, item.ItemID)
		}
	}

	var unknown []string
	for _, id := range ids {
		if id != "" && !cat.Contains(id) {
			unknown = append(unknown, id)
		}
	}
	return unknown
}
