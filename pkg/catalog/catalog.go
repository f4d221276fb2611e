// Package catalog is a read-only index of game item ids grouped by category.
// It backs the item-id suggestions offered while editing objectives, rewards
// and shop items; export never depends on it.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/jwebster45206/npc-forge/pkg/ident"
	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

// maxCatalogBytes caps how much of a remote catalog is read.
const maxCatalogBytes = 8 << 20

type Catalog struct {
	entries    []npcdoc.CatalogEntry // sorted by normalized ID
	categories []string
}

// Empty returns a catalog with no entries. Searches return nothing.
func Empty() *Catalog {
	return &Catalog{}
}

// Load parses a JSON object mapping category names to item id lists.
// Ids that differ only in case or namespace prefix are duplicates; the first
// one in sorted category order is kept.
func Load(r io.Reader) (*Catalog, error) {
	var raw map[string][]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse item catalog: %w", err)
	}

	c := &Catalog{categories: make([]string, 0, len(raw))}
	for category := range raw {
		c.categories = append(c.categories, category)
	}
	slices.Sort(c.categories)

	seen := make(map[string]bool)
	for _, category := range c.categories {
		for _, id := range raw[category] {
			id = strings.TrimSpace(id)
			key := normalize(id)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			c.entries = append(c.entries, npcdoc.CatalogEntry{ID: id, Category: category})
		}
	}
	slices.SortFunc(c.entries, func(a, b npcdoc.CatalogEntry) int {
		if n := strings.Compare(normalize(a.ID), normalize(b.ID)); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})
	return c, nil
}

// Fetch loads a catalog from a file path or an http(s) URL. A nil client
// uses http.DefaultClient.
func Fetch(ctx context.Context, source string, client *http.Client) (*Catalog, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open item catalog: %w", err)
		}
		defer f.Close()
		return Load(f)
	}

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item catalog: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch item catalog: status %d", resp.StatusCode)
	}
	return Load(io.LimitReader(resp.Body, maxCatalogBytes))
}

// LoadOrEmpty fetches the catalog once. An empty source or any failure yields
// an empty catalog; failures are logged as warnings, never returned.
func LoadOrEmpty(ctx context.Context, source string, log *slog.Logger) *Catalog {
	if source == "" {
		return Empty()
	}
	c, err := Fetch(ctx, source, nil)
	if err != nil {
		if log != nil {
			log.Warn("Item catalog unavailable, search disabled", "source", source, "error", err)
		}
		return Empty()
	}
	if log != nil {
		log.Info("Item catalog loaded", "source", source, "items", c.Len(), "categories", len(c.categories))
	}
	return c
}

// Search returns up to limit entries whose id contains query, ignoring case
// and the namespace prefix. Prefix matches come first, then other substring
// matches; each group is ordered by id. A limit <= 0 means no limit.
func (c *Catalog) Search(query string, limit int) []npcdoc.CatalogEntry {
	q := normalize(query)
	if q == "" || c == nil {
		return nil
	}

	var prefix, substring []npcdoc.CatalogEntry
	for _, e := range c.entries {
		id := normalize(e.ID)
		switch {
		case strings.HasPrefix(id, q):
			prefix = append(prefix, e)
		case strings.Contains(id, q):
			substring = append(substring, e)
		}
	}
	out := append(prefix, substring...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func normalize(s string) string {
	return ident.StripNamespacePrefix(strings.ToLower(strings.TrimSpace(s)))
}

// Categories returns the category names in sorted order.
func (c *Catalog) Categories() []string {
	return slices.Clone(c.categories)
}

// Len is the number of distinct item ids.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Contains reports whether id names a catalog item. Case and the namespace
// prefix are ignored. A nil or empty catalog contains nothing.
func (c *Catalog) Contains(id string) bool {
	if c == nil {
		return false
	}
	n := normalize(id)
	if n == "" {
		return false
	}
	_, found := slices.BinarySearchFunc(c.entries, n, func(e npcdoc.CatalogEntry, target string) int {
		return strings.Compare(normalize(e.ID), target)
	})
	return found
}
