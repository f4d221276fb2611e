// Package archive packages exported NPC documents into a content pack: a zip
// whose entries live under the Server/ directory the game server expects.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jwebster45206/npc-forge/pkg/editor"
)

// ServerRoot is the top-level directory of every pack entry.
const ServerRoot = "Server"

// File is one named buffer, its Path relative to ServerRoot.
type File struct {
	Path string
	Data []byte
}

// Packager writes a set of files as a single container.
type Packager interface {
	Package(ctx context.Context, w io.Writer, files []File) error
}

// Zip packs files into a deflate-compressed zip under Root.
type Zip struct {
	Root string
	// Modified stamps every entry; zero means the zip epoch, which keeps
	// repeated builds byte-identical.
	Modified time.Time
}

var _ Packager = (*Zip)(nil)

func NewZip() *Zip {
	return &Zip{Root: ServerRoot}
}

func (z *Zip) Package(ctx context.Context, w io.Writer, files []File) error {
	if err := checkPaths(files); err != nil {
		return err
	}
	modified := z.Modified
	if modified.IsZero() {
		modified = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	zw := zip.NewWriter(w)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("packaging cancelled: %w", err)
		}
		hdr := &zip.FileHeader{
			Name:     path.Join(z.Root, f.Path),
			Method:   zip.Deflate,
			Modified: modified,
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("failed to create zip entry %s: %w", hdr.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("failed to write zip entry %s: %w", hdr.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize zip: %w", err)
	}
	return nil
}

// Bytes packages files into memory.
func Bytes(ctx context.Context, p Packager, files []File) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Package(ctx, &buf, files); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeJSON renders v the way pack files are written: four-space indent,
// no HTML escaping, trailing newline.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromDocuments encodes exported documents, keeping their order.
func FromDocuments(docs []editor.Document) ([]File, error) {
	files := make([]File, 0, len(docs))
	for _, d := range docs {
		data, err := EncodeJSON(d.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", d.Path, err)
		}
		files = append(files, File{Path: d.Path, Data: data})
	}
	return files, nil
}

// WriteTree writes files below dir/Server, creating directories as needed.
// It is the unpacked equivalent of Zip.
func WriteTree(dir string, files []File) error {
	if err := checkPaths(files); err != nil {
		return err
	}
	for _, f := range files {
		target := filepath.Join(dir, ServerRoot, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(target, f.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
	}
	return nil
}

// checkPaths rejects entries that would escape the root or collide.
func checkPaths(files []File) error {
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		clean := path.Clean(f.Path)
		if f.Path == "" || path.IsAbs(f.Path) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
			return fmt.Errorf("invalid pack path %q", f.Path)
		}
		if seen[clean] {
			return fmt.Errorf("duplicate pack path %q", f.Path)
		}
		seen[clean] = true
	}
	return nil
}
