// Package theme resolves templates and static assets through an override
// chain.  A Theme combines:
//
//   - Name   – the override directory's base name, or “default”.
//   - Root   – absolute path of the override directory, empty when unset.
//   - files  – the overlay: Root first, then the embedded defaults.
//
// Operators restyle the site by pointing `paths.theme_dir` at a directory
// that mirrors the embedded layout (templates/*.html, assets/**).  Any file
// present there wins; everything else falls back to the binary's copy.
package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Theme is returned by Load and is read-only afterwards.
type Theme struct {
	Name  string
	Root  string
	files fs.FS
}

// Load builds the overlay for dir on top of base.  An empty dir selects the
// embedded defaults only.
func Load(dir string, base fs.FS) (*Theme, error) {
	if dir == "" {
		return &Theme{Name: "default", files: base}, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("theme directory %s not found", abs)
	}
	return &Theme{
		Name:  filepath.Base(abs),
		Root:  abs,
		files: overlay{top: os.DirFS(abs), base: base},
	}, nil
}

// FS exposes the overlay.
func (t *Theme) FS() fs.FS { return t.files }

// ReadFile returns name from the first layer that has it.
func (t *Theme) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(t.files, name)
}

// Asset maps a relative asset path to its public URL.
func (t *Theme) Asset(p string) string {
	return "/assets/" + strings.TrimPrefix(p, "/")
}

// AssetHandler serves the overlay's assets/ subtree.  Mount it under
// /assets/ with the prefix stripped.
func (t *Theme) AssetHandler() http.Handler {
	sub, err := fs.Sub(t.files, "assets")
	if err != nil {
		return http.NotFoundHandler()
	}
	return http.FileServer(http.FS(sub))
}

// overlay serves top first and falls back to base on fs.ErrNotExist.
type overlay struct {
	top  fs.FS
	base fs.FS
}

func (o overlay) Open(name string) (fs.File, error) {
	f, err := o.top.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.base.Open(name)
}
