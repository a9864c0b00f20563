package loaders

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/loaders/markdown"
	"github.com/docsage/docsage/internal/loaders/pdf"
	"github.com/docsage/docsage/internal/loaders/plaintext"
	"github.com/docsage/docsage/internal/logger"
)

// Registry maps file extensions to loaders.
type Registry struct {
	byExt map[string]driven.Loader
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]driven.Loader)}
}

// DefaultRegistry returns a registry with all built-in loaders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(pdf.New())
	return r
}

// Register adds a loader for each of its extensions.
// Later registrations win on extension conflicts.
func (r *Registry) Register(l driven.Loader) {
	for _, ext := range l.Extensions() {
		r.byExt[strings.ToLower(ext)] = l
	}
}

// ForPath returns the loader for the file's extension.
func (r *Registry) ForPath(path string) (driven.Loader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, ext)
	}
	return l, nil
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load loads a single file using the loader for its extension.
func (r *Registry) Load(ctx context.Context, path string) (*domain.Document, error) {
	l, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, path)
}

// LoadDir loads every supported file in the directory, in lexicographic
// name order. Unsupported extensions are skipped silently; a file that
// fails to parse is logged and skipped so one broken file never aborts
// a rebuild.
//
// Returns domain.ErrDirectoryNotFound if the directory does not exist.
func (r *Registry) LoadDir(ctx context.Context, dir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var docs []domain.Document
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, name)
		l, err := r.ForPath(path)
		if err != nil {
			logger.Debug("skipping unsupported file %s", name)
			continue
		}

		doc, err := l.Load(ctx, path)
		if err != nil {
			logger.Warn("skipping %s: %v", name, err)
			continue
		}
		if doc.Text == "" {
			logger.Debug("skipping empty document %s", name)
			continue
		}
		docs = append(docs, *doc)
	}

	logger.Info("loaded %d documents from %s", len(docs), dir)
	return docs, nil
}
