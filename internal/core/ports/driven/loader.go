package driven

import (
	"context"

	"github.com/docsage/docsage/internal/core/domain"
)

// Loader extracts text from one kind of corpus file.
// Each loader handles specific file extensions (e.g., ".pdf", ".md").
type Loader interface {
	// Extensions returns the lower-case file extensions this loader
	// handles, including the leading dot.
	Extensions() []string

	// Load reads the file at path and extracts its text.
	Load(ctx context.Context, path string) (*domain.Document, error)
}
