// Package chunker splits document text into fixed-size overlapping chunks.
package chunker

import (
	"github.com/google/uuid"

	"github.com/docsage/docsage/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// Splitter splits documents into fixed-size chunks.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// The overlap must stay below the chunk size or the window
	// never advances.
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the configured chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split slices one document into overlapping chunks.
// Splitting is pure: the same text and configuration always produce the
// same chunk texts in the same order. A document shorter than the chunk
// size yields exactly one chunk equal to the whole text; empty text
// yields no chunks. Windows are measured in runes so multi-byte
// characters are never cut in half.
func (s *Splitter) Split(doc domain.Document) []domain.Chunk {
	if doc.Text == "" {
		return nil
	}

	runes := []rune(doc.Text)
	total := len(runes)

	estimated := total/(s.chunkSize-s.overlap) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	ordinal := 0
	for start := 0; start < total; start += s.chunkSize - s.overlap {
		end := start + s.chunkSize
		if end > total {
			end = total
		}

		chunks = append(chunks, domain.Chunk{
			ID:      uuid.New().String(),
			Source:  doc.Path,
			Ordinal: ordinal,
			Text:    string(runes[start:end]),
		})
		ordinal++

		if end == total {
			break
		}
	}

	return chunks
}

// SplitAll splits every document, preserving per-document order.
func (s *Splitter) SplitAll(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		chunks = append(chunks, s.Split(doc)...)
	}
	return chunks
}
