package domain

// Document is the raw text of a single corpus file.
// Documents are produced by loaders and discarded after chunking.
type Document struct {
	// Path is the file path the text was read from.
	Path string

	// Text is the full extracted text content.
	Text string
}

// Chunk is a searchable unit within a document.
// Documents are split into overlapping chunks for granular retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Source is the path of the document this chunk came from.
	Source string

	// Ordinal is the position within the source document.
	// It increases monotonically in split order.
	Ordinal int

	// Text is the chunk content.
	Text string

	// Embedding is the vector representation for similarity search.
	Embedding []float32
}
