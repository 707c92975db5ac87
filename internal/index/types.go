package index

// Document represents a unit of source content produced by a loader.
// Immutable once produced.
type Document struct {
	Content  string            // Document text content
	Metadata map[string]string // Source metadata (kind, title, identifiers, tags)
}

// Chunk is a bounded-length segment of a Document's content.
// It carries the parent Document's metadata plus its own identifier.
// Created only during ingestion; never mutated.
type Chunk struct {
	ID       string            // Unique identifier
	Content  string            // Chunk text
	Metadata map[string]string // Parent document metadata
}

// Result is a single search result with similarity score.
type Result struct {
	Chunk
	Similarity float32 // Cosine similarity score (0-1)
}
