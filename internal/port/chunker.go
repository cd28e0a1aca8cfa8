package port

import "lexis/internal/domain"

// Chunker splits a document into chunks. tok is owned by the caller for the
// duration of the call.
type Chunker interface {
	Chunk(doc domain.Document, content string, tok Tokenizer) ([]domain.Chunk, error)
}
