package port

import "lexis/internal/domain"

type IndexStore interface {
	GetDoc(id string) (domain.Document, error)

	ListDocs() ([]domain.Document, error)

	GetChunk(id string) (domain.Chunk, error)

	GetChunksByDoc(docID string) ([]domain.Chunk, error)

	GetPostings(term string) ([]domain.Posting, error)

	// DeleteDocument removes a document, its chunks and their postings.
	DeleteDocument(docID string) error

	GetStats() (domain.Stats, error)

	UpdateStats(stats domain.Stats) error

	BatchIndex(files []IndexedFile) error

	Close() error
}

// IndexedFile is everything written for one source file.
// Postings maps term -> chunk ID -> positions of the term in that chunk.
type IndexedFile struct {
	Doc      domain.Document
	Chunks   []domain.Chunk
	Postings map[string]map[string][]int
}
