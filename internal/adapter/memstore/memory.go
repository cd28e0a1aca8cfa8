package memstore

import (
	"fmt"
	"sync"

	"lexis/internal/adapter/store"
	"lexis/internal/domain"
	"lexis/internal/port"
)

// MemoryStore is an in-process port.IndexStore. It backs tests and
// throwaway indexes that do not need a database file.
type MemoryStore struct {
	mu        sync.RWMutex
	docs      map[string]domain.Document
	chunks    map[string]domain.Chunk
	docChunks map[string][]string
	postings  map[string][]domain.Posting
	stats     domain.Stats
}

var _ port.IndexStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:      make(map[string]domain.Document),
		chunks:    make(map[string]domain.Chunk),
		docChunks: make(map[string][]string),
		postings:  make(map[string][]domain.Posting),
	}
}

func (s *MemoryStore) GetDoc(id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("document %s: %w", id, store.ErrNotFound)
	}
	return doc, nil
}

func (s *MemoryStore) ListDocs() ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *MemoryStore) GetChunk(id string) (domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return domain.Chunk{}, fmt.Errorf("chunk %s: %w", id, store.ErrNotFound)
	}
	return chunk, nil
}

func (s *MemoryStore) GetChunksByDoc(docID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunkIDs := s.docChunks[docID]
	chunks := make([]domain.Chunk, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		if chunk, ok := s.chunks[id]; ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

func (s *MemoryStore) GetPostings(term string) ([]domain.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Posting, len(s.postings[term]))
	copy(out, s.postings[term])
	return out, nil
}

func (s *MemoryStore) DeleteDocument(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteDocument(docID)
	return nil
}

func (s *MemoryStore) deleteDocument(docID string) {
	for _, id := range s.docChunks[docID] {
		if chunk, ok := s.chunks[id]; ok {
			s.removePostings(id, chunk.Terms())
		}
		delete(s.chunks, id)
	}
	delete(s.docChunks, docID)
	delete(s.docs, docID)
}

func (s *MemoryStore) removePostings(chunkID string, terms []string) {
	for _, term := range terms {
		existing, ok := s.postings[term]
		if !ok {
			continue
		}
		filtered := make([]domain.Posting, 0, len(existing))
		for _, p := range existing {
			if p.ChunkID != chunkID {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) == 0 {
			delete(s.postings, term)
		} else {
			s.postings[term] = filtered
		}
	}
}

func (s *MemoryStore) GetStats() (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, nil
}

func (s *MemoryStore) UpdateStats(stats domain.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	return nil
}

func (s *MemoryStore) BatchIndex(files []port.IndexedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, file := range files {
		s.deleteDocument(file.Doc.ID)
		s.docs[file.Doc.ID] = file.Doc

		for _, chunk := range file.Chunks {
			s.chunks[chunk.ID] = chunk
			s.docChunks[chunk.DocID] = append(s.docChunks[chunk.DocID], chunk.ID)
		}

		for term, byChunk := range file.Postings {
			for chunkID, positions := range byChunk {
				s.postings[term] = append(s.postings[term], domain.Posting{
					ChunkID:   chunkID,
					TF:        len(positions),
					Positions: positions,
				})
			}
		}
	}

	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
