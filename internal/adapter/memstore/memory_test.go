package memstore

import (
	"errors"
	"testing"

	"lexis/internal/adapter/store"
	"lexis/internal/domain"
	"lexis/internal/port"
)

func TestMemoryStore_DeleteDocument(t *testing.T) {
	s := NewMemoryStore()
	file := port.IndexedFile{
		Doc: domain.Document{ID: "d1", Path: "a.txt"},
		Chunks: []domain.Chunk{{
			ID:     "c1",
			DocID:  "d1",
			Tokens: []domain.Token{{Text: "alpha", Position: 0}, {Text: "beta", Position: 1}, {Text: "alpha", Position: 2}},
		}},
		Postings: map[string]map[string][]int{
			"alpha": {"c1": {0, 2}},
			"beta":  {"c1": {1}},
		},
	}
	if err := s.BatchIndex([]port.IndexedFile{file}); err != nil {
		t.Fatal(err)
	}

	postings, _ := s.GetPostings("alpha")
	if len(postings) != 1 || postings[0].TF != 2 {
		t.Fatalf("unexpected postings: %+v", postings)
	}

	if err := s.DeleteDocument("d1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetDoc("d1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetChunk("c1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if p, _ := s.GetPostings("beta"); len(p) != 0 {
		t.Errorf("postings survived deletion: %+v", p)
	}
}

func TestMemoryStore_ReindexReplaces(t *testing.T) {
	s := NewMemoryStore()
	mk := func(term string) port.IndexedFile {
		return port.IndexedFile{
			Doc:      domain.Document{ID: "d1"},
			Chunks:   []domain.Chunk{{ID: "c1", DocID: "d1", Tokens: []domain.Token{{Text: term}}}},
			Postings: map[string]map[string][]int{term: {"c1": {0}}},
		}
	}
	if err := s.BatchIndex([]port.IndexedFile{mk("old")}); err != nil {
		t.Fatal(err)
	}
	if err := s.BatchIndex([]port.IndexedFile{mk("new")}); err != nil {
		t.Fatal(err)
	}

	if p, _ := s.GetPostings("old"); len(p) != 0 {
		t.Errorf("old postings remain: %+v", p)
	}
	chunks, _ := s.GetChunksByDoc("d1")
	if len(chunks) != 1 {
		t.Errorf("expected 1 chunk after reindex, got %d", len(chunks))
	}
}
