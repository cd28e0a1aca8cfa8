package usecase

import (
	"testing"

	"lexis/internal/adapter/retriever"
	"lexis/internal/domain"
)

type fakeRetriever struct {
	results []domain.ScoredChunk
	asked   int
}

func (f *fakeRetriever) Search(query string, k int) ([]domain.ScoredChunk, error) {
	f.asked = k
	if len(f.results) > k {
		return f.results[:k], nil
	}
	return f.results, nil
}

func scored(id string, score float64, terms ...string) domain.ScoredChunk {
	tokens := make([]domain.Token, len(terms))
	for i, term := range terms {
		tokens[i] = domain.Token{Position: i, Text: term}
	}
	return domain.ScoredChunk{Chunk: domain.Chunk{ID: id, DocID: "d", Tokens: tokens}, Score: score}
}

func TestRetrieve_ThresholdAndTopK(t *testing.T) {
	fake := &fakeRetriever{results: []domain.ScoredChunk{
		scored("c1", 3.0, "a"),
		scored("c2", 2.0, "b"),
		scored("c3", 0.5, "c"),
	}}
	uc := NewRetrieveUseCase(fake, nil, nil, 1.0, discardLogger())

	results, err := uc.Retrieve("q", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results above threshold, got %d", len(results))
	}
	if fake.asked != 3 {
		t.Errorf("expected top-k to be passed through without a reranker, got %d", fake.asked)
	}
}

func TestRetrieve_WithMMR(t *testing.T) {
	fake := &fakeRetriever{results: []domain.ScoredChunk{
		scored("c1", 3.0, "a", "b"),
		scored("c2", 2.9, "a", "b"),
		scored("c3", 1.0, "x", "y"),
	}}
	uc := NewRetrieveUseCase(fake, nil, retriever.NewMMRReranker(0.7, 0.9), 0, discardLogger())

	results, err := uc.Retrieve("q", 2)
	if err != nil {
		t.Fatal(err)
	}
	if fake.asked != 4 {
		t.Errorf("expected twice top-k candidates, got %d", fake.asked)
	}
	if len(results) != 2 || results[0].Chunk.ID != "c1" || results[1].Chunk.ID != "c3" {
		t.Errorf("expected duplicate c2 to be dropped: %+v", results)
	}
}
