package retriever

import (
	"testing"

	"lexis/internal/domain"
)

func chunkWithTerms(id string, terms ...string) domain.Chunk {
	tokens := make([]domain.Token, len(terms))
	for i, term := range terms {
		tokens[i] = domain.Token{Position: i, Text: term}
	}
	return domain.Chunk{ID: id, Tokens: tokens}
}

func TestMMRReranking(t *testing.T) {
	reranker := NewMMRReranker(0.5, 0.9)

	candidates := []domain.ScoredChunk{
		{Chunk: chunkWithTerms("c1", "auth", "login", "user", "password"), Score: 1.0},
		{Chunk: chunkWithTerms("c2", "auth", "login", "user", "session"), Score: 0.9},
		{Chunk: chunkWithTerms("c3", "database", "query", "sql", "connection"), Score: 0.8},
		{Chunk: chunkWithTerms("c4", "auth", "jwt", "token", "oauth"), Score: 0.7},
	}

	results := reranker.Rerank(candidates, 3)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "c1" {
		t.Errorf("expected c1 as first result, got %s", results[0].Chunk.ID)
	}
	// c2 shares 3 of 5 terms with c1; the unrelated c3 should come first.
	if results[1].Chunk.ID != "c3" {
		t.Errorf("expected c3 second for diversity, got %s", results[1].Chunk.ID)
	}
}

func TestMMRDeduplication(t *testing.T) {
	reranker := NewMMRReranker(0.5, 0.3)

	candidates := []domain.ScoredChunk{
		{Chunk: chunkWithTerms("c1", "a", "b", "c"), Score: 1.0},
		{Chunk: chunkWithTerms("c2", "a", "b", "c"), Score: 0.9},
	}

	results := reranker.Rerank(candidates, 2)

	if len(results) != 1 {
		t.Fatalf("expected 1 result after dedup, got %d", len(results))
	}
	if results[0].Chunk.ID != "c1" {
		t.Errorf("expected c1 (highest score), got %s", results[0].Chunk.ID)
	}
}

func TestMMREmptyCandidates(t *testing.T) {
	reranker := NewMMRReranker(0.7, 0.8)

	if results := reranker.Rerank(nil, 10); results != nil {
		t.Errorf("expected nil for empty candidates, got %v", results)
	}
	if results := reranker.Rerank([]domain.ScoredChunk{}, 10); results != nil {
		t.Errorf("expected nil for empty slice, got %v", results)
	}
}

func TestJaccardSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []string
		b        []string
		expected float64
	}{
		{"identical", []string{"a", "b", "c"}, []string{"a", "b", "c"}, 1.0},
		{"no overlap", []string{"a", "b", "c"}, []string{"d", "e", "f"}, 0.0},
		{"half overlap", []string{"a", "b"}, []string{"b", "c"}, 1.0 / 3.0},
		{"repeated terms", []string{"a", "a", "b"}, []string{"a", "b"}, 1.0},
		{"empty a", []string{}, []string{"a", "b"}, 0.0},
		{"both empty", []string{}, []string{}, 1.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := JaccardSimilarity(tc.a, tc.b)
			if !floatEquals(result, tc.expected, 0.001) {
				t.Errorf("JaccardSimilarity(%v, %v) = %f, expected %f", tc.a, tc.b, result, tc.expected)
			}
		})
	}
}

func floatEquals(a, b, tolerance float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < tolerance
}
