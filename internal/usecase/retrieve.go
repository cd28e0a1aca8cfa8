package usecase

import (
	"log/slog"
	"time"

	"lexis/internal/adapter/retriever"
	"lexis/internal/domain"
	"lexis/internal/port"
)

// RetrieveUseCase handles search and retrieval operations.
type RetrieveUseCase struct {
	retriever         port.Retriever
	store             port.IndexStore
	mmrReranker       *retriever.MMRReranker
	minScoreThreshold float64 // Filter results below this score (0 = disabled)
	logger            *slog.Logger
}

// NewRetrieveUseCase creates a new retrieve use case. A nil reranker
// returns results in score order.
func NewRetrieveUseCase(
	retriever port.Retriever,
	store port.IndexStore,
	mmrReranker *retriever.MMRReranker,
	minScoreThreshold float64,
	logger *slog.Logger,
) *RetrieveUseCase {
	return &RetrieveUseCase{
		retriever:         retriever,
		store:             store,
		mmrReranker:       mmrReranker,
		minScoreThreshold: minScoreThreshold,
		logger:            logger,
	}
}

// Retrieve searches for chunks matching the query.
func (u *RetrieveUseCase) Retrieve(query string, topK int) ([]domain.ScoredChunk, error) {
	start := time.Now()

	fetch := topK
	if u.mmrReranker != nil {
		fetch = topK * 2
	}
	candidates, err := u.retriever.Search(query, fetch)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	results := candidates
	if u.mmrReranker != nil {
		results = u.mmrReranker.Rerank(candidates, topK)
	} else if len(results) > topK {
		results = results[:topK]
	}

	if u.minScoreThreshold > 0 {
		results = u.filterByThreshold(results)
	}

	u.logger.Debug("retrieved", "query", query, "candidates", len(candidates), "results", len(results), "elapsed", time.Since(start))
	return results, nil
}

// filterByThreshold removes results below the minimum score threshold.
func (u *RetrieveUseCase) filterByThreshold(results []domain.ScoredChunk) []domain.ScoredChunk {
	filtered := make([]domain.ScoredChunk, 0, len(results))
	for _, r := range results {
		if r.Score >= u.minScoreThreshold {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ScoredChunkResult is a simplified result for CLI output.
type ScoredChunkResult struct {
	Path      string  `json:"path"`
	StartLine int     `json:"start_line"`
	EndLine   int     `json:"end_line"`
	Score     float64 `json:"score"`
	Text      string  `json:"text"`
}

// ToResults resolves document paths for display.
func (u *RetrieveUseCase) ToResults(chunks []domain.ScoredChunk) []ScoredChunkResult {
	out := make([]ScoredChunkResult, 0, len(chunks))
	paths := make(map[string]string)
	for _, sc := range chunks {
		path, ok := paths[sc.Chunk.DocID]
		if !ok {
			if doc, err := u.store.GetDoc(sc.Chunk.DocID); err == nil {
				path = doc.Path
			}
			paths[sc.Chunk.DocID] = path
		}
		out = append(out, ScoredChunkResult{
			Path:      path,
			StartLine: sc.Chunk.StartLine,
			EndLine:   sc.Chunk.EndLine,
			Score:     sc.Score,
			Text:      sc.Chunk.Text,
		})
	}
	return out
}
