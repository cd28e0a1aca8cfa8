package retriever

import (
	"lexis/internal/domain"
)

// MMRReranker diversifies results with Maximal Marginal Relevance over the
// term sets of the chunks.
type MMRReranker struct {
	lambda       float64
	dedupJaccard float64
}

// NewMMRReranker creates a new MMR reranker. Candidates whose term overlap
// with an already selected chunk exceeds dedupJaccard are dropped.
func NewMMRReranker(lambda, dedupJaccard float64) *MMRReranker {
	return &MMRReranker{
		lambda:       lambda,
		dedupJaccard: dedupJaccard,
	}
}

// Rerank applies MMR to diversify the results.
// MMR(c) = λ * relevance(c) - (1-λ) * max_similarity(c, selected)
func (r *MMRReranker) Rerank(candidates []domain.ScoredChunk, k int) []domain.ScoredChunk {
	if len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	maxScore := candidates[0].Score
	for _, c := range candidates {
		if c.Score > maxScore {
			maxScore = c.Score
		}
	}
	if maxScore == 0 {
		maxScore = 1
	}

	sets := make([]map[string]struct{}, len(candidates))
	for i, c := range candidates {
		sets[i] = termSet(c.Chunk.Terms())
	}

	selected := make([]int, 0, k)
	used := make([]bool, len(candidates))

	for len(selected) < k {
		bestIdx := -1
		bestMMR := -1e9

		for i, candidate := range candidates {
			if used[i] {
				continue
			}
			relevance := candidate.Score / maxScore

			maxSim := 0.0
			for _, j := range selected {
				if sim := jaccard(sets[i], sets[j]); sim > maxSim {
					maxSim = sim
				}
			}
			if maxSim > r.dedupJaccard {
				continue
			}

			if mmr := r.lambda*relevance - (1-r.lambda)*maxSim; mmr > bestMMR {
				bestMMR = mmr
				bestIdx = i
			}
		}

		if bestIdx == -1 {
			break
		}
		selected = append(selected, bestIdx)
		used[bestIdx] = true
	}

	out := make([]domain.ScoredChunk, len(selected))
	for i, idx := range selected {
		out[i] = candidates[idx]
	}
	return out
}

func termSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for t := range a {
		if _, exists := b[t]; exists {
			intersection++
		}
	}
	return float64(intersection) / float64(len(a)+len(b)-intersection)
}

// JaccardSimilarity returns the Jaccard similarity of two term lists.
func JaccardSimilarity(a, b []string) float64 {
	return jaccard(termSet(a), termSet(b))
}
