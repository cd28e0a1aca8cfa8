package retriever

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"lexis/internal/adapter/analyzer"
	"lexis/internal/domain"
	"lexis/internal/port"
)

// BM25Params holds the scoring parameters of a BM25Retriever.
type BM25Params struct {
	K1                float64
	B                 float64
	PathBoostWeight   float64
	PhraseBoostWeight float64
}

// BM25Retriever scores chunks with BM25 over the postings of an IndexStore.
// Queries are analyzed with a fresh instance of the index tokenizer on
// every search, so one retriever can serve concurrent searches.
type BM25Retriever struct {
	store      port.IndexStore
	tokenizers *analyzer.Manager
	tokenizer  string
	params     BM25Params
}

var _ port.Retriever = (*BM25Retriever)(nil)

func NewBM25Retriever(store port.IndexStore, tokenizers *analyzer.Manager, tokenizer string, params BM25Params) *BM25Retriever {
	return &BM25Retriever{
		store:      store,
		tokenizers: tokenizers,
		tokenizer:  tokenizer,
		params:     params,
	}
}

type chunkHit struct {
	score     float64
	docID     string
	length    int
	positions map[string][]int
}

func (r *BM25Retriever) Search(query string, k int) ([]domain.ScoredChunk, error) {
	tok, ok := r.tokenizers.Get(r.tokenizer)
	if !ok {
		return nil, fmt.Errorf("%w: %q", analyzer.ErrUnknownTokenizer, r.tokenizer)
	}

	queryTokens := analyzer.Collect(tok.Tokenize(query))
	if len(queryTokens) == 0 {
		return nil, nil
	}

	stats, err := r.store.GetStats()
	if err != nil {
		return nil, err
	}
	if stats.TotalChunks == 0 {
		return nil, nil
	}
	avgDl := stats.AvgChunkLen
	if avgDl <= 0 {
		avgDl = 1
	}

	queryTokenSet := make(map[string]struct{}, len(queryTokens))
	for _, t := range queryTokens {
		queryTokenSet[t.Text] = struct{}{}
	}

	hits := make(map[string]*chunkHit)
	N := float64(stats.TotalChunks)

	for term := range queryTokenSet {
		postings, err := r.store.GetPostings(term)
		if err != nil {
			return nil, fmt.Errorf("postings for %q: %w", term, err)
		}
		if len(postings) == 0 {
			continue
		}

		n := float64(len(postings))
		idf := math.Log((N-n+0.5)/(n+0.5) + 1)

		for _, posting := range postings {
			hit, exists := hits[posting.ChunkID]
			if !exists {
				chunk, err := r.store.GetChunk(posting.ChunkID)
				if err != nil {
					continue
				}
				hit = &chunkHit{
					docID:     chunk.DocID,
					length:    len(chunk.Tokens),
					positions: make(map[string][]int),
				}
				hits[posting.ChunkID] = hit
			}
			hit.positions[term] = posting.Positions

			dl := float64(hit.length)
			tf := float64(posting.TF)
			hit.score += idf * (tf * (r.params.K1 + 1)) / (tf + r.params.K1*(1-r.params.B+r.params.B*dl/avgDl))
		}
	}

	docPathBoosts := make(map[string]float64)

	results := make([]domain.ScoredChunk, 0, len(hits))
	for chunkID, hit := range hits {
		chunk, err := r.store.GetChunk(chunkID)
		if err != nil {
			continue
		}

		finalScore := hit.score
		if r.params.PhraseBoostWeight > 0 {
			finalScore *= 1 + phraseMatch(queryTokens, hit.positions)*r.params.PhraseBoostWeight
		}
		if r.params.PathBoostWeight > 0 {
			pathBoost, exists := docPathBoosts[hit.docID]
			if !exists {
				doc, err := r.store.GetDoc(hit.docID)
				if err == nil {
					pathBoost = calculatePathBoost(tok, doc.Path, queryTokenSet)
				}
				docPathBoosts[hit.docID] = pathBoost
			}
			finalScore *= 1 + pathBoost*r.params.PathBoostWeight
		}

		results = append(results, domain.ScoredChunk{
			Chunk: chunk,
			Score: finalScore,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if len(results) > k {
		results = results[:k]
	}

	return results, nil
}

// phraseMatch returns the fraction of adjacent query token pairs that occur
// in the chunk at the same position distance as in the query.
func phraseMatch(query []domain.Token, positions map[string][]int) float64 {
	if len(query) < 2 {
		return 0
	}

	pairs, matched := 0, 0
	for i := 0; i+1 < len(query); i++ {
		a, b := query[i], query[i+1]
		pairs++

		delta := b.Position - a.Position
		following := make(map[int]struct{}, len(positions[b.Text]))
		for _, p := range positions[b.Text] {
			following[p] = struct{}{}
		}
		for _, p := range positions[a.Text] {
			if _, ok := following[p+delta]; ok {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(pairs)
}

// calculatePathBoost analyzes the path words with the query's tokenizer
// instance and returns the share of query terms they contain.
func calculatePathBoost(tok port.Tokenizer, path string, queryTokenSet map[string]struct{}) float64 {
	words := tokenizePath(path)
	if len(words) == 0 || len(queryTokenSet) == 0 {
		return 0
	}

	matched := make(map[string]struct{})
	for _, term := range analyzer.Terms(tok.Tokenize(strings.Join(words, " "))) {
		if _, exists := queryTokenSet[term]; exists {
			matched[term] = struct{}{}
		}
	}

	return float64(len(matched)) / float64(len(queryTokenSet))
}

func tokenizePath(path string) []string {
	path = strings.TrimPrefix(filepath.ToSlash(path), "/")

	var tokens []string
	for _, part := range strings.Split(path, "/") {
		for _, sp := range strings.Split(part, ".") {
			for _, token := range strings.FieldsFunc(sp, func(r rune) bool {
				return r == '_' || r == '-'
			}) {
				if len(token) >= 2 {
					tokens = append(tokens, token)
				}
			}
		}
	}
	return tokens
}
