package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexis/config"
	"lexis/internal/domain"
	"lexis/internal/port"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testFile(docID, path string, terms map[string][]int) port.IndexedFile {
	chunkID := docID + "-c0"
	var tokens []domain.Token
	postings := make(map[string]map[string][]int)
	for term, positions := range terms {
		for _, pos := range positions {
			tokens = append(tokens, domain.Token{Position: pos, Text: term})
		}
		postings[term] = map[string][]int{chunkID: positions}
	}
	return port.IndexedFile{
		Doc: domain.Document{ID: docID, Path: path, ModTime: time.Unix(1700000000, 0)},
		Chunks: []domain.Chunk{{
			ID:        chunkID,
			DocID:     docID,
			StartLine: 1,
			EndLine:   1,
			Tokens:    tokens,
			Text:      "text of " + path,
		}},
		Postings: postings,
	}
}

func TestBoltStore_BatchIndexAndRead(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.BatchIndex([]port.IndexedFile{
		testFile("d1", "a.txt", map[string][]int{"hello": {0, 3}, "world": {1}}),
		testFile("d2", "b.txt", map[string][]int{"hello": {0}}),
	}))

	doc, err := s.GetDoc("d1")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", doc.Path)
	assert.Equal(t, int64(1700000000), doc.ModTime.Unix())

	postings, err := s.GetPostings("hello")
	require.NoError(t, err)
	require.Len(t, postings, 2)
	for _, p := range postings {
		if p.ChunkID == "d1-c0" {
			assert.Equal(t, 2, p.TF)
			assert.Equal(t, []int{0, 3}, p.Positions)
		}
	}

	chunks, err := s.GetChunksByDoc("d1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "text of a.txt", chunks[0].Text)
	assert.Len(t, chunks[0].Tokens, 3)
}

func TestBoltStore_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetDoc("missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.GetChunk("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBoltStore_DeleteDocumentRemovesPostings(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.BatchIndex([]port.IndexedFile{
		testFile("d1", "a.txt", map[string][]int{"shared": {0}, "only": {1}}),
		testFile("d2", "b.txt", map[string][]int{"shared": {0}}),
	}))

	require.NoError(t, s.DeleteDocument("d1"))

	_, err := s.GetDoc("d1")
	assert.True(t, errors.Is(err, ErrNotFound))

	only, err := s.GetPostings("only")
	require.NoError(t, err)
	assert.Empty(t, only)

	shared, err := s.GetPostings("shared")
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, "d2-c0", shared[0].ChunkID)

	terms, err := s.AllTerms()
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, terms)
}

func TestBoltStore_ReindexReplacesDocument(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.BatchIndex([]port.IndexedFile{
		testFile("d1", "a.txt", map[string][]int{"old": {0}}),
	}))
	require.NoError(t, s.BatchIndex([]port.IndexedFile{
		testFile("d1", "a.txt", map[string][]int{"new": {0}}),
	}))

	old, err := s.GetPostings("old")
	require.NoError(t, err)
	assert.Empty(t, old)

	fresh, err := s.GetPostings("new")
	require.NoError(t, err)
	assert.Len(t, fresh, 1)
}

func TestBoltStore_Stats(t *testing.T) {
	s := openTestStore(t)

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalDocs)

	want := domain.Stats{TotalDocs: 3, TotalChunks: 7, AvgChunkLen: 12.5}
	require.NoError(t, s.UpdateStats(want))
	got, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBoltStore_Migration(t *testing.T) {
	s := openTestStore(t)
	cfg := config.DefaultConfig()

	result, err := s.CheckMigration(cfg)
	require.NoError(t, err)
	assert.True(t, result.NeedsMigration)
	assert.False(t, result.NeedsRebuild)

	require.NoError(t, s.Migrate(cfg))
	result, err = s.CheckMigration(cfg)
	require.NoError(t, err)
	assert.False(t, result.NeedsMigration)
	assert.False(t, result.NeedsRebuild)
}

func TestBoltStore_PipelineEditForcesRebuild(t *testing.T) {
	s := openTestStore(t)

	cfg := config.DefaultConfig()
	cfg.Index.Tokenizer = "code"
	cfg.Analysis.Pipelines = []config.PipelineConfig{{
		Name:      "code",
		Tokenizer: "simple",
		Filters:   []config.FilterConfig{{Type: "lowercase"}},
	}}
	require.NoError(t, s.Migrate(cfg))

	cfg.Analysis.Pipelines[0].Filters = append(cfg.Analysis.Pipelines[0].Filters, config.FilterConfig{Type: "stemmer"})
	result, err := s.CheckMigration(cfg)
	require.NoError(t, err)
	assert.True(t, result.NeedsRebuild)
	assert.Equal(t, "index configuration changed", result.Reason)
}

func TestBoltStore_UnrelatedPipelineDoesNotForceRebuild(t *testing.T) {
	s := openTestStore(t)
	cfg := config.DefaultConfig()
	require.NoError(t, s.Migrate(cfg))

	cfg.Analysis.Pipelines = []config.PipelineConfig{{Name: "other", Tokenizer: "raw"}}
	result, err := s.CheckMigration(cfg)
	require.NoError(t, err)
	assert.False(t, result.NeedsRebuild)
}

func TestBoltStore_ClearKeepsSchema(t *testing.T) {
	s := openTestStore(t)
	cfg := config.DefaultConfig()
	require.NoError(t, s.Migrate(cfg))
	require.NoError(t, s.BatchIndex([]port.IndexedFile{
		testFile("d1", "a.txt", map[string][]int{"hello": {0}}),
	}))
	require.NoError(t, s.UpdateStats(domain.Stats{TotalDocs: 1}))

	require.NoError(t, s.Clear())

	docs, err := s.ListDocs()
	require.NoError(t, err)
	assert.Empty(t, docs)

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalDocs)

	info, err := s.GetSchemaInfo()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, info.Version)
}
