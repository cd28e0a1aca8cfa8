package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"lexis/internal/adapter/analyzer"
	"lexis/internal/adapter/fs"
	"lexis/internal/domain"
	"lexis/internal/port"
)

// ProgressFunc is called after each changed file has been processed.
type ProgressFunc func(processed, total int, currentFile string)

// IndexUseCase handles file indexing operations.
type IndexUseCase struct {
	store      port.IndexStore
	walker     port.FileWalker
	chunker    port.Chunker
	tokenizers *analyzer.Manager
	tokenizer  string
	workers    int
	logger     *slog.Logger
}

// NewIndexUseCase creates a new index use case. Files are analyzed with the
// pipeline registered under tokenizer, using at most workers goroutines.
func NewIndexUseCase(
	store port.IndexStore,
	walker port.FileWalker,
	chunker port.Chunker,
	tokenizers *analyzer.Manager,
	tokenizer string,
	workers int,
	logger *slog.Logger,
) *IndexUseCase {
	if workers < 1 {
		workers = 1
	}
	return &IndexUseCase{
		store:      store,
		walker:     walker,
		chunker:    chunker,
		tokenizers: tokenizers,
		tokenizer:  tokenizer,
		workers:    workers,
		logger:     logger,
	}
}

// IndexResult contains the results of an indexing operation.
type IndexResult struct {
	FilesIndexed  int
	FilesSkipped  int
	FilesDeleted  int
	ChunksCreated int
	Errors        []string
}

// indexTally collects per-file outcomes from concurrent workers.
type indexTally struct {
	mu            sync.Mutex
	result        *IndexResult
	processed     int
	totalChunks   int
	totalChunkLen int
}

func (t *indexTally) addChunks(chunks []domain.Chunk) {
	for _, c := range chunks {
		t.totalChunks++
		t.totalChunkLen += len(c.Tokens)
	}
}

// Index indexes files under root. Per-file failures are collected in
// IndexResult.Errors; an unknown tokenizer, a store failure or a
// cancelled context abort the run.
func (u *IndexUseCase) Index(ctx context.Context, root string, progress ProgressFunc) (*IndexResult, error) {
	if !u.tokenizers.Has(u.tokenizer) {
		return nil, fmt.Errorf("index tokenizer: %w: %q (registered: %v)", analyzer.ErrUnknownTokenizer, u.tokenizer, u.tokenizers.Names())
	}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	existingDocs, err := u.store.ListDocs()
	if err != nil {
		return nil, fmt.Errorf("failed to list existing docs: %w", err)
	}
	existingMap := make(map[string]domain.Document, len(existingDocs))
	for _, doc := range existingDocs {
		existingMap[doc.Path] = doc
	}

	tally := &indexTally{result: &IndexResult{}}
	seenPaths := make(map[string]bool, len(files))
	var changed []port.FileInfo

	for _, file := range files {
		seenPaths[file.Path] = true

		if existing, ok := existingMap[file.Path]; ok && existing.ModTime.Unix() >= file.ModTime {
			tally.result.FilesSkipped++
			chunks, err := u.store.GetChunksByDoc(existing.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to read chunks of %s: %w", file.Path, err)
			}
			tally.addChunks(chunks)
			continue
		}
		changed = append(changed, file)
	}

	u.logger.Info("scan complete", "root", root, "files", len(files), "changed", len(changed), "tokenizer", u.tokenizer)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)

	for _, file := range changed {
		if gctx.Err() != nil {
			break
		}
		file := file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return u.indexFile(file, tally, len(changed), progress)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := tally.result
	for path, doc := range existingMap {
		if seenPaths[path] {
			continue
		}
		if err := u.store.DeleteDocument(doc.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", path, err))
			continue
		}
		u.logger.Debug("removed document", "path", path)
		result.FilesDeleted++
	}

	avgChunkLen := 0.0
	if tally.totalChunks > 0 {
		avgChunkLen = float64(tally.totalChunkLen) / float64(tally.totalChunks)
	}

	stats := domain.Stats{
		TotalDocs:   result.FilesIndexed + result.FilesSkipped,
		TotalChunks: tally.totalChunks,
		AvgChunkLen: avgChunkLen,
	}
	if err := u.store.UpdateStats(stats); err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}

	result.ChunksCreated = tally.totalChunks
	u.logger.Info("index complete",
		"indexed", result.FilesIndexed,
		"skipped", result.FilesSkipped,
		"deleted", result.FilesDeleted,
		"chunks", result.ChunksCreated,
		"errors", len(result.Errors),
	)
	return result, nil
}

// indexFile analyzes and stores one file. The tokenizer instance is fetched
// here and used for this file only. Only store failures are returned.
func (u *IndexUseCase) indexFile(file port.FileInfo, tally *indexTally, total int, progress ProgressFunc) error {
	defer func() {
		tally.mu.Lock()
		tally.processed++
		processed := tally.processed
		tally.mu.Unlock()
		if progress != nil {
			progress(processed, total, file.Path)
		}
	}()

	fail := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		u.logger.Warn("skipping file", "path", file.Path, "reason", msg)
		tally.mu.Lock()
		tally.result.Errors = append(tally.result.Errors, fmt.Sprintf("failed to index %s: %s", file.Path, msg))
		tally.mu.Unlock()
	}

	tok, err := tokenizerFor(u.tokenizers, u.tokenizer)
	if err != nil {
		return err
	}

	content, ok, err := fs.ReadFile(file.Path)
	if err != nil {
		fail("read: %v", err)
		return nil
	}
	if !ok {
		fail("binary content")
		return nil
	}

	doc := domain.Document{
		ID:      generateDocID(file.Path),
		Path:    file.Path,
		ModTime: time.Unix(file.ModTime, 0),
		Lang:    detectLanguage(file.Path),
	}

	chunks, err := u.chunker.Chunk(doc, content, tok)
	if err != nil {
		fail("chunk: %v", err)
		return nil
	}

	if err := u.store.BatchIndex([]port.IndexedFile{{
		Doc:      doc,
		Chunks:   chunks,
		Postings: buildPostings(chunks),
	}}); err != nil {
		return fmt.Errorf("failed to store %s: %w", file.Path, err)
	}

	tally.mu.Lock()
	tally.result.FilesIndexed++
	tally.addChunks(chunks)
	tally.mu.Unlock()
	return nil
}

// buildPostings maps each term to the positions it occupies in each chunk.
func buildPostings(chunks []domain.Chunk) map[string]map[string][]int {
	postings := make(map[string]map[string][]int)
	for _, chunk := range chunks {
		for _, tok := range chunk.Tokens {
			byChunk, ok := postings[tok.Text]
			if !ok {
				byChunk = make(map[string][]int)
				postings[tok.Text] = byChunk
			}
			byChunk[chunk.ID] = append(byChunk[chunk.ID], tok.Position)
		}
	}
	return postings
}

// generateDocID creates a unique ID for a document based on its path.
func generateDocID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}

// detectLanguage detects the content language based on file extension.
func detectLanguage(path string) string {
	switch filepath.Ext(path) {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".java":
		return "java"
	case ".rs":
		return "rust"
	case ".md":
		return "markdown"
	case ".rst":
		return "restructuredtext"
	case ".txt":
		return "text"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "unknown"
	}
}
