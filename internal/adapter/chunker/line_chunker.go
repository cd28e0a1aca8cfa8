package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"lexis/internal/adapter/analyzer"
	"lexis/internal/domain"
	"lexis/internal/port"
)

// LineChunker groups whole lines into chunks of roughly maxTokens tokens,
// repeating about overlap tokens worth of lines at the start of the next chunk.
type LineChunker struct {
	maxTokens int
	overlap   int
}

var _ port.Chunker = (*LineChunker)(nil)

func NewLineChunker(maxTokens, overlap int) *LineChunker {
	return &LineChunker{
		maxTokens: maxTokens,
		overlap:   overlap,
	}
}

// Chunk splits content using tok for token counts and chunk tokens.
// Token offsets are relative to each chunk's Text.
func (c *LineChunker) Chunk(doc domain.Document, content string, tok port.Tokenizer) ([]domain.Chunk, error) {
	if content == "" {
		return nil, nil
	}
	lines := strings.Split(content, "\n")

	// Counted once up front so overlap calculation does not re-tokenize.
	counts := make([]int, len(lines))
	for i, line := range lines {
		counts[i] = countTokens(tok, line)
	}

	var chunks []domain.Chunk
	startLine := 0

	for startLine < len(lines) {
		endLine := startLine
		currentTokens := 0

		for endLine < len(lines) {
			if currentTokens > 0 && currentTokens+counts[endLine] > c.maxTokens {
				break
			}
			currentTokens += counts[endLine]
			endLine++
		}

		text := strings.Join(lines[startLine:endLine], "\n")
		chunks = append(chunks, domain.Chunk{
			ID:        generateChunkID(doc.ID, startLine, endLine),
			DocID:     doc.ID,
			StartLine: startLine + 1,
			EndLine:   endLine,
			Tokens:    analyzer.Collect(tok.Tokenize(text)),
			Text:      text,
		})

		if endLine >= len(lines) {
			break
		}

		newStart := endLine - c.overlapLines(counts, startLine, endLine)
		if newStart <= startLine {
			newStart = startLine + 1
		}
		startLine = newStart
	}

	return chunks, nil
}

func (c *LineChunker) overlapLines(counts []int, start, end int) int {
	if c.overlap == 0 {
		return 0
	}

	lines := 0
	tokens := 0
	for i := end - 1; i > start && tokens < c.overlap; i-- {
		tokens += counts[i]
		lines++
	}
	return lines
}

func countTokens(tok port.Tokenizer, text string) int {
	n := 0
	ts := tok.Tokenize(text)
	for ts.Advance() {
		n++
	}
	return n
}

func generateChunkID(docID string, startLine, endLine int) string {
	data := fmt.Sprintf("%s:%d-%d", docID, startLine, endLine)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
