package domain

import "time"

// Token is one unit emitted by a tokenizer pipeline.
// OffsetFrom and OffsetTo are byte offsets into the analyzed text.
type Token struct {
	OffsetFrom int    `json:"offset_from"`
	OffsetTo   int    `json:"offset_to"`
	Position   int    `json:"position"`
	Text       string `json:"text"`
}

type Document struct {
	ID      string
	Path    string
	ModTime time.Time
	Lang    string
}

type Chunk struct {
	ID        string
	DocID     string
	StartLine int
	EndLine   int
	Tokens    []Token
	Text      string
}

// Terms returns the token texts of the chunk in stream order.
func (c Chunk) Terms() []string {
	terms := make([]string, len(c.Tokens))
	for i, t := range c.Tokens {
		terms[i] = t.Text
	}
	return terms
}

type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

type Posting struct {
	ChunkID   string `json:"chunk_id"`
	TF        int    `json:"tf"`
	Positions []int  `json:"positions,omitempty"`
}

type Stats struct {
	TotalDocs   int
	TotalChunks int
	AvgChunkLen float64
}
