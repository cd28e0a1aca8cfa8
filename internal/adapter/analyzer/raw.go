package analyzer

import (
	"unicode/utf8"

	"lexis/internal/domain"
	"lexis/internal/port"
)

// RawTokenizer emits the whole input as a single token.
type RawTokenizer struct{}

// NewRawTokenizer creates a new RawTokenizer.
func NewRawTokenizer() *RawTokenizer {
	return &RawTokenizer{}
}

func (t *RawTokenizer) Tokenize(text string) port.TokenStream {
	end := validPrefix(text)
	return &rawStream{
		pending: end > 0,
		token: domain.Token{
			OffsetFrom: 0,
			OffsetTo:   end,
			Position:   0,
			Text:       text[:end],
		},
	}
}

func (t *RawTokenizer) Clone() port.Tokenizer {
	return &RawTokenizer{}
}

type rawStream struct {
	pending bool
	token   domain.Token
}

func (s *rawStream) Advance() bool {
	if !s.pending {
		return false
	}
	s.pending = false
	return true
}

func (s *rawStream) Token() *domain.Token {
	return &s.token
}

// validPrefix returns the length of the longest valid UTF-8 prefix of s.
func validPrefix(s string) int {
	if utf8.ValidString(s) {
		return len(s)
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(s)
}
