package analyzer

import (
	"unicode/utf8"

	"lexis/internal/domain"
	"lexis/internal/port"
)

// Collect drains ts and returns the emitted tokens.
func Collect(ts port.TokenStream) []domain.Token {
	var tokens []domain.Token
	for ts.Advance() {
		tokens = append(tokens, *ts.Token())
	}
	return tokens
}

// Terms drains ts and returns only the token texts.
func Terms(ts port.TokenStream) []string {
	var terms []string
	for ts.Advance() {
		terms = append(terms, ts.Token().Text)
	}
	return terms
}

// segmentStream emits maximal runs of runes that share a non-zero class.
// Class 0 marks separators, invalid UTF-8 bytes included.
type segmentStream struct {
	text      string
	offset    int
	position  int
	classify  func(r rune) int
	normalize func(s string) string
	token     domain.Token
}

func (s *segmentStream) Advance() bool {
	for s.offset < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[s.offset:])
		class := s.runeClass(r, size)
		if class == 0 {
			s.offset += size
			continue
		}

		start := s.offset
		s.offset += size
		for s.offset < len(s.text) {
			r, size = utf8.DecodeRuneInString(s.text[s.offset:])
			if s.runeClass(r, size) != class {
				break
			}
			s.offset += size
		}

		text := s.text[start:s.offset]
		if s.normalize != nil {
			text = s.normalize(text)
		}
		s.token = domain.Token{
			OffsetFrom: start,
			OffsetTo:   s.offset,
			Position:   s.position,
			Text:       text,
		}
		s.position++
		return true
	}
	return false
}

func (s *segmentStream) Token() *domain.Token {
	return &s.token
}

func (s *segmentStream) runeClass(r rune, size int) int {
	if r == utf8.RuneError && size <= 1 {
		return 0
	}
	return s.classify(r)
}

// keepStream drops tokens for which keep returns false.
type keepStream struct {
	inner port.TokenStream
	keep  func(tok *domain.Token) bool
}

func (s *keepStream) Advance() bool {
	for s.inner.Advance() {
		if s.keep(s.inner.Token()) {
			return true
		}
	}
	return false
}

func (s *keepStream) Token() *domain.Token {
	return s.inner.Token()
}

// mapStream rewrites every token in place as it passes through.
type mapStream struct {
	inner port.TokenStream
	apply func(tok *domain.Token)
}

func (s *mapStream) Advance() bool {
	if !s.inner.Advance() {
		return false
	}
	s.apply(s.inner.Token())
	return true
}

func (s *mapStream) Token() *domain.Token {
	return s.inner.Token()
}

// guardedStream ends the stream instead of letting a panic from a
// pipeline stage escape to the caller.
type guardedStream struct {
	inner port.TokenStream
	done  bool
	empty domain.Token
}

func (s *guardedStream) Advance() (ok bool) {
	if s.done {
		return false
	}
	defer func() {
		if recover() != nil {
			s.done = true
			ok = false
		}
	}()
	if !s.inner.Advance() {
		s.done = true
		return false
	}
	return true
}

func (s *guardedStream) Token() *domain.Token {
	if s.done {
		return &s.empty
	}
	return s.inner.Token()
}
