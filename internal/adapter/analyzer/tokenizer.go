package analyzer

import (
	"unicode"

	"lexis/internal/port"
)

// SimpleTokenizer splits text on every rune that is neither a letter nor a
// number. It does not change case.
type SimpleTokenizer struct{}

// NewSimpleTokenizer creates a new SimpleTokenizer.
func NewSimpleTokenizer() *SimpleTokenizer {
	return &SimpleTokenizer{}
}

func (t *SimpleTokenizer) Tokenize(text string) port.TokenStream {
	return &segmentStream{text: text, classify: wordClass}
}

func (t *SimpleTokenizer) Clone() port.Tokenizer {
	return &SimpleTokenizer{}
}

func wordClass(r rune) int {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return 1
	}
	return 0
}

// WhitespaceTokenizer splits on Unicode whitespace and keeps punctuation
// attached to the surrounding text.
type WhitespaceTokenizer struct{}

// NewWhitespaceTokenizer creates a new WhitespaceTokenizer.
func NewWhitespaceTokenizer() *WhitespaceTokenizer {
	return &WhitespaceTokenizer{}
}

func (t *WhitespaceTokenizer) Tokenize(text string) port.TokenStream {
	return &segmentStream{text: text, classify: nonSpaceClass}
}

func (t *WhitespaceTokenizer) Clone() port.Tokenizer {
	return &WhitespaceTokenizer{}
}

func nonSpaceClass(r rune) int {
	if unicode.IsSpace(r) || unicode.IsControl(r) {
		return 0
	}
	return 1
}
