package analyzer

import (
	"unicode"

	"golang.org/x/text/width"

	"lexis/internal/port"
)

const (
	classSeparator = iota
	classKanji
	classHiragana
	classKatakana
	classAlnum
	classOtherLetter
)

// JapaneseTokenizer segments text at script boundaries: runs of kanji,
// hiragana, katakana and latin/digit characters each become one token.
// Full-width ASCII and half-width katakana are folded before classification
// and in the emitted text; offsets still point into the original input.
type JapaneseTokenizer struct{}

// NewJapaneseTokenizer creates a new JapaneseTokenizer.
func NewJapaneseTokenizer() *JapaneseTokenizer {
	return &JapaneseTokenizer{}
}

func (t *JapaneseTokenizer) Tokenize(text string) port.TokenStream {
	return &segmentStream{
		text:      text,
		classify:  japaneseClass,
		normalize: width.Fold.String,
	}
}

func (t *JapaneseTokenizer) Clone() port.Tokenizer {
	return &JapaneseTokenizer{}
}

func japaneseClass(r rune) int {
	if folded := width.LookupRune(r).Folded(); folded != 0 {
		r = folded
	}
	switch {
	case r == 'ー' || unicode.Is(unicode.Katakana, r):
		return classKatakana
	case unicode.Is(unicode.Hiragana, r):
		return classHiragana
	case r == '々' || r == '〆' || unicode.Is(unicode.Han, r):
		return classKanji
	case unicode.IsDigit(r) || (unicode.IsLetter(r) && unicode.Is(unicode.Latin, r)):
		return classAlnum
	case unicode.IsLetter(r) || unicode.IsNumber(r):
		return classOtherLetter
	default:
		return classSeparator
	}
}
