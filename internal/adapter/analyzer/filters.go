package analyzer

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lexis/internal/domain"
	"lexis/internal/port"
)

// DefaultTokenLengthLimit is the rune count above which the default
// pipelines drop a token.
const DefaultTokenLengthLimit = 40

// RemoveLongFilter drops tokens longer than a rune limit. Positions of the
// tokens it keeps are not renumbered.
type RemoveLongFilter struct {
	limit int
}

// NewRemoveLongFilter creates a filter that keeps tokens of at most limit runes.
func NewRemoveLongFilter(limit int) *RemoveLongFilter {
	return &RemoveLongFilter{limit: limit}
}

func (f *RemoveLongFilter) Wrap(inner port.TokenStream) port.TokenStream {
	limit := f.limit
	return &keepStream{
		inner: inner,
		keep: func(tok *domain.Token) bool {
			return utf8.RuneCountInString(tok.Text) <= limit
		},
	}
}

func (f *RemoveLongFilter) Clone() port.TokenFilter {
	return &RemoveLongFilter{limit: f.limit}
}

// LowerCaser lowercases token text. Each instance owns its own Caser,
// which is not safe for concurrent use.
type LowerCaser struct {
	caser cases.Caser
}

// NewLowerCaser creates a new LowerCaser.
func NewLowerCaser() *LowerCaser {
	return &LowerCaser{caser: cases.Lower(language.Und)}
}

func (f *LowerCaser) Wrap(inner port.TokenStream) port.TokenStream {
	return &mapStream{
		inner: inner,
		apply: func(tok *domain.Token) {
			if hasUpperOrNonASCII(tok.Text) {
				tok.Text = f.caser.String(tok.Text)
			}
		},
	}
}

func (f *LowerCaser) Clone() port.TokenFilter {
	return NewLowerCaser()
}

func hasUpperOrNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= utf8.RuneSelf || ('A' <= c && c <= 'Z') {
			return true
		}
	}
	return false
}

// StopWordFilter drops tokens found in a fixed word set. The set is never
// modified after construction, so clones share it.
type StopWordFilter struct {
	words map[string]struct{}
}

// NewStopWordFilter creates a filter removing the given words.
func NewStopWordFilter(words []string) *StopWordFilter {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return &StopWordFilter{words: m}
}

// NewEnglishStopWordFilter creates a filter with a common English stop list.
func NewEnglishStopWordFilter() *StopWordFilter {
	return NewStopWordFilter(EnglishStopWords())
}

func (f *StopWordFilter) Wrap(inner port.TokenStream) port.TokenStream {
	words := f.words
	return &keepStream{
		inner: inner,
		keep: func(tok *domain.Token) bool {
			_, stop := words[tok.Text]
			return !stop
		},
	}
}

func (f *StopWordFilter) Clone() port.TokenFilter {
	return &StopWordFilter{words: f.words}
}

// EnglishStopWords returns a common English stop list.
func EnglishStopWords() []string {
	return []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "he", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "will", "with", "this",
		"have", "had", "but", "not", "you", "your", "we", "our",
		"they", "their", "she", "her", "his", "if", "or", "so",
		"no", "can", "do", "does", "did", "been", "being", "would",
		"could", "should", "may", "might", "must", "shall", "which",
		"who", "whom", "what", "when", "where", "why", "how", "all",
		"each", "every", "both", "few", "more", "most", "other",
		"some", "such", "than", "too", "very", "just", "also",
	}
}
