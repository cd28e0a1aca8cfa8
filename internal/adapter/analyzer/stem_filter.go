package analyzer

import (
	"fmt"
	"sort"

	"github.com/kljensen/snowball/english"
	"github.com/kljensen/snowball/french"
	"github.com/kljensen/snowball/russian"
	"github.com/kljensen/snowball/spanish"
	"github.com/kljensen/snowball/swedish"

	"lexis/internal/domain"
	"lexis/internal/port"
)

// Algorithm selects the stemming implementation.
type Algorithm string

const (
	AlgorithmSnowball Algorithm = "snowball"
	AlgorithmPorter   Algorithm = "porter"
)

const stemCacheSize = 4096

var snowballStemmers = map[string]func(word string, stemStopWords bool) string{
	"english": english.Stem,
	"french":  french.Stem,
	"russian": russian.Stem,
	"spanish": spanish.Stem,
	"swedish": swedish.Stem,
}

// StemLanguages returns the languages supported by the snowball algorithm.
func StemLanguages() []string {
	langs := make([]string, 0, len(snowballStemmers))
	for l := range snowballStemmers {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// StemmerFilter replaces each token's text by its stem.
//
// Every instance memoizes recent stems in a private cache, so an instance
// must not be shared between goroutines; Clone starts with an empty cache.
type StemmerFilter struct {
	language  string
	algorithm Algorithm
	stem      func(string) string
	cache     map[string]string
}

// NewEnglishStemmer returns the snowball English stemmer.
func NewEnglishStemmer() *StemmerFilter {
	f, _ := NewStemmer("english", AlgorithmSnowball)
	return f
}

// NewStemmer returns a stemmer for language using algorithm.
// The Porter algorithm only supports english.
func NewStemmer(language string, algorithm Algorithm) (*StemmerFilter, error) {
	if algorithm == "" {
		algorithm = AlgorithmSnowball
	}
	f := &StemmerFilter{
		language:  language,
		algorithm: algorithm,
		cache:     make(map[string]string),
	}
	switch algorithm {
	case AlgorithmSnowball:
		fn, ok := snowballStemmers[language]
		if !ok {
			return nil, fmt.Errorf("snowball stemmer: unsupported language %q", language)
		}
		f.stem = func(word string) string { return fn(word, true) }
	case AlgorithmPorter:
		if language != "english" {
			return nil, fmt.Errorf("porter stemmer: unsupported language %q", language)
		}
		f.stem = NewPorterStemmer().Stem
	default:
		return nil, fmt.Errorf("unknown stemming algorithm %q", algorithm)
	}
	return f, nil
}

func (f *StemmerFilter) Wrap(inner port.TokenStream) port.TokenStream {
	return &mapStream{
		inner: inner,
		apply: func(tok *domain.Token) {
			tok.Text = f.lookup(tok.Text)
		},
	}
}

func (f *StemmerFilter) Clone() port.TokenFilter {
	return &StemmerFilter{
		language:  f.language,
		algorithm: f.algorithm,
		stem:      f.stem,
		cache:     make(map[string]string),
	}
}

func (f *StemmerFilter) lookup(word string) string {
	if stem, ok := f.cache[word]; ok {
		return stem
	}
	stem := f.stem(word)
	if len(f.cache) >= stemCacheSize {
		clear(f.cache)
	}
	f.cache[word] = stem
	return stem
}
