package analyzer

import (
	"errors"
	"sort"
	"sync"

	"lexis/internal/port"
)

// ErrUnknownTokenizer is wrapped by callers that turn a missing registry
// entry into a configuration error.
var ErrUnknownTokenizer = errors.New("unknown tokenizer")

// Manager stores named tokenizer templates and hands out clones of them.
//
// Templates are never used for tokenization and never modified after
// registration, so every caller of Get receives an instance it owns
// exclusively. The lock only covers the map.
type Manager struct {
	mu         sync.RWMutex
	tokenizers map[string]port.Tokenizer
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{tokenizers: make(map[string]port.Tokenizer)}
}

// NewDefaultManager returns a manager with the built-in pipelines:
//
//   - raw: the whole input as one token
//   - default: simple split, drop tokens over 40 runes, lowercase
//   - en_stem: default followed by the English snowball stemmer
//   - ja: script-boundary segmentation, drop tokens over 40 runes
func NewDefaultManager() *Manager {
	m := NewManager()
	m.Register("raw", NewRawTokenizer())
	m.Register("default", Chain(NewSimpleTokenizer(),
		NewRemoveLongFilter(DefaultTokenLengthLimit),
		NewLowerCaser(),
	))
	m.Register("en_stem", Chain(NewSimpleTokenizer(),
		NewRemoveLongFilter(DefaultTokenLengthLimit),
		NewLowerCaser(),
		NewEnglishStemmer(),
	))
	m.Register("ja", Chain(NewJapaneseTokenizer(),
		NewRemoveLongFilter(DefaultTokenLengthLimit),
	))
	return m
}

// Register stores a clone of tok under name, replacing any previous entry.
// It panics if name is empty or tok is nil.
func (m *Manager) Register(name string, tok port.Tokenizer) {
	if name == "" {
		panic("analyzer: Register with empty tokenizer name")
	}
	if tok == nil {
		panic("analyzer: Register of nil tokenizer " + name)
	}
	template := tok.Clone()

	m.mu.Lock()
	m.tokenizers[name] = template
	m.mu.Unlock()
}

// Get returns a fresh instance of the tokenizer registered under name.
func (m *Manager) Get(name string) (port.Tokenizer, bool) {
	m.mu.RLock()
	template, ok := m.tokenizers[name]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return template.Clone(), true
}

// Has reports whether name is registered.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tokenizers[name]
	return ok
}

// Names returns the registered names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	names := make([]string, 0, len(m.tokenizers))
	for name := range m.tokenizers {
		names = append(names, name)
	}
	m.mu.RUnlock()
	sort.Strings(names)
	return names
}
