package port

import "lexis/internal/domain"

// TokenStream is a lazy, finite, single-pass sequence of tokens.
// Token is only valid after Advance has returned true.
type TokenStream interface {
	Advance() bool
	Token() *domain.Token
}

// Tokenizer turns text into a token stream.
//
// An instance may hold mutable state and must not be shared between
// goroutines. Clone returns an instance that shares no mutable state with
// the receiver.
type Tokenizer interface {
	Tokenize(text string) TokenStream
	Clone() Tokenizer
}

// TokenFilter rewrites the stream produced by an inner stage. It may drop
// or modify tokens but must not reorder them.
type TokenFilter interface {
	Wrap(inner TokenStream) TokenStream
	Clone() TokenFilter
}
