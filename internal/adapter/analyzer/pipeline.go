package analyzer

import "lexis/internal/port"

// Pipeline is a base tokenizer followed by an ordered chain of filters.
// The first filter attached sees the base tokenizer's output; the last one
// produces what the caller reads.
//
// Pipeline implements port.Tokenizer, so pipelines of any shape can be
// stored and cloned behind that one interface.
type Pipeline struct {
	base    port.Tokenizer
	filters []port.TokenFilter
}

// NewPipeline returns a pipeline with no filters.
func NewPipeline(base port.Tokenizer) *Pipeline {
	return &Pipeline{base: base}
}

// Chain builds base | filters[0] | filters[1] | ...
func Chain(base port.Tokenizer, filters ...port.TokenFilter) *Pipeline {
	p := NewPipeline(base)
	for _, f := range filters {
		p = p.Filter(f)
	}
	return p
}

// Filter returns a new pipeline whose stream is f applied to the stream of p.
// p is left untouched; its components are cloned into the result.
func (p *Pipeline) Filter(f port.TokenFilter) *Pipeline {
	next := p.clone()
	next.filters = append(next.filters, f)
	return next
}

// Tokenize runs the text through the base tokenizer and every filter.
func (p *Pipeline) Tokenize(text string) port.TokenStream {
	ts := p.base.Tokenize(text)
	for _, f := range p.filters {
		ts = f.Wrap(ts)
	}
	return &guardedStream{inner: ts}
}

func (p *Pipeline) Clone() port.Tokenizer {
	return p.clone()
}

// Len returns the number of filters in the chain.
func (p *Pipeline) Len() int {
	return len(p.filters)
}

func (p *Pipeline) clone() *Pipeline {
	filters := make([]port.TokenFilter, len(p.filters), len(p.filters)+1)
	for i, f := range p.filters {
		filters[i] = f.Clone()
	}
	return &Pipeline{
		base:    p.base.Clone(),
		filters: filters,
	}
}
