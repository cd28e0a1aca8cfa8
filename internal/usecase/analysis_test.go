package usecase

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lexis/config"
	"lexis/internal/adapter/analyzer"
)

func TestBuildPipeline(t *testing.T) {
	tests := []struct {
		name  string
		pc    config.PipelineConfig
		input string
		want  []string
	}{
		{
			name:  "simple lowercase",
			pc:    config.PipelineConfig{Name: "p", Tokenizer: "simple", Filters: []config.FilterConfig{{Type: "lowercase"}}},
			input: "Hello World",
			want:  []string{"hello", "world"},
		},
		{
			name: "porter stemmer",
			pc: config.PipelineConfig{Name: "p", Tokenizer: "simple", Filters: []config.FilterConfig{
				{Type: "lowercase"},
				{Type: "stemmer", Language: "english", Algorithm: "porter"},
			}},
			input: "Running Ponies",
			want:  []string{"run", "poni"},
		},
		{
			name: "custom stop words",
			pc: config.PipelineConfig{Name: "p", Tokenizer: "whitespace", Filters: []config.FilterConfig{
				{Type: "stopwords", Words: []string{"foo"}},
			}},
			input: "foo bar, baz",
			want:  []string{"bar,", "baz"},
		},
		{
			name: "remove long with explicit limit",
			pc: config.PipelineConfig{Name: "p", Tokenizer: "simple", Filters: []config.FilterConfig{
				{Type: "remove_long", Limit: 3},
			}},
			input: "abc abcd",
			want:  []string{"abc"},
		},
		{
			name:  "raw",
			pc:    config.PipelineConfig{Name: "p", Tokenizer: "raw"},
			input: "Keep Me Whole",
			want:  []string{"Keep Me Whole"},
		},
		{
			name:  "japanese",
			pc:    config.PipelineConfig{Name: "p", Tokenizer: "ja", Filters: []config.FilterConfig{{Type: "remove_long"}}},
			input: "東京タワー",
			want:  []string{"東京", "タワー"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := BuildPipeline(tt.pc)
			if err != nil {
				t.Fatal(err)
			}
			got := analyzer.Terms(p.Tokenize(tt.input))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("terms mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildPipeline_Errors(t *testing.T) {
	tests := []struct {
		name string
		pc   config.PipelineConfig
	}{
		{"unknown tokenizer", config.PipelineConfig{Name: "p", Tokenizer: "ngram"}},
		{"unknown filter", config.PipelineConfig{Name: "p", Tokenizer: "simple", Filters: []config.FilterConfig{{Type: "ascii_fold"}}}},
		{"unsupported stem language", config.PipelineConfig{Name: "p", Tokenizer: "simple", Filters: []config.FilterConfig{{Type: "stemmer", Language: "latin"}}}},
		{"negative limit", config.PipelineConfig{Name: "p", Tokenizer: "simple", Filters: []config.FilterConfig{{Type: "remove_long", Limit: -1}}}},
		{"stop words without list", config.PipelineConfig{Name: "p", Tokenizer: "simple", Filters: []config.FilterConfig{{Type: "stopwords", Language: "german"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildPipeline(tt.pc)
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestNewManager_CustomPipelines(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.Pipelines = []config.PipelineConfig{
		{Name: "code", Tokenizer: "whitespace", Filters: []config.FilterConfig{{Type: "lowercase"}}},
		{Name: "default", Tokenizer: "raw"},
	}

	m, err := NewManager(cfg, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"code", "default", "en_stem", "ja", "raw"}
	if diff := cmp.Diff(want, m.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	tok, _ := m.Get("default")
	if got := analyzer.Terms(tok.Tokenize("Hello World")); !cmp.Equal(got, []string{"Hello World"}) {
		t.Errorf("custom pipeline did not replace the built-in: %v", got)
	}
}

func TestNewManager_InvalidPipeline(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.Pipelines = []config.PipelineConfig{{Name: "bad", Tokenizer: "nope"}}

	if _, err := NewManager(cfg, discardLogger()); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
