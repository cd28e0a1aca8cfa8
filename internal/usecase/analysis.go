package usecase

import (
	"fmt"
	"log/slog"

	"lexis/config"
	"lexis/internal/adapter/analyzer"
	"lexis/internal/port"
)

// BuildPipeline turns a pipeline definition from the config into a pipeline.
func BuildPipeline(pc config.PipelineConfig) (*analyzer.Pipeline, error) {
	base, err := buildTokenizer(pc.Tokenizer)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", pc.Name, err)
	}

	p := analyzer.NewPipeline(base)
	for i, fc := range pc.Filters {
		f, err := buildFilter(fc)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q filter %d: %w", pc.Name, i, err)
		}
		p = p.Filter(f)
	}
	return p, nil
}

func buildTokenizer(name string) (port.Tokenizer, error) {
	switch name {
	case "raw":
		return analyzer.NewRawTokenizer(), nil
	case "simple":
		return analyzer.NewSimpleTokenizer(), nil
	case "whitespace":
		return analyzer.NewWhitespaceTokenizer(), nil
	case "ja":
		return analyzer.NewJapaneseTokenizer(), nil
	default:
		return nil, fmt.Errorf("%w: base tokenizer %q", config.ErrInvalidConfig, name)
	}
}

func buildFilter(fc config.FilterConfig) (port.TokenFilter, error) {
	switch fc.Type {
	case "remove_long":
		limit := fc.Limit
		if limit == 0 {
			limit = analyzer.DefaultTokenLengthLimit
		}
		if limit < 0 {
			return nil, fmt.Errorf("%w: remove_long limit %d", config.ErrInvalidConfig, limit)
		}
		return analyzer.NewRemoveLongFilter(limit), nil
	case "lowercase":
		return analyzer.NewLowerCaser(), nil
	case "stemmer":
		lang := fc.Language
		if lang == "" {
			lang = "english"
		}
		f, err := analyzer.NewStemmer(lang, analyzer.Algorithm(fc.Algorithm))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
		}
		return f, nil
	case "stopwords":
		if len(fc.Words) > 0 {
			return analyzer.NewStopWordFilter(fc.Words), nil
		}
		if fc.Language != "" && fc.Language != "english" {
			return nil, fmt.Errorf("%w: no built-in stop words for %q", config.ErrInvalidConfig, fc.Language)
		}
		return analyzer.NewEnglishStopWordFilter(), nil
	default:
		return nil, fmt.Errorf("%w: filter type %q", config.ErrInvalidConfig, fc.Type)
	}
}

// NewManager returns the default registry extended with the pipelines in cfg.
// A custom pipeline with a built-in name replaces the built-in.
func NewManager(cfg *config.Config, logger *slog.Logger) (*analyzer.Manager, error) {
	m := analyzer.NewDefaultManager()
	for _, pc := range cfg.Analysis.Pipelines {
		p, err := BuildPipeline(pc)
		if err != nil {
			return nil, err
		}
		if m.Has(pc.Name) {
			logger.Warn("custom pipeline replaces built-in", "name", pc.Name)
		}
		m.Register(pc.Name, p)
		logger.Debug("registered pipeline", "name", pc.Name, "tokenizer", pc.Tokenizer, "filters", p.Len())
	}
	return m, nil
}

// tokenizerFor fetches a fresh instance of name, turning absence into an error.
func tokenizerFor(m *analyzer.Manager, name string) (port.Tokenizer, error) {
	tok, ok := m.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", analyzer.ErrUnknownTokenizer, name, m.Names())
	}
	return tok, nil
}
