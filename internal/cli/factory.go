package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/rulesmith"
	"github.com/aretw0/rulesmith/pkg/config"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/ports"
)

// Options are the settings shared by every command.
type Options struct {
	ConfigPath string
	LogLevel   string

	// DocsDir and IndexURL locate the corpus results are collected from.
	DocsDir  string
	IndexURL string
	// MiniDocsDir and MiniIndexURL locate the (usually smaller) corpus rules
	// are generated against. Empty values fall back to the main ones.
	MiniDocsDir  string
	MiniIndexURL string
	RedisAddr    string

	// Overrides use config file keys and are applied last.
	Overrides map[string]any
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if opts.DocsDir != "" {
		cfg.Corpus.DocsDir = opts.DocsDir
	}
	if opts.IndexURL != "" {
		cfg.Search.URL = opts.IndexURL
	}
	if opts.RedisAddr != "" {
		cfg.Redis.Addr = opts.RedisAddr
	}
	if len(opts.Overrides) > 0 {
		if err := config.Decode(opts.Overrides, &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// generationConfig points cfg at the mini corpus when one is given.
func generationConfig(cfg config.Config, opts Options) config.Config {
	gen := cfg.Clone()
	if opts.MiniDocsDir != "" {
		gen.Corpus.DocsDir = opts.MiniDocsDir
	}
	if opts.MiniIndexURL != "" {
		gen.Search.URL = opts.MiniIndexURL
	}
	return gen
}

// createGenerator initializes a Generator with standard CLI conventions.
func createGenerator(cfg config.Config, opts Options, logger *slog.Logger, hooks domain.LifecycleHooks) (*rulesmith.Generator, error) {
	gen, err := rulesmith.New(generationConfig(cfg, opts),
		rulesmith.WithLogger(logger),
		rulesmith.WithLifecycleHooks(hooks),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing generator: %w", err)
	}
	return gen, nil
}

// collector is the searcher and corpus results are read from. Both are nil
// when generation and collection share one corpus.
type collector struct {
	searcher ports.Searcher
	corpus   ports.Corpus
	close    func() error
}

func createCollector(cfg config.Config, opts Options, logger *slog.Logger) (collector, error) {
	var c collector
	if opts.MiniIndexURL != "" && opts.MiniIndexURL != cfg.Search.URL {
		c.searcher, c.close = rulesmith.NewSearcher(cfg, logger)
	}
	if opts.MiniDocsDir != "" && opts.MiniDocsDir != cfg.Corpus.DocsDir {
		corpus, err := rulesmith.NewCorpus(cfg, logger)
		if err != nil {
			if c.close != nil {
				c.close()
			}
			return c, err
		}
		c.corpus = corpus
	}
	return c, nil
}

func (c collector) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}
