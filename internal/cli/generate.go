package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aretw0/rulesmith"
	"github.com/aretw0/rulesmith/internal/presentation/graph"
	"github.com/aretw0/rulesmith/internal/presentation/tui"
	"github.com/aretw0/rulesmith/pkg/adapters/file"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/observability"
	"github.com/aretw0/rulesmith/pkg/runner"
)

// GenerateOptions control the batch run output.
type GenerateOptions struct {
	Quiet bool
	Out   io.Writer
}

// RunGenerate runs the batch loop: generate, filter, collect matches and
// save one JSON record per accepted rule under the configured out_dir.
func RunGenerate(ctx context.Context, opts Options, gopts GenerateOptions) (runner.Summary, error) {
	logger, err := createLogger(opts.LogLevel)
	if err != nil {
		return runner.Summary{}, err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return runner.Summary{}, err
	}

	if !gopts.Quiet {
		tui.PrintBanner(gopts.Out, rulesmith.Version)
	}

	var (
		mu    sync.Mutex
		saved []string
	)
	hooks := observability.LogHooks(logger).Merge(domain.LifecycleHooks{
		OnGeneration: func(_ context.Context, e *domain.GenerationEvent) {
			if e.Outcome == domain.GenerationSucceeded {
				mu.Lock()
				saved = append(saved, e.Rule)
				mu.Unlock()
			}
		},
	})

	gen, err := createGenerator(cfg, opts, logger, hooks)
	if err != nil {
		return runner.Summary{}, err
	}
	defer gen.Close()

	col, err := createCollector(cfg, opts, logger)
	if err != nil {
		return runner.Summary{}, err
	}
	defer col.Close()

	sink := file.NewRuleSink(cfg.OutDir)
	start := time.Now()
	summary, err := gen.Runner(sink, col.searcher, col.corpus).Run(ctx)

	if !gopts.Quiet {
		render := tui.NewRenderer()
		out, rerr := render(tui.Report(summary, time.Since(start), saved))
		if rerr != nil {
			logger.Warn("report render failed", "err", rerr)
		}
		fmt.Fprint(gopts.Out, out)
		printSystemMessage(gopts.Out, "Results written to %s", cfg.OutDir)
	}
	if sig := interruptedBy(ctx); sig != nil {
		logger.Info("Run interrupted", "signal", sig)
		if !gopts.Quiet {
			printSystemMessage(gopts.Out, "Interrupted by %s", sig)
		}
	}
	return summary, handleExecutionError(err)
}

// RunGraph generates one rule and prints it followed by its Mermaid diagram.
func RunGraph(ctx context.Context, opts Options, w io.Writer) error {
	logger, err := createLogger(opts.LogLevel)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	gen, err := createGenerator(cfg, opts, logger, domain.LifecycleHooks{})
	if err != nil {
		return err
	}
	defer gen.Close()

	rule, err := gen.GenerateWith(ctx, nil)
	if err != nil {
		return handleExecutionError(err)
	}
	fmt.Fprintf(w, "%%%% %s\n", rule)
	fmt.Fprint(w, graph.GenerateMermaid(rule))
	return nil
}
