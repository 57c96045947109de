package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/rulesmith"
	"github.com/aretw0/rulesmith/pkg/adapters/mcp"
	"github.com/aretw0/rulesmith/pkg/observability"
)

// RunMCP exposes rule generation as an MCP server over transport
// ("stdio" or "sse").
func RunMCP(ctx context.Context, opts Options, transport string, port int) error {
	logger, err := createLogger(opts.LogLevel)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	gen, err := createGenerator(cfg, opts, logger, observability.LogHooks(logger))
	if err != nil {
		return err
	}
	defer gen.Close()

	srv := mcp.NewServer(gen.GenerateWith, rulesmith.Version,
		mcp.WithConfig(gen.Config()),
		mcp.WithLogger(logger),
	)

	switch transport {
	case "stdio":
		logger.Info("Starting rulesmith MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting rulesmith MCP server (SSE)", "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}
}
