package main

import (
	"github.com/aretw0/rulesmith/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the rule generation HTTP server",
	Long: `Serves POST /generate, GET /healthz and Prometheus metrics on GET /metrics.
The request body may carry {"overrides": {...}} using configuration keys.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.RunServe(ctx, sharedOptions(cmd), ":"+port, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
