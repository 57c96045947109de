package main

import (
	"github.com/aretw0/rulesmith/internal/cli"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a batch of rules and save their matches",
	Long: `Generates --num-queries random rules, drops degenerate ones, collects up to
--num-matches matching sentences for each and writes one query_<id>.json
file per rule that matched something.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := sharedOptions(cmd)
		override(cmd, &opts, "out-dir", "out_dir")
		override(cmd, &opts, "num-queries", "num_queries")
		override(cmd, &opts, "num-matches", "num_matches")
		override(cmd, &opts, "workers", "workers")
		override(cmd, &opts, "seed", "seed")
		quiet, _ := cmd.Flags().GetBool("quiet")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		_, err := cli.RunGenerate(ctx, opts, cli.GenerateOptions{
			Quiet: quiet,
			Out:   cmd.OutOrStdout(),
		})
		return err
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Generate one rule and print it as a Mermaid diagram",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.RunGraph(ctx, sharedOptions(cmd), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(graphCmd)

	generateCmd.Flags().StringP("out-dir", "o", "out", "Directory for query_<id>.json results")
	generateCmd.Flags().IntP("num-queries", "n", 10, "Number of rules to generate")
	generateCmd.Flags().Int("num-matches", 100, "Maximum matching sentences saved per rule")
	generateCmd.Flags().IntP("workers", "w", 1, "Concurrent generations")
	generateCmd.Flags().Int64("seed", 0, "Random seed (0 picks one from the clock)")
	generateCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner and report")
}
