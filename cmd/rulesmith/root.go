package main

import (
	"fmt"
	"os"

	"github.com/aretw0/rulesmith/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rulesmith",
	Short: "rulesmith generates random surface rules that match an indexed corpus",
	Long: `rulesmith grows token-level surface rules from random corpus sentences.
Every mutation is checked against the search index, so each rule it emits
matches at least one sentence.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "YAML or JSON configuration file")
	pf.String("docs-dir", "", "Directory of sharded *-doc.json.gz documents")
	pf.String("index-url", "", "Base URL of the search index service")
	pf.String("mini-docs-dir", "", "Documents used for generation (defaults to --docs-dir)")
	pf.String("mini-index-url", "", "Index used for generation (defaults to --index-url)")
	pf.String("redis", "", "Redis address for the search result cache")
	pf.String("log-level", "", "Log level written to stderr: debug, info, warn, error (default off)")
	pf.StringToString("set", nil, "Override a configuration key, e.g. --set max_span_length=3")
}

// sharedOptions reads the persistent flags.
func sharedOptions(cmd *cobra.Command) cli.Options {
	f := cmd.Flags()
	opts := cli.Options{}
	opts.ConfigPath, _ = f.GetString("config")
	opts.DocsDir, _ = f.GetString("docs-dir")
	opts.IndexURL, _ = f.GetString("index-url")
	opts.MiniDocsDir, _ = f.GetString("mini-docs-dir")
	opts.MiniIndexURL, _ = f.GetString("mini-index-url")
	opts.RedisAddr, _ = f.GetString("redis")
	opts.LogLevel, _ = f.GetString("log-level")

	set, _ := f.GetStringToString("set")
	if len(set) > 0 {
		opts.Overrides = make(map[string]any, len(set))
		for k, v := range set {
			opts.Overrides[k] = v
		}
	}
	return opts
}

// override copies a command flag into opts when the user set it.
func override(cmd *cobra.Command, opts *cli.Options, flag, key string) {
	if !cmd.Flags().Changed(flag) {
		return
	}
	if opts.Overrides == nil {
		opts.Overrides = map[string]any{}
	}
	opts.Overrides[key] = cmd.Flags().Lookup(flag).Value.String()
}
