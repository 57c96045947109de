package main

import (
	"fmt"
	"os"

	"github.com/aretw0/rulesmith/internal/cli"
	"github.com/spf13/cobra"
)

var lutCmd = &cobra.Command{
	Use:   "lut [docs-dir]",
	Short: "Build the document lookup table",
	Long: `Scans a sharded document directory and prints one "id<TAB>path" line per
*-doc.json.gz file. Point corpus.lookup_table at the result to skip globbing
when documents are resolved by id.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docsDir, _ := cmd.Flags().GetString("docs-dir")
		if len(args) > 0 {
			docsDir = args[0]
		}
		out, _ := cmd.Flags().GetString("output")

		n, err := cli.RunLookupTable(docsDir, out, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if out != "" && out != "-" {
			fmt.Fprintf(os.Stderr, "%d documents indexed into %s\n", n, out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lutCmd)
	lutCmd.Flags().StringP("output", "o", "-", "Output file (- for stdout)")
}
