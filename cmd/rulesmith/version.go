package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/rulesmith"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rulesmith",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rulesmith version %s\n", strings.TrimSpace(rulesmith.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
