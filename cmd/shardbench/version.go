package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pg-sharding/shardbench/pkg"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the version",
	// no config needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shardbench %s\n", pkg.ShardbenchVersionRevision)
	},
}
