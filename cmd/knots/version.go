package main

import (
	"fmt"

	"github.com/aretw0/knots"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of knots",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "knots version %s\n", knots.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
