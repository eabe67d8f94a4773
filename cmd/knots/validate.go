package main

import (
	"fmt"

	"github.com/aretw0/knots/internal/presentation/tui"
	"github.com/aretw0/knots/internal/validator"
	"github.com/aretw0/knots/pkg/domain"
	"github.com/aretw0/knots/pkg/loader"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <story>",
	Short: "Check the story graph for consistency",
	Long: `Analyzes the story from its entry point and reports broken links, unreachable
nodes, dead ends and inescapable loops. Exits non-zero when any error is found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		allowUnreachable, _ := cmd.Flags().GetBool("allow-unreachable")

		story, err := loader.Load[domain.Payload](args[0])
		if err != nil {
			return err
		}

		report := validator.Inspect(story, validator.Options{AllowUnreachable: allowUnreachable})
		tui.PrintReport(cmd.OutOrStdout(), args[0], report)

		if len(report.Errors) > 0 {
			return fmt.Errorf("validation failed for %s", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("allow-unreachable", false, "Report unreachable nodes as warnings instead of errors")
}
