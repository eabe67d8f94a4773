package main

import (
	"context"
	"fmt"

	"github.com/aretw0/knots/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <story>",
	Short: "Export the story graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the story, one subgraph per knot, with
analysis issues highlighted. With --session the session's path is drawn too.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		logger, err := loggerFrom(cmd)
		if err != nil {
			return err
		}

		eng, closeFn, err := cli.CreateEngine(engineOptions(cmd, args[0]), logger)
		if err != nil {
			return err
		}
		defer closeFn()

		diagram, err := eng.Diagram(context.Background(), sessionID)
		if err != nil {
			return fmt.Errorf("error generating graph: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), diagram)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Overlay the path of this session (requires a shared store)")
}
