package main

import (
	"fmt"
	"os"

	"github.com/aretw0/knots/internal/cli"
	"github.com/aretw0/knots/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var playCmd = &cobra.Command{
	Use:   "play <story>",
	Short: "Play a story in the terminal",
	Long: `Plays the story interactively. Pick a choice by its number or ID, or type
'quit' to leave. With --session and a shared store the game can be resumed later.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		plain, _ := cmd.Flags().GetBool("plain")
		quiet, _ := cmd.Flags().GetBool("quiet")

		logger, err := loggerFrom(cmd)
		if err != nil {
			return err
		}

		eng, closeFn, err := cli.CreateEngine(engineOptions(cmd, args[0]), logger)
		if err != nil {
			return err
		}
		defer closeFn()

		// Styled output only makes sense on a terminal.
		plain = plain || !term.IsTerminal(int(os.Stdout.Fd()))
		out := cmd.OutOrStdout()
		if !plain && !quiet {
			tui.PrintBanner(out)
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		_, err = cli.RunSession(sigCtx, eng, cmd.InOrStdin(), out, cli.PlayOptions{
			SessionID: sessionID,
			Renderer:  tui.NewRenderer(plain),
			Quiet:     quiet,
		})
		if sig := sigCtx.Signal(); sig != nil && !quiet {
			// The prompt line is still open when a signal arrives.
			fmt.Fprintf(out, "\n>>> %s.\n", cli.StopReason(sig))
		}
		return cli.HandleExecutionError(err)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("session", "", "Session ID to start or resume")
	playCmd.Flags().Bool("plain", false, "Print raw markdown instead of styled output")
	playCmd.Flags().Bool("quiet", false, "Hide system messages")
}
