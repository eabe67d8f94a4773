package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/knots/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "knots",
	Short: "Knots is a branching narrative engine",
	Long: `Knots plays stories made of knots, nodes and choices, and checks them for
unreachable nodes, dead ends and inescapable loops.`,
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
	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "", "Log level written to stderr: debug, info, warn or error (silent when empty)")
	flags.String("redis-addr", "", "Redis address for session storage (in-memory when empty)")
	flags.String("redis-prefix", "", "Key prefix for sessions stored in Redis")
	flags.Duration("session-ttl", 0, "Expire stored sessions after this long (0 keeps them)")
	flags.String("session-key", "", "Hex encoded AES-256 key used to seal stored sessions")
	flags.StringToString("hook", nil, "Answer a hook condition with a fixed value, e.g. --hook has_key=true")
}

// loggerFrom builds the logger requested by --log-level.
func loggerFrom(cmd *cobra.Command) (*slog.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	return cli.CreateLogger(level)
}

// engineOptions maps the persistent flags onto engine options for the story at path.
func engineOptions(cmd *cobra.Command, path string) cli.EngineOptions {
	flags := cmd.Flags()
	redisAddr, _ := flags.GetString("redis-addr")
	redisPrefix, _ := flags.GetString("redis-prefix")
	ttl, _ := flags.GetDuration("session-ttl")
	sessionKey, _ := flags.GetString("session-key")
	hooks, _ := flags.GetStringToString("hook")
	level, _ := flags.GetString("log-level")

	return cli.EngineOptions{
		StoryPath:   path,
		RedisAddr:   redisAddr,
		RedisPrefix: redisPrefix,
		SessionTTL:  ttl,
		SessionKey:  sessionKey,
		Hooks:       hooks,
		Debug:       level == "debug",
	}
}
