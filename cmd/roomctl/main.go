// Command roomctl is a websocket client for poking at a running server.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "roomctl",
	Short:        "Talk to a coderoom server over its websocket",
	SilenceUsage: true,
}

var (
	flagAddr    string
	flagRoom    string
	flagName    string
	flagTimeout time.Duration
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagAddr, "addr", "ws://localhost:5050/ws", "WebSocket address")
	flags.StringVar(&flagRoom, "room", "default", "room to join")
	flags.StringVar(&flagName, "name", "cli-user", "display name")
	flags.DurationVar(&flagTimeout, "timeout", 10*time.Second, "timeout for one-shot commands")

	rootCmd.AddCommand(smokeCmd, chatCmd, runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("roomctl failed")
		os.Exit(1)
	}
}
