package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/coderoom-server/internal/app"
	"github.com/vovakirdan/coderoom-server/internal/config"
	applog "github.com/vovakirdan/coderoom-server/internal/log"
)

var rootCmd = &cobra.Command{
	Use:          "coderoom-server",
	Short:        "Collaborative code room server",
	SilenceUsage: true,
	RunE:         runServer,
}

var (
	flagConfig    string
	flagAddr      string
	flagLogLevel  string
	flagEngineURL string
	flagAuditDB   string
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&flagConfig, "config", "", "path to config.yaml (written with defaults when missing)")
	flags.StringVar(&flagAddr, "addr", "", "HTTP listen address")
	flags.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&flagEngineURL, "engine-url", "", "code execution engine base URL")
	flags.StringVar(&flagAuditDB, "audit-db", "", "sqlite path for the run audit log")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootLog := applog.New(flagLogLevel)
	cfg, path, err := config.Load(bootLog, flagConfig)
	if err != nil {
		return err
	}
	cfg.UpdateFrom(config.Config{
		Addr:        flagAddr,
		LogLevel:    flagLogLevel,
		EngineURL:   flagEngineURL,
		AuditDBPath: flagAuditDB,
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := applog.New(cfg.LogLevel)
	logger.Info().Str("config", path).Str("engine_url", cfg.EngineURL).Msg("configuration loaded")

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting coderoom server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
