// Command resume-bot runs the résumé Telegram bot and its operational
// subcommands.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Bukinich-Pavel/resume-bot/config"
	"github.com/Bukinich-Pavel/resume-bot/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "resume-bot",
	Short:         "Telegram bot that presents a résumé through menus",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "C", os.Getenv("CONFIG_PATH"),
		"path to a YAML config file; environment variables override it")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webhookCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(envCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger configures structured logging: text in development, JSON
// elsewhere, unless LOG_FORMAT says otherwise.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	def := logger.FormatJSON
	if cfg.IsDevelopment() {
		def = logger.FormatText
	}
	opts.Format = logger.ParseFormat(cfg.Observability.LogFormat, def)

	log := logger.New(opts).With("app", cfg.App.Name)
	slog.SetDefault(log)
	return log
}
