package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Bukinich-Pavel/resume-bot/config"
	"github.com/Bukinich-Pavel/resume-bot/internal/infrastructure/external/telegram"
	"github.com/Bukinich-Pavel/resume-bot/internal/infrastructure/persistence/postgres"
)

const adminTimeout = 30 * time.Second

// ─────────────────────────────────────────────────────────────────────────────
// webhook
// ─────────────────────────────────────────────────────────────────────────────

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Inspect or change the registered webhook",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set [url]",
	Short: "Register the webhook URL (defaults to TELEGRAM_WEBHOOK_URL)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := adminClient()
		if err != nil {
			return err
		}
		url := cfg.Telegram.WebhookURL
		if len(args) == 1 {
			url = args[0]
		}
		if url == "" {
			return errors.New("no webhook URL given and TELEGRAM_WEBHOOK_URL is empty")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
		defer cancel()
		if err := client.SetWebhook(ctx, url, cfg.Telegram.AllowedUpdates); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "webhook set to %s\n", url)
		return nil
	},
}

var dropPending bool

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the webhook so the bot can long-poll",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := adminClient()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
		defer cancel()
		if err := client.DeleteWebhook(ctx, dropPending); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "webhook deleted")
		return nil
	},
}

var webhookInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the registered webhook and its delivery state",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := adminClient()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
		defer cancel()
		info, err := client.WebhookInfo(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		url := info.URL
		if url == "" {
			url = "(none, long polling)"
		}
		fmt.Fprintf(out, "url:             %s\n", url)
		fmt.Fprintf(out, "pending updates: %d\n", info.PendingUpdateCount)
		if info.LastErrorMessage != "" {
			fmt.Fprintf(out, "last error:      %s\n", info.LastErrorMessage)
		}
		return nil
	},
}

func adminClient() (*config.Config, *telegram.Client, error) {
	cfg, err := config.Read(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Telegram.Token == "" {
		return nil, nil, errors.New("TELEGRAM_BOT_TOKEN is required (or store it with `resume-bot token set`)")
	}
	log := setupLogger(cfg)

	cc := clientConfig(cfg, log)
	client, err := telegram.NewClient(cc)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// token
// ─────────────────────────────────────────────────────────────────────────────

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the bot token stored in the OS keychain",
}

var tokenAccount string

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the bot token; reads it from stdin when omitted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			fmt.Fprint(cmd.ErrOrStderr(), "bot token: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read token: %w", err)
			}
			token = line
		}

		if err := config.StoreToken(tokenAccount, token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "token stored in keychain service %q, account %q\n",
			config.KeyringService, tokenAccount)
		return nil
	},
}

// ─────────────────────────────────────────────────────────────────────────────
// migrate / journal
// ─────────────────────────────────────────────────────────────────────────────

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply dispatch journal migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := adminDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
		defer cancel()
		m := postgres.NewMigrator(conn)
		if err := m.Migrate(ctx); err != nil {
			return err
		}
		status, err := m.Status(ctx)
		if err != nil {
			return err
		}

		return renderMigrations(cmd.OutOrStdout(), status)
	},
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Read the dispatch journal",
}

var journalRecentCmd = &cobra.Command{
	Use:   "recent [limit]",
	Short: "Print the most recent dispatch outcomes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit := 20
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("limit must be a positive integer, got %q", args[0])
			}
			limit = n
		}

		conn, err := adminDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), adminTimeout)
		defer cancel()
		entries, err := postgres.NewJournalRepository(conn, nil).Recent(ctx, limit)
		if err != nil {
			return err
		}

		return renderJournal(cmd.OutOrStdout(), entries)
	},
}

func adminDatabase(ctx context.Context) (*postgres.Connection, error) {
	cfg, err := config.Read(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	setupLogger(cfg)

	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = cfg.Database.URL
	pgCfg.MaxConns = 2
	pgCfg.MinConns = 0
	return postgres.NewConnection(ctx, pgCfg)
}

func renderMigrations(w io.Writer, status []postgres.Migration) error {
	table := tablewriter.NewWriter(w)
	table.Header("version", "name", "applied")
	for _, mig := range status {
		applied := "no"
		if mig.IsApplied {
			applied = mig.AppliedAt.Local().Format(time.RFC3339)
		}
		if err := table.Append([]string{strconv.Itoa(mig.Version), mig.Name, applied}); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderJournal(w io.Writer, entries []postgres.JournalEntry) error {
	table := tablewriter.NewWriter(w)
	table.Header("at", "update", "kind", "trigger", "status", "ms", "error")
	for _, e := range entries {
		row := []string{
			e.DispatchedAt.Local().Format(time.RFC3339),
			strconv.FormatInt(e.UpdateID, 10),
			e.Kind,
			deref(e.Trigger),
			e.Status,
			strconv.Itoa(e.DurationMs),
			deref(e.ErrorMessage),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return strings.ReplaceAll(*s, "\n", " ")
}

// ─────────────────────────────────────────────────────────────────────────────
// env
// ─────────────────────────────────────────────────────────────────────────────

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables the bot reads",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := config.Describe()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		for _, f := range config.NewFeatureFlags().GetAllFeatures() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s bool\n    \t%s (default false)\n",
				config.FeatureEnvKey(f.Name), f.Description)
		}
		return nil
	},
}

func init() {
	webhookDeleteCmd.Flags().BoolVar(&dropPending, "drop-pending", false, "discard updates queued by Telegram")
	webhookCmd.AddCommand(webhookSetCmd, webhookDeleteCmd, webhookInfoCmd)

	tokenSetCmd.Flags().StringVar(&tokenAccount, "account", "default", "keychain account name")
	tokenCmd.AddCommand(tokenSetCmd)

	journalCmd.AddCommand(journalRecentCmd)
}

