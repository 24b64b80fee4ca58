package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pulse-go/internal/app"
	"pulse-go/internal/config"
	"pulse-go/internal/pulse"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a PulseApp. The caller must call closeApp.
// operation identifies the CLI command being run (e.g. "SyncOne", "Serve").
func newApp(cmd *cobra.Command, operation string) (*app.PulseApp, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	opts := app.Options{Passphrase: app.PromptPassphrase("Passphrase: ")}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		opts.LogLevel = slog.LevelDebug
	}

	a, err := app.NewPulseApp(cmd.Context(), cfg, operation, opts)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// closeApp closes a and reports snapshot upload failures, which happen after the command's output.
func closeApp(a *app.PulseApp) {
	if err := a.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

var rootCmd = &cobra.Command{
	Use:           "pulse",
	Short:         "Social metrics ingestion and scoring",
	SilenceUsage:  true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		instanceID := uuid.New().String()
		cfg := config.NewConfig(instanceID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Instance ID: %s\n", instanceID)
		fmt.Printf("Base Dir:    %s\n", defaults["base_dir"])
		fmt.Println("Next: pulse db migrate && pulse keys init")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Instance ID: %s\n", cfg.InstanceID)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Database:    %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Encryption:  %s\n", cfg.Encryption.Type)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:       %s (%s)\n", v.Name, v.Type)
		}
		fmt.Printf("Workers:     %d\n", cfg.Sync.Workers)
		if cfg.Sync.Schedule != "" {
			fmt.Printf("Schedule:    %s\n", cfg.Sync.Schedule)
		}
		fmt.Printf("Listen:      %s\n", cfg.Server.ListenAddr)
		return nil
	},
}

var configVaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage vault",
}

var configVaultCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the vault is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "CheckVault")
		if err != nil {
			return err
		}
		defer closeApp(a)

		if err := a.CheckVault(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Vault OK")
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the credential encryption key",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the key pair that seals stored access credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := app.InitKeys(cfg, app.PromptPassphrase("New passphrase: ")); err != nil {
			return fmt.Errorf("initializing keys: %w", err)
		}
		fmt.Printf("Key pair written to %s\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the metrics database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := app.MigrateDatabase(cfg)
		if err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		fmt.Printf("Database at schema version %d\n", st.Current)
		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := app.DatabaseStatus(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Current: %d\nLatest:  %d\nPending: %d\n", st.Current, st.Latest, st.Pending())
		if st.Dirty {
			fmt.Println("Dirty:   yes (a migration failed)")
		}
		return nil
	},
}

var dbRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the local database with the vault snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		version, err := app.RestoreDatabase(cmd.Context(), cfg, force)
		if err != nil {
			return fmt.Errorf("restoring database: %w", err)
		}
		fmt.Printf("Restored snapshot version %d\n", version)
		return nil
	},
}

// account command
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage linked accounts",
}

var accountAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Link an external account to a client",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetString("client")
		platform, _ := cmd.Flags().GetString("platform")
		externalID, _ := cmd.Flags().GetString("external-id")
		credential, _ := cmd.Flags().GetString("credential")
		inactive, _ := cmd.Flags().GetBool("inactive")

		if credential == "-" {
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("reading credential from stdin: %w", err)
			}
			credential = strings.TrimSpace(line)
		}

		a, err := newApp(cmd, "AddAccount")
		if err != nil {
			return err
		}
		defer closeApp(a)

		account, err := a.AddAccount(cmd.Context(), app.NewAccount{
			ClientID:          clientID,
			Platform:          pulse.Platform(platform),
			ExternalAccountID: externalID,
			Credential:        credential,
			Inactive:          inactive,
		})
		if err != nil {
			return fmt.Errorf("adding account: %w", err)
		}

		fmt.Printf("Linked %s account %s as %s\n", account.Platform, account.ExternalAccountID, account.ID)
		return nil
	},
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List linked accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListAccounts")
		if err != nil {
			return err
		}
		defer closeApp(a)

		accounts, err := a.ListAccounts(cmd.Context())
		if err != nil {
			return err
		}

		if len(accounts) == 0 {
			fmt.Println("No accounts linked.")
			return nil
		}

		for _, acc := range accounts {
			lastSync := "never"
			if acc.LastSync.Valid {
				lastSync = acc.LastSync.Time.Format("2006-01-02 15:04:05")
			}
			active := "active"
			if !acc.IsActive {
				active = "inactive"
			}
			fmt.Printf("%s  %-12s  %-14s  %-20s  %-8s  %-12s  %s\n",
				acc.ID, acc.ClientID, acc.Platform, acc.ExternalAccountID, active, acc.ConnectionStatus, lastSync)
		}
		return nil
	},
}

// sync command
var syncCmd = &cobra.Command{
	Use:   "sync [ACCOUNT_ID]",
	Short: "Sync one account, or every active account with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		clientID, _ := cmd.Flags().GetString("client")
		platform, _ := cmd.Flags().GetString("platform")

		if len(args) == 0 && !all {
			return fmt.Errorf("specify an ACCOUNT_ID or --all")
		}
		if len(args) == 1 && all {
			return fmt.Errorf("ACCOUNT_ID and --all are mutually exclusive")
		}

		if len(args) == 1 {
			a, err := newApp(cmd, "SyncOne")
			if err != nil {
				return err
			}
			defer closeApp(a)

			rec, err := a.SyncOne(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			printRecord(rec)
			return nil
		}

		a, err := newApp(cmd, "SyncMany")
		if err != nil {
			return err
		}
		defer closeApp(a)

		result, err := a.SyncMany(cmd.Context(), pulse.SyncFilter{ClientID: clientID, Platform: pulse.Platform(platform)})
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		for _, r := range result.Results {
			fmt.Printf("ok    %s  %-14s  score %d\n", r.AccountID, r.Platform, r.Metrics.HealthScore)
		}
		for _, r := range result.Errors {
			fmt.Printf("fail  %s  %-14s  %s\n", r.AccountID, r.Platform, r.Error)
		}
		fmt.Printf("Synced %d, failed %d\n", result.Synced, result.Failed)
		return nil
	},
}

// metrics command
var metricsCmd = &cobra.Command{
	Use:   "metrics ACCOUNT_ID",
	Short: "View stored metric records of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "ListMetrics")
		if err != nil {
			return err
		}
		defer closeApp(a)

		records, err := a.ListMetrics(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No metrics recorded.")
			return nil
		}

		for _, rec := range records {
			fmt.Printf("%s  reach %-8d  eng %5.2f%%  followers %-8d (%+d)  score %3d  %s\n",
				rec.Date, rec.Reach, rec.EngagementRate, rec.FollowerCount, rec.NetFollowerChange,
				rec.HealthScore, rec.HealthStatus)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "GetHistory")
		if err != nil {
			return err
		}
		defer closeApp(a)

		ops, err := a.GetHistory(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				duration = op.FinishedAt.Time.Sub(op.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-15s  %s  %-8s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and scheduled syncs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Serve")
		if err != nil {
			return err
		}
		defer closeApp(a)

		return a.Serve(cmd.Context())
	},
}

func printRecord(rec *pulse.MetricRecord) {
	fmt.Printf("Account:     %s (%s)\n", rec.AccountID, rec.Platform)
	fmt.Printf("Date:        %s\n", rec.Date)
	fmt.Printf("Reach:       %d\n", rec.Reach)
	fmt.Printf("Engagement:  %.2f%%\n", rec.EngagementRate)
	fmt.Printf("Followers:   %d (%+d)\n", rec.FollowerCount, rec.NetFollowerChange)
	if rec.TopPostURL.Valid {
		fmt.Printf("Top item:    %s (%s, %d)\n", rec.TopPostURL.String, rec.TopPostType.String, rec.TopPostReach)
	}
	fmt.Printf("Health:      %d %s\n", rec.HealthScore, rec.HealthStatus)
	fmt.Printf("Insight:     %s\n", rec.InsightText)
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configVaultCmd)
	configVaultCmd.AddCommand(configVaultCheckCmd)

	keysCmd.AddCommand(keysInitCmd)

	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbRestoreCmd)
	dbRestoreCmd.Flags().Bool("force", false, "Overwrite an existing local database")

	accountCmd.AddCommand(accountAddCmd)
	accountCmd.AddCommand(accountListCmd)
	accountAddCmd.Flags().String("client", "", "Owning client ID")
	accountAddCmd.Flags().String("platform", "", "One of ShortVideo, ImageVideo-A, ImageVideo-B, VideoChannel")
	accountAddCmd.Flags().String("external-id", "", "Account, page or channel ID on the platform")
	accountAddCmd.Flags().String("credential", "", "Access token; \"-\" reads it from stdin")
	accountAddCmd.Flags().Bool("inactive", false, "Link the account without syncing it")
	_ = accountAddCmd.MarkFlagRequired("client")
	_ = accountAddCmd.MarkFlagRequired("platform")
	_ = accountAddCmd.MarkFlagRequired("external-id")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().Bool("all", false, "Sync every active account")
	syncCmd.Flags().String("client", "", "With --all, only sync this client's accounts")
	syncCmd.Flags().String("platform", "", "With --all, only sync accounts on this platform")
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.Flags().IntP("limit", "n", 30, "Maximum number of records to show")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(serveCmd)
}
