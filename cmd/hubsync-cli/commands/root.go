package commands

import (
	"context"
	"fmt"
	"hubsync-backend/internal/browser"
	"hubsync-backend/internal/components/chrono"
	"hubsync-backend/internal/components/telemetry"
	"hubsync-backend/internal/config"
	"hubsync-backend/internal/session"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	dotenvPath string
)

var rootCmd = &cobra.Command{
	Use:   "hubsync-cli",
	Short: "hubsync-cli drives the ProVisors hub portal from the command line.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)
		return telemetry.SetupFromEnv(cmd.Context(), "hubsync-cli")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := telemetry.Shutdown(ctx)
		if err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging.")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "The config file to read.")
	rootCmd.PersistentFlags().StringVar(&dotenvPath, "env", ".env", "The dotenv file loaded into the environment when present.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFrom(configPath, dotenvPath)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// withSession runs fn against a fresh browser session and closes it after.
func withSession(ctx context.Context, fn func(cfg config.Config, sess *session.Session) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tel := telemetry.SlogAPI{}
	sess := session.New(
		browser.NewRodOpener(cfg.Browser(), tel),
		cfg.Hub(),
		tel,
		chrono.StandardImpl{},
	)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sess.Close(closeCtx)
	}()
	return fn(cfg, sess)
}

func login(ctx context.Context, sess *session.Session) error {
	fmt.Println("Logging in...")
	ok, err := sess.Login(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("login failed, check PROVISORS_EMAIL and PROVISORS_PASSWORD")
	}
	fmt.Println("Login: success")
	return nil
}
