package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pandora-cli/internal/api"
	"pandora-cli/internal/format"
	"pandora-cli/internal/model"
	"pandora-cli/internal/store"
)

type App struct {
	Dir        string
	BaseURL    string
	Mode       string
	Features   []string
	PrettyJSON bool
	Format     string
	Verbose    bool

	// Now and Logger are fixed by tests; nil means wall clock / zap production config.
	Now    func() time.Time
	Logger *zap.Logger

	cfg    *store.Config
	log    *zap.Logger
	kv     *store.LocalStorage
	client *api.Client
}

// Execute runs the command line in args and releases local storage even when
// the command fails.
func Execute(ctx context.Context, args []string) error {
	app := &App{}
	return app.execute(ctx, newRootCmd(app), args)
}

func (app *App) execute(ctx context.Context, cmd *cobra.Command, args []string) error {
	defer app.close()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "pandora",
		Short:        "Pandora task, journal and team client",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Sign in against the backend (or the local mock with --mode mock)
  pandora login --username alice@example.com --password secret

  # Browse tasks as a table
  pandora tasks list --format table

  # Work offline: mock only the journal feature
  pandora --feature journal=mock journal add --summary "Reviewed PRs"
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := store.LoadDotEnv(); err != nil {
			return writeErr(cmd, err)
		}
		if app.log == nil {
			l, err := newLogger(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			app.log = l
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("PANDORA_DIR", ""), "Data directory holding local storage and optional data/tasks.json (default: config dir)")
	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", envOr("PANDORA_API_BASE", ""), "Backend base URL (default "+store.DefaultAPIBase+")")
	cmd.PersistentFlags().StringVar(&app.Mode, "mode", "", "Global data source for every feature (api|mock)")
	cmd.PersistentFlags().StringArrayVar(&app.Features, "feature", nil, "Per-feature data source, repeatable: name=api|mock")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PANDORA_FORMAT", ""), "Output format ("+strings.Join(format.Formats(), "|")+")")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug logging to stderr")

	_ = cmd.RegisterFlagCompletionFunc("feature", completeFeatureFlag)
	_ = cmd.RegisterFlagCompletionFunc("mode", completeModes)
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return format.Formats(), cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newPasswordCmd(app))
	cmd.AddCommand(newProfileCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newJournalCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newCommentsCmd(app))
	cmd.AddCommand(newModeCmd(app))
	cmd.AddCommand(newProxyCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func newLogger(app *App) (*zap.Logger, error) {
	if app.Logger != nil {
		return app.Logger, nil
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if app.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	l, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

func (app *App) close() {
	if app.kv != nil {
		_ = app.kv.Close()
		app.kv = nil
	}
	app.client = nil
	if app.log != nil && app.Logger == nil {
		_ = app.log.Sync()
	}
}

func (app *App) logger() *zap.Logger {
	if app.log == nil {
		return zap.NewNop()
	}
	return app.log
}

func (app *App) now() time.Time {
	if app.Now != nil {
		return app.Now()
	}
	return time.Now()
}

// config loads config.yaml plus env overrides once per invocation.
func (app *App) config() (*store.Config, error) {
	if app.cfg != nil {
		return app.cfg, nil
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	app.cfg = cfg
	return cfg, nil
}

func (app *App) dataDir() (string, error) {
	if app.Dir != "" {
		return app.Dir, nil
	}
	cfg, err := app.config()
	if err != nil {
		return "", err
	}
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	return store.ConfigDir()
}

// flags resolves the feature routing: config file, then --mode, then --feature.
func (app *App) flags() (*api.Flags, error) {
	cfg, err := app.config()
	if err != nil {
		return nil, err
	}
	useAPI := cfg.UseAPI()
	if strings.TrimSpace(app.Mode) != "" {
		if useAPI, err = store.ParseMode(app.Mode); err != nil {
			return nil, fmt.Errorf("--mode: %w", err)
		}
	}
	f := api.NewFlags(useAPI)
	modes, err := cfg.FeatureModes()
	if err != nil {
		return nil, err
	}
	for name, v := range modes {
		if _, ok := f.SetFeatureMode(name, v); !ok {
			app.logger().Warn("unknown feature in config", zap.String("feature", name))
		}
	}
	for _, kv := range app.Features {
		name, mode, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--feature %q: want name=api|mock", kv)
		}
		v, err := store.ParseMode(mode)
		if err != nil {
			return nil, fmt.Errorf("--feature %s: %w", name, err)
		}
		if _, ok := f.SetFeatureMode(strings.TrimSpace(name), v); !ok {
			return nil, fmt.Errorf("--feature: unknown feature %q (known: %s)", name, strings.Join(model.Features(), ", "))
		}
	}
	return f, nil
}

// facade opens local storage and builds the facade once per invocation.
func (app *App) facade(cmd *cobra.Command) (*api.Client, error) {
	if app.client != nil {
		return app.client, nil
	}
	cfg, err := app.config()
	if err != nil {
		return nil, err
	}
	flags, err := app.flags()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}
	dir, err := app.dataDir()
	if err != nil {
		return nil, err
	}
	kv, err := store.Store{Dir: dir}.Open(ctxOf(cmd))
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}
	app.kv = kv

	base := cfg.BaseURL()
	if strings.TrimSpace(app.BaseURL) != "" {
		base = app.BaseURL
	}
	app.client = api.New(kv, flags, api.Options{
		BaseURL:   base,
		Timeout:   timeout,
		RateLimit: cfg.RateLimit,
		Logger:    app.logger(),
		SeedDir:   dir,
		Now:       app.Now,
		OnUnauthorized: func(status int) {
			app.logger().Info("session cleared", zap.Int("status", status))
		},
	})
	return app.client, nil
}

func (app *App) outputFormat() string {
	if app.Format != "" {
		return app.Format
	}
	if cfg, err := app.config(); err == nil && cfg.Format != "" {
		return cfg.Format
	}
	return format.JSON
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.outputFormat(), app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	if errors.Is(err, api.ErrUnauthorized) {
		fmt.Fprintln(cmd.ErrOrStderr(), "hint: session expired or rejected; run `pandora login`")
	}
	return err
}
