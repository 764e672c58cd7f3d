// ABOUTME: Root cobra command, global flags, and per-run setup
// ABOUTME: Loads config, builds the logger, and opens stores lazily
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/logging"
)

type globalFlags struct {
	configPath string
	backend    string
	dbPath     string
	logLevel   string
}

// runtime is the state shared by the commands of one invocation.
type runtime struct {
	version string
	flags   globalFlags
	cfg     *config.Config
	logger  *zap.Logger
	app     *App
}

// stores opens the configured backend on first use.
func (rt *runtime) stores() (*App, error) {
	if rt.app != nil {
		return rt.app, nil
	}
	app, err := Open(rt.cfg, rt.logger)
	if err != nil {
		return nil, err
	}
	rt.app = app
	return app, nil
}

func (rt *runtime) close() {
	if rt.app != nil {
		if err := rt.app.Close(); err != nil {
			rt.logger.Warn("failed to close stores", zap.Error(err))
		}
		rt.app = nil
	}
}

func (rt *runtime) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(rt.flags.configPath)
	if err != nil {
		return err
	}
	if rt.flags.backend != "" {
		cfg.Backend = rt.flags.backend
	}
	if rt.flags.dbPath != "" {
		cfg.DBPath = rt.flags.dbPath
	}
	if rt.flags.logLevel != "" {
		cfg.Log.Level = rt.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	rt.cfg = cfg
	rt.logger = logger.With(zap.String("backend", cfg.Backend))
	return nil
}

func newRootCommand(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "dealdesk",
		Short: "dealdesk - contacts and deal pipeline",
		Long: `dealdesk manages CRM contacts and deals against a mock, hosted, or
local SQLite backend.

It can be used directly from the terminal, served as a JSON REST API, or
exposed to AI assistants as an MCP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rt.flags.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/dealdesk/config.yaml)")
	pf.StringVar(&rt.flags.backend, "backend", "", "Backend: mock, hosted, or local")
	pf.StringVar(&rt.flags.dbPath, "db-path", "", "Local database path (default: $XDG_DATA_HOME/dealdesk/dealdesk.db)")
	pf.StringVar(&rt.flags.logLevel, "log-level", "", "Log level: debug, info, warn, or error")

	root.AddCommand(
		newContactsCommand(rt),
		newDealsCommand(rt),
		newDashboardCommand(rt),
		newServeCommand(rt),
		newMCPCommand(rt),
		newVersionCommand(rt),
	)
	return root
}

// Run executes the command line in args and releases everything it opened.
func Run(ctx context.Context, version string, args []string, stdout, stderr io.Writer) error {
	rt := &runtime{version: version, logger: zap.NewNop()}
	defer rt.close()

	root := newRootCommand(rt)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newVersionCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		// version needs no config
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "dealdesk version %s\n", rt.version)
			return err
		},
	}
}
