// ABOUTME: Long-running surfaces: dashboard, REST server, and MCP server
// ABOUTME: Each shares the stores opened for the configured backend
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/dealdesk/handlers"
	"github.com/harperreed/dealdesk/hook"
	"github.com/harperreed/dealdesk/viz"
	"github.com/harperreed/dealdesk/web"
)

func newDashboardCommand(rt *runtime) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show pipeline statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rt.stores()
			if err != nil {
				return err
			}

			contacts := hook.NewContacts(app.Contacts, rt.logger)
			deals := hook.NewDeals(app.Deals, rt.logger)
			stats, err := viz.GenerateDashboardStats(cmd.Context(), contacts, deals)
			if err != nil {
				return err
			}
			if contacts.Snapshot().Degraded || deals.Snapshot().Degraded {
				warn(cmd.ErrOrStderr(), "backend unavailable, statistics may be incomplete")
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), viz.RenderDashboard(stats))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the statistics as JSON")
	return cmd
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newServeCommand(rt *runtime) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rt.stores()
			if err != nil {
				return err
			}
			if listen == "" {
				listen = rt.cfg.Listen
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			srv := web.NewServer(web.Config{
				Contacts:   app.Contacts,
				Deals:      app.Deals,
				Logger:     rt.logger,
				Registerer: app.Registry,
				Gatherer:   app.Registry,
			})
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "dealdesk listening on http://%s\n", listen)
			return srv.Start(ctx, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config)")
	return cmd
}

func newMCPCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rt.stores()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			server := handlers.NewServer(rt.version, app.Contacts, app.Deals, rt.logger)
			rt.logger.Info("starting MCP server", zap.String("version", rt.version))
			if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				return fmt.Errorf("MCP server failed: %w", err)
			}
			return nil
		},
	}
}
