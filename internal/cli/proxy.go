package cli

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"pandora-cli/internal/proxy"
	"pandora-cli/internal/store"
)

func newProxyCmd(app *App) *cobra.Command {
	var (
		listen  string
		backend string
		origins []string
		limit   float64
		burst   int
	)

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Run the development API proxy in front of the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.config()
			if err != nil {
				return writeErr(cmd, err)
			}
			pc := cfg.Proxy
			fl := cmd.Flags()
			if fl.Changed("listen") || pc.Listen == "" {
				pc.Listen = listen
			}
			if fl.Changed("backend") || pc.Backend == "" {
				pc.Backend = backend
			}
			if pc.Backend == "" {
				pc.Backend = app.BaseURL
			}
			if pc.Backend == "" {
				pc.Backend = cfg.BaseURL()
			}
			if fl.Changed("allow-origin") || len(pc.AllowOrigins) == 0 {
				pc.AllowOrigins = origins
			}
			if fl.Changed("rate-limit") {
				pc.RateLimit = limit
			}
			if fl.Changed("burst") {
				pc.Burst = burst
			}
			timeout, err := cfg.RequestTimeout()
			if err != nil {
				return writeErr(cmd, err)
			}

			srv, err := proxy.New(proxy.Options{
				Backend:      pc.Backend,
				AllowOrigins: pc.AllowOrigins,
				RateLimit:    pc.RateLimit,
				Burst:        pc.Burst,
				Timeout:      timeout,
				Logger:       app.logger(),
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, stop := signal.NotifyContext(ctxOf(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := srv.Run(ctx, pc.Listen); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	defaultOrigins := []string{"http://localhost:8001", "http://127.0.0.1:8001"}
	cmd.Flags().StringVar(&listen, "listen", envOr("PANDORA_PROXY_LISTEN", store.DefaultProxyListen), "Listen address")
	cmd.Flags().StringVar(&backend, "backend", "", "Backend base URL (default: --base-url / config apiBase)")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", defaultOrigins, "CORS allowed origins ("+strings.Join(defaultOrigins, ",")+")")
	cmd.Flags().Float64Var(&limit, "rate-limit", 0, "Max requests per second (0 = unlimited)")
	cmd.Flags().IntVar(&burst, "burst", 0, "Rate limiter burst (default: rate-limit)")
	return cmd
}
