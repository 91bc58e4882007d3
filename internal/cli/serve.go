package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/radials/internal/server"
	"github.com/matzehuels/radials/pkg/cache"
	"github.com/matzehuels/radials/pkg/pipeline"
)

// serveCommand creates the serve command that exposes the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
		prefix   string
		noCache  bool
		timeout  time.Duration
		origins  []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout pipeline over HTTP",
		Long: `Serve the layout pipeline over HTTP.

Endpoints:
  GET  /healthz
  POST /v1/layout
  POST /v1/render/{svg|pdf|json}

Layouts are cached in Redis when --redis-url is set, otherwise in the
local cache directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				store   cache.Cache
				backend string
				err     error
			)
			switch {
			case redisURL != "":
				store, err = cache.NewRedisCache(ctx, redisURL)
				if err != nil {
					return fmt.Errorf("connect redis: %w", err)
				}
				backend = "redis"
			default:
				store, err = newCache(noCache)
				if err != nil {
					return err
				}
				backend = "file"
				if noCache {
					backend = "none"
				}
			}

			printKeyValue("Address", addr)
			printKeyValue("Cache", backend)
			printKeyValue("Timeout", timeout.String())
			if noCache && redisURL == "" {
				printWarning("Layout cache disabled, every request recomputes")
			}

			runner := pipeline.NewRunner(store, cache.NewScopedKeyer(cache.NewDefaultKeyer(), prefix), c.Logger)
			defer runner.Close()

			srv := server.New(runner, c.Logger, server.WithTimeout(timeout), server.WithCORSOrigins(origins...))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis URL for a shared layout cache (redis://host:6379/0)")
	cmd.Flags().StringVar(&prefix, "cache-prefix", appName+":", "key prefix in the shared cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().DurationVar(&timeout, "timeout", server.DefaultTimeout, "per-request timeout")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "origins allowed to call the API from a browser (default: any)")

	return cmd
}
