package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperair/imgpack/internal/api"
	"github.com/hyperair/imgpack/pkg/cache"
	"github.com/hyperair/imgpack/pkg/pipeline"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr      string
	redisAddr string
	timeout   time.Duration
	noCache   bool
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080", timeout: time.Minute}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the packing API over HTTP",
		Long: `Serve the packing API over HTTP.

  POST /v1/pack   pack a JSON manifest, returns the layout and artifacts
  GET  /healthz   liveness probe

With --redis (or ` + envRedisAddr + `) results are cached in Redis and shared
between instances; otherwise the local file cache is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for the shared cache (host:port)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	if opts.redisAddr == "" {
		opts.redisAddr = os.Getenv(envRedisAddr)
	}

	var (
		store     cache.Cache
		cacheDesc string
		err       error
	)
	switch {
	case opts.noCache:
		store, cacheDesc = cache.NewNullCache(), "off"
		printWarning("Caching disabled")
	case opts.redisAddr != "":
		store, err = cache.NewRedisCache(ctx, cache.RedisConfig{Addr: opts.redisAddr})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		cacheDesc = "redis " + opts.redisAddr
		c.Logger.Info("using redis cache", "addr", opts.redisAddr)
	default:
		store, err = c.newCache(ctx, false)
		if err != nil {
			return err
		}
		cacheDesc = describeCache(store)
	}

	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, appName+":api:"), c.Logger)
	defer runner.Close()

	srv := api.New(runner, api.WithLogger(c.Logger), api.WithTimeout(opts.timeout))
	printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(opts.addr)))
	printKeyValue("cache", cacheDesc)
	printKeyValue("timeout", opts.timeout.String())

	err = srv.ListenAndServe(ctx, opts.addr)
	if errors.Is(err, context.Canceled) {
		printSuccess("Server stopped")
		return nil
	}
	return err
}

// describeCache names the backend newCache picked.
func describeCache(store cache.Cache) string {
	switch s := store.(type) {
	case *cache.FileCache:
		return "file " + s.Dir()
	case *cache.RedisCache:
		return "redis"
	default:
		return "off"
	}
}

// displayAddr turns ":8080" into "localhost:8080" for printing.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
