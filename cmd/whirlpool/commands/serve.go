package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/whirlpool/internal/cave"
	"github.com/dyluth/whirlpool/internal/config"
	"github.com/dyluth/whirlpool/internal/gateway"
	"github.com/dyluth/whirlpool/internal/printer"
	"github.com/dyluth/whirlpool/internal/server"
	"github.com/dyluth/whirlpool/internal/tagger"
	"github.com/dyluth/whirlpool/internal/thinker"
	"github.com/dyluth/whirlpool/pkg/blackboard"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveConfigPath string
	serveAddr       string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the cave and serve thoughts over websocket",
	Long: `Run every configured thinker against the shared thought and serve the
chain over HTTP.

Endpoints:
  /         banner with the running version
  /healthz  health, including the Redis mirror when configured
  /thought  latest {thinker, thought} as JSON
  /ws       websocket stream of changed thoughts

Without whirlpool.yml a Wikipedia and a Library of Congress thinker are
started. API keys are read from the environment or a .env file.

Examples:
  # Serve with the default thinkers on :1234
  whirlpool serve

  # Serve a specific configuration on another port
  whirlpool serve --config cave.yml --addr :8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", config.DefaultPath, "Path to whirlpool.yml")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags().Changed("config"), serveConfigPath)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := buildCave(cfg)
	if err != nil {
		return err
	}

	hub, err := gateway.NewHub(c, gateway.Format(cfg.Server.Format), cfg.Server.PollInterval)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	opts := server.Options{
		Addr:    cfg.Server.Addr,
		Version: version,
		Cave:    c,
		Hub:     hub,
		Stream:  hub.Handler(gctx),
	}

	if cfg.Redis != nil {
		client, err := blackboard.NewClientFromURL(cfg.Redis.URL, cfg.Redis.Instance)
		if err != nil {
			return printer.Error("invalid Redis URL", err.Error(), []string{"Check redis.url in whirlpool.yml"})
		}
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx)
		cancel()
		if err != nil {
			return printer.ErrorWithContext(
				"Redis connection failed",
				fmt.Sprintf("Could not connect to Redis at %s", cfg.Redis.URL),
				map[string]string{"Instance": cfg.Redis.Instance},
				[]string{
					"Start Redis:\n  docker run -p 6379:6379 redis:7-alpine",
					"Remove the redis section from whirlpool.yml to run without a mirror",
				},
			)
		}

		mirror := blackboard.NewMirror(client, 0)
		if err := c.OnCommit(func(e cave.Event) { mirror.Publish(e.Thinker, e.Thought) }); err != nil {
			return err
		}
		g.Go(func() error {
			mirror.Run(gctx)
			return nil
		})
		opts.Redis = client
	}

	srv := server.New(opts)
	if err := srv.Start(); err != nil {
		return printer.Error(
			"failed to start server",
			err.Error(),
			[]string{"Choose another address with --addr"},
		)
	}

	printer.Success("Whirlpool %s listening on %s\n", version, srv.Addr())
	printer.Step("Thinkers: %v\n", c.Names())
	printer.Step("Seed: %q\n", c.Thought())

	g.Go(func() error { return c.Run(gctx) })
	runErr := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		printer.Warning("Server shutdown: %v\n", err)
	}

	if runErr != nil {
		return fmt.Errorf("cave stopped: %w", runErr)
	}
	printer.Info("Stopped.\n")
	return nil
}

// loadConfig loads path. When the path was not given explicitly and the
// default file is missing, the built-in configuration is used.
func loadConfig(explicit bool, path string) (*config.WhirlpoolConfig, error) {
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if err := config.LoadEnv(".env"); err != nil {
				return nil, err
			}
			return config.Default(), nil
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{fmt.Sprintf("Fix %s and try again", path)},
		)
	}
	return cfg, nil
}

// buildCave constructs every configured thinker and registers it.
func buildCave(cfg *config.WhirlpoolConfig) (*cave.Cave, error) {
	shared := thinker.Shared{}
	if cfg.Tagger == config.TaggerProse {
		t, err := tagger.NewProse()
		if err != nil {
			return nil, err
		}
		shared.Tagger = t
	}

	c := cave.New(cave.Options{
		InstanceName: instanceName(cfg),
		Seed:         cfg.Seed,
		MinDelay:     cfg.Cave.MinDelay,
		MaxDelay:     cfg.Cave.MaxDelay,
		LockScope:    cave.LockScope(cfg.Cave.LockScope),
	})

	for _, name := range cfg.ThinkerNames() {
		tc := cfg.Thinkers[name]
		t, err := thinker.Build(tc.Spec(name), shared)
		if err != nil {
			suggestions := []string{fmt.Sprintf("Remove '%s' from whirlpool.yml", name)}
			if tc.APIKeyEnv != "" {
				suggestions = append([]string{fmt.Sprintf("Set %s in the environment or .env", tc.APIKeyEnv)}, suggestions...)
			}
			return nil, printer.Error(fmt.Sprintf("thinker '%s' cannot be built", name), err.Error(), suggestions)
		}
		if err := c.Register(t); err != nil {
			return nil, fmt.Errorf("failed to register thinker: %w", err)
		}
	}

	return c, nil
}

func instanceName(cfg *config.WhirlpoolConfig) string {
	if cfg.Redis != nil {
		return cfg.Redis.Instance
	}
	return ""
}
