package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/pebble/internal/catalog"
	"github.com/vango-dev/pebble/internal/config"
	"github.com/vango-dev/pebble/internal/harness"
	"github.com/vango-dev/pebble/pkg/inspect"
	"github.com/vango-dev/pebble/pkg/pebble"
	"github.com/vango-dev/pebble/pkg/snapshot"
)

// shutdownTimeout bounds how long serve waits for open requests on exit.
const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	addr      string
	catalog   string
	scenario  string
	noRestore bool
}

func serveCmd(opts *rootOptions) *cobra.Command {
	so := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live boundary over HTTP",
		Long: `Serve a catalog's cells from one live boundary.

The inspector lists and writes cells over HTTP, streams writes over
WebSocket and exposes Prometheus metrics. When pebble.json configures
a snapshot store, plain cells are restored on start and saved on exit.

Examples:
  pebble serve
  pebble serve --catalog todos --addr :8080
  pebble serve --scenario scenarios/counter.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, opts, so)
		},
	}

	cmd.Flags().StringVarP(&so.addr, "addr", "a", "", "Listen address (default from pebble.json)")
	cmd.Flags().StringVar(&so.catalog, "catalog", "counter", "Catalog to serve")
	cmd.Flags().StringVar(&so.scenario, "scenario", "", "Scenario to run against the boundary before serving")
	cmd.Flags().BoolVar(&so.noRestore, "no-restore", false, "Skip restoring the saved snapshot")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts *rootOptions, so *serveOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if so.addr != "" {
		cfg.Inspector.Addr = so.addr
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())
	out := cmd.OutOrStdout()

	cat, err := catalog.Get(so.catalog)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := pebble.NewMetrics(
		pebble.WithNamespace(cfg.Metrics.Namespace),
		pebble.WithSubsystem(cfg.Metrics.Subsystem),
		pebble.WithRegistry(reg),
	)

	b := pebble.NewRoot(pebble.WithLogger(logger), pebble.WithMetrics(metrics))
	defer b.Dispose()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		if !so.noRestore {
			if err := restoreSnapshot(ctx, b, store, cfg.Snapshot.Key); err != nil {
				return err
			}
		}
	}

	if so.scenario != "" {
		s, err := harness.LoadScenario(so.scenario)
		if err != nil {
			return err
		}
		result, err := harness.RunOn(b, cat, s, harness.WithLogger(logger))
		if err != nil {
			return err
		}
		if !result.Pass {
			warn(out, "scenario %s: %d failed expectations", s.Name, len(result.Failures))
		}
	}

	var inspectOpts []inspect.Option
	inspectOpts = append(inspectOpts, inspect.WithGatherer(reg), inspect.WithLogger(logger))
	if allowed := cfg.CheckOrigin(); allowed != nil {
		inspectOpts = append(inspectOpts, inspect.WithCheckOrigin(func(r *http.Request) bool {
			return allowed(r.Header.Get("Origin"))
		}))
	}
	ins := inspect.New(b, cat.Cells, inspectOpts...)

	srv := &http.Server{
		Addr:              cfg.Inspector.Addr,
		Handler:           ins,
		ReadHeaderTimeout: 5 * time.Second,
	}

	printBanner(out)
	info(out, "catalog    %s (%d cells)", cat.Name, len(cat.Cells))
	info(out, "inspector  http://%s/cells", cfg.Inspector.Addr)
	info(out, "metrics    http://%s/metrics", cfg.Inspector.Addr)
	if store != nil {
		info(out, "snapshots  %s, key %q", cfg.Snapshot.Driver, cfg.Snapshot.Key)
	}
	logger.Info("inspector listening", "addr", cfg.Inspector.Addr, "catalog", cat.Name)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		ins.Close()
		err := srv.Shutdown(shutdownCtx)

		if store != nil {
			saveErr := b.Do(func(m *pebble.Manager) error {
				return snapshot.Save(shutdownCtx, store, cfg.Snapshot.Key, m)
			})
			if saveErr != nil {
				logger.Error("snapshot save failed", "error", saveErr)
				if err == nil {
					err = saveErr
				}
			} else {
				logger.Info("snapshot saved", "key", cfg.Snapshot.Key)
			}
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	success(out, "stopped")
	return nil
}

// openStore opens the configured snapshot store, or returns nil when
// snapshots are disabled.
func openStore(ctx context.Context, cfg *config.Config) (snapshot.Store, error) {
	sc := cfg.Snapshot
	switch sc.Driver {
	case config.DriverMemory:
		return snapshot.NewMemoryStore(), nil
	case config.DriverSQLite:
		store, err := snapshot.NewSQLiteStore(ctx, sc.DSN, snapshot.WithSQLTableName(sc.Table))
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverS3:
		client := snapshot.NewS3Client(snapshot.S3Config{
			Region:          sc.Region,
			Endpoint:        sc.Endpoint,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			UsePathStyle:    sc.Endpoint != "",
		})
		return snapshot.NewS3Store(client, sc.Bucket, sc.Prefix), nil
	default:
		return nil, nil
	}
}

// restoreSnapshot loads the snapshot under key into b. A missing snapshot
// is not an error.
func restoreSnapshot(ctx context.Context, b *pebble.Boundary, store snapshot.Store, key string) error {
	err := b.Do(func(m *pebble.Manager) error {
		return snapshot.Load(ctx, store, key, m)
	})
	if err != nil && !snapshotMissing(err) {
		return err
	}
	return nil
}
