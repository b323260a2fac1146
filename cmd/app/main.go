package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courier-dispatch/cmd"
	inkafka "courier-dispatch/internal/adapters/in/kafka"
	"courier-dispatch/internal/adapters/out/postgres"
	"courier-dispatch/internal/jobs"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "courier-dispatch",
		Short:         "Dispatches orders to couriers and moves couriers around the city grid",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	root.AddCommand(serveCommand(), migrateCommand(), assignCommand(), advanceCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Fatalf("courier-dispatch: %v", err)
	}
}

// app is what every command needs: config, logger, database and the
// composition root built on them.
type app struct {
	cfg    cmd.Config
	logger *slog.Logger
	db     *gorm.DB
	root   *cmd.CompositionRoot
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := cmd.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	db, err := cmd.OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	root, err := cmd.NewCompositionRoot(ctx, cfg, db, logger)
	if err != nil {
		_ = cmd.CloseDatabase(db)
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, db: db, root: root}, nil
}

func (a *app) close() {
	if err := a.root.Close(); err != nil {
		a.logger.Warn("close clients", "error", err)
	}
	if err := cmd.CloseDatabase(a.db); err != nil {
		a.logger.Warn("close database", "error", err)
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp(c.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := postgres.Migrate(c.Context(), a.db); err != nil {
				return err
			}
			a.logger.Info("schema is up to date")
			return nil
		},
	}
}

func assignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assign",
		Short: "Dispatch pending orders once",
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp(c.Context())
			if err != nil {
				return err
			}
			defer a.close()

			job, err := a.root.CreateAssignmentJob()
			if err != nil {
				return err
			}
			return job.RunOnce(c.Context())
		},
	}
}

func advanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "advance",
		Short: "Move busy couriers one step",
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp(c.Context())
			if err != nil {
				return err
			}
			defer a.close()

			return a.root.CreateMovementJob().RunOnce(c.Context())
		},
	}
}

func serveCommand() *cobra.Command {
	var migrate bool
	command := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the scheduled jobs, the consumer and the outbox relay",
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp(c.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if migrate {
				if err := postgres.Migrate(c.Context(), a.db); err != nil {
					return err
				}
			}
			return a.serve(c.Context())
		},
	}
	command.Flags().BoolVar(&migrate, "migrate", false, "migrate the schema before serving")
	return command
}

func (a *app) serve(ctx context.Context) error {
	router, err := a.root.CreateHTTPRouter()
	if err != nil {
		return err
	}
	manager, err := a.root.CreateJobManager()
	if err != nil {
		return err
	}

	var (
		consumer *inkafka.BasketConfirmedConsumer
		relay    *jobs.OutboxRelay
		listener *jobs.OutboxListener
	)
	if a.root.KafkaEnabled() {
		relay, listener, err = a.root.CreateOutboxRelay()
		if err != nil {
			return err
		}
		consumer = a.root.CreateBasketConfirmedConsumer()
	} else {
		a.logger.Warn("kafka is not configured: baskets are not consumed and order events stay in the outbox")
	}

	g, ctx := errgroup.WithContext(ctx)

	if err := manager.StartAll(ctx); err != nil {
		return err
	}
	g.Go(func() error {
		<-ctx.Done()
		manager.StopAll()
		return nil
	})

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", a.cfg.HTTPPort)
		a.logger.Info("http server listening", "addr", addr)
		if err := router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return router.Shutdown(shutdownCtx)
	})

	if consumer != nil {
		g.Go(func() error { return consumer.Run(ctx) })
		g.Go(func() error { return listener.Run(ctx) })
		g.Go(func() error { return relay.Run(ctx) })
	}

	err = g.Wait()
	a.logger.Info("service stopped")
	return err
}
