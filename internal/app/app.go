package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/voicecart/internal/assistant"
	"github.com/xenking/voicecart/internal/console"
	"github.com/xenking/voicecart/internal/domain/order"
	"github.com/xenking/voicecart/internal/domain/product"
	"github.com/xenking/voicecart/internal/storage/jsonfile"
	"github.com/xenking/voicecart/internal/storage/postgres"
	"github.com/xenking/voicecart/pkg/health"
	"github.com/xenking/voicecart/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the ops server and the console
// session, and handles graceful shutdown. It is the single wiring point for
// the application.
func Run(ctx context.Context, lg *zap.Logger, _ *app.Telemetry, cfg *Config) error {
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	var (
		catalog product.Repository
		ledger  order.Repository
	)
	if cfg.DatabaseURL != "" {
		lg.Info("Initializing", zap.String("backend", "postgres"), zap.String("ops_addr", cfg.OpsAddr))

		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}

		catalog = postgres.NewCatalogRepository(pool)
		ledger = postgres.NewLedgerRepository(pool)
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, pool.Ping)
	} else {
		lg.Info("Initializing",
			zap.String("backend", "jsonfile"),
			zap.String("catalog", cfg.CatalogPath),
			zap.String("ledger", cfg.LedgerPath),
			zap.String("ops_addr", cfg.OpsAddr),
		)

		fileCatalog := jsonfile.NewCatalog(cfg.CatalogPath)
		catalog = fileCatalog
		ledger = jsonfile.NewLedger(cfg.LedgerPath)
		healthSvc.AddReadinessCheck("catalog", time.Second, func(ctx context.Context) error {
			_, err := fileCatalog.List(ctx)
			return err
		})
	}

	// Domain services.
	orderService := order.NewService(catalog, ledger)
	tools := assistant.NewTools(assistant.NewService(catalog, orderService, lg))

	// Ops server: probe endpoints only; the shopping surface is the console.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.OpsAddr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	healthSvc.SetReady(true)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Graceful shutdown: wait for cancellation, drain, then stop the server.
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-runCtx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Ops server shutdown error", zap.Error(err))
		}
	}()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		lg.Info("Ops server listening", zap.String("addr", cfg.OpsAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "ops server")
		}
		return nil
	})
	g.Go(func() error {
		// One console run drives one conversation session. Quitting the
		// console shuts the whole process down.
		defer cancel()
		sess := assistant.NewSession()
		err := console.New(tools, sess, os.Stdin, os.Stdout).Run(gCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return errors.Wrap(err, "console")
	})

	err := g.Wait()
	<-shutdownDone
	return err
}
