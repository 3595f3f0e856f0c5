package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"furnace_trends/internal/catalog"
	"furnace_trends/internal/config"
	"furnace_trends/internal/handlers"
	"furnace_trends/internal/logger"
	"furnace_trends/internal/metrics"
	"furnace_trends/internal/repository"
	"furnace_trends/internal/repository/db"
	"furnace_trends/internal/server"
	"furnace_trends/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// load configs/config.yml + FURNACE_* env
	cfg, err := config.Load("configs", ".")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Configure(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatalw("failed to load parameter catalog", "err", err, "path", cfg.Catalog.Path)
	}

	// open DB
	conn, err := db.InitDB(db.Options{
		Driver:       cfg.DB.Driver,
		DSN:          cfg.DB.DSN,
		Table:        cfg.DB.Table,
		Migrate:      cfg.DB.Migrate,
		MaxOpenConns: cfg.DB.MaxOpenConns,
	})
	if err != nil {
		log.Fatalw("failed to init database", "err", err, "driver", cfg.DB.Driver)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close database", "err", cerr)
		}
	}()

	m := metrics.New()
	m.RegisterDBStats(conn)

	// wire dependencies
	repos := repository.NewRepository(conn,
		repository.WithDriver(cfg.DB.Driver),
		repository.WithTable(cfg.DB.Table),
		repository.WithQueryTimeout(cfg.DB.QueryTimeout),
	)
	services := service.NewService(repos, cat, service.Options{
		Metrics:       m,
		Log:           log,
		ReportMaxRows: cfg.Report.MaxRows,
	})
	trendStart, trendEnd := cfg.TrendDefaults()
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		Hour:               cfg.Sampler.Hour,
		TrendLookbackDays:  cfg.Trend.LookbackDays,
		TrendStart:         trendStart,
		TrendEnd:           trendEnd,
		TrendParams:        cfg.Trend.DefaultParams,
		KPILookbackDays:    cfg.KPI.LookbackDays,
		ReportLookbackDays: cfg.Report.LookbackDays,
		WSDefaultInterval:  cfg.WS.DefaultInterval,
		WSMaxInterval:      cfg.WS.MaxInterval,
		Metrics:            m.Handler(),
	})

	log.Infow("starting",
		"port", cfg.Port,
		"driver", cfg.DB.Driver,
		"table", cfg.DB.Table,
		"parameters", cat.Len(),
		"hour", cfg.Sampler.Hour,
	)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
