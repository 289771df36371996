// @title        Ohm's Lab API
// @version      1.0
// @description  Interactive Ohm's law lesson: circuit lab, short-circuit demonstration, quiz and narration.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "ohms_lab/docs"
	"ohms_lab/internal/config"
	"ohms_lab/internal/handlers"
	"ohms_lab/internal/lab/narration"
	"ohms_lab/internal/lesson"
	"ohms_lab/internal/logger"
	"ohms_lab/internal/observability"
	"ohms_lab/internal/repository"
	"ohms_lab/internal/repository/db"
	"ohms_lab/internal/server"
	"ohms_lab/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zoobzio/capitan"
)

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load configs/config.yml, OHMSLAB_* env and defaults
	loader := config.NewLoader("configs", ".")
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	log.SetLevel(cfg.Log.Level)
	loader.Watch(func(c *config.Config) {
		log.SetLevel(c.Log.Level)
		log.Infow("config_reloaded", "file", loader.File(), "log_level", c.Log.Level)
	}, func(err error) {
		log.Warnw("config_reload_rejected", "err", err)
	})

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, log)
	if err != nil {
		log.Fatalw("failed to init tracing", "err", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewLabCollector(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalw("failed to register metrics", "err", err)
	}
	collector.HookLabSignals()

	// open DB
	conn, err := openDB(cfg.DB.Path, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	content, err := lesson.Default()
	if err != nil {
		log.Fatalw("failed to load lesson content", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Options{
		TokenSecret: cfg.Auth.TokenSecret,
		TokenTTL:    cfg.Auth.TokenTTL,
		SessionTTL:  cfg.Sessions.IdleTTL,
		Content:     content,
		Narrator:    newNarrator(ctx, cfg.Narration, log),
		Log:         log,
	})
	apiHandler := handlers.NewHandler(services, log, handlers.WithMetricsHandler(collector.Handler()))

	// evict idle sessions
	go services.Janitor.Run(ctx, cfg.Sessions.JanitorTick)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Server.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, cfg, log)
}

func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	if path == db.MemoryPath {
		log.Infow("activity log kept in memory", "db_path", path)
	}
	return db.InitDB(path)
}

// newNarrator picks Gemini speech when an API key is configured.
func newNarrator(ctx context.Context, cfg config.NarrationConfig, log *logger.Logger) narration.Narrator {
	silent := narration.Silent{WordsPerMinute: cfg.WordsPerMinute}
	if cfg.GeminiAPIKey == "" {
		log.Infow("narration without speech backend", "words_per_minute", cfg.WordsPerMinute)
		return silent
	}
	g, err := narration.NewGemini(ctx, narration.GeminiConfig{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.Model,
		Voice:  cfg.Voice,
	})
	if err != nil {
		log.Errorw("gemini narrator unavailable, falling back to silent", "err", err)
		return silent
	}
	log.Infow("narration via gemini", "model", cfg.Model, "voice", cfg.Voice)
	return g
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http_listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, cfg *config.Config, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the janitor
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	capitan.Shutdown()
}
