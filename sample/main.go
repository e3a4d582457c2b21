// Runnable wiring of the domain-event core: config, logging, postgres,
// redis, the event bus with both slices' handlers, and the HTTP API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/samSKIF/EmployeeRewards-sub009/employee"
	"github.com/samSKIF/EmployeeRewards-sub009/eventbus"
	"github.com/samSKIF/EmployeeRewards-sub009/infra/postgres"
	"github.com/samSKIF/EmployeeRewards-sub009/sample/api"
	"github.com/samSKIF/EmployeeRewards-sub009/sample/config"
	"github.com/samSKIF/EmployeeRewards-sub009/survey"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.Postgres.DSN())
	if err != nil {
		slog.Error("Failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	bus := eventbus.New(
		eventbus.WithHistoryLimit(cfg.Bus.HistoryLimit),
		eventbus.WithAsyncDelivery(),
		eventbus.WithObserver(api.BusObserver()),
	)

	employeeRepo := postgres.NewEmployeeRepository(db)
	surveyRepo := postgres.NewSurveyRepository(db)

	employeeService := employee.NewService(employeeRepo, bus)
	surveyService := survey.NewService(surveyRepo, bus)

	employeeHandlers := employee.NewHandlers(bus)
	if err := employeeHandlers.Initialize(); err != nil {
		slog.Error("Failed to register employee handlers", "error", err)
		os.Exit(1)
	}
	defer employeeHandlers.Cleanup()

	surveyHandlers := survey.NewHandlers(bus, surveyRepo)
	if err := surveyHandlers.Initialize(); err != nil {
		slog.Error("Failed to register survey handlers", "error", err)
		os.Exit(1)
	}
	defer surveyHandlers.Cleanup()

	handlers := api.NewHandlers(employeeService, surveyService, bus)
	server := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: api.NewRouter(handlers, redisClient),
	}

	go func() {
		slog.Info("HTTP server listening", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	// Drain in-flight event deliveries before the process exits.
	busCtx, cancelBus := context.WithTimeout(context.Background(),
		time.Duration(cfg.Bus.ShutdownTimeout)*time.Second)
	defer cancelBus()
	if err := bus.Close(busCtx); err != nil {
		slog.Error("Event bus shutdown incomplete", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
