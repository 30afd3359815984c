package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"

	"netalab-backend/internal/api"
	"netalab-backend/internal/bus"
	"netalab-backend/internal/catalog"
	"netalab-backend/internal/sampler"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	port := getenv("PORT", "8080")
	libraryPath := getenv("LIBRARY_PATH", "")
	natsURL := getenv("NATS_URL", "")
	corsOrigins := getenv("CORS_ORIGINS", "*")
	seed := getenvInt("SAMPLER_SEED", 0)

	var registry *catalog.Registry
	var err error
	if libraryPath != "" {
		registry, err = catalog.LoadFile(libraryPath)
	} else {
		registry, err = catalog.Load()
	}
	if err != nil {
		// Broken threshold tables must never serve: a silent
		// misclassification is worse than refusing to start.
		logger.Error("library failed validation", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if seed == 0 {
		seed = int(time.Now().UnixNano())
	}
	smp := sampler.New(registry, rand.New(rand.NewSource(int64(seed))))

	var publisher *bus.Publisher
	if natsURL != "" {
		publisher, err = bus.NewPublisher(natsURL)
		if err != nil {
			logger.Error("failed to connect to nats", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer publisher.Close()
	}

	handler := &api.Handler{
		Registry: registry,
		Sampler:  smp,
		Bus:      publisher,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	handler.RegisterRoutes(r)

	cors := handlers.CORS(
		handlers.AllowedOrigins(strings.Split(corsOrigins, ",")),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      cors(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	logger.Info("netalab-backend listening", slog.String("port", port), slog.Int("tests", len(registry.Tests())))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("error", err.Error()))
	}
}

func getenv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getenvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if parsed, err := strconv.Atoi(val); err == nil {
		return parsed
	}
	return fallback
}
