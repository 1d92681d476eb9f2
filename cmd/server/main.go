package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"shortlink/internal/analytics"
	"shortlink/internal/repo"
	"shortlink/internal/service"
	"shortlink/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)
	slog.Info("Starting shortlink service...", "port", os.Getenv("PORT"))

	err := godotenv.Load()
	if err != nil {
		slog.Warn("Error loading .env file", "error", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	redisPassword := os.Getenv("REDIS_PASSWORD")
	baseURL := os.Getenv("BASE_URL")
	geoipPath := os.Getenv("GEOIP_DB")
	port := os.Getenv("PORT")

	if redisAddr == "" || baseURL == "" || port == "" {
		slog.Error("Missing required environment variables")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := store.ConnectRedis(redisAddr, redisPassword)
	if err != nil {
		slog.Error("Could not connect to Redis", "error", err)
		return
	}
	defer kv.Close()

	geo := analytics.NoGeo()
	if geoipPath != "" {
		geo, err = analytics.OpenGeo(geoipPath)
		if err != nil {
			slog.Error("Could not open GeoIP database", "path", geoipPath, "error", err)
			return
		}
		defer geo.Close()
	}

	repository := repo.New(kv)
	svc := service.New(repository, geo, baseURL)

	server := service.NewServer(port, svc)
	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start(ctx) }()

	slog.Info("Service is up and running!")

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			slog.Error("Server stopped with error", "error", err)
			stop()
		}
	}

	slog.Info("Shutting down gracefully...")
}
