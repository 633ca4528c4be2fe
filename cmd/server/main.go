package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/bandstand-io/bandstand/config"
	"github.com/bandstand-io/bandstand/internal/server"
	"github.com/bandstand-io/bandstand/internal/storage"
	"github.com/bandstand-io/bandstand/internal/store"
)

func main() {
	port := flag.String("port", "", "Server port (overrides config)")
	configPath := flag.String("config", "./config/config.yaml", "Path to config file")
	memoryStore := flag.Bool("memory", false, "Use the in-memory store instead of MongoDB")
	flag.Parse()

	// Secrets such as MONGO_URI come from the environment; a local
	// .env file is optional.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	st, err := openStore(cfg, *memoryStore)
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(ctx); err != nil {
			slog.Error("Failed to close store", "error", err)
		}
	}()

	artifacts, err := openStorage(cfg)
	if err != nil {
		slog.Error("Failed to open artifact storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := artifacts.Close(); err != nil {
			slog.Error("Failed to close artifact storage", "error", err)
		}
	}()

	srv := server.New(cfg, st, artifacts)
	srv.StartCleanupWorker()
	srv.StartReminderWorker()

	slog.Info("Starting Bandstand API server", "port", cfg.Server.Port)
	if err := srv.Start(cfg.Server.Port); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config, memory bool) (*store.Store, error) {
	if memory {
		slog.Warn("Using in-memory store; data is lost on restart")
		return store.NewMemory(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := store.NewMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	slog.Info("Connected to MongoDB", "database", cfg.Mongo.Database)
	return store.WithCache(st, cfg.Cache.Size, cfg.Cache.TTL()), nil
}

func openStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Type {
	case "gcs":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewGCSStorage(ctx, cfg.Storage.Bucket, cfg.Storage.ObjectPrefix, cfg.Storage.CredentialsFile)
	case "local", "":
		return storage.NewLocalStorage(cfg.Storage.OutputDir)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}
