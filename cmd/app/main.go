package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/config"
	"github.com/BuzzLyutic/kanban-board/internal/handler"
	"github.com/BuzzLyutic/kanban-board/internal/persist"
	"github.com/BuzzLyutic/kanban-board/internal/service"
	"github.com/BuzzLyutic/kanban-board/internal/storage"
	"github.com/BuzzLyutic/kanban-board/internal/store"
)

func main() {
	// Подключаем логгер
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Загрузка конфигурации
	cfg := config.Load()

	// Подключаем хранилище, сетевые бэкенды с повторными попытками
	kv, err := openStorage(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer kv.Close()
	logger.Info("Storage ready", zap.String("backend", cfg.StorageBackend))

	bridge := persist.NewBridge(kv, logger)
	initial, err := bridge.Load(context.Background())
	if err != nil {
		logger.Fatal("Failed to load board state", zap.Error(err)) // Испорченные данные - дальше работать нельзя
	}

	st := store.New(initial, bridge, logger)
	opts := []service.Option{service.WithConflictProbability(cfg.ConflictProbability)}
	taskHandler := handler.NewTaskHandler(service.NewTaskService(st, opts...), logger)
	userHandler := handler.NewUserHandler(service.NewUserService(st, opts...), logger)

	r := handler.NewRouter(taskHandler, userHandler, handler.RouterConfig{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		AccessLog:      true,
	})

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("port", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped successfully!")
}

func openStorage(cfg config.Config, logger *zap.Logger) (storage.KV, error) {
	switch cfg.StorageBackend {
	case "memory":
		return storage.NewMemory(), nil
	case "file":
		return storage.NewFile(cfg.DataDir)
	case "postgres":
		return retry(logger, func() (storage.KV, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return storage.NewPostgres(ctx, cfg.DatabaseURL)
		})
	case "redis":
		return retry(logger, func() (storage.KV, error) {
			return storage.NewRedis(storage.RedisConfig{
				Address:  cfg.RedisAddr,
				Password: cfg.RedisPassword,
				Database: cfg.RedisDB,
				Prefix:   cfg.StoragePrefix,
			})
		})
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

func retry(logger *zap.Logger, open func() (storage.KV, error)) (storage.KV, error) {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second

	var kv storage.KV
	err := backoff.RetryNotify(func() error {
		var err error
		kv, err = open()
		return err
	}, b, func(err error, next time.Duration) {
		logger.Warn("Storage not ready, retrying", zap.Error(err), zap.Duration("next", next))
	})
	return kv, err
}
