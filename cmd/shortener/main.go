package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/mkovalev/linkcut/internal/app/server"
	"github.com/mkovalev/linkcut/internal/app/service"
	"github.com/mkovalev/linkcut/internal/cache"
	"github.com/mkovalev/linkcut/internal/config"
	"github.com/mkovalev/linkcut/internal/logger"
	"github.com/mkovalev/linkcut/internal/repository"
	"github.com/mkovalev/linkcut/internal/storage"

	_ "net/http/pprof"
)

var buildVersion string
var buildDate string
var buildCommit string

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)

	zapLogger, err := logger.New(options.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	if options.EnablePprof {
		go func() {
			zapLogger.Info("Starting pprof server", zap.String("addr", "localhost:6060"))
			if err := http.ListenAndServe("localhost:6060", nil); err != nil {
				zapLogger.Error("pprof server error", zap.Error(err))
			}
		}()
	}

	var s storage.Store

	if options.DatabaseDSN != "" {
		zapLogger.Info("using postgres store", zap.String("dsn", options.DatabaseDSN))
		db := repository.InitDB(options.DatabaseDSN, zapLogger)
		defer db.Close()
		s = repository.CreateURLRepository(db, zapLogger)
		zapLogger.Info("Database connected and urls table ready.")
	} else {
		zapLogger.Info("using in memory store")

		s, err = storage.CreateMemoryStorage()
		if err != nil {
			panic(err)
		}
	}

	var c cache.Cache = cache.Disabled{}
	if options.RedisAddr != "" {
		c = cache.New(options.RedisAddr, zapLogger)
	} else {
		zapLogger.Info("no redis address configured, cache disabled")
	}

	cacheTTL := time.Duration(options.CacheTTLSeconds) * time.Second
	urlService := service.NewURL(s, c, zapLogger, options.BaseURL, cacheTTL)
	r := server.Init(urlService, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    options.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		if options.EnableHTTPS {
			manager := &autocert.Manager{
				Cache:  autocert.DirCache("cache-dir"),
				Prompt: autocert.AcceptTOS,
			}
			srv.Addr = ":443"
			srv.TLSConfig = manager.TLSConfig()
			zapLogger.Info("Server is running with TLS", zap.String("addr", srv.Addr))
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}

		zapLogger.Info("Server is running", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		zapLogger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}
}
