package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sir_venger/charimg_lite/internal/app/resthttp"
	"github.com/sir_venger/charimg_lite/internal/config"
	"github.com/sir_venger/charimg_lite/internal/logging"
	"github.com/sir_venger/charimg_lite/internal/usecase/assetsvc"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// main инициализирует REST HTTP-сервис и обеспечивает корректное завершение по сигналу.
func main() {
	addr := pflag.String("addr", "", "listen address (overrides config)")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	if err := logging.Init(cfg.Log); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logging.Sync() }()

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logging.L().Debug(fmt.Sprintf(format, args...))
	}))

	if err := run(cfg); err != nil {
		logging.L().Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	fsys := afero.NewOsFs()

	handler, _, err := resthttp.NewServer(cfg, fsys)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.L().Info("REST listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("storage_root", cfg.StorageRoot),
			zap.Bool("prune_stale_extensions", cfg.PruneStaleExtensions))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Фоновая очистка spool-файлов брошенных загрузок.
	g.Go(func() error {
		return assetsvc.RunSweeper(gctx, fsys, cfg.SpoolDir, cfg.SweepTTL, cfg.SweepInterval)
	})

	// Сценарий graceful shutdown при получении SIGTERM/SIGINT или падении соседней горутины.
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.L().Warn("REST shutdown error", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}
