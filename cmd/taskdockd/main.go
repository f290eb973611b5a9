package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskdock-dev/taskdock/internal/auth"
	"github.com/taskdock-dev/taskdock/internal/config"
	"github.com/taskdock-dev/taskdock/internal/httpapi"
	"github.com/taskdock-dev/taskdock/internal/server"
	"github.com/taskdock-dev/taskdock/internal/store"
	"github.com/taskdock-dev/taskdock/internal/vault"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := buildLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Persistence, optionally encrypted at rest
	dataKey, err := cfg.DataKeyBytes()
	if err != nil {
		logger.Fatal("invalid data key", zap.Error(err))
	}
	var persister *store.Persistence
	if dataKey != nil {
		persister, err = store.NewEncryptedPersistence(cfg.DataDir, dataKey)
	} else {
		persister, err = store.NewPersistence(cfg.DataDir)
	}
	if err != nil {
		logger.Fatal("failed to initialize persistence", zap.Error(err))
	}

	// Load existing data and start the engine
	initialData, err := persister.LoadAll()
	if err != nil {
		logger.Warn("could not load existing data", zap.Error(err))
	}
	st := store.NewMemStore(initialData, persister)
	logger.Info("engine started", zap.Int("namespaces", len(initialData)))

	// One-shot import of a legacy data directory
	if cfg.ImportDir != "" {
		if err := importDataDir(cfg.ImportDir, st); err != nil {
			logger.Fatal("import failed", zap.String("dir", cfg.ImportDir), zap.Error(err))
		}
		logger.Info("import complete", zap.String("dir", cfg.ImportDir))
	}

	authn := auth.New(st, []byte(cfg.TokenSecret), cfg.TokenTTLDuration())
	h := &httpapi.Handler{
		Tasks: store.NewTaskStore(st),
		Auth:  authn,
		Log:   logger,
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(h, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLS {
			cert, err := vault.GenerateSelfSignedCert()
			if err != nil {
				errCh <- err
				return
			}
			srv.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
			logger.Info("listening with self-signed TLS", zap.String("addr", cfg.ListenAddr))
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	case sig := <-sigChan:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}

	// Finalize pending disk writes before exiting.
	st.Wait()
	logger.Info("persistence complete, exiting")
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// importDataDir migrates every record from a plaintext data directory into
// the live store. Imported records flow through the live persister, so
// they end up encrypted when at-rest encryption is on.
func importDataDir(dir string, dst store.Store) error {
	p, err := store.NewPersistence(dir)
	if err != nil {
		return err
	}
	data, err := p.LoadAll()
	if err != nil {
		return err
	}
	src := store.NewMemStore(data, nil)
	return store.Migrate(src, dst)
}
