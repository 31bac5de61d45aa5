package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"msgsvc/channels"
	"msgsvc/config"
	"msgsvc/db"
	"msgsvc/main/routes"
	"msgsvc/store"
)

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.Store == config.StoreSQLite {
		conn, err := db.InitSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx, conn); err != nil {
			db.CloseDB(conn)
			return nil, err
		}
		return store.NewSQLiteStore(conn), nil
	}

	client, err := db.InitMongo(ctx, cfg.DBAddr)
	if err != nil {
		return nil, err
	}
	s := store.NewMongoStore(client, cfg.DBName)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	return s, nil
}

// newServer seeds the general channel and only then builds the server, so the
// first request already sees it.
func newServer(ctx context.Context, cfg config.Config, s store.Store, log logrus.FieldLogger) (*http.Server, error) {
	if err := channels.EnsureGeneralChannel(ctx, s, log); err != nil {
		return nil, errors.Wrap(err, "startup check failed")
	}
	handler := channels.NewHandler(s, log)
	return &http.Server{Addr: cfg.Addr, Handler: routes.SetupRouter(handler, log, cfg.RateLimit)}, nil
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	log := logrus.New()
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()
	msgStore, err := openStore(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "error opening store")
	}
	defer func() {
		if err := msgStore.Close(context.Background()); err != nil {
			log.WithError(err).Error("error closing store")
		}
	}()

	server, err := newServer(ctx, cfg, msgStore, log)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()
	log.WithFields(logrus.Fields{"addr": cfg.Addr, "store": cfg.Store}).Info("message server listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return errors.Wrap(err, "ListenAndServe error")
	case <-quit:
	}
	log.Info("shutting down message server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("message server forced shutdown")
	}
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		logrus.Fatal(err)
	}
}
