package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mkrupp/wtwr/internal/infra/config"
	"github.com/mkrupp/wtwr/internal/infra/logging"
	"github.com/mkrupp/wtwr/internal/infra/transport/http"
	"github.com/mkrupp/wtwr/internal/repo/item"
	"github.com/mkrupp/wtwr/internal/repo/sqlite"
	"github.com/mkrupp/wtwr/internal/repo/user"
	"github.com/mkrupp/wtwr/internal/svc/authsvc"
	"github.com/mkrupp/wtwr/internal/svc/itemsvc"
)

const (
	appName = "wtwr"
	svcName = "api"
)

type Config struct {
	config.EnvConfig

	Log  logging.LoggerConfig     `envPrefix:"LOG_"`
	Auth authsvc.AuthConfig       `envPrefix:"AUTH_"`
	HTTP http.HTTPTransportConfig `envPrefix:"HTTP_"`
	DB   sqlite.Config            `envPrefix:"DB_"`
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.wtwrsvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "error", err)
		} else {
			log.InfoContext(ctx, "shutdown")
		}
	}()

	db, err := sqlite.Open(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.ErrorContext(ctx, "close db failed", "error", cerr)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		//nolint:exhaustruct
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	authSvc, err := authsvc.NewAuthService(
		user.NewSQLiteUserRepository(db),
		cfg.Auth,
		authsvc.NewAuthMetrics(registry),
	)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}

	authn := http.NewAuthenticator(authSvc)
	itemSvc := itemsvc.NewItemService(item.NewSQLiteItemRepository(db))

	mux := http.NewServeMux(
		http.NewMetrics(registry),
		authsvc.NewHTTPTransport(authSvc, authn, cfg.HTTP),
		itemsvc.NewHTTPTransport(itemSvc, authn, cfg.HTTP),
	)

	if err := http.ListenAndServe(ctx, mux, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
