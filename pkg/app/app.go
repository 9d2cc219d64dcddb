// Package app composes the storeroom services and runs the HTTP server.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"storeroom/pkg/account"
	"storeroom/pkg/catalog"
	"storeroom/pkg/deletion"
	"storeroom/pkg/httpapi"
	"storeroom/pkg/latency"
	"storeroom/pkg/ledger"
	"storeroom/pkg/mockdata"
	"storeroom/pkg/sl"
	"storeroom/pkg/version"
)

// shutdownTimeout bounds graceful shutdown once ctx is cancelled.
const shutdownTimeout = 5 * time.Second

// flags captures the CLI so Run can be called from multiple entry points.
type flags struct {
	showVersion bool
	configPath  string
	env         string
	port        int
	tlsHost     string
}

// Run composes the catalog, ledger, accounts and HTTP API and serves until ctx ends.
// A nil logger is built from the configured environment.
func Run(ctx context.Context, args []string, logger *slog.Logger) error {
	fl, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := LoadConfig(fl.configPath)
	if err != nil {
		return err
	}
	fl.apply(&cfg)

	if logger == nil {
		logger = setupLogger(cfg.Env, os.Stdout)
	}

	if fl.showVersion {
		logger.Info("storeroom version", slog.String("version", version.Version()))
		return nil
	}

	items, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("unable to load catalog: %w", err)
	}

	var seed []ledger.Transaction
	if !cfg.Mock.Disabled {
		seed = mockdata.Generate(items, mockdata.Options{Seed: cfg.Mock.Seed, Days: cfg.Mock.Days})
		logger.Info("mock ledger generated", slog.Int("transactions", len(seed)), slog.Uint64("seed", cfg.Mock.Seed))
	}

	ledgerService := ledger.NewService(items, seed)
	defer ledgerService.Close()

	deletionService := deletion.NewService(ledgerService)
	defer deletionService.Close()

	accounts, err := account.NewDirectory(account.DemoCredentials(), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("unable to build account directory: %w", err)
	}

	srv := httpapi.New(ctx, httpapi.Deps{
		Ledger:    ledgerService,
		Deletions: deletionService,
		Accounts:  accounts,
		Tokens:    account.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL),
		Latency:   latency.New(cfg.Latency),
	}, httpapi.Options{
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		LoginLimit:   cfg.HTTP.LoginLimit,
		LoginWindow:  cfg.HTTP.LoginWindow,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}, logger)

	if cfg.HTTP.TLSHost != "" {
		return serveTLS(ctx, cfg.HTTP, srv.App(), logger)
	}

	addr := address(cfg.HTTP.Port)
	logger.Info("storeroom is running", slog.String("addr", addr), slog.String("env", cfg.Env))
	return serve(ctx, srv.App(), func() error { return srv.App().Listen(addr) }, logger)
}

// serve runs listen until it fails or ctx ends, then shuts the app down.
func serve(ctx context.Context, app *fiber.App, listen func() error, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- listen()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("graceful shutdown failed", sl.Err(err))
		return err
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	}
	logger.Info("storeroom gracefully stopped")
	return nil
}

// address honours PORT so platform deployments can pick the port.
func address(port int) string {
	if p := os.Getenv("PORT"); p != "" {
		return ":" + p
	}
	return ":" + strconv.Itoa(port)
}

func parseFlags(args []string) (flags, error) {
	set := flag.NewFlagSet("storeroom", flag.ContinueOnError)
	set.SetOutput(io.Discard)

	var fl flags
	set.BoolVar(&fl.showVersion, "version", false, "Show the application version")
	set.StringVar(&fl.configPath, "config", os.Getenv("STOREROOM_CONFIG"), "Path to a YAML config file; environment variables apply on top.")
	set.StringVar(&fl.env, "env", "", "Environment: local, dev or prod.")
	set.IntVar(&fl.port, "port", 0, "Port for the HTTP server; overrides the config.")
	set.StringVar(&fl.tlsHost, "domain", "", "Serve HTTPS with an ephemeral certificate for this host.")

	if err := set.Parse(args); err != nil {
		return flags{}, err
	}
	return fl, nil
}

// apply overrides cfg with the flags that were set.
func (fl flags) apply(cfg *Config) {
	if fl.env != "" {
		cfg.Env = fl.env
	}
	if fl.port > 0 {
		cfg.HTTP.Port = fl.port
	}
	if fl.tlsHost != "" {
		cfg.HTTP.TLSHost = fl.tlsHost
	}
}
