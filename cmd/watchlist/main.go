package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hkominsky/bullseye-client/backend"
	"github.com/hkominsky/bullseye-client/clock"
	"github.com/hkominsky/bullseye-client/credentials"
	"github.com/hkominsky/bullseye-client/internal/config"
	"github.com/hkominsky/bullseye-client/keyval"
	"github.com/hkominsky/bullseye-client/keyval/filestore"
	"github.com/hkominsky/bullseye-client/keyval/memstore"
	"github.com/hkominsky/bullseye-client/keyval/sqlitestore"
	"github.com/hkominsky/bullseye-client/notify"
	"github.com/hkominsky/bullseye-client/session"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("watchlist client failed")
	}
	logger.Info().Msg("stopped")
}

func run(logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()
	cfg := config.New()
	displayAppName(cfg.GetAppName())

	if err := os.MkdirAll(cfg.GetDataFolder(), 0o700); err != nil {
		return fmt.Errorf("create data folder: %w", err)
	}
	durable, err := openDurableStore(cfg.GetDataFolder())
	if err != nil {
		return fmt.Errorf("open durable store: %w", err)
	}
	if closer, ok := durable.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	store, err := credentials.NewStore(durable, memstore.New(), clock.System(),
		credentials.WithPrefix(cfg.GetStoragePrefix()))
	if err != nil {
		return err
	}

	bus := notify.NewBus()
	unsubscribe := bus.Subscribe(func(e notify.Event) {
		logger.Info().Str("event", e.Name).Str("reason", e.Reason).Msg("session notification")
	})
	defer unsubscribe()

	client := backend.NewClient(cfg.GetAPIBaseURL(), backend.WithLogger(logger))
	manager, err := session.NewManager(client, store, bus, clock.System(),
		session.WithLogger(logger),
		session.WithInactivityTimeout(cfg.GetSessionTimeout()),
		session.WithRefreshThreshold(cfg.GetRefreshThreshold()),
	)
	if err != nil {
		return err
	}
	defer manager.Close()

	if manager.Resume("") {
		if profile, ok := manager.CurrentProfile(); ok {
			logger.Info().Str("account", profile.Email).Msg("resumed stored session")
		}
	} else if email := config.GetEnv("BULLSEYE_EMAIL", ""); email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := manager.Login(ctx, email, config.GetEnv("BULLSEYE_PASSWORD", ""), true); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	} else {
		logger.Info().Msg("no stored session; set BULLSEYE_EMAIL and BULLSEYE_PASSWORD to log in")
	}

	waitForStopSignal()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	manager.Logout(ctx)
	return nil
}

// openDurableStore picks the durable tier backend. SQLite is the
// default; STORAGE_BACKEND=file selects the plain JSON file store.
func openDurableStore(dataFolder string) (keyval.Store, error) {
	if config.GetEnv("STORAGE_BACKEND", "sqlite") == "file" {
		return filestore.New(filepath.Join(dataFolder, "credentials.json"))
	}
	return sqlitestore.Open(filepath.Join(dataFolder, "credentials.db"))
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func displayAppName(appName string) {
	myFigure := figure.NewFigure(appName, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
