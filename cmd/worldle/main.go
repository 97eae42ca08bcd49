// cmd/worldle/main.go
//
// Terminal client entry point. Wires the service graph (identity
// store, API client, shared cache, catalog, session controller,
// readiness gate) and hands it to the TUI.
//
// Logs go to a file under the data directory; stdout belongs to the
// terminal UI.

package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lexeme-dev/worldle/internal/api"
	"github.com/lexeme-dev/worldle/internal/cache"
	"github.com/lexeme-dev/worldle/internal/catalog"
	"github.com/lexeme-dev/worldle/internal/config"
	"github.com/lexeme-dev/worldle/internal/identity"
	"github.com/lexeme-dev/worldle/internal/ready"
	"github.com/lexeme-dev/worldle/internal/session"
	"github.com/lexeme-dev/worldle/internal/ui"
	"github.com/lexeme-dev/worldle/internal/view"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create data dir")
	}
	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "worldle.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open log file")
	}
	defer logFile.Close()
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()

	store, err := identity.OpenStore(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open identity store")
	}

	client := api.New(cfg.APIURL)
	snapshots := cache.New()
	manager := identity.NewManager(store, client, snapshots)
	countries := catalog.New(client)

	deps := ui.Deps{
		Gate:       ready.NewGate(manager, countries),
		View:       view.NewState(),
		Controller: session.NewController(client, snapshots),
		Catalog:    countries,
		Identity:   manager,
	}

	log.Info().Str("api", cfg.APIURL).Msg("starting worldle client")
	if err := ui.Run(context.Background(), deps); err != nil {
		log.Fatal().Err(err).Msg("ui exited")
	}
}
