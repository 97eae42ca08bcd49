// cmd/worldle-stub/main.go
//
// Development stub of the Worldle API. Lets the client run end to end
// without the real backend:
//
//	PORT=8787 go run ./cmd/worldle-stub
//	WORLDLE_API_URL=http://localhost:8787 go run ./cmd/worldle

package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lexeme-dev/worldle/internal/config"
	"github.com/lexeme-dev/worldle/internal/stub"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadStub()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	srv, err := stub.NewServer(cfg.Seed)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build stub server")
	}
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
