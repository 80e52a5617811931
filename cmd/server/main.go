package main

import (
	"net/http"
	"time"

	"scrabble-portal/internal/config"
	"scrabble-portal/internal/db"
	"scrabble-portal/internal/game"
	"scrabble-portal/internal/server"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	sqlDB, err := conn.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("database handle unavailable")
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeSeconds) * time.Second)

	if err := db.Migrate(conn); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	store := db.NewGameStore(conn)
	engine := game.NewEngine(store, clockwork.NewRealClock(), cfg.EnforceTurnTimer)
	srv := server.New(engine, store, cfg)

	log.Info().
		Str("port", cfg.Port).
		Bool("enforce_turn_timer", cfg.EnforceTurnTimer).
		Msg("scrabble portal listening")
	if err := http.ListenAndServe(":"+cfg.Port, srv.Handler()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
