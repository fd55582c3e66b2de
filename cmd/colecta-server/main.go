package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/colecta/colecta-cli/internal/server"
	"github.com/colecta/colecta-cli/internal/server/storage"
	"github.com/colecta/colecta-cli/pkg/logging"
)

func main() {
	logging.Setup(slog.LevelInfo)

	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := storage.Open(cfg.Database.DSN(), os.Getenv("DEBUG") != "")
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	srv := server.New(db, cfg)
	slog.Info("sync server listening", "addr", cfg.HTTP.Addr())
	if err := srv.Router().Run(cfg.HTTP.Addr()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
