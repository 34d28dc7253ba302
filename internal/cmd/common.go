package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantmind-br/vsixextract/internal/config"
	"github.com/quantmind-br/vsixextract/internal/db"
)

// openHistory opens the history database, creating its directory first
func openHistory(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.Paths.DBFile == "" {
		return nil, fmt.Errorf("history database path is not configured")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.DBFile), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	database, err := db.New(ctx, cfg.Paths.DBFile)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database, nil
}

// shortID trims a run id for table output
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
