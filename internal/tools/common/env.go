package common

import (
	"io"
	"log/slog"

	"gorm.io/gorm"

	"github.com/sandeepkv93/personal-website-backend/internal/config"
	"github.com/sandeepkv93/personal-website-backend/internal/database"
)

// LoadConfigDB reads envFile (if present), loads and validates the config and
// opens the configured store. GORM output is discarded so it does not
// interleave with the TUI.
func LoadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(database.OptionsFromConfig(cfg), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
