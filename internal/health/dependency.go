package health

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sandeepkv93/personal-website-backend/internal/database"
)

var errDBNotConfigured = errors.New("db not configured")

// DBChecker pings the connection pool.
type DBChecker struct {
	db *gorm.DB
}

func NewDBChecker(db *gorm.DB) *DBChecker {
	return &DBChecker{db: db}
}

func (c *DBChecker) Name() string { return "db" }

func (c *DBChecker) Check(ctx context.Context) error {
	if c == nil || c.db == nil {
		return errDBNotConfigured
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// SeedChecker reports unready when the default roles are missing or
// have drifted.
type SeedChecker struct {
	db *gorm.DB
}

func NewSeedChecker(db *gorm.DB) *SeedChecker {
	return &SeedChecker{db: db}
}

func (c *SeedChecker) Name() string { return "seed" }

func (c *SeedChecker) Check(ctx context.Context) error {
	if c == nil || c.db == nil {
		return errDBNotConfigured
	}
	return database.VerifySeed(ctx, c.db)
}
