package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/sandeepkv93/personal-website-backend/internal/config"
	"github.com/sandeepkv93/personal-website-backend/internal/domain"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Models lists the mapped entities in dependency order.
func Models() []any {
	return []any{&domain.User{}, &domain.Role{}, &domain.UserRole{}}
}

// Migrate creates or updates the schema from the model tags.
func Migrate(db *gorm.DB) error {
	start := time.Now()
	ctx := context.Background()
	defer func() {
		observability.RecordDatabaseStartupDuration(ctx, "migrate", time.Since(start))
	}()
	if err := db.AutoMigrate(Models()...); err != nil {
		observability.RecordDatabaseStartupEvent(ctx, "migrate", "error")
		return fmt.Errorf("auto migrate: %w", err)
	}
	observability.RecordDatabaseStartupEvent(ctx, "migrate", "success")
	return nil
}

// NewSQLMigrator returns a migrator over the embedded SQL files. databaseURL
// must be a postgres:// URL.
func NewSQLMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

type SQLMigrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
	// Applied is false when no migration has run yet.
	Applied bool `json:"applied"`
	Latest  uint `json:"latest"`
}

// MigrateSQL applies every pending embedded migration.
func MigrateSQL(databaseURL string) (err error) {
	start := time.Now()
	ctx := context.Background()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		observability.RecordDatabaseStartupEvent(ctx, "migrate_sql", outcome)
		observability.RecordDatabaseStartupDuration(ctx, "migrate_sql", time.Since(start))
	}()

	m, err := NewSQLMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func SQLStatus(databaseURL string) (SQLMigrationStatus, error) {
	latest, err := LatestSQLVersion()
	if err != nil {
		return SQLMigrationStatus{}, err
	}
	m, err := NewSQLMigrator(databaseURL)
	if err != nil {
		return SQLMigrationStatus{}, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return SQLMigrationStatus{Latest: latest}, nil
	}
	if err != nil {
		return SQLMigrationStatus{}, fmt.Errorf("read migration version: %w", err)
	}
	return SQLMigrationStatus{Version: version, Dirty: dirty, Applied: true, Latest: latest}, nil
}

// LatestSQLVersion returns the highest version among the embedded migrations.
func LatestSQLVersion() (uint, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("create migration source: %w", err)
	}
	defer source.Close()

	version, err := source.First()
	if err != nil {
		return 0, fmt.Errorf("read first migration: %w", err)
	}
	for {
		next, err := source.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read next migration: %w", err)
		}
		version = next
	}
}

// Initialize brings the schema up to date using the configured mode and then
// runs the idempotent seed.
func Initialize(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SeedReport, error) {
	switch cfg.DBMigrationMode {
	case config.MigrationModeSQL:
		if err := MigrateSQL(cfg.DatabaseURL); err != nil {
			return nil, err
		}
	default:
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return Seed(ctx, db)
}
