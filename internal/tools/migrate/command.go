package migrate

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/personal-website-backend/internal/config"
	"github.com/sandeepkv93/personal-website-backend/internal/database"
	"github.com/sandeepkv93/personal-website-backend/internal/tools/common"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tooling",
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newCommand(opts, "up", "Apply schema migrations for DB_MIGRATION_MODE", up),
		newCommand(opts, "status", "Report schema state", status),
		newCommand(opts, "plan", "Show pending schema work (dry-run)", plan),
	)
	return cmd
}

type step func(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error)

func newCommand(opts *options, use, short string, fn step) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := common.Run(opts.ci, opts.timeout, "migrate", use, func(ctx context.Context) ([]string, error) {
				cfg, db, err := common.LoadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer func() { _ = database.Close(db) }()
				return fn(ctx, cfg, db)
			})
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func up(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
	if cfg.DBMigrationMode == config.MigrationModeSQL {
		if err := database.MigrateSQL(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		st, err := database.SQLStatus(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return []string{"mode: sql", fmt.Sprintf("schema version: %d", st.Version)}, nil
	}
	if err := database.Migrate(db.WithContext(ctx)); err != nil {
		return nil, err
	}
	return []string{"mode: auto", "schema migration applied", "driver: " + cfg.DatabaseDriver}, nil
}

func status(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	details := []string{"database reachable", "driver: " + cfg.DatabaseDriver, "mode: " + cfg.DBMigrationMode}
	if cfg.DBMigrationMode == config.MigrationModeSQL {
		st, err := database.SQLStatus(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if st.Dirty {
			return details, fmt.Errorf("schema version %d is dirty", st.Version)
		}
		return append(details, fmt.Sprintf("schema version: %d of %d", st.Version, st.Latest)), nil
	}
	return append(details, tableStates(db.WithContext(ctx))...), nil
}

func plan(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
	if cfg.DBMigrationMode == config.MigrationModeSQL {
		st, err := database.SQLStatus(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if st.Applied && st.Version >= st.Latest {
			return []string{"no pending migrations", "no mutation executed in plan mode"}, nil
		}
		return []string{
			fmt.Sprintf("would migrate from version %d to %d", st.Version, st.Latest),
			"no mutation executed in plan mode",
		}, nil
	}
	details := []string{"would apply AutoMigrate for users, roles, user_roles"}
	details = append(details, tableStates(db.WithContext(ctx))...)
	return append(details, "no mutation executed in plan mode"), nil
}

func tableStates(db *gorm.DB) []string {
	out := make([]string, 0, len(database.Models()))
	for _, m := range database.Models() {
		stmt := &gorm.Statement{DB: db}
		name := fmt.Sprintf("%T", m)
		if err := stmt.Parse(m); err == nil {
			name = stmt.Schema.Table
		}
		state := "missing"
		if db.Migrator().HasTable(m) {
			state = "present"
		}
		out = append(out, fmt.Sprintf("table %s: %s", name, state))
	}
	return out
}
