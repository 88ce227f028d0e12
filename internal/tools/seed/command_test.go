package seed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/sandeepkv93/personal-website-backend/internal/config"
	"github.com/sandeepkv93/personal-website-backend/internal/database"
)

func migratedDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{Driver: config.DriverSQLitePureGo, DSN: ":memory:", LogLevel: "silent"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSeedStepsLifecycle(t *testing.T) {
	db := migratedDBForTest(t)
	ctx := context.Background()

	if _, err := verify(ctx, db); !errors.Is(err, database.ErrSeedMismatch) {
		t.Fatalf("expected verify to fail before seeding, got %v", err)
	}
	details, err := dryRun(ctx, db)
	if err != nil {
		t.Fatalf("dry-run: %v", err)
	}
	if got := strings.Join(details, "\n"); !strings.Contains(got, "would create roles: Admin, User") {
		t.Fatalf("unexpected dry-run details: %v", details)
	}

	details, err = apply(ctx, db)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if details[0] != "created roles: 2" {
		t.Fatalf("unexpected apply details: %v", details)
	}
	details, err = apply(ctx, db)
	if err != nil || details[0] != "roles already seeded: 2" {
		t.Fatalf("expected idempotent apply, got %v %v", details, err)
	}
	if _, err := verify(ctx, db); err != nil {
		t.Fatalf("verify after apply: %v", err)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"apply", "dry-run", "verify"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Fatalf("expected subcommand %s, got %v %v", name, sub, err)
		}
	}
}
