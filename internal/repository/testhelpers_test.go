package repository

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/personal-website-backend/internal/config"
	"github.com/sandeepkv93/personal-website-backend/internal/database"
	"github.com/sandeepkv93/personal-website-backend/internal/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{Driver: config.DriverSQLite, DSN: ":memory:", LogLevel: "silent"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustCreateUser(t *testing.T, repo UserRepository, externalID, email string) *domain.User {
	t.Helper()
	u := domain.NewUser(externalID, email, testNow)
	if err := repo.Create(t.Context(), u); err != nil {
		t.Fatalf("create user %s: %v", externalID, err)
	}
	return u
}

func mustCreateRole(t *testing.T, repo RoleRepository, name string) *domain.Role {
	t.Helper()
	r := &domain.Role{Name: name}
	if err := repo.Create(t.Context(), r); err != nil {
		t.Fatalf("create role %s: %v", name, err)
	}
	return r
}

func strPtr(v string) *string { return &v }
