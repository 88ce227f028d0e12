package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/sandeepkv93/personal-website-backend/internal/config"
	"github.com/sandeepkv93/personal-website-backend/internal/database"
)

func TestShutdownClosesDatabase(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := database.Open(database.Options{Driver: config.DriverSQLitePureGo, DSN: ":memory:", LogLevel: "silent"}, logger)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	cfg := &config.Config{ShutdownHTTPDrainTimeout: time.Second, ShutdownObservabilityTimeout: time.Second}
	a := New(cfg, logger, &http.Server{}, nil, db)

	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	if err := sqlDB.Ping(); err == nil {
		t.Fatal("expected closed pool to reject ping")
	}
}
