package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/sandeepkv93/personal-website-backend/internal/config"
	"github.com/sandeepkv93/personal-website-backend/internal/database"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	DB            *gorm.DB
}

func New(cfg *config.Config, logger *slog.Logger, server *http.Server, runtime *observability.Runtime, db *gorm.DB) *App {
	return &App{Config: cfg, Logger: logger, Server: server, Observability: runtime, DB: db}
}

// Shutdown drains HTTP first, then flushes telemetry, then closes the pool.
// Each stage gets its own budget carved out of ctx.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	httpCtx, httpCancel := context.WithTimeout(ctx, a.Config.ShutdownHTTPDrainTimeout)
	if a.Server != nil {
		if err := a.Server.Shutdown(httpCtx); err != nil {
			a.Logger.Error("failed to shutdown http server", "error", err)
			errs = append(errs, err)
		}
	}
	httpCancel()

	if a.Observability != nil {
		obsCtx, obsCancel := context.WithTimeout(ctx, a.Config.ShutdownObservabilityTimeout)
		if err := a.Observability.Shutdown(obsCtx); err != nil {
			a.Logger.Error("failed to shutdown observability", "error", err)
			errs = append(errs, err)
		}
		obsCancel()
	}

	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			a.Logger.Error("failed to close database connection", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
