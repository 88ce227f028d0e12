package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sandeepkv93/personal-website-backend/internal/domain"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
	"github.com/sandeepkv93/personal-website-backend/internal/repository"
)

var (
	ErrNoUpdates = errors.New("no updates provided")
	// ErrProtectedRole rejects renaming or deleting a role the seed relies on.
	ErrProtectedRole = errors.New("seeded role cannot be renamed or deleted")
)

func mutationOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, ErrNoUpdates):
		return "bad_request"
	case errors.Is(err, ErrProtectedRole):
		return "protected"
	case errors.Is(err, repository.ErrConflict):
		return "conflict"
	case errors.Is(err, repository.ErrForeignKey):
		return "foreign_key"
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrRoleNotFound),
		errors.Is(err, repository.ErrUserRoleNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// startMutation opens a span for one mutating service call. The returned
// func is deferred with the call's final error and records the outcome.
func startMutation(ctx context.Context, entity, action string) (context.Context, func(error)) {
	start := time.Now()
	ctx, endSpan := observability.StartMutationSpan(ctx, entity, action)
	return ctx, func(err error) {
		observability.RecordEntityMutation(ctx, entity, action, mutationOutcome(err))
		observability.RecordEntityMutationDuration(ctx, entity, action, time.Since(start))
		endSpan(err)
	}
}

// trimOptional trims v and maps blank input to nil so it is stored as NULL.
func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
