package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/sandeepkv93/personal-website-backend/internal/domain"
	"github.com/sandeepkv93/personal-website-backend/internal/http/response"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
	"github.com/sandeepkv93/personal-website-backend/internal/repository"
	"github.com/sandeepkv93/personal-website-backend/internal/service"
)

func parsePathID(input string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(input), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", input)
	}
	return uint(n), nil
}

// maxPage keeps (page-1)*MaxPageSize within int.
const maxPage = math.MaxInt / repository.MaxPageSize

func parsePageRequest(r *http.Request) (repository.PageRequest, error) {
	page := repository.DefaultPage
	pageSize := repository.DefaultPageSize
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page must be a positive integer")
		}
		if v > maxPage {
			return repository.PageRequest{}, fmt.Errorf("page must be <= %d", maxPage)
		}
		page = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("page_size")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page_size must be a positive integer")
		}
		if v > repository.MaxPageSize {
			return repository.PageRequest{}, fmt.Errorf("page_size must be <= %d", repository.MaxPageSize)
		}
		pageSize = v
	}
	return repository.PageRequest{Page: page, PageSize: pageSize}, nil
}

func paginatedData[T any](res repository.PageResult[T]) map[string]any {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return map[string]any{
		"items": items,
		"pagination": map[string]any{
			"page":        res.Page,
			"page_size":   res.PageSize,
			"total":       res.Total,
			"total_pages": res.TotalPages,
		},
	}
}

// decodeJSON rejects unknown fields and trailing data.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", message, nil)
}

// writeServiceError maps service and repository errors onto the API error
// contract. Unclassified errors are logged in full and masked.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var (
		ve *domain.ValidationError
		ce *repository.ConstraintError
	)
	switch {
	case errors.As(err, &ve):
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "request failed validation", map[string]any{"fields": ve.Fields})
	case errors.Is(err, service.ErrNoUpdates):
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
	case errors.Is(err, service.ErrProtectedRole):
		response.Error(w, r, http.StatusConflict, "PROTECTED_ROLE", err.Error(), nil)
	case errors.Is(err, repository.ErrConflict):
		response.Error(w, r, http.StatusConflict, "CONFLICT", "a record with the same unique value already exists", constraintDetails(err, ce))
	case errors.Is(err, repository.ErrForeignKey):
		response.Error(w, r, http.StatusUnprocessableEntity, "FOREIGN_KEY_VIOLATION", "referenced record does not exist", constraintDetails(err, ce))
	case errors.Is(err, domain.ErrValidation):
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "request failed validation", constraintDetails(err, ce))
	case errors.Is(err, repository.ErrUserNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
	case errors.Is(err, repository.ErrRoleNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "role not found", nil)
	case errors.Is(err, repository.ErrUserRoleNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "role is not assigned to user", nil)
	default:
		observability.NewLogger().ErrorContext(r.Context(), "request failed", "action", action, "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to "+action, nil)
	}
}

func constraintDetails(err error, ce *repository.ConstraintError) any {
	if !errors.As(err, &ce) || ce.Constraint == "" {
		return nil
	}
	return map[string]string{"constraint": ce.Constraint}
}

func formatID(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func auditFailure(r *http.Request, event, targetType, targetID, action string, err error) {
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  event,
		TargetType: targetType,
		TargetID:   targetID,
		Action:     action,
		Outcome:    "failure",
		Reason:     failureReason(err),
	})
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, service.ErrNoUpdates), errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, service.ErrProtectedRole):
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
		return "internal_error"
	}
}
