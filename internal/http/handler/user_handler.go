package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/personal-website-backend/internal/domain"
	"github.com/sandeepkv93/personal-website-backend/internal/http/response"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
	"github.com/sandeepkv93/personal-website-backend/internal/repository"
	"github.com/sandeepkv93/personal-website-backend/internal/service"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

type createUserRequest struct {
	ExternalID  string  `json:"external_id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
}

type updateUserRequest struct {
	Email       *string `json:"email"`
	DisplayName *string `json:"display_name"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	IsActive    *bool   `json:"is_active"`
}

type loginResponse struct {
	User    *domain.User `json:"user"`
	Created bool         `json:"created"`
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	pageReq, err := parsePageRequest(r)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	query := repository.UserListQuery{
		PageRequest: pageReq,
		Email:       strings.TrimSpace(r.URL.Query().Get("email")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(w, r, "active must be a boolean")
			return
		}
		query.Active = &active
	}
	res, err := h.userSvc.List(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err, "list users")
		return
	}
	observability.RecordListPageSize(r.Context(), "users", len(res.Items))
	response.JSON(w, r, http.StatusOK, paginatedData(res))
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, "invalid json body")
		return
	}
	user, err := h.userSvc.Create(r.Context(), service.CreateUserInput{
		ExternalID:  req.ExternalID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
	})
	if err != nil {
		auditFailure(r, "user.create", "user", "", "create", err)
		writeServiceError(w, r, err, "create user")
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName: "user.create", TargetType: "user", TargetID: formatID(user.ID), Action: "create", Outcome: "success",
	})
	response.JSON(w, r, http.StatusCreated, user)
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid user id")
		return
	}
	user, err := h.userSvc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get user")
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) GetByExternalID(w http.ResponseWriter, r *http.Request) {
	externalID := strings.TrimSpace(chi.URLParam(r, "external_id"))
	if externalID == "" {
		badRequest(w, r, "invalid external id")
		return
	}
	user, err := h.userSvc.GetByExternalID(r.Context(), externalID)
	if err != nil {
		writeServiceError(w, r, err, "get user")
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(chi.URLParam(r, "email"))
	if email == "" {
		badRequest(w, r, "invalid email")
		return
	}
	user, err := h.userSvc.GetByEmail(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err, "get user")
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid user id")
		return
	}
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, "invalid json body")
		return
	}
	user, err := h.userSvc.UpdateProfile(r.Context(), id, service.UpdateUserInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		IsActive:    req.IsActive,
	})
	if err != nil {
		auditFailure(r, "user.update", "user", formatID(id), "update", err)
		writeServiceError(w, r, err, "update user")
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName: "user.update", TargetType: "user", TargetID: formatID(id), Action: "update", Outcome: "success",
	})
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid user id")
		return
	}
	if err := h.userSvc.DeleteByID(r.Context(), id); err != nil {
		auditFailure(r, "user.delete", "user", formatID(id), "delete", err)
		writeServiceError(w, r, err, "delete user")
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName: "user.delete", TargetType: "user", TargetID: formatID(id), Action: "delete", Outcome: "success",
	})
	response.JSON(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

// RecordLogin creates the user on first sign-in and stamps LastLoginAt.
func (h *UserHandler) RecordLogin(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, "invalid json body")
		return
	}
	rec, err := h.userSvc.RecordLogin(r.Context(), service.RecordLoginInput{
		ExternalID:  req.ExternalID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
	})
	if err != nil {
		auditFailure(r, "user.login", "user", "", "login", err)
		writeServiceError(w, r, err, "record login")
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName: "user.login", TargetType: "user", TargetID: formatID(rec.User.ID), Action: "login", Outcome: "success",
	}, "created", rec.Created)
	status := http.StatusOK
	if rec.Created {
		status = http.StatusCreated
	}
	response.JSON(w, r, status, loginResponse{User: rec.User, Created: rec.Created})
}

func (h *UserHandler) Roles(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid user id")
		return
	}
	roles, err := h.userSvc.Roles(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "list user roles")
		return
	}
	if roles == nil {
		roles = []domain.Role{}
	}
	response.JSON(w, r, http.StatusOK, roles)
}

func (h *UserHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	userID, roleID, ok := parseUserRolePath(w, r)
	if !ok {
		return
	}
	ur, err := h.userSvc.GetAssignment(r.Context(), userID, roleID)
	if err != nil {
		writeServiceError(w, r, err, "get role assignment")
		return
	}
	response.JSON(w, r, http.StatusOK, ur)
}

func (h *UserHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	userID, roleID, ok := parseUserRolePath(w, r)
	if !ok {
		return
	}
	target := formatID(userID) + ":" + formatID(roleID)
	ur, err := h.userSvc.AssignRole(r.Context(), userID, roleID)
	if err != nil {
		auditFailure(r, "user_role.assign", "user_role", target, "assign", err)
		writeServiceError(w, r, err, "assign role")
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName: "user_role.assign", TargetType: "user_role", TargetID: target, Action: "assign", Outcome: "success",
	})
	response.JSON(w, r, http.StatusCreated, ur)
}

func (h *UserHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	userID, roleID, ok := parseUserRolePath(w, r)
	if !ok {
		return
	}
	target := formatID(userID) + ":" + formatID(roleID)
	if err := h.userSvc.RevokeRole(r.Context(), userID, roleID); err != nil {
		auditFailure(r, "user_role.revoke", "user_role", target, "revoke", err)
		writeServiceError(w, r, err, "revoke role")
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName: "user_role.revoke", TargetType: "user_role", TargetID: target, Action: "revoke", Outcome: "success",
	})
	response.JSON(w, r, http.StatusOK, map[string]bool{"revoked": true})
}

func parseUserRolePath(w http.ResponseWriter, r *http.Request) (uint, uint, bool) {
	userID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid user id")
		return 0, 0, false
	}
	roleID, err := parsePathID(chi.URLParam(r, "role_id"))
	if err != nil {
		badRequest(w, r, "invalid role id")
		return 0, 0, false
	}
	return userID, roleID, true
}
