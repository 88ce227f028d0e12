package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/personal-website-backend/internal/domain"
	"github.com/sandeepkv93/personal-website-backend/internal/http/response"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
	"github.com/sandeepkv93/personal-website-backend/internal/service"
)

type RoleHandler struct {
	roleSvc service.RoleService
}

func NewRoleHandler(roleSvc service.RoleService) *RoleHandler {
	return &RoleHandler{roleSvc: roleSvc}
}

type createRoleRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type updateRoleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "list roles")
		return
	}
	if roles == nil {
		roles = []domain.Role{}
	}
	observability.RecordListPageSize(r.Context(), "roles", len(roles))
	response.JSON(w, r, http.StatusOK, roles)
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, "invalid json body")
		return
	}
	role, err := h.roleSvc.Create(r.Context(), service.CreateRoleInput{Name: req.Name, Description: req.Description})
	if err != nil {
		auditFailure(r, "role.create", "role", "", "create", err)
		writeServiceError(w, r, err, "create role")
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName: "role.create", TargetType: "role", TargetID: formatID(role.ID), Action: "create", Outcome: "success",
	})
	response.JSON(w, r, http.StatusCreated, role)
}

func (h *RoleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid role id")
		return
	}
	role, err := h.roleSvc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get role")
		return
	}
	response.JSON(w, r, http.StatusOK, role)
}

func (h *RoleHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		badRequest(w, r, "invalid role name")
		return
	}
	role, err := h.roleSvc.GetByName(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, err, "get role")
		return
	}
	response.JSON(w, r, http.StatusOK, role)
}

func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid role id")
		return
	}
	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, "invalid json body")
		return
	}
	role, err := h.roleSvc.Update(r.Context(), id, service.UpdateRoleInput{Name: req.Name, Description: req.Description})
	if err != nil {
		auditFailure(r, "role.update", "role", formatID(id), "update", err)
		writeServiceError(w, r, err, "update role")
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName: "role.update", TargetType: "role", TargetID: formatID(id), Action: "update", Outcome: "success",
	})
	response.JSON(w, r, http.StatusOK, role)
}

// Delete removes the role; its assignments go with it.
func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid role id")
		return
	}
	if err := h.roleSvc.DeleteByID(r.Context(), id); err != nil {
		auditFailure(r, "role.delete", "role", formatID(id), "delete", err)
		writeServiceError(w, r, err, "delete role")
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName: "role.delete", TargetType: "role", TargetID: formatID(id), Action: "delete", Outcome: "success",
	})
	response.JSON(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *RoleHandler) Users(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid role id")
		return
	}
	pageReq, err := parsePageRequest(r)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	res, err := h.roleSvc.Users(r.Context(), id, pageReq)
	if err != nil {
		writeServiceError(w, r, err, "list role users")
		return
	}
	observability.RecordListPageSize(r.Context(), "role_users", len(res.Items))
	response.JSON(w, r, http.StatusOK, paginatedData(res))
}
