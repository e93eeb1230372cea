package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/event-saas/internal/apperror"
	"github.com/sakif/event-saas/internal/repository"
	"github.com/sakif/event-saas/internal/service"
)

// TenantHandler serves the tenant administration REST API. All routes are
// mounted behind the admin session guard.
type TenantHandler struct {
	tenants *service.TenantService
	logger  *slog.Logger
}

func NewTenantHandler(tenants *service.TenantService, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{tenants: tenants, logger: logger}
}

type createTenantRequest struct {
	Name string `json:"name"`
}

// HandleCreate creates a tenant.
//
// HTTP: POST /admin/api/tenants
func (h *TenantHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "malformed request body"))
		return
	}

	tenant, err := h.tenants.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tenant)
}

// HandleList lists tenants, newest first.
//
// HTTP: GET /admin/api/tenants?limit=&offset=
func (h *TenantHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts := repository.ListOptions{}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}

	tenants, err := h.tenants.List(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}

// HandleGetByID returns one tenant by id.
//
// HTTP: GET /admin/api/tenants/{id}
func (h *TenantHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

// HandleGetByName returns one tenant by name.
//
// HTTP: GET /admin/api/tenants/name/{name}
func (h *TenantHandler) HandleGetByName(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.GetByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}
