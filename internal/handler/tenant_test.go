package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/event-saas/internal/handler"
	"github.com/sakif/event-saas/internal/model"
	"github.com/sakif/event-saas/internal/repository/sqlite"
	"github.com/sakif/event-saas/internal/service"
)

// newTenantRouter mounts the tenant handler on a chi router so URL params
// resolve the same way they do in production.
func newTenantRouter(t *testing.T) (*chi.Mux, *sqlite.DB) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := handler.NewTenantHandler(service.NewTenantService(db.Tenants(), logger), logger)

	r := chi.NewRouter()
	r.Post("/admin/api/tenants", h.HandleCreate)
	r.Get("/admin/api/tenants", h.HandleList)
	r.Get("/admin/api/tenants/{id}", h.HandleGetByID)
	r.Get("/admin/api/tenants/name/{name}", h.HandleGetByName)
	return r, db
}

func TestTenantCreate(t *testing.T) {
	t.Run("valid name", func(t *testing.T) {
		router, _ := newTenantRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/admin/api/tenants",
			bytes.NewBufferString(`{"name":"Acme Events"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var tenant model.Tenant
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&tenant))
		assert.NotEmpty(t, tenant.ID)
		assert.Equal(t, "Acme Events", tenant.Name)
	})

	t.Run("blank name", func(t *testing.T) {
		router, _ := newTenantRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/admin/api/tenants",
			bytes.NewBufferString(`{"name":"  "}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("overlong name", func(t *testing.T) {
		router, _ := newTenantRouter(t)

		body, _ := json.Marshal(map[string]string{"name": strings.Repeat("a", 256)})
		req := httptest.NewRequest(http.MethodPost, "/admin/api/tenants", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		router, _ := newTenantRouter(t)

		for i, want := range []int{http.StatusCreated, http.StatusConflict} {
			req := httptest.NewRequest(http.MethodPost, "/admin/api/tenants",
				bytes.NewBufferString(`{"name":"Acme Events"}`))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equalf(t, want, rr.Code, "request %d", i)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		router, _ := newTenantRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/admin/api/tenants",
			bytes.NewBufferString(`{"name":`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTenantGetAndList(t *testing.T) {
	router, db := newTenantRouter(t)

	tenant := &model.Tenant{Name: "acme-events"}
	require.NoError(t, db.Tenants().Create(context.Background(), tenant))

	t.Run("get by id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/api/tenants/"+tenant.ID, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got model.Tenant
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, tenant.ID, got.ID)
	})

	t.Run("get by name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/api/tenants/name/acme-events", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got model.Tenant
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, "acme-events", got.Name)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/api/tenants/missing", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/api/tenants", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got []model.Tenant
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Len(t, got, 1)
	})
}
