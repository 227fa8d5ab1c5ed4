package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/athebyme/gomarket-platform/admin-console/internal/adapters/logger"
	"github.com/athebyme/gomarket-platform/admin-console/internal/apiclient"
	"github.com/athebyme/gomarket-platform/admin-console/internal/credentials"
	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/models"
	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/services"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantGenerate(t *testing.T) {
	handler := NewVariantHandler(services.NewVariantService(), logger.NewNopLogger())

	body := `{"options":[{"title":"Size","values":["S","M"]},{"title":"Color","values":["Red"]}]}`
	req := httptest.NewRequest(http.MethodPost, "/variants/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool             `json:"success"`
		Data    []models.Variant `json:"data"`
		Meta    map[string]int   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "S / Red", resp.Data[0].Title)
	assert.Equal(t, "M / Red", resp.Data[1].Title)
	assert.Equal(t, 2, resp.Meta["count"])
}

func TestVariantGeneratePartialConfig(t *testing.T) {
	handler := NewVariantHandler(services.NewVariantService(), logger.NewNopLogger())

	body := `{"options":[{"title":"Size","values":[]}]}`
	req := httptest.NewRequest(http.MethodPost, "/variants/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Variant `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)
}

func TestVariantGenerateBadBody(t *testing.T) {
	handler := NewVariantHandler(services.NewVariantService(), logger.NewNopLogger())

	req := httptest.NewRequest(http.MethodPost, "/variants/generate", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	handler.Generate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResourceUnknownName(t *testing.T) {
	handler := NewResourceHandler(nil, logger.NewNopLogger())

	r := chi.NewRouter()
	r.Get("/resources/{resource}", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/resources/secrets", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp.Error)
}

func TestResourceListProxiesUpstream(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/products", r.URL.Path)
		w.Write([]byte(`{"content":[{"id":1}],"page":{"totalElements":1}}`))
	}))
	defer backend.Close()

	store := credentials.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), &interfaces.TokenPair{AccessToken: "acc"}))
	client := apiclient.NewClient(backend.URL, store, logger.NewNopLogger())

	handler := NewResourceHandler(client, logger.NewNopLogger())

	r := chi.NewRouter()
	r.Get("/resources/{resource}", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/resources/products?page=0&size=10", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 1)
}

func TestResourceUpstreamErrorPassthrough(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"duplicate handle"}`))
	}))
	defer backend.Close()

	store := credentials.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), &interfaces.TokenPair{AccessToken: "acc"}))
	client := apiclient.NewClient(backend.URL, store, logger.NewNopLogger())

	handler := NewResourceHandler(client, logger.NewNopLogger())

	r := chi.NewRouter()
	r.Post("/resources/{resource}", handler.Create)

	req := httptest.NewRequest(http.MethodPost, "/resources/products", strings.NewReader(`{"title":"x"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "upstream_error", resp.Error)
	assert.Equal(t, "duplicate handle", resp.Message)
}

func TestAggregatorSyncReturnsProvisionalStatus(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalAdvertisers":2,"created":1,"updated":1}`))
	}))
	defer backend.Close()

	store := credentials.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), &interfaces.TokenPair{AccessToken: "acc"}))
	client := apiclient.NewClient(backend.URL, store, logger.NewNopLogger())

	syncService := services.NewSyncService(client, nil, nil, logger.NewNopLogger(), 0)
	handler := NewAggregatorHandler(syncService, nil, logger.NewNopLogger())

	req := httptest.NewRequest(http.MethodPost, "/aggregator/advertisers/sync", nil)
	rec := httptest.NewRecorder()
	handler.SyncAdvertisers(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Data models.JobStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Loading)
	assert.Equal(t, "Enqueued advertiser sync...", resp.Data.Message)

	// Фоновая операция доводит запись до settled
	require.Eventually(t, func() bool {
		status, ok := syncService.Status(services.KeyAdvertiserSync)
		return ok && !status.Loading
	}, 2*time.Second, 5*time.Millisecond)
}

func TestAggregatorJobHistoryWithoutStorage(t *testing.T) {
	syncService := services.NewSyncService(nil, nil, nil, logger.NewNopLogger(), 0)
	handler := NewAggregatorHandler(syncService, nil, logger.NewNopLogger())

	r := chi.NewRouter()
	r.Get("/jobs/history/{kind}", handler.JobHistory)

	req := httptest.NewRequest(http.MethodGet, "/jobs/history/advertiser_sync", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthLoginValidation(t *testing.T) {
	handler := NewAuthHandler(nil, logger.NewNopLogger())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"","password":""}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
