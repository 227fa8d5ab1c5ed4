package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/athebyme/gomarket-platform/admin-console/internal/adapters/logger"
	"github.com/athebyme/gomarket-platform/admin-console/internal/credentials"
	apperrors "github.com/athebyme/gomarket-platform/admin-console/pkg/errors"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, pair *interfaces.TokenPair) (*Client, *credentials.MemoryStore, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := credentials.NewMemoryStore()
	if pair != nil {
		require.NoError(t, store.Set(context.Background(), pair))
	}

	client := NewClient(server.URL, store, logger.NewNopLogger())
	return client, store, server
}

func TestDoAttachesBearerToken(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	client, _, _ := newTestClient(t, handler, &interfaces.TokenPair{AccessToken: "acc-1", RefreshToken: "ref-1"})

	resp, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/admin/products"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "Bearer acc-1", gotAuth)
}

func TestDoRefreshOnceAndRetry(t *testing.T) {
	var apiCalls, refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/internal/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ref-1", body["refreshToken"])

		json.NewEncoder(w).Encode(interfaces.TokenPair{AccessToken: "acc-2", RefreshToken: "ref-2"})
	})
	mux.HandleFunc("/admin/products", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
		if r.Header.Get("Authorization") != "Bearer acc-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	client, store, _ := newTestClient(t, mux, &interfaces.TokenPair{AccessToken: "acc-1", RefreshToken: "ref-1"})

	resp, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/admin/products"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)

	assert.EqualValues(t, 2, atomic.LoadInt32(&apiCalls))
	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls))

	pair, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-2", pair.AccessToken)
	assert.Equal(t, "ref-2", pair.RefreshToken)
}

func TestDoSecond401NoSecondRefresh(t *testing.T) {
	var apiCalls, refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/internal/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		json.NewEncoder(w).Encode(interfaces.TokenPair{AccessToken: "acc-2", RefreshToken: "ref-2"})
	})
	mux.HandleFunc("/admin/products", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, _, _ := newTestClient(t, mux, &interfaces.TokenPair{AccessToken: "acc-1", RefreshToken: "ref-1"})

	_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/admin/products"})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	assert.EqualValues(t, 2, atomic.LoadInt32(&apiCalls))
	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls))
}

func TestDoNoRefreshTokenReturnsOriginal401(t *testing.T) {
	var refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/internal/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/admin/products", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	})

	client, store, _ := newTestClient(t, mux, &interfaces.TokenPair{AccessToken: "acc-1"})

	_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/admin/products"})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	// Обмен не выполнялся, учетные данные очищены
	assert.EqualValues(t, 0, atomic.LoadInt32(&refreshCalls))
	_, err = store.Get(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoCredentials)
}

func TestDoRefreshRejectedClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/internal/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/admin/products", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, store, _ := newTestClient(t, mux, &interfaces.TokenPair{AccessToken: "acc-1", RefreshToken: "ref-1"})

	_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/admin/products"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSessionInvalid)

	_, err = store.Get(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoCredentials)
}

func TestDoRefreshMalformedPayloadClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/internal/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/admin/products", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, store, _ := newTestClient(t, mux, &interfaces.TokenPair{AccessToken: "acc-1", RefreshToken: "ref-1"})

	_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/admin/products"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSessionInvalid)

	_, err = store.Get(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoCredentials)
}

func TestDo401OnAuthPathNoRefresh(t *testing.T) {
	var refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/internal/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid refresh token"}`))
	})
	mux.HandleFunc("/api/v1/internal/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"bad credentials"}`))
	})

	client, _, _ := newTestClient(t, mux, nil)

	_, err := client.Do(context.Background(), &Request{
		Method: http.MethodPost,
		Path:   "/api/v1/internal/auth/login",
		Body:   []byte(`{"email":"a@b.c","password":"x"}`),
	})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad credentials", apiErr.Message)

	// 401 на пути аутентификации не запускает цикл обновления
	assert.EqualValues(t, 0, atomic.LoadInt32(&refreshCalls))
}

func TestDoTransportError(t *testing.T) {
	store := credentials.NewMemoryStore()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, store, logger.NewNopLogger())

	_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/admin/products"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.Status)
	assert.NotEmpty(t, apiErr.Message)
}

func TestErrorMessagePrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message wins over error", `{"message":"session expired","error":"unauthorized"}`, "session expired"},
		{"error used when message empty", `{"message":"","error":"unauthorized"}`, "unauthorized"},
		{"error used when message absent", `{"error":"unauthorized"}`, "unauthorized"},
		{"fallback on non-json body", `<html>Bad Gateway</html>`, fallbackErrorMessage},
		{"fallback on empty body", ``, fallbackErrorMessage},
		{"fallback when both empty", `{"message":"","error":""}`, fallbackErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := newAPIError(http.StatusBadRequest, []byte(tt.body))
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		})
	}
}

func TestLoginStoresTokenPair(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/internal/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin@example.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		json.NewEncoder(w).Encode(interfaces.TokenPair{AccessToken: "acc-1", RefreshToken: "ref-1"})
	})

	client, store, _ := newTestClient(t, mux, nil)

	require.NoError(t, client.Login(context.Background(), "admin@example.com", "secret"))

	pair, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-1", pair.AccessToken)
	assert.Equal(t, "ref-1", pair.RefreshToken)
}

func TestLogoutClearsCredentials(t *testing.T) {
	client, store, _ := newTestClient(t, http.NewServeMux(), &interfaces.TokenPair{AccessToken: "acc-1", RefreshToken: "ref-1"})

	require.NoError(t, client.Logout(context.Background()))

	_, err := store.Get(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoCredentials)
}

func TestMeReturnsIdentity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/internal/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"u-1","email":"admin@example.com"}`))
	})

	client, _, _ := newTestClient(t, mux, &interfaces.TokenPair{AccessToken: "acc-1"})

	identity, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u-1","email":"admin@example.com"}`, string(identity))
}
