package apiclient

import (
	"context"
	"net/http"
	"testing"

	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantLen   int
		wantTotal int64
	}{
		{
			name:      "content envelope with page total",
			body:      `{"content":[{"id":1},{"id":2}],"page":{"totalElements":42}}`,
			wantLen:   2,
			wantTotal: 42,
		},
		{
			name:      "collections envelope with count",
			body:      `{"collections":[{"id":1}],"count":7}`,
			wantLen:   1,
			wantTotal: 7,
		},
		{
			name:      "bare array",
			body:      `[{"id":1},{"id":2},{"id":3}]`,
			wantLen:   3,
			wantTotal: 3,
		},
		{
			name:      "envelope without totals falls back to length",
			body:      `{"content":[{"id":1},{"id":2}]}`,
			wantLen:   2,
			wantTotal: 2,
		},
		{
			name:      "page total wins over count",
			body:      `{"content":[{"id":1}],"count":5,"page":{"totalElements":9}}`,
			wantLen:   1,
			wantTotal: 9,
		},
		{
			name:      "empty envelope",
			body:      `{}`,
			wantLen:   0,
			wantTotal: 0,
		},
		{
			name:      "empty array",
			body:      `[]`,
			wantLen:   0,
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := normalizeList([]byte(tt.body))
			require.NoError(t, err)
			assert.Len(t, result.Items, tt.wantLen)
			assert.Equal(t, tt.wantTotal, result.Total)
		})
	}
}

func TestNormalizeListMalformed(t *testing.T) {
	_, err := normalizeList([]byte(`not json`))
	assert.Error(t, err)
}

func TestListBuildsQueryAndSetsTotal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/products", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "25", q.Get("size"))
		assert.Equal(t, "name,desc", q.Get("sort"))
		assert.Equal(t, "shoes", q.Get("title"))

		w.Write([]byte(`{"content":[{"id":1}],"page":{"totalElements":51}}`))
	})

	client, _, _ := newTestClient(t, mux, &interfaces.TokenPair{AccessToken: "acc-1"})

	pagination := utils.NewPagination(2, 25, "name", true)
	result, err := client.List(context.Background(), "products", ListParams{
		Pagination: pagination,
		Filters:    map[string]string{"title": "shoes"},
	})
	require.NoError(t, err)

	assert.Len(t, result.Items, 1)
	assert.EqualValues(t, 51, result.Total)
	assert.EqualValues(t, 51, pagination.TotalItems)
	assert.Equal(t, 3, pagination.TotalPages)
}

func TestCrudPaths(t *testing.T) {
	var gotMethod, gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Write([]byte(`{"id":"p-1"}`))
	})

	client, _, _ := newTestClient(t, handler, &interfaces.TokenPair{AccessToken: "acc-1"})
	ctx := context.Background()

	_, err := client.GetOne(ctx, "products", "p-1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/admin/products/p-1", gotPath)

	_, err = client.Create(ctx, "products", map[string]string{"title": "x"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/admin/products", gotPath)

	_, err = client.Update(ctx, "products", "p-1", map[string]string{"title": "y"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/admin/products/p-1", gotPath)

	require.NoError(t, client.Delete(ctx, "products", "p-1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/admin/products/p-1", gotPath)
}
