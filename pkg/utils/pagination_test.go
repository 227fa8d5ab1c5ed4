package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationDefaults(t *testing.T) {
	p := NewPagination(-5, 0, "", false)
	assert.Equal(t, 0, p.Page)
	assert.Equal(t, 10, p.Size)
}

func TestSetTotal(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		size       int
		total      int64
		wantPages  int
		wantHasNxt bool
		wantHasPrv bool
	}{
		{"first page of many", 0, 10, 35, 4, true, false},
		{"middle page", 2, 10, 35, 4, true, true},
		{"last page", 3, 10, 35, 4, false, true},
		{"exact division", 0, 10, 30, 3, true, false},
		{"empty result", 0, 10, 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.size, "", false)
			p.SetTotal(tt.total)

			assert.Equal(t, tt.total, p.TotalItems)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantHasNxt, p.HasNext)
			assert.Equal(t, tt.wantHasPrv, p.HasPrev)
		})
	}
}

func TestSortParam(t *testing.T) {
	assert.Equal(t, "", NewPagination(0, 10, "", false).SortParam())
	assert.Equal(t, "name,asc", NewPagination(0, 10, "name", false).SortParam())
	assert.Equal(t, "createdAt,desc", NewPagination(0, 10, "createdAt", true).SortParam())
}
