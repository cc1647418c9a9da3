package util

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPaginationSkip(t *testing.T) {
	assert.Equal(t, 0, PaginationArgs{Page: 1, Limit: 10}.Skip())
	assert.Equal(t, 10, PaginationArgs{Page: 2, Limit: 10}.Skip())
	assert.Equal(t, 75, PaginationArgs{Page: 4, Limit: 25}.Skip())
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		args       PaginationArgs
		totalPages int
	}{
		{name: "exact multiple", total: 30, args: PaginationArgs{Page: 1, Limit: 10}, totalPages: 3},
		{name: "partial last page", total: 31, args: PaginationArgs{Page: 1, Limit: 10}, totalPages: 4},
		{name: "empty result", total: 0, args: PaginationArgs{Page: 1, Limit: 10}, totalPages: 0},
		{name: "single short page", total: 3, args: PaginationArgs{Page: 1, Limit: 10}, totalPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.total, tt.args)
			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.total, p.TotalResources)
			assert.Equal(t, tt.args.Page, p.CurrentPage)
			assert.Equal(t, tt.args.Limit, p.Limit)
		})
	}
}

func TestGetPaginationArgs(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		query string
		page  int
		limit int
	}{
		{name: "defaults", query: "", page: 1, limit: 10},
		{name: "explicit values", query: "?page=3&limit=25", page: 3, limit: 25},
		{name: "zero page clamps", query: "?page=0", page: 1, limit: 10},
		{name: "negative page clamps", query: "?page=-5", page: 1, limit: 10},
		{name: "oversized limit falls back", query: "?limit=500", page: 1, limit: 10},
		{name: "non-numeric input falls back", query: "?page=abc&limit=xyz", page: 1, limit: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/resources"+tt.query, nil)

			args := GetPaginationArgs(c)
			assert.Equal(t, tt.page, args.Page)
			assert.Equal(t, tt.limit, args.Limit)
		})
	}
}
