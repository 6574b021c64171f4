package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	tests := []struct {
		name     string
		in       PageRequest
		page     int
		pageSize int
	}{
		{"zero values", PageRequest{}, 1, DefaultPageSize},
		{"negative values", PageRequest{Page: -3, PageSize: -1}, 1, DefaultPageSize},
		{"oversized page", PageRequest{Page: 2, PageSize: 500}, 2, MaxPageSize},
		{"kept as given", PageRequest{Page: 4, PageSize: 10}, 4, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Defaults()
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.pageSize, p.PageSize)
		})
	}
}

func TestOffset(t *testing.T) {
	p := PageRequest{Page: 3, PageSize: 20}
	assert.Equal(t, 40, p.Offset())
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse([]int{1, 2}, 1, 2, 5)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.Equal(t, int64(5), resp.Pagination.TotalItems)

	empty := NewPageResponse[int](nil, 1, 20, 0)
	assert.NotNil(t, empty.Data)
	assert.Empty(t, empty.Data)
	assert.Equal(t, 0, empty.Pagination.TotalPages)
}

func TestMap(t *testing.T) {
	in := NewPageResponse([]int{1, 2, 3}, 2, 3, 9)
	out := Map(in, func(v *int) string { return string(rune('a' + *v - 1)) })

	assert.Equal(t, []string{"a", "b", "c"}, out.Data)
	assert.Equal(t, in.Pagination, out.Pagination)
}
