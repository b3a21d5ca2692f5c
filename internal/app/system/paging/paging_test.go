package paging

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   Page
	}{
		{"defaults", "/x", Page{Limit: 50, Offset: 0}},
		{"explicit", "/x?limit=10&offset=20", Page{Limit: 10, Offset: 20}},
		{"clamped", "/x?limit=5000", Page{Limit: 200, Offset: 0}},
		{"garbage", "/x?limit=abc&offset=-3", Page{Limit: 50, Offset: 0}},
		{"zero limit", "/x?limit=0", Page{Limit: 50, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			assert.Equal(t, tt.want, Parse(r, PageSize, MaxPageSize))
		})
	}
}

func TestTrim(t *testing.T) {
	p := Page{Limit: 2}
	assert.Equal(t, int64(3), p.LookAhead())

	rows, more := Trim([]int{1, 2, 3}, p)
	assert.Equal(t, []int{1, 2}, rows)
	assert.True(t, more)

	rows, more = Trim([]int{1}, p)
	assert.Equal(t, []int{1}, rows)
	assert.False(t, more)
}
