package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoercePage(t *testing.T) {
	assert.Equal(t, 1, CoercePage(0))
	assert.Equal(t, 1, CoercePage(-5))
	assert.Equal(t, 1, CoercePage(1))
	assert.Equal(t, 37, CoercePage(37))
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		page    int
		perPage int
		want    PageInfo
	}{
		{"single partial page", 7, 1, 10, PageInfo{Page: 1, TotalPages: 1}},
		{"exact boundary", 20, 1, 10, PageInfo{Page: 1, TotalPages: 2, NextPage: 2}},
		{"middle page", 35, 2, 10, PageInfo{Page: 2, TotalPages: 4, NextPage: 3, PrevPage: 1}},
		{"last page", 35, 4, 10, PageInfo{Page: 4, TotalPages: 4, PrevPage: 3}},
		{"zero matches", 0, 1, 10, PageInfo{Page: 1}},
		{"page past end", 10, 9, 10, PageInfo{Page: 9, TotalPages: 1, PrevPage: 8}},
		{"page below one coerced", 25, -3, 10, PageInfo{Page: 1, TotalPages: 3, NextPage: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(tt.total, tt.page, tt.perPage))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 10, Offset(2, 10))
	assert.Equal(t, 0, Offset(-2, 10))
	assert.Equal(t, 45, Offset(10, 5))
}
