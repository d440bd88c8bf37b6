package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Paging(t *testing.T) {
	tests := []struct {
		name       string
		filter     Filter
		wantLimit  int
		wantOffset int
	}{
		{"defaults", DefaultFilter(), DefaultPageSize, 0},
		{"third page", Filter{Page: 3, PageSize: 10}, 10, 20},
		{"page zero", Filter{Page: 0, PageSize: 10}, 10, 0},
		{"unset size", Filter{Page: 2}, DefaultPageSize, DefaultPageSize},
		{"oversized page", Filter{Page: 2, PageSize: 500}, MaxPageSize, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLimit, tt.filter.Limit())
			assert.Equal(t, tt.wantOffset, tt.filter.Offset())
		})
	}
}
