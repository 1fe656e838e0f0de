package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Filter
		want Filter
	}{
		{"zero value", Filter{}, Filter{Page: 1, PageSize: DefaultPageSize}},
		{"negative page", Filter{Page: -3, PageSize: 10}, Filter{Page: 1, PageSize: 10}},
		{"oversized page", Filter{Page: 4, PageSize: 500}, Filter{Page: 4, PageSize: MaxPageSize}},
		{"kept", Filter{Page: 2, PageSize: 50}, Filter{Page: 2, PageSize: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, DefaultFilter().Offset())
	assert.Equal(t, 40, Filter{Page: 3, PageSize: 20}.Offset())
}

func TestNewPaginated(t *testing.T) {
	assert.Equal(t, 2, NewPaginated([]int{1}, 6, 2, 5).TotalPages)
	assert.Equal(t, 3, NewPaginated([]int{1}, 6, 1, 2).TotalPages)
	assert.Equal(t, 0, NewPaginated([]int{}, 0, 1, 20).TotalPages)
	assert.Equal(t, 0, NewPaginated([]int{}, 5, 1, 0).TotalPages)
}
