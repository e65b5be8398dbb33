package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagination_Normalized(t *testing.T) {
	testCases := []struct {
		name   string
		in     Pagination
		want   Pagination
		offset int
	}{
		{name: "defaults", in: Pagination{}, want: Pagination{PageNumber: 1, PageSize: DefaultPageSize}, offset: 0},
		{name: "negative", in: Pagination{PageNumber: -3, PageSize: -1}, want: Pagination{PageNumber: 1, PageSize: DefaultPageSize}, offset: 0},
		{name: "explicit", in: Pagination{PageNumber: 3, PageSize: 20}, want: Pagination{PageNumber: 3, PageSize: 20}, offset: 40},
		{name: "huge page", in: Pagination{PageNumber: math.MaxInt, PageSize: MaxPageSize}, want: Pagination{PageNumber: MaxPageNumber, PageSize: MaxPageSize}, offset: (MaxPageNumber - 1) * MaxPageSize},
		{name: "capped", in: Pagination{PageNumber: 2, PageSize: 1000}, want: Pagination{PageNumber: 2, PageSize: MaxPageSize}, offset: MaxPageSize},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalized()
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.offset, got.Offset())
		})
	}
}
