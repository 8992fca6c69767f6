package shared

import "testing"

func TestNormalizePagination(t *testing.T) {
	cases := []struct {
		name     string
		page     int
		pageSize int
		wantPage int
		wantSize int
	}{
		{name: "zero_page", page: 0, pageSize: 20, wantPage: 1, wantSize: 20},
		{name: "negative_page", page: -1, pageSize: 20, wantPage: 1, wantSize: 20},
		{name: "zero_size_default", page: 2, pageSize: 0, wantPage: 2, wantSize: 10},
		{name: "negative_size_default", page: 1, pageSize: -5, wantPage: 1, wantSize: 10},
		{name: "oversize_clamped", page: 1, pageSize: 500, wantPage: 1, wantSize: 100},
		{name: "in_range_untouched", page: 3, pageSize: 50, wantPage: 3, wantSize: 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, size := NormalizePagination(tc.page, tc.pageSize)
			if page != tc.wantPage {
				t.Fatalf("page want %d got %d", tc.wantPage, page)
			}
			if size != tc.wantSize {
				t.Fatalf("page size want %d got %d", tc.wantSize, size)
			}
		})
	}
}
