package chat

import "testing"

func TestHasMore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		pg   PaginationState
		want bool
	}{
		{"first of many", PaginationState{CurrentPage: 1, TotalPages: 3}, true},
		{"last page", PaginationState{CurrentPage: 3, TotalPages: 3}, false},
		{"beyond last", PaginationState{CurrentPage: 4, TotalPages: 3}, false},
		{"empty result", PaginationState{CurrentPage: 1, TotalPages: 0}, false},
		{"zero value", PaginationState{}, false},
	}
	for _, tc := range cases {
		if got := tc.pg.HasMore(); got != tc.want {
			t.Errorf("%s: HasMore=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestFallbackPaginationNeverLoops(t *testing.T) {
	t.Parallel()

	pg := FallbackPagination(7)
	if pg.CurrentPage != 7 || pg.TotalPages != 0 || pg.TotalCount != 0 {
		t.Fatalf("unexpected fallback: %+v", pg)
	}
	if pg.HasMore() {
		t.Fatal("fallback pagination must not report more pages")
	}
}
