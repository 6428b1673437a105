package api

import (
	"testing"
)

func TestPageParams(t *testing.T) {
	for _, tc := range []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", "", 1, 10},
		{"explicit", "3", "25", 3, 25},
		{"page below one", "0", "5", 1, 5},
		{"negative page", "-2", "5", 1, 5},
		{"limit clamped", "1", "500", 1, 100},
		{"limit below one", "1", "0", 1, 10},
		{"garbage", "abc", "xyz", 1, 10},
	} {
		t.Run(tc.name, func(t *testing.T) {
			page, limit := pageParams(tc.page, tc.limit)
			if page != tc.wantPage || limit != tc.wantLimit {
				t.Errorf("pageParams(%q, %q) = (%d, %d), want (%d, %d)",
					tc.page, tc.limit, page, limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}
