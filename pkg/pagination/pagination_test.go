package pagination

import "testing"

func TestFromValues(t *testing.T) {
	cases := []struct {
		name       string
		page       string
		limit      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", "", 1, 20, 0},
		{"explicit", "3", "10", 3, 10, 20},
		{"negative page", "-1", "10", 1, 10, 0},
		{"zero limit", "2", "0", 2, 20, 20},
		{"over max", "1", "500", 1, 100, 0},
		{"garbage", "abc", "xyz", 1, 20, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := FromValues(tc.page, tc.limit)
			if p.Page != tc.wantPage || p.Limit != tc.wantLimit || p.Offset != tc.wantOffset {
				t.Fatalf("got %+v, want page=%d limit=%d offset=%d", p, tc.wantPage, tc.wantLimit, tc.wantOffset)
			}
		})
	}
}
