package util

import "testing"

func TestParsePage(t *testing.T) {
	cases := []struct {
		limit, offset string
		wantL, wantO  int
	}{
		{"", "", 20, 0},
		{"10", "5", 10, 5},
		{"500", "-3", 50, 0},
		{"abc", "x", 20, 0},
		{"0", "", 50, 0},
	}
	for _, tc := range cases {
		l, o := ParsePage(tc.limit, tc.offset, 20, 50)
		if l != tc.wantL || o != tc.wantO {
			t.Fatalf("ParsePage(%q,%q) = %d,%d want %d,%d", tc.limit, tc.offset, l, o, tc.wantL, tc.wantO)
		}
	}
}
