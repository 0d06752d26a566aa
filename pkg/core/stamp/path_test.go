package stamp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name string
		d    string
		want [][]Point
	}{
		{
			name: "traced rectangle",
			d:    "M0 0h3v3h-3Z",
			want: [][]Point{{{0, 0}, {3, 0}, {3, 3}, {0, 3}}},
		},
		{
			name: "absolute lines",
			d:    "M 1,1 L 4,1 4,5 Z",
			want: [][]Point{{{1, 1}, {4, 1}, {4, 5}}},
		},
		{
			name: "relative moveto after close",
			d:    "M0 0H2V2Zm5 5h1v1z",
			want: [][]Point{{{0, 0}, {2, 0}, {2, 2}}, {{5, 5}, {6, 5}, {6, 6}}},
		},
		{
			name: "decimals and negatives",
			d:    "M-1.5 2l0.5-1",
			want: [][]Point{{{-1.5, 2}, {-1, 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.d)
			if err != nil {
				t.Fatalf("ParsePath(%q): %v", tt.d, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePath(%q) mismatch (-want +got):\n%s", tt.d, diff)
			}
		})
	}
}

func TestParsePathErrors(t *testing.T) {
	for _, d := range []string{
		"0 0 L 1 1",
		"M0 0 C 1 1 2 2 3 3",
		"M0",
		"M0 0 h x",
	} {
		if _, err := ParsePath(d); err == nil {
			t.Errorf("ParsePath(%q) should fail", d)
		}
	}
}
