package geometry

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		transform Transform
		want      orb.Ring
		wantOK    bool
	}{
		{
			name:   "Simple triangle",
			path:   "M 0,0 L 10,0 L 10,10 Z",
			want:   orb.Ring{{0, 0}, {10, 0}, {10, -10}},
			wantOK: true,
		},
		{
			name:      "Translation after negation",
			path:      "M 1,2 L 3,4 L 5,6",
			transform: Transform{TranslateX: 300, TranslateY: 10},
			want:      orb.Ring{{301, 8}, {303, 6}, {305, 4}},
			wantOK:    true,
		},
		{
			name:   "Odd trailing token ignored",
			path:   "M 0,0 L 1,1 L 2,0 L 7",
			want:   orb.Ring{{0, 0}, {1, -1}, {2, 0}},
			wantOK: true,
		},
		{
			name:   "Signed and fractional tokens",
			path:   "M-1.5,+2 L.5,-3 L 4,.25",
			want:   orb.Ring{{-1.5, -2}, {0.5, 3}, {4, -0.25}},
			wantOK: true,
		},
		{
			name:   "Two points is empty",
			path:   "M 132,112 L 132,112",
			wantOK: false,
		},
		{
			name:   "No tokens",
			path:   "",
			wantOK: false,
		},
		{
			name:   "Garbage text",
			path:   "M foo L bar Z",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePath(tt.path, tt.transform)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				if got != nil {
					t.Errorf("expected nil ring for empty path, got %v", got)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d points, got %d (%v)", len(tt.want), len(got), got)
			}
			for i := range got {
				if !got[i].Equal(tt.want[i]) {
					t.Errorf("point %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}
