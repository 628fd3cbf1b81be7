package fonts

import "testing"

func TestForCSS(t *testing.T) {
	tests := []struct {
		css  string
		want Family
	}{
		{"sans-serif", Sans},
		{"Arial, Helvetica", Sans},
		{"monospace", Mono},
		{"'Courier New', Courier", Mono},
		{"Press Start 2P, pixel", Mono},
		{"", Sans},
	}

	for _, tt := range tests {
		if got := ForCSS(tt.css); got != tt.want {
			t.Errorf("ForCSS(%q) = %v, want %v", tt.css, got, tt.want)
		}
	}
}

func TestFace(t *testing.T) {
	for _, fam := range []Family{Sans, Mono} {
		for _, bold := range []bool{false, true} {
			face := Face(fam, 12, bold)
			if face == nil {
				t.Fatalf("Face(%v, 12, %v) = nil", fam, bold)
			}
			m := face.Metrics()
			if m.Height.Ceil() <= 0 {
				t.Errorf("Face(%v, 12, %v) height = %v, want > 0", fam, bold, m.Height)
			}
		}
	}
}
