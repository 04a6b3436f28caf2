package verse

import (
	"math"
	"testing"
)

func TestColorFromHex(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    Color
		wantErr bool
	}{
		{
			name:  "six digit red",
			value: "#ff0000",
			want:  Color{R: 1, A: 1},
		},
		{
			name:  "six digit without hash",
			value: "00ff00",
			want:  Color{G: 1, A: 1},
		},
		{
			name:  "three digit shorthand",
			value: "#fff",
			want:  Color{R: 1, G: 1, B: 1, A: 1},
		},
		{
			name:  "eight digit with alpha",
			value: "#ff000080",
			want:  Color{R: 1, A: float64(0x80) / 255},
		},
		{
			name:  "uppercase digits",
			value: "#FF00FF",
			want:  Color{R: 1, B: 1, A: 1},
		},
		{
			name:    "wrong length",
			value:   "#ffff",
			wantErr: true,
		},
		{
			name:    "non hex digits",
			value:   "#zzzzzz",
			wantErr: true,
		},
		{
			name:    "empty",
			value:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ColorFromHex(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ColorFromHex(%q) succeeded, want error", tt.value)
				}
				if CodeOf(err) != CodeValidation {
					t.Fatalf("CodeOf(err) = %q, want %q", CodeOf(err), CodeValidation)
				}
				return
			}
			if err != nil {
				t.Fatalf("ColorFromHex(%q): %v", tt.value, err)
			}
			if !colorsClose(got, tt.want) {
				t.Fatalf("ColorFromHex(%q) = %+v, want %+v", tt.value, got, tt.want)
			}
		})
	}
}

func TestColorHex(t *testing.T) {
	color := Color{R: 1, G: 0.5, B: 0, A: 0.25}

	if got, want := color.Hex(false), "#ff8000"; got != want {
		t.Fatalf("Hex(false) = %q, want %q", got, want)
	}
	if got, want := color.Hex(true), "#ff800040"; got != want {
		t.Fatalf("Hex(true) = %q, want %q", got, want)
	}
}

func TestColorHexRoundTrip(t *testing.T) {
	original := "#3a7bd5"

	color, err := ColorFromHex(original)
	if err != nil {
		t.Fatalf("ColorFromHex(%q): %v", original, err)
	}
	if got := color.Hex(false); got != original {
		t.Fatalf("round trip = %q, want %q", got, original)
	}
}

func TestColorClamp(t *testing.T) {
	color := Color{R: -0.5, G: 1.5, B: 0.25, A: 2}

	got := color.Clamp()
	want := Color{R: 0, G: 1, B: 0.25, A: 1}
	if got != want {
		t.Fatalf("Clamp() = %+v, want %+v", got, want)
	}
}

func colorsClose(a, b Color) bool {
	const epsilon = 1e-9
	return math.Abs(a.R-b.R) < epsilon &&
		math.Abs(a.G-b.G) < epsilon &&
		math.Abs(a.B-b.B) < epsilon &&
		math.Abs(a.A-b.A) < epsilon
}
