package palette

import (
	"errors"
	"image/color"
	"math"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff0000", color.RGBA{R: 255, A: 255}, false},
		{"00ff0080", color.RGBA{G: 255, A: 128}, false},
		{" #1f4fd1 ", color.RGBA{R: 0x1f, G: 0x4f, B: 0xd1, A: 255}, false},
		{"#fff", color.RGBA{}, true},
		{"#gg0000", color.RGBA{}, true},
	}

	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGradientEndpointsAndMidpoint(t *testing.T) {
	black := color.RGBA{A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	g, err := NewGradient(black, white)
	if err != nil {
		t.Fatal(err)
	}

	if g.At(0) != black || g.At(-3) != black {
		t.Error("t <= 0 should return the first stop")
	}
	if g.At(1) != white || g.At(7) != white {
		t.Error("t >= 1 should return the last stop")
	}
	if mid := g.At(0.5); mid.R != 128 || mid.G != 128 || mid.B != 128 {
		t.Errorf("midpoint = %v, want grey 128", mid)
	}
	if g.At(float32(math.NaN())) != black {
		t.Error("NaN should map to the first stop")
	}
}

func TestGradientMultipleStops(t *testing.T) {
	g, err := ParseGradient([]string{"#ff0000", "#00ff00", "#0000ff"})
	if err != nil {
		t.Fatal(err)
	}
	if c := g.At(0.5); c != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("At(0.5) = %v, want pure green", c)
	}
	if c := g.At(0.75); c.G == 0 || c.B == 0 || c.R != 0 {
		t.Errorf("At(0.75) = %v, want a green-blue mix", c)
	}
}

func TestParseGradientErrors(t *testing.T) {
	if _, err := ParseGradient(nil); !errors.Is(err, ErrEmptyGradient) {
		t.Errorf("empty gradient: got %v", err)
	}
	if _, err := ParseGradient([]string{"#000000", "nope"}); err == nil {
		t.Error("expected error for bad stop")
	}
}

func TestBakeAndSample(t *testing.T) {
	g, _ := ParseGradient([]string{"#000000", "#ffffff"})
	b := g.Bake(64)

	if b.Len() != 64 {
		t.Fatalf("Len() = %d, want 64", b.Len())
	}
	if b.Sample(0) != g.At(0) || b.Sample(1) != g.At(1) {
		t.Error("baked endpoints differ from gradient")
	}

	// Brightness never decreases along a dark-to-light gradient
	prev := uint8(0)
	for i := 0; i <= 100; i++ {
		c := b.Sample(float32(i) / 100)
		if c.R < prev {
			t.Fatalf("sample %d darker than previous", i)
		}
		prev = c.R
	}

	if g.Bake(0).Len() != 2 {
		t.Error("resolution below two should be raised to two")
	}
}

func TestSpeedColour(t *testing.T) {
	g, _ := ParseGradient([]string{"#0000ff", "#ff0000"})
	b := g.Bake(16)

	if b.Speed(0, 5) != b.Sample(0) {
		t.Error("zero speed should map to the slow end")
	}
	if b.Speed(50, 5) != b.Sample(1) {
		t.Error("speeds above max should clamp to the fast end")
	}
	if b.Speed(1, 0) != b.Sample(1) {
		t.Error("non-positive max should map to the fast end")
	}
}
