package ttfrenderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/ByLCY/novella/fonts"
)

func newMono(t *testing.T) *Backend {
	t.Helper()
	data, err := fonts.Load("gomono")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, err := NewBackend(data)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	return b
}

func TestRasterizeDrawsInk(t *testing.T) {
	face, err := newMono(t).FontHandle(24)
	if err != nil {
		t.Fatalf("FontHandle: %v", err)
	}
	defer face.Close()

	img, err := face.Rasterize("W", color.White)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() < 24 {
		t.Fatalf("unexpected bounds %v", b)
	}
	inked := false
	for y := b.Min.Y; y < b.Max.Y && !inked; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Fatalf("glyph bitmap is empty")
	}
}

func TestMonospaceWidthScales(t *testing.T) {
	b := newMono(t)
	small, _ := b.FontHandle(12)
	large, _ := b.FontHandle(24)
	one, _ := small.Measure("a")
	three, _ := small.Measure("abc")
	if three.X < 3*one.X-2 || three.X > 3*one.X+2 {
		t.Fatalf("monospace widths: 1=%d 3=%d", one.X, three.X)
	}
	big, _ := large.Measure("a")
	if big.X <= one.X {
		t.Fatalf("larger size should be wider: %d <= %d", big.X, one.X)
	}
}

func TestRasterizeEmpty(t *testing.T) {
	face, _ := newMono(t).FontHandle(16)
	img, err := face.Rasterize("", color.White)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 1, 1) {
		t.Fatalf("empty text bounds = %v", img.Bounds())
	}
}

func TestInvalidFont(t *testing.T) {
	if _, err := NewBackend([]byte("not a font")); err == nil {
		t.Fatalf("expected parse error")
	}
}
