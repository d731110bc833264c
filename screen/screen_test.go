package screen

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/novella/textsys"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestBlitCopiesAndScales(t *testing.T) {
	s := New(image.Pt(40, 30), color.Black)
	red := solid(4, 4, color.RGBA{R: 255, A: 255})

	s.Blit(red, red.Bounds(), image.Rect(2, 3, 6, 7), 255)
	if got := s.Image().RGBAAt(2, 3); got != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("pixel (2,3) = %v", got)
	}
	if got := s.Image().RGBAAt(6, 7); got != (color.RGBA{A: 255}) {
		t.Fatalf("blit overflowed to (6,7): %v", got)
	}

	s.Blit(red, red.Bounds(), image.Rect(10, 10, 18, 18), 255)
	if got := s.Image().RGBAAt(17, 17); got.R < 200 {
		t.Fatalf("scaled blit should cover (17,17), got %v", got)
	}
}

func TestBlitAlpha(t *testing.T) {
	s := New(image.Pt(4, 4), color.Black)
	white := solid(1, 1, color.White)
	s.Blit(white, white.Bounds(), image.Rect(0, 0, 1, 1), 128)
	got := s.Image().RGBAAt(0, 0)
	if got.R < 120 || got.R > 136 {
		t.Fatalf("half-transparent white over black = %v", got)
	}
}

func TestBlitMaskOverlayAndFilter(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 2, 1))
	mask.SetAlpha(0, 0, color.Alpha{A: 255})

	s := New(image.Pt(4, 4), color.White)
	s.BlitMask(mask, image.Pt(1, 1), color.RGBA{B: 255, A: 255}, false)
	if got := s.Image().RGBAAt(1, 1); got != (color.RGBA{B: 255, A: 255}) {
		t.Fatalf("overlay pixel = %v", got)
	}
	if got := s.Image().RGBAAt(2, 1); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("masked-out pixel changed: %v", got)
	}

	s = New(image.Pt(4, 4), color.RGBA{R: 200, G: 200, B: 200, A: 255})
	s.BlitMask(mask, image.Pt(0, 0), color.RGBA{R: 255, G: 0, B: 128, A: 255}, true)
	got := s.Image().RGBAAt(0, 0)
	if got.R != 200 || got.G != 0 || got.B < 99 || got.B > 101 {
		t.Fatalf("multiplied pixel = %v", got)
	}
}

func TestDirtyTracking(t *testing.T) {
	s := New(image.Pt(2, 2), nil)
	if s.AnyDirty() {
		t.Fatalf("new screen should be clean")
	}
	s.MarkDirty(textsys.LayerText)
	s.MarkDirty(textsys.LayerText)
	if s.Dirty(textsys.LayerText) != 2 || !s.AnyDirty() {
		t.Fatalf("dirty count = %d", s.Dirty(textsys.LayerText))
	}
	s.ResetDirty()
	if s.AnyDirty() {
		t.Fatalf("ResetDirty should clear marks")
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := New(image.Pt(2, 2), color.Black)
	snap := s.Snapshot()
	s.Blit(solid(1, 1, color.White), image.Rect(0, 0, 1, 1), image.Rect(0, 0, 1, 1), 255)
	if snap.RGBAAt(0, 0) != (color.RGBA{A: 255}) {
		t.Fatalf("snapshot changed after drawing")
	}
}

func TestPNGExporterStacksFrames(t *testing.T) {
	frames := []image.Image{solid(10, 5, color.White), solid(8, 7, color.White)}
	data, err := PNGExporter{Gap: 2}.Export(frames)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 10, 14) {
		t.Fatalf("bounds = %v, want 10x14", img.Bounds())
	}
}

func TestDirLoader(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "waku.png"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := png.Encode(f, solid(3, 2, color.White)); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	f.Close()

	img, err := DirLoader{Dir: dir}.LoadImage("waku")
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.Bounds().Size() != image.Pt(3, 2) {
		t.Fatalf("size = %v", img.Bounds().Size())
	}
	if _, err := (DirLoader{Dir: dir}).LoadImage("missing"); err == nil {
		t.Fatalf("missing image should fail")
	}
}
