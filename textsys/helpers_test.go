package textsys

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"unicode/utf8"
)

// stubFace 是测试用的等宽字体：每个码位宽度为 width(size)，高度等于字号。
type stubFace struct {
	size   int
	width  int
	fail   bool
	closed bool
}

func (f *stubFace) Size() int { return f.size }

func (f *stubFace) Measure(text string) (image.Point, error) {
	return image.Pt(utf8.RuneCountInString(text)*f.width, f.size), nil
}

func (f *stubFace) Rasterize(text string, c color.Color) (image.Image, error) {
	if f.fail {
		return nil, errors.New("boom")
	}
	sz, _ := f.Measure(text)
	if sz.X == 0 {
		sz.X = 1
	}
	img := image.NewRGBA(image.Rectangle{Max: sz})
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img, nil
}

func (f *stubFace) Close() error {
	f.closed = true
	return nil
}

// stubBackend 记录每个字号被打开的次数。
type stubBackend struct {
	// glyphWidth 为 nil 时字宽等于字号。
	glyphWidth func(size int) int
	failSizes  map[int]bool
	opened     map[int]int
	faces      []*stubFace
}

func newStubBackend() *stubBackend {
	return &stubBackend{opened: map[int]int{}, failSizes: map[int]bool{}}
}

func (b *stubBackend) FontHandle(size int) (FontHandle, error) {
	b.opened[size]++
	w := size
	if b.glyphWidth != nil {
		w = b.glyphWidth(size)
	}
	f := &stubFace{size: size, width: w, fail: b.failSizes[size]}
	b.faces = append(b.faces, f)
	return f, nil
}

type blitRecord struct {
	dst   image.Rectangle
	alpha uint8
}

// stubScreen 记录绘制调用与脏标记。
type stubScreen struct {
	size  image.Point
	blits []blitRecord
	masks int
	dirty map[Layer]int
}

func newStubScreen() *stubScreen {
	return &stubScreen{size: image.Pt(640, 480), dirty: map[Layer]int{}}
}

func (s *stubScreen) ScreenSize() image.Point { return s.size }

func (s *stubScreen) Blit(src image.Image, srcRect, dstRect image.Rectangle, alpha uint8) {
	s.blits = append(s.blits, blitRecord{dst: dstRect, alpha: alpha})
}

func (s *stubScreen) BlitMask(mask image.Image, at image.Point, colour color.RGBA, filter bool) {
	s.masks++
}

func (s *stubScreen) MarkDirty(layer Layer) { s.dirty[layer]++ }

func (s *stubScreen) reset() {
	s.blits = nil
	s.masks = 0
	s.dirty = map[Layer]int{}
}

// stubConfig 以 map 提供窗口配置。
type stubConfig struct {
	windows map[int]WindowConfig
	attr    WindowAttr
	cursor  CursorConfig
}

func (c *stubConfig) WindowConfig(id int) (WindowConfig, error) {
	cfg, ok := c.windows[id]
	if !ok {
		return WindowConfig{}, fmt.Errorf("no window %d", id)
	}
	return cfg, nil
}

func (c *stubConfig) DefaultWindowAttr() WindowAttr { return c.attr }

func (c *stubConfig) KeyCursorConfig() CursorConfig { return c.cursor }

var opaqueWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// baseConfig 返回一个 fontSize=20、间距 2、注音 10 的 4x3 窗口。
func baseConfig() WindowConfig {
	return WindowConfig{
		FontSize:   20,
		Columns:    4,
		Rows:       3,
		SpacingX:   2,
		SpacingY:   2,
		RubySize:   10,
		TextColour: opaqueWhite,
	}
}

type fixture struct {
	sys     *TextSystem
	backend *stubBackend
	screen  *stubScreen
	config  *stubConfig
}

func newFixture(t *testing.T, windows map[int]WindowConfig) *fixture {
	t.Helper()
	f := &fixture{
		backend: newStubBackend(),
		screen:  newStubScreen(),
		config: &stubConfig{
			windows: windows,
			attr:    WindowAttr{R: 10, G: 20, B: 30, A: 128},
		},
	}
	sys, err := New(Options{Fonts: f.backend, Config: f.config, Screen: f.screen})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.sys = sys
	return f
}

func (f *fixture) window(t *testing.T, id int) *TextWindow {
	t.Helper()
	w, err := f.sys.Window(id)
	if err != nil {
		t.Fatalf("Window(%d): %v", id, err)
	}
	return w
}

// feed 逐字送入 text，要求每个字都被接受。
func feed(t *testing.T, w *TextWindow, text, nextChar string) {
	t.Helper()
	rest, err := PrintText(w.DisplayChar, text, nextChar)
	if err != nil {
		t.Fatalf("PrintText(%q): %v", text, err)
	}
	if rest != "" {
		t.Fatalf("PrintText(%q) left %q unconsumed", text, rest)
	}
}

func opaqueAt(img *image.RGBA, x, y int) bool {
	return img.RGBAAt(x, y).A != 0
}
