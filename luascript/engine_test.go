package luascript

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/novella/driver"
	"github.com/ByLCY/novella/gameexe"
	cellrenderer "github.com/ByLCY/novella/renderer/cell"
	"github.com/ByLCY/novella/screen"
	"github.com/ByLCY/novella/sjis"
	"github.com/ByLCY/novella/textsys"
)

func newEngine(t *testing.T) (*Engine, *driver.Driver) {
	t.Helper()
	cfg, err := gameexe.Parse(strings.NewReader("#WINDOW.000.MOJI_SIZE=20\n#WINDOW.000.MOJI_CNT=8,3\n#WINDOW.000.LUBY_SIZE=10\n"))
	if err != nil {
		t.Fatalf("gameexe.Parse: %v", err)
	}
	scr := screen.New(image.Pt(320, 240), color.Black)
	sys, err := textsys.New(textsys.Options{Fonts: cellrenderer.Backend{}, Config: cfg, Screen: scr})
	if err != nil {
		t.Fatalf("textsys.New: %v", err)
	}
	d, err := driver.New(driver.Options{System: sys, Screen: scr})
	if err != nil {
		t.Fatalf("driver.New: %v", err)
	}
	e := New(d)
	t.Cleanup(e.Close)
	return e, d
}

func TestScriptDrivesTextSystem(t *testing.T) {
	e, d := newEngine(t)
	err := e.DoString(`
text.window(0)
text.name("智子", "「おはよう」")
text.br()
text.ruby("漢字", "かんじ")
text.pause()
text.clear()
local ids = text.select("はい", "いいえ")
assert(#ids == 2)
assert(text.click(5, 15))
text.end_select()
local picked = text.choices()
assert(picked[1] == ids[1])
text.attr(1, 2, 3, 4, 1)
text.frame()
`)
	if err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if len(d.Frames()) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(d.Frames()))
	}
	w, _ := d.System().Window(0)
	if w.Attr() != (textsys.WindowAttr{R: 1, G: 2, B: 3, A: 4, Filter: true}) {
		t.Fatalf("attr = %+v", w.Attr())
	}
}

func TestGoErrorsSurviveLua(t *testing.T) {
	e, _ := newEngine(t)
	err := e.DoString(`text.window(5)`)
	if !errors.Is(err, textsys.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if err := e.DoString(`text.window(0)`); err != nil {
		t.Fatalf("a later call should start clean: %v", err)
	}
}

func TestFlagsAcceptNumbers(t *testing.T) {
	e, d := newEngine(t)
	cases := []struct {
		src  string
		want bool
	}{
		{`text.backlog(1)`, true},
		{`text.backlog(0)`, false},
		{`text.backlog(true)`, true},
		{`text.backlog(false)`, false},
	}
	for _, tc := range cases {
		if err := e.DoString(tc.src); err != nil {
			t.Fatalf("%s: %v", tc.src, err)
		}
		if got := d.System().ReadingBacklog(); got != tc.want {
			t.Errorf("%s: ReadingBacklog = %v, want %v", tc.src, got, tc.want)
		}
	}
	if err := e.DoString(`text.show(0)`); err != nil || d.System().SystemVisible() {
		t.Fatalf("show(0) should hide the text layer, err=%v", err)
	}
}

func TestSandboxRemovesLoaders(t *testing.T) {
	e, _ := newEngine(t)
	for _, src := range []string{`dofile("x.lua")`, `load("return 1")`, `os.exit(1)`, `io.write("x")`} {
		if err := e.DoString(src); err == nil {
			t.Errorf("%s should fail inside the sandbox", src)
		}
	}
}

func TestDoFileDecodesShiftJIS(t *testing.T) {
	e, d := newEngine(t)
	raw, err := sjis.Encode("text.window(0)\ntext.print(\"あいう\")\n")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "scene.lua")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := e.DoFile(path); err != nil {
		t.Fatalf("DoFile: %v", err)
	}
	w, _ := d.System().Window(0)
	if w.Cursor().X != 60 {
		t.Fatalf("three glyphs should advance to 60, got %d", w.Cursor().X)
	}
}
