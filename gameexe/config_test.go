package gameexe

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/novella/sjis"
	"github.com/ByLCY/novella/textsys"
)

const sample = `
// 画面
#SCREENSIZE_MOD=1
#FONT_FILE="msgothic.ttc"
#WINDOW_ATTR=0,0,80,160,1
#COLOR_TABLE.000=255,240,200

#WINDOW.000.MOJI_SIZE=24
#WINDOW.000.MOJI_CNT=20,3
#WINDOW.000.MOJI_REP=2,4
#WINDOW.000.LUBY_SIZE=12
#WINDOW.000.MOJI_POS=10,8,16,16
#WINDOW.000.POS=2,32,24
#WINDOW.000.NAME_MOD=0
#WINDOW.000.ATTR_MOD=0
#WINDOW.000.WAKU_SETNO=1

#WINDOW.001.MOJI_SIZE=20
#WINDOW.001.MOJI_CNT=10,2
#WINDOW.001.ATTR_MOD=1
#WINDOW.001.ATTR=255,0,0,64,0

#WAKU.001.000.NAME="waku_main"
#WAKU.001.000.BACK="waku_back"

#CURSOR.000.NAME="keycur"
#CURSOR.000.SIZE=16,16
#CURSOR.000.CONT=4
#CURSOR.000.SPEED=3
`

func parseSample(t *testing.T) *Config {
	t.Helper()
	cfg, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return cfg
}

func TestKeyFormatting(t *testing.T) {
	if got := Key("WAKU", 1, 0, "NAME"); got != "WAKU.001.000.NAME" {
		t.Fatalf("Key = %q", got)
	}
}

func TestAccessors(t *testing.T) {
	cfg := parseSample(t)

	if v, err := cfg.Int("WINDOW", 0, "MOJI_SIZE"); err != nil || v != 24 {
		t.Fatalf("MOJI_SIZE = %d, %v", v, err)
	}
	if v, err := cfg.Ints("WINDOW_ATTR"); err != nil || !cmp.Equal(v, []int{0, 0, 80, 160, 1}) {
		t.Fatalf("WINDOW_ATTR = %v, %v", v, err)
	}
	if _, err := cfg.Int("WINDOW", 9, "MOJI_SIZE"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key: expected ErrNotFound, got %v", err)
	}
	if v, err := cfg.IntOr(7, "WINDOW", 9, "MOJI_SIZE"); err != nil || v != 7 {
		t.Fatalf("IntOr = %d, %v", v, err)
	}
	if _, err := cfg.Int("FONT_FILE"); err == nil {
		t.Fatalf("string value read as int should fail")
	}
	if got := cfg.FontFile(); got != "msgothic.ttc" {
		t.Fatalf("FontFile = %q", got)
	}
	if size, err := cfg.ScreenSize(); err != nil || size != image.Pt(800, 600) {
		t.Fatalf("ScreenSize = %v, %v", size, err)
	}
}

func TestWindowConfig(t *testing.T) {
	cfg := parseSample(t)
	got, err := cfg.WindowConfig(0)
	if err != nil {
		t.Fatalf("WindowConfig(0): %v", err)
	}
	want := textsys.WindowConfig{
		FontSize:   24,
		Columns:    20,
		Rows:       3,
		SpacingX:   2,
		SpacingY:   4,
		RubySize:   12,
		Padding:    textsys.Padding{Top: 10, Bottom: 8, Left: 16, Right: 16},
		Origin:     textsys.OriginBottomLeft,
		Offset:     image.Pt(32, 24),
		TextColour: color.RGBA{R: 255, G: 240, B: 200, A: 255},
		Waku:       textsys.WakuConfig{Main: "waku_main", Backing: "waku_back"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("window 0 mismatch (-want +got):\n%s", diff)
	}

	w1, err := cfg.WindowConfig(1)
	if err != nil {
		t.Fatalf("WindowConfig(1): %v", err)
	}
	if w1.AttrOverride == nil || *w1.AttrOverride != (textsys.WindowAttr{R: 255, A: 64}) {
		t.Fatalf("window 1 override = %+v", w1.AttrOverride)
	}

	if _, err := cfg.WindowConfig(2); !errors.Is(err, textsys.ErrConfiguration) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing window: expected ErrConfiguration wrapping ErrNotFound, got %v", err)
	}
}

func TestDefaultsAndCursor(t *testing.T) {
	cfg := parseSample(t)
	if diff := cmp.Diff(textsys.WindowAttr{B: 80, A: 160, Filter: true}, cfg.DefaultWindowAttr()); diff != "" {
		t.Fatalf("default attr mismatch (-want +got):\n%s", diff)
	}
	want := textsys.CursorConfig{Image: "keycur", Size: image.Pt(16, 16), Frames: 4, Speed: 3}
	if diff := cmp.Diff(want, cfg.KeyCursorConfig()); diff != "" {
		t.Fatalf("cursor mismatch (-want +got):\n%s", diff)
	}
}

func TestShiftJISInput(t *testing.T) {
	raw, err := sjis.Encode("#WAKU.000.000.NAME=\"枠\"\n")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	cfg, err := ParseBytes("sjis.ini", raw)
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if got, _ := cfg.String("WAKU", 0, 0, "NAME"); got != "枠" {
		t.Fatalf("NAME = %q", got)
	}
}

func TestSyntaxError(t *testing.T) {
	if _, err := Parse(strings.NewReader("#WINDOW.000.MOJI_SIZE=24\nWINDOW=3\n")); err == nil {
		t.Fatalf("a line without # should be rejected")
	}
}

func TestInvalidOrigin(t *testing.T) {
	cfg, err := Parse(strings.NewReader("#WINDOW.000.MOJI_SIZE=24\n#WINDOW.000.MOJI_CNT=2,2\n#WINDOW.000.POS=9,0,0\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := cfg.WindowConfig(0); !errors.Is(err, textsys.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
