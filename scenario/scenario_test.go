package scenario_test

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/ByLCY/novella/driver"
	"github.com/ByLCY/novella/gameexe"
	cellrenderer "github.com/ByLCY/novella/renderer/cell"
	"github.com/ByLCY/novella/scenario"
	"github.com/ByLCY/novella/screen"
	"github.com/ByLCY/novella/textsys"
)

const sampleScript = `
// 开场
window 0
name "${hero}" "「おはよう」"
br
ruby "漢字" "かんじ"
color #ff0000
pause

# 选择
clear
select "はい" "いいえ"
click 5 15
end-select
attr 10 20 30 128 1
window-attr 0 1 2 3 4
revert-attr 0
backlog 0
show 1
frame
`

func TestParseScript(t *testing.T) {
	script, err := scenario.ParseString(sampleScript)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(script.Commands) != 16 {
		t.Fatalf("expected 16 commands, got %d", len(script.Commands))
	}

	name := script.Commands[1]
	if name.Name != "name" || len(name.Args) != 2 {
		t.Fatalf("unexpected name command %+v", name)
	}
	if got := name.Args[1].String(); got != "「おはよう」" {
		t.Fatalf("expected unquoted dialogue, got %q", got)
	}
	if name.Pos.Line != 4 {
		t.Fatalf("expected name command on line 4, got %d", name.Pos.Line)
	}

	colour := script.Commands[4]
	if colour.Args[0].Color == nil || *colour.Args[0].Color != "#ff0000" {
		t.Fatalf("expected colour literal, got %+v", colour.Args[0])
	}
	if cmd := script.Commands[9]; cmd.Name != "end-select" {
		t.Fatalf("expected end-select, got %s", cmd.Name)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := scenario.ParseString(`text "unterminated`); err == nil {
		t.Fatalf("expected parse error")
	}
}

func newRunner(t *testing.T, data string) (*scenario.Runner, *driver.Driver) {
	t.Helper()
	cfg, err := gameexe.Parse(strings.NewReader(`
#WINDOW.000.MOJI_SIZE=20
#WINDOW.000.MOJI_CNT=8,3
#WINDOW.000.LUBY_SIZE=10
`))
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
	return scenario.NewRunner(d, []byte(data), nil), d
}

func TestRunScript(t *testing.T) {
	script, err := scenario.ParseString(sampleScript)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	r, d := newRunner(t, `{"hero":"智子"}`)
	if err := r.Run(script); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(d.Frames()) != 2 {
		t.Fatalf("expected 2 frames (pause + frame), got %d", len(d.Frames()))
	}
	if len(d.Choices()) != 1 {
		t.Fatalf("expected one choice, got %v", d.Choices())
	}
	w, _ := d.System().Window(0)
	if w.AttrOverridden() || w.Attr() != (textsys.WindowAttr{R: 10, G: 20, B: 30, A: 128, Filter: true}) {
		t.Fatalf("window attr = %+v", w.Attr())
	}
}

func TestRunReportsPosition(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"window 0\nbogus\n", "2:1"},
		{"window \"zero\"\n", "应为整数"},
		{"window 0\nruby \"a\"\n", "参数个数"},
		{"window 0\ncolor \"blue\"\n", "无效的颜色"},
	}
	for _, tc := range cases {
		script, err := scenario.ParseString(tc.src)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.src, err)
		}
		r, _ := newRunner(t, "")
		err = r.Run(script)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("Run(%q) error = %v, want it to mention %q", tc.src, err, tc.want)
		}
	}
}
