// Package driver 把文本系统与帧缓冲组合成脚本可直接调用的指令集，
// 负责自动翻页、截取画面与记录选项结果。
package driver

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ByLCY/novella/kinsoku"
	"github.com/ByLCY/novella/screen"
	"github.com/ByLCY/novella/textsys"
)

// ErrGlyphTooLarge 表示单个字符连空窗口都放不下，翻页无法推进。
var ErrGlyphTooLarge = errors.New("driver: 字符无法放入空窗口")

// Options 配置 Driver。
type Options struct {
	System *textsys.TextSystem
	Screen *screen.Screen
	// Logger 可选，为空时不输出日志。
	Logger *log.Logger
}

// Driver 按当前窗口转发指令，窗口写满时截取一帧后清空并继续。
type Driver struct {
	sys    *textsys.TextSystem
	scr    *screen.Screen
	logger *log.Logger

	window  int
	frames  []image.Image
	choices []int
	pages   int
}

// New 创建 Driver 并接管文本系统的选项回调。
func New(opts Options) (*Driver, error) {
	if opts.System == nil || opts.Screen == nil {
		return nil, fmt.Errorf("%w: 驱动需要文本系统与帧缓冲", textsys.ErrConfiguration)
	}
	d := &Driver{sys: opts.System, scr: opts.Screen, logger: opts.Logger}
	d.sys.SetSelectionCallback(d.onSelect)
	return d, nil
}

func (d *Driver) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}

func (d *Driver) onSelect(id int) {
	d.choices = append(d.choices, id)
	d.logf("选择了选项 %d", id)
}

// System 返回底层文本系统。
func (d *Driver) System() *textsys.TextSystem { return d.sys }

// CurrentWindow 返回当前窗口编号。
func (d *Driver) CurrentWindow() int { return d.window }

// Window 切换当前窗口，并把它设为活动窗口。
func (d *Driver) Window(id int) error {
	if _, err := d.sys.Window(id); err != nil {
		return err
	}
	d.window = id
	d.sys.SetActiveWindow(id)
	return nil
}

// Text 逐字显示 text；窗口写满时截取一帧、清空窗口后继续。
func (d *Driver) Text(text string) error {
	return d.text(text, "", nil)
}

// text 在每次翻页清空窗口后调用 afterFlip（可为 nil）。
func (d *Driver) text(text, nextChar string, afterFlip func() error) error {
	display := func(cur, next string) (bool, error) {
		return d.sys.DisplayChar(d.window, cur, next)
	}
	rest, err := textsys.PrintText(display, text, nextChar)
	for err == nil && rest != "" {
		if err = d.flip(afterFlip); err != nil {
			break
		}
		var next string
		next, err = textsys.PrintText(display, rest, nextChar)
		if err == nil && next == rest {
			return fmt.Errorf("%w: %q", ErrGlyphTooLarge, textsys.Graphemes(rest)[0])
		}
		rest = next
	}
	return err
}

// flip 截取暂停画面并清空当前窗口。
func (d *Driver) flip(afterFlip func() error) error {
	d.pages++
	d.logf("窗口 %d 已满，翻页（第 %d 次）", d.window, d.pages)
	if err := d.Pause(); err != nil {
		return err
	}
	if err := d.sys.ClearWindow(d.window); err != nil {
		return err
	}
	if afterFlip != nil {
		return afterFlip()
	}
	return nil
}

// Name 显示说话人名字后接着显示台词 text；名字放不下时同样翻页。
func (d *Driver) Name(name, text string) error {
	next := ""
	if r := kinsoku.First(text); r != 0 {
		next = string(r)
	}
	rest, err := d.sys.SetName(d.window, name, next)
	for err == nil && rest != "" {
		if err = d.flip(nil); err != nil {
			return err
		}
		var left string
		left, err = d.sys.SetName(d.window, rest, next)
		if err == nil && left == rest {
			return fmt.Errorf("%w: %q", ErrGlyphTooLarge, textsys.Graphemes(rest)[0])
		}
		rest = left
	}
	if err != nil {
		return err
	}
	return d.Text(text)
}

// Ruby 显示 base，并在其上方居中显示注音 ruby。
// base 中途翻页时，注音只标在新一页上的部分。
func (d *Driver) Ruby(base, ruby string) error {
	mark := func() error { return d.sys.MarkRubyBegin(d.window) }
	if err := mark(); err != nil {
		return err
	}
	if err := d.text(base, "", mark); err != nil {
		return err
	}
	return d.sys.DisplayRubyText(d.window, ruby)
}

// Break 在当前窗口强制换行。
func (d *Driver) Break() error { return d.sys.HardBreak(d.window) }

// Clear 清空当前窗口。
func (d *Driver) Clear() error { return d.sys.ClearWindow(d.window) }

// Select 在当前窗口依次添加选项，返回各选项的序号。
func (d *Driver) Select(labels ...string) ([]int, error) {
	ids := make([]int, 0, len(labels))
	for _, label := range labels {
		id, err := d.sys.AddSelection(d.window, label)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// EndSelect 结束当前窗口的选择模式。
func (d *Driver) EndSelect() error { return d.sys.EndSelectionMode(d.window) }

// Mouse 广播鼠标位置。
func (d *Driver) Mouse(x, y int) { d.sys.DispatchMousePosition(image.Pt(x, y)) }

// Click 在 (x,y) 处模拟一次按下与松开，返回是否有窗口处理了点击。
func (d *Driver) Click(x, y int) bool {
	p := image.Pt(x, y)
	d.sys.DispatchMousePosition(p)
	pressed := d.sys.DispatchMouseClick(p, true)
	released := d.sys.DispatchMouseClick(p, false)
	return pressed || released
}

// Pause 进入等待点击状态并截取一帧，截取后恢复。
func (d *Driver) Pause() error {
	d.sys.SetInPauseState(true)
	defer d.sys.SetInPauseState(false)
	return d.Frame()
}

// Frame 重新合成整个画面并保存一帧。
func (d *Driver) Frame() error {
	d.scr.Clear()
	if err := d.sys.Render(); err != nil {
		return err
	}
	d.frames = append(d.frames, d.scr.Snapshot())
	d.scr.ResetDirty()
	return nil
}

// Attr 修改系统默认窗口底色。
func (d *Driver) Attr(a textsys.WindowAttr) { d.sys.SetDefaultWindowAttr(a) }

// WindowAttr 为窗口 id 单独指定底色。
func (d *Driver) WindowAttr(id int, a textsys.WindowAttr) error {
	w, err := d.sys.Window(id)
	if err != nil {
		return err
	}
	w.SetWindowAttr(a)
	return nil
}

// RevertWindowAttr 让窗口 id 重新跟随系统默认底色。
func (d *Driver) RevertWindowAttr(id int) error { return d.sys.RevertWindowAttr(id) }

// Colour 以 #rrggbb 或 #rgb 设置当前窗口的文字颜色，直到下一次清空。
func (d *Driver) Colour(hex string) error {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("无效的颜色 %q: %w", hex, err)
	}
	w, err := d.sys.Window(d.window)
	if err != nil {
		return err
	}
	r, g, b := c.RGB255()
	w.SetFontColour(color.RGBA{R: r, G: g, B: b, A: 255})
	return nil
}

// Backlog 切换回看状态。
func (d *Driver) Backlog(on bool) { d.sys.SetReadingBacklog(on) }

// Show 显示或隐藏整个文本层。
func (d *Driver) Show(on bool) { d.sys.SetSystemVisible(on) }

// Frames 返回已截取的画面。
func (d *Driver) Frames() []image.Image { return d.frames }

// Choices 按发生顺序返回被选中的选项序号。
func (d *Driver) Choices() []int { return d.choices }

// Pages 返回自动翻页的次数。
func (d *Driver) Pages() int { return d.pages }
