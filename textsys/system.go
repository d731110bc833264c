package textsys

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sort"
)

// Options 配置 TextSystem 的外部协作者。
type Options struct {
	Fonts  FontBackend
	Config ConfigSource
	Screen Compositor
	// Images 可选，用于加载窗口皮肤与按键光标。
	Images ImageLoader
	// Logger 可选，为空时不输出日志。
	Logger *log.Logger
}

// TextSystem 按编号管理文本窗口，并持有系统级的默认底色、活动窗口与暂停状态。
type TextSystem struct {
	fonts  FontBackend
	config ConfigSource
	screen Compositor
	images ImageLoader
	logger *log.Logger

	windows map[int]*TextWindow
	order   []int

	activeWindow   int
	defaultAttr    WindowAttr
	inPause        bool
	readingBacklog bool
	systemVisible  bool

	fontCache map[int]FontHandle
	ids       sequence
	onSelect  func(id int)
	keyCursor *KeyCursor
}

// New 创建文本系统。字体后端、配置源与合成器缺一不可。
func New(opts Options) (*TextSystem, error) {
	switch {
	case opts.Fonts == nil:
		return nil, fmt.Errorf("%w: 缺少字体后端", ErrConfiguration)
	case opts.Config == nil:
		return nil, fmt.Errorf("%w: 缺少窗口配置", ErrConfiguration)
	case opts.Screen == nil:
		return nil, fmt.Errorf("%w: 缺少合成器", ErrConfiguration)
	}
	return &TextSystem{
		fonts:         opts.Fonts,
		config:        opts.Config,
		screen:        opts.Screen,
		images:        opts.Images,
		logger:        opts.Logger,
		windows:       map[int]*TextWindow{},
		defaultAttr:   opts.Config.DefaultWindowAttr(),
		systemVisible: true,
		fontCache:     map[int]FontHandle{},
	}, nil
}

func (ts *TextSystem) logf(format string, args ...any) {
	if ts.logger != nil {
		ts.logger.Printf(format, args...)
	}
}

// FontOfSize 返回指定字号的字体句柄，同一字号在所有窗口间共享。
func (ts *TextSystem) FontOfSize(size int) (FontHandle, error) {
	if face, ok := ts.fontCache[size]; ok {
		return face, nil
	}
	face, err := ts.fonts.FontHandle(size)
	if err != nil {
		return nil, fmt.Errorf("%w: 无法打开 %d 像素字体: %v", ErrConfiguration, size, err)
	}
	ts.fontCache[size] = face
	return face, nil
}

// Window 返回编号为 id 的窗口，不存在时按配置创建。
func (ts *TextSystem) Window(id int) (*TextWindow, error) {
	if w, ok := ts.windows[id]; ok {
		return w, nil
	}
	cfg, err := ts.config.WindowConfig(id)
	if err != nil {
		if errors.Is(err, ErrConfiguration) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: 窗口 %d: %v", ErrConfiguration, id, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("窗口 %d: %w", id, err)
	}

	font, err := ts.FontOfSize(cfg.FontSize)
	if err != nil {
		return nil, err
	}
	var rubyFont FontHandle
	if cfg.RubySize > 0 {
		if rubyFont, err = ts.FontOfSize(cfg.RubySize); err != nil {
			return nil, err
		}
	}

	w, err := newTextWindow(id, cfg, windowDeps{
		screen:      ts.screen,
		font:        font,
		rubyFont:    rubyFont,
		images:      ts.images,
		ids:         &ts.ids,
		onSelect:    ts.onSelect,
		defaultAttr: ts.defaultAttr,
	})
	if err != nil {
		return nil, err
	}
	ts.windows[id] = w
	ts.order = append(ts.order, id)
	sort.Ints(ts.order)
	ts.logf("创建文本窗口 %d：%dx%d 字，字号 %d", id, cfg.Columns, cfg.Rows, cfg.FontSize)
	return w, nil
}

// Windows 按编号升序返回已创建的窗口。
func (ts *TextSystem) Windows() []*TextWindow {
	out := make([]*TextWindow, 0, len(ts.order))
	for _, id := range ts.order {
		out = append(out, ts.windows[id])
	}
	return out
}

// SetActiveWindow 设置接收按键光标的窗口。
func (ts *TextSystem) SetActiveWindow(id int) { ts.activeWindow = id }

// ActiveWindowID 返回活动窗口编号。
func (ts *TextSystem) ActiveWindowID() int { return ts.activeWindow }

// ActiveWindow 返回活动窗口；尚未创建时 ok 为 false。
func (ts *TextSystem) ActiveWindow() (*TextWindow, bool) {
	w, ok := ts.windows[ts.activeWindow]
	return w, ok
}

// SetInPauseState 设置是否处于等待点击的暂停状态。
func (ts *TextSystem) SetInPauseState(v bool) { ts.inPause = v }

func (ts *TextSystem) InPauseState() bool { return ts.inPause }

// SetReadingBacklog 设置是否正在回看历史文本。
func (ts *TextSystem) SetReadingBacklog(v bool) { ts.readingBacklog = v }

func (ts *TextSystem) ReadingBacklog() bool { return ts.readingBacklog }

// SetSystemVisible 控制整个文本层是否显示；隐藏时也不响应点击。
func (ts *TextSystem) SetSystemVisible(v bool) { ts.systemVisible = v }

func (ts *TextSystem) SystemVisible() bool { return ts.systemVisible }

// SetSelectionCallback 设置选项被点击时的回调，对已有与之后创建的窗口都生效。
func (ts *TextSystem) SetSelectionCallback(fn func(id int)) {
	ts.onSelect = fn
	for _, w := range ts.windows {
		w.SetSelectionCallback(fn)
	}
}

// Render 绘制所有窗口，并在暂停且未回看时于活动窗口上绘制按键光标。
func (ts *TextSystem) Render() error {
	if !ts.systemVisible {
		return nil
	}
	for _, id := range ts.order {
		ts.windows[id].Render(ts.screen)
	}

	w, ok := ts.ActiveWindow()
	if !ok || !w.Visible() || !ts.inPause || ts.readingBacklog {
		return nil
	}
	if ts.keyCursor == nil {
		kc, err := newKeyCursor(ts.config.KeyCursorConfig(), ts.images, w.Config().FontSize)
		if err != nil {
			return err
		}
		ts.keyCursor = kc
	}
	ts.keyCursor.Render(ts.screen, w)
	return nil
}

// DefaultWindowAttr 返回系统默认底色。
func (ts *TextSystem) DefaultWindowAttr() WindowAttr { return ts.defaultAttr }

// SetDefaultWindowAttr 修改系统默认底色并同步到未单独指定底色的窗口。
func (ts *TextSystem) SetDefaultWindowAttr(a WindowAttr) {
	ts.defaultAttr = a
	ts.propagateWindowAttr()
}

func (ts *TextSystem) SetWindowAttrR(v int) {
	ts.defaultAttr.R = v
	ts.propagateWindowAttr()
}

func (ts *TextSystem) SetWindowAttrG(v int) {
	ts.defaultAttr.G = v
	ts.propagateWindowAttr()
}

func (ts *TextSystem) SetWindowAttrB(v int) {
	ts.defaultAttr.B = v
	ts.propagateWindowAttr()
}

func (ts *TextSystem) SetWindowAttrA(v int) {
	ts.defaultAttr.A = v
	ts.propagateWindowAttr()
}

// SetWindowAttrF 设置滤镜标志，非零即开启。
func (ts *TextSystem) SetWindowAttrF(v int) {
	ts.defaultAttr.Filter = v != 0
	ts.propagateWindowAttr()
}

func (ts *TextSystem) propagateWindowAttr() {
	for _, w := range ts.windows {
		w.syncAttr(ts.defaultAttr)
	}
}

// RevertWindowAttr 让窗口重新跟随系统默认底色。
func (ts *TextSystem) RevertWindowAttr(id int) error {
	w, err := ts.Window(id)
	if err != nil {
		return err
	}
	w.attrOverridden = false
	w.syncAttr(ts.defaultAttr)
	return nil
}

// DispatchMousePosition 把鼠标位置广播给所有窗口。
func (ts *TextSystem) DispatchMousePosition(p image.Point) {
	for _, id := range ts.order {
		ts.windows[id].SetMousePosition(p)
	}
}

// DispatchMouseClick 依次询问各窗口，第一个处理点击的窗口终止分发。
func (ts *TextSystem) DispatchMouseClick(p image.Point, pressed bool) bool {
	if !ts.systemVisible {
		return false
	}
	for _, id := range ts.order {
		if ts.windows[id].HandleMouseClick(p, pressed) {
			return true
		}
	}
	return false
}

// 以下方法是脚本解释器调用的入口，按窗口编号转发。

func (ts *TextSystem) DisplayChar(id int, current, next string) (bool, error) {
	w, err := ts.Window(id)
	if err != nil {
		return false, err
	}
	return w.DisplayChar(current, next)
}

// SetName 返回因窗口写满而未显示的名字部分。
func (ts *TextSystem) SetName(id int, name, nextChar string) (string, error) {
	w, err := ts.Window(id)
	if err != nil {
		return "", err
	}
	return w.SetName(name, nextChar)
}

func (ts *TextSystem) MarkRubyBegin(id int) error {
	w, err := ts.Window(id)
	if err != nil {
		return err
	}
	w.MarkRubyBegin()
	return nil
}

func (ts *TextSystem) DisplayRubyText(id int, text string) error {
	w, err := ts.Window(id)
	if err != nil {
		return err
	}
	return w.DisplayRubyText(text)
}

func (ts *TextSystem) HardBreak(id int) error {
	w, err := ts.Window(id)
	if err != nil {
		return err
	}
	w.HardBreak()
	return nil
}

func (ts *TextSystem) AddSelection(id int, label string) (int, error) {
	w, err := ts.Window(id)
	if err != nil {
		return 0, err
	}
	return w.AddSelection(label)
}

func (ts *TextSystem) EndSelectionMode(id int) error {
	w, err := ts.Window(id)
	if err != nil {
		return err
	}
	w.EndSelectionMode()
	return nil
}

func (ts *TextSystem) ClearWindow(id int) error {
	w, err := ts.Window(id)
	if err != nil {
		return err
	}
	w.Clear()
	return nil
}

// Close 释放所有缓存的字体句柄。
func (ts *TextSystem) Close() error {
	var errs []error
	for size, face := range ts.fontCache {
		if err := face.Close(); err != nil {
			errs = append(errs, fmt.Errorf("关闭 %d 像素字体: %w", size, err))
		}
	}
	ts.fontCache = map[int]FontHandle{}
	ts.windows = map[int]*TextWindow{}
	ts.order = nil
	ts.keyCursor = nil
	return errors.Join(errs...)
}
