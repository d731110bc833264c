package textsys

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ByLCY/novella/kinsoku"
)

// rubyRun 记录注音区间的起点；open 为 false 表示当前没有注音区间。
type rubyRun struct {
	beginX int
	open   bool
}

// sequence 生成会话内递增的选项序号。
type sequence struct{ n int }

func (s *sequence) next() int {
	s.n++
	return s.n
}

// windowDeps 是窗口构造时由 TextSystem 注入的协作者。
type windowDeps struct {
	screen      Compositor
	font        FontHandle
	rubyFont    FontHandle
	images      ImageLoader
	ids         *sequence
	onSelect    func(id int)
	defaultAttr WindowAttr
}

// TextWindow 保存一个对话框的排版状态，并实现逐字排版算法。
type TextWindow struct {
	id       int
	cfg      WindowConfig
	nameMode NameMode

	screen   Compositor
	font     FontHandle
	rubyFont FontHandle
	ids      *sequence
	onSelect func(id int)

	cursor      image.Point
	lineNumber  int
	indentation int
	ruby        rubyRun

	fontColour     color.RGBA
	attr           WindowAttr
	attrOverridden bool
	visible        bool

	selections []*SelectionElement
	surface    *image.RGBA

	wakuMain    image.Image
	wakuBacking image.Image
}

func newTextWindow(id int, cfg WindowConfig, deps windowDeps) (*TextWindow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("窗口 %d: %w", id, err)
	}
	mode, err := ParseNameMode(cfg.NameMode)
	if err != nil {
		return nil, fmt.Errorf("窗口 %d: %w", id, err)
	}
	w := &TextWindow{
		id:       id,
		cfg:      cfg,
		nameMode: mode,
		screen:   deps.screen,
		font:     deps.font,
		rubyFont: deps.rubyFont,
		ids:      deps.ids,
		onSelect: deps.onSelect,
		attr:     deps.defaultAttr,
	}
	if cfg.AttrOverride != nil {
		w.attr = *cfg.AttrOverride
		w.attrOverridden = true
	}
	if w.ids == nil {
		w.ids = &sequence{}
	}
	if deps.images != nil {
		if w.wakuMain, err = loadWaku(deps.images, cfg.Waku.Main); err != nil {
			return nil, fmt.Errorf("窗口 %d: %w", id, err)
		}
		if w.wakuBacking, err = loadWaku(deps.images, cfg.Waku.Backing); err != nil {
			return nil, fmt.Errorf("窗口 %d: %w", id, err)
		}
	}
	w.Clear()
	return w, nil
}

func loadWaku(images ImageLoader, name string) (image.Image, error) {
	if name == "" {
		return nil, nil
	}
	img, err := images.LoadImage(name)
	if err != nil {
		return nil, fmt.Errorf("%w: 加载窗口皮肤 %s 失败: %v", ErrConfiguration, name, err)
	}
	return img, nil
}

// ID 返回窗口编号。
func (w *TextWindow) ID() int { return w.id }

// Config 返回窗口的几何配置。
func (w *TextWindow) Config() WindowConfig { return w.cfg }

// Cursor 返回文字区域内的插入点。
func (w *TextWindow) Cursor() image.Point { return w.cursor }

// LineNumber 返回当前行号。
func (w *TextWindow) LineNumber() int { return w.lineNumber }

// Indentation 返回换行后恢复到的横向位置。
func (w *TextWindow) Indentation() int { return w.indentation }

// RubyBegin 返回注音区间起点；没有打开的区间时 ok 为 false。
func (w *TextWindow) RubyBegin() (x int, ok bool) { return w.ruby.beginX, w.ruby.open }

func (w *TextWindow) Visible() bool { return w.visible }

func (w *TextWindow) SetVisible(v bool) { w.visible = v }

// FontColour 返回当前文字颜色。
func (w *TextWindow) FontColour() color.RGBA { return w.fontColour }

// SetFontColour 修改当前文字颜色，下一次 Clear 时恢复默认值。
func (w *TextWindow) SetFontColour(c color.RGBA) { w.fontColour = c }

// Attr 返回窗口当前底色。
func (w *TextWindow) Attr() WindowAttr { return w.attr }

// AttrOverridden 表示窗口底色是否已脱离系统默认值。
func (w *TextWindow) AttrOverridden() bool { return w.attrOverridden }

// SetWindowAttr 为该窗口单独指定底色，此后不再跟随系统默认值。
func (w *TextWindow) SetWindowAttr(a WindowAttr) {
	w.attr = a
	w.attrOverridden = true
}

// syncAttr 由 TextSystem 在默认底色变化时调用。
func (w *TextWindow) syncAttr(def WindowAttr) {
	if !w.attrOverridden {
		w.attr = def
	}
}

// Surface 返回后备缓冲。
func (w *TextWindow) Surface() *image.RGBA { return w.surface }

// TextSize 返回文字区域尺寸。
func (w *TextWindow) TextSize() image.Point { return w.cfg.TextSize() }

// IsFull 表示窗口已经写满。
func (w *TextWindow) IsFull() bool { return w.lineNumber >= w.cfg.Rows }

// InSelectionMode 表示窗口正在显示选项。
func (w *TextWindow) InSelectionMode() bool { return len(w.selections) > 0 }

// Selections 返回当前选项列表。
func (w *TextWindow) Selections() []*SelectionElement { return w.selections }

// BoxSize 返回窗口框的尺寸：有主皮肤时取皮肤尺寸，否则为文字区域加内边距。
func (w *TextWindow) BoxSize() image.Point {
	if w.wakuMain != nil {
		return w.wakuMain.Bounds().Size()
	}
	p := w.cfg.Padding
	return w.cfg.TextSize().Add(image.Pt(p.Left+p.Right, p.Top+p.Bottom))
}

// BoxOrigin 按 POS 的参照角与偏移计算窗口框左上角的屏幕坐标。
func (w *TextWindow) BoxOrigin() image.Point {
	screen := w.screen.ScreenSize()
	box := w.BoxSize()
	off := w.cfg.Offset
	switch w.cfg.Origin {
	case OriginTopRight:
		return image.Pt(screen.X-box.X-off.X, off.Y)
	case OriginBottomLeft:
		return image.Pt(off.X, screen.Y-box.Y-off.Y)
	case OriginBottomRight:
		return image.Pt(screen.X-box.X-off.X, screen.Y-box.Y-off.Y)
	default:
		return off
	}
}

// TextOrigin 返回文字区域左上角的屏幕坐标。
func (w *TextWindow) TextOrigin() image.Point {
	return w.BoxOrigin().Add(image.Pt(w.cfg.Padding.Left, w.cfg.Padding.Top))
}

// Clear 重置插入点、缩进、行号与注音状态，并重新分配后备缓冲。
func (w *TextWindow) Clear() {
	w.cursor = image.Pt(0, w.cfg.RubySize)
	w.indentation = 0
	w.lineNumber = 0
	w.ruby = rubyRun{}
	w.fontColour = w.cfg.TextColour
	w.surface = newSurface(w.cfg.TextSize())
}

// HardBreak 换到下一行并回到当前缩进位置；窗口已满时不再下移。
func (w *TextWindow) HardBreak() {
	if w.IsFull() {
		return
	}
	w.cursor.X = w.indentation
	w.cursor.Y += w.cfg.lineAdvance()
	w.lineNumber++
}

// SetIndentation 把缩进设为当前插入点。
func (w *TextWindow) SetIndentation() { w.indentation = w.cursor.X }

// ResetIndentation 取消缩进。
func (w *TextWindow) ResetIndentation() { w.indentation = 0 }

// DisplayChar 尝试把 current 排入窗口，next 用于行首禁则的前瞻。
// 窗口已满时返回 false，调用方应翻页或丢弃该字符。
func (w *TextWindow) DisplayChar(current, next string) (bool, error) {
	if w.IsFull() {
		return false, nil
	}
	w.visible = true

	if current != "" {
		cur := kinsoku.First(current)
		nxt := kinsoku.First(next)
		if cur == '【' || cur == '】' {
			return false, fmt.Errorf("%w（%q）", ErrNameMarker, current)
		}

		glyph, err := rasterize(w.font, current, w.fontColour)
		if err != nil {
			return false, err
		}

		// 当前字放不下则换行；当前字放得下但下一个是行首禁止字符且放不下时，
		// 提前在当前字之前换行，避免禁则字符独自出现在下一行行首。
		// 下一个字的宽度沿用当前字的宽度估算。
		limit := w.cfg.TextSize().X
		width := glyph.Bounds().Dx()
		fits := w.cursor.X+width+w.cfg.SpacingX <= limit
		nextFits := w.cursor.X+2*(width+w.cfg.SpacingX) <= limit
		if !fits || (!kinsoku.IsNoLineStart(cur) && !nextFits && kinsoku.IsNoLineStart(nxt)) {
			w.HardBreak()
			if w.IsFull() {
				return false, nil
			}
		}

		blitOver(w.surface, glyph, w.cursor)
		// 等宽步进：按字号而非实测宽度前进
		w.cursor.X += w.cfg.FontSize + w.cfg.SpacingX
	}

	// 注音区间内的字等注音一起刷新
	if !w.ruby.open {
		w.screen.MarkDirty(LayerText)
	}
	return true, nil
}

// SetName 按 NAME_MOD 显示说话人名字；nextChar 是名字之后正文的第一个字。
// 窗口写满时返回未显示的部分 rest，此时不设置缩进，调用方翻页后应以 rest 再次调用。
func (w *TextWindow) SetName(name, nextChar string) (rest string, err error) {
	switch w.nameMode {
	case NameModeInline, NameModeNoQuoteIndent:
	case NameModeSeparate:
		return "", fmt.Errorf("%w: NAME_MOD=1（独立名字窗口）", ErrUnsupportedMode)
	default:
		return "", fmt.Errorf("%w: NAME_MOD=%d", ErrUnsupportedMode, int(w.nameMode))
	}

	rest, err = PrintText(w.DisplayChar, name, nextChar)
	if err != nil || rest != "" {
		return rest, err
	}
	w.SetIndentation()
	// 名字与台词分属两条脚本字符串时无法判断引号，NAME_MOD=2 不做引号缩进
	if w.nameMode == NameModeInline {
		w.indentForOpeningQuote(nextChar)
	}
	return "", nil
}

func (w *TextWindow) indentForOpeningQuote(nextChar string) {
	if kinsoku.IsOpeningQuote(kinsoku.First(nextChar)) {
		w.indentation = w.cursor.X + w.cfg.FontSize + w.cfg.SpacingX
	}
}

// MarkRubyBegin 在当前插入点打开一个注音区间。
func (w *TextWindow) MarkRubyBegin() {
	w.ruby = rubyRun{beginX: w.cursor.X, open: true}
}

// DisplayRubyText 把注音居中绘制在区间上方，并关闭区间。
// 没有打开的区间时什么也不做。
func (w *TextWindow) DisplayRubyText(text string) error {
	if !w.ruby.open {
		return nil
	}
	begin := w.ruby.beginX
	end := w.cursor.X - w.cfg.SpacingX
	w.ruby = rubyRun{}

	if begin > end {
		return fmt.Errorf("%w: 起点 %d 位于终点 %d 之后", ErrRubyAcrossLineBreak, begin, end)
	}
	if w.cfg.RubySize == 0 {
		// 没有注音行可用
		return nil
	}

	glyph, err := rasterize(w.rubyFont, text, w.fontColour)
	if err != nil {
		return err
	}
	gw := glyph.Bounds().Dx()
	x := int(float64(begin) + float64(end-begin)*0.5 - float64(gw)*0.5)
	y := w.cursor.Y - w.cfg.RubySize
	blitOver(w.surface, glyph, image.Pt(x, y))
	w.screen.MarkDirty(LayerText)
	return nil
}

// SetSelectionCallback 设置之后新增选项的激活回调。
func (w *TextWindow) SetSelectionCallback(fn func(id int)) { w.onSelect = fn }

// AddSelection 在当前插入点新增一个选项并返回其序号。
func (w *TextWindow) AddSelection(label string) (int, error) {
	normal, err := rasterize(w.font, label, w.fontColour)
	if err != nil {
		return 0, err
	}
	highlighted := invertAlpha(normal)

	id := w.ids.next()
	pos := w.TextOrigin().Add(w.cursor)
	w.selections = append(w.selections, newSelectionElement(normal, highlighted, w.onSelect, id, pos))
	w.cursor.Y += w.cfg.lineAdvance()
	w.visible = true
	return id, nil
}

// EndSelectionMode 清空选项并重置窗口。
func (w *TextWindow) EndSelectionMode() {
	w.selections = nil
	w.Clear()
}

// SetMousePosition 在选择模式下把鼠标位置转发给各选项。
func (w *TextWindow) SetMousePosition(p image.Point) {
	for _, s := range w.selections {
		s.SetMousePosition(p)
	}
}

// HandleMouseClick 在选择模式下按顺序询问各选项，第一个命中的选项消费点击。
func (w *TextWindow) HandleMouseClick(p image.Point, pressed bool) bool {
	for _, s := range w.selections {
		if s.HandleMouseClick(p, pressed) {
			return true
		}
	}
	return false
}

// Render 绘制窗口皮肤，再绘制选项或后备缓冲。
func (w *TextWindow) Render(c Compositor) {
	if w.surface == nil || !w.visible {
		return
	}
	box := w.BoxOrigin()
	if w.wakuBacking != nil {
		c.BlitMask(w.wakuBacking, box, w.attr.Colour(), w.attr.Filter)
	}
	if w.wakuMain != nil {
		b := w.wakuMain.Bounds()
		c.Blit(w.wakuMain, b, image.Rectangle{Min: box, Max: box.Add(b.Size())}, 255)
	}

	if w.InSelectionMode() {
		for _, s := range w.selections {
			s.Render(c)
		}
		return
	}
	origin := w.TextOrigin()
	b := w.surface.Bounds()
	c.Blit(w.surface, b, image.Rectangle{Min: origin, Max: origin.Add(b.Size())}, 255)
}
