package textsys

// 该文件定义文本系统与外部协作者（字体后端、合成器、配置源）之间的接口和共享类型。

import (
	"fmt"
	"image"
	"image/color"
)

// FontBackend 按像素字号打开字体句柄。实现可能较慢，调用方负责按字号缓存。
type FontBackend interface {
	FontHandle(size int) (FontHandle, error)
}

// FontHandle 是某一字号下的度量与光栅化能力。
type FontHandle interface {
	Size() int
	// Measure 返回 text 渲染后的像素宽高。
	Measure(text string) (image.Point, error)
	// Rasterize 把 text 以颜色 c 渲染成位图，位图原点位于 (0,0)。
	Rasterize(text string, c color.Color) (image.Image, error)
	Close() error
}

// Layer 标识需要重新合成的图层。
type Layer int

const (
	LayerText Layer = iota
	LayerKeyCursor
)

func (l Layer) String() string {
	switch l {
	case LayerText:
		return "text"
	case LayerKeyCursor:
		return "key-cursor"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// Compositor 是屏幕合成后端。
type Compositor interface {
	ScreenSize() image.Point
	// Blit 把 src 中 srcRect 区域以 alpha 不透明度绘制到屏幕 dstRect；尺寸不同则缩放。
	Blit(src image.Image, srcRect, dstRect image.Rectangle, alpha uint8)
	// BlitMask 以 mask 的 alpha 通道为形状，用 colour 着色绘制到 at；
	// filter 为 true 时按颜色滤镜（相乘）方式合成。
	BlitMask(mask image.Image, at image.Point, colour color.RGBA, filter bool)
	MarkDirty(layer Layer)
}

// ImageLoader 按名字加载皮肤、光标等图片资源。
type ImageLoader interface {
	LoadImage(name string) (image.Image, error)
}

// ConfigSource 提供只读的窗口几何配置。
type ConfigSource interface {
	WindowConfig(id int) (WindowConfig, error)
	DefaultWindowAttr() WindowAttr
	KeyCursorConfig() CursorConfig
}

// WindowAttr 是窗口底色：RGBA 加滤镜标志。
type WindowAttr struct {
	R, G, B, A int
	Filter     bool
}

// Colour 返回截断到 0-255 的颜色。
func (a WindowAttr) Colour() color.RGBA {
	return color.RGBA{R: clampByte(a.R), G: clampByte(a.G), B: clampByte(a.B), A: clampByte(a.A)}
}

// AttrFromInts 按 R,G,B,A,F 顺序解释整数序列，缺失项为 0。
func AttrFromInts(v []int) WindowAttr {
	get := func(i int) int {
		if i < len(v) {
			return v[i]
		}
		return 0
	}
	return WindowAttr{R: get(0), G: get(1), B: get(2), A: get(3), Filter: get(4) != 0}
}

func clampByte(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// Padding 是文字区域相对窗口框的内边距（MOJI_POS：上、下、左、右）。
type Padding struct {
	Top, Bottom, Left, Right int
}

// Origin 表示窗口定位所参照的屏幕角。
type Origin int

const (
	OriginTopLeft Origin = iota
	OriginTopRight
	OriginBottomLeft
	OriginBottomRight
)

// NameMode 决定 SetName 的显示方式。
type NameMode int

const (
	// NameModeInline 在正文中显示名字，并按后续开引号调整缩进。
	NameModeInline NameMode = 0
	// NameModeSeparate 使用独立名字窗口，目前不支持。
	NameModeSeparate NameMode = 1
	// NameModeNoQuoteIndent 显示名字但不做引号缩进。
	NameModeNoQuoteIndent NameMode = 2
)

// ParseNameMode 把 NAME_MOD 配置值转换为 NameMode。
func ParseNameMode(v int) (NameMode, error) {
	switch NameMode(v) {
	case NameModeInline, NameModeSeparate, NameModeNoQuoteIndent:
		return NameMode(v), nil
	default:
		return 0, fmt.Errorf("%w: 未知的 NAME_MOD=%d", ErrConfiguration, v)
	}
}

// WakuConfig 记录窗口皮肤图片名，空串表示不使用。
type WakuConfig struct {
	Main    string
	Backing string
}

// WindowConfig 是单个文本窗口的几何与外观配置，单位均为像素。
type WindowConfig struct {
	FontSize int
	Columns  int
	Rows     int
	SpacingX int
	SpacingY int
	RubySize int
	Padding  Padding
	Origin   Origin
	Offset   image.Point
	NameMode int
	// AttrOverride 非空时窗口使用自己的底色而不跟随系统默认值。
	AttrOverride *WindowAttr
	TextColour   color.RGBA
	Waku         WakuConfig
}

// Validate 检查配置是否足以构造窗口。
func (c WindowConfig) Validate() error {
	switch {
	case c.FontSize <= 0:
		return fmt.Errorf("%w: 字号必须为正数，实际为 %d", ErrConfiguration, c.FontSize)
	case c.Columns <= 0 || c.Rows <= 0:
		return fmt.Errorf("%w: 字符网格 %dx%d 无效", ErrConfiguration, c.Columns, c.Rows)
	case c.SpacingX < 0 || c.SpacingY < 0:
		return fmt.Errorf("%w: 字间距 (%d,%d) 不能为负", ErrConfiguration, c.SpacingX, c.SpacingY)
	case c.RubySize < 0:
		return fmt.Errorf("%w: 注音字号 %d 不能为负", ErrConfiguration, c.RubySize)
	}
	if _, err := ParseNameMode(c.NameMode); err != nil {
		return err
	}
	return nil
}

// TextSize 返回文字区域（后备缓冲）的像素尺寸。
func (c WindowConfig) TextSize() image.Point {
	return image.Pt(
		c.Columns*(c.FontSize+c.SpacingX),
		c.Rows*(c.FontSize+c.SpacingY+c.RubySize),
	)
}

// lineAdvance 是一行文字在纵向上占用的高度。
func (c WindowConfig) lineAdvance() int {
	return c.FontSize + c.SpacingY + c.RubySize
}

// CursorConfig 描述等待输入时显示的按键光标。
type CursorConfig struct {
	Image  string
	Size   image.Point // 单帧尺寸；为零时取整张图片
	Frames int
	// Speed 表示每帧持续的渲染次数。
	Speed int
}
