// Package ttfrenderer 基于 github.com/golang/freetype 光栅化 TrueType 字形，是默认的字体后端。
package ttfrenderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/novella/textsys"
)

var (
	_ textsys.FontBackend = (*Backend)(nil)
	_ textsys.FontHandle  = (*Face)(nil)
)

// Backend 持有解析后的字体，按像素字号创建字体句柄。
type Backend struct {
	font *truetype.Font
}

// NewBackend 解析 TTF 数据。
func NewBackend(data []byte) (*Backend, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析 TrueType 字体失败: %w", err)
	}
	return &Backend{font: f}, nil
}

// FontHandle implements textsys.FontBackend.
// DPI 固定为 72，使点数与像素一致。
func (b *Backend) FontHandle(size int) (textsys.FontHandle, error) {
	if size <= 0 {
		return nil, fmt.Errorf("字号必须为正数，实际为 %d", size)
	}
	face := truetype.NewFace(b.font, &truetype.Options{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return &Face{size: size, face: face}, nil
}

// Face 是单一字号的 TrueType 字体句柄。
type Face struct {
	size int
	face font.Face
}

func (f *Face) Size() int { return f.size }

// Measure 返回 text 的前进宽度与行高。
func (f *Face) Measure(text string) (image.Point, error) {
	return image.Pt(font.MeasureString(f.face, text).Ceil(), f.height()), nil
}

func (f *Face) height() int {
	m := f.face.Metrics()
	if h := (m.Ascent + m.Descent).Ceil(); h > f.size {
		return h
	}
	return f.size
}

// Rasterize 把 text 画到透明底上；空串得到 1x1 的透明位图。
func (f *Face) Rasterize(text string, c color.Color) (image.Image, error) {
	if text == "" {
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	}
	size, err := f.Measure(text)
	if err != nil {
		return nil, err
	}
	if size.X <= 0 {
		size.X = 1
	}
	dst := image.NewRGBA(image.Rectangle{Max: size})
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: f.face,
		Dot:  fixed.P(0, f.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
	return dst, nil
}

func (f *Face) Close() error { return f.face.Close() }
