// Package cellrenderer 是不依赖字体文件的字体后端：按终端单元格宽度度量文本，
// 每个字符画成一个方框。用于无字体环境下的排版预览与测试。
package cellrenderer

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/mattn/go-runewidth"

	"github.com/ByLCY/novella/textsys"
)

var (
	_ textsys.FontBackend = Backend{}
	_ textsys.FontHandle  = (*Face)(nil)
)

// Backend 按字号创建单元格字体：半角字占半个字号宽，全角字占一个字号宽。
type Backend struct{}

// FontHandle implements textsys.FontBackend.
func (Backend) FontHandle(size int) (textsys.FontHandle, error) {
	return &Face{size: size}, nil
}

// Face 是单元格字体句柄。
type Face struct {
	size int
}

func (f *Face) Size() int { return f.size }

func (f *Face) cellWidth() int { return (f.size + 1) / 2 }

// Measure 返回 text 占用的单元格宽度（像素）与字号高度。
func (f *Face) Measure(text string) (image.Point, error) {
	return image.Pt(runewidth.StringWidth(text)*f.cellWidth(), f.size), nil
}

// Rasterize 为每个可见字符画一个实心方框；宽度为零的字符不占位。
func (f *Face) Rasterize(text string, c color.Color) (image.Image, error) {
	size, _ := f.Measure(text)
	if size.X <= 0 || size.Y <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	}
	dc := gg.NewContext(size.X, size.Y)
	dc.SetColor(c)
	cw := float64(f.cellWidth())
	h := float64(f.size)
	inset := h / 10
	x := 0.0
	for _, r := range text {
		w := float64(runewidth.RuneWidth(r)) * cw
		if w == 0 {
			continue
		}
		if r != ' ' && r != '　' {
			dc.DrawRectangle(x+inset, inset, w-2*inset, h-2*inset)
			dc.Fill()
		}
		x += w
	}
	return dc.Image(), nil
}

func (f *Face) Close() error { return nil }
