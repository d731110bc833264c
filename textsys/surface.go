package textsys

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// newSurface 分配一块全透明的后备缓冲。
func newSurface(size image.Point) *image.RGBA {
	return image.NewRGBA(image.Rectangle{Max: size})
}

// blitOver 把 src 整体以 Over 方式绘制到 dst 的 at 位置。
func blitOver(dst draw.Image, src image.Image, at image.Point) {
	b := src.Bounds()
	r := image.Rectangle{Min: at, Max: at.Add(b.Size())}
	draw.Draw(dst, r, src, b.Min, draw.Over)
}

// rasterize 调用后端并把失败统一包装为 ErrGlyphRender。
func rasterize(face FontHandle, text string, c color.Color) (image.Image, error) {
	if face == nil {
		return nil, fmt.Errorf("%w: 缺少字体句柄（%q）", ErrGlyphRender, text)
	}
	img, err := face.Rasterize(text, c)
	if err != nil {
		return nil, fmt.Errorf("%w: 字号 %d 渲染 %q: %v", ErrGlyphRender, face.Size(), text, err)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: 字号 %d 渲染 %q 得到空位图", ErrGlyphRender, face.Size(), text)
	}
	return img, nil
}

// invertAlpha 复制 src 并翻转每个像素的不透明度，得到选项高亮时的反色底板。
func invertAlpha(src image.Image) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(image.Rectangle{Max: b.Size()})
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			c.A = 255 - c.A
			out.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return out
}
