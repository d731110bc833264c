// Package screen 提供基于 github.com/fogleman/gg 的离屏帧缓冲，
// 作为文本系统的合成器，并负责截取、保存与导出画面。
package screen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/ByLCY/novella/renderer"
	"github.com/ByLCY/novella/textsys"
)

var (
	_ textsys.Compositor = (*Screen)(nil)
	_ renderer.Exporter  = PNGExporter{}
)

// Screen 是一块 RGBA 帧缓冲，并记录各图层的重绘请求次数。
type Screen struct {
	dc         *gg.Context
	fb         *image.RGBA
	background color.Color
	dirty      map[textsys.Layer]int
}

// New 创建 size 大小的帧缓冲，并用 background 填充；background 为 nil 时为黑色。
func New(size image.Point, background color.Color) *Screen {
	if background == nil {
		background = color.Black
	}
	dc := gg.NewContext(size.X, size.Y)
	s := &Screen{
		dc:         dc,
		fb:         dc.Image().(*image.RGBA),
		background: background,
		dirty:      map[textsys.Layer]int{},
	}
	s.Clear()
	return s
}

// ScreenSize implements textsys.Compositor.
func (s *Screen) ScreenSize() image.Point { return s.fb.Bounds().Size() }

// Clear 用背景色填充整个帧缓冲。
func (s *Screen) Clear() {
	s.dc.SetColor(s.background)
	s.dc.Clear()
}

// Blit 把 src 中的 srcRect 以 alpha 不透明度绘制到 dstRect，尺寸不同时双线性缩放。
func (s *Screen) Blit(src image.Image, srcRect, dstRect image.Rectangle, alpha uint8) {
	if srcRect.Empty() || dstRect.Empty() || alpha == 0 {
		return
	}
	from, at := src, srcRect.Min
	if srcRect.Size() != dstRect.Size() {
		scaled := image.NewRGBA(image.Rectangle{Max: dstRect.Size()})
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, srcRect, xdraw.Src, nil)
		from, at = scaled, image.Point{}
	}
	if alpha == 255 {
		xdraw.Draw(s.fb, dstRect, from, at, xdraw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: alpha})
	xdraw.DrawMask(s.fb, dstRect, from, at, mask, image.Point{}, xdraw.Over)
}

// BlitMask 以 mask 的不透明度为形状铺上 colour。
// filter 为 true 时按 colour 对背景做乘法滤色，否则直接以 colour 覆盖。
func (s *Screen) BlitMask(mask image.Image, at image.Point, colour color.RGBA, filter bool) {
	mb := mask.Bounds()
	r := image.Rectangle{Min: at, Max: at.Add(mb.Size())}.Intersect(s.fb.Bounds())
	if r.Empty() {
		return
	}
	if !filter {
		fill := image.NewUniform(color.NRGBA{R: colour.R, G: colour.G, B: colour.B, A: colour.A})
		xdraw.DrawMask(s.fb, r, fill, image.Point{}, mask, mb.Min.Add(r.Min.Sub(at)), xdraw.Over)
		return
	}
	multiply(s.fb, r, mask, mb.Min.Add(r.Min.Sub(at)), colour)
}

// multiply 在 r 内按 mask 的不透明度与 colour.A 混合 dst 与 dst*colour。
func multiply(dst *image.RGBA, r image.Rectangle, mask image.Image, mp image.Point, colour color.RGBA) {
	tint := [3]uint32{uint32(colour.R), uint32(colour.G), uint32(colour.B)}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			_, _, _, ma := mask.At(mp.X+x-r.Min.X, mp.Y+y-r.Min.Y).RGBA()
			k := (ma >> 8) * uint32(colour.A) / 255
			if k == 0 {
				continue
			}
			i := dst.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				old := uint32(dst.Pix[i+c])
				tinted := old * tint[c] / 255
				dst.Pix[i+c] = uint8((old*(255-k) + tinted*k) / 255)
			}
		}
	}
}

// MarkDirty implements textsys.Compositor.
func (s *Screen) MarkDirty(layer textsys.Layer) { s.dirty[layer]++ }

// Dirty 返回图层自上次 ResetDirty 以来被标记的次数。
func (s *Screen) Dirty(layer textsys.Layer) int { return s.dirty[layer] }

// AnyDirty 表示是否有图层需要重绘。
func (s *Screen) AnyDirty() bool {
	for _, n := range s.dirty {
		if n > 0 {
			return true
		}
	}
	return false
}

// ResetDirty 清除所有重绘标记。
func (s *Screen) ResetDirty() { s.dirty = map[textsys.Layer]int{} }

// Image 返回帧缓冲本身，之后的绘制会反映到返回值上。
func (s *Screen) Image() *image.RGBA { return s.fb }

// Snapshot 返回当前画面的副本。
func (s *Screen) Snapshot() *image.RGBA {
	out := image.NewRGBA(s.fb.Bounds())
	draw.Draw(out, out.Bounds(), s.fb, s.fb.Bounds().Min, draw.Src)
	return out
}

// SavePNG 把当前画面写入 PNG 文件。
func (s *Screen) SavePNG(path string) error {
	if err := s.dc.SavePNG(path); err != nil {
		return fmt.Errorf("写入 PNG 文件失败: %w", err)
	}
	return nil
}

// PNGExporter 把多帧画面自上而下拼成一张 PNG。
type PNGExporter struct {
	// Gap 是相邻两帧之间的间隔像素。
	Gap int
}

// Export implements renderer.Exporter.
func (e PNGExporter) Export(frames []image.Image) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("缺少可导出的画面")
	}
	width, height := 0, e.Gap*(len(frames)-1)
	for _, f := range frames {
		b := f.Bounds()
		width = max(width, b.Dx())
		height += b.Dy()
	}
	dc := gg.NewContext(width, height)
	y := 0
	for _, f := range frames {
		dc.DrawImage(f, 0, y)
		y += f.Bounds().Dy() + e.Gap
	}
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}
