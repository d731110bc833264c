package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/novella/fonts"
	"github.com/ByLCY/novella/renderer"
	"github.com/ByLCY/novella/textsys"
)

// Renderer 基于 github.com/tdewolff/canvas：作为字体后端光栅化文字，
// 并把截取的画面导出为多页 PDF。
//
// 画布以毫米为单位，光栅化分辨率固定为每毫米一像素，因此 1mm 即 1 像素。
type Renderer struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
	meta   Meta

	mu    sync.Mutex
	faces map[int]*canvas.FontFace
}

var (
	_ renderer.Exporter   = (*Renderer)(nil)
	_ textsys.FontBackend = (*Renderer)(nil)
	_ textsys.FontHandle  = (*Face)(nil)
)

// Meta 是写入 PDF 的文档信息。
type Meta struct {
	Title    string
	Subject  string
	Keywords []string
	Author   string
	Creator  string
}

// Options configures the canvas renderer.
type Options struct {
	// Font 为空时使用内置字体。
	Font []byte
	// Style 形如 "bold"、"italic"，为空时为常规体。
	Style string
	Meta  Meta
}

// NewRenderer 使用内置默认字体创建渲染器。
func NewRenderer() (*Renderer, error) { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions 载入 opts.Font；载入失败时退回内置字体。
func NewRendererWithOptions(opts Options) (*Renderer, error) {
	r := &Renderer{
		style: parseFontStyle(opts.Style),
		meta:  opts.Meta,
		faces: map[int]*canvas.FontFace{},
	}
	family := canvas.NewFontFamily("novella")
	if len(opts.Font) > 0 {
		if err := family.LoadFont(opts.Font, 0, r.style); err == nil {
			r.family = family
			return r, nil
		}
	}
	fallback, err := fallbackFamily(r.style)
	if err != nil {
		return nil, err
	}
	r.family = fallback
	return r, nil
}

func fallbackFamily(style canvas.FontStyle) (*canvas.FontFamily, error) {
	data, err := fonts.Load(fonts.Default)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("novella-fallback")
	if err := family.LoadFont(data, 0, style); err != nil {
		return nil, fmt.Errorf("载入内置字体失败: %w", err)
	}
	return family, nil
}

// FontHandle implements textsys.FontBackend。字号以像素计，创建字体面前换算为 pt。
func (r *Renderer) FontHandle(size int) (textsys.FontHandle, error) {
	if size <= 0 {
		return nil, fmt.Errorf("字号必须为正数，实际为 %d", size)
	}
	return &Face{r: r, size: size}, nil
}

// fontFace 按像素字号与颜色返回字体面；白色字体面会被缓存用于度量。
func (r *Renderer) fontFace(size int, col color.Color) *canvas.FontFace {
	if col != nil {
		return r.family.Face(toPt(float64(size)), col, r.style, canvas.FontNormal)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if face, ok := r.faces[size]; ok {
		return face
	}
	face := r.family.Face(toPt(float64(size)), canvas.White, r.style, canvas.FontNormal)
	r.faces[size] = face
	return face
}

// Face 是 canvas 字体在某一像素字号下的句柄。
type Face struct {
	r    *Renderer
	size int
}

func (f *Face) Size() int { return f.size }

// Measure 返回 text 的宽度（向上取整）与字号高度。
func (f *Face) Measure(text string) (image.Point, error) {
	face := f.r.fontFace(f.size, nil)
	w := face.TextWidth(text)
	return image.Pt(ceil(w), f.height(face)), nil
}

func (f *Face) height(face *canvas.FontFace) int {
	m := face.Metrics()
	if h := ceil(m.Ascent + m.Descent); h > f.size {
		return h
	}
	return f.size
}

// Rasterize 在与文字等大的画布上绘制 text 并光栅化。
func (f *Face) Rasterize(text string, col color.Color) (image.Image, error) {
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
	face := f.r.fontFace(f.size, col)

	c := canvas.New(float64(size.X), float64(size.Y))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点，与后备缓冲一致
	ctx.DrawText(0, face.Metrics().Ascent, canvas.NewTextLine(face, text, canvas.Left))

	img := rasterizer.Draw(c, canvas.DPMM(1), canvas.DefaultColorSpace)
	if img == nil {
		return nil, fmt.Errorf("光栅化 %q 失败", text)
	}
	return img, nil
}

func (f *Face) Close() error { return nil }

// Export 把每一帧画面放到单独的一页，输出 PDF 字节。
func (r *Renderer) Export(frames []image.Image) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("缺少可导出的画面")
	}

	var buf bytes.Buffer
	first := frames[0].Bounds()
	writer := pdf.New(&buf, float64(first.Dx()), float64(first.Dy()), nil)
	r.applyMeta(writer)
	for i, frame := range frames {
		b := frame.Bounds()
		w, h := float64(b.Dx()), float64(b.Dy())
		if i > 0 {
			writer.NewPage(w, h)
		}
		c := canvas.New(w, h)
		ctx := canvas.NewContext(c)
		ctx.DrawImage(0, 0, frame, canvas.DPMM(1))
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF) {
	if writer == nil {
		return
	}
	keywords := strings.Join(r.meta.Keywords, ", ")
	writer.SetInfo(r.meta.Title, r.meta.Subject, keywords, r.meta.Author, r.meta.Creator)
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}
