package textsys

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
)

// KeyCursor 是暂停等待输入时显示在插入点处的指示器。
type KeyCursor struct {
	frames []image.Image
	speed  int
	tick   int
}

func newKeyCursor(cfg CursorConfig, images ImageLoader, fontSize int) (*KeyCursor, error) {
	speed := cfg.Speed
	if speed <= 0 {
		speed = 1
	}
	if cfg.Image == "" || images == nil {
		return &KeyCursor{frames: []image.Image{fallbackCursor(fontSize)}, speed: speed}, nil
	}

	strip, err := images.LoadImage(cfg.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: 加载按键光标 %s 失败: %v", ErrConfiguration, cfg.Image, err)
	}
	frames, err := splitFrames(strip, cfg.Size, cfg.Frames)
	if err != nil {
		return nil, err
	}
	return &KeyCursor{frames: frames, speed: speed}, nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// splitFrames 把横向排列的帧条切成单帧。
func splitFrames(strip image.Image, size image.Point, count int) ([]image.Image, error) {
	b := strip.Bounds()
	if count <= 1 || size.X <= 0 || size.Y <= 0 {
		return []image.Image{strip}, nil
	}
	sub, ok := strip.(subImager)
	if !ok {
		return nil, fmt.Errorf("%w: 光标图片不支持切帧", ErrConfiguration)
	}
	frames := make([]image.Image, 0, count)
	for i := 0; i < count; i++ {
		origin := b.Min.Add(image.Pt(i*size.X, 0))
		r := image.Rectangle{Min: origin, Max: origin.Add(size)}
		if !r.In(b) {
			return nil, fmt.Errorf("%w: 光标第 %d 帧超出图片范围 %v", ErrConfiguration, i, b)
		}
		frames = append(frames, sub.SubImage(r))
	}
	return frames, nil
}

// fallbackCursor 在没有配置光标图片时画一个朝下的三角形。
func fallbackCursor(fontSize int) image.Image {
	s := fontSize / 2
	if s < 4 {
		s = 4
	}
	fs := float64(s)
	dc := gg.NewContext(s, s)
	dc.SetRGBA255(255, 255, 255, 230)
	dc.MoveTo(0, fs*0.25)
	dc.LineTo(fs, fs*0.25)
	dc.LineTo(fs/2, fs*0.9)
	dc.ClosePath()
	dc.Fill()
	return dc.Image()
}

// Render 在窗口插入点处绘制当前帧；多帧时推进动画并请求下一帧重绘。
func (k *KeyCursor) Render(c Compositor, w *TextWindow) {
	frame := k.frames[(k.tick/k.speed)%len(k.frames)]
	k.tick++
	at := w.TextOrigin().Add(w.Cursor())
	b := frame.Bounds()
	c.Blit(frame, b, image.Rectangle{Min: at, Max: at.Add(b.Size())}, 255)
	if len(k.frames) > 1 {
		c.MarkDirty(LayerKeyCursor)
	}
}
