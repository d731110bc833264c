package textsys

import (
	"image"
)

// SelectionElement 是选择模式下的一个选项，持有普通与高亮两份位图。
type SelectionElement struct {
	id          int
	pos         image.Point
	normal      image.Image
	highlighted image.Image
	callback    func(id int)
	hover       bool
}

func newSelectionElement(normal, highlighted image.Image, callback func(int), id int, pos image.Point) *SelectionElement {
	return &SelectionElement{
		id:          id,
		pos:         pos,
		normal:      normal,
		highlighted: highlighted,
		callback:    callback,
	}
}

// ID 返回会话内唯一的选项序号。
func (e *SelectionElement) ID() int { return e.id }

// Position 返回选项左上角的屏幕坐标。
func (e *SelectionElement) Position() image.Point { return e.pos }

// Bounds 返回选项在屏幕上的命中区域。
func (e *SelectionElement) Bounds() image.Rectangle {
	return image.Rectangle{Min: e.pos, Max: e.pos.Add(e.normal.Bounds().Size())}
}

// Highlighted 表示鼠标当前是否悬停在选项上。
func (e *SelectionElement) Highlighted() bool { return e.hover }

// SetMousePosition 更新悬停状态。
func (e *SelectionElement) SetMousePosition(p image.Point) {
	e.hover = p.In(e.Bounds())
}

// HandleMouseClick 在鼠标于选项范围内松开时触发回调并返回 true。
func (e *SelectionElement) HandleMouseClick(p image.Point, pressed bool) bool {
	if pressed || !p.In(e.Bounds()) {
		return false
	}
	if e.callback != nil {
		e.callback(e.id)
	}
	return true
}

// Render 把当前状态对应的位图绘制到屏幕。
func (e *SelectionElement) Render(c Compositor) {
	img := e.normal
	if e.hover {
		img = e.highlighted
	}
	c.Blit(img, img.Bounds(), e.Bounds(), 255)
}
