package canvasrenderer

import "math"

// pt 与 mm 的换算常数。画布以 mm 为单位，字体面以 pt 为单位。
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * MmToPt }

// ceil 把 mm 长度向上取整为像素；消除浮点误差带来的多余一像素。
func ceil(mm float64) int {
	return int(math.Ceil(mm - 1e-6))
}
