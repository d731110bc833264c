package renderer

import "image"

// Exporter 将截取的画面输出为最终文件，例如多页 PDF 或 PNG 长图。
// Export 返回生成的二进制数据以及可能的错误。
type Exporter interface {
	Export(frames []image.Image) ([]byte, error)
}
