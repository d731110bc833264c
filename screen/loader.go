package screen

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/ByLCY/novella/textsys"
)

var _ textsys.ImageLoader = DirLoader{}

// DirLoader 从目录中按名字加载图片，名字不带扩展名时依次尝试 .png、.jpg、.gif。
type DirLoader struct {
	Dir string
}

var imageExts = []string{"", ".png", ".jpg", ".jpeg", ".gif"}

// LoadImage implements textsys.ImageLoader.
func (l DirLoader) LoadImage(name string) (image.Image, error) {
	if name == "" {
		return nil, fmt.Errorf("图片名为空")
	}
	base := name
	if !filepath.IsAbs(base) {
		base = filepath.Join(l.Dir, base)
	}
	for _, ext := range imageExts {
		path := base + ext
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		img, err := gg.LoadImage(path)
		if err != nil {
			return nil, fmt.Errorf("解码图片 %s 失败: %w", path, err)
		}
		return img, nil
	}
	return nil, fmt.Errorf("找不到图片 %s（目录 %s）", name, l.Dir)
}
