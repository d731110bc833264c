package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Default 是未指定字体时使用的内置字体名。
const Default = "gomono"

var builtin = map[string][]byte{
	"goregular": goregular.TTF,
	"gomono":    gomono.TTF,
	"gobold":    gobold.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "builtin:gomono" 或直接 "gomono"。
func Load(name string) ([]byte, error) {
	name = strings.TrimPrefix(strings.TrimPrefix(name, "builtin:"), "built-in:")
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s", name)
	}
	return data, nil
}

// Read 按 src 读取字体：空串取默认内置字体，builtin: 前缀取内置字体，
// 其余按路径读取，相对路径以 baseDir 为根。
func Read(src, baseDir string) ([]byte, error) {
	switch {
	case src == "":
		return Load(Default)
	case strings.HasPrefix(src, "builtin:"), strings.HasPrefix(src, "built-in:"):
		return Load(src)
	}
	path := src
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}
