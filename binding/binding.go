package binding

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	exprPattern  = regexp.MustCompile(`\$\{([^}]+)\}`)
	indexPattern = regexp.MustCompile(`\[(\d+)\]`)
)

// Interpolate 将文本中的 ${path.to.value} 替换为 JSON 数据 data 中的值。
// 若 data 为空或路径不存在，则返回原占位符。
func Interpolate(text string, data []byte) string {
	if len(data) == 0 {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		if val, ok := Lookup(data, groups[1]); ok {
			return val
		}
		return match
	})
}

// Lookup 按 path 取值，path 支持 a.b[0].c 形式的数组下标。
func Lookup(data []byte, path string) (string, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", false
	}
	res := gjson.GetBytes(data, toGJSONPath(path))
	if !res.Exists() {
		return "", false
	}
	return res.String(), true
}

// Valid 报告 data 是否为合法 JSON。
func Valid(data []byte) bool { return gjson.ValidBytes(data) }

// toGJSONPath 把 a.b[0] 转为 gjson 的 a.b.0。
func toGJSONPath(path string) string {
	return strings.TrimPrefix(indexPattern.ReplaceAllString(path, ".$1"), ".")
}
