package textsys

import (
	"strings"

	"github.com/rivo/uniseg"
)

// CharFunc 接收当前字素与下一个字素，返回是否接受。
type CharFunc func(current, next string) (bool, error)

// Graphemes 把 text 拆成字素簇序列。
func Graphemes(text string) []string {
	var out []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		out = append(out, gr.Str())
	}
	return out
}

// PrintText 按字素逐个把 text 送入 fn，最后一个字素的“下一个”为 nextChar。
// fn 拒绝某个字素时停止，返回包括该字素在内的剩余文本。
func PrintText(fn CharFunc, text, nextChar string) (string, error) {
	chars := Graphemes(text)
	for i, cur := range chars {
		next := nextChar
		if i+1 < len(chars) {
			next = chars[i+1]
		}
		ok, err := fn(cur, next)
		if err != nil {
			return strings.Join(chars[i:], ""), err
		}
		if !ok {
			return strings.Join(chars[i:], ""), nil
		}
	}
	return "", nil
}
