// Package sjis 把游戏资源中常见的 Shift_JIS 文本转换为 UTF-8。
package sjis

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// Decode 返回 data 的 UTF-8 形式：已是合法 UTF-8 时原样返回，否则按 Shift_JIS 解码。
func Decode(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("Shift_JIS 解码失败: %w", err)
	}
	return out, nil
}

// DecodeString 是 Decode 的字符串版本。
func DecodeString(s string) (string, error) {
	out, err := Decode([]byte(s))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode 把 UTF-8 文本编码为 Shift_JIS，主要用于生成测试数据。
func Encode(s string) ([]byte, error) {
	out, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("Shift_JIS 编码失败: %w", err)
	}
	return out, nil
}
