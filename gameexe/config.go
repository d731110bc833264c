package gameexe

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ByLCY/novella/sjis"
)

// ErrNotFound 表示配置中没有对应的键。
var ErrNotFound = errors.New("gameexe: 键不存在")

// Config 保存解析后的配置项；重复的键以最后一次出现为准。
type Config struct {
	entries map[string][]*Value
}

// Parse 从 r 读取配置。输入不是合法 UTF-8 时按 Shift_JIS 解码。
func Parse(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}
	return ParseBytes("", raw)
}

// ParseBytes 解析内存中的配置，name 仅用于错误信息中的位置。
func ParseBytes(name string, raw []byte) (*Config, error) {
	text, err := sjis.Decode(raw)
	if err != nil {
		return nil, err
	}
	file, err := parseFile(name, string(text))
	if err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg := &Config{entries: make(map[string][]*Value, len(file.Entries))}
	for _, e := range file.Entries {
		cfg.entries[strings.Join(e.Key, ".")] = e.Values
	}
	return cfg, nil
}

// Load 读取并解析路径为 path 的配置文件。
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开配置文件 %s: %w", path, err)
	}
	return ParseBytes(path, raw)
}

// Key 把键的各段连接起来，整数段按三位补零，例如 Key("WINDOW", 0, "POS") 为 "WINDOW.000.POS"。
func Key(parts ...any) string {
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case int:
			segs = append(segs, fmt.Sprintf("%03d", v))
		default:
			segs = append(segs, fmt.Sprint(v))
		}
	}
	return strings.Join(segs, ".")
}

// Has 表示键是否存在。
func (c *Config) Has(parts ...any) bool {
	_, ok := c.entries[Key(parts...)]
	return ok
}

// Keys 按字典序返回所有键。
func (c *Config) Keys() []string {
	out := make([]string, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c *Config) lookup(parts ...any) ([]*Value, string, error) {
	key := Key(parts...)
	vals, ok := c.entries[key]
	if !ok {
		return nil, key, fmt.Errorf("%w: #%s", ErrNotFound, key)
	}
	return vals, key, nil
}

// Ints 返回键的整数列表。
func (c *Config) Ints(parts ...any) ([]int, error) {
	vals, key, err := c.lookup(parts...)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(vals))
	for i, v := range vals {
		if v.Int == nil {
			return nil, fmt.Errorf("#%s 的第 %d 个值 %q 不是整数", key, i+1, v.String())
		}
		out = append(out, *v.Int)
	}
	return out, nil
}

// Int 返回键的第一个整数值。
func (c *Config) Int(parts ...any) (int, error) {
	vals, err := c.Ints(parts...)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("#%s 没有值", Key(parts...))
	}
	return vals[0], nil
}

// IntOr 在键不存在时返回 def；存在但格式错误时仍返回错误。
func (c *Config) IntOr(def int, parts ...any) (int, error) {
	v, err := c.Int(parts...)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	return v, err
}

// IntsOr 在键不存在时返回 def。
func (c *Config) IntsOr(def []int, parts ...any) ([]int, error) {
	v, err := c.Ints(parts...)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	return v, err
}

// String 返回键的第一个值的文本形式。
func (c *Config) String(parts ...any) (string, error) {
	vals, key, err := c.lookup(parts...)
	if err != nil {
		return "", err
	}
	if len(vals) == 0 {
		return "", fmt.Errorf("#%s 没有值", key)
	}
	return vals[0].String(), nil
}

// StringOr 在键不存在时返回 def。
func (c *Config) StringOr(def string, parts ...any) (string, error) {
	v, err := c.String(parts...)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	return v, err
}

// ScreenSize 按 SCREENSIZE_MOD 返回屏幕尺寸，缺省为 640x480。
func (c *Config) ScreenSize() (image.Point, error) {
	mode, err := c.IntOr(0, "SCREENSIZE_MOD")
	if err != nil {
		return image.Point{}, err
	}
	switch mode {
	case 0:
		return image.Pt(640, 480), nil
	case 1:
		return image.Pt(800, 600), nil
	default:
		return image.Point{}, fmt.Errorf("不支持的 SCREENSIZE_MOD=%d", mode)
	}
}

// FontFile 返回 FONT_FILE 指定的字体文件名，未指定时为空串。
func (c *Config) FontFile() string {
	name, err := c.StringOr("", "FONT_FILE")
	if err != nil {
		return ""
	}
	return name
}
