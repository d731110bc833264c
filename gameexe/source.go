package gameexe

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ByLCY/novella/textsys"
)

var _ textsys.ConfigSource = (*Config)(nil)

// WindowConfig 读取 #WINDOW.nnn.* 并组装窗口配置。
// MOJI_SIZE 与 MOJI_CNT 必须存在，其余键缺省为零值。
func (c *Config) WindowConfig(id int) (textsys.WindowConfig, error) {
	cfg, err := c.windowConfig(id)
	if err != nil {
		return textsys.WindowConfig{}, fmt.Errorf("%w: 窗口 %d: %w", textsys.ErrConfiguration, id, err)
	}
	return cfg, nil
}

func (c *Config) windowConfig(id int) (textsys.WindowConfig, error) {
	var cfg textsys.WindowConfig
	var err error

	if cfg.FontSize, err = c.Int("WINDOW", id, "MOJI_SIZE"); err != nil {
		return cfg, err
	}
	cnt, err := c.Ints("WINDOW", id, "MOJI_CNT")
	if err != nil {
		return cfg, err
	}
	if len(cnt) < 2 {
		return cfg, fmt.Errorf("MOJI_CNT 需要列数与行数，实际为 %v", cnt)
	}
	cfg.Columns, cfg.Rows = cnt[0], cnt[1]

	rep, err := c.IntsOr(nil, "WINDOW", id, "MOJI_REP")
	if err != nil {
		return cfg, err
	}
	cfg.SpacingX, cfg.SpacingY = at(rep, 0), at(rep, 1)

	if cfg.RubySize, err = c.IntOr(0, "WINDOW", id, "LUBY_SIZE"); err != nil {
		return cfg, err
	}

	pad, err := c.IntsOr(nil, "WINDOW", id, "MOJI_POS")
	if err != nil {
		return cfg, err
	}
	cfg.Padding = textsys.Padding{Top: at(pad, 0), Bottom: at(pad, 1), Left: at(pad, 2), Right: at(pad, 3)}

	pos, err := c.IntsOr(nil, "WINDOW", id, "POS")
	if err != nil {
		return cfg, err
	}
	cfg.Origin = textsys.Origin(at(pos, 0))
	if cfg.Origin < textsys.OriginTopLeft || cfg.Origin > textsys.OriginBottomRight {
		return cfg, fmt.Errorf("POS 的参照角 %d 无效", cfg.Origin)
	}
	cfg.Offset = image.Pt(at(pos, 1), at(pos, 2))

	if cfg.NameMode, err = c.IntOr(0, "WINDOW", id, "NAME_MOD"); err != nil {
		return cfg, err
	}

	attrMod, err := c.IntOr(0, "WINDOW", id, "ATTR_MOD")
	if err != nil {
		return cfg, err
	}
	if attrMod != 0 {
		vals, err := c.Ints("WINDOW", id, "ATTR")
		if err != nil {
			return cfg, err
		}
		attr := textsys.AttrFromInts(vals)
		cfg.AttrOverride = &attr
	}

	if cfg.TextColour, err = c.textColour(); err != nil {
		return cfg, err
	}

	if c.Has("WINDOW", id, "WAKU_SETNO") {
		set, err := c.Int("WINDOW", id, "WAKU_SETNO")
		if err != nil {
			return cfg, err
		}
		if cfg.Waku.Main, err = c.StringOr("", "WAKU", set, 0, "NAME"); err != nil {
			return cfg, err
		}
		if cfg.Waku.Backing, err = c.StringOr("", "WAKU", set, 0, "BACK"); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// textColour 取 COLOR_TABLE.000 作为默认文字颜色，缺省为白色。
func (c *Config) textColour() (color.RGBA, error) {
	rgb, err := c.IntsOr([]int{255, 255, 255}, "COLOR_TABLE", 0)
	if err != nil {
		return color.RGBA{}, err
	}
	attr := textsys.WindowAttr{R: at(rgb, 0), G: at(rgb, 1), B: at(rgb, 2), A: 255}
	return attr.Colour(), nil
}

// DefaultWindowAttr 返回 #WINDOW_ATTR；缺失或格式错误时为全零。
func (c *Config) DefaultWindowAttr() textsys.WindowAttr {
	vals, err := c.Ints("WINDOW_ATTR")
	if err != nil {
		return textsys.WindowAttr{}
	}
	return textsys.AttrFromInts(vals)
}

// KeyCursorConfig 读取 #CURSOR.000.*。
func (c *Config) KeyCursorConfig() textsys.CursorConfig {
	var cur textsys.CursorConfig
	cur.Image, _ = c.StringOr("", "CURSOR", 0, "NAME")
	size, _ := c.IntsOr(nil, "CURSOR", 0, "SIZE")
	cur.Size = image.Pt(at(size, 0), at(size, 1))
	cur.Frames, _ = c.IntOr(1, "CURSOR", 0, "CONT")
	cur.Speed, _ = c.IntOr(1, "CURSOR", 0, "SPEED")
	return cur
}

func at(vals []int, i int) int {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}
