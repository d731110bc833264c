// Package gameexe 解析 Gameexe.ini 风格的游戏配置（形如 #WINDOW.000.MOJI_SIZE=25）。
package gameexe

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	iniLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "String", Pattern: `"[^"\n]*"`},
		{Name: "Int", Pattern: `[-+]?\d+`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Symbol", Pattern: `[#.=,]`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(iniLexer),
		participle.Elide("Whitespace", "LineComment"),
	)
)

// File 是整个配置文件的语法树。
type File struct {
	Entries []*Entry `parser:"Newline* ( @@ Newline* )*"`
}

// Entry 是一行配置：以 # 开头的点分键，可选的 = 与逗号分隔的值。
type Entry struct {
	Pos    lexer.Position `parser:""`
	Key    []string       `parser:"'#' @(Ident | Int) ( '.' @(Ident | Int) )*"`
	Values []*Value       `parser:"( '=' ( @@ ( ',' @@ )* )? )?"`
}

// Value 是单个配置值。
type Value struct {
	Str  *QuotedString `parser:"  @String"`
	Int  *int          `parser:"| @Int"`
	Word *string       `parser:"| @Ident"`
}

// QuotedString 去掉两侧引号；Gameexe 的字符串不含转义。
type QuotedString string

// Capture implements participle.Capture.
func (s *QuotedString) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("字符串缺少取值")
	}
	*s = QuotedString(strings.Trim(values[0], `"`))
	return nil
}

// String 返回值的文本形式，整数按十进制输出。
func (v *Value) String() string {
	switch {
	case v == nil:
		return ""
	case v.Str != nil:
		return string(*v.Str)
	case v.Int != nil:
		return fmt.Sprint(*v.Int)
	case v.Word != nil:
		return *v.Word
	default:
		return ""
	}
}

// parseFile 解析已经转换为 UTF-8 的配置文本。
func parseFile(name, input string) (*File, error) {
	if !strings.HasSuffix(input, "\n") {
		input += "\n"
	}
	return fileParser.ParseString(name, input)
}
