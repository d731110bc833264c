// Package scenario 解析并执行逐行的文本脚本，例如：
//
//	window 0
//	name "智子" "「おはよう」"
//	ruby "漢字" "かんじ"
//	pause
package scenario

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?\d+`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
	})

	scriptParser = participle.MustBuild[Script](
		participle.Lexer(scriptLexer),
		participle.Elide("Whitespace", "LineComment", "HashComment"),
	)
)

// Script is the root AST node of a scenario file.
type Script struct {
	Commands []*Command `parser:"Newline* ( @@ Newline* )*"`
}

// Command 是一行指令：名字加若干参数。
type Command struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"@Ident"`
	Args []*Arg         `parser:"@@*"`
}

// Arg 是指令参数。
type Arg struct {
	Str    *StringLiteral `parser:"  @String"`
	Number *int           `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Word   *string        `parser:"| @Ident"`
}

// String 返回参数的文本形式。
func (a *Arg) String() string {
	switch {
	case a == nil:
		return ""
	case a.Str != nil:
		return string(*a.Str)
	case a.Number != nil:
		return strconv.Itoa(*a.Number)
	case a.Color != nil:
		return *a.Color
	case a.Word != nil:
		return *a.Word
	default:
		return ""
	}
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a scenario from an io.Reader.
func Parse(name string, r io.Reader) (*Script, error) {
	return scriptParser.Parse(name, r)
}

// ParseString parses a scenario from a string.
func ParseString(input string) (*Script, error) {
	return scriptParser.ParseString("", input)
}
