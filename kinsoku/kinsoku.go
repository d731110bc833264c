// Package kinsoku 实现日文排版中的禁则判定（行首禁止字符）。
package kinsoku

import (
	"unicode/utf8"

	"golang.org/x/text/width"
)

// noLineStart 收录不得出现在行首的字符（JIS X 4051 行頭禁則），
// 只记录全角形式；半角形式在查询前通过 width 折叠为全角。
var noLineStart = buildSet(
	// 闭括号与闭引号
	'）', '〕', '］', '｝', '〉', '》', '」', '』', '】', '〙', '〗', '〟', '’', '”', '｠', '»',
	// 连字符、波浪号
	'‐', '゠', '–', '〜', '～',
	// 句读点与中点
	'、', '。', '，', '．', '・', '：', '；', '／',
	'？', '！', '‼', '⁇', '⁈', '⁉',
	// 拗促音小写假名
	'ぁ', 'ぃ', 'ぅ', 'ぇ', 'ぉ', 'っ', 'ゃ', 'ゅ', 'ょ', 'ゎ', 'ゕ', 'ゖ',
	'ァ', 'ィ', 'ゥ', 'ェ', 'ォ', 'ッ', 'ャ', 'ュ', 'ョ', 'ヮ', 'ヵ', 'ヶ',
	'ㇰ', 'ㇱ', 'ㇲ', 'ㇳ', 'ㇴ', 'ㇵ', 'ㇶ', 'ㇷ', 'ㇸ', 'ㇹ', 'ㇺ', 'ㇻ', 'ㇼ', 'ㇽ', 'ㇾ', 'ㇿ',
	// 长音与叠字符号
	'ー', 'ヽ', 'ヾ', 'ゝ', 'ゞ', '々', '〻',
	// ASCII 闭合符号
	')', ']', '}', ',', '.', '?', '!', ':', ';',
)

// openingQuotes 是触发“引号缩进”的开引号集合，集合是封闭的。
var openingQuotes = buildSet('「', '『', '（')

func buildSet(runes ...rune) map[rune]struct{} {
	set := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		set[r] = struct{}{}
	}
	return set
}

// IsNoLineStart 判断 r 是否禁止出现在行首。
func IsNoLineStart(r rune) bool {
	if _, ok := noLineStart[r]; ok {
		return true
	}
	// 半角片假名、半角句读点等折叠为全角后再查一次
	if wide := width.LookupRune(r).Wide(); wide != 0 && wide != r {
		_, ok := noLineStart[wide]
		return ok
	}
	return false
}

// IsOpeningQuote 判断 r 是否为名字后需要预留缩进的开引号。
func IsOpeningQuote(r rune) bool {
	_, ok := openingQuotes[r]
	return ok
}

// First 返回 s 的第一个码位；空串或非法编码返回 0。
func First(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return 0
	}
	return r
}
