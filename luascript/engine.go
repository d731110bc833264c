// Package luascript 以沙箱化的 gopher-lua 运行剧本脚本，脚本通过全局表 text 调用 driver。
package luascript

import (
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/ByLCY/novella/driver"
	"github.com/ByLCY/novella/sjis"
	"github.com/ByLCY/novella/textsys"
)

// Engine 持有 Lua 状态。LState 不是并发安全的，Engine 只能在单个 goroutine 中使用。
type Engine struct {
	L *lua.LState
	d *driver.Driver

	// err 保存最近一次 Go 侧失败的原始错误，以便调用方用 errors.Is 判断。
	err error
}

// New 创建只开放 base、table、string、math 库的 Lua 状态，并注册 text 表。
func New(d *driver.Driver) *Engine {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	e := &Engine{L: L, d: d}
	e.register()
	return e
}

// Close 释放 Lua 状态。
func (e *Engine) Close() { e.L.Close() }

// DoString 执行一段脚本。
func (e *Engine) DoString(src string) error {
	e.err = nil
	if err := e.L.DoString(src); err != nil {
		if e.err != nil {
			return fmt.Errorf("执行 Lua 脚本失败: %w", e.err)
		}
		return fmt.Errorf("执行 Lua 脚本失败: %w", err)
	}
	return nil
}

// DoFile 读取并执行脚本文件，Shift_JIS 编码的文件会先转换为 UTF-8。
func (e *Engine) DoFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("无法打开脚本 %s: %w", path, err)
	}
	src, err := sjis.Decode(raw)
	if err != nil {
		return err
	}
	return e.DoString(string(src))
}

func (e *Engine) register() {
	mod := e.L.NewTable()
	fns := map[string]lua.LGFunction{
		"window":      e.window,
		"print":       e.print,
		"name":        e.name,
		"ruby":        e.ruby,
		"br":          e.br,
		"clear":       e.clear,
		"select":      e.selectLabels,
		"end_select":  e.endSelect,
		"mouse":       e.mouse,
		"click":       e.click,
		"pause":       e.pause,
		"frame":       e.frame,
		"attr":        e.attr,
		"window_attr": e.windowAttr,
		"revert_attr": e.revertAttr,
		"color":       e.color,
		"backlog":     e.backlog,
		"show":        e.show,
		"choices":     e.choices,
	}
	for name, fn := range fns {
		e.L.SetField(mod, name, e.L.NewFunction(fn))
	}
	e.L.SetGlobal("text", mod)
}

// check 把 Go 错误转换为 Lua 错误。
func (e *Engine) check(L *lua.LState, err error) {
	if err != nil {
		e.err = err
		L.RaiseError("%v", err)
	}
}

func (e *Engine) window(L *lua.LState) int {
	e.check(L, e.d.Window(L.CheckInt(1)))
	return 0
}

func (e *Engine) print(L *lua.LState) int {
	e.check(L, e.d.Text(L.CheckString(1)))
	return 0
}

func (e *Engine) name(L *lua.LState) int {
	e.check(L, e.d.Name(L.CheckString(1), L.OptString(2, "")))
	return 0
}

func (e *Engine) ruby(L *lua.LState) int {
	e.check(L, e.d.Ruby(L.CheckString(1), L.CheckString(2)))
	return 0
}

func (e *Engine) br(L *lua.LState) int {
	e.check(L, e.d.Break())
	return 0
}

func (e *Engine) clear(L *lua.LState) int {
	e.check(L, e.d.Clear())
	return 0
}

// selectLabels 接受若干字符串参数，返回选项序号组成的数组。
func (e *Engine) selectLabels(L *lua.LState) int {
	n := L.GetTop()
	if n == 0 {
		L.ArgError(1, "至少需要一个选项")
	}
	labels := make([]string, n)
	for i := range labels {
		labels[i] = L.CheckString(i + 1)
	}
	ids, err := e.d.Select(labels...)
	e.check(L, err)
	L.Push(intTable(L, ids))
	return 1
}

func (e *Engine) endSelect(L *lua.LState) int {
	e.check(L, e.d.EndSelect())
	return 0
}

func (e *Engine) mouse(L *lua.LState) int {
	e.d.Mouse(L.CheckInt(1), L.CheckInt(2))
	return 0
}

func (e *Engine) click(L *lua.LState) int {
	L.Push(lua.LBool(e.d.Click(L.CheckInt(1), L.CheckInt(2))))
	return 1
}

func (e *Engine) pause(L *lua.LState) int {
	e.check(L, e.d.Pause())
	return 0
}

func (e *Engine) frame(L *lua.LState) int {
	e.check(L, e.d.Frame())
	return 0
}

// checkAttr 读取从 first 开始的 r, g, b, a 与可选的 filter。
func checkAttr(L *lua.LState, first int) textsys.WindowAttr {
	return textsys.WindowAttr{
		R:      L.CheckInt(first),
		G:      L.CheckInt(first + 1),
		B:      L.CheckInt(first + 2),
		A:      L.CheckInt(first + 3),
		Filter: L.OptInt(first+4, 0) != 0,
	}
}

func (e *Engine) attr(L *lua.LState) int {
	e.d.Attr(checkAttr(L, 1))
	return 0
}

func (e *Engine) windowAttr(L *lua.LState) int {
	e.check(L, e.d.WindowAttr(L.CheckInt(1), checkAttr(L, 2)))
	return 0
}

func (e *Engine) revertAttr(L *lua.LState) int {
	e.check(L, e.d.RevertWindowAttr(L.CheckInt(1)))
	return 0
}

func (e *Engine) color(L *lua.LState) int {
	e.check(L, e.d.Colour(L.CheckString(1)))
	return 0
}

func (e *Engine) backlog(L *lua.LState) int {
	e.d.Backlog(flag(L, 1))
	return 0
}

func (e *Engine) show(L *lua.LState) int {
	e.d.Show(flag(L, 1))
	return 0
}

// flag 接受布尔值或数字，数字非零为真，与指令脚本的 0/1 写法一致。
func flag(L *lua.LState, n int) bool {
	if num, ok := L.Get(n).(lua.LNumber); ok {
		return num != 0
	}
	return L.ToBool(n)
}

func (e *Engine) choices(L *lua.LState) int {
	L.Push(intTable(L, e.d.Choices()))
	return 1
}

func intTable(L *lua.LState, vals []int) *lua.LTable {
	t := L.NewTable()
	for _, v := range vals {
		t.Append(lua.LNumber(v))
	}
	return t
}
