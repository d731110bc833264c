package scenario

import (
	"fmt"
	"log"

	"github.com/ByLCY/novella/binding"
	"github.com/ByLCY/novella/driver"
	"github.com/ByLCY/novella/textsys"
)

// Runner 把脚本指令交给 driver 执行。
type Runner struct {
	d      *driver.Driver
	data   []byte
	logger *log.Logger
}

// NewRunner 创建执行器；data 为可选的 JSON 数据，用于 ${path} 插值。
func NewRunner(d *driver.Driver, data []byte, logger *log.Logger) *Runner {
	return &Runner{d: d, data: data, logger: logger}
}

type handler struct {
	minArgs, maxArgs int // maxArgs < 0 表示不限
	numeric          bool
	run              func(r *Runner, a args) error
}

var handlers = map[string]handler{
	"window": {1, 1, true, func(r *Runner, a args) error {
		return r.d.Window(a.int(0))
	}},
	"text": {1, 1, false, func(r *Runner, a args) error {
		return r.d.Text(r.interpolate(a.str(0)))
	}},
	"name": {2, 2, false, func(r *Runner, a args) error {
		return r.d.Name(r.interpolate(a.str(0)), r.interpolate(a.str(1)))
	}},
	"ruby": {2, 2, false, func(r *Runner, a args) error {
		return r.d.Ruby(r.interpolate(a.str(0)), r.interpolate(a.str(1)))
	}},
	"br": {0, 0, false, func(r *Runner, _ args) error {
		return r.d.Break()
	}},
	"clear": {0, 0, false, func(r *Runner, _ args) error {
		return r.d.Clear()
	}},
	"select": {1, -1, false, func(r *Runner, a args) error {
		labels := make([]string, len(a))
		for i := range a {
			labels[i] = r.interpolate(a.str(i))
		}
		ids, err := r.d.Select(labels...)
		r.logf("选项 %v -> %v", labels, ids)
		return err
	}},
	"end-select": {0, 0, false, func(r *Runner, _ args) error {
		return r.d.EndSelect()
	}},
	"mouse": {2, 2, true, func(r *Runner, a args) error {
		r.d.Mouse(a.int(0), a.int(1))
		return nil
	}},
	"click": {2, 2, true, func(r *Runner, a args) error {
		if !r.d.Click(a.int(0), a.int(1)) {
			r.logf("点击 (%d,%d) 未命中任何选项", a.int(0), a.int(1))
		}
		return nil
	}},
	"pause": {0, 0, false, func(r *Runner, _ args) error {
		return r.d.Pause()
	}},
	"frame": {0, 0, false, func(r *Runner, _ args) error {
		return r.d.Frame()
	}},
	"attr": {4, 5, true, func(r *Runner, a args) error {
		r.d.Attr(textsys.AttrFromInts(a.ints()))
		return nil
	}},
	"window-attr": {5, 6, true, func(r *Runner, a args) error {
		v := a.ints()
		return r.d.WindowAttr(v[0], textsys.AttrFromInts(v[1:]))
	}},
	"revert-attr": {1, 1, true, func(r *Runner, a args) error {
		return r.d.RevertWindowAttr(a.int(0))
	}},
	"color": {1, 1, false, func(r *Runner, a args) error {
		return r.d.Colour(a.str(0))
	}},
	"backlog": {1, 1, true, func(r *Runner, a args) error {
		r.d.Backlog(a.int(0) != 0)
		return nil
	}},
	"show": {1, 1, true, func(r *Runner, a args) error {
		r.d.Show(a.int(0) != 0)
		return nil
	}},
}

// Run 依次执行 script 中的指令，遇到第一个错误即停止。
func (r *Runner) Run(script *Script) error {
	if script == nil {
		return fmt.Errorf("脚本为空")
	}
	for _, cmd := range script.Commands {
		if err := r.exec(cmd); err != nil {
			return fmt.Errorf("%s: %s: %w", cmd.Pos, cmd.Name, err)
		}
	}
	return nil
}

func (r *Runner) exec(cmd *Command) error {
	h, ok := handlers[cmd.Name]
	if !ok {
		return fmt.Errorf("未知指令")
	}
	n := len(cmd.Args)
	if n < h.minArgs || (h.maxArgs >= 0 && n > h.maxArgs) {
		return fmt.Errorf("参数个数 %d 不合法", n)
	}
	if h.numeric {
		for i, arg := range cmd.Args {
			if arg.Number == nil {
				return fmt.Errorf("第 %d 个参数 %q 应为整数", i+1, arg.String())
			}
		}
	}
	return h.run(r, args(cmd.Args))
}

func (r *Runner) interpolate(s string) string { return binding.Interpolate(s, r.data) }

func (r *Runner) logf(format string, v ...any) {
	if r.logger != nil {
		r.logger.Printf(format, v...)
	}
}

type args []*Arg

func (a args) int(i int) int { return *a[i].Number }

func (a args) ints() []int {
	out := make([]int, len(a))
	for i := range a {
		out[i] = a.int(i)
	}
	return out
}

func (a args) str(i int) string { return a[i].String() }
