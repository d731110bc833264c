package textsys

import (
	"encoding/json"
	"os"
)

// WindowState 是窗口排版状态的快照，用于调试输出。
type WindowState struct {
	ID          int              `json:"id"`
	CursorX     int              `json:"cursorX"`
	CursorY     int              `json:"cursorY"`
	LineNumber  int              `json:"lineNumber"`
	Full        bool             `json:"full"`
	Indentation int              `json:"indentation"`
	RubyBegin   *int             `json:"rubyBegin,omitempty"`
	Visible     bool             `json:"visible"`
	Attr        WindowAttr       `json:"attr"`
	Overridden  bool             `json:"attrOverridden"`
	Selections  []SelectionState `json:"selections,omitempty"`
}

// SelectionState 是选项的快照。
type SelectionState struct {
	ID          int  `json:"id"`
	X           int  `json:"x"`
	Y           int  `json:"y"`
	Highlighted bool `json:"highlighted"`
}

// State 返回窗口当前状态的快照。
func (w *TextWindow) State() WindowState {
	st := WindowState{
		ID:          w.id,
		CursorX:     w.cursor.X,
		CursorY:     w.cursor.Y,
		LineNumber:  w.lineNumber,
		Full:        w.IsFull(),
		Indentation: w.indentation,
		Visible:     w.visible,
		Attr:        w.attr,
		Overridden:  w.attrOverridden,
	}
	if w.ruby.open {
		begin := w.ruby.beginX
		st.RubyBegin = &begin
	}
	for _, s := range w.selections {
		st.Selections = append(st.Selections, SelectionState{
			ID:          s.id,
			X:           s.pos.X,
			Y:           s.pos.Y,
			Highlighted: s.hover,
		})
	}
	return st
}

// Snapshot 按编号顺序返回所有窗口的状态。
func (ts *TextSystem) Snapshot() []WindowState {
	out := make([]WindowState, 0, len(ts.order))
	for _, w := range ts.Windows() {
		out = append(out, w.State())
	}
	return out
}

// WriteDebugJSON 将窗口状态输出为 JSON，便于调试或可视化。
func WriteDebugJSON(states []WindowState, path string) error {
	data, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
