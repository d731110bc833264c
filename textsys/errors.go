package textsys

import "errors"

// 以下错误均视为致命错误，由驱动方决定中止会话还是跳过当前指令。
var (
	// ErrConfiguration 表示字体或窗口几何配置无法解析。
	ErrConfiguration = errors.New("textsys: 配置错误")
	// ErrUnsupportedMode 表示脚本请求了不支持的名字显示模式。
	ErrUnsupportedMode = errors.New("textsys: 不支持的模式")
	// ErrRubyAcrossLineBreak 表示注音区间跨越了换行。
	ErrRubyAcrossLineBreak = errors.New("textsys: 注音跨行")
	// ErrGlyphRender 表示后端无法光栅化文本。
	ErrGlyphRender = errors.New("textsys: 字形渲染失败")
	// ErrNameMarker 表示【】名字标记未经处理就进入了逐字显示。
	ErrNameMarker = errors.New("textsys: 名字标记应在逐字显示前处理")
)
