package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/novella/binding"
	"github.com/ByLCY/novella/driver"
	"github.com/ByLCY/novella/fonts"
	"github.com/ByLCY/novella/gameexe"
	"github.com/ByLCY/novella/luascript"
	"github.com/ByLCY/novella/renderer"
	canvasrenderer "github.com/ByLCY/novella/renderer/canvas"
	cellrenderer "github.com/ByLCY/novella/renderer/cell"
	ttfrenderer "github.com/ByLCY/novella/renderer/truetype"
	"github.com/ByLCY/novella/scenario"
	"github.com/ByLCY/novella/screen"
	"github.com/ByLCY/novella/textsys"
)

// config 汇总命令行参数。
type config struct {
	configPath string
	input      string
	output     string
	debug      string
	data       []byte
	backend    string
	font       string
	verbose    bool
}

func main() {
	configPath := flag.String("config", "examples/Gameexe.ini", "Gameexe.ini 配置文件路径")
	input := flag.String("in", "examples/demo.scn", "剧本文件路径（.lua 或指令脚本）")
	output := flag.String("out", "output/demo.pdf", "输出路径，扩展名为 .pdf 或 .png")
	debug := flag.String("debug", "", "窗口状态调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到剧本的 JSON 数据")
	backend := flag.String("backend", "truetype", "字体后端：truetype、canvas 或 cell")
	font := flag.String("font", "", "字体文件；为空时使用配置中的 FONT_FILE，再退回内置字体")
	verbose := flag.Bool("v", false, "输出排版日志")
	flag.Parse()

	cfg := config{
		configPath: *configPath,
		input:      *input,
		output:     *output,
		debug:      *debug,
		backend:    *backend,
		font:       *font,
		verbose:    *verbose,
	}
	if *dataJSON != "" {
		if !binding.Valid([]byte(*dataJSON)) {
			log.Fatalf("解析 data JSON 失败: %q 不是合法的 JSON", *dataJSON)
		}
		cfg.data = []byte(*dataJSON)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("生成画面失败: %v", err)
	}
	fmt.Printf("已生成：%s\n", cfg.output)
}

// run 串联配置、文本系统、剧本执行与导出。
func run(cfg config) (err error) {
	var logger *log.Logger
	if cfg.verbose {
		logger = log.New(os.Stderr, "novella: ", log.LstdFlags)
	}

	gexe, err := gameexe.Load(cfg.configPath)
	if err != nil {
		return err
	}
	size, err := gexe.ScreenSize()
	if err != nil {
		return fmt.Errorf("读取屏幕尺寸失败: %w", err)
	}
	baseDir := filepath.Dir(cfg.configPath)

	fontsBackend, err := newBackend(cfg, gexe, baseDir)
	if err != nil {
		return err
	}
	canvasR, _ := fontsBackend.(*canvasrenderer.Renderer)

	scr := screen.New(size, nil)
	sys, err := textsys.New(textsys.Options{
		Fonts:  fontsBackend,
		Config: gexe,
		Screen: scr,
		Images: screen.DirLoader{Dir: baseDir},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer closeInto(&err, sys, "释放字体失败")

	d, err := driver.New(driver.Options{System: sys, Screen: scr, Logger: logger})
	if err != nil {
		return err
	}
	if err := runScript(cfg, d, logger); err != nil {
		return err
	}
	if len(d.Frames()) == 0 {
		if err := d.Frame(); err != nil {
			return err
		}
	}

	if cfg.debug != "" {
		if err := writeDebug(sys, cfg.debug); err != nil {
			return err
		}
	}
	return export(cfg.output, d, canvasR)
}

// newBackend 按 -backend 创建字体后端；canvas 后端同时用于 PDF 导出。
func newBackend(cfg config, gexe *gameexe.Config, baseDir string) (textsys.FontBackend, error) {
	src := cfg.font
	fontDir := ""
	if src == "" && gexe.FontFile() != "" {
		src, fontDir = gexe.FontFile(), baseDir
	}
	switch cfg.backend {
	case "cell":
		return cellrenderer.Backend{}, nil
	case "canvas":
		data, err := fonts.Read(src, fontDir)
		if err != nil {
			return nil, err
		}
		return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
			Font: data,
			Meta: canvasrenderer.Meta{Title: filepath.Base(cfg.input), Creator: "novella"},
		})
	case "truetype", "":
		data, err := fonts.Read(src, fontDir)
		if err != nil {
			return nil, err
		}
		return ttfrenderer.NewBackend(data)
	default:
		return nil, fmt.Errorf("未知的字体后端 %q", cfg.backend)
	}
}

// closeInto 关闭 c；*err 为空时用关闭错误填充它。
func closeInto(err *error, c io.Closer, msg string) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("%s: %w", msg, cerr)
	}
}

func runScript(cfg config, d *driver.Driver, logger *log.Logger) error {
	if strings.EqualFold(filepath.Ext(cfg.input), ".lua") {
		engine := luascript.New(d)
		defer engine.Close()
		return engine.DoFile(cfg.input)
	}

	file, err := os.Open(cfg.input)
	if err != nil {
		return fmt.Errorf("无法打开剧本 %s: %w", cfg.input, err)
	}
	defer file.Close()

	script, err := scenario.Parse(cfg.input, file)
	if err != nil {
		return fmt.Errorf("解析剧本失败: %w", err)
	}
	return scenario.NewRunner(d, cfg.data, logger).Run(script)
}

// export 按输出扩展名选择导出方式：.png 拼成长图，其余输出 PDF。
func export(outputPath string, d *driver.Driver, canvasR *canvasrenderer.Renderer) error {
	var exp renderer.Exporter
	if strings.EqualFold(filepath.Ext(outputPath), ".png") {
		exp = screen.PNGExporter{Gap: 8}
	} else {
		if canvasR == nil {
			r, err := canvasrenderer.NewRenderer()
			if err != nil {
				return err
			}
			canvasR = r
		}
		exp = canvasR
	}

	data, err := exp.Export(d.Frames())
	if err != nil {
		return fmt.Errorf("导出失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

func writeDebug(sys *textsys.TextSystem, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := textsys.WriteDebugJSON(sys.Snapshot(), debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
