package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/htmlpaste"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/renderer"
	canvasrenderer "github.com/ByLCY/quire/renderer/canvas"
)

// config 汇总命令行参数。
type config struct {
	input    string
	output   string
	debug    string
	mode     string
	maxPages int
	verbose  bool
	data     any
}

func main() {
	var cfg config
	flag.StringVar(&cfg.input, "in", "examples/demo.quire", "DSL 文件路径（.html/.htm 按 HTML 导入）")
	flag.StringVar(&cfg.output, "out", "output/demo.pdf", "PDF 输出路径")
	flag.StringVar(&cfg.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.StringVar(&cfg.mode, "mode", "", "页面模式：paging 或 continuous，覆盖文档设置")
	flag.IntVar(&cfg.maxPages, "max-pages", 0, "最大页数，超出部分截断")
	flag.BoolVar(&cfg.verbose, "v", false, "输出排版日志")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据")
	flag.Parse()

	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &cfg.data); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	if err := run(cfg); err != nil {
		log.Fatalf("生成 PDF 失败: %v", err)
	}
	fmt.Printf("已生成 PDF：%s\n", cfg.output)
}

// run 串联解析、排版与渲染。
func run(cfg config) error {
	src, err := load(cfg)
	if err != nil {
		return err
	}

	baseDir := filepath.Dir(cfg.input)
	fonts := make(map[string]canvasrenderer.Resource, len(src.Fonts))
	for name, path := range src.Fonts {
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		fonts[name] = canvasrenderer.Resource{Path: path}
	}
	cr := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: baseDir,
		Meta:    src.Meta,
		Fonts:   fonts,
	})

	opts := src.Page.Apply(layout.DefaultOptions())
	opts.Measurer = cr
	switch cfg.mode {
	case "":
	case "paging":
		opts.Mode = layout.ModePaging
	case "continuous", "continuity":
		opts.Mode = layout.ModeContinuous
	default:
		return fmt.Errorf("未知的页面模式 %s", cfg.mode)
	}
	if cfg.maxPages > 0 {
		opts.MaxPageNo = cfg.maxPages
	}
	if cfg.verbose {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	doc := layout.NewDocument(src.Content.Main, opts)
	doc.SetHeader(src.Content.Header)
	doc.SetFooter(src.Content.Footer)
	result, err := doc.Compute()
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if cfg.debug != "" {
		if err := writeDebug(result, cfg.debug); err != nil {
			return err
		}
	}
	return render(cr, result, cfg.output)
}

// load 读取 DSL；扩展名为 .html/.htm 时按 HTML 片段导入，使用默认页面设置。
func load(cfg config) (*dsl.Compiled, error) {
	switch strings.ToLower(filepath.Ext(cfg.input)) {
	case ".html", ".htm":
		file, err := os.Open(cfg.input)
		if err != nil {
			return nil, fmt.Errorf("无法打开输入文件 %s: %w", cfg.input, err)
		}
		defer file.Close()
		list, err := htmlpaste.Parse(file)
		if err != nil {
			return nil, err
		}
		return &dsl.Compiled{
			Name:    strings.TrimSuffix(filepath.Base(cfg.input), filepath.Ext(cfg.input)),
			Content: layout.Content{Main: element.EnsureSentinel(list)},
		}, nil
	}
	return dsl.LoadFile(cfg.input, cfg.data)
}

func render(r renderer.Renderer, result *layout.Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
