package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/renderer"
)

const tableBorderWidth = 0.2

// Renderer 通过 github.com/tdewolff/canvas 测量文字并把排版结果绘制为 PDF。
// 排版坐标为 px，绘制时统一换算为 mm。
type Renderer struct {
	baseDir string
	meta    layout.DocumentMeta

	// 注入的资源
	fontBlobs  map[string][]byte // 按字族名
	imageBlobs map[string][]byte // 按资源名

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily

	imageMu sync.Mutex
	images  map[string]image.Image
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Meta    layout.DocumentMeta
	// Fonts 以字族名为键，可用 "字族-Bold"、"字族-Italic"、"字族-BoldItalic" 提供粗斜体。
	// 未注册的字族使用内置 Go 字体。
	Fonts  map[string]Resource
	Images map[string]Resource // built-in images accessible via built-in:<name>
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:    opts.BaseDir,
		meta:       opts.Meta,
		fontBlobs:  ingest(opts.Fonts),
		imageBlobs: ingest(opts.Images),
		families:   map[string]*canvas.FontFamily{},
		images:     map[string]image.Image{},
	}
	return r
}

func ingest(res map[string]Resource) map[string][]byte {
	out := make(map[string][]byte, len(res))
	for name, rs := range res {
		if name == "" {
			continue
		}
		if len(rs.Bytes) > 0 {
			out[name] = rs.Bytes
			continue
		}
		if rs.Path != "" {
			// 读取失败时按未注册处理，绘制时回退到内置资源或报错
			if data, err := os.ReadFile(rs.Path); err == nil && len(data) > 0 {
				out[name] = data
			}
		}
	}
	return out
}

// SetMeta 设置写入 PDF 的元信息。
func (r *Renderer) SetMeta(meta layout.DocumentMeta) { r.meta = meta }

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if result.PageCount() == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	width, height := mm(result.Width), mm(result.Height)
	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	writer.SetInfo(r.meta.Title, r.meta.Subject, strings.Join(r.meta.Keywords, ", "), r.meta.Author, r.meta.Creator)
	for pageNo := range result.Pages {
		if pageNo > 0 {
			writer.NewPage(width, height)
		}
		c := canvas.New(width, height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, result, pageNo); err != nil {
			return nil, fmt.Errorf("绘制第 %d 页失败: %w", pageNo+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// drawPage 依次绘制：文字下方的浮动图片 → 页眉 → 正文 → 页脚 → 文字上方及环绕图片。
func (r *Renderer) drawPage(ctx *canvas.Context, res *layout.Result, pageNo int) error {
	if err := r.drawFloats(ctx, res, pageNo, true); err != nil {
		return err
	}
	if z := res.Header; z != nil {
		if err := r.drawRows(ctx, res, z.Rows, z.Positions); err != nil {
			return err
		}
	}
	if err := r.drawRows(ctx, res, res.Pages[pageNo], res.Positions); err != nil {
		return err
	}
	if z := res.Footer; z != nil {
		if err := r.drawRows(ctx, res, z.Rows, z.Positions); err != nil {
			return err
		}
	}
	return r.drawFloats(ctx, res, pageNo, false)
}

// mm 将布局坐标(px)转换为毫米(mm)。
func mm(px float64) float64 { return px * layout.PxToMm }

// toPx 将毫米(mm)转换为布局坐标(px)。
func toPx(v float64) float64 { return v * layout.MmToPx }
