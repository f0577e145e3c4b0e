package dsl

import (
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/quire/binding"
	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/layout"
)

// Compiled 为编译后的文档：页面设置、元信息、字体资源与三个区域的元素序列。
type Compiled struct {
	Name    string
	Version string
	Meta    layout.DocumentMeta
	Page    Page
	// Fonts 为 resources 中声明的字体，字族名 → 字体文件路径。
	Fonts   map[string]string
	Content layout.Content
}

// Page 为 page 头部声明的页面设置，长度均为 px，零值表示沿用默认值。
type Page struct {
	Size      string
	Width     float64
	Height    float64
	Margins   [4]float64
	Mode      layout.PageMode
	WordBreak layout.WordBreak
	MaxPageNo int
}

// Apply 将页面设置写入排版选项。
func (p Page) Apply(opts layout.Options) layout.Options {
	if p.Width > 0 {
		opts.Width = p.Width
	}
	if p.Height > 0 {
		opts.Height = p.Height
	}
	if p.Margins != ([4]float64{}) {
		opts.Margins = p.Margins
	}
	if p.Mode != "" {
		opts.Mode = p.Mode
	}
	if p.WordBreak != "" {
		opts.WordBreak = p.WordBreak
	}
	if p.MaxPageNo > 0 {
		opts.MaxPageNo = p.MaxPageNo
	}
	return opts
}

// 纸张尺寸（mm，纵向）。
var paperSizes = map[string][2]float64{
	"a3":     {297, 420},
	"a4":     {210, 297},
	"a5":     {148, 210},
	"b5":     {176, 250},
	"letter": {215.9, 279.4},
	"legal":  {215.9, 355.6},
}

// Load 解析并编译 DSL，data 用于 ${path} 插值，可为 nil。
func Load(r io.Reader, data any) (*Compiled, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}
	return Compile(doc, data)
}

// LoadString 同 Load，输入为字符串。
func LoadString(input string, data any) (*Compiled, error) {
	doc, err := ParseString(input)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}
	return Compile(doc, data)
}

// LoadFile 同 Load，读取 path 指向的文件，错误位置带文件名。
func LoadFile(path string, data any) (*Compiled, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}
	return Compile(doc, data)
}

// Compile 将语法树编译为元素序列。
func Compile(doc *Document, data any) (*Compiled, error) {
	c := &compiler{
		data:   data,
		vars:   map[string]any{},
		colors: map[string]string{},
		out:    &Compiled{Name: doc.Name, Version: doc.Version, Fonts: map[string]string{}},
	}
	var main []*element.Element
	pages := 0
	for _, sec := range doc.Sections {
		switch {
		case sec.Meta != nil:
			if err := c.meta(sec.Meta); err != nil {
				return nil, err
			}
		case sec.Resources != nil:
			if err := c.resources(sec.Resources); err != nil {
				return nil, err
			}
		case sec.Header != nil:
			list, err := c.flow(sec.Header, &element.Element{})
			if err != nil {
				return nil, fmt.Errorf("编译页眉失败: %w", err)
			}
			c.out.Content.Header = element.EnsureSentinel(list)
		case sec.Footer != nil:
			list, err := c.flow(sec.Footer, &element.Element{})
			if err != nil {
				return nil, fmt.Errorf("编译页脚失败: %w", err)
			}
			c.out.Content.Footer = element.EnsureSentinel(list)
		case sec.Page != nil:
			if pages == 0 {
				page, err := c.pageSpec(sec.Page)
				if err != nil {
					return nil, err
				}
				c.out.Page = page
			} else {
				// 后续 page 段另起一页
				main = append(main, &element.Element{Type: element.TypePageBreak})
			}
			pages++
			list, err := c.flow(sec.Page.Block, &element.Element{})
			if err != nil {
				return nil, fmt.Errorf("编译第 %d 个 page 段失败: %w", pages, err)
			}
			main = append(main, list...)
		}
	}
	if pages == 0 {
		return nil, fmt.Errorf("文档缺少 page 段")
	}
	c.out.Content.Main = element.EnsureSentinel(main)
	return c.out, nil
}

type compiler struct {
	data   any
	vars   map[string]any
	colors map[string]string
	out    *Compiled
	seq    int
}

func (c *compiler) nextID(prefix string) string {
	c.seq++
	return fmt.Sprintf("%s%d", prefix, c.seq)
}

// scope 返回插值使用的数据：data 的顶层键、let 变量，以及指向 data 本身的 "data"。
func (c *compiler) scope() any {
	if len(c.vars) == 0 {
		return c.data
	}
	m := map[string]any{}
	if dm, ok := c.data.(map[string]any); ok {
		for k, v := range dm {
			m[k] = v
		}
	}
	if c.data != nil {
		m["data"] = c.data
	}
	for k, v := range c.vars {
		m[k] = v
	}
	return m
}

// interpolate 替换占位符并规范化为 NFC，避免组合字符被拆成多个元素。
func (c *compiler) interpolate(s string) string {
	return norm.NFC.String(binding.Interpolate(s, c.scope()))
}

func (c *compiler) meta(block *Block) error {
	for _, st := range block.Statements {
		a := st.Assignment
		if a == nil {
			continue
		}
		if a.Key == "keywords" {
			if a.Value.Array == nil {
				return fmt.Errorf("meta.keywords 需要数组")
			}
			for _, v := range a.Value.Array.Values {
				c.out.Meta.Keywords = append(c.out.Meta.Keywords, c.interpolate(valueString(v)))
			}
			continue
		}
		v := c.interpolate(valueString(a.Value))
		switch a.Key {
		case "title":
			c.out.Meta.Title = v
		case "author":
			c.out.Meta.Author = v
		case "subject":
			c.out.Meta.Subject = v
		case "creator":
			c.out.Meta.Creator = v
		default:
			return fmt.Errorf("未知的 meta 字段 %s", a.Key)
		}
	}
	return nil
}

// resources 读取 font 与 color 声明：
//
//	font Body { src: "fonts/Body.ttf" }
//	color Accent = #0F62FE
func (c *compiler) resources(block *Block) error {
	for _, st := range block.Statements {
		cmd := st.Command
		if cmd == nil {
			continue
		}
		a := &args{list: cmd.Args, pos: cmd.Pos}
		name, err := a.word("资源名")
		if err != nil {
			return err
		}
		switch cmd.Name {
		case "font":
			if cmd.Block == nil {
				return fmt.Errorf("%s: 字体 %s 缺少 src", cmd.Pos, name)
			}
			for _, fs := range cmd.Block.Statements {
				if fs.Assignment != nil && fs.Assignment.Key == "src" {
					c.out.Fonts[name] = valueString(fs.Assignment.Value)
				}
			}
			if c.out.Fonts[name] == "" {
				return fmt.Errorf("%s: 字体 %s 缺少 src", cmd.Pos, name)
			}
		case "color":
			a.skip("=")
			col, ok := a.next()
			if !ok || col.Type != "Color" {
				return fmt.Errorf("%s: 颜色 %s 需要 #RRGGBB 值", cmd.Pos, name)
			}
			c.colors[name] = col.Value
		default:
			return fmt.Errorf("%s: 未知资源类型 %s", cmd.Pos, cmd.Name)
		}
	}
	return nil
}

// pageSpec 解析页面头部，例如：
//
//	page A4 landscape margin 20mm 15mm mode continuous word-break break-all max-pages 3
func (c *compiler) pageSpec(spec *PageSection) (Page, error) {
	page := Page{Size: spec.Size}
	if size, ok := paperSizes[strings.ToLower(spec.Size)]; ok {
		page.Width = math.Round(size[0] * layout.MmToPx)
		page.Height = math.Round(size[1] * layout.MmToPx)
	} else if !strings.EqualFold(spec.Size, "custom") {
		return page, fmt.Errorf("未知纸张尺寸 %s", spec.Size)
	}
	a := &args{list: spec.Params}
	landscape := false
	for !a.done() {
		key, _ := a.next()
		var err error
		switch key.Value {
		case "portrait":
		case "landscape":
			landscape = true
		case "width":
			page.Width, err = a.length(key.Value)
		case "height":
			page.Height, err = a.length(key.Value)
		case "margin":
			page.Margins, err = a.margins()
		case "mode":
			var v string
			if v, err = a.word("mode"); err == nil {
				switch v {
				case "paging":
					page.Mode = layout.ModePaging
				case "continuous", "continuity":
					page.Mode = layout.ModeContinuous
				default:
					err = fmt.Errorf("%s: 未知的页面模式 %s", key.Pos, v)
				}
			}
		case "word-break":
			var v string
			if v, err = a.word("word-break"); err == nil {
				switch layout.WordBreak(v) {
				case layout.WordBreakAll, layout.WordBreakWord:
					page.WordBreak = layout.WordBreak(v)
				default:
					err = fmt.Errorf("%s: 未知的换行方式 %s", key.Pos, v)
				}
			}
		case "max-pages":
			var n float64
			if n, err = a.number(key.Value); err == nil {
				page.MaxPageNo = int(n)
			}
		default:
			err = fmt.Errorf("%s: 未知的页面参数 %s", key.Pos, key.Raw)
		}
		if err != nil {
			return page, err
		}
	}
	if landscape {
		page.Width, page.Height = page.Height, page.Width
	}
	if page.Width <= 0 || page.Height <= 0 {
		return page, fmt.Errorf("页面尺寸无效 %gx%g", page.Width, page.Height)
	}
	return page, nil
}

// valueString 返回属性值的文本形式，表达式按原始 token 拼接。
func valueString(v *Value) string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Expr != nil:
		parts := make([]string, 0, len(v.Expr.Parts))
		for _, p := range v.Expr.Parts {
			parts = append(parts, p.Raw)
		}
		return strings.Join(parts, "")
	}
	return ""
}
