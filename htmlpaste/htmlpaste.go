// Package htmlpaste 将剪贴板或导入的 HTML 片段转换为元素序列。
package htmlpaste

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/layout"
)

// 标题字号（px）。
var headingSizes = map[string]float64{
	"h1": 26, "h2": 24, "h3": 22, "h4": 20, "h5": 18, "h6": 16,
}

var textAligns = map[string]element.RowFlex{
	"left":    element.RowFlexLeft,
	"center":  element.RowFlexCenter,
	"right":   element.RowFlexRight,
	"justify": element.RowFlexJustify,
}

// Parse 解析 HTML 片段。返回的序列不带起始哨兵，可直接作为 Splice 的插入内容；
// 段落、标题、列表项之间以零宽哨兵分隔。
func Parse(r io.Reader) ([]*element.Element, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析 HTML 失败: %w", err)
	}
	w := &walker{}
	root := findElement(doc, "body")
	if root == nil {
		root = doc
	}
	var out []*element.Element
	w.children(root, &element.Element{}, &out)
	return out, nil
}

// ParseString 同 Parse，输入为字符串。
func ParseString(s string) ([]*element.Element, error) {
	return Parse(strings.NewReader(s))
}

type walker struct {
	seq int
}

func (w *walker) nextID(prefix string) string {
	w.seq++
	return prefix + strconv.Itoa(w.seq)
}

func (w *walker) children(n *html.Node, tmpl *element.Element, out *[]*element.Element) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c, tmpl, out)
	}
}

func (w *walker) node(n *html.Node, tmpl *element.Element, out *[]*element.Element) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data, tmpl, out)
		return
	case html.ElementNode:
	default:
		w.children(n, tmpl, out)
		return
	}

	t := element.CloneStyle(tmpl)
	applyStyle(t, attr(n, "style"))
	switch n.Data {
	case "script", "style", "head", "title", "meta", "link":
	case "b", "strong":
		t.Bold = true
		w.children(n, t, out)
	case "i", "em":
		t.Italic = true
		w.children(n, t, out)
	case "u", "ins":
		t.Underline = true
		w.children(n, t, out)
	case "s", "del", "strike":
		t.Strikeout = true
		w.children(n, t, out)
	case "sup":
		t.Type = element.TypeSuperscript
		w.children(n, t, out)
	case "sub":
		t.Type = element.TypeSubscript
		w.children(n, t, out)
	case "a":
		t.Type = element.TypeHyperlink
		t.URL = attr(n, "href")
		w.children(n, t, out)
	case "br":
		*out = append(*out, zero(t))
	case "hr":
		t.Type = element.TypeSeparator
		*out = append(*out, t)
	case "img":
		w.image(n, t, out)
	case "input":
		switch attr(n, "type") {
		case "checkbox":
			t.Type = element.TypeCheckbox
			t.Checkbox = &element.Checkbox{Value: hasAttr(n, "checked")}
			*out = append(*out, t)
		case "radio":
			t.Type = element.TypeRadio
			t.Radio = &element.Checkbox{Value: hasAttr(n, "checked")}
			*out = append(*out, t)
		}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		t.Bold = true
		t.Size = headingSizes[n.Data]
		w.block(n, t, out)
	case "p", "div", "section", "article", "blockquote", "pre":
		w.block(n, t, out)
	case "ul", "ol":
		w.list(n, t, out)
	case "table":
		w.table(n, t, out)
	default:
		w.children(n, t, out)
	}
}

// block 另起一段：若前面已有内容且不以哨兵结尾则补一个哨兵。
func (w *walker) block(n *html.Node, t *element.Element, out *[]*element.Element) {
	if len(*out) > 0 && !(*out)[len(*out)-1].IsZero() {
		*out = append(*out, zero(t))
	} else if len(*out) > 0 && t.RowFlex != "" {
		(*out)[len(*out)-1].RowFlex = t.RowFlex
	}
	w.children(n, t, out)
}

// text 把连续空白折叠为一个空格并按字符拆分，段首与已有空格之后的空白被丢弃。
func (w *walker) text(s string, tmpl *element.Element, out *[]*element.Element) {
	s = collapseSpace(s)
	if n := len(*out); n == 0 || (*out)[n-1].IsZero() || (*out)[n-1].Value == " " {
		s = strings.TrimLeft(s, " ")
	}
	if s == "" {
		return
	}
	*out = append(*out, element.FromString(norm.NFC.String(s), tmpl)...)
}

func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

func (w *walker) image(n *html.Node, t *element.Element, out *[]*element.Element) {
	src := attr(n, "src")
	if src == "" {
		return
	}
	t.Type = element.TypeImage
	t.Value = src
	t.Width, _ = layout.ParsePX(attr(n, "width"))
	t.Height, _ = layout.ParsePX(attr(n, "height"))
	if t.Width <= 0 || t.Height <= 0 {
		// 尺寸未知时使用占位尺寸，由使用方在加载图片后修正
		t.Width, t.Height = 100, 100
	}
	*out = append(*out, t)
}

// list 每个 li 成为一个列表项：起始哨兵携带列表信息，项内的 br 标记为 ListWrap。
func (w *walker) list(n *html.Node, t *element.Element, out *[]*element.Element) {
	t.ListID = w.nextID("paste-list-")
	t.ListType = element.ListUnordered
	if n.Data == "ol" {
		t.ListType = element.ListOrdered
	}
	switch attrStyle(n, "list-style-type") {
	case "disc":
		t.ListStyle = element.ListDisc
	case "circle":
		t.ListStyle = element.ListCircle
	case "square":
		t.ListStyle = element.ListSquare
	case "decimal":
		t.ListStyle = element.ListDecimal
	}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		it := element.CloneStyle(t)
		applyStyle(it, attr(li, "style"))
		*out = append(*out, zero(it))
		start := len(*out)
		w.children(li, it, out)
		for _, el := range (*out)[start:] {
			if el.IsZero() {
				el.ListWrap = true
			}
			if el.ListID == "" {
				// 嵌套块内的元素同样归属该列表
				el.ListID, el.ListType, el.ListStyle = t.ListID, t.ListType, t.ListStyle
			}
		}
	}
	// 列表之后的内容另起一段
	after := element.CloneStyle(t)
	element.StripList(after)
	*out = append(*out, zero(after))
}

func (w *walker) table(n *html.Node, t *element.Element, out *[]*element.Element) {
	el := element.CloneStyle(t)
	el.Type = element.TypeTable
	tbl := &element.Table{}
	cellTmpl := element.CloneStyle(t)
	element.StripList(cellTmpl)
	for _, trNode := range findAll(n, "tr") {
		tr := &element.Tr{}
		if h, ok := layout.ParsePX(attr(trNode, "height")); ok {
			tr.Height, tr.MinHeight = h, h
		}
		// thead 中的行在分页时重复
		tr.PagingRepeat = trNode.Parent != nil && trNode.Parent.Data == "thead"
		for c := trNode.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
				continue
			}
			ct := element.CloneStyle(cellTmpl)
			applyStyle(ct, attr(c, "style"))
			if c.Data == "th" {
				ct.Bold = true
			}
			var value []*element.Element
			w.children(c, ct, &value)
			td := &element.Td{
				Colspan: atoi(attr(c, "colspan"), 1),
				Rowspan: atoi(attr(c, "rowspan"), 1),
				Value:   element.EnsureSentinel(value),
			}
			switch attrStyle(c, "vertical-align") {
			case "middle":
				td.VerticalAlign = element.VerticalMiddle
			case "bottom":
				td.VerticalAlign = element.VerticalBottom
			}
			tr.Tds = append(tr.Tds, td)
		}
		if len(tr.Tds) > 0 {
			tbl.Rows = append(tbl.Rows, tr)
		}
	}
	if len(tbl.Rows) == 0 {
		return
	}
	for _, col := range findAll(n, "col") {
		if wv, ok := layout.ParsePX(attr(col, "width")); ok {
			tbl.Colgroup = append(tbl.Colgroup, wv)
		}
	}
	el.Table = tbl
	*out = append(*out, el)
}

// applyStyle 读取内联样式中的颜色、背景色、字号、粗斜体与对齐。
func applyStyle(el *element.Element, style string) {
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		switch k {
		case "color":
			if _, ok := layout.ParseColor(v); ok {
				el.Color = v
			}
		case "background-color", "background":
			if _, ok := layout.ParseColor(v); ok {
				el.Highlight = v
			}
		case "font-size":
			if px, ok := layout.ParsePX(v); ok && px > 0 {
				el.Size = px
			}
		case "font-weight":
			el.Bold = v == "bold" || v == "bolder" || atoi(v, 400) >= 600
		case "font-style":
			el.Italic = v == "italic" || v == "oblique"
		case "font-family":
			el.Font = strings.Trim(strings.TrimSpace(strings.Split(v, ",")[0]), `"'`)
		case "text-decoration", "text-decoration-line":
			el.Underline = el.Underline || strings.Contains(v, "underline")
			el.Strikeout = el.Strikeout || strings.Contains(v, "line-through")
		case "text-align":
			if flex, ok := textAligns[v]; ok {
				el.RowFlex = flex
			}
		case "letter-spacing":
			if px, ok := layout.ParsePX(v); ok {
				el.LetterSpacing = px
			}
		}
	}
}

func zero(tmpl *element.Element) *element.Element {
	z := element.CloneStyle(tmpl)
	z.Type = ""
	z.Value = element.ZeroWidth
	z.URL = ""
	return z
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// attrStyle 返回内联样式中某个属性的值。
func attrStyle(n *html.Node, prop string) string {
	for _, decl := range strings.Split(attr(n, "style"), ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), prop) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func atoi(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// findAll 返回 n 之下所有 tag 节点，不进入嵌套表格。
func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(m *html.Node) {
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data == tag {
				out = append(out, c)
			}
			if c.Data != "table" {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}
