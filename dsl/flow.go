package dsl

import (
	"fmt"
	"strings"

	"github.com/ByLCY/quire/binding"
	"github.com/ByLCY/quire/element"
)

// 通用样式参数，p/text/span 的第一个参数不在其中时视为字体名。
var styleKeys = map[string]bool{
	"bold": true, "italic": true, "underline": true, "strike": true, "strikeout": true,
	"hide": true, "size": true, "font": true, "color": true, "highlight": true,
	"align": true, "spacing": true, "row-margin": true, "group": true,
}

var rowFlexes = map[string]element.RowFlex{
	"left":      element.RowFlexLeft,
	"center":    element.RowFlexCenter,
	"right":     element.RowFlexRight,
	"justify":   element.RowFlexJustify,
	"alignment": element.RowFlexAlignment,
}

var imageDisplays = map[string]element.ImageDisplay{
	"block":        element.ImageBlock,
	"inline":       element.ImageInline,
	"surround":     element.ImageSurround,
	"float-top":    element.ImageFloatTop,
	"floatTop":     element.ImageFloatTop,
	"float-bottom": element.ImageFloatBottom,
	"floatBottom":  element.ImageFloatBottom,
}

// flow 编译块级内容：字符串与 p/text 成为段落，其余命令按类型生成元素。
func (c *compiler) flow(block *Block, tmpl *element.Element) ([]*element.Element, error) {
	return c.statements(block, tmpl, true)
}

// inline 编译段落内的行内内容。
func (c *compiler) inline(block *Block, tmpl *element.Element) ([]*element.Element, error) {
	return c.statements(block, tmpl, false)
}

func (c *compiler) statements(block *Block, tmpl *element.Element, blockLevel bool) ([]*element.Element, error) {
	if block == nil {
		return nil, nil
	}
	var out []*element.Element
	for _, st := range block.Statements {
		list, err := c.statement(st, tmpl, blockLevel)
		if err != nil {
			return nil, err
		}
		out = append(out, list...)
	}
	return out, nil
}

func (c *compiler) statement(st *Statement, tmpl *element.Element, blockLevel bool) ([]*element.Element, error) {
	switch {
	case st.Text != nil:
		list := c.text(string(st.Text.Value), tmpl)
		if blockLevel {
			return paragraph(tmpl, list), nil
		}
		return list, nil
	case st.Assignment != nil:
		return nil, fmt.Errorf("不支持在内容中使用属性 %s", st.Assignment.Key)
	}
	cmd := st.Command
	a := &args{list: cmd.Args, pos: cmd.Pos}
	switch cmd.Name {
	case "p", "paragraph", "text", "span":
		t := element.CloneStyle(tmpl)
		if l := a.peek(); l != nil && l.Type == "Ident" && !styleKeys[l.Value] {
			t.Font = l.Value
			a.i++
		}
		list, err := c.styledContent(t, a, cmd)
		if err != nil {
			return nil, err
		}
		if blockLevel && cmd.Name != "span" {
			return paragraph(t, list), nil
		}
		return list, nil
	case "link":
		url, err := a.word("link")
		if err != nil {
			return nil, err
		}
		t := element.CloneStyle(tmpl)
		t.Type = element.TypeHyperlink
		t.URL = c.interpolate(url)
		return c.styledContent(t, a, cmd)
	case "sup", "sub", "date":
		t := element.CloneStyle(tmpl)
		t.Type = map[string]element.Type{"sup": element.TypeSuperscript, "sub": element.TypeSubscript, "date": element.TypeDate}[cmd.Name]
		return c.styledContent(t, a, cmd)
	case "checkbox", "radio":
		return c.check(cmd, a, tmpl)
	case "tab":
		el := element.CloneStyle(tmpl)
		el.Type = element.TypeTab
		return []*element.Element{el}, nil
	case "image":
		return c.image(cmd, a, tmpl)
	case "separator":
		el := element.CloneStyle(tmpl)
		el.Type = element.TypeSeparator
		if _, err := c.styled(el, a, nil); err != nil {
			return nil, err
		}
		return []*element.Element{el}, nil
	case "page-break":
		el := element.CloneStyle(tmpl)
		el.Type = element.TypePageBreak
		return []*element.Element{el}, nil
	case "block":
		return c.block(cmd, a, tmpl)
	case "list":
		return c.list(cmd, a, tmpl)
	case "table":
		return c.table(cmd, a, tmpl)
	case "control":
		return c.control(cmd, a, tmpl)
	case "area":
		return c.area(cmd, a, tmpl, blockLevel)
	case "let":
		return nil, c.let(cmd, a)
	}
	return nil, fmt.Errorf("%s: 未知命令 %s", cmd.Pos, cmd.Name)
}

// text 插值后按字符拆分，换行符成为零宽哨兵。
func (c *compiler) text(s string, tmpl *element.Element) []*element.Element {
	return element.FromString(c.interpolate(s), tmpl)
}

// paragraph 在内容前补一个携带段落样式的零宽哨兵。
func paragraph(tmpl *element.Element, list []*element.Element) []*element.Element {
	zero := element.CloneStyle(tmpl)
	zero.Type = ""
	zero.Value = element.ZeroWidth
	return append([]*element.Element{zero}, list...)
}

// styledContent 读取样式参数，内容为参数中的字符串加上子块。
func (c *compiler) styledContent(t *element.Element, a *args, cmd *Command) ([]*element.Element, error) {
	texts, err := c.styled(t, a, nil)
	if err != nil {
		return nil, err
	}
	var list []*element.Element
	for _, s := range texts {
		list = append(list, c.text(s, t)...)
	}
	inner, err := c.inline(cmd.Block, t)
	if err != nil {
		return nil, err
	}
	return append(list, inner...), nil
}

// styled 依次处理参数：字符串作为内容返回，extra 处理命令专属参数，其余按通用样式处理。
func (c *compiler) styled(el *element.Element, a *args, extra func(key *Lexeme) (bool, error)) ([]string, error) {
	var texts []string
	for !a.done() {
		key, _ := a.next()
		if key.Type == "String" {
			texts = append(texts, key.Value)
			continue
		}
		if extra != nil {
			ok, err := extra(key)
			if err != nil {
				return nil, err
			}
			if ok {
				continue
			}
		}
		ok, err := c.styleArg(el, key, a)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s: 未知参数 %s", key.Pos, key.Raw)
		}
	}
	return texts, nil
}

func (c *compiler) styleArg(el *element.Element, key *Lexeme, a *args) (bool, error) {
	var err error
	switch key.Value {
	case "bold":
		el.Bold = true
	case "italic":
		el.Italic = true
	case "underline":
		el.Underline = true
	case "strike", "strikeout":
		el.Strikeout = true
	case "hide":
		el.Hide = true
	case "size":
		el.Size, err = a.number("size")
	case "font":
		el.Font, err = a.word("font")
	case "color":
		el.Color, err = a.color(c.colors)
	case "highlight":
		el.Highlight, err = a.color(c.colors)
	case "spacing":
		el.LetterSpacing, err = a.number("spacing")
	case "row-margin":
		var v float64
		if v, err = a.number("row-margin"); err == nil {
			el.RowMargin = &v
		}
	case "group":
		var g string
		if g, err = a.word("group"); err == nil {
			el.GroupIDs = append(el.GroupIDs, g)
		}
	case "align":
		var v string
		if v, err = a.word("align"); err == nil {
			flex, ok := rowFlexes[v]
			if !ok {
				return true, fmt.Errorf("%s: 未知的对齐方式 %s", key.Pos, v)
			}
			el.RowFlex = flex
		}
	default:
		return false, nil
	}
	return true, err
}

func (c *compiler) check(cmd *Command, a *args, tmpl *element.Element) ([]*element.Element, error) {
	el := element.CloneStyle(tmpl)
	checked := false
	if _, err := c.styled(el, a, func(key *Lexeme) (bool, error) {
		if key.Value == "checked" {
			checked = true
			return true, nil
		}
		return false, nil
	}); err != nil {
		return nil, err
	}
	if cmd.Name == "radio" {
		el.Type = element.TypeRadio
		el.Radio = &element.Checkbox{Value: checked}
		if el.ControlID != "" {
			el.ControlComponent = element.ControlRadio
		}
	} else {
		el.Type = element.TypeCheckbox
		el.Checkbox = &element.Checkbox{Value: checked}
		if el.ControlID != "" {
			el.ControlComponent = element.ControlCheckbox
		}
	}
	return []*element.Element{el}, nil
}

// image SRC [width N] [height N] [display MODE] [at X Y [page N]]
func (c *compiler) image(cmd *Command, a *args, tmpl *element.Element) ([]*element.Element, error) {
	src, err := a.word("image")
	if err != nil {
		return nil, err
	}
	el := element.CloneStyle(tmpl)
	el.Type = element.TypeImage
	el.Value = c.interpolate(src)
	_, err = c.styled(el, a, func(key *Lexeme) (bool, error) {
		var err error
		switch key.Value {
		case "width":
			el.Width, err = a.number("width")
		case "height":
			el.Height, err = a.number("height")
		case "display":
			var v string
			if v, err = a.word("display"); err == nil {
				d, ok := imageDisplays[v]
				if !ok {
					return true, fmt.Errorf("%s: 未知的图片显示方式 %s", key.Pos, v)
				}
				el.ImageDisplay = d
			}
		case "at":
			fp := &element.FloatPosition{}
			if fp.X, err = a.number("at"); err != nil {
				return true, err
			}
			if fp.Y, err = a.number("at"); err != nil {
				return true, err
			}
			if a.skip("page") {
				var n float64
				if n, err = a.number("page"); err != nil {
					return true, err
				}
				// 页码从 1 开始书写
				fp.PageNo = int(n) - 1
			}
			el.FloatPosition = fp
		default:
			return false, nil
		}
		return true, err
	})
	if err != nil {
		return nil, err
	}
	if el.Width <= 0 || el.Height <= 0 {
		return nil, fmt.Errorf("%s: 图片需要 width 与 height", cmd.Pos)
	}
	return []*element.Element{el}, nil
}

// block KIND [url U] [width N] [height N]
func (c *compiler) block(cmd *Command, a *args, tmpl *element.Element) ([]*element.Element, error) {
	kind, err := a.word("block")
	if err != nil {
		return nil, err
	}
	el := element.CloneStyle(tmpl)
	el.Type = element.TypeBlock
	el.Block = &element.Block{Kind: kind}
	el.Height = 100
	_, err = c.styled(el, a, func(key *Lexeme) (bool, error) {
		var err error
		switch key.Value {
		case "url":
			var u string
			if u, err = a.word("url"); err == nil {
				el.Block.URL = c.interpolate(u)
			}
		case "width":
			el.Width, err = a.number("width")
		case "height":
			el.Height, err = a.number("height")
		default:
			return false, nil
		}
		return true, err
	})
	if err != nil {
		return nil, err
	}
	return []*element.Element{el}, nil
}

// list ol|ul [style S] { item [checked] { ... } ... }
// 每个列表项以零宽哨兵开头，项内换行产生的哨兵标记为 ListWrap。
func (c *compiler) list(cmd *Command, a *args, tmpl *element.Element) ([]*element.Element, error) {
	kind, err := a.word("list")
	if err != nil {
		return nil, err
	}
	t := element.CloneStyle(tmpl)
	switch kind {
	case "ol":
		t.ListType = element.ListOrdered
	case "ul":
		t.ListType = element.ListUnordered
	default:
		return nil, fmt.Errorf("%s: 列表类型应为 ol 或 ul，得到 %s", cmd.Pos, kind)
	}
	t.ListID = c.nextID("list-")
	if _, err := c.styled(t, a, func(key *Lexeme) (bool, error) {
		if key.Value != "style" {
			return false, nil
		}
		v, err := a.word("style")
		if err != nil {
			return true, err
		}
		switch s := element.ListStyle(v); s {
		case element.ListDecimal, element.ListDisc, element.ListCircle, element.ListSquare, element.ListCheckbox:
			t.ListStyle = s
		default:
			return true, fmt.Errorf("%s: 未知的列表样式 %s", key.Pos, v)
		}
		return true, nil
	}); err != nil {
		return nil, err
	}
	if cmd.Block == nil {
		return nil, fmt.Errorf("%s: 列表缺少内容", cmd.Pos)
	}

	var out []*element.Element
	for _, st := range cmd.Block.Statements {
		var content []*element.Element
		checked := false
		switch {
		case st.Text != nil:
			content = c.text(string(st.Text.Value), t)
		case st.Command != nil && st.Command.Name == "item":
			it := element.CloneStyle(t)
			ia := &args{list: st.Command.Args, pos: st.Command.Pos}
			texts, err := c.styled(it, ia, func(key *Lexeme) (bool, error) {
				if key.Value == "checked" {
					checked = true
					return true, nil
				}
				return false, nil
			})
			if err != nil {
				return nil, err
			}
			for _, s := range texts {
				content = append(content, c.text(s, it)...)
			}
			inner, err := c.inline(st.Command.Block, it)
			if err != nil {
				return nil, err
			}
			content = append(content, inner...)
		default:
			return nil, fmt.Errorf("%s: 列表中只能包含 item 或字符串", cmd.Pos)
		}
		head := paragraph(t, nil)[0]
		if t.ListStyle == element.ListCheckbox {
			head.Checkbox = &element.Checkbox{Value: checked}
		}
		for _, el := range content {
			if el.IsZero() {
				el.ListWrap = true
			}
		}
		out = append(out, head)
		out = append(out, content...)
	}
	return out, nil
}

// table [columns N...] [border COLOR] { row [height N] [repeat] { cell [colspan N] [rowspan N] [valign V] { ... } } }
func (c *compiler) table(cmd *Command, a *args, tmpl *element.Element) ([]*element.Element, error) {
	el := element.CloneStyle(tmpl)
	el.Type = element.TypeTable
	tbl := &element.Table{}
	// 单元格内容不继承列表、控件与区域
	cellTmpl := element.CloneStyle(tmpl)
	element.StripList(cellTmpl)
	cellTmpl.ControlID, cellTmpl.Control, cellTmpl.ControlComponent = "", nil, ""
	cellTmpl.AreaID, cellTmpl.Area = "", nil
	_, err := c.styled(cellTmpl, a, func(key *Lexeme) (bool, error) {
		switch key.Value {
		case "columns":
			for {
				if l := a.peek(); l == nil || l.Type != "Number" {
					break
				}
				w, err := a.number("columns")
				if err != nil {
					return true, err
				}
				tbl.Colgroup = append(tbl.Colgroup, w)
			}
			return true, nil
		case "border":
			col, err := a.color(c.colors)
			el.Color = col
			return true, err
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if cmd.Block == nil {
		return nil, fmt.Errorf("%s: 表格缺少行", cmd.Pos)
	}
	for _, st := range cmd.Block.Statements {
		rc := st.Command
		if rc == nil || rc.Name != "row" {
			return nil, fmt.Errorf("%s: 表格中只能包含 row", cmd.Pos)
		}
		tr, err := c.row(rc, cellTmpl)
		if err != nil {
			return nil, err
		}
		tbl.Rows = append(tbl.Rows, tr)
	}
	el.Table = tbl
	return []*element.Element{el}, nil
}

func (c *compiler) row(rc *Command, cellTmpl *element.Element) (*element.Tr, error) {
	tr := &element.Tr{}
	ra := &args{list: rc.Args, pos: rc.Pos}
	for !ra.done() {
		key, _ := ra.next()
		switch key.Value {
		case "height":
			h, err := ra.number("height")
			if err != nil {
				return nil, err
			}
			tr.Height, tr.MinHeight = h, h
		case "repeat":
			tr.PagingRepeat = true
		default:
			return nil, fmt.Errorf("%s: 未知的行参数 %s", key.Pos, key.Raw)
		}
	}
	if rc.Block == nil {
		return tr, nil
	}
	for _, st := range rc.Block.Statements {
		cc := st.Command
		if cc == nil || cc.Name != "cell" {
			return nil, fmt.Errorf("%s: 表格行中只能包含 cell", rc.Pos)
		}
		td := &element.Td{Colspan: 1, Rowspan: 1}
		t := element.CloneStyle(cellTmpl)
		ca := &args{list: cc.Args, pos: cc.Pos}
		texts, err := c.styled(t, ca, func(key *Lexeme) (bool, error) {
			var err error
			var n float64
			switch key.Value {
			case "colspan":
				n, err = ca.number("colspan")
				td.Colspan = int(n)
			case "rowspan":
				n, err = ca.number("rowspan")
				td.Rowspan = int(n)
			case "valign":
				var v string
				if v, err = ca.word("valign"); err == nil {
					td.VerticalAlign = element.VerticalAlign(v)
				}
			default:
				return false, nil
			}
			return true, err
		})
		if err != nil {
			return nil, err
		}
		var content []*element.Element
		for _, s := range texts {
			content = append(content, c.text(s, t)...)
		}
		inner, err := c.flow(cc.Block, t)
		if err != nil {
			return nil, err
		}
		content = append(content, inner...)
		td.Value = element.EnsureSentinel(content)
		tr.Tds = append(tr.Tds, td)
	}
	return tr, nil
}

// control ID [min-width N] [protected] [hide] [value-start] [column] [prefix S] [postfix S] [placeholder S] { 值 }
// 控件没有值时显示占位符。
func (c *compiler) control(cmd *Command, a *args, tmpl *element.Element) ([]*element.Element, error) {
	id, err := a.word("control")
	if err != nil {
		return nil, err
	}
	t := element.CloneStyle(tmpl)
	t.Type = element.TypeControl
	t.ControlID = id
	t.Control = &element.Control{Type: "text"}
	var prefix, postfix, placeholder string
	texts, err := c.styled(t, a, func(key *Lexeme) (bool, error) {
		var err error
		switch key.Value {
		case "min-width":
			t.Control.MinWidth, err = a.number("min-width")
		case "protected":
			t.Control.Protected = true
		case "hidden":
			t.Control.Hide = true
		case "value-start":
			t.Control.Indentation = "valueStart"
		case "column":
			t.Control.FlexDirection = "column"
		case "type":
			t.Control.Type, err = a.word("type")
		case "prefix":
			prefix, err = a.word("prefix")
		case "postfix":
			postfix, err = a.word("postfix")
		case "placeholder":
			placeholder, err = a.word("placeholder")
		default:
			return false, nil
		}
		return true, err
	})
	if err != nil {
		return nil, err
	}

	part := func(s string, comp element.ControlComponent) []*element.Element {
		pt := element.CloneStyle(t)
		pt.ControlComponent = comp
		return c.text(s, pt)
	}
	var value []*element.Element
	vt := element.CloneStyle(t)
	vt.ControlComponent = element.ControlValue
	for _, s := range texts {
		value = append(value, c.text(s, vt)...)
	}
	inner, err := c.inline(cmd.Block, vt)
	if err != nil {
		return nil, err
	}
	value = append(value, inner...)

	out := part(prefix, element.ControlPrefix)
	if len(value) == 0 {
		out = append(out, part(placeholder, element.ControlPlaceholder)...)
	} else {
		out = append(out, value...)
	}
	return append(out, part(postfix, element.ControlPostfix)...), nil
}

// area ID [top N] [hide] { ... }
func (c *compiler) area(cmd *Command, a *args, tmpl *element.Element, blockLevel bool) ([]*element.Element, error) {
	id, err := a.word("area")
	if err != nil {
		return nil, err
	}
	t := element.CloneStyle(tmpl)
	t.AreaID = id
	t.Area = &element.Area{}
	if _, err := c.styled(t, a, func(key *Lexeme) (bool, error) {
		var err error
		switch key.Value {
		case "top":
			t.Area.Top, err = a.number("top")
		case "hidden":
			t.Area.Hide = true
		default:
			return false, nil
		}
		return true, err
	}); err != nil {
		return nil, err
	}
	return c.statements(cmd.Block, t, blockLevel)
}

// let NAME = data.path，之后的插值可以直接使用 ${NAME}。
func (c *compiler) let(cmd *Command, a *args) error {
	name, err := a.word("let")
	if err != nil {
		return err
	}
	if !a.skip("=") {
		return fmt.Errorf("%s: let 需要 =", cmd.Pos)
	}
	var sb strings.Builder
	for _, l := range a.rest() {
		sb.WriteString(l.Raw)
	}
	path := sb.String()
	if path == "" {
		return fmt.Errorf("%s: let %s 缺少取值路径", cmd.Pos, name)
	}
	if after, ok := strings.CutPrefix(path, "data."); ok {
		v, _ := binding.Lookup(c.data, after)
		c.vars[name] = v
		return nil
	}
	v, _ := binding.Lookup(c.scope(), path)
	c.vars[name] = v
	return nil
}
