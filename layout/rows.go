package layout

import (
	"math"

	"github.com/ByLCY/quire/element"
)

// rowInput 描述一次分行：顶层正文会感知分页、区域偏移与表格拆分，单元格与页眉页脚不会。
type rowInput struct {
	// list 指向被排版的序列，表格拆分会向顶层序列插入续表。
	list     *[]*element.Element
	width    float64
	originX  float64
	originY  float64
	zone     Zone
	topLevel bool
}

// rowState 为分行时的游标。
type rowState struct {
	in        rowInput
	rows      []*Row
	cur       *Row
	listWidth map[string]float64
	words     map[int]int

	y        float64
	pageNo   int
	listID   string
	listIdx  int
	ctrlSum  float64
	pageRows *pager
}

// composeRows 从左到右单次扫描元素序列，生成行。
func (p *pass) composeRows(in rowInput) ([]*Row, error) {
	list := *in.list
	st := &rowState{
		in:        in,
		listWidth: p.listWidths(list),
		y:         in.originY,
	}
	if p.opts.WordBreak == WordBreakWord {
		st.words = wordUnits(list)
	}
	if in.topLevel {
		st.pageRows = p.newPager()
	}
	for i := 0; i < len(*in.list); i++ {
		list = *in.list
		el := list[i]
		var pre *element.Element
		if i > 0 {
			pre = list[i-1]
		}
		offsetX := 0.0
		if st.cur != nil {
			offsetX = st.cur.OffsetX
		}
		if offsetX == 0 && el.ListID != "" {
			offsetX = st.listWidth[el.ListID]
		}
		avail := in.width - offsetX
		margin := p.opts.BasicRowMarginHeight * el.RowMarginOr(p.opts.DefaultRowMargin)

		font := p.fontOf(el)
		m, err := p.measureElement(st, i, el, font, avail, margin)
		if err != nil {
			return nil, err
		}
		// 表格拆分可能替换当前元素
		list = *in.list
		el = list[i]
		m = p.applyControlMinWidth(st, list, i, el, m)

		height := 2*margin + m.Ascent + m.Descent
		ascent := m.Ascent + margin
		if (el.Type == element.TypeImage && el.ImageDisplay != element.ImageInline) || el.Type == element.TypeBlock {
			ascent = m.Height + margin
		}
		re := &RowElement{Element: el, Index: i, Value: el.Value, Font: font, Metrics: m}

		forced := st.cur == nil || p.forcesBreak(pre, el)
		overflow := false
		if !forced {
			need := m.Width
			if end, ok := st.words[i]; ok {
				if w := p.wordWidth(list, i, end); w <= avail {
					need = w
				}
			}
			shift := 0.0
			if in.topLevel && !el.IsFloating() {
				shift = p.surroundShift(st, st.cur, in.originX+offsetX+st.cur.Width, m.Width, height)
			}
			overflow = st.cur.Width+shift+need > avail
			if !overflow && shift > 0 {
				re.Left = shift
				st.cur.Width += shift
				st.cur.IsSurround = true
			}
		}

		if forced || overflow {
			if st.cur != nil {
				st.cur.IsWidthNotEnough = overflow
				p.closeRow(st, el, pre)
			}
			p.openRow(st, i, el, pre, re, height, ascent)
			continue
		}
		st.cur.Elements = append(st.cur.Elements, re)
		st.cur.Width += m.Width
		if height > st.cur.Height {
			st.cur.Height = height
			st.cur.Ascent = ascent
		}
		if el.Type == element.TypePageBreak {
			st.cur.IsPageBreak = true
		}
	}
	if st.cur != nil {
		p.closeRow(st, nil, nil)
	}
	return st.rows, nil
}

// measureElement 按元素类型计算度量。表格会先完成子布局（顶层正文还会拆分跨页表格）。
func (p *pass) measureElement(st *rowState, i int, el *element.Element, font FontSpec, avail, margin float64) (Metrics, error) {
	var m Metrics
	if el.Hidden() && !p.opts.DesignMode {
		// 隐藏元素沿用前一元素的高度，避免行高塌陷。
		if st.cur != nil && len(st.cur.Elements) > 0 {
			prev := st.cur.Elements[len(st.cur.Elements)-1].Metrics
			m.Height, m.Ascent, m.Descent = prev.Height, prev.Ascent, prev.Descent
		} else {
			m.Height, m.Ascent = font.Size, font.Size
		}
		return m, nil
	}
	switch el.Type {
	case element.TypeImage:
		if el.IsFloating() {
			return m, nil
		}
		w, h := el.Width, el.Height
		if w > avail && w > 0 {
			h = h * avail / w
			w = avail
		}
		m = Metrics{Width: w, Height: h, Descent: h}
	case element.TypeTable:
		if el.Table == nil {
			return m, nil
		}
		tl, err := p.layoutTable(el, avail)
		if err != nil {
			return m, err
		}
		if st.in.topLevel && p.opts.Mode != ModeContinuous {
			if _, tl, err = p.splitTable(st, i, el, tl, avail, margin); err != nil {
				return m, err
			}
		}
		m = Metrics{Width: tl.Width, Height: tl.Height, Ascent: -margin, Descent: tl.Height}
	case element.TypeSeparator:
		lw := p.opts.SeparatorLineWidth
		m = Metrics{Width: avail, Height: lw, Descent: lw}
	case element.TypePageBreak:
		m = Metrics{Width: avail, Height: p.opts.DefaultSize, Ascent: p.opts.DefaultSize}
	case element.TypeCheckbox, element.TypeRadio:
		size := p.opts.CheckboxSize
		m = Metrics{Width: size + 2*p.opts.CheckboxGap, Height: size, Ascent: size}
	case element.TypeTab:
		m = Metrics{Width: p.opts.DefaultTabWidth, Height: font.Size, Ascent: font.Size}
	case element.TypeBlock:
		w := el.Width
		if w <= 0 || w > avail {
			w = avail
		}
		m = Metrics{Width: w, Height: el.Height, Descent: el.Height}
	default:
		tm := p.opts.Measurer.Measure(el.Value, font)
		m = Metrics{Width: tm.Width, Height: font.Size, Ascent: tm.Ascent, Descent: tm.Descent}
		if el.IsZero() {
			base := el.Size
			if base <= 0 {
				base = p.opts.DefaultSize
			}
			m.Width = 0
			m.Ascent = base
		} else if el.LetterSpacing != 0 {
			m.Width += el.LetterSpacing
		}
		switch el.Type {
		case element.TypeSuperscript:
			m.Ascent += m.Height / 2
		case element.TypeSubscript:
			m.Descent += m.Height / 2
		}
	}
	return m, nil
}

// applyControlMinWidth 让控件最后一个元素补足控件最小宽度。
func (p *pass) applyControlMinWidth(st *rowState, list []*element.Element, i int, el *element.Element, m Metrics) Metrics {
	if el.ControlID == "" || el.Control == nil || el.Control.MinWidth <= 0 {
		return m
	}
	if i == 0 || list[i-1].ControlID != el.ControlID {
		st.ctrlSum = 0
	}
	st.ctrlSum += m.Width
	if i+1 >= len(list) || list[i+1].ControlID != el.ControlID {
		if st.ctrlSum < el.Control.MinWidth {
			m.Width += el.Control.MinWidth - st.ctrlSum
		}
	}
	return m
}

// forcesBreak 判断 el 是否必须另起一行。
func (p *pass) forcesBreak(pre, el *element.Element) bool {
	if pre == nil {
		return false
	}
	switch {
	case el.IsBlockLike() || el.Type == element.TypePageBreak:
		return true
	case pre.IsBlockLike() || pre.Type == element.TypePageBreak:
		return true
	case el.ListID != pre.ListID:
		return true
	case el.AreaID != pre.AreaID:
		return true
	case (el.ControlComponent == element.ControlCheckbox || el.ControlComponent == element.ControlRadio) &&
		el.Control != nil && el.Control.FlexDirection == "column" && pre.ControlComponent == element.ControlValue:
		return true
	case el.IsZero():
		return !(el.Area != nil && el.Area.Hide && !p.opts.DesignMode)
	}
	return false
}

func (p *pass) wordWidth(list []*element.Element, start, end int) float64 {
	w := 0.0
	for k := start; k < end && k < len(list); k++ {
		el := list[k]
		w += p.opts.Measurer.Measure(el.Value, p.fontOf(el)).Width + el.LetterSpacing
	}
	return w
}

// openRow 以 re 为首元素开启新行，处理列表序号、控件缩进、区域偏移与环绕。
func (p *pass) openRow(st *rowState, i int, el, pre *element.Element, re *RowElement, height, ascent float64) {
	list := *st.in.list
	prevRow := st.cur
	if prevRow != nil {
		st.y += prevRow.Height + prevRow.OffsetY
	}

	flex := el.RowFlex
	if flex == "" && el.IsZero() && i+1 < len(list) {
		flex = list[i+1].RowFlex
	}
	row := &Row{
		StartIndex: i,
		RowIndex:   len(st.rows),
		RowFlex:    flex,
		Elements:   []*RowElement{re},
		Width:      re.Metrics.Width,
		Height:     height,
		Ascent:     ascent,
	}
	if el.ListID != "" {
		if el.ListID != st.listID {
			st.listIdx = 0
		} else if el.IsZero() && !el.ListWrap {
			st.listIdx++
		}
		row.IsList = true
		row.ListIndex = st.listIdx
		row.OffsetX = st.listWidth[el.ListID]
	}
	st.listID = el.ListID

	if el.ControlID != "" && el.Control != nil && el.Control.Indentation == "valueStart" && prevRow != nil {
		row.OffsetX = controlValueStart(prevRow, el.ControlID)
	}
	if st.in.topLevel && el.AreaID != "" && el.Area != nil && (pre == nil || pre.AreaID != el.AreaID) {
		row.OffsetY = el.Area.Top
	}
	if el.Type == element.TypePageBreak {
		row.IsPageBreak = true
	}

	if st.pageRows != nil && prevRow != nil {
		if st.pageRows.place(prevRow, len(st.rows) > 1 && st.rows[len(st.rows)-2].IsPageBreak) {
			st.y = p.mainTop + prevRow.Height + prevRow.OffsetY
		}
		st.pageNo = st.pageRows.pageNo
		if st.pageRows.paging && (prevRow.IsPageBreak || st.pageRows.used+height+row.OffsetY > st.pageRows.height) {
			st.pageNo++
			st.y = p.mainTop
		}
	}

	if st.in.topLevel && !el.IsFloating() {
		avail := st.in.width - row.OffsetX
		shift := p.surroundShift(st, row, st.in.originX+row.OffsetX, re.Metrics.Width, height)
		if shift > 0 && shift+re.Metrics.Width <= avail {
			re.Left = shift
			row.Width += shift
			row.IsSurround = true
		}
	}
	st.rows = append(st.rows, row)
	st.cur = row
}

// closeRow 收尾当前行：空行高度压缩、两端/分散对齐。next 为下一行的首元素。
func (p *pass) closeRow(st *rowState, next, last *element.Element) {
	row := st.cur
	if next != nil && len(row.Elements) == 1 && row.Elements[0].Element.IsZero() {
		if next.Type == element.TypeBlock || (next.AreaID != "" && (last == nil || last.AreaID != next.AreaID)) {
			row.Height = p.opts.BasicRowMarginHeight
			row.Ascent = math.Min(row.Ascent, row.Height)
		}
	}
	tail := row.Elements[len(row.Elements)-1].Element
	if tail.RowFlex == element.RowFlexJustify || (tail.RowFlex == element.RowFlexAlignment && row.IsWidthNotEnough) {
		justify(row, st.in.width-row.OffsetX)
	}
}

// justify 将行内剩余宽度平均分配到元素间隔，行首零宽字符不参与。
func justify(row *Row, avail float64) {
	start := 0
	if row.Elements[0].Element.IsZero() {
		start = 1
	}
	n := len(row.Elements) - start
	if n < 2 {
		return
	}
	gap := (avail - row.Width) / float64(n-1)
	if gap <= 0 {
		return
	}
	for k := start; k < len(row.Elements)-1; k++ {
		row.Elements[k].Metrics.Width += gap
		row.Elements[k].Gap = gap
	}
	row.Width = avail
}

// controlValueStart 返回上一行中控件值（非前缀）起始的横向偏移。
func controlValueStart(prev *Row, controlID string) float64 {
	x := prev.OffsetX
	for _, re := range prev.Elements {
		x += re.Left
		if re.Element.ControlID == controlID && re.Element.ControlComponent != element.ControlPrefix {
			return x
		}
		x += re.Metrics.Width
	}
	return prev.OffsetX
}
