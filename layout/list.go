package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/quire/element"
)

// listWidths 为每个列表计算序号列宽度：复选框列表为复选框宽 + 间距，
// 符号列表为固定宽度，数字列表按本列表项数的位数测量 "00." 这样最宽的序号。
func (p *pass) listWidths(list []*element.Element) map[string]float64 {
	out := make(map[string]float64)
	for i := 0; i < len(list); {
		el := list[i]
		if el.ListID == "" {
			i++
			continue
		}
		start, end := element.ListRun(list, i)
		var w float64
		switch ListStyleOf(el) {
		case element.ListCheckbox:
			w = p.opts.CheckboxSize + p.opts.ListGap
		case element.ListDecimal:
			count := 0
			for k := start; k < end; k++ {
				if list[k].IsZero() && !list[k].ListWrap {
					count++
				}
			}
			if count == 0 {
				count = 1
			}
			marker := strings.Repeat("0", len(strconv.Itoa(count))) + "."
			tm := p.opts.Measurer.Measure(marker, p.fontOf(list[start]))
			w = math.Ceil(tm.Width + p.opts.ListGap)
		default:
			w = p.opts.UncountedListWidth
		}
		if w > out[el.ListID] {
			out[el.ListID] = w
		}
		i = end
	}
	return out
}

// ListStyleOf 返回元素的列表样式：未指定时无序列表为 disc，有序列表为 decimal。
func ListStyleOf(el *element.Element) element.ListStyle {
	if el.ListStyle != "" {
		return el.ListStyle
	}
	if el.ListType == element.ListUnordered {
		return element.ListDisc
	}
	return element.ListDecimal
}

// ListMarker 渲染第 index 项（从 0 开始）的列表符号。
func ListMarker(el *element.Element, index int) string {
	switch ListStyleOf(el) {
	case element.ListDisc:
		return "•"
	case element.ListCircle:
		return "◦"
	case element.ListSquare:
		return "▪"
	case element.ListCheckbox:
		if el.Checkbox != nil && el.Checkbox.Value {
			return "☑"
		}
		return "☐"
	}
	return strconv.Itoa(index+1) + "."
}
