package layout

import (
	"math"

	"github.com/ByLCY/quire/element"
)

// placement 描述一组行的排布起点。
type placement struct {
	x, y       float64
	innerWidth float64
	pageNo     int
	zone       Zone
	// 单元格内的行记录所在表格的顶层下标与行列，顶层为 -1。
	tableIndex int
	trIndex    int
	tdIndex    int
}

// computePositions 逐页计算正文坐标，结果与元素序列一一对应。
func (p *pass) computePositions(pages [][]*Row, list []*element.Element) []*Position {
	out := make([]*Position, len(list))
	for pageNo, rows := range pages {
		p.placeRows(rows, out, placement{
			x:          p.opts.Margins[3],
			y:          p.mainTop,
			innerWidth: p.opts.InnerWidth(),
			pageNo:     pageNo,
			zone:       ZoneMain,
			tableIndex: -1,
		})
	}
	return out
}

// placeRows 按行排布坐标并写入 out[index]，返回最后一行底部的 y。
func (p *pass) placeRows(rows []*Row, out []*Position, pl placement) float64 {
	y := pl.y
	for rowNo, row := range rows {
		x := pl.x + row.OffsetX
		if !row.IsSurround {
			used := row.Width + row.OffsetX
			switch row.RowFlex {
			case element.RowFlexCenter:
				x += (pl.innerWidth - used) / 2
			case element.RowFlexRight:
				x += pl.innerWidth - used
			}
		}
		y += row.OffsetY
		single := len(row.Elements) == 1 && row.Elements[0].Element.IsZero()
		for j, re := range row.Elements {
			el := re.Element
			m := re.Metrics
			x += re.Left
			ascent := row.Ascent
			if (el.Type == element.TypeImage && el.ImageDisplay != element.ImageInline) || el.Type == element.TypeBlock {
				ascent = row.Ascent - m.Height
			}
			w := m.Width
			if single {
				w = math.Max(w, p.opts.MinSelectableWidth)
			}
			pos := &Position{
				Element:       el,
				PageNo:        pl.pageNo,
				RowNo:         rowNo,
				RowIndex:      row.RowIndex,
				Index:         re.Index,
				Value:         re.Value,
				Font:          re.Font,
				Metrics:       m,
				Left:          re.Left,
				Ascent:        ascent,
				LineHeight:    row.Height,
				Coordinate:    rect(x, y, w, row.Height),
				IsFirstLetter: j == 0,
				IsLastLetter:  j == len(row.Elements)-1,
			}
			if el.IsFloating() {
				pos.IsFloating = true
				if re.Index > 0 && out[re.Index-1] != nil {
					pos.Coordinate = out[re.Index-1].Coordinate
				}
				p.recordFloat(pos, pl, x, y)
			}
			if re.Index < len(out) {
				out[re.Index] = pos
			}
			if el.Type == element.TypeTable {
				p.placeTable(el, pos, pl)
			}
			x += m.Width
		}
		y += row.Height
	}
	return y
}

// recordFloat 登记浮动图片。未声明坐标时使用排版游标处的位置。
func (p *pass) recordFloat(pos *Position, pl placement, x, y float64) {
	el := pos.Element
	item := &FloatItem{
		Zone:       pl.zone,
		PageNo:     pl.pageNo,
		Index:      pos.Index,
		Element:    el,
		Position:   pos,
		TableIndex: pl.tableIndex,
		TrIndex:    pl.trIndex,
		TdIndex:    pl.tdIndex,
		X:          x,
		Y:          y,
		Width:      el.Width,
		Height:     el.Height,
	}
	if fp := el.FloatPosition; fp != nil {
		item.X, item.Y = fp.X, fp.Y
		if pl.zone == ZoneMain && pl.tableIndex < 0 {
			item.PageNo = fp.PageNo
		}
	}
	p.floats = append(p.floats, item)
}

// placeTable 递归计算表格各单元格内元素的坐标，并处理单元格垂直对齐。
func (p *pass) placeTable(el *element.Element, pos *Position, pl placement) {
	tl := p.tables[el]
	if tl == nil {
		return
	}
	pad := p.opts.TdPadding
	origin := pos.Coordinate.LeftTop
	tableIndex := pl.tableIndex
	if tableIndex < 0 {
		tableIndex = pos.Index
	}
	for tr, cells := range tl.Cells {
		for td, cell := range cells {
			c := cell.Td
			cell.Positions = make([]*Position, len(c.Value))
			y := origin.Y + c.Y + pad[0]
			if slack := c.Height - cell.ContentHeight; slack > 0 {
				switch c.VerticalAlign {
				case element.VerticalMiddle:
					y += slack / 2
				case element.VerticalBottom:
					y += slack
				}
			}
			p.placeRows(cell.Rows, cell.Positions, placement{
				x:          origin.X + c.X + pad[3],
				y:          y,
				innerWidth: c.Width - pad[1] - pad[3],
				pageNo:     pl.pageNo,
				zone:       pl.zone,
				tableIndex: tableIndex,
				trIndex:    tr,
				tdIndex:    td,
			})
		}
	}
}
