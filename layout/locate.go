package layout

import "github.com/ByLCY/quire/element"

// Hit 为坐标反查结果。Index 为 -1 表示未命中元素（区域切换或单元格外）。
type Hit struct {
	Index       int  `json:"index"`
	IsDirectHit bool `json:"isDirectHit,omitempty"`
	IsImage     bool `json:"isImage,omitempty"`
	IsCheckbox  bool `json:"isCheckbox,omitempty"`

	// IsTable 时 Index 为单元格内序列的下标，TableIndex 为表格在顶层序列中的下标。
	IsTable    bool `json:"isTable,omitempty"`
	TableIndex int  `json:"tableIndex,omitempty"`
	TrIndex    int  `json:"trIndex,omitempty"`
	TdIndex    int  `json:"tdIndex,omitempty"`

	Zone        Zone `json:"zone"`
	ZoneChanged bool `json:"zoneChanged,omitempty"`
}

// Locate 将页面坐标反查为元素下标。顺序：浮于文字上方/环绕图片 → 文字流命中
// （表格递归进入单元格）→ 浮于文字下方图片 → 页眉页脚区域切换 → 最近行兜底。
func (r *Result) Locate(x, y float64, pageNo int, zone Zone) Hit {
	if zone == "" {
		zone = ZoneMain
	}
	positions := r.zonePositions(zone, pageNo)

	if h, ok := r.hitFloat(x, y, pageNo, zone, element.ImageFloatTop, element.ImageSurround); ok {
		return h
	}
	if h, ok := r.hitFlow(positions, x, y); ok {
		h.Zone = zone
		return h
	}
	if h, ok := r.hitFloat(x, y, pageNo, zone, element.ImageFloatBottom); ok {
		return h
	}

	headerBottom, footerTop := 0.0, r.Height
	if r.Header != nil {
		headerBottom = r.Header.Bottom()
	}
	if r.Footer != nil {
		footerTop = r.Footer.Top
	}
	switch zone {
	case ZoneMain:
		if r.Header != nil && y < headerBottom {
			return Hit{Index: -1, Zone: ZoneHeader, ZoneChanged: true}
		}
		if r.Footer != nil && y > footerTop {
			return Hit{Index: -1, Zone: ZoneFooter, ZoneChanged: true}
		}
	default:
		if y >= headerBottom && y <= footerTop {
			return Hit{Index: -1, Zone: ZoneMain, ZoneChanged: true}
		}
	}

	if len(positions) == 0 {
		return Hit{Index: r.lastIndexBefore(pageNo), Zone: zone}
	}
	h := r.nearestRow(positions, x, y)
	h.Zone = zone
	return h
}

func (r *Result) zonePositions(zone Zone, pageNo int) []*Position {
	switch zone {
	case ZoneHeader:
		if r.Header != nil {
			return r.Header.Positions
		}
		return nil
	case ZoneFooter:
		if r.Footer != nil {
			return r.Footer.Positions
		}
		return nil
	}
	return r.PagePositions(pageNo)
}

func (r *Result) hitFloat(x, y float64, pageNo int, zone Zone, modes ...element.ImageDisplay) (Hit, bool) {
	for _, f := range r.Floats {
		if f.Zone != zone || (zone == ZoneMain && f.PageNo != pageNo) {
			continue
		}
		match := false
		for _, m := range modes {
			if f.Element.ImageDisplay == m {
				match = true
			}
		}
		if !match || !f.Contains(x, y) {
			continue
		}
		h := Hit{Index: f.Index, IsDirectHit: true, IsImage: true, Zone: zone}
		if f.TableIndex >= 0 {
			h.IsTable = true
			h.TableIndex, h.TrIndex, h.TdIndex = f.TableIndex, f.TrIndex, f.TdIndex
		}
		return h, true
	}
	return Hit{}, false
}

// hitFlow 扫描文字流坐标，命中后按字符中点判断光标落在字符前还是字符后。
func (r *Result) hitFlow(positions []*Position, x, y float64) (Hit, bool) {
	for _, pos := range positions {
		if pos == nil || pos.IsFloating {
			continue
		}
		c := pos.Coordinate
		el := pos.Element
		// 隐藏元素宽度为零，不可选中，光标落在它前一个元素之后
		if el.Hidden() && c.RightTop.X <= c.LeftTop.X {
			continue
		}
		if x < c.LeftTop.X-pos.Left || x > c.RightTop.X || y < c.LeftTop.Y || y > c.LeftBottom.Y {
			continue
		}
		switch el.Type {
		case element.TypeTable:
			return r.locateCell(pos, x, y), true
		case element.TypeImage:
			return Hit{Index: pos.Index, IsDirectHit: true, IsImage: true}, true
		case element.TypeCheckbox, element.TypeRadio:
			return Hit{Index: pos.Index, IsDirectHit: true, IsCheckbox: true}, true
		}
		idx := pos.Index
		if !el.IsZero() && x < c.LeftTop.X+(c.RightTop.X-c.LeftTop.X)/2 {
			idx--
		}
		return Hit{Index: idx, IsDirectHit: true}, true
	}
	return Hit{}, false
}

// locateCell 在表格内查找包含坐标的单元格并在其中反查，单元格外返回 -1。
func (r *Result) locateCell(pos *Position, x, y float64) Hit {
	miss := Hit{Index: -1, IsTable: true, TableIndex: pos.Index}
	tl := r.Tables[pos.Element]
	if tl == nil {
		return miss
	}
	origin := pos.Coordinate.LeftTop
	for tr, cells := range tl.Cells {
		for td, cell := range cells {
			c := cell.Td
			left, top := origin.X+c.X, origin.Y+c.Y
			if x < left || x > left+c.Width || y < top || y > top+c.Height {
				continue
			}
			var h Hit
			if hit, ok := r.hitFlow(cell.Positions, x, y); ok {
				h = hit
			} else if len(cell.Positions) > 0 {
				h = r.nearestRow(cell.Positions, x, y)
			} else {
				h = Hit{Index: -1}
			}
			if !h.IsTable {
				h.IsTable = true
				h.TableIndex, h.TrIndex, h.TdIndex = pos.Index, tr, td
			}
			return h
		}
	}
	return miss
}

// nearestRow 在没有直接命中时取纵向所在行：行首左侧落到上一行末尾（空行取行首），
// 否则落到行尾。首行上方按首行处理，其余按最后一行处理。
func (r *Result) nearestRow(positions []*Position, x, y float64) Hit {
	var first *Position
	for _, pos := range positions {
		if pos != nil {
			first = pos
			break
		}
	}
	if first == nil {
		return Hit{Index: -1}
	}
	band := -1
	for i, pos := range positions {
		if pos == nil || !pos.IsLastLetter {
			continue
		}
		c := pos.Coordinate
		if y > c.LeftTop.Y && y <= c.LeftBottom.Y {
			band = i
			break
		}
	}
	if band < 0 {
		if y <= first.Coordinate.LeftTop.Y {
			band = rowTail(positions, 0)
		} else {
			band = rowTail(positions, len(positions)-1)
		}
	}
	tail := positions[band]
	head := rowHead(positions, band)
	if x < head.Coordinate.LeftTop.X {
		if head.Element.IsZero() {
			return Hit{Index: head.Index}
		}
		return Hit{Index: head.Index - 1}
	}
	return Hit{Index: tail.Index}
}

// rowHead 返回 positions[i] 所在行的第一个坐标。
func rowHead(positions []*Position, i int) *Position {
	for ; i > 0; i-- {
		if positions[i] != nil && positions[i].IsFirstLetter {
			return positions[i]
		}
	}
	return positions[0]
}

// rowTail 返回 positions[i] 所在行最后一个坐标的下标。
func rowTail(positions []*Position, i int) int {
	for ; i < len(positions)-1; i++ {
		if positions[i] != nil && positions[i].IsLastLetter {
			return i
		}
	}
	return i
}

// lastIndexBefore 返回 pageNo 之前各页的最后一个元素下标。
func (r *Result) lastIndexBefore(pageNo int) int {
	idx := 0
	for _, pos := range r.Positions {
		if pos != nil && pos.PageNo < pageNo && pos.Index > idx {
			idx = pos.Index
		}
	}
	return idx
}
