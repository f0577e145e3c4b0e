package layout

import (
	"fmt"

	"github.com/ByLCY/quire/element"
)

// 表格布局：列宽 → 单元格定位 → 单元格内递归分行 → 行高协调 → 几何回填。
// 行高直接写回 Tr.Height，重复排版会收敛到同一结果。

const maxReconcileRounds = 8

// layoutTable 计算表格子布局并登记到 p.tables。
func (p *pass) layoutTable(el *element.Element, avail float64) (*TableLayout, error) {
	tbl := el.Table
	widths := p.columnWidths(tbl, avail)
	if err := resolveCells(tbl, len(widths)); err != nil {
		return nil, opError("table", err)
	}
	pad := p.opts.TdPadding
	colX := make([]float64, len(widths)+1)
	for c, w := range widths {
		colX[c+1] = colX[c] + w
	}

	tl := &TableLayout{ColumnWidths: widths, Cells: make([][]*CellLayout, len(tbl.Rows))}
	for r, tr := range tbl.Rows {
		if tr.Height < tr.MinHeight {
			tr.Height = tr.MinHeight
		}
		tl.Cells[r] = make([]*CellLayout, len(tr.Tds))
		for d, td := range tr.Tds {
			_, cs := td.Spans()
			td.X = colX[td.ColIndex]
			td.Width = colX[td.ColIndex+cs] - td.X
			rows, err := p.composeRows(rowInput{
				list:  &td.Value,
				width: td.Width - pad[1] - pad[3],
			})
			if err != nil {
				return nil, err
			}
			content := pad[0] + pad[2]
			for _, row := range rows {
				content += row.Height + row.OffsetY
			}
			tl.Cells[r][d] = &CellLayout{Td: td, Rows: rows, ContentHeight: content}
		}
	}

	reconcileHeights(tbl, tl)

	y := 0.0
	rowY := make([]float64, len(tbl.Rows)+1)
	for r, tr := range tbl.Rows {
		rowY[r] = y
		y += tr.Height
	}
	rowY[len(tbl.Rows)] = y
	for _, tr := range tbl.Rows {
		for _, td := range tr.Tds {
			rs, _ := td.Spans()
			td.Y = rowY[td.RowIndex]
			td.Height = rowY[td.RowIndex+rs] - td.Y
		}
	}
	tl.Width = colX[len(widths)]
	tl.Height = y
	p.tables[el] = tl
	return tl, nil
}

// columnWidths 优先使用显式列宽（超出可用宽度时等比缩小），否则按推断的列数均分。
func (p *pass) columnWidths(tbl *element.Table, avail float64) []float64 {
	if len(tbl.Colgroup) > 0 {
		widths := append([]float64(nil), tbl.Colgroup...)
		total := tbl.Width()
		if total > avail && total > 0 {
			for c := range widths {
				widths[c] = widths[c] * avail / total
			}
		}
		return widths
	}
	n := tbl.ColumnCount()
	if n == 0 {
		return []float64{p.opts.MinTableWidth}
	}
	widths := make([]float64, n)
	for c := range widths {
		widths[c] = avail / float64(n)
	}
	return widths
}

// resolveCells 用占位网格为每个单元格确定行列索引：取本行第一个未被占用的列。
func resolveCells(tbl *element.Table, cols int) error {
	grid := make([][]bool, len(tbl.Rows))
	for r := range grid {
		grid[r] = make([]bool, cols)
	}
	for r, tr := range tbl.Rows {
		col := 0
		for d, td := range tr.Tds {
			rs, cs := td.Spans()
			for col < cols && grid[r][col] {
				col++
			}
			if col+cs > cols {
				return fmt.Errorf("第 %d 行第 %d 个单元格跨列超出列数 %d: %w", r, d, cols, ErrInconsistentTable)
			}
			if r+rs > len(tbl.Rows) {
				return fmt.Errorf("第 %d 行第 %d 个单元格跨行超出行数 %d: %w", r, d, len(tbl.Rows), ErrInconsistentTable)
			}
			for rr := r; rr < r+rs; rr++ {
				for cc := col; cc < col+cs; cc++ {
					if grid[rr][cc] {
						return fmt.Errorf("第 %d 行第 %d 个单元格与其他单元格重叠: %w", r, d, ErrInconsistentTable)
					}
					grid[rr][cc] = true
				}
			}
			td.RowIndex = r
			td.ColIndex = col
			col += cs
		}
	}
	return nil
}

// reconcileHeights 协调行高：内容超出时撑高最后一个跨越行；
// 再按单元格最后跨越行分组，减去组内最小的可回收高度，保证内容不被裁剪。
func reconcileHeights(tbl *element.Table, tl *TableLayout) {
	for round := 0; round < maxReconcileRounds; round++ {
		before := rowHeights(tbl)
		growRows(tbl, tl)
		shrinkRows(tbl, tl)
		growRows(tbl, tl)
		if equalHeights(before, rowHeights(tbl)) {
			return
		}
	}
}

func growRows(tbl *element.Table, tl *TableLayout) {
	for r, cells := range tl.Cells {
		for _, cell := range cells {
			rs, _ := cell.Td.Spans()
			spanned, _ := spanHeights(tbl, r, rs)
			if cell.ContentHeight > spanned {
				tbl.Rows[r+rs-1].Height += cell.ContentHeight - spanned
			}
		}
	}
}

func shrinkRows(tbl *element.Table, tl *TableLayout) {
	ending := make([][]*CellLayout, len(tbl.Rows))
	for r, cells := range tl.Cells {
		for _, cell := range cells {
			rs, _ := cell.Td.Spans()
			ending[r+rs-1] = append(ending[r+rs-1], cell)
		}
	}
	for t, cells := range ending {
		reduce, seen := 0.0, false
		for _, cell := range cells {
			rs, _ := cell.Td.Spans()
			actual, minimum := spanHeights(tbl, cell.Td.RowIndex, rs)
			floor := cell.ContentHeight
			if minimum > floor {
				floor = minimum
			}
			if cur := actual - floor; !seen || cur < reduce {
				reduce, seen = cur, true
			}
		}
		if reduce > 0 {
			tbl.Rows[t].Height -= reduce
		}
	}
}

// spanHeights 返回从 r 起 rs 行的实际高度与最小高度之和。
func spanHeights(tbl *element.Table, r, rs int) (actual, minimum float64) {
	for k := r; k < r+rs && k < len(tbl.Rows); k++ {
		actual += tbl.Rows[k].Height
		minimum += tbl.Rows[k].MinHeight
	}
	return actual, minimum
}

func rowHeights(tbl *element.Table) []float64 {
	out := make([]float64, len(tbl.Rows))
	for r, tr := range tbl.Rows {
		out[r] = tr.Height
	}
	return out
}

func equalHeights(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
