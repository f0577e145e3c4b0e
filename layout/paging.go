package layout

// paginate 把行分配到页面。分页模式下从页边距与页眉页脚占用高度开始累加
// row.Height + row.OffsetY，超出页高或上一行是分页符时换页；连续模式只有一页。
// 配置了 MaxPageNo 时，返回第一个将要开启超限页的行的起始下标，否则返回 -1。
func (p *pass) paginate(rows []*Row) ([][]*Row, int) {
	if len(rows) == 0 {
		return [][]*Row{{}}, -1
	}
	if p.opts.Mode == ModeContinuous {
		return [][]*Row{rows}, -1
	}
	pg := p.newPager()
	pages := [][]*Row{{}}
	for i, row := range rows {
		prevBreak := i > 0 && rows[i-1].IsPageBreak
		if pg.place(row, prevBreak) {
			if p.opts.MaxPageNo > 0 && len(pages) >= p.opts.MaxPageNo {
				return pages, row.StartIndex
			}
			pages = append(pages, nil)
		}
		pages[len(pages)-1] = append(pages[len(pages)-1], row)
	}
	return pages, -1
}
