package layout

import (
	"fmt"
	"slices"

	"github.com/ByLCY/quire/element"
)

// mergePagedTables 把上一次排版拆出的续表合并回原表格（丢弃续表顶部重复的表头行），
// 保证每次排版都从未拆分的内容模型开始。合并写入副本，输入序列保持不变。
func mergePagedTables(list []*element.Element) []*element.Element {
	out := make([]*element.Element, 0, len(list))
	for i := 0; i < len(list); i++ {
		el := list[i]
		if el.Type == element.TypeTable && el.Table != nil && el.Table.PagingID != "" &&
			i+1 < len(list) && samePaging(el, list[i+1]) {
			el = detachTable(el)
			for i+1 < len(list) && samePaging(el, list[i+1]) {
				for _, tr := range list[i+1].Table.Rows {
					if !tr.PagingRepeat {
						el.Table.Rows = append(el.Table.Rows, tr)
					}
				}
				i++
			}
		}
		out = append(out, el)
	}
	return out
}

// detachTable 复制表格元素及其行序列，行与单元格仍与原元素共享。
func detachTable(el *element.Element) *element.Element {
	c := *el
	t := *el.Table
	t.Rows = slices.Clone(el.Table.Rows)
	c.Table = &t
	return &c
}

func samePaging(a, b *element.Element) bool {
	return b.Type == element.TypeTable && b.Table != nil && b.Table.PagingID == a.Table.PagingID
}

// splitTable 在分页模式下检查表格是否超出当前页剩余高度，超出时在不被跨行单元格
// 穿过的行边界处拆分：溢出的行移入紧随其后的续表，续表顶部复制重复表头行。
// 拆分后的表头部分是新元素，替换序列中的原表格并一同返回。
func (p *pass) splitTable(st *rowState, i int, el *element.Element, tl *TableLayout, avail, margin float64) (*element.Element, *TableLayout, error) {
	tbl := el.Table
	if len(tbl.Rows) < 2 || st.pageRows == nil {
		return el, tl, nil
	}
	pg := *st.pageRows
	if st.cur != nil {
		n := len(st.rows)
		pg.place(st.cur, n > 1 && st.rows[n-2].IsPageBreak)
		if st.cur.IsPageBreak {
			pg.used = pg.outer
		}
	}
	used := pg.used
	if used+tbl.Rows[0].Height+margin > pg.height || (tbl.PagingIndex > 0 && tbl.Rows[0].PagingRepeat) {
		used = pg.outer
	}
	if used+tl.Height+margin <= pg.height {
		return el, tl, nil
	}

	at, acc := 0, 0.0
	for r, tr := range tbl.Rows {
		if used+margin+acc+tr.Height > pg.height {
			break
		}
		acc += tr.Height
		at = r + 1
	}
	at = cleanBoundary(tbl, at)
	if at <= 0 || at >= len(tbl.Rows) {
		return el, tl, nil
	}

	head := detachTable(el)
	tbl = head.Table
	overflow := slices.Clone(tbl.Rows[at:])
	tbl.Rows = slices.Clone(tbl.Rows[:at])
	if tbl.PagingID == "" {
		tbl.PagingID = newID("paging-")
	}
	next := tbl.PagingIndex + 1
	var repeat []*element.Tr
	for _, tr := range tbl.Rows {
		if tr.PagingRepeat {
			c := element.CloneTr(tr)
			c.ID = fmt.Sprintf("%s-%d-r%d", tbl.PagingID, next, len(repeat))
			repeat = append(repeat, c)
		}
	}
	cont := element.Clone(head)
	cont.ID = fmt.Sprintf("%s-%d", tbl.PagingID, next)
	cont.Table.PagingID = tbl.PagingID
	cont.Table.PagingIndex = next
	cont.Table.Rows = append(repeat, overflow...)
	(*st.in.list)[i] = head
	*st.in.list = slices.Insert(*st.in.list, i+1, cont)
	if st.words != nil {
		st.words = wordUnits(*st.in.list)
	}
	delete(p.tables, el)
	p.log.Debug("表格跨页拆分", "pagingId", tbl.PagingID, "index", next, "keep", at, "moved", len(overflow))

	tl, err := p.layoutTable(head, avail)
	return head, tl, err
}

// cleanBoundary 返回不大于 at 且不被跨行单元格穿过的最近行边界，没有则返回 0。
func cleanBoundary(tbl *element.Table, at int) int {
	for ; at > 0; at-- {
		if !crossedBySpan(tbl, at) {
			return at
		}
	}
	return 0
}

func crossedBySpan(tbl *element.Table, boundary int) bool {
	for r := 0; r < boundary && r < len(tbl.Rows); r++ {
		for _, td := range tbl.Rows[r].Tds {
			rs, _ := td.Spans()
			if r+rs > boundary {
				return true
			}
		}
	}
	return false
}
