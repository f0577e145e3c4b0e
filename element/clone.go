package element

// CloneList 深拷贝整个元素序列，用作历史快照。
func CloneList(list []*Element) []*Element {
	if list == nil {
		return nil
	}
	out := make([]*Element, len(list))
	for i, el := range list {
		out[i] = Clone(el)
	}
	return out
}

// Clone 深拷贝单个元素（包括表格结构与单元格内容）。
func Clone(el *Element) *Element {
	if el == nil {
		return nil
	}
	c := *el
	if el.RowMargin != nil {
		v := *el.RowMargin
		c.RowMargin = &v
	}
	if el.FloatPosition != nil {
		fp := *el.FloatPosition
		c.FloatPosition = &fp
	}
	if el.Control != nil {
		ctl := *el.Control
		c.Control = &ctl
	}
	if el.Area != nil {
		a := *el.Area
		c.Area = &a
	}
	if el.GroupIDs != nil {
		c.GroupIDs = append([]string(nil), el.GroupIDs...)
	}
	if el.Checkbox != nil {
		cb := *el.Checkbox
		c.Checkbox = &cb
	}
	if el.Radio != nil {
		rd := *el.Radio
		c.Radio = &rd
	}
	if el.Block != nil {
		b := *el.Block
		c.Block = &b
	}
	if el.Table != nil {
		c.Table = CloneTable(el.Table)
	}
	return &c
}

func CloneTable(t *Table) *Table {
	out := &Table{
		Colgroup:    append([]float64(nil), t.Colgroup...),
		PagingID:    t.PagingID,
		PagingIndex: t.PagingIndex,
		Rows:        make([]*Tr, len(t.Rows)),
	}
	for i, tr := range t.Rows {
		out.Rows[i] = CloneTr(tr)
	}
	return out
}

func CloneTr(tr *Tr) *Tr {
	c := *tr
	c.Tds = make([]*Td, len(tr.Tds))
	for i, td := range tr.Tds {
		tdc := *td
		tdc.Value = CloneList(td.Value)
		c.Tds[i] = &tdc
	}
	return &c
}

// CloneStyle 复制文字样式与结构标识，不复制内容与表格。
func CloneStyle(el *Element) *Element {
	c := Clone(el)
	c.ID = ""
	c.Value = ""
	c.Table = nil
	c.Width, c.Height = 0, 0
	return c
}
