package element

// Table 为表格元素的结构：行 → 单元格 → 元素序列。
type Table struct {
	Colgroup []float64 `json:"colgroup,omitempty"`
	Rows     []*Tr     `json:"trList"`
	// PagingID 连接同一张源表格拆分出的所有分页表格。
	PagingID    string `json:"pagingId,omitempty"`
	PagingIndex int    `json:"pagingIndex,omitempty"`
}

// Tr 为表格行。
type Tr struct {
	ID        string  `json:"id,omitempty"`
	Height    float64 `json:"height"`
	MinHeight float64 `json:"minHeight,omitempty"`
	// PagingRepeat 的行在每个分页表格顶部重复出现。
	PagingRepeat bool  `json:"pagingRepeat,omitempty"`
	Tds          []*Td `json:"tdList"`
}

// Td 为单元格，布局阶段会回填行列索引与几何信息（相对表格左上角）。
type Td struct {
	ID            string        `json:"id,omitempty"`
	Colspan       int           `json:"colspan"`
	Rowspan       int           `json:"rowspan"`
	VerticalAlign VerticalAlign `json:"verticalAlign,omitempty"`
	Value         []*Element    `json:"value"`

	RowIndex int     `json:"-"`
	ColIndex int     `json:"-"`
	X        float64 `json:"-"`
	Y        float64 `json:"-"`
	Width    float64 `json:"-"`
	Height   float64 `json:"-"`
}

// Spans 返回规范化后的跨行跨列数（至少为 1）。
func (td *Td) Spans() (rowspan, colspan int) {
	rowspan, colspan = td.Rowspan, td.Colspan
	if rowspan < 1 {
		rowspan = 1
	}
	if colspan < 1 {
		colspan = 1
	}
	return rowspan, colspan
}

// ColumnCount 推断列数：显式列宽优先，否则取各行 colspan 之和的最大值。
func (t *Table) ColumnCount() int {
	if len(t.Colgroup) > 0 {
		return len(t.Colgroup)
	}
	max := 0
	for _, tr := range t.Rows {
		sum := 0
		for _, td := range tr.Tds {
			_, cs := td.Spans()
			sum += cs
		}
		if sum > max {
			max = sum
		}
	}
	return max
}

// Height 返回所有行高之和。
func (t *Table) Height() float64 {
	h := 0.0
	for _, tr := range t.Rows {
		h += tr.Height
	}
	return h
}

// Width 返回列宽之和。
func (t *Table) Width() float64 {
	w := 0.0
	for _, c := range t.Colgroup {
		w += c
	}
	return w
}

// NewTable 创建 rows×cols 的空表格，每个单元格以零宽哨兵开头。
func NewTable(rows, cols int, rowHeight float64) *Element {
	tbl := &Table{}
	for r := 0; r < rows; r++ {
		tr := &Tr{Height: rowHeight, MinHeight: rowHeight}
		for c := 0; c < cols; c++ {
			tr.Tds = append(tr.Tds, &Td{Colspan: 1, Rowspan: 1, Value: []*Element{Zero()}})
		}
		tbl.Rows = append(tbl.Rows, tr)
	}
	return &Element{Type: TypeTable, Table: tbl}
}
