package layout

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/quire/element"
)

// 测试统一使用 FixedMeasurer：16px 半角字符宽 8，零宽哨兵行高 35.2，普通文字行高 32。
const zeroRowHeight = 35.2

func testOptions() Options {
	opts := DefaultOptions()
	opts.Measurer = FixedMeasurer{}
	return opts
}

func paragraph(s string) []*element.Element {
	return element.EnsureSentinel(element.FromString(s, nil))
}

func zeros(n int) []*element.Element {
	out := make([]*element.Element, n)
	for i := range out {
		out[i] = element.Zero()
	}
	return out
}

func compute(t *testing.T, main []*element.Element, opts Options) *Result {
	t.Helper()
	res, err := Compute(Content{Main: main}, opts)
	require.NoError(t, err)
	return res
}

func coordinates(res *Result) []Coordinate {
	out := make([]Coordinate, len(res.Positions))
	for i, pos := range res.Positions {
		if pos != nil {
			out[i] = pos.Coordinate
		}
	}
	return out
}

func TestComputeErrors(t *testing.T) {
	_, err := Compute(Content{Main: paragraph("a")}, DefaultOptions())
	assert.True(t, errors.Is(err, ErrNoMeasurer))
	var le *LayoutError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "compute", le.Op)

	_, err = Compute(Content{}, testOptions())
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestComposeRowsConservesWidth(t *testing.T) {
	opts := testOptions()
	opts.WordBreak = WordBreakAll
	main := paragraph(strings.Repeat("a", 100))
	res := compute(t, main, opts)

	require.Len(t, res.Rows, 2)
	assert.Len(t, res.Rows[0].Elements, 70, "sentinel plus 69 glyphs fill 552 of 554px")
	assert.Equal(t, 70, res.Rows[1].StartIndex)
	assert.True(t, res.Rows[0].IsWidthNotEnough)

	total, sum := 0.0, 0.0
	next := 0
	for _, row := range res.Rows {
		assert.Equal(t, next, row.StartIndex, "rows cover the sequence without gaps")
		next = row.EndIndex()
		assert.LessOrEqual(t, row.Width, opts.InnerWidth())
		total += row.Width
	}
	assert.Equal(t, len(main), next)
	for _, pos := range res.Positions {
		sum += pos.Metrics.Width
	}
	assert.InDelta(t, sum, total, 1e-9)
}

func TestWordBreak(t *testing.T) {
	opts := testOptions()
	opts.Width = 320 // 正文宽 80，可容纳 10 个字符

	res := compute(t, paragraph("hello world"), opts)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 7, res.Rows[1].StartIndex, "break-word moves the whole word")

	opts.WordBreak = WordBreakAll
	res = compute(t, paragraph("hello world"), opts)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 11, res.Rows[1].StartIndex, "break-all splits inside the word")
}

func TestPaginationConservesRows(t *testing.T) {
	res := compute(t, zeros(60), testOptions())

	require.Equal(t, 3, res.PageCount())
	assert.Len(t, res.Pages[0], 26)
	assert.Len(t, res.Pages[1], 26)
	assert.Len(t, res.Pages[2], 8)

	var flat []*Row
	for pageNo, rows := range res.Pages {
		used := 0.0
		for _, row := range rows {
			used += row.Height + row.OffsetY
			for _, re := range row.Elements {
				assert.Equal(t, pageNo, res.Positions[re.Index].PageNo)
			}
		}
		assert.LessOrEqual(t, used, res.MainBottom()-res.MainTop())
		flat = append(flat, rows...)
	}
	assert.Equal(t, res.Rows, flat, "every row lands on exactly one page in order")
	assert.InDelta(t, res.MainTop(), res.Positions[26].Coordinate.LeftTop.Y, 1e-9)
}

func TestPageBreak(t *testing.T) {
	main := paragraph("a")
	main = append(main, &element.Element{Type: element.TypePageBreak, Value: "\n"}, element.Text("b"))
	res := compute(t, main, testOptions())

	require.Equal(t, 2, res.PageCount())
	assert.Equal(t, 0, res.Positions[2].PageNo)
	assert.Equal(t, 1, res.Positions[3].PageNo)
	assert.True(t, res.Rows[1].IsPageBreak)
}

func TestSurroundAfterPageBreak(t *testing.T) {
	img := &element.Element{
		Type: element.TypeImage, Value: "logo.png", Width: 100, Height: 100,
		ImageDisplay: element.ImageSurround, FloatPosition: &element.FloatPosition{X: 120, Y: 100, PageNo: 1},
	}
	main := paragraph("a")
	main = append(main, &element.Element{Type: element.TypePageBreak, Value: "\n"}, element.Text("b"), img)
	res := compute(t, main, testOptions())

	b := res.Positions[3]
	require.Equal(t, 1, b.PageNo)
	assert.Equal(t, 100.0, b.Left, "the row after a page break avoids images on the new page")
	assert.InDelta(t, 220, b.Coordinate.LeftTop.X, 1e-9)
	assert.Equal(t, 0.0, res.Positions[1].Left, "images on the next page do not shift the first page")
}

func TestMaxPageTruncation(t *testing.T) {
	opts := testOptions()
	opts.MaxPageNo = 2
	res := compute(t, zeros(60), opts)

	assert.Equal(t, 2, res.PageCount())
	assert.Equal(t, 8, res.Truncated)
	assert.Len(t, res.Elements, 52)
	assert.Len(t, res.Positions, 52)
}

func TestContinuousMode(t *testing.T) {
	opts := testOptions()
	opts.Mode = ModeContinuous
	res := compute(t, zeros(60), opts)

	assert.Equal(t, 1, res.PageCount())
	assert.InDelta(t, 60*zeroRowHeight+200, res.Height, 1e-6)
	assert.Equal(t, 0, res.Positions[59].PageNo)
}

func TestComputeIsIdempotent(t *testing.T) {
	main := paragraph(strings.Repeat("layout engine ", 40))
	tbl := element.NewTable(3, 2, 40)
	tbl.Table.Rows[1].Tds[0].Value = append(tbl.Table.Rows[1].Tds[0].Value, element.FromString("cell text", nil)...)
	main = append(main, tbl)
	main = append(main, element.FromString("\ntail", nil)...)

	doc := NewDocument(main, testOptions())
	first, err := doc.Compute()
	require.NoError(t, err)
	second, err := doc.Compute()
	require.NoError(t, err)

	assert.Equal(t, coordinates(first), coordinates(second))
	assert.Equal(t, first.PageCount(), second.PageCount())
	assert.Equal(t, first.Tables[tbl].Height, second.Tables[tbl].Height)

	// 直接调用 Compute 两次，跨页拆分的表格不影响第二次结果
	bare := append(paragraph("x"), element.NewTable(40, 2, 40))
	a := compute(t, bare, testOptions())
	b := compute(t, bare, testOptions())
	require.Greater(t, a.PageCount(), 1)
	assert.Equal(t, a.PageCount(), b.PageCount())
	assert.Equal(t, len(a.Elements), len(b.Elements))
	assert.Equal(t, coordinates(a), coordinates(b))
}

func TestRowFlex(t *testing.T) {
	opts := testOptions()
	centered := paragraph("ab")
	for _, el := range centered {
		el.RowFlex = element.RowFlexCenter
	}
	res := compute(t, centered, opts)
	assert.InDelta(t, 120+(554-16)/2.0, res.Positions[1].Coordinate.LeftTop.X, 1e-9)

	justified := paragraph(strings.Repeat("ab ", 40))
	for _, el := range justified {
		el.RowFlex = element.RowFlexJustify
	}
	res = compute(t, justified, opts)
	require.Greater(t, len(res.Rows), 1)
	assert.InDelta(t, opts.InnerWidth(), res.Rows[0].Width, 1e-6)
	last := res.Rows[0].Elements[len(res.Rows[0].Elements)-1]
	assert.InDelta(t, 120+opts.InnerWidth(), res.Positions[last.Index].Coordinate.RightTop.X, 1e-6)
}

func TestSurroundShift(t *testing.T) {
	img := &element.Element{
		Type:          element.TypeImage,
		Value:         "logo.png",
		Width:         100,
		Height:        100,
		ImageDisplay:  element.ImageSurround,
		FloatPosition: &element.FloatPosition{X: 120, Y: 100},
	}
	main := append([]*element.Element{element.Zero(), img}, element.FromString("abc", nil)...)
	res := compute(t, main, testOptions())

	a := res.Positions[2]
	assert.Equal(t, 100.0, a.Left)
	assert.InDelta(t, 220, a.Coordinate.LeftTop.X, 1e-9)
	assert.True(t, res.Rows[0].IsSurround)
	assert.InDelta(t, 228, res.Positions[3].Coordinate.LeftTop.X, 1e-9)

	require.Len(t, res.Floats, 1)
	f := res.Floats[0]
	assert.Equal(t, 1, f.Index)
	assert.Equal(t, 120.0, f.X)
	assert.Equal(t, 100.0, f.Y)
	assert.True(t, res.Positions[1].IsFloating)
}

func TestElementMetrics(t *testing.T) {
	control := &element.Control{MinWidth: 100}
	main := element.EnsureSentinel([]*element.Element{
		{Value: "s", Type: element.TypeSuperscript},
		{Value: "h", Hide: true},
		{Type: element.TypeCheckbox, Value: "", Checkbox: &element.Checkbox{}},
		{Type: element.TypeTab, Value: "\t"},
		{Value: "x", ControlID: "c1", Control: control, ControlComponent: element.ControlValue},
		{Value: "y", ControlID: "c1", Control: control, ControlComponent: element.ControlValue},
	})
	res := compute(t, main, testOptions())

	assert.Equal(t, 10.0, res.Positions[1].Font.Size, "superscript uses 0.6 of the font size")
	assert.Zero(t, res.Positions[2].Metrics.Width, "hidden elements take no width")
	assert.Equal(t, 24.0, res.Positions[3].Metrics.Width)
	assert.Equal(t, 32.0, res.Positions[4].Metrics.Width)
	assert.InDelta(t, 100, res.Positions[5].Metrics.Width+res.Positions[6].Metrics.Width, 1e-9)
}

func TestAreaOffset(t *testing.T) {
	area := &element.Area{Top: 10}
	main := []*element.Element{
		element.Zero(),
		{Value: element.ZeroWidth, AreaID: "a1", Area: area},
		{Value: "b", AreaID: "a1", Area: area},
	}
	res := compute(t, main, testOptions())
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 10.0, res.Rows[1].OffsetY)
	// 区域前的空行压缩为基础行间距
	assert.Equal(t, 8.0, res.Rows[0].Height)
	assert.InDelta(t, 100+8+10, res.Positions[2].Coordinate.LeftTop.Y, 1e-9)
}

func TestHeaderFooterZones(t *testing.T) {
	opts := testOptions()
	content := Content{
		Main:   paragraph("body"),
		Header: element.EnsureSentinel(zeros(4)),
		Footer: paragraph("footer"),
	}
	res, err := Compute(content, opts)
	require.NoError(t, err)

	require.NotNil(t, res.Header)
	assert.InDelta(t, 4*zeroRowHeight, res.Header.Height, 1e-9)
	assert.InDelta(t, 30+4*zeroRowHeight-100, res.Header.Extra, 1e-9)
	assert.InDelta(t, res.Header.Bottom(), res.MainTop(), 1e-9)
	assert.InDelta(t, res.MainTop(), res.Positions[0].Coordinate.LeftTop.Y, 1e-9)

	require.NotNil(t, res.Footer)
	assert.Zero(t, res.Footer.Extra)
	assert.InDelta(t, 1123-30-zeroRowHeight, res.Footer.Top, 1e-9)
	require.Len(t, res.Footer.Positions, 7)
	assert.InDelta(t, res.Footer.Top, res.Footer.Positions[1].Coordinate.LeftTop.Y, 1e-9)
}
