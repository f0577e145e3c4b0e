package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/quire/element"
)

func TestLocateRoundTrip(t *testing.T) {
	opts := testOptions()
	opts.WordBreak = WordBreakAll
	res := compute(t, paragraph(strings.Repeat("quire", 30)), opts)
	require.Greater(t, len(res.Rows), 1)

	for i, pos := range res.Positions {
		if i == 0 {
			continue
		}
		c := pos.Coordinate
		y := c.Center().Y
		w := c.RightTop.X - c.LeftTop.X

		right := res.Locate(c.LeftTop.X+0.75*w, y, pos.PageNo, ZoneMain)
		assert.Equal(t, i, right.Index, "right half of element %d", i)
		assert.True(t, right.IsDirectHit)
		assert.Equal(t, ZoneMain, right.Zone)

		left := res.Locate(c.LeftTop.X+0.25*w, y, pos.PageNo, ZoneMain)
		assert.Equal(t, i-1, left.Index, "left half of element %d", i)
	}
}

func TestLocateNearestRow(t *testing.T) {
	opts := testOptions()
	opts.WordBreak = WordBreakAll
	res := compute(t, paragraph(strings.Repeat("a", 100)), opts)
	require.Len(t, res.Rows, 2)

	first := res.Positions[1].Coordinate.Center().Y
	second := res.Positions[80].Coordinate.Center().Y

	assert.Equal(t, 69, res.Locate(700, first, 0, "").Index, "right of a row lands on its tail")
	assert.Equal(t, 0, res.Locate(50, first, 0, ZoneMain).Index, "left of a paragraph row lands on the sentinel")
	assert.Equal(t, 69, res.Locate(50, second, 0, ZoneMain).Index, "left of a wrapped row lands on the previous tail")
	assert.Equal(t, 100, res.Locate(300, 900, 0, ZoneMain).Index, "below the content lands on the last element")
	assert.Equal(t, 69, res.Locate(700, 20, 0, ZoneMain).Index, "above the content uses the first row")
	assert.Equal(t, 100, res.Locate(300, 300, 4, ZoneMain).Index, "empty pages fall back to the last element before them")
}

func TestLocateTableCell(t *testing.T) {
	opts := testOptions()
	opts.Width = 540
	tbl := element.NewTable(2, 3, 50)
	tbl.Table.Rows[1].Tds[2].Value = append(tbl.Table.Rows[1].Tds[2].Value, element.Text("x"))
	res := compute(t, []*element.Element{element.Zero(), tbl}, opts)
	origin := res.Positions[1].Coordinate.LeftTop

	h := res.Locate(origin.X+150, origin.Y+20, 0, ZoneMain)
	assert.True(t, h.IsTable)
	assert.Equal(t, 1, h.TableIndex)
	assert.Equal(t, 0, h.TrIndex)
	assert.Equal(t, 1, h.TdIndex)
	assert.Equal(t, 0, h.Index)

	cell := res.Tables[tbl].Cells[1][2]
	x := cell.Positions[1].Coordinate
	h = res.Locate(x.LeftTop.X+6, x.Center().Y, 0, ZoneMain)
	assert.True(t, h.IsTable)
	assert.True(t, h.IsDirectHit)
	assert.Equal(t, 1, h.TrIndex)
	assert.Equal(t, 2, h.TdIndex)
	assert.Equal(t, 1, h.Index)
}

func TestLocateZones(t *testing.T) {
	content := Content{
		Main:   paragraph("body"),
		Header: paragraph("H"),
		Footer: paragraph("F"),
	}
	res, err := Compute(content, testOptions())
	require.NoError(t, err)

	h := res.Locate(400, 40, 0, ZoneMain)
	assert.True(t, h.ZoneChanged)
	assert.Equal(t, ZoneHeader, h.Zone)
	assert.Equal(t, -1, h.Index)

	h = res.Locate(400, 1100, 0, ZoneMain)
	assert.True(t, h.ZoneChanged)
	assert.Equal(t, ZoneFooter, h.Zone)

	h = res.Locate(400, 500, 3, ZoneHeader)
	assert.True(t, h.ZoneChanged)
	assert.Equal(t, ZoneMain, h.Zone)

	hc := res.Header.Positions[1].Coordinate
	h = res.Locate(hc.LeftTop.X+6, hc.Center().Y, 2, ZoneHeader)
	assert.False(t, h.ZoneChanged)
	assert.Equal(t, ZoneHeader, h.Zone)
	assert.Equal(t, 1, h.Index)
}

func TestLocateFloatingImages(t *testing.T) {
	img := func(display element.ImageDisplay, x, y float64) *element.Element {
		return &element.Element{
			Type: element.TypeImage, Value: "img.png", Width: 50, Height: 50,
			ImageDisplay: display, FloatPosition: &element.FloatPosition{X: x, Y: y},
		}
	}
	main := element.EnsureSentinel([]*element.Element{
		element.Text("a"),
		img(element.ImageFloatTop, 120, 100),
		img(element.ImageFloatBottom, 400, 400),
	})
	res := compute(t, main, testOptions())
	require.Len(t, res.Floats, 2)

	h := res.Locate(125, 110, 0, ZoneMain)
	assert.True(t, h.IsImage)
	assert.Equal(t, 2, h.Index, "images above the text win over the text below them")

	h = res.Locate(420, 420, 0, ZoneMain)
	assert.True(t, h.IsImage)
	assert.Equal(t, 3, h.Index)

	h = res.Locate(420, 420, 1, ZoneMain)
	assert.False(t, h.IsImage, "floats only hit on their own page")
}

func TestLocateCheckbox(t *testing.T) {
	main := element.EnsureSentinel([]*element.Element{
		{Type: element.TypeCheckbox, Checkbox: &element.Checkbox{}},
	})
	res := compute(t, main, testOptions())
	c := res.Positions[1].Coordinate.Center()
	h := res.Locate(c.X, c.Y, 0, ZoneMain)
	assert.True(t, h.IsCheckbox)
	assert.Equal(t, 1, h.Index)
}

// assertRoundTrip 检查每个文字流坐标的中心点反查回自身下标，表格逐个单元格检查。
func assertRoundTrip(t *testing.T, res *Result) {
	t.Helper()
	for i, pos := range res.Positions {
		if pos == nil || pos.IsFloating || pos.Element.Hidden() {
			continue
		}
		c := pos.Coordinate.Center()
		if pos.Element.Type != element.TypeTable {
			h := res.Locate(c.X, c.Y, pos.PageNo, ZoneMain)
			assert.Equal(t, i, h.Index, "element %d", i)
			continue
		}
		tl := res.Tables[pos.Element]
		require.NotNil(t, tl, "table %d", i)
		for r, cells := range tl.Cells {
			for d, cell := range cells {
				for k, cp := range cell.Positions {
					cc := cp.Coordinate.Center()
					h := res.Locate(cc.X, cc.Y, pos.PageNo, ZoneMain)
					assert.True(t, h.IsTable, "table %d cell %d/%d element %d", i, r, d, k)
					assert.Equal(t, i, h.TableIndex)
					assert.Equal(t, r, h.TrIndex)
					assert.Equal(t, d, h.TdIndex)
					assert.Equal(t, k, h.Index, "table %d cell %d/%d element %d", i, r, d, k)
				}
			}
		}
	}
}

func TestLocateRoundTripLists(t *testing.T) {
	var main []*element.Element
	main = append(main, listItems("dec", element.ListOrdered, "", 12)...)
	main = append(main, listItems("todo", element.ListUnordered, element.ListCheckbox, 3)...)
	res := compute(t, element.EnsureSentinel(main), testOptions())
	assertRoundTrip(t, res)
}

func TestLocateRoundTripJustified(t *testing.T) {
	opts := testOptions()
	opts.WordBreak = WordBreakAll
	main := paragraph(strings.Repeat("flow and pages ", 12))
	for _, el := range main {
		el.RowFlex = element.RowFlexJustify
	}
	res := compute(t, main, opts)
	require.Greater(t, len(res.Rows), 1)
	assertRoundTrip(t, res)
}

func TestLocateRoundTripSurround(t *testing.T) {
	opts := testOptions()
	opts.WordBreak = WordBreakAll
	img := &element.Element{
		Type: element.TypeImage, Value: "logo.png", Width: 100, Height: 100,
		ImageDisplay: element.ImageSurround, FloatPosition: &element.FloatPosition{X: 300, Y: 100},
	}
	main := append([]*element.Element{element.Zero(), img}, element.FromString(strings.Repeat("b", 200), nil)...)
	res := compute(t, main, opts)

	shifted := 0
	for _, row := range res.Rows {
		if row.IsSurround {
			shifted++
		}
	}
	require.Greater(t, shifted, 1, "several rows wrap around the image")
	assertRoundTrip(t, res)
}

func TestLocateRoundTripTableCells(t *testing.T) {
	opts := testOptions()
	opts.Width = 540
	tbl := element.NewTable(3, 3, 50)
	for r, row := range tbl.Table.Rows {
		for d, cell := range row.Tds {
			cell.Value = append(cell.Value, element.FromString(strings.Repeat("c", r+d+1), nil)...)
		}
	}
	main := append(paragraph("before"), tbl)
	main = append(main, element.FromString("\nafter", nil)...)
	res := compute(t, main, opts)
	assertRoundTrip(t, res)
}

func TestLocateSkipsHiddenElements(t *testing.T) {
	main := paragraph("abc")
	main[2].Hide = true
	res := compute(t, main, testOptions())

	hidden := res.Positions[2].Coordinate
	assert.InDelta(t, hidden.LeftTop.X, hidden.RightTop.X, 1e-9)
	c := hidden.Center()
	assert.Equal(t, 1, res.Locate(c.X, c.Y, 0, ZoneMain).Index, "the caret lands after the visible element")
	assertRoundTrip(t, res)

	opts := testOptions()
	opts.DesignMode = true
	res = compute(t, main, opts)
	c = res.Positions[2].Coordinate.Center()
	assert.Equal(t, 2, res.Locate(c.X, c.Y, 0, ZoneMain).Index, "design mode shows hidden elements")
}
