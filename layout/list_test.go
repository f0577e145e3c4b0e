package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/quire/element"
)

// listItems 构造 n 个列表项，每项为起始哨兵加一个字符。
func listItems(id string, typ element.ListType, style element.ListStyle, n int) []*element.Element {
	var out []*element.Element
	for k := 0; k < n; k++ {
		item := &element.Element{ListID: id, ListType: typ, ListStyle: style}
		z := element.CloneStyle(item)
		z.Value = element.ZeroWidth
		x := element.CloneStyle(item)
		x.Value = "x"
		out = append(out, z, x)
	}
	return out
}

func TestDecimalListWidth(t *testing.T) {
	main := element.EnsureSentinel(listItems("l1", element.ListOrdered, "", 11))
	res := compute(t, main, testOptions())

	// "00." 宽 24，加上 10 的间距
	assert.Equal(t, 34.0, res.ListWidth["l1"])
	require.Len(t, res.Rows, 12)
	assert.False(t, res.Rows[0].IsList)
	for k := 1; k < len(res.Rows); k++ {
		row := res.Rows[k]
		assert.True(t, row.IsList)
		assert.Equal(t, k-1, row.ListIndex)
		assert.Equal(t, 34.0, row.OffsetX)
	}
	assert.InDelta(t, 120+34, res.Positions[2].Coordinate.LeftTop.X, 1e-9)
}

func TestListWidthByStyle(t *testing.T) {
	var main []*element.Element
	main = append(main, listItems("dec", element.ListOrdered, "", 9)...)
	main = append(main, listItems("ul", element.ListUnordered, "", 2)...)
	main = append(main, listItems("todo", element.ListUnordered, element.ListCheckbox, 2)...)
	res := compute(t, element.EnsureSentinel(main), testOptions())

	assert.Equal(t, 26.0, res.ListWidth["dec"])
	assert.Equal(t, 20.0, res.ListWidth["ul"])
	assert.Equal(t, 24.0, res.ListWidth["todo"])
}

func TestListWrapKeepsIndex(t *testing.T) {
	main := listItems("l1", element.ListOrdered, "", 2)
	wrap := element.CloneStyle(main[0])
	wrap.Value = element.ZeroWidth
	wrap.ListWrap = true
	// 第一项内换行：z x wrap y | z x
	main = append(main[:2], append([]*element.Element{wrap, {Value: "y", ListID: "l1", ListType: element.ListOrdered}}, main[2:]...)...)
	res := compute(t, element.EnsureSentinel(main), testOptions())

	require.Len(t, res.Rows, 4)
	assert.Equal(t, 0, res.Rows[1].ListIndex)
	assert.Equal(t, 0, res.Rows[2].ListIndex, "wrapped lines keep the item index")
	assert.Equal(t, 1, res.Rows[3].ListIndex)
}

func TestListNumberingRestarts(t *testing.T) {
	var main []*element.Element
	main = append(main, listItems("a", element.ListOrdered, "", 2)...)
	main = append(main, element.Zero(), element.Text("p"))
	main = append(main, listItems("b", element.ListOrdered, "", 2)...)
	res := compute(t, element.EnsureSentinel(main), testOptions())

	var indexes []int
	for _, row := range res.Rows {
		if row.IsList {
			indexes = append(indexes, row.ListIndex)
		}
	}
	assert.Equal(t, []int{0, 1, 0, 1}, indexes)
}

func TestListMarker(t *testing.T) {
	ol := &element.Element{ListType: element.ListOrdered}
	assert.Equal(t, "1.", ListMarker(ol, 0))
	assert.Equal(t, "12.", ListMarker(ol, 11))

	ul := &element.Element{ListType: element.ListUnordered}
	assert.Equal(t, element.ListDisc, ListStyleOf(ul))
	assert.Equal(t, "•", ListMarker(ul, 3))
	assert.Equal(t, "◦", ListMarker(&element.Element{ListStyle: element.ListCircle}, 0))
	assert.Equal(t, "▪", ListMarker(&element.Element{ListStyle: element.ListSquare}, 0))

	box := &element.Element{ListStyle: element.ListCheckbox}
	assert.Equal(t, "☐", ListMarker(box, 0))
	box.Checkbox = &element.Checkbox{Value: true}
	assert.Equal(t, "☑", ListMarker(box, 0))
}
