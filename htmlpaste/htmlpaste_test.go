package htmlpaste

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/quire/element"
)

func values(list []*element.Element) string {
	var sb strings.Builder
	for _, el := range list {
		if el.IsZero() {
			sb.WriteString("|")
			continue
		}
		sb.WriteString(el.Value)
	}
	return sb.String()
}

func TestParseParagraphsAndInline(t *testing.T) {
	list, err := ParseString(`<p>Hello <b>bold</b> <i>it</i></p><p style="text-align:center">second<br>line</p>`)
	require.NoError(t, err)
	assert.Equal(t, "Hello bold it|second|line", values(list))

	for _, el := range list {
		switch el.Value {
		case "b":
			assert.True(t, el.Bold)
		case "t":
			assert.True(t, el.Italic)
		}
	}
	// 第二段的哨兵携带对齐方式
	var sep *element.Element
	for _, el := range list {
		if el.IsZero() {
			sep = el
			break
		}
	}
	require.NotNil(t, sep)
	assert.Equal(t, element.RowFlexCenter, sep.RowFlex)
}

func TestParseStyles(t *testing.T) {
	list, err := ParseString(`<span style="color:#ff0000;font-size:12pt;background-color:#00ff00;text-decoration:underline line-through">x</span><a href="https://example.com">l</a><sup>2</sup>`)
	require.NoError(t, err)
	require.Len(t, list, 3)
	x := list[0]
	assert.Equal(t, "#ff0000", x.Color)
	assert.Equal(t, "#00ff00", x.Highlight)
	assert.InDelta(t, 16, x.Size, 0.01)
	assert.True(t, x.Underline)
	assert.True(t, x.Strikeout)
	assert.Equal(t, element.TypeHyperlink, list[1].Type)
	assert.Equal(t, "https://example.com", list[1].URL)
	assert.Equal(t, element.TypeSuperscript, list[2].Type)
}

func TestParseList(t *testing.T) {
	list, err := ParseString(`<ol><li>one</li><li>two<br>wrap</li></ol><p>after</p>`)
	require.NoError(t, err)
	assert.Equal(t, "|one|two|wrap|after", values(list))

	items, wraps := 0, 0
	id := list[0].ListID
	require.NotEmpty(t, id)
	for _, el := range list {
		if el.ListID == "" {
			continue
		}
		assert.Equal(t, id, el.ListID)
		assert.Equal(t, element.ListOrdered, el.ListType)
		if el.IsZero() {
			if el.ListWrap {
				wraps++
			} else {
				items++
			}
		}
	}
	assert.Equal(t, 2, items)
	assert.Equal(t, 1, wraps)
	last := list[len(list)-1]
	assert.Empty(t, last.ListID)
}

func TestParseTable(t *testing.T) {
	list, err := ParseString(`<table><colgroup><col width="100"><col width="50"></colgroup>
<thead><tr><th>A</th><th>B</th></tr></thead>
<tbody><tr><td colspan="2" style="vertical-align:middle">C</td></tr></tbody></table>`)
	require.NoError(t, err)
	require.Len(t, list, 1)
	tbl := list[0].Table
	require.NotNil(t, tbl)
	assert.Equal(t, []float64{100, 50}, tbl.Colgroup)
	require.Len(t, tbl.Rows, 2)
	assert.True(t, tbl.Rows[0].PagingRepeat)
	assert.False(t, tbl.Rows[1].PagingRepeat)
	head := tbl.Rows[0].Tds[0]
	assert.True(t, head.Value[0].IsZero())
	assert.True(t, head.Value[1].Bold)
	cell := tbl.Rows[1].Tds[0]
	assert.Equal(t, 2, cell.Colspan)
	assert.Equal(t, 1, cell.Rowspan)
	assert.Equal(t, element.VerticalMiddle, cell.VerticalAlign)
}

func TestParseControlsAndImages(t *testing.T) {
	list, err := ParseString(`<input type="checkbox" checked><img src="a.png" width="40" height="20"><hr><script>alert(1)</script>`)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, element.TypeCheckbox, list[0].Type)
	assert.True(t, list[0].Checkbox.Value)
	assert.Equal(t, element.TypeImage, list[1].Type)
	assert.Equal(t, 40.0, list[1].Width)
	assert.Equal(t, element.TypeSeparator, list[2].Type)
}

func TestParseNormalizes(t *testing.T) {
	list, err := ParseString("<p>e\u0301</p>")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "\u00e9", list[0].Value)
}
