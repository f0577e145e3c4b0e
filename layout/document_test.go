package layout

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/quire/element"
)

func valuesOf(list []*element.Element) string {
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

func TestSpliceKeepsSentinel(t *testing.T) {
	doc := NewDocument(element.FromString("ab", nil), testOptions())
	assert.Equal(t, "|ab", valuesOf(doc.Elements()))

	_, err := doc.Splice(0, 1, element.Text("x"))
	require.NoError(t, err)
	assert.Equal(t, "|xab", valuesOf(doc.Elements()))

	_, err = doc.Splice(0, 100)
	require.NoError(t, err)
	assert.Equal(t, "|", valuesOf(doc.Elements()), "deleting everything leaves the sentinel")
}

func TestSpliceStripsOrphanedListItem(t *testing.T) {
	main := element.EnsureSentinel(listItems("l1", element.ListOrdered, "", 2))
	doc := NewDocument(main, testOptions())
	orphan := main[2]

	// 删除第一项的起始哨兵，剩余字符不再属于列表
	_, err := doc.Splice(1, 1)
	require.NoError(t, err)
	list := doc.Elements()
	require.Len(t, list, 4)
	assert.Empty(t, list[1].ListID)
	assert.Equal(t, "l1", orphan.ListID, "the repair copies the element it changes")
	assert.Equal(t, "l1", list[2].ListID)
	assert.Equal(t, "l1", list[3].ListID)
}

func TestSpliceLeadingListItem(t *testing.T) {
	doc := NewDocument(listItems("l1", element.ListOrdered, "", 2), testOptions())
	list := doc.Elements()
	require.Len(t, list, 5)
	assert.Empty(t, list[0].ListID)

	// 第一项的起始哨兵可以删除
	_, err := doc.Splice(1, 1)
	require.NoError(t, err)
	list = doc.Elements()
	require.Len(t, list, 4)
	assert.True(t, list[0].IsSentinel())
	assert.Empty(t, list[1].ListID)
}

func TestSpliceProtectedControl(t *testing.T) {
	protected := func(v string) *element.Element {
		return &element.Element{Value: v, ControlID: "c1", Control: &element.Control{Protected: true}}
	}
	main := []*element.Element{element.Zero(), protected("p"), protected("q"), element.Text("c")}

	doc := NewDocument(element.CloneList(main), testOptions())
	_, err := doc.Splice(1, 3, element.Text("x"))
	require.NoError(t, err)
	assert.Equal(t, "|pqx", valuesOf(doc.Elements()), "protected elements survive ahead of the insertion")

	opts := testOptions()
	opts.DesignMode = true
	design := NewDocument(element.CloneList(main), opts)
	_, err = design.Splice(1, 3, element.Text("x"))
	require.NoError(t, err)
	assert.Equal(t, "|x", valuesOf(design.Elements()))
}

func TestSpliceOutOfRange(t *testing.T) {
	doc := NewDocument(nil, testOptions())
	_, err := doc.Splice(5, 0, element.Text("x"))
	require.ErrorIs(t, err, ErrOutOfRange)
	var le *LayoutError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "splice", le.Op)
	assert.Nil(t, doc.Result())
}

func TestSpliceZone(t *testing.T) {
	doc := NewDocument(element.FromString("body", nil), testOptions())
	doc.SetHeader(element.FromString("h", nil))
	res, err := doc.SpliceZone(ZoneHeader, 2, 0, element.Text("i"))
	require.NoError(t, err)

	assert.Equal(t, "|hi", valuesOf(doc.Zone(ZoneHeader)))
	require.NotNil(t, res.Header)
	assert.Len(t, res.Header.Positions, 3)
	assert.Equal(t, "|body", valuesOf(doc.Zone(ZoneMain)))
	assert.Empty(t, doc.Zone(ZoneFooter))
}

func TestDocumentListeners(t *testing.T) {
	doc := NewDocument(element.FromString("abc", nil), testOptions())
	var seen []*Result
	doc.OnComputed(func(res *Result) {
		// 回调在释放锁之后执行，可以再次访问文档
		assert.Same(t, res, doc.Result())
		seen = append(seen, res)
	})

	first, err := doc.Compute()
	require.NoError(t, err)
	second, err := doc.Splice(1, 1)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Same(t, first, seen[0])
	assert.Same(t, second, seen[1])

	_, err = doc.Splice(-1, 0)
	require.Error(t, err)
	assert.Len(t, seen, 2, "failed edits do not notify")
}

func TestSnapshotRestore(t *testing.T) {
	tbl := element.NewTable(1, 1, 40)
	main := append(element.EnsureSentinel(element.FromString("ab", nil)), tbl)
	doc := NewDocument(main, testOptions())
	snap := doc.Snapshot()

	_, err := doc.Splice(1, 2, element.Text("z"))
	require.NoError(t, err)
	tbl.Table.Rows[0].Tds[0].Value = append(tbl.Table.Rows[0].Tds[0].Value, element.Text("q"))
	require.Len(t, snap.Main, 4, "snapshots are unaffected by later edits")
	assert.Len(t, snap.Main[3].Table.Rows[0].Tds[0].Value, 1)

	res, err := doc.Restore(snap)
	require.NoError(t, err)
	assert.Equal(t, "|ab", valuesOf(doc.Elements()[:3]))
	assert.NotSame(t, snap.Main[1], doc.Elements()[1])
	assert.Len(t, res.Positions, 4)

	_, err = doc.Splice(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", snap.Main[1].Value)
}

func TestDocumentLocate(t *testing.T) {
	doc := NewDocument(element.FromString("ab", nil), testOptions())
	assert.Equal(t, -1, doc.Locate(130, 110, 0, ZoneMain).Index, "no layout yet")

	_, err := doc.Compute()
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Locate(126, 110, 0, ZoneMain).Index)
}

func TestConcurrentSplice(t *testing.T) {
	doc := NewDocument(element.FromString("seed", nil), testOptions())
	var wg sync.WaitGroup
	for k := 0; k < 8; k++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := doc.Splice(1, 0, element.Text("x"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, doc.Elements(), 5+8)
	require.NotNil(t, doc.Result())
	assert.Len(t, doc.Result().Positions, 5+8)
}
