package layout

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/quire/element"
)

func TestEncodeDebugJSON(t *testing.T) {
	tbl := element.NewTable(2, 2, 40)
	tbl.ID = "t1"
	main := append(element.EnsureSentinel(element.FromString("ab", nil)), tbl)
	res := compute(t, main, testOptions())

	var buf bytes.Buffer
	require.NoError(t, EncodeDebugJSON(res, &buf))

	var view struct {
		Width     float64 `json:"width"`
		Pages     [][]map[string]any
		Positions []map[string]any
		Tables    []struct {
			Index  int    `json:"index"`
			ID     string `json:"id"`
			Layout struct {
				ColumnWidths []float64 `json:"columnWidths"`
			} `json:"layout"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &view))
	assert.Equal(t, 794.0, view.Width)
	require.Len(t, view.Pages, 1)
	assert.Len(t, view.Positions, 4)
	require.Len(t, view.Tables, 1)
	assert.Equal(t, 3, view.Tables[0].Index)
	assert.Equal(t, "t1", view.Tables[0].ID)
	assert.Len(t, view.Tables[0].Layout.ColumnWidths, 2)

	assert.NoError(t, EncodeDebugJSON(nil, &buf))
}

func TestWriteDebugJSON(t *testing.T) {
	res := compute(t, paragraph("debug"), testOptions())
	path := filepath.Join(t.TempDir(), "layout.json")
	require.NoError(t, WriteDebugJSON(res, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	assert.Error(t, WriteDebugJSON(res, filepath.Join(t.TempDir(), "missing", "layout.json")))
}
