package layout

import (
	"encoding/json"
	"io"
	"os"
	"sort"
)

// debugTable 在调试输出中列出表格子布局，按表格所在的顶层下标排序。
type debugTable struct {
	Index  int          `json:"index"`
	ID     string       `json:"id,omitempty"`
	Layout *TableLayout `json:"layout"`
}

type debugView struct {
	*Result
	Tables []debugTable `json:"tables,omitempty"`
}

// EncodeDebugJSON 将布局结果（页、行、坐标、表格单元格）编码为缩进 JSON。
func EncodeDebugJSON(res *Result, w io.Writer) error {
	if res == nil {
		return nil
	}
	view := debugView{Result: res}
	for _, pos := range res.Positions {
		if pos == nil || pos.Element == nil {
			continue
		}
		if tl, ok := res.Tables[pos.Element]; ok {
			view.Tables = append(view.Tables, debugTable{Index: pos.Index, ID: pos.Element.ID, Layout: tl})
		}
	}
	sort.Slice(view.Tables, func(i, j int) bool { return view.Tables[i].Index < view.Tables[j].Index })
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

// WriteDebugJSON 将布局结果输出为 JSON 文件，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebugJSON(res, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
