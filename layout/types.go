package layout

import (
	"strconv"
	"strings"

	"github.com/ByLCY/quire/element"
)

// 该文件定义一次排版的结果：行、页、坐标与表格子布局，供渲染、光标定位与调试 JSON 共用。
// 所有结果在每次排版时整体重建，不做增量缓存。

// Metrics 为单个元素的排版度量（px）。
type Metrics struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Ascent  float64 `json:"ascent"`
	Descent float64 `json:"descent"`
}

// RowElement 是行内的一个元素，引用内容模型中的元素并附带度量。
type RowElement struct {
	Element *element.Element `json:"-"`
	Index   int              `json:"index"`
	Value   string           `json:"value"`
	Font    FontSpec         `json:"font"`
	Metrics Metrics          `json:"metrics"`
	// Left 为环绕图片造成的水平位移。
	Left float64 `json:"left,omitempty"`
	// Gap 为两端对齐时追加到宽度上的间距，已包含在 Metrics.Width 中。
	Gap float64 `json:"gap,omitempty"`
}

// Row 是一行排版结果。
type Row struct {
	Elements   []*RowElement   `json:"elements"`
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	Ascent     float64         `json:"ascent"`
	OffsetX    float64         `json:"offsetX,omitempty"`
	OffsetY    float64         `json:"offsetY,omitempty"`
	StartIndex int             `json:"startIndex"`
	RowIndex   int             `json:"rowIndex"`
	RowFlex    element.RowFlex `json:"rowFlex,omitempty"`

	IsList           bool `json:"isList,omitempty"`
	ListIndex        int  `json:"listIndex,omitempty"`
	IsPageBreak      bool `json:"isPageBreak,omitempty"`
	IsSurround       bool `json:"isSurround,omitempty"`
	IsWidthNotEnough bool `json:"isWidthNotEnough,omitempty"`
}

// EndIndex 返回行内最后一个元素之后的下标。
func (r *Row) EndIndex() int {
	return r.StartIndex + len(r.Elements)
}

// Point 为页面内坐标（px）。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Coordinate 为元素占据的矩形，纵向覆盖整行高度。
type Coordinate struct {
	LeftTop     Point `json:"leftTop"`
	LeftBottom  Point `json:"leftBottom"`
	RightTop    Point `json:"rightTop"`
	RightBottom Point `json:"rightBottom"`
}

// Center 返回矩形中心。
func (c Coordinate) Center() Point {
	return Point{X: (c.LeftTop.X + c.RightTop.X) / 2, Y: (c.LeftTop.Y + c.LeftBottom.Y) / 2}
}

func rect(x, y, w, h float64) Coordinate {
	return Coordinate{
		LeftTop:     Point{x, y},
		LeftBottom:  Point{x, y + h},
		RightTop:    Point{x + w, y},
		RightBottom: Point{x + w, y + h},
	}
}

// Position 与元素序列一一对应，记录元素在页面上的位置。
type Position struct {
	Element *element.Element `json:"-"`

	PageNo   int    `json:"pageNo"`
	RowNo    int    `json:"rowNo"`
	RowIndex int    `json:"rowIndex"`
	Index    int    `json:"index"`
	Value    string `json:"value"`

	Font       FontSpec   `json:"font"`
	Metrics    Metrics    `json:"metrics"`
	Left       float64    `json:"left,omitempty"`
	Ascent     float64    `json:"ascent"`
	LineHeight float64    `json:"lineHeight"`
	Coordinate Coordinate `json:"coordinate"`

	IsFirstLetter bool `json:"isFirstLetter,omitempty"`
	IsLastLetter  bool `json:"isLastLetter,omitempty"`
	IsFloating    bool `json:"isFloating,omitempty"`
}

// FloatItem 记录脱离文字流的图片，坐标与行无关。
type FloatItem struct {
	Zone     Zone             `json:"zone"`
	PageNo   int              `json:"pageNo"`
	Index    int              `json:"index"`
	Element  *element.Element `json:"-"`
	Position *Position        `json:"-"`
	// 位于表格单元格内时记录表格的顶层下标与行列，否则 TableIndex 为 -1。
	TableIndex int `json:"tableIndex"`
	TrIndex    int `json:"trIndex,omitempty"`
	TdIndex    int `json:"tdIndex,omitempty"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains 报告点是否落在浮动图片内。
func (f *FloatItem) Contains(x, y float64) bool {
	return x >= f.X && x <= f.X+f.Width && y >= f.Y && y <= f.Y+f.Height
}

// TableLayout 为表格的子布局，坐标相对表格左上角。
type TableLayout struct {
	ColumnWidths []float64       `json:"columnWidths"`
	Width        float64         `json:"width"`
	Height       float64         `json:"height"`
	Cells        [][]*CellLayout `json:"cells"`
}

// CellLayout 保存单元格内嵌元素序列的行与坐标（页面坐标）。
type CellLayout struct {
	Td            *element.Td `json:"-"`
	Rows          []*Row      `json:"rows"`
	Positions     []*Position `json:"positions"`
	ContentHeight float64     `json:"contentHeight"`
}

// ZoneLayout 为页眉或页脚的排版结果，每页重复绘制。
type ZoneLayout struct {
	Elements  []*element.Element `json:"-"`
	Rows      []*Row             `json:"rows"`
	Positions []*Position        `json:"positions"`
	Top       float64            `json:"top"`
	Height    float64            `json:"height"`
	// Extra 为页眉/页脚超出页边距而挤占正文的高度。
	Extra float64 `json:"extra"`
}

// Bottom 返回区域底部的 y 坐标。
func (z *ZoneLayout) Bottom() float64 {
	return z.Top + z.Height
}

// Result 保存一次排版的全部结果。
type Result struct {
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Margins [4]float64 `json:"margins"`
	Mode    PageMode   `json:"mode"`

	Elements  []*element.Element                `json:"-"`
	Rows      []*Row                            `json:"-"`
	Pages     [][]*Row                          `json:"pages"`
	Positions []*Position                       `json:"positions"`
	Floats    []*FloatItem                      `json:"floats,omitempty"`
	Tables    map[*element.Element]*TableLayout `json:"-"`
	ListWidth map[string]float64                `json:"listWidth,omitempty"`

	Header *ZoneLayout `json:"header,omitempty"`
	Footer *ZoneLayout `json:"footer,omitempty"`

	// Truncated 为 MaxPageNo 截断时被移除的元素个数。
	Truncated int `json:"truncated,omitempty"`
}

// MainTop 返回正文起始 y 坐标。
func (r *Result) MainTop() float64 {
	top := r.Margins[0]
	if r.Header != nil {
		top += r.Header.Extra
	}
	return top
}

// MainBottom 返回正文可用区域底部的 y 坐标。
func (r *Result) MainBottom() float64 {
	bottom := r.Height - r.Margins[2]
	if r.Footer != nil {
		bottom -= r.Footer.Extra
	}
	return bottom
}

// PageCount 返回页数。
func (r *Result) PageCount() int {
	return len(r.Pages)
}

// PagePositions 返回某一页的正文坐标。
func (r *Result) PagePositions(pageNo int) []*Position {
	if r == nil {
		return nil
	}
	var out []*Position
	for _, p := range r.Positions {
		if p != nil && p.PageNo == pageNo {
			out = append(out, p)
		}
	}
	return out
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// ParseColor 解析 #RGB / #RRGGBB，失败时返回黑色与 false。
func ParseColor(s string) (Color, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return Color{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, true
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
