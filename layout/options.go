package layout

import (
	"io"
	"log/slog"
)

// FontSpec 描述一次测量所需的字体信息，Size 单位为 px。
type FontSpec struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// TextMetrics 为文字测量结果（px）。Ascent/Descent 为实际字形包围盒高度。
type TextMetrics struct {
	Width   float64
	Ascent  float64
	Descent float64
}

// Measurer 负责测量单个元素的文字，相同输入必须得到相同结果。
type Measurer interface {
	Measure(value string, font FontSpec) TextMetrics
}

// PageMode 为分页模式。
type PageMode string

const (
	ModePaging     PageMode = "paging"
	ModeContinuous PageMode = "continuity"
)

// WordBreak 控制英文单词是否整体折行。
type WordBreak string

const (
	WordBreakAll  WordBreak = "break-all"
	WordBreakWord WordBreak = "break-word"
)

// Zone 为编辑区域。
type Zone string

const (
	ZoneMain   Zone = "main"
	ZoneHeader Zone = "header"
	ZoneFooter Zone = "footer"
)

// Options 配置一次排版所需的依赖与页面参数。所有长度单位为 px。
type Options struct {
	Measurer Measurer

	Width   float64
	Height  float64
	Margins [4]float64 // top right bottom left
	Mode    PageMode
	// MaxPageNo 大于 0 时，超出页数的内容会被截断。
	MaxPageNo int

	WordBreak  WordBreak
	DesignMode bool

	DefaultFont          string
	DefaultSize          float64
	DefaultRowMargin     float64
	BasicRowMarginHeight float64
	DefaultTabWidth      float64
	TdPadding            [4]float64 // top right bottom left
	MinTableWidth        float64
	SeparatorLineWidth   float64
	CheckboxSize         float64
	CheckboxGap          float64
	ListGap              float64
	UncountedListWidth   float64
	MinSelectableWidth   float64

	// 页眉距页面顶部、页脚距页面底部的距离。
	HeaderTop    float64
	FooterBottom float64

	Logger *slog.Logger
}

// DefaultOptions 返回 A4 纵向（96 DPI）的默认配置。
func DefaultOptions() Options {
	return Options{
		Width:                794,
		Height:               1123,
		Margins:              [4]float64{100, 120, 100, 120},
		Mode:                 ModePaging,
		WordBreak:            WordBreakWord,
		DefaultFont:          "Body",
		DefaultSize:          16,
		DefaultRowMargin:     1,
		BasicRowMarginHeight: 8,
		DefaultTabWidth:      32,
		TdPadding:            [4]float64{0, 5, 5, 5},
		MinTableWidth:        40,
		SeparatorLineWidth:   1,
		CheckboxSize:         14,
		CheckboxGap:          5,
		ListGap:              10,
		UncountedListWidth:   20,
		MinSelectableWidth:   4,
		HeaderTop:            30,
		FooterBottom:         30,
	}
}

// normalize 为缺省的数值补默认值。
func (o Options) normalize() Options {
	def := DefaultOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.Mode == "" {
		o.Mode = def.Mode
	}
	if o.WordBreak == "" {
		o.WordBreak = def.WordBreak
	}
	if o.DefaultFont == "" {
		o.DefaultFont = def.DefaultFont
	}
	if o.DefaultSize <= 0 {
		o.DefaultSize = def.DefaultSize
	}
	if o.DefaultRowMargin <= 0 {
		o.DefaultRowMargin = def.DefaultRowMargin
	}
	if o.BasicRowMarginHeight <= 0 {
		o.BasicRowMarginHeight = def.BasicRowMarginHeight
	}
	if o.DefaultTabWidth <= 0 {
		o.DefaultTabWidth = def.DefaultTabWidth
	}
	if o.MinTableWidth <= 0 {
		o.MinTableWidth = def.MinTableWidth
	}
	if o.SeparatorLineWidth <= 0 {
		o.SeparatorLineWidth = def.SeparatorLineWidth
	}
	if o.CheckboxSize <= 0 {
		o.CheckboxSize = def.CheckboxSize
	}
	if o.CheckboxGap <= 0 {
		o.CheckboxGap = def.CheckboxGap
	}
	if o.ListGap <= 0 {
		o.ListGap = def.ListGap
	}
	if o.UncountedListWidth <= 0 {
		o.UncountedListWidth = def.UncountedListWidth
	}
	if o.MinSelectableWidth <= 0 {
		o.MinSelectableWidth = def.MinSelectableWidth
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// InnerWidth 为正文可用宽度。
func (o Options) InnerWidth() float64 {
	return o.Width - o.Margins[1] - o.Margins[3]
}
