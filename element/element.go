package element

// 该文件定义内容模型：一维元素序列，表格单元格内再嵌套一层元素序列。

// ZeroWidth 为零宽字符，作为段落、列表项的起始哨兵。
const ZeroWidth = "​"

// Type 区分元素种类，空字符串等价于 TypeText。
type Type string

const (
	TypeText        Type = "text"
	TypeImage       Type = "image"
	TypeTable       Type = "table"
	TypeHyperlink   Type = "hyperlink"
	TypeSuperscript Type = "superscript"
	TypeSubscript   Type = "subscript"
	TypeSeparator   Type = "separator"
	TypePageBreak   Type = "pageBreak"
	TypeControl     Type = "control"
	TypeCheckbox    Type = "checkbox"
	TypeRadio       Type = "radio"
	TypeTab         Type = "tab"
	TypeDate        Type = "date"
	TypeBlock       Type = "block"
)

// RowFlex 为行内水平对齐方式。
type RowFlex string

const (
	RowFlexLeft   RowFlex = "left"
	RowFlexCenter RowFlex = "center"
	RowFlexRight  RowFlex = "right"
	// RowFlexJustify 两端对齐，每一行都会拉伸。
	RowFlexJustify RowFlex = "justify"
	// RowFlexAlignment 分散对齐，仅对因宽度不足而折行的行生效。
	RowFlexAlignment RowFlex = "alignment"
)

// ImageDisplay 描述图片与文字流的关系。
type ImageDisplay string

const (
	// ImageBlock 默认值：图片随文字排在行内。
	ImageBlock ImageDisplay = "block"
	// ImageInline 图片独占一行。
	ImageInline      ImageDisplay = "inline"
	ImageSurround    ImageDisplay = "surround"
	ImageFloatTop    ImageDisplay = "floatTop"
	ImageFloatBottom ImageDisplay = "floatBottom"
)

type ListType string

const (
	ListOrdered   ListType = "ol"
	ListUnordered ListType = "ul"
)

type ListStyle string

const (
	ListDecimal  ListStyle = "decimal"
	ListDisc     ListStyle = "disc"
	ListCircle   ListStyle = "circle"
	ListSquare   ListStyle = "square"
	ListCheckbox ListStyle = "checkbox"
)

// ControlComponent 标记元素在控件中的角色。
type ControlComponent string

const (
	ControlPrefix      ControlComponent = "prefix"
	ControlPostfix     ControlComponent = "postfix"
	ControlValue       ControlComponent = "value"
	ControlPlaceholder ControlComponent = "placeholder"
	ControlCheckbox    ControlComponent = "checkbox"
	ControlRadio       ControlComponent = "radio"
)

type VerticalAlign string

const (
	VerticalTop    VerticalAlign = "top"
	VerticalMiddle VerticalAlign = "middle"
	VerticalBottom VerticalAlign = "bottom"
)

// FloatPosition 为浮动图片在页面上的左上角坐标。
type FloatPosition struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	PageNo int     `json:"pageNo"`
}

// Control 为控件的公共属性，同一控件的所有元素共享同一个 ControlID。
type Control struct {
	Type     string  `json:"type"`
	MinWidth float64 `json:"minWidth,omitempty"`
	Hide     bool    `json:"hide,omitempty"`
	// Indentation 为 "valueStart" 时，控件折行后与值的起始位置对齐。
	Indentation string `json:"indentation,omitempty"`
	// FlexDirection 为 "column" 时复选/单选项各自成行。
	FlexDirection string `json:"flexDirection,omitempty"`
	// Protected 的元素在非设计模式下不可删除。
	Protected bool `json:"protected,omitempty"`
}

// Area 为一段带命名区域的内容。
type Area struct {
	Top  float64 `json:"top,omitempty"`
	Hide bool    `json:"hide,omitempty"`
}

type Checkbox struct {
	Value bool `json:"value"`
}

type Block struct {
	Kind string `json:"kind"`
	URL  string `json:"url,omitempty"`
}

// Element 是内容模型中的最小单元。
type Element struct {
	ID    string `json:"id,omitempty"`
	Type  Type   `json:"type,omitempty"`
	Value string `json:"value"`

	Font          string   `json:"font,omitempty"`
	Size          float64  `json:"size,omitempty"`
	Bold          bool     `json:"bold,omitempty"`
	Italic        bool     `json:"italic,omitempty"`
	Underline     bool     `json:"underline,omitempty"`
	Strikeout     bool     `json:"strikeout,omitempty"`
	Color         string   `json:"color,omitempty"`
	Highlight     string   `json:"highlight,omitempty"`
	LetterSpacing float64  `json:"letterSpacing,omitempty"`
	RowMargin     *float64 `json:"rowMargin,omitempty"`
	RowFlex       RowFlex  `json:"rowFlex,omitempty"`

	Width         float64        `json:"width,omitempty"`
	Height        float64        `json:"height,omitempty"`
	ImageDisplay  ImageDisplay   `json:"imgDisplay,omitempty"`
	FloatPosition *FloatPosition `json:"imgFloatPosition,omitempty"`

	URL string `json:"url,omitempty"`

	ListID    string    `json:"listId,omitempty"`
	ListType  ListType  `json:"listType,omitempty"`
	ListStyle ListStyle `json:"listStyle,omitempty"`
	ListWrap  bool      `json:"listWrap,omitempty"`

	ControlID        string           `json:"controlId,omitempty"`
	Control          *Control         `json:"control,omitempty"`
	ControlComponent ControlComponent `json:"controlComponent,omitempty"`

	AreaID   string   `json:"areaId,omitempty"`
	Area     *Area    `json:"area,omitempty"`
	GroupIDs []string `json:"groupIds,omitempty"`
	Hide     bool     `json:"hide,omitempty"`

	Checkbox *Checkbox `json:"checkbox,omitempty"`
	Radio    *Checkbox `json:"radio,omitempty"`
	Block    *Block    `json:"block,omitempty"`
	Table    *Table    `json:"table,omitempty"`
}

// IsText 报告元素是否按文字测量。
func (e *Element) IsText() bool {
	switch e.Type {
	case "", TypeText, TypeHyperlink, TypeSuperscript, TypeSubscript, TypeDate, TypeControl:
		return true
	}
	return false
}

// IsZero 报告元素是否为零宽哨兵。
func (e *Element) IsZero() bool {
	return e != nil && e.Value == ZeroWidth && e.IsText()
}

// IsFloating 报告图片是否脱离文字流（环绕、浮于文字上方或下方）。
func (e *Element) IsFloating() bool {
	if e == nil || e.Type != TypeImage {
		return false
	}
	switch e.ImageDisplay {
	case ImageSurround, ImageFloatTop, ImageFloatBottom:
		return true
	}
	return false
}

// IsBlockLike 报告元素是否必须独占一行。
func (e *Element) IsBlockLike() bool {
	if e == nil {
		return false
	}
	return e.Type == TypeTable || e.Type == TypeBlock || e.Type == TypeSeparator ||
		(e.Type == TypeImage && e.ImageDisplay == ImageInline)
}

// Hidden 报告元素在非设计模式下是否隐藏。
func (e *Element) Hidden() bool {
	return e.Hide || (e.Control != nil && e.Control.Hide) || (e.Area != nil && e.Area.Hide)
}

// RowMarginOr 返回行间距倍数，未设置时使用 def。
func (e *Element) RowMarginOr(def float64) float64 {
	if e.RowMargin == nil {
		return def
	}
	return *e.RowMargin
}

// InGroup 报告元素是否属于指定批注分组。
func (e *Element) InGroup(id string) bool {
	for _, g := range e.GroupIDs {
		if g == id {
			return true
		}
	}
	return false
}

// Text 创建一个字符元素。
func Text(value string) *Element {
	return &Element{Value: value}
}

// Zero 创建一个零宽哨兵元素。
func Zero() *Element {
	return &Element{Value: ZeroWidth}
}

// FromString 将字符串按 rune 拆成字符元素，换行符转换为零宽哨兵。
func FromString(s string, tmpl *Element) []*Element {
	out := make([]*Element, 0, len(s))
	for _, r := range s {
		if r == '\r' {
			continue
		}
		var el *Element
		if tmpl != nil {
			el = CloneStyle(tmpl)
		} else {
			el = &Element{}
		}
		if r == '\n' {
			el.Value = ZeroWidth
		} else {
			el.Value = string(r)
		}
		out = append(out, el)
	}
	return out
}

// IsSentinel 报告元素能否充当序列开头的哨兵：不属于列表、控件或区域的零宽字符。
func (e *Element) IsSentinel() bool {
	return e.IsZero() && e.ListID == "" && e.ControlID == "" && e.AreaID == ""
}

// EnsureSentinel 保证顶层序列以零宽哨兵开头。
func EnsureSentinel(list []*Element) []*Element {
	if len(list) > 0 && list[0].IsSentinel() {
		return list
	}
	return append([]*Element{Zero()}, list...)
}
