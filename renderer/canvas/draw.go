package canvasrenderer

import (
	"image/color"
	"math"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/layout"
)

const (
	defaultTextColor        = "#000000"
	defaultHyperlinkColor   = "#0000FF"
	defaultPlaceholderColor = "#9C9B9B"
	defaultBorderColor      = "#000000"
	defaultSeparatorColor   = "#000000"
)

// drawRows 绘制一组行，positions 与行所属的元素序列一一对应。
func (r *Renderer) drawRows(ctx *canvas.Context, res *layout.Result, rows []*layout.Row, positions []*layout.Position) error {
	for _, row := range rows {
		for j, re := range row.Elements {
			if re.Index >= len(positions) || positions[re.Index] == nil {
				continue
			}
			pos := positions[re.Index]
			if j == 0 && row.IsList {
				r.drawListMarker(ctx, row, pos)
			}
			if err := r.drawElement(ctx, res, pos); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) drawElement(ctx *canvas.Context, res *layout.Result, pos *layout.Position) error {
	el := pos.Element
	if el == nil || el.Hidden() || el.IsFloating() {
		return nil
	}
	c := pos.Coordinate
	switch el.Type {
	case element.TypeImage:
		m := pos.Metrics
		return r.drawImage(ctx, el, c.LeftTop.X, c.LeftTop.Y+pos.Ascent, m.Width, m.Height)
	case element.TypeTable:
		return r.drawTable(ctx, res, pos)
	case element.TypeSeparator:
		y := c.LeftTop.Y + pos.LineHeight/2
		r.drawLine(ctx, c.LeftTop.X, y, c.LeftTop.X+pos.Metrics.Width, y, colorOf(el.Color, defaultSeparatorColor), math.Max(pos.Metrics.Height, 1))
	case element.TypeCheckbox, element.TypeRadio:
		r.drawCheck(ctx, el, pos)
	case element.TypeBlock:
		r.drawBlock(ctx, el, pos)
	case element.TypeTab, element.TypePageBreak:
	default:
		if el.IsZero() {
			return nil
		}
		return r.drawText(ctx, el, pos)
	}
	return nil
}

// drawText 绘制单个字符元素及其高亮、下划线与删除线。
func (r *Renderer) drawText(ctx *canvas.Context, el *element.Element, pos *layout.Position) error {
	c := pos.Coordinate
	width := c.RightTop.X - c.LeftTop.X
	if el.Highlight != "" {
		ctx.SetStrokeColor(canvas.Transparent)
		ctx.SetFillColor(colorOf(el.Highlight, "#FFFF00"))
		ctx.DrawPath(mm(c.LeftTop.X), mm(c.LeftTop.Y), canvas.Rectangle(mm(width), mm(pos.LineHeight)))
	}

	def := defaultTextColor
	switch {
	case el.Type == element.TypeHyperlink:
		def = defaultHyperlinkColor
	case el.ControlComponent == element.ControlPlaceholder:
		def = defaultPlaceholderColor
	}
	col := colorOf(el.Color, def)
	face, err := r.fontFace(pos.Font, col)
	if err != nil {
		return err
	}

	baseline := c.LeftTop.Y + pos.Ascent
	switch el.Type {
	case element.TypeSuperscript:
		baseline -= pos.Metrics.Height / 2
	case element.TypeSubscript:
		baseline += pos.Metrics.Height / 2
	}
	ctx.DrawText(mm(c.LeftTop.X), mm(baseline), canvas.NewTextLine(face, el.Value, canvas.Left))

	size := pos.Font.Size
	if el.Underline || el.Type == element.TypeHyperlink {
		y := baseline + size*0.1
		r.drawLine(ctx, c.LeftTop.X, y, c.LeftTop.X+width, y, col, 1)
	}
	if el.Strikeout {
		y := baseline - size*0.3
		r.drawLine(ctx, c.LeftTop.X, y, c.LeftTop.X+width, y, col, 1)
	}
	return nil
}

// drawListMarker 在列表项首行左侧的序号列中绘制序号或符号，折行产生的行不绘制。
func (r *Renderer) drawListMarker(ctx *canvas.Context, row *layout.Row, pos *layout.Position) {
	el := pos.Element
	if !el.IsZero() || el.ListWrap {
		return
	}
	x := pos.Coordinate.LeftTop.X - row.OffsetX
	baseline := pos.Coordinate.LeftTop.Y + pos.Ascent
	if layout.ListStyleOf(el) == element.ListCheckbox {
		size := layout.DefaultOptions().CheckboxSize
		checked := el.Checkbox != nil && el.Checkbox.Value
		r.drawBox(ctx, x, baseline-size, size, checked, false)
		return
	}
	face, err := r.fontFace(pos.Font, colorOf(el.Color, defaultTextColor))
	if err != nil {
		return
	}
	ctx.DrawText(mm(x), mm(baseline), canvas.NewTextLine(face, layout.ListMarker(el, row.ListIndex), canvas.Left))
}

// drawCheck 绘制复选框/单选框，方框在元素宽度内水平居中。
func (r *Renderer) drawCheck(ctx *canvas.Context, el *element.Element, pos *layout.Position) {
	size := pos.Metrics.Height
	x := pos.Coordinate.LeftTop.X + (pos.Metrics.Width-size)/2
	y := pos.Coordinate.LeftTop.Y + pos.Ascent - size
	if el.Type == element.TypeRadio {
		r.drawBox(ctx, x, y, size, el.Radio != nil && el.Radio.Value, true)
		return
	}
	r.drawBox(ctx, x, y, size, el.Checkbox != nil && el.Checkbox.Value, false)
}

func (r *Renderer) drawBox(ctx *canvas.Context, x, y, size float64, checked, round bool) {
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(canvas.Black)
	ctx.SetStrokeWidth(mm(1))
	if round {
		radius := size / 2
		ctx.DrawPath(mm(x+radius), mm(y+radius), canvas.Circle(mm(radius)))
		if checked {
			ctx.SetStrokeColor(canvas.Transparent)
			ctx.SetFillColor(canvas.Black)
			ctx.DrawPath(mm(x+radius), mm(y+radius), canvas.Circle(mm(radius/2)))
		}
		return
	}
	ctx.DrawPath(mm(x), mm(y), canvas.Rectangle(mm(size), mm(size)))
	if checked {
		p := &canvas.Path{}
		p.MoveTo(mm(size*0.2), mm(size*0.5))
		p.LineTo(mm(size*0.45), mm(size*0.75))
		p.LineTo(mm(size*0.8), mm(size*0.25))
		ctx.DrawPath(mm(x), mm(y), p)
	}
}

// drawBlock 以虚线框占位绘制外部嵌入块。
func (r *Renderer) drawBlock(ctx *canvas.Context, el *element.Element, pos *layout.Position) {
	c := pos.Coordinate
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(canvas.Hex("#808080"))
	ctx.SetStrokeWidth(tableBorderWidth)
	ctx.SetDashes(0, 1, 1)
	ctx.DrawPath(mm(c.LeftTop.X), mm(c.LeftTop.Y+pos.Ascent), canvas.Rectangle(mm(pos.Metrics.Width), mm(pos.Metrics.Height)))
	ctx.SetDashes(0)
}

// drawTable 绘制单元格边框，然后递归绘制单元格内容。
func (r *Renderer) drawTable(ctx *canvas.Context, res *layout.Result, pos *layout.Position) error {
	tl := res.Tables[pos.Element]
	if tl == nil {
		return nil
	}
	origin := pos.Coordinate.LeftTop
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(colorOf(pos.Element.Color, defaultBorderColor))
	ctx.SetStrokeWidth(tableBorderWidth)
	for _, cells := range tl.Cells {
		for _, cell := range cells {
			td := cell.Td
			ctx.DrawPath(mm(origin.X+td.X), mm(origin.Y+td.Y), canvas.Rectangle(mm(td.Width), mm(td.Height)))
		}
	}
	for _, cells := range tl.Cells {
		for _, cell := range cells {
			if err := r.drawRows(ctx, res, cell.Rows, cell.Positions); err != nil {
				return err
			}
		}
	}
	return nil
}

// drawFloats 绘制浮动图片：below 为 true 时绘制浮于文字下方的图片，否则绘制其余浮动图片。
// 页眉页脚中的浮动图片每页都绘制。
func (r *Renderer) drawFloats(ctx *canvas.Context, res *layout.Result, pageNo int, below bool) error {
	for _, f := range res.Floats {
		if (f.Element.ImageDisplay == element.ImageFloatBottom) != below {
			continue
		}
		if f.Zone == layout.ZoneMain && f.PageNo != pageNo {
			continue
		}
		if err := r.drawImage(ctx, f.Element, f.X, f.Y, f.Width, f.Height); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawLine(ctx *canvas.Context, x1, y1, x2, y2 float64, col color.Color, width float64) {
	ctx.SetStrokeColor(col)
	ctx.SetStrokeWidth(mm(width))
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(mm(x2-x1), mm(y2-y1))
	ctx.DrawPath(mm(x1), mm(y1), p)
}
