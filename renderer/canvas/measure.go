package canvasrenderer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/fonts"
	"github.com/ByLCY/quire/layout"
)

// Measure 实现 layout.Measurer。字号与结果均为 px，与字体系统交互时换算为 pt/mm。
func (r *Renderer) Measure(value string, font layout.FontSpec) layout.TextMetrics {
	face, err := r.fontFace(font, canvas.Black)
	if err != nil {
		// 字体不可用时按字号估算，保证排版可以继续
		return layout.TextMetrics{
			Width:   float64(len([]rune(value))) * font.Size / 2,
			Ascent:  font.Size * 0.8,
			Descent: font.Size * 0.2,
		}
	}
	metrics := face.Metrics()
	tm := layout.TextMetrics{
		Ascent:  toPx(math.Abs(metrics.Ascent)),
		Descent: toPx(math.Abs(metrics.Descent)),
	}
	if value != "" && value != element.ZeroWidth {
		tm.Width = toPx(face.TextWidth(value))
	}
	return tm
}

// fontFace 创建字体面，size 为 px。
func (r *Renderer) fontFace(font layout.FontSpec, col color.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	size := font.Size
	if size <= 0 {
		size = layout.DefaultOptions().DefaultSize
	}
	return family.Face(size*layout.PxToPt, col, canvas.FontRegular, canvas.FontNormal), nil
}

// ensureFontFamily 按字族与粗斜体查找字体：先找注入的变体，再找注入的字族，最后使用内置 Go 字体。
// 每个变体各自加载为一个常规样式的字族并缓存。
func (r *Renderer) ensureFontFamily(font layout.FontSpec) (*canvas.FontFamily, error) {
	key := variantName(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[key]; ok {
		return family, nil
	}
	data, err := r.loadFontBytes(font)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(key)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", key, err)
	}
	r.families[key] = family
	return family, nil
}

func (r *Renderer) loadFontBytes(font layout.FontSpec) ([]byte, error) {
	if blob, ok := r.fontBlobs[variantName(font)]; ok {
		return blob, nil
	}
	if blob, ok := r.fontBlobs[font.Family]; ok {
		return blob, nil
	}
	return fonts.Load(fonts.Face(font.Family, font.Bold, font.Italic))
}

func variantName(font layout.FontSpec) string {
	switch {
	case font.Bold && font.Italic:
		return font.Family + "-BoldItalic"
	case font.Bold:
		return font.Family + "-Bold"
	case font.Italic:
		return font.Family + "-Italic"
	}
	return font.Family
}

func colorOf(value, def string) color.Color {
	c, ok := layout.ParseColor(value)
	if !ok {
		c, _ = layout.ParseColor(def)
	}
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
