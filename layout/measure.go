package layout

import (
	"unicode"
	"unicode/utf8"

	"github.com/ByLCY/quire/element"
)

// FixedMeasurer 是与字体无关的测量实现：每个 rune 宽度 = 字号 × 比例。
// 用于无头排版与测试，结果完全可预测。
type FixedMeasurer struct {
	// WidthRatio 为半角字符宽度与字号之比，默认 0.5；全角字符按 1 计算。
	WidthRatio float64
	// AscentRatio 默认 0.8，Descent 为 1 - AscentRatio。
	AscentRatio float64
}

func (m FixedMeasurer) Measure(value string, font FontSpec) TextMetrics {
	ratio := m.WidthRatio
	if ratio <= 0 {
		ratio = 0.5
	}
	ascent := m.AscentRatio
	if ascent <= 0 {
		ascent = 0.8
	}
	size := font.Size
	if value == element.ZeroWidth || value == "" {
		return TextMetrics{Width: 0, Ascent: size * ascent, Descent: size * (1 - ascent)}
	}
	w := 0.0
	for len(value) > 0 {
		r, n := utf8.DecodeRuneInString(value)
		value = value[n:]
		if isWide(r) {
			w += size
		} else {
			w += size * ratio
		}
		if font.Bold {
			w += size * 0.05
		}
	}
	return TextMetrics{Width: w, Ascent: size * ascent, Descent: size * (1 - ascent)}
}

func isWide(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hangul, r) ||
		unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r)
}
