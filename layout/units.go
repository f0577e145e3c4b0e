package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe lengths. The layout engine works in CSS pixels (96 DPI);
// the PDF sink works in millimeters.

// Unit represents the original unit of a length value as written in a document source.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitPX               // CSS pixels
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between px, pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PxToMm = 25.4 / 96
	MmToPx = 96 / 25.4
	PxToPt = 72.0 / 96
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// mm returns the length in millimeters; unit-less values pass through.
func (l Length) mm() float64 {
	switch l.Unit {
	case UnitPX:
		return l.Value * PxToMm
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// To converts this length to the target unit. Unit-less lengths are returned as-is.
func (l Length) To(target Unit) float64 {
	if l.Unit == UnitNone || l.Unit == target {
		return l.Value
	}
	mm := l.mm()
	switch target {
	case UnitPX:
		return mm * MmToPx
	case UnitPT:
		return mm * MmToPt
	case UnitCM:
		return mm / 10
	case UnitIN:
		return mm / 25.4
	default:
		return mm
	}
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }
func (l Length) ToPX() float64 { return l.To(UnitPX) }

var unitSuffixes = []struct {
	s string
	u Unit
}{{"px", UnitPX}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}}

// ParseLength parses a length string preserving its unit ("12pt", "20mm", "100").
func ParseLength(value string) (Length, bool) {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := lower
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// ParsePX parses a length and converts it to px; bare numbers are already px.
func ParsePX(value string) (float64, bool) {
	l, ok := ParseLength(value)
	if !ok {
		return 0, false
	}
	return l.ToPX(), true
}
