package layout

import (
	"unicode"

	"github.com/go-text/typesetting/segmenter"

	"github.com/ByLCY/quire/element"
)

// wordUnits 按 UAX#14 断行机会切分连续的纯文本元素，返回西文单词（含尾随标点）
// 的起止元素下标：start → end（不含 end）。只记录跨越多个元素的单词。
func wordUnits(list []*element.Element) map[int]int {
	units := make(map[int]int)
	var seg segmenter.Segmenter
	for i := 0; i < len(list); {
		if !isPlainText(list[i]) {
			i++
			continue
		}
		var (
			runes []rune
			owner []int
		)
		j := i
		for ; j < len(list) && isPlainText(list[j]); j++ {
			for _, r := range list[j].Value {
				runes = append(runes, r)
				owner = append(owner, j)
			}
		}
		if len(runes) > 0 {
			seg.Init(runes)
			iter := seg.LineIterator()
			for iter.Next() {
				line := iter.Line()
				n := len(line.Text)
				for n > 0 && unicode.IsSpace(line.Text[n-1]) {
					n--
				}
				if n == 0 || !hasWordRune(line.Text[:n]) {
					continue
				}
				start := owner[line.Offset]
				end := owner[line.Offset+n-1] + 1
				if end-start > 1 {
					units[start] = end
				}
			}
		}
		i = j
	}
	return units
}

func isPlainText(el *element.Element) bool {
	return (el.Type == "" || el.Type == element.TypeText) && !el.IsZero() && el.Value != ""
}

func hasWordRune(rs []rune) bool {
	for _, r := range rs {
		if unicode.In(r, unicode.Latin, unicode.Greek, unicode.Cyrillic) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
