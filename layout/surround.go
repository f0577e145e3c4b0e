package layout

import "github.com/ByLCY/quire/element"

// surroundImages 收集声明了页面坐标的环绕图片，分行时文字需要绕开它们。
func surroundImages(list []*element.Element) []*element.Element {
	var out []*element.Element
	for _, el := range list {
		if el.Type == element.TypeImage && el.ImageDisplay == element.ImageSurround && el.FloatPosition != nil {
			out = append(out, el)
		}
	}
	return out
}

// surroundShift 检测候选矩形 (x, st.y, width, height) 与同页环绕图片是否相交，
// 返回为避开所有图片需要右移的距离。图片按文档顺序依次检测，每次相交都把候选矩形
// 推到该图片右侧再继续检测。是否接受位移由调用方根据可用宽度决定。
func (p *pass) surroundShift(st *rowState, row *Row, x, width, height float64) float64 {
	if len(p.surround) == 0 || row == nil {
		return 0
	}
	shift := 0.0
	for _, img := range p.surround {
		fp := img.FloatPosition
		if fp.PageNo != st.pageNo {
			continue
		}
		left := x + shift
		if left < fp.X+img.Width && left+width > fp.X && st.y < fp.Y+img.Height && st.y+height > fp.Y {
			shift += fp.X + img.Width - left
		}
	}
	return shift
}
