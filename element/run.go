package element

// 列表、控件、区域都不是容器，而是相邻元素共享的标识。这里提供线性扫描辅助函数。

// RunBounds 返回包含 i 且 key 相同的最大连续区间 [start, end)。
// key 为空时返回 (i, i+1)。
func RunBounds(list []*Element, i int, key func(*Element) string) (start, end int) {
	if i < 0 || i >= len(list) {
		return i, i
	}
	id := key(list[i])
	if id == "" {
		return i, i + 1
	}
	start, end = i, i+1
	for start > 0 && key(list[start-1]) == id {
		start--
	}
	for end < len(list) && key(list[end]) == id {
		end++
	}
	return start, end
}

func ListKey(el *Element) string    { return el.ListID }
func ControlKey(el *Element) string { return el.ControlID }
func AreaKey(el *Element) string    { return el.AreaID }

// ListRun 返回 i 所在列表的连续区间。
func ListRun(list []*Element, i int) (start, end int) {
	return RunBounds(list, i, ListKey)
}

// ListItemStart 返回 i 所在列表项的起始哨兵下标，不在列表中返回 -1。
func ListItemStart(list []*Element, i int) int {
	if i < 0 || i >= len(list) || list[i].ListID == "" {
		return -1
	}
	id := list[i].ListID
	for j := i; j >= 0 && list[j].ListID == id; j-- {
		if list[j].IsZero() && !list[j].ListWrap {
			return j
		}
	}
	return -1
}

// GroupRanges 返回属于分组 id 的所有连续区间。
func GroupRanges(list []*Element, id string) [][2]int {
	var out [][2]int
	start := -1
	for i, el := range list {
		if el.InGroup(id) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, [2]int{start, i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, [2]int{start, len(list)})
	}
	return out
}

// StripList 清除元素上的列表信息。
func StripList(el *Element) {
	el.ListID = ""
	el.ListType = ""
	el.ListStyle = ""
	el.ListWrap = false
}
