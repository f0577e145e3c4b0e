package layout

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ByLCY/quire/element"
)

// Document 持有内容模型并串行化排版：Splice 与 Compute 互斥，每次修改后整体重排。
// 排版完成并释放锁之后才通知监听者。
type Document struct {
	mu        sync.Mutex
	opts      Options
	main      []*element.Element
	header    []*element.Element
	footer    []*element.Element
	result    *Result
	listeners []func(*Result)
}

// Snapshot 为内容模型的深拷贝，用于撤销/重做。
type Snapshot struct {
	Main   []*element.Element `json:"main"`
	Header []*element.Element `json:"header,omitempty"`
	Footer []*element.Element `json:"footer,omitempty"`
}

// NewDocument 创建文档，正文序列会补上起始零宽哨兵。
func NewDocument(main []*element.Element, opts Options) *Document {
	return &Document{opts: opts, main: element.EnsureSentinel(main)}
}

// SetHeader 设置页眉内容，不触发重排。
func (d *Document) SetHeader(list []*element.Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.header = zoneList(list)
}

// SetFooter 设置页脚内容，不触发重排。
func (d *Document) SetFooter(list []*element.Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.footer = zoneList(list)
}

func zoneList(list []*element.Element) []*element.Element {
	if len(list) == 0 {
		return nil
	}
	return element.EnsureSentinel(list)
}

// Elements 返回当前正文序列（包含跨页拆分出的续表）。
func (d *Document) Elements() []*element.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.main
}

// Zone 返回指定区域的元素序列。
func (d *Document) Zone(zone Zone) []*element.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return *d.zone(zone)
}

// Result 返回最近一次排版结果，尚未排版时为 nil。
func (d *Document) Result() *Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.result
}

// OnComputed 注册排版完成后的回调，按注册顺序同步调用。
func (d *Document) OnComputed(fn func(*Result)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Compute 对当前内容执行一次完整排版。
func (d *Document) Compute() (*Result, error) {
	d.mu.Lock()
	res, err := d.computeLocked()
	listeners := slices.Clone(d.listeners)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, fn := range listeners {
		fn(res)
	}
	return res, nil
}

func (d *Document) computeLocked() (*Result, error) {
	res, err := Compute(Content{Main: d.main, Header: d.header, Footer: d.footer}, d.opts)
	if err != nil {
		return nil, err
	}
	d.main = res.Elements
	d.result = res
	return res, nil
}

// Splice 修改正文：从 start 删除 deleteCount 个元素并插入 inserted，随后整体重排。
func (d *Document) Splice(start, deleteCount int, inserted ...*element.Element) (*Result, error) {
	return d.SpliceZone(ZoneMain, start, deleteCount, inserted...)
}

// SpliceZone 修改指定区域，修复规则：
//   - 起始零宽哨兵不可删除，也不能在它之前插入；
//   - 删除边界之后残留的列表项会清除列表信息；
//   - 非设计模式下受保护的控件元素保留。
func (d *Document) SpliceZone(zone Zone, start, deleteCount int, inserted ...*element.Element) (*Result, error) {
	d.mu.Lock()
	list := d.zone(zone)
	next, err := spliceElements(*list, start, deleteCount, inserted, d.opts.DesignMode)
	if err != nil {
		d.mu.Unlock()
		return nil, opError("splice", err)
	}
	prev := *list
	*list = next
	res, err := d.computeLocked()
	if err != nil {
		// 排版失败时不保留被拒绝的修改
		*list = prev
	}
	listeners := slices.Clone(d.listeners)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, fn := range listeners {
		fn(res)
	}
	return res, nil
}

func (d *Document) zone(zone Zone) *[]*element.Element {
	switch zone {
	case ZoneHeader:
		return &d.header
	case ZoneFooter:
		return &d.footer
	}
	return &d.main
}

// Locate 使用最近一次排版结果反查坐标。
func (d *Document) Locate(x, y float64, pageNo int, zone Zone) Hit {
	d.mu.Lock()
	res := d.result
	d.mu.Unlock()
	if res == nil {
		return Hit{Index: -1, Zone: zone}
	}
	return res.Locate(x, y, pageNo, zone)
}

// Snapshot 深拷贝当前内容。
func (d *Document) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{
		Main:   element.CloneList(d.main),
		Header: element.CloneList(d.header),
		Footer: element.CloneList(d.footer),
	}
}

// Restore 用快照替换当前内容并重排，快照本身不会被后续修改影响。
func (d *Document) Restore(s Snapshot) (*Result, error) {
	d.mu.Lock()
	main, header, footer := d.main, d.header, d.footer
	d.main = element.EnsureSentinel(element.CloneList(s.Main))
	d.header = zoneList(element.CloneList(s.Header))
	d.footer = zoneList(element.CloneList(s.Footer))
	res, err := d.computeLocked()
	if err != nil {
		d.main, d.header, d.footer = main, header, footer
	}
	listeners := slices.Clone(d.listeners)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, fn := range listeners {
		fn(res)
	}
	return res, nil
}

// spliceElements 执行带修复规则的 splice，返回新的序列。
func spliceElements(list []*element.Element, start, deleteCount int, inserted []*element.Element, designMode bool) ([]*element.Element, error) {
	if start < 0 || start > len(list) {
		return nil, fmt.Errorf("起始位置 %d 超出范围 [0, %d]: %w", start, len(list), ErrOutOfRange)
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if len(list) > 0 && list[0].IsSentinel() && start == 0 {
		start = 1
		if deleteCount > 0 {
			deleteCount--
		}
	}
	if start+deleteCount > len(list) {
		deleteCount = len(list) - start
	}

	end := start + deleteCount
	out := make([]*element.Element, 0, len(list)-deleteCount+len(inserted))
	out = append(out, list[:start]...)
	for k := start; k < end; k++ {
		if !designMode && list[k].Control != nil && list[k].Control.Protected {
			out = append(out, list[k])
		}
	}
	out = append(out, inserted...)
	tail := len(out)
	out = append(out, list[end:]...)
	if deleteCount > 0 && end < len(list) {
		stripOrphanedList(out, tail, list[end].ListID, start > 0 && list[start-1].ListID == list[end].ListID)
	}
	return out, nil
}

// stripOrphanedList 删除区间之后，如果紧随其后的列表项与删除起点之前的元素不属于同一列表，
// 则清除从 from 起直到下一个哨兵的列表信息。被修改的元素先复制，原序列保持不变。
func stripOrphanedList(out []*element.Element, from int, id string, joined bool) {
	if id == "" || joined {
		return
	}
	for k := from; k < len(out); k++ {
		el := out[k]
		if el.ListID != id || el.IsZero() {
			break
		}
		c := element.Clone(el)
		element.StripList(c)
		out[k] = c
	}
}
