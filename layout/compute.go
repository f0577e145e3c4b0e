package layout

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/ByLCY/quire/element"
)

// Content 为一次排版的输入：正文与可选的页眉、页脚序列。
type Content struct {
	Main   []*element.Element
	Header []*element.Element
	Footer []*element.Element
}

// pass 保存一次排版的上下文，排版结束即丢弃，不跨次缓存。
type pass struct {
	opts     Options
	log      *slog.Logger
	tables   map[*element.Element]*TableLayout
	floats   []*FloatItem
	surround []*element.Element

	mainTop   float64
	mainOuter float64
}

var idSeq atomic.Uint64

func newID(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, idSeq.Add(1))
}

// Compute 执行一次完整排版：合并分页表格 → 分行 → 分页 → 计算坐标。
// 表格跨页拆分与 MaxPageNo 截断会修改正文序列，新的序列保存在 Result.Elements。
func Compute(content Content, opts Options) (*Result, error) {
	if opts.Measurer == nil {
		return nil, opError("compute", ErrNoMeasurer)
	}
	if len(content.Main) == 0 {
		return nil, opError("compute", ErrEmptyDocument)
	}
	opts = opts.normalize()
	p := &pass{
		opts:   opts,
		log:    opts.Logger,
		tables: make(map[*element.Element]*TableLayout),
	}
	res := &Result{
		Width:   opts.Width,
		Height:  opts.Height,
		Margins: opts.Margins,
		Mode:    opts.Mode,
		Tables:  p.tables,
	}

	// 页眉/页脚先排，确定正文可用高度。
	var err error
	if len(content.Header) > 0 {
		if res.Header, err = p.layoutZone(content.Header, ZoneHeader); err != nil {
			return nil, err
		}
		res.Header.Top = opts.HeaderTop
		res.Header.Extra = math.Max(0, opts.HeaderTop+res.Header.Height-opts.Margins[0])
	}
	if len(content.Footer) > 0 {
		if res.Footer, err = p.layoutZone(content.Footer, ZoneFooter); err != nil {
			return nil, err
		}
		res.Footer.Extra = math.Max(0, opts.FooterBottom+res.Footer.Height-opts.Margins[2])
	}
	p.mainTop = res.MainTop()
	p.mainOuter = p.mainTop + opts.Margins[2]
	if res.Footer != nil {
		p.mainOuter += res.Footer.Extra
	}

	main := mergePagedTables(content.Main)
	p.surround = surroundImages(main)
	rows, err := p.composeRows(rowInput{
		list:     &main,
		width:    opts.InnerWidth(),
		originX:  opts.Margins[3],
		originY:  p.mainTop,
		zone:     ZoneMain,
		topLevel: true,
	})
	if err != nil {
		return nil, err
	}

	pages, cut := p.paginate(rows)
	if cut >= 0 && cut < len(main) {
		res.Truncated = len(main) - cut
		p.log.Info("超出最大页数，截断内容", "maxPageNo", opts.MaxPageNo, "removed", res.Truncated)
		main = main[:cut]
		rows = rowsBefore(rows, cut)
	}
	res.Elements = main
	res.Rows = rows
	res.Pages = pages

	if opts.Mode == ModeContinuous {
		total := 0.0
		for _, row := range rows {
			total += row.Height + row.OffsetY
		}
		res.Height = math.Max(opts.Height, total+p.mainOuter)
	}
	if res.Footer != nil {
		res.Footer.Top = res.Height - opts.FooterBottom - res.Footer.Height
		p.placeZone(res.Footer, ZoneFooter)
	}
	if res.Header != nil {
		p.placeZone(res.Header, ZoneHeader)
	}

	res.Positions = p.computePositions(pages, main)
	res.Floats = p.floats
	res.ListWidth = p.listWidths(main)
	return res, nil
}

// layoutZone 为页眉或页脚分行，坐标在高度确定后由 placeZone 计算。
func (p *pass) layoutZone(list []*element.Element, zone Zone) (*ZoneLayout, error) {
	z := &ZoneLayout{Elements: list}
	rows, err := p.composeRows(rowInput{
		list:    &z.Elements,
		width:   p.opts.InnerWidth(),
		originX: p.opts.Margins[3],
		zone:    zone,
	})
	if err != nil {
		return nil, opError("rows", fmt.Errorf("%s 排版失败: %w", zone, err))
	}
	z.Rows = rows
	for _, row := range rows {
		z.Height += row.Height + row.OffsetY
	}
	return z, nil
}

func (p *pass) placeZone(z *ZoneLayout, zone Zone) {
	z.Positions = make([]*Position, len(z.Elements))
	p.placeRows(z.Rows, z.Positions, placement{
		x:          p.opts.Margins[3],
		y:          z.Top,
		innerWidth: p.opts.InnerWidth(),
		zone:       zone,
		tableIndex: -1,
	})
}

func rowsBefore(rows []*Row, cut int) []*Row {
	for i, row := range rows {
		if row.StartIndex >= cut {
			return rows[:i]
		}
	}
	return rows
}

// fontOf 解析元素的字体，上下标按 0.6 倍字号测量。
func (p *pass) fontOf(el *element.Element) FontSpec {
	f := FontSpec{
		Family: el.Font,
		Size:   el.Size,
		Bold:   el.Bold,
		Italic: el.Italic,
	}
	if f.Family == "" {
		f.Family = p.opts.DefaultFont
	}
	if f.Size <= 0 {
		f.Size = p.opts.DefaultSize
	}
	if el.Type == element.TypeSuperscript || el.Type == element.TypeSubscript {
		f.Size = math.Ceil(f.Size * 0.6)
	}
	return f
}

// pager 按与分页完全一致的规则累计页面已用高度。
type pager struct {
	height float64
	outer  float64
	used   float64
	count  int
	pageNo int
	paging bool
}

func (p *pass) newPager() *pager {
	return &pager{
		height: p.opts.Height,
		outer:  p.mainOuter,
		used:   p.mainOuter,
		paging: p.opts.Mode != ModeContinuous,
	}
}

// place 放入一行，返回是否开启了新页。页面第一行永远不会再触发换页。
func (pg *pager) place(row *Row, prevBreak bool) bool {
	h := row.Height + row.OffsetY
	if pg.paging && pg.count > 0 && (pg.used+h > pg.height || prevBreak) {
		pg.pageNo++
		pg.used = pg.outer + h
		pg.count = 1
		return true
	}
	pg.used += h
	pg.count++
	return false
}
