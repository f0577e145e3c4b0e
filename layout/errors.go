package layout

import (
	"errors"
	"fmt"
)

// Sentinel errors. The engine degrades on bad metrics; these mark contract violations only.
var (
	ErrNoMeasurer        = errors.New("layout: 缺少文字测量后端 Measurer")
	ErrEmptyDocument     = errors.New("layout: 元素序列为空")
	ErrInconsistentTable = errors.New("layout: 表格结构不一致")
	ErrOutOfRange        = errors.New("layout: 下标越界")
)

// LayoutError 记录出错的阶段，Unwrap 返回底层错误。
type LayoutError struct {
	Op  string // rows / table / paging / splice
	Err error
}

func (e *LayoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("layout.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("layout.%s: 未知错误", e.Op)
}

func (e *LayoutError) Unwrap() error { return e.Err }

func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	var le *LayoutError
	if errors.As(err, &le) {
		return err
	}
	return &LayoutError{Op: op, Err: err}
}
