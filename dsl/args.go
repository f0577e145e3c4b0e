package dsl

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/quire/layout"
)

// args 顺序读取命令参数。
type args struct {
	list []*Lexeme
	i    int
	pos  lexer.Position
}

func (a *args) done() bool { return a.i >= len(a.list) }

func (a *args) peek() *Lexeme {
	if a.done() {
		return nil
	}
	return a.list[a.i]
}

func (a *args) next() (*Lexeme, bool) {
	if a.done() {
		return nil, false
	}
	l := a.list[a.i]
	a.i++
	return l, true
}

// skip 在下一个参数为 raw 时消费它。
func (a *args) skip(raw string) bool {
	if l := a.peek(); l != nil && l.Raw == raw {
		a.i++
		return true
	}
	return false
}

// rest 返回剩余参数并全部消费。
func (a *args) rest() []*Lexeme {
	out := a.list[a.i:]
	a.i = len(a.list)
	return out
}

func (a *args) word(what string) (string, error) {
	l, ok := a.next()
	if !ok || (l.Type != "Ident" && l.Type != "String") {
		return "", fmt.Errorf("%s: %s 需要名称", a.where(l), what)
	}
	return l.Value, nil
}

// number 读取一个长度或数值，带单位时换算为 px。
func (a *args) number(what string) (float64, error) {
	l, ok := a.next()
	if !ok || l.Type != "Number" {
		return 0, fmt.Errorf("%s: %s 需要数值", a.where(l), what)
	}
	v, ok := layout.ParsePX(l.Value)
	if !ok {
		return 0, fmt.Errorf("%s: %s 的数值 %s 无法解析", l.Pos, what, l.Raw)
	}
	return v, nil
}

// length 同 number。
func (a *args) length(what string) (float64, error) { return a.number(what) }

// margins 按 CSS 规则读取 1~4 个边距：上 右 下 左。
func (a *args) margins() ([4]float64, error) {
	var vals []float64
	for len(vals) < 4 {
		if l := a.peek(); l == nil || l.Type != "Number" {
			break
		}
		v, err := a.number("margin")
		if err != nil {
			return [4]float64{}, err
		}
		vals = append(vals, v)
	}
	switch len(vals) {
	case 1:
		return [4]float64{vals[0], vals[0], vals[0], vals[0]}, nil
	case 2:
		return [4]float64{vals[0], vals[1], vals[0], vals[1]}, nil
	case 3:
		return [4]float64{vals[0], vals[1], vals[2], vals[1]}, nil
	case 4:
		return [4]float64{vals[0], vals[1], vals[2], vals[3]}, nil
	}
	return [4]float64{}, fmt.Errorf("%s: margin 需要 1~4 个数值", a.where(a.peek()))
}

// color 读取 #RRGGBB 或 resources 中声明的颜色名。
func (a *args) color(named map[string]string) (string, error) {
	l, ok := a.next()
	if !ok {
		return "", fmt.Errorf("%s: 缺少颜色", a.where(nil))
	}
	if l.Type == "Color" {
		return l.Value, nil
	}
	if v, ok := named[l.Value]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%s: 未定义的颜色 %s", l.Pos, l.Raw)
}

func (a *args) where(l *Lexeme) lexer.Position {
	if l != nil {
		return l.Pos
	}
	return a.pos
}
