// Package binding 负责把 DSL 文本中的 ${path} 占位符替换为数据中的值。
package binding

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 占位符可写为 ${path | 默认值}，路径不存在时使用默认值；没有默认值时保留原占位符。
func Interpolate(text string, data any) string {
	if !strings.Contains(text, "${") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		inner := match[2 : len(match)-1]
		path, fallback, hasFallback := strings.Cut(inner, "|")
		steps, err := compile(path)
		if err != nil {
			return match
		}
		if v, ok := walk(data, steps); ok && v != nil {
			return Format(v)
		}
		if hasFallback {
			return strings.TrimSpace(fallback)
		}
		return match
	})
}

// Lookup 返回 path 对应的值。
func Lookup(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	steps, err := compile(path)
	if err != nil {
		return nil, false
	}
	return walk(data, steps)
}

// Format 把取到的值转成文本，整数值的浮点数不带小数部分。
func Format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// step 为路径中的一级：键名或下标。
type step struct {
	key   string
	index int
	isIdx bool
}

// compile 把 a.b[0][1].c 拆成逐级的取值步骤。
func compile(path string) ([]step, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("空路径")
	}
	var steps []step
	for i := 0; i < len(path); {
		switch path[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("路径 %q 的下标未闭合", path)
			}
			n, err := strconv.Atoi(strings.TrimSpace(path[i+1 : i+end]))
			if err != nil {
				return nil, fmt.Errorf("路径 %q 的下标无效: %w", path, err)
			}
			steps = append(steps, step{index: n, isIdx: true})
			i += end + 1
		default:
			j := i
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				j++
			}
			steps = append(steps, step{key: strings.TrimSpace(path[i:j])})
			i = j
		}
	}
	return steps, nil
}

func walk(data any, steps []step) (any, bool) {
	cur := data
	for _, s := range steps {
		var ok bool
		if s.isIdx {
			cur, ok = index(cur, s.index)
		} else {
			cur, ok = field(cur, s.key)
		}
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// field 支持 map[string]any 的快速路径，其余字符串键的 map 与结构体走反射。
func field(cur any, key string) (any, bool) {
	if m, ok := cur.(map[string]any); ok {
		v, ok := m[key]
		return v, ok
	}
	rv := indirect(reflect.ValueOf(cur))
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		return structField(rv, key)
	}
	return nil, false
}

// structField 依次按字段名、json 标签查找导出字段。
func structField(rv reflect.Value, key string) (any, bool) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if f.Name == key || name == key {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}

func index(cur any, n int) (any, bool) {
	if list, ok := cur.([]any); ok {
		if n < 0 || n >= len(list) {
			return nil, false
		}
		return list[n], true
	}
	rv := indirect(reflect.ValueOf(cur))
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if n < 0 || n >= rv.Len() {
		return nil, false
	}
	return rv.Index(n).Interface(), true
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}
