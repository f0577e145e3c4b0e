package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolate(t *testing.T) {
	data := map[string]any{
		"patient": map[string]any{"name": "张三", "age": 42},
		"items":   []any{"a", map[string]any{"v": 3}},
		"total":   128.0,
		"ratio":   0.25,
	}
	cases := []struct {
		in, want string
	}{
		{"姓名：${patient.name}", "姓名：张三"},
		{"${patient.age}岁", "42岁"},
		{"${items[1].v}", "3"},
		{"${items[5]}", "${items[5]}"},
		{"${items[x]}", "${items[x]}"},
		{"${missing | 无}", "无"},
		{"${patient.name | 无}", "张三"},
		{"${ }", "${ }"},
		{"${total} / ${ratio}", "128 / 0.25"},
		{"plain", "plain"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Interpolate(c.in, data), c.in)
	}
}

func TestInterpolateNilData(t *testing.T) {
	assert.Equal(t, "${a}", Interpolate("${a}", nil))
	assert.Equal(t, "默认", Interpolate("${a|默认}", nil))
}

func TestLookup(t *testing.T) {
	data := map[string]any{"a": []any{map[string]any{"b": "c"}}}
	v, ok := Lookup(data, "a[0].b")
	assert.True(t, ok)
	assert.Equal(t, "c", v)
	_, ok = Lookup(nil, "a")
	assert.False(t, ok)
	_, ok = Lookup(data, "a[0")
	assert.False(t, ok)
}

func TestLookupTypedData(t *testing.T) {
	type line struct {
		Name  string `json:"name"`
		Price float64
	}
	type order struct {
		Lines  []line
		Labels map[string]string
		Grid   [2][2]int
	}
	data := &order{
		Lines:  []line{{Name: "纸", Price: 1.5}},
		Labels: map[string]string{"zh": "订单"},
		Grid:   [2][2]int{{1, 2}, {3, 4}},
	}

	v, ok := Lookup(data, "Lines[0].name")
	assert.True(t, ok)
	assert.Equal(t, "纸", v)

	v, ok = Lookup(data, "Lines[0].Price")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	v, ok = Lookup(data, "Labels.zh")
	assert.True(t, ok)
	assert.Equal(t, "订单", v)

	v, ok = Lookup(data, "Grid[1][0]")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = Lookup(data, "Lines[0].missing")
	assert.False(t, ok)
	_, ok = Lookup(&order{}, "Lines[0]")
	assert.False(t, ok)

	assert.Equal(t, "订单 x2", Interpolate("${Labels.zh} x${Grid[0][1]}", data))
}
