package fonts

import (
	"fmt"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体名 → TTF 数据。
var builtin = map[string][]byte{
	"regular":     goregular.TTF,
	"bold":        gobold.TTF,
	"italic":      goitalic.TTF,
	"bold-italic": gobolditalic.TTF,
	"mono":        gomono.TTF,
	"mono-bold":   gomonobold.TTF,

	"serif":             lmroman10regular.TTF,
	"serif-bold":        lmroman10bold.TTF,
	"serif-italic":      lmroman10italic.TTF,
	"serif-bold-italic": lmroman10bolditalic.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:bold" 或直接 "bold"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "embed:"))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体", name)
	}
	return data, nil
}

// Face 按字族与样式选择内置字体名：Mono/Monospace/Code 字族使用等宽字体，
// Serif/Roman 使用 Latin Modern，其余使用 Go 比例字体。
func Face(family string, bold, italic bool) string {
	prefix := ""
	switch strings.ToLower(family) {
	case "mono", "monospace", "code":
		if bold {
			return "mono-bold"
		}
		return "mono"
	case "serif", "roman", "latin-modern":
		prefix = "serif-"
	}
	switch {
	case bold && italic:
		return prefix + "bold-italic"
	case bold:
		return prefix + "bold"
	case italic:
		return prefix + "italic"
	}
	if prefix != "" {
		return "serif"
	}
	return "regular"
}

// Names 返回全部内置字体名。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	return out
}
