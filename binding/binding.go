// Package binding 把 JSON 数据绑定到故事文本中的 ${...} 占位符。
package binding

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// 占位符语法：${path.to.value} 或 ${path.to.value|默认值}
var exprPattern = regexp.MustCompile(`\$\{([^}|]+)(?:\|([^}]*))?\}`)

// Interpolate 将文本中的占位符替换为 data 中的值。
// 路径不存在时使用 | 之后的默认值；没有默认值则保留原占位符。
func Interpolate(text string, data any) string {
	return interpolate(text, data, nil)
}

// InterpolateMarkup 与 Interpolate 相同，但对替换值做标记转义，避免数据被解析为标签。
func InterpolateMarkup(text string, data any) string {
	return interpolate(text, data, html.EscapeString)
}

func interpolate(text string, data any, escape func(string) string) string {
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		path := strings.TrimSpace(groups[1])
		val, ok := Lookup(data, path)
		var out string
		switch {
		case ok:
			out = format(val)
		case strings.Contains(match, "|"):
			// 默认值按原样写入，不做转义
			return groups[2]
		default:
			return match
		}
		if escape != nil {
			out = escape(out)
		}
		return out
	})
}

// Lookup 按 a.b[0].c 形式的路径在解码后的 JSON 数据中取值。
func Lookup(data any, path string) (any, bool) {
	if data == nil || path == "" {
		return nil, false
	}
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes, ok := parseSegment(segment)
		if !ok {
			return nil, false
		}
		if name != "" {
			if current, ok = descendMap(current, name); !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			if current, ok = descendArray(current, idx); !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []int, bool) {
	i := strings.IndexByte(segment, '[')
	if i == -1 {
		return segment, nil, segment != ""
	}
	name, rest := segment[:i], segment[i:]
	var indexes []int
	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end == -1 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(strings.TrimSpace(rest[1:end]))
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, idx)
		rest = rest[end+1:]
	}
	return name, indexes, true
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	c, ok := current.([]any)
	if !ok {
		return nil, false
	}
	if idx < 0 {
		idx += len(c)
	}
	if idx < 0 || idx >= len(c) {
		return nil, false
	}
	return c[idx], true
}

func format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
