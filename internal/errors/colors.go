package errors

import (
	"strings"

	"github.com/fatih/color"

	"github.com/tangzhangming/phplite/internal/token"
)

// Color 终端颜色
type Color int

const (
	ColorReset Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBoldRed
	ColorBoldYellow
	ColorBoldCyan
)

// palette 颜色到 fatih/color 属性的映射
var palette = map[Color][]color.Attribute{
	ColorReset:      {color.Reset},
	ColorRed:        {color.FgRed},
	ColorGreen:      {color.FgGreen},
	ColorYellow:     {color.FgYellow},
	ColorBlue:       {color.FgBlue},
	ColorMagenta:    {color.FgMagenta},
	ColorCyan:       {color.FgCyan},
	ColorWhite:      {color.FgWhite},
	ColorBoldRed:    {color.FgRed, color.Bold},
	ColorBoldYellow: {color.FgYellow, color.Bold},
	ColorBoldCyan:   {color.FgCyan, color.Bold},
}

// ColorsEnabled 终端是否支持颜色（由 fatih/color 根据 TTY 与 NO_COLOR 检测）
func ColorsEnabled() bool {
	return !color.NoColor
}

// Colorize 强制着色字符串，不做终端检测
func Colorize(s string, c Color) string {
	attrs, ok := palette[c]
	if !ok || c == ColorReset {
		return s
	}
	painter := color.New(attrs...)
	painter.EnableColor()
	return painter.Sprint(s)
}

// ============================================================================
// 代码语法高亮
// ============================================================================

// highlightLine 对一行 PHP 源码做粗粒度高亮
//
// 只识别字符串、变量、数字、关键字和行注释，不追踪跨行状态。
func highlightLine(line string) string {
	var result strings.Builder
	i := 0
	n := len(line)

	for i < n {
		ch := line[i]

		switch {
		case ch == '"' || ch == '\'':
			start := i
			i++
			for i < n && line[i] != ch {
				if line[i] == '\\' && i+1 < n {
					i++
				}
				i++
			}
			if i < n {
				i++ // 包含结束引号
			}
			result.WriteString(Colorize(line[start:i], ColorGreen))

		case ch == '#' || (ch == '/' && i+1 < n && line[i+1] == '/'):
			result.WriteString(Colorize(line[i:], ColorWhite))
			i = n

		case ch == '$' && i+1 < n && isAlpha(line[i+1]):
			start := i
			i++
			for i < n && isAlphaNumeric(line[i]) {
				i++
			}
			result.WriteString(Colorize(line[start:i], ColorCyan))

		case isDigit(ch):
			start := i
			for i < n && (isDigit(line[i]) || line[i] == '.') {
				i++
			}
			result.WriteString(Colorize(line[start:i], ColorMagenta))

		case isAlpha(ch):
			start := i
			for i < n && isAlphaNumeric(line[i]) {
				i++
			}
			word := line[start:i]
			if token.IsKeyword(token.LookupIdent(word)) {
				result.WriteString(Colorize(word, ColorYellow))
			} else {
				result.WriteString(word)
			}

		default:
			result.WriteByte(ch)
			i++
		}
	}

	return result.String()
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}
