package errors

import (
	"fmt"
	"strings"
)

// ============================================================================
// 编译错误
// ============================================================================

// CompileError 编译错误
//
// 各阶段的错误（lexer.Error、parser.Error、semantic.Error）在外观层统一
// 转换为 CompileError，供格式化器与 LSP 使用。
type CompileError struct {
	Code      string   // 错误码 (E0200)
	Level     Level    // 错误级别
	Stage     Stage    // 产生阶段
	Message   string   // 主消息
	File      string   // 文件路径
	Line      int      // 行号
	Column    int      // 列号
	EndColumn int      // 结束列
	Hints     []string // 修复建议
	Notes     []string // 附加说明
}

// Error 实现 error 接口
func (e *CompileError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// ============================================================================
// 格式化器
// ============================================================================

// Formatter 错误格式化器
type Formatter struct {
	Colors     bool // 是否使用颜色
	Highlight  bool // 是否高亮源代码行
	ShowSource bool // 是否显示源代码
	ShowHints  bool // 是否显示修复建议
	TabWidth   int  // Tab 宽度
}

// NewFormatter 创建默认格式化器，颜色跟随终端检测
func NewFormatter() *Formatter {
	return &Formatter{
		Colors:     ColorsEnabled(),
		Highlight:  true,
		ShowSource: true,
		ShowHints:  true,
		TabWidth:   4,
	}
}

// FormatCompileError 格式化编译错误
//
//	error[E0100]: Variable '$x' not declared
//	 --> index.php:1:12
//	  |
//	1 | <?php echo $x; ?>
//	  |            ^^
//	 = help: did you mean '$y'?
func (f *Formatter) FormatCompileError(err *CompileError, sourceLines []string) string {
	var sb strings.Builder

	levelColor := f.levelColor(err.Level)
	header := f.colorize(err.Level.String(), levelColor)
	if err.Code != "" {
		header += f.colorize(fmt.Sprintf("[%s]", err.Code), levelColor)
	}
	sb.WriteString(fmt.Sprintf("%s: %s\n", header, err.Message))

	file := err.File
	if file == "" {
		file = "<input>"
	}
	arrow := f.colorize("-->", ColorCyan)
	location := f.colorize(fmt.Sprintf("%s:%d:%d", file, err.Line, err.Column), ColorCyan)
	sb.WriteString(fmt.Sprintf(" %s %s\n", arrow, location))

	if f.ShowSource && err.Line > 0 && err.Line <= len(sourceLines) {
		sb.WriteString(f.formatSourceContext(sourceLines, err.Line, err.Column, err.EndColumn))
	}

	if f.ShowHints {
		for _, hint := range err.Hints {
			sb.WriteString(fmt.Sprintf("%s %s\n", f.colorize(" = help:", ColorCyan), hint))
		}
	}
	for _, note := range err.Notes {
		sb.WriteString(fmt.Sprintf("%s %s\n", f.colorize(" = note:", ColorCyan), note))
	}

	return sb.String()
}

// formatSourceContext 格式化出错行及下划线标注
func (f *Formatter) formatSourceContext(lines []string, errorLine, startCol, endCol int) string {
	var sb strings.Builder

	lineNumWidth := len(fmt.Sprintf("%d", errorLine))
	gutter := f.colorize(strings.Repeat(" ", lineNumWidth)+" |", ColorBlue)
	sb.WriteString(gutter + "\n")

	line := lines[errorLine-1]
	shown := f.expandTabs(line)
	if f.Colors && f.Highlight {
		shown = highlightLine(shown)
	}
	lineNum := f.colorize(fmt.Sprintf("%*d", lineNumWidth, errorLine), ColorBlue)
	sb.WriteString(fmt.Sprintf("%s%s %s\n", lineNum, f.colorize(" |", ColorBlue), shown))

	if startCol > 0 {
		length := endCol - startCol
		if length < 1 {
			length = 1
		}
		actualCol := f.calculateActualColumn(line, startCol)
		underline := gutter + " " + strings.Repeat(" ", actualCol) +
			f.colorize(strings.Repeat("^", length), ColorRed)
		sb.WriteString(underline + "\n")
	}

	return sb.String()
}

// expandTabs 展开 Tab 为空格
func (f *Formatter) expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", f.TabWidth))
}

// calculateActualColumn 计算实际列位置（考虑 Tab），返回 0-based 偏移
func (f *Formatter) calculateActualColumn(line string, col int) int {
	if col <= 0 {
		return 0
	}
	actual := 0
	for i := 0; i < col-1 && i < len(line); i++ {
		if line[i] == '\t' {
			actual += f.TabWidth
		} else {
			actual++
		}
	}
	return actual
}

// levelColor 获取错误级别对应的颜色
func (f *Formatter) levelColor(level Level) Color {
	switch level {
	case LevelError:
		return ColorBoldRed
	case LevelWarning:
		return ColorBoldYellow
	case LevelNote:
		return ColorCyan
	case LevelHelp:
		return ColorGreen
	default:
		return ColorWhite
	}
}

// colorize 着色字符串
func (f *Formatter) colorize(s string, c Color) string {
	if !f.Colors {
		return s
	}
	return Colorize(s, c)
}

// FormatCompileErrors 格式化多个编译错误，末尾附带错误计数
func (f *Formatter) FormatCompileErrors(errs []*CompileError, sourceCache map[string][]string) string {
	var sb strings.Builder

	for i, err := range errs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(f.FormatCompileError(err, sourceCache[err.File]))
	}

	if len(errs) > 0 {
		countMsg := fmt.Sprintf("error: found %d errors", len(errs))
		if len(errs) == 1 {
			countMsg = "error: found 1 error"
		}
		sb.WriteString("\n" + f.colorize(countMsg, ColorRed) + "\n")
	}

	return sb.String()
}
