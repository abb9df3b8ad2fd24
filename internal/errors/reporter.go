package errors

import (
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
)

// ============================================================================
// 错误报告器
// ============================================================================

// Reporter 错误报告器
//
// 收集 CompileError，并在设置了输出时立即写出格式化结果。
// 一个 Reporter 只服务一次编译，不做并发保护。
type Reporter struct {
	formatter   *Formatter
	out         io.Writer
	sourceCache map[string][]string // 源代码缓存
	errors      []*CompileError
	warnings    []*CompileError
}

// NewReporter 创建错误报告器，out 为 nil 时只收集不输出
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{
		formatter:   NewFormatter(),
		out:         out,
		sourceCache: make(map[string][]string),
	}
}

// SetFormatter 设置格式化器
func (r *Reporter) SetFormatter(f *Formatter) {
	r.formatter = f
}

// LoadSource 从磁盘加载源文件到缓存
func (r *Reporter) LoadSource(filename string) error {
	if _, ok := r.sourceCache[filename]; ok {
		return nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	r.SetSource(filename, string(data))
	return nil
}

// SetSource 设置源代码（用于内存中的源代码）
func (r *Reporter) SetSource(filename string, content string) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	r.sourceCache[filename] = strings.Split(content, "\n")
}

// GetSourceLine 获取源代码行（行号从 1 开始）
func (r *Reporter) GetSourceLine(filename string, line int) string {
	if lines, ok := r.sourceCache[filename]; ok {
		if line > 0 && line <= len(lines) {
			return lines[line-1]
		}
	}
	return ""
}

// ============================================================================
// 报告编译错误
// ============================================================================

// Report 报告一条诊断，按级别归入错误或警告
func (r *Reporter) Report(err *CompileError) {
	if _, cached := r.sourceCache[err.File]; !cached && err.File != "" {
		_ = r.LoadSource(err.File)
	}

	if len(err.Hints) == 0 {
		err.Hints = GetSuggestions(err.Code, map[string]interface{}{
			"file": err.File,
			"line": err.Line,
		})
	}

	if err.Level == LevelWarning {
		r.warnings = append(r.warnings, err)
	} else {
		r.errors = append(r.errors, err)
	}

	if r.out != nil {
		_, _ = io.WriteString(r.out, r.formatter.FormatCompileError(err, r.sourceCache[err.File]))
	}
}

// ReportAll 依次报告多条诊断
func (r *Reporter) ReportAll(errs []*CompileError) {
	for _, err := range errs {
		r.Report(err)
	}
}

// Summary 返回所有错误的汇总文本（含源码上下文和计数）
func (r *Reporter) Summary() string {
	return r.formatter.FormatCompileErrors(r.errors, r.sourceCache)
}

// HasErrors 是否有错误
func (r *Reporter) HasErrors() bool {
	return len(r.errors) > 0
}

// HasWarnings 是否有警告
func (r *Reporter) HasWarnings() bool {
	return len(r.warnings) > 0
}

// ErrorCount 错误数量
func (r *Reporter) ErrorCount() int {
	return len(r.errors)
}

// WarningCount 警告数量
func (r *Reporter) WarningCount() int {
	return len(r.warnings)
}

// Errors 返回所有错误
func (r *Reporter) Errors() []*CompileError {
	return r.errors
}

// Warnings 返回所有警告
func (r *Reporter) Warnings() []*CompileError {
	return r.warnings
}

// Err 将所有错误合并为一个 error，没有错误时返回 nil
func (r *Reporter) Err() error {
	var combined error
	for _, e := range r.errors {
		combined = multierr.Append(combined, e)
	}
	return combined
}

// Clear 清空已收集的诊断
func (r *Reporter) Clear() {
	r.errors = nil
	r.warnings = nil
}
