package lsp

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/tangzhangming/phplite/internal/compiler"
	"github.com/tangzhangming/phplite/internal/errors"
	"github.com/tangzhangming/phplite/internal/i18n"
)

// diagnosticSource 诊断来源标识
const diagnosticSource = "phplite"

// getDiagnostics 将编译结果转换为 LSP 诊断
func getDiagnostics(doc *Document) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	if doc.Result == nil {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    lineRange(1, 1, 2),
			Severity: protocol.DiagnosticSeverityWarning,
			Source:   diagnosticSource,
			Message:  i18n.T(i18n.MsgDocumentTooLarge),
		})
		return diagnostics
	}

	for _, ce := range doc.Result.CompileErrors() {
		diagnostics = append(diagnostics, toDiagnostic(ce))
	}
	return diagnostics
}

// toDiagnostic 转换单个编译错误；提示附加在消息之后
func toDiagnostic(ce *errors.CompileError) protocol.Diagnostic {
	end := ce.EndColumn
	if end <= ce.Column {
		end = ce.Column + 1
	}

	msg := ce.Message
	if len(ce.Hints) > 0 {
		msg += "\n" + strings.Join(ce.Hints, "\n")
	}

	return protocol.Diagnostic{
		Range:    lineRange(ce.Line, ce.Column, end),
		Severity: severityOf(ce.Level),
		Code:     ce.Code,
		Source:   diagnosticSource,
		Message:  msg,
	}
}

func severityOf(level errors.Level) protocol.DiagnosticSeverity {
	switch level {
	case errors.LevelWarning:
		return protocol.DiagnosticSeverityWarning
	case errors.LevelNote:
		return protocol.DiagnosticSeverityInformation
	case errors.LevelHelp:
		return protocol.DiagnosticSeverityHint
	}
	return protocol.DiagnosticSeverityError
}

// lineRange 单行范围；行列从 1 开始，LSP 从 0 开始
func lineRange(line, startCol, endCol int) protocol.Range {
	l := uint32(0)
	if line > 0 {
		l = uint32(line - 1)
	}
	return protocol.Range{
		Start: protocol.Position{Line: l, Character: column(startCol)},
		End:   protocol.Position{Line: l, Character: column(endCol)},
	}
}

func column(col int) uint32 {
	if col <= 1 {
		return 0
	}
	return uint32(col - 1)
}

// resultFor 文档的编译结果，供符号与悬停使用
func resultFor(doc *Document) *compiler.Result {
	if doc == nil {
		return nil
	}
	return doc.Result
}
