package compiler

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/segmentio/encoding/json"
	"go.uber.org/multierr"

	"github.com/tangzhangming/phplite/internal/ast"
	"github.com/tangzhangming/phplite/internal/errors"
	"github.com/tangzhangming/phplite/internal/i18n"
	"github.com/tangzhangming/phplite/internal/lexer"
	"github.com/tangzhangming/phplite/internal/parser"
	"github.com/tangzhangming/phplite/internal/semantic"
	"github.com/tangzhangming/phplite/internal/symtab"
	"github.com/tangzhangming/phplite/internal/token"
)

// TokenInfo 对外输出的 token
type TokenInfo struct {
	Line  int         `json:"lineno"`
	Kind  string      `json:"type"`
	Value interface{} `json:"value"`
}

// Message 一条面向用户的诊断消息
type Message struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ParseResult Parse 的结果
type ParseResult struct {
	AST            *ast.Program
	SyntaxErrors   int
	SyntaxMessages []Message

	LexicalErrors   int
	LexicalMessages []Message

	lexical []lexer.Error
	syntax  []parser.Error
}

// AnalysisResult Analyze 的结果
type AnalysisResult struct {
	SemanticErrors   int
	SemanticMessages []Message
	SymbolTable      []symtab.ScopeRecord

	semantic []semantic.Error
}

// Result 一次完整编译的结果
//
// OK 当且仅当 AST 存在且各阶段错误数均为 0。
// 语法分析失败时不做语义分析，SymbolTable 为空。
type Result struct {
	OK      bool
	Tokens  []TokenInfo
	AST     *ast.Program
	ASTJSON string

	LexicalErrors  int
	SyntaxErrors   int
	SemanticErrors int

	LexicalMessages  []Message
	SyntaxMessages   []Message
	SemanticMessages []Message

	SymbolTable []symtab.ScopeRecord
	SourcePath  string

	lexical  []lexer.Error
	syntax   []parser.Error
	semantic []semantic.Error
}

// ============================================================================
// 诊断汇总
// ============================================================================

// CompileErrors 将各阶段错误统一转换为 CompileError，按阶段顺序排列
func (r *Result) CompileErrors() []*errors.CompileError {
	out := make([]*errors.CompileError, 0, len(r.lexical)+len(r.syntax)+len(r.semantic))
	for _, e := range r.lexical {
		out = append(out, &errors.CompileError{
			Code:      e.Code,
			Level:     errors.LevelError,
			Stage:     errors.StageLexical,
			Message:   e.Message,
			File:      r.SourcePath,
			Line:      e.Pos.Line,
			Column:    e.Pos.Column,
			EndColumn: e.Pos.Column + width(e.Text),
		})
	}
	for _, e := range r.syntax {
		ce := &errors.CompileError{
			Code:      e.Code,
			Level:     errors.LevelError,
			Stage:     errors.StageSyntax,
			Message:   e.Message,
			File:      r.SourcePath,
			Line:      e.Pos.Line,
			Column:    e.Pos.Column,
			EndColumn: e.Pos.Column + width(e.TokenValue),
			Hints:     errors.GetSuggestions(e.Code, map[string]interface{}{"token": e.TokenType.String()}),
		}
		if e.Detail != "" {
			ce.Notes = []string{e.Detail}
		}
		out = append(out, ce)
	}
	for _, e := range r.semantic {
		out = append(out, &errors.CompileError{
			Code:    e.Code,
			Level:   errors.LevelError,
			Stage:   errors.StageSemantic,
			Message: e.Message,
			File:    r.SourcePath,
			Line:    e.Pos.Line,
			Column:  e.Pos.Column,
			Hints:   e.Hints,
		})
	}
	return out
}

// Err 将全部诊断合并为一个 error，没有错误时返回 nil
func (r *Result) Err() error {
	var err error
	for _, ce := range r.CompileErrors() {
		err = multierr.Append(err, ce)
	}
	return err
}

// Summary 一行结果摘要
func (r *Result) Summary() string {
	name := r.SourcePath
	if name == "" {
		name = "<input>"
	}
	if r.OK {
		return i18n.T(i18n.MsgCompileOK, name)
	}
	return i18n.T(i18n.MsgCompileFailed, name, r.LexicalErrors, r.SyntaxErrors, r.SemanticErrors)
}

// JSON 序列化结果：tokens、AST 与各阶段诊断
func (r *Result) JSON() ([]byte, error) {
	var tree interface{}
	if r.AST != nil {
		tree = ast.ToMap(r.AST)
	}
	payload := map[string]interface{}{
		"ok":                r.OK,
		"source_path":       r.SourcePath,
		"tokens":            r.Tokens,
		"ast":               tree,
		"lexical_errors":    r.LexicalErrors,
		"syntax_errors":     r.SyntaxErrors,
		"semantic_errors":   r.SemanticErrors,
		"lexical_messages":  emptyIfNil(r.LexicalMessages),
		"syntax_messages":   emptyIfNil(r.SyntaxMessages),
		"semantic_messages": emptyIfNil(r.SemanticMessages),
		"symbol_table":      r.SymbolTable,
	}
	return json.MarshalIndent(payload, "", "  ")
}

// ============================================================================
// 文本输出
// ============================================================================

// FormatTokens token 列表的文本形式，每行 "NNNN: KIND value"
func FormatTokens(tokens []TokenInfo) string {
	var sb strings.Builder
	for _, t := range tokens {
		fmt.Fprintf(&sb, "%04d: %s %s\n", t.Line, t.Kind, valueRepr(t.Value))
	}
	return sb.String()
}

// FormatMessages 按阶段顺序输出全部诊断消息
func FormatMessages(r *Result) string {
	var sb strings.Builder
	for _, m := range r.LexicalMessages {
		sb.WriteString(m.Message)
		sb.WriteByte('\n')
	}
	for _, m := range r.SyntaxMessages {
		sb.WriteString(m.Message)
		sb.WriteByte('\n')
	}
	for _, m := range r.SemanticMessages {
		sb.WriteString(i18n.T(i18n.MsgSemanticError, m.Line, m.Message))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func valueRepr(v interface{}) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}

// ============================================================================
// 阶段结果转换
// ============================================================================

func tokenInfos(tokens []token.Token) []TokenInfo {
	out := make([]TokenInfo, 0, len(tokens))
	for _, t := range tokens {
		if t.Type == token.EOF {
			continue
		}
		out = append(out, TokenInfo{
			Line:  t.Pos.Line,
			Kind:  t.Type.String(),
			Value: t.Value,
		})
	}
	return out
}

func lexicalMessages(errs []lexer.Error) []Message {
	out := make([]Message, len(errs))
	for i, e := range errs {
		out[i] = Message{
			Level:   errors.LevelError.String(),
			Message: i18n.T(i18n.MsgLexicalError, e.Pos.Line, e.Message),
			Line:    e.Pos.Line,
		}
	}
	return out
}

func syntaxMessages(errs []parser.Error) []Message {
	out := make([]Message, len(errs))
	for i, e := range errs {
		out[i] = Message{
			Level:   errors.LevelError.String(),
			Message: e.Message,
			Line:    e.Pos.Line,
		}
	}
	return out
}

func semanticMessages(errs []semantic.Error) []Message {
	out := make([]Message, len(errs))
	for i, e := range errs {
		out[i] = Message{
			Level:   errors.LevelError.String(),
			Message: e.Message,
			Line:    e.Pos.Line,
		}
	}
	return out
}

func emptyIfNil(m []Message) []Message {
	if m == nil {
		return []Message{}
	}
	return m
}

// width 源码片段占用的列数（至少为 1）
func width(s string) int {
	if n := utf8.RuneCountInString(s); n > 0 {
		return n
	}
	return 1
}
