// Package compiler 是前端各阶段的外观层：词法、语法、语义分析一次完成，
// 结果统一整理为 Result，供命令行与语言服务器使用。
package compiler

import (
	"go.uber.org/zap"

	"github.com/tangzhangming/phplite/internal/ast"
	"github.com/tangzhangming/phplite/internal/config"
	"github.com/tangzhangming/phplite/internal/lexer"
	"github.com/tangzhangming/phplite/internal/parser"
	"github.com/tangzhangming/phplite/internal/semantic"
)

// Compiler 编译器外观
//
// Compiler 本身不保存编译状态，每次调用都新建词法器、解析器与符号表，
// 可以在多个 goroutine 中并发使用。
type Compiler struct {
	cfg    *config.Config
	logger *zap.Logger
}

// Option 配置 Compiler
type Option func(*Compiler)

// WithConfig 使用项目配置
func WithConfig(cfg *config.Config) Option {
	return func(c *Compiler) {
		if cfg != nil {
			c.cfg = cfg
		}
	}
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New 创建编译器
func New(opts ...Option) *Compiler {
	c := &Compiler{
		cfg:    config.Default(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config 返回编译器使用的配置
func (c *Compiler) Config() *config.Config {
	return c.cfg
}

var defaultCompiler = New()

// Tokenize 使用默认编译器
func Tokenize(source string) []TokenInfo { return defaultCompiler.Tokenize(source) }

// Parse 使用默认编译器
func Parse(source string) ParseResult { return defaultCompiler.Parse(source, "") }

// Analyze 使用默认编译器
func Analyze(prog *ast.Program) AnalysisResult { return defaultCompiler.Analyze(prog) }

// Compile 使用默认编译器
func Compile(source, path string) *Result { return defaultCompiler.Compile(source, path) }

// ============================================================================
// 各阶段
// ============================================================================

// Tokenize 扫描全部 token（不含 EOF），词法错误不影响输出
func (c *Compiler) Tokenize(source string) []TokenInfo {
	return tokenInfos(lexer.New(source, "").ScanTokens())
}

// Parse 词法与语法分析；存在语法错误时 AST 为 nil
func (c *Compiler) Parse(source, path string) ParseResult {
	lx := lexer.New(source, path)
	p := parser.New(lx, path,
		parser.WithMaxErrors(c.cfg.Compiler.MaxErrors),
		parser.WithMaxDepth(c.cfg.Compiler.MaxExprDepth),
	)
	prog := p.Parse()

	// 解析提前结束时把剩余输入扫描完，词法错误总是完整的
	for !lx.Done() {
		lx.NextToken()
	}

	res := ParseResult{
		AST:             prog,
		SyntaxErrors:    p.ErrorCount(),
		SyntaxMessages:  syntaxMessages(p.Errors()),
		LexicalErrors:   lx.ErrorCount(),
		LexicalMessages: lexicalMessages(lx.Errors()),
		lexical:         lx.Errors(),
		syntax:          p.Errors(),
	}
	c.logger.Debug("parsed",
		zap.String("path", path),
		zap.Int("lexical_errors", res.LexicalErrors),
		zap.Int("syntax_errors", res.SyntaxErrors),
	)
	return res
}

// Analyze 语义分析；prog 为 nil 时返回空结果
func (c *Compiler) Analyze(prog *ast.Program) AnalysisResult {
	if prog == nil {
		return AnalysisResult{}
	}
	a := semantic.New(semantic.WithStrictRedeclaration(c.cfg.Compiler.StrictRedeclaration))
	errs := a.Analyze(prog)
	res := AnalysisResult{
		SemanticErrors:   len(errs),
		SemanticMessages: semanticMessages(errs),
		SymbolTable:      a.Snapshot(),
		semantic:         errs,
	}
	c.logger.Debug("analyzed",
		zap.Int("semantic_errors", res.SemanticErrors),
		zap.Int("scopes", len(res.SymbolTable)),
	)
	return res
}

// Compile 完整编译一段源码
//
// token 列表由独立的词法器实例产生，与解析器使用的词法器互不影响。
func (c *Compiler) Compile(source, path string) *Result {
	pr := c.Parse(source, path)

	r := &Result{
		Tokens:          c.Tokenize(source),
		AST:             pr.AST,
		LexicalErrors:   pr.LexicalErrors,
		SyntaxErrors:    pr.SyntaxErrors,
		LexicalMessages: pr.LexicalMessages,
		SyntaxMessages:  pr.SyntaxMessages,
		SourcePath:      path,
		lexical:         pr.lexical,
		syntax:          pr.syntax,
	}

	if pr.AST != nil {
		if data, err := ast.MarshalIndent(pr.AST, "  "); err == nil {
			r.ASTJSON = string(data)
		} else {
			c.logger.Warn("ast serialization failed", zap.Error(err))
		}

		ar := c.Analyze(pr.AST)
		r.SemanticErrors = ar.SemanticErrors
		r.SemanticMessages = ar.SemanticMessages
		r.SymbolTable = ar.SymbolTable
		r.semantic = ar.semantic
	}

	r.OK = r.AST != nil && r.LexicalErrors == 0 && r.SyntaxErrors == 0 && r.SemanticErrors == 0
	c.logger.Info("compiled",
		zap.String("path", path),
		zap.Bool("ok", r.OK),
		zap.Int("tokens", len(r.Tokens)),
	)
	return r
}
