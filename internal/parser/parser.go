package parser

import (
	"fmt"

	"github.com/tangzhangming/phplite/internal/ast"
	"github.com/tangzhangming/phplite/internal/errors"
	"github.com/tangzhangming/phplite/internal/i18n"
	"github.com/tangzhangming/phplite/internal/lexer"
	"github.com/tangzhangming/phplite/internal/token"
)

// ============================================================================
// Parser - 语法分析器
// ============================================================================
//
// 递归下降 + 优先级爬升。Token 按需从 TokenSource 拉取，只缓冲向前看所需
// 的少量 Token。
//
// 错误恢复（panic mode）：报告错误后进入 panicMode，直到所在的语句循环
// 调用 synchronize：丢弃 Token 直到消费掉 ';'、'}' 或 '?>'（或到达 EOF），
// 然后继续解析。任何语法错误都会让 Parse 返回 nil。
//
// ============================================================================

// TokenSource 是语法分析器的 Token 来源，lexer.Lexer 实现了它。
// 输入耗尽后必须一直返回 EOF。
type TokenSource interface {
	NextToken() token.Token
}

const (
	// maxParseErrors 最大错误数量限制，防止错误爆炸
	maxParseErrors = 50
	// maxExprDepth 最大嵌套深度，防止栈溢出
	maxExprDepth = 200
)

// Parser 语法分析器
type Parser struct {
	src      TokenSource
	filename string

	buf []token.Token // 向前看缓冲，buf[0] 为当前 Token

	errors    []Error
	onError   func(Error)
	panicMode bool // 错误恢复模式标志，用于避免级联报错
	aborted   bool // 错误数量超限后停止解析
	closed    bool // 已消费 '?>'

	depth     int // 当前嵌套深度
	maxDepth  int
	maxErrors int
}

// Error 语法错误
type Error struct {
	Pos        token.Position
	TokenType  token.TokenType // 出错位置的 Token 种类
	TokenValue string          // 出错位置的 Token 值
	Code       string
	Message    string
	Detail     string // 补充说明，例如 "expected ';'"
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Option 配置 Parser
type Option func(*Parser)

// WithMaxErrors 设置最多报告的错误数（<=0 表示使用默认值）
func WithMaxErrors(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxErrors = n
		}
	}
}

// WithMaxDepth 设置最大嵌套深度（<=0 表示使用默认值）
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// New 创建一个新的语法分析器
func New(src TokenSource, filename string, opts ...Option) *Parser {
	p := &Parser{
		src:       src,
		filename:  filename,
		maxDepth:  maxExprDepth,
		maxErrors: maxParseErrors,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseSource 用新的词法分析器解析源代码
func ParseSource(source, filename string, opts ...Option) (*ast.Program, []Error) {
	p := New(lexer.New(source, filename), filename, opts...)
	prog := p.Parse()
	return prog, p.Errors()
}

// SetErrorHandler 设置错误回调，每记录一个语法错误调用一次
func (p *Parser) SetErrorHandler(fn func(Error)) {
	p.onError = fn
}

// Errors 返回所有语法错误
func (p *Parser) Errors() []Error {
	return p.errors
}

// ErrorCount 返回语法错误数量
func (p *Parser) ErrorCount() int {
	return len(p.errors)
}

// HasErrors 检查是否有错误
func (p *Parser) HasErrors() bool {
	return len(p.errors) > 0
}

// ============================================================================
// 程序
// ============================================================================

// Parse 解析整个程序：<?php top* ?>
//
// 存在任何语法错误时返回 nil。
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{Start: p.peek().Pos}

	if !p.match(token.PHP_OPEN) {
		p.errorUnexpected("")
		p.panicMode = false
	}

	for !p.closed && !p.aborted && !p.isAtEnd() {
		if p.check(token.PHP_CLOSE) {
			p.advance()
			p.closed = true
			break
		}
		p.panicMode = false
		item := p.parseTopLevel()
		if p.panicMode {
			p.synchronize()
			continue
		}
		if item != nil {
			prog.Items = append(prog.Items, item)
		}
	}

	if !p.aborted {
		if !p.closed {
			p.panicMode = false
			p.errorUnexpected(token.PHP_CLOSE.String())
		} else if !p.isAtEnd() {
			p.panicMode = false
			p.errorUnexpected("EOF")
		}
	}

	if len(p.errors) > 0 {
		return nil
	}
	return prog
}

func (p *Parser) parseTopLevel() ast.Stmt {
	switch p.peek().Type {
	case token.NAMESPACE:
		return p.parseNamespace()
	case token.USE:
		return p.parseUse()
	case token.CLASS:
		if d := p.parseClass(); d != nil {
			return d
		}
		return nil
	case token.FUNCTION:
		if d := p.parseFunction("", false); d != nil {
			return d
		}
		return nil
	}
	return p.parseStatement()
}

// ============================================================================
// 声明
// ============================================================================

func (p *Parser) parseNamespace() ast.Stmt {
	start := p.advance().Pos
	name := p.parseQualifiedName()
	if name == nil {
		return nil
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.NamespaceDecl{Start: start, Name: name}
}

func (p *Parser) parseUse() ast.Stmt {
	start := p.advance().Pos
	decl := &ast.UseDecl{Start: start}
	for {
		name := p.parseQualifiedName()
		if name == nil {
			return nil
		}
		decl.Names = append(decl.Names, name)
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return decl
}

// parseQualifiedName ID ('\' ID)*
func (p *Parser) parseQualifiedName() *ast.Name {
	if !p.check(token.ID) {
		p.errorUnexpected(token.ID.String())
		return nil
	}
	first := p.advance()
	name := &ast.Name{Start: first.Pos, Parts: []string{first.Literal}}
	for p.check(token.NAMESPACE_SEPARATOR) {
		p.advance()
		if !p.check(token.ID) {
			p.errorUnexpected(token.ID.String())
			return nil
		}
		name.Parts = append(name.Parts, p.advance().Literal)
	}
	return name
}

// parseClass CLASS ID '{' member* '}'
func (p *Parser) parseClass() *ast.ClassDecl {
	start := p.advance().Pos
	nameTok, ok := p.consume(token.ID)
	if !ok || !p.expect(token.LBRACE) {
		return nil
	}
	decl := &ast.ClassDecl{Start: start, Name: nameTok.Literal}

	for !p.check(token.RBRACE) && !p.isAtEnd() && !p.aborted && !p.closed {
		p.panicMode = false
		member := p.parseClassMember()
		if p.panicMode {
			closedBody := p.synchronize()
			p.panicMode = false
			if closedBody {
				return decl
			}
			continue
		}
		decl.Members = append(decl.Members, member)
	}
	if p.closed || p.aborted {
		return decl
	}
	if !p.expect(token.RBRACE) {
		return nil
	}
	return decl
}

// parseClassMember visibility? STATIC? function_decl
func (p *Parser) parseClassMember() *ast.FunctionDecl {
	visibility := ""
	if p.checkAny(token.PUBLIC, token.PRIVATE, token.PROTECTED) {
		visibility = p.advance().Literal
	}
	static := p.match(token.STATIC)
	if !p.check(token.FUNCTION) {
		p.errorWithCode(p.peek(), errors.E0001, i18n.T(i18n.ErrExpectedMember))
		return nil
	}
	return p.parseFunction(visibility, static)
}

// parseFunction FUNCTION ID '(' params? ')' block
func (p *Parser) parseFunction(visibility string, static bool) *ast.FunctionDecl {
	start := p.advance().Pos
	nameTok, ok := p.consume(token.ID)
	if !ok || !p.expect(token.LPAREN) {
		return nil
	}
	decl := &ast.FunctionDecl{
		Start:      start,
		Name:       nameTok.Literal,
		Visibility: visibility,
		IsStatic:   static,
	}

	if !p.check(token.RPAREN) {
		for {
			param := p.parseParam()
			if param == nil {
				return nil
			}
			decl.Params = append(decl.Params, param)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}
	decl.Body = body
	return decl
}

// parseParam VARIABLE ('=' expr)?
func (p *Parser) parseParam() *ast.Param {
	tok, ok := p.consume(token.VARIABLE)
	if !ok {
		return nil
	}
	param := &ast.Param{Start: tok.Pos, Name: tok.Literal}
	if p.match(token.ASSIGN) {
		param.Default = p.parseExpr()
		if param.Default == nil {
			return nil
		}
	}
	return param
}

// ============================================================================
// 语句
// ============================================================================

// parseBlock '{' stmt* '}'
func (p *Parser) parseBlock() *ast.Block {
	lbrace, ok := p.consume(token.LBRACE)
	if !ok {
		return nil
	}
	block := &ast.Block{Start: lbrace.Pos}

	for !p.check(token.RBRACE) && !p.isAtEnd() && !p.aborted && !p.closed {
		p.panicMode = false
		stmt := p.parseStatement()
		if p.panicMode {
			closedBlock := p.synchronize()
			p.panicMode = false
			if closedBlock {
				return block
			}
			continue
		}
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}
	if p.closed || p.aborted {
		return block
	}
	if !p.expect(token.RBRACE) {
		return nil
	}
	return block
}

func (p *Parser) parseStatement() ast.Stmt {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	switch p.peek().Type {
	case token.SEMICOLON:
		return &ast.EmptyStmt{Start: p.advance().Pos}
	case token.LBRACE:
		if b := p.parseBlock(); b != nil {
			return b
		}
		return nil
	case token.ECHO:
		return p.parseEcho()
	case token.PRINT:
		start := p.advance().Pos
		expr := p.parseExpr()
		if expr == nil || !p.expect(token.SEMICOLON) {
			return nil
		}
		return &ast.PrintStmt{Start: start, Expr: expr}
	case token.RETURN:
		return p.parseReturn()
	case token.INCLUDE, token.REQUIRE:
		kw := p.advance()
		path := p.parseExpr()
		if path == nil || !p.expect(token.SEMICOLON) {
			return nil
		}
		if kw.Type == token.INCLUDE {
			return &ast.IncludeStmt{Start: kw.Pos, Path: path}
		}
		return &ast.RequireStmt{Start: kw.Pos, Path: path}
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.FOREACH:
		return p.parseForeach()
	case token.VARIABLE:
		if p.startsVarDecl() {
			decl := p.parseVarBindings()
			if decl == nil || !p.expect(token.SEMICOLON) {
				return nil
			}
			return decl
		}
	}

	start := p.peek().Pos
	expr := p.parseExpr()
	if expr == nil || !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.ExprStmt{Start: start, Expr: expr}
}

// startsVarDecl 当前为 VARIABLE 且其后为 '='、','、';' 时按变量绑定解析
func (p *Parser) startsVarDecl() bool {
	if !p.check(token.VARIABLE) {
		return false
	}
	switch p.peekAt(1).Type {
	case token.ASSIGN, token.COMMA, token.SEMICOLON:
		return true
	}
	return false
}

// parseVarBindings varbind (',' varbind)*
func (p *Parser) parseVarBindings() *ast.VarDeclStmt {
	decl := &ast.VarDeclStmt{Start: p.peek().Pos}
	for {
		tok, ok := p.consume(token.VARIABLE)
		if !ok {
			return nil
		}
		binding := &ast.VarBinding{Start: tok.Pos, Name: tok.Literal}
		if p.match(token.ASSIGN) {
			binding.Init = p.parseExpr()
			if binding.Init == nil {
				return nil
			}
		}
		decl.Bindings = append(decl.Bindings, binding)
		if !p.match(token.COMMA) {
			return decl
		}
	}
}

func (p *Parser) parseEcho() ast.Stmt {
	start := p.advance().Pos
	exprs := p.parseExprList()
	if exprs == nil || !p.expect(token.SEMICOLON) {
		return nil
	}
	return &ast.EchoStmt{Start: start, Exprs: exprs}
}

func (p *Parser) parseReturn() ast.Stmt {
	stmt := &ast.ReturnStmt{Start: p.advance().Pos}
	if !p.check(token.SEMICOLON) {
		stmt.Value = p.parseExpr()
		if stmt.Value == nil {
			return nil
		}
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return stmt
}

// parseCondition '(' expr ')'
func (p *Parser) parseCondition() ast.Expr {
	if !p.expect(token.LPAREN) {
		return nil
	}
	cond := p.parseExpr()
	if cond == nil || !p.expect(token.RPAREN) {
		return nil
	}
	return cond
}

func (p *Parser) parseIf() ast.Stmt {
	stmt := &ast.IfStmt{Start: p.advance().Pos}
	if stmt.Cond = p.parseCondition(); stmt.Cond == nil {
		return nil
	}
	if stmt.Then = p.parseStatement(); stmt.Then == nil {
		return nil
	}

	for p.check(token.ELSEIF) {
		clause := &ast.ElseIfClause{Start: p.advance().Pos}
		if clause.Cond = p.parseCondition(); clause.Cond == nil {
			return nil
		}
		if clause.Body = p.parseStatement(); clause.Body == nil {
			return nil
		}
		stmt.ElseIfs = append(stmt.ElseIfs, clause)
	}

	if p.match(token.ELSE) {
		if stmt.Else = p.parseStatement(); stmt.Else == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Stmt {
	stmt := &ast.WhileStmt{Start: p.advance().Pos}
	if stmt.Cond = p.parseCondition(); stmt.Cond == nil {
		return nil
	}
	if stmt.Body = p.parseStatement(); stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseFor FOR '(' for_init? ';' expr? ';' expr_list? ')' stmt
func (p *Parser) parseFor() ast.Stmt {
	stmt := &ast.ForStmt{Start: p.advance().Pos}
	if !p.expect(token.LPAREN) {
		return nil
	}

	switch {
	case p.check(token.SEMICOLON):
	case p.startsVarDecl():
		if stmt.InitDecl = p.parseVarBindings(); stmt.InitDecl == nil {
			return nil
		}
	default:
		if stmt.Init = p.parseExprList(); stmt.Init == nil {
			return nil
		}
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}

	if !p.check(token.SEMICOLON) {
		if stmt.Cond = p.parseExpr(); stmt.Cond == nil {
			return nil
		}
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}

	if !p.check(token.RPAREN) {
		if stmt.Iters = p.parseExprList(); stmt.Iters == nil {
			return nil
		}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}

	if stmt.Body = p.parseStatement(); stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseForeach FOREACH '(' expr AS VARIABLE ('=>' VARIABLE)? ')' stmt
func (p *Parser) parseForeach() ast.Stmt {
	stmt := &ast.ForeachStmt{Start: p.advance().Pos}
	if !p.expect(token.LPAREN) {
		return nil
	}
	if stmt.Iterable = p.parseExpr(); stmt.Iterable == nil {
		return nil
	}
	if !p.expect(token.AS) {
		return nil
	}

	first, ok := p.consume(token.VARIABLE)
	if !ok {
		return nil
	}
	stmt.Value = &ast.Var{Start: first.Pos, Name: first.Literal}
	if p.match(token.DOUBLEARROW) {
		second, ok := p.consume(token.VARIABLE)
		if !ok {
			return nil
		}
		stmt.Key = stmt.Value
		stmt.Value = &ast.Var{Start: second.Pos, Name: second.Literal}
	}

	if !p.expect(token.RPAREN) {
		return nil
	}
	if stmt.Body = p.parseStatement(); stmt.Body == nil {
		return nil
	}
	return stmt
}

// ============================================================================
// 表达式
// ============================================================================

// 二元运算符优先级（数值越大绑定越紧）
const (
	PREC_NONE = iota
	PREC_OR         // ||
	PREC_AND        // &&
	PREC_EQUALITY   // == != === !==
	PREC_COMPARISON // < <= > >=
	PREC_TERM       // + - .
	PREC_FACTOR     // * / %
)

func binaryPrecedence(t token.TokenType) int {
	switch t {
	case token.OR:
		return PREC_OR
	case token.AND:
		return PREC_AND
	case token.EQUAL, token.NOTEQUAL, token.IDENT, token.NIDENT:
		return PREC_EQUALITY
	case token.LT, token.LE, token.GT, token.GE:
		return PREC_COMPARISON
	case token.PLUS, token.MINUS, token.CONCAT:
		return PREC_TERM
	case token.TIMES, token.DIVIDE, token.MOD:
		return PREC_FACTOR
	}
	return PREC_NONE
}

// parseExprList expr (',' expr)*
func (p *Parser) parseExprList() []ast.Expr {
	var exprs []ast.Expr
	for {
		e := p.parseExpr()
		if e == nil {
			return nil
		}
		exprs = append(exprs, e)
		if !p.match(token.COMMA) {
			return exprs
		}
	}
}

func (p *Parser) parseExpr() ast.Expr {
	if !p.enter() {
		return nil
	}
	defer p.leave()
	return p.parseAssign()
}

// parseAssign postfix '=' assign | ternary（右结合）
func (p *Parser) parseAssign() ast.Expr {
	left := p.parseTernary()
	if left == nil || !p.check(token.ASSIGN) {
		return left
	}

	switch left.(type) {
	case *ast.Binary, *ast.Unary, *ast.Ternary, *ast.Assign:
		p.errorWithCode(p.peek(), errors.E0009, i18n.T(i18n.ErrInvalidAssignTarget))
		return nil
	}

	eq := p.advance()
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	return &ast.Assign{Start: eq.Pos, Target: left, Value: value}
}

// parseTernary logic_or ('?' assign ':' assign)?
func (p *Parser) parseTernary() ast.Expr {
	cond := p.parseBinary(PREC_OR)
	if cond == nil || !p.check(token.QUESTION) {
		return cond
	}
	q := p.advance()
	ifTrue := p.parseExpr()
	if ifTrue == nil || !p.expect(token.COLON) {
		return nil
	}
	ifFalse := p.parseExpr()
	if ifFalse == nil {
		return nil
	}
	return &ast.Ternary{Start: q.Pos, Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}
}

// parseBinary 优先级爬升，所有二元运算符左结合
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}

	for {
		prec := binaryPrecedence(p.peek().Type)
		if prec == PREC_NONE || prec < minPrec {
			return left
		}
		op := p.advance()
		right := p.parseBinary(prec + 1)
		if right == nil {
			return nil
		}
		left = &ast.Binary{Start: op.Pos, Op: op.Literal, Left: left, Right: right}
	}
}

// parseUnary ('!' | '+' | '-' | '++' | '--') unary | postfix
func (p *Parser) parseUnary() ast.Expr {
	var op string
	switch p.peek().Type {
	case token.NOT:
		op = ast.OpNot
	case token.PLUS:
		op = ast.OpPlus
	case token.MINUS:
		op = ast.OpMinus
	case token.INC:
		op = ast.OpPreInc
	case token.DEC:
		op = ast.OpPreDec
	default:
		return p.parsePostfix()
	}

	if !p.enter() {
		return nil
	}
	defer p.leave()

	tok := p.advance()
	operand := p.parseUnary()
	if operand == nil {
		return nil
	}
	return &ast.Unary{Start: tok.Pos, Op: op, Operand: operand}
}

// parsePostfix primary ('++' | '--' | '[' expr ']' | '(' args ')' | '->' ID)*
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}

	for {
		switch p.peek().Type {
		case token.INC, token.DEC:
			tok := p.advance()
			expr = &ast.PostfixUnary{Start: tok.Pos, Op: tok.Literal, Operand: expr}
		case token.LBRACKET:
			tok := p.advance()
			index := p.parseExpr()
			if index == nil || !p.expect(token.RBRACKET) {
				return nil
			}
			expr = &ast.Index{Start: tok.Pos, Base: expr, Index: index}
		case token.LPAREN:
			tok := p.peek()
			args, ok := p.parseArgs()
			if !ok {
				return nil
			}
			expr = &ast.Call{Start: tok.Pos, Callee: expr, Args: args}
		case token.ARROW:
			tok := p.advance()
			name, ok := p.consume(token.ID)
			if !ok {
				return nil
			}
			expr = &ast.Member{Start: tok.Pos, Object: expr, Name: name.Literal}
		default:
			return expr
		}
	}
}

// parseArgs '(' (expr (',' expr)*)? ')'
func (p *Parser) parseArgs() ([]ast.Expr, bool) {
	if !p.expect(token.LPAREN) {
		return nil, false
	}
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		if args = p.parseExprList(); args == nil {
			return nil, false
		}
	}
	if !p.expect(token.RPAREN) {
		return nil, false
	}
	return args, true
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Type {
	case token.VARIABLE:
		p.advance()
		return &ast.Var{Start: tok.Pos, Name: tok.Literal}
	case token.NUMBER:
		p.advance()
		return &ast.NumberLit{Start: tok.Pos, Raw: tok.Literal, Value: tok.Value}
	case token.STRING:
		p.advance()
		value, _ := tok.Value.(string)
		return &ast.StringLit{Start: tok.Pos, Value: value}
	case token.TRUE, token.FALSE:
		p.advance()
		return &ast.BoolLit{Start: tok.Pos, Value: tok.Type == token.TRUE}
	case token.NULL:
		p.advance()
		return &ast.NullLit{Start: tok.Pos}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpr()
		if inner == nil || !p.expect(token.RPAREN) {
			return nil
		}
		return inner
	case token.LBRACKET:
		return p.parseArray()
	case token.ID:
		name := p.parseQualifiedName()
		if name == nil {
			return nil
		}
		if p.match(token.SCOPE) {
			member, ok := p.consume(token.ID)
			if !ok {
				return nil
			}
			return &ast.StaticAccess{Start: name.Start, Class: name, Name: member.Literal}
		}
		return name
	case token.NEW:
		p.advance()
		class := p.parseQualifiedName()
		if class == nil {
			return nil
		}
		if !p.check(token.LPAREN) {
			p.errorUnexpected(token.LPAREN.String())
			return nil
		}
		args, ok := p.parseArgs()
		if !ok {
			return nil
		}
		return &ast.New{Start: tok.Pos, Class: class, Args: args}
	}

	p.errorUnexpected("")
	return nil
}

// parseArray '[' (pair (',' pair)* ','?)? ']'
func (p *Parser) parseArray() ast.Expr {
	lbracket := p.advance()
	arr := &ast.ArrayLit{Start: lbracket.Pos}

	for !p.check(token.RBRACKET) {
		first := p.parseExpr()
		if first == nil {
			return nil
		}
		pair := &ast.ArrayPair{Start: first.Pos(), Value: first}
		if p.match(token.DOUBLEARROW) {
			value := p.parseExpr()
			if value == nil {
				return nil
			}
			pair.Key, pair.Value = first, value
		}
		arr.Pairs = append(arr.Pairs, pair)
		if !p.match(token.COMMA) {
			break
		}
	}

	if !p.expect(token.RBRACKET) {
		return nil
	}
	return arr
}

// ============================================================================
// 辅助方法
// ============================================================================

// fill 保证缓冲区至少有 n 个 Token
func (p *Parser) fill(n int) {
	for len(p.buf) < n {
		p.buf = append(p.buf, p.src.NextToken())
	}
}

func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

// peekAt 向前看第 i 个 Token（0 为当前 Token）
func (p *Parser) peekAt(i int) token.Token {
	p.fill(i + 1)
	return p.buf[i]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Type != token.EOF {
		p.buf = p.buf[1:]
	}
	return tok
}

func (p *Parser) check(t token.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) checkAny(types ...token.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			return true
		}
	}
	return false
}

func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

// consume 消费指定类型的 Token，不匹配时报告错误
func (p *Parser) consume(t token.TokenType) (token.Token, bool) {
	if p.check(t) {
		return p.advance(), true
	}
	p.errorUnexpected(t.String())
	return token.Token{}, false
}

func (p *Parser) expect(t token.TokenType) bool {
	_, ok := p.consume(t)
	return ok
}

// enter / leave 维护嵌套深度；超限时报告错误并返回 false
func (p *Parser) enter() bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.depth--
		p.errorWithCode(p.peek(), errors.E0008, i18n.T(i18n.ErrExpressionTooDeep, p.maxDepth))
		return false
	}
	return true
}

func (p *Parser) leave() {
	p.depth--
}

// ============================================================================
// 错误处理
// ============================================================================

// errorUnexpected 在当前 Token 处报告语法错误，expected 为期望内容（可为空）
func (p *Parser) errorUnexpected(expected string) {
	tok := p.peek()
	code := errors.E0001
	if tok.Type == token.EOF {
		code = errors.E0007
	}
	detail := ""
	if expected != "" {
		detail = i18n.T(i18n.ErrExpectedToken, expected)
	}
	p.report(tok, code, syntaxMessage(tok), detail)
}

// errorWithCode 报告带专用错误码的语法错误
func (p *Parser) errorWithCode(tok token.Token, code, detail string) {
	msg := syntaxMessage(tok)
	if code == errors.E0008 {
		msg = detail
	}
	p.report(tok, code, msg, detail)
}

func (p *Parser) report(tok token.Token, code, message, detail string) {
	// panicMode 下跳过后续错误，避免级联报错
	if p.panicMode || p.aborted {
		p.panicMode = true
		return
	}
	p.panicMode = true

	// 避免在同一位置重复报错
	if n := len(p.errors); n > 0 && p.errors[n-1].Pos == tok.Pos {
		return
	}

	if len(p.errors) >= p.maxErrors {
		p.aborted = true
		message = i18n.T(i18n.ErrTooManyErrors, len(p.errors))
		detail = ""
	}

	e := Error{
		Pos:        tok.Pos,
		TokenType:  tok.Type,
		TokenValue: tokenValue(tok),
		Code:       code,
		Message:    message,
		Detail:     detail,
	}
	p.errors = append(p.errors, e)
	if p.onError != nil {
		p.onError(e)
	}
}

// synchronize 丢弃 Token 直到消费掉 ';'、'}' 或 '?>'，或到达 EOF。
// 消费掉的是 '}' 或 '?>' 时返回 true，调用方据此结束当前块。
func (p *Parser) synchronize() bool {
	for !p.isAtEnd() {
		tok := p.advance()
		switch tok.Type {
		case token.SEMICOLON:
			return false
		case token.RBRACE:
			return true
		case token.PHP_CLOSE:
			p.closed = true
			return true
		}
	}
	return false
}

func syntaxMessage(tok token.Token) string {
	if tok.Type == token.EOF {
		return i18n.T(i18n.ErrSyntaxEOF)
	}
	return i18n.T(i18n.ErrSyntax, tok.Pos.Line, tok.Type, tokenValue(tok))
}

func tokenValue(tok token.Token) string {
	if tok.Type == token.EOF {
		return ""
	}
	if tok.Value != nil {
		return fmt.Sprint(tok.Value)
	}
	return tok.Literal
}
