package ast

import (
	"strconv"
	"strings"

	"github.com/tangzhangming/phplite/internal/token"
)

// Node 是所有 AST 节点的基接口
type Node interface {
	Pos() token.Position // 返回节点在源代码中的位置
	Kind() string        // 节点种类名（Program、Binary ...）
	String() string      // 返回节点的源码形式（用于调试）
}

// Expr 表示一个表达式节点
type Expr interface {
	Node
	exprNode()
}

// Stmt 表示一个语句节点（顶层声明也是语句）
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================================
// 程序与声明
// ============================================================================

// Program 整个源文件：<?php ... ?>
type Program struct {
	Start token.Position
	Items []Stmt
}

func (p *Program) Pos() token.Position { return p.Start }
func (p *Program) Kind() string        { return "Program" }
func (p *Program) String() string {
	var sb strings.Builder
	sb.WriteString("<?php\n")
	for _, item := range p.Items {
		sb.WriteString(item.String())
		sb.WriteString("\n")
	}
	sb.WriteString("?>")
	return sb.String()
}

// NamespaceDecl namespace App\Util;
type NamespaceDecl struct {
	Start token.Position
	Name  *Name
}

func (d *NamespaceDecl) Pos() token.Position { return d.Start }
func (d *NamespaceDecl) Kind() string        { return "NamespaceDecl" }
func (d *NamespaceDecl) String() string      { return "namespace " + d.Name.String() + ";" }
func (d *NamespaceDecl) stmtNode()           {}

// UseDecl use A\B, C;
type UseDecl struct {
	Start token.Position
	Names []*Name
}

func (d *UseDecl) Pos() token.Position { return d.Start }
func (d *UseDecl) Kind() string        { return "UseDecl" }
func (d *UseDecl) String() string {
	parts := make([]string, len(d.Names))
	for i, n := range d.Names {
		parts[i] = n.String()
	}
	return "use " + strings.Join(parts, ", ") + ";"
}
func (d *UseDecl) stmtNode() {}

// ClassDecl 类声明，成员只有方法
type ClassDecl struct {
	Start   token.Position
	Name    string
	Members []*FunctionDecl
}

func (d *ClassDecl) Pos() token.Position { return d.Start }
func (d *ClassDecl) Kind() string        { return "ClassDecl" }
func (d *ClassDecl) String() string {
	var sb strings.Builder
	sb.WriteString("class ")
	sb.WriteString(d.Name)
	sb.WriteString(" {")
	for _, m := range d.Members {
		sb.WriteString(" ")
		sb.WriteString(m.String())
	}
	sb.WriteString(" }")
	return sb.String()
}
func (d *ClassDecl) stmtNode() {}

// FunctionDecl 函数或方法声明
//
// Visibility 只对类成员有意义（"public"/"private"/"protected"，未写为空）。
type FunctionDecl struct {
	Start      token.Position
	Name       string
	Params     []*Param
	Body       *Block
	Visibility string
	IsStatic   bool
}

func (d *FunctionDecl) Pos() token.Position { return d.Start }
func (d *FunctionDecl) Kind() string        { return "FunctionDecl" }
func (d *FunctionDecl) String() string {
	var sb strings.Builder
	if d.Visibility != "" {
		sb.WriteString(d.Visibility)
		sb.WriteString(" ")
	}
	if d.IsStatic {
		sb.WriteString("static ")
	}
	sb.WriteString("function ")
	sb.WriteString(d.Name)
	sb.WriteString("(")
	for i, p := range d.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(") ")
	sb.WriteString(d.Body.String())
	return sb.String()
}
func (d *FunctionDecl) stmtNode() {}

// Param 形参，Default 可为 nil
type Param struct {
	Start   token.Position
	Name    string // 含 $
	Default Expr
}

func (p *Param) Pos() token.Position { return p.Start }
func (p *Param) Kind() string        { return "Param" }
func (p *Param) String() string {
	if p.Default != nil {
		return p.Name + " = " + p.Default.String()
	}
	return p.Name
}

// ============================================================================
// 语句
// ============================================================================

// Block { ... }
type Block struct {
	Start token.Position
	Stmts []Stmt
}

func (s *Block) Pos() token.Position { return s.Start }
func (s *Block) Kind() string        { return "Block" }
func (s *Block) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for _, stmt := range s.Stmts {
		sb.WriteString(" ")
		sb.WriteString(stmt.String())
	}
	sb.WriteString(" }")
	return sb.String()
}
func (s *Block) stmtNode() {}

// EmptyStmt 单独的分号
type EmptyStmt struct {
	Start token.Position
}

func (s *EmptyStmt) Pos() token.Position { return s.Start }
func (s *EmptyStmt) Kind() string        { return "EmptyStmt" }
func (s *EmptyStmt) String() string      { return ";" }
func (s *EmptyStmt) stmtNode()           {}

// EchoStmt echo a, b;
type EchoStmt struct {
	Start token.Position
	Exprs []Expr
}

func (s *EchoStmt) Pos() token.Position { return s.Start }
func (s *EchoStmt) Kind() string        { return "EchoStmt" }
func (s *EchoStmt) String() string      { return "echo " + joinExprs(s.Exprs) + ";" }
func (s *EchoStmt) stmtNode()           {}

// PrintStmt print expr;
type PrintStmt struct {
	Start token.Position
	Expr  Expr
}

func (s *PrintStmt) Pos() token.Position { return s.Start }
func (s *PrintStmt) Kind() string        { return "PrintStmt" }
func (s *PrintStmt) String() string      { return "print " + s.Expr.String() + ";" }
func (s *PrintStmt) stmtNode()           {}

// ReturnStmt return [expr];
type ReturnStmt struct {
	Start token.Position
	Value Expr // 可为 nil
}

func (s *ReturnStmt) Pos() token.Position { return s.Start }
func (s *ReturnStmt) Kind() string        { return "ReturnStmt" }
func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "return;"
	}
	return "return " + s.Value.String() + ";"
}
func (s *ReturnStmt) stmtNode() {}

// IncludeStmt include expr;
type IncludeStmt struct {
	Start token.Position
	Path  Expr
}

func (s *IncludeStmt) Pos() token.Position { return s.Start }
func (s *IncludeStmt) Kind() string        { return "IncludeStmt" }
func (s *IncludeStmt) String() string      { return "include " + s.Path.String() + ";" }
func (s *IncludeStmt) stmtNode()           {}

// RequireStmt require expr;
type RequireStmt struct {
	Start token.Position
	Path  Expr
}

func (s *RequireStmt) Pos() token.Position { return s.Start }
func (s *RequireStmt) Kind() string        { return "RequireStmt" }
func (s *RequireStmt) String() string      { return "require " + s.Path.String() + ";" }
func (s *RequireStmt) stmtNode()           {}

// IfStmt if / elseif / else
type IfStmt struct {
	Start   token.Position
	Cond    Expr
	Then    Stmt
	ElseIfs []*ElseIfClause
	Else    Stmt // 可为 nil
}

func (s *IfStmt) Pos() token.Position { return s.Start }
func (s *IfStmt) Kind() string        { return "IfStmt" }
func (s *IfStmt) String() string {
	var sb strings.Builder
	sb.WriteString("if (")
	sb.WriteString(s.Cond.String())
	sb.WriteString(") ")
	sb.WriteString(s.Then.String())
	for _, ei := range s.ElseIfs {
		sb.WriteString(" ")
		sb.WriteString(ei.String())
	}
	if s.Else != nil {
		sb.WriteString(" else ")
		sb.WriteString(s.Else.String())
	}
	return sb.String()
}
func (s *IfStmt) stmtNode() {}

// ElseIfClause elseif (cond) stmt
type ElseIfClause struct {
	Start token.Position
	Cond  Expr
	Body  Stmt
}

func (c *ElseIfClause) Pos() token.Position { return c.Start }
func (c *ElseIfClause) Kind() string        { return "ElseIfClause" }
func (c *ElseIfClause) String() string {
	return "elseif (" + c.Cond.String() + ") " + c.Body.String()
}

// WhileStmt while (cond) stmt
type WhileStmt struct {
	Start token.Position
	Cond  Expr
	Body  Stmt
}

func (s *WhileStmt) Pos() token.Position { return s.Start }
func (s *WhileStmt) Kind() string        { return "WhileStmt" }
func (s *WhileStmt) String() string {
	return "while (" + s.Cond.String() + ") " + s.Body.String()
}
func (s *WhileStmt) stmtNode() {}

// ForStmt for (init; cond; iters) stmt
//
// 初始化子句二选一：InitDecl（$i = 0, $j = 1 形式的绑定）或 Init（表达式列表）。
type ForStmt struct {
	Start    token.Position
	InitDecl *VarDeclStmt
	Init     []Expr
	Cond     Expr // 可为 nil
	Iters    []Expr
	Body     Stmt
}

func (s *ForStmt) Pos() token.Position { return s.Start }
func (s *ForStmt) Kind() string        { return "ForStmt" }
func (s *ForStmt) String() string {
	var sb strings.Builder
	sb.WriteString("for (")
	if s.InitDecl != nil {
		sb.WriteString(s.InitDecl.bindingsString())
	} else {
		sb.WriteString(joinExprs(s.Init))
	}
	sb.WriteString("; ")
	if s.Cond != nil {
		sb.WriteString(s.Cond.String())
	}
	sb.WriteString("; ")
	sb.WriteString(joinExprs(s.Iters))
	sb.WriteString(") ")
	sb.WriteString(s.Body.String())
	return sb.String()
}
func (s *ForStmt) stmtNode() {}

// ForeachStmt foreach (expr as [$k =>] $v) stmt
type ForeachStmt struct {
	Start    token.Position
	Iterable Expr
	Key      *Var // 可为 nil
	Value    *Var
	Body     Stmt
}

func (s *ForeachStmt) Pos() token.Position { return s.Start }
func (s *ForeachStmt) Kind() string        { return "ForeachStmt" }
func (s *ForeachStmt) String() string {
	bind := s.Value.String()
	if s.Key != nil {
		bind = s.Key.String() + " => " + bind
	}
	return "foreach (" + s.Iterable.String() + " as " + bind + ") " + s.Body.String()
}
func (s *ForeachStmt) stmtNode() {}

// VarDeclStmt $a = 1, $b;
type VarDeclStmt struct {
	Start    token.Position
	Bindings []*VarBinding
}

func (s *VarDeclStmt) Pos() token.Position { return s.Start }
func (s *VarDeclStmt) Kind() string        { return "VarDeclStmt" }
func (s *VarDeclStmt) String() string      { return s.bindingsString() + ";" }
func (s *VarDeclStmt) stmtNode()           {}

func (s *VarDeclStmt) bindingsString() string {
	parts := make([]string, len(s.Bindings))
	for i, b := range s.Bindings {
		parts[i] = b.String()
	}
	return strings.Join(parts, ", ")
}

// VarBinding 单个绑定，Init 可为 nil
type VarBinding struct {
	Start token.Position
	Name  string // 含 $
	Init  Expr
}

func (b *VarBinding) Pos() token.Position { return b.Start }
func (b *VarBinding) Kind() string        { return "VarBinding" }
func (b *VarBinding) String() string {
	if b.Init != nil {
		return b.Name + " = " + b.Init.String()
	}
	return b.Name
}

// ExprStmt 表达式语句
type ExprStmt struct {
	Start token.Position
	Expr  Expr
}

func (s *ExprStmt) Pos() token.Position { return s.Start }
func (s *ExprStmt) Kind() string        { return "ExprStmt" }
func (s *ExprStmt) String() string      { return s.Expr.String() + ";" }
func (s *ExprStmt) stmtNode()           {}

// ============================================================================
// 表达式
// ============================================================================

// Name 限定名 A\B\C
type Name struct {
	Start token.Position
	Parts []string
}

func (e *Name) Pos() token.Position { return e.Start }
func (e *Name) Kind() string        { return "Name" }
func (e *Name) String() string      { return strings.Join(e.Parts, `\`) }
func (e *Name) exprNode()           {}

// Joined 用给定分隔符拼接各段
func (e *Name) Joined(sep string) string { return strings.Join(e.Parts, sep) }

// Var 变量引用 $x
type Var struct {
	Start token.Position
	Name  string // 含 $
}

func (e *Var) Pos() token.Position { return e.Start }
func (e *Var) Kind() string        { return "Var" }
func (e *Var) String() string      { return e.Name }
func (e *Var) exprNode()           {}

// NumberLit 数字字面量，Value 为 int64 或 float64
type NumberLit struct {
	Start token.Position
	Raw   string
	Value interface{}
}

func (e *NumberLit) Pos() token.Position { return e.Start }
func (e *NumberLit) Kind() string        { return "NumberLit" }
func (e *NumberLit) String() string {
	if e.Raw != "" {
		return e.Raw
	}
	switch v := e.Value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "0"
}
func (e *NumberLit) exprNode() {}

// IsFloat 字面量是否为浮点数
func (e *NumberLit) IsFloat() bool {
	_, ok := e.Value.(float64)
	return ok
}

// StringLit 字符串字面量，Value 为引号内原文
type StringLit struct {
	Start token.Position
	Value string
}

func (e *StringLit) Pos() token.Position { return e.Start }
func (e *StringLit) Kind() string        { return "StringLit" }
func (e *StringLit) String() string      { return "'" + e.Value + "'" }
func (e *StringLit) exprNode()           {}

// BoolLit true / false
type BoolLit struct {
	Start token.Position
	Value bool
}

func (e *BoolLit) Pos() token.Position { return e.Start }
func (e *BoolLit) Kind() string        { return "BoolLit" }
func (e *BoolLit) String() string      { return strconv.FormatBool(e.Value) }
func (e *BoolLit) exprNode()           {}

// NullLit null
type NullLit struct {
	Start token.Position
}

func (e *NullLit) Pos() token.Position { return e.Start }
func (e *NullLit) Kind() string        { return "NullLit" }
func (e *NullLit) String() string      { return "null" }
func (e *NullLit) exprNode()           {}

// ArrayLit [k => v, v2]
type ArrayLit struct {
	Start token.Position
	Pairs []*ArrayPair
}

func (e *ArrayLit) Pos() token.Position { return e.Start }
func (e *ArrayLit) Kind() string        { return "ArrayLit" }
func (e *ArrayLit) String() string {
	parts := make([]string, len(e.Pairs))
	for i, p := range e.Pairs {
		parts[i] = p.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (e *ArrayLit) exprNode() {}

// ArrayPair 数组元素，Key 可为 nil
type ArrayPair struct {
	Start token.Position
	Key   Expr
	Value Expr
}

func (p *ArrayPair) Pos() token.Position { return p.Start }
func (p *ArrayPair) Kind() string        { return "ArrayPair" }
func (p *ArrayPair) String() string {
	if p.Key != nil {
		return p.Key.String() + " => " + p.Value.String()
	}
	return p.Value.String()
}

// Assign target = value
type Assign struct {
	Start  token.Position
	Target Expr
	Value  Expr
}

func (e *Assign) Pos() token.Position { return e.Start }
func (e *Assign) Kind() string        { return "Assign" }
func (e *Assign) String() string      { return e.Target.String() + " = " + e.Value.String() }
func (e *Assign) exprNode()           {}

// Binary 二元运算，Op 为运算符原文（"+"、"&&"、"==="...）
type Binary struct {
	Start token.Position
	Op    string
	Left  Expr
	Right Expr
}

func (e *Binary) Pos() token.Position { return e.Start }
func (e *Binary) Kind() string        { return "Binary" }
func (e *Binary) String() string {
	return "(" + e.Left.String() + " " + e.Op + " " + e.Right.String() + ")"
}
func (e *Binary) exprNode() {}

// 前缀一元运算标签
const (
	OpNot    = "!"
	OpPlus   = "u+"
	OpMinus  = "u-"
	OpPreInc = "++"
	OpPreDec = "--"
)

// Unary 前缀一元运算
type Unary struct {
	Start   token.Position
	Op      string // OpNot / OpPlus / OpMinus / OpPreInc / OpPreDec
	Operand Expr
}

func (e *Unary) Pos() token.Position { return e.Start }
func (e *Unary) Kind() string        { return "Unary" }
func (e *Unary) String() string {
	return "(" + strings.TrimPrefix(e.Op, "u") + e.Operand.String() + ")"
}
func (e *Unary) exprNode() {}

// Symbol 返回运算符的源码形式（"u-" -> "-"）
func (e *Unary) Symbol() string { return strings.TrimPrefix(e.Op, "u") }

// PostfixUnary $i++ / $i--
type PostfixUnary struct {
	Start   token.Position
	Op      string
	Operand Expr
}

func (e *PostfixUnary) Pos() token.Position { return e.Start }
func (e *PostfixUnary) Kind() string        { return "PostfixUnary" }
func (e *PostfixUnary) String() string      { return "(" + e.Operand.String() + e.Op + ")" }
func (e *PostfixUnary) exprNode()           {}

// Ternary cond ? a : b
type Ternary struct {
	Start   token.Position
	Cond    Expr
	IfTrue  Expr
	IfFalse Expr
}

func (e *Ternary) Pos() token.Position { return e.Start }
func (e *Ternary) Kind() string        { return "Ternary" }
func (e *Ternary) String() string {
	return "(" + e.Cond.String() + " ? " + e.IfTrue.String() + " : " + e.IfFalse.String() + ")"
}
func (e *Ternary) exprNode() {}

// Call callee(args)
type Call struct {
	Start  token.Position
	Callee Expr
	Args   []Expr
}

func (e *Call) Pos() token.Position { return e.Start }
func (e *Call) Kind() string        { return "Call" }
func (e *Call) String() string      { return e.Callee.String() + "(" + joinExprs(e.Args) + ")" }
func (e *Call) exprNode()           {}

// Index base[index]
type Index struct {
	Start token.Position
	Base  Expr
	Index Expr
}

func (e *Index) Pos() token.Position { return e.Start }
func (e *Index) Kind() string        { return "Index" }
func (e *Index) String() string      { return e.Base.String() + "[" + e.Index.String() + "]" }
func (e *Index) exprNode()           {}

// Member object->name
type Member struct {
	Start  token.Position
	Object Expr
	Name   string
}

func (e *Member) Pos() token.Position { return e.Start }
func (e *Member) Kind() string        { return "Member" }
func (e *Member) String() string      { return e.Object.String() + "->" + e.Name }
func (e *Member) exprNode()           {}

// StaticAccess Class::name
type StaticAccess struct {
	Start token.Position
	Class *Name
	Name  string
}

func (e *StaticAccess) Pos() token.Position { return e.Start }
func (e *StaticAccess) Kind() string        { return "StaticAccess" }
func (e *StaticAccess) String() string      { return e.Class.String() + "::" + e.Name }
func (e *StaticAccess) exprNode()           {}

// New new Class(args)
type New struct {
	Start token.Position
	Class *Name
	Args  []Expr
}

func (e *New) Pos() token.Position { return e.Start }
func (e *New) Kind() string        { return "New" }
func (e *New) String() string      { return "new " + e.Class.String() + "(" + joinExprs(e.Args) + ")" }
func (e *New) exprNode()           {}

// ============================================================================
// 辅助函数
// ============================================================================

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// IsLValue 判断表达式能否作为赋值目标
func IsLValue(e Expr) bool {
	switch e.(type) {
	case *Var, *Index, *Member, *StaticAccess:
		return true
	}
	return false
}
