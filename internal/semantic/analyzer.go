package semantic

import (
	"fmt"
	"strings"

	"github.com/tangzhangming/phplite/internal/ast"
	"github.com/tangzhangming/phplite/internal/errors"
	"github.com/tangzhangming/phplite/internal/i18n"
	"github.com/tangzhangming/phplite/internal/symtab"
	"github.com/tangzhangming/phplite/internal/token"
)

// ============================================================================
// Analyzer - 语义分析器
// ============================================================================
//
// 对 AST 做一次深度优先遍历：维护符号表、推导表达式类型、收集语义错误。
// 遇到错误不会中断，出错的表达式类型记为 Unknown，避免级联报错。
//
// 变量在函数（或全局）范围内可见：块语句会打开 block 作用域，但新变量
// 声明在最近的函数/方法/全局作用域中。foreach 的键值变量例外，只在循环
// 自己的 block 作用域里可见。
//
// 函数不做提升，调用必须出现在声明之后。参数类型先由默认值推导，再由
// 第一个提供已知类型实参的调用点补全；返回类型取函数体中第一个已知类型
// 的 return。
//
// ============================================================================

// Error 语义错误
type Error struct {
	Pos     token.Position
	Code    string
	Message string
	Hints   []string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Option 配置 Analyzer
type Option func(*Analyzer)

// WithStrictRedeclaration 同一作用域内重复的变量声明语句一律报错（包括带初始值的）
func WithStrictRedeclaration(strict bool) Option {
	return func(a *Analyzer) {
		a.strictRedeclaration = strict
	}
}

// WithSuggestions 是否为未声明的变量和函数附加 "did you mean" 提示
func WithSuggestions(enabled bool) Option {
	return func(a *Analyzer) {
		a.suggestions = enabled
	}
}

// maxSuggestDistance 相似名称的最大编辑距离
const maxSuggestDistance = 2

// Analyzer 语义分析器
type Analyzer struct {
	table    *symtab.Table
	errors   []Error
	snapshot []symtab.ScopeRecord

	currentFunc  *symtab.Symbol
	currentClass *symtab.Symbol

	// 每个语法作用域里由声明语句绑定过的变量名，键为作用域 id
	bound map[int]map[string]bool
	// 函数签名到参数符号的映射，调用点补全参数类型时同步更新
	params map[*symtab.Signature][]*symtab.Symbol

	strictRedeclaration bool
	suggestions         bool
}

// New 创建语义分析器
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		table:       symtab.New(),
		suggestions: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze 分析整个程序，每次调用都使用新的符号表
func (a *Analyzer) Analyze(prog *ast.Program) []Error {
	a.table = symtab.New()
	a.errors = nil
	a.currentFunc = nil
	a.currentClass = nil
	a.bound = make(map[int]map[string]bool)
	a.params = make(map[*symtab.Signature][]*symtab.Symbol)

	if prog != nil {
		a.visit(prog)
	}
	a.snapshot = a.table.Snapshot()
	return a.errors
}

// Snapshot 返回最近一次分析结束时的符号表快照
func (a *Analyzer) Snapshot() []symtab.ScopeRecord {
	return a.snapshot
}

// Errors 返回最近一次分析的语义错误
func (a *Analyzer) Errors() []Error {
	return a.errors
}

// ErrorCount 返回语义错误数量
func (a *Analyzer) ErrorCount() int {
	return len(a.errors)
}

// HasErrors 检查是否有错误
func (a *Analyzer) HasErrors() bool {
	return len(a.errors) > 0
}

// Table 返回符号表
func (a *Analyzer) Table() *symtab.Table {
	return a.table
}

// ============================================================================
// 遍历
// ============================================================================

// visit 分派到各节点的处理函数，返回表达式的推导类型（语句返回 Unknown）
func (a *Analyzer) visit(n ast.Node) symtab.Tag {
	switch n := n.(type) {
	case nil:
		return symtab.Unknown
	case *ast.ClassDecl:
		a.visitClass(n)
	case *ast.FunctionDecl:
		a.visitFunction(n)
	case *ast.NamespaceDecl, *ast.UseDecl:
		// 不建模命名空间
	case *ast.Block:
		a.table.EnterScope("", symtab.ScopeBlock)
		for _, s := range n.Stmts {
			a.visit(s)
		}
		a.table.ExitScope()
	case *ast.VarDeclStmt:
		for _, b := range n.Bindings {
			a.visitBinding(b)
		}
	case *ast.ReturnStmt:
		a.visitReturn(n)
	case *ast.ForeachStmt:
		a.visitForeach(n)

	// 字面量
	case *ast.NumberLit:
		if n.IsFloat() {
			return symtab.Float
		}
		return symtab.Int
	case *ast.StringLit:
		return symtab.String
	case *ast.BoolLit:
		return symtab.Bool
	case *ast.NullLit:
		return symtab.Null
	case *ast.ArrayLit:
		a.visitChildren(n)
		return symtab.Array

	// 表达式
	case *ast.Var:
		return a.visitVar(n)
	case *ast.Name:
		return symtab.Unknown
	case *ast.Assign:
		return a.visitAssign(n)
	case *ast.Binary:
		return a.visitBinary(n)
	case *ast.Unary:
		return a.visitUnary(n.Pos(), n.Op, n.Symbol(), n.Operand)
	case *ast.PostfixUnary:
		return a.visitUnary(n.Pos(), n.Op, n.Op, n.Operand)
	case *ast.Ternary:
		return a.visitTernary(n)
	case *ast.Call:
		return a.visitCall(n)
	case *ast.Index:
		return a.visitIndex(n)
	case *ast.Member:
		a.visit(n.Object)
	case *ast.StaticAccess:
		// 不建模类成员
	case *ast.New:
		for _, arg := range n.Args {
			a.visit(arg)
		}

	default:
		a.visitChildren(n)
	}
	return symtab.Unknown
}

func (a *Analyzer) visitChildren(n ast.Node) {
	for _, c := range ast.Children(n) {
		a.visit(c)
	}
}

// ============================================================================
// 声明
// ============================================================================

func (a *Analyzer) visitClass(n *ast.ClassDecl) {
	if a.table.LookupCurrent(n.Name) != nil {
		a.error(n.Pos(), errors.E0400, i18n.T(i18n.ErrClassRedeclared, n.Name))
		return
	}

	info := &symtab.ClassInfo{}
	sym := &symtab.Symbol{
		Name: n.Name,
		Kind: symtab.KindClass,
		Type: info,
		Node: n,
		Line: n.Pos().Line,
	}
	a.table.Declare(sym)

	prevClass := a.currentClass
	a.currentClass = sym
	a.table.EnterScope(n.Name, symtab.ScopeClass)
	for _, m := range n.Members {
		a.visitFunction(m)
		info.Methods = append(info.Methods, m.Name)
	}
	a.table.ExitScope()
	a.currentClass = prevClass
}

func (a *Analyzer) visitFunction(n *ast.FunctionDecl) {
	if a.table.LookupCurrent(n.Name) != nil {
		a.error(n.Pos(), errors.E0309, i18n.T(i18n.ErrFunctionRedeclared, n.Name))
		return
	}

	kind, scopeKind, owner := symtab.KindFunc, symtab.ScopeFunction, ""
	if a.currentClass != nil {
		kind, scopeKind, owner = symtab.KindMethod, symtab.ScopeMethod, a.currentClass.Name
	}

	sig := &symtab.Signature{Params: make([]symtab.Tag, len(n.Params))}
	for i, p := range n.Params {
		if p.Default == nil {
			sig.MinArity = i + 1
		}
	}
	sym := &symtab.Symbol{
		Name:  n.Name,
		Kind:  kind,
		Type:  sig,
		Node:  n,
		Line:  n.Pos().Line,
		Owner: owner,
	}
	a.table.Declare(sym)

	a.table.EnterScope(n.Name, scopeKind)
	params := make([]*symtab.Symbol, len(n.Params))
	for i, p := range n.Params {
		psym := &symtab.Symbol{
			Name:  p.Name,
			Kind:  symtab.KindParam,
			Node:  p,
			Line:  p.Pos().Line,
			Value: literalValue(p.Default),
			Owner: n.Name,
		}
		if !a.table.Declare(psym) {
			a.error(p.Pos(), errors.E0103, i18n.T(i18n.ErrParamDuplicated, p.Name))
			a.visit(p.Default)
			continue
		}
		if p.Default != nil {
			tag := a.visit(p.Default)
			psym.Refine(tag)
			sig.Params[i] = tag
		}
		params[i] = psym
	}
	a.params[sig] = params

	prevFunc := a.currentFunc
	a.currentFunc = sym
	// 函数体的语句直接位于函数作用域中
	if n.Body != nil {
		for _, s := range n.Body.Stmts {
			a.visit(s)
		}
	}
	a.currentFunc = prevFunc
	a.table.ExitScope()
}

// visitBinding 处理变量声明语句中的一个绑定
//
// 名字尚不存在时在最近的函数/全局作用域中声明新变量。名字已存在时重新绑定：
// 按赋值规则检查类型并细化。同一语法作用域内不带初始值的重复声明报错；
// 严格模式下带初始值的也报错。
func (a *Analyzer) visitBinding(b *ast.VarBinding) {
	scopeID := a.table.Current().ID
	existing := a.table.Lookup(b.Name)

	if existing == nil {
		sym := &symtab.Symbol{
			Name: b.Name,
			Kind: symtab.KindVar,
			Node: b,
			Line: b.Pos().Line,
		}
		home := a.table.Enclosing(symtab.ScopeFunction, symtab.ScopeMethod, symtab.ScopeGlobal)
		home.Declare(sym)
		a.markBound(scopeID, b.Name)
		if b.Init != nil {
			sym.Refine(a.visit(b.Init))
			if v := literalValue(b.Init); v != nil {
				sym.Value = v
			}
		}
		return
	}

	if a.isBound(scopeID, b.Name) && (b.Init == nil || a.strictRedeclaration) {
		a.error(b.Pos(), errors.E0101, i18n.T(i18n.ErrVariableRedeclared, b.Name))
	}
	a.markBound(scopeID, b.Name)

	if b.Init != nil {
		a.rebind(existing, b.Init, b.Pos())
	}
}

// rebind 把 value 的类型与字面量值写入已有符号
func (a *Analyzer) rebind(sym *symtab.Symbol, value ast.Expr, pos token.Position) symtab.Tag {
	vtype := a.visit(value)
	if declared := sym.Tag(); !sym.Refinable() && !symtab.Compatible(declared, vtype) {
		a.error(pos, errors.E0200, i18n.T(i18n.ErrAssignTypeMismatch, sym.Name, declared, vtype))
	}
	sym.Refine(vtype)
	if v := literalValue(value); v != nil {
		sym.Value = v
	}
	return vtype
}

func (a *Analyzer) markBound(scopeID int, name string) {
	names := a.bound[scopeID]
	if names == nil {
		names = make(map[string]bool)
		a.bound[scopeID] = names
	}
	names[name] = true
}

func (a *Analyzer) isBound(scopeID int, name string) bool {
	return a.bound[scopeID][name]
}

// ============================================================================
// 语句
// ============================================================================

func (a *Analyzer) visitReturn(n *ast.ReturnStmt) {
	rtype := symtab.Unknown
	if n.Value != nil {
		rtype = a.visit(n.Value)
	}
	if a.currentFunc == nil {
		return
	}
	sig := a.currentFunc.Signature()
	if sig == nil {
		return
	}
	if sig.Ret == symtab.Unknown {
		sig.Ret = rtype
		return
	}
	if !symtab.Compatible(sig.Ret, rtype) {
		a.error(n.Pos(), errors.E0203, i18n.T(i18n.ErrReturnTypeMismatch, a.currentFunc.Name, sig.Ret, rtype))
	}
}

func (a *Analyzer) visitForeach(n *ast.ForeachStmt) {
	if it := a.visit(n.Iterable); it != symtab.Array {
		a.error(n.Iterable.Pos(), errors.E0208, i18n.T(i18n.ErrForeachNotArray, it))
	}

	a.table.EnterScope("", symtab.ScopeBlock)
	for _, v := range []*ast.Var{n.Key, n.Value} {
		if v == nil {
			continue
		}
		a.table.Declare(&symtab.Symbol{
			Name: v.Name,
			Kind: symtab.KindVar,
			Node: v,
			Line: v.Pos().Line,
		})
	}
	a.visit(n.Body)
	a.table.ExitScope()
}

// ============================================================================
// 表达式
// ============================================================================

func (a *Analyzer) visitVar(n *ast.Var) symtab.Tag {
	sym := a.table.Lookup(n.Name)
	if sym == nil {
		a.errorWithHints(n.Pos(), errors.E0100, i18n.T(i18n.ErrVariableNotDeclared, n.Name), a.variableHints(n.Name))
		return symtab.Unknown
	}
	return sym.Tag()
}

func (a *Analyzer) visitAssign(n *ast.Assign) symtab.Tag {
	if !ast.IsLValue(n.Target) {
		a.error(n.Pos(), errors.E0104, i18n.T(i18n.ErrInvalidAssignment))
		a.visit(n.Value)
		return symtab.Unknown
	}

	target, ok := n.Target.(*ast.Var)
	if !ok {
		a.visit(n.Target)
		return a.visit(n.Value)
	}

	sym := a.table.Lookup(target.Name)
	if sym == nil {
		a.errorWithHints(target.Pos(), errors.E0102, i18n.T(i18n.ErrUsedBeforeDeclaration, target.Name), a.variableHints(target.Name))
		a.visit(n.Value)
		return symtab.Unknown
	}
	return a.rebind(sym, n.Value, n.Pos())
}

func (a *Analyzer) visitBinary(n *ast.Binary) symtab.Tag {
	lt := a.visit(n.Left)
	rt := a.visit(n.Right)

	switch n.Op {
	case "+", "-", "*", "/", "%":
		if lt.IsNumeric() && rt.IsNumeric() {
			if lt == symtab.Float || rt == symtab.Float {
				return symtab.Float
			}
			return symtab.Int
		}
		// 未知操作数不单独报错，但已知的非数值操作数总是错误
		if nonNumeric(lt) || nonNumeric(rt) {
			a.error(n.Pos(), errors.E0205, i18n.T(i18n.ErrArithmeticOperands, n.Op, lt, rt))
		}
		return symtab.Unknown
	case "==", "!=", "===", "!==", "<", "<=", ">", ">=":
		return symtab.Bool
	case "&&", "||":
		if lt != symtab.Unknown && lt != symtab.Bool {
			a.error(n.Pos(), errors.E0205, i18n.T(i18n.ErrLogicalLeftOperand, n.Op, lt))
		}
		if rt != symtab.Unknown && rt != symtab.Bool {
			a.error(n.Pos(), errors.E0205, i18n.T(i18n.ErrLogicalRightOperand, n.Op, rt))
		}
		return symtab.Bool
	case ".":
		return symtab.String
	}
	return symtab.Unknown
}

func nonNumeric(t symtab.Tag) bool {
	return t != symtab.Unknown && !t.IsNumeric()
}

// visitUnary 处理前缀与后缀一元运算；symbol 为报错时显示的运算符
func (a *Analyzer) visitUnary(pos token.Position, op, symbol string, operand ast.Expr) symtab.Tag {
	t := a.visit(operand)
	if op == ast.OpNot {
		return symtab.Bool
	}
	if nonNumeric(t) {
		a.error(pos, errors.E0205, i18n.T(i18n.ErrUnaryOperand, symbol, t))
		return symtab.Unknown
	}
	return t
}

func (a *Analyzer) visitTernary(n *ast.Ternary) symtab.Tag {
	a.visit(n.Cond)
	t := a.visit(n.IfTrue)
	f := a.visit(n.IfFalse)
	switch {
	case t == f:
		return t
	case t == symtab.Null:
		return f
	case f == symtab.Null:
		return t
	}
	return symtab.Unknown
}

func (a *Analyzer) visitCall(n *ast.Call) symtab.Tag {
	name, ok := n.Callee.(*ast.Name)
	if !ok {
		if ct := a.visit(n.Callee); isNonCallable(ct) {
			a.error(n.Pos(), errors.E0307, i18n.T(i18n.ErrNotCallable, ct))
		}
		a.visitArgs(n.Args)
		return symtab.Unknown
	}

	fname := name.String()
	sym := a.lookupFunction(name)
	if sym == nil {
		a.errorWithHints(n.Pos(), errors.E0300, i18n.T(i18n.ErrUndefinedFunction, fname), a.functionHints(fname))
		a.visitArgs(n.Args)
		return symtab.Unknown
	}
	if sym.Kind != symtab.KindFunc {
		a.error(n.Pos(), errors.E0308, i18n.T(i18n.ErrNotAFunction, fname, sym.Kind))
		a.visitArgs(n.Args)
		return symtab.Unknown
	}

	sig := sym.Signature()
	if sig == nil {
		a.visitArgs(n.Args)
		return symtab.Unknown
	}

	if len(sig.Params) > 0 && !sig.AcceptsArgs(len(n.Args)) {
		a.error(n.Pos(), errors.E0301, i18n.T(i18n.ErrArgumentCount, fname, arityText(sig), len(n.Args)))
	}

	for i, arg := range n.Args {
		at := a.visit(arg)
		if i >= len(sig.Params) || at == symtab.Unknown {
			continue
		}
		want := sig.Params[i]
		if want == symtab.Unknown {
			// 第一个提供已知类型实参的调用点决定参数类型
			sig.Params[i] = at
			if params := a.params[sig]; i < len(params) && params[i] != nil {
				params[i].Refine(at)
			}
			continue
		}
		if !symtab.Compatible(want, at) {
			a.error(arg.Pos(), errors.E0303, i18n.T(i18n.ErrArgumentType, i+1, fname, want, at))
		}
	}
	return sig.Ret
}

func (a *Analyzer) visitArgs(args []ast.Expr) {
	for _, arg := range args {
		a.visit(arg)
	}
}

// lookupFunction 先按完整限定名查找，找不到时退回最后一段
func (a *Analyzer) lookupFunction(name *ast.Name) *symtab.Symbol {
	if sym := a.table.Lookup(name.String()); sym != nil {
		return sym
	}
	if len(name.Parts) > 1 {
		return a.table.Lookup(name.Parts[len(name.Parts)-1])
	}
	return nil
}

func (a *Analyzer) visitIndex(n *ast.Index) symtab.Tag {
	bt := a.visit(n.Base)
	a.visit(n.Index)
	switch bt {
	case symtab.Array, symtab.String, symtab.Any, symtab.Unknown:
	default:
		a.error(n.Base.Pos(), errors.E0207, i18n.T(i18n.ErrNotIndexable, bt))
	}
	return symtab.Unknown
}

// ============================================================================
// 错误与提示
// ============================================================================

func (a *Analyzer) error(pos token.Position, code, message string) {
	a.errorWithHints(pos, code, message, nil)
}

func (a *Analyzer) errorWithHints(pos token.Position, code, message string, hints []string) {
	a.errors = append(a.errors, Error{
		Pos:     pos,
		Code:    code,
		Message: message,
		Hints:   hints,
	})
}

func (a *Analyzer) variableHints(name string) []string {
	if !a.suggestions {
		return nil
	}
	candidates := a.table.Visible(func(s *symtab.Symbol) bool {
		return s.Kind == symtab.KindVar || s.Kind == symtab.KindParam
	})
	if similar := errors.FindSimilar(name, candidates, maxSuggestDistance); similar != "" {
		return []string{i18n.T(i18n.HintDidYouMean, similar)}
	}
	return errors.GetSuggestions(errors.E0100, map[string]interface{}{"variable": name})
}

func (a *Analyzer) functionHints(name string) []string {
	if !a.suggestions {
		return nil
	}
	candidates := a.table.Visible(func(s *symtab.Symbol) bool {
		return s.Kind == symtab.KindFunc
	})
	if similar := errors.FindSimilar(name, candidates, maxSuggestDistance); similar != "" {
		return []string{i18n.T(i18n.HintDidYouMean, similar)}
	}
	return nil
}

// ============================================================================
// 辅助函数
// ============================================================================

// literalValue 字面量节点的值；其他表达式返回 nil
func literalValue(e ast.Expr) interface{} {
	switch e := e.(type) {
	case *ast.NumberLit:
		return e.Value
	case *ast.StringLit:
		return e.Value
	case *ast.BoolLit:
		return e.Value
	}
	return nil
}

func isNonCallable(t symtab.Tag) bool {
	switch t {
	case symtab.Int, symtab.Float, symtab.Bool, symtab.Array, symtab.Null:
		return true
	}
	return false
}

// arityText "2" 或 "1 to 2"
func arityText(sig *symtab.Signature) string {
	if sig.MinArity == sig.MaxArity() {
		return fmt.Sprint(sig.MaxArity())
	}
	return strings.Join([]string{fmt.Sprint(sig.MinArity), fmt.Sprint(sig.MaxArity())}, " to ")
}
