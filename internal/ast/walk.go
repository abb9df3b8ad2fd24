package ast

// Children 返回节点的直接子节点（按源码顺序，跳过 nil）
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c == nil || isNilNode(c) {
			return
		}
		out = append(out, c)
	}
	addExprs := func(exprs []Expr) {
		for _, e := range exprs {
			add(e)
		}
	}

	switch n := n.(type) {
	case *Program:
		for _, item := range n.Items {
			add(item)
		}
	case *NamespaceDecl:
		add(n.Name)
	case *UseDecl:
		for _, name := range n.Names {
			add(name)
		}
	case *ClassDecl:
		for _, m := range n.Members {
			add(m)
		}
	case *FunctionDecl:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *Param:
		add(n.Default)
	case *Block:
		for _, s := range n.Stmts {
			add(s)
		}
	case *EchoStmt:
		addExprs(n.Exprs)
	case *PrintStmt:
		add(n.Expr)
	case *ReturnStmt:
		add(n.Value)
	case *IncludeStmt:
		add(n.Path)
	case *RequireStmt:
		add(n.Path)
	case *IfStmt:
		add(n.Cond)
		add(n.Then)
		for _, ei := range n.ElseIfs {
			add(ei)
		}
		add(n.Else)
	case *ElseIfClause:
		add(n.Cond)
		add(n.Body)
	case *WhileStmt:
		add(n.Cond)
		add(n.Body)
	case *ForStmt:
		add(n.InitDecl)
		addExprs(n.Init)
		add(n.Cond)
		addExprs(n.Iters)
		add(n.Body)
	case *ForeachStmt:
		add(n.Iterable)
		add(n.Key)
		add(n.Value)
		add(n.Body)
	case *VarDeclStmt:
		for _, b := range n.Bindings {
			add(b)
		}
	case *VarBinding:
		add(n.Init)
	case *ExprStmt:
		add(n.Expr)
	case *ArrayLit:
		for _, p := range n.Pairs {
			add(p)
		}
	case *ArrayPair:
		add(n.Key)
		add(n.Value)
	case *Assign:
		add(n.Target)
		add(n.Value)
	case *Binary:
		add(n.Left)
		add(n.Right)
	case *Unary:
		add(n.Operand)
	case *PostfixUnary:
		add(n.Operand)
	case *Ternary:
		add(n.Cond)
		add(n.IfTrue)
		add(n.IfFalse)
	case *Call:
		add(n.Callee)
		addExprs(n.Args)
	case *Index:
		add(n.Base)
		add(n.Index)
	case *Member:
		add(n.Object)
	case *StaticAccess:
		add(n.Class)
	case *New:
		add(n.Class)
		addExprs(n.Args)
	}
	return out
}

// Inspect 深度优先遍历，f 返回 false 时不再进入该节点的子节点
func Inspect(n Node, f func(Node) bool) {
	if n == nil || isNilNode(n) || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// isNilNode 识别装在接口里的 nil 指针（如 Stmt(nil *Block)）
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Block:
		return v == nil
	case *Var:
		return v == nil
	case *Name:
		return v == nil
	case *VarDeclStmt:
		return v == nil
	}
	return false
}
