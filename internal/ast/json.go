package ast

import (
	"github.com/segmentio/encoding/json"
)

// ============================================================================
// JSON 形式
// ============================================================================
//
// 每个节点编码为带 "node" 标签的对象，例如：
//
//	{"node":"Binary","op":"+","left":{...},"right":{...},"lineno":3}
//
// 对象的键按字典序输出，同一棵树的编码结果是确定的。
// ============================================================================

// Marshal 把节点编码为紧凑 JSON
func Marshal(n Node) ([]byte, error) {
	return json.Marshal(ToMap(n))
}

// MarshalIndent 把节点编码为带缩进的 JSON
func MarshalIndent(n Node, indent string) ([]byte, error) {
	return json.MarshalIndent(ToMap(n), "", indent)
}

// ToMap 把节点转换为通用 map 表示；nil 节点返回 nil
func ToMap(n Node) map[string]interface{} {
	if n == nil || isNilNode(n) {
		return nil
	}
	m := map[string]interface{}{
		"node":   n.Kind(),
		"lineno": n.Pos().Line,
	}

	switch n := n.(type) {
	case *Program:
		m["items"] = stmtList(n.Items)
	case *NamespaceDecl:
		m["name"] = n.Name.Parts
	case *UseDecl:
		names := make([][]string, len(n.Names))
		for i, name := range n.Names {
			names[i] = name.Parts
		}
		m["names"] = names
	case *ClassDecl:
		m["name"] = n.Name
		members := make([]interface{}, len(n.Members))
		for i, fn := range n.Members {
			members[i] = ToMap(fn)
		}
		m["members"] = members
	case *FunctionDecl:
		m["name"] = n.Name
		params := make([]interface{}, len(n.Params))
		for i, p := range n.Params {
			params[i] = ToMap(p)
		}
		m["params"] = params
		m["body"] = ToMap(n.Body)
		if n.Visibility != "" {
			m["visibility"] = n.Visibility
		}
		if n.IsStatic {
			m["static"] = true
		}
	case *Param:
		m["name"] = n.Name
		m["default"] = toMapOrNil(n.Default)
	case *Block:
		m["stmts"] = stmtList(n.Stmts)
	case *EchoStmt:
		m["exprs"] = exprList(n.Exprs)
	case *PrintStmt:
		m["expr"] = ToMap(n.Expr)
	case *ReturnStmt:
		m["expr"] = toMapOrNil(n.Value)
	case *IncludeStmt:
		m["expr"] = ToMap(n.Path)
	case *RequireStmt:
		m["expr"] = ToMap(n.Path)
	case *IfStmt:
		m["cond"] = ToMap(n.Cond)
		m["then"] = ToMap(n.Then)
		elseifs := make([]interface{}, len(n.ElseIfs))
		for i, ei := range n.ElseIfs {
			elseifs[i] = ToMap(ei)
		}
		m["elseifs"] = elseifs
		m["else"] = toMapOrNil(n.Else)
	case *ElseIfClause:
		m["cond"] = ToMap(n.Cond)
		m["body"] = ToMap(n.Body)
	case *WhileStmt:
		m["cond"] = ToMap(n.Cond)
		m["body"] = ToMap(n.Body)
	case *ForStmt:
		if n.InitDecl != nil {
			m["init"] = ToMap(n.InitDecl)
		} else {
			m["init"] = exprList(n.Init)
		}
		m["cond"] = toMapOrNil(n.Cond)
		m["step"] = exprList(n.Iters)
		m["body"] = ToMap(n.Body)
	case *ForeachStmt:
		m["iterable"] = ToMap(n.Iterable)
		if n.Key != nil {
			m["key"] = n.Key.Name
		} else {
			m["key"] = nil
		}
		m["value"] = n.Value.Name
		m["body"] = ToMap(n.Body)
	case *VarDeclStmt:
		bindings := make([]interface{}, len(n.Bindings))
		for i, b := range n.Bindings {
			bindings[i] = ToMap(b)
		}
		m["bindings"] = bindings
	case *VarBinding:
		m["name"] = n.Name
		m["init"] = toMapOrNil(n.Init)
	case *ExprStmt:
		m["expr"] = ToMap(n.Expr)
	case *Name:
		m["parts"] = n.Parts
	case *Var:
		m["name"] = n.Name
	case *NumberLit:
		m["value"] = n.Value
	case *StringLit:
		m["value"] = n.Value
	case *BoolLit:
		m["value"] = n.Value
	case *NullLit:
		m["value"] = nil
	case *ArrayLit:
		pairs := make([]interface{}, len(n.Pairs))
		for i, p := range n.Pairs {
			pairs[i] = ToMap(p)
		}
		m["pairs"] = pairs
	case *ArrayPair:
		m["key"] = toMapOrNil(n.Key)
		m["value"] = ToMap(n.Value)
	case *Assign:
		m["target"] = ToMap(n.Target)
		m["value"] = ToMap(n.Value)
	case *Binary:
		m["op"] = n.Op
		m["left"] = ToMap(n.Left)
		m["right"] = ToMap(n.Right)
	case *Unary:
		m["op"] = n.Op
		m["operand"] = ToMap(n.Operand)
	case *PostfixUnary:
		m["op"] = n.Op
		m["operand"] = ToMap(n.Operand)
	case *Ternary:
		m["cond"] = ToMap(n.Cond)
		m["if_true"] = ToMap(n.IfTrue)
		m["if_false"] = ToMap(n.IfFalse)
	case *Call:
		m["callee"] = ToMap(n.Callee)
		m["args"] = exprList(n.Args)
	case *Index:
		m["base"] = ToMap(n.Base)
		m["index"] = ToMap(n.Index)
	case *Member:
		m["object"] = ToMap(n.Object)
		m["name"] = n.Name
	case *StaticAccess:
		m["class"] = n.Class.Parts
		m["name"] = n.Name
	case *New:
		m["class"] = n.Class.Parts
		m["args"] = exprList(n.Args)
	}
	return m
}

// toMapOrNil 保证可选子节点编码为 JSON null 而不是空 map
func toMapOrNil(n Node) interface{} {
	if n == nil || isNilNode(n) {
		return nil
	}
	return ToMap(n)
}

func stmtList(stmts []Stmt) []interface{} {
	out := make([]interface{}, len(stmts))
	for i, s := range stmts {
		out[i] = ToMap(s)
	}
	return out
}

func exprList(exprs []Expr) []interface{} {
	out := make([]interface{}, len(exprs))
	for i, e := range exprs {
		out[i] = ToMap(e)
	}
	return out
}
