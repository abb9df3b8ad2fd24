package lsp

import (
	"strings"
	"unicode/utf8"

	"go.lsp.dev/protocol"

	"github.com/tangzhangming/phplite/internal/ast"
	"github.com/tangzhangming/phplite/internal/token"
)

// getDocumentSymbols 获取文档符号列表（大纲）
//
// 只列出顶层声明：命名空间、类（方法作为子节点）、函数与全局变量。
func getDocumentSymbols(doc *Document) []protocol.DocumentSymbol {
	symbols := []protocol.DocumentSymbol{}

	res := resultFor(doc)
	if res == nil || res.AST == nil {
		return symbols
	}

	for _, item := range res.AST.Items {
		switch d := item.(type) {
		case *ast.NamespaceDecl:
			symbols = append(symbols, newSymbol(d.Name.String(), protocol.SymbolKindNamespace, "", d.Pos()))
		case *ast.ClassDecl:
			symbols = append(symbols, classToSymbol(d))
		case *ast.FunctionDecl:
			symbols = append(symbols, functionToSymbol(d, protocol.SymbolKindFunction))
		case *ast.VarDeclStmt:
			for _, b := range d.Bindings {
				symbols = append(symbols, newSymbol(b.Name, protocol.SymbolKindVariable, "", b.Pos()))
			}
		}
	}
	return symbols
}

// classToSymbol 类符号，方法作为子节点
func classToSymbol(d *ast.ClassDecl) protocol.DocumentSymbol {
	sym := newSymbol(d.Name, protocol.SymbolKindClass, "class", d.Pos())
	for _, m := range d.Members {
		sym.Children = append(sym.Children, functionToSymbol(m, protocol.SymbolKindMethod))
	}
	return sym
}

// functionToSymbol 函数或方法符号，Detail 为修饰符与参数列表
func functionToSymbol(d *ast.FunctionDecl, kind protocol.SymbolKind) protocol.DocumentSymbol {
	var mods []string
	if d.Visibility != "" {
		mods = append(mods, d.Visibility)
	}
	if d.IsStatic {
		mods = append(mods, "static")
	}

	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = p.String()
	}
	detail := strings.TrimSpace(strings.Join(mods, " ") + " (" + strings.Join(params, ", ") + ")")

	return newSymbol(d.Name, kind, detail, d.Pos())
}

func newSymbol(name string, kind protocol.SymbolKind, detail string, pos token.Position) protocol.DocumentSymbol {
	rng := lineRange(pos.Line, pos.Column, pos.Column+utf8.RuneCountInString(name))
	return protocol.DocumentSymbol{
		Name:           name,
		Detail:         detail,
		Kind:           kind,
		Range:          rng,
		SelectionRange: rng,
	}
}
