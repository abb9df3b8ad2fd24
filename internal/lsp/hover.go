package lsp

import (
	"fmt"

	"go.lsp.dev/protocol"

	"github.com/tangzhangming/phplite/internal/i18n"
	"github.com/tangzhangming/phplite/internal/symtab"
)

// getHoverInfo 获取悬停信息：光标处名字对应的符号种类、类型与字面量值
func getHoverInfo(doc *Document, line, character int) *protocol.Hover {
	res := resultFor(doc)
	if res == nil || res.SymbolTable == nil {
		return nil
	}

	word := doc.GetWordAt(line, character)
	if word == "" {
		return nil
	}

	sym, ok := findSymbol(res.SymbolTable, word, line+1)
	if !ok {
		return nil
	}

	typ := sym.Type
	if typ == "" {
		typ = symtab.Unknown.String()
	}
	text := i18n.T(i18n.MsgHoverSymbol, sym.Kind, sym.Name, typ)
	if sym.Value != nil && sym.Kind != string(symtab.KindClass) {
		text += fmt.Sprintf(" = %v", sym.Value)
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.PlainText,
			Value: text,
		},
	}
}

// findSymbol 查找名为 name 的符号：优先取声明行不晚于 line 的最后一个
func findSymbol(scopes []symtab.ScopeRecord, name string, line int) (symtab.SymbolRecord, bool) {
	var (
		best     symtab.SymbolRecord
		found    bool
		fallback symtab.SymbolRecord
		seen     bool
	)
	for _, scope := range scopes {
		for _, sym := range scope.Symbols {
			if sym.Name != name {
				continue
			}
			if !seen {
				fallback, seen = sym, true
			}
			if sym.Lineno <= line && (!found || sym.Lineno >= best.Lineno) {
				best, found = sym, true
			}
		}
	}
	if found {
		return best, true
	}
	return fallback, seen
}
