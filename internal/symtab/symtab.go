package symtab

import (
	"fmt"
	"sort"

	"github.com/tangzhangming/phplite/internal/ast"
)

// ============================================================================
// 符号
// ============================================================================

// Kind 符号种类
type Kind string

const (
	KindVar    Kind = "var"
	KindFunc   Kind = "func"
	KindMethod Kind = "method"
	KindParam  Kind = "param"
	KindClass  Kind = "class"
)

// Symbol 符号
//
// 符号在作用域内首次声明时创建，之后原地更新：Type 按单调规则细化，
// Value 记录线性遍历中最近一次看到的字面量值。
type Symbol struct {
	Name  string
	Kind  Kind
	Type  Type // nil 表示未知
	Node  ast.Node
	Line  int
	Value interface{}
	Owner string // 所属函数或类，可为空
}

// Tag 返回符号的标量类型
func (s *Symbol) Tag() Tag {
	return TagOf(s.Type)
}

// Signature 返回函数/方法签名，其他符号返回 nil
func (s *Symbol) Signature() *Signature {
	sig, _ := s.Type.(*Signature)
	return sig
}

// Refine 在类型未知或仅为 null 时采用 tag；返回类型是否发生变化
func (s *Symbol) Refine(tag Tag) bool {
	if tag == Unknown || !s.Refinable() || s.Tag() == tag {
		return false
	}
	s.Type = tag
	return true
}

// Refinable 类型未知或只观察到 null 的符号仍可细化
func (s *Symbol) Refinable() bool {
	return s.Type == nil || s.Tag() == Null
}

// ============================================================================
// 作用域
// ============================================================================

// ScopeKind 作用域种类
type ScopeKind string

const (
	ScopeGlobal   ScopeKind = "global"
	ScopeFunction ScopeKind = "function"
	ScopeMethod   ScopeKind = "method"
	ScopeClass    ScopeKind = "class"
	ScopeBlock    ScopeKind = "block"
)

// Scope 一个作用域，符号按声明顺序保存
type Scope struct {
	ID   int
	Name string
	Kind ScopeKind

	symbols map[string]*Symbol
	order   []*Symbol
}

func newScope(id int, name string, kind ScopeKind) *Scope {
	return &Scope{
		ID:      id,
		Name:    name,
		Kind:    kind,
		symbols: make(map[string]*Symbol),
	}
}

// Declare 在本作用域声明符号；同名符号已存在时返回 false 且不做修改
func (s *Scope) Declare(sym *Symbol) bool {
	if _, exists := s.symbols[sym.Name]; exists {
		return false
	}
	s.symbols[sym.Name] = sym
	s.order = append(s.order, sym)
	return true
}

// Lookup 只在本作用域查找
func (s *Scope) Lookup(name string) *Symbol {
	return s.symbols[name]
}

// Symbols 按声明顺序返回本作用域的符号
func (s *Scope) Symbols() []*Symbol {
	return s.order
}

// Len 本作用域的符号数
func (s *Scope) Len() int {
	return len(s.order)
}

// ============================================================================
// 符号表
// ============================================================================

// Table 作用域栈。全局作用域 id 为 0，此后每个作用域分配递增的 id；
// 退出的作用域追加到 closed，只增不减。
type Table struct {
	scopes []*Scope
	closed []*Scope
	nextID int
}

// New 创建符号表，全局作用域已打开
func New() *Table {
	return &Table{
		scopes: []*Scope{newScope(0, "global", ScopeGlobal)},
		nextID: 1,
	}
}

// EnterScope 压入一个新作用域
func (t *Table) EnterScope(name string, kind ScopeKind) *Scope {
	s := newScope(t.nextID, name, kind)
	t.nextID++
	t.scopes = append(t.scopes, s)
	return s
}

// ExitScope 弹出当前作用域并归档。在全局作用域上调用属于编程错误，会 panic。
func (t *Table) ExitScope() {
	if len(t.scopes) == 1 {
		panic("symtab: cannot exit the global scope")
	}
	top := t.scopes[len(t.scopes)-1]
	t.scopes = t.scopes[:len(t.scopes)-1]
	t.closed = append(t.closed, top)
}

// Declare 在当前作用域声明符号；同名符号已存在时返回 false 且不做修改
func (t *Table) Declare(sym *Symbol) bool {
	return t.Current().Declare(sym)
}

// Lookup 从内到外查找
func (t *Table) Lookup(name string) *Symbol {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// LookupCurrent 只在当前作用域查找
func (t *Table) LookupCurrent(name string) *Symbol {
	return t.Current().symbols[name]
}

// Current 当前作用域
func (t *Table) Current() *Scope {
	return t.scopes[len(t.scopes)-1]
}

// Enclosing 返回最内层的、种类属于 kinds 之一的打开作用域；找不到时返回全局作用域
func (t *Table) Enclosing(kinds ...ScopeKind) *Scope {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		for _, k := range kinds {
			if t.scopes[i].Kind == k {
				return t.scopes[i]
			}
		}
	}
	return t.scopes[0]
}

// Depth 打开的作用域数量（只有全局作用域时为 1）
func (t *Table) Depth() int {
	return len(t.scopes)
}

// Visible 返回当前可见的符号名（内层遮蔽外层），filter 为 nil 时返回全部
func (t *Table) Visible(filter func(*Symbol) bool) []string {
	seen := make(map[string]bool)
	var names []string
	for i := len(t.scopes) - 1; i >= 0; i-- {
		for _, sym := range t.scopes[i].order {
			if seen[sym.Name] {
				continue
			}
			seen[sym.Name] = true
			if filter == nil || filter(sym) {
				names = append(names, sym.Name)
			}
		}
	}
	return names
}

// ============================================================================
// 快照
// ============================================================================

// SymbolRecord 符号的可序列化形式
type SymbolRecord struct {
	Name   string      `json:"name"`
	Kind   string      `json:"kind"`
	Type   string      `json:"type"`
	Value  interface{} `json:"value"`
	Owner  string      `json:"owner"`
	Lineno int         `json:"lineno"`
}

// ScopeRecord 作用域的可序列化形式
type ScopeRecord struct {
	Scope   int            `json:"scope"`
	Name    string         `json:"name"`
	Kind    string         `json:"kind"`
	Symbols []SymbolRecord `json:"symbols"`
}

// Snapshot 返回已关闭与仍打开的全部作用域，按 id 升序
func (t *Table) Snapshot() []ScopeRecord {
	all := make([]*Scope, 0, len(t.closed)+len(t.scopes))
	all = append(all, t.closed...)
	all = append(all, t.scopes...)
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	records := make([]ScopeRecord, len(all))
	for i, s := range all {
		records[i] = ScopeRecord{
			Scope:   s.ID,
			Name:    s.Name,
			Kind:    string(s.Kind),
			Symbols: make([]SymbolRecord, len(s.order)),
		}
		for j, sym := range s.order {
			records[i].Symbols[j] = recordOf(sym)
		}
	}
	return records
}

func recordOf(sym *Symbol) SymbolRecord {
	rec := SymbolRecord{
		Name:   sym.Name,
		Kind:   string(sym.Kind),
		Value:  sym.Value,
		Owner:  sym.Owner,
		Lineno: sym.Line,
	}
	if sym.Type != nil {
		rec.Type = sym.Type.String()
	}
	if info, ok := sym.Type.(*ClassInfo); ok {
		methods := make([]string, len(info.Methods))
		copy(methods, info.Methods)
		rec.Value = map[string]interface{}{"methods": methods}
	}
	return rec
}

// String 调试用的单行表示
func (r SymbolRecord) String() string {
	return fmt.Sprintf("%s %s: %s = %v", r.Kind, r.Name, r.Type, r.Value)
}
