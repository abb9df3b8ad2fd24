package symtab

import "strings"

// ============================================================================
// 类型描述
// ============================================================================
//
// Type 是一个封闭集合：
//   - nil        类型未知（尚未观察到）
//   - Tag        标量类型标签 int / float / string / bool / array / null / any
//   - *Signature 函数或方法签名
//   - *ClassInfo 类描述
//
// 变量类型只会从“未知”或 null 细化为具体类型，不会从一个具体类型换成另一个。
// ============================================================================

// Type 符号的类型描述
type Type interface {
	String() string
	isType()
}

// Tag 标量类型标签
type Tag string

const (
	Unknown Tag = ""
	Int     Tag = "int"
	Float   Tag = "float"
	String  Tag = "string"
	Bool    Tag = "bool"
	Array   Tag = "array"
	Null    Tag = "null"
	Any     Tag = "any"
)

func (t Tag) isType() {}

// String 未知类型显示为 "unknown"
func (t Tag) String() string {
	if t == Unknown {
		return "unknown"
	}
	return string(t)
}

// IsNumeric 是否为 int 或 float
func (t Tag) IsNumeric() bool {
	return t == Int || t == Float
}

// Signature 函数签名，参数类型可以是 Unknown
type Signature struct {
	Params   []Tag
	Ret      Tag
	MinArity int // 没有默认值的参数个数
}

func (s *Signature) isType() {}

// String 形如 "fn(int, unknown): string"
func (s *Signature) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.String()
	}
	return "fn(" + strings.Join(parts, ", ") + "): " + s.Ret.String()
}

// MaxArity 最多可接受的参数个数
func (s *Signature) MaxArity() int {
	return len(s.Params)
}

// AcceptsArgs 检查实参个数是否在 [MinArity, MaxArity] 内
func (s *Signature) AcceptsArgs(n int) bool {
	return n >= s.MinArity && n <= s.MaxArity()
}

// ClassInfo 类描述
type ClassInfo struct {
	Methods []string
}

func (c *ClassInfo) isType() {}
func (c *ClassInfo) String() string { return "class" }

// TagOf 取类型的标量标签；nil、签名与类描述返回 Unknown
func TagOf(t Type) Tag {
	if tag, ok := t.(Tag); ok {
		return tag
	}
	return Unknown
}

// Compatible 检查 actual 能否赋给声明为 declared 的位置
//
// 相同类型、int 赋给 float、null 赋给任意类型视为兼容；任一方未知时不检查。
func Compatible(declared, actual Tag) bool {
	switch {
	case declared == Unknown || actual == Unknown:
		return true
	case declared == actual:
		return true
	case declared == Float && actual == Int:
		return true
	case actual == Null:
		return true
	case declared == Any:
		return true
	}
	return false
}
