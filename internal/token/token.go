package token

import "fmt"

// ============================================================================
// Token 类型定义
// ============================================================================
//
// TokenType 使用 iota 自动编号，按类别分组：
// 1. 特殊标记（ILLEGAL, EOF）
// 2. PHP 标签与字面量（变量、标识符、数字、字符串）
// 3. 运算符（算术、比较、逻辑、访问）
// 4. 分隔符（括号、逗号、分号等）
// 5. 关键字（区分大小写）
//
// 类型名与导出的 token 列表保持一致（PHP_OPEN, VARIABLE, ...），
// 外部工具直接使用 String() 的结果作为 token 种类。
//
// ============================================================================

// TokenType 表示 Token 的类型
type TokenType int

const (
	// ----------------------------------------------------------
	// 特殊标记
	// ----------------------------------------------------------
	ILLEGAL TokenType = iota // 非法字符（词法器不会输出）
	EOF                      // 输入结束

	// ----------------------------------------------------------
	// PHP 标签
	// ----------------------------------------------------------
	PHP_OPEN  // <?php
	PHP_CLOSE // ?>

	// ----------------------------------------------------------
	// 字面量
	// ----------------------------------------------------------
	VARIABLE // $name
	ID       // 标识符（函数名、类名等）
	NUMBER   // 整数或浮点数
	STRING   // '...' 或 "..."

	// ----------------------------------------------------------
	// 算术运算符
	// ----------------------------------------------------------
	PLUS   // +
	MINUS  // -
	TIMES  // *
	DIVIDE // /
	MOD    // %
	CONCAT // .
	ASSIGN // =
	INC    // ++
	DEC    // --

	// ----------------------------------------------------------
	// 比较运算符
	// ----------------------------------------------------------
	EQUAL    // ==
	NOTEQUAL // !=
	IDENT    // ===
	NIDENT   // !==
	LT       // <
	LE       // <=
	GT       // >
	GE       // >=

	// ----------------------------------------------------------
	// 逻辑运算符
	// ----------------------------------------------------------
	AND // &&
	OR  // ||
	NOT // !

	// ----------------------------------------------------------
	// 访问运算符
	// ----------------------------------------------------------
	ARROW               // ->
	SCOPE               // ::
	DOUBLEARROW         // =>
	NAMESPACE_SEPARATOR // \

	// ----------------------------------------------------------
	// 分隔符
	// ----------------------------------------------------------
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	QUESTION  // ?

	// ----------------------------------------------------------
	// 关键字
	// ----------------------------------------------------------
	keyword_beg // 关键字起始标记（不是实际 token）

	FUNCTION
	ECHO
	PRINT
	IF
	ELSE
	ELSEIF
	WHILE
	FOR
	FOREACH
	AS
	RETURN
	TRUE
	FALSE
	NULL
	CLASS
	NEW
	PUBLIC
	PRIVATE
	PROTECTED
	STATIC
	USE
	NAMESPACE
	INCLUDE
	REQUIRE

	keyword_end // 关键字结束标记（不是实际 token）
)

// tokenNames Token 类型到名称的映射
var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	PHP_OPEN:  "PHP_OPEN",
	PHP_CLOSE: "PHP_CLOSE",

	VARIABLE: "VARIABLE",
	ID:       "ID",
	NUMBER:   "NUMBER",
	STRING:   "STRING",

	PLUS:   "PLUS",
	MINUS:  "MINUS",
	TIMES:  "TIMES",
	DIVIDE: "DIVIDE",
	MOD:    "MOD",
	CONCAT: "CONCAT",
	ASSIGN: "ASSIGN",
	INC:    "INC",
	DEC:    "DEC",

	EQUAL:    "EQUAL",
	NOTEQUAL: "NOTEQUAL",
	IDENT:    "IDENT",
	NIDENT:   "NIDENT",
	LT:       "LT",
	LE:       "LE",
	GT:       "GT",
	GE:       "GE",

	AND: "AND",
	OR:  "OR",
	NOT: "NOT",

	ARROW:               "ARROW",
	SCOPE:               "SCOPE",
	DOUBLEARROW:         "DOUBLEARROW",
	NAMESPACE_SEPARATOR: "NAMESPACE_SEPARATOR",

	LPAREN:    "LPAREN",
	RPAREN:    "RPAREN",
	LBRACKET:  "LBRACKET",
	RBRACKET:  "RBRACKET",
	LBRACE:    "LBRACE",
	RBRACE:    "RBRACE",
	COMMA:     "COMMA",
	SEMICOLON: "SEMICOLON",
	COLON:     "COLON",
	QUESTION:  "QUESTION",

	FUNCTION:  "FUNCTION",
	ECHO:      "ECHO",
	PRINT:     "PRINT",
	IF:        "IF",
	ELSE:      "ELSE",
	ELSEIF:    "ELSEIF",
	WHILE:     "WHILE",
	FOR:       "FOR",
	FOREACH:   "FOREACH",
	AS:        "AS",
	RETURN:    "RETURN",
	TRUE:      "TRUE",
	FALSE:     "FALSE",
	NULL:      "NULL",
	CLASS:     "CLASS",
	NEW:       "NEW",
	PUBLIC:    "PUBLIC",
	PRIVATE:   "PRIVATE",
	PROTECTED: "PROTECTED",
	STATIC:    "STATIC",
	USE:       "USE",
	NAMESPACE: "NAMESPACE",
	INCLUDE:   "INCLUDE",
	REQUIRE:   "REQUIRE",
}

// keywords 保留字表（区分大小写）
var keywords = map[string]TokenType{
	"function":  FUNCTION,
	"echo":      ECHO,
	"print":     PRINT,
	"if":        IF,
	"else":      ELSE,
	"elseif":    ELSEIF,
	"while":     WHILE,
	"for":       FOR,
	"foreach":   FOREACH,
	"as":        AS,
	"return":    RETURN,
	"true":      TRUE,
	"false":     FALSE,
	"null":      NULL,
	"class":     CLASS,
	"new":       NEW,
	"public":    PUBLIC,
	"private":   PRIVATE,
	"protected": PROTECTED,
	"static":    STATIC,
	"use":       USE,
	"namespace": NAMESPACE,
	"include":   INCLUDE,
	"require":   REQUIRE,
}

// LookupIdent 查找标识符是否为关键字，不是则返回 ID
func LookupIdent(ident string) TokenType {
	// 关键字最短 2 个字符，最长 9 个字符
	if len(ident) < 2 || len(ident) > 9 {
		return ID
	}
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return ID
}

// Keywords 返回全部保留字（顺序不保证）
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for kw := range keywords {
		out = append(out, kw)
	}
	return out
}

// IsKeyword 检查 token 类型是否为关键字
func IsKeyword(t TokenType) bool {
	return t > keyword_beg && t < keyword_end
}

// String 返回 token 类型的名称
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// ============================================================================
// Position - 源代码位置
// ============================================================================

// Position 表示源代码中的位置
type Position struct {
	Filename string // 文件名
	Line     int    // 行号 (从1开始)
	Column   int    // 列号 (从1开始)
	Offset   int    // 字节偏移量 (从0开始)
}

// String 返回位置的字符串表示，格式为 "filename:line:column"
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid 检查位置是否有效
func (p Position) IsValid() bool {
	return p.Line > 0
}

// ============================================================================
// Token - 词法单元
// ============================================================================

// Token 表示一个词法单元
//
// Value 的取值：
//   - NUMBER: int64 或 float64（按字面量是否含小数点）
//   - STRING: 引号内部的原始文本（转义字符原样保留）
//   - 其他:   与 Literal 相同的字符串
type Token struct {
	Type    TokenType   // Token 类型
	Literal string      // 原始字面量
	Value   interface{} // 解析后的值
	Pos     Position    // 位置信息
}

// String 返回 token 的调试表示
func (t Token) String() string {
	switch t.Type {
	case EOF:
		return fmt.Sprintf("%s @ %s", t.Type, t.Pos)
	case NUMBER, STRING:
		return fmt.Sprintf("%s(%v) @ %s", t.Type, t.Value, t.Pos)
	}
	return fmt.Sprintf("%s(%q) @ %s", t.Type, t.Literal, t.Pos)
}

// New 创建新的 Token，Value 取字面量本身
func New(tokenType TokenType, literal string, pos Position) Token {
	return Token{
		Type:    tokenType,
		Literal: literal,
		Value:   literal,
		Pos:     pos,
	}
}

// NewWithValue 创建带有值的 Token
func NewWithValue(tokenType TokenType, literal string, value interface{}, pos Position) Token {
	return Token{
		Type:    tokenType,
		Literal: literal,
		Value:   value,
		Pos:     pos,
	}
}
