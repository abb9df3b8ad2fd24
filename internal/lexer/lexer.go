package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tangzhangming/phplite/internal/errors"
	"github.com/tangzhangming/phplite/internal/i18n"
	"github.com/tangzhangming/phplite/internal/token"
)

// ============================================================================
// Lexer - 词法分析器
// ============================================================================
//
// 词法分析器按需（拉取式）把源代码转换为 Token：每次 NextToken 只扫描到
// 产生下一个 Token 为止。遇到非法输入时记录错误、跳过出错片段并继续扫描，
// 从不中断。
//
// 匹配优先级（同一位置）：
//  1. <?php 与 ?>
//  2. 多字符运算符（=== !== == != <= >= && || ++ -- -> :: =>）
//  3. 数字开头的标识符（错误，整段丢弃）
//  4. 数字、字符串
//  5. 非法变量名（错误，整段丢弃）、变量
//  6. 标识符 / 关键字
//  7. 注释与空白
//  8. 其他单个字符（错误，只丢弃该字符）
//
// ============================================================================

// Lexer 词法分析器结构体
type Lexer struct {
	source   string // 源代码字符串
	filename string // 源文件名（用于错误报告）

	start       int // 当前 Token 的起始位置（字节偏移）
	current     int // 当前扫描位置（字节偏移）
	line        int // 当前行号（从1开始）
	column      int // 当前列号（从1开始）
	startLine   int // 当前 Token 起始行
	startColumn int // 当前 Token 起始列

	pending []token.Token // 已扫描但尚未取走的 Token
	done    bool          // 是否已到达输入末尾

	errors []Error // 词法错误列表
}

// Error 表示词法分析错误
type Error struct {
	Pos     token.Position // 错误位置
	Code    string         // 错误码（errors.E0002 等）
	Text    string         // 被丢弃的源码片段
	Message string         // 错误信息
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// ============================================================================
// 构造函数
// ============================================================================

// New 创建一个新的词法分析器
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		line:     1,
		column:   1,
	}
}

// ============================================================================
// 公共方法
// ============================================================================

// NextToken 返回下一个 Token
//
// 输入耗尽后总是返回 EOF，可以重复调用。
func (l *Lexer) NextToken() token.Token {
	for len(l.pending) == 0 {
		if l.isAtEnd() {
			l.done = true
			l.start = l.current
			l.startLine, l.startColumn = l.line, l.column
			return token.Token{Type: token.EOF, Pos: l.startPos()}
		}
		l.start = l.current
		l.startLine, l.startColumn = l.line, l.column
		l.scanToken()
	}

	tok := l.pending[0]
	l.pending = l.pending[1:]
	return tok
}

// ScanTokens 扫描剩余的全部 Token
//
// 返回的序列以 EOF 结尾。
func (l *Lexer) ScanTokens() []token.Token {
	tokens := make([]token.Token, 0, len(l.source)/4+1)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

// Errors 返回所有词法错误
func (l *Lexer) Errors() []Error {
	return l.errors
}

// ErrorCount 返回词法错误数量
func (l *Lexer) ErrorCount() int {
	return len(l.errors)
}

// HasErrors 检查是否有错误
func (l *Lexer) HasErrors() bool {
	return len(l.errors) > 0
}

// Done 是否已扫描到输入末尾
func (l *Lexer) Done() bool {
	return l.done
}

// ============================================================================
// 核心扫描逻辑
// ============================================================================

// scanToken 从 l.start 开始扫描，最多产生一个 Token
func (l *Lexer) scanToken() {
	ch := l.advance()

	switch ch {

	// ----------------------------------------------------------
	// 空白
	// ----------------------------------------------------------
	case ' ', '\t', '\r':
		l.skipWhitespace()

	case '\n':
		l.newLine()
		l.skipWhitespace()

	// ----------------------------------------------------------
	// 分隔符
	// ----------------------------------------------------------
	case '(':
		l.addToken(token.LPAREN)
	case ')':
		l.addToken(token.RPAREN)
	case '{':
		l.addToken(token.LBRACE)
	case '}':
		l.addToken(token.RBRACE)
	case '[':
		l.addToken(token.LBRACKET)
	case ']':
		l.addToken(token.RBRACKET)
	case ',':
		l.addToken(token.COMMA)
	case ';':
		l.addToken(token.SEMICOLON)
	case '\\':
		l.addToken(token.NAMESPACE_SEPARATOR)

	// ----------------------------------------------------------
	// PHP 标签与比较运算符
	// ----------------------------------------------------------
	case '<':
		// <?php 或 <= 或 <
		if l.matchSequence("?php") {
			l.addToken(token.PHP_OPEN)
		} else if l.match('=') {
			l.addToken(token.LE)
		} else {
			l.addToken(token.LT)
		}

	case '?':
		// ?> 或 ?
		if l.match('>') {
			l.addToken(token.PHP_CLOSE)
		} else {
			l.addToken(token.QUESTION)
		}

	case '>':
		if l.match('=') {
			l.addToken(token.GE)
		} else {
			l.addToken(token.GT)
		}

	case '=':
		// === 或 == 或 => 或 =
		if l.match('=') {
			if l.match('=') {
				l.addToken(token.IDENT)
			} else {
				l.addToken(token.EQUAL)
			}
		} else if l.match('>') {
			l.addToken(token.DOUBLEARROW)
		} else {
			l.addToken(token.ASSIGN)
		}

	case '!':
		// !== 或 != 或 !
		if l.match('=') {
			if l.match('=') {
				l.addToken(token.NIDENT)
			} else {
				l.addToken(token.NOTEQUAL)
			}
		} else {
			l.addToken(token.NOT)
		}

	// ----------------------------------------------------------
	// 逻辑运算符（单个 & 与 | 不属于语言）
	// ----------------------------------------------------------
	case '&':
		if l.match('&') {
			l.addToken(token.AND)
		} else {
			l.unexpected(ch)
		}

	case '|':
		if l.match('|') {
			l.addToken(token.OR)
		} else {
			l.unexpected(ch)
		}

	// ----------------------------------------------------------
	// 算术与访问运算符
	// ----------------------------------------------------------
	case '+':
		if l.match('+') {
			l.addToken(token.INC)
		} else {
			l.addToken(token.PLUS)
		}

	case '-':
		// -- 或 -> 或 -
		if l.match('-') {
			l.addToken(token.DEC)
		} else if l.match('>') {
			l.addToken(token.ARROW)
		} else {
			l.addToken(token.MINUS)
		}

	case ':':
		if l.match(':') {
			l.addToken(token.SCOPE)
		} else {
			l.addToken(token.COLON)
		}

	case '*':
		l.addToken(token.TIMES)
	case '%':
		l.addToken(token.MOD)
	case '.':
		l.addToken(token.CONCAT)

	// ----------------------------------------------------------
	// 注释或除号
	// ----------------------------------------------------------
	case '/':
		if l.match('/') {
			l.lineComment()
		} else if l.peekByte() == '*' && strings.Contains(l.source[l.current+1:], "*/") {
			// 未闭合的 /* 不是注释，按 / 和 * 两个运算符处理
			l.advance()
			l.blockComment()
		} else {
			l.addToken(token.DIVIDE)
		}

	case '#':
		l.lineComment()

	// ----------------------------------------------------------
	// 字面量
	// ----------------------------------------------------------
	case '"', '\'':
		l.string(ch)

	case '$':
		l.variable()

	default:
		if isDigit(ch) {
			l.number()
		} else if isAlpha(ch) {
			l.identifier()
		} else {
			l.unexpected(ch)
		}
	}
}

// skipWhitespace 批量跳过连续空白
func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.peekByte() {
		case ' ', '\t', '\r':
			l.advance()
		case '\n':
			l.advance()
			l.newLine()
		default:
			return
		}
	}
}

// ============================================================================
// 注释处理
// ============================================================================

// lineComment 处理 // 与 # 单行注释，不消费换行符
func (l *Lexer) lineComment() {
	for !l.isAtEnd() && l.peekByte() != '\n' {
		l.advance()
	}
}

// blockComment 处理 /* */ 注释（不支持嵌套），调用方已确认存在结束标记
func (l *Lexer) blockComment() {
	for !l.isAtEnd() {
		if l.peekByte() == '*' && l.peekNextByte() == '/' {
			l.advance()
			l.advance()
			return
		}
		if l.advance() == '\n' {
			l.newLine()
		}
	}
}

// ============================================================================
// 字符串处理
// ============================================================================

// string 处理单引号或双引号字符串
//
// 反斜杠转义下一个字符（转义字符原样保留在值中），但不能转义换行。
// 字符串可以跨行。未闭合时只把开头的引号当作意外字符丢弃，其余内容重新扫描。
func (l *Lexer) string(quote rune) {
	resumeOffset, resumeColumn, resumeLine := l.current, l.column, l.line

	for !l.isAtEnd() {
		c := l.peekByte()
		switch {
		case c == '\n':
			l.advance()
			l.newLine()
		case c == '\\':
			l.advance()
			if l.isAtEnd() || l.peekByte() == '\n' {
				l.rewind(resumeOffset, resumeLine, resumeColumn)
				l.unexpected(quote)
				return
			}
			l.advance()
		case rune(c) == quote:
			l.advance()
			value := l.source[l.start+1 : l.current-1]
			l.addTokenWithValue(token.STRING, value)
			return
		default:
			l.advance()
		}
	}

	l.rewind(resumeOffset, resumeLine, resumeColumn)
	l.unexpected(quote)
}

// ============================================================================
// 变量处理
// ============================================================================

// variable 处理 $ 开头的变量
//
//	$name      -> VARIABLE
//	$  name    -> 非法变量名（$ 与名字之间有空格或 Tab）
//	$9abc;     -> 非法变量名（一直吞到下一个空白）
//	$ 后接换行 -> 意外字符 '$'
func (l *Lexer) variable() {
	next := l.peek()

	switch {
	case isAlpha(next):
		for isAlphaNumeric(l.peek()) {
			l.advance()
		}
		l.addToken(token.VARIABLE)

	case next == ' ' || next == '\t':
		i := l.current
		for i < len(l.source) && (l.source[i] == ' ' || l.source[i] == '\t') {
			i++
		}
		if i < len(l.source) && isAlpha(rune(l.source[i])) {
			for l.current < i {
				l.advance()
			}
			for isAlphaNumeric(l.peek()) {
				l.advance()
			}
			l.invalidSpan(errors.E0003, i18n.ErrInvalidVariable)
			return
		}
		l.unexpected('$')

	case next == 0 || isSpace(next):
		l.unexpected('$')

	default:
		for !l.isAtEnd() && !isSpace(l.peek()) {
			l.advance()
		}
		l.invalidSpan(errors.E0003, i18n.ErrInvalidVariable)
	}
}

// ============================================================================
// 数字处理
// ============================================================================

// number 处理数字字面量
//
// 整数 \d+ 或浮点数 \d+\.\d+；数字后紧跟字母或下划线时整段作为非法
// 标识符丢弃（如 9abc）。
func (l *Lexer) number() {
	for isDigit(l.peek()) {
		l.advance()
	}

	if isAlpha(l.peek()) {
		for isAlphaNumeric(l.peek()) {
			l.advance()
		}
		l.invalidSpan(errors.E0004, i18n.ErrInvalidIdentifier)
		return
	}

	if l.peekByte() == '.' && isDigit(rune(l.peekNextByte())) {
		l.advance() // 消费 '.'
		for isDigit(l.peek()) {
			l.advance()
		}
		text := l.source[l.start:l.current]
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			l.invalidSpan(errors.E0005, i18n.ErrInvalidFloat)
			return
		}
		l.addTokenWithValue(token.NUMBER, value)
		return
	}

	text := l.source[l.start:l.current]
	// 小整数快速路径
	if len(text) == 1 {
		l.addTokenWithValue(token.NUMBER, int64(text[0]-'0'))
		return
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		l.invalidSpan(errors.E0005, i18n.ErrInvalidInteger)
		return
	}
	l.addTokenWithValue(token.NUMBER, value)
}

// ============================================================================
// 标识符处理
// ============================================================================

// identifier 处理标识符和关键字（关键字区分大小写）
func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) {
		l.advance()
	}
	text := l.source[l.start:l.current]
	l.addToken(token.LookupIdent(text))
}

// ============================================================================
// 字符读取辅助
// ============================================================================

// isAtEnd 检查是否到达源码末尾
func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

// advance 前进一个字符并返回它
func (l *Lexer) advance() rune {
	if l.current >= len(l.source) {
		return 0
	}

	b := l.source[l.current]
	if b < utf8.RuneSelf {
		l.current++
		l.column++
		return rune(b)
	}

	r, size := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += size
	l.column++
	return r
}

// peek 查看当前字符但不前进
func (l *Lexer) peek() rune {
	if l.current >= len(l.source) {
		return 0
	}
	b := l.source[l.current]
	if b < utf8.RuneSelf {
		return rune(b)
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.current:])
	return r
}

// peekByte 查看当前字节
func (l *Lexer) peekByte() byte {
	if l.current >= len(l.source) {
		return 0
	}
	return l.source[l.current]
}

// peekNextByte 查看下一个字节
func (l *Lexer) peekNextByte() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

// match 如果当前字符匹配则前进
func (l *Lexer) match(expected byte) bool {
	if l.current >= len(l.source) || l.source[l.current] != expected {
		return false
	}
	l.current++
	l.column++
	return true
}

// matchSequence 如果接下来的字节与 s 完全相同则整体前进
func (l *Lexer) matchSequence(s string) bool {
	if !strings.HasPrefix(l.source[l.current:], s) {
		return false
	}
	l.current += len(s)
	l.column += len(s)
	return true
}

// rewind 回退到较早的位置
func (l *Lexer) rewind(offset, line, column int) {
	l.current = offset
	l.line = line
	l.column = column
}

// newLine 处理换行
func (l *Lexer) newLine() {
	l.line++
	l.column = 1
}

// startPos 当前 Token 的起始位置
func (l *Lexer) startPos() token.Position {
	return token.Position{
		Filename: l.filename,
		Line:     l.startLine,
		Column:   l.startColumn,
		Offset:   l.start,
	}
}

// ============================================================================
// Token 生成
// ============================================================================

// addToken 添加 Token，Value 与字面量相同
func (l *Lexer) addToken(tokenType token.TokenType) {
	literal := l.source[l.start:l.current]
	l.pending = append(l.pending, token.New(tokenType, literal, l.startPos()))
}

// addTokenWithValue 添加带解析值的 Token
func (l *Lexer) addTokenWithValue(tokenType token.TokenType, value interface{}) {
	literal := l.source[l.start:l.current]
	l.pending = append(l.pending, token.NewWithValue(tokenType, literal, value, l.startPos()))
}

// ============================================================================
// 错误处理
// ============================================================================

// unexpected 报告意外字符；该字符已被消费并丢弃
func (l *Lexer) unexpected(ch rune) {
	l.errors = append(l.errors, Error{
		Pos:     l.startPos(),
		Code:    errors.E0002,
		Text:    string(ch),
		Message: i18n.T(i18n.ErrUnexpectedChar, string(ch)),
	})
}

// invalidSpan 报告从 l.start 到当前位置的非法片段，整段丢弃
func (l *Lexer) invalidSpan(code, msgID string) {
	text := l.source[l.start:l.current]
	l.errors = append(l.errors, Error{
		Pos:     l.startPos(),
		Code:    code,
		Text:    text,
		Message: i18n.T(msgID, text),
	})
}

// ============================================================================
// 字符分类函数
// ============================================================================

// isDigit 判断是否为数字 0-9
func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// isAlpha 判断是否为 ASCII 字母或下划线
func isAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		ch == '_'
}

// isAlphaNumeric 判断是否为字母、数字或下划线
func isAlphaNumeric(ch rune) bool {
	return isAlpha(ch) || isDigit(ch)
}

// isSpace 判断是否为空白字符（对应正则 \s）
func isSpace(ch rune) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
