package lexer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/tangzhangming/phplite/internal/errors"
	"github.com/tangzhangming/phplite/internal/token"
)

func tokenTypes(tokens []token.Token) []token.TokenType {
	types := make([]token.TokenType, 0, len(tokens))
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	return types
}

func TestLexerOperatorsAndDelimiters(t *testing.T) {
	input := `+ - * / % . = == === != !== < <= > >= && || ! -> :: => ++ -- ( ) [ ] { } , ; : ? \`

	expected := []token.TokenType{
		token.PLUS, token.MINUS, token.TIMES, token.DIVIDE, token.MOD, token.CONCAT,
		token.ASSIGN, token.EQUAL, token.IDENT, token.NOTEQUAL, token.NIDENT,
		token.LT, token.LE, token.GT, token.GE,
		token.AND, token.OR, token.NOT,
		token.ARROW, token.SCOPE, token.DOUBLEARROW, token.INC, token.DEC,
		token.LPAREN, token.RPAREN, token.LBRACKET, token.RBRACKET, token.LBRACE, token.RBRACE,
		token.COMMA, token.SEMICOLON, token.COLON, token.QUESTION, token.NAMESPACE_SEPARATOR,
		token.EOF,
	}

	l := New(input, "test.php")
	got := tokenTypes(l.ScanTokens())

	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("token types mismatch:\n got  %v\n want %v", got, expected)
	}
	if l.HasErrors() {
		t.Errorf("unexpected errors: %v", l.Errors())
	}
}

func TestLexerKeywords(t *testing.T) {
	tests := []struct {
		input    string
		expected token.TokenType
	}{
		{"function", token.FUNCTION},
		{"echo", token.ECHO},
		{"print", token.PRINT},
		{"if", token.IF},
		{"else", token.ELSE},
		{"elseif", token.ELSEIF},
		{"while", token.WHILE},
		{"for", token.FOR},
		{"foreach", token.FOREACH},
		{"as", token.AS},
		{"return", token.RETURN},
		{"true", token.TRUE},
		{"false", token.FALSE},
		{"null", token.NULL},
		{"class", token.CLASS},
		{"new", token.NEW},
		{"public", token.PUBLIC},
		{"private", token.PRIVATE},
		{"protected", token.PROTECTED},
		{"static", token.STATIC},
		{"use", token.USE},
		{"namespace", token.NAMESPACE},
		{"include", token.INCLUDE},
		{"require", token.REQUIRE},
		// 区分大小写
		{"Echo", token.ID},
		{"TRUE", token.ID},
		{"miFuncion", token.ID},
		{"_private", token.ID},
	}

	for _, tt := range tests {
		l := New(tt.input, "test.php")
		tok := l.NextToken()
		if tok.Type != tt.expected {
			t.Errorf("%q: got %s, want %s", tt.input, tok.Type, tt.expected)
		}
		if tok.Literal != tt.input {
			t.Errorf("%q: literal = %q", tt.input, tok.Literal)
		}
	}
}

func TestLexerPHPTags(t *testing.T) {
	l := New("<?php ?>", "test.php")
	tokens := l.ScanTokens()

	expected := []token.TokenType{token.PHP_OPEN, token.PHP_CLOSE, token.EOF}
	if got := tokenTypes(tokens); !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %v, want %v", got, expected)
	}
	if tokens[0].Value != "<?php" || tokens[1].Value != "?>" {
		t.Errorf("unexpected tag values: %v %v", tokens[0].Value, tokens[1].Value)
	}

	// <? 后面不是 php 时按普通运算符处理
	l = New("<?xml", "test.php")
	expected = []token.TokenType{token.LT, token.QUESTION, token.ID, token.EOF}
	if got := tokenTypes(l.ScanTokens()); !reflect.DeepEqual(got, expected) {
		t.Errorf("got %v, want %v", got, expected)
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"42", int64(42)},
		{"0", int64(0)},
		{"007", int64(7)},
		{"3.14", 3.14},
		{"10.0", 10.0},
	}

	for _, tt := range tests {
		l := New(tt.input, "test.php")
		tok := l.NextToken()
		if tok.Type != token.NUMBER {
			t.Errorf("%q: got %s, want NUMBER", tt.input, tok.Type)
			continue
		}
		if tok.Value != tt.expected {
			t.Errorf("%q: value = %#v, want %#v", tt.input, tok.Value, tt.expected)
		}
	}

	// "1." 不是浮点数
	l := New("1.", "test.php")
	expected := []token.TokenType{token.NUMBER, token.CONCAT, token.EOF}
	if got := tokenTypes(l.ScanTokens()); !reflect.DeepEqual(got, expected) {
		t.Errorf("got %v, want %v", got, expected)
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"hola"`, "hola"},
		{`'mundo'`, "mundo"},
		{`""`, ""},
		{`'it\'s'`, `it\'s`},
		{`"a\nb"`, `a\nb`},
		{`"say \"hi\""`, `say \"hi\"`},
		{`'日本語'`, "日本語"},
		{"\"x\ny\"", "x\ny"},
		{"'uno\r\ndos'", "uno\r\ndos"},
	}

	for _, tt := range tests {
		l := New(tt.input, "test.php")
		tok := l.NextToken()
		if tok.Type != token.STRING {
			t.Errorf("%s: got %s, want STRING", tt.input, tok.Type)
			continue
		}
		if tok.Value != tt.expected {
			t.Errorf("%s: value = %q, want %q", tt.input, tok.Value, tt.expected)
		}
		if l.HasErrors() {
			t.Errorf("%s: unexpected errors %v", tt.input, l.Errors())
		}
	}
}

func TestLexerVariables(t *testing.T) {
	l := New("$miVariable $_x $a1", "test.php")
	tokens := l.ScanTokens()

	want := []string{"$miVariable", "$_x", "$a1"}
	if len(tokens) != len(want)+1 {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want)+1)
	}
	for i, name := range want {
		if tokens[i].Type != token.VARIABLE || tokens[i].Value != name {
			t.Errorf("token[%d] = %s %v, want VARIABLE %s", i, tokens[i].Type, tokens[i].Value, name)
		}
	}
}

func TestLexerRecoversFromUnexpectedCharacters(t *testing.T) {
	l := New("<?php $foo @ $bar; &$baz; ?>", "test.php")
	tokens := l.ScanTokens()

	type pair struct {
		typ   token.TokenType
		value interface{}
	}
	expected := []pair{
		{token.PHP_OPEN, "<?php"},
		{token.VARIABLE, "$foo"},
		{token.VARIABLE, "$bar"},
		{token.SEMICOLON, ";"},
		{token.VARIABLE, "$baz"},
		{token.SEMICOLON, ";"},
		{token.PHP_CLOSE, "?>"},
		{token.EOF, nil},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("got %d tokens (%v), want %d", len(tokens), tokenTypes(tokens), len(expected))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp.typ {
			t.Errorf("token[%d] type = %s, want %s", i, tokens[i].Type, exp.typ)
		}
		if exp.value != nil && tokens[i].Value != exp.value {
			t.Errorf("token[%d] value = %v, want %v", i, tokens[i].Value, exp.value)
		}
	}

	errs := l.Errors()
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	if errs[0].Text != "@" || !strings.Contains(errs[0].Message, "'@'") {
		t.Errorf("first error = %+v, want reference to '@'", errs[0])
	}
	if errs[1].Text != "&" {
		t.Errorf("second error text = %q, want &", errs[1].Text)
	}
	for _, e := range errs {
		if e.Code != errors.E0002 || e.Pos.Line != 1 {
			t.Errorf("error %+v: want code %s on line 1", e, errors.E0002)
		}
	}
}

func TestLexerSingleBadCharacterBetweenVariables(t *testing.T) {
	l := New("$foo @ $bar", "test.php")
	tokens := l.ScanTokens()

	if l.ErrorCount() != 1 {
		t.Fatalf("ErrorCount() = %d, want 1", l.ErrorCount())
	}
	if !strings.Contains(l.Errors()[0].Message, "@") {
		t.Errorf("error message %q does not mention '@'", l.Errors()[0].Message)
	}
	if len(tokens) != 3 || tokens[0].Value != "$foo" || tokens[1].Value != "$bar" {
		t.Errorf("tokens = %v, want $foo $bar EOF", tokens)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	l := New(`<?php echo "hola ?>`, "test.php")
	tokens := l.ScanTokens()

	expected := []token.TokenType{token.PHP_OPEN, token.ECHO, token.ID, token.PHP_CLOSE, token.EOF}
	if got := tokenTypes(tokens); !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %v, want %v", got, expected)
	}
	if tokens[2].Value != "hola" {
		t.Errorf("identifier value = %v, want hola", tokens[2].Value)
	}
	if l.ErrorCount() != 1 || l.Errors()[0].Text != `"` {
		t.Errorf("errors = %v, want one unexpected '\"'", l.Errors())
	}
}

func TestLexerInvalidNames(t *testing.T) {
	tests := []struct {
		input    string
		code     string
		text     string
		expected []token.TokenType
	}{
		{
			input:    "<?php $9abc = 1; ?>",
			code:     errors.E0003,
			text:     "$9abc",
			expected: []token.TokenType{token.PHP_OPEN, token.ASSIGN, token.NUMBER, token.SEMICOLON, token.PHP_CLOSE, token.EOF},
		},
		{
			input:    "$ foo;",
			code:     errors.E0003,
			text:     "$ foo",
			expected: []token.TokenType{token.SEMICOLON, token.EOF},
		},
		{
			input:    "9abc + 1",
			code:     errors.E0004,
			text:     "9abc",
			expected: []token.TokenType{token.PLUS, token.NUMBER, token.EOF},
		},
		{
			input:    "$\n$x",
			code:     errors.E0002,
			text:     "$",
			expected: []token.TokenType{token.VARIABLE, token.EOF},
		},
	}

	for _, tt := range tests {
		l := New(tt.input, "test.php")
		got := tokenTypes(l.ScanTokens())
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("%q: got %v, want %v", tt.input, got, tt.expected)
		}
		if l.ErrorCount() != 1 {
			t.Errorf("%q: ErrorCount() = %d, want 1", tt.input, l.ErrorCount())
			continue
		}
		if e := l.Errors()[0]; e.Code != tt.code || e.Text != tt.text {
			t.Errorf("%q: error = %+v, want code %s text %q", tt.input, e, tt.code, tt.text)
		}
	}
}

func TestLexerCommentsAndLines(t *testing.T) {
	input := "<?php\n/* a\nb */\n$x; // c\n# d\n$y;"

	l := New(input, "test.php")
	tokens := l.ScanTokens()

	expected := []struct {
		typ  token.TokenType
		line int
	}{
		{token.PHP_OPEN, 1},
		{token.VARIABLE, 4},
		{token.SEMICOLON, 4},
		{token.VARIABLE, 6},
		{token.SEMICOLON, 6},
		{token.EOF, 6},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("got %d tokens (%v), want %d", len(tokens), tokenTypes(tokens), len(expected))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp.typ || tokens[i].Pos.Line != exp.line {
			t.Errorf("token[%d] = %s line %d, want %s line %d",
				i, tokens[i].Type, tokens[i].Pos.Line, exp.typ, exp.line)
		}
	}
}

func TestLexerMultilineString(t *testing.T) {
	l := New("<?php $a = \"x\ny\"; echo $a; ?>", "test.php")
	tokens := l.ScanTokens()

	expected := []token.TokenType{
		token.PHP_OPEN, token.VARIABLE, token.ASSIGN, token.STRING, token.SEMICOLON,
		token.ECHO, token.VARIABLE, token.SEMICOLON, token.PHP_CLOSE, token.EOF,
	}
	if got := tokenTypes(tokens); !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %v, want %v", got, expected)
	}
	if l.HasErrors() {
		t.Fatalf("unexpected errors %v", l.Errors())
	}
	if tokens[3].Pos.Line != 1 || tokens[5].Pos.Line != 2 {
		t.Errorf("string at line %d, echo at line %d, want 1 and 2", tokens[3].Pos.Line, tokens[5].Pos.Line)
	}
}

func TestLexerEscapedNewlineEndsString(t *testing.T) {
	tests := []string{
		"\"a\\\nb\"",
		"'a\nb",
	}
	for _, input := range tests {
		l := New(input, "test.php")
		tokens := l.ScanTokens()
		if l.ErrorCount() == 0 || l.Errors()[0].Pos.Line != 1 {
			t.Errorf("%q: errors = %v, want unexpected quote on line 1", input, l.Errors())
		}
		for _, tok := range tokens {
			if tok.Type == token.STRING {
				t.Errorf("%q: got STRING %q", input, tok.Value)
			}
		}
		for _, tok := range tokens {
			if tok.Type == token.ID && tok.Value == "b" && tok.Pos.Line != 2 {
				t.Errorf("%q: b at line %d, want 2", input, tok.Pos.Line)
			}
		}
	}
}

func TestLexerUnterminatedBlockComment(t *testing.T) {
	l := New("/* x", "test.php")
	expected := []token.TokenType{token.DIVIDE, token.TIMES, token.ID, token.EOF}
	if got := tokenTypes(l.ScanTokens()); !reflect.DeepEqual(got, expected) {
		t.Errorf("got %v, want %v", got, expected)
	}
}

func TestLexerPositions(t *testing.T) {
	l := New("<?php $a = 10;", "pos.php")
	tokens := l.ScanTokens()

	columns := []int{1, 7, 10, 12, 14}
	for i, col := range columns {
		if tokens[i].Pos.Column != col {
			t.Errorf("token[%d] %s column = %d, want %d", i, tokens[i].Type, tokens[i].Pos.Column, col)
		}
		if tokens[i].Pos.Filename != "pos.php" {
			t.Errorf("token[%d] filename = %q", i, tokens[i].Pos.Filename)
		}
	}
}

func TestLexerIsIdempotent(t *testing.T) {
	src := `<?php function f($x = 1.5) { return $x . "!"; } echo f(2); ?>`

	first := New(src, "a.php").ScanTokens()
	second := New(src, "a.php").ScanTokens()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("two fresh lexers produced different tokens")
	}
}

func TestLexerEOFIsSticky(t *testing.T) {
	l := New("$a", "test.php")
	if tok := l.NextToken(); tok.Type != token.VARIABLE {
		t.Fatalf("first token = %s", tok.Type)
	}
	for i := 0; i < 3; i++ {
		if tok := l.NextToken(); tok.Type != token.EOF {
			t.Errorf("call %d after end: got %s, want EOF", i, tok.Type)
		}
	}
	if !l.Done() {
		t.Errorf("Done() = false after EOF")
	}
}
