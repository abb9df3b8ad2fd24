package parser

import (
	"strings"
	"testing"

	"github.com/tangzhangming/phplite/internal/ast"
	"github.com/tangzhangming/phplite/internal/errors"
	"github.com/tangzhangming/phplite/internal/lexer"
	"github.com/tangzhangming/phplite/internal/token"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := ParseSource(src, "test.php")
	for _, err := range errs {
		t.Errorf("parser error: %v", err)
	}
	if prog == nil {
		t.Fatalf("Parse(%q) returned nil", src)
	}
	return prog
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`$x = 1 + 2 * 3;`, "$x = (1 + (2 * 3));"},
		{`$t = $c ? 1 : 2;`, "$t = ($c ? 1 : 2);"},
		{`$a = $b = 3;`, "$a = $b = 3;"},
		{`$a[0] = 5;`, "$a[0] = 5;"},
		{`echo 'a', $b . 'c';`, "echo 'a', ($b . 'c');"},
		{`print -$x + 1;`, "print ((-$x) + 1);"},
		{`-2 - -3;`, "((-2) - (-3));"},
		{`$i++;`, "($i++);"},
		{`++$i;`, "(++$i);"},
		{`!$a && $b || $c;`, "(((!$a) && $b) || $c);"},
		{`$a == $b === $c;`, "(($a == $b) === $c);"},
		{`$a < $b + 1;`, "($a < ($b + 1));"},
		{`return;`, "return;"},
		{`return $x % 2;`, "return ($x % 2);"},
		{`include 'lib.php';`, "include 'lib.php';"},
		{`require $path;`, "require $path;"},
		{`f(1, 2)[0];`, "f(1, 2)[0];"},
		{`App\Util::make(1)->name;`, `App\Util::make(1)->name;`},
		{`new Greeter('x');`, "new Greeter('x');"},
		{`$arr = [1, 'k' => 2,];`, "$arr = [1, 'k' => 2];"},
		{`$s = 'it\'s';`, `$s = 'it\'s';`},
		{`;`, ";"},
		{`{ echo 1; }`, "{ echo 1; }"},
		{`if ($a) echo 1; elseif ($b) echo 2; else echo 3;`, "if ($a) echo 1; elseif ($b) echo 2; else echo 3;"},
		{`while ($x < 10) $x = $x + 1;`, "while (($x < 10)) $x = ($x + 1);"},
		{`for ($i = 0; $i < 3; $i++) echo $i;`, "for ($i = 0; ($i < 3); ($i++)) echo $i;"},
		{`for ($i = 0, $j = 9; ; ) {}`, "for ($i = 0, $j = 9; ; ) { }"},
		{`for (;;) {}`, "for (; ; ) { }"},
		{`foreach ($xs as $v) echo $v;`, "foreach ($xs as $v) echo $v;"},
		{`foreach ($xs as $k => $v) { echo $k, $v; }`, "foreach ($xs as $k => $v) { echo $k, $v; }"},
	}

	for _, tt := range tests {
		prog := mustParse(t, "<?php "+tt.input+" ?>")
		if len(prog.Items) != 1 {
			t.Errorf("%s: expected 1 item, got %d", tt.input, len(prog.Items))
			continue
		}
		if got := prog.Items[0].String(); got != tt.expected {
			t.Errorf("%s: got %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestVarDeclDisambiguation(t *testing.T) {
	tests := []struct {
		input    string
		kind     string
		bindings int
	}{
		{`$y = $x;`, "VarDeclStmt", 1},
		{`$a, $b = 2;`, "VarDeclStmt", 2},
		{`$x;`, "VarDeclStmt", 1},
		{`$x + 1;`, "ExprStmt", 0},
		{`$x->y = 1;`, "ExprStmt", 0},
		{`$f(1);`, "ExprStmt", 0},
	}

	for _, tt := range tests {
		prog := mustParse(t, "<?php "+tt.input+" ?>")
		item := prog.Items[0]
		if item.Kind() != tt.kind {
			t.Errorf("%s: expected %s, got %s", tt.input, tt.kind, item.Kind())
			continue
		}
		if decl, ok := item.(*ast.VarDeclStmt); ok && len(decl.Bindings) != tt.bindings {
			t.Errorf("%s: expected %d bindings, got %d", tt.input, tt.bindings, len(decl.Bindings))
		}
	}

	prog := mustParse(t, "<?php $t = $c ? 1 : 2; ?>")
	decl := prog.Items[0].(*ast.VarDeclStmt)
	if _, ok := decl.Bindings[0].Init.(*ast.Ternary); !ok {
		t.Errorf("expected Ternary initializer, got %T", decl.Bindings[0].Init)
	}
}

func TestForInit(t *testing.T) {
	prog := mustParse(t, "<?php for ($i = 0; $i < 3; $i++) {} for ($i++; ; ) {} ?>")

	first := prog.Items[0].(*ast.ForStmt)
	if first.InitDecl == nil || len(first.InitDecl.Bindings) != 1 || first.Init != nil {
		t.Errorf("expected binding init, got %+v", first)
	}

	second := prog.Items[1].(*ast.ForStmt)
	if second.InitDecl != nil || len(second.Init) != 1 || second.Cond != nil {
		t.Errorf("expected expression init, got %+v", second)
	}
}

func TestParseDeclarations(t *testing.T) {
	input := `<?php
namespace App\Util;
use Foo\Bar, Baz;
class Greeter {
    public function hello($name, $greeting = 'Hi') { return $greeting . $name; }
    private static function make() { return new Greeter(); }
    function plain() {}
}
function main() { $g = Greeter::make(); }
?>`
	prog := mustParse(t, input)
	if len(prog.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(prog.Items))
	}

	ns, ok := prog.Items[0].(*ast.NamespaceDecl)
	if !ok || ns.Name.String() != `App\Util` {
		t.Errorf("expected namespace App\\Util, got %v", prog.Items[0])
	}

	use, ok := prog.Items[1].(*ast.UseDecl)
	if !ok || len(use.Names) != 2 || strings.Join(use.Names[0].Parts, "/") != "Foo/Bar" {
		t.Errorf("unexpected use declaration %v", prog.Items[1])
	}

	class, ok := prog.Items[2].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected ClassDecl, got %T", prog.Items[2])
	}
	if class.Name != "Greeter" || len(class.Members) != 3 {
		t.Fatalf("unexpected class %s with %d members", class.Name, len(class.Members))
	}

	members := []struct {
		name       string
		visibility string
		static     bool
		params     int
	}{
		{"hello", "public", false, 2},
		{"make", "private", true, 0},
		{"plain", "", false, 0},
	}
	for i, want := range members {
		m := class.Members[i]
		if m.Name != want.name || m.Visibility != want.visibility || m.IsStatic != want.static || len(m.Params) != want.params {
			t.Errorf("member %d: got %s/%q/%v/%d", i, m.Name, m.Visibility, m.IsStatic, len(m.Params))
		}
	}
	if def := class.Members[0].Params[1].Default; def == nil || def.String() != "'Hi'" {
		t.Errorf("expected default 'Hi', got %v", def)
	}

	fn, ok := prog.Items[3].(*ast.FunctionDecl)
	if !ok || fn.Name != "main" || fn.Visibility != "" {
		t.Errorf("expected top-level function main, got %v", prog.Items[3])
	}
}

func TestFunctionAfterClass(t *testing.T) {
	prog := mustParse(t, "<?php class A { public function f() {} } function g() { echo 1; } ?>")
	if len(prog.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(prog.Items))
	}
	if prog.Items[0].Kind() != "ClassDecl" || prog.Items[1].Kind() != "FunctionDecl" {
		t.Errorf("got %s, %s", prog.Items[0].Kind(), prog.Items[1].Kind())
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		count     int
		tokenType token.TokenType
		code      string
	}{
		{"missing semicolon before close", `<?php echo 'hola' ?>`, 1, token.PHP_CLOSE, errors.E0001},
		{"unclosed block", `<?php function f() { echo 1; ?>`, 1, token.PHP_CLOSE, errors.E0001},
		{"new without parens", `<?php $g = new Greeter; ?>`, 1, token.SEMICOLON, errors.E0001},
		{"missing close tag", `<?php echo 1;`, 1, token.EOF, errors.E0007},
		{"missing open tag", `echo 1; ?>`, 1, token.ECHO, errors.E0001},
		{"text after close tag", `<?php ?> echo 1;`, 1, token.ECHO, errors.E0001},
		{"binary assignment target", `<?php 1 + 2 = 3; ?>`, 1, token.ASSIGN, errors.E0009},
		{"independent errors", `<?php $x = ; $y = 2; echo ; ?>`, 2, token.SEMICOLON, errors.E0001},
		{"bad class member", `<?php class A { $x; } ?>`, 1, token.VARIABLE, errors.E0001},
		{"unclosed call", `<?php f(1, 2; ?>`, 1, token.SEMICOLON, errors.E0001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(stringSource(tt.input), "test.php")
			prog := p.Parse()
			if prog != nil {
				t.Errorf("expected nil program")
			}
			if p.ErrorCount() != tt.count {
				t.Fatalf("expected %d errors, got %d: %v", tt.count, p.ErrorCount(), p.Errors())
			}
			first := p.Errors()[0]
			if first.TokenType != tt.tokenType {
				t.Errorf("expected error at %s, got %s", tt.tokenType, first.TokenType)
			}
			if first.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, first.Code)
			}
		})
	}
}

func TestErrorMessageAndHandler(t *testing.T) {
	var seen []Error
	p := New(stringSource("<?php\necho 1;\n$x = ;\necho 'hola' ?>"), "test.php")
	p.SetErrorHandler(func(e Error) { seen = append(seen, e) })

	if p.Parse() != nil {
		t.Fatal("expected nil program")
	}
	if len(seen) != 2 || len(seen) != p.ErrorCount() {
		t.Fatalf("handler saw %d errors, parser recorded %d", len(seen), p.ErrorCount())
	}

	tests := []struct {
		line    int
		message string
	}{
		{3, "syntax error at line 3: unexpected SEMICOLON ';'"},
		{4, "syntax error at line 4: unexpected PHP_CLOSE '?>'"},
	}
	for i, tt := range tests {
		if seen[i].Pos.Line != tt.line {
			t.Errorf("error %d: expected line %d, got %d", i, tt.line, seen[i].Pos.Line)
		}
		if seen[i].Message != tt.message {
			t.Errorf("error %d: expected %q, got %q", i, tt.message, seen[i].Message)
		}
	}
	if seen[1].Detail != "expected SEMICOLON" {
		t.Errorf("unexpected detail %q", seen[1].Detail)
	}
}

func TestMaxErrors(t *testing.T) {
	p := New(stringSource("<?php echo ; echo ; echo ; echo ; echo ; ?>"), "test.php", WithMaxErrors(2))
	if p.Parse() != nil {
		t.Fatal("expected nil program")
	}
	if p.ErrorCount() != 3 {
		t.Fatalf("expected 3 errors (2 + limit notice), got %d", p.ErrorCount())
	}
	last := p.Errors()[2]
	if !strings.Contains(last.Message, "too many syntax errors") {
		t.Errorf("unexpected limit message %q", last.Message)
	}
}

func TestMaxDepth(t *testing.T) {
	nested := strings.Repeat("(", 12) + "1" + strings.Repeat(")", 12)
	p := New(stringSource("<?php $x = "+nested+"; ?>"), "test.php", WithMaxDepth(10))
	if p.Parse() != nil {
		t.Fatal("expected nil program")
	}
	if p.ErrorCount() != 1 || p.Errors()[0].Code != errors.E0008 {
		t.Fatalf("expected one E0008 error, got %v", p.Errors())
	}

	// 默认深度足以容纳常规嵌套
	deep := strings.Repeat("(", 100) + "1" + strings.Repeat(")", 100)
	mustParse(t, "<?php $x = "+deep+"; ?>")

	unary := strings.Repeat("-", 500) + "1"
	if prog, errs := ParseSource("<?php $x = "+unary+"; ?>", "test.php"); prog != nil || len(errs) != 1 {
		t.Errorf("expected deep unary chain to be rejected, got %d errors", len(errs))
	}
}

// sliceSource 用预先构造的 Token 驱动语法分析器
type sliceSource struct {
	tokens []token.Token
	pulled int
}

func (s *sliceSource) NextToken() token.Token {
	if s.pulled >= len(s.tokens) {
		return token.New(token.EOF, "", token.Position{Line: 1})
	}
	tok := s.tokens[s.pulled]
	s.pulled++
	return tok
}

func TestCustomTokenSource(t *testing.T) {
	pos := token.Position{Line: 1, Column: 1}
	src := &sliceSource{tokens: []token.Token{
		token.New(token.PHP_OPEN, "<?php", pos),
		token.New(token.ECHO, "echo", pos),
		token.NewWithValue(token.NUMBER, "42", int64(42), pos),
		token.New(token.SEMICOLON, ";", pos),
		token.New(token.PHP_CLOSE, "?>", pos),
	}}

	p := New(src, "tokens")
	prog := p.Parse()
	if prog == nil {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	echo := prog.Items[0].(*ast.EchoStmt)
	if lit := echo.Exprs[0].(*ast.NumberLit); lit.Value != int64(42) {
		t.Errorf("expected 42, got %v", lit.Value)
	}
}

// stringSource 把源代码包装成 TokenSource
func stringSource(src string) TokenSource {
	return lexer.New(src, "test.php")
}
