package semantic

import (
	"strings"
	"testing"

	"github.com/tangzhangming/phplite/internal/errors"
	"github.com/tangzhangming/phplite/internal/parser"
	"github.com/tangzhangming/phplite/internal/symtab"
)

func analyze(t *testing.T, body string, opts ...Option) *Analyzer {
	t.Helper()
	prog, errs := parser.ParseSource("<?php\n"+body+"\n?>", "test.php")
	if len(errs) > 0 {
		t.Fatalf("unexpected syntax errors: %v", errs)
	}
	a := New(opts...)
	a.Analyze(prog)
	return a
}

func codes(errs []Error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func expectCodes(t *testing.T, a *Analyzer, want ...string) {
	t.Helper()
	got := codes(a.Errors())
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("error codes = %v, want %v (errors: %v)", got, want, a.Errors())
	}
}

func TestInferredTypes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		v    string
		want symtab.Tag
	}{
		{"int arithmetic", `$a = 1 + 2;`, "$a", symtab.Int},
		{"mixed arithmetic", `$a = 1 + 2.0;`, "$a", symtab.Float},
		{"concat", `$a = 1 . 'x';`, "$a", symtab.String},
		{"comparison", `$a = 1 < 2;`, "$a", symtab.Bool},
		{"not", `$a = !1;`, "$a", symtab.Bool},
		{"negate", `$a = -2.5;`, "$a", symtab.Float},
		{"ternary null branch", `$a = true ? 1 : null;`, "$a", symtab.Int},
		{"ternary mixed", `$a = true ? 1 : 'x';`, "$a", symtab.Unknown},
		{"array", `$a = [1, 'k' => 2];`, "$a", symtab.Array},
		{"call result", "function g() { return 2; }\n$a = g();", "$a", symtab.Int},
		{"undeclared var stays unknown", `$a;`, "$a", symtab.Unknown},
		{"null refined by rebind", "$a = null;\n$a = 5;", "$a", symtab.Int},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analyze(t, tt.src)
			expectCodes(t, a)
			sym := a.Table().Lookup(tt.v)
			if sym == nil {
				t.Fatalf("%s not declared", tt.v)
			}
			if got := sym.Tag(); got != tt.want {
				t.Errorf("%s has type %s, want %s", tt.v, got, tt.want)
			}
		})
	}
}

func TestLiteralValues(t *testing.T) {
	a := analyze(t, "$n = 3;\n$n = $n + 1;\n$s = 'hi';")
	expectCodes(t, a)
	if v := a.Table().Lookup("$n").Value; v != int64(3) {
		t.Errorf("$n value = %v, want 3 (non-literal must not overwrite)", v)
	}
	if v := a.Table().Lookup("$s").Value; v != "hi" {
		t.Errorf("$s value = %v", v)
	}
}

func TestSemanticErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		code    string
		message string
	}{
		{"arithmetic on strings", `$c = 'a' + 'b';`, errors.E0205, "Arithmetic operator '+' applied to non-numeric types: string, string"},
		{"undeclared read", `echo $x;`, errors.E0100, "Variable '$x' not declared"},
		{"used before declaration", `$y = $z = 1;`, errors.E0102, "Variable '$z' used before declaration"},
		{"assign type mismatch", "$x = 1;\n$x = 'a';", errors.E0200, "Type mismatch assigning to '$x': int <- string"},
		{"invalid assignment target", `$x = 1 = 2;`, errors.E0104, ""},
		{"logical left", `$b = 1 && true;`, errors.E0205, "Logical operator '&&' expects boolean left operand, got 'int'"},
		{"logical right", `$b = true || 'x';`, errors.E0205, "Logical operator '||' expects boolean right operand, got 'string'"},
		{"unary minus", `$u = -'a';`, errors.E0205, "Unary operator '-' requires numeric type, got 'string'"},
		{"not indexable", "$i = 5;\necho $i[0];", errors.E0207, "Cannot index type 'int'. Only arrays and strings are indexable."},
		{"foreach over string", "$s = 'abc';\nforeach ($s as $c) {}", errors.E0208, "Foreach expects an array, got 'string'"},
		{"undefined function", `nope();`, errors.E0300, "Call to undefined function 'nope'"},
		{"not a function", "class A {}\nA();", errors.E0308, "'A' is not a function (it is a class)"},
		{"not callable", "$n = 1;\n$n();", errors.E0307, "Invalid call: value of type 'int' is not callable"},
		{"return mismatch", `function f() { return 1; return 'a'; }`, errors.E0203, "Return type mismatch in function 'f': expected int, got string"},
		{"duplicate function", "function f() {}\nfunction f() {}", errors.E0309, "Function 'f' already declared in this scope"},
		{"duplicate class", "class A {}\nclass A {}", errors.E0400, "Class 'A' already declared in this scope"},
		{"duplicate param", `function f($a, $a) {}`, errors.E0103, "Parameter '$a' duplicated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analyze(t, tt.src)
			errs := a.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected exactly 1 error, got %v", errs)
			}
			if errs[0].Code != tt.code {
				t.Errorf("code = %s, want %s", errs[0].Code, tt.code)
			}
			if tt.message != "" && errs[0].Message != tt.message {
				t.Errorf("message = %q, want %q", errs[0].Message, tt.message)
			}
		})
	}
}

func TestUnknownOperandsDoNotCascade(t *testing.T) {
	a := analyze(t, "$a = $missing + 1;\n$b = -$missing;\n$c = $a * 2;")
	// 只报告两次未声明的读取
	expectCodes(t, a, errors.E0100, errors.E0100)
}

func TestKnownNonNumericOperand(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{"untyped parameter", "function f($p) { $q = -$p; $r = $p * 'x'; }", "Arithmetic operator '*' applied to non-numeric types: unknown, string"},
		{"unknown left", "$a = $missing;\n$b = 'x' - $a;", ""},
		{"unknown right", "function g($p) { return true + $p; }", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analyze(t, tt.src)
			var found bool
			for _, err := range a.Errors() {
				if err.Code != errors.E0205 {
					continue
				}
				found = true
				if tt.message != "" && err.Message != tt.message {
					t.Errorf("message = %q, want %q", err.Message, tt.message)
				}
			}
			if !found {
				t.Errorf("expected E0205, got %v", a.Errors())
			}
		})
	}
}

func TestErrorPositions(t *testing.T) {
	a := analyze(t, "$ok = 1;\n\necho $x;")
	if a.ErrorCount() != 1 {
		t.Fatalf("expected 1 error, got %v", a.Errors())
	}
	if line := a.Errors()[0].Pos.Line; line != 4 {
		t.Errorf("error at line %d, want 4", line)
	}
}

func TestForeachScope(t *testing.T) {
	a := analyze(t, "$arr = [1, 2];\nforeach ($arr as $k => $v) { echo $k, $v; }\necho $v;")
	expectCodes(t, a, errors.E0100)

	var found bool
	for _, scope := range a.Snapshot() {
		if scope.Kind != "block" {
			continue
		}
		for _, sym := range scope.Symbols {
			if sym.Name == "$v" {
				found = true
			}
		}
	}
	if !found {
		t.Error("foreach value variable should live in a block scope")
	}
}

func TestBlockVariablesAreFunctionWide(t *testing.T) {
	a := analyze(t, "if (true) { $y = 1; }\necho $y;\nfor ($i = 0; $i < 3; $i++) { echo $i; }\necho $i;")
	expectCodes(t, a)

	global := a.Snapshot()[0]
	names := make([]string, len(global.Symbols))
	for i, s := range global.Symbols {
		names[i] = s.Name
	}
	if strings.Join(names, ",") != "$y,$i" {
		t.Errorf("global symbols = %v, want [$y $i]", names)
	}
}

func TestArity(t *testing.T) {
	a := analyze(t, "function add($a, $b = 1) { return $a + $b; }\nadd();\nadd(1);\nadd(1, 2);\nadd(1, 2, 3);")
	expectCodes(t, a, errors.E0301, errors.E0301)
	if msg := a.Errors()[0].Message; msg != "Function 'add' expects 1 to 2 args, got 0" {
		t.Errorf("message = %q", msg)
	}

	a = analyze(t, "function one($a) {}\none(1, 2);")
	if msg := a.Errors()[0].Message; msg != "Function 'one' expects 1 args, got 2" {
		t.Errorf("message = %q", msg)
	}

	// 空参数列表不检查个数
	a = analyze(t, "function none() {}\nnone(1, 2);")
	expectCodes(t, a)
}

func TestParameterInference(t *testing.T) {
	a := analyze(t, "function twice($n) { return $n; }\ntwice(2);\ntwice('x');")
	expectCodes(t, a, errors.E0303)
	if msg := a.Errors()[0].Message; msg != "Argument 1 of 'twice' type mismatch: expected int, got string" {
		t.Errorf("message = %q", msg)
	}

	snap := a.Snapshot()
	fn := snap[0].Symbols[0]
	if fn.Name != "twice" || fn.Type != "fn(int): unknown" {
		t.Errorf("function record = %+v", fn)
	}
	param := snap[1].Symbols[0]
	if param.Name != "$n" || param.Kind != "param" || param.Type != "int" || param.Owner != "twice" {
		t.Errorf("param record = %+v", param)
	}
}

func TestRedeclaration(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		strict bool
		want   []string
	}{
		{"rebind with value", "$x = 1;\n$x = 2;", false, nil},
		{"rebind without value", "$x = 1;\n$x;", false, []string{errors.E0101}},
		{"strict rebind with value", "$x = 1;\n$x = 2;", true, []string{errors.E0101}},
		{"different block", "$x = 1;\nif (true) { $x; }", false, nil},
		{"different block strict", "$x = 1;\nif (true) { $x = 2; }", true, nil},
		{"null then value", "$a = null;\n$a = 5;\n$b = $a + 1;", false, nil},
		{"value then string", "$a = null;\n$a = 5;\n$a = 'x';", false, []string{errors.E0200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analyze(t, tt.src, WithStrictRedeclaration(tt.strict))
			expectCodes(t, a, tt.want...)
		})
	}
}

func TestHints(t *testing.T) {
	a := analyze(t, "$count = 1;\necho $cout;")
	errs := a.Errors()
	if len(errs) != 1 || len(errs[0].Hints) != 1 || errs[0].Hints[0] != "did you mean '$count'?" {
		t.Fatalf("unexpected errors %+v", errs)
	}

	a = analyze(t, "function foo() {}\nfo();")
	errs = a.Errors()
	if len(errs) != 1 || len(errs[0].Hints) != 1 || !strings.Contains(errs[0].Hints[0], "'foo'") {
		t.Errorf("unexpected errors %+v", errs)
	}

	a = analyze(t, "echo $zzz;")
	if hints := a.Errors()[0].Hints; len(hints) != 1 || !strings.Contains(hints[0], "$zzz = null;") {
		t.Errorf("expected declare-first hint, got %v", hints)
	}

	a = analyze(t, "$count = 1;\necho $cout;", WithSuggestions(false))
	if hints := a.Errors()[0].Hints; len(hints) != 0 {
		t.Errorf("suggestions disabled, got %v", hints)
	}
}

func TestClassSnapshot(t *testing.T) {
	a := analyze(t, `class Greeter {
    public function hello($name, $greeting = 'Hi') { return $greeting . $name; }
    public function bye() {}
}`)
	expectCodes(t, a)

	snap := a.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected 4 scopes, got %d: %+v", len(snap), snap)
	}

	class := snap[0].Symbols[0]
	if class.Name != "Greeter" || class.Kind != "class" || class.Type != "class" {
		t.Errorf("class record = %+v", class)
	}
	methods := class.Value.(map[string]interface{})["methods"].([]string)
	if strings.Join(methods, ",") != "hello,bye" {
		t.Errorf("methods = %v", methods)
	}

	if snap[1].Kind != "class" || snap[1].Name != "Greeter" {
		t.Errorf("scope 1 = %+v", snap[1])
	}
	hello := snap[1].Symbols[0]
	if hello.Kind != "method" || hello.Owner != "Greeter" || hello.Type != "fn(unknown, string): string" {
		t.Errorf("method record = %+v", hello)
	}

	params := snap[2].Symbols
	if len(params) != 2 {
		t.Fatalf("expected 2 params, got %+v", params)
	}
	if g := params[1]; g.Name != "$greeting" || g.Type != "string" || g.Value != "Hi" || g.Owner != "hello" || g.Lineno != 3 {
		t.Errorf("param record = %+v", g)
	}
}

func TestQualifiedCall(t *testing.T) {
	a := analyze(t, "function helper() { return 'x'; }\n$s = App\\helper();")
	expectCodes(t, a)
	if got := a.Table().Lookup("$s").Tag(); got != symtab.String {
		t.Errorf("$s has type %s, want string", got)
	}
}

func TestAnalyzeResetsState(t *testing.T) {
	prog, _ := parser.ParseSource("<?php echo $x; ?>", "test.php")
	a := New()
	a.Analyze(prog)
	a.Analyze(prog)
	if a.ErrorCount() != 1 {
		t.Errorf("second run should not accumulate errors, got %d", a.ErrorCount())
	}
	if a.Analyze(nil) != nil || a.HasErrors() {
		t.Error("nil program should produce no errors")
	}
}
