package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"

	"github.com/tangzhangming/phplite/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append(args, "--no-color", "--lang", "en"), strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.php", "<?php\n$a = 1;\necho $a;\n?>")
	bad := writeFile(t, dir, "bad.php", "<?php\n$total = 1;\necho $totl;\n?>")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		contains []string
	}{
		{"clean file", []string{"check", good}, 0, []string{"no errors"}},
		{"semantic error", []string{"check", bad}, 1, []string{"error[E0100]", "$totl", "did you mean '$total'?", "1 semantic error(s)"}},
		{"mixed", []string{"check", good, bad}, 1, []string{"good.php: no errors", "bad.php"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, "", tt.args...)
			if code != tt.wantCode {
				t.Fatalf("exit code %d, want %d\nstdout:\n%s\nstderr:\n%s", code, tt.wantCode, out, errOut)
			}
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestCheckStdin(t *testing.T) {
	code, out, _ := runCLI(t, "<?php echo 'hi'; ?>", "check", "-")
	if code != 0 || !strings.Contains(out, "-: no errors") {
		t.Errorf("exit %d, output %q", code, out)
	}
}

func TestCheckJSONAndReport(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.php", "<?php echo $x; ?>")
	report := filepath.Join(dir, "report.json")

	code, out, errOut := runCLI(t, "", "check", "--json", "--report", report, src)
	if code != 1 {
		t.Fatalf("exit code %d", code)
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
	if result["ok"] != false || result["semantic_errors"] != float64(1) {
		t.Errorf("result = %v", result)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != strings.TrimSpace(out) {
		t.Error("report differs from stdout")
	}
	if !strings.Contains(errOut, "report written to") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestCheckMissingFile(t *testing.T) {
	code, _, errOut := runCLI(t, "", "check", filepath.Join(t.TempDir(), "nope.php"))
	if code != 1 || !strings.Contains(errOut, "cannot read") {
		t.Errorf("exit %d, stderr %q", code, errOut)
	}
}

func TestTokens(t *testing.T) {
	code, out, _ := runCLI(t, "<?php echo 42; ?>", "tokens", "-")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	want := "0001: PHP_OPEN"
	if !strings.HasPrefix(out, want) || !strings.Contains(out, "0001: NUMBER 42") {
		t.Errorf("tokens output:\n%s", out)
	}

	code, out, _ = runCLI(t, "<?php echo 42; ?>", "tokens", "--json", "-")
	var tokens []map[string]interface{}
	if code != 0 || json.Unmarshal([]byte(out), &tokens) != nil || len(tokens) != 5 {
		t.Errorf("json tokens (exit %d):\n%s", code, out)
	}
}

func TestAST(t *testing.T) {
	code, out, _ := runCLI(t, "<?php $a = 1; ?>", "ast", "-")
	if code != 0 || !strings.Contains(out, `"VarDeclStmt"`) {
		t.Errorf("exit %d, output:\n%s", code, out)
	}

	code, out, _ = runCLI(t, "<?php $a = 1; ?>", "ast", "--symbols", "-")
	if code != 0 || !strings.Contains(out, `"$a"`) {
		t.Errorf("symbols (exit %d):\n%s", code, out)
	}

	code, out, errOut := runCLI(t, "<?php echo 1 ?>", "ast", "-")
	if code != 1 || out != "" || errOut == "" {
		t.Errorf("syntax error: exit %d, stdout %q, stderr %q", code, out, errOut)
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	code, out, _ := runCLI(t, "", "init", dir)
	if code != 0 || !strings.Contains(out, "created") {
		t.Fatalf("exit %d, output %q", code, out)
	}
	if _, err := config.Load(filepath.Join(dir, config.FileName)); err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}

	code, _, errOut := runCLI(t, "", "init", dir)
	if code != 1 || !strings.Contains(errOut, "already exists") {
		t.Errorf("second init: exit %d, stderr %q", code, errOut)
	}

	if code, _, _ := runCLI(t, "", "init", "--force", dir); code != 0 {
		t.Errorf("init --force exit %d", code)
	}
}

func TestConfigDiscovery(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.FileName, "[compiler]\nstrict_redeclaration = true\n")
	src := writeFile(t, dir, "a.php", "<?php\n$a = 1;\n$a = 2;\n?>")

	code, out, _ := runCLI(t, "", "check", src)
	if code != 1 || !strings.Contains(out, "E0101") {
		t.Errorf("strict config not applied: exit %d\n%s", code, out)
	}

	code, _, errOut := runCLI(t, "", "check", "--config", filepath.Join(dir, "missing.toml"), src)
	if code != 1 || errOut == "" {
		t.Errorf("missing --config: exit %d, stderr %q", code, errOut)
	}
}

func TestUnsupportedLanguage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"check", "--lang", "fr", "-"}, strings.NewReader(""), &stdout, &stderr)
	if code != 1 || !strings.Contains(stderr.String(), "unsupported language") {
		t.Errorf("exit %d, stderr %q", code, stderr.String())
	}
}
