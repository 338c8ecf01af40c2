package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.mc")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultOutputPath(t *testing.T) {
	be.Equal(t, defaultOutputPath("prog.mc"), "prog.s")
	be.Equal(t, defaultOutputPath("dir/prog"), "dir/prog.s")
}

func TestParseArgsFlagsAfterInput(t *testing.T) {
	var stderr bytes.Buffer
	cfg, err := parseArgs([]string{"prog.mc", "-S", "-o", "out.s", "-O", "--dump-ir"}, &stderr)
	be.Err(t, err, nil)
	be.Equal(t, cfg.input, "prog.mc")
	be.True(t, cfg.emitAsm)
	be.Equal(t, cfg.output, "out.s")
	be.True(t, cfg.optimize)
	be.True(t, cfg.dumpIR)
}

func TestParseArgsErrors(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseArgs([]string{"-S"}, &stderr)
	be.Err(t, err, "no input file")

	_, err = parseArgs([]string{"a.mc", "b.mc"}, &stderr)
	be.Err(t, err, "expected one input file")

	_, err = parseArgs([]string{"a.mc", "--bogus"}, &stderr)
	be.True(t, err != nil)
}

func TestRunWritesAssembly(t *testing.T) {
	in := writeSource(t, "int main() { int x = 2 + 3 * 4; return x; }")
	out := filepath.Join(filepath.Dir(in), "out.s")

	var stdout, stderr bytes.Buffer
	code := run([]string{in, "-S", "-o", out, "-O"}, &stdout, &stderr)
	be.Equal(t, code, exitOK)
	be.Equal(t, stderr.String(), "")

	data, err := os.ReadFile(out)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(data), "    li $v0, 14\n"))
}

func TestRunDefaultOutput(t *testing.T) {
	in := writeSource(t, "int main() { return 0; }")
	var stdout, stderr bytes.Buffer
	be.Equal(t, run([]string{"-S", in}, &stdout, &stderr), exitOK)
	_, err := os.Stat(defaultOutputPath(in))
	be.Err(t, err, nil)
}

func TestRunDumps(t *testing.T) {
	in := writeSource(t, "int main() { return 1 + 2; }")
	var stdout, stderr bytes.Buffer
	code := run([]string{in, "-O", "--dump-ir", "--dump-symbols", "--emit-mips"}, &stdout, &stderr)
	be.Equal(t, code, exitOK)

	out := stdout.String()
	be.True(t, strings.Contains(out, "scope 0 global\n"))
	be.True(t, strings.Contains(out, "=== TAC (before optimization) ===\nfunc main:\n  t0 = add 1, 2\n"))
	be.True(t, strings.Contains(out, "=== TAC (after optimization) ===\nfunc main:\n  t0 = 3\n  ret 3\n"))
	be.True(t, strings.Contains(out, ".globl main\n"))
}

func TestRunPrintsTreeWithoutFlags(t *testing.T) {
	in := writeSource(t, "int main() { return 0; }")
	var stdout, stderr bytes.Buffer
	be.Equal(t, run([]string{in}, &stdout, &stderr), exitOK)
	be.Equal(t, stdout.String(), "FunctionDecl(INT main() {Return(0)})\n")
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		code   int
		stderr string
	}{
		{"syntax error", "int main() { return 1 }", exitSyntax, `syntax error: expected ";", found "}"`},
		{"semantic error", "int main() { foo(); return 0; }", exitSemantic, "1:13 undeclared function foo\n1 error(s) found; no code generated\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := writeSource(t, tc.src)
			var stdout, stderr bytes.Buffer
			code := run([]string{in, "-S", "-o", filepath.Join(filepath.Dir(in), "out.s")}, &stdout, &stderr)
			be.Equal(t, code, tc.code)
			be.True(t, strings.Contains(stderr.String(), tc.stderr))
		})
	}

	t.Run("missing file", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := run([]string{filepath.Join(t.TempDir(), "none.mc"), "-S"}, &stdout, &stderr)
		be.Equal(t, code, exitFailure)
	})
}

func TestRunExecutesProgram(t *testing.T) {
	in := writeSource(t, "int main() { printInt(6 * 7); println(); return 0; }")
	var stdout, stderr bytes.Buffer
	code := run([]string{in, "-O", "-run"}, &stdout, &stderr)
	be.Equal(t, code, exitOK)
	be.Equal(t, stdout.String(), "42\n")
}

func TestRunReportsRuntimeFault(t *testing.T) {
	in := writeSource(t, "int main() { int z = 0; return 1 / z; }")
	var stdout, stderr bytes.Buffer
	code := run([]string{in, "--run"}, &stdout, &stderr)
	be.Equal(t, code, exitFailure)
	be.True(t, strings.Contains(stderr.String(), "integer division by zero"))
}
