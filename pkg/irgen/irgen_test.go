package irgen

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"minic/pkg/sema"
	"minic/pkg/syntax"
	"minic/pkg/tac"
)

func lower(t *testing.T, src string) *tac.Program {
	t.Helper()
	prog, err := syntax.ParseFile("test.mc", src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	diags := &sema.Diagnostics{}
	info := sema.Analyze(prog, diags)
	if diags.Len() > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Strings())
	}
	return Generate(prog, info)
}

func dump(lines ...string) string {
	return strings.Join(lines, "\n") + "\n\n"
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "precedence",
			src:  "int main() { int x = 2 + 3 * 4; return x; }",
			want: dump(
				"func main:",
				"  t0 = mul 3, 4",
				"  t1 = add 2, t0",
				"  x = t1",
				"  ret x",
			),
		},
		{
			name: "control flow",
			src: `int main() {
  int x;
  if (x) { x = 1; } else { x = 2; }
  while (x < 3) { x = x + 1; }
  return x;
}`,
			want: dump(
				"func main:",
				"  ifz x goto else_0",
				"  x = 1",
				"  goto endif_1",
				"else_0:",
				"  x = 2",
				"endif_1:",
				"while_2:",
				"  t0 = lt x, 3",
				"  ifz t0 goto endwhile_3",
				"  t1 = add x, 1",
				"  x = t1",
				"  goto while_2",
				"endwhile_3:",
				"  ret x",
			),
		},
		{
			name: "if without else",
			src:  "int main() { if (true) { printInt(1); } return 0; }",
			want: dump(
				"func main:",
				"  ifz 1 goto else_0",
				"  param 1",
				"  call printInt, 1",
				"else_0:",
				"  ret 0",
			),
		},
		{
			name: "for loop",
			src:  "int main() { int i; for (i = 0; i < 2; i = i + 1) { } return i; }",
			want: dump(
				"func main:",
				"  i = 0",
				"for_0:",
				"  t0 = lt i, 2",
				"  ifz t0 goto endfor_1",
				"  t1 = add i, 1",
				"  i = t1",
				"  goto for_0",
				"endfor_1:",
				"  ret i",
			),
		},
		{
			name: "shadowing",
			src:  "int main() { int x = 1; { int x = 2; printInt(x); } return x; }",
			want: dump(
				"func main:",
				"  x = 1",
				"  x.1 = 2",
				"  param x.1",
				"  call printInt, 1",
				"  ret x",
			),
		},
		{
			name: "local named like a temporary",
			src:  "int main() { int t0 = 4; return t0 + 1; }",
			want: dump(
				"func main:",
				"  t0.1 = 4",
				"  t0 = add t0.1, 1",
				"  ret t0",
			),
		},
		{
			name: "unary",
			src:  "int main() { int x = 3; return -x + !x; }",
			want: dump(
				"func main:",
				"  x = 3",
				"  t0 = sub 0, x",
				"  t1 = not x",
				"  t2 = add t0, t1",
				"  ret t2",
			),
		},
		{
			name: "logical operators evaluate both sides",
			src:  "int f() { return 1; } int main() { return 0 && f(); }",
			want: dump(
				"func f:",
				"  ret 1",
				"",
				"func main:",
				"  t0 = call f, 0",
				"  t1 = and 0, t0",
				"  ret t1",
			),
		},
		{
			name: "char and string literals pass through",
			src:  `int main() { char c = '\n'; printChar(c); printString("hi\n"); return 0; }`,
			want: dump(
				"func main:",
				`  c = '\n'`,
				"  param c",
				"  call printChar, 1",
				`  param "hi\n"`,
				"  call printString, 1",
				"  ret 0",
			),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			be.Equal(t, lower(t, tc.src).String(), tc.want)
		})
	}
}

func TestGlobalsLoadAndStore(t *testing.T) {
	p := lower(t, "int g = 5; int h; int main() { h = g + 1; return h; }")
	want := "# globals\nglobal g, 4 bytes\nglobal h, 4 bytes\n\n" + dump(
		"func main:",
		"  store 5, g, 0",
		"  t0 = load g, 0",
		"  t1 = add t0, 1",
		"  store t1, h, 0",
		"  t2 = load h, 0",
		"  ret t2",
	)
	be.Equal(t, p.String(), want)
}

func TestGlobalInitializersRunOnlyInMain(t *testing.T) {
	p := lower(t, "int f() { return 0; } int g = 'a'; int main() { return f(); }")
	be.Equal(t, p.Function("f").String(), "func f:\n  ret 0\n")
	be.Equal(t, p.Function("main").Code[0].String(), "store 'a', g, 0")
}

func TestCalls(t *testing.T) {
	src := `int add(int a, int b) { return a + b; }
void hello() { printString("hi"); }
int main() { hello(); return add(1, add(2, 3)); }`
	p := lower(t, src)

	add := p.Function("add")
	be.Equal(t, len(add.Params), 2)
	be.Equal(t, add.Params[0], "a")
	be.Equal(t, add.Params[1], "b")

	be.Equal(t, p.Function("hello").String(), "func hello:\n  param \"hi\"\n  call printString, 1\n")
	be.Equal(t, p.Function("main").String(), strings.Join([]string{
		"func main:",
		"  call hello, 0",
		"  param 2",
		"  param 3",
		"  t0 = call add, 2",
		"  param 1",
		"  param t0",
		"  t1 = call add, 2",
		"  ret t1",
	}, "\n")+"\n")
}

func TestArrayOffset(t *testing.T) {
	p := lower(t, "int a[3][4]; int main() { a[2][3] = 7; return a[2][3]; }")
	be.Equal(t, p.Globals[0], tac.Global{Name: "a", Size: 48})

	main := p.Function("main")
	want := []string{
		"t0 = sub 2, 1",
		"t1 = sub 3, 1",
		"t2 = mul t0, 4",
		"t3 = add t2, t1",
		"t4 = mul t3, 4",
		"store 7, a, t4",
	}
	for i, w := range want {
		be.Equal(t, main.Code[i].String(), w)
	}

	opt := tac.Optimize(p).Function("main")
	be.Equal(t, opt.Code[5].String(), "store 7, a, 24")
	be.Equal(t, opt.Code[11].String(), "t10 = load a, 24")
}

func TestLocalArraysAreStatic(t *testing.T) {
	p := lower(t, "int f() { int a[2]; a[1] = 3; return a[1]; } int main() { return f(); }")
	be.Equal(t, len(p.Globals), 1)
	be.Equal(t, p.Globals[0], tac.Global{Name: "f__a_0", Size: 8})
	be.Equal(t, p.Function("f").Code[2].String(), "store 3, f__a_0, t1")
}

func TestLabelsAreProgramWide(t *testing.T) {
	src := "void f() { while (true) { } } int main() { while (false) { } return 0; }"
	p := lower(t, src)
	be.Equal(t, p.Function("f").Labels()[0], "while_0")
	be.Equal(t, p.Function("main").Labels()[0], "while_2")
}

func TestLabelsAreUniquePerFunction(t *testing.T) {
	src := `int main() {
  int i;
  for (i = 0; i < 3; i = i + 1) {
    if (i == 1) { printInt(i); } else { while (i < 0) { } }
  }
  return 0;
}`
	p := lower(t, src)
	seen := map[string]bool{}
	for _, l := range p.Function("main").Labels() {
		be.True(t, !seen[l])
		seen[l] = true
	}
	for _, in := range p.Function("main").Code {
		if in.Op == tac.GOTO || in.Op == tac.IFZ {
			be.True(t, seen[in.Target()])
		}
	}
}

func TestOptimizedEndToEnd(t *testing.T) {
	p := tac.Optimize(lower(t, "int main() { int x = 2 + 3 * 4; return x; }"))
	be.Equal(t, p.String(), dump(
		"func main:",
		"  t0 = 12",
		"  t1 = 14",
		"  x = 14",
		"  ret 14",
	))
}
