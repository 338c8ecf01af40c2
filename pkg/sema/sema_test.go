package sema

import (
	"testing"

	"github.com/nalgeon/be"

	"minic/pkg/syntax"
)

func analyze(t *testing.T, src string) (*syntax.Program, *Info, *Diagnostics) {
	t.Helper()
	prog, err := syntax.ParseFile("", src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	diags := &Diagnostics{}
	info := Analyze(prog, diags)
	return prog, info, diags
}

func TestShadowingInNestedBlockIsLegal(t *testing.T) {
	_, _, diags := analyze(t, "int main() { int x; { int x; } return 0; }")
	be.Equal(t, diags.Len(), 0)
}

func TestRedefinitionInSameBlock(t *testing.T) {
	_, _, diags := analyze(t, "int main() { int x; int x; return 0; }")
	be.Equal(t, diags.Len(), 1)
	be.Equal(t, diags.Count(Redefinition), 1)
	be.Equal(t, diags.Strings()[0], "1:24 redefinition of x")
}

func TestParamShadowedByBodyLocal(t *testing.T) {
	_, _, diags := analyze(t, "int f(int a) { int a; return a; } int main() { return f(1); }")
	be.Equal(t, diags.Len(), 0)
}

func TestRedefinitionOfFunctionAndParam(t *testing.T) {
	_, _, diags := analyze(t, "int f(int a, int a) { return a; }\nint f() { return 0; }\nint main() { return 0; }")
	be.Equal(t, diags.Count(Redefinition), 2)
	be.Equal(t, diags.Strings()[0], "1:13 redefinition of a")
	be.Equal(t, diags.Strings()[1], "2:0 redefinition of f")
}

func TestArityMismatch(t *testing.T) {
	src := "int add(int a, int b) { return a + b; }\nint main() { return add(1, 2, 3); }"
	_, _, diags := analyze(t, src)
	be.Equal(t, diags.Len(), 1)
	be.Equal(t, diags.List()[0].Kind, ArityMismatch)
	be.Equal(t, diags.Strings()[0], "2:20 call to add with 3 arguments; expected 2")
}

func TestUndeclaredFunction(t *testing.T) {
	_, _, diags := analyze(t, "int main() { foo(); return 0; }")
	be.Equal(t, diags.Len(), 1)
	be.Equal(t, diags.List()[0].Kind, UnboundReference)
	be.Equal(t, diags.Strings()[0], "1:13 undeclared function foo")
}

func TestUndeclaredVariable(t *testing.T) {
	_, _, diags := analyze(t, "int main() { return y + 1; }")
	be.Equal(t, diags.Len(), 1)
	be.Equal(t, diags.Strings()[0], "1:20 undeclared variable y")
}

func TestOutOfScopeVariable(t *testing.T) {
	_, _, diags := analyze(t, "int main() { { int x; } return x; }")
	be.Equal(t, diags.Len(), 1)
	be.Equal(t, diags.List()[0].Kind, UnboundReference)
}

func TestEntryPoint(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, _, diags := analyze(t, "int f() { return 0; }")
		be.Equal(t, diags.Len(), 1)
		be.Equal(t, diags.Strings()[0], "0:0 missing entry point: int main()")
	})
	t.Run("wrong signature", func(t *testing.T) {
		_, _, diags := analyze(t, "void main(int a) { }")
		be.Equal(t, diags.Count(EntryPointViolation), 2)
		be.Equal(t, diags.Strings()[0], "0:0 main must return int, found void")
		be.Equal(t, diags.Strings()[1], "0:0 main must take no parameters, found 1")
	})
	t.Run("variable named main", func(t *testing.T) {
		_, _, diags := analyze(t, "int main;")
		be.Equal(t, diags.Count(EntryPointViolation), 1)
	})
}

func TestTypeMismatches(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"string initializer", "int main() { string s = 1; return 0; }", "1:20 cannot initialize string variable s with int"},
		{"string condition", `int main() { if ("x") {} return 0; }`, "1:17 if condition must be bool, int or char, found string"},
		{"assign string to int", `int main() { int x; x = "s"; return 0; }`, "1:20 cannot assign string to x of type int"},
		{"negate bool", "int main() { return -true; }", "1:20 unary - requires int, found bool"},
		{"bare array", "int main() { int a[3]; return a; }", "1:30 array a expects 1 indices, found 0"},
		{"index scalar", "int main() { int x; return x[1]; }", "1:27 x is not an array"},
		{"builtin argument", `int main() { printInt("s"); return 0; }`, "1:22 argument 1 of printInt must be int, found string"},
		{"void returns value", "void f() { return 1; } int main() { return 0; }", "1:11 void function f cannot return a value"},
		{"missing return value", "int main() { return; }", "1:13 function main must return a value of type int"},
		{"string arithmetic", `int main() { return "s" + 1; }`, "1:20 operator + requires int or char operands, found string and int"},
		{"array initializer", "int a[2] = 1; int main() { return 0; }", "1:4 array a cannot have an initializer"},
		{"function as value", "int main() { return main; }", "1:20 main is a function, not a variable"},
		{"rank mismatch", "int m[2][2]; int main() { return m[1]; }", "1:33 array m expects 2 indices, found 1"},
		{"string index", `int a[2]; int main() { return a["x"]; }`, "1:32 array index must be int or char, found string"},
		{"void variable", "void v; int main() { return 0; }", "1:5 variable v cannot have type void"},
		{"zero dimension", "int z[0]; int main() { return 0; }", "1:4 array z dimension must be positive, found 0"},
		{"oversized array", "int b[1073741824]; int main() { return 0; }", "1:4 array b is too large, limit is 16777216 bytes"},
		{"oversized local matrix", "int main() { int a[65536][65536]; return 0; }", "1:17 array a is too large, limit is 16777216 bytes"},
		{"no widening across calls", "int f(char c) { return c; } int main() { return f(1); }", "1:50 argument 1 of f must be char, found int"},
		{"void call in arithmetic", "void f() {} int main() { return f() + 1; }", "1:32 operator + requires int or char operands, found void and int"},
		{"string logical", `int main() { return 1 && "s"; }`, "1:20 operator && requires bool, int or char operands, found int and string"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, diags := analyze(t, tc.src)
			be.Equal(t, diags.Len(), 1)
			be.Equal(t, diags.Strings()[0], tc.want)
		})
	}
}

func TestNumericModelIsAccepted(t *testing.T) {
	src := `int main() {
  char c = 65;
  bool b = 1;
  int x = 'a';
  printChar(65);
  printChar('a');
  print_str("hi");
  println();
  x = b;
  b = x;
  if (c) {}
  while (b) {}
  for (x = 0; x < 3; x = x + 1) {}
  return !x && c || b;
}`
	_, _, diags := analyze(t, src)
	be.Equal(t, diags.Len(), 0)
}

func TestDiagnosticsAccumulate(t *testing.T) {
	src := `int main() {
  int x;
  int x;
  y = 1;
  foo(1);
  x = "s";
}
`
	_, _, diags := analyze(t, src)
	be.Equal(t, diags.Count(Redefinition), 1)
	be.Equal(t, diags.Count(UnboundReference), 2)
	be.Equal(t, diags.Count(TypeMismatch), 1)
	be.Equal(t, diags.Len(), 4)
}

func TestScopeMapAndDump(t *testing.T) {
	src := "int g;\nint f(int a) { int x; { int y; } return a; }\nint main() { return f(1); }"
	prog, info, diags := analyze(t, src)
	be.Equal(t, diags.Len(), 0)

	f := prog.Decls[1].(*syntax.FunctionDecl)
	be.Equal(t, info.Scopes[prog], GlobalScope)
	be.Equal(t, info.Scopes[f], ScopeID(1))
	be.Equal(t, info.Scopes[f.Body], ScopeID(2))
	be.Equal(t, info.Funcs[f].Body, ScopeID(2))

	want := `scope 0 global
  func f(a int) int
  var g int
  func main() int
scope 1 func f (parent 0)
  var a int
scope 2 block (parent 1)
  var x int
scope 3 block (parent 2)
  var y int
scope 4 func main (parent 0)
scope 5 block (parent 4)
`
	be.Equal(t, info.Table.String(), want)
}

func TestBindings(t *testing.T) {
	src := "int g;\nint main() { int x; x = g; { int x; x = 2; } return x; }"
	prog, info, diags := analyze(t, src)
	be.Equal(t, diags.Len(), 0)

	body := prog.Decls[1].(*syntax.FunctionDecl).Body
	outer := info.VarOf(body.Stmts[0].(*syntax.VarDecl).Declarators[0])
	assign := body.Stmts[1].(*syntax.ExprStmt).Expr.(*syntax.AssignExpr)
	be.Equal(t, info.VarOf(assign.Target), outer)
	be.True(t, info.IsGlobal(info.VarOf(assign.Value)))
	be.True(t, !info.IsGlobal(outer))

	inner := body.Stmts[2].(*syntax.BlockStmt)
	innerAssign := inner.Stmts[1].(*syntax.ExprStmt).Expr.(*syntax.AssignExpr)
	be.True(t, info.VarOf(innerAssign.Target) != outer)

	ret := body.Stmts[3].(*syntax.ReturnStmt)
	be.Equal(t, info.VarOf(ret.Value), outer)
	be.Equal(t, info.TypeOf(ret.Value), Int)
}

func TestCallsResolveGlobally(t *testing.T) {
	// A local variable named like a function does not hide the function
	// from calls.
	src := "int f() { return 1; } int main() { int f; f = 2; return f(); }"
	_, _, diags := analyze(t, src)
	be.Equal(t, diags.Len(), 0)
}
