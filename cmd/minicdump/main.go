// Command minicdump prints every compiler stage for a MiniC source file:
// tokens, parse tree, scopes, TAC before and after optimization, and the
// checked assembly listing, then runs the program on the simulator.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"minic/pkg/compiler"
	"minic/pkg/cpu"
	"minic/pkg/syntax"
	"minic/pkg/utils"
)

const testSource = `int g = 10;
int square(int n) { return n * n; }
int main() {
  int a[3];
  a[1] = square(g) + 2 * 3;
  printInt(a[1]);
  println();
  return 0;
}
`

func main() {
	log.SetFlags(0)
	log.SetPrefix("minicdump: ")

	src := testSource
	name := "<builtin>"
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			log.Fatalf("read error: %v", err)
		}
		src = string(data)
		if name, _, err = utils.GetPathInfo(os.Args[1]); err != nil {
			log.Fatalf("path error: %v", err)
		}
	}

	fmt.Printf("Source (%s):\n%s\n", name, src)

	tokens, err := syntax.Lex(src)
	if err != nil {
		log.Fatalf("lex error: %v", err)
	}
	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	res, err := compiler.Compile(src, compiler.Options{SourceName: name, Optimize: true, Comments: true})
	var se *syntax.SyntaxError
	if errors.As(err, &se) {
		log.Fatal(se.Detail())
	}

	fmt.Println("AST")
	for _, d := range res.Program.Decls {
		fmt.Println(" ", d)
	}
	fmt.Println()

	fmt.Println("Scopes")
	fmt.Print(res.Info.Table)
	fmt.Println()

	var de *compiler.DiagnosticsError
	if errors.As(err, &de) {
		fmt.Println("Diagnostics")
		for _, d := range de.Diagnostics.Strings() {
			fmt.Println(" ", d)
		}
		os.Exit(3)
	}

	fmt.Println("TAC")
	fmt.Print(res.IR)
	fmt.Println("Optimized TAC")
	fmt.Print(res.Optimized)

	if err != nil {
		log.Fatalf("codegen error: %v", err)
	}
	fmt.Printf("Generated Assembly (%d instructions, %d data bytes)\n", res.Listing.Instructions(), res.Listing.DataSize)
	fmt.Print(res.Assembly)
	fmt.Println()

	fmt.Println("Run")
	vm, err := cpu.Execute(res.Assembly, os.Stdout)
	if err != nil {
		log.Fatalf("run error: %v", err)
	}
	fmt.Printf("\nrun complete: %d steps, $sp=0x%08X\n", vm.Steps, uint32(vm.Regs[cpu.RegSP]))
}
