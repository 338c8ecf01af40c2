// Package compiler drives a MiniC program through every stage and
// produces MIPS32 assembly for SPIM.
//
// Pipeline: source → syntax.ParseFile → sema.Analyze → (gate) →
// irgen.Generate → tac.Optimize (optional) → mips.Generate → asm.Check
package compiler
