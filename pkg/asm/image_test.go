package asm

import (
	"reflect"
	"strings"
	"testing"
)

func TestAssembleImage(t *testing.T) {
	code := `.data
.align 2
g:
    .space 8
str_0: .asciiz "a\n"
.text
.globl __start
__start:
    jal main
    li $v0, 10
    syscall
main:
    la $t1, g
    lw $t0, 4($t1)
    beq $t0, $zero, main
    xori $t2, $t0, 1
    jr $ra
`
	img, err := Assemble(code)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	wantData := []byte{0, 0, 0, 0, 0, 0, 0, 0, 'a', '\n', 0}
	if !reflect.DeepEqual(img.Data, wantData) {
		t.Errorf("Data = %v; want %v", img.Data, wantData)
	}
	if uint32(len(img.Data)) != img.DataSize {
		t.Errorf("Data has %d bytes; listing says %d", len(img.Data), img.DataSize)
	}
	if img.Entry != TextBase {
		t.Errorf("Entry = 0x%08X; want 0x%08X", img.Entry, TextBase)
	}

	mainAddr, ok := img.Addr("main")
	if !ok || mainAddr != TextBase+12 {
		t.Fatalf("Addr(main) = 0x%08X, %v; want 0x%08X", mainAddr, ok, TextBase+12)
	}
	if addr, _ := img.Addr("str_0"); addr != DataBase+8 {
		t.Errorf("Addr(str_0) = 0x%08X; want 0x%08X", addr, DataBase+8)
	}

	want := []Inst{
		{Op: "jal", Imm: int32(mainAddr), Line: 9},
		{Op: "li", Regs: [3]uint8{2}, Imm: 10, Line: 10},
		{Op: "syscall", Line: 11},
		{Op: "la", Regs: [3]uint8{9}, Imm: int32(DataBase), Line: 13},
		{Op: "lw", Regs: [3]uint8{8, 9}, Imm: 4, Line: 14},
		{Op: "beq", Regs: [3]uint8{8, 0}, Imm: int32(mainAddr), Line: 15},
		{Op: "xori", Regs: [3]uint8{10, 8}, Imm: 1, Line: 16},
		{Op: "jr", Regs: [3]uint8{31}, Line: 17},
	}
	if !reflect.DeepEqual(img.Text, want) {
		t.Errorf("Text mismatch:\ngot  %v\nwant %v", img.Text, want)
	}
}

func TestAssembleRequiresEntry(t *testing.T) {
	_, err := Assemble(".text\nmain:\n    jr $ra\n")
	if err == nil || !strings.Contains(err.Error(), "__start") {
		t.Errorf("Expected a missing entry error, got %v", err)
	}
}

func TestAssembleReportsCheckErrors(t *testing.T) {
	_, err := Assemble(".text\n__start:\n    j nowhere\n")
	if err == nil || !strings.Contains(err.Error(), "undefined label 'nowhere'") {
		t.Errorf("Expected an undefined label error, got %v", err)
	}
}
