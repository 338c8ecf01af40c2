package asm

import (
	"reflect"
	"strings"
	"testing"
)

func TestHelperFunctions(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"abc", true},
		{"_abc", true},
		{"abc1", true},
		{"f__a_0", true},
		{"x.1", true},
		{"1abc", false},
		{"", false},
		{"ab-c", false},
		{".data", false},
	}
	for _, tc := range tests {
		if got := isIdentifier(tc.input); got != tc.want {
			t.Errorf("isIdentifier(%q) = %v; want %v", tc.input, got, tc.want)
		}
	}

	lenTests := []struct {
		lit    string
		want   int
		wantOk bool
	}{
		{`"hi"`, 2, true},
		{`""`, 0, true},
		{`"a\nb"`, 3, true},
		{`"\0\\"`, 2, true},
		{`"say \"x\""`, 7, true},
		{`hi`, 0, false},
		{`"a"b"`, 0, false},
	}
	for _, tc := range lenTests {
		got, ok := stringLength(tc.lit)
		if got != tc.want || ok != tc.wantOk {
			t.Errorf("stringLength(%q) = %d, %v; want %d, %v", tc.lit, got, ok, tc.want, tc.wantOk)
		}
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    parsedLine
		wantErr bool
	}{
		{
			"li $t0, 5",
			parsedLine{lineNo: 1, mnemonic: "li", operands: []string{"$t0", "5"}},
			false,
		},
		{
			"    sw $t0, -4($fp)   # spill",
			parsedLine{lineNo: 1, mnemonic: "sw", operands: []string{"$t0", "-4($fp)"}},
			false,
		},
		{
			"main:",
			parsedLine{lineNo: 1, labels: []string{"main"}},
			false,
		},
		{
			`str_0: .asciiz "a: #b"`,
			parsedLine{lineNo: 1, labels: []string{"str_0"}, mnemonic: ".asciiz", operands: []string{`"a: #b"`}},
			false,
		},
		{
			"syscall",
			parsedLine{lineNo: 1, mnemonic: "syscall"},
			false,
		},
		{
			"# only a comment",
			parsedLine{lineNo: 1},
			false,
		},
		{
			"1bad: j x",
			parsedLine{},
			true,
		},
		{
			"addu $t2, , $t1",
			parsedLine{},
			true,
		},
	}

	for _, tc := range tests {
		got, err := parseLine(tc.line, 1)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseLine(%q) error = %v, wantErr %v", tc.line, err, tc.wantErr)
			continue
		}
		if tc.wantErr {
			continue
		}
		if got.mnemonic != tc.want.mnemonic {
			t.Errorf("parseLine(%q) mnemonic = %q, want %q", tc.line, got.mnemonic, tc.want.mnemonic)
		}
		if !reflect.DeepEqual(got.labels, tc.want.labels) {
			t.Errorf("parseLine(%q) labels = %v, want %v", tc.line, got.labels, tc.want.labels)
		}
		if !reflect.DeepEqual(got.operands, tc.want.operands) {
			t.Errorf("parseLine(%q) operands = %v, want %v", tc.line, got.operands, tc.want.operands)
		}
	}
}

const program = `.data
.align 2
g:
    .space 4
str_0: .asciiz "hi\n"
.text
.globl __start
__start:
    jal main
    li $v0, 10
    syscall

.globl main
main:
    addiu $sp, $sp, -16
    sw $ra, 0($sp)
    sw $fp, 4($sp)
    addiu $fp, $sp, 16
    la $a0, str_0
    li $v0, 4
    syscall
    la $t1, g
    li $t2, 0
    addu $t1, $t1, $t2
    lw $t0, 0($t1)
    beq $t0, $zero, else_0
    j else_0
else_0:
    li $v0, 0
    lw $ra, 0($sp)
    lw $fp, 4($sp)
    addiu $sp, $sp, 16
    jr $ra
`

func TestCheck(t *testing.T) {
	l, err := Check(program)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	wantLabels := map[string]Symbol{
		"g":       {Segment: Data, Offset: 0, Line: 3},
		"str_0":   {Segment: Data, Offset: 4, Line: 5},
		"__start": {Segment: Text, Offset: 0, Line: 8},
		"main":    {Segment: Text, Offset: 12, Line: 14},
		"else_0":  {Segment: Text, Offset: 64, Line: 28},
	}
	if !reflect.DeepEqual(l.Labels, wantLabels) {
		t.Errorf("Labels = %v, want %v", l.Labels, wantLabels)
	}
	if l.DataSize != 8 {
		t.Errorf("DataSize = %d, want 8", l.DataSize)
	}
	if l.TextSize != 84 {
		t.Errorf("TextSize = %d, want 84", l.TextSize)
	}
	if l.Instructions() != 21 {
		t.Errorf("Instructions() = %d, want 21", l.Instructions())
	}
	if !reflect.DeepEqual(l.Globals, []string{"__start", "main"}) {
		t.Errorf("Globals = %v", l.Globals)
	}
}

func TestCheckErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"duplicate label", "main:\nmain:\n", "duplicate label 'main' on line 2 (first defined on line 1)"},
		{"undefined jump", "j nowhere", "undefined label 'nowhere' on line 1"},
		{"undefined global", ".globl main", "undefined global label 'main'"},
		{"unknown instruction", "addi $t0, $t0, 1", "unknown instruction on line 1: addi"},
		{"bad register", "jr $t9", "invalid register '$t9' on line 1"},
		{"operand count", "addu $t0, $t1", "addu expects 3 operands on line 1"},
		{"offset range", "lw $t0, 40000($fp)", "immediate out of range on line 1: 40000"},
		{"immediate range", "addiu $sp, $sp, -40000", "immediate out of range on line 1: -40000"},
		{"bad memory operand", "sw $t0, $fp", "invalid memory operand '$fp' on line 1"},
		{"bad immediate", "li $t0, x", "invalid immediate 'x' on line 1"},
		{"instruction in data", ".data\nsyscall", "instruction in the data segment on line 2: syscall"},
		{"space in text", ".space 4", ".space outside the data segment on line 1"},
		{"bad string", ".data\ns: .asciiz hi", "invalid string literal on line 2"},
		{"bad align", ".data\n.align 9", "invalid .align value on line 2: 9"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Check(tc.code)
			if err == nil {
				t.Fatalf("Check(%q) succeeded, want error %q", tc.code, tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Check(%q) error = %q, want %q", tc.code, err, tc.want)
			}
		})
	}
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"li $t0, 1", "li $t0, 1"},
		{"li $t0, 1 # comment", "li $t0, 1 "},
		{"# comment", ""},
		{`s: .asciiz "#x" # tail`, `s: .asciiz "#x" `},
		{`s: .asciiz "a\"#" # tail`, `s: .asciiz "a\"#" `},
	}
	for _, tc := range tests {
		if got := stripComments(tc.input); got != tc.want {
			t.Errorf("stripComments(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
