package asm

import (
	"testing"
)

func TestCheckSourceMap(t *testing.T) {
	code := `
# Line 2: Comment
.text
main:           # Line 4: Label
    li $t0, 10  # Line 5: first instruction, offset 0
                # Line 6: Empty
    jal main    # Line 7: offset 4
.data           # Line 8: data does not advance text
x: .space 8
.text
    jr $ra      # Line 11: offset 8
`
	l, err := Check(code)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	tests := []struct {
		offset uint32
		line   int
	}{
		{0, 5},
		{4, 7},
		{8, 11},
	}

	for _, tc := range tests {
		if got := l.TextMap[tc.offset]; got != tc.line {
			t.Errorf("TextMap[%d] = %d; want %d", tc.offset, got, tc.line)
		}
	}
	if got := l.Labels["x"]; got.Segment != Data || got.Offset != 0 {
		t.Errorf("Labels[x] = %+v; want data offset 0", got)
	}
}
