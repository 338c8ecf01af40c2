package sema

import "minic/pkg/syntax"

// Type is a MiniC base type.
type Type int

const (
	Invalid Type = iota // result of an expression that already failed to resolve
	Int
	Char
	Bool
	String
	Void
)

var typeNames = [...]string{
	Invalid: "invalid",
	Int:     "int",
	Char:    "char",
	Bool:    "bool",
	String:  "string",
	Void:    "void",
}

func (t Type) String() string {
	if int(t) >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "invalid"
}

// TypeOfToken maps a type keyword to its Type.
func TypeOfToken(tt syntax.TokenType) Type {
	switch tt {
	case syntax.INT:
		return Int
	case syntax.CHAR:
		return Char
	case syntax.BOOL:
		return Bool
	case syntax.STRING:
		return String
	case syntax.VOID:
		return Void
	}
	return Invalid
}

// IsNumeric reports whether t may appear in arithmetic and as an index.
func (t Type) IsNumeric() bool { return t == Int || t == Char }

// IsBooly reports whether t is acceptable as a condition: truthiness is
// "nonzero".
func (t Type) IsBooly() bool { return t == Bool || t == Int || t == Char }

// AssignableTo reports whether a value of type t may be stored into a
// variable of type dst. int interchanges with char and with bool.
func (t Type) AssignableTo(dst Type) bool {
	if t == dst {
		return true
	}
	switch {
	case t == Int && (dst == Char || dst == Bool):
		return true
	case dst == Int && (t == Char || t == Bool):
		return true
	}
	return false
}
