package sema

import (
	"fmt"
	"sort"
	"strings"
)

// ScopeID is a stable handle to a Scope inside a SymbolTable.
type ScopeID int

const (
	NoScope     ScopeID = -1
	GlobalScope ScopeID = 0
)

// Scope maps identifiers to symbols. Lookups that miss continue in Parent.
type Scope struct {
	Name    string
	Parent  ScopeID
	symbols map[string]Symbol
}

// Lookup finds name in this scope only.
func (sc *Scope) Lookup(name string) (Symbol, bool) {
	sym, ok := sc.symbols[name]
	return sym, ok
}

// Names returns the names declared directly in this scope, sorted.
func (sc *Scope) Names() []string {
	names := make([]string, 0, len(sc.symbols))
	for n := range sc.symbols {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SymbolTable owns every scope of one compilation. Scopes live in an arena
// and refer to their parent by ScopeID; index 0 is the global scope.
//
// A stack of open scopes supports the collection pass; later passes look
// scopes up by handle instead.
type SymbolTable struct {
	scopes []*Scope
	stack  []ScopeID
}

func NewSymbolTable() *SymbolTable {
	s := &SymbolTable{}
	s.NewScope("global", NoScope)
	s.stack = []ScopeID{GlobalScope}
	return s
}

// NewScope creates an empty scope enclosed by parent.
func (s *SymbolTable) NewScope(name string, parent ScopeID) ScopeID {
	id := ScopeID(len(s.scopes))
	s.scopes = append(s.scopes, &Scope{Name: name, Parent: parent, symbols: make(map[string]Symbol)})
	return id
}

// Scope returns the scope for id.
func (s *SymbolTable) Scope(id ScopeID) *Scope {
	return s.scopes[id]
}

// Len returns the number of scopes created so far.
func (s *SymbolTable) Len() int { return len(s.scopes) }

// Push makes id the current scope.
func (s *SymbolTable) Push(id ScopeID) {
	s.stack = append(s.stack, id)
}

// Pop closes the current scope. The global scope is never popped.
func (s *SymbolTable) Pop() {
	if len(s.stack) <= 1 {
		panic("sema: pop of global scope")
	}
	s.stack = s.stack[:len(s.stack)-1]
}

// Current returns the innermost open scope.
func (s *SymbolTable) Current() ScopeID {
	return s.stack[len(s.stack)-1]
}

// Define inserts sym into the current scope. It returns false, leaving the
// scope unchanged, when the name is already declared in that scope.
func (s *SymbolTable) Define(sym Symbol) bool {
	return s.DefineIn(s.Current(), sym)
}

// DefineIn inserts sym into scope id.
func (s *SymbolTable) DefineIn(id ScopeID, sym Symbol) bool {
	sc := s.scopes[id]
	if _, exists := sc.symbols[sym.Ident()]; exists {
		return false
	}
	sc.symbols[sym.Ident()] = sym
	return true
}

// Resolve looks name up from the current scope outward.
func (s *SymbolTable) Resolve(name string) (Symbol, bool) {
	sym, _, ok := s.ResolveFrom(s.Current(), name)
	return sym, ok
}

// ResolveFrom looks name up starting at scope id and walking outward. It
// also returns the scope the name was found in.
func (s *SymbolTable) ResolveFrom(id ScopeID, name string) (Symbol, ScopeID, bool) {
	for id != NoScope {
		sc := s.scopes[id]
		if sym, ok := sc.symbols[name]; ok {
			return sym, id, true
		}
		id = sc.Parent
	}
	return nil, NoScope, false
}

// ResolveGlobalFunction finds a function by name in the global scope only,
// regardless of where the call appears.
func (s *SymbolTable) ResolveGlobalFunction(name string) (*Function, bool) {
	fn, ok := s.scopes[GlobalScope].symbols[name].(*Function)
	return fn, ok
}

// IsGlobal reports whether sym is the symbol bound to its name in the
// global scope.
func (s *SymbolTable) IsGlobal(sym Symbol) bool {
	g, ok := s.scopes[GlobalScope].symbols[sym.Ident()]
	return ok && g == sym
}

// String dumps every scope in creation order with its symbols sorted by
// name. Built-in functions are left out.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	for i, sc := range s.scopes {
		if sc.Parent == NoScope {
			fmt.Fprintf(&sb, "scope %d %s\n", i, sc.Name)
		} else {
			fmt.Fprintf(&sb, "scope %d %s (parent %d)\n", i, sc.Name, sc.Parent)
		}
		for _, name := range sc.Names() {
			switch sym := sc.symbols[name].(type) {
			case *Variable:
				fmt.Fprintf(&sb, "  var %s\n", sym)
			case *Function:
				if !sym.Builtin {
					fmt.Fprintf(&sb, "  func %s\n", sym)
				}
			}
		}
	}
	return sb.String()
}
