package ir

import (
	"fmt"
	"slices"
)

// Module is an ordered collection of functions, the unit the CLI parses and
// prints.
type Module struct {
	Funcs []*Func
}

// Func is a single function: named parameters and an ordered body of ops
// ending in a return. The Func owns every Op it contains.
type Func struct {
	// Name is the function name, without the leading '@'.
	Name string

	// ReturnType is the declared result type.
	ReturnType Type

	// Params are the function parameters, in declaration order.
	Params []*Op

	// Body is the ordered operation list. Order is execution order; operands
	// always precede their users.
	Body []*Op

	nextID int
}

// NewFunc creates an empty function with the given name and return type.
func NewFunc(name string, ret Type) *Func {
	return &Func{Name: name, ReturnType: ret}
}

// AddParam appends a parameter with the given name and type.
func (f *Func) AddParam(name string, t Type) *Op {
	p := &Op{ID: f.newID(), Kind: KindParam, Name: name, Type: t}
	f.Params = append(f.Params, p)
	return p
}

// Append adds a new op at the end of the body. An empty name allocates a
// fresh "tN" result name.
func (f *Func) Append(kind Kind, name string, t Type, operands ...*Op) *Op {
	op := f.newOp(kind, name, t, operands)
	f.Body = append(f.Body, op)
	return op
}

// InsertBefore adds a new op immediately preceding pos in the body. This is
// the only insertion point rewrites use: placing replacements right before
// the op being rewritten keeps def-before-use ordering intact.
func (f *Func) InsertBefore(pos *Op, kind Kind, name string, t Type, operands ...*Op) *Op {
	i := slices.Index(f.Body, pos)
	if i < 0 {
		// pos not in body; fall back to append so the op is never lost.
		return f.Append(kind, name, t, operands...)
	}
	op := f.newOp(kind, name, t, operands)
	f.Body = slices.Insert(f.Body, i, op)
	return op
}

// ConstScalar is a convenience wrapper inserting a scalar constant before pos.
func (f *Func) ConstScalar(pos *Op, v float64, t Type) *Op {
	op := f.InsertBefore(pos, KindConst, "", t.ElemType())
	op.Val = v
	return op
}

// ReplaceAllUses redirects every use of old's result to new, and retargets
// returns of old as well. Returns the number of operand slots rewritten. The
// old op itself is left in place; RemoveDead reclaims it once unreferenced.
func (f *Func) ReplaceAllUses(old, new *Op) int {
	n := 0
	for _, op := range f.Body {
		if op == new {
			continue
		}
		for i, in := range op.Operands {
			if in == old {
				op.Operands[i] = new
				n++
			}
		}
	}
	return n
}

// RemoveDead deletes body ops whose results are unused, repeating until a
// fixed point so chains of dead ops are fully reclaimed. Returns and params
// are never removed. Returns the number of ops deleted.
func (f *Func) RemoveDead() int {
	removed := 0
	for {
		used := make(map[*Op]bool)
		for _, op := range f.Body {
			for _, in := range op.Operands {
				used[in] = true
			}
		}
		kept := f.Body[:0]
		n := 0
		for _, op := range f.Body {
			if op.Kind != KindReturn && !used[op] {
				n++
				continue
			}
			kept = append(kept, op)
		}
		f.Body = kept
		removed += n
		if n == 0 {
			return removed
		}
	}
}

// OpByName returns the param or body op with the given result name, or nil.
func (f *Func) OpByName(name string) *Op {
	for _, p := range f.Params {
		if p.Name == name {
			return p
		}
	}
	for _, op := range f.Body {
		if op.Name == name {
			return op
		}
	}
	return nil
}

// CountKind returns how many body ops have the given kind.
func (f *Func) CountKind(kind Kind) int {
	n := 0
	for _, op := range f.Body {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Return returns the function's return op, or nil for a malformed body.
func (f *Func) Return() *Op {
	for _, op := range f.Body {
		if op.Kind == KindReturn {
			return op
		}
	}
	return nil
}

func (f *Func) newOp(kind Kind, name string, t Type, operands []*Op) *Op {
	id := f.newID()
	if name == "" && kind != KindReturn {
		name = f.freshName(id)
	}
	return &Op{ID: id, Kind: kind, Name: name, Type: t, Operands: operands}
}

func (f *Func) newID() int {
	id := f.nextID
	f.nextID++
	return id
}

// freshName picks an unused "tN" result name, starting from the op's ID.
func (f *Func) freshName(id int) string {
	for {
		name := fmt.Sprintf("t%d", id)
		if f.OpByName(name) == nil {
			return name
		}
		id++
	}
}
