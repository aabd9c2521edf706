package ir

import "fmt"

// Kind identifies the operation a node computes.
type Kind int

const (
	// KindParam is a function parameter. Params have no operands and live in
	// Func.Params, not the body.
	KindParam Kind = iota

	// KindConst materializes a compile-time floating-point constant, either a
	// scalar value or a vector of element values.
	KindConst

	// KindBroadcast expands a scalar operand into every lane of a vector
	// result.
	KindBroadcast

	// KindPow computes elementwise x^y.
	KindPow

	// KindMul computes elementwise multiplication.
	KindMul

	// KindDiv computes elementwise division.
	KindDiv

	// KindAdd computes elementwise addition.
	KindAdd

	// KindSub computes elementwise subtraction.
	KindSub

	// KindSqrt computes the elementwise square root.
	KindSqrt

	// KindNeg computes elementwise negation.
	KindNeg

	// KindReturn terminates a function body, yielding its single operand.
	KindReturn
)

// String returns the textual mnemonic used in the printed IR form.
func (k Kind) String() string {
	switch k {
	case KindParam:
		return "param"
	case KindConst:
		return "const"
	case KindBroadcast:
		return "broadcast"
	case KindPow:
		return "pow"
	case KindMul:
		return "mul"
	case KindDiv:
		return "div"
	case KindAdd:
		return "add"
	case KindSub:
		return "sub"
	case KindSqrt:
		return "sqrt"
	case KindNeg:
		return "neg"
	case KindReturn:
		return "return"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KindByName maps a printed mnemonic back to its Kind. Param is excluded:
// parameters are spelled in the function signature, not the body.
var KindByName = map[string]Kind{
	"const":     KindConst,
	"broadcast": KindBroadcast,
	"pow":       KindPow,
	"mul":       KindMul,
	"div":       KindDiv,
	"add":       KindAdd,
	"sub":       KindSub,
	"sqrt":      KindSqrt,
	"neg":       KindNeg,
	"return":    KindReturn,
}

// Arity returns the required operand count for the kind.
func (k Kind) Arity() int {
	switch k {
	case KindParam, KindConst:
		return 0
	case KindBroadcast, KindSqrt, KindNeg, KindReturn:
		return 1
	case KindPow, KindMul, KindDiv, KindAdd, KindSub:
		return 2
	default:
		return 0
	}
}

// Op is a single operation in a function body. Ops are created and owned by a
// Func; other packages hold references but never construct Ops directly.
type Op struct {
	// ID is unique within the owning Func and stable for the Op's lifetime.
	ID int

	// Kind is the operation this node computes.
	Kind Kind

	// Name is the SSA result name, without the leading '%'. Return ops
	// produce no result and have an empty name.
	Name string

	// Operands reference the ops whose results feed this one.
	Operands []*Op

	// Type is the result type. For return ops it is the type of the yielded
	// operand.
	Type Type

	// Val holds the value of a scalar KindConst.
	Val float64

	// Elems holds the per-lane values of a vector KindConst; its length
	// equals Type.Lanes.
	Elems []float64
}

// X returns the first operand, or nil.
func (o *Op) X() *Op {
	if len(o.Operands) > 0 {
		return o.Operands[0]
	}
	return nil
}

// Y returns the second operand, or nil.
func (o *Op) Y() *Op {
	if len(o.Operands) > 1 {
		return o.Operands[1]
	}
	return nil
}

// String returns a debug one-liner for the op (not the canonical printed
// form; see Fprint for that).
func (o *Op) String() string {
	if o == nil {
		return "<nil op>"
	}
	return fmt.Sprintf("Op{ID:%d Kind:%s Name:%q Type:%s}", o.ID, o.Kind, o.Name, o.Type)
}

// ConstKind tags the result of constant classification.
type ConstKind int

const (
	// NotConst means the operand is not a recognized compile-time constant:
	// it is not a const op at all, or it is a vector constant whose lanes
	// disagree.
	NotConst ConstKind = iota

	// ScalarConst means a scalar constant with a single value.
	ScalarConst

	// SplatConst means a vector constant whose lanes all hold the same value.
	SplatConst
)

// ConstValue is the tagged classification of an operand as a compile-time
// constant. Exactly one interpretation applies: scalar, uniform vector, or
// neither. Value and Lanes are meaningful only for the kinds that set them.
type ConstValue struct {
	Kind  ConstKind
	Value float64 // ScalarConst and SplatConst
	Lanes int     // SplatConst only
}

// ClassifyConst inspects an operand and classifies it as a compile-time
// constant. Non-const ops and non-uniform vector constants classify as
// NotConst.
func ClassifyConst(op *Op) ConstValue {
	if op == nil || op.Kind != KindConst {
		return ConstValue{Kind: NotConst}
	}
	if !op.Type.IsVector() {
		return ConstValue{Kind: ScalarConst, Value: op.Val}
	}
	if len(op.Elems) == 0 {
		return ConstValue{Kind: NotConst}
	}
	v := op.Elems[0]
	for _, e := range op.Elems[1:] {
		// Exact comparison: a splat is bitwise-uniform, no tolerance.
		if e != v {
			return ConstValue{Kind: NotConst}
		}
	}
	return ConstValue{Kind: SplatConst, Value: v, Lanes: op.Type.Lanes}
}
