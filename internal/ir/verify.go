package ir

import (
	"errors"
	"fmt"
)

// VerifyErrorCode categorizes structural IR violations.
type VerifyErrorCode string

const (
	// ErrCodeArity indicates an op with the wrong operand count.
	ErrCodeArity VerifyErrorCode = "ARITY"

	// ErrCodeUseBeforeDef indicates an operand defined after its user.
	ErrCodeUseBeforeDef VerifyErrorCode = "USE_BEFORE_DEF"

	// ErrCodeTypeMismatch indicates operand/result types that disagree.
	ErrCodeTypeMismatch VerifyErrorCode = "TYPE_MISMATCH"

	// ErrCodeMissingReturn indicates a body without a terminating return.
	ErrCodeMissingReturn VerifyErrorCode = "MISSING_RETURN"

	// ErrCodeBadConst indicates a constant payload inconsistent with its type.
	ErrCodeBadConst VerifyErrorCode = "BAD_CONST"
)

// VerifyError reports a single structural violation found in a function.
type VerifyError struct {
	Code VerifyErrorCode
	Fn   string
	Op   string // result name of the offending op, "" for function-level errors
	Msg  string
}

func (e *VerifyError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: @%s: %%%s: %s", e.Code, e.Fn, e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: @%s: %s", e.Code, e.Fn, e.Msg)
}

// Verify checks the structural invariants of every function in the module:
// operand arity, def-before-use ordering, elementwise type agreement, const
// payload shape, and a terminating return matching the declared return type.
// All violations are collected and returned joined.
func Verify(m *Module) error {
	var errs []error
	for _, fn := range m.Funcs {
		errs = append(errs, verifyFunc(fn)...)
	}
	return errors.Join(errs...)
}

func verifyFunc(fn *Func) []error {
	var errs []error
	fail := func(op *Op, code VerifyErrorCode, format string, args ...any) {
		name := ""
		if op != nil {
			name = op.Name
		}
		errs = append(errs, &VerifyError{Code: code, Fn: fn.Name, Op: name, Msg: fmt.Sprintf(format, args...)})
	}

	defined := make(map[*Op]bool, len(fn.Params)+len(fn.Body))
	for _, p := range fn.Params {
		defined[p] = true
	}

	sawReturn := false
	for _, op := range fn.Body {
		if got, want := len(op.Operands), op.Kind.Arity(); got != want {
			fail(op, ErrCodeArity, "%s expects %d operand(s), has %d", op.Kind, want, got)
		}
		for _, in := range op.Operands {
			if !defined[in] {
				fail(op, ErrCodeUseBeforeDef, "operand %%%s is not defined before use", in.Name)
			}
		}
		defined[op] = true

		switch op.Kind {
		case KindConst:
			if op.Type.IsVector() {
				if len(op.Elems) != op.Type.Lanes {
					fail(op, ErrCodeBadConst, "has %d element(s) for type %s", len(op.Elems), op.Type)
				}
			} else if op.Elems != nil {
				fail(op, ErrCodeBadConst, "scalar constant carries vector elements")
			}
		case KindBroadcast:
			if x := op.X(); x != nil {
				if x.Type.IsVector() {
					fail(op, ErrCodeTypeMismatch, "broadcast source %%%s is already a vector", x.Name)
				}
				if !op.Type.IsVector() || op.Type.Elem != x.Type.Elem {
					fail(op, ErrCodeTypeMismatch, "broadcast of %s cannot produce %s", x.Type, op.Type)
				}
			}
		case KindReturn:
			sawReturn = true
			if x := op.X(); x != nil && x.Type != fn.ReturnType {
				fail(op, ErrCodeTypeMismatch, "returns %s, function declares %s", x.Type, fn.ReturnType)
			}
		default:
			// Elementwise ops: every operand type equals the result type.
			for _, in := range op.Operands {
				if in.Type != op.Type {
					fail(op, ErrCodeTypeMismatch, "operand %%%s has type %s, result has %s", in.Name, in.Type, op.Type)
				}
			}
		}
	}
	if !sawReturn {
		fail(nil, ErrCodeMissingReturn, "body has no return")
	}
	return errs
}
