package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fprint writes the canonical textual form of a module to w. The output is
// deterministic and round-trips through Parse.
func Fprint(w io.Writer, m *Module) error {
	for i, fn := range m.Funcs {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := fprintFunc(w, fn); err != nil {
			return err
		}
	}
	return nil
}

// Print returns the canonical textual form of a module.
func Print(m *Module) string {
	var sb strings.Builder
	// strings.Builder never fails.
	_ = Fprint(&sb, m)
	return sb.String()
}

// PrintFunc returns the canonical textual form of a single function.
func PrintFunc(fn *Func) string {
	var sb strings.Builder
	_ = fprintFunc(&sb, fn)
	return sb.String()
}

// PrintOp returns the canonical body line for a single op, without
// indentation. Used in diagnostics and optimization remarks.
func PrintOp(op *Op) string {
	var sb strings.Builder
	writeOp(&sb, op)
	return sb.String()
}

func fprintFunc(w io.Writer, fn *Func) error {
	var sb strings.Builder
	sb.WriteString("func @")
	sb.WriteString(fn.Name)
	sb.WriteByte('(')
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%%%s: %s", p.Name, p.Type)
	}
	sb.WriteString(") -> ")
	sb.WriteString(fn.ReturnType.String())
	sb.WriteString(" {\n")
	for _, op := range fn.Body {
		sb.WriteString("  ")
		writeOp(&sb, op)
		sb.WriteByte('\n')
	}
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeOp(sb *strings.Builder, op *Op) {
	switch op.Kind {
	case KindReturn:
		sb.WriteString("return ")
		writeOperands(sb, op)
	case KindConst:
		fmt.Fprintf(sb, "%%%s = const ", op.Name)
		if op.Type.IsVector() {
			writeVectorConst(sb, op)
		} else {
			sb.WriteString(formatFloat(op.Val))
		}
	default:
		fmt.Fprintf(sb, "%%%s = %s ", op.Name, op.Kind)
		writeOperands(sb, op)
	}
	sb.WriteString(" : ")
	sb.WriteString(op.Type.String())
}

func writeOperands(sb *strings.Builder, op *Op) {
	for i, in := range op.Operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('%')
		sb.WriteString(in.Name)
	}
}

// writeVectorConst prints uniform vectors in splat form and everything else
// as a bracketed element list. Splat form is canonical for uniform vectors:
// the parser expands it back to per-lane elements.
func writeVectorConst(sb *strings.Builder, op *Op) {
	if c := ClassifyConst(op); c.Kind == SplatConst {
		sb.WriteString("splat ")
		sb.WriteString(formatFloat(c.Value))
		return
	}
	sb.WriteByte('[')
	for i, e := range op.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatFloat(e))
	}
	sb.WriteByte(']')
}

// formatFloat renders a float with the shortest exact decimal form, forcing
// a trailing ".0" on integral values so constants always scan as floats.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}
