package remarks

import "strings"

// Filter selects a subset of stored remarks. Zero-value fields are
// unconstrained; set fields combine with AND.
type Filter struct {
	Session string
	Fn      string
	Pass    string
}

// compile builds the parameterized SELECT for the filter. All values flow
// through placeholders, never into the SQL text.
func (f Filter) compile() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT id, session, seq, fn, pass, before_op, after_op FROM remarks")

	var (
		conds  []string
		params []any
	)
	if f.Session != "" {
		conds = append(conds, "session = ?")
		params = append(params, f.Session)
	}
	if f.Fn != "" {
		conds = append(conds, "fn = ?")
		params = append(params, f.Fn)
	}
	if f.Pass != "" {
		conds = append(conds, "pass = ?")
		params = append(params, f.Pass)
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY seq ASC, id ASC")
	return b.String(), params
}
