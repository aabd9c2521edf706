package remarks

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/strix-opt/strix/internal/rewrite"
)

// DomainRemark is the domain-separation prefix for remark IDs. The version
// suffix enables future algorithm migration.
const DomainRemark = "strix/remark/v1"

// Remark is one recorded rewrite.
type Remark struct {
	// ID is the content-addressed identity of the remark. It excludes the
	// session: the same rewrite on the same program always has the same ID.
	ID string `yaml:"id" json:"id"`

	// Session identifies one optimizer invocation.
	Session string `yaml:"session" json:"session"`

	// Seq is the 0-based order of the rewrite within the session.
	Seq int `yaml:"seq" json:"seq"`

	// Fn is the function the rewrite occurred in.
	Fn string `yaml:"fn" json:"fn"`

	// Pass is the name of the pattern that fired.
	Pass string `yaml:"pass" json:"pass"`

	// Before is the canonical text of the replaced operation.
	Before string `yaml:"before" json:"before"`

	// After is the canonical text of the replacement's root value.
	After string `yaml:"after" json:"after"`
}

// remarkID computes the content-addressed ID. Text fields are NFC normalized
// so visually identical spellings hash identically; the null separator
// prevents field-boundary ambiguity.
func remarkID(fn, pass, before, after string, seq int) string {
	h := sha256.New()
	h.Write([]byte(DomainRemark))
	for _, field := range []string{fn, pass, before, after, strconv.Itoa(seq)} {
		h.Write([]byte{0x00})
		h.Write([]byte(norm.NFC.String(field)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Emitter is a remark sink.
type Emitter interface {
	Emit(r Remark) error
	Close() error
}

// Recorder adapts one or more emitters to the rewrite driver's Recorder
// interface, assigning session identity and session-wide sequence numbers.
type Recorder struct {
	session string
	seq     int
	sinks   []Emitter
}

// NewRecorder creates a recorder with a fresh session ID feeding the given
// emitters.
func NewRecorder(sinks ...Emitter) *Recorder {
	return &Recorder{session: uuid.NewString(), sinks: sinks}
}

// Session returns the session ID remarks are recorded under.
func (r *Recorder) Session() string {
	return r.session
}

// Record implements rewrite.Recorder.
func (r *Recorder) Record(ev rewrite.Event) error {
	remark := Remark{
		ID:      remarkID(ev.Fn, ev.Pattern, ev.Before, ev.After, r.seq),
		Session: r.session,
		Seq:     r.seq,
		Fn:      ev.Fn,
		Pass:    ev.Pattern,
		Before:  ev.Before,
		After:   ev.After,
	}
	r.seq++
	for _, sink := range r.sinks {
		if err := sink.Emit(remark); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, returning the first error.
func (r *Recorder) Close() error {
	var first error
	for _, sink := range r.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
