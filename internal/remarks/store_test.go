package remarks

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strix-opt/strix/internal/rewrite"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "remarks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreWriteAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := []Remark{
		{ID: "aa", Session: "s1", Seq: 0, Fn: "main", Pass: "pow-strength-reduction", Before: "%r = pow %x, %c : f64", After: "%m = mul %x, %x : f64"},
		{ID: "bb", Session: "s1", Seq: 1, Fn: "helper", Pass: "pow-strength-reduction", Before: "%s = pow %y, %c : f64", After: "%y : f64"},
	}
	for _, r := range in {
		require.NoError(t, s.Write(ctx, r))
	}

	got, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestStoreWriteIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := Remark{ID: "aa", Session: "s1", Seq: 0, Fn: "main", Pass: "p", Before: "b", After: "a"}
	require.NoError(t, s.Write(ctx, r))
	require.NoError(t, s.Write(ctx, r))

	got, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStoreListOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Insert out of order; listing sorts by (seq, id).
	for _, r := range []Remark{
		{ID: "cc", Session: "s1", Seq: 2, Fn: "main", Pass: "p", Before: "b2", After: "a2"},
		{ID: "aa", Session: "s1", Seq: 0, Fn: "main", Pass: "p", Before: "b0", After: "a0"},
		{ID: "bb", Session: "s1", Seq: 1, Fn: "main", Pass: "p", Before: "b1", After: "a1"},
	} {
		require.NoError(t, s.Write(ctx, r))
	}

	got, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"aa", "bb", "cc"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestStoreListFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, r := range []Remark{
		{ID: "aa", Session: "s1", Seq: 0, Fn: "main", Pass: "p1", Before: "b", After: "a"},
		{ID: "bb", Session: "s1", Seq: 1, Fn: "helper", Pass: "p2", Before: "b", After: "a"},
		{ID: "cc", Session: "s2", Seq: 0, Fn: "main", Pass: "p1", Before: "b", After: "a"},
	} {
		require.NoError(t, s.Write(ctx, r))
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"by function", Filter{Fn: "main"}, []string{"aa", "cc"}},
		{"by pass", Filter{Pass: "p2"}, []string{"bb"}},
		{"by session", Filter{Session: "s2"}, []string{"cc"}},
		{"combined", Filter{Session: "s1", Fn: "main"}, []string{"aa"}},
		{"no match", Filter{Fn: "absent"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			require.NoError(t, err)
			var ids []string
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStoreEmitterRoundTrip(t *testing.T) {
	s := openTestStore(t)

	rec := NewRecorder(s)
	// Exercise the Emitter path end to end through a Recorder.
	require.NoError(t, rec.Record(rewrite.Event{Fn: "main", Pattern: "p", Before: "before", After: "after"}))

	got, err := s.List(context.Background(), Filter{Session: rec.Session()})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "before", got[0].Before)
}
