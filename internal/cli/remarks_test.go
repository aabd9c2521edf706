package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordRemarks runs opt with --remarks-db and returns the database path.
func recordRemarks(t *testing.T) string {
	t.Helper()
	program := `func @square(%x: f64) -> f64 {
  %e = const 2.0 : f64
  %p = pow %x, %e : f64
  return %p : f64
}

func @ident(%y: f64) -> f64 {
  %e = const 1.0 : f64
  %p = pow %y, %e : f64
  return %p : f64
}
`
	path := writeProgram(t, program)
	dbPath := filepath.Join(t.TempDir(), "remarks.db")

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"opt", path, "--remarks-db", dbPath})
	require.NoError(t, cmd.Execute())

	return dbPath
}

func TestRemarksListAll(t *testing.T) {
	dbPath := recordRemarks(t)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"remarks", dbPath})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "2 remark(s)")
	assert.Contains(t, output, "@square pow-strength-reduction")
	assert.Contains(t, output, "@ident pow-strength-reduction")
}

func TestRemarksFilterByFunc(t *testing.T) {
	dbPath := recordRemarks(t)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"remarks", dbPath, "--func", "ident"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "1 remark(s)")
	assert.Contains(t, output, "@ident")
	assert.NotContains(t, output, "@square")
}

func TestRemarksFilterNoMatch(t *testing.T) {
	dbPath := recordRemarks(t)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"remarks", dbPath, "--pass", "no-such-pass"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No remarks found")
}

func TestRemarksJSON(t *testing.T) {
	dbPath := recordRemarks(t)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "json", "remarks", dbPath, "--func", "square"})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, data, 1)
}

func TestRemarksMissingDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"remarks", filepath.Join(t.TempDir(), "missing.db")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeStore)
}
