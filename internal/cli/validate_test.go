package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValidateCmd(t *testing.T, format, path string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})
	err := cmd.Execute()
	return buf.String(), err
}

func writeDefinition(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tables.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func TestValidateValidDefinition(t *testing.T) {
	out, err := runValidateCmd(t, "text", peopleDef)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ people (4 columns, ")
	assert.Contains(t, out, "✓ All tables valid")
}

func TestValidateValidDefinitionJSON(t *testing.T) {
	out, err := runValidateCmd(t, "json", peopleDef)
	require.NoError(t, err)

	var env struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Equal(t, "ok", env.Status)
	assert.True(t, env.Data.Valid)
	require.Len(t, env.Data.Tables, 1)
	assert.Equal(t, "people", env.Data.Tables[0].Name)
	assert.Equal(t, 4, env.Data.Tables[0].Columns)
	assert.NotEmpty(t, env.Data.Tables[0].Fingerprint)
}

func TestValidateDirectory(t *testing.T) {
	out, err := runValidateCmd(t, "text", filepath.Join("..", "..", "testdata", "tables"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ people")
}

func TestValidateNonExistentPath(t *testing.T) {
	out, err := runValidateCmd(t, "text", "/nonexistent/tables.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "not found")
}

func TestValidateRuleViolations(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		code  string
		field string
	}{
		{
			name:  "duplicate column",
			src:   `table: t: columns: [{accessorKey: "a"}, {accessorKey: "a"}]`,
			code:  "E103",
			field: "table.t.columns[1]",
		},
		{
			name:  "unknown filter function",
			src:   `table: t: columns: [{accessorKey: "a", filterFn: "fuzzy"}]`,
			code:  "E104",
			field: "table.t.columns[0].filterFn",
		},
		{
			name: "unknown feature",
			src: `table: t: {
	columns: [{accessorKey: "a"}]
	features: ["columnPinning"]
}`,
			code:  "E110",
			field: "table.t.features[0]",
		},
		{
			name: "state names a missing column",
			src: `table: t: {
	columns: [{accessorKey: "a"}]
	initial_state: sorting: [{id: "b", desc: true}]
}`,
			code:  "E120",
			field: "table.t.initial_state.sorting[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runValidateCmd(t, "json", writeDefinition(t, tt.src))
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			var env struct {
				Status string           `json:"status"`
				Data   ValidationResult `json:"data"`
				Error  *CLIError        `json:"error"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &env), out)
			assert.Equal(t, "error", env.Status)
			assert.False(t, env.Data.Valid)
			require.NotEmpty(t, env.Data.Errors)
			assert.Equal(t, tt.code, env.Data.Errors[0].Code)
			assert.Equal(t, tt.field, env.Data.Errors[0].Field)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestValidateSyntaxError(t *testing.T) {
	out, err := runValidateCmd(t, "text", writeDefinition(t, "table: t: columns: [\n"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
}

func TestValidateMissingArgs(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
