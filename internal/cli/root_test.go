package cli

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "tablecore", cmd.Use)
	assert.Contains(t, cmd.Long, "CUE definitions")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"view", "validate", "test", "snapshot"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestSnapshotSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"list", "show", "latest"} {
		sub, _, err := cmd.Find([]string{"snapshot", name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestViewCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	viewCmd, _, err := cmd.Find([]string{"view"})
	require.NoError(t, err)

	for _, name := range []string{"data", "table", "filter", "global", "order-by", "group-by", "expand-all", "page", "page-size", "db", "save", "snapshot"} {
		assert.NotNil(t, viewCmd.Flags().Lookup(name), "flag --%s", name)
	}
	assert.Equal(t, "1", viewCmd.Flags().Lookup("page").DefValue)
	assert.Equal(t, "10", viewCmd.Flags().Lookup("page-size").DefValue)
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "invalid", "validate", "."})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootOptionsDefaults(t *testing.T) {
	opts := &RootOptions{Config: Config{PageSize: 25, DB: "env.db"}}

	assert.Equal(t, 25, opts.pageSize(10, false))
	assert.Equal(t, 5, opts.pageSize(5, true))
	assert.Equal(t, "env.db", opts.database(""))
	assert.Equal(t, "flag.db", opts.database("flag.db"))

	// Without a logger the options still hand one out.
	assert.NotNil(t, opts.logger())
}

func TestNewLogger_VerboseForcesDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newLogger(buf, slog.LevelWarn, true)
	logger.Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")

	buf.Reset()
	logger = newLogger(buf, slog.LevelWarn, false)
	logger.Info("quiet")
	assert.Empty(t, buf.String())
}
