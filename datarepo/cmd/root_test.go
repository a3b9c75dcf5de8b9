package cmd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/datarepo"
	testcmd "github.com/go-arrower/datarepo/cmd"
	"github.com/go-arrower/datarepo/datarepo/cmd"
)

func TestRootCmd(t *testing.T) {
	t.Parallel()

	t.Run("no command: show help & list of commands", func(t *testing.T) {
		t.Parallel()

		// leaving args empty or "" leads to: unknown command error, so it's set explicitly to empty slice
		output, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(), []string{}...)
		assert.NoError(t, err)
		assert.Contains(t, output, "Available Commands:")
		assert.Contains(t, output, "demo")
		assert.Contains(t, output, "seed")
		assert.Contains(t, output, "version")
	})

	t.Run("unknown command", func(t *testing.T) {
		t.Parallel()

		output, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(), "non-ex-command")
		assert.Error(t, err)
		assert.Contains(t, output, "unknown command")
	})

	t.Run("help message does not show use of flags", func(t *testing.T) {
		t.Parallel()

		output, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(), []string{}...)
		assert.NoError(t, err)
		assert.NotContains(t, output, "[flags]")
	})

	t.Run("version", func(t *testing.T) {
		t.Parallel()

		output, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(), "version")
		assert.NoError(t, err)
		assert.Contains(t, output, "datarepo version: ")
	})

	t.Run("invalid log format", func(t *testing.T) {
		t.Parallel()

		_, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(), "version", "--log-format", "xml")
		assert.ErrorIs(t, err, datarepo.ErrConfigLoadFailed)
	})

	t.Run("missing config file", func(t *testing.T) {
		t.Parallel()

		_, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(), "version", "--config", "./testdata/non-existing.yaml")
		assert.ErrorIs(t, err, datarepo.ErrConfigLoadFailed)
	})

	t.Run("config file", func(t *testing.T) {
		t.Parallel()

		output, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(), "version", "--config", "../testdata/config.yaml")
		assert.NoError(t, err)
		assert.Contains(t, output, `"msg":"configuration loaded"`)
		assert.Contains(t, output, `"level":"DATAREPO:INFO"`)
		assert.Contains(t, output, `"environment":"test"`)
	})

	t.Run("flags overwrite config file", func(t *testing.T) {
		t.Parallel()

		output, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(),
			"version", "--config", "../testdata/config.yaml", "--log-format", "text")
		assert.NoError(t, err)
		assert.Contains(t, output, `msg="configuration loaded"`)
	})
}

func TestRootCmd_Env(t *testing.T) {
	// t.Setenv does not allow t.Parallel

	t.Setenv("DATAREPO_LOG_LEVEL", "datarepo:info")

	output, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(), "version")
	assert.NoError(t, err)
	assert.Contains(t, output, "level=DATAREPO:INFO")
}
