package cmd_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	testcmd "github.com/go-arrower/datarepo/cmd"
	"github.com/go-arrower/datarepo/datarepo/cmd"
	"github.com/go-arrower/datarepo/datarepo/internal"
	"github.com/go-arrower/datarepo/repository"
)

func TestSeedCmd(t *testing.T) {
	t.Parallel()

	t.Run("list users in order", func(t *testing.T) {
		t.Parallel()

		output, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(), "seed", "../testdata/users.yaml")
		assert.NoError(t, err)
		assert.Equal(t, []string{
			`{id: 1, name: "John", email: "john@example.com"}`,
			`{id: 2, name: "Midun"}`,
			`{id: 3, name: "Ada", email: "ada@example.com"}`,
			"count: 3",
		}, withoutLogs(output))
	})

	t.Run("duplicate ids", func(t *testing.T) {
		t.Parallel()

		output, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(), "seed", "../testdata/duplicate-users.yaml")
		assert.ErrorIs(t, err, repository.ErrAlreadyExists)
		assert.Contains(t, output, "seed rejected")
		assert.Contains(t, output, "entity with id 1 exists already")
		assert.NotContains(t, output, "count:")
	})

	t.Run("no file", func(t *testing.T) {
		t.Parallel()

		_, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(), "seed")
		assert.ErrorIs(t, err, cmd.ErrNoSeedFile)
	})

	t.Run("non existing file", func(t *testing.T) {
		t.Parallel()

		_, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(), "seed", "../testdata/non-existing.yaml")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid file", func(t *testing.T) {
		t.Parallel()

		_, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(), "seed", "../testdata/config.yaml")
		assert.ErrorIs(t, err, internal.ErrInvalidSeed)
	})

	t.Run("log loaded seed", func(t *testing.T) {
		t.Parallel()

		output, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(),
			"seed", "../testdata/users.yaml", "--log-level", "datarepo:info")
		assert.NoError(t, err)
		assert.Contains(t, output, `msg="seed loaded" file=../testdata/users.yaml users=3`)
	})
}

func TestSeedCmd_Env(t *testing.T) {
	// t.Setenv does not allow t.Parallel

	t.Run("file from configuration", func(t *testing.T) {
		t.Setenv("DATAREPO_SEED_FILE", "../testdata/users.yaml")

		output, err := testcmd.TestExecute(t, cmd.NewDataRepoCLI(), "seed")
		assert.NoError(t, err)
		assert.Contains(t, output, "count: 3")
	})
}
