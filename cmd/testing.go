package cmd

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

// mu synchronisation is required:
// As TestExecute accepts a pointer to the cobra command,
// concurrent tests will create a race condition.
// It also serialises capturing & restoring os.Stdout & os.Stderr.
var mu sync.Mutex

// TestExecute is a helper that executes a cobra command with args
// and returns everything it wrote to its outputs, os.Stdout, and os.Stderr.
func TestExecute(t *testing.T, command *cobra.Command, args ...string) (string, error) {
	t.Helper()

	mu.Lock()
	defer mu.Unlock()

	buf := new(syncBuffer)
	command.SetOut(buf)
	command.SetErr(buf)
	command.SetArgs(args)

	var cmdErr error

	captureStd(t, buf, func() {
		_, cmdErr = command.ExecuteC()
	})

	return buf.String(), cmdErr
}

// captureStd redirects os.Stdout and os.Stderr while run is executed and writes them into w.
func captureStd(t *testing.T, w io.Writer, run func()) {
	t.Helper()

	stdout, stderr := os.Stdout, os.Stderr

	rOut, wOut, err := os.Pipe()
	assert.NoError(t, err)
	rErr, wErr, err := os.Pipe()
	assert.NoError(t, err)

	os.Stdout, os.Stderr = wOut, wErr

	defer func() {
		os.Stdout, os.Stderr = stdout, stderr
	}()

	// drain the pipes concurrently, so a command writing a lot does not block on a full pipe
	var (
		wg        sync.WaitGroup
		out, serr []byte
	)

	wg.Add(2)

	go func() {
		defer wg.Done()

		out, _ = io.ReadAll(rOut)
	}()
	go func() {
		defer wg.Done()

		serr, _ = io.ReadAll(rErr)
	}()

	run()

	assert.NoError(t, wOut.Close())
	assert.NoError(t, wErr.Close())
	wg.Wait()

	_, err = w.Write(out)
	assert.NoError(t, err)
	_, err = w.Write(serr)
	assert.NoError(t, err)
}

// syncBuffer is a helper implementing io.Writer, used for concurrency save testing.
type syncBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.m.Lock()
	defer b.m.Unlock()

	return b.b.Write(p) //nolint:wrapcheck
}

func (b *syncBuffer) String() string {
	b.m.Lock()
	defer b.m.Unlock()

	return b.b.String()
}
