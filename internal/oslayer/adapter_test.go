// adapter_test.go — Probe and filesystem primitive behavior.
package oslayer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamishmack/daedalus/internal/logging"
)

func TestProcessAliveSelf(t *testing.T) {
	t.Parallel()
	a := New(logging.Nop())

	// The test binary itself is certainly alive.
	assert.True(t, a.ProcessAlive(os.Getpid(), ""))
	assert.False(t, a.ProcessAlive(0, ""))
	assert.False(t, a.ProcessAlive(-1, ""))
}

func TestProcessAliveNameMismatch(t *testing.T) {
	t.Parallel()
	a := New(logging.Nop())
	assert.False(t, a.ProcessAlive(os.Getpid(), "/opt/cardano/definitely-not-this-binary"))
}

func TestProcessAliveNameMatchIgnoresDirAndExe(t *testing.T) {
	t.Parallel()
	exe, err := os.Executable()
	require.NoError(t, err)
	a := New(logging.Nop())

	assert.True(t, a.ProcessAlive(os.Getpid(), exe))
	assert.True(t, a.ProcessAlive(os.Getpid(), filepath.Join("/some/other/dir", filepath.Base(exe))))
	assert.True(t, a.ProcessAlive(os.Getpid(), filepath.Base(exe)+".exe"))
}

func TestOpenAppendAppends(t *testing.T) {
	t.Parallel()
	a := New(logging.Nop())
	path := filepath.Join(t.TempDir(), "node.log")

	w, err := a.OpenAppend(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	w, err = a.OpenAppend(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := a.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestRunCommandReportsFailure(t *testing.T) {
	t.Parallel()
	a := New(logging.Nop())
	err := a.RunCommand(context.Background(), "definitely-no-such-binary-here")
	require.Error(t, err)
}

func TestExecutableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"/opt/cardano/cardano-node", "cardano-node"},
		{`cardano-node.exe`, "cardano-node"},
		{"CARDANO-NODE.EXE", "cardano-node"},
		{"node", "node"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, executableName(tc.in), tc.in)
	}
}
