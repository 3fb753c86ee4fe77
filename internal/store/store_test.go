// store_test.go — Persistence behavior shared by both store backends.
package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intStore interface {
	GetInt(key string) (int, bool, error)
	SetInt(key string, value int) error
}

func testStoreBehavior(t *testing.T, s intStore) {
	t.Helper()

	_, ok, err := s.GetInt("previous_cardano_pid.mainnet")
	require.NoError(t, err)
	assert.False(t, ok, "missing key reads as absent")

	require.NoError(t, s.SetInt("previous_cardano_pid.mainnet", 4242))
	v, ok, err := s.GetInt("previous_cardano_pid.mainnet")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4242, v)

	// Last writer wins.
	require.NoError(t, s.SetInt("previous_cardano_pid.mainnet", 4243))
	v, _, err = s.GetInt("previous_cardano_pid.mainnet")
	require.NoError(t, err)
	assert.Equal(t, 4243, v)

	// Keys are independent.
	require.NoError(t, s.SetInt("previous_cardano_pid.testnet", 7))
	v, _, err = s.GetInt("previous_cardano_pid.mainnet")
	require.NoError(t, err)
	assert.Equal(t, 4243, v)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	testStoreBehavior(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "launcher-state.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	testStoreBehavior(t, s)
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "launcher-state.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.SetInt("previous_cardano_pid.mainnet", 4242))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	v, ok, err := s.GetInt("previous_cardano_pid.mainnet")
	require.NoError(t, err)
	require.True(t, ok, "value survives launcher restarts")
	assert.Equal(t, 4242, v)
}
