package secrets

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get("gemini")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(" Gemini ", "secret-123"))
	got, err := s.Get("gemini")
	require.NoError(t, err)
	require.Equal(t, "secret-123", got)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.False(t, strings.Contains(string(data), "secret-123"))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, s.Delete("GEMINI"))
	_, err = s.Get("gemini")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Delete("gemini"))
}

func TestStoreRejectsBlankInput(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.EqualError(t, s.Put("", "k"), "provider required")
	require.EqualError(t, s.Put("gemini", "  "), "key required")
	_, err = s.Get(" ")
	require.Error(t, err)
}

func TestStoreCorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))
	_, err = s.Get("gemini")
	require.ErrorContains(t, err, "parse secrets file")
}
