package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentityKey(t *testing.T) {
	require.Equal(t, "jane doe", IdentityKey("  Jane   DOE "))
	require.Equal(t, IdentityKey("jane doe"), IdentityKey("JANE\tDoe"))
	require.Equal(t, "", IdentityKey("   "))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", Truncate("abcdef", 3))
	require.Equal(t, "abc", Truncate("abc", 10))
	require.Equal(t, "", Truncate("abc", 0))
	require.Equal(t, "héé", Truncate("héééé", 3))
}

func TestLines(t *testing.T) {
	require.Equal(t, []string{"a", "b c"}, Lines("\n  a \n\n b c\n  \n"))
	require.Empty(t, Lines(""))
}

func TestBestMatch(t *testing.T) {
	idx, score := BestMatch("acme mixer", []string{"Quarterly Summit", "Acme Mixer - June", "Golf Day"})
	require.Equal(t, 1, idx)
	require.Greater(t, score, 0.8)

	idx, _ = BestMatch("anything", nil)
	require.Equal(t, -1, idx)
}
