package common

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSessionIDFormat(t *testing.T) {
	id, err := NewSessionID()
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^session_\d+_[0-9a-z]{9}$`), id)
}

func TestNewAnalysisIDUnique(t *testing.T) {
	re := regexp.MustCompile(`^analysis_\d+$`)
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewAnalysisID()
		require.Regexp(t, re, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate analysis id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewULID(t *testing.T) {
	a, err := NewULID()
	require.NoError(t, err)
	b, err := NewULID()
	require.NoError(t, err)
	require.Len(t, a, 26)
	require.NotEqual(t, a, b)
}
