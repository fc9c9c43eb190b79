package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFromProperties_ParsesDArguments verifies that -Dkey=value command-line
// definitions are collected and everything else is ignored.
func TestFromProperties_ParsesDArguments(t *testing.T) {
	s := FromProperties([]string{"-Ddb.host=remote", "--verbose", "-D=broken", "-Dempty="}, nil)

	v, ok := s.Lookup("db.host")
	require.True(t, ok)
	assert.Equal(t, "remote", v.Scalar)

	v, ok = s.Lookup("empty")
	require.True(t, ok)
	assert.Equal(t, "", v.Scalar)

	_, ok = s.Lookup("")
	assert.False(t, ok)
	_, ok = s.Lookup("--verbose")
	assert.False(t, ok)
}

// TestFromProperties_ExplicitPairsWin verifies that programmatically
// supplied pairs override -D definitions of the same key.
func TestFromProperties_ExplicitPairsWin(t *testing.T) {
	s := FromProperties(
		[]string{"-Ddb.host=from-args"},
		map[string]string{"db.host": "from-map", "db.port": "5433"},
	)

	v, ok := s.Lookup("db.host")
	require.True(t, ok)
	assert.Equal(t, "from-map", v.Scalar)

	v, ok = s.Lookup("db.port")
	require.True(t, ok)
	assert.Equal(t, "5433", v.Scalar)
}
