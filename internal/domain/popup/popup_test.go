package popup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("exit_intent")
	require.NoError(t, err)
	assert.Equal(t, KindExitIntent, k)

	_, err = ParseKind("banner")
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("persistent")
	require.NoError(t, err)
	assert.Equal(t, ScopePersistent, s)

	_, err = ParseScope("local")
	assert.ErrorIs(t, err, ErrUnknownScope)
}

func TestNewShownMap(t *testing.T) {
	m := NewShownMap()
	assert.Len(t, m, len(AllKinds))
	for _, k := range AllKinds {
		assert.False(t, m[k])
	}
}
