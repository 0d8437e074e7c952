package ids_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcore/m/internal/ids"
)

func TestNew(t *testing.T) {
	id := ids.New("com")
	require.True(t, strings.HasPrefix(id, "COM-"))
	_, err := uuid.Parse(strings.TrimPrefix(id, "COM-"))
	assert.NoError(t, err)

	assert.NotEqual(t, ids.New(ids.PrefixTrash), ids.New(ids.PrefixTrash))
}

func TestNewWithoutPrefix(t *testing.T) {
	_, err := uuid.Parse(ids.New(""))
	assert.NoError(t, err)
}
