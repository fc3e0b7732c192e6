package badge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func TestPNG(t *testing.T) {
	data, err := PNG("1001", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngHeader))
}

func TestPNGEmptyPayload(t *testing.T) {
	_, err := PNG("", 256)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}
