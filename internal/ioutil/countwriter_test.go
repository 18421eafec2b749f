package ioutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountWriter(t *testing.T) {
	var buf bytes.Buffer
	cw := &CountWriter{W: &buf}

	n, err := cw.Write([]byte("GAP_EVT_CONNECTED\n"))
	require.NoError(t, err)
	assert.Equal(t, 18, n)

	_, err = cw.Write([]byte("a\nb\n"))
	require.NoError(t, err)

	assert.Equal(t, int64(22), cw.Count)
	assert.Equal(t, int64(3), cw.Lines)
	assert.Equal(t, "GAP_EVT_CONNECTED\na\nb\n", buf.String())
}
