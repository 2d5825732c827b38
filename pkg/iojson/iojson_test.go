package iojson

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer

	err := WriteWith(&out, &errOut, map[string]string{"key": "value"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key": "value"}`, out.String())
	assert.Empty(t, errOut.String())
}

func TestWriteWithMarshalFailure(t *testing.T) {
	var out, errOut bytes.Buffer

	// Channels cannot be marshaled.
	err := WriteWith(&out, &errOut, make(chan int))
	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "json_error")
}
