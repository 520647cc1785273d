package rad

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyHTTPStatusIsConsensusVisible(t *testing.T) {
	c := Classify(NewHTTPStatus(404))

	require.True(t, c.ConsensusVisible())
	assert.Equal(t, CodeHTTPError, c.Consensus.Code)
	assert.Equal(t, []interface{}{uint64(404)}, c.Consensus.Args)
	assert.NotNil(t, c.Diagnostic)
}

func TestClassifyDiagnosticOnly(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "http failure without status code", err: NewHTTPOther("connection refused")},
		{name: "unknown", err: Unknown()},
		{name: "overflow", err: &Error{Kind: KindOverflow}},
		{name: "map key not found", err: &Error{Kind: KindMapKeyNotFound, Key: "price"}},
		{name: "error outside the taxonomy", err: errors.New("some library failure")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.err)
			assert.False(t, c.ConsensusVisible())
			assert.Equal(t, tt.err, c.Diagnostic)
		})
	}
}

func TestClassifyNilIsTotal(t *testing.T) {
	c := Classify(nil)
	assert.False(t, c.ConsensusVisible())
	assert.Nil(t, c.Diagnostic)
}

func TestClassifySeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("while retrieving source 2: %w", NewHTTPStatus(503))
	c := Classify(wrapped)

	require.True(t, c.ConsensusVisible())
	assert.Equal(t, CodeHTTPError, c.Consensus.Code)
	assert.Equal(t, []interface{}{uint64(503)}, c.Consensus.Args)
}

func TestEncodeIsByteDeterministic(t *testing.T) {
	first, err := Classify(NewHTTPStatus(404)).Consensus.Encode()
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		again, err := Classify(NewHTTPStatus(404)).Consensus.Encode()
		require.NoError(t, err)
		assert.Equal(t, first, again, "independent classifications must encode to identical bytes")
	}
}

func TestEncodeShape(t *testing.T) {
	encoded, err := Classify(NewHTTPStatus(404)).Consensus.Encode()
	require.NoError(t, err)

	// Tag 39 prefix: 0xd8 0x27.
	require.GreaterOrEqual(t, len(encoded), 2)
	assert.Equal(t, byte(0xd8), encoded[0])
	assert.Equal(t, byte(0x27), encoded[1])

	other, err := Classify(NewHTTPStatus(500)).Consensus.Encode()
	require.NoError(t, err)
	assert.NotEqual(t, encoded, other, "different status codes must encode differently")
}

func TestConsensusPayloadNeverContainsMessageText(t *testing.T) {
	// Wrapping context differs between nodes; it must not leak into the
	// consensus encoding.
	message := "node-local context that differs between processes"
	a, err := Classify(fmt.Errorf("%s: %w", message, NewHTTPStatus(404))).Consensus.Encode()
	require.NoError(t, err)
	b, err := Classify(NewHTTPStatus(404)).Consensus.Encode()
	require.NoError(t, err)

	assert.Equal(t, b, a, "wrapping context must not change the encoding")
	assert.False(t, bytes.Contains(a, []byte(message)))
}
