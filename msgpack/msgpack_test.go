package msgpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Index int      `codec:"i"`
	Value []byte   `codec:"v"`
	List  [][]byte `codec:"l"`
}

func TestEncodeDecode(t *testing.T) {
	s := sample{Index: 3, Value: []byte{1, 2, 3}, List: [][]byte{{4}, {5, 6}}}

	b := Encode(s)
	var got sample
	require.NoError(t, Decode(b, &got))
	assert.Equal(t, s, got)

	// canonical
	assert.Equal(t, b, Encode(got))
}

func TestDecodeRejectsUnknownField(t *testing.T) {
	b := Encode(map[string]int{"i": 1, "zz": 2})
	var got sample
	assert.Error(t, Decode(b, &got))

	assert.Error(t, Decode([]byte{0xc1}, &got))
}
