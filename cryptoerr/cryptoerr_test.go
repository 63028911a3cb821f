package cryptoerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	err := Errorf(BelowThreshold, "pvss.Reconstruct", "insufficient valid shares: %d < %d", 2, 3)
	assert.True(t, errors.Is(err, ErrBelowThreshold))
	assert.False(t, errors.Is(err, ErrConfiguration))
	assert.Equal(t, BelowThreshold, KindOf(err))
	assert.Equal(t, "pvss.Reconstruct: below threshold error: insufficient valid shares: 2 < 3", err.Error())

	wrapped := fmt.Errorf("signing: %w", err)
	assert.True(t, errors.Is(wrapped, ErrBelowThreshold))
	assert.Equal(t, BelowThreshold, KindOf(wrapped))

	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, "kind(7)", Kind(7).String())
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(Arithmetic, "op", nil))

	inner := errors.New("not invertible")
	err := Wrap(Arithmetic, "", inner)
	assert.True(t, errors.Is(err, ErrArithmetic))
	assert.True(t, errors.Is(err, inner))
	assert.Equal(t, "arithmetic error: not invertible", err.Error())
}
