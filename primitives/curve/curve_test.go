package curve

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerators(t *testing.T) {
	assert := assert.New(t)

	assert.True(G.IsOnCurve())
	assert.True(H.IsOnCurve())
	assert.False(G.Equal(H), "G and H must be distinct")
	assert.True(Mult(H, Order).IsInfinity(), "H has order r")
}

func TestHashToCurveDeterministic(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	p, err := HashToCurve([]byte("some input"))
	require.NoError(err)
	q, err := HashToCurve([]byte("some input"))
	require.NoError(err)
	r, err := HashToCurve([]byte("another input"))
	require.NoError(err)

	assert.True(p.IsOnCurve())
	assert.True(p.Equal(q))
	assert.False(p.Equal(r))
}

func TestGroupLaw(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	a, err := RandomScalar()
	require.NoError(err)
	b, err := RandomScalar()
	require.NoError(err)

	// (a+b)G = aG + bG
	sum := new(big.Int).Add(a, b)
	assert.True(MultBase(sum).Equal(Add(MultBase(a), MultBase(b))))

	// aG - aG = O
	assert.True(Sub(MultBase(a), MultBase(a)).IsInfinity())
	assert.True(Add(MultBase(a), Negate(MultBase(a))).IsInfinity())

	// O + P = P
	assert.True(Add(Infinity, H).Equal(H))
	assert.True(Add(H, Infinity).Equal(H))

	// negative scalars are reduced mod r
	neg := new(big.Int).Neg(a)
	assert.True(Mult(G, neg).Equal(Negate(MultBase(a))))

	// Mult and MultBase agree
	assert.True(Mult(G, a).Equal(MultBase(a)))
}

func TestPointEncoding(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	a, err := RandomScalar()
	require.NoError(err)
	p := DoubleMultBaseGH(a, big.NewInt(3))

	b := p.Bytes()
	assert.Len(b, PointBytesLen)

	q, err := PointFromBytes(b)
	require.NoError(err)
	assert.True(p.Equal(q))
	assert.Equal(p.Key(), q.Key())

	inf, err := PointFromBytes(Infinity.Bytes())
	require.NoError(err)
	assert.True(inf.IsInfinity())

	// flip a bit of y: no longer on the curve
	b[64] ^= 1
	_, err = PointFromBytes(b)
	assert.Error(err)
}

func TestIsOnCurve(t *testing.T) {
	assert := assert.New(t)

	assert.False(Infinity.IsOnCurve())
	assert.False(NewPoint(big.NewInt(1), big.NewInt(1)).IsOnCurve())
	assert.True(NewPoint(G.X, G.Y).IsOnCurve())
}
