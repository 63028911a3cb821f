package paillier

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/shaih/go-pvss/cryptoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKeyOnce sync.Once
	testPK      *PublicKey
	testSK      *PrivateKey
	testKeyErr  error
)

func testKeys(t *testing.T) (*PublicKey, *PrivateKey) {
	testKeyOnce.Do(func() {
		testPK, testSK, testKeyErr = GenerateKeyPair(2048)
	})
	require.NoError(t, testKeyErr)
	return testPK, testSK
}

func encrypt(t *testing.T, pk *PublicKey, m int64) *big.Int {
	c, _, err := pk.EncryptRandom(big.NewInt(m))
	require.NoError(t, err)
	return c
}

func decrypt(t *testing.T, sk *PrivateKey, c *big.Int) int64 {
	m, err := sk.Decrypt(c)
	require.NoError(t, err)
	return m.Int64()
}

func TestKeyGeneration(t *testing.T) {
	pk, sk := testKeys(t)

	assert.Equal(t, 2048, pk.N.BitLen())
	assert.Equal(t, 0, pk.G.Cmp(new(big.Int).Add(pk.N, big.NewInt(1))))
	assert.Equal(t, 0, pk.N2.Cmp(new(big.Int).Mul(pk.N, pk.N)))
	assert.True(t, pk.Equal(&sk.PublicKey))

	_, _, err := GenerateKeyPair(1024)
	assert.True(t, errors.Is(err, cryptoerr.ErrConfiguration), "512-bit primes are rejected")
}

func TestRoundTrip(t *testing.T) {
	pk, sk := testKeys(t)

	for _, m := range []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		new(big.Int).Sub(pk.N, big.NewInt(1)),
		new(big.Int).Rsh(pk.N, 7),
	} {
		c, r, err := pk.EncryptRandom(m)
		require.NoError(t, err)
		assert.True(t, pk.IsCiphertext(c))

		got, err := sk.Decrypt(c)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Cmp(got))

		// same randomizer, same ciphertext
		c2, err := pk.Encrypt(m, r)
		require.NoError(t, err)
		assert.Equal(t, 0, c.Cmp(c2))
	}
}

func TestHomomorphism(t *testing.T) {
	pk, sk := testKeys(t)

	enc17 := pk.Add(encrypt(t, pk, 15), encrypt(t, pk, 2))
	assert.Equal(t, int64(17), decrypt(t, sk, enc17))

	enc51, err := pk.MultiplyConstant(enc17, big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, int64(51), decrypt(t, sk, enc51))

	enc3, err := pk.DivideConstant(enc51, big.NewInt(17))
	require.NoError(t, err)
	assert.Equal(t, int64(3), decrypt(t, sk, enc3))

	enc23 := pk.AddConstant(enc3, big.NewInt(20))
	assert.Equal(t, int64(23), decrypt(t, sk, enc23))

	enc18 := pk.SubtractConstant(enc23, big.NewInt(5))
	assert.Equal(t, int64(18), decrypt(t, sk, enc18))

	enc10, err := pk.Subtract(enc18, encrypt(t, pk, 8))
	require.NoError(t, err)
	assert.Equal(t, int64(10), decrypt(t, sk, enc10))

	// wraps around mod n
	encNeg, err := pk.Subtract(encrypt(t, pk, 1), encrypt(t, pk, 2))
	require.NoError(t, err)
	m, err := sk.Decrypt(encNeg)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(new(big.Int).Sub(pk.N, big.NewInt(1))))
}

func TestArithmeticErrors(t *testing.T) {
	pk, sk := testKeys(t)

	_, err := pk.DivideConstant(encrypt(t, pk, 5), new(big.Int).Set(pk.N))
	assert.True(t, errors.Is(err, cryptoerr.ErrArithmetic))

	_, err = pk.Encrypt(big.NewInt(5), new(big.Int).Set(pk.N))
	assert.True(t, errors.Is(err, cryptoerr.ErrArithmetic))

	_, err = sk.Decrypt(new(big.Int).Set(pk.N2))
	assert.True(t, errors.Is(err, cryptoerr.ErrArithmetic))

	_, err = sk.Decrypt(big.NewInt(0))
	assert.True(t, errors.Is(err, cryptoerr.ErrArithmetic))
}
