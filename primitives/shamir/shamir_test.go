package shamir

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/shaih/go-pvss/cryptoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// secp256k1 group order
var testPrime, _ = new(big.Int).SetString(
	"FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)

func TestShamirSecretSharing(t *testing.T) {
	m := big.NewInt(123456789)

	shares, err := GenerateShares(m, 2, 4, testPrime)
	require.NoError(t, err)

	reconstruct := []Share{shares[2], shares[1]}

	res, err := Reconstruct(reconstruct, testPrime)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(res), "Secret is recovered")
}

func TestShamirAnySubset(t *testing.T) {
	for _, c := range []struct{ t, n int }{{1, 1}, {1, 3}, {3, 5}, {5, 5}, {7, 12}} {
		t.Run(fmt.Sprintf("n=%d,t=%d", c.n, c.t), func(t *testing.T) {
			m := big.NewInt(42)
			shares, err := GenerateShares(m, c.t, c.n, testPrime)
			require.NoError(t, err)
			require.Len(t, shares, c.n)

			// the last t shares, in reverse order
			subset := make([]Share, 0, c.t)
			for i := c.n - 1; i >= c.n-c.t; i-- {
				subset = append(subset, shares[i])
			}
			res, err := Reconstruct(subset, testPrime)
			require.NoError(t, err)
			assert.Equal(t, 0, m.Cmp(res))

			SortByX(subset)
			for i := 1; i < len(subset); i++ {
				assert.True(t, subset[i-1].X.Cmp(subset[i].X) < 0)
			}
		})
	}
}

func TestShamirInvalidParameters(t *testing.T) {
	_, err := GenerateShares(big.NewInt(1), 4, 3, testPrime)
	assert.True(t, errors.Is(err, cryptoerr.ErrConfiguration))

	_, err = GenerateShares(big.NewInt(1), 0, 3, testPrime)
	assert.True(t, errors.Is(err, cryptoerr.ErrConfiguration))

	_, err = Reconstruct(nil, testPrime)
	assert.True(t, errors.Is(err, cryptoerr.ErrBelowThreshold))

	dup := []Share{NewShare(1, big.NewInt(5)), NewShare(1, big.NewInt(6))}
	_, err = Reconstruct(dup, testPrime)
	assert.True(t, errors.Is(err, cryptoerr.ErrConfiguration))
}

func TestPolynomialEvaluate(t *testing.T) {
	// f(x) = 3 + 2x + x^2 mod 7
	f := &Polynomial{
		Coefficients: []*big.Int{big.NewInt(3), big.NewInt(2), big.NewInt(1)},
		Modulus:      big.NewInt(7),
	}
	assert.Equal(t, 2, f.Degree())
	assert.Equal(t, int64(3), f.Evaluate(big.NewInt(0)).Int64())
	assert.Equal(t, int64(6), f.Evaluate(big.NewInt(1)).Int64())
	assert.Equal(t, int64(4), f.Evaluate(big.NewInt(2)).Int64()) // 11 mod 7
}

func TestIntegerLagrangeCoefficient(t *testing.T) {
	// Over the integers, sum_i L_i * f(x_i) = delta * f(0) for an integer polynomial.
	n := 6
	delta := Factorial(n)
	assert.Equal(t, int64(720), delta.Int64())

	coeffs := []int64{17, -5, 3}
	f := func(x int64) *big.Int {
		y := int64(0)
		for k := len(coeffs) - 1; k >= 0; k-- {
			y = y*x + coeffs[k]
		}
		return big.NewInt(y)
	}

	xs := []*big.Int{big.NewInt(2), big.NewInt(5), big.NewInt(6)}
	sum := new(big.Int)
	for i := range xs {
		l, err := IntegerLagrangeCoefficient(xs, i, delta)
		require.NoError(t, err)
		sum.Add(sum, new(big.Int).Mul(l, f(xs[i].Int64())))
	}
	assert.Equal(t, 0, sum.Cmp(new(big.Int).Mul(delta, big.NewInt(17))))

	// 1 is not a multiple of the denominators
	_, err := IntegerLagrangeCoefficient(xs, 0, big.NewInt(1))
	assert.True(t, errors.Is(err, cryptoerr.ErrArithmetic))
}
