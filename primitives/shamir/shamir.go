package shamir

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"

	"github.com/shaih/go-pvss/cryptoerr"
)

var bigOne = big.NewInt(1)

// Share is a point (X, Y) of a sharing polynomial.
// X is the 1-based shareholder index, Y the share value.
type Share struct {
	X *big.Int
	Y *big.Int
}

// NewShare returns the share (x, y)
func NewShare(x int, y *big.Int) Share {
	return Share{X: big.NewInt(int64(x)), Y: new(big.Int).Set(y)}
}

// Index returns X as an int
func (s Share) Index() int {
	return int(s.X.Int64())
}

// SortByX sorts shares by increasing X, in place
func SortByX(shares []Share) {
	sort.Slice(shares, func(i, j int) bool {
		return shares[i].X.Cmp(shares[j].X) < 0
	})
}

// Polynomial is f(x) = a_0 + a_1 x + ... + a_d x^d with coefficients in [0, Modulus)
type Polynomial struct {
	Coefficients []*big.Int
	Modulus      *big.Int
}

// RandomPolynomial returns a polynomial of the given degree with constant
// term a0 and the remaining coefficients uniform in [0, modulus)
func RandomPolynomial(a0 *big.Int, degree int, modulus *big.Int) (*Polynomial, error) {
	if degree < 0 {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, "shamir.RandomPolynomial",
			"negative degree %d", degree)
	}

	f := &Polynomial{
		Coefficients: make([]*big.Int, degree+1),
		Modulus:      modulus,
	}
	f.Coefficients[0] = new(big.Int).Mod(a0, modulus)

	for i := 1; i <= degree; i++ {
		c, err := rand.Int(rand.Reader, modulus)
		if err != nil {
			return nil, fmt.Errorf("error sampling coefficient %d: %w", i, err)
		}
		f.Coefficients[i] = c
	}
	return f, nil
}

// Degree returns the degree of f
func (f *Polynomial) Degree() int {
	return len(f.Coefficients) - 1
}

// Evaluate returns f(x) mod Modulus (Horner's rule)
func (f *Polynomial) Evaluate(x *big.Int) *big.Int {
	result := new(big.Int)
	for i := len(f.Coefficients) - 1; i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, f.Coefficients[i])
		result.Mod(result, f.Modulus)
	}
	return result
}

// Shares evaluates f at x = 1, ..., n
func (f *Polynomial) Shares(n int) []Share {
	shares := make([]Share, n)
	for i := 1; i <= n; i++ {
		x := big.NewInt(int64(i))
		shares[i-1] = Share{X: x, Y: f.Evaluate(x)}
	}
	return shares
}

// GenerateShares creates shares of t-of-n Shamir secret sharing for secret
// over the integers mod modulus
func GenerateShares(secret *big.Int, t int, n int, modulus *big.Int) ([]Share, error) {
	if t < 1 || n < 1 || t > n {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, "shamir.GenerateShares",
			"invalid share generation parameters t=%d n=%d", t, n)
	}
	f, err := RandomPolynomial(secret, t-1, modulus)
	if err != nil {
		return nil, err
	}
	return f.Shares(n), nil
}

func xCoords(shares []Share) []*big.Int {
	xs := make([]*big.Int, len(shares))
	for i := range shares {
		xs[i] = shares[i].X
	}
	return xs
}

func checkDistinct(xs []*big.Int) error {
	seen := make(map[string]bool, len(xs))
	for _, x := range xs {
		k := x.String()
		if seen[k] {
			return fmt.Errorf("duplicate x-coordinate %s", k)
		}
		seen[k] = true
	}
	return nil
}

// LagrangeCoefficient returns the i-th Lagrange coefficient for the
// x-coordinates xs evaluated at x, mod the prime p:
// prod_{j != i} (x - xs[j]) / (xs[i] - xs[j])
func LagrangeCoefficient(xs []*big.Int, i int, x *big.Int, p *big.Int) (*big.Int, error) {
	num := big.NewInt(1)
	den := big.NewInt(1)
	tmp := new(big.Int)
	for j := range xs {
		if j == i {
			continue
		}
		num.Mul(num, tmp.Sub(x, xs[j]))
		num.Mod(num, p)
		den.Mul(den, tmp.Sub(xs[i], xs[j]))
		den.Mod(den, p)
	}
	inv := new(big.Int).ModInverse(den, p)
	if inv == nil {
		return nil, cryptoerr.Errorf(cryptoerr.Arithmetic, "shamir.LagrangeCoefficient",
			"denominator is not invertible")
	}
	return num.Mul(num, inv).Mod(num, p), nil
}

// Interpolate evaluates at x the unique polynomial of degree < len(shares)
// going through the shares, mod the prime p
func Interpolate(shares []Share, x *big.Int, p *big.Int) (*big.Int, error) {
	if len(shares) == 0 {
		return nil, cryptoerr.Errorf(cryptoerr.BelowThreshold, "shamir.Interpolate", "no shares")
	}
	xs := xCoords(shares)
	if err := checkDistinct(xs); err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Configuration, "shamir.Interpolate", err)
	}

	sum := new(big.Int)
	for i := range shares {
		l, err := LagrangeCoefficient(xs, i, x, p)
		if err != nil {
			return nil, err
		}
		sum.Add(sum, l.Mul(l, shares[i].Y))
		sum.Mod(sum, p)
	}
	return sum, nil
}

// Reconstruct takes t shares and interpolates at 0 to obtain the secret
func Reconstruct(shares []Share, p *big.Int) (*big.Int, error) {
	return Interpolate(shares, new(big.Int), p)
}

// Factorial returns n!
func Factorial(n int) *big.Int {
	return new(big.Int).MulRange(1, int64(n))
}

// IntegerLagrangeCoefficient returns delta times the i-th Lagrange
// coefficient at zero over the integers:
// delta * prod_{j != i} (0 - xs[j]) / (xs[i] - xs[j]).
//
// When delta = n! and the xs are distinct elements of {1, ..., n} the
// division is exact; otherwise an arithmetic error is returned.
func IntegerLagrangeCoefficient(xs []*big.Int, i int, delta *big.Int) (*big.Int, error) {
	if err := checkDistinct(xs); err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Configuration, "shamir.IntegerLagrangeCoefficient", err)
	}

	num := new(big.Int).Set(delta)
	den := big.NewInt(1)
	tmp := new(big.Int)
	for j := range xs {
		if j == i {
			continue
		}
		num.Mul(num, tmp.Neg(xs[j]))
		den.Mul(den, tmp.Sub(xs[i], xs[j]))
	}

	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() != 0 {
		return nil, cryptoerr.Errorf(cryptoerr.Arithmetic, "shamir.IntegerLagrangeCoefficient",
			"delta is not a multiple of the denominator")
	}
	return q, nil
}

// IsOne reports whether x == 1
func IsOne(x *big.Int) bool {
	return x.Cmp(bigOne) == 0
}
