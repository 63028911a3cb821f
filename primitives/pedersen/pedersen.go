package pedersen

import (
	"fmt"
	"math/big"

	"github.com/shaih/go-pvss/cryptoerr"
	"github.com/shaih/go-pvss/primitives/curve"
)

// Commitment is a point g^a * h^b (written additively a*G + b*H)
type Commitment = curve.Point

// Commit computes the Pedersen commitment g^a * h^b to (a, b).
// It is perfectly hiding as long as log_G(H) is unknown and computationally binding.
func Commit(a, b *big.Int) Commitment {
	return curve.DoubleMultBaseGH(a, b)
}

// VerifyCommitment checks that c opens to (a, b)
func VerifyCommitment(c Commitment, a, b *big.Int) bool {
	return c.Equal(Commit(a, b))
}

// CommitPolynomials commits coefficient-wise to the two polynomials
// f(x) = a_0 + ... + a_{t-1} x^{t-1} and g(x) = b_0 + ... + b_{t-1} x^{t-1}:
// commitments[k] = g^{a_k} * h^{b_k}
func CommitPolynomials(a, b []*big.Int) ([]Commitment, error) {
	if len(a) != len(b) {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, "pedersen.CommitPolynomials",
			"coefficient vectors have lengths %d and %d", len(a), len(b))
	}
	commitments := make([]Commitment, len(a))
	for k := range a {
		commitments[k] = Commit(a[k], b[k])
	}
	return commitments, nil
}

// checkCommitments fails on empty input, on the point at infinity, and on
// points that are not on the curve
func checkCommitments(commitments []Commitment) error {
	if len(commitments) == 0 {
		return fmt.Errorf("no commitments")
	}
	for k, c := range commitments {
		if c.IsInfinity() {
			return fmt.Errorf("commitments[%d] is the point at infinity", k)
		}
		if !c.IsOnCurve() {
			return fmt.Errorf("commitments[%d] is not on the curve", k)
		}
	}
	return nil
}

// Interpolate computes in the exponent the commitment to the evaluation at x
// of the committed polynomials: sum_k commitments[k] * x^k.
//
// It fails on malformed input (a commitment that is the point at infinity or
// not on the curve).
func Interpolate(commitments []Commitment, x *big.Int) (Commitment, error) {
	if err := checkCommitments(commitments); err != nil {
		return curve.Infinity, cryptoerr.Wrap(cryptoerr.Configuration, "pedersen.Interpolate", err)
	}

	// Horner: (((C_{t-1}) x + C_{t-2}) x + ...) x + C_0
	t := len(commitments)
	xr := new(big.Int).Mod(x, curve.Order)
	result := commitments[t-1]
	for k := t - 2; k >= 0; k-- {
		result = curve.Mult(result, xr)
		result = curve.Add(result, commitments[k])
	}
	return result, nil
}

// InterpolateIndex is Interpolate at the integer position x
func InterpolateIndex(commitments []Commitment, x int) (Commitment, error) {
	return Interpolate(commitments, big.NewInt(int64(x)))
}
