// Package nizk implements non-interactive zero-knowledge proofs that Paillier
// ciphertexts and a commitment over the curve group hide the same values.
//
// Both proofs are Fiat-Shamir sigma protocols. The challenge is the SHA-256
// digest of the transcript (see primitives/transcript) reduced mod T.
// Responses are integers, not reduced mod the group order, so that they can
// be checked against both the Paillier plaintext space and the group.
//
// Proving functions do not check the witness. Verification functions never
// fail with an error: a malformed or invalid proof makes them return false.
package nizk

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/shaih/go-pvss/primitives/curve"
	"github.com/shaih/go-pvss/primitives/exponent"
	"github.com/shaih/go-pvss/primitives/paillier"
)

// Security parameters
const (
	// ChallengeBits is k, the challenge length of the Feldman-variant proof
	ChallengeBits = 128
	// StatisticalBits is l, the statistical zero-knowledge slack
	StatisticalBits = 128
	// PedersenChallengeBits is the challenge length of the Pedersen-variant proof
	PedersenChallengeBits = 256
)

var (
	// feldmanT = 2^k
	feldmanT = new(big.Int).Lsh(big.NewInt(1), ChallengeBits)
	// feldmanZ = 2^(k+l+1) * r
	feldmanZ = new(big.Int).Lsh(curve.Order, ChallengeBits+StatisticalBits+1)

	// pedersenT = 2^256
	pedersenT = new(big.Int).Lsh(big.NewInt(1), PedersenChallengeBits)
	// pedersenZ = 2^257 * r
	pedersenZ = new(big.Int).Lsh(curve.Order, PedersenChallengeBits+1)
	// pedersenBound = Z + T*r. A response is alpha + c*a with alpha < Z, c < T, a < r.
	pedersenBound = new(big.Int).Add(pedersenZ, new(big.Int).Mul(pedersenT, curve.Order))
)

// FeldmanBound returns Z for the Feldman-variant proof
func FeldmanBound() *big.Int {
	return new(big.Int).Set(feldmanZ)
}

// PedersenBound returns the upper bound on the responses of the
// Pedersen-variant proof
func PedersenBound() *big.Int {
	return new(big.Int).Set(pedersenBound)
}

func randomBelow(bound *big.Int) (*big.Int, error) {
	x, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return nil, fmt.Errorf("error sampling nonce: %w", err)
	}
	return x, nil
}

func inRange(z, bound *big.Int) bool {
	return z != nil && z.Sign() >= 0 && z.Cmp(bound) < 0
}

// randomizerResponse computes a * r^c mod n^2. r is secret.
func randomizerResponse(pk *paillier.PublicKey, a, r, c *big.Int) (*big.Int, error) {
	rc, err := exponent.Secure.Exp(r, c, pk.N2)
	if err != nil {
		return nil, err
	}
	z := rc.Mul(rc, a)
	return z.Mod(z, pk.N2), nil
}

// checkEncryption checks Enc(z, zr) == e^c * e1 mod n^2
func checkEncryption(pk *paillier.PublicKey, z, zr, e, e1, c *big.Int) bool {
	if !pk.IsCiphertext(e) || !pk.IsCiphertext(e1) {
		return false
	}
	lhs, err := pk.Encrypt(z, zr)
	if err != nil {
		return false
	}
	ec, err := pk.MultiplyConstant(e, c)
	if err != nil {
		return false
	}
	return lhs.Cmp(pk.Add(ec, e1)) == 0
}
