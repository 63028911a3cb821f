// Package thresholdrsa implements Shoup's threshold RSA signatures.
//
// Each server holds a Shamir share s_i of the private exponent. To sign a
// message m (an integer mod N, see EncodePKCS1v15) server i publishes
// x_i = m^{2 Delta s_i} with a proof that it used the exponent committed to
// in its verification key. Any t valid responses combine into m^d.
package thresholdrsa

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"

	"github.com/shaih/go-pvss/cryptoerr"
	"github.com/shaih/go-pvss/primitives/exponent"
	"github.com/shaih/go-pvss/primitives/shamir"
	"github.com/shaih/go-pvss/primitives/transcript"
)

const (
	// nonceSlackBits is the number of bits by which the proof nonce exceeds N
	nonceSlackBits = 512
	// challengeBits bounds the proof challenge
	challengeBits = 256
)

// maxResponseBits bounds z = s_i c + r of an honest proof
func maxResponseBits(pub *ServerPublicConfiguration) int {
	return pub.N.BitLen() + nonceSlackBits + challengeBits + 1
}

// SignatureShareProof proves that a signature share was computed with the
// share behind the server's verification key
type SignatureShareProof struct {
	C *big.Int
	Z *big.Int
}

// SignatureResponse is the answer of one server to a signing request
type SignatureResponse struct {
	ServerIndex    int // in {1, ..., ServerCount}
	SignatureShare *big.Int
	Proof          SignatureShareProof
}

func checkMessage(op string, pub *ServerPublicConfiguration, m *big.Int) error {
	if m == nil || m.Sign() <= 0 || m.Cmp(pub.N) >= 0 {
		return cryptoerr.Errorf(cryptoerr.Arithmetic, op, "message out of range")
	}
	if !shamir.IsOne(new(big.Int).GCD(nil, nil, m, pub.N)) {
		return cryptoerr.Errorf(cryptoerr.Arithmetic, op, "message is not a unit mod N")
	}
	return nil
}

// xTilde returns m^{4 Delta} mod N
func xTilde(pub *ServerPublicConfiguration, m *big.Int) (*big.Int, error) {
	e := new(big.Int).Lsh(pub.Delta(), 2)
	return exponent.Public.Exp(m, e, pub.N)
}

func shareChallenge(pub *ServerPublicConfiguration, xt, vk, share, v1, x1 *big.Int) *big.Int {
	share2 := new(big.Int).Mul(share, share)
	share2.Mod(share2, pub.N)
	return transcript.New("go-pvss/thresholdrsa/share-proof").
		AppendInts(pub.V, xt, vk, share2, v1, x1).
		Challenge(nil)
}

// GenerateSignatureShare computes the signature share of cfg on m and its proof
func GenerateSignatureShare(cfg *RsaShareConfiguration, m *big.Int) (*SignatureResponse, error) {
	const op = "thresholdrsa.GenerateSignatureShare"
	pub := cfg.Public

	if err := checkMessage(op, pub, m); err != nil {
		return nil, err
	}
	i := cfg.Share.Index()
	if i < 1 || i > pub.ServerCount {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op, "invalid server index %d", i)
	}
	si := cfg.Share.Y

	// x_i = m^{2 Delta s_i}
	e := new(big.Int).Mul(pub.Delta(), si)
	e.Lsh(e, 1)
	share, err := exponent.Secure.Exp(m, e, pub.N)
	if err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, op, err)
	}

	xt, err := xTilde(pub, m)
	if err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, op, err)
	}

	bound := new(big.Int).Lsh(bigOne, uint(pub.N.BitLen()+nonceSlackBits))
	r, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return nil, fmt.Errorf("error sampling proof nonce: %w", err)
	}

	v1, err := exponent.Secure.Exp(pub.V, r, pub.N)
	if err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, op, err)
	}
	x1, err := exponent.Secure.Exp(xt, r, pub.N)
	if err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, op, err)
	}

	c := shareChallenge(pub, xt, pub.VerificationKeys[i-1], share, v1, x1)

	// z = s_i c + r
	z := new(big.Int).Mul(si, c)
	z.Add(z, r)

	return &SignatureResponse{
		ServerIndex:    i,
		SignatureShare: share,
		Proof:          SignatureShareProof{C: c, Z: z},
	}, nil
}

// ValidateSignatureResponse returns true if resp carries a correct proof
// for m under pub
func ValidateSignatureResponse(pub *ServerPublicConfiguration, m *big.Int, resp *SignatureResponse) bool {
	if resp == nil || checkMessage("", pub, m) != nil {
		return false
	}
	i := resp.ServerIndex
	if i < 1 || i > pub.ServerCount {
		return false
	}
	share := resp.SignatureShare
	if share == nil || share.Sign() <= 0 || share.Cmp(pub.N) >= 0 {
		return false
	}
	c, z := resp.Proof.C, resp.Proof.Z
	if c == nil || z == nil || c.Sign() < 0 || c.BitLen() > challengeBits ||
		z.Sign() < 0 || z.BitLen() > maxResponseBits(pub) {
		return false
	}

	xt, err := xTilde(pub, m)
	if err != nil {
		return false
	}
	negC := new(big.Int).Neg(c)

	// v' = v^z vk_i^-c
	vz, err := exponent.Public.Exp(pub.V, z, pub.N)
	if err != nil {
		return false
	}
	vkc, err := exponent.ModPowSigned(exponent.Public, pub.VerificationKeys[i-1], negC, pub.N)
	if err != nil {
		return false
	}
	v1 := vz.Mul(vz, vkc)
	v1.Mod(v1, pub.N)

	// x' = xt^z x_i^-2c
	xz, err := exponent.Public.Exp(xt, z, pub.N)
	if err != nil {
		return false
	}
	xc, err := exponent.ModPowSigned(exponent.Public, share, new(big.Int).Lsh(negC, 1), pub.N)
	if err != nil {
		return false
	}
	x1 := xz.Mul(xz, xc)
	x1.Mod(x1, pub.N)

	return shareChallenge(pub, xt, pub.VerificationKeys[i-1], share, v1, x1).Cmp(c) == 0
}

// ValidResponses returns the responses to m that pass validation, one per
// server, sorted by server index, and the responses that were rejected
func ValidResponses(
	pub *ServerPublicConfiguration,
	m *big.Int,
	responses []*SignatureResponse,
) (valid []*SignatureResponse, rejected []*SignatureResponse) {
	seen := make(map[int]bool)
	for _, resp := range responses {
		if resp != nil && seen[resp.ServerIndex] {
			continue
		}
		if !ValidateSignatureResponse(pub, m, resp) {
			rejected = append(rejected, resp)
			continue
		}
		seen[resp.ServerIndex] = true
		valid = append(valid, resp)
	}
	sort.Slice(valid, func(a, b int) bool {
		return valid[a].ServerIndex < valid[b].ServerIndex
	})
	return valid, rejected
}

// RecoverSignature combines threshold valid responses into the signature
// m^d mod N. Invalid responses are skipped. Fewer than threshold valid
// responses is a below threshold error.
func RecoverSignature(pub *ServerPublicConfiguration, m *big.Int, responses []*SignatureResponse) (*big.Int, error) {
	const op = "thresholdrsa.RecoverSignature"

	if err := checkMessage(op, pub, m); err != nil {
		return nil, err
	}

	valid, _ := ValidResponses(pub, m, responses)
	return recoverValid(pub, m, valid)
}

// recoverValid combines the first threshold of the already validated
// responses
func recoverValid(pub *ServerPublicConfiguration, m *big.Int, valid []*SignatureResponse) (*big.Int, error) {
	if len(valid) < pub.Threshold {
		return nil, cryptoerr.Errorf(cryptoerr.BelowThreshold, "thresholdrsa.RecoverSignature",
			"insufficient valid responses: %d < %d", len(valid), pub.Threshold)
	}
	return combine(pub, m, valid[:pub.Threshold])
}

// combine assumes the responses are valid and have distinct indices
func combine(pub *ServerPublicConfiguration, m *big.Int, responses []*SignatureResponse) (*big.Int, error) {
	const op = "thresholdrsa.combine"
	delta := pub.Delta()

	xs := make([]*big.Int, len(responses))
	for j, resp := range responses {
		xs[j] = big.NewInt(int64(resp.ServerIndex))
	}

	// w = prod x_i^{2 lambda_i} = m^{4 Delta^2 d}
	w := big.NewInt(1)
	for j, resp := range responses {
		lambda, err := shamir.IntegerLagrangeCoefficient(xs, j, delta)
		if err != nil {
			return nil, err
		}
		term, err := exponent.ModPowSigned(exponent.Public, resp.SignatureShare, lambda.Lsh(lambda, 1), pub.N)
		if err != nil {
			return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, op, err)
		}
		w.Mul(w, term)
		w.Mod(w, pub.N)
	}

	// 4 Delta^2 a + e b = 1
	a, b := new(big.Int), new(big.Int)
	g := new(big.Int).GCD(a, b, fourDeltaSquared(delta), pub.E)
	if !shamir.IsOne(g) {
		return nil, cryptoerr.Errorf(cryptoerr.Arithmetic, op, "gcd(4 Delta^2, e) != 1")
	}

	// y = w^a m^b
	wa, err := exponent.ModPowSigned(exponent.Public, w, a, pub.N)
	if err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, op, err)
	}
	mb, err := exponent.ModPowSigned(exponent.Public, m, b, pub.N)
	if err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, op, err)
	}
	y := wa.Mul(wa, mb)
	y.Mod(y, pub.N)

	check, err := exponent.Public.Exp(y, pub.E, pub.N)
	if err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, op, err)
	}
	if check.Cmp(m) != 0 {
		return nil, cryptoerr.Errorf(cryptoerr.Arithmetic, op, "combined signature does not verify")
	}
	return y, nil
}
