// Package pvss implements publicly verifiable secret sharing with Paillier
// encrypted shares.
//
// The dealer shares a secret s and a blinding value u with two random
// polynomials f and g of degree t-1 (f(0) = s, g(0) = u). It publishes
// Pedersen commitments to the coefficients of f and g, and for each
// shareholder i in {1, ..., n} the encryptions of f(i) and g(i) under the
// shareholder's Paillier key together with a proof that they open the
// commitment interpolated at i.
//
// Anyone can verify a PublicSharing. Only shareholder i can decrypt its
// two shares.
package pvss

import (
	"errors"
	"fmt"
	"math/big"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shaih/go-pvss/cryptoerr"
	"github.com/shaih/go-pvss/primitives/curve"
	"github.com/shaih/go-pvss/primitives/nizk"
	"github.com/shaih/go-pvss/primitives/paillier"
	"github.com/shaih/go-pvss/primitives/pedersen"
	"github.com/shaih/go-pvss/primitives/shamir"
)

// PublicSharing is the public output of the dealer.
// Index i in [0, NumShares) of the slices belongs to shareholder i+1.
type PublicSharing struct {
	Threshold           int
	NumShares           int
	PedersenCommitments []pedersen.Commitment // commitments to the coefficients of f and g
	EncryptedShares1    []*big.Int            // EncryptedShares1[i] = Enc_i(f(i+1))
	EncryptedShares2    []*big.Int            // EncryptedShares2[i] = Enc_i(g(i+1))
	Proofs              []nizk.PedersenProof
}

// NewPublicSharing checks that the lengths are consistent and returns the sharing.
// Slices are not copied.
func NewPublicSharing(
	threshold int,
	numShares int,
	commitments []pedersen.Commitment,
	encryptedShares1 []*big.Int,
	encryptedShares2 []*big.Int,
	proofs []nizk.PedersenProof,
) (*PublicSharing, error) {
	const op = "pvss.NewPublicSharing"

	if threshold < 1 || threshold > numShares {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op,
			"invalid threshold %d for %d shares", threshold, numShares)
	}
	if len(commitments) != threshold {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op,
			"number of commitments is %d not equal to t = %d", len(commitments), threshold)
	}
	if len(encryptedShares1) != numShares ||
		len(encryptedShares2) != numShares ||
		len(proofs) != numShares {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op,
			"expected %d encrypted shares and proofs, got %d, %d and %d",
			numShares, len(encryptedShares1), len(encryptedShares2), len(proofs))
	}
	for k, c := range commitments {
		if !c.IsOnCurve() {
			return nil, cryptoerr.Errorf(cryptoerr.Configuration, op,
				"commitments[%d] is not a point of the curve", k)
		}
	}

	return &PublicSharing{
		Threshold:           threshold,
		NumShares:           numShares,
		PedersenCommitments: commitments,
		EncryptedShares1:    encryptedShares1,
		EncryptedShares2:    encryptedShares2,
		Proofs:              proofs,
	}, nil
}

// ShareSecretAndRandomness performs the dealer's step: it shares secret and
// randomness t-of-n where n = len(keys), encrypting the shares of
// shareholder i+1 under keys[i].
func ShareSecretAndRandomness(
	threshold int,
	secret *big.Int,
	randomness *big.Int,
	keys []*paillier.PublicKey,
) (*PublicSharing, error) {
	const op = "pvss.ShareSecretAndRandomness"

	n := len(keys)
	if threshold < 1 || threshold > n {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op,
			"invalid share generation parameters t=%d n=%d", threshold, n)
	}
	for i, pk := range keys {
		if pk == nil {
			return nil, cryptoerr.Errorf(cryptoerr.Configuration, op, "missing key of shareholder %d", i+1)
		}
	}

	// f(x) = a_0 + a_1 x + ... + a_{t-1} x^{t-1}, a_0 = secret
	f, err := shamir.RandomPolynomial(secret, threshold-1, curve.Order)
	if err != nil {
		return nil, err
	}
	// g(x) = b_0 + b_1 x + ... + b_{t-1} x^{t-1}, b_0 = randomness
	g, err := shamir.RandomPolynomial(randomness, threshold-1, curve.Order)
	if err != nil {
		return nil, err
	}

	commitments, err := pedersen.CommitPolynomials(f.Coefficients, g.Coefficients)
	if err != nil {
		return nil, err
	}

	shares1 := f.Shares(n)
	shares2 := g.Shares(n)

	enc1 := make([]*big.Int, n)
	enc2 := make([]*big.Int, n)
	proofs := make([]nizk.PedersenProof, n)

	for i := 0; i < n; i++ {
		var r1, r2 *big.Int
		enc1[i], r1, err = keys[i].EncryptRandom(shares1[i].Y)
		if err != nil {
			return nil, fmt.Errorf("error encrypting share %d: %w", i+1, err)
		}
		enc2[i], r2, err = keys[i].EncryptRandom(shares2[i].Y)
		if err != nil {
			return nil, fmt.Errorf("error encrypting share %d: %w", i+1, err)
		}

		// f(i+1) G + g(i+1) H is also the commitment interpolated at i+1
		stmt := nizk.PedersenStatement{
			PK: keys[i],
			Ea: enc1[i],
			Eb: enc2[i],
			S:  pedersen.Commit(shares1[i].Y, shares2[i].Y),
		}
		wit := nizk.PedersenWitness{
			A:  shares1[i].Y,
			B:  shares2[i].Y,
			R1: r1,
			R2: r2,
		}
		proofs[i], err = nizk.PedersenProve(stmt, wit)
		if err != nil {
			return nil, fmt.Errorf("error proving share %d: %w", i+1, err)
		}
	}

	return NewPublicSharing(threshold, n, commitments, enc1, enc2, proofs)
}

func (ps *PublicSharing) checkIndex(i int) error {
	if i < 0 || i >= ps.NumShares {
		return fmt.Errorf("invalid share index %d (not between 0 and %d)", i, ps.NumShares-1)
	}
	return nil
}

// ShareCommitment returns the commitment to (f(i+1), g(i+1)) obtained by
// interpolation in the exponent
func (ps *PublicSharing) ShareCommitment(i int) (pedersen.Commitment, error) {
	if err := ps.checkIndex(i); err != nil {
		return curve.Infinity, cryptoerr.Wrap(cryptoerr.Configuration, "pvss.ShareCommitment", err)
	}
	return pedersen.InterpolateIndex(ps.PedersenCommitments, i+1)
}

// VerifyShare checks the proof of shareholder i+1 against its key pk
func (ps *PublicSharing) VerifyShare(i int, pk *paillier.PublicKey) bool {
	if pk == nil {
		return false
	}
	s, err := ps.ShareCommitment(i)
	if err != nil {
		return false
	}

	stmt := nizk.PedersenStatement{
		PK: pk,
		Ea: ps.EncryptedShares1[i],
		Eb: ps.EncryptedShares2[i],
		S:  s,
	}
	return nizk.PedersenVerify(stmt, ps.Proofs[i])
}

var errInvalidShare = errors.New("invalid share")

// VerifyAllShares returns true if every share verifies. keys[i] is the key
// of shareholder i+1. Shares are verified concurrently.
func (ps *PublicSharing) VerifyAllShares(keys []*paillier.PublicKey) bool {
	if len(keys) != ps.NumShares {
		return false
	}

	var g errgroup.Group
	for i := range keys {
		i := i
		g.Go(func() error {
			if !ps.VerifyShare(i, keys[i]) {
				log.WithFields(log.Fields{
					"shareholder": i + 1,
				}).Warn("share failed verification")
				return errInvalidShare
			}
			return nil
		})
	}
	return g.Wait() == nil
}

// SecretCommitment returns secret G + randomness H, the commitment
// interpolated at 0
func (ps *PublicSharing) SecretCommitment() (pedersen.Commitment, error) {
	return pedersen.InterpolateIndex(ps.PedersenCommitments, 0)
}

func (ps *PublicSharing) accessShare(op string, i int, sk *paillier.PrivateKey, encrypted []*big.Int) (shamir.Share, error) {
	if err := ps.checkIndex(i); err != nil {
		return shamir.Share{}, cryptoerr.Wrap(cryptoerr.Configuration, op, err)
	}
	y, err := sk.Decrypt(encrypted[i])
	if err != nil {
		return shamir.Share{}, cryptoerr.Wrap(cryptoerr.Arithmetic, op,
			fmt.Errorf("error decrypting share %d: %w", i+1, err))
	}
	return shamir.NewShare(i+1, y), nil
}

// AccessShare1 decrypts the share of the secret of shareholder i+1
func (ps *PublicSharing) AccessShare1(i int, sk *paillier.PrivateKey) (shamir.Share, error) {
	return ps.accessShare("pvss.AccessShare1", i, sk, ps.EncryptedShares1)
}

// AccessShare2 decrypts the share of the randomness of shareholder i+1
func (ps *PublicSharing) AccessShare2(i int, sk *paillier.PrivateKey) (shamir.Share, error) {
	return ps.accessShare("pvss.AccessShare2", i, sk, ps.EncryptedShares2)
}

// AccessShares decrypts both shares of shareholder i+1 and checks them
// against the commitments. A key other than the shareholder's gives an
// arithmetic error.
func (ps *PublicSharing) AccessShares(i int, sk *paillier.PrivateKey) (DecryptedShare, error) {
	const op = "pvss.AccessShares"
	s1, err := ps.accessShare(op, i, sk, ps.EncryptedShares1)
	if err != nil {
		return DecryptedShare{}, err
	}
	s2, err := ps.accessShare(op, i, sk, ps.EncryptedShares2)
	if err != nil {
		return DecryptedShare{}, err
	}
	if !ps.VerifyDecryptedShares(i, s1.Y, s2.Y) {
		return DecryptedShare{}, cryptoerr.Errorf(cryptoerr.Arithmetic, op,
			"decrypted shares of shareholder %d do not open its commitment", i+1)
	}
	return DecryptedShare{Index: i + 1, S1: s1.Y, S2: s2.Y}, nil
}

// VerifyDecryptedShares checks that (s1, s2) opens the commitment of
// shareholder i+1
func (ps *PublicSharing) VerifyDecryptedShares(i int, s1, s2 *big.Int) bool {
	if s1 == nil || s2 == nil {
		return false
	}
	c, err := ps.ShareCommitment(i)
	if err != nil {
		return false
	}
	return pedersen.VerifyCommitment(c, s1, s2)
}
