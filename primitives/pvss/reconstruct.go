package pvss

import (
	"math/big"

	"github.com/shaih/go-pvss/cryptoerr"
	"github.com/shaih/go-pvss/primitives/curve"
	"github.com/shaih/go-pvss/primitives/shamir"
)

// DecryptedShare is the pair of plaintext shares of one shareholder
type DecryptedShare struct {
	Index int      // shareholder index in {1, ..., n}
	S1    *big.Int // f(Index)
	S2    *big.Int // g(Index)
}

// Reconstruct recovers the secret and the randomness from decrypted shares.
//
// Shares may contain invalid shares, which are skipped. It must contain at
// least t valid shares with distinct indices; otherwise a below threshold
// error is returned.
func Reconstruct(ps *PublicSharing, shares []DecryptedShare) (secret, randomness *big.Int, err error) {
	t := ps.Threshold

	var valid1, valid2 []shamir.Share
	seen := make(map[int]bool)
	for _, s := range shares {
		if len(valid1) == t {
			break
		}
		if seen[s.Index] || !ps.VerifyDecryptedShares(s.Index-1, s.S1, s.S2) {
			continue
		}
		seen[s.Index] = true
		valid1 = append(valid1, shamir.NewShare(s.Index, s.S1))
		valid2 = append(valid2, shamir.NewShare(s.Index, s.S2))
	}

	if len(valid1) < t {
		return nil, nil, cryptoerr.Errorf(cryptoerr.BelowThreshold, "pvss.Reconstruct",
			"insufficient valid shares: %d < %d", len(valid1), t)
	}

	shamir.SortByX(valid1)
	shamir.SortByX(valid2)

	secret, err = shamir.Reconstruct(valid1, curve.Order)
	if err != nil {
		return nil, nil, err
	}
	randomness, err = shamir.Reconstruct(valid2, curve.Order)
	if err != nil {
		return nil, nil, err
	}
	return secret, randomness, nil
}
