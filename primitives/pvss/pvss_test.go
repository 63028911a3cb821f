package pvss

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/shaih/go-pvss/cryptoerr"
	"github.com/shaih/go-pvss/primitives/curve"
	"github.com/shaih/go-pvss/primitives/nizk"
	"github.com/shaih/go-pvss/primitives/paillier"
	"github.com/shaih/go-pvss/primitives/pedersen"
	"github.com/shaih/go-pvss/primitives/shamir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxTestShareholders = 7

var (
	testKeysOnce sync.Once
	testPKs      []*paillier.PublicKey
	testSKs      []*paillier.PrivateKey
	testKeysErr  error
)

// testKeys returns n key pairs, generated once for the whole package
func testKeys(t *testing.T, n int) ([]*paillier.PublicKey, []*paillier.PrivateKey) {
	testKeysOnce.Do(func() {
		testPKs = make([]*paillier.PublicKey, maxTestShareholders)
		testSKs = make([]*paillier.PrivateKey, maxTestShareholders)
		for i := 0; i < maxTestShareholders; i++ {
			testPKs[i], testSKs[i], testKeysErr = paillier.GenerateKeyPair(2048)
			if testKeysErr != nil {
				return
			}
		}
	})
	require.NoError(t, testKeysErr)
	require.LessOrEqual(t, n, maxTestShareholders)
	return testPKs[:n], testSKs[:n]
}

func randomScalar(t *testing.T) *big.Int {
	s, err := curve.RandomScalar()
	require.NoError(t, err)
	return s
}

func TestPVSS(t *testing.T) {
	testCases := []struct {
		n int
		t int
	}{
		{1, 1},
		{3, 2},
		{5, 3},
		{5, 5},
		{7, 4},
	}

	for _, tc := range testCases {
		if testing.Short() && tc.n > 5 {
			continue
		}
		t.Run(fmt.Sprintf("n=%d,t=%d", tc.n, tc.t), func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			pks, sks := testKeys(t, tc.n)
			secret := randomScalar(t)
			randomness := randomScalar(t)

			ps, err := ShareSecretAndRandomness(tc.t, secret, randomness, pks)
			require.NoError(err)
			require.Equal(tc.t, ps.Threshold)
			require.Equal(tc.n, ps.NumShares)

			assert.True(ps.VerifyAllShares(pks), "honestly generated sharing verifies")

			c, err := ps.SecretCommitment()
			require.NoError(err)
			assert.True(pedersen.VerifyCommitment(c, secret, randomness),
				"secret commitment is secret G + randomness H")

			// decrypt the last t shares
			var shares1, shares2 []shamir.Share
			var decrypted []DecryptedShare
			for i := tc.n - tc.t; i < tc.n; i++ {
				s1, err := ps.AccessShare1(i, sks[i])
				require.NoError(err)
				s2, err := ps.AccessShare2(i, sks[i])
				require.NoError(err)
				assert.Equal(i+1, s1.Index())
				assert.True(ps.VerifyDecryptedShares(i, s1.Y, s2.Y))

				shares1 = append(shares1, s1)
				shares2 = append(shares2, s2)
				decrypted = append(decrypted, DecryptedShare{Index: i + 1, S1: s1.Y, S2: s2.Y})
			}

			recS, err := shamir.Reconstruct(shares1, curve.Order)
			require.NoError(err)
			assert.Equal(0, secret.Cmp(recS), "secret is recovered from t shares")
			recR, err := shamir.Reconstruct(shares2, curve.Order)
			require.NoError(err)
			assert.Equal(0, randomness.Cmp(recR), "randomness is recovered from t shares")

			recS, recR, err = Reconstruct(ps, decrypted)
			require.NoError(err)
			assert.Equal(0, secret.Cmp(recS))
			assert.Equal(0, randomness.Cmp(recR))
		})
	}
}

func TestTamperedShare(t *testing.T) {
	pks, _ := testKeys(t, 4)

	ps, err := ShareSecretAndRandomness(3, big.NewInt(42), randomScalar(t), pks)
	require.NoError(t, err)

	ps.EncryptedShares1[1] = pks[1].AddConstant(ps.EncryptedShares1[1], big.NewInt(1))

	for i := range pks {
		if i == 1 {
			assert.False(t, ps.VerifyShare(i, pks[i]), "tampered share %d fails", i)
		} else {
			assert.True(t, ps.VerifyShare(i, pks[i]), "untampered share %d verifies", i)
		}
	}
	assert.False(t, ps.VerifyAllShares(pks))

	// wrong key
	assert.False(t, ps.VerifyShare(0, pks[2]))
	// wrong index
	assert.False(t, ps.VerifyShare(4, pks[0]))
	assert.False(t, ps.VerifyShare(-1, pks[0]))
	// wrong number of keys
	assert.False(t, ps.VerifyAllShares(pks[:3]))
}

func TestReconstructSkipsInvalidShares(t *testing.T) {
	pks, sks := testKeys(t, 4)
	secret := randomScalar(t)

	ps, err := ShareSecretAndRandomness(2, secret, randomScalar(t), pks)
	require.NoError(t, err)

	var decrypted []DecryptedShare
	for i := range pks {
		s, err := ps.AccessShares(i, sks[i])
		require.NoError(t, err)
		assert.Equal(t, i+1, s.Index)
		decrypted = append(decrypted, s)
	}

	// corrupt the first two and duplicate the third
	decrypted[0].S1 = new(big.Int).Add(decrypted[0].S1, big.NewInt(1))
	decrypted[1].S2 = new(big.Int).Add(decrypted[1].S2, big.NewInt(1))
	withDup := []DecryptedShare{decrypted[0], decrypted[1], decrypted[2], decrypted[2]}

	_, _, err = Reconstruct(ps, withDup)
	assert.True(t, errors.Is(err, cryptoerr.ErrBelowThreshold))

	rec, _, err := Reconstruct(ps, decrypted)
	require.NoError(t, err)
	assert.Equal(t, 0, secret.Cmp(rec))
}

func TestAccessSharesWrongKey(t *testing.T) {
	pks, sks := testKeys(t, 3)

	ps, err := ShareSecretAndRandomness(2, randomScalar(t), randomScalar(t), pks)
	require.NoError(t, err)

	for i := range pks {
		for j := range sks {
			s, err := ps.AccessShares(i, sks[j])
			if i == j {
				require.NoError(t, err)
				assert.True(t, ps.VerifyDecryptedShares(i, s.S1, s.S2))
				continue
			}
			assert.Truef(t, errors.Is(err, cryptoerr.ErrArithmetic),
				"share %d with key %d: %v", i+1, j+1, err)
		}
	}

	_, err = ps.AccessShares(3, sks[0])
	assert.True(t, errors.Is(err, cryptoerr.ErrConfiguration))
}

func TestNewPublicSharingValidation(t *testing.T) {
	c := pedersen.Commit(big.NewInt(1), big.NewInt(2))
	ints := func(n int) []*big.Int {
		out := make([]*big.Int, n)
		for i := range out {
			out[i] = big.NewInt(int64(i + 1))
		}
		return out
	}
	proofs := make([]nizk.PedersenProof, 3)

	_, err := NewPublicSharing(2, 3, []pedersen.Commitment{c, c}, ints(3), ints(3), proofs)
	assert.NoError(t, err)

	for name, f := range map[string]func() error{
		"threshold > n": func() error {
			_, err := NewPublicSharing(4, 3, []pedersen.Commitment{c, c, c, c}, ints(3), ints(3), proofs)
			return err
		},
		"commitments": func() error {
			_, err := NewPublicSharing(2, 3, []pedersen.Commitment{c}, ints(3), ints(3), proofs)
			return err
		},
		"encrypted shares": func() error {
			_, err := NewPublicSharing(2, 3, []pedersen.Commitment{c, c}, ints(2), ints(3), proofs)
			return err
		},
		"proofs": func() error {
			_, err := NewPublicSharing(2, 3, []pedersen.Commitment{c, c}, ints(3), ints(3), proofs[:2])
			return err
		},
		"infinity": func() error {
			_, err := NewPublicSharing(2, 3, []pedersen.Commitment{c, curve.Infinity}, ints(3), ints(3), proofs)
			return err
		},
	} {
		assert.Truef(t, errors.Is(f(), cryptoerr.ErrConfiguration), "%s mismatch is a configuration error", name)
	}

	_, err = ShareSecretAndRandomness(3, big.NewInt(1), big.NewInt(2), make([]*paillier.PublicKey, 2))
	assert.True(t, errors.Is(err, cryptoerr.ErrConfiguration))
}

func TestWireForm(t *testing.T) {
	pks, _ := testKeys(t, 3)

	ps, err := ShareSecretAndRandomness(2, randomScalar(t), randomScalar(t), pks)
	require.NoError(t, err)

	b := ps.MarshalMsg()
	decoded, err := UnmarshalPublicSharing(b)
	require.NoError(t, err)
	assert.True(t, decoded.VerifyAllShares(pks))
	assert.Equal(t, b, decoded.MarshalMsg())

	_, err = UnmarshalPublicSharing(b[:len(b)/2])
	assert.Error(t, err)
}
