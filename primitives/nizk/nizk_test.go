package nizk

import (
	"math/big"
	"sync"
	"testing"

	"github.com/shaih/go-pvss/primitives/curve"
	"github.com/shaih/go-pvss/primitives/paillier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKeyOnce sync.Once
	testPK      *paillier.PublicKey
	testKeyErr  error
)

func testKey(t *testing.T) *paillier.PublicKey {
	testKeyOnce.Do(func() {
		testPK, _, testKeyErr = paillier.GenerateKeyPair(2048)
	})
	require.NoError(t, testKeyErr)
	return testPK
}

func randomScalar(t *testing.T) *big.Int {
	s, err := curve.RandomScalar()
	require.NoError(t, err)
	return s
}

func genFeldman(t *testing.T) (FeldmanStatement, FeldmanWitness) {
	pk := testKey(t)
	x := randomScalar(t)
	r2 := randomScalar(t)
	e, r1, err := pk.EncryptRandom(x)
	require.NoError(t, err)

	return FeldmanStatement{PK: pk, E: e, S: curve.DoubleMultBaseGH(x, r2)},
		FeldmanWitness{X: x, R1: r1, R2: r2}
}

func TestFeldmanProof(t *testing.T) {
	stmt, wit := genFeldman(t)

	proof, err := FeldmanProve(stmt, wit)
	require.NoError(t, err)
	assert.True(t, FeldmanVerify(stmt, proof), "honest proof verifies")

	// different S
	other := stmt
	other.S = curve.Add(stmt.S, curve.G)
	assert.False(t, FeldmanVerify(other, proof), "proof does not verify for another S")

	// different E
	other = stmt
	other.E = stmt.PK.AddConstant(stmt.E, big.NewInt(1))
	assert.False(t, FeldmanVerify(other, proof), "proof does not verify for another E")

	// out of range response
	bad := proof
	bad.Z = new(big.Int).Add(proof.Z, FeldmanBound())
	assert.False(t, FeldmanVerify(stmt, bad))

	// malformed proof
	bad = proof
	bad.S1 = curve.Infinity
	assert.False(t, FeldmanVerify(stmt, bad))
	bad = proof
	bad.E1 = nil
	assert.False(t, FeldmanVerify(stmt, bad))
}

func TestFeldmanProofWrongWitness(t *testing.T) {
	stmt, wit := genFeldman(t)

	wit.X = new(big.Int).Add(wit.X, big.NewInt(1))
	proof, err := FeldmanProve(stmt, wit)
	require.NoError(t, err)
	assert.False(t, FeldmanVerify(stmt, proof))
}

func genPedersen(t *testing.T) (PedersenStatement, PedersenWitness) {
	pk := testKey(t)
	a := randomScalar(t)
	b := randomScalar(t)
	ea, r1, err := pk.EncryptRandom(a)
	require.NoError(t, err)
	eb, r2, err := pk.EncryptRandom(b)
	require.NoError(t, err)

	return PedersenStatement{PK: pk, Ea: ea, Eb: eb, S: curve.DoubleMultBaseGH(a, b)},
		PedersenWitness{A: a, B: b, R1: r1, R2: r2}
}

func TestPedersenProof(t *testing.T) {
	stmt, wit := genPedersen(t)

	for i := 0; i < 4; i++ {
		proof, err := PedersenProve(stmt, wit)
		require.NoError(t, err)
		assert.True(t, PedersenVerify(stmt, proof), "honest proof verifies")
	}

	proof, err := PedersenProve(stmt, wit)
	require.NoError(t, err)

	other := stmt
	other.S = curve.Add(stmt.S, curve.H)
	assert.False(t, PedersenVerify(other, proof), "proof does not verify for another S")

	other = stmt
	other.Ea = stmt.PK.AddConstant(stmt.Ea, big.NewInt(1))
	assert.False(t, PedersenVerify(other, proof), "proof does not verify for another Ea")

	other = stmt
	other.Eb = stmt.PK.AddConstant(stmt.Eb, big.NewInt(1))
	assert.False(t, PedersenVerify(other, proof), "proof does not verify for another Eb")

	// swapping the two ciphertexts
	other = stmt
	other.Ea, other.Eb = stmt.Eb, stmt.Ea
	assert.False(t, PedersenVerify(other, proof))

	bad := proof
	bad.Z1 = new(big.Int).Neg(proof.Z1)
	assert.False(t, PedersenVerify(stmt, bad))

	bad = proof
	bad.E2 = new(big.Int).Add(proof.E2, big.NewInt(1))
	assert.False(t, PedersenVerify(stmt, bad))
}

func TestPedersenProofWrongWitness(t *testing.T) {
	stmt, wit := genPedersen(t)

	wit.B = new(big.Int).Add(wit.B, big.NewInt(1))
	proof, err := PedersenProve(stmt, wit)
	require.NoError(t, err)
	assert.False(t, PedersenVerify(stmt, proof))
}
