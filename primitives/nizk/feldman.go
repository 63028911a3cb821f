package nizk

import (
	"math/big"

	"github.com/shaih/go-pvss/primitives/curve"
	"github.com/shaih/go-pvss/primitives/paillier"
	"github.com/shaih/go-pvss/primitives/transcript"
)

// This file is to handle the NIZK proof that one Paillier ciphertext and one
// commitment hide the same value.
// Concretely the statement is (pk, E, S) and the prover shows knowledge
// of x, r1, r2 such that
//   E = Enc_pk(x, r1)
//   S = x G + r2 H
//
// The proof works as follows:
// pick alpha in [0, Z), a coprime to n, b in [0, r)
// set E1 = Enc(alpha, a), S1 = alpha G + b H
// hash (n, E1, S1, E, S) to get a challenge c in [0, T)
// set z = alpha + c x, z1 = a r1^c mod n^2, z2 = b + c r2

// FeldmanStatement describes a statement, see comment top of file
type FeldmanStatement struct {
	PK *paillier.PublicKey
	E  *big.Int
	S  curve.Point
}

// FeldmanWitness describes a witness for a statement
type FeldmanWitness struct {
	X  *big.Int
	R1 *big.Int // Paillier randomizer of E
	R2 *big.Int // blinding exponent of S
}

// FeldmanProof is an actual proof
type FeldmanProof struct {
	E1 *big.Int
	S1 curve.Point
	Z  *big.Int
	Z1 *big.Int
	Z2 *big.Int
}

func feldmanChallenge(stmt FeldmanStatement, e1 *big.Int, s1 curve.Point) *big.Int {
	return transcript.New("go-pvss/nizk/feldman").
		AppendInt(stmt.PK.N).
		AppendInt(e1).
		AppendBytes(s1.Bytes()).
		AppendInt(stmt.E).
		AppendBytes(stmt.S.Bytes()).
		Challenge(feldmanT)
}

// FeldmanProve generates a NIZK proof for the statement stmt using witness wit.
// It does not verify the validity of the witness.
func FeldmanProve(stmt FeldmanStatement, wit FeldmanWitness) (FeldmanProof, error) {
	alpha, err := randomBelow(feldmanZ)
	if err != nil {
		return FeldmanProof{}, err
	}
	a, err := paillier.RandomCoprime(stmt.PK.N)
	if err != nil {
		return FeldmanProof{}, err
	}
	b, err := curve.RandomScalar()
	if err != nil {
		return FeldmanProof{}, err
	}

	e1, err := stmt.PK.Encrypt(alpha, a)
	if err != nil {
		return FeldmanProof{}, err
	}
	s1 := curve.DoubleMultBaseGH(alpha, b)

	c := feldmanChallenge(stmt, e1, s1)

	// z = alpha + c x
	z := new(big.Int).Mul(c, wit.X)
	z.Add(z, alpha)

	// z1 = a r1^c mod n^2
	z1, err := randomizerResponse(stmt.PK, a, wit.R1, c)
	if err != nil {
		return FeldmanProof{}, err
	}

	// z2 = b + c r2
	z2 := new(big.Int).Mul(c, wit.R2)
	z2.Add(z2, b)

	return FeldmanProof{E1: e1, S1: s1, Z: z, Z1: z1, Z2: z2}, nil
}

// FeldmanVerify returns true if proof is a valid proof for stmt
func FeldmanVerify(stmt FeldmanStatement, proof FeldmanProof) bool {
	if stmt.PK == nil || !stmt.S.IsOnCurve() || !proof.S1.IsOnCurve() {
		return false
	}
	if proof.E1 == nil || proof.Z1 == nil || proof.Z2 == nil {
		return false
	}
	if !inRange(proof.Z, feldmanZ) {
		return false
	}

	c := feldmanChallenge(stmt, proof.E1, proof.S1)

	if !checkEncryption(stmt.PK, proof.Z, proof.Z1, stmt.E, proof.E1, c) {
		return false
	}

	// z G + z2 H == c S + S1
	lhs := curve.DoubleMultBaseGH(proof.Z, proof.Z2)
	rhs := curve.Add(curve.Mult(stmt.S, c), proof.S1)
	return lhs.Equal(rhs)
}
