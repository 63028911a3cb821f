package nizk

import (
	"math/big"

	"github.com/shaih/go-pvss/primitives/curve"
	"github.com/shaih/go-pvss/primitives/paillier"
	"github.com/shaih/go-pvss/primitives/transcript"
)

// This file is to handle the NIZK proof that two Paillier ciphertexts hide the
// two exponents of a Pedersen commitment.
// Concretely the statement is (pk, Ea, Eb, S) and the prover shows knowledge
// of a, b, r1, r2 such that
//   Ea = Enc_pk(a, r1)
//   Eb = Enc_pk(b, r2)
//   S  = a G + b H
//
// The proof works as follows:
// pick alpha, beta in [0, Z) and rho1, rho2 coprime to n
// set Ealpha = Enc(alpha, rho1), Ebeta = Enc(beta, rho2), S1 = alpha G + beta H
// hash (n, Ealpha, Ebeta, S1, Ea, Eb, S) to get a challenge c in [0, T)
// set z1 = alpha + c a, z2 = beta + c b,
//     e1 = rho1 r1^c mod n^2, e2 = rho2 r2^c mod n^2

// PedersenStatement describes a statement, see comment top of file
type PedersenStatement struct {
	PK *paillier.PublicKey
	Ea *big.Int
	Eb *big.Int
	S  curve.Point
}

// PedersenWitness describes a witness for a statement
type PedersenWitness struct {
	A  *big.Int
	B  *big.Int
	R1 *big.Int // Paillier randomizer of Ea
	R2 *big.Int // Paillier randomizer of Eb
}

// PedersenProof is an actual proof
type PedersenProof struct {
	EAlpha *big.Int
	EBeta  *big.Int
	S1     curve.Point
	Z1     *big.Int
	Z2     *big.Int
	E1     *big.Int
	E2     *big.Int
}

func pedersenChallenge(stmt PedersenStatement, eAlpha, eBeta *big.Int, s1 curve.Point) *big.Int {
	return transcript.New("go-pvss/nizk/pedersen").
		AppendInt(stmt.PK.N).
		AppendInt(eAlpha).
		AppendInt(eBeta).
		AppendBytes(s1.Bytes()).
		AppendInt(stmt.Ea).
		AppendInt(stmt.Eb).
		AppendBytes(stmt.S.Bytes()).
		Challenge(pedersenT)
}

// PedersenProve generates a NIZK proof for the statement stmt using witness wit.
// It does not verify the validity of the witness.
func PedersenProve(stmt PedersenStatement, wit PedersenWitness) (PedersenProof, error) {
	alpha, err := randomBelow(pedersenZ)
	if err != nil {
		return PedersenProof{}, err
	}
	beta, err := randomBelow(pedersenZ)
	if err != nil {
		return PedersenProof{}, err
	}

	eAlpha, rho1, err := stmt.PK.EncryptRandom(alpha)
	if err != nil {
		return PedersenProof{}, err
	}
	eBeta, rho2, err := stmt.PK.EncryptRandom(beta)
	if err != nil {
		return PedersenProof{}, err
	}
	s1 := curve.DoubleMultBaseGH(alpha, beta)

	c := pedersenChallenge(stmt, eAlpha, eBeta, s1)

	z1 := new(big.Int).Mul(c, wit.A)
	z1.Add(z1, alpha)
	z2 := new(big.Int).Mul(c, wit.B)
	z2.Add(z2, beta)

	e1, err := randomizerResponse(stmt.PK, rho1, wit.R1, c)
	if err != nil {
		return PedersenProof{}, err
	}
	e2, err := randomizerResponse(stmt.PK, rho2, wit.R2, c)
	if err != nil {
		return PedersenProof{}, err
	}

	return PedersenProof{
		EAlpha: eAlpha,
		EBeta:  eBeta,
		S1:     s1,
		Z1:     z1,
		Z2:     z2,
		E1:     e1,
		E2:     e2,
	}, nil
}

// PedersenVerify returns true if proof is a valid proof for stmt
func PedersenVerify(stmt PedersenStatement, proof PedersenProof) bool {
	if stmt.PK == nil || !stmt.S.IsOnCurve() || !proof.S1.IsOnCurve() {
		return false
	}
	if proof.EAlpha == nil || proof.EBeta == nil || proof.E1 == nil || proof.E2 == nil {
		return false
	}
	if !inRange(proof.Z1, pedersenBound) || !inRange(proof.Z2, pedersenBound) {
		return false
	}

	c := pedersenChallenge(stmt, proof.EAlpha, proof.EBeta, proof.S1)

	if !checkEncryption(stmt.PK, proof.Z1, proof.E1, stmt.Ea, proof.EAlpha, c) {
		return false
	}
	if !checkEncryption(stmt.PK, proof.Z2, proof.E2, stmt.Eb, proof.EBeta, c) {
		return false
	}

	// z1 G + z2 H == c S + S1
	lhs := curve.DoubleMultBaseGH(proof.Z1, proof.Z2)
	rhs := curve.Add(curve.Mult(stmt.S, c), proof.S1)
	return lhs.Equal(rhs)
}
