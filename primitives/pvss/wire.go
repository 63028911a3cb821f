package pvss

import (
	"fmt"
	"math/big"

	"github.com/shaih/go-pvss/msgpack"
	"github.com/shaih/go-pvss/primitives/curve"
	"github.com/shaih/go-pvss/primitives/nizk"
	"github.com/shaih/go-pvss/primitives/pedersen"
)

// Wire forms. Integers are non-negative and encoded as big-endian bytes,
// points with their canonical encoding.

type proofMsg struct {
	EAlpha []byte `codec:"ea"`
	EBeta  []byte `codec:"eb"`
	S1     []byte `codec:"s1"`
	Z1     []byte `codec:"z1"`
	Z2     []byte `codec:"z2"`
	E1     []byte `codec:"e1"`
	E2     []byte `codec:"e2"`
}

type publicSharingMsg struct {
	Threshold        int        `codec:"t"`
	NumShares        int        `codec:"n"`
	Commitments      [][]byte   `codec:"c"`
	EncryptedShares1 [][]byte   `codec:"es1"`
	EncryptedShares2 [][]byte   `codec:"es2"`
	Proofs           []proofMsg `codec:"p"`
}

func intBytes(x *big.Int) []byte {
	if x == nil {
		return nil
	}
	return x.Bytes()
}

func intsBytes(xs []*big.Int) [][]byte {
	out := make([][]byte, len(xs))
	for i, x := range xs {
		out[i] = intBytes(x)
	}
	return out
}

func bytesInts(bs [][]byte) []*big.Int {
	out := make([]*big.Int, len(bs))
	for i, b := range bs {
		out[i] = new(big.Int).SetBytes(b)
	}
	return out
}

// MarshalMsg returns the msgpack encoding of ps
func (ps *PublicSharing) MarshalMsg() []byte {
	msg := publicSharingMsg{
		Threshold:        ps.Threshold,
		NumShares:        ps.NumShares,
		Commitments:      make([][]byte, len(ps.PedersenCommitments)),
		EncryptedShares1: intsBytes(ps.EncryptedShares1),
		EncryptedShares2: intsBytes(ps.EncryptedShares2),
		Proofs:           make([]proofMsg, len(ps.Proofs)),
	}
	for k, c := range ps.PedersenCommitments {
		msg.Commitments[k] = c.Bytes()
	}
	for i, p := range ps.Proofs {
		msg.Proofs[i] = proofMsg{
			EAlpha: intBytes(p.EAlpha),
			EBeta:  intBytes(p.EBeta),
			S1:     p.S1.Bytes(),
			Z1:     intBytes(p.Z1),
			Z2:     intBytes(p.Z2),
			E1:     intBytes(p.E1),
			E2:     intBytes(p.E2),
		}
	}
	return msgpack.Encode(msg)
}

// UnmarshalPublicSharing decodes the output of MarshalMsg and checks it
// the way NewPublicSharing does
func UnmarshalPublicSharing(b []byte) (*PublicSharing, error) {
	var msg publicSharingMsg
	if err := msgpack.Decode(b, &msg); err != nil {
		return nil, fmt.Errorf("error decoding public sharing: %w", err)
	}

	commitments := make([]pedersen.Commitment, len(msg.Commitments))
	for k, cb := range msg.Commitments {
		c, err := curve.PointFromBytes(cb)
		if err != nil {
			return nil, fmt.Errorf("error decoding commitment %d: %w", k, err)
		}
		commitments[k] = c
	}

	proofs := make([]nizk.PedersenProof, len(msg.Proofs))
	for i, pm := range msg.Proofs {
		s1, err := curve.PointFromBytes(pm.S1)
		if err != nil {
			return nil, fmt.Errorf("error decoding proof %d: %w", i, err)
		}
		proofs[i] = nizk.PedersenProof{
			EAlpha: new(big.Int).SetBytes(pm.EAlpha),
			EBeta:  new(big.Int).SetBytes(pm.EBeta),
			S1:     s1,
			Z1:     new(big.Int).SetBytes(pm.Z1),
			Z2:     new(big.Int).SetBytes(pm.Z2),
			E1:     new(big.Int).SetBytes(pm.E1),
			E2:     new(big.Int).SetBytes(pm.E2),
		}
	}

	return NewPublicSharing(
		msg.Threshold,
		msg.NumShares,
		commitments,
		bytesInts(msg.EncryptedShares1),
		bytesInts(msg.EncryptedShares2),
		proofs,
	)
}
