package thresholdrsa

import (
	"fmt"
	"math/big"

	"github.com/shaih/go-pvss/msgpack"
)

type signatureResponseMsg struct {
	ServerIndex    int    `codec:"i"`
	SignatureShare []byte `codec:"x"`
	C              []byte `codec:"c"`
	Z              []byte `codec:"z"`
}

// MarshalMsg returns the msgpack encoding of resp
func (resp *SignatureResponse) MarshalMsg() []byte {
	return msgpack.Encode(signatureResponseMsg{
		ServerIndex:    resp.ServerIndex,
		SignatureShare: resp.SignatureShare.Bytes(),
		C:              resp.Proof.C.Bytes(),
		Z:              resp.Proof.Z.Bytes(),
	})
}

// UnmarshalSignatureResponse decodes the output of MarshalMsg
func UnmarshalSignatureResponse(b []byte) (*SignatureResponse, error) {
	var msg signatureResponseMsg
	if err := msgpack.Decode(b, &msg); err != nil {
		return nil, fmt.Errorf("error decoding signature response: %w", err)
	}
	return &SignatureResponse{
		ServerIndex:    msg.ServerIndex,
		SignatureShare: new(big.Int).SetBytes(msg.SignatureShare),
		Proof: SignatureShareProof{
			C: new(big.Int).SetBytes(msg.C),
			Z: new(big.Int).SetBytes(msg.Z),
		},
	}, nil
}
