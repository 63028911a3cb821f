package pvss

import (
	"fmt"
	"math/big"

	"github.com/algorand/go-algorand-sdk/encoding/msgpack"

	pvssprim "github.com/shaih/go-pvss/primitives/pvss"
)

// NumRounds is the number of rounds of a sharing session:
//
//	round 0: the dealer broadcasts the public sharing
//	round 1: every party broadcasts whether it rejects the dealer
//	round 2: every party that accepted broadcasts its decrypted shares
//
// after which every party reconstructs the secret.
const NumRounds = 3

// DealerID is the sender ID of the dealer. Party i has sender ID i.
const DealerID = 0

// rejectMsg is the payload of a rejection in round 1
var rejectMsg = []byte{1}

// DecryptedShareMessage is the message of a party in round 2
type DecryptedShareMessage struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`
	Index   int      `codec:"idx"`
	S1      []byte   `codec:"s1"`
	S2      []byte   `codec:"s2"`
}

func encodeDecryptedShare(s pvssprim.DecryptedShare) []byte {
	return msgpack.Encode(DecryptedShareMessage{
		Index: s.Index,
		S1:    s.S1.Bytes(),
		S2:    s.S2.Bytes(),
	})
}

func decodeDecryptedShare(b []byte) (pvssprim.DecryptedShare, error) {
	var msg DecryptedShareMessage
	if err := msgpack.Decode(b, &msg); err != nil {
		return pvssprim.DecryptedShare{}, fmt.Errorf("decrypted share decoding failed: %w", err)
	}
	return pvssprim.DecryptedShare{
		Index: msg.Index,
		S1:    new(big.Int).SetBytes(msg.S1),
		S2:    new(big.Int).SetBytes(msg.S2),
	}, nil
}
