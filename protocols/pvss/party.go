package pvss

import (
	"fmt"
	"math/big"

	log "github.com/sirupsen/logrus"

	"github.com/shaih/go-pvss/communication"
	"github.com/shaih/go-pvss/primitives/paillier"
	pvssprim "github.com/shaih/go-pvss/primitives/pvss"
)

// Result is the outcome of a sharing session for one party
type Result struct {
	// Accepted is false if the party rejected the dealer.
	// Secret and Randomness are then nil.
	Accepted   bool
	Rejections int // number of parties that rejected the dealer
	Secret     *big.Int
	Randomness *big.Int
}

// StartParty runs the protocol for party i in {1, ..., n}, which holds sk.
// keys are the public keys of all parties in order.
func StartParty(
	bc communication.BroadcastChannel,
	keys []*paillier.PublicKey,
	sk *paillier.PrivateKey,
	i int,
) (*Result, error) {
	myLog := log.WithFields(log.Fields{
		"party": i,
	})
	if i < 1 || i > len(keys) {
		for r := 0; r < NumRounds; r++ {
			bc.Send([]byte{})
			bc.ReceiveRound()
		}
		return nil, fmt.Errorf("party index %d out of range [1, %d]", i, len(keys))
	}

	// Doesn't send anything first round
	bc.Send([]byte{})
	_, roundMsgs := bc.ReceiveRound()

	var ps *pvssprim.PublicSharing
	var decodeErr error
	for _, msg := range roundMsgs {
		if msg.SenderID == DealerID {
			ps, decodeErr = pvssprim.UnmarshalPublicSharing(msg.Payload)
		}
	}
	if ps == nil && decodeErr == nil {
		decodeErr = fmt.Errorf("no message from dealer")
	}

	// Every share is publicly verifiable, so every party checks all of them
	accept := decodeErr == nil && ps.NumShares == len(keys) && ps.VerifyAllShares(keys)
	if accept {
		bc.Send([]byte{})
	} else {
		if decodeErr != nil {
			myLog.Warnf("sharer message decoding failed: %v", decodeErr)
		}
		myLog.Info("party rejects the dealer")
		bc.Send(rejectMsg)
	}

	_, roundMsgs = bc.ReceiveRound()
	rejections := 0
	for _, msg := range roundMsgs {
		if msg.SenderID != DealerID && len(msg.Payload) > 0 {
			rejections++
		}
	}

	if !accept {
		bc.Send([]byte{})
		bc.ReceiveRound()
		return &Result{Accepted: false, Rejections: rejections}, nil
	}

	own, err := ps.AccessShares(i-1, sk)
	if err != nil {
		return nil, failRound(bc, fmt.Errorf("share decryption failed for party %d: %w", i, err))
	}

	bc.Send(encodeDecryptedShare(own))
	_, roundMsgs = bc.ReceiveRound()

	var shares []pvssprim.DecryptedShare
	for _, msg := range communication.NonEmpty(roundMsgs) {
		if msg.SenderID == DealerID {
			continue
		}
		share, err := decodeDecryptedShare(msg.Payload)
		if err != nil {
			myLog.Infof("party %d sent an undecodable share: %v", msg.SenderID, err)
			continue
		}
		if share.Index != msg.SenderID {
			myLog.Infof("party %d sent the share of party %d", msg.SenderID, share.Index)
			continue
		}
		shares = append(shares, share)
	}

	secret, randomness, err := pvssprim.Reconstruct(ps, shares)
	if err != nil {
		return nil, fmt.Errorf("reconstruction failed for party %d: %w", i, err)
	}
	myLog.Debug("party reconstructed the secret")

	return &Result{
		Accepted:   true,
		Rejections: rejections,
		Secret:     secret,
		Randomness: randomness,
	}, nil
}

// failRound completes the last round with an empty message and returns err
func failRound(bc communication.BroadcastChannel, err error) error {
	bc.Send([]byte{})
	bc.ReceiveRound()
	return err
}
