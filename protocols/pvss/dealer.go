// Package pvss runs publicly verifiable secret sharing over a broadcast
// channel: a dealer shares a secret among n parties, every party checks
// all the encrypted shares, and the parties then reconstruct the secret
// from their decrypted shares.
package pvss

import (
	"fmt"
	"math/big"

	log "github.com/sirupsen/logrus"

	"github.com/shaih/go-pvss/communication"
	"github.com/shaih/go-pvss/primitives/paillier"
	pvssprim "github.com/shaih/go-pvss/primitives/pvss"
)

// StartDealer runs the actions of an honest dealer sharing secret t-of-n
// among the owners of keys, where keys[i-1] belongs to party i.
// The sharing is returned once the session is over.
func StartDealer(
	bc communication.BroadcastChannel,
	t int,
	secret *big.Int,
	randomness *big.Int,
	keys []*paillier.PublicKey,
) (*pvssprim.PublicSharing, error) {
	ps, err := pvssprim.ShareSecretAndRandomness(t, secret, randomness, keys)
	if err != nil {
		// The parties still expect a message every round
		for r := 0; r < NumRounds; r++ {
			bc.Send([]byte{})
			bc.ReceiveRound()
		}
		return nil, fmt.Errorf("PVSS share operation failed: %w", err)
	}

	msg := ps.MarshalMsg()
	log.WithFields(log.Fields{
		"threshold": t,
		"parties":   len(keys),
		"bytes":     len(msg),
	}).Debug("dealer broadcasts the public sharing")

	bc.Send(msg)
	bc.ReceiveRound()

	// Does not send for the complaint round
	bc.Send([]byte{})
	_, roundMsgs := bc.ReceiveRound()
	if rejections := len(communication.NonEmpty(roundMsgs)); rejections > 0 {
		log.Warnf("dealer rejected by %d parties", rejections)
	}

	// Does not take part in reconstruction
	bc.Send([]byte{})
	bc.ReceiveRound()

	return ps, nil
}
