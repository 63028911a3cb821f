package thresholdrsa

import (
	"context"
	"fmt"
	"math/big"

	"github.com/algorand/go-algorand-sdk/encoding/msgpack"
	log "github.com/sirupsen/logrus"

	"github.com/shaih/go-pvss/communication"
)

// SigningRounds is the number of rounds of a signing session on the
// broadcast channel:
//
//	round 0: the coordinator broadcasts the request (username, m)
//	round 1: every server broadcasts its signature response
//
// after which the coordinator combines the valid responses.
const SigningRounds = 2

// SigningRequest is the message of the coordinator in round 0
type SigningRequest struct {
	Username string `codec:"u"`
	Message  []byte `codec:"m"`
}

// StartSigningCoordinator runs the coordinator side of a signing session
// and returns the signature on m
func StartSigningCoordinator(
	bc communication.BroadcastChannel,
	c *Coordinator,
	username string,
	pub *ServerPublicConfiguration,
	m *big.Int,
) (*big.Int, error) {
	bc.Send(msgpack.Encode(SigningRequest{Username: username, Message: m.Bytes()}))
	bc.ReceiveRound()

	// Does not respond
	bc.Send([]byte{})
	_, roundMsgs := bc.ReceiveRound()

	var responses []*SignatureResponse
	for _, msg := range communication.NonEmpty(roundMsgs) {
		resp, err := UnmarshalSignatureResponse(msg.Payload)
		if err != nil {
			log.Infof("party %d sent an undecodable signature response: %v", msg.SenderID, err)
			continue
		}
		responses = append(responses, resp)
	}

	return c.Recover(username, pub, m, responses)
}

// StartSigningServer runs the server side of a signing session.
// A server that cannot produce a share sends an empty response.
func StartSigningServer(ctx context.Context, bc communication.BroadcastChannel, s *Server, coordinatorID int) error {
	// Doesn't send anything first round
	bc.Send([]byte{})
	_, roundMsgs := bc.ReceiveRound()

	var req SigningRequest
	var reqErr error
	found := false
	for _, msg := range roundMsgs {
		if msg.SenderID == coordinatorID {
			reqErr = msgpack.Decode(msg.Payload, &req)
			found = true
		}
	}
	if !found {
		reqErr = fmt.Errorf("no message from coordinator %d", coordinatorID)
	}

	myLog := log.WithFields(log.Fields{
		"server": s.Name(),
		"user":   req.Username,
	})

	if reqErr != nil {
		bc.Send([]byte{})
		bc.ReceiveRound()
		return fmt.Errorf("signing request decoding failed for server %s: %w", s.Name(), reqErr)
	}

	resp, err := s.ComputeSignatureShare(ctx, req.Username, new(big.Int).SetBytes(req.Message))
	if err != nil {
		myLog.Warnf("could not compute signature share: %v", err)
		bc.Send([]byte{})
		bc.ReceiveRound()
		return err
	}

	bc.Send(resp.MarshalMsg())
	bc.ReceiveRound()
	myLog.Debug("sent signature share")
	return nil
}
