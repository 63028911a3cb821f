// Package communication defines the broadcast channel the protocols run on.
//
// The channel is synchronous: in every round each party sends exactly one
// message (possibly empty) and then receives the messages of all parties,
// indexed by sender ID.
package communication

// BroadcastMessage is a wrapper for a message broadcasted by a
// party in the protocol
type BroadcastMessage struct {
	Payload  []byte `codec:"payload"`
	SenderID int    `codec:"sender_id"`
}

// RoundMessages is a wrapper for all the messages send in a round
type RoundMessages struct {
	Messages []BroadcastMessage `codec:"messages"`
	Round    int                `codec:"round"`
}

// BroadcastChannel is a channel used by a party to perform
// send and receive operations in the execution of a protocol
type BroadcastChannel interface {
	Send(msg []byte)
	ReceiveRound() (int, []BroadcastMessage)
}

// NonEmpty returns the messages with a non-empty payload
func NonEmpty(msgs []BroadcastMessage) []BroadcastMessage {
	var out []BroadcastMessage
	for _, m := range msgs {
		if len(m.Payload) > 0 {
			out = append(out, m)
		}
	}
	return out
}
