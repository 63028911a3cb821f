// Package fake simulates the broadcast channel in memory, with one goroutine
// per party and an orchestrator that closes each round once every party has
// sent its message.
package fake

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/shaih/go-pvss/communication"
)

// Orchestrator simulates a secure broadcast channel
// used for communication between parties.
// Party IDs must be 0, ..., len(Channels)-1.
type Orchestrator struct {
	Channels     map[int]PartyBroadcastChannel
	RoundMsgs    map[int]communication.BroadcastMessage
	MessageSizes map[int]int
	Round        int
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		Channels:     make(map[int]PartyBroadcastChannel),
		RoundMsgs:    make(map[int]communication.BroadcastMessage),
		MessageSizes: make(map[int]int),
		Round:        0,
	}
}

// AddChannel connects a party's channel to the orchestrator to participate in the protocol
func (o *Orchestrator) AddChannel(pbc PartyBroadcastChannel) {
	o.Channels[pbc.ID] = pbc
}

// BroadcastChannel gets the channel of the party specified by the id
func (o *Orchestrator) BroadcastChannel(id int) (*PartyBroadcastChannel, error) {
	pbc, ok := o.Channels[id]
	if !ok {
		return nil, fmt.Errorf("channel not found for id: %d", id)
	}
	return &pbc, nil
}

// ReceiveMessages collects the message of every party for the current round
func (o *Orchestrator) ReceiveMessages() error {
	agg := make(chan communication.BroadcastMessage, len(o.Channels))
	var wg sync.WaitGroup
	for _, pbc := range o.Channels {
		wg.Add(1)
		go func(c chan communication.BroadcastMessage) {
			defer wg.Done()
			agg <- <-c
		}(pbc.SendChannel)
	}
	wg.Wait()

	for i := 0; i < len(o.Channels); i++ {
		bcastMsg := <-agg
		if _, ok := o.Channels[bcastMsg.SenderID]; !ok {
			return fmt.Errorf("message from unknown sender %d", bcastMsg.SenderID)
		}
		o.RoundMsgs[bcastMsg.SenderID] = bcastMsg
		o.MessageSizes[bcastMsg.SenderID] += len(bcastMsg.Payload)
	}
	return nil
}

func (o *Orchestrator) collectRoundMessages() communication.RoundMessages {
	msgs := make([]communication.BroadcastMessage, 0, len(o.Channels))
	for i := 0; i < len(o.Channels); i++ {
		msgs = append(msgs, o.RoundMsgs[i])
	}
	return communication.RoundMessages{
		Messages: msgs,
		Round:    o.Round,
	}
}

// Broadcast sends to all parties the messages in the round
func (o *Orchestrator) Broadcast() error {
	roundMsgs := o.collectRoundMessages()
	for _, bc := range o.Channels {
		bc.ReceiveChannel <- roundMsgs
	}
	return nil
}

// Run runs numRounds rounds. Parties must already be running.
func (o *Orchestrator) Run(numRounds int) error {
	for o.Round < numRounds {
		if err := o.ReceiveMessages(); err != nil {
			return fmt.Errorf("round %d: %w", o.Round, err)
		}
		if err := o.Broadcast(); err != nil {
			return fmt.Errorf("round %d: %w", o.Round, err)
		}
		log.WithFields(log.Fields{
			"round":   o.Round,
			"parties": len(o.Channels),
		}).Debug("round complete")
		o.Round++
	}
	return nil
}

// PartyBroadcastChannel implements communication.BroadcastChannel and is the channel
// a party participating in the protocol uses to communicate with the orchestrator
type PartyBroadcastChannel struct {
	ID             int
	SendChannel    chan communication.BroadcastMessage
	ReceiveChannel chan communication.RoundMessages
}

// NewPartyBroadcastChannel creates a new party to connect with an orchestrator
func NewPartyBroadcastChannel(id int) PartyBroadcastChannel {
	return PartyBroadcastChannel{
		ID:             id,
		SendChannel:    make(chan communication.BroadcastMessage, 1),
		ReceiveChannel: make(chan communication.RoundMessages, 1),
	}
}

// Send gives the orchestrator the message of this party for the round
func (pbc PartyBroadcastChannel) Send(msg []byte) {
	pbc.SendChannel <- communication.BroadcastMessage{
		Payload:  msg,
		SenderID: pbc.ID,
	}
}

// ReceiveRound returns the round number and the messages of all parties
// in the round
func (pbc PartyBroadcastChannel) ReceiveRound() (int, []communication.BroadcastMessage) {
	roundMsgs := <-pbc.ReceiveChannel
	return roundMsgs.Round, roundMsgs.Messages
}

// Setup creates an orchestrator with n connected channels of IDs 0, ..., n-1
func Setup(n int) (*Orchestrator, []PartyBroadcastChannel) {
	o := NewOrchestrator()
	channels := make([]PartyBroadcastChannel, n)
	for i := range channels {
		channels[i] = NewPartyBroadcastChannel(i)
		o.AddChannel(channels[i])
	}
	return o, channels
}
