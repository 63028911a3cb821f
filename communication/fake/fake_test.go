package fake

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommunicationProtocol(t *testing.T) {
	numRounds := 3
	numParties := 4

	o, channels := Setup(numParties)

	var wg sync.WaitGroup
	received := make([][]string, numParties)

	for _, c := range channels {
		wg.Add(1)
		go func(c PartyBroadcastChannel) {
			defer wg.Done()
			for r := 0; r < numRounds; r++ {
				c.Send([]byte(fmt.Sprintf("round %d from party %d", r, c.ID)))
				round, msgs := c.ReceiveRound()
				assert.Equal(t, r, round)
				for _, m := range msgs {
					received[c.ID] = append(received[c.ID], string(m.Payload))
				}
			}
		}(c)
	}

	require.NoError(t, o.Run(numRounds))
	wg.Wait()

	for i := 0; i < numParties; i++ {
		require.Len(t, received[i], numRounds*numParties)
		// messages are ordered by sender
		assert.Equal(t, "round 0 from party 0", received[i][0])
		assert.Equal(t, fmt.Sprintf("round 2 from party %d", numParties-1), received[i][len(received[i])-1])
	}
	assert.Equal(t, numRounds, o.Round)
	assert.Equal(t, len("round 0 from party 1")*numRounds, o.MessageSizes[1])
}

func TestBroadcastChannelLookup(t *testing.T) {
	o, _ := Setup(2)

	c, err := o.BroadcastChannel(1)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ID)

	_, err = o.BroadcastChannel(5)
	assert.Error(t, err)
}
