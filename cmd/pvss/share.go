package main

import (
	"encoding/hex"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shaih/go-pvss/communication/fake"
	"github.com/shaih/go-pvss/config"
	"github.com/shaih/go-pvss/primitives/curve"
	"github.com/shaih/go-pvss/primitives/paillier"
	pvssprim "github.com/shaih/go-pvss/primitives/pvss"
	"github.com/shaih/go-pvss/protocols/pvss"
)

func registerShare(parent *cobra.Command) {
	parent.AddCommand(&cobra.Command{
		Use:   "share",
		Short: "Share a random secret among the configured shareholders and reconstruct it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			commitment, err := runShare(cfg.PVSS)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), commitment)
			return nil
		},
	})
}

// runShare runs a sharing session and returns the hex encoded commitment
// to the secret
func runShare(cfg *config.PVSSConfig) (string, error) {
	n, t := cfg.Shareholders, cfg.Threshold

	log.WithFields(log.Fields{
		"shareholders": n,
		"bits":         cfg.PaillierBits,
	}).Info("generating Paillier keys")
	pks := make([]*paillier.PublicKey, n)
	sks := make([]*paillier.PrivateKey, n)
	for i := range pks {
		var err error
		if pks[i], sks[i], err = paillier.GenerateKeyPair(cfg.PaillierBits); err != nil {
			return "", fmt.Errorf("generating key of shareholder %d: %w", i+1, err)
		}
	}

	secret, err := curve.RandomScalar()
	if err != nil {
		return "", err
	}
	randomness, err := curve.RandomScalar()
	if err != nil {
		return "", err
	}

	o, channels := fake.Setup(n + 1)

	var wg sync.WaitGroup
	var ps *pvssprim.PublicSharing
	var dealerErr error
	results := make([]*pvss.Result, n)
	partyErrs := make([]error, n)

	wg.Add(n + 1)
	go func() {
		defer wg.Done()
		ps, dealerErr = pvss.StartDealer(channels[pvss.DealerID], t, secret, randomness, pks)
	}()
	for i := 1; i <= n; i++ {
		go func(i int) {
			defer wg.Done()
			results[i-1], partyErrs[i-1] = pvss.StartParty(channels[i], pks, sks[i-1], i)
		}(i)
	}

	if err := o.Run(pvss.NumRounds); err != nil {
		return "", err
	}
	wg.Wait()

	if dealerErr != nil {
		return "", dealerErr
	}
	for i, res := range results {
		if partyErrs[i] != nil {
			return "", partyErrs[i]
		}
		if !res.Accepted {
			return "", fmt.Errorf("shareholder %d rejected the dealer", i+1)
		}
		if res.Secret.Cmp(secret) != 0 || res.Randomness.Cmp(randomness) != 0 {
			return "", fmt.Errorf("shareholder %d reconstructed a wrong secret", i+1)
		}
	}

	c, err := ps.SecretCommitment()
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{
		"shareholders": n,
		"threshold":    t,
		"bytes":        o.MessageSizes[pvss.DealerID],
	}).Info("all shareholders reconstructed the secret")

	return hex.EncodeToString(c.Bytes()), nil
}
