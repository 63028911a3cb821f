package main

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shaih/go-pvss/communication/fake"
	"github.com/shaih/go-pvss/config"
	"github.com/shaih/go-pvss/protocols/thresholdrsa"
)

func registerSign(parent *cobra.Command) {
	var (
		username string
		message  string
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Deal an RSA key among the configured servers and sign a message with it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			sig, err := runSign(cmd.Context(), cfg.RSA, cfg.Signing, username, []byte(message))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(sig))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "alice", "name under which the key is registered")
	cmd.Flags().StringVar(&message, "message", "hello", "message to sign")
	parent.AddCommand(cmd)
}

// runSign deals a fresh key, runs a signing session for message and
// returns the PKCS #1 v1.5 signature after checking it
func runSign(
	ctx context.Context,
	rsaCfg *config.RSAConfig,
	signingCfg *config.SigningConfig,
	username string,
	message []byte,
) ([]byte, error) {
	log.WithFields(log.Fields{
		"servers":   rsaCfg.Servers,
		"threshold": rsaCfg.Threshold,
		"bits":      rsaCfg.ModulusBits,
	}).Info("dealing RSA key")

	key, err := thresholdrsa.GenerateKey(rsaCfg.ModulusBits, rsaCfg.PublicExponent)
	if err != nil {
		return nil, err
	}
	pub, shares, err := thresholdrsa.Deal(key, rsaCfg.Servers, rsaCfg.Threshold)
	if err != nil {
		return nil, err
	}

	servers := make([]*thresholdrsa.Server, rsaCfg.Servers)
	for i := range servers {
		servers[i] = thresholdrsa.NewServer(fmt.Sprintf("server-%d", i+1), thresholdrsa.NewStore(), signingCfg.ThrottleInterval)
		if _, err := servers[i].Register(username, pub, shares[i]); err != nil {
			return nil, err
		}
	}

	digest := sha256.Sum256(message)
	m, err := thresholdrsa.EncodePKCS1v15(pub.N, crypto.SHA256, digest[:])
	if err != nil {
		return nil, err
	}

	// party 0 is the coordinator and party i is server i
	o, channels := fake.Setup(rsaCfg.Servers + 1)

	var wg sync.WaitGroup
	var sig []byte
	var coordErr error

	wg.Add(len(servers) + 1)
	go func() {
		defer wg.Done()
		y, err := thresholdrsa.StartSigningCoordinator(channels[0], thresholdrsa.NewCoordinator(), username, pub, m)
		if err != nil {
			coordErr = err
			return
		}
		sig = y.FillBytes(make([]byte, key.Size()))
	}()
	for i, s := range servers {
		go func(i int, s *thresholdrsa.Server) {
			defer wg.Done()
			if err := thresholdrsa.StartSigningServer(ctx, channels[i+1], s, 0); err != nil {
				log.WithField("server", s.Name()).Warnf("signing failed: %v", err)
			}
		}(i, s)
	}

	if err := o.Run(thresholdrsa.SigningRounds); err != nil {
		return nil, err
	}
	wg.Wait()
	if coordErr != nil {
		return nil, coordErr
	}

	rsaPub, err := pub.PublicKey()
	if err != nil {
		return nil, err
	}
	if err := rsa.VerifyPKCS1v15(rsaPub, crypto.SHA256, digest[:], sig); err != nil {
		return nil, fmt.Errorf("recovered signature does not verify: %w", err)
	}

	log.WithFields(log.Fields{
		"user":        username,
		"fingerprint": pub.FingerprintHex(),
	}).Info("signature recovered and verified")
	return sig, nil
}
