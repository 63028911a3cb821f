package thresholdrsa

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/shaih/go-pvss/cryptoerr"
	"github.com/shaih/go-pvss/metrics"
	"github.com/shaih/go-pvss/primitives/shamir"
)

// ErrUnknownUser is returned for a username that was never registered
var ErrUnknownUser = errors.New("unknown user")

// Server is one of the signing servers
type Server struct {
	name     string
	store    *Store
	throttle *throttle
	metrics  metrics.SigningMetrics
}

// NewServer returns a server keeping its shares in store. Signature shares
// for a given user are produced at most once per throttleInterval.
func NewServer(name string, store *Store, throttleInterval time.Duration) *Server {
	return &Server{
		name:     name,
		store:    store,
		throttle: newThrottle(throttleInterval),
		metrics:  metrics.NewSigningMetrics(),
	}
}

// Name returns the server name used in logs
func (s *Server) Name() string {
	return s.name
}

// Register stores the share of username. A second registration of the same
// username is ignored and Register returns false.
func (s *Server) Register(username string, pub *ServerPublicConfiguration, share shamir.Share) (bool, error) {
	if pub == nil {
		return false, cryptoerr.Errorf(cryptoerr.Configuration, "thresholdrsa.Register", "missing public configuration")
	}
	if i := share.Index(); i < 1 || i > pub.ServerCount {
		return false, cryptoerr.Errorf(cryptoerr.Configuration, "thresholdrsa.Register",
			"share index %d out of range", i)
	}

	myLog := log.WithFields(log.Fields{
		"server":      s.name,
		"user":        username,
		"fingerprint": pub.FingerprintHex(),
	})

	if !s.store.Register(username, &RsaShareConfiguration{Public: pub, Share: share}) {
		myLog.Warn("user already registered, ignoring registration")
		return false, nil
	}
	myLog.Debug("registered user")
	return true, nil
}

// PublicConfiguration returns the public configuration registered for username
func (s *Server) PublicConfiguration(username string) (*ServerPublicConfiguration, error) {
	cfg, ok := s.store.Lookup(username)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	return cfg.Public, nil
}

// ComputeSignatureShare produces this server's signature share of m for
// username. It blocks until the throttle of username lets it through or
// ctx is done.
func (s *Server) ComputeSignatureShare(ctx context.Context, username string, m *big.Int) (*SignatureResponse, error) {
	cfg, ok := s.store.Lookup(username)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}

	start := time.Now()
	if err := s.throttle.wait(ctx, username); err != nil {
		return nil, fmt.Errorf("waiting for throttle of %s: %w", username, err)
	}
	waited := time.Since(start)
	s.metrics.ThrottleWait(waited)
	if waited > time.Millisecond {
		log.WithFields(log.Fields{
			"server": s.name,
			"user":   username,
		}).Debugf("throttled for %v", waited)
	}

	resp, err := GenerateSignatureShare(cfg, m)
	if err != nil {
		s.metrics.ShareComputed(metrics.StatusFailure)
		return nil, err
	}
	s.metrics.ShareComputed(metrics.StatusSuccess)
	return resp, nil
}

// Coordinator collects signature responses and combines them
type Coordinator struct {
	metrics metrics.SigningMetrics
}

// NewCoordinator returns a coordinator
func NewCoordinator() *Coordinator {
	return &Coordinator{metrics: metrics.NewSigningMetrics()}
}

// Recover validates responses, reports the invalid ones and combines
// threshold valid ones into a signature on m
func (c *Coordinator) Recover(
	username string,
	pub *ServerPublicConfiguration,
	m *big.Int,
	responses []*SignatureResponse,
) (*big.Int, error) {
	const op = "thresholdrsa.Recover"
	if err := checkMessage(op, pub, m); err != nil {
		c.metrics.SignatureRecovered(metrics.StatusFailure)
		return nil, err
	}

	valid, rejected := ValidResponses(pub, m, responses)
	for _, resp := range rejected {
		server := "unknown"
		if resp != nil {
			server = strconv.Itoa(resp.ServerIndex)
		}
		c.metrics.ResponseRejected(server)
		log.WithFields(log.Fields{
			"server": server,
			"user":   username,
		}).Warn("rejected signature response")
	}

	sig, err := recoverValid(pub, m, valid)
	if err != nil {
		c.metrics.SignatureRecovered(metrics.StatusFailure)
		return nil, err
	}
	c.metrics.SignatureRecovered(metrics.StatusSuccess)
	return sig, nil
}
