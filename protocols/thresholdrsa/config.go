package thresholdrsa

import (
	"crypto/rsa"
	"encoding/hex"
	"math/big"

	"github.com/shaih/go-pvss/cryptoerr"
	"github.com/shaih/go-pvss/primitives/shamir"
	"github.com/shaih/go-pvss/primitives/transcript"
)

var bigOne = big.NewInt(1)

// ServerPublicConfiguration is the public state shared by all servers for
// one registered secret
type ServerPublicConfiguration struct {
	ServerCount      int
	Threshold        int
	N                *big.Int   // RSA modulus
	E                *big.Int   // public exponent
	V                *big.Int   // public base, a random square mod N
	VerificationKeys []*big.Int // VerificationKeys[i] = V^{s_{i+1}} mod N

	delta *big.Int
}

// NewServerPublicConfiguration checks the parameters and returns the configuration.
//
// The public exponent must exceed the server count, and gcd(4 Delta^2, e)
// must be 1 so that shares can be combined.
func NewServerPublicConfiguration(
	serverCount int,
	threshold int,
	n *big.Int,
	e *big.Int,
	v *big.Int,
	verificationKeys []*big.Int,
) (*ServerPublicConfiguration, error) {
	const op = "thresholdrsa.NewServerPublicConfiguration"

	if serverCount < 1 || threshold < 1 || threshold > serverCount {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op,
			"invalid threshold %d for %d servers", threshold, serverCount)
	}
	if len(verificationKeys) != serverCount {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op,
			"number of verification keys is %d not equal to %d", len(verificationKeys), serverCount)
	}
	if n == nil || n.Sign() <= 0 || n.Bit(0) == 0 {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op, "modulus must be odd and positive")
	}
	if e == nil || e.Cmp(big.NewInt(int64(serverCount))) <= 0 {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op,
			"public exponent must be greater than the server count %d", serverCount)
	}
	if v == nil || v.Sign() <= 0 || v.Cmp(n) >= 0 {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op, "public base out of range")
	}
	for i, vk := range verificationKeys {
		if vk == nil || vk.Sign() <= 0 || vk.Cmp(n) >= 0 {
			return nil, cryptoerr.Errorf(cryptoerr.Configuration, op, "verification key %d out of range", i+1)
		}
	}

	delta := shamir.Factorial(serverCount)
	if !shamir.IsOne(new(big.Int).GCD(nil, nil, fourDeltaSquared(delta), e)) {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op, "gcd(4 Delta^2, e) != 1")
	}

	return &ServerPublicConfiguration{
		ServerCount:      serverCount,
		Threshold:        threshold,
		N:                n,
		E:                e,
		V:                v,
		VerificationKeys: verificationKeys,
		delta:            delta,
	}, nil
}

func fourDeltaSquared(delta *big.Int) *big.Int {
	d := new(big.Int).Mul(delta, delta)
	return d.Lsh(d, 2)
}

// Delta returns ServerCount!
func (c *ServerPublicConfiguration) Delta() *big.Int {
	if c.delta != nil {
		return c.delta
	}
	return shamir.Factorial(c.ServerCount)
}

// PublicKey returns the RSA public key of the configuration.
// It fails if E does not fit in an int.
func (c *ServerPublicConfiguration) PublicKey() (*rsa.PublicKey, error) {
	if !c.E.IsInt64() || c.E.Int64() > int64(^uint32(0)>>1) {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, "thresholdrsa.PublicKey",
			"public exponent does not fit in an int")
	}
	return &rsa.PublicKey{N: new(big.Int).Set(c.N), E: int(c.E.Int64())}, nil
}

// Fingerprint is the SHA-256 digest of the canonical encoding of the configuration
func (c *ServerPublicConfiguration) Fingerprint() []byte {
	tr := transcript.New("go-pvss/thresholdrsa/configuration").
		AppendUint64(uint64(c.ServerCount)).
		AppendUint64(uint64(c.Threshold)).
		AppendInts(c.N, c.E, c.V).
		AppendInts(c.VerificationKeys...)
	return tr.Digest()
}

// FingerprintHex is Fingerprint in hexadecimal
func (c *ServerPublicConfiguration) FingerprintHex() string {
	return hex.EncodeToString(c.Fingerprint())
}

// RsaShareConfiguration is the private state of one server for one
// registered secret
type RsaShareConfiguration struct {
	Public *ServerPublicConfiguration
	Share  shamir.Share
}
