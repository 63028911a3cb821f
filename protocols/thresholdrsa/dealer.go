package thresholdrsa

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"math/big"

	"github.com/shaih/go-pvss/cryptoerr"
	"github.com/shaih/go-pvss/primitives/exponent"
	"github.com/shaih/go-pvss/primitives/paillier"
	"github.com/shaih/go-pvss/primitives/shamir"
)

// DefaultPublicExponent is the exponent used by GenerateDeal
const DefaultPublicExponent = 65537

// Deal shares the private exponent of key t-of-n among servers.
//
// The exponent d = e^-1 mod phi(N) is shared with a random polynomial of
// degree t-1 over the integers mod phi(N). V is a random square mod N and
// the verification key of server i is V^{s_i}.
// shares[i] belongs to server i+1.
func Deal(key *rsa.PrivateKey, servers int, threshold int) (*ServerPublicConfiguration, []shamir.Share, error) {
	const op = "thresholdrsa.Deal"

	if len(key.Primes) != 2 {
		return nil, nil, cryptoerr.Errorf(cryptoerr.Configuration, op,
			"expected a two-prime key, got %d primes", len(key.Primes))
	}
	if servers < 1 || threshold < 1 || threshold > servers {
		return nil, nil, cryptoerr.Errorf(cryptoerr.Configuration, op,
			"invalid share generation parameters t=%d n=%d", threshold, servers)
	}

	n := key.N
	e := big.NewInt(int64(key.E))

	phi := new(big.Int).Sub(key.Primes[0], bigOne)
	phi.Mul(phi, new(big.Int).Sub(key.Primes[1], bigOne))

	d := new(big.Int).ModInverse(e, phi)
	if d == nil {
		return nil, nil, cryptoerr.Errorf(cryptoerr.Arithmetic, op, "e is not invertible mod phi(N)")
	}

	f, err := shamir.RandomPolynomial(d, threshold-1, phi)
	if err != nil {
		return nil, nil, err
	}
	shares := f.Shares(servers)

	r, err := paillier.RandomCoprime(n)
	if err != nil {
		return nil, nil, err
	}
	v := new(big.Int).Mul(r, r)
	v.Mod(v, n)

	verificationKeys := make([]*big.Int, servers)
	for i := range shares {
		verificationKeys[i], err = exponent.Secure.Exp(v, shares[i].Y, n)
		if err != nil {
			return nil, nil, fmt.Errorf("error computing verification key %d: %w", i+1, err)
		}
	}

	pub, err := NewServerPublicConfiguration(servers, threshold, new(big.Int).Set(n), e, v, verificationKeys)
	if err != nil {
		return nil, nil, err
	}
	return pub, shares, nil
}

// GenerateKey generates a two-prime RSA key of the given size with public
// exponent e
func GenerateKey(bits int, e int) (*rsa.PrivateKey, error) {
	const op = "thresholdrsa.GenerateKey"

	if bits < 64 || bits%2 != 0 {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op, "invalid modulus size %d", bits)
	}
	if e < 3 || e%2 == 0 {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op, "public exponent must be odd and at least 3, got %d", e)
	}
	bigE := big.NewInt(int64(e))

	for {
		p, err := rand.Prime(rand.Reader, bits/2)
		if err != nil {
			return nil, fmt.Errorf("error generating prime: %w", err)
		}
		q, err := rand.Prime(rand.Reader, bits/2)
		if err != nil {
			return nil, fmt.Errorf("error generating prime: %w", err)
		}
		if p.Cmp(q) == 0 {
			continue
		}

		phi := new(big.Int).Sub(p, bigOne)
		phi.Mul(phi, new(big.Int).Sub(q, bigOne))
		d := new(big.Int).ModInverse(bigE, phi)
		if d == nil {
			continue
		}

		key := &rsa.PrivateKey{
			PublicKey: rsa.PublicKey{N: new(big.Int).Mul(p, q), E: e},
			D:         d,
			Primes:    []*big.Int{p, q},
		}
		if key.N.BitLen() != bits {
			continue
		}
		key.Precompute()
		if err := key.Validate(); err != nil {
			return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, op, err)
		}
		return key, nil
	}
}

// GenerateDeal generates a fresh RSA key of the given size with exponent
// DefaultPublicExponent and deals it
func GenerateDeal(bits int, servers int, threshold int) (*rsa.PrivateKey, *ServerPublicConfiguration, []shamir.Share, error) {
	key, err := GenerateKey(bits, DefaultPublicExponent)
	if err != nil {
		return nil, nil, nil, err
	}
	pub, shares, err := Deal(key, servers, threshold)
	if err != nil {
		return nil, nil, nil, err
	}
	return key, pub, shares, nil
}
