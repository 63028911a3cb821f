// Package paillier implements the Paillier cryptosystem with generator
// g = n+1. Enc(m, r) = (1 + m*n) * r^n mod n^2.
//
// Ciphertexts are integers in Z*_{n^2}. Higher layers combine them only
// through the homomorphic operations of PublicKey.
package paillier

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/shaih/go-pvss/cryptoerr"
	"github.com/shaih/go-pvss/primitives/exponent"
)

// MinPrimeBits is the minimum bit length of each of the two primes
const MinPrimeBits = 1024

var bigOne = big.NewInt(1)

// PublicKey is (n, g = n+1, n^2)
type PublicKey struct {
	N  *big.Int
	G  *big.Int
	N2 *big.Int
}

// PrivateKey is (lambda, mu = lambda^-1 mod n) together with its public key
type PrivateKey struct {
	PublicKey
	Lambda *big.Int
	Mu     *big.Int
}

// NewPublicKey returns the public key of modulus n
func NewPublicKey(n *big.Int) *PublicKey {
	return &PublicKey{
		N:  new(big.Int).Set(n),
		G:  new(big.Int).Add(n, bigOne),
		N2: new(big.Int).Mul(n, n),
	}
}

// GenerateKeyPair generates a key pair whose modulus has the given bit
// length, from two independent random primes of half that length.
// Each prime must have at least MinPrimeBits bits.
func GenerateKeyPair(bits int) (*PublicKey, *PrivateKey, error) {
	primeBits := bits / 2
	if primeBits < MinPrimeBits {
		return nil, nil, cryptoerr.Errorf(cryptoerr.Configuration, "paillier.GenerateKeyPair",
			"primes of %d bits are shorter than %d", primeBits, MinPrimeBits)
	}

	for {
		p, err := rand.Prime(rand.Reader, primeBits)
		if err != nil {
			return nil, nil, fmt.Errorf("error generating prime: %w", err)
		}
		q, err := rand.Prime(rand.Reader, primeBits)
		if err != nil {
			return nil, nil, fmt.Errorf("error generating prime: %w", err)
		}
		if p.Cmp(q) == 0 {
			continue
		}

		sk, err := NewPrivateKey(p, q)
		if err != nil {
			// gcd(n, (p-1)(q-1)) != 1, try again
			continue
		}
		return &sk.PublicKey, sk, nil
	}
}

// NewPrivateKey derives the key pair of the primes p and q
func NewPrivateKey(p, q *big.Int) (*PrivateKey, error) {
	n := new(big.Int).Mul(p, q)
	p1 := new(big.Int).Sub(p, bigOne)
	q1 := new(big.Int).Sub(q, bigOne)

	phi := new(big.Int).Mul(p1, q1)
	if new(big.Int).GCD(nil, nil, n, phi).Cmp(bigOne) != 0 {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, "paillier.NewPrivateKey",
			"gcd(n, phi(n)) != 1")
	}

	// lambda = lcm(p-1, q-1)
	gcd := new(big.Int).GCD(nil, nil, p1, q1)
	lambda := new(big.Int).Quo(phi, gcd)

	mu := new(big.Int).ModInverse(lambda, n)
	if mu == nil {
		return nil, cryptoerr.Errorf(cryptoerr.Arithmetic, "paillier.NewPrivateKey",
			"lambda is not invertible mod n")
	}

	return &PrivateKey{
		PublicKey: *NewPublicKey(n),
		Lambda:    lambda,
		Mu:        mu,
	}, nil
}

// RandomCoprime returns a uniformly random r in [1, n) with gcd(r, n) = 1
func RandomCoprime(n *big.Int) (*big.Int, error) {
	for {
		r, err := rand.Int(rand.Reader, n)
		if err != nil {
			return nil, fmt.Errorf("error sampling randomizer: %w", err)
		}
		if r.Sign() > 0 && new(big.Int).GCD(nil, nil, r, n).Cmp(bigOne) == 0 {
			return r, nil
		}
	}
}

// Encrypt computes (1 + m*n) * r^n mod n^2.
// m is reduced mod n; r must be coprime to n.
func (pk *PublicKey) Encrypt(m, r *big.Int) (*big.Int, error) {
	const op = "paillier.Encrypt"
	if r.Sign() <= 0 || new(big.Int).GCD(nil, nil, r, pk.N).Cmp(bigOne) != 0 {
		return nil, cryptoerr.Errorf(cryptoerr.Arithmetic, op, "randomizer is not coprime to n")
	}

	// r is secret
	rn, err := exponent.Secure.Exp(r, pk.N, pk.N2)
	if err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, op, err)
	}

	gm := new(big.Int).Mod(m, pk.N)
	gm.Mul(gm, pk.N)
	gm.Add(gm, bigOne)

	c := gm.Mul(gm, rn)
	return c.Mod(c, pk.N2), nil
}

// EncryptRandom encrypts m under a fresh randomizer and returns the
// ciphertext together with the randomizer
func (pk *PublicKey) EncryptRandom(m *big.Int) (c *big.Int, r *big.Int, err error) {
	r, err = RandomCoprime(pk.N)
	if err != nil {
		return nil, nil, err
	}
	c, err = pk.Encrypt(m, r)
	if err != nil {
		return nil, nil, err
	}
	return c, r, nil
}

// Decrypt computes L(c^lambda mod n^2) * mu mod n, with L(u) = (u-1)/n.
// Any unit mod n^2 decrypts to some value; a ciphertext under another key
// is only detected when it is out of range.
func (sk *PrivateKey) Decrypt(c *big.Int) (*big.Int, error) {
	const op = "paillier.Decrypt"
	if err := sk.checkCiphertext(c); err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, op, err)
	}

	u, err := exponent.Secure.Exp(c, sk.Lambda, sk.N2)
	if err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, op, err)
	}

	l := u.Sub(u, bigOne)
	l.Quo(l, sk.N)

	m := l.Mul(l, sk.Mu)
	return m.Mod(m, sk.N), nil
}

func (pk *PublicKey) checkCiphertext(c *big.Int) error {
	if c == nil || c.Sign() <= 0 || c.Cmp(pk.N2) >= 0 {
		return fmt.Errorf("ciphertext out of range")
	}
	if new(big.Int).GCD(nil, nil, c, pk.N).Cmp(bigOne) != 0 {
		return fmt.Errorf("ciphertext is not a unit mod n^2")
	}
	return nil
}

// IsCiphertext reports whether c is a well-formed ciphertext under pk
func (pk *PublicKey) IsCiphertext(c *big.Int) bool {
	return pk.checkCiphertext(c) == nil
}

// Equal compares moduli
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return other != nil && pk.N.Cmp(other.N) == 0
}

// Add returns a ciphertext of m1 + m2
func (pk *PublicKey) Add(c1, c2 *big.Int) *big.Int {
	c := new(big.Int).Mul(c1, c2)
	return c.Mod(c, pk.N2)
}

// Subtract returns a ciphertext of m1 - m2
func (pk *PublicKey) Subtract(c1, c2 *big.Int) (*big.Int, error) {
	inv, err := exponent.ModInverse(c2, pk.N2)
	if err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, "paillier.Subtract", err)
	}
	return pk.Add(c1, inv), nil
}

// AddConstant returns a ciphertext of m + k
func (pk *PublicKey) AddConstant(c, k *big.Int) *big.Int {
	gk := new(big.Int).Mod(k, pk.N)
	gk.Mul(gk, pk.N)
	gk.Add(gk, bigOne)
	return pk.Add(c, gk)
}

// SubtractConstant returns a ciphertext of m - k
func (pk *PublicKey) SubtractConstant(c, k *big.Int) *big.Int {
	return pk.AddConstant(c, new(big.Int).Neg(k))
}

// MultiplyConstant returns a ciphertext of m * k. k is public.
func (pk *PublicKey) MultiplyConstant(c, k *big.Int) (*big.Int, error) {
	e := new(big.Int).Mod(k, pk.N)
	ck, err := exponent.Public.Exp(c, e, pk.N2)
	if err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, "paillier.MultiplyConstant", err)
	}
	return ck, nil
}

// DivideConstant returns a ciphertext of m * k^-1 mod n
func (pk *PublicKey) DivideConstant(c, k *big.Int) (*big.Int, error) {
	inv, err := exponent.ModInverse(k, pk.N)
	if err != nil {
		return nil, cryptoerr.Wrap(cryptoerr.Arithmetic, "paillier.DivideConstant", err)
	}
	return pk.MultiplyConstant(c, inv)
}
