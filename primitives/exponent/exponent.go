// Package exponent provides modular exponentiation backends.
//
// ConstantTime must be used whenever the exponent is secret (a Paillier
// decryption exponent, an RSA key share, a proof nonce). VariableTime is only
// for public exponents. A single secret-bearing computation never mixes the
// two for its secret exponents.
package exponent

import (
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/shaih/go-pvss/cryptoerr"
)

// Backend computes base^exp mod m for exp >= 0 and m > 1
type Backend interface {
	Exp(base, exp, m *big.Int) (*big.Int, error)
	Name() string
}

// ConstantTime is the saferith backend. Its running time depends only on
// the announced lengths of the operands, never on their values.
// The modulus must be odd.
type ConstantTime struct{}

// VariableTime is the math/big backend
type VariableTime struct{}

var (
	// Secure is the backend for secret exponents
	Secure Backend = ConstantTime{}
	// Public is the backend for public exponents
	Public Backend = VariableTime{}
)

func checkArgs(op string, exp, m *big.Int) error {
	if m.Cmp(big.NewInt(1)) <= 0 {
		return cryptoerr.Errorf(cryptoerr.Arithmetic, op, "modulus must be greater than 1")
	}
	if exp.Sign() < 0 {
		return cryptoerr.Errorf(cryptoerr.Arithmetic, op, "negative exponent")
	}
	return nil
}

// Name implements Backend
func (ConstantTime) Name() string {
	return "saferith"
}

// Exp implements Backend
func (ConstantTime) Exp(base, exp, m *big.Int) (*big.Int, error) {
	const op = "exponent.ConstantTime.Exp"
	if err := checkArgs(op, exp, m); err != nil {
		return nil, err
	}
	if m.Bit(0) == 0 {
		return nil, cryptoerr.Errorf(cryptoerr.Arithmetic, op, "modulus must be odd")
	}

	modBits := m.BitLen()
	expBits := exp.BitLen()
	if expBits < modBits {
		expBits = modBits
	}

	b := new(big.Int).Mod(base, m)
	mod := saferith.ModulusFromNat(new(saferith.Nat).SetBig(m, modBits))
	x := new(saferith.Nat).SetBig(b, modBits)
	y := new(saferith.Nat).SetBig(exp, expBits)

	return new(saferith.Nat).Exp(x, y, mod).Big(), nil
}

// Name implements Backend
func (VariableTime) Name() string {
	return "math/big"
}

// Exp implements Backend
func (VariableTime) Exp(base, exp, m *big.Int) (*big.Int, error) {
	if err := checkArgs("exponent.VariableTime.Exp", exp, m); err != nil {
		return nil, err
	}
	b := new(big.Int).Mod(base, m)
	return b.Exp(b, exp, m), nil
}

// ModInverse returns x^-1 mod m or an arithmetic error if x is not invertible
func ModInverse(x, m *big.Int) (*big.Int, error) {
	inv := new(big.Int).ModInverse(new(big.Int).Mod(x, m), m)
	if inv == nil {
		return nil, cryptoerr.Errorf(cryptoerr.Arithmetic, "exponent.ModInverse", "value is not invertible")
	}
	return inv, nil
}

// ModPowSigned computes base^exp mod m with b, allowing negative exponents:
// base^-e = (base^-1)^e.
func ModPowSigned(b Backend, base, exp, m *big.Int) (*big.Int, error) {
	if exp.Sign() >= 0 {
		return b.Exp(base, exp, m)
	}
	inv, err := ModInverse(base, m)
	if err != nil {
		return nil, err
	}
	return b.Exp(inv, new(big.Int).Neg(exp), m)
}
