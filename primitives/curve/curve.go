// Package curve implements the prime-order elliptic curve group used for
// commitments: secp256k1 with affine big.Int coordinates.
//
// Points are immutable values. The point at infinity is a distinguished
// sentinel (both coordinates nil); it is never produced by HashToCurve and
// is rejected wherever a commitment is expected.
package curve

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/hkdf"
)

// Point is a group element in affine coordinates
type Point struct {
	X *big.Int
	Y *big.Int
}

var (
	group = btcec.S256()

	// Order is the prime order r of the group
	Order = new(big.Int).Set(group.Params().N)

	// Infinity is the identity element
	Infinity = Point{}

	// G is the base generator
	G = Point{X: new(big.Int).Set(group.Params().Gx), Y: new(big.Int).Set(group.Params().Gy)}

	// H is the second generator. Nobody knows log_G(H).
	H = MustHashToCurve([]byte(hGeneratorSeed))
)

const (
	hGeneratorSeed  = "go-pvss/secp256k1/generator-h/v1"
	hashToCurveInfo = "go-pvss/hash-to-curve"

	// maxHashToCurveAttempts bounds the candidate-and-reject loop.
	// Each attempt succeeds with probability about 1/2, and 128 candidates
	// stay within the HKDF output limit.
	maxHashToCurveAttempts = 128

	// PointBytesLen is the length of the canonical encoding of a finite point
	PointBytesLen = 65
)

// NewPoint returns the point (x, y). It does not check curve membership.
func NewPoint(x, y *big.Int) Point {
	return Point{X: new(big.Int).Set(x), Y: new(big.Int).Set(y)}
}

// IsInfinity returns true if p is the point at infinity
func (p Point) IsInfinity() bool {
	return p.X == nil || p.Y == nil
}

// IsOnCurve returns true if p is a finite point on the curve
func (p Point) IsOnCurve() bool {
	if p.IsInfinity() {
		return false
	}
	return group.IsOnCurve(p.X, p.Y)
}

// Equal compares coordinates. Infinity only equals infinity.
func (p Point) Equal(q Point) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() && q.IsInfinity()
	}
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

// fromAffine maps the (0, 0) convention of crypto/elliptic to Infinity
func fromAffine(x, y *big.Int) Point {
	if x.Sign() == 0 && y.Sign() == 0 {
		return Infinity
	}
	return Point{X: x, Y: y}
}

// Add returns p + q
func Add(p, q Point) Point {
	if p.IsInfinity() {
		return q
	}
	if q.IsInfinity() {
		return p
	}
	return fromAffine(group.Add(p.X, p.Y, q.X, q.Y))
}

// Negate returns -p (the reflection of p over the x-axis)
func Negate(p Point) Point {
	if p.IsInfinity() {
		return p
	}
	y := new(big.Int).Sub(group.Params().P, p.Y)
	y.Mod(y, group.Params().P)
	return Point{X: new(big.Int).Set(p.X), Y: y}
}

// Sub returns p - q
func Sub(p, q Point) Point {
	return Add(p, Negate(q))
}

// Mult returns k * p. k may be any integer; it is reduced mod Order.
func Mult(p Point, k *big.Int) Point {
	if p.IsInfinity() {
		return p
	}
	e := new(big.Int).Mod(k, Order)
	if e.Sign() == 0 {
		return Infinity
	}
	return fromAffine(group.ScalarMult(p.X, p.Y, e.Bytes()))
}

// MultBase returns k * G
func MultBase(k *big.Int) Point {
	e := new(big.Int).Mod(k, Order)
	if e.Sign() == 0 {
		return Infinity
	}
	return fromAffine(group.ScalarBaseMult(e.Bytes()))
}

// DoubleMultBaseGH returns a * G + b * H
func DoubleMultBaseGH(a, b *big.Int) Point {
	return Add(MultBase(a), Mult(H, b))
}

// Bytes returns the canonical encoding of p: the 65-byte uncompressed SEC1
// form for finite points and a single zero byte for infinity.
func (p Point) Bytes() []byte {
	if p.IsInfinity() {
		return []byte{0}
	}
	out := make([]byte, PointBytesLen)
	out[0] = 4
	p.X.FillBytes(out[1:33])
	p.Y.FillBytes(out[33:65])
	return out
}

// Key returns a map key for p built from its canonical encoding
func (p Point) Key() string {
	return string(p.Bytes())
}

func (p Point) String() string {
	if p.IsInfinity() {
		return "Infinity"
	}
	return fmt.Sprintf("(%x, %x)", p.X, p.Y)
}

// PointFromBytes decodes the canonical encoding produced by Bytes and checks
// that finite points are on the curve
func PointFromBytes(b []byte) (Point, error) {
	if bytes.Equal(b, []byte{0}) {
		return Infinity, nil
	}
	if len(b) != PointBytesLen || b[0] != 4 {
		return Point{}, fmt.Errorf("invalid point encoding of length %d", len(b))
	}
	p := Point{
		X: new(big.Int).SetBytes(b[1:33]),
		Y: new(big.Int).SetBytes(b[33:65]),
	}
	if !p.IsOnCurve() {
		return Point{}, fmt.Errorf("point is not on the curve")
	}
	return p, nil
}

// RandomScalar returns a uniformly random scalar in [0, Order)
func RandomScalar() (*big.Int, error) {
	return rand.Int(rand.Reader, Order)
}

// HashToCurve deterministically maps an arbitrary byte string to a curve point.
//
// An HKDF-SHA256 stream keyed by the input yields candidate x-coordinates and
// a parity bit. Candidates outside the field or without a square root for
// x^3 + 7 are rejected. This is not constant time; it is only applied to
// public inputs.
func HashToCurve(input []byte) (Point, error) {
	params := group.Params()
	stream := hkdf.New(sha256.New, input, nil, []byte(hashToCurveInfo))

	candidate := make([]byte, 33)
	for i := 0; i < maxHashToCurveAttempts; i++ {
		if _, err := io.ReadFull(stream, candidate); err != nil {
			return Point{}, fmt.Errorf("hash to curve: %w", err)
		}
		x := new(big.Int).SetBytes(candidate[:32])
		if x.Cmp(params.P) >= 0 {
			continue
		}

		// y^2 = x^3 + b
		y2 := new(big.Int).Mul(x, x)
		y2.Mul(y2, x)
		y2.Add(y2, params.B)
		y2.Mod(y2, params.P)

		y := new(big.Int).ModSqrt(y2, params.P)
		if y == nil {
			continue
		}
		if y.Bit(0) != uint(candidate[32]&1) {
			y.Sub(params.P, y)
		}

		p := Point{X: x, Y: y}
		if !p.IsOnCurve() {
			continue
		}
		return p, nil
	}
	return Point{}, fmt.Errorf("hash to curve: no point found after %d attempts", maxHashToCurveAttempts)
}

// MustHashToCurve is like HashToCurve but panics on failure.
// It is meant for package-level constants.
func MustHashToCurve(input []byte) Point {
	p, err := HashToCurve(input)
	if err != nil {
		panic(err)
	}
	return p
}
