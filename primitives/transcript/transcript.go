// Package transcript provides the canonical byte encoding of integer and
// point tuples used as Fiat-Shamir hash input and as map keys.
//
// Every element is written as a 4-byte big-endian length followed by its
// bytes, so two different tuples never encode to the same string.
// Integers are written as a sign byte followed by the big-endian magnitude.
package transcript

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"math/big"
)

// Transcript accumulates the canonical encoding of a tuple
type Transcript struct {
	h hash.Hash
}

// New returns an empty transcript for the given domain separation label
func New(label string) *Transcript {
	t := &Transcript{h: sha256.New()}
	t.AppendBytes([]byte(label))
	return t
}

// AppendBytes writes a length-prefixed byte string
func (t *Transcript) AppendBytes(b []byte) *Transcript {
	var l [4]byte
	binary.BigEndian.PutUint32(l[:], uint32(len(b)))
	t.h.Write(l[:])
	t.h.Write(b)
	return t
}

// AppendInt writes a length-prefixed signed integer
func (t *Transcript) AppendInt(x *big.Int) *Transcript {
	return t.AppendBytes(IntBytes(x))
}

// AppendInts writes each integer in order
func (t *Transcript) AppendInts(xs ...*big.Int) *Transcript {
	for _, x := range xs {
		t.AppendInt(x)
	}
	return t
}

// AppendUint64 writes a length-prefixed 8-byte unsigned integer
func (t *Transcript) AppendUint64(x uint64) *Transcript {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], x)
	return t.AppendBytes(b[:])
}

// Digest returns the SHA-256 digest of everything written so far
func (t *Transcript) Digest() []byte {
	return t.h.Sum(nil)
}

// Challenge returns the digest as a non-negative integer reduced mod m.
// If m is nil the full 256-bit value is returned.
func (t *Transcript) Challenge(m *big.Int) *big.Int {
	c := new(big.Int).SetBytes(t.Digest())
	if m != nil {
		c.Mod(c, m)
	}
	return c
}

// IntBytes is the canonical encoding of a signed integer.
// nil encodes like zero.
func IntBytes(x *big.Int) []byte {
	if x == nil || x.Sign() == 0 {
		return []byte{0}
	}
	mag := x.Bytes()
	out := make([]byte, 1+len(mag))
	if x.Sign() < 0 {
		out[0] = 1
	}
	copy(out[1:], mag)
	return out
}

// IntKey is a map key for an integer that does not depend on the
// internal representation of big.Int
func IntKey(x *big.Int) string {
	return string(IntBytes(x))
}
