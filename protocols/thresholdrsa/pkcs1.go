package thresholdrsa

import (
	"crypto"
	"math/big"

	"github.com/shaih/go-pvss/cryptoerr"
)

// DER encoded DigestInfo prefixes
var hashPrefixes = map[crypto.Hash][]byte{
	crypto.SHA256: {0x30, 0x31, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x01, 0x05, 0x00, 0x04, 0x20},
	crypto.SHA512: {0x30, 0x51, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x03, 0x05, 0x00, 0x04, 0x40},
}

// EncodePKCS1v15 returns the integer representative of the EMSA-PKCS1-v1_5
// encoding of digest for the modulus n:
// 0x00 || 0x01 || 0xff ... 0xff || 0x00 || DigestInfo || digest.
// Signing it with the threshold protocol gives a signature that
// rsa.VerifyPKCS1v15 accepts.
func EncodePKCS1v15(n *big.Int, hash crypto.Hash, digest []byte) (*big.Int, error) {
	const op = "thresholdrsa.EncodePKCS1v15"

	prefix, ok := hashPrefixes[hash]
	if !ok {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op, "unsupported hash function %v", hash)
	}
	if len(digest) != hash.Size() {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op,
			"digest has length %d, expected %d", len(digest), hash.Size())
	}

	k := (n.BitLen() + 7) / 8
	tLen := len(prefix) + len(digest)
	if k < tLen+11 {
		return nil, cryptoerr.Errorf(cryptoerr.Configuration, op, "modulus too short")
	}

	em := make([]byte, k)
	em[1] = 1
	for i := 2; i < k-tLen-1; i++ {
		em[i] = 0xff
	}
	copy(em[k-tLen:k-len(digest)], prefix)
	copy(em[k-len(digest):], digest)

	return new(big.Int).SetBytes(em), nil
}
