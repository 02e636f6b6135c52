// Copyright 2019 The meridian Authors
// This file is part of the meridian library.
//
// The meridian library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The meridian library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the meridian library. If not, see <http://www.gnu.org/licenses/>.

package crypto

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"
)

const (
	// PublicKeyLength is the byte length of an encoded public key.
	PublicKeyLength = ed25519.PublicKeySize
	// SignatureLength is the byte length of a signature.
	SignatureLength = ed25519.SignatureSize
)

var errBadPublicKey = errors.New("public key must be 32 bytes")

// PublicKey is an ed25519 public key in its canonical 32 byte encoding.
type PublicKey []byte

// SecretKey is an ed25519 private key.
type SecretKey []byte

// Signature is a detached ed25519 signature.
type Signature [SignatureLength]byte

// DefaultSignature is the all-zero signature carried by transactions whose
// signature policy is decided outside the runtime.
var DefaultSignature = Signature{}

// DecodePublicKey validates and converts raw bytes into a PublicKey.
func DecodePublicKey(b []byte) (PublicKey, error) {
	if len(b) != PublicKeyLength {
		return nil, errBadPublicKey
	}
	key := make(PublicKey, PublicKeyLength)
	copy(key, b)
	return key, nil
}

// ParsePublicKey converts the hex text form used in chain specs into a key.
func ParsePublicKey(s string) (PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse public key")
	}
	return DecodePublicKey(b)
}

// String returns the canonical text form of the key.
func (pk PublicKey) String() string {
	return hex.EncodeToString(pk)
}

// Equal reports whether two keys have the same encoding.
func (pk PublicKey) Equal(other PublicKey) bool {
	if len(pk) != len(other) {
		return false
	}
	for i := range pk {
		if pk[i] != other[i] {
			return false
		}
	}
	return true
}

// GenerateKey creates a new random key pair.
func GenerateKey() (PublicKey, SecretKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return PublicKey(pub), SecretKey(priv), nil
}

// Sign signs data with the given secret key.
func Sign(data []byte, sk SecretKey) Signature {
	var sig Signature
	copy(sig[:], ed25519.Sign(ed25519.PrivateKey(sk), data))
	return sig
}

// Verify reports whether sig is a valid signature of data under pk.
func Verify(pk PublicKey, data []byte, sig Signature) bool {
	if len(pk) != PublicKeyLength {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pk), data, sig[:])
}
