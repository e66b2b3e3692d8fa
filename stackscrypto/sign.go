// Copyright 2018 The klaytn Authors
// This file is part of the klaytn library.
//
// The klaytn library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The klaytn library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the klaytn library. If not, see <http://www.gnu.org/licenses/>.

package stackscrypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// MessageSignature is a 65-byte compact recoverable secp256k1 signature:
// recovery id followed by the fixed-size (r, s) pair, matching the wire
// shape of util::secp256k1::MessageSignature in the reference
// implementation.
type MessageSignature [65]byte

// PrivateKey wraps a secp256k1 scalar.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// GeneratePrivateKey returns a fresh, randomly generated miner key. Used by
// tests and by any caller standing up a new miner identity.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes parses a 32-byte scalar into a PrivateKey.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("stackscrypto: private key must be 32 bytes, got %d", len(b))
	}
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(b)}, nil
}

// CompressedPubKey returns the 33-byte compressed SEC1 encoding of the
// corresponding public key, the form the chain always uses for microblock
// pubkey-hash derivation.
func (p *PrivateKey) CompressedPubKey() []byte {
	return p.key.PubKey().SerializeCompressed()
}

// Sign produces a compact recoverable signature over digest (the
// pre-image hash of a header with its signature field zeroed).
func (p *PrivateKey) Sign(digest Hash256) (MessageSignature, error) {
	compact := ecdsa.SignCompact(p.key, digest[:], true)
	if len(compact) != 65 {
		return MessageSignature{}, fmt.Errorf("stackscrypto: unexpected compact signature length %d", len(compact))
	}
	var sig MessageSignature
	copy(sig[:], compact)
	return sig, nil
}

// Recover recovers the compressed public key that produced sig over digest,
// and its hash160, for comparison against a header's microblock_pubkey_hash.
func Recover(sig MessageSignature, digest Hash256) (pubKeyHash [20]byte, err error) {
	pub, _, err := ecdsa.RecoverCompact(sig[:], digest[:])
	if err != nil {
		return [20]byte{}, err
	}
	return Hash160(pub.SerializeCompressed()), nil
}

// VerifyPubKeyHash reports whether sig over digest recovers to pubKeyHash.
func VerifyPubKeyHash(sig MessageSignature, digest Hash256, pubKeyHash [20]byte) bool {
	recovered, err := Recover(sig, digest)
	if err != nil {
		return false
	}
	return recovered == pubKeyHash
}
