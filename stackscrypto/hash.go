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

// Package stackscrypto collects the chain's fixed cryptographic primitives:
// the truncated SHA-512/256 used for every identifier and Merkle leaf, the
// hash160 used for miner public-key hashes, and secp256k1 compact-recoverable
// signing for microblocks.
package stackscrypto

import (
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/ripemd160"
)

// Hash256 is the chain's fixed-width digest type, used for block and
// microblock identifiers alike.
type Hash256 [32]byte

// Sha512Trunc256 is SHA-512/256: full SHA-512 with the IV specified for the
// 256-bit truncated variant. The standard library exposes this directly, so
// there's no reason to hand-roll it.
func Sha512Trunc256(data []byte) Hash256 {
	return Hash256(sha512.Sum512_256(data))
}

// Sha512Trunc256Concat hashes the concatenation of its arguments, e.g. for
// deriving index_block_id = H(burn_header_hash || block_hash).
func Sha512Trunc256Concat(parts ...[]byte) Hash256 {
	h := sha512.New512_256()
	for _, p := range parts {
		h.Write(p)
	}
	var out Hash256
	copy(out[:], h.Sum(nil))
	return out
}

// Hash160 is RIPEMD-160(SHA-256(data)), used to derive a miner's
// microblock-signing public-key hash from the compressed SEC1 encoding of
// their public key.
func Hash160(data []byte) [20]byte {
	sh := sha256.Sum256(data)
	r := ripemd160.New()
	r.Write(sh[:])
	var out [20]byte
	copy(out[:], r.Sum(nil))
	return out
}

// String renders the digest as lowercase hex, matching the rest of the
// node's common.Hash-style Stringer convention.
func (h Hash256) String() string {
	const hextable = "0123456789abcdef"
	buf := make([]byte, 64)
	for i, b := range h {
		buf[i*2] = hextable[b>>4]
		buf[i*2+1] = hextable[b&0x0f]
	}
	return string(buf)
}

// IsZero reports whether h is the all-zero sentinel value used to mark the
// synthetic first-unsigned microblock placeholder.
func (h Hash256) IsZero() bool {
	return h == Hash256{}
}
