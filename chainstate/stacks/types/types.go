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

// Package types holds the anchored-block / microblock data model: headers,
// chain tips, and the narrow Transaction contract the core needs from the
// external VM's transaction representation.
package types

import (
	"encoding/binary"

	"github.com/lp662lp662/stacks-blockchain/stackscrypto"
)

// Hash256 is re-exported from stackscrypto so callers don't need to import
// both packages for the common case.
type Hash256 = stackscrypto.Hash256

// AnchorMode constrains where a transaction may be packed: into the
// anchored block, into a microblock, or either.
type AnchorMode uint8

const (
	AnchorModeOnChainOnly AnchorMode = iota
	AnchorModeOffChainOnly
	AnchorModeAny
)

func (m AnchorMode) String() string {
	switch m {
	case AnchorModeOnChainOnly:
		return "OnChainOnly"
	case AnchorModeOffChainOnly:
		return "OffChainOnly"
	case AnchorModeAny:
		return "Any"
	default:
		return "Unknown"
	}
}

// AllowedInAnchoredBlock reports whether a transaction with this anchor
// mode may be packed into the anchored-block partition.
func (m AnchorMode) AllowedInAnchoredBlock() bool {
	return m == AnchorModeOnChainOnly || m == AnchorModeAny
}

// AllowedInMicroblock reports whether a transaction with this anchor mode
// may be packed into the microblock-stream partition.
func (m AnchorMode) AllowedInMicroblock() bool {
	return m == AnchorModeOffChainOnly || m == AnchorModeAny
}

// Transaction is the only contract the core needs from the VM's concrete
// transaction representation: an identity, an anchor mode, and a canonical
// serialization to size against the epoch budget.
type Transaction interface {
	TxID() Hash256
	AnchorMode() AnchorMode
	Serialize() []byte
}

// TotalWork is the cumulative burn-chain work backing a chain tip.
type TotalWork struct {
	Burn   uint64
	Height uint64
}

// InitialTotalWork is the zero-value work score assigned to the genesis
// chain tip.
func InitialTotalWork() TotalWork { return TotalWork{} }

func (w TotalWork) serialize(buf *binBuf) {
	buf.putU64(w.Burn)
	buf.putU64(w.Height)
}

// VRFProof is an opaque verifiable-random-function proof granting mining
// rights for one tenure. Its internal structure belongs to the burn-chain
// sortition subsystem (an external collaborator); the core only needs to
// serialize and carry it.
type VRFProof []byte

// ChainTip is the immutable parent reference a builder is constructed
// from.
type ChainTip struct {
	AnchoredHeader AnchoredHeader
	MicroblockTail *MicroblockHeader
	BlockHeight    uint64
	IndexRoot      Hash256
	BurnHeaderHash Hash256
}

// AnchoredHeader is the committed header of an anchored block.
type AnchoredHeader struct {
	ParentBlockID            Hash256
	ParentMicroblock         Hash256
	ParentMicroblockSequence uint16
	TotalWork                TotalWork
	VRFProof                 VRFProof
	TxMerkleRoot             Hash256
	StateIndexRoot           Hash256
	MicroblockPubKeyHash     [20]byte
}

// Serialize renders the canonical byte encoding consumed by BlockID and by
// size-budget accounting. The layout is this chain's own fixed binary
// format: parent fields, then total work, then proof (length-prefixed),
// then the three roots/hash, in field-declaration order.
func (h AnchoredHeader) Serialize() []byte {
	buf := newBinBuf()
	buf.putHash(h.ParentBlockID)
	buf.putHash(h.ParentMicroblock)
	buf.putU16(h.ParentMicroblockSequence)
	h.TotalWork.serialize(buf)
	buf.putBytes(h.VRFProof)
	buf.putHash(h.TxMerkleRoot)
	buf.putHash(h.StateIndexRoot)
	buf.putFixed(h.MicroblockPubKeyHash[:])
	return buf.Bytes()
}

// BlockID is the header's identity: the hash of its canonical
// serialization.
func (h AnchoredHeader) BlockID() Hash256 {
	return stackscrypto.Sha512Trunc256(h.Serialize())
}

// IndexBlockID derives the persistent trie namespace key for an anchored
// header mined atop a given burn header.
func IndexBlockID(burnHeaderHash, blockHash Hash256) Hash256 {
	return stackscrypto.Sha512Trunc256Concat(burnHeaderHash[:], blockHash[:])
}

// MicroblockHeader is the header of one miner-signed microblock.
type MicroblockHeader struct {
	Sequence     uint16
	PrevBlockID  Hash256
	TxMerkleRoot Hash256
	Signature    stackscrypto.MessageSignature
}

// preimage is the canonical serialization with the signature field
// zeroed, i.e. what actually gets signed/verified.
func (h MicroblockHeader) preimage() []byte {
	buf := newBinBuf()
	buf.putU16(h.Sequence)
	buf.putHash(h.PrevBlockID)
	buf.putHash(h.TxMerkleRoot)
	buf.putFixed(make([]byte, len(h.Signature)))
	return buf.Bytes()
}

// Serialize renders the canonical byte encoding including the signature.
func (h MicroblockHeader) Serialize() []byte {
	buf := newBinBuf()
	buf.putU16(h.Sequence)
	buf.putHash(h.PrevBlockID)
	buf.putHash(h.TxMerkleRoot)
	buf.putFixed(h.Signature[:])
	return buf.Bytes()
}

// BlockID is the microblock header's identity.
func (h MicroblockHeader) BlockID() Hash256 {
	return stackscrypto.Sha512Trunc256(h.Serialize())
}

// PreimageDigest is the hash actually signed/verified: SHA-512/256 over the
// serialization with the signature field zeroed.
func (h MicroblockHeader) PreimageDigest() Hash256 {
	return stackscrypto.Sha512Trunc256(h.preimage())
}

// AnchoredBlock is the finalized snapshot returned by MineAnchoredBlock.
type AnchoredBlock struct {
	Header       AnchoredHeader
	Transactions []Transaction
}

// BlockHash is the identity of the anchored block, which is simply its
// header's identity (the reference implementation's StacksBlock::block_hash
// delegates to the header the same way).
func (b AnchoredBlock) BlockHash() Hash256 { return b.Header.BlockID() }

// Microblock is one emitted microblock with its signed header and the
// transactions it carries.
type Microblock struct {
	Header       MicroblockHeader
	Transactions []Transaction
}

// binBuf is a tiny big-endian, length-prefixed-bytes encoder shared by the
// header Serialize methods above. It exists because this chain's wire
// format is its own fixed binary layout, not RLP/protobuf/JSON (see
// DESIGN.md for why no third-party codec library fits here).
type binBuf struct {
	b []byte
}

func newBinBuf() *binBuf { return &binBuf{b: make([]byte, 0, 128)} }

func (b *binBuf) putU16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.b = append(b.b, tmp[:]...)
}

func (b *binBuf) putU64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	b.b = append(b.b, tmp[:]...)
}

func (b *binBuf) putHash(h Hash256) {
	b.b = append(b.b, h[:]...)
}

func (b *binBuf) putFixed(v []byte) {
	b.b = append(b.b, v...)
}

func (b *binBuf) putBytes(v []byte) {
	b.putU64(uint64(len(v)))
	b.b = append(b.b, v...)
}

func (b *binBuf) Bytes() []byte { return b.b }
