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

package miner

import (
	"fmt"

	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/types"
)

// Kind distinguishes the error taxonomy surfaced by the core (spec.md §7).
type Kind int

const (
	KindBlockTooBig Kind = iota
	KindInvalidAnchorMode
	KindVmError
	KindInvalidStacksMicroblock
	KindStreamTooLong
)

// Error is the common shape of every error the assembler surfaces: a
// Kind for programmatic dispatch, and a Fatal bit so a caller can tell
// recoverable per-transaction failures from tenure-ending ones without
// string matching, per spec.md §7.
type Error struct {
	Kind    Kind
	Message string
	Fatal   bool
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// ErrBlockTooBig is returned by TryMineTx when appending tx would bring
// bytes_so_far to MaxEpochSize or beyond. Recoverable: bytes_so_far is left unchanged and the
// builder remains usable.
func ErrBlockTooBig() *Error {
	return &Error{Kind: KindBlockTooBig, Message: "block too big", Fatal: false}
}

// ErrInvalidAnchorMode is returned by TryMineTx when a transaction's
// anchor mode is incompatible with the current partition. Recoverable.
func ErrInvalidAnchorMode(mode types.AnchorMode, anchoredDone bool) *Error {
	partition := "anchored block"
	if anchoredDone {
		partition = "microblock stream"
	}
	return &Error{
		Kind:    KindInvalidAnchorMode,
		Message: fmt.Sprintf("anchor mode %s is invalid for the %s", mode, partition),
		Fatal:   false,
	}
}

// ErrVm wraps a VM-surfaced failure. Recoverable unless fatal is true
// (raised when reward processing inside MineAnchoredBlock fails).
func ErrVm(cause error, fatal bool) *Error {
	return &Error{Kind: KindVmError, Message: "vm error", Fatal: fatal, Cause: cause}
}

// ErrInvalidStacksMicroblock is raised by EpochBegin when replaying the
// parent microblock stream fails; the caller must abandon this tenure.
func ErrInvalidStacksMicroblock(offender types.Hash256, cause error) *Error {
	return &Error{
		Kind:    KindInvalidStacksMicroblock,
		Message: fmt.Sprintf("invalid parent microblock %s", offender),
		Fatal:   true,
		Cause:   cause,
	}
}

// ErrStreamTooLong is returned by MineNextMicroblock when the 16-bit
// sequence counter would overflow. Terminal for the tenure.
func ErrStreamTooLong() *Error {
	return &Error{Kind: KindStreamTooLong, Message: "microblock stream too long", Fatal: true}
}
