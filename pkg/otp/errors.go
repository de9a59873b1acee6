// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import (
	"errors"
	"fmt"
)

var (
	// ErrUnaligned is returned for offsets that are not a multiple of WordSize.
	ErrUnaligned = errors.New("offset not word aligned")
	// ErrNoRegister is returned by stores that cannot address an offset.
	ErrNoRegister = errors.New("no register at offset")
)

// StorageError is a failure of the register medium. It is never retried:
// a failed write may already have burned some bits.
type StorageError struct {
	Op     string // "open", "read", "write", "close"
	Path   string
	Offset int64
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s at offset 0x%x: %v", e.Op, e.Path, e.Offset, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidationError reports a literal that does not match the fuse format.
type ValidationError struct {
	Fuse    string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s argument %q: %s", e.Fuse, e.Value, e.Message)
}

// NotFoundError reports a fuse name missing from the platform catalog.
type NotFoundError struct {
	Fuse     string
	Platform string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("fuse %q not found on %s", e.Fuse, e.Platform)
}

// MismatchError is the verify-mode failure: the fused value differs from
// the requested one.
type MismatchError struct {
	Fuse      string
	Fused     string
	Requested string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: fused value %q not equal to requested %q", e.Fuse, e.Fused, e.Requested)
}

// NotFuseableError is the commit-mode failure: the requested value would
// need bits cleared that are already burned.
type NotFuseableError struct {
	Fuse      string
	Fused     string
	Requested string
}

func (e *NotFuseableError) Error() string {
	return fmt.Sprintf("%s: already fused %q, cannot burn %q", e.Fuse, e.Fused, e.Requested)
}
