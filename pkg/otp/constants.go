// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package otp encodes and decodes one-time-programmable fuse registers.
//
// Fuse bits only ever move from 0 to 1. Every write performed through this
// package is permanent, so the package separates reading, validating and
// comparing a value from the final write, and refuses any write that would
// need an already burned bit cleared.
//
// A platform Catalog maps fuse names to one of four codecs (flag, MAC,
// dual MAC, SRK hash). A Provisioner drives a codec against a Store through
// the inspect, verify and commit modes.
package otp

import "fmt"

// WordSize is the register granularity in bytes. No narrower access exists.
const WordSize = 4

// Unknown is returned by flag fuses whose masked bits match no table entry.
const Unknown = "UNKNOWN"

// Bit returns a word with only bit n set.
func Bit(n int) uint32 {
	return 1 << uint(n)
}

// Mask returns a word with bits start..end (inclusive) set.
func Mask(start, end int) uint32 {
	var m uint32
	for n := start; n <= end; n++ {
		m |= 1 << uint(n)
	}
	return m
}

// Layout is a platform's bank/word addressing of the OTP array.
type Layout struct {
	Name         string
	WordsPerBank int
}

// Offset returns the byte offset of a bank/word pair:
//
//	offset = (bank * words_per_bank + word) * 4
func (l Layout) Offset(bank, word int) int64 {
	return int64((bank*l.WordsPerBank + word) * WordSize)
}

// BankWord converts a byte offset back to its bank/word pair.
func (l Layout) BankWord(offset int64) (bank, word int, err error) {
	if offset < 0 || offset%WordSize != 0 {
		return 0, 0, fmt.Errorf("%w: 0x%x", ErrUnaligned, offset)
	}
	if l.WordsPerBank <= 0 {
		return 0, 0, fmt.Errorf("layout %q has no words per bank", l.Name)
	}
	index := int(offset / WordSize)
	return index / l.WordsPerBank, index % l.WordsPerBank, nil
}

// Kind identifies which codec a Fuse uses.
type Kind int

// Codec kinds
const (
	KindFlag Kind = iota
	KindMAC
	KindDualMAC
	KindSRK
)

func (k Kind) String() string {
	switch k {
	case KindFlag:
		return "flag"
	case KindMAC:
		return "mac"
	case KindDualMAC:
		return "dual-mac"
	case KindSRK:
		return "srk"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MACStyle selects how a platform prints MAC addresses.
type MACStyle int

// MAC output styles
const (
	// MACStylePlain prints 12 upper-case hex digits, e.g. 0010302050A2.
	MACStylePlain MACStyle = iota
	// MACStyleColon prints lower-case colon separated pairs, e.g. 00:10:30:20:50:a2.
	MACStyleColon
)

// SRK literal geometry: 8 fields of "0x" + 8 hex digits, comma separated.
const (
	srkWords      = 8
	srkFieldLen   = 10
	srkLiteralLen = srkWords*srkFieldLen + srkWords - 1
)

// ParseMACStyle maps "plain" or "colon" to a MACStyle.
func ParseMACStyle(s string) (MACStyle, error) {
	switch s {
	case "plain":
		return MACStylePlain, nil
	case "colon":
		return MACStyleColon, nil
	default:
		return 0, fmt.Errorf("unknown MAC style %q (plain, colon)", s)
	}
}
