// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// MACDesc describes a MAC address packed across two words the way the i.MX
// boot ROM reads it: all of word 1 holds the low four bytes, the low half of
// word 2 holds the high two bytes.
//
//	mac = w2[1] w2[0] w1[3] w1[2] w1[1] w1[0]
type MACDesc struct {
	Offset1 int64
	Offset2 int64
	Style   MACStyle
}

// DualMACDesc describes the second MAC of platforms with two Ethernet
// controllers. It shares word A with the first MAC (upper half) and owns
// word B completely.
//
//	mac = b[3] b[2] b[1] b[0] a[3] a[2]
type DualMACDesc struct {
	OffsetA int64
	OffsetB int64
	Style   MACStyle
}

// ParseMAC accepts 12 hex digits or 6 colon separated pairs, in either case.
func ParseMAC(arg string) ([6]byte, error) {
	var mac [6]byte
	digits := arg
	switch len(arg) {
	case 12:
	case 17:
		for i := 2; i < len(arg); i += 3 {
			if arg[i] != ':' {
				return mac, fmt.Errorf("expected ':' at position %d", i)
			}
		}
		digits = strings.ReplaceAll(arg, ":", "")
	default:
		return mac, fmt.Errorf("expected 12 hex digits or 6 colon separated pairs, got %d characters", len(arg))
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return mac, fmt.Errorf("not hex: %w", err)
	}
	if len(b) != len(mac) {
		return mac, fmt.Errorf("expected 6 bytes, got %d", len(b))
	}
	copy(mac[:], b)
	return mac, nil
}

// FormatMAC prints mac in the given style.
func FormatMAC(mac [6]byte, style MACStyle) string {
	switch style {
	case MACStyleColon:
		parts := make([]string, len(mac))
		for i, b := range mac {
			parts[i] = fmt.Sprintf("%02x", b)
		}
		return strings.Join(parts, ":")
	default:
		return fmt.Sprintf("%02X%02X%02X%02X%02X%02X", mac[0], mac[1], mac[2], mac[3], mac[4], mac[5])
	}
}

func macIsZero(mac [6]byte) bool {
	return mac == [6]byte{}
}

func (d *MACDesc) decode(word1, word2 uint32) [6]byte {
	w1, w2 := wordBytes(word1), wordBytes(word2)
	return [6]byte{w2[1], w2[0], w1[3], w1[2], w1[1], w1[0]}
}

// encode is the inverse of decode. The upper half of word 2 is left zero.
func (d *MACDesc) encode(mac [6]byte) (word1, word2 uint32) {
	w1 := [WordSize]byte{mac[5], mac[4], mac[3], mac[2]}
	w2 := [WordSize]byte{mac[1], mac[0], 0, 0}
	return bytesWord(w1), bytesWord(w2)
}

func (d *DualMACDesc) decode(wordA, wordB uint32) [6]byte {
	a, b := wordBytes(wordA), wordBytes(wordB)
	return [6]byte{b[3], b[2], b[1], b[0], a[3], a[2]}
}

// encode is the inverse of decode. The lower half of word A, which belongs
// to the first MAC, is left zero.
func (d *DualMACDesc) encode(mac [6]byte) (wordA, wordB uint32) {
	a := [WordSize]byte{0, 0, mac[5], mac[4]}
	b := [WordSize]byte{mac[3], mac[2], mac[1], mac[0]}
	return bytesWord(a), bytesWord(b)
}
