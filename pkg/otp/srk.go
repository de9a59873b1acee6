// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import (
	"fmt"
	"strconv"
	"strings"
)

// SRKDesc describes the 256-bit super root key hash spread over 8 words.
type SRKDesc struct {
	Offsets [srkWords]int64
}

// ZeroSRK is the literal of an unburned SRK hash.
var ZeroSRK = FormatSRK([srkWords]uint32{})

// ParseSRK parses 8 comma separated "0xHHHHHHHH" fields. The literal must be
// exactly 87 characters; the prefix and digits are case-insensitive.
func ParseSRK(arg string) ([srkWords]uint32, error) {
	var words [srkWords]uint32
	if len(arg) != srkLiteralLen {
		return words, fmt.Errorf("expected %d characters, got %d", srkLiteralLen, len(arg))
	}
	fields := strings.Split(arg, ",")
	if len(fields) != srkWords {
		return words, fmt.Errorf("expected %d comma separated fields, got %d", srkWords, len(fields))
	}
	for i, f := range fields {
		if len(f) != srkFieldLen || (f[:2] != "0x" && f[:2] != "0X") {
			return words, fmt.Errorf("field %d: expected 0xHHHHHHHH, got %q", i, f)
		}
		v, err := strconv.ParseUint(f[2:], 16, 32)
		if err != nil {
			return words, fmt.Errorf("field %d: %w", i, err)
		}
		words[i] = uint32(v)
	}
	return words, nil
}

// FormatSRK prints words as "0x%08X" fields joined by commas.
func FormatSRK(words [srkWords]uint32) string {
	fields := make([]string, srkWords)
	for i, w := range words {
		fields[i] = fmt.Sprintf("0x%08X", w)
	}
	return strings.Join(fields, ",")
}
