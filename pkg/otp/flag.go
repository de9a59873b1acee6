// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

// FlagValue is one named bit pattern of a flag fuse.
type FlagValue struct {
	Name string
	Bits uint32
}

// FlagDesc describes a named enumeration stored under a mask of one word.
//
// Values are ordered. A name may appear twice when two encodings mean the
// same thing; both decode to that name and writes use the first.
type FlagDesc struct {
	Offset int64
	Mask   uint32
	Values []FlagValue
}

// Flags is shorthand for building an ordered value table.
func Flags(pairs ...FlagValue) []FlagValue {
	return pairs
}

// bits returns the pattern for name.
func (d *FlagDesc) bits(name string) (uint32, bool) {
	for _, v := range d.Values {
		if v.Name == name {
			return v.Bits, true
		}
	}
	return 0, false
}

// decode maps a raw word to a value name, or Unknown.
func (d *FlagDesc) decode(word uint32) string {
	val := word & d.Mask
	for _, v := range d.Values {
		if v.Bits == val {
			return v.Name
		}
	}
	return Unknown
}

// fuseable reports whether every bit burned under the mask is also set in
// target. OTP bits never return to 0, so any other request is impossible.
func (d *FlagDesc) fuseable(word, target uint32) bool {
	return (word&d.Mask)&^target == 0
}

// names returns value names in table order without duplicates.
func (d *FlagDesc) names() []string {
	seen := make(map[string]bool, len(d.Values))
	var out []string
	for _, v := range d.Values {
		if !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v.Name)
		}
	}
	return out
}
