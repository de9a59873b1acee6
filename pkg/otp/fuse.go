// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import "fmt"

// Entry is one named fuse of a platform catalog. Exactly the descriptor
// matching Kind is set.
type Entry struct {
	Name    string
	Kind    Kind
	Flag    *FlagDesc
	MAC     *MACDesc
	DualMAC *DualMACDesc
	SRK     *SRKDesc
}

// FlagEntry builds a flag fuse entry.
func FlagEntry(name string, offset int64, mask uint32, values []FlagValue) Entry {
	return Entry{Name: name, Kind: KindFlag, Flag: &FlagDesc{Offset: offset, Mask: mask, Values: values}}
}

// MACEntry builds a MAC fuse entry.
func MACEntry(name string, offset1, offset2 int64, style MACStyle) Entry {
	return Entry{Name: name, Kind: KindMAC, MAC: &MACDesc{Offset1: offset1, Offset2: offset2, Style: style}}
}

// DualMACEntry builds a second-MAC fuse entry.
func DualMACEntry(name string, offsetA, offsetB int64, style MACStyle) Entry {
	return Entry{Name: name, Kind: KindDualMAC, DualMAC: &DualMACDesc{OffsetA: offsetA, OffsetB: offsetB, Style: style}}
}

// SRKEntry builds an SRK hash entry.
func SRKEntry(name string, offsets [8]int64) Entry {
	return Entry{Name: name, Kind: KindSRK, SRK: &SRKDesc{Offsets: offsets}}
}

// Offsets returns the words the entry occupies, in read order.
func (e Entry) Offsets() []int64 {
	switch e.Kind {
	case KindFlag:
		return []int64{e.Flag.Offset}
	case KindMAC:
		return []int64{e.MAC.Offset1, e.MAC.Offset2}
	case KindDualMAC:
		return []int64{e.DualMAC.OffsetA, e.DualMAC.OffsetB}
	case KindSRK:
		return append([]int64(nil), e.SRK.Offsets[:]...)
	default:
		panic(fmt.Sprintf("otp: unhandled fuse kind %v", e.Kind))
	}
}

// Choices describes the accepted arguments: flag names, or a format hint.
func (e Entry) Choices() []string {
	switch e.Kind {
	case KindFlag:
		return e.Flag.names()
	case KindMAC:
		return []string{macHint(e.MAC.Style)}
	case KindDualMAC:
		return []string{macHint(e.DualMAC.Style)}
	case KindSRK:
		return []string{"0xXXXXXXXX,...,0xXXXXXXXX (8 comma separated fields)"}
	default:
		panic(fmt.Sprintf("otp: unhandled fuse kind %v", e.Kind))
	}
}

func macHint(style MACStyle) string {
	if style == MACStyleColon {
		return "xx:xx:xx:xx:xx:xx (lower case)"
	}
	return "XXXXXXXXXXXX (capital letters)"
}

// Word is a raw register value at an offset.
type Word struct {
	Offset int64  `cbor:"1,keyasint" yaml:"offset"`
	Value  uint32 `cbor:"2,keyasint" yaml:"value"`
}

// Fuse is a catalog entry bound to a store. All operations dispatch on the
// entry kind.
type Fuse struct {
	entry Entry
	store Store
}

// NewFuse binds e to s.
func NewFuse(e Entry, s Store) *Fuse {
	return &Fuse{entry: e, store: s}
}

// Name returns the catalog name.
func (f *Fuse) Name() string { return f.entry.Name }

// Kind returns the codec kind.
func (f *Fuse) Kind() Kind { return f.entry.Kind }

// Entry returns the catalog entry.
func (f *Fuse) Entry() Entry { return f.entry }

// Words reads the raw words behind the fuse.
func (f *Fuse) Words() ([]Word, error) {
	offs := f.entry.Offsets()
	words := make([]Word, 0, len(offs))
	for _, off := range offs {
		v, err := f.store.ReadWord(off)
		if err != nil {
			return nil, err
		}
		words = append(words, Word{Offset: off, Value: v})
	}
	return words, nil
}

// Get reads and decodes the fused value. All reads complete before the
// value is assembled.
func (f *Fuse) Get() (string, error) {
	words, err := f.Words()
	if err != nil {
		return "", err
	}
	return f.decode(words), nil
}

func (f *Fuse) decode(words []Word) string {
	e := f.entry
	switch e.Kind {
	case KindFlag:
		return e.Flag.decode(words[0].Value)
	case KindMAC:
		return FormatMAC(e.MAC.decode(words[0].Value, words[1].Value), e.MAC.Style)
	case KindDualMAC:
		return FormatMAC(e.DualMAC.decode(words[0].Value, words[1].Value), e.DualMAC.Style)
	case KindSRK:
		var v [srkWords]uint32
		for i := range v {
			v[i] = words[i].Value
		}
		return FormatSRK(v)
	default:
		panic(fmt.Sprintf("otp: unhandled fuse kind %v", e.Kind))
	}
}

// Validate checks arg against the fuse literal format without touching the
// store.
func (f *Fuse) Validate(arg string) error {
	_, err := f.Canonical(arg)
	return err
}

// ValidArg reports whether arg is an accepted literal.
func (f *Fuse) ValidArg(arg string) bool {
	return f.Validate(arg) == nil
}

// Canonical returns arg in the exact form Get would print it, so that a
// requested value and a fused value compare equal when they mean the same.
func (f *Fuse) Canonical(arg string) (string, error) {
	e := f.entry
	switch e.Kind {
	case KindFlag:
		if _, ok := e.Flag.bits(arg); !ok {
			return "", f.invalid(arg, fmt.Sprintf("expected one of %v", e.Flag.names()))
		}
		return arg, nil
	case KindMAC, KindDualMAC:
		mac, err := ParseMAC(arg)
		if err != nil {
			return "", f.invalid(arg, err.Error())
		}
		return FormatMAC(mac, f.macStyle()), nil
	case KindSRK:
		words, err := ParseSRK(arg)
		if err != nil {
			return "", f.invalid(arg, err.Error())
		}
		return FormatSRK(words), nil
	default:
		panic(fmt.Sprintf("otp: unhandled fuse kind %v", e.Kind))
	}
}

func (f *Fuse) macStyle() MACStyle {
	if f.entry.Kind == KindDualMAC {
		return f.entry.DualMAC.Style
	}
	return f.entry.MAC.Style
}

func (f *Fuse) invalid(arg, msg string) error {
	return &ValidationError{Fuse: f.entry.Name, Value: arg, Message: msg}
}

// IsFuseable reports whether arg can still be burned on top of what is
// fused. Flag fuses check bit monotonicity under the mask; MAC and SRK
// fuses only allow burning while nothing is burned yet.
func (f *Fuse) IsFuseable(arg string) (bool, error) {
	if err := f.Validate(arg); err != nil {
		return false, err
	}
	e := f.entry
	switch e.Kind {
	case KindFlag:
		word, err := f.store.ReadWord(e.Flag.Offset)
		if err != nil {
			return false, err
		}
		target, _ := e.Flag.bits(arg)
		return e.Flag.fuseable(word, target), nil
	case KindMAC, KindDualMAC:
		words, err := f.Words()
		if err != nil {
			return false, err
		}
		var mac [6]byte
		if e.Kind == KindMAC {
			mac = e.MAC.decode(words[0].Value, words[1].Value)
		} else {
			mac = e.DualMAC.decode(words[0].Value, words[1].Value)
		}
		return macIsZero(mac), nil
	case KindSRK:
		cur, err := f.Get()
		if err != nil {
			return false, err
		}
		return cur == ZeroSRK, nil
	default:
		panic(fmt.Sprintf("otp: unhandled fuse kind %v", e.Kind))
	}
}

// Set encodes arg and writes it. The literal is parsed completely before
// the first write. Writes to multi-word fuses are not atomic as a group: a
// failure between words leaves a permanently partial value.
//
// Flag fuses write the value's bit pattern as the whole word. That relies on
// the medium ORing writes into burned bits; see MergeStore.
func (f *Fuse) Set(arg string) error {
	words, err := f.encode(arg)
	if err != nil {
		return err
	}
	for _, w := range words {
		if err := f.store.WriteWord(w.Offset, w.Value); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fuse) encode(arg string) ([]Word, error) {
	e := f.entry
	switch e.Kind {
	case KindFlag:
		bits, ok := e.Flag.bits(arg)
		if !ok {
			return nil, f.invalid(arg, fmt.Sprintf("expected one of %v", e.Flag.names()))
		}
		return []Word{{Offset: e.Flag.Offset, Value: bits}}, nil
	case KindMAC:
		mac, err := ParseMAC(arg)
		if err != nil {
			return nil, f.invalid(arg, err.Error())
		}
		w1, w2 := e.MAC.encode(mac)
		return []Word{{Offset: e.MAC.Offset1, Value: w1}, {Offset: e.MAC.Offset2, Value: w2}}, nil
	case KindDualMAC:
		mac, err := ParseMAC(arg)
		if err != nil {
			return nil, f.invalid(arg, err.Error())
		}
		a, b := e.DualMAC.encode(mac)
		return []Word{{Offset: e.DualMAC.OffsetA, Value: a}, {Offset: e.DualMAC.OffsetB, Value: b}}, nil
	case KindSRK:
		vals, err := ParseSRK(arg)
		if err != nil {
			return nil, f.invalid(arg, err.Error())
		}
		words := make([]Word, srkWords)
		for i, v := range vals {
			words[i] = Word{Offset: e.SRK.Offsets[i], Value: v}
		}
		return words, nil
	default:
		panic(fmt.Sprintf("otp: unhandled fuse kind %v", e.Kind))
	}
}
