// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Snapshot is a read-only dump of every fuse of a catalog.
type Snapshot struct {
	Platform string         `cbor:"1,keyasint"`
	Taken    int64          `cbor:"2,keyasint"` // unix seconds
	Fuses    []FuseSnapshot `cbor:"3,keyasint"`
	// Checksum is CRC-16-CCITT over every other field, fuses in order.
	Checksum uint16 `cbor:"4,keyasint"`
}

// FuseSnapshot is one fuse of a Snapshot.
type FuseSnapshot struct {
	Name  string `cbor:"1,keyasint"`
	Kind  string `cbor:"2,keyasint"`
	Value string `cbor:"3,keyasint"`
	Words []Word `cbor:"4,keyasint"`
}

var (
	snapshotEnc cbor.EncMode
	snapshotDec cbor.DecMode
)

func init() {
	var err error
	snapshotEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("otp: CBOR encoder initialization failed: " + err.Error())
	}
	snapshotDec, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("otp: CBOR decoder initialization failed: " + err.Error())
	}
}

// TakeSnapshot reads every fuse of c from s. It never writes.
func TakeSnapshot(c *Catalog, s Store) (*Snapshot, error) {
	snap := &Snapshot{Platform: c.Platform().Name, Taken: time.Now().Unix()}
	for _, e := range c.Entries() {
		f := NewFuse(e, s)
		words, err := f.Words()
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", e.Name, err)
		}
		snap.Fuses = append(snap.Fuses, FuseSnapshot{
			Name:  e.Name,
			Kind:  e.Kind.String(),
			Value: f.decode(words),
			Words: words,
		})
	}
	snap.Checksum = snap.crc()
	return snap, nil
}

func (s *Snapshot) crc() uint16 {
	buf := appendField(nil, s.Platform)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(s.Taken))
	for _, f := range s.Fuses {
		buf = appendField(buf, f.Name)
		buf = appendField(buf, f.Kind)
		buf = appendField(buf, f.Value)
		for _, w := range f.Words {
			buf = binary.LittleEndian.AppendUint64(buf, uint64(w.Offset))
			b := wordBytes(w.Value)
			buf = append(buf, b[:]...)
		}
	}
	return CalculateCRC(buf)
}

func appendField(buf []byte, field string) []byte {
	return append(append(buf, field...), 0)
}

// check decodes every fuse again from its words with the platform catalog
// and compares the result with the stored value.
func (s *Snapshot) check() error {
	p, ok := LookupPlatform(s.Platform)
	if !ok {
		return fmt.Errorf("snapshot of unknown platform %q", s.Platform)
	}
	c, err := NewCatalog(p)
	if err != nil {
		return err
	}
	for _, fs := range s.Fuses {
		e, ok := c.Lookup(fs.Name)
		if !ok {
			return fmt.Errorf("snapshot fuse %q not on %s", fs.Name, s.Platform)
		}
		if fs.Kind != e.Kind.String() {
			return fmt.Errorf("snapshot fuse %s: kind %q, expected %s", fs.Name, fs.Kind, e.Kind)
		}
		offs := e.Offsets()
		if len(fs.Words) != len(offs) {
			return fmt.Errorf("snapshot fuse %s: %d words, expected %d", fs.Name, len(fs.Words), len(offs))
		}
		for i, w := range fs.Words {
			if w.Offset != offs[i] {
				return fmt.Errorf("snapshot fuse %s: word at 0x%x, expected 0x%x", fs.Name, w.Offset, offs[i])
			}
		}
		f := NewFuse(e, nil)
		decoded := f.decode(fs.Words)
		if fs.Value == decoded {
			continue
		}
		// MAC values may have been printed in another style.
		if canon, err := f.Canonical(fs.Value); err != nil || canon != decoded {
			return fmt.Errorf("snapshot fuse %s: value %q does not match its words (%s)", fs.Name, fs.Value, decoded)
		}
	}
	return nil
}

// MarshalSnapshot encodes s as deterministic CBOR.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return snapshotEnc.Marshal(s)
}

// UnmarshalSnapshot decodes a snapshot, verifies its checksum and checks
// every value against its raw words.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := snapshotDec.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if crc := s.crc(); crc != s.Checksum {
		return nil, fmt.Errorf("snapshot checksum mismatch: stored 0x%04X, computed 0x%04X", s.Checksum, crc)
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	return &s, nil
}

// String formats the snapshot as one line per fuse followed by its words.
func (s *Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s, %s, crc 0x%04X\n", s.Platform, time.Unix(s.Taken, 0).UTC().Format(time.RFC3339), s.Checksum)
	for _, f := range s.Fuses {
		fmt.Fprintf(&b, "%-22s %s\n", f.Name, f.Value)
		for _, w := range f.Words {
			fmt.Fprintf(&b, "    0x%03x: 0x%08x\n", w.Offset, w.Value)
		}
	}
	return b.String()
}
