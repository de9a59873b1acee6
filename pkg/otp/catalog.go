// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import (
	"fmt"
	"strings"
)

// Platform is the static fuse description of one SoC family.
type Platform struct {
	Name        string
	Description string
	Layout      Layout
	// DefaultPath is the nvmem device of the OCOTP controller.
	DefaultPath string
	// Registers names word offsets for the legacy fsl_otp sysfs interface.
	// Empty when the platform never shipped with that driver.
	Registers map[int64]string
	Fuses     []Entry
}

// Catalog is an immutable, validated name to fuse mapping for a platform.
type Catalog struct {
	platform Platform
	index    map[string]int
}

// NewCatalog validates p and builds its lookup index.
func NewCatalog(p Platform) (*Catalog, error) {
	c := &Catalog{platform: p, index: make(map[string]int, len(p.Fuses))}
	for i, e := range p.Fuses {
		if _, dup := c.index[e.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate fuse %q", p.Name, e.Name)
		}
		if err := validateEntry(e); err != nil {
			return nil, fmt.Errorf("%s: fuse %q: %w", p.Name, e.Name, err)
		}
		c.index[e.Name] = i
	}
	return c, nil
}

// MustCatalog is NewCatalog for the built-in tables; an invalid table is a
// programming error.
func MustCatalog(p Platform) *Catalog {
	c, err := NewCatalog(p)
	if err != nil {
		panic(err)
	}
	return c
}

func validateEntry(e Entry) error {
	for _, off := range e.Offsets() {
		if off < 0 || off%WordSize != 0 {
			return fmt.Errorf("%w: 0x%x", ErrUnaligned, off)
		}
	}
	switch e.Kind {
	case KindFlag:
		if len(e.Flag.Values) == 0 {
			return fmt.Errorf("no values")
		}
		for _, v := range e.Flag.Values {
			if v.Bits&^e.Flag.Mask != 0 {
				return fmt.Errorf("value %s (0x%x) outside mask 0x%x", v.Name, v.Bits, e.Flag.Mask)
			}
		}
	case KindMAC:
		if e.MAC.Offset1 == e.MAC.Offset2 {
			return fmt.Errorf("MAC words overlap")
		}
	case KindDualMAC:
		if e.DualMAC.OffsetA == e.DualMAC.OffsetB {
			return fmt.Errorf("MAC words overlap")
		}
	}
	return nil
}

// Platform returns the platform the catalog was built from.
func (c *Catalog) Platform() Platform {
	return c.platform
}

// Names returns fuse names in table order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.platform.Fuses))
	for i, e := range c.platform.Fuses {
		names[i] = e.Name
	}
	return names
}

// Entries returns the catalog entries in table order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.platform.Fuses...)
}

// Lookup returns the entry for name. Names are case-sensitive.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	i, ok := c.index[name]
	if !ok {
		return Entry{}, false
	}
	return c.platform.Fuses[i], true
}

// Resolve binds the named fuse to store. It performs no register access.
func (c *Catalog) Resolve(store Store, name string) (*Fuse, bool) {
	e, ok := c.Lookup(name)
	if !ok {
		return nil, false
	}
	return NewFuse(e, store), true
}

var platforms = []func() Platform{IMX6DL, IMX8MM, IMX8MN, IMX8MP}

// PlatformNames lists the built-in platforms.
func PlatformNames() []string {
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = p().Name
	}
	return names
}

// LookupPlatform returns a built-in platform by name (case-insensitive).
func LookupPlatform(name string) (Platform, bool) {
	for _, p := range platforms {
		pl := p()
		if strings.EqualFold(pl.Name, name) {
			return pl, true
		}
	}
	return Platform{}, false
}

// DetectPlatform maps a soc_id string as found in /sys/devices/soc0/soc_id
// (e.g. "i.MX8MP") to a built-in platform.
func DetectPlatform(socID string) (Platform, bool) {
	id := strings.ToLower(strings.TrimSpace(socID))
	return LookupPlatform(strings.ReplaceAll(id, ".", ""))
}

// WithMACStyle returns a copy of p whose MAC fuses print in style.
func (p Platform) WithMACStyle(style MACStyle) Platform {
	fuses := make([]Entry, len(p.Fuses))
	for i, e := range p.Fuses {
		switch e.Kind {
		case KindMAC:
			d := *e.MAC
			d.Style = style
			e.MAC = &d
		case KindDualMAC:
			d := *e.DualMAC
			d.Style = style
			e.DualMAC = &d
		}
		fuses[i] = e
	}
	p.Fuses = fuses
	return p
}
