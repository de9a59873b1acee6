// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is a provisioning plan for one board:
//
//	platform: imx8mp
//	path: /sys/bus/nvmem/devices/imx-ocotp0/nvmem
//	fuses:
//	  - name: MAC
//	    value: 0010302050A2
//	  - name: BOOT_DEVICE
//	    value: USDHC3
//
// Entries are applied in file order.
type Manifest struct {
	Platform string          `yaml:"platform"`
	Path     string          `yaml:"path,omitempty"`
	Fuses    []ManifestEntry `yaml:"fuses"`
}

// ManifestEntry is one requested fuse value.
type ManifestEntry struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseManifest parses manifest YAML. Unknown keys are rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Validate checks every entry against c without touching any store. All
// problems are reported together.
func (m *Manifest) Validate(c *Catalog) error {
	var errs []error
	platform := c.Platform().Name
	if m.Platform != "" && !strings.EqualFold(m.Platform, platform) {
		errs = append(errs, fmt.Errorf("manifest is for %s, catalog is %s", m.Platform, platform))
	}
	if len(m.Fuses) == 0 {
		errs = append(errs, errors.New("manifest lists no fuses"))
	}
	seen := make(map[string]bool, len(m.Fuses))
	for _, e := range m.Fuses {
		if seen[e.Name] {
			errs = append(errs, fmt.Errorf("fuse %q listed twice", e.Name))
			continue
		}
		seen[e.Name] = true
		entry, ok := c.Lookup(e.Name)
		if !ok {
			errs = append(errs, &NotFoundError{Fuse: e.Name, Platform: platform})
			continue
		}
		if err := NewFuse(entry, nil).Validate(e.Value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Report is the outcome of applying a manifest.
type Report struct {
	Mode    Mode
	Results []*Result
	Stats   *Statistics
}

// Apply validates the whole manifest, then runs its entries in order and
// stops at the first failure. Entries after a failure are not attempted.
func (p *Provisioner) Apply(m *Manifest, mode Mode) (*Report, error) {
	if err := m.Validate(p.catalog); err != nil {
		return nil, err
	}
	report := &Report{Mode: mode, Stats: NewStatistics()}
	for _, e := range m.Fuses {
		res, err := p.Run(Request{Fuse: e.Name, Value: e.Value, Mode: mode})
		report.Results = append(report.Results, res)
		report.Stats.Update(res, err)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}
