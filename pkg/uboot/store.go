// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uboot

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Thermoquad/flash-fuse/pkg/otp"
)

// failureMarkers are substrings of U-Boot output that mean the command did
// not do what was asked.
var failureMarkers = []string{"ERROR", "Error", "Usage:", "failed", "Unknown command"}

// ErrCommandFailed wraps console output that carried a failure marker.
var ErrCommandFailed = errors.New("u-boot command failed")

// Store implements otp.Store with the U-Boot "fuse read" and "fuse prog"
// commands. U-Boot programs fuses by ORing, like the hardware does.
type Store struct {
	console *Console
	layout  otp.Layout
	log     *slog.Logger
}

// NewStore translates offsets with layout and runs commands on console.
// A nil logger discards output.
func NewStore(console *Console, layout otp.Layout, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{console: console, layout: layout, log: log}
}

func (s *Store) storageErr(op string, offset int64, err error) error {
	return &otp.StorageError{Op: op, Path: "u-boot", Offset: offset, Err: err}
}

func (s *Store) run(op string, offset int64, cmd string) (string, error) {
	out, err := s.console.Exec(cmd)
	if err != nil {
		return "", s.storageErr(op, offset, err)
	}
	for _, marker := range failureMarkers {
		if strings.Contains(out, marker) {
			return "", s.storageErr(op, offset, fmt.Errorf("%w: %s: %s", ErrCommandFailed, cmd, out))
		}
	}
	return out, nil
}

// ReadWord runs "fuse read <bank> <word>" and parses its "Word 0x...: ..."
// line.
func (s *Store) ReadWord(offset int64) (uint32, error) {
	bank, word, err := s.layout.BankWord(offset)
	if err != nil {
		return 0, s.storageErr("read", offset, err)
	}
	out, err := s.run("read", offset, fmt.Sprintf("fuse read %d %d", bank, word))
	if err != nil {
		return 0, err
	}
	v, err := parseWord(out, word)
	if err != nil {
		return 0, s.storageErr("read", offset, err)
	}
	s.log.Debug("read fuse", "bank", bank, "word", word, "value", fmt.Sprintf("0x%08x", v))
	return v, nil
}

// WriteWord runs "fuse prog -y <bank> <word> <value>".
func (s *Store) WriteWord(offset int64, value uint32) error {
	bank, word, err := s.layout.BankWord(offset)
	if err != nil {
		return s.storageErr("write", offset, err)
	}
	if _, err := s.run("write", offset, fmt.Sprintf("fuse prog -y %d %d 0x%08x", bank, word, value)); err != nil {
		return err
	}
	s.log.Debug("programmed fuse", "bank", bank, "word", word, "value", fmt.Sprintf("0x%08x", value))
	return nil
}

// parseWord finds the line for word in "fuse read" output:
//
//	Reading bank 9:
//
//	Word 0x00000000: 12345678
func parseWord(out string, word int) (uint32, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Word ") {
			continue
		}
		var w, v uint32
		if _, err := fmt.Sscanf(line, "Word 0x%x: %x", &w, &v); err != nil {
			return 0, fmt.Errorf("malformed fuse output %q: %w", line, err)
		}
		if int(w) != word {
			return 0, fmt.Errorf("fuse output for word %d, expected %d", w, word)
		}
		return v, nil
	}
	return 0, fmt.Errorf("no word in fuse output %q", out)
}
