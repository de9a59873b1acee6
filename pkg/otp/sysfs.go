// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SysfsStore talks to the legacy fsl_otp driver, which exposes one text file
// per register (HW_OCOTP_CFG5, HW_OCOTP_MAC0, ...) under a directory such as
// /sys/fsl_otp. Files hold a hex literal; writes take one followed by a
// newline and are ORed into the fuses by the driver.
type SysfsStore struct {
	dir   string
	names map[int64]string
	log   *slog.Logger
}

// NewSysfsStore creates a store on dir using the register name table of a
// platform. A nil logger discards output.
func NewSysfsStore(dir string, names map[int64]string, log *slog.Logger) *SysfsStore {
	if log == nil {
		log = discardLogger()
	}
	return &SysfsStore{dir: dir, names: names, log: log}
}

func (s *SysfsStore) file(op string, offset int64) (string, error) {
	if err := checkAligned(op, s.dir, offset); err != nil {
		return "", err
	}
	name, ok := s.names[offset]
	if !ok {
		return "", &StorageError{Op: op, Path: s.dir, Offset: offset, Err: ErrNoRegister}
	}
	return filepath.Join(s.dir, name), nil
}

func (s *SysfsStore) ReadWord(offset int64) (uint32, error) {
	path, err := s.file("read", offset)
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, &StorageError{Op: "read", Path: path, Offset: offset, Err: err}
	}
	text := strings.TrimSpace(string(data))
	text = strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
	v, err := strconv.ParseUint(text, 16, 32)
	if err != nil {
		return 0, &StorageError{Op: "read", Path: path, Offset: offset, Err: fmt.Errorf("malformed register text %q: %w", string(data), err)}
	}
	s.log.Debug("read register", "file", path, "value", fmt.Sprintf("0x%08x", v))
	return uint32(v), nil
}

func (s *SysfsStore) WriteWord(offset int64, value uint32) error {
	path, err := s.file("write", offset)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return &StorageError{Op: "open", Path: path, Offset: offset, Err: err}
	}
	_, writeErr := fmt.Fprintf(f, "0x%x\n", value)
	closeErr := f.Close()
	if writeErr != nil {
		return &StorageError{Op: "write", Path: path, Offset: offset, Err: writeErr}
	}
	if closeErr != nil {
		return &StorageError{Op: "close", Path: path, Offset: offset, Err: closeErr}
	}
	s.log.Debug("wrote register", "file", path, "value", fmt.Sprintf("0x%08x", value))
	return nil
}
