// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"golang.org/x/sys/unix"
)

// Store is a word addressable OTP medium. Offsets are byte offsets and must
// be word aligned. Words are little-endian on the medium.
type Store interface {
	ReadWord(offset int64) (uint32, error)
	WriteWord(offset int64, value uint32) error
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func checkAligned(op, path string, offset int64) error {
	if offset < 0 || offset%WordSize != 0 {
		return &StorageError{Op: op, Path: path, Offset: offset, Err: ErrUnaligned}
	}
	return nil
}

func wordBytes(v uint32) [WordSize]byte {
	return [WordSize]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func bytesWord(b [WordSize]byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// FileStore reads and writes a byte addressable device such as
// /sys/bus/nvmem/devices/imx-ocotp0/nvmem. The device is opened for every
// access and closed again, so nothing is held open between operations.
//
// On OCOTP nvmem a write ORs into already burned bits. On an ordinary file a
// write replaces the word; wrap the store in a MergeStore when that matters.
type FileStore struct {
	path string
	log  *slog.Logger
}

// NewFileStore creates a store on path. A nil logger discards output.
func NewFileStore(path string, log *slog.Logger) *FileStore {
	if log == nil {
		log = discardLogger()
	}
	return &FileStore{path: path, log: log}
}

// Path returns the device path.
func (s *FileStore) Path() string {
	return s.path
}

// ReadWord reads exactly 4 bytes at offset.
func (s *FileStore) ReadWord(offset int64) (uint32, error) {
	if err := checkAligned("read", s.path, offset); err != nil {
		return 0, err
	}
	fd, err := unix.Open(s.path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return 0, &StorageError{Op: "open", Path: s.path, Offset: offset, Err: err}
	}
	var buf [WordSize]byte
	n, readErr := unix.Pread(fd, buf[:], offset)
	closeErr := unix.Close(fd)
	if readErr != nil {
		return 0, &StorageError{Op: "read", Path: s.path, Offset: offset, Err: readErr}
	}
	if n != WordSize {
		return 0, &StorageError{Op: "read", Path: s.path, Offset: offset, Err: io.ErrUnexpectedEOF}
	}
	if closeErr != nil {
		return 0, &StorageError{Op: "close", Path: s.path, Offset: offset, Err: closeErr}
	}
	v := bytesWord(buf)
	s.log.Debug("read word", "value", fmt.Sprintf("0x%08x", v), "offset", fmt.Sprintf("0x%x", offset), "path", s.path)
	return v, nil
}

// WriteWord writes exactly 4 bytes at offset.
func (s *FileStore) WriteWord(offset int64, value uint32) error {
	if err := checkAligned("write", s.path, offset); err != nil {
		return err
	}
	fd, err := unix.Open(s.path, unix.O_WRONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return &StorageError{Op: "open", Path: s.path, Offset: offset, Err: err}
	}
	buf := wordBytes(value)
	n, writeErr := unix.Pwrite(fd, buf[:], offset)
	closeErr := unix.Close(fd)
	if writeErr != nil {
		return &StorageError{Op: "write", Path: s.path, Offset: offset, Err: writeErr}
	}
	if n != WordSize {
		return &StorageError{Op: "write", Path: s.path, Offset: offset, Err: io.ErrShortWrite}
	}
	if closeErr != nil {
		return &StorageError{Op: "close", Path: s.path, Offset: offset, Err: closeErr}
	}
	s.log.Debug("wrote word", "value", fmt.Sprintf("0x%08x", value), "offset", fmt.Sprintf("0x%x", offset), "path", s.path)
	return nil
}

// Semantics describes how a store applies a write to an existing word.
type Semantics int

const (
	// SemanticsOR merges written bits into the stored word, like fuse hardware.
	SemanticsOR Semantics = iota
	// SemanticsOverwrite replaces the stored word.
	SemanticsOverwrite
)

// Access is one recorded MemoryStore operation.
type Access struct {
	Write  bool
	Offset int64
	Value  uint32
}

// MemoryStore is an in-memory Store that records every access.
type MemoryStore struct {
	Semantics Semantics
	words     map[int64]uint32
	log       []Access
}

// NewMemoryStore creates an empty (all zero) store.
func NewMemoryStore(sem Semantics) *MemoryStore {
	return &MemoryStore{Semantics: sem, words: make(map[int64]uint32)}
}

// Load sets a word without recording an access.
func (m *MemoryStore) Load(offset int64, value uint32) {
	m.words[offset] = value
}

// Peek returns a word without recording an access.
func (m *MemoryStore) Peek(offset int64) uint32 {
	return m.words[offset]
}

// Accesses returns every recorded read and write in order.
func (m *MemoryStore) Accesses() []Access {
	return append([]Access(nil), m.log...)
}

// Writes returns only the recorded writes.
func (m *MemoryStore) Writes() []Access {
	var w []Access
	for _, a := range m.log {
		if a.Write {
			w = append(w, a)
		}
	}
	return w
}

// Offsets returns the offsets holding non-zero words, sorted.
func (m *MemoryStore) Offsets() []int64 {
	var offs []int64
	for off, v := range m.words {
		if v != 0 {
			offs = append(offs, off)
		}
	}
	sort.Slice(offs, func(i, j int) bool { return offs[i] < offs[j] })
	return offs
}

func (m *MemoryStore) ReadWord(offset int64) (uint32, error) {
	if err := checkAligned("read", "memory", offset); err != nil {
		return 0, err
	}
	v := m.words[offset]
	m.log = append(m.log, Access{Offset: offset, Value: v})
	return v, nil
}

func (m *MemoryStore) WriteWord(offset int64, value uint32) error {
	if err := checkAligned("write", "memory", offset); err != nil {
		return err
	}
	m.log = append(m.log, Access{Write: true, Offset: offset, Value: value})
	switch m.Semantics {
	case SemanticsOR:
		m.words[offset] |= value
	default:
		m.words[offset] = value
	}
	return nil
}

// MergeStore performs an explicit read-merge-write on every write so that a
// medium with overwrite semantics behaves like fuse hardware. Bits already
// set in the word survive a write that does not carry them.
type MergeStore struct {
	Store
}

// NewMergeStore wraps s.
func NewMergeStore(s Store) *MergeStore {
	return &MergeStore{Store: s}
}

func (m *MergeStore) WriteWord(offset int64, value uint32) error {
	cur, err := m.Store.ReadWord(offset)
	if err != nil {
		return err
	}
	return m.Store.WriteWord(offset, cur|value)
}
