// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newImage creates a blank nvmem image of size bytes.
func newImage(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nvmem")
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func TestFileStoreReadWrite(t *testing.T) {
	path := newImage(t, 0x100)
	s := NewFileStore(path, nil)
	assert.Equal(t, path, s.Path())

	require.NoError(t, s.WriteWord(0x90, 0x22334455))

	v, err := s.ReadWord(0x90)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x22334455), v)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x55, 0x44, 0x33, 0x22}, data[0x90:0x94])
	assert.Len(t, data, 0x100)
}

func TestFileStoreShortRead(t *testing.T) {
	s := NewFileStore(newImage(t, 6), nil)

	_, err := s.ReadWord(4)
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "read", serr.Op)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = s.ReadWord(0x40)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFileStoreMissingDevice(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing"), nil)

	_, err := s.ReadWord(0)
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "open", serr.Op)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	err = s.WriteWord(0, 1)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFileStoreUnaligned(t *testing.T) {
	s := NewFileStore(newImage(t, 0x10), nil)

	_, err := s.ReadWord(2)
	assert.ErrorIs(t, err, ErrUnaligned)
	assert.ErrorIs(t, s.WriteWord(5, 0), ErrUnaligned)
}

func TestFileStoreWithCatalog(t *testing.T) {
	path := newImage(t, 0x100)
	prov := NewProvisioner(MustCatalog(IMX8MM()), NewFileStore(path, nil), nil)

	_, err := prov.Run(Request{Fuse: "MAC", Value: "0010302050A2", Mode: ModeCommit})
	require.NoError(t, err)

	res, err := prov.Run(Request{Fuse: "MAC", Value: "0010302050A2", Mode: ModeVerify})
	require.NoError(t, err)
	assert.Equal(t, StateVerified, res.State)
}

func TestMemoryStoreSemantics(t *testing.T) {
	or := NewMemoryStore(SemanticsOR)
	require.NoError(t, or.WriteWord(0, 0x1))
	require.NoError(t, or.WriteWord(0, 0x4))
	assert.Equal(t, uint32(0x5), or.Peek(0))

	ow := NewMemoryStore(SemanticsOverwrite)
	require.NoError(t, ow.WriteWord(0, 0x1))
	require.NoError(t, ow.WriteWord(0, 0x4))
	assert.Equal(t, uint32(0x4), ow.Peek(0))

	assert.Equal(t, []int64{0}, ow.Offsets())
	assert.Len(t, ow.Writes(), 2)
}

func TestMergeStore(t *testing.T) {
	mem := NewMemoryStore(SemanticsOverwrite)
	mem.Load(0x8, 0xF0)
	m := NewMergeStore(mem)

	require.NoError(t, m.WriteWord(0x8, 0x0F))
	assert.Equal(t, uint32(0xFF), mem.Peek(0x8))

	acc := mem.Accesses()
	require.Len(t, acc, 2)
	assert.False(t, acc[0].Write)
	assert.Equal(t, Access{Write: true, Offset: 0x8, Value: 0xFF}, acc[1])
}

func TestSysfsStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "HW_OCOTP_MAC0"), []byte("0x22334455\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "HW_OCOTP_MAC1"), []byte("0x00000011\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "HW_OCOTP_LOCK"), []byte("0x0\n"), 0o644))

	s := NewSysfsStore(dir, IMX6DL().Registers, nil)

	v, err := s.ReadWord(imx6dlMAC0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x22334455), v)

	require.NoError(t, s.WriteWord(imx6dlLock, 0x300))
	data, err := os.ReadFile(filepath.Join(dir, "HW_OCOTP_LOCK"))
	require.NoError(t, err)
	assert.Equal(t, "0x300\n", string(data))

	f, _ := MustCatalog(IMX6DL().WithMACStyle(MACStyleColon)).Resolve(s, "MAC")
	got, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, "00:11:22:33:44:55", got)
}

func TestSysfsStoreErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "HW_OCOTP_CFG5"), []byte("garbage\n"), 0o644))
	s := NewSysfsStore(dir, IMX6DL().Registers, nil)

	_, err := s.ReadWord(0x400)
	assert.ErrorIs(t, err, ErrNoRegister)

	_, err = s.ReadWord(imx6dlCfg5)
	var serr *StorageError
	assert.ErrorAs(t, err, &serr)

	_, err = s.ReadWord(imx6dlCfg4)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	assert.ErrorIs(t, s.WriteWord(imx6dlCfg4, 1), fs.ErrNotExist)
}
