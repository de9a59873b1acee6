// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uboot

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Thermoquad/flash-fuse/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBoard answers fuse commands like a U-Boot shell backed by a memory
// store.
type fakeBoard struct {
	mem    *otp.MemoryStore
	layout otp.Layout
	pr     *io.PipeReader
	pw     *io.PipeWriter

	mu       sync.Mutex
	line     []byte
	commands []string
	silent   bool
	failProg bool
	// delay holds replies back, like a board that is slower than the
	// console timeout.
	delay time.Duration
	// stale is sent ahead of the next reply.
	stale string
}

func newFakeBoard(layout otp.Layout) *fakeBoard {
	pr, pw := io.Pipe()
	return &fakeBoard{mem: otp.NewMemoryStore(otp.SemanticsOR), layout: layout, pr: pr, pw: pw}
}

func (b *fakeBoard) Read(p []byte) (int, error) {
	return b.pr.Read(p)
}

func (b *fakeBoard) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range p {
		if c != '\n' {
			b.line = append(b.line, c)
			continue
		}
		cmd := string(b.line)
		b.line = b.line[:0]
		b.commands = append(b.commands, cmd)
		if b.silent {
			continue
		}
		resp := b.stale + cmd + "\r\n" + b.answer(cmd) + DefaultPrompt
		b.stale = ""
		go func(delay time.Duration) {
			time.Sleep(delay)
			b.pw.Write([]byte(resp))
		}(b.delay)
	}
	return len(p), nil
}

func (b *fakeBoard) Close() error {
	return b.pw.Close()
}

func (b *fakeBoard) answer(cmd string) string {
	var bank, word int
	var value uint32
	switch {
	case cmd == "":
		return ""
	case strings.HasPrefix(cmd, "fuse read "):
		fmt.Sscanf(cmd, "fuse read %d %d", &bank, &word)
		v, _ := b.mem.ReadWord(b.layout.Offset(bank, word))
		return fmt.Sprintf("Reading bank %d:\r\n\r\nWord 0x%08x: %08x\r\n", bank, word, v)
	case strings.HasPrefix(cmd, "fuse prog -y "):
		if b.failProg {
			return "ERROR: programming failed\r\n"
		}
		fmt.Sscanf(cmd, "fuse prog -y %d %d 0x%x", &bank, &word, &value)
		b.mem.WriteWord(b.layout.Offset(bank, word), value)
		return fmt.Sprintf("Programming bank %d word 0x%08x to 0x%08x...\r\n", bank, word, value)
	default:
		return "Unknown command '" + cmd + "' - try 'help'\r\n"
	}
}

func (b *fakeBoard) sent() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.commands...)
}

func imx8mLayout() otp.Layout {
	return otp.IMX8MP().Layout
}

func TestStoreReadWord(t *testing.T) {
	board := newFakeBoard(imx8mLayout())
	defer board.Close()
	board.mem.Load(0x90, 0x22334455)

	s := NewStore(NewConsole(board), imx8mLayout(), nil)
	v, err := s.ReadWord(0x90)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x22334455), v)
	assert.Equal(t, []string{"fuse read 9 0"}, board.sent())
}

func TestStoreWriteWord(t *testing.T) {
	board := newFakeBoard(imx8mLayout())
	defer board.Close()

	s := NewStore(NewConsole(board), imx8mLayout(), nil)
	require.NoError(t, s.WriteWord(0x94, 0x11))
	assert.Equal(t, []string{"fuse prog -y 9 1 0x00000011"}, board.sent())
	assert.Equal(t, uint32(0x11), board.mem.Peek(0x94))
}

func TestStoreCommitMAC(t *testing.T) {
	board := newFakeBoard(imx8mLayout())
	defer board.Close()

	s := NewStore(NewConsole(board), imx8mLayout(), nil)
	prov := otp.NewProvisioner(otp.MustCatalog(otp.IMX8MP()), s, nil)

	res, err := prov.Run(otp.Request{Fuse: "MAC", Value: "001122334455", Mode: otp.ModeCommit})
	require.NoError(t, err)
	assert.True(t, res.Written)

	res, err = prov.Run(otp.Request{Fuse: "MAC", Mode: otp.ModeInspect})
	require.NoError(t, err)
	assert.Equal(t, "001122334455", res.Fused)
}

func TestStoreProgramFailure(t *testing.T) {
	board := newFakeBoard(imx8mLayout())
	defer board.Close()
	board.failProg = true

	s := NewStore(NewConsole(board), imx8mLayout(), nil)
	err := s.WriteWord(0x90, 1)
	var serr *otp.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, int64(0x90), serr.Offset)
	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestStoreUnaligned(t *testing.T) {
	board := newFakeBoard(imx8mLayout())
	defer board.Close()

	s := NewStore(NewConsole(board), imx8mLayout(), nil)
	_, err := s.ReadWord(0x91)
	assert.ErrorIs(t, err, otp.ErrUnaligned)
	assert.Empty(t, board.sent())
}

func TestConsoleTimeout(t *testing.T) {
	board := newFakeBoard(imx8mLayout())
	defer board.Close()
	board.silent = true

	c := NewConsole(board, WithTimeout(50*time.Millisecond))
	err := c.WaitPrompt()
	assert.ErrorIs(t, err, ErrTimeout)

	s := NewStore(c, imx8mLayout(), nil)
	_, err = s.ReadWord(0)
	var serr *otp.StorageError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestStoreIgnoresLateReply(t *testing.T) {
	layout := imx8mLayout()
	board := newFakeBoard(layout)
	defer board.Close()
	board.mem.Load(layout.Offset(6, 0), 0xAAAAAAAA)
	board.delay = 100 * time.Millisecond

	s := NewStore(NewConsole(board, WithTimeout(50*time.Millisecond)), layout, nil)
	_, err := s.ReadWord(layout.Offset(6, 0))
	require.ErrorIs(t, err, ErrTimeout)

	// Let the answer for bank 6 arrive while nothing waits for it.
	time.Sleep(150 * time.Millisecond)
	board.delay = 0

	v, err := s.ReadWord(layout.Offset(7, 0))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)
}

func TestStoreSkipsStaleReply(t *testing.T) {
	layout := imx8mLayout()
	board := newFakeBoard(layout)
	defer board.Close()
	board.stale = "fuse read 6 0\r\nReading bank 6:\r\n\r\nWord 0x00000000: aaaaaaaa\r\n" + DefaultPrompt

	s := NewStore(NewConsole(board), layout, nil)
	v, err := s.ReadWord(layout.Offset(7, 0))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)
	assert.Equal(t, []string{"fuse read 7 0"}, board.sent())
}

func TestStripEcho(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		cmd   string
		want  string
		ok    bool
	}{
		{"echo", "fuse read 9 0\r\nWord 0x00000000: 1\r\n", "fuse read 9 0", "Word 0x00000000: 1", true},
		{"empty command", "\r\n", "", "", true},
		{"other command", "fuse read 6 0\r\nWord 0x00000000: 1\r\n", "fuse read 7 0", "", false},
		{"no echo line", "Word 0x00000000: 1", "fuse read 7 0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := stripEcho(tt.reply, tt.cmd)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// endlessStream never runs dry and cannot be closed.
type endlessStream struct{}

func (endlessStream) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = '.'
	}
	return len(p), nil
}

func (endlessStream) Write(p []byte) (int, error) { return len(p), nil }

func TestConsoleCloseStopsReader(t *testing.T) {
	c := NewConsole(endlessStream{}, WithTimeout(20*time.Millisecond))
	require.ErrorIs(t, c.WaitPrompt(), ErrTimeout)

	require.NoError(t, c.Close())
	select {
	case <-c.stopped:
	case <-time.After(time.Second):
		t.Fatal("reader goroutine still running after Close")
	}

	_, err := c.Exec("version")
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, c.Close())
}

func TestConsoleCloseClosesStream(t *testing.T) {
	board := newFakeBoard(imx8mLayout())
	c := NewConsole(board)
	require.NoError(t, c.WaitPrompt())

	require.NoError(t, c.Close())
	_, err := board.pw.Write([]byte("x"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	select {
	case <-c.stopped:
	case <-time.After(time.Second):
		t.Fatal("reader goroutine still running after Close")
	}
}

func TestConsoleClosed(t *testing.T) {
	board := newFakeBoard(imx8mLayout())
	board.Close()

	c := NewConsole(board, WithTimeout(time.Second))
	err := c.WaitPrompt()
	assert.ErrorIs(t, err, io.EOF)
}

func TestConsoleExecStripsEcho(t *testing.T) {
	board := newFakeBoard(imx8mLayout())
	defer board.Close()

	out, err := NewConsole(board).Exec("version")
	require.NoError(t, err)
	assert.Equal(t, "Unknown command 'version' - try 'help'", out)
}

func TestParseWord(t *testing.T) {
	v, err := parseWord("Reading bank 1:\n\nWord 0x00000003: 10000000", 3)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x10000000), v)

	_, err = parseWord("Reading bank 1:\n\nWord 0x00000002: 10000000", 3)
	assert.Error(t, err)

	_, err = parseWord("Reading bank 1:", 3)
	assert.Error(t, err)

	_, err = parseWord("Word 0xzz: 1", 3)
	assert.Error(t, err)
}
