// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMACBlankAndSet(t *testing.T) {
	c := MustCatalog(IMX8MP())
	mem := NewMemoryStore(SemanticsOR)
	f, ok := c.Resolve(mem, "MAC")
	require.True(t, ok)

	got, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, "000000000000", got)

	for _, v := range []string{"001122334455", "FFFFFFFFFFFF", "00:11:22:33:44:55"} {
		fuseable, err := f.IsFuseable(v)
		require.NoError(t, err)
		assert.True(t, fuseable, v)
	}

	require.NoError(t, f.Set("001122334455"))
	assert.Equal(t, uint32(0x22334455), mem.Peek(0x90))
	assert.Equal(t, uint32(0x00000011), mem.Peek(0x94))

	got, err = f.Get()
	require.NoError(t, err)
	assert.Equal(t, "001122334455", got)

	fuseable, err := f.IsFuseable("001122334455")
	require.NoError(t, err)
	assert.False(t, fuseable)
}

func TestMACByteOrder(t *testing.T) {
	c := MustCatalog(IMX6DL())
	mem := NewMemoryStore(SemanticsOR)
	// word1 bytes on the medium: 44 33 22 11, word2: 66 55 00 00
	mem.Load(imx6dlMAC0, 0x11223344)
	mem.Load(imx6dlMAC1, 0x00005566)
	f, _ := c.Resolve(mem, "MAC")

	got, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, "556611223344", got)
}

func TestMACUpperHalfIgnored(t *testing.T) {
	c := MustCatalog(IMX8MM())
	mem := NewMemoryStore(SemanticsOR)
	mem.Load(imx8mMACAddr1, 0xABCD0000)
	f, _ := c.Resolve(mem, "MAC")

	got, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, "000000000000", got)

	fuseable, err := f.IsFuseable("001122334455")
	require.NoError(t, err)
	assert.True(t, fuseable)
}

func TestParseMAC(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    [6]byte
		wantErr bool
	}{
		{"plain upper", "0010302050A2", [6]byte{0x00, 0x10, 0x30, 0x20, 0x50, 0xA2}, false},
		{"plain lower", "0010302050a2", [6]byte{0x00, 0x10, 0x30, 0x20, 0x50, 0xA2}, false},
		{"colon", "00:10:30:20:50:a2", [6]byte{0x00, 0x10, 0x30, 0x20, 0x50, 0xA2}, false},
		{"too short", "0010302050A", [6]byte{}, true},
		{"too long", "0010302050A2FF", [6]byte{}, true},
		{"not hex", "0010302050G2", [6]byte{}, true},
		{"wrong separator", "00-10-30-20-50-a2", [6]byte{}, true},
		{"empty", "", [6]byte{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMAC(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMAC(t *testing.T) {
	mac := [6]byte{0x00, 0x10, 0x30, 0x20, 0x50, 0xA2}
	assert.Equal(t, "0010302050A2", FormatMAC(mac, MACStylePlain))
	assert.Equal(t, "00:10:30:20:50:a2", FormatMAC(mac, MACStyleColon))
}

func TestMACColonStyle(t *testing.T) {
	c := MustCatalog(IMX6DL().WithMACStyle(MACStyleColon))
	mem := NewMemoryStore(SemanticsOR)
	f, _ := c.Resolve(mem, "MAC")

	canon, err := f.Canonical("0010302050A2")
	require.NoError(t, err)
	assert.Equal(t, "00:10:30:20:50:a2", canon)

	require.NoError(t, f.Set("00:10:30:20:50:A2"))
	got, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, "00:10:30:20:50:a2", got)

	// the built-in table is not modified
	f2, _ := MustCatalog(IMX6DL()).Resolve(mem, "MAC")
	got, err = f2.Get()
	require.NoError(t, err)
	assert.Equal(t, "0010302050A2", got)
}

func TestDualMACSharesWord(t *testing.T) {
	c := MustCatalog(IMX8MP())
	mem := NewMemoryStore(SemanticsOR)
	mac, _ := c.Resolve(mem, "MAC")
	mac2, _ := c.Resolve(mem, "MAC2")

	require.NoError(t, mac.Set("001122334455"))

	got, err := mac2.Get()
	require.NoError(t, err)
	assert.Equal(t, "000000000000", got)
	fuseable, err := mac2.IsFuseable("AABBCCDDEEFF")
	require.NoError(t, err)
	assert.True(t, fuseable)

	require.NoError(t, mac2.Set("AABBCCDDEEFF"))
	assert.Equal(t, uint32(0xEEFF0011), mem.Peek(imx8mMACAddr1))
	assert.Equal(t, uint32(0xAABBCCDD), mem.Peek(imx8mMACAddr2))

	got, err = mac2.Get()
	require.NoError(t, err)
	assert.Equal(t, "AABBCCDDEEFF", got)

	got, err = mac.Get()
	require.NoError(t, err)
	assert.Equal(t, "001122334455", got)
}

func TestMACSetInvalidWritesNothing(t *testing.T) {
	c := MustCatalog(IMX8MP())
	mem := NewMemoryStore(SemanticsOR)
	f, _ := c.Resolve(mem, "MAC")

	err := f.Set("00112233445")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "MAC", verr.Fuse)
	assert.Empty(t, mem.Accesses())
}
