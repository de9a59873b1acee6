// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"testing"

	"github.com/Thermoquad/flash-fuse/pkg/otp"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBrowseModel(t *testing.T) (browseModel, *otp.MemoryStore) {
	t.Helper()
	mem := otp.NewMemoryStore(otp.SemanticsOR)
	prov := otp.NewProvisioner(otp.MustCatalog(otp.IMX8MP()), mem, nil)
	return initialBrowseModel(prov), mem
}

func TestBrowseListsFuses(t *testing.T) {
	m, _ := newBrowseModel(t)
	items := m.fuseList.Items()
	require.Len(t, items, len(m.prov.Catalog().Names()))

	item, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, "MAC", item.fuse.Name())
	assert.Equal(t, "000000000000", item.value)
	assert.Len(t, item.words, 2)
}

func TestBrowseCheckNeverWrites(t *testing.T) {
	m, mem := newBrowseModel(t)

	m.valueInput.SetValue("00:11:22:33:44:55")
	m.check()
	require.NotNil(t, m.lastCheck)
	assert.True(t, m.lastCheck.ok)
	assert.Contains(t, m.lastCheck.message, "can be burned")

	m.valueInput.SetValue("bogus")
	m.check()
	assert.False(t, m.lastCheck.ok)

	mem.Load(0x90, 1)
	m.valueInput.SetValue("001122334455")
	m.check()
	assert.False(t, m.lastCheck.ok)
	assert.Contains(t, m.lastCheck.message, "cannot be burned")

	assert.Empty(t, mem.Writes())
}

func TestBrowseKeys(t *testing.T) {
	m, _ := newBrowseModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(browseModel)
	assert.Equal(t, focusValueInput, m.focused)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(browseModel)
	assert.Equal(t, focusFuseList, m.focused)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(browseModel)
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}
