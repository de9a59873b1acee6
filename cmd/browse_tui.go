// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/Thermoquad/flash-fuse/pkg/otp"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Focus states
const (
	focusFuseList = iota
	focusValueInput
)

// fuseItem is one list row
type fuseItem struct {
	fuse  *otp.Fuse
	value string
	words []otp.Word
	err   error
}

// Implement list.Item interface
func (f fuseItem) Title() string { return f.fuse.Name() }
func (f fuseItem) Description() string {
	if f.err != nil {
		return "read error"
	}
	return f.value
}
func (f fuseItem) FilterValue() string { return f.fuse.Name() }

// checkResult is the outcome of checking a candidate value
type checkResult struct {
	fuse    string
	value   string
	message string
	ok      bool
}

// browseModel is the Bubble Tea model for the browse TUI
type browseModel struct {
	prov *otp.Provisioner

	fuseList   list.Model
	valueInput textinput.Model
	focused    int

	lastCheck *checkResult

	width    int
	height   int
	quitting bool
}

func initialBrowseModel(prov *otp.Provisioner) browseModel {
	ti := textinput.New()
	ti.Placeholder = "value"
	ti.CharLimit = 100
	ti.Width = 40

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	fuseList := list.New([]list.Item{}, delegate, 40, 10)
	fuseList.Title = strings.ToUpper(prov.Catalog().Platform().Name) + " fuses"
	fuseList.SetShowStatusBar(false)
	fuseList.SetShowHelp(false)

	m := browseModel{
		prov:       prov,
		fuseList:   fuseList,
		valueInput: ti,
		focused:    focusFuseList,
		width:      80,
		height:     24,
	}
	m.refresh()
	return m
}

// refresh re-reads every fuse.
func (m *browseModel) refresh() {
	c := m.prov.Catalog()
	items := make([]list.Item, 0, len(c.Names()))
	for _, name := range c.Names() {
		f, _ := c.Resolve(m.prov.Store(), name)
		item := fuseItem{fuse: f}
		item.words, item.err = f.Words()
		if item.err == nil {
			item.value, item.err = f.Get()
		}
		items = append(items, item)
	}
	m.fuseList.SetItems(items)
}

func (m browseModel) selected() (fuseItem, bool) {
	item, ok := m.fuseList.SelectedItem().(fuseItem)
	return item, ok
}

// check validates the input value against the selected fuse without
// writing.
func (m *browseModel) check() {
	item, ok := m.selected()
	if !ok {
		return
	}
	value := strings.TrimSpace(m.valueInput.Value())
	res := &checkResult{fuse: item.fuse.Name(), value: value}
	m.lastCheck = res

	requested, err := item.fuse.Canonical(value)
	if err != nil {
		res.message = err.Error()
		return
	}
	fused, err := item.fuse.Get()
	if err != nil {
		res.message = err.Error()
		return
	}
	if fused == requested {
		res.ok = true
		res.message = "already fused"
		return
	}
	fuseable, err := item.fuse.IsFuseable(value)
	switch {
	case err != nil:
		res.message = err.Error()
	case fuseable:
		res.ok = true
		res.message = fmt.Sprintf("can be burned over %s", fused)
	default:
		res.message = fmt.Sprintf("cannot be burned over %s", fused)
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := m.height - 6
		if listHeight < 5 {
			listHeight = 5
		}
		m.fuseList.SetSize(40, listHeight)
	}

	return m, nil
}

func (m browseModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		if m.focused == focusFuseList {
			m.focused = focusValueInput
			return m, m.valueInput.Focus()
		}
		m.focused = focusFuseList
		m.valueInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focused == focusValueInput {
		switch msg.String() {
		case "enter":
			m.check()
			return m, nil
		case "esc":
			m.focused = focusFuseList
			m.valueInput.Blur()
			return m, nil
		}
		m.valueInput, cmd = m.valueInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		if m.fuseList.FilterState() != list.Filtering {
			m.quitting = true
			return m, tea.Quit
		}
	case "r":
		if m.fuseList.FilterState() != list.Filtering {
			m.refresh()
			return m, nil
		}
	}
	m.fuseList, cmd = m.fuseList.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("FLASH-FUSE - BROWSE"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render("Tab: value input | r: reload | q: quit | read only"))
	s.WriteString("\n\n")

	detail := strings.Builder{}
	if item, ok := m.selected(); ok {
		e := item.fuse.Entry()
		detail.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Fuse:"), valueStyle.Render(e.Name)))
		detail.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Kind:"), e.Kind.String()))
		if item.err != nil {
			detail.WriteString(errorStyle.Render(item.err.Error()) + "\n")
		} else {
			detail.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Value:"), valueStyle.Render(item.value)))
			for _, w := range item.words {
				detail.WriteString(headerStyle.Render(fmt.Sprintf("  0x%03x: 0x%08x", w.Offset, w.Value)) + "\n")
			}
		}
		detail.WriteString(labelStyle.Render("Accepted:") + "\n")
		for _, choice := range e.Choices() {
			detail.WriteString("  " + choice + "\n")
		}
	}

	detail.WriteString("\n")
	detail.WriteString(labelStyle.Render("Check value: "))
	detail.WriteString(m.valueInput.View())
	detail.WriteString("\n")
	if m.lastCheck != nil {
		line := fmt.Sprintf("%s %s: %s", m.lastCheck.fuse, m.lastCheck.value, m.lastCheck.message)
		if m.lastCheck.ok {
			detail.WriteString(valueStyle.Render("✓ " + line))
		} else {
			detail.WriteString(errorStyle.Render("✗ " + line))
		}
	}

	detailWidth := m.width - 46
	if detailWidth < 30 {
		detailWidth = 30
	}
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.fuseList.View(),
		boxStyle.Width(detailWidth).Render(detail.String()))
	s.WriteString(panes)
	return s.String()
}
