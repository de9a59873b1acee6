// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive TUI for inspecting fuses",
	Long: `Browse the platform fuses in an interactive terminal UI.

The list shows each fuse with its decoded value; the detail pane shows the
raw register words. Tab switches to the value input, where a candidate
value is checked for validity and whether it could still be burned.

The TUI never writes. Use commit or provision to burn fuses.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	prov, closeFn, err := openProvisioner()
	if err != nil {
		return err
	}
	defer closeFn()

	p := tea.NewProgram(initialBrowseModel(prov), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
