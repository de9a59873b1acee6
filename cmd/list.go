// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/Thermoquad/flash-fuse/pkg/otp"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var listPlain bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the fuses of a platform and their accepted values",
	Long: `List every fuse in the platform catalog with its codec, register
offsets and accepted arguments. No register is read.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listPlain, "plain", false, "Print without styling")
}

func runList(cmd *cobra.Command, args []string) error {
	c, err := openCatalog("")
	if err != nil {
		return err
	}
	if listPlain {
		fmt.Fprint(cmd.OutOrStdout(), otp.AvailableFuses(c))
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), renderCatalog(c))
	return nil
}

func renderCatalog(c *otp.Catalog) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	nameStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	p := c.Platform()
	var s strings.Builder
	s.WriteString(titleStyle.Render(strings.ToUpper(p.Name) + " - " + p.Description))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%d words per bank | nvmem: %s", p.Layout.WordsPerBank, p.DefaultPath)))
	s.WriteString("\n\n")

	for _, e := range c.Entries() {
		offsets := make([]string, 0, len(e.Offsets()))
		for _, off := range e.Offsets() {
			bank, word, _ := p.Layout.BankWord(off)
			offsets = append(offsets, fmt.Sprintf("0x%03x (bank %d word %d)", off, bank, word))
		}
		s.WriteString(fmt.Sprintf("%s %s\n",
			nameStyle.Render(e.Name),
			headerStyle.Render(e.Kind.String()+" @ "+strings.Join(offsets, ", "))))
		for _, choice := range e.Choices() {
			s.WriteString("    " + valueStyle.Render(choice) + "\n")
		}
	}
	s.WriteString("\n")
	s.WriteString(warningStyle.Render("Changes are permanent and irreversible"))
	s.WriteString("\n")
	return s.String()
}
