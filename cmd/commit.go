// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/Thermoquad/flash-fuse/pkg/otp"
	"github.com/spf13/cobra"
)

var commitVerifyOnly bool

var commitCmd = &cobra.Command{
	Use:   "commit NAME VALUE",
	Short: "Burn a value into a fuse",
	Long: `Burn VALUE into the named fuse.

Nothing is written when the fuse already holds VALUE. The write is refused
when it would need an already burned bit cleared. MAC and SRK fuses can only
be burned while they are still blank.

--verify turns the run into a verify-only check.

WARNING: changes are permanent and irreversible.`,
	Example: "  flash-fuse --platform imx8mp commit BOOT_DEVICE USDHC3",
	Args:    cobra.ExactArgs(2),
	RunE:    runCommit,
}

func init() {
	rootCmd.AddCommand(commitCmd)
	commitCmd.Flags().BoolVar(&commitVerifyOnly, "verify", false, "Only verify, overrides commit")
}

func runCommit(cmd *cobra.Command, args []string) error {
	mode := otp.ModeCommit
	if commitVerifyOnly {
		mode = otp.ModeVerify
	}
	return runRequest(cmd, otp.Request{Fuse: args[0], Value: args[1], Mode: mode})
}
