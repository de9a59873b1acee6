// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/Thermoquad/flash-fuse/pkg/otp"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify NAME VALUE",
	Short: "Check that a fuse holds a value",
	Long: `Compare the decoded fuse value with VALUE. Nothing is written.

Exit codes:
  0 - Fuse holds VALUE
  1 - Fuse holds a different value, or VALUE is invalid`,
	Example: "  flash-fuse --platform imx8mm verify MAC 0010302050A2",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRequest(cmd, otp.Request{Fuse: args[0], Value: args[1], Mode: otp.ModeVerify})
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
