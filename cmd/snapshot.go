// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/Thermoquad/flash-fuse/pkg/otp"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot FILE",
	Short: "Print a CBOR fuse snapshot written by dump",
	Long: `Decode a snapshot written by "dump --format cbor" and print it.

The checksum over the raw words is verified; a corrupted or edited snapshot
is rejected. No register is accessed.`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	snap, err := otp.UnmarshalSnapshot(data)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), snap.String())
	return nil
}
