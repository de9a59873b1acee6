// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/Thermoquad/flash-fuse/pkg/otp"
	"github.com/spf13/cobra"
)

var (
	dumpFormat string
	dumpOutput string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Read every fuse of the platform",
	Long: `Read every catalog fuse and print its decoded value and raw words.

With --format cbor the dump is a checksummed CBOR snapshot that can be read
back with the snapshot command. Nothing is written to the fuses.`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "text", "Output format (text, cbor)")
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "Write to file instead of stdout")
}

func runDump(cmd *cobra.Command, args []string) error {
	if dumpFormat != "text" && dumpFormat != "cbor" {
		return fmt.Errorf("unknown format %q (text, cbor)", dumpFormat)
	}

	prov, closeFn, err := openProvisioner()
	if err != nil {
		return err
	}
	defer closeFn()

	snap, err := otp.TakeSnapshot(prov.Catalog(), prov.Store())
	if err != nil {
		return err
	}

	var data []byte
	if dumpFormat == "cbor" {
		if data, err = otp.MarshalSnapshot(snap); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
	} else {
		data = []byte(snap.String())
	}

	if dumpOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(dumpOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dumpOutput, err)
	}
	logger.Info("snapshot written", "file", dumpOutput, "fuses", len(snap.Fuses), "crc", fmt.Sprintf("0x%04X", snap.Checksum))
	return nil
}
