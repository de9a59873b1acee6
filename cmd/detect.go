// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect the SoC and its fuse platform",
	Long: `Read /sys/devices/soc0/soc_id, map it to a fuse platform and check that
the OCOTP nvmem device is present.

Exit codes:
  0 - Supported SoC with a readable nvmem device
  1 - Unknown SoC or missing device`,
	Args: cobra.NoArgs,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().StringVar(&socIDPath, "soc-id", socIDPath, "soc_id file to read")
}

func runDetect(cmd *cobra.Command, args []string) error {
	p, socID, err := detectPlatform()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "SoC:      %s\n", socID)
	fmt.Fprintf(out, "Platform: %s (%s)\n", p.Name, p.Description)

	path := nvmemPath
	if path == "" {
		path = p.DefaultPath
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("nvmem device: %w", err)
	}
	fmt.Fprintf(out, "nvmem:    %s (%d bytes)\n", path, info.Size())
	return nil
}
