// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/flash-fuse/pkg/uboot"
	"github.com/spf13/cobra"
)

var consoleCheckCmd = &cobra.Command{
	Use:   "console_check",
	Short: "Test a U-Boot console by waiting for its prompt",
	Long: `Send an empty line to the U-Boot console and wait for the prompt until
--console-timeout.

Exit codes:
  0 - Prompt received before timeout
  1 - Timeout reached without a prompt
  2 - Connection error

Useful before provisioning a board over --port or --url.`,
	Args: cobra.NoArgs,
	RunE: runConsoleCheck,
}

func init() {
	rootCmd.AddCommand(consoleCheckCmd)
}

func runConsoleCheck(cmd *cobra.Command, args []string) error {
	if !consoleRequested() {
		return &exitError{code: 2, err: fmt.Errorf("either --port or --url must be specified")}
	}
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return &exitError{code: 2, err: fmt.Errorf("connection error: %w", err)}
	}
	console := uboot.NewConsole(conn,
		uboot.WithPrompt(consolePrompt),
		uboot.WithTimeout(consoleTimeout),
		uboot.WithLogger(logger))
	defer console.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	fmt.Fprintf(out, "Timeout: %v\n", consoleTimeout)

	if err := console.WaitPrompt(); err != nil {
		return fmt.Errorf("no U-Boot prompt: %w", err)
	}
	fmt.Fprintf(out, "SUCCESS: U-Boot prompt %q received\n", consolePrompt)
	return nil
}
