// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Register medium flags
	platformName string
	nvmemPath    string
	sysfsDir     string
	macStyle     string
	mergeWrites  bool

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// U-Boot console flags
	consolePrompt  string
	consoleTimeout time.Duration

	debug bool

	logger = newLogger(false)
)

var rootCmd = &cobra.Command{
	Use:   "flash-fuse",
	Short: "i.MX OCOTP fuse provisioning tool",
	Long: `flash-fuse reads, verifies and burns i.MX one-time-programmable fuses.

Fuses are addressed by name from the catalog of the selected platform
(imx6dl, imx8mm, imx8mn, imx8mp). Without --platform the SoC is detected
from /sys/devices/soc0/soc_id.

Register access:
  nvmem:     [--path /sys/bus/nvmem/devices/imx-ocotp0/nvmem]   (default)
  fsl_otp:   --sysfs /sys/fsl_otp                              (imx6dl only)
  U-Boot:    --port /dev/ttyUSB0 [--baud 115200]
             --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the
FLASH_FUSE_PASSWORD environment variable, or prompted interactively if not
set.

Exit codes:
  0 - Success
  1 - Error, mismatch or fuse not burnable
  2 - Console connection error

WARNING: changes are permanent and irreversible.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&platformName, "platform", "", "SoC platform (imx6dl, imx8mm, imx8mn, imx8mp)")
	rootCmd.PersistentFlags().StringVar(&nvmemPath, "path", "", "Override the default OCOTP nvmem path")
	rootCmd.PersistentFlags().StringVar(&sysfsDir, "sysfs", "", "Use the legacy fsl_otp sysfs directory instead of nvmem")
	rootCmd.PersistentFlags().StringVar(&macStyle, "mac-style", "", "MAC address output style (plain, colon)")
	rootCmd.PersistentFlags().BoolVar(&mergeWrites, "merge-writes", false, "Read and OR the current word before every write")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port of a U-Boot console")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL of a U-Boot console bridge (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&consolePrompt, "prompt", "=> ", "U-Boot prompt")
	rootCmd.PersistentFlags().DurationVar(&consoleTimeout, "console-timeout", 5*time.Second, "Time to wait for the U-Boot prompt")

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log every register access (or FLASH_FUSE_DEBUG=1)")
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func setupLogging(cmd *cobra.Command, args []string) error {
	logger = newLogger(debug || os.Getenv("FLASH_FUSE_DEBUG") == "1")
	return nil
}

// exitError carries a process exit code other than 1.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return 1
}
