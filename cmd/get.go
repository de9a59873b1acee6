// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/flash-fuse/pkg/otp"
	"github.com/spf13/cobra"
)

var getRaw bool

var getCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print the current value of a fuse",
	Long: `Read a fuse and print its decoded value. Nothing is written.

Flag fuses whose bits match no known value print UNKNOWN.`,
	Example: "  flash-fuse --platform imx8mp get MAC",
	Args:    cobra.ExactArgs(1),
	RunE:    runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVar(&getRaw, "raw", false, "Also print the raw register words")
}

func runGet(cmd *cobra.Command, args []string) error {
	prov, closeFn, err := openProvisioner()
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := prov.Run(otp.Request{Fuse: args[0], Mode: otp.ModeInspect})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Fused)

	if getRaw {
		f, _ := prov.Catalog().Resolve(prov.Store(), args[0])
		words, err := f.Words()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), otp.FormatWords(words))
	}
	return nil
}

// runRequest runs one verify or commit request and reports the outcome.
func runRequest(cmd *cobra.Command, req otp.Request) error {
	prov, closeFn, err := openProvisioner()
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := prov.Run(req)
	if err != nil {
		if res.Written {
			logger.Error("write failed, fuse may be partially burned", "fuse", req.Fuse)
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), otp.FormatResult(res))
	return nil
}
