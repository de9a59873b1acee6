// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/flash-fuse/pkg/otp"
	"github.com/spf13/cobra"
)

var provisionCommit bool

var provisionCmd = &cobra.Command{
	Use:   "provision MANIFEST",
	Short: "Verify or burn every fuse listed in a YAML manifest",
	Long: `Apply a YAML provisioning manifest:

  platform: imx8mp
  fuses:
    - name: MAC
      value: 0010302050A2
    - name: BOOT_DEVICE
      value: USDHC3

Every entry is validated before any fuse is touched. Entries then run in
order and the run stops at the first failure. Without --commit the manifest
is only verified.

The manifest platform and path apply unless --platform or --path is given.

WARNING: with --commit, changes are permanent and irreversible.`,
	Args: cobra.ExactArgs(1),
	RunE: runProvision,
}

func init() {
	rootCmd.AddCommand(provisionCmd)
	provisionCmd.Flags().BoolVar(&provisionCommit, "commit", false, "Burn fuses (default verify only)")
}

func runProvision(cmd *cobra.Command, args []string) error {
	m, err := otp.LoadManifest(args[0])
	if err != nil {
		return err
	}
	c, err := openCatalog(m.Platform)
	if err != nil {
		return err
	}
	if err := m.Validate(c); err != nil {
		return err
	}
	store, closeFn, err := openStore(c, m.Path)
	if err != nil {
		return err
	}
	defer closeFn()

	mode := otp.ModeVerify
	if provisionCommit {
		mode = otp.ModeCommit
	}
	prov := otp.NewProvisioner(c, store, logger)
	report, err := prov.Apply(m, mode)
	if report != nil {
		out := cmd.OutOrStdout()
		for _, res := range report.Results {
			fmt.Fprintln(out, otp.FormatResult(res))
		}
		fmt.Fprint(out, report.Stats.String())
	}
	return err
}
