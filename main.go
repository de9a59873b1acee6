// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// flash-fuse - i.MX OCOTP fuse provisioning tool
//
// Reads, verifies and burns named one-time-programmable fuses through the
// kernel nvmem device, the legacy fsl_otp sysfs files or a U-Boot console.

package main

import (
	"os"

	"github.com/Thermoquad/flash-fuse/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
