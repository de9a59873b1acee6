// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

// i.MX8M Mini OCOTP: 4 words per bank.
//
//	MAC0 bank 9 word 0: (9 * 4 + 0) * 4 = 0x90
//	MAC1 bank 9 word 1: (9 * 4 + 1) * 4 = 0x94
var imx8mLayout = Layout{Name: "imx8m", WordsPerBank: 4}

var (
	imx8mLock     = imx8mLayout.Offset(0, 0) // 0x000
	imx8mBootCfg0 = imx8mLayout.Offset(1, 3) // 0x01c
	imx8mBootCfg1 = imx8mLayout.Offset(2, 0) // 0x020
	imx8mBootCfg2 = imx8mLayout.Offset(2, 1) // 0x024
	imx8mMACAddr0 = imx8mLayout.Offset(9, 0) // 0x090
	imx8mMACAddr1 = imx8mLayout.Offset(9, 1) // 0x094
	imx8mMACAddr2 = imx8mLayout.Offset(9, 2) // 0x098
)

// imx8mSRK returns SRK0..SRK7, banks 6 and 7 (0x060..0x07c).
func imx8mSRK() [8]int64 {
	var offs [8]int64
	for i := range offs {
		offs[i] = imx8mLayout.Offset(6+i/4, i%4)
	}
	return offs
}

// IMX8MM returns the i.MX8M Mini fuse table: the MAC and its lock only. The
// lock is a plain on/off fuse written as "1" or "0".
func IMX8MM() Platform {
	return Platform{
		Name:        "imx8mm",
		Description: "i.MX8M Mini OCOTP",
		Layout:      imx8mLayout,
		DefaultPath: "/sys/bus/nvmem/devices/imx-ocotp0/nvmem",
		Fuses: []Entry{
			MACEntry("MAC", imx8mMACAddr0, imx8mMACAddr1, MACStylePlain),
			FlagEntry("LOCK_MAC", imx8mLock, Bit(14), Flags(
				FlagValue{"0", 0x0},
				FlagValue{"1", Bit(14)},
			)),
		},
	}
}
