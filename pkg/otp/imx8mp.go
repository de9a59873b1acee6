// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import "strconv"

// IMX8MP returns the i.MX8M Plus fuse table. The second Ethernet MAC shares
// MAC_ADDR1 with the first one. The SRK hash and the secure boot flags are
// not offered on this platform.
func IMX8MP() Platform {
	fuses := []Entry{
		MACEntry("MAC", imx8mMACAddr0, imx8mMACAddr1, MACStylePlain),
		DualMACEntry("MAC2", imx8mMACAddr1, imx8mMACAddr2, MACStylePlain),
		imx8mLockPair("MAC_ADDR_LOCK", 14),
		imx8mLockPair("USB_ID_LOCK", 12),
		FlagEntry("BT_FUSE_SEL", imx8mBootCfg0, Bit(28), Flags(
			FlagValue{"NONE", 0x0},
			FlagValue{"PROGRAMMED", Bit(28)},
		)),
		imx8mBootDevice(
			FlagValue{"FLEXSPI-SNAND-2K", Bit(13) | Bit(15)},
			FlagValue{"FLEXSPI-SNAND-4K", Bit(12) | Bit(13) | Bit(15)},
		),
		FlagEntry("FORCE_BT_FROM_FUSE", imx8mBootCfg1, Bit(20), Flags(
			FlagValue{"DISABLED", 0x0},
			FlagValue{"ENABLED", Bit(20)},
		)),
	}
	fuses = append(fuses, imx8mECSPI()...)
	fuses = append(fuses, FlagEntry("IMG_CNTN_SET1_OFFSET", imx8mBootCfg2, Mask(19, 22), imgCntnOffsets()))
	return Platform{
		Name:        "imx8mp",
		Description: "i.MX8M Plus OCOTP",
		Layout:      imx8mLayout,
		DefaultPath: "/sys/bus/nvmem/devices/imx-ocotp0/nvmem",
		Fuses:       fuses,
	}
}

// imgCntnOffsets are N_0..N_10, the container set 1 offset index stored
// as a plain binary number in bits 19..22.
func imgCntnOffsets() []FlagValue {
	values := make([]FlagValue, 0, 11)
	for n := 0; n <= 10; n++ {
		values = append(values, FlagValue{Name: "N_" + strconv.Itoa(n), Bits: uint32(n) << 19})
	}
	return values
}
