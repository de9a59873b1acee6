// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

// imx8mBootDevice is the BOOT_CFG0[15:12] boot device selector shared by
// the i.MX8M Nano and Plus.
func imx8mBootDevice(extra ...FlagValue) Entry {
	values := Flags(
		FlagValue{"FUSES", 0x0},
		FlagValue{"SDP", Bit(12)},
		FlagValue{"USDHC3", Bit(13)},
		FlagValue{"USDHC2", Mask(12, 13)},
		FlagValue{"NAND-256", Bit(14)},
		FlagValue{"NAND-512", Bit(12) | Bit(14)},
		FlagValue{"FLEXSPI-3b", Mask(13, 14)},
		FlagValue{"FLEXSPI-HYPERFLASH", Mask(12, 14)},
		FlagValue{"ECSPI", Bit(15)},
	)
	return FlagEntry("BOOT_DEVICE", imx8mBootCfg0, Mask(12, 15), append(values, extra...))
}

func imx8mECSPI() []Entry {
	return []Entry{
		FlagEntry("BOOT_ECSPI_PORT", imx8mBootCfg1, Mask(29, 31), Flags(
			FlagValue{"ECSPI1", 0x0},
			FlagValue{"ECSPI2", Bit(29)},
			FlagValue{"ECSPI3", Bit(30)},
		)),
		FlagEntry("BOOT_ECSPI_ADDR", imx8mBootCfg1, Bit(28), Flags(
			FlagValue{"3-BYTES", 0x0},
			FlagValue{"2-BYTES", Bit(28)},
		)),
		FlagEntry("BOOT_ECSPI_CS", imx8mBootCfg1, Mask(26, 27), Flags(
			FlagValue{"CS0", 0x0},
			FlagValue{"CS1", Bit(26)},
			FlagValue{"CS2", Bit(27)},
			FlagValue{"CS3", Mask(26, 27)},
		)),
	}
}

func imx8mLockPair(name string, low int) Entry {
	return FlagEntry(name, imx8mLock, Mask(low, low+1), Flags(
		FlagValue{"NONE", 0x0},
		FlagValue{"WP", Bit(low)},
		FlagValue{"OP", Bit(low + 1)},
		FlagValue{"WP+OP", Mask(low, low+1)},
	))
}

// IMX8MN returns the i.MX8M Nano fuse table.
func IMX8MN() Platform {
	fuses := []Entry{
		MACEntry("MAC", imx8mMACAddr0, imx8mMACAddr1, MACStylePlain),
		SRKEntry("SRK", imx8mSRK()),
		imx8mLockPair("MAC_ADDR_LOCK", 14),
		imx8mLockPair("USB_ID_LOCK", 12),
		imx8mLockPair("BOOT_CFG_LOCK", 2),
		FlagEntry("SRK_LOCK", imx8mLock, Bit(9), Flags(
			FlagValue{"NONE", 0x0},
			FlagValue{"WP+OP", Bit(9)},
		)),
		FlagEntry("BT_FUSE_SEL", imx8mBootCfg0, Bit(28), Flags(
			FlagValue{"BOARD", 0x0},
			FlagValue{"FUSE", Bit(28)},
		)),
		FlagEntry("SJC_DISABLE", imx8mBootCfg0, Bit(21), Flags(
			FlagValue{"ENABLED", 0x0},
			FlagValue{"DISABLED", Bit(21)},
		)),
		FlagEntry("JTAG_SMODE", imx8mBootCfg0, Mask(22, 23), Flags(
			FlagValue{"JTAG", 0x0},
			FlagValue{"SECURE", Bit(22)},
			FlagValue{"DISABLED", Mask(22, 23)},
		)),
		FlagEntry("SEC_CONFIG", imx8mBootCfg0, Bit(25), Flags(
			FlagValue{"OPEN", 0x0},
			FlagValue{"CLOSED", Bit(25)},
		)),
		imx8mBootDevice(),
	}
	return Platform{
		Name:        "imx8mn",
		Description: "i.MX8M Nano OCOTP",
		Layout:      imx8mLayout,
		DefaultPath: "/sys/bus/nvmem/devices/imx-ocotp0/nvmem",
		Fuses:       append(fuses, imx8mECSPI()...),
	}
}
