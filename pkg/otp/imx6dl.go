// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import "strconv"

// i.MX6DL OCOTP: 8 words per bank.
//
//	MAC0 bank 4 word 2: (4 * 8 + 2) * 4 = 0x88
//	MAC1 bank 4 word 3: (4 * 8 + 3) * 4 = 0x8C
var imx6dlLayout = Layout{Name: "imx6dl", WordsPerBank: 8}

var (
	imx6dlLock = imx6dlLayout.Offset(0, 0)
	imx6dlCfg4 = imx6dlLayout.Offset(0, 5)
	imx6dlCfg5 = imx6dlLayout.Offset(0, 6)
	imx6dlMAC0 = imx6dlLayout.Offset(4, 2)
	imx6dlMAC1 = imx6dlLayout.Offset(4, 3)
)

func imx6dlSRK() [8]int64 {
	var offs [8]int64
	for i := range offs {
		offs[i] = imx6dlLayout.Offset(3, i)
	}
	return offs
}

// imx6dlRegisters are the fsl_otp sysfs file names for the first five banks.
func imx6dlRegisters() map[int64]string {
	regs := map[int64]string{
		imx6dlLayout.Offset(4, 0): "HW_OCOTP_SJC_RESP0",
		imx6dlLayout.Offset(4, 1): "HW_OCOTP_SJC_RESP1",
		imx6dlMAC0:                "HW_OCOTP_MAC0",
		imx6dlMAC1:                "HW_OCOTP_MAC1",
		imx6dlLayout.Offset(4, 6): "HW_OCOTP_GP1",
		imx6dlLayout.Offset(4, 7): "HW_OCOTP_GP2",
		imx6dlLock:                "HW_OCOTP_LOCK",
	}
	for w := 0; w < 7; w++ {
		regs[imx6dlLayout.Offset(0, w+1)] = "HW_OCOTP_CFG" + strconv.Itoa(w)
	}
	for w := 0; w < 5; w++ {
		regs[imx6dlLayout.Offset(1, w)] = "HW_OCOTP_MEM" + strconv.Itoa(w)
	}
	for w := 0; w < 3; w++ {
		regs[imx6dlLayout.Offset(1, w+5)] = "HW_OCOTP_ANA" + strconv.Itoa(w)
	}
	for w := 0; w < 8; w++ {
		regs[imx6dlLayout.Offset(2, w)] = "HW_OCOTP_OTPMK" + strconv.Itoa(w)
		regs[imx6dlLayout.Offset(3, w)] = "HW_OCOTP_SRK" + strconv.Itoa(w)
	}
	return regs
}

// IMX6DL returns the i.MX6 DualLite fuse table.
func IMX6DL() Platform {
	return Platform{
		Name:        "imx6dl",
		Description: "i.MX6 DualLite/Solo OCOTP",
		Layout:      imx6dlLayout,
		DefaultPath: "/sys/bus/nvmem/devices/imx-ocotp0/nvmem",
		Registers:   imx6dlRegisters(),
		Fuses: []Entry{
			MACEntry("MAC", imx6dlMAC0, imx6dlMAC1, MACStylePlain),
			SRKEntry("SRK", imx6dlSRK()),
			FlagEntry("MAC_LOCK", imx6dlLock, Mask(8, 9), Flags(
				FlagValue{"NONE", 0x0},
				FlagValue{"WP", Bit(8)},
				FlagValue{"OP", Bit(9)},
				FlagValue{"WP+OP", Mask(8, 9)},
			)),
			FlagEntry("SRK_LOCK", imx6dlLock, Bit(14), Flags(
				FlagValue{"NONE", 0x0},
				FlagValue{"LOCKED", Bit(14)},
			)),
			FlagEntry("BT_FUSE_SEL", imx6dlCfg5, Bit(4), Flags(
				FlagValue{"BOARD", 0x0},
				FlagValue{"FUSE", Bit(4)},
			)),
			FlagEntry("SJC_DISABLE", imx6dlCfg5, Bit(20), Flags(
				FlagValue{"SJC_ENABLED", 0x0},
				FlagValue{"SJC_DISABLED", Bit(20)},
			)),
			FlagEntry("SEC_DISABLE", imx6dlCfg5, Bit(1), Flags(
				FlagValue{"OPEN", 0x0},
				FlagValue{"CLOSED", Bit(1)},
			)),
			FlagEntry("DIR_BT_DIS", imx6dlCfg5, Bit(3), Flags(
				FlagValue{"NXP_RESERVED", 0x0},
				FlagValue{"PRODUCTION", Bit(3)},
			)),
			// Some boot devices ignore some of these bits. All of them are
			// compared; they are assumed to have been written as a whole.
			FlagEntry("BOOT_DEVICE", imx6dlCfg4, Mask(3, 7), Flags(
				FlagValue{"NOR_Flash", 0x0},
				FlagValue{"OneNAND", Bit(3)},
				FlagValue{"SERIAL_ROM", Mask(4, 5)},
				FlagValue{"SD/eSD", Bit(6)},
				FlagValue{"MMC/eMMC", Mask(5, 6)},
				FlagValue{"NAND_Flash", Bit(7)},
			)),
			FlagEntry("BOOT_MMC_PORT", imx6dlCfg4, Mask(11, 12), Flags(
				FlagValue{"uSDHC1", 0x0},
				FlagValue{"uSDHC2", Bit(11)},
				FlagValue{"uSDHC3", Bit(12)},
				FlagValue{"uSDHC4", Mask(11, 12)},
			)),
			FlagEntry("BOOT_MMC_WIDTH", imx6dlCfg5, Mask(13, 15), Flags(
				FlagValue{"1-BIT", 0x0},
				FlagValue{"4-BIT", Bit(13)},
				FlagValue{"8-BIT", Bit(14)},
				FlagValue{"4-BIT", Bit(13) | Bit(15)},
				FlagValue{"8-BIT-DDR", Mask(14, 15)},
			)),
		},
	}
}
