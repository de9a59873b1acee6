// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Thermoquad/flash-fuse/pkg/otp"
	"github.com/Thermoquad/flash-fuse/pkg/uboot"
)

// socIDPath is where the kernel reports the SoC family.
var socIDPath = "/sys/devices/soc0/soc_id"

// detectPlatform reads socIDPath and maps it to a catalog platform.
func detectPlatform() (otp.Platform, string, error) {
	data, err := os.ReadFile(socIDPath)
	if err != nil {
		return otp.Platform{}, "", fmt.Errorf("cannot detect SoC (use --platform): %w", err)
	}
	socID := strings.TrimSpace(string(data))
	p, ok := otp.DetectPlatform(socID)
	if !ok {
		return otp.Platform{}, socID, fmt.Errorf("unsupported SoC %q (use --platform: %s)", socID, strings.Join(otp.PlatformNames(), ", "))
	}
	return p, socID, nil
}

// openCatalog builds the catalog for --platform, fallback, or the detected
// SoC, in that order.
func openCatalog(fallback string) (*otp.Catalog, error) {
	name := platformName
	if name == "" {
		name = fallback
	}
	var p otp.Platform
	if name != "" {
		var ok bool
		p, ok = otp.LookupPlatform(name)
		if !ok {
			return nil, fmt.Errorf("unknown platform %q (%s)", name, strings.Join(otp.PlatformNames(), ", "))
		}
	} else {
		var err error
		if p, _, err = detectPlatform(); err != nil {
			return nil, err
		}
	}
	if macStyle != "" {
		style, err := otp.ParseMACStyle(macStyle)
		if err != nil {
			return nil, err
		}
		p = p.WithMACStyle(style)
	}
	logger.Debug("platform selected", "platform", p.Name)
	return otp.NewCatalog(p)
}

// openStore opens the register medium selected by flags. pathFallback
// replaces the platform default nvmem path when --path is not given. The
// returned close function stops the console reader and closes its
// connection.
func openStore(c *otp.Catalog, pathFallback string) (otp.Store, func() error, error) {
	noop := func() error { return nil }
	p := c.Platform()

	var store otp.Store
	closeFn := noop
	switch {
	case consoleRequested():
		conn, info, err := OpenConnection()
		if err != nil {
			return nil, nil, &exitError{code: 2, err: fmt.Errorf("connection error: %w", err)}
		}
		logger.Info("console connected", "connection", info)
		console := uboot.NewConsole(conn,
			uboot.WithPrompt(consolePrompt),
			uboot.WithTimeout(consoleTimeout),
			uboot.WithLogger(logger))
		store = uboot.NewStore(console, p.Layout, logger)
		closeFn = console.Close

	case sysfsDir != "":
		if len(p.Registers) == 0 {
			return nil, nil, fmt.Errorf("%s has no fsl_otp register names, use --path", p.Name)
		}
		store = otp.NewSysfsStore(sysfsDir, p.Registers, logger)

	default:
		path := nvmemPath
		if path == "" {
			path = pathFallback
		}
		if path == "" {
			path = p.DefaultPath
		}
		store = otp.NewFileStore(path, logger)
	}

	if mergeWrites {
		store = otp.NewMergeStore(store)
	}
	return store, closeFn, nil
}

// openProvisioner is openCatalog plus openStore.
func openProvisioner() (*otp.Provisioner, func() error, error) {
	c, err := openCatalog("")
	if err != nil {
		return nil, nil, err
	}
	store, closeFn, err := openStore(c, "")
	if err != nil {
		return nil, nil, err
	}
	return otp.NewProvisioner(c, store, logger), closeFn, nil
}
