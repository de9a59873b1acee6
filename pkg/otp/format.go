// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import (
	"fmt"
	"strings"
)

// AvailableFuses lists every fuse of c with its accepted arguments.
func AvailableFuses(c *Catalog) string {
	var b strings.Builder
	b.WriteString("Available fuses and arguments:\n")
	for _, e := range c.Entries() {
		fmt.Fprintf(&b, "   %s\n", e.Name)
		for _, choice := range e.Choices() {
			fmt.Fprintf(&b, "      %s\n", choice)
		}
	}
	return b.String()
}

// FormatWords prints raw words as "0xOFF=0xVALUE" pairs.
func FormatWords(words []Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = fmt.Sprintf("0x%03x=0x%08x", w.Offset, w.Value)
	}
	return strings.Join(parts, " ")
}

// FormatResult describes a finished run in one line.
func FormatResult(res *Result) string {
	switch {
	case res.Written:
		return fmt.Sprintf("%s: fused %s", res.Fuse, res.Requested)
	case res.State == StateVerified:
		return fmt.Sprintf("%s: already fused %s", res.Fuse, res.Fused)
	case res.Requested == "":
		return fmt.Sprintf("%s: %s", res.Fuse, res.Fused)
	default:
		return fmt.Sprintf("%s: %s (requested %s)", res.Fuse, res.Fused, res.Requested)
	}
}
