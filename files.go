/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
)

const sizeUnits = "kMGTPE"

// humanReadableSize formats a response size in decimal units for the
// SERVE log lines.
func humanReadableSize(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d B", n)
	}

	size := float64(n) / 1000
	exp := 0
	for size >= 1000 && exp < len(sizeUnits)-1 {
		size /= 1000
		exp++
	}

	return fmt.Sprintf("%.1f %cB", size, sizeUnits[exp])
}
