package utils

import "fmt"

// Truncate shortens s to maxLen bytes, appending the original length so log
// lines stay bounded without hiding how much was cut.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}
