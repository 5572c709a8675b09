package main

import "fmt"

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// formatFreeBytes renders free-space telemetry; a negative value means the
// filesystem query failed.
func formatFreeBytes(n int64) string {
	if n < 0 {
		return "unknown"
	}
	return formatBytes(n)
}
