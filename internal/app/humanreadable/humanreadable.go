// humanreadable formats byte counts for log and progress output.
package humanreadable

import "fmt"

// IEC returns b in binary (1024-based) units, e.g 1.4 MiB.
func IEC(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// SI returns b in decimal (1000-based) units, e.g 1.5 MB.
func SI(b int64) string {
	const unit = 1000
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "kMGTPE"[exp])
}

// MB returns b divided by 1024*1024 with one decimal and an MB suffix,
// the size format used in download result messages.
func MB(b int64) string {
	return fmt.Sprintf("%.1f MB", float64(b)/1024/1024)
}
