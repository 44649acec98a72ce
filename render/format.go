package render

import (
	"fmt"

	"github.com/ggoodman/chatcomponents-go/dispatch"
)

// FormatFileSize renders a byte count as B, KB or MB with one decimal.
func FormatFileSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

// GridColumns is the column count for a grid of n images.
func GridColumns(n int) int {
	switch n {
	case 2, 4:
		return 2
	default:
		return 3
	}
}

// ImageAlt returns the alt text for the i-th image of a set, falling back to
// a positional label.
func ImageAlt(i int, img dispatch.Image) string {
	if img.Alt != "" {
		return img.Alt
	}
	return fmt.Sprintf("Image %d", i+1)
}
