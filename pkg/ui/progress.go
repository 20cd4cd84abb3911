package ui

import (
	"fmt"
	"strings"
	"time"

	"satfetch/pkg/downloader"
)

const barWidth = 20

// PrintProgress renders one progress observation as a single updating line
func PrintProgress(p downloader.Progress) {
	if quietMode {
		return
	}

	filled := 0
	if p.Total > 0 {
		filled = int(float64(p.Processed) / float64(p.Total) * barWidth)
	}
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	fmt.Printf("\r[%s] %d/%d (%.1f%%) • elapsed %s • remaining %s   ",
		bar,
		p.Processed,
		p.Total,
		p.Percent,
		formatDuration(p.Elapsed),
		formatDuration(p.Remaining),
	)
}

// PrintSummary renders the final statistics block for a batch run
func PrintSummary(stats downloader.Stats) {
	if quietMode {
		return
	}

	fmt.Println()
	fmt.Println(Dim(strings.Repeat("─", 50)))
	PrintInfo("Total properties", fmt.Sprintf("%d", stats.Total))
	PrintInfo("Successful", fmt.Sprintf("%d (%.1f%%)", stats.Successful, stats.SuccessRate))
	PrintInfo("Skipped (already present)", fmt.Sprintf("%d", stats.Skipped))
	if stats.Failed > 0 {
		fmt.Printf("%s: %s\n", Cyan("Failed"), Red(fmt.Sprintf("%d", stats.Failed)))
		fmt.Printf("%s: %s\n", Cyan("Failed ids"), Red(strings.Join(stats.FailedIDs, ", ")))
	} else {
		PrintInfo("Failed", "0")
	}
	PrintInfo("Duration", formatDuration(stats.Duration))
	fmt.Println(Dim(strings.Repeat("─", 50)))
}

// formatDuration renders a duration at second precision
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Round(time.Second).String()
}
