// internal/ui/style.go
package ui

import (
	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold       = color.New(color.Bold).SprintFunc()
	Dim        = color.New(color.Faint).SprintFunc()
	Cyan       = color.New(color.FgCyan).SprintFunc()
	Green      = color.New(color.FgGreen).SprintFunc()
	Red        = color.New(color.FgRed).SprintFunc()
	Yellow     = color.New(color.FgYellow).SprintFunc()
	BoldCyan   = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldRed    = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldWhite  = color.New(color.Bold, color.FgWhite).SprintFunc()
)

var underline = color.New(color.Underline)

// jobColors is a palette of distinct background colors for differentiating jobs.
var jobColors = []*color.Color{
	color.New(color.BgBlue, color.FgHiWhite),
	color.New(color.BgGreen, color.FgBlack),
	color.New(color.BgYellow, color.FgBlack),
	color.New(color.BgMagenta, color.FgHiWhite),
	color.New(color.BgCyan, color.FgBlack),
	color.New(color.BgHiRed, color.FgBlack),
}

// JobColor returns the block color for a job id.
func JobColor(jobID int) *color.Color {
	idx := jobID % len(jobColors)
	if idx < 0 {
		idx = -idx
	}
	return jobColors[idx]
}

// UtilizationLabel colors a utilization percentage by load.
func UtilizationLabel(pct int) string {
	switch {
	case pct >= 75:
		return Green(pct, "%")
	case pct >= 40:
		return Yellow(pct, "%")
	default:
		return Dim(pct, "%")
	}
}
