// internal/ui/gantt.go
package ui

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fawad-mazhar/shopfloor/internal/models"
	"github.com/fawad-mazhar/shopfloor/internal/report"
)

// maxCells caps the timeline when no Width is set.
const maxCells = 4096

// Gantt renders a schedule as one text lane per machine.
type Gantt struct {
	// Scale is the number of character cells per time unit.
	Scale float64
	// Width caps the rendered timeline in cells; 0 means maxCells.
	Width int
}

// NewGantt creates a renderer with one cell per time unit.
func NewGantt() *Gantt {
	return &Gantt{Scale: 1}
}

// Render writes the lanes, a ruler and the metric summary.
// Critical tasks are underlined, precedence violations are marked with '!'.
func (g *Gantt) Render(w io.Writer, s models.Schedule, m models.Metrics) {
	critical := indexSet(m.CriticalTasks)
	violating := indexSet(m.Violations)
	conflicting := indexSet(m.MachineConflicts)

	cells := g.cells(m.Makespan)

	for machine := range m.Utilization {
		lane := make([]int, cells)
		for i := range lane {
			lane[i] = -1
		}
		for i, t := range s.Tasks {
			if t.MachineID != machine {
				continue
			}
			from, to := g.cell(t.Start), g.cell(t.End())
			for c := from; c < to && c < cells; c++ {
				lane[c] = i
			}
		}

		fmt.Fprintf(w, "%s %s |", BoldWhite(fmt.Sprintf("M%-2d", machine)), padLeft(UtilizationLabel(m.Utilization[machine]), 4, m.Utilization[machine]))
		for c := 0; c < cells; {
			idx := lane[c]
			run := 1
			for c+run < cells && lane[c+run] == idx {
				run++
			}
			if idx < 0 {
				fmt.Fprint(w, strings.Repeat(" ", run))
			} else {
				fmt.Fprint(w, g.block(s.Tasks[idx], run, critical[idx], violating[idx] || conflicting[idx]))
			}
			c += run
		}
		fmt.Fprintln(w, "|")
	}

	fmt.Fprintf(w, "%s|%s|\n", strings.Repeat(" ", 9), g.ruler(cells))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %sh   %s %s%%\n",
		Bold("Makespan:"), report.FormatTime(m.Makespan),
		Bold("Avg load:"), fmt.Sprint(m.AverageUtilization))

	if len(m.Violations) > 0 {
		fmt.Fprintf(w, "%s %s\n", BoldRed("Precedence violations:"), describe(s, m.Violations))
	}
	if len(m.MachineConflicts) > 0 {
		fmt.Fprintf(w, "%s %s\n", BoldYellow("Machine overlaps:"), describe(s, m.MachineConflicts))
	}
}

func (g *Gantt) cells(makespan float64) int {
	n := g.cell(makespan)
	if g.Width > 0 && n > g.Width {
		return g.Width
	}
	return n
}

// cell maps a time to a column in [0, maxCells]
func (g *Gantt) cell(t float64) int {
	scale := g.Scale
	if scale <= 0 {
		scale = 1
	}
	v := t * scale
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= maxCells:
		return maxCells
	}
	return int(math.Round(v))
}

func (g *Gantt) block(t models.ScheduledTask, width int, critical, flagged bool) string {
	label := fmt.Sprintf("J%d", t.JobID)
	if flagged {
		label += "!"
	}
	if len(label) > width {
		label = label[:width]
	}
	text := label + strings.Repeat(" ", width-len(label))

	styled := JobColor(t.JobID).Sprint(text)
	if critical {
		return underline.Sprint(styled)
	}
	return styled
}

func (g *Gantt) ruler(cells int) string {
	var b strings.Builder
	for c := 0; c < cells; c++ {
		if c%5 == 0 {
			b.WriteString("+")
		} else {
			b.WriteString("-")
		}
	}
	return Dim(b.String())
}

func describe(s models.Schedule, indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		t := s.Tasks[idx]
		parts[i] = fmt.Sprintf("#%d (J%d op %d on M%d @ %sh)", idx, t.JobID, t.Sequence+1, t.MachineID, report.FormatTime(t.Start))
	}
	return strings.Join(parts, ", ")
}

func indexSet(indices []int) map[int]bool {
	set := make(map[int]bool, len(indices))
	for _, i := range indices {
		set[i] = true
	}
	return set
}

// padLeft pads a colored string using the width of its plain value
func padLeft(styled string, width int, value int) string {
	plain := len(fmt.Sprint(value)) + 1
	if plain >= width {
		return styled
	}
	return strings.Repeat(" ", width-plain) + styled
}
