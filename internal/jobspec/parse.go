// internal/jobspec/parse.go
package jobspec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fawad-mazhar/shopfloor/internal/models"
)

// Palette holds the default job colors, assigned by job id
var Palette = []string{
	"#3b82f6",
	"#10b981",
	"#f59e0b",
	"#ef4444",
	"#8b5cf6",
	"#06b6d4",
	"#ec4899",
	"#84cc16",
}

// ColorFor returns the palette color for a job id
func ColorFor(jobID int) string {
	if jobID <= 0 {
		return Palette[0]
	}
	return Palette[(jobID-1)%len(Palette)]
}

// ParseLine parses one job written as space separated "machine,duration" pairs,
// for example "0,3 1,4 2,2".
func ParseLine(line string) ([]models.OperationSpec, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no operations")
	}

	ops := make([]models.OperationSpec, 0, len(fields))
	for _, pair := range fields {
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed pair %q: expected machine,duration", pair)
		}

		machine, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("malformed machine in %q: %w", pair, err)
		}

		duration, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed duration in %q: %w", pair, err)
		}

		ops = append(ops, models.OperationSpec{MachineID: machine, Duration: duration})
	}
	return ops, nil
}

// ParseLines parses one job per line. Job ids follow line positions starting at
// 1, so a blank line is skipped but still consumes its id.
func ParseLines(text string) ([]models.JobDefinition, error) {
	var jobs []models.JobDefinition
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		ops, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		jobs = append(jobs, models.JobDefinition{
			ID:         i + 1,
			Color:      ColorFor(i + 1),
			Operations: ops,
		})
	}
	return jobs, nil
}

// FormatLine is the inverse of ParseLine
func FormatLine(ops []models.OperationSpec) string {
	pairs := make([]string, len(ops))
	for i, op := range ops {
		pairs[i] = fmt.Sprintf("%d,%s", op.MachineID, strconv.FormatFloat(op.Duration, 'f', -1, 64))
	}
	return strings.Join(pairs, " ")
}
