// internal/jobspec/file.go
package jobspec

import (
	"fmt"
	"os"

	"github.com/fawad-mazhar/shopfloor/internal/models"
	"gopkg.in/yaml.v3"
)

// JobFile is the on-disk description of a job set.
// Jobs may be given structurally or as text lines; both are merged in that order.
type JobFile struct {
	MachineCount int                    `yaml:"machineCount"`
	Jobs         []models.JobDefinition `yaml:"jobs"`
	Lines        []string               `yaml:"lines"`
}

// LoadFile reads a YAML job file
func LoadFile(path string) (*JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML job set
func Parse(data []byte) (*JobFile, error) {
	var file JobFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse job file: %w", err)
	}

	next := 1
	for i := range file.Jobs {
		if file.Jobs[i].Color == "" {
			file.Jobs[i].Color = ColorFor(file.Jobs[i].ID)
		}
		if file.Jobs[i].ID >= next {
			next = file.Jobs[i].ID + 1
		}
	}

	for i, line := range file.Lines {
		ops, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("lines[%d]: %w", i, err)
		}
		file.Jobs = append(file.Jobs, models.JobDefinition{
			ID:         next,
			Color:      ColorFor(next),
			Operations: ops,
		})
		next++
	}
	file.Lines = nil

	return &file, nil
}
