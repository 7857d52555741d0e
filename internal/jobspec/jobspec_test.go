package jobspec

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/fawad-mazhar/shopfloor/internal/models"
	"github.com/fawad-mazhar/shopfloor/internal/scheduler"
)

func TestParseLine(t *testing.T) {
	ops, err := ParseLine("0,2  1,3.5 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []models.OperationSpec{{MachineID: 0, Duration: 2}, {MachineID: 1, Duration: 3.5}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("expected %v, got %v", want, ops)
	}
}

func TestParseLine_Errors(t *testing.T) {
	for _, line := range []string{"", "   ", "0", "0,1,2", "a,2", "0,x"} {
		if _, err := ParseLine(line); err == nil {
			t.Errorf("expected error for %q", line)
		}
	}
}

func TestParseLines_IDsFollowLinePositions(t *testing.T) {
	jobs, err := ParseLines("0,3 1,4\n\n1,2 0,5\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != 1 || jobs[1].ID != 3 {
		t.Errorf("expected ids 1 and 3, got %d and %d", jobs[0].ID, jobs[1].ID)
	}
	if jobs[1].Color != ColorFor(3) {
		t.Errorf("expected palette color %s, got %s", ColorFor(3), jobs[1].Color)
	}
}

func TestParseLines_ReportsLine(t *testing.T) {
	_, err := ParseLines("0,3\n1;2")
	if err == nil || !strings.HasPrefix(err.Error(), "line 2:") {
		t.Errorf("expected error for line 2, got %v", err)
	}
}

func TestFormatLine_RoundTrip(t *testing.T) {
	ops := []models.OperationSpec{{MachineID: 2, Duration: 4}, {MachineID: 0, Duration: 1.25}}
	line := FormatLine(ops)
	if line != "2,4 0,1.25" {
		t.Errorf("expected \"2,4 0,1.25\", got %q", line)
	}
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
machineCount: 5
jobs:
  - id: 4
    color: "#000000"
    operations:
      - {machine: 0, duration: 3}
      - {machine: 4, duration: 1}
lines:
  - "1,2 2,2"
`)

	file, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if file.MachineCount != 5 {
		t.Errorf("expected machine count 5, got %d", file.MachineCount)
	}
	if len(file.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(file.Jobs))
	}
	if file.Jobs[1].ID != 5 {
		t.Errorf("expected text job to take id 5, got %d", file.Jobs[1].ID)
	}
	if file.Jobs[0].Operations[1].MachineID != 4 {
		t.Errorf("expected machine 4, got %d", file.Jobs[0].Operations[1].MachineID)
	}
}

func TestRandom_ShapeAndDeterminism(t *testing.T) {
	a := Random(rand.New(rand.NewSource(42)), 0)
	b := Random(rand.New(rand.NewSource(42)), 0)

	if !reflect.DeepEqual(a, b) {
		t.Error("expected the same seed to generate the same jobs")
	}
	if len(a) < 3 || len(a) > 5 {
		t.Errorf("expected 3 to 5 jobs, got %d", len(a))
	}

	for _, job := range a {
		if len(job.Operations) != 3 {
			t.Errorf("job %d: expected 3 operations, got %d", job.ID, len(job.Operations))
		}
		seen := map[int]bool{}
		for _, op := range job.Operations {
			if seen[op.MachineID] {
				t.Errorf("job %d: machine %d used twice", job.ID, op.MachineID)
			}
			seen[op.MachineID] = true
			if op.Duration < 2 || op.Duration > 6 {
				t.Errorf("job %d: duration %v out of [2,6]", job.ID, op.Duration)
			}
		}
		if len(job.Color) != 7 || job.Color[0] != '#' {
			t.Errorf("job %d: malformed color %q", job.ID, job.Color)
		}
	}

	if _, err := scheduler.Build(a, 4); err != nil {
		t.Errorf("expected random jobs to be valid, got %v", err)
	}
}

func TestDemo_Builds(t *testing.T) {
	jobs, machines := Demo()
	s, err := scheduler.Build(jobs, machines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := scheduler.Makespan(s); got != 22 {
		t.Errorf("expected demo makespan 22, got %v", got)
	}
}
