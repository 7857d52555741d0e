package scheduler

import (
	"reflect"
	"testing"

	"github.com/fawad-mazhar/shopfloor/internal/models"
)

func task(job, seq, machine int, start, duration float64) models.ScheduledTask {
	return models.ScheduledTask{JobID: job, Sequence: seq, MachineID: machine, Start: start, Duration: duration}
}

func TestAnalyze_WorkedExample(t *testing.T) {
	s, err := Build(exampleJobs(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := Analyze(s)

	if m.Makespan != 17 {
		t.Errorf("expected makespan 17, got %v", m.Makespan)
	}

	// machine 0: 3+5=8, machine 1: 4+2=6, machine 2: 2, machine 3: 3
	want := []int{47, 35, 12, 18}
	if !reflect.DeepEqual(m.Utilization, want) {
		t.Errorf("expected utilization %v, got %v", want, m.Utilization)
	}
	// (47+35+12+18)/4 = 28
	if m.AverageUtilization != 28 {
		t.Errorf("expected average 28, got %d", m.AverageUtilization)
	}

	if len(m.CriticalTasks) != 1 || s.Tasks[m.CriticalTasks[0]].JobID != 2 {
		t.Errorf("expected only job 2's last task to be critical, got %v", m.CriticalTasks)
	}
	if len(m.Violations) != 0 {
		t.Errorf("expected no violations, got %v", m.Violations)
	}
	if len(m.MachineConflicts) != 0 {
		t.Errorf("expected no machine conflicts, got %v", m.MachineConflicts)
	}
}

func TestAnalyze_EmptySchedule(t *testing.T) {
	m := Analyze(models.Schedule{MachineCount: 3})

	if m.Makespan != 0 {
		t.Errorf("expected makespan 0, got %v", m.Makespan)
	}
	if !reflect.DeepEqual(m.Utilization, []int{0, 0, 0}) {
		t.Errorf("expected zero utilization for 3 machines, got %v", m.Utilization)
	}
	if m.AverageUtilization != 0 {
		t.Errorf("expected average 0, got %d", m.AverageUtilization)
	}
	if len(m.CriticalTasks) != 0 || len(m.Violations) != 0 {
		t.Errorf("expected no flags, got critical=%v violations=%v", m.CriticalTasks, m.Violations)
	}

	m = Analyze(models.Schedule{})
	if len(m.Utilization) != 0 || m.AverageUtilization != 0 {
		t.Errorf("expected no machines, got %v avg %d", m.Utilization, m.AverageUtilization)
	}
}

func TestAnalyze_IdleMachinesCountInAverage(t *testing.T) {
	s := models.Schedule{
		MachineCount: 2,
		Tasks:        []models.ScheduledTask{task(1, 0, 0, 0, 4)},
	}

	m := Analyze(s)
	if !reflect.DeepEqual(m.Utilization, []int{100, 0}) {
		t.Errorf("expected [100 0], got %v", m.Utilization)
	}
	if m.AverageUtilization != 50 {
		t.Errorf("expected average 50, got %d", m.AverageUtilization)
	}
}

func TestAnalyze_RoundsHalfUp(t *testing.T) {
	// busy 1 of 8 = 12.5%
	s := models.Schedule{
		MachineCount: 2,
		Tasks: []models.ScheduledTask{
			task(1, 0, 0, 0, 1),
			task(2, 0, 1, 0, 8),
		},
	}

	m := Analyze(s)
	if m.Utilization[0] != 13 {
		t.Errorf("expected 13, got %d", m.Utilization[0])
	}
	// (13+100)/2 = 56.5
	if m.AverageUtilization != 57 {
		t.Errorf("expected 57, got %d", m.AverageUtilization)
	}
}

func TestAnalyze_OverlapCapsUtilization(t *testing.T) {
	s := models.Schedule{
		MachineCount: 1,
		Tasks: []models.ScheduledTask{
			task(1, 0, 0, 0, 4),
			task(2, 0, 0, 0, 4),
		},
	}

	m := Analyze(s)
	if m.Utilization[0] != 100 {
		t.Errorf("expected utilization capped at 100, got %d", m.Utilization[0])
	}
}

func TestAnalyze_AllTasksEndingAtMakespanAreCritical(t *testing.T) {
	s := models.Schedule{
		MachineCount: 3,
		Tasks: []models.ScheduledTask{
			task(1, 0, 0, 0, 5),
			task(2, 0, 1, 2, 3),
			task(3, 0, 2, 0, 4),
		},
	}

	m := Analyze(s)
	if !reflect.DeepEqual(m.CriticalTasks, []int{0, 1}) {
		t.Errorf("expected critical [0 1], got %v", m.CriticalTasks)
	}
}

func TestAnalyze_UtilizationBounds(t *testing.T) {
	s, err := Build(exampleJobs(), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range s.Tasks {
		moved, err := MoveTask(s, i, float64(i*3))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		m := Analyze(moved)
		for machine, u := range m.Utilization {
			if u < 0 || u > 100 {
				t.Errorf("machine %d utilization %d out of [0,100]", machine, u)
			}
		}
		if m.AverageUtilization < 0 || m.AverageUtilization > 100 {
			t.Errorf("average utilization %d out of [0,100]", m.AverageUtilization)
		}
	}
}

func TestAnalyze_ViolationSoundness(t *testing.T) {
	s, err := Build(exampleJobs(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// job 1: seq 0 [0,3) is index 0, seq 1 is index 1
	predEnd := s.Tasks[0].End()

	for _, start := range []float64{0, 1, 2, 2.999} {
		moved, err := MoveTask(s, 1, start)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		m := Analyze(moved)
		if !contains(m.Violations, 1) {
			t.Errorf("start %v < %v: expected task 1 to violate, got %v", start, predEnd, m.Violations)
		}
	}

	for _, start := range []float64{3, 4, 100} {
		moved, err := MoveTask(s, 1, start)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		m := Analyze(moved)
		if contains(m.Violations, 1) {
			t.Errorf("start %v >= %v: expected task 1 not to violate, got %v", start, predEnd, m.Violations)
		}
	}
}

func TestAnalyze_FirstOperationNeverViolates(t *testing.T) {
	s := models.Schedule{
		MachineCount: 1,
		Tasks: []models.ScheduledTask{
			task(1, 0, 0, 0, 2),
			task(2, 0, 0, 0, 2),
		},
	}

	m := Analyze(s)
	if len(m.Violations) != 0 {
		t.Errorf("expected no violations, got %v", m.Violations)
	}
	// Same machine at the same time is an overlap, which is reported separately
	if !reflect.DeepEqual(m.MachineConflicts, []int{0, 1}) {
		t.Errorf("expected conflicts [0 1], got %v", m.MachineConflicts)
	}
}

func TestAnalyze_DoesNotMutateInput(t *testing.T) {
	s, err := Build(exampleJobs(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := s.Clone()

	Analyze(s)

	if !reflect.DeepEqual(before, s) {
		t.Error("expected Analyze to leave the schedule untouched")
	}
}

func TestMachineConflicts_TouchingIntervalsDoNotConflict(t *testing.T) {
	s := models.Schedule{
		MachineCount: 1,
		Tasks: []models.ScheduledTask{
			task(1, 0, 0, 3, 2),
			task(2, 0, 0, 0, 3),
			task(3, 0, 0, 10, 1),
			task(4, 0, 0, 0, 20),
		},
	}

	got := MachineConflicts(s)
	if !reflect.DeepEqual(got, []int{0, 1, 2, 3}) {
		t.Errorf("expected all four to conflict with the long task, got %v", got)
	}

	s.Tasks = s.Tasks[:3]
	if got := MachineConflicts(s); len(got) != 0 {
		t.Errorf("expected back-to-back tasks not to conflict, got %v", got)
	}
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func TestAnalyze_BoundsMachineSet(t *testing.T) {
	tests := []struct {
		name string
		s    models.Schedule
		want int
	}{
		{"huge machine count", models.Schedule{MachineCount: 1 << 62}, MaxMachines},
		{"negative machine count", models.Schedule{MachineCount: -3}, 0},
		{"task past the limit", models.Schedule{MachineCount: 2, Tasks: []models.ScheduledTask{task(1, 0, 1<<62, 0, 2)}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Analyze(tt.s)
			if len(m.Utilization) != tt.want {
				t.Errorf("expected %d machines, got %d", tt.want, len(m.Utilization))
			}
		})
	}
}

func TestAnalyze_LargeDurations(t *testing.T) {
	s := models.Schedule{
		MachineCount: 2,
		Tasks: []models.ScheduledTask{
			task(1, 0, 0, 0, 1e308),
			task(2, 0, 1, 0, 5e307),
		},
	}

	m := Analyze(s)
	if m.Utilization[0] != 100 || m.Utilization[1] != 50 {
		t.Errorf("expected utilization [100 50], got %v", m.Utilization)
	}
}
