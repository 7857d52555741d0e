// internal/jobspec/random.go
package jobspec

import (
	"fmt"
	"math/rand"

	"github.com/fawad-mazhar/shopfloor/internal/models"
)

const (
	randomMachines    = 4
	randomOpsPerJob   = 3
	randomMinDuration = 2
	randomMaxDuration = 6
)

// Random generates a job set: each job visits 3 distinct machines out of 4 with
// durations between 2 and 6. When jobs <= 0 the count is picked between 3 and 5.
func Random(rng *rand.Rand, jobs int) []models.JobDefinition {
	if jobs <= 0 {
		jobs = rng.Intn(3) + 3
	}

	defs := make([]models.JobDefinition, 0, jobs)
	for id := 1; id <= jobs; id++ {
		available := rng.Perm(randomMachines)

		ops := make([]models.OperationSpec, randomOpsPerJob)
		for i := range ops {
			ops[i] = models.OperationSpec{
				MachineID: available[i],
				Duration:  float64(rng.Intn(randomMaxDuration-randomMinDuration+1) + randomMinDuration),
			}
		}

		defs = append(defs, models.JobDefinition{
			ID:         id,
			Color:      fmt.Sprintf("#%06x", rng.Intn(0x1000000)),
			Operations: ops,
		})
	}
	return defs
}

// Demo returns the built-in three job, four machine example
func Demo() ([]models.JobDefinition, int) {
	return []models.JobDefinition{
		{ID: 1, Color: "#3b82f6", Operations: []models.OperationSpec{{MachineID: 0, Duration: 3}, {MachineID: 1, Duration: 4}, {MachineID: 2, Duration: 2}}},
		{ID: 2, Color: "#10b981", Operations: []models.OperationSpec{{MachineID: 1, Duration: 2}, {MachineID: 0, Duration: 5}, {MachineID: 3, Duration: 3}}},
		{ID: 3, Color: "#f59e0b", Operations: []models.OperationSpec{{MachineID: 2, Duration: 4}, {MachineID: 3, Duration: 2}, {MachineID: 1, Duration: 3}}},
	}, randomMachines
}
