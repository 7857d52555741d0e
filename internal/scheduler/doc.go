// internal/scheduler/doc.go

// Package scheduler builds and analyzes job-shop schedules.
//
// Build places every operation with a greedy list-scheduling pass: jobs in input
// order, operations in sequence order, each starting as soon as both its machine
// and its job are free. The result is always feasible but never optimized.
//
// Analyze derives makespan, utilization, end-of-schedule tasks and precedence
// violations from any schedule, including ones edited with MoveTask. Edits are
// free-form; infeasibility is reported, not corrected.
package scheduler
