// Package schedule wraps a balanced transfer in a scheduled transaction so
// that its signers need not be online together. A schedule can be passed
// around as base64 before submission, and further signatures are added on
// the network with ScheduleSign until the inner transfer's keys are
// satisfied and it executes.
package schedule
