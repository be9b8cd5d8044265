// Package provision creates a fixed number of funded single-key participant
// accounts, one per step, so that a partially completed run can resume.
package provision
