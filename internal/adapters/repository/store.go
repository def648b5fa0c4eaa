// Package repository defines the competency history store interface and its
// in-memory, sqlite and cached implementations.
package repository

import (
	"context"
	"time"
)

// Snapshot is a profile's per-cluster vector at one point in time.
type Snapshot struct {
	Profile string
	Role    string
	TakenAt time.Time
	Values  []float64
}

// Requirement is a role's required per-cluster vector at one point in time.
type Requirement struct {
	Role    string
	TakenAt time.Time
	Values  []float64
}

// Store provides read/write access to the competency history. The store is
// append-mostly: writing to an existing (identity, timestamp) key overwrites
// it, last writer wins; there is no optimistic concurrency check.
type Store interface {
	// PutSnapshot stores a profile snapshot. Returns false when an existing
	// record under the same (profile, timestamp) key was overwritten.
	PutSnapshot(ctx context.Context, s Snapshot) (bool, error)

	// PutRequirement stores a role requirement vector. Returns false when an
	// existing record under the same (role, timestamp) key was overwritten.
	PutRequirement(ctx context.Context, r Requirement) (bool, error)

	// SnapshotAt returns the profile snapshot taken exactly at the given
	// time. Returns ErrNotFound when the profile or timestamp is unknown.
	SnapshotAt(ctx context.Context, profile string, at time.Time) (Snapshot, error)

	// RequirementAt returns the role requirement taken exactly at the given
	// time. Returns ErrNotFound when the role or timestamp is unknown.
	RequirementAt(ctx context.Context, role string, at time.Time) (Requirement, error)

	// SnapshotHistory returns all snapshots of a profile in ascending
	// timestamp order; empty when the profile is unknown.
	SnapshotHistory(ctx context.Context, profile string) ([]Snapshot, error)

	// RequirementHistory returns all requirement records of a role in
	// ascending timestamp order; empty when the role is unknown.
	RequirementHistory(ctx context.Context, role string) ([]Requirement, error)

	// LatestSnapshots returns the most recent snapshot of every profile.
	LatestSnapshots(ctx context.Context) ([]Snapshot, error)

	// LatestRequirements returns the most recent requirement of every role.
	LatestRequirements(ctx context.Context) ([]Requirement, error)

	// Profiles lists all known profile identifiers.
	Profiles(ctx context.Context) ([]string, error)

	// Roles lists all known role identifiers.
	Roles(ctx context.Context) ([]string, error)

	// Count returns the total number of records held.
	Count(ctx context.Context) int
}
