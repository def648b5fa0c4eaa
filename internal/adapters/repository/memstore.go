package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemStore is the in-memory history store used for sessions that do not need
// durability. Safe for concurrent use.
type MemStore struct {
	mu           sync.RWMutex
	snapshots    map[string][]Snapshot    // profile -> ascending by TakenAt
	requirements map[string][]Requirement // role -> ascending by TakenAt
	count        int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(_ context.Context) *MemStore {
	return &MemStore{
		snapshots:    make(map[string][]Snapshot),
		requirements: make(map[string][]Requirement),
	}
}

func (m *MemStore) PutSnapshot(_ context.Context, s Snapshot) (bool, error) {
	if s.Profile == "" || len(s.Values) == 0 {
		return false, fmt.Errorf("%w: snapshot needs profile and values", ErrBadRecord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.snapshots[s.Profile]
	for i, existing := range history {
		if existing.TakenAt.Equal(s.TakenAt) {
			history[i] = s // last writer wins
			return false, nil
		}
	}
	history = append(history, s)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].TakenAt.Before(history[j].TakenAt)
	})
	m.snapshots[s.Profile] = history
	m.count++
	return true, nil
}

func (m *MemStore) PutRequirement(_ context.Context, r Requirement) (bool, error) {
	if r.Role == "" || len(r.Values) == 0 {
		return false, fmt.Errorf("%w: requirement needs role and values", ErrBadRecord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.requirements[r.Role]
	for i, existing := range history {
		if existing.TakenAt.Equal(r.TakenAt) {
			history[i] = r
			return false, nil
		}
	}
	history = append(history, r)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].TakenAt.Before(history[j].TakenAt)
	})
	m.requirements[r.Role] = history
	m.count++
	return true, nil
}

func (m *MemStore) SnapshotAt(_ context.Context, profile string, at time.Time) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.snapshots[profile] {
		if s.TakenAt.Equal(at) {
			return s, nil
		}
	}
	return Snapshot{}, fmt.Errorf("%w: profile %q at %s", ErrNotFound, profile, at.Format(time.RFC3339))
}

func (m *MemStore) RequirementAt(_ context.Context, role string, at time.Time) (Requirement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.requirements[role] {
		if r.TakenAt.Equal(at) {
			return r, nil
		}
	}
	return Requirement{}, fmt.Errorf("%w: role %q at %s", ErrNotFound, role, at.Format(time.RFC3339))
}

func (m *MemStore) SnapshotHistory(_ context.Context, profile string) ([]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.snapshots[profile]
	out := make([]Snapshot, len(history))
	copy(out, history)
	return out, nil
}

func (m *MemStore) RequirementHistory(_ context.Context, role string) ([]Requirement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.requirements[role]
	out := make([]Requirement, len(history))
	copy(out, history)
	return out, nil
}

func (m *MemStore) LatestSnapshots(_ context.Context) ([]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Snapshot, 0, len(m.snapshots))
	for _, history := range m.snapshots {
		if len(history) > 0 {
			out = append(out, history[len(history)-1])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Profile < out[j].Profile })
	return out, nil
}

func (m *MemStore) LatestRequirements(_ context.Context) ([]Requirement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Requirement, 0, len(m.requirements))
	for _, history := range m.requirements {
		if len(history) > 0 {
			out = append(out, history[len(history)-1])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out, nil
}

func (m *MemStore) Profiles(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.snapshots))
	for p := range m.snapshots {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemStore) Roles(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.requirements))
	for r := range m.requirements {
		out = append(out, r)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemStore) Count(_ context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}
