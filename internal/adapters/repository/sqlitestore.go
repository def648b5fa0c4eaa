package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the durable history store backing multi-year competency
// histories. Timestamps are stored as unix seconds, vectors as JSON arrays.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		profile  TEXT    NOT NULL,
		role     TEXT    NOT NULL DEFAULT '',
		taken_at INTEGER NOT NULL,
		vals     TEXT    NOT NULL,
		PRIMARY KEY (profile, taken_at)
	);

	CREATE TABLE IF NOT EXISTS requirements (
		role     TEXT    NOT NULL,
		taken_at INTEGER NOT NULL,
		vals     TEXT    NOT NULL,
		PRIMARY KEY (role, taken_at)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_taken  ON snapshots(profile, taken_at DESC);
	CREATE INDEX IF NOT EXISTS idx_requirements_taken ON requirements(role, taken_at DESC);
`

// NewSQLiteStore opens (creating if necessary) the history database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) PutSnapshot(ctx context.Context, snap Snapshot) (bool, error) {
	if snap.Profile == "" || len(snap.Values) == 0 {
		return false, fmt.Errorf("%w: snapshot needs profile and values", ErrBadRecord)
	}
	vals, err := json.Marshal(snap.Values)
	if err != nil {
		return false, fmt.Errorf("encode snapshot values: %w", err)
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snapshots WHERE profile = ? AND taken_at = ?`,
		snap.Profile, snap.TakenAt.Unix()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (profile, role, taken_at, vals) VALUES (?, ?, ?, ?)
		 ON CONFLICT (profile, taken_at) DO UPDATE SET role = excluded.role, vals = excluded.vals`,
		snap.Profile, snap.Role, snap.TakenAt.Unix(), string(vals))
	if err != nil {
		return false, fmt.Errorf("store snapshot: %w", err)
	}
	return exists == 0, nil
}

func (s *SQLiteStore) PutRequirement(ctx context.Context, req Requirement) (bool, error) {
	if req.Role == "" || len(req.Values) == 0 {
		return false, fmt.Errorf("%w: requirement needs role and values", ErrBadRecord)
	}
	vals, err := json.Marshal(req.Values)
	if err != nil {
		return false, fmt.Errorf("encode requirement values: %w", err)
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM requirements WHERE role = ? AND taken_at = ?`,
		req.Role, req.TakenAt.Unix()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check requirement: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO requirements (role, taken_at, vals) VALUES (?, ?, ?)
		 ON CONFLICT (role, taken_at) DO UPDATE SET vals = excluded.vals`,
		req.Role, req.TakenAt.Unix(), string(vals))
	if err != nil {
		return false, fmt.Errorf("store requirement: %w", err)
	}
	return exists == 0, nil
}

func (s *SQLiteStore) SnapshotAt(ctx context.Context, profile string, at time.Time) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT profile, role, taken_at, vals FROM snapshots WHERE profile = ? AND taken_at = ?`,
		profile, at.Unix())
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return Snapshot{}, fmt.Errorf("%w: profile %q at %s", ErrNotFound, profile, at.Format(time.RFC3339))
	}
	return snap, err
}

func (s *SQLiteStore) RequirementAt(ctx context.Context, role string, at time.Time) (Requirement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT role, taken_at, vals FROM requirements WHERE role = ? AND taken_at = ?`,
		role, at.Unix())
	req, err := scanRequirement(row)
	if err == sql.ErrNoRows {
		return Requirement{}, fmt.Errorf("%w: role %q at %s", ErrNotFound, role, at.Format(time.RFC3339))
	}
	return req, err
}

func (s *SQLiteStore) SnapshotHistory(ctx context.Context, profile string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT profile, role, taken_at, vals FROM snapshots WHERE profile = ? ORDER BY taken_at ASC`,
		profile)
	if err != nil {
		return nil, fmt.Errorf("query snapshot history: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RequirementHistory(ctx context.Context, role string) ([]Requirement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, taken_at, vals FROM requirements WHERE role = ? ORDER BY taken_at ASC`,
		role)
	if err != nil {
		return nil, fmt.Errorf("query requirement history: %w", err)
	}
	defer rows.Close()

	var out []Requirement
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) LatestSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.profile, s.role, s.taken_at, s.vals
		FROM snapshots s
		JOIN (SELECT profile, MAX(taken_at) AS taken_at FROM snapshots GROUP BY profile) latest
		  ON s.profile = latest.profile AND s.taken_at = latest.taken_at
		ORDER BY s.profile ASC`)
	if err != nil {
		return nil, fmt.Errorf("query latest snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) LatestRequirements(ctx context.Context) ([]Requirement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.role, r.taken_at, r.vals
		FROM requirements r
		JOIN (SELECT role, MAX(taken_at) AS taken_at FROM requirements GROUP BY role) latest
		  ON r.role = latest.role AND r.taken_at = latest.taken_at
		ORDER BY r.role ASC`)
	if err != nil {
		return nil, fmt.Errorf("query latest requirements: %w", err)
	}
	defer rows.Close()

	var out []Requirement
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Profiles(ctx context.Context) ([]string, error) {
	return s.listIdentities(ctx, `SELECT DISTINCT profile FROM snapshots ORDER BY profile ASC`)
}

func (s *SQLiteStore) Roles(ctx context.Context) ([]string, error) {
	return s.listIdentities(ctx, `SELECT DISTINCT role FROM requirements ORDER BY role ASC`)
}

func (s *SQLiteStore) listIdentities(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) int {
	var snaps, reqs int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&snaps); err != nil {
		return 0
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM requirements`).Scan(&reqs); err != nil {
		return 0
	}
	return snaps + reqs
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(sc scanner) (Snapshot, error) {
	var snap Snapshot
	var unix int64
	var vals string
	if err := sc.Scan(&snap.Profile, &snap.Role, &unix, &vals); err != nil {
		return Snapshot{}, err
	}
	snap.TakenAt = time.Unix(unix, 0).UTC()
	if err := json.Unmarshal([]byte(vals), &snap.Values); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode values: %w", ErrBadRecord, err)
	}
	return snap, nil
}

func scanRequirement(sc scanner) (Requirement, error) {
	var req Requirement
	var unix int64
	var vals string
	if err := sc.Scan(&req.Role, &unix, &vals); err != nil {
		return Requirement{}, err
	}
	req.TakenAt = time.Unix(unix, 0).UTC()
	if err := json.Unmarshal([]byte(vals), &req.Values); err != nil {
		return Requirement{}, fmt.Errorf("%w: decode values: %w", ErrBadRecord, err)
	}
	return req, nil
}
