/*
Package sqlite provides a SQLite-backed implementation of the roster storage.

PURPOSE:
  Implements schedule.RosterStore plus the compliance run history using
  SQLite. In production the same patterns apply to PostgreSQL with minor
  SQL dialect differences.

INTERFACES IMPLEMENTED:
  schedule.RosterStore: employees and weekly shifts
  api.RunSink:          compliance run records written by the scheduler

KEY TABLES:
  employees:        employee records with their contract fields
  shifts:           shifts keyed by the Monday of their week
  compliance_runs:  one row per roster-wide sweep

DECIMALS:
  Weekly contract hours are stored as TEXT and parsed back with
  shopspring/decimal so no float rounding enters the pro-ration.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. With PostgreSQL, database-level
  concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block and
  there is a single writer at a time.

USAGE:
  store, err := sqlite.New("./data/roster.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - schedule/store.go: interface definitions
  - store/memory/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/roster-engine/compliance"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/schedule"
)

// Store implements schedule.RosterStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ schedule.RosterStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives and dies with its connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		contract_type TEXT NOT NULL,
		contract_start TEXT NOT NULL,
		contract_end TEXT,
		weekly_hours TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		week_start TEXT NOT NULL,
		day INTEGER NOT NULL CHECK (day BETWEEN 0 AND 6),
		start_time TEXT,
		end_time TEXT,
		position TEXT,
		shift_type TEXT,
		status TEXT,
		created_at TEXT NOT NULL
	);

	-- Hot path: one week of the roster, optionally for one employee
	CREATE INDEX IF NOT EXISTS idx_shifts_week_employee
		ON shifts(week_start, employee_id, day);

	CREATE TABLE IF NOT EXISTS compliance_runs (
		id TEXT PRIMARY KEY,
		week_start TEXT NOT NULL,
		status TEXT NOT NULL,
		violation_count INTEGER NOT NULL DEFAULT 0,
		critical_count INTEGER NOT NULL DEFAULT 0,
		violations_json TEXT,
		error TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_compliance_runs_week
		ON compliance_runs(week_start, started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp schedule.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, contract_type, contract_start, contract_end, weekly_hours, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			contract_type = excluded.contract_type,
			contract_start = excluded.contract_start,
			contract_end = excluded.contract_end,
			weekly_hours = excluded.weekly_hours
	`

	var end sql.NullString
	if emp.Contract.End != nil {
		end = nullString(emp.Contract.End.String())
	}

	_, err := s.db.ExecContext(ctx, query,
		string(emp.ID), emp.Name, string(emp.Contract.Type),
		emp.Contract.Start.String(), end,
		emp.Contract.Weekly().String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id schedule.EmployeeID) (schedule.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, contract_type, contract_start, contract_end, weekly_hours FROM employees WHERE id = ?",
		string(id),
	)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.Employee{}, schedule.ErrEmployeeNotFound
	}
	return emp, err
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]schedule.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, contract_type, contract_start, contract_end, weekly_hours FROM employees ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schedule.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

// DeleteEmployee removes an employee and, by cascade, their shifts.
func (s *Store) DeleteEmployee(ctx context.Context, id schedule.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrEmployeeNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (schedule.Employee, error) {
	var emp schedule.Employee
	var id, contractType, start, weekly string
	var end sql.NullString

	if err := row.Scan(&id, &emp.Name, &contractType, &start, &end, &weekly); err != nil {
		return schedule.Employee{}, err
	}

	emp.ID = schedule.EmployeeID(id)
	emp.Contract.Type = schedule.ContractType(contractType)

	var err error
	if emp.Contract.Start, err = generic.ParseDate(start); err != nil {
		return schedule.Employee{}, fmt.Errorf("employee %s: contract_start: %w", id, err)
	}
	if end.Valid {
		tp, err := generic.ParseDate(end.String)
		if err != nil {
			return schedule.Employee{}, fmt.Errorf("employee %s: contract_end: %w", id, err)
		}
		emp.Contract.End = &tp
	}
	if emp.Contract.WeeklyHours, err = decimal.NewFromString(weekly); err != nil {
		return schedule.Employee{}, fmt.Errorf("employee %s: weekly_hours: %w", id, err)
	}
	return emp, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

// SaveShift inserts or updates a shift in the anchor's week.
func (s *Store) SaveShift(ctx context.Context, weekAnchor generic.TimePoint, sh schedule.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO shifts (id, employee_id, week_start, day, start_time, end_time, position, shift_type, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			week_start = excluded.week_start,
			day = excluded.day,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			position = excluded.position,
			shift_type = excluded.shift_type,
			status = excluded.status
	`

	var status string
	if sh.Status != schedule.StatusNone {
		status = sh.Status.String()
	}

	_, err := s.db.ExecContext(ctx, query,
		string(sh.ID), string(sh.EmployeeID),
		generic.WeekStart(weekAnchor).String(), sh.Day,
		nullString(sh.Start), nullString(sh.End),
		nullString(sh.Position), nullString(sh.Type), nullString(status),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// DeleteShift removes a shift.
func (s *Store) DeleteShift(ctx context.Context, id schedule.ShiftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrShiftNotFound
	}
	return nil
}

// ListShifts returns the shifts of the anchor's week in insertion order.
func (s *Store) ListShifts(ctx context.Context, weekAnchor generic.TimePoint, employeeID schedule.EmployeeID) ([]schedule.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, day, start_time, end_time, position, shift_type, status
		FROM shifts
		WHERE week_start = ?
	`
	args := []any{generic.WeekStart(weekAnchor).String()}
	if employeeID != "" {
		query += " AND employee_id = ?"
		args = append(args, string(employeeID))
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schedule.Shift
	for rows.Next() {
		var sh schedule.Shift
		var id, emp string
		var start, end, position, shiftType, status sql.NullString
		if err := rows.Scan(&id, &emp, &sh.Day, &start, &end, &position, &shiftType, &status); err != nil {
			return nil, err
		}
		sh.ID = schedule.ShiftID(id)
		sh.EmployeeID = schedule.EmployeeID(emp)
		sh.Start, sh.End = start.String, end.String
		sh.Position, sh.Type = position.String, shiftType.String
		if status.Valid && status.String != "" {
			if sh.Status, err = schedule.ParseStatus(status.String); err != nil {
				return nil, fmt.Errorf("shift %s: %w", id, err)
			}
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

// =============================================================================
// COMPLIANCE RUNS
// =============================================================================

// SaveComplianceRun inserts or updates a run record.
func (s *Store) SaveComplianceRun(ctx context.Context, r compliance.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO compliance_runs (id, week_start, status, violation_count, critical_count,
			violations_json, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			violation_count = excluded.violation_count,
			critical_count = excluded.critical_count,
			violations_json = excluded.violations_json,
			error = excluded.error,
			completed_at = excluded.completed_at
	`

	var violationsJSON sql.NullString
	if r.Violations != nil {
		b, err := json.Marshal(r.Violations)
		if err != nil {
			return fmt.Errorf("failed to encode violations: %w", err)
		}
		violationsJSON = nullString(string(b))
	}

	var completedAt *string
	if r.CompletedAt != nil {
		s := r.CompletedAt.UTC().Format(time.RFC3339)
		completedAt = &s
	}

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.WeekStart.String(), string(r.Status), r.ViolationCount, r.CriticalCount,
		violationsJSON, nullString(r.Error),
		r.StartedAt.UTC().Format(time.RFC3339), completedAt,
	)
	return err
}

// ListComplianceRuns returns run records, newest first. An empty
// weekStart returns every week; limit <= 0 means no limit.
func (s *Store) ListComplianceRuns(ctx context.Context, weekStart string, limit int) ([]compliance.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, week_start, status, violation_count, critical_count,
			violations_json, error, started_at, completed_at
		FROM compliance_runs
	`
	var args []any
	if weekStart != "" {
		query += " WHERE week_start = ?"
		args = append(args, weekStart)
	}
	query += " ORDER BY started_at DESC, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []compliance.Run
	for rows.Next() {
		var r compliance.Run
		var week, status, startedAt string
		var violationsJSON, runErr, completedAt sql.NullString
		if err := rows.Scan(
			&r.ID, &week, &status, &r.ViolationCount, &r.CriticalCount,
			&violationsJSON, &runErr, &startedAt, &completedAt,
		); err != nil {
			return nil, err
		}

		r.WeekStart, _ = generic.ParseDate(week)
		r.Status = compliance.RunStatus(status)
		r.Error = runErr.String
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if completedAt.Valid {
			t, _ := time.Parse(time.RFC3339, completedAt.String)
			r.CompletedAt = &t
		}
		if violationsJSON.Valid {
			if err := json.Unmarshal([]byte(violationsJSON.String), &r.Violations); err != nil {
				return nil, fmt.Errorf("run %s: failed to decode violations: %w", r.ID, err)
			}
		}

		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// Reset deletes every row (for demos and tests).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"shifts", "compliance_runs", "employees"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
