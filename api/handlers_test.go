/*
handlers_test.go - HTTP tests for the roster API

Tests for:
- Employee CRUD and not-found mapping
- Shift writes: validation, 422 rejection and forced writes
- Weekly summaries, coupures and compliance over stored rosters
- Stateless compute endpoints
- Compliance run trigger and history
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/roster-engine/compliance"
	"github.com/warp/roster-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

// fakeRuns records compliance runs in memory, upserting by id.
type fakeRuns struct {
	mu    sync.Mutex
	saves int
	runs  map[string]compliance.Run
}

func newFakeRuns() *fakeRuns {
	return &fakeRuns{runs: make(map[string]compliance.Run)}
}

func (f *fakeRuns) SaveComplianceRun(_ context.Context, r compliance.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.runs[r.ID] = r
	return nil
}

func (f *fakeRuns) ListComplianceRuns(_ context.Context, weekStart string, limit int) ([]compliance.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []compliance.Run
	for _, r := range f.runs {
		if weekStart == "" || r.WeekStart.String() == weekStart {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRuns) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func newTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	h := NewHandler(memory.New(), nil)
	h.Clock = func() time.Time { return testNow }
	return h, NewRouter(h, []string{"*"})
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createEmployee(t *testing.T, router http.Handler, id, start string) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/employees", EmployeeRequest{
		ID:            id,
		Name:          "Employee " + id,
		ContractStart: start,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func createShift(t *testing.T, router http.Handler, week string, req ShiftRequest) ShiftWriteResponse {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/weeks/"+week+"/shifts", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ShiftWriteResponse](t, rec)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployees_CRUD(t *testing.T) {
	_, router := newTestServer(t)
	hours := 24.0

	// GIVEN: a new part-time employee without an id
	rec := do(t, router, http.MethodPost, "/api/employees", EmployeeRequest{
		Name:          "Nora Diallo",
		ContractType:  "CDD",
		ContractStart: "2025-01-06",
		ContractEnd:   "2025-06-30",
		WeeklyHours:   &hours,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[EmployeeDTO](t, rec)
	assert.Regexp(t, `^emp-`, created.ID)
	assert.Equal(t, 24.0, created.WeeklyHours)
	require.NotNil(t, created.ContractEnd)
	assert.Equal(t, "2025-06-30", *created.ContractEnd)

	// WHEN: updating the name
	rec = do(t, router, http.MethodPut, "/api/employees/"+created.ID, EmployeeRequest{
		Name:          "Nora D.",
		ContractStart: "2025-01-06",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN
	rec = do(t, router, http.MethodGet, "/api/employees/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[EmployeeDTO](t, rec)
	assert.Equal(t, "Nora D.", got.Name)
	assert.Equal(t, 35.0, got.WeeklyHours)
	assert.Equal(t, "CDI", got.ContractType)

	list := decode[[]EmployeeDTO](t, do(t, router, http.MethodGet, "/api/employees", nil))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/employees/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/employees/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodDelete, "/api/employees/"+created.ID, nil).Code)
}

func TestEmployees_InvalidRequests(t *testing.T) {
	_, router := newTestServer(t)
	negative := -4.0

	tests := []struct {
		name string
		req  EmployeeRequest
	}{
		{"missing name", EmployeeRequest{ContractStart: "2025-01-06"}},
		{"bad start", EmployeeRequest{Name: "x", ContractStart: "06/01/2025"}},
		{"unknown contract type", EmployeeRequest{Name: "x", ContractStart: "2025-01-06", ContractType: "Interim"}},
		{"end before start", EmployeeRequest{Name: "x", ContractStart: "2025-01-06", ContractEnd: "2024-12-31"}},
		{"negative hours", EmployeeRequest{Name: "x", ContractStart: "2025-01-06", WeeklyHours: &negative}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/employees", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, router, http.MethodPut, "/api/employees/nobody", EmployeeRequest{Name: "x", ContractStart: "2025-01-06"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// SHIFTS
// =============================================================================

func TestShifts_ThirdShiftRejectedUnlessForced(t *testing.T) {
	_, router := newTestServer(t)
	createEmployee(t, router, "emp-1", "2025-01-01")

	// GIVEN: lunch and dinner on Monday
	createShift(t, router, "2025-03-12", ShiftRequest{EmployeeID: "emp-1", Day: 0, Start: "10:00", End: "14:30"})
	createShift(t, router, "2025-03-12", ShiftRequest{EmployeeID: "emp-1", Day: 0, Start: "18:00", End: "23:00"})

	// WHEN: adding a third shift
	breakfast := ShiftRequest{EmployeeID: "emp-1", Day: 0, Start: "06:00", End: "09:00"}
	rec := do(t, router, http.MethodPost, "/api/weeks/2025-03-12/shifts", breakfast)

	// THEN: rejected with the validation messages
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	var errResp struct {
		Error   string        `json:"error"`
		Code    string        `json:"code"`
		Details ValidationDTO `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "validation_failed", errResp.Code)
	require.Len(t, errResp.Details.Errors, 1)
	assert.Contains(t, errResp.Details.Errors[0], "3 working shifts")

	// WHEN: forcing it
	rec = do(t, router, http.MethodPost, "/api/weeks/2025-03-12/shifts?force=true", breakfast)

	// THEN: saved with a warning
	require.Equal(t, http.StatusCreated, rec.Code)
	forced := decode[ShiftWriteResponse](t, rec)
	assert.Len(t, forced.Warnings, 1)
	assert.Regexp(t, `^shift-`, string(forced.Shift.ID))

	shifts := decode[[]ShiftDTO](t, do(t, router, http.MethodGet, "/api/weeks/2025-03-10/shifts", nil))
	assert.Len(t, shifts, 3)
}

func TestShifts_OutsideContractRejected(t *testing.T) {
	_, router := newTestServer(t)
	createEmployee(t, router, "emp-1", "2025-03-13")

	rec := do(t, router, http.MethodPost, "/api/weeks/2025-03-10/shifts", ShiftRequest{EmployeeID: "emp-1", Day: 1, Start: "09:00", End: "17:00"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// A status on a covered day is fine.
	createShift(t, router, "2025-03-10", ShiftRequest{EmployeeID: "emp-1", Day: 6, Status: "weekly_rest"})
}

func TestShifts_InvalidRequests(t *testing.T) {
	_, router := newTestServer(t)
	createEmployee(t, router, "emp-1", "2025-01-01")

	tests := []struct {
		name string
		path string
		req  ShiftRequest
		want int
	}{
		{"bad week", "/api/weeks/next-week/shifts", ShiftRequest{EmployeeID: "emp-1", Start: "09:00", End: "17:00"}, http.StatusBadRequest},
		{"bad day", "/api/weeks/2025-03-10/shifts", ShiftRequest{EmployeeID: "emp-1", Day: 7, Start: "09:00", End: "17:00"}, http.StatusBadRequest},
		{"bad clock", "/api/weeks/2025-03-10/shifts", ShiftRequest{EmployeeID: "emp-1", Start: "9h", End: "17:00"}, http.StatusBadRequest},
		{"missing end", "/api/weeks/2025-03-10/shifts", ShiftRequest{EmployeeID: "emp-1", Start: "09:00"}, http.StatusBadRequest},
		{"unknown status", "/api/weeks/2025-03-10/shifts", ShiftRequest{EmployeeID: "emp-1", Status: "holiday"}, http.StatusBadRequest},
		{"unknown employee", "/api/weeks/2025-03-10/shifts", ShiftRequest{EmployeeID: "emp-2", Start: "09:00", End: "17:00"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, tt.path, tt.req)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestShifts_UpdateAndDelete(t *testing.T) {
	_, router := newTestServer(t)
	createEmployee(t, router, "emp-1", "2025-01-01")
	created := createShift(t, router, "2025-03-10", ShiftRequest{EmployeeID: "emp-1", Day: 2, Start: "09:00", End: "17:00"})
	id := string(created.Shift.ID)

	// Moving a shift onto itself never counts it twice.
	rec := do(t, router, http.MethodPut, "/api/weeks/2025-03-10/shifts/"+id, ShiftRequest{EmployeeID: "emp-1", Day: 2, Start: "10:00", End: "18:00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[ShiftWriteResponse](t, rec)
	assert.Empty(t, updated.Warnings)
	assert.Equal(t, "10:00", updated.Shift.Start)

	rec = do(t, router, http.MethodPut, "/api/weeks/2025-03-10/shifts/shift-nope", ShiftRequest{EmployeeID: "emp-1", Day: 2, Start: "10:00", End: "18:00"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/shifts/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodDelete, "/api/shifts/"+id, nil).Code)
}

// =============================================================================
// SUMMARIES & COUPURES
// =============================================================================

func TestEmployeeSummary(t *testing.T) {
	_, router := newTestServer(t)
	createEmployee(t, router, "emp-1", "2025-01-01")

	// GIVEN: Monday 09:00-17:00 and paid leave on Tuesday
	createShift(t, router, "2025-03-10", ShiftRequest{EmployeeID: "emp-1", Day: 0, Start: "09:00", End: "17:00"})
	createShift(t, router, "2025-03-10", ShiftRequest{EmployeeID: "emp-1", Day: 1, Status: "CP"})

	// WHEN
	rec := do(t, router, http.MethodGet, "/api/employees/emp-1/summary?week=2025-03-14", nil)

	// THEN
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sum := decode[WeeklySummaryDTO](t, rec)
	assert.Equal(t, "2025-03-10", sum.WeekStart)
	assert.Equal(t, "2025-03-16", sum.WeekEnd)
	assert.InDelta(t, 8.0, sum.TotalWorkedHours, 0.001)
	assert.InDelta(t, 5.83, sum.TotalAssimilatedHours, 0.001)
	assert.InDelta(t, 13.83, sum.TotalCoveredHours, 0.001)
	assert.InDelta(t, 35.0, sum.ProRatedContractHours, 0.001)
	assert.InDelta(t, -21.17, sum.HoursDiff, 0.001)
	assert.False(t, sum.Surplus)
	assert.Equal(t, 1, sum.ShiftCount)
	require.Len(t, sum.Days, 7)
	assert.Equal(t, "CP", sum.Days[1].Status)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/employees/emp-9/summary", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/employees/emp-1/summary?week=soon", nil).Code)
}

func TestWeekSummariesAndCoupures(t *testing.T) {
	_, router := newTestServer(t)
	createEmployee(t, router, "emp-1", "2025-01-01")
	createEmployee(t, router, "emp-2", "2025-03-13")
	createShift(t, router, "2025-03-10", ShiftRequest{EmployeeID: "emp-1", Day: 4, Start: "11:00", End: "15:00"})
	createShift(t, router, "2025-03-10", ShiftRequest{EmployeeID: "emp-1", Day: 4, Start: "19:00", End: "23:00"})

	sums := decode[[]WeeklySummaryDTO](t, do(t, router, http.MethodGet, "/api/weeks/2025-03-10/summaries", nil))
	require.Len(t, sums, 2)
	assert.Equal(t, "emp-1", sums[0].EmployeeID)
	assert.InDelta(t, 8.0, sums[0].TotalWorkedHours, 0.001)
	assert.InDelta(t, 17.5, sums[1].ProRatedContractHours, 0.001)

	rec := do(t, router, http.MethodGet, "/api/employees/emp-1/coupures?week=2025-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	coupures := decode[ComputeCoupureResponse](t, rec)
	assert.Equal(t, 240, coupures.Total)
	assert.Equal(t, map[int]int{4: 240}, coupures.ByDay)
}

// =============================================================================
// COMPLIANCE
// =============================================================================

func TestWeekCompliance(t *testing.T) {
	_, router := newTestServer(t)
	createEmployee(t, router, "emp-1", "2025-01-01")

	// GIVEN: closing Monday then opening Tuesday
	createShift(t, router, "2025-03-10", ShiftRequest{EmployeeID: "emp-1", Day: 0, Start: "16:00", End: "23:30"})
	createShift(t, router, "2025-03-10", ShiftRequest{EmployeeID: "emp-1", Day: 1, Start: "07:00", End: "12:00"})

	// WHEN
	rec := do(t, router, http.MethodGet, "/api/weeks/2025-03-11/compliance", nil)

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[ComplianceReportDTO](t, rec)
	assert.Equal(t, "2025-03-10", report.WeekStart)
	assert.Equal(t, "default", report.RuleSet)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, compliance.ViolationDailyRest, report.Violations[0].Type)
	assert.Equal(t, map[string]int{"critical": 1, "warning": 0, "info": 0}, report.Counts)
	assert.False(t, report.Compliant)
}

func TestComplianceRuns_TriggerAndList(t *testing.T) {
	h, router := newTestServer(t)
	runs := newFakeRuns()
	h.Runs = runs
	createEmployee(t, router, "emp-1", "2025-01-01")
	for day := 0; day < 7; day++ {
		createShift(t, router, "2025-03-10", ShiftRequest{EmployeeID: "emp-1", Day: day, Start: "09:00", End: "17:00"})
	}

	// WHEN: triggering a run with no body
	rec := do(t, router, http.MethodPost, "/api/compliance/runs", nil)

	// THEN: the current week is swept and recorded twice (running, completed)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	run := decode[ComplianceRunDTO](t, rec)
	assert.Equal(t, "completed", run.Status)
	assert.Equal(t, "2025-03-10", run.WeekStart)
	assert.Equal(t, 3, run.CriticalCount)
	assert.Equal(t, 2, runs.count())

	listed := decode[[]ComplianceRunDTO](t, do(t, router, http.MethodGet, "/api/compliance/runs?week=2025-03-16", nil))
	require.Len(t, listed, 1)
	assert.Equal(t, run.ID, listed[0].ID)

	other := decode[[]ComplianceRunDTO](t, do(t, router, http.MethodGet, "/api/compliance/runs?week=2025-03-17", nil))
	assert.Empty(t, other)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/compliance/runs?limit=-1", nil).Code)
}

func TestComplianceRuns_WithoutHistory(t *testing.T) {
	_, router := newTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/compliance/runs", map[string]string{"week": "2025-03-10"})
	require.Equal(t, http.StatusCreated, rec.Code)

	listed := decode[[]ComplianceRunDTO](t, do(t, router, http.MethodGet, "/api/compliance/runs", nil))
	assert.Empty(t, listed)
}

// =============================================================================
// STATELESS COMPUTE
// =============================================================================

func TestComputeSummary(t *testing.T) {
	_, router := newTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/compute/summary", map[string]any{
		"employee": map[string]any{"name": "Inès", "contract_start": "2025-03-13"},
		"week":     "2025-03-10",
		"shifts": []map[string]any{
			{"id": "a", "day": 4, "status": "CP"},
			{"id": "b", "day": 5, "start": "11:00", "end": "16:00"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sum := decode[WeeklySummaryDTO](t, rec)
	assert.InDelta(t, 17.5, sum.ProRatedContractHours, 0.001)
	assert.InDelta(t, 2.92, sum.TotalAssimilatedHours, 0.001)
	assert.InDelta(t, 5.0, sum.TotalWorkedHours, 0.001)
}

func TestComputeCoupure(t *testing.T) {
	_, router := newTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/compute/coupure", map[string]any{
		"shifts": []map[string]any{
			{"id": "a", "day": 0, "start": "09:00", "end": "14:00"},
			{"id": "b", "day": 0, "start": "18:00", "end": "23:00"},
			{"id": "c", "day": 3, "start": "10:00", "end": "14:30"},
			{"id": "d", "day": 3, "start": "18:00", "end": "23:00"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ComputeCoupureResponse](t, rec)
	assert.Equal(t, 450, resp.Total)
	assert.Equal(t, map[int]int{0: 240, 3: 210}, resp.ByDay)
}

func TestComputeValidate(t *testing.T) {
	_, router := newTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/compute/validate", map[string]any{
		"employee":   map[string]any{"name": "Hugo", "contract_start": "2025-01-01"},
		"week":       "2025-03-10",
		"day":        0,
		"candidates": []map[string]any{{"id": "c", "day": 0, "start": "12:00", "end": "15:00"}},
		"existing":   []map[string]any{{"id": "e", "day": 0, "start": "10:00", "end": "14:30"}},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[ValidationDTO](t, rec)
	assert.False(t, res.OK)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "overlap")
}

func TestComputeCompliance(t *testing.T) {
	_, router := newTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/compute/compliance", map[string]any{
		"employees": []map[string]any{{"id": "e1", "name": "Sarah", "contract_start": "2025-01-01"}},
		"week":      "2025-03-10",
		"shifts":    []map[string]any{{"id": "s", "employee_id": "e1", "day": 2, "start": "08:00", "end": "20:00"}},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[ComplianceReportDTO](t, rec)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, compliance.ViolationMaxDailyHours, report.Violations[0].Type)
	assert.Equal(t, 1, report.Counts["warning"])
	assert.True(t, report.Compliant)

	bad := do(t, router, http.MethodPost, "/api/compute/compliance", map[string]any{"shifts": []map[string]any{{"status": "vacation"}}})
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

// =============================================================================
// RULES
// =============================================================================

func TestGetRules(t *testing.T) {
	_, router := newTestServer(t)

	rules := decode[RulesDTO](t, do(t, router, http.MethodGet, "/api/rules", nil))

	assert.Equal(t, "default", rules.ID)
	assert.Contains(t, rules.YAML, "max_daily_hours: 10")
	assert.Equal(t, []string{"fr-hcr", "fr-labor-code"}, rules.Presets)
}
