/*
handlers.go - HTTP API handlers for the roster engine

PURPOSE:
  Exposes the time-accounting core via REST API. Handles HTTP
  request/response and JSON serialization, and delegates to the schedule
  and compliance packages. No hour arithmetic happens here.

ENDPOINTS:
  Employees:
    GET    /api/employees                      List all employees
    POST   /api/employees                      Create employee
    GET    /api/employees/{id}                 Get employee
    PUT    /api/employees/{id}                 Update employee
    DELETE /api/employees/{id}                 Delete employee and shifts
    GET    /api/employees/{id}/summary?week=   Weekly hour summary
    GET    /api/employees/{id}/coupures?week=  Split-shift gaps per day

  Weeks ({week} is any date of the week, YYYY-MM-DD):
    GET    /api/weeks/{week}/shifts            Roster of the week (?employee_id=)
    POST   /api/weeks/{week}/shifts            Create shift (?force=true)
    PUT    /api/weeks/{week}/shifts/{id}       Update shift (?force=true)
    GET    /api/weeks/{week}/summaries         Summary of every employee
    GET    /api/weeks/{week}/compliance        Labor-law violations

  Shifts:
    DELETE /api/shifts/{id}                    Delete shift

  Stateless compute (no persistence involved):
    POST   /api/compute/summary
    POST   /api/compute/coupure
    POST   /api/compute/validate
    POST   /api/compute/compliance

  Compliance runs:
    GET    /api/compliance/runs?week=&limit=   Recorded sweeps
    POST   /api/compliance/runs                Sweep now and record

  Rules:
    GET    /api/rules                          Active rule set

FORCED WRITES:
  A shift that fails validation is rejected with 422 unless ?force=true,
  in which case it is saved and the validation messages are returned as
  warnings.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input
  - 404: Employee or shift not found
  - 422: Shift placement rejected by the validator
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo roster loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/roster-engine/compliance"
	"github.com/warp/roster-engine/factory"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/schedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     schedule.RosterStore
	Runs      RunStore // optional; run history is empty without it
	RuleSet   *factory.RuleSet
	Evaluator *compliance.Evaluator
	Validator *schedule.Validator
	Scheduler *ComplianceScheduler // optional; manual sweeps build one on demand
	Workers   int
	Clock     func() time.Time

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store and rule set.
func NewHandler(store schedule.RosterStore, rules *factory.RuleSet) *Handler {
	if rules == nil {
		rules = &factory.RuleSet{ID: "default", Name: "Default", Rules: compliance.DefaultRules()}
	}
	return &Handler{
		Store:     store,
		RuleSet:   rules,
		Evaluator: compliance.NewEvaluator(rules.Rules),
		Validator: schedule.DefaultValidator(),
		Clock:     time.Now,
	}
}

func (h *Handler) today() generic.TimePoint {
	if h.Clock == nil {
		return generic.Today()
	}
	return generic.FromTime(h.Clock())
}

func (h *Handler) breaks() schedule.BreakPolicy {
	return h.Evaluator.Rules.Breaks
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), schedule.EmployeeID(chi.URLParam(r, "id")))
	if err != nil {
		writeStoreError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// CreateEmployee creates a new employee. The id is generated when omitted.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = "emp-" + uuid.NewString()
	}

	emp, err := req.toEmployee("")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// UpdateEmployee replaces an existing employee.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetEmployee(r.Context(), schedule.EmployeeID(id)); err != nil {
		writeStoreError(w, "Failed to get employee", err)
		return
	}

	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	emp, err := req.toEmployee(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update employee", err)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// DeleteEmployee removes an employee and their shifts.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), schedule.EmployeeID(chi.URLParam(r, "id"))); err != nil {
		writeStoreError(w, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEmployeeSummary returns the weekly hour summary of one employee.
func (h *Handler) GetEmployeeSummary(w http.ResponseWriter, r *http.Request) {
	week, ok := h.weekFromQuery(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	emp, err := h.Store.GetEmployee(ctx, schedule.EmployeeID(chi.URLParam(r, "id")))
	if err != nil {
		writeStoreError(w, "Failed to get employee", err)
		return
	}
	shifts, err := h.Store.ListShifts(ctx, week, emp.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	summary := schedule.Summarize(shifts, emp.Contract, week, h.breaks())
	writeJSON(w, http.StatusOK, toWeeklySummaryDTO(&emp, summary))
}

// GetEmployeeCoupures returns the split-shift gaps of one employee's week.
func (h *Handler) GetEmployeeCoupures(w http.ResponseWriter, r *http.Request) {
	week, ok := h.weekFromQuery(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	emp, err := h.Store.GetEmployee(ctx, schedule.EmployeeID(chi.URLParam(r, "id")))
	if err != nil {
		writeStoreError(w, "Failed to get employee", err)
		return
	}
	shifts, err := h.Store.ListShifts(ctx, week, emp.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	writeJSON(w, http.StatusOK, coupureResponse(shifts))
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns the roster of a week.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	week, ok := weekFromPath(w, r)
	if !ok {
		return
	}

	shifts, err := h.Store.ListShifts(r.Context(), week, schedule.EmployeeID(r.URL.Query().Get("employee_id")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}
	if shifts == nil {
		shifts = []schedule.Shift{}
	}
	writeJSON(w, http.StatusOK, shifts)
}

// CreateShift validates and saves a new shift.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	h.writeShift(w, r, schedule.ShiftID("shift-"+uuid.NewString()), http.StatusCreated)
}

// UpdateShift validates and replaces an existing shift of the week.
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	week, ok := weekFromPath(w, r)
	if !ok {
		return
	}
	id := schedule.ShiftID(chi.URLParam(r, "id"))

	all, err := h.Store.ListShifts(r.Context(), week, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}
	found := false
	for _, s := range all {
		if s.ID == id {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "Shift not found", schedule.ErrShiftNotFound)
		return
	}

	h.writeShift(w, r, id, http.StatusOK)
}

func (h *Handler) writeShift(w http.ResponseWriter, r *http.Request, id schedule.ShiftID, status int) {
	week, ok := weekFromPath(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	shift, err := req.toShift(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift", err)
		return
	}

	emp, err := h.Store.GetEmployee(ctx, shift.EmployeeID)
	if err != nil {
		writeStoreError(w, "Failed to get employee", err)
		return
	}
	held, err := h.Store.ListShifts(ctx, week, emp.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	var existing []schedule.Shift
	for _, s := range held {
		if s.Day == shift.Day && s.ID != shift.ID {
			existing = append(existing, s)
		}
	}

	result := h.Validator.Validate([]schedule.Shift{shift}, existing, emp.Contract, week, shift.Day)
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	if !result.OK && !force {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Shift rejected",
			Code:    "validation_failed",
			Details: ValidationDTO{OK: false, Errors: result.Messages()},
		})
		return
	}

	if err := h.Store.SaveShift(ctx, week, shift); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save shift", err)
		return
	}

	resp := ShiftWriteResponse{Shift: shift}
	if !result.OK {
		resp.Warnings = result.Messages()
	}
	writeJSON(w, status, resp)
}

// DeleteShift removes a shift.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteShift(r.Context(), schedule.ShiftID(chi.URLParam(r, "id"))); err != nil {
		writeStoreError(w, "Failed to delete shift", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// WEEK HANDLERS
// =============================================================================

// ListWeekSummaries returns the summary of every employee for a week.
func (h *Handler) ListWeekSummaries(w http.ResponseWriter, r *http.Request) {
	week, ok := weekFromPath(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	shifts, err := h.Store.ListShifts(ctx, week, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	dtos := make([]WeeklySummaryDTO, 0, len(employees))
	for i := range employees {
		emp := employees[i]
		summary := schedule.Summarize(schedule.ForEmployee(shifts, emp.ID), emp.Contract, week, h.breaks())
		dtos = append(dtos, toWeeklySummaryDTO(&emp, summary))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetWeekCompliance evaluates the roster of a week.
func (h *Handler) GetWeekCompliance(w http.ResponseWriter, r *http.Request) {
	week, ok := weekFromPath(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	shifts, err := h.Store.ListShifts(ctx, week, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	violations, err := h.Evaluator.Sweep(ctx, employees, shifts, week, h.Workers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Compliance evaluation aborted", err)
		return
	}
	writeJSON(w, http.StatusOK, toComplianceReportDTO(week, h.RuleSet.ID, violations))
}

// =============================================================================
// STATELESS COMPUTE HANDLERS
// =============================================================================

// ComputeSummary summarizes shifts given inline.
func (h *Handler) ComputeSummary(w http.ResponseWriter, r *http.Request) {
	var req ComputeSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	emp, err := req.Employee.toEmployee("")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}
	week, err := h.parseWeek(req.Week)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week (use YYYY-MM-DD)", err)
		return
	}

	summary := schedule.Summarize(req.Shifts, emp.Contract, week, h.breaks())
	writeJSON(w, http.StatusOK, toWeeklySummaryDTO(&emp, summary))
}

// ComputeCoupure returns split-shift gaps per day for shifts given inline.
func (h *Handler) ComputeCoupure(w http.ResponseWriter, r *http.Request) {
	var req ComputeCoupureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	writeJSON(w, http.StatusOK, coupureResponse(req.Shifts))
}

// ComputeValidate validates candidate shifts given inline.
func (h *Handler) ComputeValidate(w http.ResponseWriter, r *http.Request) {
	var req ComputeValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	emp, err := req.Employee.toEmployee("")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}
	week, err := h.parseWeek(req.Week)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week (use YYYY-MM-DD)", err)
		return
	}

	result := h.Validator.Validate(req.Candidates, req.Existing, emp.Contract, week, req.Day)
	writeJSON(w, http.StatusOK, ValidationDTO{OK: result.OK, Errors: result.Messages()})
}

// ComputeCompliance evaluates a roster given inline.
func (h *Handler) ComputeCompliance(w http.ResponseWriter, r *http.Request) {
	var req ComputeComplianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	week, err := h.parseWeek(req.Week)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week (use YYYY-MM-DD)", err)
		return
	}

	employees := make([]schedule.Employee, 0, len(req.Employees))
	for _, er := range req.Employees {
		emp, err := er.toEmployee("")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid employee", err)
			return
		}
		employees = append(employees, emp)
	}

	violations, err := h.Evaluator.Sweep(r.Context(), employees, req.Shifts, week, h.Workers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Compliance evaluation aborted", err)
		return
	}
	writeJSON(w, http.StatusOK, toComplianceReportDTO(week, h.RuleSet.ID, violations))
}

// =============================================================================
// COMPLIANCE RUN HANDLERS
// =============================================================================

// ListComplianceRuns returns recorded sweeps, newest first.
func (h *Handler) ListComplianceRuns(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		writeJSON(w, http.StatusOK, []ComplianceRunDTO{})
		return
	}

	weekStart := ""
	if raw := r.URL.Query().Get("week"); raw != "" {
		week, err := generic.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid week (use YYYY-MM-DD)", err)
			return
		}
		weekStart = generic.WeekStart(week).String()
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	runs, err := h.Runs.ListComplianceRuns(r.Context(), weekStart, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list compliance runs", err)
		return
	}

	dtos := make([]ComplianceRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toComplianceRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// TriggerComplianceRun sweeps a week now and records the run. The body is
// optional: {"week": "YYYY-MM-DD"}, defaulting to the current week.
func (h *Handler) TriggerComplianceRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Week string `json:"week"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	week, err := h.parseWeek(req.Week)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week (use YYYY-MM-DD)", err)
		return
	}

	scheduler := h.Scheduler
	if scheduler == nil {
		var sink RunSink
		if h.Runs != nil {
			sink = h.Runs
		}
		scheduler = NewComplianceScheduler(h.Store, h.Evaluator, sink)
		scheduler.Workers = h.Workers
		scheduler.Clock = h.Clock
	}

	run, err := scheduler.RunWeek(r.Context(), week)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Compliance run failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, toComplianceRunDTO(run))
}

// =============================================================================
// RULES
// =============================================================================

// GetRules returns the active rule set as a YAML document.
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	doc, err := factory.NewRulesFactory().ToYAML(*h.RuleSet)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render rules", err)
		return
	}
	writeJSON(w, http.StatusOK, RulesDTO{
		ID:      h.RuleSet.ID,
		Name:    h.RuleSet.Name,
		YAML:    doc,
		Presets: factory.PresetNames(),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func coupureResponse(shifts []schedule.Shift) ComputeCoupureResponse {
	byDay := schedule.CoupuresByDay(shifts)
	total := 0
	for _, m := range byDay {
		total += m
	}
	return ComputeCoupureResponse{Total: total, ByDay: byDay}
}

// parseWeek parses a week anchor, defaulting to today when raw is empty.
func (h *Handler) parseWeek(raw string) (generic.TimePoint, error) {
	if raw == "" {
		return h.today(), nil
	}
	return generic.ParseDate(raw)
}

func (h *Handler) weekFromQuery(w http.ResponseWriter, r *http.Request) (generic.TimePoint, bool) {
	week, err := h.parseWeek(r.URL.Query().Get("week"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week (use YYYY-MM-DD)", err)
		return generic.TimePoint{}, false
	}
	return week, true
}

func weekFromPath(w http.ResponseWriter, r *http.Request) (generic.TimePoint, bool) {
	week, err := generic.ParseDate(chi.URLParam(r, "week"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week (use YYYY-MM-DD)", err)
		return generic.TimePoint{}, false
	}
	return week, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps the store's not-found sentinels to 404.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, schedule.ErrEmployeeNotFound):
		writeError(w, http.StatusNotFound, "Employee not found", err)
	case errors.Is(err, schedule.ErrShiftNotFound):
		writeError(w, http.StatusNotFound, "Shift not found", err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
