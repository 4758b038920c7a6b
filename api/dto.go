/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's types from the external API contract. Hour figures leave the
  engine as decimals and are rounded to two places only here.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employee:    EmployeeDTO, EmployeeRequest
  Shift:       ShiftDTO, ShiftRequest, ShiftWriteResponse
  Summary:     WeeklySummaryDTO, DaySummaryDTO
  Compliance:  ComplianceReportDTO, ComplianceRunDTO
  Compute:     ComputeSummaryRequest, ComputeCoupureRequest,
               ComputeValidateRequest, ComputeComplianceRequest
  Scenarios:   ScenarioDTO, LoadScenarioRequest

EXPORT CONTRACT:
  hours_diff is positive for a surplus and negative for a deficit.
  pro_rated_contract_hours is the contract share of the week.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/roster-engine/compliance"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/schedule"
)

// displayPlaces is the rounding applied to every hour figure on the wire.
const displayPlaces = 2

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ContractType  string  `json:"contract_type"`
	ContractStart string  `json:"contract_start"`
	ContractEnd   *string `json:"contract_end,omitempty"`
	WeeklyHours   float64 `json:"weekly_hours"`
}

// EmployeeRequest is the body of POST /api/employees and PUT /api/employees/{id}.
type EmployeeRequest struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ContractType  string   `json:"contract_type"`
	ContractStart string   `json:"contract_start"`
	ContractEnd   string   `json:"contract_end,omitempty"`
	WeeklyHours   *float64 `json:"weekly_hours,omitempty"`
}

func toEmployeeDTO(e schedule.Employee) EmployeeDTO {
	weekly, _ := e.Contract.Weekly().Float64()
	dto := EmployeeDTO{
		ID:            string(e.ID),
		Name:          e.Name,
		ContractType:  string(e.Contract.Type),
		ContractStart: e.Contract.Start.String(),
		WeeklyHours:   weekly,
	}
	if e.Contract.End != nil {
		end := e.Contract.End.String()
		dto.ContractEnd = &end
	}
	return dto
}

// toEmployee converts a request body. id overrides req.ID when non-empty.
func (req EmployeeRequest) toEmployee(id string) (schedule.Employee, error) {
	if id == "" {
		id = req.ID
	}
	if req.Name == "" {
		return schedule.Employee{}, fmt.Errorf("name is required")
	}

	start, err := generic.ParseDate(req.ContractStart)
	if err != nil {
		return schedule.Employee{}, fmt.Errorf("contract_start: %w", err)
	}
	c := schedule.NewContract(start)

	switch schedule.ContractType(req.ContractType) {
	case "":
	case schedule.ContractCDI, schedule.ContractCDD, schedule.ContractExtra:
		c.Type = schedule.ContractType(req.ContractType)
	default:
		return schedule.Employee{}, fmt.Errorf("unknown contract_type %q", req.ContractType)
	}

	if req.ContractEnd != "" {
		end, err := generic.ParseDate(req.ContractEnd)
		if err != nil {
			return schedule.Employee{}, fmt.Errorf("contract_end: %w", err)
		}
		c.End = &end
	}
	if req.WeeklyHours != nil {
		c.WeeklyHours = decimal.NewFromFloat(*req.WeeklyHours)
	}
	if err := c.Validate(); err != nil {
		return schedule.Employee{}, err
	}

	return schedule.Employee{ID: schedule.EmployeeID(id), Name: req.Name, Contract: c}, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

// ShiftDTO is schedule.Shift on the wire; the engine type already carries
// its JSON tags.
type ShiftDTO = schedule.Shift

// ShiftRequest is the body of the shift write endpoints.
type ShiftRequest struct {
	EmployeeID string `json:"employee_id"`
	Day        int    `json:"day"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	Position   string `json:"position,omitempty"`
	Type       string `json:"type,omitempty"`
	Status     string `json:"status,omitempty"`
}

func (req ShiftRequest) toShift(id schedule.ShiftID) (schedule.Shift, error) {
	status, err := schedule.ParseStatus(req.Status)
	if err != nil {
		return schedule.Shift{}, err
	}
	if !schedule.ValidDay(req.Day) {
		return schedule.Shift{}, fmt.Errorf("%w: %d", schedule.ErrInvalidDay, req.Day)
	}
	if req.EmployeeID == "" {
		return schedule.Shift{}, fmt.Errorf("employee_id is required")
	}
	if status == schedule.StatusNone && (req.Start == "" || req.End == "") {
		return schedule.Shift{}, fmt.Errorf("start and end are required for a working shift")
	}
	for _, c := range []string{req.Start, req.End} {
		if _, ok := generic.ParseClock(c); c != "" && !ok {
			return schedule.Shift{}, fmt.Errorf("invalid clock time %q (use HH:MM)", c)
		}
	}
	return schedule.Shift{
		ID:         id,
		EmployeeID: schedule.EmployeeID(req.EmployeeID),
		Day:        req.Day,
		Start:      req.Start,
		End:        req.End,
		Position:   req.Position,
		Type:       req.Type,
		Status:     status,
	}, nil
}

// ShiftWriteResponse is returned by shift creation and update. Warnings are
// set when the write was forced past validation errors.
type ShiftWriteResponse struct {
	Shift    ShiftDTO `json:"shift"`
	Warnings []string `json:"warnings,omitempty"`
}

// =============================================================================
// SUMMARIES
// =============================================================================

// DaySummaryDTO is one day of a weekly summary.
type DaySummaryDTO struct {
	Day            int      `json:"day"`
	Date           string   `json:"date"`
	Status         string   `json:"status,omitempty"`
	Hours          float64  `json:"hours"`
	Worked         bool     `json:"worked"`
	Shifts         []string `json:"shifts,omitempty"`
	CoupureMinutes int      `json:"coupure_minutes"`
}

// WeeklySummaryDTO is the weekly hour summary of one employee.
type WeeklySummaryDTO struct {
	EmployeeID              string          `json:"employee_id,omitempty"`
	EmployeeName            string          `json:"employee_name,omitempty"`
	WeekStart               string          `json:"week_start"`
	WeekEnd                 string          `json:"week_end"`
	TotalWorkedHours        float64         `json:"total_worked_hours"`
	TotalAssimilatedHours   float64         `json:"total_assimilated_hours"`
	TotalPublicHolidayHours float64         `json:"total_public_holiday_hours"`
	TotalCoveredHours       float64         `json:"total_covered_hours"`
	ProRatedContractHours   float64         `json:"pro_rated_contract_hours"`
	HoursDiff               float64         `json:"hours_diff"`
	Surplus                 bool            `json:"surplus"`
	ShiftCount              int             `json:"shift_count"`
	Days                    []DaySummaryDTO `json:"days"`
}

func toWeeklySummaryDTO(emp *schedule.Employee, s schedule.WeeklySummary) WeeklySummaryDTO {
	r := s.Rounded(displayPlaces)
	dto := WeeklySummaryDTO{
		WeekStart:               r.Week.Start.String(),
		WeekEnd:                 r.Week.End.String(),
		TotalWorkedHours:        r.TotalWorkedHours.Float64(),
		TotalAssimilatedHours:   r.TotalAssimilatedHours.Float64(),
		TotalPublicHolidayHours: r.TotalPublicHolidayHours.Float64(),
		TotalCoveredHours:       r.TotalCoveredHours.Float64(),
		ProRatedContractHours:   r.ProRatedContractHours.Float64(),
		HoursDiff:               r.HoursDiff.Float64(),
		Surplus:                 s.IsSurplus(),
		ShiftCount:              r.ShiftCount,
		Days:                    make([]DaySummaryDTO, 0, len(r.Days)),
	}
	if emp != nil {
		dto.EmployeeID = string(emp.ID)
		dto.EmployeeName = emp.Name
	}
	for _, d := range r.Days {
		day := DaySummaryDTO{
			Day:            d.Day,
			Date:           d.Date.String(),
			Status:         d.Status.String(),
			Hours:          d.Hours.Round(displayPlaces).Float64(),
			Worked:         d.Worked,
			CoupureMinutes: d.CoupureMinutes,
		}
		for _, id := range d.Shifts {
			day.Shifts = append(day.Shifts, string(id))
		}
		dto.Days = append(dto.Days, day)
	}
	return dto
}

// =============================================================================
// COMPLIANCE
// =============================================================================

// ComplianceReportDTO is the result of a roster evaluation.
type ComplianceReportDTO struct {
	WeekStart  string                 `json:"week_start"`
	RuleSet    string                 `json:"rule_set,omitempty"`
	Violations []compliance.Violation `json:"violations"`
	Counts     map[string]int         `json:"counts"`
	// Compliant is false when at least one violation is critical.
	Compliant bool `json:"compliant"`
}

func toComplianceReportDTO(week generic.TimePoint, ruleSet string, vs []compliance.Violation) ComplianceReportDTO {
	if vs == nil {
		vs = []compliance.Violation{}
	}
	counts := map[string]int{
		string(compliance.SeverityCritical): 0,
		string(compliance.SeverityWarning):  0,
		string(compliance.SeverityInfo):     0,
	}
	for sev, n := range compliance.CountBySeverity(vs) {
		counts[string(sev)] = n
	}
	return ComplianceReportDTO{
		WeekStart:  generic.WeekStart(week).String(),
		RuleSet:    ruleSet,
		Violations: vs,
		Counts:     counts,
		Compliant:  !compliance.HasCritical(vs),
	}
}

// ComplianceRunDTO represents a recorded sweep.
type ComplianceRunDTO struct {
	ID             string                 `json:"id"`
	WeekStart      string                 `json:"week_start"`
	Status         string                 `json:"status"`
	ViolationCount int                    `json:"violation_count"`
	CriticalCount  int                    `json:"critical_count"`
	Violations     []compliance.Violation `json:"violations,omitempty"`
	Error          string                 `json:"error,omitempty"`
	StartedAt      string                 `json:"started_at"`
	CompletedAt    *string                `json:"completed_at,omitempty"`
}

func toComplianceRunDTO(r compliance.Run) ComplianceRunDTO {
	dto := ComplianceRunDTO{
		ID:             r.ID,
		WeekStart:      r.WeekStart.String(),
		Status:         string(r.Status),
		ViolationCount: r.ViolationCount,
		CriticalCount:  r.CriticalCount,
		Violations:     r.Violations,
		Error:          r.Error,
		StartedAt:      r.StartedAt.Format(time.RFC3339),
	}
	if r.CompletedAt != nil {
		s := r.CompletedAt.Format(time.RFC3339)
		dto.CompletedAt = &s
	}
	return dto
}

// =============================================================================
// STATELESS COMPUTE
// =============================================================================

// ComputeSummaryRequest carries everything Summarize needs.
type ComputeSummaryRequest struct {
	Employee EmployeeRequest `json:"employee"`
	Week     string          `json:"week"`
	Shifts   []ShiftDTO      `json:"shifts"`
}

// ComputeCoupureRequest is a list of shifts, grouped by day in the response.
type ComputeCoupureRequest struct {
	Shifts []ShiftDTO `json:"shifts"`
}

// ComputeCoupureResponse maps day index to coupure minutes.
type ComputeCoupureResponse struct {
	Total int         `json:"total_minutes"`
	ByDay map[int]int `json:"by_day"`
}

// ComputeValidateRequest validates candidate shifts for one employee-day.
type ComputeValidateRequest struct {
	Employee   EmployeeRequest `json:"employee"`
	Week       string          `json:"week"`
	Day        int             `json:"day"`
	Candidates []ShiftDTO      `json:"candidates"`
	Existing   []ShiftDTO      `json:"existing"`
}

// ValidationDTO is a schedule.ValidationResult on the wire.
type ValidationDTO struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors"`
}

// ComputeComplianceRequest evaluates a roster given inline.
type ComputeComplianceRequest struct {
	Employees []EmployeeRequest `json:"employees"`
	Week      string            `json:"week"`
	Shifts    []ShiftDTO        `json:"shifts"`
}

// =============================================================================
// RULES & SCENARIOS
// =============================================================================

// RulesDTO is the active rule set.
type RulesDTO struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	YAML    string   `json:"yaml"`
	Presets []string `json:"presets"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
	Week       string `json:"week,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
