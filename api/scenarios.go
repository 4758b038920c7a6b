/*
scenarios.go - Demo roster loaders for testing and demonstrations

PURPOSE:

	Provides pre-built rosters that populate the store with realistic
	restaurant weeks. Each scenario creates employees and the shifts of one
	week that demonstrate a specific feature of the engine.

AVAILABLE SCENARIOS:

	split-shifts:        Lunch and dinner services with coupures
	mid-week-hire:       Contract starting on Thursday (pro-rated hours)
	statuses:            Paid leave, public holiday, sickness, weekly rest
	compliance-breaches: Short daily rest, long day, seven days in a row

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Create employees with their contracts
 3. Create the shifts of the requested week (default: current week)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "split-shifts", "week": "2025-03-10"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, week)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the store. Only use in development/demo environments.
	The store must implement Resetter.

SEE ALSO:
  - handlers.go: shift and summary endpoints
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/schedule"
)

// Resetter is implemented by stores that can be wiped for demos.
type Resetter interface {
	Reset(ctx context.Context) error
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "split-shifts",
		Name:        "Split Shifts",
		Description: "Two cooks on lunch and dinner services, with coupures between them",
	},
	{
		ID:          "mid-week-hire",
		Name:        "Mid-Week Hire",
		Description: "Waiter hired on Thursday: contract hours pro-rated to 17.5",
	},
	{
		ID:          "statuses",
		Name:        "Day Statuses",
		Description: "Paid leave, a worked public holiday, sick leave and weekly rest",
	},
	{
		ID:          "compliance-breaches",
		Name:        "Compliance Breaches",
		Description: "Closing then opening shifts, an 11h day and seven days in a row",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario loads a predefined roster into the store.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	week, err := h.parseWeek(req.Week)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week (use YYYY-MM-DD)", err)
		return
	}
	week = generic.WeekStart(week)

	var load func(context.Context, generic.TimePoint) error
	switch req.ScenarioID {
	case "split-shifts":
		load = h.loadSplitShiftsScenario
	case "mid-week-hire":
		load = h.loadMidWeekHireScenario
	case "statuses":
		load = h.loadStatusesScenario
	case "compliance-breaches":
		load = h.loadComplianceBreachesScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	resetter, ok := h.Store.(Resetter)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Store cannot be reset", nil)
		return
	}

	ctx := r.Context()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := resetter.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	if err := load(ctx, week); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"week":     week.String(),
	})
}

// ResetStore wipes every employee and shift.
func (h *Handler) ResetStore(w http.ResponseWriter, r *http.Request) {
	resetter, ok := h.Store.(Resetter)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Store cannot be reset", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := resetter.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSplitShiftsScenario(ctx context.Context, week generic.TimePoint) error {
	// Two full-time cooks. Lunch 10:00-14:30 and dinner 18:00-23:00 leaves a
	// 3h30 coupure; the commis closes one night at 00:30.
	chef := demoEmployee("emp-chef", "Camille Roux", week.AddDays(-365))
	commis := demoEmployee("emp-commis", "Lucas Martin", week.AddDays(-90))

	var shifts []schedule.Shift
	for day := 0; day < 5; day++ {
		shifts = append(shifts,
			demoShift(chef.ID, day, "10:00", "14:30", "Chef de partie"),
			demoShift(chef.ID, day, "18:00", "23:00", "Chef de partie"),
		)
	}
	shifts = append(shifts, demoStatus(chef.ID, 5, schedule.StatusWeeklyRest), demoStatus(chef.ID, 6, schedule.StatusWeeklyRest))

	for day := 1; day < 6; day++ {
		shifts = append(shifts,
			demoShift(commis.ID, day, "11:00", "15:00", "Commis"),
			demoShift(commis.ID, day, "19:00", "00:30", "Commis"),
		)
	}
	shifts = append(shifts, demoStatus(commis.ID, 0, schedule.StatusWeeklyRest), demoStatus(commis.ID, 6, schedule.StatusWeeklyRest))

	return h.saveRoster(ctx, week, []schedule.Employee{chef, commis}, shifts)
}

func (h *Handler) loadMidWeekHireScenario(ctx context.Context, week generic.TimePoint) error {
	// Hired on Thursday: Thursday, Friday and Saturday count, so the contract
	// share is 35 x 3 / 6 = 17.5h.
	waiter := demoEmployee("emp-waiter", "Inès Bernard", week.AddDays(3))
	waiter.Contract.Type = schedule.ContractCDD
	end := week.AddDays(60)
	waiter.Contract.End = &end

	shifts := []schedule.Shift{
		demoShift(waiter.ID, 3, "11:30", "15:00", "Serveur"),
		demoShift(waiter.ID, 3, "18:30", "22:30", "Serveur"),
		demoShift(waiter.ID, 4, "18:00", "23:30", "Serveur"),
		demoShift(waiter.ID, 5, "11:00", "16:00", "Serveur"),
		demoStatus(waiter.ID, 6, schedule.StatusWeeklyRest),
	}

	return h.saveRoster(ctx, week, []schedule.Employee{waiter}, shifts)
}

func (h *Handler) loadStatusesScenario(ctx context.Context, week generic.TimePoint) error {
	// Monday paid leave, Tuesday worked public holiday, Wednesday sick,
	// Thursday and Friday worked, weekend rest.
	host := demoEmployee("emp-host", "Sarah Petit", week.AddDays(-200))

	shifts := []schedule.Shift{
		demoStatus(host.ID, 0, schedule.StatusPaidLeave),
		demoStatus(host.ID, 1, schedule.StatusPublicHoliday),
		demoShift(host.ID, 1, "09:00", "17:00", "Accueil"),
		demoStatus(host.ID, 2, schedule.StatusSickLeave),
		demoShift(host.ID, 3, "09:00", "17:00", "Accueil"),
		demoShift(host.ID, 4, "09:00", "17:00", "Accueil"),
		demoStatus(host.ID, 5, schedule.StatusWeeklyRest),
		demoStatus(host.ID, 6, schedule.StatusWeeklyRest),
	}

	return h.saveRoster(ctx, week, []schedule.Employee{host}, shifts)
}

func (h *Handler) loadComplianceBreachesScenario(ctx context.Context, week generic.TimePoint) error {
	// Closing at 23:30 then opening at 07:00 (7h30 rest), an 11h day on
	// Wednesday, and a shift every day of the week.
	barman := demoEmployee("emp-barman", "Hugo Lefèvre", week.AddDays(-30))
	extra := demoEmployee("emp-extra", "Léa Moreau", week.AddDays(-10))
	extra.Contract.Type = schedule.ContractExtra
	extraEnd := week.AddDays(4)
	extra.Contract.End = &extraEnd

	shifts := []schedule.Shift{
		demoShift(barman.ID, 0, "16:00", "23:30", "Bar"),
		demoShift(barman.ID, 1, "07:00", "12:00", "Bar"),
		demoShift(barman.ID, 2, "09:00", "20:00", "Bar"),
		demoShift(barman.ID, 3, "12:00", "18:00", "Bar"),
		demoShift(barman.ID, 4, "12:00", "18:00", "Bar"),
		demoShift(barman.ID, 5, "12:00", "18:00", "Bar"),
		demoShift(barman.ID, 6, "12:00", "16:00", "Bar"),

		// Saturday falls after the end of the extra's contract.
		demoShift(extra.ID, 4, "19:00", "23:00", "Runner"),
		demoShift(extra.ID, 5, "19:00", "23:00", "Runner"),
	}

	return h.saveRoster(ctx, week, []schedule.Employee{barman, extra}, shifts)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) saveRoster(ctx context.Context, week generic.TimePoint, employees []schedule.Employee, shifts []schedule.Shift) error {
	for _, emp := range employees {
		if err := h.Store.SaveEmployee(ctx, emp); err != nil {
			return fmt.Errorf("save employee %s: %w", emp.ID, err)
		}
	}
	for _, s := range shifts {
		if err := h.Store.SaveShift(ctx, week, s); err != nil {
			return fmt.Errorf("save shift %s: %w", s.ID, err)
		}
	}
	return nil
}

func demoEmployee(id schedule.EmployeeID, name string, start generic.TimePoint) schedule.Employee {
	return schedule.Employee{ID: id, Name: name, Contract: schedule.NewContract(start)}
}

func demoShift(emp schedule.EmployeeID, day int, start, end, position string) schedule.Shift {
	return schedule.Shift{
		ID:         schedule.ShiftID(fmt.Sprintf("%s-d%d-%s", emp, day, start)),
		EmployeeID: emp,
		Day:        day,
		Start:      start,
		End:        end,
		Position:   position,
		Type:       "service",
	}
}

func demoStatus(emp schedule.EmployeeID, day int, st schedule.Status) schedule.Shift {
	return schedule.Shift{
		ID:         schedule.ShiftID(fmt.Sprintf("%s-d%d-%s", emp, day, st)),
		EmployeeID: emp,
		Day:        day,
		Status:     st,
	}
}
