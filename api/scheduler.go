/*
scheduler.go - Periodic compliance sweep

PURPOSE:
  Periodically evaluates the whole roster of the current week against the
  labor-law rules and records each sweep as a compliance run, so managers
  see new breaches without opening the compliance view.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - The clock is injected; "current week" is the week containing Clock()
  - Each sweep is recorded through a RunSink (running, then completed or
    failed). A nil sink skips recording.
  - No global timers: the host starts and stops the scheduler

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Enabled: Whether the scheduler is active (default: true)
  - Workers: Bound on concurrent per-employee evaluations (0 = unbounded)

USAGE:
  scheduler := NewComplianceScheduler(store, evaluator, store)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TriggerComplianceRun endpoint (manual sweep)
  - compliance/sweep.go: the concurrent evaluation
*/
package api

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/roster-engine/compliance"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/schedule"
)

// RunSink receives compliance run records.
type RunSink interface {
	SaveComplianceRun(ctx context.Context, r compliance.Run) error
}

// RunStore is a RunSink that can also list what it recorded.
type RunStore interface {
	RunSink
	ListComplianceRuns(ctx context.Context, weekStart string, limit int) ([]compliance.Run, error)
}

// ComplianceScheduler runs roster-wide compliance sweeps on a ticker.
type ComplianceScheduler struct {
	Roster        schedule.Roster
	Evaluator     *compliance.Evaluator
	Sink          RunSink
	CheckInterval time.Duration
	Enabled       bool
	Workers       int
	Clock         func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewComplianceScheduler creates a new scheduler.
func NewComplianceScheduler(roster schedule.Roster, evaluator *compliance.Evaluator, sink RunSink) *ComplianceScheduler {
	return &ComplianceScheduler{
		Roster:        roster,
		Evaluator:     evaluator,
		Sink:          sink,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Clock:         time.Now,
	}
}

// Start begins the scheduler.
func (cs *ComplianceScheduler) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}
	if cs.ticker != nil {
		return
	}

	cs.ticker = time.NewTicker(cs.CheckInterval)
	cs.stop = make(chan struct{})
	cs.wg.Add(1)

	go cs.run(cs.ticker, cs.stop)

	log.Printf("[Scheduler] Started with check interval: %v", cs.CheckInterval)
}

// Stop stops the scheduler and waits for an in-flight sweep.
func (cs *ComplianceScheduler) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.ticker != nil {
		cs.ticker.Stop()
		close(cs.stop)
		cs.wg.Wait()
		cs.ticker = nil
		log.Println("[Scheduler] Stopped")
	}
}

func (cs *ComplianceScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer cs.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stop
		cancel()
	}()

	// Run immediately on start
	cs.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			cs.sweep(ctx)
		case <-stop:
			return
		}
	}
}

func (cs *ComplianceScheduler) sweep(ctx context.Context) {
	run, err := cs.RunWeek(ctx, generic.FromTime(cs.now()))
	if err != nil {
		log.Printf("[Scheduler] Sweep %s failed: %v", run.ID, err)
		return
	}
	log.Printf("[Scheduler] Sweep %s for week %s: %d violations (%d critical)",
		run.ID, run.WeekStart, run.ViolationCount, run.CriticalCount)
}

// RunNow triggers an immediate sweep of the current week (for testing/admin).
func (cs *ComplianceScheduler) RunNow(ctx context.Context) (compliance.Run, error) {
	return cs.RunWeek(ctx, generic.FromTime(cs.now()))
}

// RunWeek sweeps the week containing anchor and records the run.
func (cs *ComplianceScheduler) RunWeek(ctx context.Context, anchor generic.TimePoint) (compliance.Run, error) {
	run := compliance.Run{
		ID:        "run-" + uuid.NewString(),
		WeekStart: generic.WeekStart(anchor),
		Status:    compliance.RunRunning,
		StartedAt: cs.now(),
	}
	cs.record(ctx, run)

	violations, err := cs.evaluate(ctx, anchor)
	if err != nil {
		run.Fail(err, cs.now())
		cs.record(ctx, run)
		return run, err
	}

	run.Complete(violations, cs.now())
	cs.record(ctx, run)
	return run, nil
}

func (cs *ComplianceScheduler) evaluate(ctx context.Context, anchor generic.TimePoint) ([]compliance.Violation, error) {
	employees, err := cs.Roster.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	shifts, err := cs.Roster.ListShifts(ctx, anchor, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return cs.Evaluator.Sweep(ctx, employees, shifts, anchor, cs.Workers)
}

func (cs *ComplianceScheduler) record(ctx context.Context, run compliance.Run) {
	if cs.Sink == nil {
		return
	}
	if err := cs.Sink.SaveComplianceRun(ctx, run); err != nil {
		log.Printf("[Scheduler] Error recording run %s: %v", run.ID, err)
	}
}

// GetNextRunTime returns when the next scheduled sweep will occur.
func (cs *ComplianceScheduler) GetNextRunTime() time.Time {
	return cs.now().Add(cs.CheckInterval)
}

func (cs *ComplianceScheduler) now() time.Time {
	if cs.Clock == nil {
		return time.Now()
	}
	return cs.Clock()
}
