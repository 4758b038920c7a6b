/*
Package factory converts rule documents into compliance.Rules.

PURPOSE:
  Labor-law thresholds differ between the general labor code and collective
  agreements (the hotels-cafés-restaurants convention allows longer days, a
  company may set a stricter alert). Thresholds are therefore data: a YAML
  (or JSON, which YAML accepts) document parsed here into compliance.Rules.

DOCUMENT SCHEMA:
  id: fr-labor-code
  name: Code du travail
  min_daily_rest: 11h              # Go duration
  min_weekly_rest: 35h
  max_daily_hours: 10
  max_weekly_hours: 48
  weekly_hours_alert: 44           # 0 disables the warning
  max_consecutive_days: 6
  breaks:
    paid: true                     # false deducts deduction_hours; omitted means paid
    threshold_hours: 6
    deduction_hours: 0.5

DEFAULTS:
  Any field left out keeps the value from compliance.DefaultRules().

USAGE:
  f := factory.NewRulesFactory()
  set, err := f.ParseRules(factory.HCRConventionYAML())
  evaluator := compliance.NewEvaluator(set.Rules)

SEE ALSO:
  - compliance/rules.go: the Rules type
  - config/config.go: selects a preset or a rules file
*/
package factory

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/roster-engine/compliance"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/schedule"
)

// ErrUnknownPreset is returned by Preset for an unregistered name.
var ErrUnknownPreset = errors.New("unknown rules preset")

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// RulesDoc is the document form of a rule set.
type RulesDoc struct {
	ID                 string     `yaml:"id" json:"id"`
	Name               string     `yaml:"name" json:"name"`
	MinDailyRest       string     `yaml:"min_daily_rest,omitempty" json:"min_daily_rest,omitempty"`
	MinWeeklyRest      string     `yaml:"min_weekly_rest,omitempty" json:"min_weekly_rest,omitempty"`
	MaxDailyHours      *float64   `yaml:"max_daily_hours,omitempty" json:"max_daily_hours,omitempty"`
	MaxWeeklyHours     *float64   `yaml:"max_weekly_hours,omitempty" json:"max_weekly_hours,omitempty"`
	WeeklyHoursAlert   *float64   `yaml:"weekly_hours_alert,omitempty" json:"weekly_hours_alert,omitempty"`
	MaxConsecutiveDays *int       `yaml:"max_consecutive_days,omitempty" json:"max_consecutive_days,omitempty"`
	Breaks             *BreaksDoc `yaml:"breaks,omitempty" json:"breaks,omitempty"`
}

// BreaksDoc is the document form of schedule.BreakPolicy.
type BreaksDoc struct {
	Paid           *bool    `yaml:"paid,omitempty" json:"paid,omitempty"`
	ThresholdHours *float64 `yaml:"threshold_hours,omitempty" json:"threshold_hours,omitempty"`
	DeductionHours *float64 `yaml:"deduction_hours,omitempty" json:"deduction_hours,omitempty"`
}

// RuleSet is a parsed, named rule set.
type RuleSet struct {
	ID    string
	Name  string
	Rules compliance.Rules
}

// =============================================================================
// RULES FACTORY
// =============================================================================

// RulesFactory converts rule documents to compliance.Rules.
type RulesFactory struct{}

// NewRulesFactory creates a new rules factory.
func NewRulesFactory() *RulesFactory {
	return &RulesFactory{}
}

// ParseRules parses a YAML or JSON document.
func (f *RulesFactory) ParseRules(doc string) (*RuleSet, error) {
	var rd RulesDoc
	if err := yaml.Unmarshal([]byte(doc), &rd); err != nil {
		return nil, fmt.Errorf("failed to parse rules document: %w", err)
	}
	return f.FromDoc(rd)
}

// FromDoc converts a RulesDoc, starting from compliance.DefaultRules().
func (f *RulesFactory) FromDoc(rd RulesDoc) (*RuleSet, error) {
	rules := compliance.DefaultRules()

	var err error
	if rules.MinDailyRest, err = parseDuration("min_daily_rest", rd.MinDailyRest, rules.MinDailyRest); err != nil {
		return nil, err
	}
	if rules.MinWeeklyRest, err = parseDuration("min_weekly_rest", rd.MinWeeklyRest, rules.MinWeeklyRest); err != nil {
		return nil, err
	}
	if rd.MaxDailyHours != nil {
		rules.MaxDailyHours = decimal.NewFromFloat(*rd.MaxDailyHours)
	}
	if rd.MaxWeeklyHours != nil {
		rules.MaxWeeklyHours = decimal.NewFromFloat(*rd.MaxWeeklyHours)
	}
	if rd.WeeklyHoursAlert != nil {
		rules.WeeklyHoursAlert = decimal.NewFromFloat(*rd.WeeklyHoursAlert)
	}
	if rd.MaxConsecutiveDays != nil {
		if *rd.MaxConsecutiveDays < 0 {
			return nil, fmt.Errorf("max_consecutive_days must not be negative, got %d", *rd.MaxConsecutiveDays)
		}
		rules.MaxConsecutiveDays = *rd.MaxConsecutiveDays
	}
	if rd.Breaks != nil {
		rules.Breaks = parseBreaks(*rd.Breaks)
	}
	if rules.MaxDailyHours.IsNegative() || rules.MaxWeeklyHours.IsNegative() || rules.WeeklyHoursAlert.IsNegative() {
		return nil, fmt.Errorf("hour ceilings must not be negative")
	}

	return &RuleSet{ID: rd.ID, Name: rd.Name, Rules: rules}, nil
}

// ToDoc converts a rule set back to its document form.
func (f *RulesFactory) ToDoc(set RuleSet) RulesDoc {
	r := set.Rules
	maxDaily, _ := r.MaxDailyHours.Float64()
	maxWeekly, _ := r.MaxWeeklyHours.Float64()
	alert, _ := r.WeeklyHoursAlert.Float64()
	consecutive := r.MaxConsecutiveDays
	paid := !r.Breaks.DeductUnpaid

	rd := RulesDoc{
		ID:                 set.ID,
		Name:               set.Name,
		MinDailyRest:       r.MinDailyRest.String(),
		MinWeeklyRest:      r.MinWeeklyRest.String(),
		MaxDailyHours:      &maxDaily,
		MaxWeeklyHours:     &maxWeekly,
		WeeklyHoursAlert:   &alert,
		MaxConsecutiveDays: &consecutive,
		Breaks:             &BreaksDoc{Paid: &paid},
	}
	if r.Breaks.DeductUnpaid {
		threshold := r.Breaks.Threshold.InHours().Float64()
		deduction := r.Breaks.Deduction.InHours().Float64()
		rd.Breaks.ThresholdHours = &threshold
		rd.Breaks.DeductionHours = &deduction
	}
	return rd
}

// ToYAML renders a rule set as a YAML document.
func (f *RulesFactory) ToYAML(set RuleSet) (string, error) {
	b, err := yaml.Marshal(f.ToDoc(set))
	if err != nil {
		return "", fmt.Errorf("failed to render rules document: %w", err)
	}
	return string(b), nil
}

func parseDuration(field, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", field, raw)
	}
	return d, nil
}

func parseBreaks(bd BreaksDoc) schedule.BreakPolicy {
	if bd.Paid == nil || *bd.Paid {
		return schedule.PaidBreaks()
	}
	bp := schedule.UnpaidBreaks()
	if bd.ThresholdHours != nil {
		bp.Threshold = generic.Hours(*bd.ThresholdHours)
	}
	if bd.DeductionHours != nil {
		bp.Deduction = generic.Hours(*bd.DeductionHours)
	}
	return bp
}
