package factory

import (
	"fmt"
	"sort"
)

// FrenchLaborCodeYAML is the general regime of the Code du travail.
func FrenchLaborCodeYAML() string {
	return `
id: fr-labor-code
name: Code du travail
min_daily_rest: 11h
min_weekly_rest: 35h
max_daily_hours: 10
max_weekly_hours: 48
weekly_hours_alert: 44
max_consecutive_days: 6
breaks:
  paid: true
`
}

// HCRConventionYAML is the hotels-cafés-restaurants collective agreement:
// 11h days (11.5h for some staff is left to a custom document), weekly
// alert at the 46h average ceiling, unpaid 30 minute break past 6 hours.
func HCRConventionYAML() string {
	return `
id: fr-hcr
name: Convention collective HCR
min_daily_rest: 11h
min_weekly_rest: 35h
max_daily_hours: 11
max_weekly_hours: 48
weekly_hours_alert: 46
max_consecutive_days: 6
breaks:
  paid: false
  threshold_hours: 6
  deduction_hours: 0.5
`
}

var presets = map[string]func() string{
	"fr-labor-code": FrenchLaborCodeYAML,
	"fr-hcr":        HCRConventionYAML,
}

// PresetNames lists the built-in presets, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Preset parses a built-in preset by id.
func (f *RulesFactory) Preset(id string) (*RuleSet, error) {
	doc, ok := presets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, id)
	}
	return f.ParseRules(doc())
}
