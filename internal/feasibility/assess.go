// README: Local two-tier feasibility scoring of task plans.
package feasibility

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"atlas/internal/plan"
)

const (
	minSubtasks = 3
	maxSubtasks = 10

	minNameLen = 2
	minDescLen = 4

	// Soft thresholds.
	crowdedDayItems  = 5
	maxItemsPerDay   = 3.0
	easyItemsPerDay  = 1.5
	longHighPriority = 14

	// ReasonPassed and ReasonRisk are the tier-2 reason strings.
	ReasonPassed = "passed minimum criteria"
	ReasonRisk   = "risk found"
)

var placeholders = map[string]struct{}{
	"": {}, "tbd": {}, "n/a": {}, "na": {}, "-": {}, "ยังไม่กำหนด": {}, "ไม่ทราบ": {},
}

// IsPlaceholder reports whether s is blank or a known placeholder token.
func IsPlaceholder(s string) bool {
	_, ok := placeholders[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Assess grades p. It never calls out and always returns the same verdict
// for the same plan.
func Assess(p plan.TaskPlan) plan.Feasibility {
	reasons := []string{}
	warnings := []string{}

	if IsPlaceholder(p.TaskName) {
		reasons = append(reasons, "task_name is empty or placeholder")
	}

	var start, end time.Time
	datesOK := false
	if IsPlaceholder(p.StartDate) || IsPlaceholder(p.EndDate) {
		reasons = append(reasons, "date fields are empty or placeholder")
	} else {
		s, errS := parseDate(p.StartDate)
		e, errE := parseDate(p.EndDate)
		switch {
		case errS != nil || errE != nil:
			reasons = append(reasons, "dates are not valid ISO format (YYYY-MM-DD)")
		case s.After(e):
			reasons = append(reasons, "start_date is after end_date")
		default:
			start, end, datesOK = s, e, true
		}
	}

	n := len(p.Subtasks)
	if n < minSubtasks || n > maxSubtasks {
		reasons = append(reasons, fmt.Sprintf("subtasks count must be between %d and %d", minSubtasks, maxSubtasks))
	}
	for i, st := range p.Subtasks {
		switch {
		case IsPlaceholder(st.Name) || IsPlaceholder(st.Description):
			reasons = append(reasons, fmt.Sprintf("subtask #%d has empty or placeholder fields", i+1))
		case utf8.RuneCountInString(strings.TrimSpace(st.Name)) < minNameLen ||
			utf8.RuneCountInString(strings.TrimSpace(st.Description)) < minDescLen:
			reasons = append(reasons, fmt.Sprintf("subtask #%d fields too short", i+1))
		}
	}

	if len(reasons) > 0 {
		return plan.Feasibility{
			Feasible:   false,
			Difficulty: plan.DifficultyImpossible,
			Warnings:   warnings,
			Reasons:    reasons,
		}
	}

	days := 1
	if datesOK {
		days = int(end.Sub(start).Hours()/24) + 1
	}
	perDay := float64(n) / float64(max(days, 1))

	if days <= 1 && n >= crowdedDayItems {
		warnings = append(warnings, fmt.Sprintf("1-day timeframe but %d or more subtasks", crowdedDayItems))
	}
	if perDay > maxItemsPerDay {
		warnings = append(warnings, fmt.Sprintf("high workload per day (%.1f), may not finish in time", perDay))
	}
	if p.Priority == plan.PriorityHigh && days > longHighPriority {
		warnings = append(warnings, fmt.Sprintf("priority=High but timeframe exceeds %d days, review urgency", longHighPriority))
	}

	difficulty := plan.DifficultyHard
	if len(warnings) == 0 {
		difficulty = plan.DifficultyMedium
		if perDay <= easyItemsPerDay {
			difficulty = plan.DifficultyEasy
		}
	}

	reasons = []string{ReasonPassed}
	if len(warnings) > 0 {
		reasons = append(reasons, ReasonRisk)
	}
	return plan.Feasibility{
		Feasible:   true,
		Difficulty: difficulty,
		Warnings:   warnings,
		Reasons:    reasons,
	}
}

// parseDate accepts YYYY-MM-DD and, like an ISO parser, a full timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("feasibility: %q is not an ISO date", s)
}
