package domain

import "time"

// Stats are the figures shown on the dashboard. Nil pointers mean there is
// nothing to show.
type Stats struct {
	Today               string  `json:"today"`
	DaysSinceLastPeriod *int    `json:"daysSinceLastPeriod"`
	CurrentCycleDay     *int    `json:"currentCycleDay"`
	NextPredictedPeriod *string `json:"nextPredictedPeriod"`
	DaysUntilNextPeriod *int    `json:"daysUntilNextPeriod"`
	AverageCycleLength  int     `json:"averageCycleLength"`
}

// ComputeStats derives the dashboard figures for the calendar day of today.
// Days until the next period is only set when strictly positive.
func ComputeStats(entries []DayEntry, cycles []Cycle, profile Profile, today time.Time) Stats {
	st := Stats{
		Today:              FormatDate(today),
		AverageCycleLength: profile.AverageCycleLength,
	}

	days := flowDays(entries)
	if len(days) == 0 {
		return st
	}
	lastFlow := days[len(days)-1]

	since := DaysBetween(lastFlow, today)
	st.DaysSinceLastPeriod = &since

	if len(cycles) > 0 {
		if start, err := ParseDate(cycles[len(cycles)-1].StartDate); err == nil {
			day := DaysBetween(start, today) + 1
			st.CurrentCycleDay = &day
		}
	}

	next := lastFlow.AddDate(0, 0, profile.AverageCycleLength)
	nextStr := FormatDate(next)
	st.NextPredictedPeriod = &nextStr

	if until := DaysBetween(today, next); until > 0 {
		st.DaysUntilNextPeriod = &until
	}
	return st
}
