package domain

import (
	"math"
	"sort"
	"time"
)

// CycleGapDays is the largest gap between two flow-days that still belongs
// to the same period. A longer gap starts a new cycle.
const CycleGapDays = 10

// Cycle is a contiguous run of flow-days. The last cycle of a derivation is
// the open one: a later flow-day may still extend it.
type Cycle struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate,omitempty"`
	Length    *int   `json:"length,omitempty"`
}

// DeriveCycles rebuilds the cycle timeline from entries. Entries with flow
// none are ignored; invalid dates are skipped. The result is a pure function
// of the flow-day set and never nil.
func DeriveCycles(entries []DayEntry) []Cycle {
	days := flowDays(entries)
	cycles := []Cycle{}
	if len(days) == 0 {
		return cycles
	}

	start, last := days[0], days[0]
	for _, d := range days[1:] {
		if DaysBetween(last, d) > CycleGapDays {
			cycles = append(cycles, closedCycle(start, last))
			start = d
		}
		last = d
	}
	return append(cycles, closedCycle(start, last))
}

// CycleSummary aggregates the cycles that have a length.
type CycleSummary struct {
	TotalCycles   int  `json:"totalCycles"`
	AverageLength *int `json:"averageLength"`
}

// SummarizeCycles counts the cycles with a length and rounds their mean.
func SummarizeCycles(cycles []Cycle) CycleSummary {
	var n, sum int
	for _, c := range cycles {
		if c.Length == nil {
			continue
		}
		n++
		sum += *c.Length
	}
	s := CycleSummary{TotalCycles: n}
	if n > 0 {
		avg := int(math.Round(float64(sum) / float64(n)))
		s.AverageLength = &avg
	}
	return s
}

func closedCycle(start, end time.Time) Cycle {
	length := DaysBetween(start, end) + 1
	return Cycle{StartDate: FormatDate(start), EndDate: FormatDate(end), Length: &length}
}

// flowDays returns the parsed, ascending, de-duplicated flow-day dates.
func flowDays(entries []DayEntry) []time.Time {
	seen := make(map[string]struct{}, len(entries))
	days := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		if !e.Flow.IsPeriod() {
			continue
		}
		if _, ok := seen[e.Date]; ok {
			continue
		}
		t, err := ParseDate(e.Date)
		if err != nil {
			continue
		}
		seen[e.Date] = struct{}{}
		days = append(days, t)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
