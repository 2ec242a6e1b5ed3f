package app

import (
	"context"
	"fmt"
	"time"

	"periodtracker/internal/domain"
)

// CalendarSource is the read side of the DayLog used by CalendarService.
type CalendarSource interface {
	Snapshot(ctx context.Context) domain.AppData
	Today() string
}

// CalendarService builds the per-date states rendered by the calendar view.
type CalendarService struct {
	src CalendarSource
}

// NewCalendarService creates a CalendarService reading from src.
func NewCalendarService(src CalendarSource) *CalendarService {
	return &CalendarService{src: src}
}

// CalendarDay is the visual state of one date.
type CalendarDay struct {
	Date        string      `json:"date"`
	Flow        domain.Flow `json:"flow"`
	HasSymptoms bool        `json:"hasSymptoms"`
	HasNotes    bool        `json:"hasNotes"`
	Predicted   bool        `json:"predicted"`
	Today       bool        `json:"today"`
}

// Month returns one CalendarDay per date of month ("2006-01"). Days in the
// predicted period window, starting at the next predicted period and lasting
// the profile's average period length, are marked predicted.
func (s *CalendarService) Month(ctx context.Context, month string) ([]CalendarDay, error) {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, fmt.Errorf("month must be YYYY-MM: %w", err)
	}

	data := s.src.Snapshot(ctx)
	todayStr := s.src.Today()
	today, err := domain.ParseDate(todayStr)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]domain.DayEntry, len(data.Entries))
	for _, e := range data.Entries {
		byDate[e.Date] = e
	}

	var predStart time.Time
	st := domain.ComputeStats(data.Entries, data.Cycles, data.Profile, today)
	if st.NextPredictedPeriod != nil {
		predStart, _ = domain.ParseDate(*st.NextPredictedPeriod)
	}

	days := make([]CalendarDay, 0, 31)
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		date := domain.FormatDate(d)
		day := CalendarDay{Date: date, Flow: domain.FlowNone, Today: date == todayStr}
		if e, ok := byDate[date]; ok {
			day.Flow = e.Flow
			day.HasSymptoms = len(e.Symptoms) > 0
			day.HasNotes = e.Notes != ""
		}
		if !predStart.IsZero() && !day.Flow.IsPeriod() {
			off := domain.DaysBetween(predStart, d)
			day.Predicted = off >= 0 && off < data.Profile.AveragePeriodLength
		}
		days = append(days, day)
	}
	return days, nil
}
