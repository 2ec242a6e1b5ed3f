package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Flow is the menstrual flow intensity recorded for a day.
type Flow string

// Flow intensities, from none to heavy.
const (
	FlowNone   Flow = "none"
	FlowLight  Flow = "light"
	FlowMedium Flow = "medium"
	FlowHeavy  Flow = "heavy"
)

// ParseFlow parses a flow intensity. The empty string reads as none.
func ParseFlow(s string) (Flow, error) {
	f := Flow(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FlowNone, nil
	}
	if !f.Valid() {
		return "", fmt.Errorf("%w: unknown flow %q", ErrInvalidEntry, s)
	}
	return f, nil
}

// Valid reports whether f is one of the known intensities.
func (f Flow) Valid() bool {
	switch f {
	case FlowNone, FlowLight, FlowMedium, FlowHeavy:
		return true
	}
	return false
}

// IsPeriod reports whether f marks a flow-day.
func (f Flow) IsPeriod() bool {
	return f != FlowNone && f != ""
}

// DayEntry is everything logged for one calendar date.
type DayEntry struct {
	Date     string   `json:"date"`
	Flow     Flow     `json:"flow"`
	Symptoms []string `json:"symptoms"`
	Notes    string   `json:"notes,omitempty"`
}

// Normalize validates e and returns a cleaned copy: trimmed notes, a
// lower-case flow (empty reads as none) and the symptoms reduced to a set.
func (e DayEntry) Normalize() (DayEntry, error) {
	date := strings.TrimSpace(e.Date)
	if _, err := ParseDate(date); err != nil {
		return DayEntry{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	flow, err := ParseFlow(string(e.Flow))
	if err != nil {
		return DayEntry{}, err
	}
	return DayEntry{
		Date:     date,
		Flow:     flow,
		Symptoms: NormalizeSymptoms(e.Symptoms),
		Notes:    strings.TrimSpace(e.Notes),
	}, nil
}

// Clone returns a deep copy of e.
func (e DayEntry) Clone() DayEntry {
	e.Symptoms = append([]string{}, e.Symptoms...)
	return e
}

// DayView is the read model of a single date, whether or not it was logged.
type DayView struct {
	Date     string   `json:"date"`
	IsPeriod bool     `json:"isPeriod"`
	Flow     Flow     `json:"flow"`
	Symptoms []string `json:"symptoms"`
	Notes    string   `json:"notes"`
}

// ViewOf builds the view of date from its entry, if any.
func ViewOf(date string, e *DayEntry) DayView {
	if e == nil {
		return DayView{Date: date, Flow: FlowNone, Symptoms: []string{}}
	}
	return DayView{
		Date:     date,
		IsPeriod: e.Flow.IsPeriod(),
		Flow:     e.Flow,
		Symptoms: append([]string{}, e.Symptoms...),
		Notes:    e.Notes,
	}
}

// NormalizeSymptoms trims each label, drops empties and removes labels that
// are equal under Unicode case folding. The first spelling and the original
// order are kept. The result is never nil.
func NormalizeSymptoms(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = norm.NFC.String(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		k := symptomKey(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// HasSymptom reports whether label is in set, ignoring case.
func HasSymptom(set []string, label string) bool {
	k := symptomKey(norm.NFC.String(strings.TrimSpace(label)))
	for _, s := range set {
		if symptomKey(s) == k {
			return true
		}
	}
	return false
}

// Casers are stateful, so each call gets its own.
func symptomKey(s string) string {
	return cases.Fold().String(s)
}
