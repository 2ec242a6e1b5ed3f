package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// SchemaVersion is the version stamped on every persisted aggregate.
const SchemaVersion = "1.0.0"

// AppData is the root aggregate persisted in the durable slot. Cycles is a
// cache of DeriveCycles(Entries) and is never read back as input.
type AppData struct {
	Profile       Profile    `json:"profile"`
	Entries       []DayEntry `json:"entries"`
	Cycles        []Cycle    `json:"cycles"`
	SchemaVersion string     `json:"schemaVersion"`
}

// NewAppData returns the empty aggregate of a fresh installation.
func NewAppData(now time.Time) AppData {
	return AppData{
		Profile:       DefaultProfile(now),
		Entries:       []DayEntry{},
		Cycles:        []Cycle{},
		SchemaVersion: SchemaVersion,
	}
}

// Clone returns a deep copy of d.
func (d AppData) Clone() AppData {
	out := d
	out.Profile = d.Profile.Clone()
	out.Entries = make([]DayEntry, len(d.Entries))
	for i, e := range d.Entries {
		out.Entries[i] = e.Clone()
	}
	out.Cycles = append([]Cycle{}, d.Cycles...)
	return out
}

// Snapshot is the export envelope.
type Snapshot struct {
	ExportDate time.Time `json:"exportDate"`
	Data       AppData   `json:"data"`
}

// EncodeSnapshot serializes d inside an export envelope stamped at exportDate.
func EncodeSnapshot(d AppData, exportDate time.Time) ([]byte, error) {
	return json.MarshalIndent(Snapshot{ExportDate: exportDate.UTC(), Data: d}, "", "  ")
}

// appDataWire mirrors AppData loosely so missing or legacy fields can be
// told apart from zero values. Periods and Version are the field names used
// by the first release.
type appDataWire struct {
	Profile       json.RawMessage `json:"profile"`
	Entries       json.RawMessage `json:"entries"`
	Periods       json.RawMessage `json:"periods"`
	SchemaVersion string          `json:"schemaVersion"`
	Version       string          `json:"version"`
}

// DecodeAppData decodes a persisted aggregate, merging whatever fields are
// present over the defaults. Entries that fail validation are dropped and
// out-of-bounds profile lengths fall back to their defaults. It only fails
// when raw is not a JSON object. migrated reports a schema version mismatch.
func DecodeAppData(raw []byte, now time.Time) (data AppData, migrated bool, err error) {
	var w appDataWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return AppData{}, false, fmt.Errorf("decode app data: %w", err)
	}
	version := w.SchemaVersion
	if version == "" {
		version = w.Version
	}

	data = NewAppData(now)
	if p, err := decodeProfile(w.Profile, now); err == nil {
		if p.Validate() != nil {
			def := DefaultProfile(now)
			if p.AverageCycleLength < MinCycleLength || p.AverageCycleLength > MaxCycleLength {
				p.AverageCycleLength = def.AverageCycleLength
			}
			if p.AveragePeriodLength < MinPeriodLength || p.AveragePeriodLength > MaxPeriodLength {
				p.AveragePeriodLength = def.AveragePeriodLength
			}
		}
		p.Symptoms = NormalizeSymptoms(p.Symptoms)
		data.Profile = p
	}

	rawEntries := w.Entries
	if isAbsent(rawEntries) {
		rawEntries = w.Periods
	}
	if entries, err := decodeEntries(rawEntries); err == nil {
		kept := entries[:0]
		for _, e := range entries {
			if n, err := e.Normalize(); err == nil {
				kept = append(kept, n)
			}
		}
		data.Entries = SortEntries(kept)
	}
	data.Cycles = DeriveCycles(data.Entries)
	return data, version != SchemaVersion, nil
}

// DecodeSnapshot decodes an import payload: either an export envelope or a
// bare aggregate. Both profile and entries must be present, every entry must
// be valid and the profile must be within bounds; otherwise the error wraps
// ErrInvalidSnapshot.
func DecodeSnapshot(raw []byte, now time.Time) (AppData, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil || root == nil {
		return AppData{}, fmt.Errorf("%w: not a JSON object", ErrInvalidSnapshot)
	}
	if inner, ok := root["data"]; ok {
		root = nil
		if err := json.Unmarshal(inner, &root); err != nil || root == nil {
			return AppData{}, fmt.Errorf("%w: data is not an object", ErrInvalidSnapshot)
		}
	}
	if isAbsent(root["profile"]) {
		return AppData{}, fmt.Errorf("%w: missing profile", ErrInvalidSnapshot)
	}
	if isAbsent(root["entries"]) {
		return AppData{}, fmt.Errorf("%w: missing entries", ErrInvalidSnapshot)
	}

	profile, err := decodeProfile(root["profile"], now)
	if err != nil {
		return AppData{}, fmt.Errorf("%w: profile: %v", ErrInvalidSnapshot, err)
	}
	if err := profile.Validate(); err != nil {
		return AppData{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	profile.Symptoms = NormalizeSymptoms(profile.Symptoms)

	entries, err := decodeEntries(root["entries"])
	if err != nil {
		return AppData{}, fmt.Errorf("%w: entries: %v", ErrInvalidSnapshot, err)
	}
	for i, e := range entries {
		n, err := e.Normalize()
		if err != nil {
			return AppData{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		entries[i] = n
	}

	data := NewAppData(now)
	data.Profile = profile
	data.Entries = SortEntries(entries)
	data.Cycles = DeriveCycles(data.Entries)
	return data, nil
}

// SortEntries orders entries ascending by date and keeps the last entry
// seen for a repeated date.
func SortEntries(entries []DayEntry) []DayEntry {
	byDate := make(map[string]int, len(entries))
	out := make([]DayEntry, 0, len(entries))
	for _, e := range entries {
		if i, ok := byDate[e.Date]; ok {
			out[i] = e
			continue
		}
		byDate[e.Date] = len(out)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func decodeProfile(raw json.RawMessage, now time.Time) (Profile, error) {
	p := DefaultProfile(now)
	if isAbsent(raw) {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, err
	}
	if p.Symptoms == nil {
		p.Symptoms = []string{}
	}
	return p, nil
}

// decodeEntries accepts either a list of entries or an object keyed by date.
func decodeEntries(raw json.RawMessage) ([]DayEntry, error) {
	if isAbsent(raw) {
		return []DayEntry{}, nil
	}
	var list []DayEntry
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var byDate map[string]DayEntry
	if err := json.Unmarshal(raw, &byDate); err != nil {
		return nil, fmt.Errorf("expected a list or an object keyed by date")
	}
	list = make([]DayEntry, 0, len(byDate))
	for date, e := range byDate {
		if e.Date == "" {
			e.Date = date
		}
		list = append(list, e)
	}
	return list, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
