// Package app holds the application services and business logic.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"periodtracker/internal/domain"
)

// DayLog owns the AppData aggregate for the lifetime of the process. It
// loads the durable slot lazily on first access, writes the whole aggregate
// back after every mutation and broadcasts EventDataUpdated afterwards.
//
// Storage failures are logged and never returned: the in-memory state stays
// authoritative for the rest of the session.
type DayLog struct {
	slot   domain.SlotStore
	key    string
	now    func() time.Time
	logger *slog.Logger
	events *Notifier

	mu     sync.Mutex
	loaded bool
	data   domain.AppData
	// readFailed is set when the slot could not be read. The stored blob may
	// still be intact, so writes are held back until the aggregate is
	// replaced wholesale.
	readFailed bool
}

// NewDayLog creates a DayLog backed by slot. A nil logger uses slog.Default.
func NewDayLog(slot domain.SlotStore, logger *slog.Logger) *DayLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &DayLog{
		slot:   slot,
		key:    domain.DefaultSlotKey,
		now:    time.Now,
		logger: logger,
		events: NewNotifier(),
	}
}

// WithClock replaces the clock used for timestamps and "today".
func (s *DayLog) WithClock(now func() time.Time) *DayLog {
	s.now = now
	return s
}

// WithKey replaces the durable slot key.
func (s *DayLog) WithKey(key string) *DayLog {
	if key != "" {
		s.key = key
	}
	return s
}

// Subscribe registers fn for EventDataUpdated.
func (s *DayLog) Subscribe(fn func()) (unsubscribe func()) {
	return s.events.Subscribe(fn)
}

// Today returns the current calendar date.
func (s *DayLog) Today() string {
	return domain.FormatDate(s.now())
}

// Load reads the durable slot if it has not been read yet.
func (s *DayLog) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
}

// Snapshot returns a deep copy of the whole aggregate.
func (s *DayLog) Snapshot(ctx context.Context) domain.AppData {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	return s.data.Clone()
}

// Profile returns a copy of the profile.
func (s *DayLog) Profile(ctx context.Context) domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	return s.data.Profile.Clone()
}

// UpdateProfile validates u and merges its set fields into the profile.
func (s *DayLog) UpdateProfile(ctx context.Context, u domain.ProfileUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, func() (bool, error) {
		s.data.Profile = u.Apply(s.data.Profile)
		return true, nil
	})
}

// AddSymptom appends label to the symptom vocabulary unless an equal label
// (ignoring case) is already there.
func (s *DayLog) AddSymptom(ctx context.Context, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return fmt.Errorf("%w: symptom label is empty", domain.ErrInvalidProfile)
	}
	return s.mutate(ctx, func() (bool, error) {
		if domain.HasSymptom(s.data.Profile.Symptoms, label) {
			return false, nil
		}
		s.data.Profile.Symptoms = domain.NormalizeSymptoms(append(s.data.Profile.Symptoms, label))
		return true, nil
	})
}

// Entries returns a copy of all entries, ascending by date.
func (s *DayLog) Entries(ctx context.Context) []domain.DayEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	out := make([]domain.DayEntry, len(s.data.Entries))
	for i, e := range s.data.Entries {
		out[i] = e.Clone()
	}
	return out
}

// Entry returns a copy of the entry for date.
func (s *DayLog) Entry(ctx context.Context, date string) (domain.DayEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	i, ok := s.find(date)
	if !ok {
		return domain.DayEntry{}, false
	}
	return s.data.Entries[i].Clone(), true
}

// Day returns the view of date, logged or not.
func (s *DayLog) Day(ctx context.Context, date string) domain.DayView {
	e, ok := s.Entry(ctx, date)
	if !ok {
		return domain.ViewOf(date, nil)
	}
	return domain.ViewOf(date, &e)
}

// IsDayInPeriod reports whether date holds a flow-day.
func (s *DayLog) IsDayInPeriod(ctx context.Context, date string) bool {
	e, ok := s.Entry(ctx, date)
	return ok && e.Flow.IsPeriod()
}

// UpsertEntry stores e, replacing any entry for the same date entirely.
func (s *DayLog) UpsertEntry(ctx context.Context, e domain.DayEntry) error {
	e, err := e.Normalize()
	if err != nil {
		return err
	}
	return s.mutate(ctx, func() (bool, error) {
		i, ok := s.find(e.Date)
		if ok {
			s.data.Entries[i] = e
			return true, nil
		}
		s.data.Entries = append(s.data.Entries, domain.DayEntry{})
		copy(s.data.Entries[i+1:], s.data.Entries[i:])
		s.data.Entries[i] = e
		return true, nil
	})
}

// RemoveEntry deletes the entry for date. Removing an absent date is a no-op.
func (s *DayLog) RemoveEntry(ctx context.Context, date string) error {
	date = strings.TrimSpace(date)
	if _, err := domain.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidEntry, err)
	}
	return s.mutate(ctx, func() (bool, error) {
		i, ok := s.find(date)
		if !ok {
			return false, nil
		}
		s.data.Entries = append(s.data.Entries[:i], s.data.Entries[i+1:]...)
		return true, nil
	})
}

// Cycles returns a copy of the derived cycles.
func (s *DayLog) Cycles(ctx context.Context) []domain.Cycle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	return append([]domain.Cycle{}, s.data.Cycles...)
}

// CycleSummary aggregates the derived cycles.
func (s *DayLog) CycleSummary(ctx context.Context) domain.CycleSummary {
	return domain.SummarizeCycles(s.Cycles(ctx))
}

// Stats computes the dashboard figures for today.
func (s *DayLog) Stats(ctx context.Context) domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	return domain.ComputeStats(s.data.Entries, s.data.Cycles, s.data.Profile, s.now())
}

// Export serializes the aggregate inside an export envelope.
func (s *DayLog) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	return domain.EncodeSnapshot(s.data, s.now())
}

// ExportFileName is the suggested file name for an export made now.
func (s *DayLog) ExportFileName() string {
	return "period-tracker-export-" + s.Today() + ".json"
}

// Import replaces the aggregate with the one in raw. A rejected payload
// returns an error wrapping domain.ErrInvalidSnapshot and leaves the current
// state untouched.
func (s *DayLog) Import(ctx context.Context, raw []byte) error {
	data, err := domain.DecodeSnapshot(raw, s.now())
	if err != nil {
		s.logger.Warn("import rejected", "error", err)
		return err
	}
	return s.mutate(ctx, func() (bool, error) {
		s.data = data
		s.readFailed = false
		return true, nil
	})
}

// Clear resets the aggregate to its defaults and persists them.
func (s *DayLog) Clear(ctx context.Context) {
	_ = s.mutate(ctx, func() (bool, error) {
		s.data = domain.NewAppData(s.now())
		s.readFailed = false
		return true, nil
	})
}

// Purge deletes the durable slot and resets the in-memory aggregate without
// writing it back.
func (s *DayLog) Purge(ctx context.Context) {
	s.mu.Lock()
	if err := s.slot.Delete(ctx, s.key); err != nil {
		s.logger.Error("storage delete failed", "key", s.key, "error", err)
	}
	s.data = domain.NewAppData(s.now())
	s.loaded = true
	s.readFailed = false
	s.mu.Unlock()

	s.events.Publish()
}

// mutate runs fn under the lock. When fn reports a change, cycles are
// rebuilt from scratch, the aggregate is persisted and listeners are
// notified once the lock is released.
func (s *DayLog) mutate(ctx context.Context, fn func() (bool, error)) error {
	s.mu.Lock()
	s.ensureLoaded(ctx)
	changed, err := fn()
	if err == nil && changed {
		s.data.Cycles = domain.DeriveCycles(s.data.Entries)
		s.persist(ctx)
	}
	s.mu.Unlock()

	if err == nil && changed {
		s.events.Publish()
	}
	return err
}

// find returns the index of date, or the index it would be inserted at.
func (s *DayLog) find(date string) (int, bool) {
	i := sort.Search(len(s.data.Entries), func(i int) bool {
		return s.data.Entries[i].Date >= date
	})
	return i, i < len(s.data.Entries) && s.data.Entries[i].Date == date
}

func (s *DayLog) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.data = s.read(ctx)
	s.loaded = true
}

func (s *DayLog) read(ctx context.Context) domain.AppData {
	now := s.now()
	raw, err := s.slot.Get(ctx, s.key)
	if err != nil {
		s.logger.Error("storage read failed, starting from defaults", "key", s.key, "error", err)
		s.readFailed = true
		return domain.NewAppData(now)
	}
	if raw == nil {
		return domain.NewAppData(now)
	}
	data, migrated, err := domain.DecodeAppData(raw, now)
	if err != nil {
		s.logger.Error("stored data is corrupt, starting from defaults", "key", s.key, "error", err)
		return domain.NewAppData(now)
	}
	if migrated {
		s.logger.Info("migrated stored data", "key", s.key, "schemaVersion", domain.SchemaVersion)
	}
	return data
}

func (s *DayLog) persist(ctx context.Context) {
	s.data.Profile.LastUpdated = s.now().UTC()
	s.data.SchemaVersion = domain.SchemaVersion

	if s.readFailed {
		s.logger.Warn("storage write skipped after failed read", "key", s.key)
		return
	}

	raw, err := json.Marshal(s.data)
	if err != nil {
		s.logger.Error("encode app data", "error", err)
		return
	}
	if err := s.slot.Set(ctx, s.key, raw); err != nil {
		s.logger.Error("storage write failed", "key", s.key, "error", err)
	}
}
