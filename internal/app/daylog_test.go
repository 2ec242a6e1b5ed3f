package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"periodtracker/internal/adapter/memory"
	"periodtracker/internal/app"
	"periodtracker/internal/domain"
)

type mockSlot struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte) error
	delFn func(ctx context.Context, key string) error
}

func (m *mockSlot) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockSlot) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockSlot) Delete(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

var testNow = time.Date(2024, 1, 25, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLog(t *testing.T, slot domain.SlotStore) *app.DayLog {
	t.Helper()
	if slot == nil {
		slot = memory.New()
	}
	return app.NewDayLog(slot, discardLogger()).WithClock(func() time.Time { return testNow })
}

func entry(date string, flow domain.Flow, symptoms ...string) domain.DayEntry {
	return domain.DayEntry{Date: date, Flow: flow, Symptoms: symptoms}
}

func TestUpsertEntry_SortedAndUnique(t *testing.T) {
	ctx := context.Background()
	s := newTestLog(t, nil)

	rng := rand.New(rand.NewSource(7))
	dates := []string{"2024-01-01", "2024-01-03", "2024-01-10", "2024-02-01", "2023-12-30"}
	flows := []domain.Flow{domain.FlowNone, domain.FlowLight, domain.FlowMedium, domain.FlowHeavy}

	for i := 0; i < 200; i++ {
		d := dates[rng.Intn(len(dates))]
		if rng.Intn(4) == 0 {
			require.NoError(t, s.RemoveEntry(ctx, d))
		} else {
			require.NoError(t, s.UpsertEntry(ctx, entry(d, flows[rng.Intn(len(flows))])))
		}

		got := s.Entries(ctx)
		for j := 1; j < len(got); j++ {
			require.Less(t, got[j-1].Date, got[j].Date, "entries must be strictly ascending")
		}
		assert.Equal(t, domain.DeriveCycles(got), s.Cycles(ctx), "cycles must follow entries")
	}
}

func TestUpsertEntry_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestLog(t, nil)

	e := entry("2024-01-05", domain.FlowHeavy, "Cramps")
	require.NoError(t, s.UpsertEntry(ctx, e))
	require.NoError(t, s.UpsertEntry(ctx, e))

	got := s.Entries(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-05", got[0].Date)
}

func TestUpsertEntry_ReplacesWholeEntry(t *testing.T) {
	ctx := context.Background()
	s := newTestLog(t, nil)

	first := entry("2024-01-05", domain.FlowHeavy, "Cramps")
	first.Notes = "bad day"
	require.NoError(t, s.UpsertEntry(ctx, first))
	require.NoError(t, s.UpsertEntry(ctx, entry("2024-01-05", domain.FlowLight)))

	got, ok := s.Entry(ctx, "2024-01-05")
	require.True(t, ok)
	assert.Equal(t, domain.FlowLight, got.Flow)
	assert.Empty(t, got.Symptoms)
	assert.Empty(t, got.Notes, "replace must not merge old fields")
}

func TestUpsertEntry_Invalid(t *testing.T) {
	ctx := context.Background()
	s := newTestLog(t, nil)

	err := s.UpsertEntry(ctx, entry("2024-02-30", domain.FlowLight))
	assert.ErrorIs(t, err, domain.ErrInvalidEntry)
	err = s.UpsertEntry(ctx, entry("2024-02-01", "torrent"))
	assert.ErrorIs(t, err, domain.ErrInvalidEntry)
	assert.Empty(t, s.Entries(ctx))
}

func TestRemoveEntry_AbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	writes := 0
	slot := &mockSlot{setFn: func(context.Context, string, []byte) error { writes++; return nil }}
	s := newTestLog(t, slot)

	events := 0
	s.Subscribe(func() { events++ })

	require.NoError(t, s.RemoveEntry(ctx, "2024-01-01"))
	assert.Zero(t, writes)
	assert.Zero(t, events)

	assert.ErrorIs(t, s.RemoveEntry(ctx, "yesterday"), domain.ErrInvalidEntry)
}

func TestEntries_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestLog(t, nil)
	require.NoError(t, s.UpsertEntry(ctx, entry("2024-01-01", domain.FlowLight, "Acne")))

	got := s.Entries(ctx)
	got[0].Symptoms[0] = "mutated"
	got[0].Flow = domain.FlowHeavy

	again, _ := s.Entry(ctx, "2024-01-01")
	assert.Equal(t, domain.FlowLight, again.Flow)
	assert.Equal(t, []string{"Acne"}, again.Symptoms)

	p := s.Profile(ctx)
	p.Symptoms[0] = "mutated"
	assert.Equal(t, "Cramps", s.Profile(ctx).Symptoms[0])
}

func TestIsDayInPeriod(t *testing.T) {
	ctx := context.Background()
	s := newTestLog(t, nil)
	require.NoError(t, s.UpsertEntry(ctx, entry("2024-01-01", domain.FlowMedium)))
	require.NoError(t, s.UpsertEntry(ctx, entry("2024-01-02", domain.FlowNone, "Fatigue")))

	assert.True(t, s.IsDayInPeriod(ctx, "2024-01-01"))
	assert.False(t, s.IsDayInPeriod(ctx, "2024-01-02"))
	assert.False(t, s.IsDayInPeriod(ctx, "2024-01-03"))

	v := s.Day(ctx, "2024-01-02")
	assert.False(t, v.IsPeriod)
	assert.Equal(t, []string{"Fatigue"}, v.Symptoms)
}

func TestPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	slot := memory.New()

	s := newTestLog(t, slot)
	require.NoError(t, s.UpsertEntry(ctx, entry("2024-01-01", domain.FlowHeavy)))
	require.NoError(t, s.UpsertEntry(ctx, entry("2024-01-20", domain.FlowHeavy)))
	cl := 30
	require.NoError(t, s.UpdateProfile(ctx, domain.ProfileUpdate{AverageCycleLength: &cl}))

	reopened := newTestLog(t, slot)
	assert.Equal(t, s.Snapshot(ctx), reopened.Snapshot(ctx))
	assert.Len(t, reopened.Cycles(ctx), 2)
}

func TestLoad_IsLazy(t *testing.T) {
	reads := 0
	slot := &mockSlot{getFn: func(context.Context, string) ([]byte, error) { reads++; return nil, nil }}
	s := newTestLog(t, slot)
	assert.Zero(t, reads)

	s.Load(context.Background())
	s.Entries(context.Background())
	s.Profile(context.Background())
	assert.Equal(t, 1, reads)
}

func TestLoad_FailuresFallBackToDefaults(t *testing.T) {
	tests := []struct {
		name string
		get  func(context.Context, string) ([]byte, error)
	}{
		{"read error", func(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }},
		{"corrupt blob", func(context.Context, string) ([]byte, error) { return []byte("{{{"), nil }},
		{"absent", func(context.Context, string) ([]byte, error) { return nil, nil }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestLog(t, &mockSlot{getFn: tc.get})
			data := s.Snapshot(context.Background())
			assert.Equal(t, domain.NewAppData(testNow), data)
		})
	}
}

func TestLoad_ReadErrorKeepsStoredData(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seed := newTestLog(t, store)
	require.NoError(t, seed.UpsertEntry(ctx, entry("2024-01-01", domain.FlowHeavy)))

	var logs bytes.Buffer
	failOnce := true
	flaky := &mockSlot{
		getFn: func(ctx context.Context, key string) ([]byte, error) {
			if failOnce {
				failOnce = false
				return nil, errors.New("database is locked")
			}
			return store.Get(ctx, key)
		},
		setFn: store.Set,
		delFn: store.Delete,
	}
	s := app.NewDayLog(flaky, slog.New(slog.NewTextHandler(&logs, nil))).
		WithClock(func() time.Time { return testNow })

	require.NoError(t, s.UpsertEntry(ctx, entry("2024-02-01", domain.FlowLight)))
	assert.Len(t, s.Entries(ctx), 1, "in-memory state stays authoritative")
	assert.Contains(t, logs.String(), "storage write skipped after failed read")

	entries := newTestLog(t, store).Entries(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-01-01", entries[0].Date)
	assert.Equal(t, domain.FlowHeavy, entries[0].Flow)
}

func TestLoad_ReadErrorThenImportPersists(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seed := newTestLog(t, store)
	require.NoError(t, seed.UpsertEntry(ctx, entry("2024-01-01", domain.FlowHeavy)))
	payload, err := seed.Export(ctx)
	require.NoError(t, err)

	flaky := &mockSlot{
		getFn: func(context.Context, string) ([]byte, error) { return nil, errors.New("timeout") },
		setFn: store.Set,
	}
	s := newTestLog(t, flaky)
	require.NoError(t, s.RemoveEntry(ctx, "2024-01-01"))
	require.NoError(t, s.Import(ctx, payload))
	require.NoError(t, s.UpsertEntry(ctx, entry("2024-01-02", domain.FlowMedium)))

	entries := newTestLog(t, store).Entries(ctx)
	require.Len(t, entries, 2)
	assert.Equal(t, "2024-01-02", entries[1].Date)
}

func TestWriteFailure_IsLoggedNotReturned(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	slot := &mockSlot{setFn: func(context.Context, string, []byte) error { return errors.New("quota exceeded") }}
	s := app.NewDayLog(slot, slog.New(slog.NewTextHandler(&logs, nil))).
		WithClock(func() time.Time { return testNow })

	events := 0
	s.Subscribe(func() { events++ })

	require.NoError(t, s.UpsertEntry(ctx, entry("2024-01-01", domain.FlowLight)))
	assert.Len(t, s.Entries(ctx), 1, "in-memory state stays authoritative")
	assert.Equal(t, 1, events)
	assert.Contains(t, logs.String(), "storage write failed")
	assert.Contains(t, logs.String(), "quota exceeded")
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	now := testNow
	s := app.NewDayLog(memory.New(), discardLogger()).WithClock(func() time.Time { return now })

	created := s.Profile(ctx).CreatedAt

	bad := 40
	err := s.UpdateProfile(ctx, domain.ProfileUpdate{AverageCycleLength: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)
	assert.Equal(t, domain.DefaultCycleLength, s.Profile(ctx).AverageCycleLength)

	now = now.Add(time.Hour)
	good := 31
	require.NoError(t, s.UpdateProfile(ctx, domain.ProfileUpdate{AverageCycleLength: &good}))
	p := s.Profile(ctx)
	assert.Equal(t, 31, p.AverageCycleLength)
	assert.Equal(t, domain.DefaultPeriodLength, p.AveragePeriodLength)
	assert.Equal(t, created, p.CreatedAt)
	assert.Equal(t, now, p.LastUpdated)
}

func TestAddSymptom(t *testing.T) {
	ctx := context.Background()
	s := newTestLog(t, nil)
	events := 0
	s.Subscribe(func() { events++ })

	require.NoError(t, s.AddSymptom(ctx, "Dizziness"))
	require.NoError(t, s.AddSymptom(ctx, "dizziness "))
	assert.ErrorIs(t, s.AddSymptom(ctx, "   "), domain.ErrInvalidProfile)

	syms := s.Profile(ctx).Symptoms
	assert.Equal(t, "Dizziness", syms[len(syms)-1])
	assert.Len(t, syms, len(domain.DefaultSymptoms)+1)
	assert.Equal(t, 1, events)
}

func TestImport_RejectsWithoutEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestLog(t, nil)
	require.NoError(t, s.UpsertEntry(ctx, entry("2024-01-01", domain.FlowLight)))
	before := s.Snapshot(ctx)

	events := 0
	s.Subscribe(func() { events++ })

	err := s.Import(ctx, []byte(`{"exportDate":"2024-01-01T00:00:00Z","data":{"profile":{}}}`))
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
	assert.Equal(t, before, s.Snapshot(ctx))
	assert.Zero(t, events)

	assert.Error(t, s.Import(ctx, []byte("not json")))
	assert.Equal(t, before, s.Snapshot(ctx))
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestLog(t, nil)
	require.NoError(t, src.UpsertEntry(ctx, entry("2024-01-01", domain.FlowHeavy, "Cramps")))
	require.NoError(t, src.UpsertEntry(ctx, entry("2024-01-02", domain.FlowMedium)))
	require.NoError(t, src.UpsertEntry(ctx, entry("2024-01-29", domain.FlowLight)))
	require.NoError(t, src.AddSymptom(ctx, "Dizziness"))

	raw, err := src.Export(ctx)
	require.NoError(t, err)

	dst := newTestLog(t, nil)
	require.NoError(t, dst.UpsertEntry(ctx, entry("2023-05-05", domain.FlowLight)))
	require.NoError(t, dst.Import(ctx, raw))

	assert.Equal(t, src.Snapshot(ctx), dst.Snapshot(ctx))
}

func TestImport_BareAppDataRecomputesCycles(t *testing.T) {
	ctx := context.Background()
	s := newTestLog(t, nil)

	raw := []byte(`{
		"profile": {"averageCycleLength": 30},
		"entries": [
			{"date": "2024-01-20", "flow": "light", "symptoms": []},
			{"date": "2024-01-01", "flow": "heavy", "symptoms": []}
		],
		"cycles": [{"startDate": "1999-01-01"}]
	}`)
	require.NoError(t, s.Import(ctx, raw))

	cycles := s.Cycles(ctx)
	require.Len(t, cycles, 2)
	assert.Equal(t, "2024-01-01", cycles[0].StartDate)
	assert.Equal(t, "2024-01-20", cycles[1].StartDate)
	assert.Equal(t, domain.SchemaVersion, s.Snapshot(ctx).SchemaVersion)
}

func TestClearAndPurge(t *testing.T) {
	ctx := context.Background()
	slot := memory.New()
	s := newTestLog(t, slot)
	require.NoError(t, s.UpsertEntry(ctx, entry("2024-01-01", domain.FlowLight)))

	s.Clear(ctx)
	assert.Empty(t, s.Entries(ctx))
	assert.Empty(t, s.Cycles(ctx))
	assert.Equal(t, 1, slot.Len(), "clear writes the defaults back")

	s.Purge(ctx)
	assert.Zero(t, slot.Len(), "purge deletes the slot")
	assert.Empty(t, s.Entries(ctx))
}

func TestStats_Prediction(t *testing.T) {
	ctx := context.Background()
	s := newTestLog(t, nil)

	st := s.Stats(ctx)
	assert.Nil(t, st.DaysSinceLastPeriod)
	assert.Nil(t, st.CurrentCycleDay)
	assert.Nil(t, st.NextPredictedPeriod)

	cl := 30
	require.NoError(t, s.UpdateProfile(ctx, domain.ProfileUpdate{AverageCycleLength: &cl}))
	require.NoError(t, s.UpsertEntry(ctx, entry("2024-01-01", domain.FlowHeavy)))

	st = s.Stats(ctx)
	require.NotNil(t, st.NextPredictedPeriod)
	assert.Equal(t, "2024-01-31", *st.NextPredictedPeriod)
	require.NotNil(t, st.DaysUntilNextPeriod)
	assert.Equal(t, 6, *st.DaysUntilNextPeriod)
	assert.Equal(t, "2024-01-25", s.Today())
}

func TestNotifications_OncePerMutation(t *testing.T) {
	ctx := context.Background()
	s := newTestLog(t, nil)

	var a, b int
	unsubA := s.Subscribe(func() { a++ })
	s.Subscribe(func() { b++ })

	require.NoError(t, s.UpsertEntry(ctx, entry("2024-01-01", domain.FlowLight)))
	require.NoError(t, s.RemoveEntry(ctx, "2024-01-01"))
	s.Clear(ctx)
	assert.Equal(t, 3, a)
	assert.Equal(t, 3, b)

	unsubA()
	require.NoError(t, s.UpsertEntry(ctx, entry("2024-01-02", domain.FlowLight)))
	assert.Equal(t, 3, a)
	assert.Equal(t, 4, b)
}

func TestNotifications_ListenerMayReadStore(t *testing.T) {
	ctx := context.Background()
	s := newTestLog(t, nil)

	var seen int
	s.Subscribe(func() { seen = len(s.Entries(ctx)) })
	require.NoError(t, s.UpsertEntry(ctx, entry("2024-01-01", domain.FlowLight)))
	assert.Equal(t, 1, seen)
}

func TestExportFileName(t *testing.T) {
	s := newTestLog(t, nil)
	assert.Equal(t, "period-tracker-export-2024-01-25.json", s.ExportFileName())
}

func TestExportFileName_UsesLocalDay(t *testing.T) {
	zone := time.FixedZone("UTC-5", -5*60*60)
	late := time.Date(2024, 1, 25, 21, 0, 0, 0, zone)
	s := app.NewDayLog(memory.New(), discardLogger()).WithClock(func() time.Time { return late })

	assert.Equal(t, "2024-01-25", s.Today())
	assert.Equal(t, "period-tracker-export-"+s.Today()+".json", s.ExportFileName())
}
