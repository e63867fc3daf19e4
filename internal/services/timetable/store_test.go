package timetable

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir(), "timetable", FormatJSON, arbor.NewLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store
}

func TestNewRejectsUnsupportedFormat(t *testing.T) {
	_, err := New(t.TempDir(), "timetable", "yaml", arbor.NewLogger())
	if !models.IsKind(err, models.ErrUnsupportedFormat) {
		t.Fatalf("New() = %v, want ErrUnsupportedFormat", err)
	}
}

func TestNewCreatesEmptyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store, err := New(dir, "timetable", FormatJSON, arbor.NewLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	entries, err := store.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("fresh store has %d entries, want 0", len(entries))
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("reading backing file: %v", err)
	}
	var decoded []models.ScheduleEntry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Errorf("backing file is not valid JSON: %v", err)
	}
}

func TestAddKeepsEntriesSorted(t *testing.T) {
	store := newTestStore(t)

	for _, entry := range []models.ScheduleEntry{
		{Time: "18:00", Query: "golang"},
		{Time: "09:30", Query: "python"},
		{Time: "12:15", Query: "rust"},
	} {
		if err := store.Add(entry); err != nil {
			t.Fatalf("Add(%v) error = %v", entry, err)
		}
	}

	entries, err := store.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := []string{"09:30", "12:15", "18:00"}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, tm := range want {
		if entries[i].Time != tm {
			t.Errorf("entries[%d].Time = %q, want %q", i, entries[i].Time, tm)
		}
	}
}

func TestAddStableOrderForEqualTimes(t *testing.T) {
	store := newTestStore(t)

	if err := store.AddBatch([]models.ScheduleEntry{
		{Time: "09:30", Query: "first"},
		{Time: "09:30", Query: "second"},
	}); err != nil {
		t.Fatalf("AddBatch() error = %v", err)
	}
	if err := store.Add(models.ScheduleEntry{Time: "09:30", Query: "third"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	entries, _ := store.Get()
	want := []string{"first", "second", "third"}
	for i, q := range want {
		if entries[i].Query != q {
			t.Errorf("entries[%d].Query = %q, want %q", i, entries[i].Query, q)
		}
	}
}

func TestAddInvalidEntryLeavesStoreUnchanged(t *testing.T) {
	store := newTestStore(t)

	if err := store.Add(models.ScheduleEntry{Time: "09:30", Query: "golang"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	err := store.Add(models.ScheduleEntry{Time: "9:30", Query: "python"})
	if !models.IsKind(err, models.ErrWrongTimeFormat) {
		t.Fatalf("Add() = %v, want ErrWrongTimeFormat", err)
	}

	entries, _ := store.Get()
	if len(entries) != 1 || entries[0].Query != "golang" {
		t.Errorf("store changed after rejected add: %+v", entries)
	}
}

func TestAddBatchRejectsWholeBatch(t *testing.T) {
	store := newTestStore(t)

	err := store.AddBatch([]models.ScheduleEntry{
		{Time: "09:30", Query: "ok"},
		{Time: "", Query: "broken"},
	})
	if !models.IsKind(err, models.ErrMissingTime) {
		t.Fatalf("AddBatch() = %v, want ErrMissingTime", err)
	}

	entries, _ := store.Get()
	if len(entries) != 0 {
		t.Errorf("store has %d entries after rejected batch, want 0", len(entries))
	}
}

func TestRemoveMatchesQueryAndTime(t *testing.T) {
	store := newTestStore(t)

	if err := store.AddBatch([]models.ScheduleEntry{
		{Time: "09:30", Query: "golang"},
		{Time: "09:30", Query: "python"},
		{Time: "12:00", Query: "golang"},
	}); err != nil {
		t.Fatalf("AddBatch() error = %v", err)
	}

	if err := store.Remove(models.ScheduleEntry{Time: "09:30", Query: "golang"}); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	entries, _ := store.Get()
	if len(entries) != 2 {
		t.Fatalf("got %d entries after remove, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Query == "golang" && e.Time == "09:30" {
			t.Error("removed entry still present")
		}
	}
}

func TestRemoveDeletesAllDuplicates(t *testing.T) {
	store := newTestStore(t)

	// Duplicate (query, time) pairs are legal in the file; Remove must
	// clear every one of them, not just the first.
	if err := store.AddBatch([]models.ScheduleEntry{
		{Time: "09:30", Query: "golang"},
		{Time: "09:30", Query: "golang"},
		{Time: "10:00", Query: "python"},
	}); err != nil {
		t.Fatalf("AddBatch() error = %v", err)
	}

	if err := store.Remove(models.ScheduleEntry{Time: "09:30", Query: "golang"}); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	entries, _ := store.Get()
	if len(entries) != 1 || entries[0].Query != "python" {
		t.Errorf("got %+v after remove, want only python", entries)
	}
}

func TestRemoveAbsentEntryIsNoOp(t *testing.T) {
	store := newTestStore(t)

	if err := store.Add(models.ScheduleEntry{Time: "09:30", Query: "golang"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := store.Remove(models.ScheduleEntry{Time: "23:00", Query: "nothing"}); err != nil {
		t.Fatalf("Remove() of absent entry = %v, want nil", err)
	}

	entries, _ := store.Get()
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}
}

func TestGetTreatsCorruptFileAsEmpty(t *testing.T) {
	store := newTestStore(t)

	if err := os.WriteFile(store.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatalf("corrupting file: %v", err)
	}

	entries, err := store.Get()
	if err != nil {
		t.Fatalf("Get() error = %v, want graceful degradation", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries from corrupt file, want 0", len(entries))
	}
}

func TestGetRecreatesDeletedFile(t *testing.T) {
	store := newTestStore(t)

	if err := os.Remove(store.Path()); err != nil {
		t.Fatalf("deleting file: %v", err)
	}

	entries, err := store.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
	if _, err := os.Stat(store.Path()); err != nil {
		t.Errorf("backing file not recreated: %v", err)
	}
}

func TestSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, "timetable", FormatJSON, arbor.NewLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.Add(models.ScheduleEntry{Time: "09:30", Query: "golang", API: "hh"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	reopened, err := New(dir, "timetable", FormatJSON, arbor.NewLogger())
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	entries, _ := reopened.Get()
	if len(entries) != 1 || entries[0].Query != "golang" {
		t.Errorf("reopened store = %+v, want the persisted entry", entries)
	}
}
