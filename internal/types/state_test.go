package types

import (
	"testing"
	"time"
)

func TestUpdateUnitStatusTimestamps(t *testing.T) {
	t.Run("pending to in-progress sets started_at", func(t *testing.T) {
		st := NewProjectState("p")
		st.UpdateUnitStatus("unit-1", StatusInProgress, nil)

		unit := st.Units["unit-1"]
		if unit == nil {
			t.Fatal("expected ledger entry for unit-1")
		}
		if unit.Status != StatusInProgress {
			t.Errorf("status = %q, want in-progress", unit.Status)
		}
		if unit.StartedAt == nil {
			t.Error("started_at not set on first transition into in-progress")
		}
		if unit.CompletedAt != nil {
			t.Error("completed_at should not be set")
		}
	})

	t.Run("completion uses supplied date and backfills started_at", func(t *testing.T) {
		st := NewProjectState("p")
		date := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
		st.UpdateUnitStatus("unit-1", StatusCompleted, &date)

		unit := st.Units["unit-1"]
		if !unit.CompletedAt.Equal(date) {
			t.Errorf("completed_at = %v, want %v", unit.CompletedAt, date)
		}
		if !unit.StartedAt.Equal(date) {
			t.Errorf("started_at = %v, want backfilled %v", unit.StartedAt, date)
		}
	})

	t.Run("started_at preserved when completing after start", func(t *testing.T) {
		st := NewProjectState("p")
		st.UpdateUnitStatus("unit-2", StatusInProgress, nil)
		started := *st.Units["unit-2"].StartedAt

		date := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		st.UpdateUnitStatus("unit-2", StatusCompleted, &date)

		unit := st.Units["unit-2"]
		if !unit.StartedAt.Equal(started) {
			t.Errorf("started_at changed on completion: %v != %v", unit.StartedAt, started)
		}
		if !unit.CompletedAt.Equal(date) {
			t.Errorf("completed_at = %v, want %v", unit.CompletedAt, date)
		}
	})

	t.Run("regression keeps stale timestamps", func(t *testing.T) {
		st := NewProjectState("p")
		st.UpdateUnitStatus("unit-3", StatusCompleted, nil)
		st.UpdateUnitStatus("unit-3", StatusPending, nil)

		unit := st.Units["unit-3"]
		if unit.Status != StatusPending {
			t.Errorf("status = %q, want pending", unit.Status)
		}
		if unit.StartedAt == nil || unit.CompletedAt == nil {
			t.Error("timestamps must not be cleared on regression")
		}
	})
}

func TestSummaryInvariant(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []UnitStatus
		completed  int
		inProgress int
		pending    int
		percentage float64
	}{
		{"empty", nil, 0, 0, 0, 0},
		{"all pending", []UnitStatus{StatusPending, StatusPending}, 0, 0, 2, 0},
		{"mixed", []UnitStatus{StatusCompleted, StatusInProgress, StatusPending, StatusCompleted}, 2, 1, 1, 50},
		{"all done", []UnitStatus{StatusCompleted}, 1, 0, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewProjectState("p")
			for i, status := range tt.statuses {
				st.UpdateUnitStatus(GenerateUnitID(i), status, nil)
			}
			sum := st.Summary()
			if sum.TotalUnits != len(tt.statuses) {
				t.Errorf("total = %d, want %d", sum.TotalUnits, len(tt.statuses))
			}
			if sum.CompletedUnits != tt.completed || sum.InProgressUnits != tt.inProgress || sum.PendingUnits != tt.pending {
				t.Errorf("counts = %d/%d/%d, want %d/%d/%d",
					sum.CompletedUnits, sum.InProgressUnits, sum.PendingUnits,
					tt.completed, tt.inProgress, tt.pending)
			}
			if sum.PendingUnits != sum.TotalUnits-sum.CompletedUnits-sum.InProgressUnits {
				t.Error("pending != total - completed - in_progress")
			}
			if sum.Percentage != tt.percentage {
				t.Errorf("percentage = %v, want %v", sum.Percentage, tt.percentage)
			}
		})
	}
}

func TestUnitInfoUnset(t *testing.T) {
	st := NewProjectState("p")
	info := st.UnitInfo("missing")
	if info.Status != StatusUnset {
		t.Errorf("status = %q, want unset", info.Status)
	}
}

func TestRefinementHistoryCap(t *testing.T) {
	h := &RefinementHistory{ProjectID: "p"}
	for i := 0; i < MaxRefinementRecords+10; i++ {
		h.Append(RefinementRecord{ProjectID: "p", TotalUnitsRefined: i})
	}
	if len(h.Refinements) != MaxRefinementRecords {
		t.Fatalf("history length = %d, want %d", len(h.Refinements), MaxRefinementRecords)
	}
	// Oldest evicted first
	if h.Refinements[0].TotalUnitsRefined != 10 {
		t.Errorf("oldest surviving record = %d, want 10", h.Refinements[0].TotalUnitsRefined)
	}
}

func TestGenerateProjectID(t *testing.T) {
	id := GenerateProjectID("Rust Macros & Metaprogramming!")
	if len(id) == 0 {
		t.Fatal("empty id")
	}
	for _, c := range id {
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
			t.Errorf("id %q contains non-slug character %q", id, c)
		}
	}
	if id == GenerateProjectID("Rust Macros & Metaprogramming!") {
		t.Error("two generated ids should differ")
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range []UnitStatus{StatusPending, StatusInProgress, StatusCompleted} {
		if !s.IsValid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []UnitStatus{StatusUnset, "done", ""} {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}
