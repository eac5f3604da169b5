package core

import (
	"context"
	"testing"
	"time"

	"wardcore/pkg/domain"
)

func TestSeedSnapshotShape(t *testing.T) {
	now := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	s := SeedSnapshot(now)
	counts := map[string][2]int{
		"patients":     {len(s.Patients), 2},
		"beds":         {len(s.Beds), 6},
		"appointments": {len(s.Appointments), 2},
		"orders":       {len(s.Orders), 2},
		"medications":  {len(s.Medications), 1},
		"staff":        {len(s.Staff), 2},
		"alerts":       {len(s.Alerts), 2},
		"bills":        {len(s.Bills), 1},
	}
	for name, c := range counts {
		if c[0] != c[1] {
			t.Fatalf("%s = %d, want %d", name, c[0], c[1])
		}
	}
	byStatus := map[domain.BedStatus]int{}
	for _, b := range s.Beds {
		byStatus[b.Status]++
	}
	if byStatus[domain.BedOccupied] != 2 || byStatus[domain.BedAvailable] != 2 || byStatus[domain.BedCleaning] != 1 || byStatus[domain.BedMaintenance] != 1 {
		t.Fatalf("bed statuses = %v", byStatus)
	}
	if s.Appointments[0].Date != "2026-01-02" {
		t.Fatalf("first appointment should be today, got %s", s.Appointments[0].Date)
	}

	res, err := NewDefaultRulesEngine().Evaluate(context.Background(), snapshotView(s), nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("seed data violates invariants: %+v", res.Violations)
	}
}

func snapshotView(s domain.Snapshot) ruleView {
	return ruleView{patients: s.Patients, beds: s.Beds}
}
