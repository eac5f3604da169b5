package domain

import (
	"math"
	"testing"
	"time"
)

func TestComputeAnalytics(t *testing.T) {
	today := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Patients: []Patient{
			{Condition: ConditionCritical, Status: PatientActive},
			{Condition: ConditionStable, Status: PatientActive},
			{Condition: ConditionStable, Status: PatientDischarged},
		},
		Beds: []Bed{
			{Status: BedOccupied}, {Status: BedAvailable}, {Status: BedCleaning}, {Status: BedOccupied},
		},
		Appointments: []Appointment{{Date: "2026-03-10"}, {Date: "2026-03-11"}, {Date: "2026-03-10"}},
		Orders:       []Order{{Status: OrderPending}, {Status: OrderCompleted}, {Status: OrderInProgress}},
		Staff:        []Staff{{Status: StaffActive}, {Status: StaffOnLeave}},
		Alerts:       []Alert{{Read: true}, {}, {}},
		Bills:        []Bill{{Amount: 100, Status: BillPending}, {Amount: 50.5, Status: BillPaid}},
	}

	a := ComputeAnalytics(snap, today)
	if a.TotalPatients != 2 {
		t.Fatalf("discharged patients must not count: %d", a.TotalPatients)
	}
	if a.TotalBeds != 4 || a.OccupiedBeds != 2 || math.Abs(a.OccupancyRate-50) > 1e-9 {
		t.Fatalf("bed figures: %+v", a)
	}
	if a.PatientsByCondition[ConditionStable] != 1 || a.PatientsByCondition[ConditionCritical] != 1 {
		t.Fatalf("conditions: %v", a.PatientsByCondition)
	}
	if _, ok := a.PatientsByCondition[ConditionGood]; !ok {
		t.Fatalf("every condition should be reported, got %v", a.PatientsByCondition)
	}
	if a.AppointmentsToday != 2 || a.PendingOrders != 1 || a.CompletedOrders != 1 {
		t.Fatalf("schedule figures: %+v", a)
	}
	if a.ActiveStaff != 1 || a.UnreadAlerts != 2 || a.PendingBills != 1 || a.TotalRevenue != 150.5 {
		t.Fatalf("remaining figures: %+v", a)
	}
}

func TestComputeAnalyticsWithoutBeds(t *testing.T) {
	a := ComputeAnalytics(Snapshot{}, time.Now())
	if a.OccupancyRate != 0 || a.TotalBeds != 0 {
		t.Fatalf("expected zero occupancy, got %+v", a)
	}
}
