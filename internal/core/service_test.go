package core_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"wardcore/internal/core"
	"wardcore/pkg/domain"
)

var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T, opts ...core.Option) *core.Service {
	t.Helper()
	opts = append([]core.Option{core.WithClock(func() time.Time { return fixedNow })}, opts...)
	return core.NewInMemoryService(core.NewDefaultRulesEngine(), opts...)
}

func seeded(t *testing.T, opts ...core.Option) *core.Service {
	t.Helper()
	svc := newService(t, opts...)
	if err := svc.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return svc
}

func admit(t *testing.T, svc *core.Service, name string) domain.Patient {
	t.Helper()
	p, _, err := svc.AddPatient(context.Background(), domain.Patient{Name: name, Condition: domain.ConditionGood})
	if err != nil {
		t.Fatalf("add patient %s: %v", name, err)
	}
	return p
}

func addBed(t *testing.T, svc *core.Service, number string) domain.Bed {
	t.Helper()
	b, _, err := svc.AddBed(context.Background(), domain.Bed{Number: number, Ward: "General", Floor: 1})
	if err != nil {
		t.Fatalf("add bed %s: %v", number, err)
	}
	return b
}

func mustBed(t *testing.T, svc *core.Service, id string) domain.Bed {
	t.Helper()
	b, ok := svc.Bed(id)
	if !ok {
		t.Fatalf("bed %s missing", id)
	}
	return b
}

func mustPatient(t *testing.T, svc *core.Service, id string) domain.Patient {
	t.Helper()
	p, ok := svc.Patient(id)
	if !ok {
		t.Fatalf("patient %s missing", id)
	}
	return p
}

func TestAssignThenReleaseRestoresBed(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p := admit(t, svc, "Ada")
	b := addBed(t, svc, "A-1")

	assigned, _, err := svc.AssignBed(ctx, b.ID, p.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != domain.BedOccupied || assigned.PatientID == nil || *assigned.PatientID != p.ID {
		t.Fatalf("unexpected assigned bed: %+v", assigned)
	}
	if assigned.AssignedDate == nil || *assigned.AssignedDate != "2026-03-10" {
		t.Fatalf("expected today's assignment date, got %v", assigned.AssignedDate)
	}
	if got := mustPatient(t, svc, p.ID).BedNumber; got != "A-1" {
		t.Fatalf("patient bed number = %q", got)
	}

	released, _, err := svc.ReleaseBed(ctx, b.ID)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released.Status != domain.BedAvailable || released.PatientID != nil || released.AssignedDate != nil {
		t.Fatalf("release did not restore bed: %+v", released)
	}
	if got := mustPatient(t, svc, p.ID).BedNumber; got != "" {
		t.Fatalf("released patient kept bed number %q", got)
	}
}

func TestDischargeSendsBedToCleaning(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p := admit(t, svc, "Grace")
	b := addBed(t, svc, "B-2")
	if _, _, err := svc.AssignBed(ctx, b.ID, p.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	discharged, _, err := svc.DischargePatient(ctx, p.ID)
	if err != nil {
		t.Fatalf("discharge: %v", err)
	}
	if discharged.Status != domain.PatientDischarged || discharged.BedNumber != "" {
		t.Fatalf("unexpected discharged patient: %+v", discharged)
	}
	bed := mustBed(t, svc, b.ID)
	if bed.Status != domain.BedCleaning || bed.PatientID != nil {
		t.Fatalf("expected cleaning bed without patient, got %+v", bed)
	}
	if len(svc.Patients()) != 1 {
		t.Fatalf("discharged patient should be retained")
	}
}

func TestDeletePatientFreesBed(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p := admit(t, svc, "Linus")
	b := addBed(t, svc, "C-3")
	if _, _, err := svc.AssignBed(ctx, b.ID, p.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.DeletePatient(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := svc.Patient(p.ID); ok {
		t.Fatalf("patient should be gone")
	}
	if bed := mustBed(t, svc, b.ID); bed.Status != domain.BedAvailable || bed.PatientID != nil {
		t.Fatalf("expected available bed, got %+v", bed)
	}
}

func TestUpdatePatientVitalsPrependsPrevious(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p := admit(t, svc, "Barbara")
	v1 := domain.Vitals{HeartRate: 70, BloodPressure: "120/80", RecordedAt: fixedNow.Add(-time.Hour)}
	v2 := domain.Vitals{HeartRate: 90, BloodPressure: "130/85"}

	if _, _, err := svc.UpdatePatientVitals(ctx, p.ID, v1); err != nil {
		t.Fatalf("vitals 1: %v", err)
	}
	updated, _, err := svc.UpdatePatientVitals(ctx, p.ID, v2)
	if err != nil {
		t.Fatalf("vitals 2: %v", err)
	}
	if updated.Vitals == nil || updated.Vitals.HeartRate != 90 {
		t.Fatalf("current vitals = %+v", updated.Vitals)
	}
	if !updated.Vitals.RecordedAt.Equal(fixedNow) {
		t.Fatalf("unstamped vitals should take the transaction time, got %v", updated.Vitals.RecordedAt)
	}
	if len(updated.VitalsHistory) != 1 || updated.VitalsHistory[0].HeartRate != 70 {
		t.Fatalf("history = %+v", updated.VitalsHistory)
	}
}

func TestTransferPatientMovesBeds(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p := admit(t, svc, "Ken")
	from := addBed(t, svc, "D-1")
	to := addBed(t, svc, "D-2")
	if _, _, err := svc.AssignBed(ctx, from.ID, p.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, _, err := svc.TransferPatient(ctx, p.ID, to.ID); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if b := mustBed(t, svc, from.ID); b.Status != domain.BedAvailable || b.PatientID != nil {
		t.Fatalf("old bed not released: %+v", b)
	}
	if b := mustBed(t, svc, to.ID); b.Status != domain.BedOccupied || *b.PatientID != p.ID {
		t.Fatalf("new bed not assigned: %+v", b)
	}
	if got := mustPatient(t, svc, p.ID).BedNumber; got != "D-2" {
		t.Fatalf("bed number = %q", got)
	}

	other := admit(t, svc, "Dennis")
	third := addBed(t, svc, "D-3")
	if _, _, err := svc.TransferPatient(ctx, other.ID, third.ID); err != nil {
		t.Fatalf("transfer without a current bed acts as assign: %v", err)
	}
	if got := mustPatient(t, svc, other.ID).BedNumber; got != "D-3" {
		t.Fatalf("bed number = %q", got)
	}
}

func TestAssigningSecondBedIsBlocked(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p := admit(t, svc, "Rob")
	first := addBed(t, svc, "E-1")
	second := addBed(t, svc, "E-2")
	if _, _, err := svc.AssignBed(ctx, first.ID, p.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	version := svc.Version()

	_, res, err := svc.AssignBed(ctx, second.ID, p.ID)
	var blocked domain.RuleViolationError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
	if svc.Version() != version {
		t.Fatalf("blocked transaction must not bump the version")
	}
	if b := mustBed(t, svc, second.ID); b.Status != domain.BedAvailable {
		t.Fatalf("blocked assignment leaked: %+v", b)
	}
}

func TestUpdateBedStatusGuardsOccupancy(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p := admit(t, svc, "Ken")
	b := addBed(t, svc, "F-1")
	if _, _, err := svc.UpdateBedStatus(ctx, b.ID, domain.BedMaintenance); err != nil {
		t.Fatalf("empty bed status override: %v", err)
	}
	if _, _, err := svc.UpdateBedStatus(ctx, b.ID, domain.BedOccupied); err == nil {
		t.Fatalf("occupied without patient should be blocked")
	}
	if _, _, err := svc.UpdateBedStatus(ctx, b.ID, domain.BedAvailable); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, _, err := svc.AssignBed(ctx, b.ID, p.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, _, err := svc.UpdateBedStatus(ctx, b.ID, domain.BedMaintenance); err == nil {
		t.Fatalf("maintenance with a patient should be blocked")
	}
}

func TestUpdateAndDeleteBedKeepPatientInStep(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p := admit(t, svc, "Margaret")
	b := addBed(t, svc, "G-1")
	if _, _, err := svc.AssignBed(ctx, b.ID, p.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	number := "G-10"
	if _, _, err := svc.UpdateBed(ctx, b.ID, domain.BedPatch{Number: &number}); err != nil {
		t.Fatalf("renumber: %v", err)
	}
	if got := mustPatient(t, svc, p.ID).BedNumber; got != "G-10" {
		t.Fatalf("bed number = %q", got)
	}
	if _, err := svc.DeleteBed(ctx, b.ID); err != nil {
		t.Fatalf("delete bed: %v", err)
	}
	if got := mustPatient(t, svc, p.ID).BedNumber; got != "" {
		t.Fatalf("bed number should clear, got %q", got)
	}
}

func TestMissingIDsReturnNotFoundAndLeaveStateUnchanged(t *testing.T) {
	svc := seeded(t)
	ctx := context.Background()
	before := svc.Snapshot()
	version := svc.Version()
	name := "x"

	calls := map[string]func() error{
		"update patient":  func() error { _, _, err := svc.UpdatePatient(ctx, "nope", domain.PatientPatch{Name: &name}); return err },
		"delete patient":  func() error { _, err := svc.DeletePatient(ctx, "nope"); return err },
		"discharge":       func() error { _, _, err := svc.DischargePatient(ctx, "nope"); return err },
		"vitals":          func() error { _, _, err := svc.UpdatePatientVitals(ctx, "nope", domain.Vitals{}); return err },
		"assign bed":      func() error { _, _, err := svc.AssignBed(ctx, "nope", before.Patients[0].ID); return err },
		"assign patient":  func() error { _, _, err := svc.AssignBed(ctx, before.Beds[1].ID, "nope"); return err },
		"release":         func() error { _, _, err := svc.ReleaseBed(ctx, "nope"); return err },
		"transfer":        func() error { _, _, err := svc.TransferPatient(ctx, "nope", before.Beds[1].ID); return err },
		"bed status":      func() error { _, _, err := svc.UpdateBedStatus(ctx, "nope", domain.BedCleaning); return err },
		"delete bed":      func() error { _, err := svc.DeleteBed(ctx, "nope"); return err },
		"appointment":     func() error { _, err := svc.DeleteAppointment(ctx, "nope"); return err },
		"order":           func() error { _, _, err := svc.UpdateOrder(ctx, "nope", domain.OrderPatch{}); return err },
		"medication":      func() error { _, _, err := svc.AdministerMedication(ctx, "nope", "Nurse", ""); return err },
		"staff":           func() error { _, err := svc.DeleteStaff(ctx, "nope"); return err },
		"bill":            func() error { _, _, err := svc.UpdateBill(ctx, "nope", domain.BillPatch{}); return err },
		"alert read":      func() error { _, _, err := svc.MarkAlertAsRead(ctx, "nope"); return err },
		"alert delete":    func() error { _, err := svc.DeleteAlert(ctx, "nope"); return err },
		"medication drop": func() error { _, err := svc.DeleteMedication(ctx, "nope"); return err },
	}
	for name, call := range calls {
		err := call()
		var nf domain.NotFoundError
		if !errors.As(err, &nf) || nf.ID != "nope" {
			t.Fatalf("%s: expected NotFoundError for nope, got %v", name, err)
		}
	}
	if svc.Version() != version {
		t.Fatalf("failed operations must not bump the version")
	}
	if after := svc.Snapshot(); len(after.Patients) != len(before.Patients) || len(after.Alerts) != len(before.Alerts) {
		t.Fatalf("state changed after not-found operations")
	}
}

func TestAdministerMedicationPrependsAndKeepsStatus(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	med, _, err := svc.AddMedication(ctx, domain.Medication{Name: "Heparin", Status: domain.MedicationActive})
	if err != nil {
		t.Fatalf("add medication: %v", err)
	}
	if _, _, err := svc.AdministerMedication(ctx, med.ID, "Nurse A", ""); err != nil {
		t.Fatalf("administer: %v", err)
	}
	updated, _, err := svc.AdministerMedication(ctx, med.ID, "Nurse X", "left arm")
	if err != nil {
		t.Fatalf("administer: %v", err)
	}
	if updated.Status != domain.MedicationActive {
		t.Fatalf("status changed to %s", updated.Status)
	}
	if len(updated.AdministrationLog) != 2 || updated.AdministrationLog[0].AdministeredBy != "Nurse X" {
		t.Fatalf("log = %+v", updated.AdministrationLog)
	}
	if !updated.AdministrationLog[0].Timestamp.Equal(fixedNow) {
		t.Fatalf("entry timestamp = %v", updated.AdministrationLog[0].Timestamp)
	}
}

func TestAlertsNewestFirstAndMarkRead(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	first, _, err := svc.AddAlert(ctx, domain.Alert{Type: domain.AlertInfo, Title: "first"})
	if err != nil {
		t.Fatalf("add alert: %v", err)
	}
	second, _, err := svc.AddAlert(ctx, domain.Alert{Type: domain.AlertCritical, Title: "second"})
	if err != nil {
		t.Fatalf("add alert: %v", err)
	}
	alerts := svc.Alerts()
	if len(alerts) != 2 || alerts[0].ID != second.ID || alerts[1].ID != first.ID {
		t.Fatalf("alerts not newest first: %+v", alerts)
	}
	if read, _, err := svc.MarkAlertAsRead(ctx, first.ID); err != nil || !read.Read {
		t.Fatalf("mark read: %+v %v", read, err)
	}
	if got := svc.GetAnalytics().UnreadAlerts; got != 1 {
		t.Fatalf("unread = %d", got)
	}
	if _, err := svc.MarkAllAlertsAsRead(ctx); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	for _, a := range svc.Alerts() {
		if !a.Read {
			t.Fatalf("alert %s still unread", a.ID)
		}
	}
	if _, err := svc.DeleteAlert(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(svc.Alerts()) != 1 {
		t.Fatalf("expected one alert left")
	}
}

func TestUniformCRUD(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	apt, _, err := svc.AddAppointment(ctx, domain.Appointment{PatientName: "Ada", Date: "2026-03-10", Status: domain.AppointmentPending})
	if err != nil {
		t.Fatalf("add appointment: %v", err)
	}
	confirmed := domain.AppointmentConfirmed
	if got, _, err := svc.UpdateAppointment(ctx, apt.ID, domain.AppointmentPatch{Status: &confirmed}); err != nil || got.Status != confirmed || got.PatientName != "Ada" {
		t.Fatalf("update appointment: %+v %v", got, err)
	}

	order, _, err := svc.AddOrder(ctx, domain.Order{TestName: "CBC", Status: domain.OrderPending, Priority: domain.PriorityUrgent})
	if err != nil {
		t.Fatalf("add order: %v", err)
	}
	done, result := domain.OrderCompleted, "normal"
	if got, _, err := svc.UpdateOrder(ctx, order.ID, domain.OrderPatch{Status: &done, Result: &result}); err != nil || got.Result == nil || *got.Result != "normal" {
		t.Fatalf("update order: %+v %v", got, err)
	}

	staff, _, err := svc.AddStaff(ctx, domain.Staff{Name: "Nurse Joy", Status: domain.StaffActive})
	if err != nil {
		t.Fatalf("add staff: %v", err)
	}
	leave := domain.StaffOnLeave
	if got, _, err := svc.UpdateStaff(ctx, staff.ID, domain.StaffPatch{Status: &leave}); err != nil || got.Status != leave {
		t.Fatalf("update staff: %+v %v", got, err)
	}

	bill, _, err := svc.AddBill(ctx, domain.Bill{PatientName: "Ada", Amount: 100, Status: domain.BillPending})
	if err != nil {
		t.Fatalf("add bill: %v", err)
	}
	paid := domain.BillPaid
	if got, _, err := svc.UpdateBill(ctx, bill.ID, domain.BillPatch{Status: &paid}); err != nil || got.Status != paid || got.Amount != 100 {
		t.Fatalf("update bill: %+v %v", got, err)
	}

	med, _, err := svc.AddMedication(ctx, domain.Medication{Name: "Aspirin", Status: domain.MedicationActive})
	if err != nil {
		t.Fatalf("add medication: %v", err)
	}
	stopped := domain.MedicationDiscontinued
	if got, _, err := svc.UpdateMedication(ctx, med.ID, domain.MedicationPatch{Status: &stopped}); err != nil || got.Status != stopped {
		t.Fatalf("update medication: %+v %v", got, err)
	}

	for name, del := range map[string]func() (domain.Result, error){
		"appointment": func() (domain.Result, error) { return svc.DeleteAppointment(ctx, apt.ID) },
		"order":       func() (domain.Result, error) { return svc.DeleteOrder(ctx, order.ID) },
		"staff":       func() (domain.Result, error) { return svc.DeleteStaff(ctx, staff.ID) },
		"bill":        func() (domain.Result, error) { return svc.DeleteBill(ctx, bill.ID) },
		"medication":  func() (domain.Result, error) { return svc.DeleteMedication(ctx, med.ID) },
	} {
		if _, err := del(); err != nil {
			t.Fatalf("delete %s: %v", name, err)
		}
	}
	if !svc.Snapshot().IsEmpty() {
		t.Fatalf("expected empty store, got %+v", svc.Snapshot())
	}
}

func TestAnalyticsOnSeedData(t *testing.T) {
	svc := seeded(t)
	a := svc.GetAnalytics()
	if a.TotalBeds != 6 || a.OccupiedBeds != 2 {
		t.Fatalf("beds = %d/%d", a.OccupiedBeds, a.TotalBeds)
	}
	if math.Abs(a.OccupancyRate-(2.0/6.0)*100) > 1e-9 {
		t.Fatalf("occupancy = %v", a.OccupancyRate)
	}
	if a.TotalPatients != 2 || a.AppointmentsToday != 1 || a.PendingOrders != 1 || a.CompletedOrders != 1 {
		t.Fatalf("unexpected analytics: %+v", a)
	}
	if a.ActiveStaff != 2 || a.PendingBills != 1 || a.TotalRevenue != 2450 || a.UnreadAlerts != 2 {
		t.Fatalf("unexpected analytics: %+v", a)
	}
	if a.PatientsByCondition[domain.ConditionCritical] != 1 || a.PatientsByCondition[domain.ConditionStable] != 1 {
		t.Fatalf("conditions = %+v", a.PatientsByCondition)
	}
}

func TestAnalyticsWithoutBeds(t *testing.T) {
	svc := newService(t)
	if rate := svc.GetAnalytics().OccupancyRate; rate != 0 {
		t.Fatalf("occupancy with no beds = %v", rate)
	}
}

func TestAnalyticsMemoizedPerVersionAndDate(t *testing.T) {
	now := fixedNow
	svc := core.NewInMemoryService(core.NewDefaultRulesEngine(), core.WithClock(func() time.Time { return now }))
	ctx := context.Background()
	if _, _, err := svc.AddAppointment(ctx, domain.Appointment{Date: "2026-03-11"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	first := svc.GetAnalytics()
	first.PatientsByCondition[domain.ConditionGood] = 99
	if again := svc.GetAnalytics(); again.PatientsByCondition[domain.ConditionGood] != 0 {
		t.Fatalf("cached analytics leaked caller mutation")
	}
	if first.AppointmentsToday != 0 {
		t.Fatalf("appointment is tomorrow")
	}
	now = now.Add(24 * time.Hour)
	if got := svc.GetAnalytics().AppointmentsToday; got != 1 {
		t.Fatalf("date change must invalidate the cache, got %d", got)
	}
	if _, _, err := svc.AddPatient(ctx, domain.Patient{Name: "New", Condition: domain.ConditionFair}); err != nil {
		t.Fatalf("add patient: %v", err)
	}
	if got := svc.GetAnalytics().TotalPatients; got != 1 {
		t.Fatalf("version change must invalidate the cache, got %d", got)
	}
}

func TestAddPatientDefaultsAndIgnoresBedNumber(t *testing.T) {
	svc := newService(t)
	p, _, err := svc.AddPatient(context.Background(), domain.Patient{Name: "Alan", BedNumber: "Z-9"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if p.Status != domain.PatientActive || p.BedNumber != "" {
		t.Fatalf("unexpected patient: %+v", p)
	}
	if p.ID == "" || p.ID[0] != 'P' {
		t.Fatalf("unexpected id %q", p.ID)
	}
	if !p.CreatedAt.Equal(fixedNow) {
		t.Fatalf("created at = %v", p.CreatedAt)
	}
}

func TestCanceledContextRejected(t *testing.T) {
	svc := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := svc.AddPatient(ctx, domain.Patient{Name: "late"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(svc.Patients()) != 0 {
		t.Fatalf("canceled operation committed")
	}
}

// checkOccupancy asserts that every bed is occupied exactly when it references
// an active patient whose bed number matches.
func checkOccupancy(t *testing.T, svc *core.Service, step string) {
	t.Helper()
	for _, b := range svc.Beds() {
		occupied := b.Status == domain.BedOccupied
		if occupied != (b.PatientID != nil) {
			t.Fatalf("after %s: bed %s status %s with patient %v", step, b.Number, b.Status, b.PatientID)
		}
		if b.PatientID == nil {
			continue
		}
		p, ok := svc.Patient(*b.PatientID)
		if !ok || p.Status != domain.PatientActive || p.BedNumber != b.Number {
			t.Fatalf("after %s: bed %s references %+v", step, b.Number, p)
		}
	}
	for _, p := range svc.Patients() {
		if p.BedNumber == "" {
			continue
		}
		var held bool
		for _, b := range svc.Beds() {
			held = held || (b.PatientID != nil && *b.PatientID == p.ID && b.Number == p.BedNumber)
		}
		if !held {
			t.Fatalf("after %s: patient %s records bed %s that does not hold it", step, p.Name, p.BedNumber)
		}
	}
}

func TestOccupancyHoldsAcrossMixedSequence(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	p1, p2, p3 := admit(t, svc, "Ada"), admit(t, svc, "Ben"), admit(t, svc, "Cleo")
	b1, b2, b3 := addBed(t, svc, "S-1"), addBed(t, svc, "S-2"), addBed(t, svc, "S-3")

	steps := []struct {
		name    string
		run     func() error
		wantErr bool
	}{
		{"assign b1 to p1", func() error { _, _, err := svc.AssignBed(ctx, b1.ID, p1.ID); return err }, false},
		{"assign b2 to p2", func() error { _, _, err := svc.AssignBed(ctx, b2.ID, p2.ID); return err }, false},
		{"assign occupied b1 to p3", func() error { _, _, err := svc.AssignBed(ctx, b1.ID, p3.ID); return err }, true},
		{"assign second bed to p1", func() error { _, _, err := svc.AssignBed(ctx, b3.ID, p1.ID); return err }, true},
		{"transfer p1 to b3", func() error { _, _, err := svc.TransferPatient(ctx, p1.ID, b3.ID); return err }, false},
		{"release b2", func() error { _, _, err := svc.ReleaseBed(ctx, b2.ID); return err }, false},
		{"release empty b2", func() error { _, _, err := svc.ReleaseBed(ctx, b2.ID); return err }, false},
		{"mark empty b2 occupied", func() error { _, _, err := svc.UpdateBedStatus(ctx, b2.ID, domain.BedOccupied); return err }, true},
		{"discharge p1", func() error { _, _, err := svc.DischargePatient(ctx, p1.ID); return err }, false},
		{"assign b2 to discharged p1", func() error { _, _, err := svc.AssignBed(ctx, b2.ID, p1.ID); return err }, true},
		{"b3 back to available", func() error { _, _, err := svc.UpdateBedStatus(ctx, b3.ID, domain.BedAvailable); return err }, false},
		{"assign b3 to p2", func() error { _, _, err := svc.AssignBed(ctx, b3.ID, p2.ID); return err }, false},
		{"mark occupied b3 cleaning", func() error { _, _, err := svc.UpdateBedStatus(ctx, b3.ID, domain.BedCleaning); return err }, true},
		{"delete p2", func() error { _, err := svc.DeletePatient(ctx, p2.ID); return err }, false},
		{"assign b1 to p3", func() error { _, _, err := svc.AssignBed(ctx, b1.ID, p3.ID); return err }, false},
		{"delete occupied b1", func() error { _, err := svc.DeleteBed(ctx, b1.ID); return err }, false},
		{"release missing b1", func() error { _, _, err := svc.ReleaseBed(ctx, b1.ID); return err }, true},
		{"discharge bedless p3", func() error { _, _, err := svc.DischargePatient(ctx, p3.ID); return err }, false},
	}
	for _, step := range steps {
		err := step.run()
		if (err != nil) != step.wantErr {
			t.Fatalf("%s: err = %v, wantErr %v", step.name, err, step.wantErr)
		}
		checkOccupancy(t, svc, step.name)
	}

	if b := mustBed(t, svc, b3.ID); b.Status != domain.BedAvailable || b.PatientID != nil {
		t.Fatalf("deleting p2 should free b3, got %+v", b)
	}
	if p := mustPatient(t, svc, p3.ID); p.BedNumber != "" || p.Status != domain.PatientDischarged {
		t.Fatalf("unexpected final p3 %+v", p)
	}
}
