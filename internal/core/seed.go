package core

import (
	"context"
	"fmt"
	"time"

	"wardcore/internal/infra/persistence/memory"
	"wardcore/pkg/domain"
)

// SeedSnapshot builds the fixed sample dataset used when no persisted state
// exists: two admitted patients, six beds, two appointments (one today), two
// orders, one medication, two staff, two alerts and one bill.
func SeedSnapshot(now time.Time) Snapshot {
	now = now.UTC().Round(0)
	today := now.Format(domain.DateLayout)
	tomorrow := now.AddDate(0, 0, 1).Format(domain.DateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(domain.DateLayout)
	base := func(kind EntityType) Base {
		return Base{ID: memory.NewID(kind, now), CreatedAt: now, UpdatedAt: now}
	}
	str := func(v string) *string { return &v }

	john := Patient{
		Base:          base(EntityPatient),
		Name:          "John Smith",
		Age:           45,
		Gender:        "Male",
		Condition:     domain.ConditionStable,
		BedNumber:     "A-101",
		AdmissionDate: yesterday,
		Doctor:        "Dr. Sarah Johnson",
		Diagnosis:     "Pneumonia",
		Allergies:     []string{"Penicillin"},
		Vitals: &Vitals{
			HeartRate: 78, BloodPressure: "120/80", Temperature: 37.2,
			OxygenSaturation: 97, RespiratoryRate: 16, RecordedAt: now,
		},
		VitalsHistory: []Vitals{},
		Contact:       domain.ContactInfo{Phone: "555-0101", EmergencyContact: "Mary Smith 555-0102"},
		Status:        domain.PatientActive,
	}
	maria := Patient{
		Base:          base(EntityPatient),
		Name:          "Maria Garcia",
		Age:           62,
		Gender:        "Female",
		Condition:     domain.ConditionCritical,
		BedNumber:     "ICU-201",
		AdmissionDate: today,
		Doctor:        "Dr. Michael Chen",
		Diagnosis:     "Acute myocardial infarction",
		Allergies:     []string{},
		Vitals: &Vitals{
			HeartRate: 102, BloodPressure: "150/95", Temperature: 37.8,
			OxygenSaturation: 91, RespiratoryRate: 22, RecordedAt: now,
		},
		VitalsHistory: []Vitals{},
		Contact:       domain.ContactInfo{Phone: "555-0201", EmergencyContact: "Luis Garcia 555-0202"},
		Status:        domain.PatientActive,
	}

	bed := func(number, ward string, floor int, status domain.BedStatus, patient *Patient) Bed {
		b := Bed{Base: base(EntityBed), Number: number, Ward: ward, Floor: floor, Status: status}
		if patient != nil {
			b.PatientID = str(patient.ID)
			b.AssignedDate = str(patient.AdmissionDate)
		}
		return b
	}
	beds := []Bed{
		bed("A-101", "General", 1, domain.BedOccupied, &john),
		bed("A-102", "General", 1, domain.BedAvailable, nil),
		bed("A-103", "General", 1, domain.BedCleaning, nil),
		bed("ICU-201", "ICU", 2, domain.BedOccupied, &maria),
		bed("ICU-202", "ICU", 2, domain.BedMaintenance, nil),
		bed("M-301", "Maternity", 3, domain.BedAvailable, nil),
	}

	return Snapshot{
		Patients: []Patient{john, maria},
		Beds:     beds,
		Appointments: []Appointment{
			{
				Base: base(EntityAppointment), PatientID: john.ID, PatientName: john.Name,
				Doctor: john.Doctor, Date: today, Time: "10:00", Type: "Follow-up",
				Status: domain.AppointmentConfirmed, Phone: john.Contact.Phone,
			},
			{
				Base: base(EntityAppointment), PatientID: maria.ID, PatientName: maria.Name,
				Doctor: maria.Doctor, Date: tomorrow, Time: "14:30", Type: "Cardiology consult",
				Status: domain.AppointmentPending, Phone: maria.Contact.Phone, Notes: "Bring recent ECG",
			},
		},
		Orders: []Order{
			{
				Base: base(EntityOrder), PatientID: john.ID, PatientName: john.Name, Type: "lab",
				TestName: "Complete blood count", OrderedBy: john.Doctor, OrderedAt: yesterday,
				Status: domain.OrderCompleted, Priority: domain.PriorityRoutine,
				Result: str("WBC 11.2, mildly elevated"), CompletedDate: str(today),
			},
			{
				Base: base(EntityOrder), PatientID: maria.ID, PatientName: maria.Name, Type: "imaging",
				TestName: "Chest X-ray", OrderedBy: maria.Doctor, OrderedAt: today,
				Status: domain.OrderPending, Priority: domain.PriorityStat,
			},
		},
		Medications: []Medication{
			{
				Base: base(EntityMedication), PatientID: john.ID, PatientName: john.Name,
				Name: "Azithromycin", Dosage: "500mg", Frequency: "Once daily",
				PrescribedBy: john.Doctor, StartDate: yesterday, Status: domain.MedicationActive,
				AdministrationLog: []Administration{},
			},
		},
		Staff: []Staff{
			{
				Base: base(EntityStaff), Name: "Dr. Sarah Johnson", Role: "Physician",
				Department: "Internal Medicine", Shift: "Day", Phone: "555-1001",
				Email: "s.johnson@hospital.example", Status: domain.StaffActive,
			},
			{
				Base: base(EntityStaff), Name: "Emily Davis", Role: "Nurse",
				Department: "ICU", Shift: "Night", Phone: "555-1002",
				Email: "e.davis@hospital.example", Status: domain.StaffActive,
			},
		},
		Alerts: []Alert{
			{
				Base: base(EntityAlert), Type: domain.AlertCritical, Title: "Low oxygen saturation",
				Message: fmt.Sprintf("%s SpO2 at 91%% in bed %s", maria.Name, maria.BedNumber),
				Timestamp: now, PatientID: str(maria.ID), Priority: domain.AlertHigh,
			},
			{
				Base: base(EntityAlert), Type: domain.AlertInfo, Title: "Lab result available",
				Message: fmt.Sprintf("Complete blood count ready for %s", john.Name),
				Timestamp: now.Add(-time.Hour), PatientID: str(john.ID), Priority: domain.AlertLow,
			},
		},
		Bills: []Bill{
			{
				Base: base(EntityBill), PatientID: john.ID, PatientName: john.Name, Amount: 2450,
				Status: domain.BillPending, DueDate: now.AddDate(0, 0, 30).Format(domain.DateLayout),
				Items: []domain.BillItem{
					{Description: "Room charges (2 days)", Amount: 1600},
					{Description: "Laboratory tests", Amount: 350},
					{Description: "Medication", Amount: 500},
				},
			},
		},
	}
}

// Seed replaces the whole state with SeedSnapshot.
func (s *Service) Seed(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "seed")
	start := time.Now()
	err := s.store.ReplaceState(ctx, SeedSnapshot(s.now()))
	s.metrics.Observe(ctx, "seed", err == nil, time.Since(start))
	span.End(err)
	if err != nil {
		s.logger.Error().Err(err).Msg("seed store")
		return fmt.Errorf("seed: %w", err)
	}
	s.logger.Info().Uint64("version", s.store.Version()).Msg("store seeded")
	return nil
}

// SeedIfEmpty seeds a store that opened without persisted state and holds no
// records. It reports whether seeding happened.
func (s *Service) SeedIfEmpty(ctx context.Context) (bool, error) {
	if s.store.HasPersistedState() || !s.store.ExportState().IsEmpty() {
		return false, nil
	}
	if err := s.Seed(ctx); err != nil {
		return false, err
	}
	return true, nil
}
