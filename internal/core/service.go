package core

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wardcore/internal/infra/persistence/memory"
	"wardcore/pkg/domain"
)

// Service exposes the hospital operations used by every dashboard screen.
// Each mutation runs as one transaction over the configured store.
type Service struct {
	store     PersistentStore
	logger    zerolog.Logger
	metrics   MetricsRecorder
	tracer    Tracer
	archiver  Archiver
	retention domain.RetentionPolicy
	now       func() time.Time
	clockSet  bool

	analyticsMu sync.Mutex
	analytics   *analyticsEntry
}

type analyticsEntry struct {
	version uint64
	date    string
	value   Analytics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for commit, block and persistence events.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the operation metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the tracer wrapping every operation.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithArchiver sets where entries trimmed by the retention policy go.
func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithRetention replaces DefaultRetentionPolicy.
func WithRetention(policy domain.RetentionPolicy) Option {
	return func(s *Service) { s.retention = policy }
}

// WithClock sets the clock used for "today" and, when the store supports
// it, for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
			s.clockSet = true
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:     store,
		logger:    zerolog.Nop(),
		metrics:   noopMetrics{},
		tracer:    noopTracer{},
		retention: domain.DefaultRetentionPolicy(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if clocked, ok := store.(interface{ SetNowFunc(func() time.Time) }); ok && s.clockSet {
		clocked.SetNowFunc(s.now)
	}
	return s
}

// NewInMemoryService creates a service over an ephemeral in-memory store.
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

func (s *Service) run(ctx context.Context, op string, fn func(tx Transaction) error) (Result, error) {
	_, res, err := s.commit(ctx, op, fn)
	return res, err
}

// commit runs fn plus retention trimming as one transaction, then archives
// evictions and records the outcome.
func (s *Service) commit(ctx context.Context, op string, fn func(tx Transaction) error) (domain.CommitInfo, Result, error) {
	ctx, span := s.tracer.Start(ctx, op)
	start := time.Now()
	info, res, err := s.store.Commit(ctx, func(tx Transaction) error {
		if err := fn(tx); err != nil {
			return err
		}
		return applyRetention(tx, s.retention)
	})
	committed := info.Version != 0
	if committed && len(info.Evictions) > 0 {
		s.archive(ctx, op, info.Evictions)
	}
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	span.End(err)
	s.logOutcome(op, info, res, err)
	return info, res, err
}

func (s *Service) archive(ctx context.Context, op string, evictions []domain.Eviction) {
	if s.archiver == nil {
		s.logger.Debug().Str("operation", op).Int("evictions", len(evictions)).Msg("retention trimmed history without archiver")
		return
	}
	if err := s.archiver.Archive(ctx, evictions); err != nil {
		s.logger.Error().Err(err).Str("operation", op).Int("evictions", len(evictions)).Msg("archive evicted history")
	}
}

func (s *Service) logOutcome(op string, info domain.CommitInfo, res Result, err error) {
	for _, v := range res.Violations {
		if v.Severity == SeverityWarn {
			s.logger.Warn().Str("operation", op).Str("rule", v.Rule).Str("entity_id", v.EntityID).Msg(v.Message)
		}
	}
	var blocked RuleViolationError
	switch {
	case err == nil:
		s.logger.Debug().Str("operation", op).Uint64("version", info.Version).Int("changes", len(info.Changes)).Msg("committed")
	case info.Version != 0:
		s.logger.Error().Err(err).Str("operation", op).Uint64("version", info.Version).Msg("persist snapshot")
	case errors.As(err, &blocked):
		rules := make([]string, 0, len(blocked.Result.Violations))
		for _, v := range blocked.Result.Violations {
			rules = append(rules, v.Rule)
		}
		s.logger.Warn().Str("operation", op).Strs("rules", rules).Msg("transaction blocked")
	default:
		s.logger.Debug().Err(err).Str("operation", op).Msg("operation rejected")
	}
}

// mutate runs fn as operation op and returns the record it produced. The
// record is returned whenever the commit took effect, even if persisting failed.
func mutate[T any](ctx context.Context, s *Service, op string, fn func(tx Transaction) (T, error)) (T, Result, error) {
	var out T
	info, res, err := s.commit(ctx, op, func(tx Transaction) error {
		var err error
		out, err = fn(tx)
		return err
	})
	if info.Version == 0 {
		var zero T
		return zero, res, err
	}
	return out, res, err
}

// reread returns the committed copy of rec, which differs from the
// in-transaction copy when retention trimmed it.
func reread[T interface{ EntityID() string }](rec T, res Result, err error, get func(string) (T, bool)) (T, Result, error) {
	if rec.EntityID() == "" {
		return rec, res, err
	}
	if current, ok := get(rec.EntityID()); ok {
		return current, res, err
	}
	return rec, res, err
}

// Patients.

// AddPatient appends a patient. Status defaults to active; the bed number is
// owned by the bed operations and cleared here.
func (s *Service) AddPatient(ctx context.Context, patient Patient) (Patient, Result, error) {
	return mutate(ctx, s, "add_patient", func(tx Transaction) (Patient, error) {
		patient.BedNumber = ""
		return tx.CreatePatient(patient)
	})
}

// UpdatePatient merges patch into the patient.
func (s *Service) UpdatePatient(ctx context.Context, id string, patch domain.PatientPatch) (Patient, Result, error) {
	return mutate(ctx, s, "update_patient", func(tx Transaction) (Patient, error) {
		return tx.UpdatePatient(id, func(p *Patient) error {
			patch.Apply(p)
			return nil
		})
	})
}

// DeletePatient removes the patient and frees every bed that referenced it.
func (s *Service) DeletePatient(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_patient", func(tx Transaction) error {
		if err := tx.DeletePatient(id); err != nil {
			return err
		}
		return clearBedsOf(tx, id, domain.BedAvailable)
	})
}

// DischargePatient retains the patient as discharged and sends its bed to cleaning.
func (s *Service) DischargePatient(ctx context.Context, id string) (Patient, Result, error) {
	return mutate(ctx, s, "discharge_patient", func(tx Transaction) (Patient, error) {
		patient, err := tx.UpdatePatient(id, func(p *Patient) error {
			p.Status = domain.PatientDischarged
			p.BedNumber = ""
			return nil
		})
		if err != nil {
			return Patient{}, err
		}
		return patient, clearBedsOf(tx, id, domain.BedCleaning)
	})
}

// UpdatePatientVitals makes vitals current and prepends the previous reading to history.
func (s *Service) UpdatePatientVitals(ctx context.Context, id string, vitals Vitals) (Patient, Result, error) {
	patient, res, err := mutate(ctx, s, "update_patient_vitals", func(tx Transaction) (Patient, error) {
		if vitals.RecordedAt.IsZero() {
			vitals.RecordedAt = tx.Now()
		}
		return tx.UpdatePatient(id, func(p *Patient) error {
			if p.Vitals != nil {
				p.VitalsHistory = append([]Vitals{*p.Vitals}, p.VitalsHistory...)
			}
			current := vitals
			p.Vitals = &current
			return nil
		})
	})
	return reread(patient, res, err, s.store.GetPatient)
}

// clearBedsOf detaches every bed referencing patientID and sets it to status.
func clearBedsOf(tx Transaction, patientID string, status domain.BedStatus) error {
	for _, bed := range tx.Snapshot().ListBeds() {
		if bed.PatientID == nil || *bed.PatientID != patientID {
			continue
		}
		if _, err := tx.UpdateBed(bed.ID, func(b *Bed) error {
			b.PatientID = nil
			b.AssignedDate = nil
			b.Status = status
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// Beds.

// AssignBed places the patient in the bed, stamping today's date and mirroring
// the bed number onto the patient.
func (s *Service) AssignBed(ctx context.Context, bedID, patientID string) (Bed, Result, error) {
	return mutate(ctx, s, "assign_bed", func(tx Transaction) (Bed, error) {
		return assignBed(tx, bedID, patientID)
	})
}

func assignBed(tx Transaction, bedID, patientID string) (Bed, error) {
	date := tx.Now().Format(domain.DateLayout)
	bed, err := tx.UpdateBed(bedID, func(b *Bed) error {
		pid := patientID
		b.PatientID = &pid
		b.AssignedDate = &date
		b.Status = domain.BedOccupied
		return nil
	})
	if err != nil {
		return Bed{}, err
	}
	if _, err := tx.UpdatePatient(patientID, func(p *Patient) error {
		p.BedNumber = bed.Number
		return nil
	}); err != nil {
		return Bed{}, err
	}
	return bed, nil
}

// ReleaseBed empties the bed and clears the released patient's bed number.
func (s *Service) ReleaseBed(ctx context.Context, bedID string) (Bed, Result, error) {
	return mutate(ctx, s, "release_bed", func(tx Transaction) (Bed, error) {
		return releaseBed(tx, bedID)
	})
}

func releaseBed(tx Transaction, bedID string) (Bed, error) {
	var occupant *string
	bed, err := tx.UpdateBed(bedID, func(b *Bed) error {
		occupant = b.PatientID
		b.PatientID = nil
		b.AssignedDate = nil
		b.Status = domain.BedAvailable
		return nil
	})
	if err != nil || occupant == nil {
		return bed, err
	}
	if p, ok := tx.Snapshot().FindPatient(*occupant); ok && p.BedNumber == bed.Number {
		if _, err := tx.UpdatePatient(p.ID, func(p *Patient) error {
			p.BedNumber = ""
			return nil
		}); err != nil {
			return Bed{}, err
		}
	}
	return bed, nil
}

// TransferPatient releases whichever bed holds the patient and assigns newBedID.
// With no current bed it is a plain assignment.
func (s *Service) TransferPatient(ctx context.Context, patientID, newBedID string) (Bed, Result, error) {
	return mutate(ctx, s, "transfer_patient", func(tx Transaction) (Bed, error) {
		view := tx.Snapshot()
		if _, ok := view.FindPatient(patientID); !ok {
			return Bed{}, NotFoundError{Entity: EntityPatient, ID: patientID}
		}
		if _, ok := view.FindBed(newBedID); !ok {
			return Bed{}, NotFoundError{Entity: EntityBed, ID: newBedID}
		}
		for _, bed := range view.ListBeds() {
			if bed.PatientID != nil && *bed.PatientID == patientID {
				if _, err := releaseBed(tx, bed.ID); err != nil {
					return Bed{}, err
				}
			}
		}
		return assignBed(tx, newBedID, patientID)
	})
}

// UpdateBedStatus overrides the bed status. Moving an occupied bed off
// occupied, or marking an empty bed occupied, is blocked by bed_occupancy.
func (s *Service) UpdateBedStatus(ctx context.Context, bedID string, status domain.BedStatus) (Bed, Result, error) {
	return mutate(ctx, s, "update_bed_status", func(tx Transaction) (Bed, error) {
		return tx.UpdateBed(bedID, func(b *Bed) error {
			b.Status = status
			return nil
		})
	})
}

// AddBed appends a bed. Status defaults to available.
func (s *Service) AddBed(ctx context.Context, bed Bed) (Bed, Result, error) {
	return mutate(ctx, s, "add_bed", func(tx Transaction) (Bed, error) {
		return tx.CreateBed(bed)
	})
}

// UpdateBed merges patch into the bed; a renumbered occupied bed carries its
// occupant's bed number along.
func (s *Service) UpdateBed(ctx context.Context, id string, patch domain.BedPatch) (Bed, Result, error) {
	return mutate(ctx, s, "update_bed", func(tx Transaction) (Bed, error) {
		bed, err := tx.UpdateBed(id, func(b *Bed) error {
			patch.Apply(b)
			return nil
		})
		if err != nil || bed.PatientID == nil {
			return bed, err
		}
		if _, err := tx.UpdatePatient(*bed.PatientID, func(p *Patient) error {
			p.BedNumber = bed.Number
			return nil
		}); err != nil {
			return Bed{}, err
		}
		return bed, nil
	})
}

// DeleteBed removes the bed and clears its occupant's bed number.
func (s *Service) DeleteBed(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_bed", func(tx Transaction) error {
		bed, ok := tx.Snapshot().FindBed(id)
		if !ok {
			return NotFoundError{Entity: EntityBed, ID: id}
		}
		if err := tx.DeleteBed(id); err != nil {
			return err
		}
		if bed.PatientID == nil {
			return nil
		}
		if _, found := tx.Snapshot().FindPatient(*bed.PatientID); !found {
			return nil
		}
		_, err := tx.UpdatePatient(*bed.PatientID, func(p *Patient) error {
			p.BedNumber = ""
			return nil
		})
		return err
	})
}

// Appointments.

// AddAppointment appends an appointment.
func (s *Service) AddAppointment(ctx context.Context, a Appointment) (Appointment, Result, error) {
	return mutate(ctx, s, "add_appointment", func(tx Transaction) (Appointment, error) {
		return tx.CreateAppointment(a)
	})
}

// UpdateAppointment merges patch into the appointment.
func (s *Service) UpdateAppointment(ctx context.Context, id string, patch domain.AppointmentPatch) (Appointment, Result, error) {
	return mutate(ctx, s, "update_appointment", func(tx Transaction) (Appointment, error) {
		return tx.UpdateAppointment(id, func(a *Appointment) error {
			patch.Apply(a)
			return nil
		})
	})
}

// DeleteAppointment removes an appointment.
func (s *Service) DeleteAppointment(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_appointment", func(tx Transaction) error {
		return tx.DeleteAppointment(id)
	})
}

// Orders.

// AddOrder appends an order.
func (s *Service) AddOrder(ctx context.Context, o Order) (Order, Result, error) {
	return mutate(ctx, s, "add_order", func(tx Transaction) (Order, error) {
		return tx.CreateOrder(o)
	})
}

// UpdateOrder merges patch into the order.
func (s *Service) UpdateOrder(ctx context.Context, id string, patch domain.OrderPatch) (Order, Result, error) {
	return mutate(ctx, s, "update_order", func(tx Transaction) (Order, error) {
		return tx.UpdateOrder(id, func(o *Order) error {
			patch.Apply(o)
			return nil
		})
	})
}

// DeleteOrder removes an order.
func (s *Service) DeleteOrder(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_order", func(tx Transaction) error {
		return tx.DeleteOrder(id)
	})
}

// Medications.

// AddMedication appends a medication.
func (s *Service) AddMedication(ctx context.Context, m Medication) (Medication, Result, error) {
	return mutate(ctx, s, "add_medication", func(tx Transaction) (Medication, error) {
		return tx.CreateMedication(m)
	})
}

// UpdateMedication merges patch into the medication.
func (s *Service) UpdateMedication(ctx context.Context, id string, patch domain.MedicationPatch) (Medication, Result, error) {
	return mutate(ctx, s, "update_medication", func(tx Transaction) (Medication, error) {
		return tx.UpdateMedication(id, func(m *Medication) error {
			patch.Apply(m)
			return nil
		})
	})
}

// DeleteMedication removes a medication.
func (s *Service) DeleteMedication(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_medication", func(tx Transaction) error {
		return tx.DeleteMedication(id)
	})
}

// AdministerMedication prepends a dose to the administration log. Status is unchanged.
func (s *Service) AdministerMedication(ctx context.Context, id, administeredBy, notes string) (Medication, Result, error) {
	med, res, err := mutate(ctx, s, "administer_medication", func(tx Transaction) (Medication, error) {
		entry := Administration{Timestamp: tx.Now(), AdministeredBy: administeredBy, Notes: notes}
		return tx.UpdateMedication(id, func(m *Medication) error {
			m.AdministrationLog = append([]Administration{entry}, m.AdministrationLog...)
			return nil
		})
	})
	return reread(med, res, err, s.store.GetMedication)
}

// Staff.

// AddStaff appends a staff member.
func (s *Service) AddStaff(ctx context.Context, st Staff) (Staff, Result, error) {
	return mutate(ctx, s, "add_staff", func(tx Transaction) (Staff, error) {
		return tx.CreateStaff(st)
	})
}

// UpdateStaff merges patch into the staff member.
func (s *Service) UpdateStaff(ctx context.Context, id string, patch domain.StaffPatch) (Staff, Result, error) {
	return mutate(ctx, s, "update_staff", func(tx Transaction) (Staff, error) {
		return tx.UpdateStaff(id, func(st *Staff) error {
			patch.Apply(st)
			return nil
		})
	})
}

// DeleteStaff removes a staff member.
func (s *Service) DeleteStaff(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_staff", func(tx Transaction) error {
		return tx.DeleteStaff(id)
	})
}

// Bills.

// AddBill appends a bill.
func (s *Service) AddBill(ctx context.Context, b Bill) (Bill, Result, error) {
	return mutate(ctx, s, "add_bill", func(tx Transaction) (Bill, error) {
		return tx.CreateBill(b)
	})
}

// UpdateBill merges patch into the bill.
func (s *Service) UpdateBill(ctx context.Context, id string, patch domain.BillPatch) (Bill, Result, error) {
	return mutate(ctx, s, "update_bill", func(tx Transaction) (Bill, error) {
		return tx.UpdateBill(id, func(b *Bill) error {
			patch.Apply(b)
			return nil
		})
	})
}

// DeleteBill removes a bill.
func (s *Service) DeleteBill(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_bill", func(tx Transaction) error {
		return tx.DeleteBill(id)
	})
}

// Alerts.

// AddAlert prepends an alert; the timestamp defaults to now.
func (s *Service) AddAlert(ctx context.Context, a Alert) (Alert, Result, error) {
	return mutate(ctx, s, "add_alert", func(tx Transaction) (Alert, error) {
		return tx.CreateAlert(a)
	})
}

// MarkAlertAsRead sets the alert's read flag.
func (s *Service) MarkAlertAsRead(ctx context.Context, id string) (Alert, Result, error) {
	return mutate(ctx, s, "mark_alert_read", func(tx Transaction) (Alert, error) {
		return tx.UpdateAlert(id, func(a *Alert) error {
			a.Read = true
			return nil
		})
	})
}

// MarkAllAlertsAsRead sets the read flag on every unread alert.
func (s *Service) MarkAllAlertsAsRead(ctx context.Context) (Result, error) {
	return s.run(ctx, "mark_all_alerts_read", func(tx Transaction) error {
		for _, a := range tx.Snapshot().ListAlerts() {
			if a.Read {
				continue
			}
			if _, err := tx.UpdateAlert(a.ID, func(a *Alert) error {
				a.Read = true
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteAlert removes an alert.
func (s *Service) DeleteAlert(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_alert", func(tx Transaction) error {
		return tx.DeleteAlert(id)
	})
}

// Analytics.

// GetAnalytics returns the dashboard summary, recomputed only when the store
// version or the calendar date changed since the last call.
func (s *Service) GetAnalytics() Analytics {
	now := s.now()
	date := now.Format(domain.DateLayout)
	version := s.store.Version()

	s.analyticsMu.Lock()
	defer s.analyticsMu.Unlock()
	if c := s.analytics; c != nil && c.version == version && c.date == date {
		return cloneAnalytics(c.value)
	}
	start := time.Now()
	snap, version := s.store.ExportVersionedState()
	value := domain.ComputeAnalytics(snap, now)
	s.analytics = &analyticsEntry{version: version, date: date, value: value}
	s.metrics.Observe(context.Background(), "get_analytics", true, time.Since(start))
	if occ, ok := s.metrics.(OccupancyObserver); ok {
		occ.ObserveOccupancy(value.OccupancyRate / 100)
	}
	return cloneAnalytics(value)
}

func cloneAnalytics(a Analytics) Analytics {
	a.PatientsByCondition = maps.Clone(a.PatientsByCondition)
	return a
}

// Reads.

// Patients returns every patient in collection order.
func (s *Service) Patients() []Patient { return s.store.ListPatients() }

// Beds returns every bed in collection order.
func (s *Service) Beds() []Bed { return s.store.ListBeds() }

// Appointments returns every appointment in collection order.
func (s *Service) Appointments() []Appointment { return s.store.ListAppointments() }

// Orders returns every order in collection order.
func (s *Service) Orders() []Order { return s.store.ListOrders() }

// Medications returns every medication in collection order.
func (s *Service) Medications() []Medication { return s.store.ListMedications() }

// Staff returns every staff member in collection order.
func (s *Service) Staff() []Staff { return s.store.ListStaff() }

// Alerts returns every alert, newest first.
func (s *Service) Alerts() []Alert { return s.store.ListAlerts() }

// Bills returns every bill in collection order.
func (s *Service) Bills() []Bill { return s.store.ListBills() }

func (s *Service) Patient(id string) (Patient, bool)         { return s.store.GetPatient(id) }
func (s *Service) Bed(id string) (Bed, bool)                 { return s.store.GetBed(id) }
func (s *Service) Appointment(id string) (Appointment, bool) { return s.store.GetAppointment(id) }
func (s *Service) Order(id string) (Order, bool)             { return s.store.GetOrder(id) }
func (s *Service) Medication(id string) (Medication, bool)   { return s.store.GetMedication(id) }
func (s *Service) StaffMember(id string) (Staff, bool)       { return s.store.GetStaff(id) }
func (s *Service) Alert(id string) (Alert, bool)             { return s.store.GetAlert(id) }
func (s *Service) Bill(id string) (Bill, bool)               { return s.store.GetBill(id) }

// Snapshot returns the full aggregate.
func (s *Service) Snapshot() Snapshot { return s.store.ExportState() }

// Version returns the store's state version.
func (s *Service) Version() uint64 { return s.store.Version() }

// VersionedSnapshot returns a snapshot and the store version it reflects.
func (s *Service) VersionedSnapshot() (Snapshot, uint64) { return s.store.ExportVersionedState() }
