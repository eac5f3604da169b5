package domain

import (
	"context"
	"time"
)

// Record returns the common record fields.
func (b Base) Record() Base { return b }

// SetRecord overwrites the common record fields.
func (b *Base) SetRecord(r Base) { *b = r }

// Snapshot is the full aggregate state. Collection order is meaningful:
// alerts are newest first, every other collection is in insertion order.
type Snapshot struct {
	Patients     []Patient     `json:"patients"`
	Beds         []Bed         `json:"beds"`
	Appointments []Appointment `json:"appointments"`
	Orders       []Order       `json:"orders"`
	Medications  []Medication  `json:"medications"`
	Staff        []Staff       `json:"staff"`
	Alerts       []Alert       `json:"alerts"`
	Bills        []Bill        `json:"bills"`
}

// IsEmpty reports whether every collection is empty.
func (s Snapshot) IsEmpty() bool {
	return len(s.Patients) == 0 && len(s.Beds) == 0 && len(s.Appointments) == 0 &&
		len(s.Orders) == 0 && len(s.Medications) == 0 && len(s.Staff) == 0 &&
		len(s.Alerts) == 0 && len(s.Bills) == 0
}

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Update and delete return NotFoundError
// for unknown ids.
type Transaction interface {
	Snapshot() TransactionView
	Now() time.Time

	CreatePatient(Patient) (Patient, error)
	UpdatePatient(id string, mutator func(*Patient) error) (Patient, error)
	DeletePatient(id string) error
	CreateBed(Bed) (Bed, error)
	UpdateBed(id string, mutator func(*Bed) error) (Bed, error)
	DeleteBed(id string) error
	CreateAppointment(Appointment) (Appointment, error)
	UpdateAppointment(id string, mutator func(*Appointment) error) (Appointment, error)
	DeleteAppointment(id string) error
	CreateOrder(Order) (Order, error)
	UpdateOrder(id string, mutator func(*Order) error) (Order, error)
	DeleteOrder(id string) error
	CreateMedication(Medication) (Medication, error)
	UpdateMedication(id string, mutator func(*Medication) error) (Medication, error)
	DeleteMedication(id string) error
	CreateStaff(Staff) (Staff, error)
	UpdateStaff(id string, mutator func(*Staff) error) (Staff, error)
	DeleteStaff(id string) error
	// CreateAlert prepends, keeping alerts newest first.
	CreateAlert(Alert) (Alert, error)
	UpdateAlert(id string, mutator func(*Alert) error) (Alert, error)
	DeleteAlert(id string) error
	CreateBill(Bill) (Bill, error)
	UpdateBill(id string, mutator func(*Bill) error) (Bill, error)
	DeleteBill(id string) error

	// Evict records entries dropped by a retention policy so they can be archived after commit.
	Evict(Eviction)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	RuleView
	ListAppointments() []Appointment
	ListOrders() []Order
	ListMedications() []Medication
	ListStaff() []Staff
	ListAlerts() []Alert
	ListBills() []Bill
	FindAppointment(id string) (Appointment, bool)
	FindOrder(id string) (Order, bool)
	FindMedication(id string) (Medication, bool)
	FindStaff(id string) (Staff, bool)
	FindAlert(id string) (Alert, bool)
	FindBill(id string) (Bill, bool)
}

// CommitInfo describes a committed transaction.
type CommitInfo struct {
	Version   uint64
	Changes   []Change
	Evictions []Eviction
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	// Commit behaves like RunInTransaction and also reports what was committed.
	Commit(ctx context.Context, fn func(Transaction) error) (CommitInfo, Result, error)
	// ReplaceState swaps the whole aggregate, persisting it where applicable.
	ReplaceState(ctx context.Context, snapshot Snapshot) error
	ExportState() Snapshot
	// ExportVersionedState returns the state together with the version it was read at.
	ExportVersionedState() (Snapshot, uint64)
	// Version increments on every committed transaction or state replacement.
	Version() uint64
	// HasPersistedState reports whether state was loaded from durable storage at open.
	HasPersistedState() bool
	Close() error

	ListPatients() []Patient
	ListBeds() []Bed
	ListAppointments() []Appointment
	ListOrders() []Order
	ListMedications() []Medication
	ListStaff() []Staff
	ListAlerts() []Alert
	ListBills() []Bill
	GetPatient(id string) (Patient, bool)
	GetBed(id string) (Bed, bool)
	GetAppointment(id string) (Appointment, bool)
	GetOrder(id string) (Order, bool)
	GetMedication(id string) (Medication, bool)
	GetStaff(id string) (Staff, bool)
	GetAlert(id string) (Alert, bool)
	GetBill(id string) (Bill, bool)
}
