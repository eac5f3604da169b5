// Package memory provides the in-memory transactional store that every
// wardcore persistence backend builds upon. Used directly it is ephemeral.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"wardcore/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// CommitInfo aliases domain.CommitInfo.
	CommitInfo = domain.CommitInfo
)

// PersistFunc mirrors committed state to durable storage. It runs while the
// store's write lock is held, so calls are serialised in commit order.
// touched lists the collections the commit changed.
type PersistFunc func(ctx context.Context, touched []domain.EntityType, state Snapshot) error

// Store provides an in-memory transactional store for the hospital domain.
type Store struct {
	mu      sync.RWMutex
	state   memoryState
	engine  *RulesEngine
	nowFn   func() time.Time
	version uint64
	persist PersistFunc
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  utcNow,
	}
}

// SetNowFunc replaces the clock used to stamp records. Used by tests.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		fn = utcNow
	}
	s.nowFn = fn
}

// SetPersistFunc installs the hook durable stores use to mirror commits.
func (s *Store) SetPersistFunc(fn PersistFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist = fn
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ExportVersionedState is ExportState plus the version, read under one lock.
func (s *Store) ExportVersionedState() (Snapshot, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state), s.version
}

// ImportState replaces the store state with the normalized snapshot without
// invoking the persist hook. Backends use it when loading.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(NormalizeSnapshot(snapshot))
	s.version++
}

// ReplaceState swaps the whole aggregate and mirrors it through the persist hook.
func (s *Store) ReplaceState(ctx context.Context, snapshot Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(NormalizeSnapshot(snapshot))
	s.version++
	if s.persist == nil {
		return nil
	}
	if err := s.persist(ctx, domain.EntityTypes, snapshotFromMemoryState(s.state)); err != nil {
		return fmt.Errorf("persist replaced state: %w", err)
	}
	return nil
}

// Version reports the number of committed transactions and replacements.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// HasPersistedState is always false for the ephemeral store.
func (s *Store) HasPersistedState() bool { return false }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// Transaction represents a mutation set applied to the store state.
type transaction struct {
	state     memoryState
	changes   []Change
	evictions []domain.Eviction
	now       time.Time
}

// TransactionView exposes a read-only snapshot of the transactional state to rules.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	_, res, err := s.Commit(ctx, fn)
	return res, err
}

// Commit executes fn within a transactional copy of the store state and, when
// no rule blocks, swaps it in and reports the committed changes. A persist
// hook failure is returned after the in-memory commit has taken effect.
func (s *Store) Commit(ctx context.Context, fn func(tx Transaction) error) (CommitInfo, Result, error) {
	if err := ctx.Err(); err != nil {
		return CommitInfo{}, Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return CommitInfo{}, Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return CommitInfo{}, Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return CommitInfo{}, res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	s.version++
	info := CommitInfo{Version: s.version, Changes: tx.changes, Evictions: tx.evictions}

	if touched := touchedKinds(tx.changes); s.persist != nil && len(touched) > 0 {
		if err := s.persist(ctx, touched, snapshotFromMemoryState(s.state)); err != nil {
			return info, result, fmt.Errorf("persist commit %d: %w", info.Version, err)
		}
	}
	return info, result, nil
}

func touchedKinds(changes []Change) []domain.EntityType {
	seen := make(map[domain.EntityType]bool, len(changes))
	for _, c := range changes {
		seen[c.Entity] = true
	}
	out := make([]domain.EntityType, 0, len(seen))
	for _, kind := range domain.EntityTypes {
		if seen[kind] {
			out = append(out, kind)
		}
	}
	return out
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// Now returns the timestamp stamped on every record touched by the transaction.
func (tx *transaction) Now() time.Time { return tx.now }

// Evict queues entries trimmed by a retention policy.
func (tx *transaction) Evict(e domain.Eviction) {
	if e.EvictedAt.IsZero() {
		e.EvictedAt = tx.now
	}
	tx.evictions = append(tx.evictions, e)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

func insert[T any, P record[T]](tx *transaction, kind domain.EntityType, items *[]T, v T, clone func(T) T, prepend bool) (T, error) {
	var zero T
	rec := P(&v).Record()
	if rec.ID == "" {
		rec.ID = NewID(kind, tx.now)
		for indexOf[T, P](*items, rec.ID) >= 0 {
			rec.ID = NewID(kind, tx.now)
		}
	} else if indexOf[T, P](*items, rec.ID) >= 0 {
		return zero, fmt.Errorf("%s %q already exists", kind, rec.ID)
	}
	rec.CreatedAt = tx.now
	rec.UpdatedAt = tx.now
	P(&v).SetRecord(rec)
	if prepend {
		*items = slices.Insert(*items, 0, clone(v))
	} else {
		*items = append(*items, clone(v))
	}
	tx.recordChange(Change{Entity: kind, Action: domain.ActionCreate, EntityID: rec.ID, After: clone(v)})
	return clone(v), nil
}

func update[T any, P record[T]](tx *transaction, kind domain.EntityType, items *[]T, id string, mutator func(*T) error, clone func(T) T) (T, error) {
	var zero T
	i := indexOf[T, P](*items, id)
	if i < 0 {
		return zero, domain.NotFoundError{Entity: kind, ID: id}
	}
	before := clone((*items)[i])
	current := clone((*items)[i])
	if err := mutator(&current); err != nil {
		return zero, err
	}
	rec := P(&before).Record()
	rec.UpdatedAt = tx.now
	P(&current).SetRecord(rec)
	(*items)[i] = clone(current)
	tx.recordChange(Change{Entity: kind, Action: domain.ActionUpdate, EntityID: id, Before: before, After: clone(current)})
	return clone(current), nil
}

func remove[T any, P record[T]](tx *transaction, kind domain.EntityType, items *[]T, id string) error {
	i := indexOf[T, P](*items, id)
	if i < 0 {
		return domain.NotFoundError{Entity: kind, ID: id}
	}
	before := (*items)[i]
	*items = slices.Delete(*items, i, i+1)
	tx.recordChange(Change{Entity: kind, Action: domain.ActionDelete, EntityID: id, Before: before})
	return nil
}

// CreatePatient appends a new patient.
func (tx *transaction) CreatePatient(p Patient) (Patient, error) {
	if p.Status == "" {
		p.Status = domain.PatientActive
	}
	return insert(tx, domain.EntityPatient, &tx.state.patients, p, clonePatient, false)
}

// UpdatePatient mutates a patient using the provided mutator function.
func (tx *transaction) UpdatePatient(id string, mutator func(*Patient) error) (Patient, error) {
	return update(tx, domain.EntityPatient, &tx.state.patients, id, mutator, clonePatient)
}

// DeletePatient removes a patient.
func (tx *transaction) DeletePatient(id string) error {
	return remove[Patient](tx, domain.EntityPatient, &tx.state.patients, id)
}

// CreateBed appends a new bed.
func (tx *transaction) CreateBed(b Bed) (Bed, error) {
	if b.Status == "" {
		b.Status = domain.BedAvailable
	}
	return insert(tx, domain.EntityBed, &tx.state.beds, b, cloneBed, false)
}

// UpdateBed mutates a bed.
func (tx *transaction) UpdateBed(id string, mutator func(*Bed) error) (Bed, error) {
	return update(tx, domain.EntityBed, &tx.state.beds, id, mutator, cloneBed)
}

// DeleteBed removes a bed.
func (tx *transaction) DeleteBed(id string) error {
	return remove[Bed](tx, domain.EntityBed, &tx.state.beds, id)
}

// CreateAppointment appends a new appointment.
func (tx *transaction) CreateAppointment(a Appointment) (Appointment, error) {
	return insert(tx, domain.EntityAppointment, &tx.state.appointments, a, cloneAppointment, false)
}

// UpdateAppointment mutates an appointment.
func (tx *transaction) UpdateAppointment(id string, mutator func(*Appointment) error) (Appointment, error) {
	return update(tx, domain.EntityAppointment, &tx.state.appointments, id, mutator, cloneAppointment)
}

// DeleteAppointment removes an appointment.
func (tx *transaction) DeleteAppointment(id string) error {
	return remove[Appointment](tx, domain.EntityAppointment, &tx.state.appointments, id)
}

// CreateOrder appends a new order.
func (tx *transaction) CreateOrder(o Order) (Order, error) {
	return insert(tx, domain.EntityOrder, &tx.state.orders, o, cloneOrder, false)
}

// UpdateOrder mutates an order.
func (tx *transaction) UpdateOrder(id string, mutator func(*Order) error) (Order, error) {
	return update(tx, domain.EntityOrder, &tx.state.orders, id, mutator, cloneOrder)
}

// DeleteOrder removes an order.
func (tx *transaction) DeleteOrder(id string) error {
	return remove[Order](tx, domain.EntityOrder, &tx.state.orders, id)
}

// CreateMedication appends a new medication.
func (tx *transaction) CreateMedication(m Medication) (Medication, error) {
	return insert(tx, domain.EntityMedication, &tx.state.medications, m, cloneMedication, false)
}

// UpdateMedication mutates a medication.
func (tx *transaction) UpdateMedication(id string, mutator func(*Medication) error) (Medication, error) {
	return update(tx, domain.EntityMedication, &tx.state.medications, id, mutator, cloneMedication)
}

// DeleteMedication removes a medication.
func (tx *transaction) DeleteMedication(id string) error {
	return remove[Medication](tx, domain.EntityMedication, &tx.state.medications, id)
}

// CreateStaff appends a new staff member.
func (tx *transaction) CreateStaff(st Staff) (Staff, error) {
	return insert(tx, domain.EntityStaff, &tx.state.staff, st, cloneStaff, false)
}

// UpdateStaff mutates a staff member.
func (tx *transaction) UpdateStaff(id string, mutator func(*Staff) error) (Staff, error) {
	return update(tx, domain.EntityStaff, &tx.state.staff, id, mutator, cloneStaff)
}

// DeleteStaff removes a staff member.
func (tx *transaction) DeleteStaff(id string) error {
	return remove[Staff](tx, domain.EntityStaff, &tx.state.staff, id)
}

// CreateAlert prepends a new alert so the list stays newest first.
func (tx *transaction) CreateAlert(a Alert) (Alert, error) {
	if a.Timestamp.IsZero() {
		a.Timestamp = tx.now
	}
	return insert(tx, domain.EntityAlert, &tx.state.alerts, a, cloneAlert, true)
}

// UpdateAlert mutates an alert.
func (tx *transaction) UpdateAlert(id string, mutator func(*Alert) error) (Alert, error) {
	return update(tx, domain.EntityAlert, &tx.state.alerts, id, mutator, cloneAlert)
}

// DeleteAlert removes an alert.
func (tx *transaction) DeleteAlert(id string) error {
	return remove[Alert](tx, domain.EntityAlert, &tx.state.alerts, id)
}

// CreateBill appends a new bill.
func (tx *transaction) CreateBill(b Bill) (Bill, error) {
	return insert(tx, domain.EntityBill, &tx.state.bills, b, cloneBill, false)
}

// UpdateBill mutates a bill.
func (tx *transaction) UpdateBill(id string, mutator func(*Bill) error) (Bill, error) {
	return update(tx, domain.EntityBill, &tx.state.bills, id, mutator, cloneBill)
}

// DeleteBill removes a bill.
func (tx *transaction) DeleteBill(id string) error {
	return remove[Bill](tx, domain.EntityBill, &tx.state.bills, id)
}

// ListPatients returns all patients within the view.
func (v transactionView) ListPatients() []Patient { return cloneAll(v.state.patients, clonePatient) }

// ListBeds returns all beds within the view.
func (v transactionView) ListBeds() []Bed { return cloneAll(v.state.beds, cloneBed) }

// ListAppointments returns all appointments within the view.
func (v transactionView) ListAppointments() []Appointment {
	return cloneAll(v.state.appointments, cloneAppointment)
}

// ListOrders returns all orders within the view.
func (v transactionView) ListOrders() []Order { return cloneAll(v.state.orders, cloneOrder) }

// ListMedications returns all medications within the view.
func (v transactionView) ListMedications() []Medication {
	return cloneAll(v.state.medications, cloneMedication)
}

// ListStaff returns all staff within the view.
func (v transactionView) ListStaff() []Staff { return cloneAll(v.state.staff, cloneStaff) }

// ListAlerts returns all alerts within the view, newest first.
func (v transactionView) ListAlerts() []Alert { return cloneAll(v.state.alerts, cloneAlert) }

// ListBills returns all bills within the view.
func (v transactionView) ListBills() []Bill { return cloneAll(v.state.bills, cloneBill) }

// FindPatient retrieves a patient by ID.
func (v transactionView) FindPatient(id string) (Patient, bool) {
	return find[Patient](v.state.patients, id, clonePatient)
}

// FindBed retrieves a bed by ID.
func (v transactionView) FindBed(id string) (Bed, bool) {
	return find[Bed](v.state.beds, id, cloneBed)
}

// FindAppointment retrieves an appointment by ID.
func (v transactionView) FindAppointment(id string) (Appointment, bool) {
	return find[Appointment](v.state.appointments, id, cloneAppointment)
}

// FindOrder retrieves an order by ID.
func (v transactionView) FindOrder(id string) (Order, bool) {
	return find[Order](v.state.orders, id, cloneOrder)
}

// FindMedication retrieves a medication by ID.
func (v transactionView) FindMedication(id string) (Medication, bool) {
	return find[Medication](v.state.medications, id, cloneMedication)
}

// FindStaff retrieves a staff member by ID.
func (v transactionView) FindStaff(id string) (Staff, bool) {
	return find[Staff](v.state.staff, id, cloneStaff)
}

// FindAlert retrieves an alert by ID.
func (v transactionView) FindAlert(id string) (Alert, bool) {
	return find[Alert](v.state.alerts, id, cloneAlert)
}

// FindBill retrieves a bill by ID.
func (v transactionView) FindBill(id string) (Bill, bool) {
	return find[Bill](v.state.bills, id, cloneBill)
}

func (s *Store) view() transactionView {
	return transactionView{state: &s.state}
}

// ListPatients returns committed patients in insertion order.
func (s *Store) ListPatients() []Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListPatients()
}

// ListBeds returns committed beds.
func (s *Store) ListBeds() []Bed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListBeds()
}

// ListAppointments returns committed appointments.
func (s *Store) ListAppointments() []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListAppointments()
}

// ListOrders returns committed orders.
func (s *Store) ListOrders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListOrders()
}

// ListMedications returns committed medications.
func (s *Store) ListMedications() []Medication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListMedications()
}

// ListStaff returns committed staff.
func (s *Store) ListStaff() []Staff {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListStaff()
}

// ListAlerts returns committed alerts, newest first.
func (s *Store) ListAlerts() []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListAlerts()
}

// ListBills returns committed bills.
func (s *Store) ListBills() []Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListBills()
}

// GetPatient retrieves a committed patient by ID.
func (s *Store) GetPatient(id string) (Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindPatient(id)
}

// GetBed retrieves a committed bed by ID.
func (s *Store) GetBed(id string) (Bed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindBed(id)
}

// GetAppointment retrieves a committed appointment by ID.
func (s *Store) GetAppointment(id string) (Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindAppointment(id)
}

// GetOrder retrieves a committed order by ID.
func (s *Store) GetOrder(id string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindOrder(id)
}

// GetMedication retrieves a committed medication by ID.
func (s *Store) GetMedication(id string) (Medication, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindMedication(id)
}

// GetStaff retrieves a committed staff member by ID.
func (s *Store) GetStaff(id string) (Staff, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindStaff(id)
}

// GetAlert retrieves a committed alert by ID.
func (s *Store) GetAlert(id string) (Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindAlert(id)
}

// GetBill retrieves a committed bill by ID.
func (s *Store) GetBill(id string) (Bill, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindBill(id)
}
