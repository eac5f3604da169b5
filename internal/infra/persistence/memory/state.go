package memory

import (
	"time"

	"wardcore/pkg/domain"
)

type (
	// Patient aliases domain.Patient for in-memory persistence operations.
	Patient = domain.Patient
	// Bed aliases domain.Bed.
	Bed = domain.Bed
	// Appointment aliases domain.Appointment.
	Appointment = domain.Appointment
	// Order aliases domain.Order.
	Order = domain.Order
	// Medication aliases domain.Medication.
	Medication = domain.Medication
	// Staff aliases domain.Staff.
	Staff = domain.Staff
	// Alert aliases domain.Alert.
	Alert = domain.Alert
	// Bill aliases domain.Bill.
	Bill = domain.Bill
	// Snapshot aliases domain.Snapshot.
	Snapshot = domain.Snapshot
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
)

// record is satisfied by pointers to every entity through the embedded domain.Base.
type record[T any] interface {
	*T
	EntityID() string
	Record() domain.Base
	SetRecord(domain.Base)
}

type memoryState struct {
	patients     []Patient
	beds         []Bed
	appointments []Appointment
	orders       []Order
	medications  []Medication
	staff        []Staff
	alerts       []Alert
	bills        []Bill
}

func newMemoryState() memoryState {
	return memoryState{
		patients:     []Patient{},
		beds:         []Bed{},
		appointments: []Appointment{},
		orders:       []Order{},
		medications:  []Medication{},
		staff:        []Staff{},
		alerts:       []Alert{},
		bills:        []Bill{},
	}
}

func (s memoryState) clone() memoryState {
	return memoryState{
		patients:     cloneAll(s.patients, clonePatient),
		beds:         cloneAll(s.beds, cloneBed),
		appointments: cloneAll(s.appointments, cloneAppointment),
		orders:       cloneAll(s.orders, cloneOrder),
		medications:  cloneAll(s.medications, cloneMedication),
		staff:        cloneAll(s.staff, cloneStaff),
		alerts:       cloneAll(s.alerts, cloneAlert),
		bills:        cloneAll(s.bills, cloneBill),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	cloned := state.clone()
	return Snapshot{
		Patients:     cloned.patients,
		Beds:         cloned.beds,
		Appointments: cloned.appointments,
		Orders:       cloned.orders,
		Medications:  cloned.medications,
		Staff:        cloned.staff,
		Alerts:       cloned.alerts,
		Bills:        cloned.bills,
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	return memoryState{
		patients:     s.Patients,
		beds:         s.Beds,
		appointments: s.Appointments,
		orders:       s.Orders,
		medications:  s.Medications,
		staff:        s.Staff,
		alerts:       s.Alerts,
		bills:        s.Bills,
	}.clone()
}

// NormalizeSnapshot repairs a loaded snapshot so that it satisfies the
// bed/patient invariants: dangling or duplicate bed references are cleared,
// bed status agrees with its reference, and every patient's bed number is
// derived from the bed that references it. Valid snapshots pass unchanged.
func NormalizeSnapshot(snapshot Snapshot) Snapshot {
	state := memoryStateFromSnapshot(snapshot)

	patientIdx := make(map[string]int, len(state.patients))
	for i, p := range state.patients {
		patientIdx[p.ID] = i
	}
	bedNumbers := make(map[string]string, len(state.beds))
	for i := range state.beds {
		bed := &state.beds[i]
		if bed.PatientID == nil {
			if bed.Status == domain.BedOccupied {
				bed.Status = domain.BedAvailable
				bed.AssignedDate = nil
			}
			continue
		}
		pid := *bed.PatientID
		pi, ok := patientIdx[pid]
		_, claimed := bedNumbers[pid]
		switch {
		case !ok || claimed:
			bed.PatientID = nil
			bed.AssignedDate = nil
			bed.Status = domain.BedAvailable
		case state.patients[pi].Status != domain.PatientActive:
			bed.PatientID = nil
			bed.AssignedDate = nil
			bed.Status = domain.BedCleaning
		default:
			bed.Status = domain.BedOccupied
			bedNumbers[pid] = bed.Number
		}
	}
	for i := range state.patients {
		state.patients[i].BedNumber = bedNumbers[state.patients[i].ID]
	}
	return snapshotFromMemoryState(state)
}

func cloneAll[T any](items []T, clone func(T) T) []T {
	out := make([]T, 0, len(items))
	for _, v := range items {
		out = append(out, clone(v))
	}
	return out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func clonePatient(p Patient) Patient {
	cp := p
	cp.Allergies = append([]string{}, p.Allergies...)
	if p.Vitals != nil {
		v := *p.Vitals
		cp.Vitals = &v
	}
	cp.VitalsHistory = append([]domain.Vitals{}, p.VitalsHistory...)
	return cp
}

func cloneBed(b Bed) Bed {
	cp := b
	cp.PatientID = cloneString(b.PatientID)
	cp.AssignedDate = cloneString(b.AssignedDate)
	return cp
}

func cloneAppointment(a Appointment) Appointment { return a }

func cloneOrder(o Order) Order {
	cp := o
	cp.Result = cloneString(o.Result)
	cp.CompletedDate = cloneString(o.CompletedDate)
	return cp
}

func cloneMedication(m Medication) Medication {
	cp := m
	cp.AdministrationLog = append([]domain.Administration{}, m.AdministrationLog...)
	return cp
}

func cloneStaff(s Staff) Staff { return s }

func cloneAlert(a Alert) Alert {
	cp := a
	cp.PatientID = cloneString(a.PatientID)
	return cp
}

func cloneBill(b Bill) Bill {
	cp := b
	cp.Items = append([]domain.BillItem{}, b.Items...)
	cp.InsuranceClaim = cloneString(b.InsuranceClaim)
	return cp
}

func indexOf[T any, P record[T]](items []T, id string) int {
	for i := range items {
		if P(&items[i]).EntityID() == id {
			return i
		}
	}
	return -1
}

func find[T any, P record[T]](items []T, id string, clone func(T) T) (T, bool) {
	i := indexOf[T, P](items, id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return clone(items[i]), true
}

func utcNow() time.Time { return time.Now().UTC().Round(0) }
