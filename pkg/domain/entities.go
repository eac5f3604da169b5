// Package domain defines the hospital operations entities, value types, and
// rule evaluation primitives used by wardcore.
package domain

import "time"

// EntityType identifies the type of record stored in the data store.
type EntityType string

// Supported entity type identifiers used in Change records and persistence rows.
const (
	// EntityPatient identifies a patient record.
	EntityPatient EntityType = "patient"
	// EntityBed identifies a bed record.
	EntityBed EntityType = "bed"
	// EntityAppointment identifies an appointment record.
	EntityAppointment EntityType = "appointment"
	// EntityOrder identifies a lab, imaging or pharmacy order.
	EntityOrder EntityType = "order"
	// EntityMedication identifies a medication record.
	EntityMedication EntityType = "medication"
	// EntityStaff identifies a staff member record.
	EntityStaff EntityType = "staff"
	// EntityAlert identifies an alert record.
	EntityAlert EntityType = "alert"
	// EntityBill identifies a bill record.
	EntityBill EntityType = "bill"
)

// EntityTypes lists every collection in snapshot order.
var EntityTypes = []EntityType{
	EntityPatient,
	EntityBed,
	EntityAppointment,
	EntityOrder,
	EntityMedication,
	EntityStaff,
	EntityAlert,
	EntityBill,
}

// DateLayout is the calendar date format used by date fields.
const DateLayout = "2006-01-02"

// PatientCondition is the clinical condition of a patient.
type PatientCondition string

// Canonical patient conditions.
const (
	ConditionCritical PatientCondition = "Critical"
	ConditionStable   PatientCondition = "Stable"
	ConditionGood     PatientCondition = "Good"
	ConditionFair     PatientCondition = "Fair"
)

// PatientConditions lists the conditions reported by analytics.
var PatientConditions = []PatientCondition{ConditionCritical, ConditionStable, ConditionGood, ConditionFair}

// PatientStatus is the lifecycle state of a patient record.
type PatientStatus string

// Patient lifecycle states.
const (
	PatientActive     PatientStatus = "active"
	PatientDischarged PatientStatus = "discharged"
)

// BedStatus is the occupancy state of a bed.
type BedStatus string

// Bed states. Only BedOccupied may carry a patient reference.
const (
	BedOccupied    BedStatus = "occupied"
	BedAvailable   BedStatus = "available"
	BedMaintenance BedStatus = "maintenance"
	BedCleaning    BedStatus = "cleaning"
)

// AppointmentStatus enumerates appointment workflow states.
type AppointmentStatus string

// Appointment states.
const (
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
)

// OrderStatus enumerates order workflow states.
type OrderStatus string

// Order states.
const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in-progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderPriority is the clinical urgency of an order.
type OrderPriority string

// Order priorities.
const (
	PriorityRoutine OrderPriority = "routine"
	PriorityUrgent  OrderPriority = "urgent"
	PriorityStat    OrderPriority = "stat"
)

// MedicationStatus enumerates medication lifecycle states.
type MedicationStatus string

// Medication states.
const (
	MedicationActive       MedicationStatus = "active"
	MedicationCompleted    MedicationStatus = "completed"
	MedicationDiscontinued MedicationStatus = "discontinued"
)

// StaffStatus is the duty state of a staff member.
type StaffStatus string

// Staff states.
const (
	StaffActive  StaffStatus = "active"
	StaffOnLeave StaffStatus = "on-leave"
	StaffOffDuty StaffStatus = "off-duty"
)

// AlertType is the severity of an alert.
type AlertType string

// Alert severities.
const (
	AlertCritical AlertType = "critical"
	AlertWarning  AlertType = "warning"
	AlertInfo     AlertType = "info"
)

// AlertPriority orders alerts for triage.
type AlertPriority string

// Alert priorities.
const (
	AlertHigh   AlertPriority = "high"
	AlertMedium AlertPriority = "medium"
	AlertLow    AlertPriority = "low"
)

// BillStatus enumerates billing states.
type BillStatus string

// Bill states.
const (
	BillPending BillStatus = "pending"
	BillPaid    BillStatus = "paid"
	BillOverdue BillStatus = "overdue"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityID returns the record identifier.
func (b Base) EntityID() string { return b.ID }

// Vitals is a single vital-signs reading.
type Vitals struct {
	HeartRate        int       `json:"heart_rate"`
	BloodPressure    string    `json:"blood_pressure"`
	Temperature      float64   `json:"temperature"`
	OxygenSaturation int       `json:"oxygen_saturation"`
	RespiratoryRate  int       `json:"respiratory_rate"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// ContactInfo holds patient contact details.
type ContactInfo struct {
	Phone            string `json:"phone"`
	Email            string `json:"email,omitempty"`
	Address          string `json:"address,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
}

// Patient is an admitted or discharged patient. BedNumber mirrors the number
// of the bed whose PatientID references this patient.
type Patient struct {
	Base
	Name          string           `json:"name"`
	Age           int              `json:"age"`
	Gender        string           `json:"gender"`
	Condition     PatientCondition `json:"condition"`
	BedNumber     string           `json:"bed_number"`
	AdmissionDate string           `json:"admission_date"`
	Doctor        string           `json:"doctor"`
	Diagnosis     string           `json:"diagnosis"`
	Allergies     []string         `json:"allergies"`
	Vitals        *Vitals          `json:"vitals"`
	VitalsHistory []Vitals         `json:"vitals_history"`
	Contact       ContactInfo      `json:"contact"`
	Status        PatientStatus    `json:"status"`
}

// Bed is a physical bed on a ward.
type Bed struct {
	Base
	Number       string    `json:"number"`
	Ward         string    `json:"ward"`
	Floor        int       `json:"floor"`
	Status       BedStatus `json:"status"`
	PatientID    *string   `json:"patient_id"`
	AssignedDate *string   `json:"assigned_date"`
}

// Appointment is a scheduled patient visit.
type Appointment struct {
	Base
	PatientID   string            `json:"patient_id"`
	PatientName string            `json:"patient_name"`
	Doctor      string            `json:"doctor"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Type        string            `json:"type"`
	Status      AppointmentStatus `json:"status"`
	Phone       string            `json:"phone"`
	Notes       string            `json:"notes,omitempty"`
}

// Order is a lab, imaging or pharmacy request.
type Order struct {
	Base
	PatientID     string        `json:"patient_id"`
	PatientName   string        `json:"patient_name"`
	Type          string        `json:"type"`
	TestName      string        `json:"test_name"`
	OrderedBy     string        `json:"ordered_by"`
	OrderedAt     string        `json:"ordered_at"`
	Status        OrderStatus   `json:"status"`
	Priority      OrderPriority `json:"priority"`
	Result        *string       `json:"result"`
	CompletedDate *string       `json:"completed_date"`
}

// Administration records one dose given to a patient.
type Administration struct {
	Timestamp      time.Time `json:"timestamp"`
	AdministeredBy string    `json:"administered_by"`
	Notes          string    `json:"notes,omitempty"`
}

// Medication is a prescription and its administration log, newest first.
type Medication struct {
	Base
	PatientID         string           `json:"patient_id"`
	PatientName       string           `json:"patient_name"`
	Name              string           `json:"name"`
	Dosage            string           `json:"dosage"`
	Frequency         string           `json:"frequency"`
	PrescribedBy      string           `json:"prescribed_by"`
	StartDate         string           `json:"start_date"`
	EndDate           string           `json:"end_date,omitempty"`
	Status            MedicationStatus `json:"status"`
	AdministrationLog []Administration `json:"administration_log"`
}

// Staff is a hospital employee.
type Staff struct {
	Base
	Name       string      `json:"name"`
	Role       string      `json:"role"`
	Department string      `json:"department"`
	Shift      string      `json:"shift"`
	Phone      string      `json:"phone"`
	Email      string      `json:"email"`
	Status     StaffStatus `json:"status"`
}

// Alert is a dashboard notification.
type Alert struct {
	Base
	Type      AlertType     `json:"type"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Read      bool          `json:"read"`
	PatientID *string       `json:"patient_id"`
	Priority  AlertPriority `json:"priority"`
}

// BillItem is a single billed line.
type BillItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Bill is an itemised patient invoice.
type Bill struct {
	Base
	PatientID      string     `json:"patient_id"`
	PatientName    string     `json:"patient_name"`
	Amount         float64    `json:"amount"`
	Status         BillStatus `json:"status"`
	DueDate        string     `json:"due_date"`
	Items          []BillItem `json:"items"`
	InsuranceClaim *string    `json:"insurance_claim"`
}
