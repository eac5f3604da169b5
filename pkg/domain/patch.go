package domain

// Patches carry partial updates: nil fields are left untouched. Fields owned
// by composite operations (patient bed number and status, bed occupancy,
// medication administration log) have no patch field.

// PatientPatch updates demographic and clinical fields of a patient.
type PatientPatch struct {
	Name          *string           `json:"name,omitempty"`
	Age           *int              `json:"age,omitempty"`
	Gender        *string           `json:"gender,omitempty"`
	Condition     *PatientCondition `json:"condition,omitempty"`
	AdmissionDate *string           `json:"admission_date,omitempty"`
	Doctor        *string           `json:"doctor,omitempty"`
	Diagnosis     *string           `json:"diagnosis,omitempty"`
	Allergies     *[]string         `json:"allergies,omitempty"`
	Contact       *ContactInfo      `json:"contact,omitempty"`
}

// Apply merges the patch into p.
func (pt PatientPatch) Apply(p *Patient) {
	setIf(&p.Name, pt.Name)
	setIf(&p.Age, pt.Age)
	setIf(&p.Gender, pt.Gender)
	setIf(&p.Condition, pt.Condition)
	setIf(&p.AdmissionDate, pt.AdmissionDate)
	setIf(&p.Doctor, pt.Doctor)
	setIf(&p.Diagnosis, pt.Diagnosis)
	if pt.Allergies != nil {
		p.Allergies = append([]string{}, (*pt.Allergies)...)
	}
	setIf(&p.Contact, pt.Contact)
}

// BedPatch updates the descriptive fields of a bed.
type BedPatch struct {
	Number *string `json:"number,omitempty"`
	Ward   *string `json:"ward,omitempty"`
	Floor  *int    `json:"floor,omitempty"`
}

// Apply merges the patch into b.
func (pt BedPatch) Apply(b *Bed) {
	setIf(&b.Number, pt.Number)
	setIf(&b.Ward, pt.Ward)
	setIf(&b.Floor, pt.Floor)
}

// AppointmentPatch updates an appointment.
type AppointmentPatch struct {
	PatientID   *string            `json:"patient_id,omitempty"`
	PatientName *string            `json:"patient_name,omitempty"`
	Doctor      *string            `json:"doctor,omitempty"`
	Date        *string            `json:"date,omitempty"`
	Time        *string            `json:"time,omitempty"`
	Type        *string            `json:"type,omitempty"`
	Status      *AppointmentStatus `json:"status,omitempty"`
	Phone       *string            `json:"phone,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
}

// Apply merges the patch into a.
func (pt AppointmentPatch) Apply(a *Appointment) {
	setIf(&a.PatientID, pt.PatientID)
	setIf(&a.PatientName, pt.PatientName)
	setIf(&a.Doctor, pt.Doctor)
	setIf(&a.Date, pt.Date)
	setIf(&a.Time, pt.Time)
	setIf(&a.Type, pt.Type)
	setIf(&a.Status, pt.Status)
	setIf(&a.Phone, pt.Phone)
	setIf(&a.Notes, pt.Notes)
}

// OrderPatch updates an order.
type OrderPatch struct {
	Type          *string        `json:"type,omitempty"`
	TestName      *string        `json:"test_name,omitempty"`
	OrderedBy     *string        `json:"ordered_by,omitempty"`
	Status        *OrderStatus   `json:"status,omitempty"`
	Priority      *OrderPriority `json:"priority,omitempty"`
	Result        *string        `json:"result,omitempty"`
	CompletedDate *string        `json:"completed_date,omitempty"`
}

// Apply merges the patch into o.
func (pt OrderPatch) Apply(o *Order) {
	setIf(&o.Type, pt.Type)
	setIf(&o.TestName, pt.TestName)
	setIf(&o.OrderedBy, pt.OrderedBy)
	setIf(&o.Status, pt.Status)
	setIf(&o.Priority, pt.Priority)
	setPtrIf(&o.Result, pt.Result)
	setPtrIf(&o.CompletedDate, pt.CompletedDate)
}

// MedicationPatch updates a medication. Status transitions to completed or
// discontinued are made here.
type MedicationPatch struct {
	Name         *string           `json:"name,omitempty"`
	Dosage       *string           `json:"dosage,omitempty"`
	Frequency    *string           `json:"frequency,omitempty"`
	PrescribedBy *string           `json:"prescribed_by,omitempty"`
	StartDate    *string           `json:"start_date,omitempty"`
	EndDate      *string           `json:"end_date,omitempty"`
	Status       *MedicationStatus `json:"status,omitempty"`
}

// Apply merges the patch into m.
func (pt MedicationPatch) Apply(m *Medication) {
	setIf(&m.Name, pt.Name)
	setIf(&m.Dosage, pt.Dosage)
	setIf(&m.Frequency, pt.Frequency)
	setIf(&m.PrescribedBy, pt.PrescribedBy)
	setIf(&m.StartDate, pt.StartDate)
	setIf(&m.EndDate, pt.EndDate)
	setIf(&m.Status, pt.Status)
}

// StaffPatch updates a staff member.
type StaffPatch struct {
	Name       *string      `json:"name,omitempty"`
	Role       *string      `json:"role,omitempty"`
	Department *string      `json:"department,omitempty"`
	Shift      *string      `json:"shift,omitempty"`
	Phone      *string      `json:"phone,omitempty"`
	Email      *string      `json:"email,omitempty"`
	Status     *StaffStatus `json:"status,omitempty"`
}

// Apply merges the patch into s.
func (pt StaffPatch) Apply(s *Staff) {
	setIf(&s.Name, pt.Name)
	setIf(&s.Role, pt.Role)
	setIf(&s.Department, pt.Department)
	setIf(&s.Shift, pt.Shift)
	setIf(&s.Phone, pt.Phone)
	setIf(&s.Email, pt.Email)
	setIf(&s.Status, pt.Status)
}

// BillPatch updates a bill. Items replace the whole item list.
type BillPatch struct {
	Amount         *float64    `json:"amount,omitempty"`
	Status         *BillStatus `json:"status,omitempty"`
	DueDate        *string     `json:"due_date,omitempty"`
	Items          *[]BillItem `json:"items,omitempty"`
	InsuranceClaim *string     `json:"insurance_claim,omitempty"`
}

// Apply merges the patch into b.
func (pt BillPatch) Apply(b *Bill) {
	setIf(&b.Amount, pt.Amount)
	setIf(&b.Status, pt.Status)
	setIf(&b.DueDate, pt.DueDate)
	if pt.Items != nil {
		b.Items = append([]BillItem{}, (*pt.Items)...)
	}
	setPtrIf(&b.InsuranceClaim, pt.InsuranceClaim)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setPtrIf[T any](dst **T, v *T) {
	if v != nil {
		cp := *v
		*dst = &cp
	}
}
