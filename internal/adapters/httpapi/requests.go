package httpapi

import (
	"time"

	"wardcore/pkg/domain"
)

type contactRequest struct {
	Phone            string `json:"phone"`
	Email            string `json:"email" validate:"omitempty,email"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergency_contact"`
}

type patientRequest struct {
	Name          string         `json:"name" validate:"required"`
	Age           int            `json:"age" validate:"gte=0,lte=150"`
	Gender        string         `json:"gender"`
	Condition     string         `json:"condition" validate:"required,oneof=Critical Stable Good Fair"`
	AdmissionDate string         `json:"admission_date" validate:"omitempty,datetime=2006-01-02"`
	Doctor        string         `json:"doctor"`
	Diagnosis     string         `json:"diagnosis"`
	Allergies     []string       `json:"allergies"`
	Contact       contactRequest `json:"contact"`
}

func (r patientRequest) toDomain() domain.Patient {
	return domain.Patient{
		Name:          r.Name,
		Age:           r.Age,
		Gender:        r.Gender,
		Condition:     domain.PatientCondition(r.Condition),
		AdmissionDate: r.AdmissionDate,
		Doctor:        r.Doctor,
		Diagnosis:     r.Diagnosis,
		Allergies:     r.Allergies,
		Contact: domain.ContactInfo{
			Phone:            r.Contact.Phone,
			Email:            r.Contact.Email,
			Address:          r.Contact.Address,
			EmergencyContact: r.Contact.EmergencyContact,
		},
	}
}

type vitalsRequest struct {
	HeartRate        int        `json:"heart_rate" validate:"gte=0,lte=300"`
	BloodPressure    string     `json:"blood_pressure"`
	Temperature      float64    `json:"temperature" validate:"gte=0,lte=50"`
	OxygenSaturation int        `json:"oxygen_saturation" validate:"gte=0,lte=100"`
	RespiratoryRate  int        `json:"respiratory_rate" validate:"gte=0,lte=100"`
	RecordedAt       *time.Time `json:"recorded_at"`
}

func (r vitalsRequest) toDomain() domain.Vitals {
	v := domain.Vitals{
		HeartRate:        r.HeartRate,
		BloodPressure:    r.BloodPressure,
		Temperature:      r.Temperature,
		OxygenSaturation: r.OxygenSaturation,
		RespiratoryRate:  r.RespiratoryRate,
	}
	if r.RecordedAt != nil {
		v.RecordedAt = *r.RecordedAt
	}
	return v
}

type transferRequest struct {
	BedID string `json:"bed_id" validate:"required"`
}

type assignRequest struct {
	PatientID string `json:"patient_id" validate:"required"`
}

type bedStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=occupied available maintenance cleaning"`
}

type bedRequest struct {
	Number string `json:"number" validate:"required"`
	Ward   string `json:"ward" validate:"required"`
	Floor  int    `json:"floor" validate:"gte=0"`
	Status string `json:"status" validate:"omitempty,oneof=available maintenance cleaning"`
}

func (r bedRequest) toDomain() domain.Bed {
	status := domain.BedStatus(r.Status)
	if status == "" {
		status = domain.BedAvailable
	}
	return domain.Bed{Number: r.Number, Ward: r.Ward, Floor: r.Floor, Status: status}
}

type appointmentRequest struct {
	PatientID   string `json:"patient_id" validate:"required"`
	PatientName string `json:"patient_name"`
	Doctor      string `json:"doctor" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
	Type        string `json:"type"`
	Status      string `json:"status" validate:"omitempty,oneof=confirmed pending cancelled completed"`
	Phone       string `json:"phone"`
	Notes       string `json:"notes"`
}

func (r appointmentRequest) toDomain() domain.Appointment {
	status := domain.AppointmentStatus(r.Status)
	if status == "" {
		status = domain.AppointmentPending
	}
	return domain.Appointment{
		PatientID: r.PatientID, PatientName: r.PatientName, Doctor: r.Doctor,
		Date: r.Date, Time: r.Time, Type: r.Type, Status: status, Phone: r.Phone, Notes: r.Notes,
	}
}

type orderRequest struct {
	PatientID   string `json:"patient_id" validate:"required"`
	PatientName string `json:"patient_name"`
	Type        string `json:"type" validate:"required,oneof=lab imaging pharmacy"`
	TestName    string `json:"test_name" validate:"required"`
	OrderedBy   string `json:"ordered_by" validate:"required"`
	OrderedAt   string `json:"ordered_at" validate:"omitempty,datetime=2006-01-02"`
	Status      string `json:"status" validate:"omitempty,oneof=pending in-progress completed cancelled"`
	Priority    string `json:"priority" validate:"omitempty,oneof=routine urgent stat"`
}

func (r orderRequest) toDomain() domain.Order {
	status := domain.OrderStatus(r.Status)
	if status == "" {
		status = domain.OrderPending
	}
	priority := domain.OrderPriority(r.Priority)
	if priority == "" {
		priority = domain.PriorityRoutine
	}
	return domain.Order{
		PatientID: r.PatientID, PatientName: r.PatientName, Type: r.Type, TestName: r.TestName,
		OrderedBy: r.OrderedBy, OrderedAt: r.OrderedAt, Status: status, Priority: priority,
	}
}

type medicationRequest struct {
	PatientID    string `json:"patient_id" validate:"required"`
	PatientName  string `json:"patient_name"`
	Name         string `json:"name" validate:"required"`
	Dosage       string `json:"dosage" validate:"required"`
	Frequency    string `json:"frequency"`
	PrescribedBy string `json:"prescribed_by"`
	StartDate    string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status       string `json:"status" validate:"omitempty,oneof=active completed discontinued"`
}

func (r medicationRequest) toDomain() domain.Medication {
	status := domain.MedicationStatus(r.Status)
	if status == "" {
		status = domain.MedicationActive
	}
	return domain.Medication{
		PatientID: r.PatientID, PatientName: r.PatientName, Name: r.Name, Dosage: r.Dosage,
		Frequency: r.Frequency, PrescribedBy: r.PrescribedBy, StartDate: r.StartDate,
		EndDate: r.EndDate, Status: status,
	}
}

type administerRequest struct {
	AdministeredBy string `json:"administered_by" validate:"required"`
	Notes          string `json:"notes"`
}

type staffRequest struct {
	Name       string `json:"name" validate:"required"`
	Role       string `json:"role" validate:"required"`
	Department string `json:"department"`
	Shift      string `json:"shift"`
	Phone      string `json:"phone"`
	Email      string `json:"email" validate:"omitempty,email"`
	Status     string `json:"status" validate:"omitempty,oneof=active on-leave off-duty"`
}

func (r staffRequest) toDomain() domain.Staff {
	status := domain.StaffStatus(r.Status)
	if status == "" {
		status = domain.StaffActive
	}
	return domain.Staff{
		Name: r.Name, Role: r.Role, Department: r.Department, Shift: r.Shift,
		Phone: r.Phone, Email: r.Email, Status: status,
	}
}

type billItemRequest struct {
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

type billRequest struct {
	PatientID      string            `json:"patient_id" validate:"required"`
	PatientName    string            `json:"patient_name"`
	Amount         float64           `json:"amount" validate:"gte=0"`
	Status         string            `json:"status" validate:"omitempty,oneof=pending paid overdue"`
	DueDate        string            `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Items          []billItemRequest `json:"items" validate:"dive"`
	InsuranceClaim *string           `json:"insurance_claim"`
}

func (r billRequest) toDomain() domain.Bill {
	status := domain.BillStatus(r.Status)
	if status == "" {
		status = domain.BillPending
	}
	items := make([]domain.BillItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = domain.BillItem{Description: it.Description, Amount: it.Amount}
	}
	return domain.Bill{
		PatientID: r.PatientID, PatientName: r.PatientName, Amount: r.Amount, Status: status,
		DueDate: r.DueDate, Items: items, InsuranceClaim: r.InsuranceClaim,
	}
}

type alertRequest struct {
	Type      string  `json:"type" validate:"required,oneof=critical warning info"`
	Title     string  `json:"title" validate:"required"`
	Message   string  `json:"message"`
	PatientID *string `json:"patient_id"`
	Priority  string  `json:"priority" validate:"omitempty,oneof=high medium low"`
}

func (r alertRequest) toDomain() domain.Alert {
	priority := domain.AlertPriority(r.Priority)
	if priority == "" {
		priority = domain.AlertMedium
	}
	return domain.Alert{
		Type: domain.AlertType(r.Type), Title: r.Title, Message: r.Message,
		PatientID: r.PatientID, Priority: priority,
	}
}

type exportRequest struct {
	Formats     []string `json:"formats" validate:"omitempty,dive,oneof=json csv"`
	RequestedBy string   `json:"requested_by"`
}

// Patch requests mirror the create requests with every field optional. Nil
// fields are left untouched by the service.

type patientPatchRequest struct {
	Name          *string         `json:"name" validate:"omitempty,min=1"`
	Age           *int            `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender        *string         `json:"gender"`
	Condition     *string         `json:"condition" validate:"omitempty,oneof=Critical Stable Good Fair"`
	AdmissionDate *string         `json:"admission_date" validate:"omitempty,datetime=2006-01-02"`
	Doctor        *string         `json:"doctor"`
	Diagnosis     *string         `json:"diagnosis"`
	Allergies     *[]string       `json:"allergies"`
	Contact       *contactRequest `json:"contact"`
}

func (r patientPatchRequest) toPatch() domain.PatientPatch {
	p := domain.PatientPatch{
		Name: r.Name, Age: r.Age, Gender: r.Gender, AdmissionDate: r.AdmissionDate,
		Doctor: r.Doctor, Diagnosis: r.Diagnosis, Allergies: r.Allergies,
		Condition: enumPtr[domain.PatientCondition](r.Condition),
	}
	if r.Contact != nil {
		p.Contact = &domain.ContactInfo{
			Phone:            r.Contact.Phone,
			Email:            r.Contact.Email,
			Address:          r.Contact.Address,
			EmergencyContact: r.Contact.EmergencyContact,
		}
	}
	return p
}

type bedPatchRequest struct {
	Number *string `json:"number" validate:"omitempty,min=1"`
	Ward   *string `json:"ward" validate:"omitempty,min=1"`
	Floor  *int    `json:"floor" validate:"omitempty,gte=0"`
}

func (r bedPatchRequest) toPatch() domain.BedPatch {
	return domain.BedPatch{Number: r.Number, Ward: r.Ward, Floor: r.Floor}
}

type appointmentPatchRequest struct {
	PatientID   *string `json:"patient_id" validate:"omitempty,min=1"`
	PatientName *string `json:"patient_name"`
	Doctor      *string `json:"doctor" validate:"omitempty,min=1"`
	Date        *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time        *string `json:"time" validate:"omitempty,datetime=15:04"`
	Type        *string `json:"type"`
	Status      *string `json:"status" validate:"omitempty,oneof=confirmed pending cancelled completed"`
	Phone       *string `json:"phone"`
	Notes       *string `json:"notes"`
}

func (r appointmentPatchRequest) toPatch() domain.AppointmentPatch {
	return domain.AppointmentPatch{
		PatientID: r.PatientID, PatientName: r.PatientName, Doctor: r.Doctor,
		Date: r.Date, Time: r.Time, Type: r.Type, Phone: r.Phone, Notes: r.Notes,
		Status: enumPtr[domain.AppointmentStatus](r.Status),
	}
}

type orderPatchRequest struct {
	Type          *string `json:"type" validate:"omitempty,oneof=lab imaging pharmacy"`
	TestName      *string `json:"test_name" validate:"omitempty,min=1"`
	OrderedBy     *string `json:"ordered_by" validate:"omitempty,min=1"`
	Status        *string `json:"status" validate:"omitempty,oneof=pending in-progress completed cancelled"`
	Priority      *string `json:"priority" validate:"omitempty,oneof=routine urgent stat"`
	Result        *string `json:"result"`
	CompletedDate *string `json:"completed_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r orderPatchRequest) toPatch() domain.OrderPatch {
	return domain.OrderPatch{
		Type: r.Type, TestName: r.TestName, OrderedBy: r.OrderedBy,
		Result: r.Result, CompletedDate: r.CompletedDate,
		Status:   enumPtr[domain.OrderStatus](r.Status),
		Priority: enumPtr[domain.OrderPriority](r.Priority),
	}
}

type medicationPatchRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Dosage       *string `json:"dosage" validate:"omitempty,min=1"`
	Frequency    *string `json:"frequency"`
	PrescribedBy *string `json:"prescribed_by"`
	StartDate    *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status       *string `json:"status" validate:"omitempty,oneof=active completed discontinued"`
}

func (r medicationPatchRequest) toPatch() domain.MedicationPatch {
	return domain.MedicationPatch{
		Name: r.Name, Dosage: r.Dosage, Frequency: r.Frequency, PrescribedBy: r.PrescribedBy,
		StartDate: r.StartDate, EndDate: r.EndDate,
		Status: enumPtr[domain.MedicationStatus](r.Status),
	}
}

type staffPatchRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1"`
	Role       *string `json:"role" validate:"omitempty,min=1"`
	Department *string `json:"department"`
	Shift      *string `json:"shift"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Status     *string `json:"status" validate:"omitempty,oneof=active on-leave off-duty"`
}

func (r staffPatchRequest) toPatch() domain.StaffPatch {
	return domain.StaffPatch{
		Name: r.Name, Role: r.Role, Department: r.Department, Shift: r.Shift,
		Phone: r.Phone, Email: r.Email,
		Status: enumPtr[domain.StaffStatus](r.Status),
	}
}

type billPatchRequest struct {
	Amount         *float64           `json:"amount" validate:"omitempty,gte=0"`
	Status         *string            `json:"status" validate:"omitempty,oneof=pending paid overdue"`
	DueDate        *string            `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Items          *[]billItemRequest `json:"items" validate:"omitempty,dive"`
	InsuranceClaim *string            `json:"insurance_claim"`
}

func (r billPatchRequest) toPatch() domain.BillPatch {
	p := domain.BillPatch{
		Amount: r.Amount, DueDate: r.DueDate, InsuranceClaim: r.InsuranceClaim,
		Status: enumPtr[domain.BillStatus](r.Status),
	}
	if r.Items != nil {
		items := make([]domain.BillItem, len(*r.Items))
		for i, it := range *r.Items {
			items[i] = domain.BillItem{Description: it.Description, Amount: it.Amount}
		}
		p.Items = &items
	}
	return p
}

func enumPtr[E ~string](s *string) *E {
	if s == nil {
		return nil
	}
	v := E(*s)
	return &v
}
