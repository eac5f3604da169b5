package core

import "wardcore/pkg/domain"

type (
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Base               = domain.Base
	Patient            = domain.Patient
	Vitals             = domain.Vitals
	Bed                = domain.Bed
	Appointment        = domain.Appointment
	Order              = domain.Order
	Medication         = domain.Medication
	Administration     = domain.Administration
	Staff              = domain.Staff
	Alert              = domain.Alert
	Bill               = domain.Bill
	Snapshot           = domain.Snapshot
	Analytics          = domain.Analytics
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	NotFoundError      = domain.NotFoundError
	RulesEngine        = domain.RulesEngine
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntityPatient     = domain.EntityPatient
	EntityBed         = domain.EntityBed
	EntityAppointment = domain.EntityAppointment
	EntityOrder       = domain.EntityOrder
	EntityMedication  = domain.EntityMedication
	EntityStaff       = domain.EntityStaff
	EntityAlert       = domain.EntityAlert
	EntityBill        = domain.EntityBill
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)
