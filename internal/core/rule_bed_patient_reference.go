package core

import (
	"context"
	"fmt"

	"wardcore/pkg/domain"
)

// NewBedPatientReferenceRule returns the rule requiring bed patient references
// to name an existing active patient.
func NewBedPatientReferenceRule() domain.Rule {
	return bedPatientReferenceRule{}
}

type bedPatientReferenceRule struct{}

func (bedPatientReferenceRule) Name() string { return "bed_patient_reference" }

func (r bedPatientReferenceRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, bed := range view.ListBeds() {
		if bed.PatientID == nil {
			continue
		}
		patient, ok := view.FindPatient(*bed.PatientID)
		switch {
		case !ok:
			res.Violations = append(res.Violations, blockOn(r.Name(), EntityBed, bed.ID,
				fmt.Sprintf("bed %s references missing patient %s", bed.Number, *bed.PatientID)))
		case patient.Status != domain.PatientActive:
			res.Violations = append(res.Violations, blockOn(r.Name(), EntityBed, bed.ID,
				fmt.Sprintf("bed %s references %s patient %s", bed.Number, patient.Status, patient.ID)))
		}
	}
	return res, nil
}
