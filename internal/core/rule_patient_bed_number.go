package core

import (
	"context"
	"fmt"

	"wardcore/pkg/domain"
)

// NewPatientBedNumberRule returns the rule keeping Patient.BedNumber in step
// with the bed that references the patient.
func NewPatientBedNumberRule() domain.Rule {
	return patientBedNumberRule{}
}

type patientBedNumberRule struct{}

func (patientBedNumberRule) Name() string { return "patient_bed_number" }

func (r patientBedNumberRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	numbers := make(map[string]string)
	for _, bed := range view.ListBeds() {
		if bed.PatientID != nil {
			if _, seen := numbers[*bed.PatientID]; !seen {
				numbers[*bed.PatientID] = bed.Number
			}
		}
	}
	res := domain.Result{}
	for _, patient := range view.ListPatients() {
		want := numbers[patient.ID]
		if patient.BedNumber == want {
			continue
		}
		msg := fmt.Sprintf("patient %s records bed %q but occupies %q", patient.ID, patient.BedNumber, want)
		if want == "" {
			msg = fmt.Sprintf("patient %s records bed %q but no bed references it", patient.ID, patient.BedNumber)
		}
		res.Violations = append(res.Violations, blockOn(r.Name(), EntityPatient, patient.ID, msg))
	}
	return res, nil
}
