package core

import (
	"context"
	"fmt"

	"wardcore/pkg/domain"
)

// NewSingleBedPerPatientRule returns the rule forbidding a patient from
// occupying more than one bed.
func NewSingleBedPerPatientRule() domain.Rule {
	return singleBedPerPatientRule{}
}

type singleBedPerPatientRule struct{}

func (singleBedPerPatientRule) Name() string { return "single_bed_per_patient" }

func (r singleBedPerPatientRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	first := make(map[string]string)
	res := domain.Result{}
	for _, bed := range view.ListBeds() {
		if bed.PatientID == nil {
			continue
		}
		pid := *bed.PatientID
		if prev, ok := first[pid]; ok {
			res.Violations = append(res.Violations, blockOn(r.Name(), EntityPatient, pid,
				fmt.Sprintf("patient %s occupies beds %s and %s", pid, prev, bed.Number)))
			continue
		}
		first[pid] = bed.Number
	}
	return res, nil
}
