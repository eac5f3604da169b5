package core

import (
	"context"
	"fmt"

	"wardcore/pkg/domain"
)

// NewBedOccupancyRule returns the rule requiring that a bed is occupied
// exactly when it references a patient.
func NewBedOccupancyRule() domain.Rule {
	return bedOccupancyRule{}
}

type bedOccupancyRule struct{}

func (bedOccupancyRule) Name() string { return "bed_occupancy" }

func (r bedOccupancyRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, bed := range view.ListBeds() {
		occupied := bed.Status == domain.BedOccupied
		switch {
		case occupied && bed.PatientID == nil:
			res.Violations = append(res.Violations, blockOn(r.Name(), EntityBed, bed.ID,
				fmt.Sprintf("bed %s (%s) is occupied without a patient", bed.Number, bed.ID)))
		case !occupied && bed.PatientID != nil:
			res.Violations = append(res.Violations, blockOn(r.Name(), EntityBed, bed.ID,
				fmt.Sprintf("bed %s (%s) is %s but references patient %s", bed.Number, bed.ID, bed.Status, *bed.PatientID)))
		}
	}
	return res, nil
}
