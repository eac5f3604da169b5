package core

import "wardcore/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in bed/patient
// invariants. Every rule reports blocking violations.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewBedOccupancyRule())
	engine.Register(NewBedPatientReferenceRule())
	engine.Register(NewSingleBedPerPatientRule())
	engine.Register(NewPatientBedNumberRule())
	return engine
}

func blockOn(rule string, entity EntityType, id, message string) Violation {
	return Violation{
		Rule:     rule,
		Severity: SeverityBlock,
		Message:  message,
		Entity:   entity,
		EntityID: id,
	}
}
