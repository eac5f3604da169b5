package core

import (
	"slices"

	"wardcore/pkg/domain"
)

// applyRetention trims every history list over its cap inside tx, queueing the
// trimmed entries as evictions. Lists are newest first, so the tail is dropped.
func applyRetention(tx Transaction, policy domain.RetentionPolicy) error {
	view := tx.Snapshot()
	if limit := policy.VitalsHistory; limit > 0 {
		for _, p := range view.ListPatients() {
			if len(p.VitalsHistory) <= limit {
				continue
			}
			evicted := slices.Clone(p.VitalsHistory[limit:])
			if _, err := tx.UpdatePatient(p.ID, func(p *Patient) error {
				p.VitalsHistory = p.VitalsHistory[:limit:limit]
				return nil
			}); err != nil {
				return err
			}
			tx.Evict(domain.Eviction{Kind: domain.EvictVitalsHistory, Entity: EntityPatient, EntityID: p.ID, Entries: evicted})
		}
	}
	if limit := policy.AdministrationLog; limit > 0 {
		for _, m := range view.ListMedications() {
			if len(m.AdministrationLog) <= limit {
				continue
			}
			evicted := slices.Clone(m.AdministrationLog[limit:])
			if _, err := tx.UpdateMedication(m.ID, func(m *Medication) error {
				m.AdministrationLog = m.AdministrationLog[:limit:limit]
				return nil
			}); err != nil {
				return err
			}
			tx.Evict(domain.Eviction{Kind: domain.EvictAdministrationLog, Entity: EntityMedication, EntityID: m.ID, Entries: evicted})
		}
	}
	if limit := policy.Alerts; limit > 0 {
		alerts := view.ListAlerts()
		if len(alerts) > limit {
			evicted := alerts[limit:]
			for _, a := range evicted {
				if err := tx.DeleteAlert(a.ID); err != nil {
					return err
				}
			}
			tx.Evict(domain.Eviction{Kind: domain.EvictAlerts, Entity: EntityAlert, Entries: evicted})
		}
	}
	return nil
}
