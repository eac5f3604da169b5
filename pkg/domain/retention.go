package domain

import "time"

// EvictionKind names the history list an eviction was trimmed from.
type EvictionKind string

// History lists subject to retention.
const (
	EvictVitalsHistory     EvictionKind = "vitals_history"
	EvictAdministrationLog EvictionKind = "administration_log"
	EvictAlerts            EvictionKind = "alerts"
)

// RetentionPolicy caps append-only history. A zero limit disables the cap.
type RetentionPolicy struct {
	VitalsHistory     int `json:"vitals_history"`
	AdministrationLog int `json:"administration_log"`
	Alerts            int `json:"alerts"`
}

// DefaultRetentionPolicy returns the caps used when none are configured.
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{VitalsHistory: 50, AdministrationLog: 200, Alerts: 500}
}

// Eviction carries entries removed by a retention policy. Entries holds a
// slice of Vitals, Administration or Alert depending on Kind.
type Eviction struct {
	Kind      EvictionKind `json:"kind"`
	Entity    EntityType   `json:"entity"`
	EntityID  string       `json:"entity_id,omitempty"`
	Entries   any          `json:"entries"`
	EvictedAt time.Time    `json:"evicted_at"`
}
