package memory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"wardcore/pkg/domain"
)

var idTags = map[domain.EntityType]string{
	domain.EntityPatient:     "P",
	domain.EntityBed:         "B",
	domain.EntityAppointment: "APT",
	domain.EntityOrder:       "ORD",
	domain.EntityMedication:  "MED",
	domain.EntityStaff:       "S",
	domain.EntityAlert:       "ALT",
	domain.EntityBill:        "BILL",
}

// IDTag returns the identifier prefix used for entities of the given kind.
func IDTag(kind domain.EntityType) string {
	if tag, ok := idTags[kind]; ok {
		return tag
	}
	return strings.ToUpper(string(kind))
}

// NewID renders an identifier as <tag><unix-millis>-<8 hex chars>.
func NewID(kind domain.EntityType, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s%d-%s", IDTag(kind), now.UnixMilli(), suffix)
}
