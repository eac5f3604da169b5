package entityrows

import (
	"strings"
	"testing"

	"wardcore/pkg/domain"
)

func TestEncodeDecodePreservesCollectionOrder(t *testing.T) {
	snapshot := domain.Snapshot{
		Alerts: []domain.Alert{
			{Base: domain.Base{ID: "ALT2"}, Title: "newest"},
			{Base: domain.Base{ID: "ALT1"}, Title: "oldest"},
		},
		Staff: []domain.Staff{{Base: domain.Base{ID: "S1"}, Name: "Nurse"}},
	}
	var rows []Row
	for _, kind := range []domain.EntityType{domain.EntityStaff, domain.EntityAlert} {
		encoded, err := Encode(snapshot, kind)
		if err != nil {
			t.Fatalf("encode %s: %v", kind, err)
		}
		rows = append(rows, encoded...)
	}
	// reverse to prove Decode does not rely on input order
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	decoded, err := Decode(rows)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Alerts) != 2 || decoded.Alerts[0].ID != "ALT2" || decoded.Alerts[1].ID != "ALT1" {
		t.Fatalf("alert order lost: %+v", decoded.Alerts)
	}
	if len(decoded.Staff) != 1 || decoded.Staff[0].Name != "Nurse" {
		t.Fatalf("staff lost: %+v", decoded.Staff)
	}
	if decoded.Patients == nil || decoded.Bills == nil {
		t.Fatalf("expected empty collections to be non-nil")
	}
}

func TestEncodeUnknownKind(t *testing.T) {
	if _, err := Encode(domain.Snapshot{}, domain.EntityType("ward")); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestDecodeRejectsCorruptPayload(t *testing.T) {
	_, err := Decode([]Row{{Kind: domain.EntityBed, ID: "B1", Payload: []byte("{")}})
	if err == nil || !strings.Contains(err.Error(), `bed "B1"`) {
		t.Fatalf("expected decode error naming the row, got %v", err)
	}
}

func TestDialectSchemaAndPlaceholders(t *testing.T) {
	if Postgres.Placeholder(3) != "$3" || SQLite.Placeholder(3) != "?" {
		t.Fatalf("unexpected placeholders")
	}
	schema := Postgres.Schema()
	if len(schema) != 2 || !strings.Contains(schema[0], "JSONB") {
		t.Fatalf("unexpected postgres schema: %v", schema)
	}
	if !strings.Contains(SQLite.Schema()[0], "BLOB") {
		t.Fatalf("unexpected sqlite schema")
	}
}
