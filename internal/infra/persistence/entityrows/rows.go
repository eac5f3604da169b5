// Package entityrows maps the aggregate snapshot onto one database row per
// entity. SQL-backed stores share it so their table layout stays identical.
package entityrows

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"wardcore/pkg/domain"
)

// Table and column names shared by every SQL dialect.
const (
	EntitiesTable = "entities"
	MetaTable     = "snapshot_meta"
	savedAtKey    = "saved_at"
)

// Row is one persisted entity. Position preserves collection order.
type Row struct {
	Kind     domain.EntityType
	ID       string
	Position int
	Payload  []byte
}

// Dialect captures the few statement differences between SQL engines.
type Dialect struct {
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// PayloadType is the column type for JSON payloads.
	PayloadType string
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Queryer is satisfied by *sql.DB and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Schema returns the idempotent DDL statements for the dialect.
func (d Dialect) Schema() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		position INTEGER NOT NULL,
		payload %s NOT NULL,
		PRIMARY KEY (kind, id)
	)`, EntitiesTable, d.PayloadType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`, MetaTable),
	}
}

// EnsureSchema applies Schema using exec.
func (d Dialect) EnsureSchema(ctx context.Context, exec Execer) error {
	for _, stmt := range d.Schema() {
		if _, err := exec.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Encode renders every entity of kind in snapshot as rows.
func Encode(snapshot domain.Snapshot, kind domain.EntityType) ([]Row, error) {
	switch kind {
	case domain.EntityPatient:
		return encodeAll(kind, snapshot.Patients)
	case domain.EntityBed:
		return encodeAll(kind, snapshot.Beds)
	case domain.EntityAppointment:
		return encodeAll(kind, snapshot.Appointments)
	case domain.EntityOrder:
		return encodeAll(kind, snapshot.Orders)
	case domain.EntityMedication:
		return encodeAll(kind, snapshot.Medications)
	case domain.EntityStaff:
		return encodeAll(kind, snapshot.Staff)
	case domain.EntityAlert:
		return encodeAll(kind, snapshot.Alerts)
	case domain.EntityBill:
		return encodeAll(kind, snapshot.Bills)
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}

func encodeAll[T interface{ EntityID() string }](kind domain.EntityType, items []T) ([]Row, error) {
	rows := make([]Row, 0, len(items))
	for i, item := range items {
		payload, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("encode %s %q: %w", kind, item.EntityID(), err)
		}
		rows = append(rows, Row{Kind: kind, ID: item.EntityID(), Position: i, Payload: payload})
	}
	return rows, nil
}

// Decode rebuilds a snapshot from rows in any order. Rows of unknown kinds are ignored.
func Decode(rows []Row) (domain.Snapshot, error) {
	sorted := append([]Row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Kind != sorted[j].Kind {
			return sorted[i].Kind < sorted[j].Kind
		}
		return sorted[i].Position < sorted[j].Position
	})
	snapshot := domain.Snapshot{
		Patients:     []domain.Patient{},
		Beds:         []domain.Bed{},
		Appointments: []domain.Appointment{},
		Orders:       []domain.Order{},
		Medications:  []domain.Medication{},
		Staff:        []domain.Staff{},
		Alerts:       []domain.Alert{},
		Bills:        []domain.Bill{},
	}
	for _, row := range sorted {
		var err error
		switch row.Kind {
		case domain.EntityPatient:
			err = decodeInto(row, &snapshot.Patients)
		case domain.EntityBed:
			err = decodeInto(row, &snapshot.Beds)
		case domain.EntityAppointment:
			err = decodeInto(row, &snapshot.Appointments)
		case domain.EntityOrder:
			err = decodeInto(row, &snapshot.Orders)
		case domain.EntityMedication:
			err = decodeInto(row, &snapshot.Medications)
		case domain.EntityStaff:
			err = decodeInto(row, &snapshot.Staff)
		case domain.EntityAlert:
			err = decodeInto(row, &snapshot.Alerts)
		case domain.EntityBill:
			err = decodeInto(row, &snapshot.Bills)
		}
		if err != nil {
			return domain.Snapshot{}, err
		}
	}
	return snapshot, nil
}

func decodeInto[T any](row Row, dst *[]T) error {
	var v T
	if err := json.Unmarshal(row.Payload, &v); err != nil {
		return fmt.Errorf("decode %s %q: %w", row.Kind, row.ID, err)
	}
	*dst = append(*dst, v)
	return nil
}

// Replace rewrites the rows of each touched kind and stamps the meta table.
// Callers run it inside a database transaction.
func (d Dialect) Replace(ctx context.Context, exec Execer, snapshot domain.Snapshot, kinds []domain.EntityType, now time.Time) error {
	p := d.Placeholder
	deleteStmt := fmt.Sprintf(`DELETE FROM %s WHERE kind = %s`, EntitiesTable, p(1))
	insertStmt := fmt.Sprintf(`INSERT INTO %s (kind, id, position, payload) VALUES (%s, %s, %s, %s)`,
		EntitiesTable, p(1), p(2), p(3), p(4))
	for _, kind := range kinds {
		rows, err := Encode(snapshot, kind)
		if err != nil {
			return err
		}
		if _, err := exec.ExecContext(ctx, deleteStmt, string(kind)); err != nil {
			return fmt.Errorf("clear %s rows: %w", kind, err)
		}
		for _, row := range rows {
			if _, err := exec.ExecContext(ctx, insertStmt, string(row.Kind), row.ID, row.Position, row.Payload); err != nil {
				return fmt.Errorf("insert %s %q: %w", row.Kind, row.ID, err)
			}
		}
	}
	metaStmt := fmt.Sprintf(`INSERT INTO %s (name, value) VALUES (%s, %s) ON CONFLICT (name) DO UPDATE SET value = excluded.value`,
		MetaTable, p(1), p(2))
	if _, err := exec.ExecContext(ctx, metaStmt, savedAtKey, now.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("stamp snapshot meta: %w", err)
	}
	return nil
}

// Load reads every entity row. persisted reports whether a snapshot has ever
// been written, which distinguishes a saved empty aggregate from a fresh database.
func Load(ctx context.Context, q Queryer) (snapshot domain.Snapshot, persisted bool, err error) {
	metaRows, err := q.QueryContext(ctx, fmt.Sprintf(`SELECT name, value FROM %s`, MetaTable))
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("select meta: %w", err)
	}
	for metaRows.Next() {
		var name, value string
		if err := metaRows.Scan(&name, &value); err != nil {
			_ = metaRows.Close()
			return domain.Snapshot{}, false, fmt.Errorf("scan meta: %w", err)
		}
		if name == savedAtKey {
			persisted = true
		}
	}
	if err := metaRows.Err(); err != nil {
		_ = metaRows.Close()
		return domain.Snapshot{}, false, fmt.Errorf("iterate meta: %w", err)
	}
	_ = metaRows.Close()

	rows, err := q.QueryContext(ctx, fmt.Sprintf(`SELECT kind, id, position, payload FROM %s ORDER BY kind, position`, EntitiesTable))
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("select entities: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var raws []Row
	for rows.Next() {
		var (
			r    Row
			kind string
		)
		if err := rows.Scan(&kind, &r.ID, &r.Position, &r.Payload); err != nil {
			return domain.Snapshot{}, false, fmt.Errorf("scan entity: %w", err)
		}
		r.Kind = domain.EntityType(kind)
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("iterate entities: %w", err)
	}
	if len(raws) > 0 {
		persisted = true
	}
	snapshot, err = Decode(raws)
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	return snapshot, persisted, nil
}

// Postgres is the dialect for pgx.
var Postgres = Dialect{
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	PayloadType: "JSONB",
}

// SQLite is the dialect for modernc.org/sqlite.
var SQLite = Dialect{
	Placeholder: func(int) string { return "?" },
	PayloadType: "BLOB",
}
