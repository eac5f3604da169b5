package exports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"wardcore/pkg/domain"
)

type file struct {
	name        string
	collection  string
	contentType string
	rows        int
	payload     []byte
}

// table is one CSV collection: a header and a row projection.
type table struct {
	name    string
	columns []string
	rows    [][]any
}

func materialize(format Format, s domain.Snapshot) ([]file, error) {
	switch format {
	case FormatJSON:
		payload, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return []file{{
			name:        "snapshot.json",
			contentType: "application/json",
			rows:        recordCount(s),
			payload:     payload,
		}}, nil
	case FormatCSV:
		tables := snapshotTables(s)
		files := make([]file, 0, len(tables))
		for _, t := range tables {
			payload, err := writeCSV(t)
			if err != nil {
				return nil, fmt.Errorf("render %s csv: %w", t.name, err)
			}
			files = append(files, file{
				name:        t.name + ".csv",
				collection:  t.name,
				contentType: "text/csv",
				rows:        len(t.rows),
				payload:     payload,
			})
		}
		return files, nil
	default:
		return nil, fmt.Errorf("unsupported export format %s", format)
	}
}

func writeCSV(t table) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(t.columns); err != nil {
		return nil, err
	}
	for _, row := range t.rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func recordCount(s domain.Snapshot) int {
	return len(s.Patients) + len(s.Beds) + len(s.Appointments) + len(s.Orders) +
		len(s.Medications) + len(s.Staff) + len(s.Alerts) + len(s.Bills)
}

func snapshotTables(s domain.Snapshot) []table {
	patients := table{name: "patients", columns: []string{"id", "name", "age", "gender", "condition", "status", "bed_number", "admission_date", "doctor", "diagnosis", "allergies", "phone"}}
	for _, p := range s.Patients {
		patients.rows = append(patients.rows, []any{p.ID, p.Name, p.Age, p.Gender, string(p.Condition), string(p.Status), p.BedNumber, p.AdmissionDate, p.Doctor, p.Diagnosis, strings.Join(p.Allergies, ";"), p.Contact.Phone})
	}
	beds := table{name: "beds", columns: []string{"id", "number", "ward", "floor", "status", "patient_id", "assigned_date"}}
	for _, b := range s.Beds {
		beds.rows = append(beds.rows, []any{b.ID, b.Number, b.Ward, b.Floor, string(b.Status), b.PatientID, b.AssignedDate})
	}
	appointments := table{name: "appointments", columns: []string{"id", "patient_id", "patient_name", "doctor", "date", "time", "type", "status"}}
	for _, a := range s.Appointments {
		appointments.rows = append(appointments.rows, []any{a.ID, a.PatientID, a.PatientName, a.Doctor, a.Date, a.Time, a.Type, string(a.Status)})
	}
	orders := table{name: "orders", columns: []string{"id", "patient_id", "type", "test_name", "ordered_by", "ordered_at", "status", "priority", "result", "completed_date"}}
	for _, o := range s.Orders {
		orders.rows = append(orders.rows, []any{o.ID, o.PatientID, o.Type, o.TestName, o.OrderedBy, o.OrderedAt, string(o.Status), string(o.Priority), o.Result, o.CompletedDate})
	}
	medications := table{name: "medications", columns: []string{"id", "patient_id", "name", "dosage", "frequency", "status", "doses_logged", "last_administered"}}
	for _, m := range s.Medications {
		var last any
		if len(m.AdministrationLog) > 0 {
			last = m.AdministrationLog[0].Timestamp
		}
		medications.rows = append(medications.rows, []any{m.ID, m.PatientID, m.Name, m.Dosage, m.Frequency, string(m.Status), len(m.AdministrationLog), last})
	}
	staff := table{name: "staff", columns: []string{"id", "name", "role", "department", "shift", "status"}}
	for _, st := range s.Staff {
		staff.rows = append(staff.rows, []any{st.ID, st.Name, st.Role, st.Department, st.Shift, string(st.Status)})
	}
	alerts := table{name: "alerts", columns: []string{"id", "type", "priority", "title", "timestamp", "read", "patient_id"}}
	for _, a := range s.Alerts {
		alerts.rows = append(alerts.rows, []any{a.ID, string(a.Type), string(a.Priority), a.Title, a.Timestamp, a.Read, a.PatientID})
	}
	bills := table{name: "bills", columns: []string{"id", "patient_id", "patient_name", "amount", "status", "due_date", "items"}}
	for _, b := range s.Bills {
		bills.rows = append(bills.rows, []any{b.ID, b.PatientID, b.PatientName, b.Amount, string(b.Status), b.DueDate, len(b.Items)})
	}
	return []table{patients, beds, appointments, orders, medications, staff, alerts, bills}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case float64:
		return fmt.Sprintf("%g", v)
	case int:
		return fmt.Sprintf("%d", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}
