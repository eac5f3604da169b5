package core_test

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"wardcore/internal/blob"
	"wardcore/internal/core"
	"wardcore/pkg/domain"
)

func TestRetentionTrimsAndArchivesVitals(t *testing.T) {
	blobs := blob.NewMemory()
	svc := newService(t,
		core.WithRetention(domain.RetentionPolicy{VitalsHistory: 2}),
		core.WithArchiver(core.NewBlobArchiver(blobs)),
	)
	ctx := context.Background()
	p := admit(t, svc, "Hedy")
	var last domain.Patient
	for hr := 60; hr < 65; hr++ {
		var err error
		last, _, err = svc.UpdatePatientVitals(ctx, p.ID, domain.Vitals{HeartRate: hr})
		if err != nil {
			t.Fatalf("vitals %d: %v", hr, err)
		}
	}
	if last.Vitals.HeartRate != 64 {
		t.Fatalf("current = %d", last.Vitals.HeartRate)
	}
	if len(last.VitalsHistory) != 2 || last.VitalsHistory[0].HeartRate != 63 || last.VitalsHistory[1].HeartRate != 62 {
		t.Fatalf("history should keep the newest two readings, got %+v", last.VitalsHistory)
	}

	infos, err := blobs.List(ctx, core.ArchivePrefix+"/"+string(domain.EvictVitalsHistory)+"/"+p.ID+"/")
	if err != nil {
		t.Fatalf("list archive: %v", err)
	}
	if len(infos) == 0 {
		t.Fatalf("expected archived vitals")
	}
	var archived []int
	for _, info := range infos {
		_, rc, err := blobs.Get(ctx, info.Key)
		if err != nil {
			t.Fatalf("get %s: %v", info.Key, err)
		}
		raw, _ := io.ReadAll(rc)
		_ = rc.Close()
		var ev struct {
			Kind    domain.EvictionKind `json:"kind"`
			Entries []domain.Vitals     `json:"entries"`
		}
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("decode %s: %v", info.Key, err)
		}
		for _, v := range ev.Entries {
			archived = append(archived, v.HeartRate)
		}
	}
	if len(archived) != 2 {
		t.Fatalf("expected the two oldest readings archived, got %v", archived)
	}
}

func TestRetentionCapsAlertsAndAdministrations(t *testing.T) {
	var got []domain.Eviction
	svc := newService(t,
		core.WithRetention(domain.RetentionPolicy{AdministrationLog: 1, Alerts: 2}),
		core.WithArchiver(archiverFunc(func(_ context.Context, evs []domain.Eviction) error {
			got = append(got, evs...)
			return nil
		})),
	)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		if _, _, err := svc.AddAlert(ctx, domain.Alert{Title: title}); err != nil {
			t.Fatalf("add alert: %v", err)
		}
	}
	alerts := svc.Alerts()
	if len(alerts) != 2 || alerts[0].Title != "c" || alerts[1].Title != "b" {
		t.Fatalf("alerts = %+v", alerts)
	}

	med, _, err := svc.AddMedication(ctx, domain.Medication{Name: "Insulin"})
	if err != nil {
		t.Fatalf("add medication: %v", err)
	}
	for _, nurse := range []string{"first", "second"} {
		if _, _, err := svc.AdministerMedication(ctx, med.ID, nurse, ""); err != nil {
			t.Fatalf("administer: %v", err)
		}
	}
	if m, _ := svc.Medication(med.ID); len(m.AdministrationLog) != 1 || m.AdministrationLog[0].AdministeredBy != "second" {
		t.Fatalf("log = %+v", m.AdministrationLog)
	}

	kinds := make([]string, 0, len(got))
	for _, e := range got {
		kinds = append(kinds, string(e.Kind))
	}
	if strings.Join(kinds, ",") != "alerts,administration_log" {
		t.Fatalf("evictions = %v", kinds)
	}
}

func TestZeroRetentionDisablesCaps(t *testing.T) {
	svc := newService(t, core.WithRetention(domain.RetentionPolicy{}))
	ctx := context.Background()
	p := admit(t, svc, "Edsger")
	for i := 0; i < 5; i++ {
		if _, _, err := svc.UpdatePatientVitals(ctx, p.ID, domain.Vitals{HeartRate: i}); err != nil {
			t.Fatalf("vitals: %v", err)
		}
	}
	if got := len(mustPatient(t, svc, p.ID).VitalsHistory); got != 4 {
		t.Fatalf("history = %d", got)
	}
}

type archiverFunc func(context.Context, []domain.Eviction) error

func (f archiverFunc) Archive(ctx context.Context, evs []domain.Eviction) error { return f(ctx, evs) }
