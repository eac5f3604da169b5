package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wardcore/internal/core"
	"wardcore/pkg/domain"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("wardcore %v: %v", args, err)
	}
	return out.String()
}

func useTempStorage(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("WARDCORE_ENV", "production")
	t.Setenv("WARDCORE_LOG_LEVEL", "error")
	t.Setenv("WARDCORE_STORAGE_DRIVER", "document")
	t.Setenv("WARDCORE_BLOB_DRIVER", "fs")
	t.Setenv("WARDCORE_BLOB_FS_ROOT", root)
	return root
}

func TestSeedThenAnalytics(t *testing.T) {
	useTempStorage(t)

	run(t, "seed")
	var a domain.Analytics
	if err := json.Unmarshal([]byte(run(t, "analytics")), &a); err != nil {
		t.Fatalf("decode analytics: %v", err)
	}
	if a.TotalPatients != 2 || a.TotalBeds != 6 {
		t.Fatalf("expected seeded analytics, got %+v", a)
	}
}

func TestTraceFileRecordsSpans(t *testing.T) {
	useTempStorage(t)
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	t.Setenv("WARDCORE_TRACE_FILE", path)

	run(t, "seed")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read trace file: %v", err)
	}
	var span core.JSONTraceEntry
	if err := json.Unmarshal(bytes.TrimSpace(data), &span); err != nil {
		t.Fatalf("decode span %q: %v", data, err)
	}
	if span.Operation != "seed" || span.Status != "success" {
		t.Fatalf("unexpected span %+v", span)
	}
}

func TestExportCommand(t *testing.T) {
	useTempStorage(t)
	run(t, "seed")

	out := run(t, "export", "--format", "csv")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(domain.EntityTypes) {
		t.Fatalf("expected %d csv artifacts, got %q", len(domain.EntityTypes), out)
	}
	if !strings.HasPrefix(lines[0], "exports/") || !strings.Contains(lines[0], "patients.csv") {
		t.Fatalf("unexpected artifact line %q", lines[0])
	}
}

func TestUnknownStorageDriverFails(t *testing.T) {
	useTempStorage(t)
	t.Setenv("WARDCORE_STORAGE_DRIVER", "mongo")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"analytics", "--env-file", filepath.Join(t.TempDir(), "missing.env")})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "unknown storage driver") {
		t.Fatalf("expected config error, got %v", err)
	}
}
