// Package exports renders snapshots of the hospital store into downloadable
// JSON and CSV artifacts on a background worker.
package exports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wardcore/internal/blob"
	"wardcore/pkg/domain"
)

// Status describes the lifecycle stage of an export request.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Format is an artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// KeyPrefix is the blob key prefix export artifacts are written under.
const KeyPrefix = "exports"

// Artifact is one stored export file.
type Artifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	Collection  string    `json:"collection,omitempty"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Rows        int       `json:"rows"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record tracks an export request and its artifacts.
type Record struct {
	ID           string     `json:"id"`
	Formats      []Format   `json:"formats"`
	Status       Status     `json:"status"`
	Error        string     `json:"error,omitempty"`
	StoreVersion uint64     `json:"store_version"`
	Artifacts    []Artifact `json:"artifacts,omitempty"`
	RequestedBy  string     `json:"requested_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func (r *Record) copy() Record {
	out := *r
	out.Formats = append([]Format(nil), r.Formats...)
	out.Artifacts = append([]Artifact(nil), r.Artifacts...)
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// Request is an enqueue request for the worker.
type Request struct {
	Formats     []Format
	RequestedBy string
}

// Source supplies the state to export.
type Source interface {
	VersionedSnapshot() (domain.Snapshot, uint64)
}

// Scheduler queues export requests and exposes their status.
type Scheduler interface {
	Enqueue(ctx context.Context, req Request) (Record, error)
	Get(id string) (Record, bool)
}

// ErrQueueFull is returned when the worker cannot accept another request.
var ErrQueueFull = errors.New("export queue full")

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the worker logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

// WithQueueSize overrides the pending request capacity.
func WithQueueSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.queue = make(chan task, n)
		}
	}
}

// WithClock overrides the worker time source.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// Worker executes snapshot exports asynchronously.
type Worker struct {
	source Source
	blobs  blob.Store
	logger zerolog.Logger
	now    func() time.Time

	queue chan task
	mu    sync.RWMutex
	jobs  map[string]*Record

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type task struct {
	id string
}

// NewWorker constructs an export worker. Call Start to begin processing.
func NewWorker(source Source, blobs blob.Store, opts ...Option) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		source: source,
		blobs:  blobs,
		logger: zerolog.Nop(),
		now:    func() time.Time { return time.Now().UTC() },
		queue:  make(chan task, 32),
		jobs:   make(map[string]*Record),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case t := <-w.queue:
			w.process(t)
		}
	}
}

// Enqueue validates the request, records it as queued and hands it to the worker.
func (w *Worker) Enqueue(ctx context.Context, req Request) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	formats, err := normalizeFormats(req.Formats)
	if err != nil {
		return Record{}, err
	}

	now := w.now()
	record := &Record{
		ID:          uuid.NewString(),
		Formats:     formats,
		Status:      StatusQueued,
		RequestedBy: strings.TrimSpace(req.RequestedBy),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[record.ID] = record
	queued := record.copy()
	w.mu.Unlock()

	select {
	case w.queue <- task{id: record.ID}:
	default:
		w.mu.Lock()
		delete(w.jobs, record.ID)
		w.mu.Unlock()
		return Record{}, ErrQueueFull
	}
	w.logger.Debug().Str("export", record.ID).Strs("formats", formatStrings(formats)).Msg("export queued")
	return queued, nil
}

// Get returns a copy of the export record.
func (w *Worker) Get(id string) (Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return Record{}, false
	}
	return record.copy(), true
}

// Run renders and stores an export synchronously, without the queue. It is
// used by the CLI.
func (w *Worker) Run(ctx context.Context, req Request) (Record, error) {
	formats, err := normalizeFormats(req.Formats)
	if err != nil {
		return Record{}, err
	}
	now := w.now()
	record := Record{ID: uuid.NewString(), Formats: formats, Status: StatusRunning, RequestedBy: req.RequestedBy, CreatedAt: now, UpdatedAt: now}
	artifacts, version, err := w.render(ctx, record.ID, formats)
	done := w.now()
	record.UpdatedAt, record.CompletedAt = done, &done
	record.StoreVersion = version
	if err != nil {
		record.Status, record.Error = StatusFailed, err.Error()
		return record, err
	}
	record.Status, record.Artifacts = StatusSucceeded, artifacts
	return record, nil
}

func (w *Worker) process(t task) {
	w.mu.RLock()
	record, ok := w.jobs[t.id]
	var formats []Format
	if ok {
		formats = append(formats, record.Formats...)
	}
	w.mu.RUnlock()
	if !ok {
		return
	}

	w.update(t.id, func(r *Record) { r.Status = StatusRunning })
	artifacts, version, err := w.render(w.ctx, t.id, formats)
	done := w.now()
	if err != nil {
		w.logger.Error().Err(err).Str("export", t.id).Msg("export failed")
		w.update(t.id, func(r *Record) {
			r.Status, r.Error, r.StoreVersion, r.CompletedAt = StatusFailed, err.Error(), version, &done
		})
		return
	}
	w.logger.Info().Str("export", t.id).Int("artifacts", len(artifacts)).Uint64("version", version).Msg("export completed")
	w.update(t.id, func(r *Record) {
		r.Status, r.Error, r.Artifacts, r.StoreVersion, r.CompletedAt = StatusSucceeded, "", artifacts, version, &done
	})
}

func (w *Worker) update(id string, fn func(*Record)) {
	now := w.now()
	w.mu.Lock()
	defer w.mu.Unlock()
	if record, ok := w.jobs[id]; ok {
		fn(record)
		record.UpdatedAt = now
	}
}

// render reads one snapshot and writes every requested format from it, so all
// artifacts of an export describe the same store version.
func (w *Worker) render(ctx context.Context, id string, formats []Format) ([]Artifact, uint64, error) {
	if w.source == nil || w.blobs == nil {
		return nil, 0, fmt.Errorf("export worker not configured")
	}
	snapshot, version := w.source.VersionedSnapshot()

	var artifacts []Artifact
	for _, format := range formats {
		files, err := materialize(format, snapshot)
		if err != nil {
			return nil, version, err
		}
		for _, f := range files {
			key := path.Join(KeyPrefix, id, f.name)
			info, err := w.blobs.Put(ctx, key, bytes.NewReader(f.payload), blob.PutOptions{
				ContentType: f.contentType,
				Metadata:    map[string]string{"export": id, "format": string(format)},
			})
			if err != nil {
				return nil, version, fmt.Errorf("store %s: %w", key, err)
			}
			size := info.Size
			if size == 0 {
				size = int64(len(f.payload))
			}
			artifacts = append(artifacts, Artifact{
				Key:         key,
				Format:      format,
				Collection:  f.collection,
				ContentType: f.contentType,
				SizeBytes:   size,
				Rows:        f.rows,
				CreatedAt:   w.now(),
			})
		}
	}
	return artifacts, version, nil
}

func normalizeFormats(in []Format) ([]Format, error) {
	if len(in) == 0 {
		return []Format{FormatJSON, FormatCSV}, nil
	}
	out := make([]Format, 0, len(in))
	seen := make(map[Format]struct{}, len(in))
	for _, f := range in {
		f = Format(strings.ToLower(strings.TrimSpace(string(f))))
		if f != FormatJSON && f != FormatCSV {
			return nil, fmt.Errorf("unsupported export format %q", f)
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out, nil
}

func formatStrings(formats []Format) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}
