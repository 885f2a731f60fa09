// Package codewriter writes generated artifacts while keeping the
// hand-written code below their boundary marker.
//
// A Writer reads the previous artifact from a store, merges the new
// generated region with the preserved region, and writes the result only
// when it differs from what is stored:
//
//	w := codewriter.New(store.NewFS("ui"),
//	    codewriter.WithCreateDirs(true),
//	    codewriter.WithLogger(slog.Default()),
//	)
//	res, err := w.Write(ctx, codewriter.Request{
//	    Key:       "main_dialog.py",
//	    Lang:      boundary.Python,
//	    Generated: code,
//	})
package codewriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/keepblock/keepblock/internal/backup"
	"github.com/keepblock/keepblock/internal/metrics"
	"github.com/keepblock/keepblock/pkg/boundary"
	"github.com/keepblock/keepblock/pkg/store"
)

const tracerName = "keepblock/codewriter"

// Status is the outcome of writing one artifact.
type Status int

const (
	// Current means the stored artifact already matches; nothing was written.
	Current Status = iota

	// Written means the artifact was written and carries no user code.
	Written

	// Edited means the artifact was written and user code was carried over.
	Edited

	// Needed means a dry run found that the artifact would change.
	Needed
)

func (s Status) String() string {
	switch s {
	case Current:
		return "current"
	case Written:
		return "written"
	case Edited:
		return "edited"
	case Needed:
		return "needed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Request describes one artifact to regenerate.
type Request struct {
	// Key names the artifact in the store.
	Key string

	// Lang selects the marker comment prefix.
	Lang boundary.Language

	// Generated is the new generated region.
	Generated string

	// Seed is the preserved region used when the artifact does not exist yet.
	Seed string
}

// Result reports what happened to one artifact.
type Result struct {
	Key    string
	Status Status

	// Text is the merged artifact, also set for Current and Needed.
	Text string

	// PreservedBytes is the size of the preserved region in Text.
	PreservedBytes int

	// Backup is the snapshot path written before overwriting, if any.
	Backup string

	// Err is set by WriteAll when this request failed.
	Err error
}

// Writer regenerates artifacts in a store.
type Writer struct {
	store      store.Store
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *metrics.Recorder
	backups    *backup.Dir
	createDirs bool
	dryRun     bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(w *Writer) {
		if tracer != nil {
			w.tracer = tracer
		}
	}
}

// WithMetrics records every write in r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(w *Writer) {
		w.metrics = r
	}
}

// WithBackups snapshots artifacts with user code before they are overwritten.
func WithBackups(d *backup.Dir) Option {
	return func(w *Writer) {
		w.backups = d
	}
}

// WithCreateDirs creates missing output folders instead of failing.
func WithCreateDirs(create bool) Option {
	return func(w *Writer) {
		w.createDirs = create
	}
}

// WithDryRun reports what would change without writing anything.
func WithDryRun(dryRun bool) Option {
	return func(w *Writer) {
		w.dryRun = dryRun
	}
}

// New creates a Writer on top of st.
func New(st store.Store, opts ...Option) *Writer {
	w := &Writer{
		store:  st,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// DryRun reports whether the writer is in dry-run mode.
func (w *Writer) DryRun() bool {
	return w.dryRun
}

// Write regenerates one artifact.
func (w *Writer) Write(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	ctx, span := w.tracer.Start(ctx, "codewriter.Write",
		trace.WithAttributes(
			attribute.String("path", req.Key),
			attribute.String("language", req.Lang.String()),
		),
	)
	defer span.End()

	res, err := w.write(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		w.metrics.Fail(Kind(err))
		w.logger.Error("regenerate failed", "path", req.Key, "language", req.Lang.String(), "error", err)
		return res, err
	}

	span.SetAttributes(attribute.String("status", res.Status.String()))
	span.SetStatus(codes.Ok, "")
	w.metrics.Observe(req.Lang.String(), res.Status.String(), res.PreservedBytes, time.Since(start))

	attrs := []any{"path", req.Key, "status", res.Status.String(), "preserved_bytes", res.PreservedBytes}
	if res.Backup != "" {
		attrs = append(attrs, "backup", res.Backup)
	}
	if res.Status == Current {
		w.logger.Debug("artifact current", attrs...)
	} else {
		w.logger.Info("artifact regenerated", attrs...)
	}
	return res, nil
}

func (w *Writer) write(ctx context.Context, req Request) (Result, error) {
	res := Result{Key: req.Key}
	if !req.Lang.Valid() {
		return res, fmt.Errorf("codewriter: %s: %w", req.Key, boundary.ErrUnknownLanguage)
	}

	missingFolder := false
	if err := w.store.EnsureDir(ctx, req.Key, w.createDirs && !w.dryRun); err != nil {
		if !errors.Is(err, store.ErrNoFolder) || !w.dryRun || !w.createDirs {
			return res, err
		}
		missingFolder = true
	}

	var previous *string
	if !missingFolder {
		data, err := w.store.Read(ctx, req.Key)
		switch {
		case err == nil:
			text := string(data)
			previous = &text
		case errors.Is(err, store.ErrNotExist):
		default:
			return res, err
		}
	}

	merger := boundary.Merger{Lang: req.Lang, Seed: req.Seed}
	text, err := merger.Merge(req.Generated, previous)
	if err != nil {
		return res, &ArtifactError{Key: req.Key, Err: err}
	}
	res.Text = text

	art, err := boundary.Split(req.Lang, text)
	if err != nil {
		return res, &ArtifactError{Key: req.Key, Err: err}
	}
	res.PreservedBytes = len(art.Preserved)

	if previous != nil && *previous == text {
		res.Status = Current
		return res, nil
	}
	if w.dryRun {
		res.Status = Needed
		return res, nil
	}

	if previous != nil && w.backups != nil {
		if old, err := boundary.Split(req.Lang, *previous); err == nil && old.Preserved != "" && old.Preserved != req.Seed {
			path, err := w.backups.Save(req.Key, []byte(*previous))
			if err != nil {
				return res, &BackupError{Key: req.Key, Err: err}
			}
			res.Backup = path
		}
	}

	if err := w.store.Write(ctx, req.Key, []byte(text)); err != nil {
		return res, err
	}

	res.Status = Written
	if art.Preserved != "" && art.Preserved != req.Seed {
		res.Status = Edited
	}
	return res, nil
}

// WriteAll regenerates many artifacts with at most workers writes in
// flight. Results are returned in request order; the returned error joins
// every failure.
func (w *Writer) WriteAll(ctx context.Context, reqs []Request, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 4
	}
	results := make([]Result, len(reqs))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	wg.Add(len(reqs))
	for i := range reqs {
		go func(i int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = Result{Key: reqs[i].Key, Err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			res, err := w.Write(ctx, reqs[i])
			res.Err = err
			results[i] = res
		}(i)
	}
	wg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}
