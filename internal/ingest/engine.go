// Package ingest implements the ingestion engine: it loads canonical class
// files, validates them against the class schema, derives slugs, and applies
// idempotent dual-representation upserts to the store. Re-running over
// identical source converges: only import metadata changes.
package ingest

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hearthloom/grimoire/internal/schema"
	"github.com/hearthloom/grimoire/internal/source"
	"github.com/hearthloom/grimoire/pkg/types"
)

// Store is the store surface the engine writes through. *store.Backend
// implements it.
type Store interface {
	ReplaceClass(doc types.ClassDocument) (bool, error)
	GetClass(srdID string) (types.ClassDocument, error)
	GetFeatureVersion(classSRDID string, level int, slug string) (int64, error)
	InsertFeature(doc types.FeatureDocument) error
	UpdateFeatureCAS(doc types.FeatureDocument, prior int64) error
	CountClasses() (int64, error)
	CountFeatures() (int64, error)
}

// Engine runs the ingest pipeline against one attached store backend.
// Classes are processed sequentially; each class record runs to completion
// (success or per-feature conflict) before the next begins.
type Engine struct {
	store Store
	clock func() time.Time
	runID string
}

// NewEngine creates an Engine over an attached backend, with a fresh run ID.
func NewEngine(s Store) *Engine {
	return &Engine{
		store: s,
		clock: time.Now,
		runID: newRunID(),
	}
}

// RunID returns the identifier stamped into every document this run writes.
func (e *Engine) RunID() string {
	return e.runID
}

// newRunID generates a UUID v7 run identifier.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails.
		return uuid.New().String()
	}
	return id.String()
}

// Run ingests every class file under sourceDir. Parse, validation, and
// slug-collision failures are recovered locally: the offending class is
// skipped with zero writes and the run continues. Per-feature write
// conflicts are recorded and the remaining features proceed. Only a store
// failure aborts the run; because every write is a keyed upsert, re-running
// after an abort is the documented recovery and converges to the same
// state.
func (e *Engine) Run(sourceDir string) (*RunReport, error) {
	started := e.clock()
	report := &RunReport{
		RunID:     e.runID,
		SourceDir: sourceDir,
		StartedAt: started,
	}

	files, parseErrs, err := source.Load(sourceDir)
	if err != nil {
		return report, err
	}
	report.ParseErrors = parseErrs

	importedAt := started.UTC().Truncate(time.Second).Format(time.RFC3339)
	seenSlugs := make(map[string]FeatureOrigin)
	seenIDs := make(map[string]string)

	for _, f := range files {
		res := ClassResult{File: f.Name}

		if violations := schema.Class().Validate(f.Doc); len(violations) > 0 {
			res.Err = &schema.ValidationError{File: f.Name, Violations: violations}
			report.Classes = append(report.Classes, res)
			continue
		}

		rec, err := schema.DecodeClass(f.Doc)
		if err != nil {
			res.Err = err
			report.Classes = append(report.Classes, res)
			continue
		}
		res.SRDID = rec.SRDID
		res.Name = rec.Name

		if prev, dup := seenIDs[rec.SRDID]; dup {
			res.Err = &DuplicateIDError{SRDID: rec.SRDID, First: prev, Second: f.Name}
			report.Classes = append(report.Classes, res)
			continue
		}
		seenIDs[rec.SRDID] = f.Name

		doc, feats, err := normalizeClass(rec, importedAt, e.runID, seenSlugs)
		if err != nil {
			res.Err = err
			report.Classes = append(report.Classes, res)
			continue
		}

		if err := e.apply(&res, doc, feats); err != nil {
			report.Classes = append(report.Classes, res)
			report.Duration = e.clock().Sub(started)
			return report, err
		}
		report.Classes = append(report.Classes, res)
	}

	report.Duration = e.clock().Sub(started)

	if report.ClassTotal, err = e.store.CountClasses(); err != nil {
		return report, err
	}
	if report.FeatureTotal, err = e.store.CountFeatures(); err != nil {
		return report, err
	}
	return report, nil
}

// apply writes one normalized class to the store: wholesale replacement of
// the embedded document, then a keyed upsert per feature in source order.
// Write conflicts are per-feature and recorded on the result; any other
// store error is fatal.
func (e *Engine) apply(res *ClassResult, doc types.ClassDocument, feats []types.FeatureDocument) error {
	prior, err := e.store.GetClass(doc.SRDID)
	switch {
	case err == nil:
		doc.Meta.ImportVersion = prior.Meta.ImportVersion + 1
	case errors.Is(err, types.ErrNotFound):
		// First sight: version 1, as stamped by the normalizer.
	default:
		return err
	}

	created, err := e.store.ReplaceClass(doc)
	if err != nil {
		return err
	}
	res.ClassCreated = created

	for _, fd := range feats {
		v, err := e.store.GetFeatureVersion(fd.ClassSRDID, fd.Level, fd.Slug)
		switch {
		case errors.Is(err, types.ErrNotFound):
			fd.Meta.ImportVersion = 1
			err = e.store.InsertFeature(fd)
			if errors.Is(err, types.ErrConflict) {
				res.Conflicts = append(res.Conflicts, fd.Slug)
				continue
			}
			if err != nil {
				return err
			}
			res.FeaturesCreated++

		case err != nil:
			return err

		default:
			fd.Meta.ImportVersion = v + 1
			err = e.store.UpdateFeatureCAS(fd, v)
			if errors.Is(err, types.ErrConflict) {
				res.Conflicts = append(res.Conflicts, fd.Slug)
				continue
			}
			if err != nil {
				return err
			}
			res.FeaturesUpdated++
		}
	}
	return nil
}
