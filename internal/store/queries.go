// This file implements the read helpers consumed by the CLI listing
// commands and external callers. Each query pattern is backed by one of the
// indexes declared in schema.go.
package store

import (
	"database/sql"
	"fmt"

	"github.com/hearthloom/grimoire/pkg/types"
)

// ListClasses returns basic info for all classes, ordered by name.
func (b *Backend) ListClasses() ([]types.ClassInfo, error) {
	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT name, srd_id, hit_die FROM classes ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing classes: %w", err)
	}
	defer rows.Close()

	var out []types.ClassInfo
	for rows.Next() {
		var info types.ClassInfo
		if err := rows.Scan(&info.Name, &info.SRDID, &info.HitDie); err != nil {
			return nil, fmt.Errorf("scanning class row: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// FeaturesByClassLevel returns the normalized features for a class display
// name and level, ordered by feature name.
func (b *Backend) FeaturesByClassLevel(className string, level int) ([]types.FeatureRef, error) {
	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		"SELECT name, slug FROM features WHERE class_name = ? AND level = ? ORDER BY name",
		className, level,
	)
	if err != nil {
		return nil, fmt.Errorf("listing features for %s level %d: %w", className, level, err)
	}
	defer rows.Close()

	var out []types.FeatureRef
	for rows.Next() {
		var ref types.FeatureRef
		if err := rows.Scan(&ref.Name, &ref.Slug); err != nil {
			return nil, fmt.Errorf("scanning feature row: %w", err)
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

// FeatureBySlug returns one full feature document by slug.
// Returns ErrNotFound if no document carries the slug.
func (b *Backend) FeatureBySlug(slug string) (types.FeatureDocument, error) {
	var doc types.FeatureDocument
	db, err := b.handle()
	if err != nil {
		return doc, err
	}

	var srdFeatureID sql.NullString
	err = db.QueryRow(`SELECT class_srd_id, level, slug, class_name, edition, name,
        description_md, source, srd_feature_id, license,
        imported_at, import_version, run_id
    FROM features WHERE slug = ?`, slug).Scan(
		&doc.ClassSRDID, &doc.Level, &doc.Slug, &doc.ClassName, &doc.Edition,
		&doc.Name, &doc.DescriptionMD, &doc.Source, &srdFeatureID, &doc.License,
		&doc.Meta.ImportedAt, &doc.Meta.ImportVersion, &doc.Meta.RunID,
	)
	if err == sql.ErrNoRows {
		return doc, types.ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("getting feature %s: %w", slug, err)
	}
	doc.SRDFeatureID = srdFeatureID.String
	return doc, nil
}

// Orphan identifies a feature document whose key no longer appears inline
// in its class's embedded document (or whose class is gone entirely).
// Orphans are a documented consequence of the engine never deleting; this
// query makes the gap observable without pruning anything.
type Orphan struct {
	ClassSRDID string `json:"class_srd_id"`
	Level      int    `json:"level"`
	Slug       string `json:"slug"`
	Name       string `json:"name"`
}

// OrphanedFeatures returns every orphaned feature document, ordered by
// class, level, then slug.
func (b *Backend) OrphanedFeatures() ([]Orphan, error) {
	docs, err := b.ListClassDocuments()
	if err != nil {
		return nil, err
	}
	live := make(map[string]bool)
	for _, doc := range docs {
		for _, block := range doc.FeaturesByLevel {
			for _, feat := range block.Features {
				live[orphanKey(doc.SRDID, block.Level, feat.Slug)] = true
			}
		}
	}

	db, err := b.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(
		"SELECT class_srd_id, level, slug, name FROM features ORDER BY class_srd_id, level, slug",
	)
	if err != nil {
		return nil, fmt.Errorf("listing feature keys: %w", err)
	}
	defer rows.Close()

	var orphans []Orphan
	for rows.Next() {
		var o Orphan
		if err := rows.Scan(&o.ClassSRDID, &o.Level, &o.Slug, &o.Name); err != nil {
			return nil, fmt.Errorf("scanning feature key: %w", err)
		}
		if !live[orphanKey(o.ClassSRDID, o.Level, o.Slug)] {
			orphans = append(orphans, o)
		}
	}
	return orphans, rows.Err()
}

func orphanKey(classSRDID string, level int, slug string) string {
	return fmt.Sprintf("%s|%d|%s", classSRDID, level, slug)
}
