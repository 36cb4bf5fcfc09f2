// This file implements the features collection: normalized feature
// documents keyed uniquely by (class_srd_id, level, slug).
package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/hearthloom/grimoire/pkg/types"
)

// GetFeatureVersion reads the stored import version for one feature key.
// Returns ErrNotFound if no document matches; the caller then inserts at
// version 1.
func (b *Backend) GetFeatureVersion(classSRDID string, level int, slug string) (int64, error) {
	db, err := b.handle()
	if err != nil {
		return 0, err
	}
	var v int64
	err = db.QueryRow(
		"SELECT import_version FROM features WHERE class_srd_id = ? AND level = ? AND slug = ?",
		classSRDID, level, slug,
	).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, types.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("reading version for %s: %w", slug, err)
	}
	return v, nil
}

// InsertFeature creates a feature document on first sight of its key.
// A uniqueness-constraint rejection (another writer got there first) is
// reported as ErrConflict; the document already in the store is intact.
func (b *Backend) InsertFeature(doc types.FeatureDocument) error {
	db, err := b.handle()
	if err != nil {
		return err
	}
	if doc.Slug == "" || doc.ClassSRDID == "" {
		return types.ErrInvalidData
	}

	_, err = db.Exec(`INSERT INTO features
    (class_srd_id, level, slug, class_name, edition, name, description_md,
     source, srd_feature_id, license, imported_at, import_version, run_id)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ClassSRDID, doc.Level, doc.Slug, doc.ClassName, doc.Edition,
		doc.Name, doc.DescriptionMD, doc.Source, nullable(doc.SRDFeatureID),
		doc.License, doc.Meta.ImportedAt, doc.Meta.ImportVersion, doc.Meta.RunID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting feature %s: %w", doc.Slug, types.ErrConflict)
		}
		return fmt.Errorf("inserting feature %s: %w", doc.Slug, err)
	}
	return nil
}

// UpdateFeatureCAS overwrites the content fields of an existing feature
// document using a compare-and-swap on the previously observed import
// version. doc.Meta.ImportVersion must already hold prior+1. If the stored
// version no longer equals prior, meaning a concurrent run bumped it between
// our read and this write, no row is touched and ErrConflict is returned.
// Two racing runs can never both observe N and both write N+1.
func (b *Backend) UpdateFeatureCAS(doc types.FeatureDocument, prior int64) error {
	db, err := b.handle()
	if err != nil {
		return err
	}

	res, err := db.Exec(`UPDATE features SET
        class_name = ?, edition = ?, name = ?, description_md = ?,
        source = ?, srd_feature_id = ?, license = ?,
        imported_at = ?, import_version = ?, run_id = ?
    WHERE class_srd_id = ? AND level = ? AND slug = ? AND import_version = ?`,
		doc.ClassName, doc.Edition, doc.Name, doc.DescriptionMD,
		doc.Source, nullable(doc.SRDFeatureID), doc.License,
		doc.Meta.ImportedAt, doc.Meta.ImportVersion, doc.Meta.RunID,
		doc.ClassSRDID, doc.Level, doc.Slug, prior,
	)
	if err != nil {
		return fmt.Errorf("updating feature %s: %w", doc.Slug, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating feature %s: %w", doc.Slug, err)
	}
	if n == 0 {
		return fmt.Errorf("updating feature %s: %w", doc.Slug, types.ErrConflict)
	}
	return nil
}

// CountFeatures returns the number of persisted feature documents.
func (b *Backend) CountFeatures() (int64, error) {
	db, err := b.handle()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM features").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting features: %w", err)
	}
	return n, nil
}

// isUniqueViolation reports whether err is a SQLite uniqueness-constraint
// rejection. The driver exposes constraint failures only through the error
// text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// nullable maps an empty string to SQL NULL for optional columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
