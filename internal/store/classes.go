// This file implements the classes collection: embedded class documents
// keyed uniquely by srd_id, replaced wholesale on every ingest.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hearthloom/grimoire/pkg/types"
)

// ReplaceClass performs the atomic insert-if-absent-else-replace of an
// embedded class document, keyed by SRDID. Replacement is wholesale, never
// a field-level merge, so no stale inline feature survives a source edit.
// Returns whether the document was newly created.
func (b *Backend) ReplaceClass(doc types.ClassDocument) (bool, error) {
	db, err := b.handle()
	if err != nil {
		return false, err
	}
	if doc.SRDID == "" {
		return false, types.ErrInvalidData
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("encoding class %s: %w", doc.SRDID, err)
	}

	// Existence probe feeds the created/updated report counters only; the
	// upsert below is atomic regardless.
	var one int
	err = db.QueryRow("SELECT 1 FROM classes WHERE srd_id = ?", doc.SRDID).Scan(&one)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("checking class existence: %w", err)
	}
	created := err == sql.ErrNoRows

	_, err = db.Exec(`INSERT INTO classes
    (srd_id, name, edition, license, hit_die, document, imported_at, import_version, run_id)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT(srd_id) DO UPDATE SET
        name = excluded.name,
        edition = excluded.edition,
        license = excluded.license,
        hit_die = excluded.hit_die,
        document = excluded.document,
        imported_at = excluded.imported_at,
        import_version = excluded.import_version,
        run_id = excluded.run_id`,
		doc.SRDID, doc.Name, doc.Edition, doc.License, doc.HitDie,
		string(body), doc.Meta.ImportedAt, doc.Meta.ImportVersion, doc.Meta.RunID,
	)
	if err != nil {
		return false, fmt.Errorf("replacing class %s: %w", doc.SRDID, err)
	}
	return created, nil
}

// GetClass retrieves one embedded class document by srd_id.
func (b *Backend) GetClass(srdID string) (types.ClassDocument, error) {
	var doc types.ClassDocument
	db, err := b.handle()
	if err != nil {
		return doc, err
	}

	var body string
	err = db.QueryRow("SELECT document FROM classes WHERE srd_id = ?", srdID).Scan(&body)
	if err == sql.ErrNoRows {
		return doc, types.ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("getting class %s: %w", srdID, err)
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return doc, fmt.Errorf("decoding class %s: %w", srdID, err)
	}
	return doc, nil
}

// ListClassDocuments returns every embedded class document ordered by
// srd_id. The ordering is part of the cache emitter's determinism contract.
func (b *Backend) ListClassDocuments() ([]types.ClassDocument, error) {
	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT srd_id, document FROM classes ORDER BY srd_id")
	if err != nil {
		return nil, fmt.Errorf("listing class documents: %w", err)
	}
	defer rows.Close()

	var docs []types.ClassDocument
	for rows.Next() {
		var srdID, body string
		if err := rows.Scan(&srdID, &body); err != nil {
			return nil, fmt.Errorf("scanning class row: %w", err)
		}
		var doc types.ClassDocument
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("decoding class %s: %w", srdID, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// CountClasses returns the number of persisted class documents.
func (b *Backend) CountClasses() (int64, error) {
	db, err := b.handle()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM classes").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting classes: %w", err)
	}
	return n, nil
}
