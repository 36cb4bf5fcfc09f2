package types

// ImportMeta records ingest provenance on a persisted document. ImportedAt
// and ImportVersion are mutable metadata outside every uniqueness key:
// re-running an ingest refreshes them without changing document identity.
type ImportMeta struct {
	ImportedAt    string `json:"imported_at"`
	ImportVersion int64  `json:"import_version"`
	RunID         string `json:"run_id"`
}

// EmbeddedFeature is a feature carried inline by a ClassDocument. It
// duplicates the slug derived for the normalized FeatureDocument so both
// representations stay in lockstep.
type EmbeddedFeature struct {
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	DescriptionMD string `json:"description_md"`
	Source        string `json:"source"`
	SRDFeatureID  string `json:"srd_feature_id,omitempty"`
}

// EmbeddedLevel groups the inline features for one level of a ClassDocument.
type EmbeddedLevel struct {
	Level    int               `json:"level"`
	Features []EmbeddedFeature `json:"features"`
}

// ClassMeta is the meta block attached to a ClassDocument. It mirrors what
// the cache artifact shows (levels plus feature count) and tracks ingest
// provenance.
type ClassMeta struct {
	LevelsSupported []int  `json:"levels_supported"`
	FeatureCount    int    `json:"feature_count"`
	ImportedAt      string `json:"imported_at"`
	ImportVersion   int64  `json:"import_version"`
	RunID           string `json:"run_id"`
}

// ClassDocument is the embedded representation of one class: the full
// per-level feature set denormalized inline. It is replaced wholesale on
// every ingest run, keyed by SRDID, so a shrinking source file cannot leave
// stale inline features behind.
type ClassDocument struct {
	SRDID            string          `json:"srd_id"`
	Name             string          `json:"name"`
	Edition          string          `json:"edition"`
	License          string          `json:"license"`
	HitDie           int             `json:"hit_die"`
	PrimaryAbilities []string        `json:"primary_abilities"`
	FeaturesByLevel  []EmbeddedLevel `json:"features_by_level"`
	Meta             ClassMeta       `json:"meta"`
}

// FeatureDocument is the normalized representation of one feature. The
// triple (ClassSRDID, Level, Slug) is its identity; ClassSRDID is a
// back-reference, not an ownership pointer; the class document stays
// authoritative for existence. Feature documents are never deleted by the
// ingest engine.
type FeatureDocument struct {
	Slug          string     `json:"slug"`
	ClassSRDID    string     `json:"class_srd_id"`
	ClassName     string     `json:"class_name"`
	Edition       string     `json:"edition"`
	Level         int        `json:"level"`
	Name          string     `json:"name"`
	DescriptionMD string     `json:"description_md"`
	Source        string     `json:"source"`
	SRDFeatureID  string     `json:"srd_feature_id,omitempty"`
	License       string     `json:"license"`
	Meta          ImportMeta `json:"meta"`
}

// ClassInfo is the minimal listing row returned by the class read helper.
type ClassInfo struct {
	Name   string `json:"name"`
	SRDID  string `json:"srd_id"`
	HitDie int    `json:"hit_die"`
}

// FeatureRef is the minimal listing row returned by the feature read
// helpers (name plus the slug needed to fetch the full document).
type FeatureRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}
