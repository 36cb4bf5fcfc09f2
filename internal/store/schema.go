package store

// Schema DDL for the two collections. Every statement is idempotent
// (IF NOT EXISTS): the store persists across ingest runs, and a re-run
// attaches to whatever state the previous run left behind.
const (
	createClasses = `CREATE TABLE IF NOT EXISTS classes (
    srd_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    edition TEXT NOT NULL,
    license TEXT NOT NULL,
    hit_die INTEGER NOT NULL,
    document TEXT NOT NULL,
    imported_at TEXT NOT NULL,
    import_version INTEGER NOT NULL,
    run_id TEXT NOT NULL
);`

	createFeatures = `CREATE TABLE IF NOT EXISTS features (
    class_srd_id TEXT NOT NULL,
    level INTEGER NOT NULL,
    slug TEXT NOT NULL,
    class_name TEXT NOT NULL,
    edition TEXT NOT NULL,
    name TEXT NOT NULL,
    description_md TEXT NOT NULL,
    source TEXT NOT NULL,
    srd_feature_id TEXT,
    license TEXT NOT NULL,
    imported_at TEXT NOT NULL,
    import_version INTEGER NOT NULL,
    run_id TEXT NOT NULL,
    PRIMARY KEY (class_srd_id, level, slug)
);`
)

// Index DDL. The primary keys above carry the uniqueness contract
// (classes.srd_id; features class_srd_id+level+slug); these serve the read
// helpers.
const (
	idxClassesName       = `CREATE INDEX IF NOT EXISTS idx_classes_name ON classes(name);`
	idxFeaturesClassName = `CREATE INDEX IF NOT EXISTS idx_features_class_name_level ON features(class_name, level);`
	idxFeaturesSlug      = `CREATE INDEX IF NOT EXISTS idx_features_slug ON features(slug);`
)

// schemaDDL lists all statements applied on Attach, in order.
var schemaDDL = []string{
	createClasses,
	createFeatures,
	idxClassesName,
	idxFeaturesClassName,
	idxFeaturesSlug,
}
