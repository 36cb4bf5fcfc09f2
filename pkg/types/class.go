package types

// Edition and license tags for the SRD 5.1 data set. The schema pins both
// as closed enumerations so foreign content cannot slip into the store.
const (
	Edition = "5e-2014"
	License = "CC-BY-4.0"
)

// ClassIDPrefix is the namespace prefix carried by every class identifier,
// e.g. "class:fighter".
const ClassIDPrefix = "class:"

// RawFeature is one feature as it appears in a canonical class source file.
type RawFeature struct {
	Name          string `json:"name"`
	DescriptionMD string `json:"description_md"`
	Source        string `json:"source"`
	SRDFeatureID  string `json:"srd_feature_id,omitempty"`
}

// LevelBlock groups the features a class gains at one level (1-20).
type LevelBlock struct {
	Level    int          `json:"level"`
	Features []RawFeature `json:"features"`
}

// ClassRecord is one validated class source file. It is the read-only
// source of truth for a single class; the ingest pipeline never mutates it
// after decoding.
type ClassRecord struct {
	SRDID            string       `json:"srd_id"`
	Name             string       `json:"name"`
	Edition          string       `json:"edition"`
	License          string       `json:"license"`
	HitDie           int          `json:"hit_die"`
	PrimaryAbilities []string     `json:"primary_abilities"`
	FeaturesByLevel  []LevelBlock `json:"features_by_level"`
}

// FeatureCount returns the total number of features across all levels.
func (c ClassRecord) FeatureCount() int {
	n := 0
	for _, block := range c.FeaturesByLevel {
		n += len(block.Features)
	}
	return n
}

// Levels returns the levels present in the record, in source order.
func (c ClassRecord) Levels() []int {
	levels := make([]int, 0, len(c.FeaturesByLevel))
	for _, block := range c.FeaturesByLevel {
		levels = append(levels, block.Level)
	}
	return levels
}
