package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthloom/grimoire/pkg/types"
)

func fighterRecord() types.ClassRecord {
	return types.ClassRecord{
		SRDID:            "class:fighter",
		Name:             "Fighter",
		Edition:          types.Edition,
		License:          types.License,
		HitDie:           10,
		PrimaryAbilities: []string{"Strength", "Dexterity"},
		FeaturesByLevel: []types.LevelBlock{
			{Level: 1, Features: []types.RawFeature{
				{Name: "Fighting Style", DescriptionMD: "Adopt a style.", Source: "SRD 5.1"},
				{Name: "Second Wind", DescriptionMD: "Regain hit points.", Source: "SRD 5.1"},
			}},
			{Level: 2, Features: []types.RawFeature{
				{Name: "Action Surge", DescriptionMD: "Push beyond your limits.", Source: "SRD 5.1"},
			}},
		},
	}
}

func TestNormalizeClassDerivesLockstepRepresentations(t *testing.T) {
	seen := make(map[string]FeatureOrigin)
	doc, feats, err := normalizeClass(fighterRecord(), "2026-08-30T12:00:00Z", "run-1", seen)
	require.NoError(t, err)

	require.Len(t, feats, 3)
	assert.Equal(t, "fighter-fighting-style-l1", feats[0].Slug)
	assert.Equal(t, "fighter-second-wind-l1", feats[1].Slug)
	assert.Equal(t, "fighter-action-surge-l2", feats[2].Slug)
	for _, fd := range feats {
		assert.Equal(t, "class:fighter", fd.ClassSRDID)
		assert.Equal(t, "Fighter", fd.ClassName)
		assert.Equal(t, int64(1), fd.Meta.ImportVersion)
		assert.Equal(t, "run-1", fd.Meta.RunID)
	}

	// The embedded form carries the identical slugs inline.
	require.Len(t, doc.FeaturesByLevel, 2)
	assert.Equal(t, feats[0].Slug, doc.FeaturesByLevel[0].Features[0].Slug)
	assert.Equal(t, feats[1].Slug, doc.FeaturesByLevel[0].Features[1].Slug)
	assert.Equal(t, feats[2].Slug, doc.FeaturesByLevel[1].Features[0].Slug)

	assert.Equal(t, []int{1, 2}, doc.Meta.LevelsSupported)
	assert.Equal(t, 3, doc.Meta.FeatureCount)
	assert.Len(t, seen, 3, "successful class contributes its slugs to the run map")
}

func TestNormalizeClassDetectsCollisionNamingBoth(t *testing.T) {
	rec := fighterRecord()
	rec.FeaturesByLevel = []types.LevelBlock{
		{Level: 1, Features: []types.RawFeature{
			{Name: "Second Wind", DescriptionMD: "First copy.", Source: "SRD 5.1"},
			{Name: "Second Wind", DescriptionMD: "Second copy.", Source: "SRD 5.1"},
		}},
	}

	seen := make(map[string]FeatureOrigin)
	_, feats, err := normalizeClass(rec, "2026-08-30T12:00:00Z", "run-1", seen)
	require.Error(t, err)
	assert.Nil(t, feats)

	var collision *CollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, "fighter-second-wind-l1", collision.Slug)
	assert.Equal(t, "Second Wind", collision.First.Name)
	assert.Equal(t, "Second Wind", collision.Second.Name)
	assert.Contains(t, collision.Error(), "fighter-second-wind-l1")

	assert.Empty(t, seen, "a failed class must not leak slugs into the run map")
}

func TestNormalizeClassDetectsCrossLevelDistinctSlugs(t *testing.T) {
	// The same feature name at two different levels is not a collision;
	// the level suffix keeps the slugs distinct.
	rec := fighterRecord()
	rec.FeaturesByLevel = []types.LevelBlock{
		{Level: 5, Features: []types.RawFeature{
			{Name: "Extra Attack", DescriptionMD: "Attack twice.", Source: "SRD 5.1"},
		}},
		{Level: 11, Features: []types.RawFeature{
			{Name: "Extra Attack", DescriptionMD: "Attack three times.", Source: "SRD 5.1"},
		}},
	}

	seen := make(map[string]FeatureOrigin)
	_, feats, err := normalizeClass(rec, "2026-08-30T12:00:00Z", "run-1", seen)
	require.NoError(t, err)
	require.Len(t, feats, 2)
	assert.Equal(t, "fighter-extra-attack-l5", feats[0].Slug)
	assert.Equal(t, "fighter-extra-attack-l11", feats[1].Slug)
}

func TestNormalizeClassDetectsCollisionAcrossRecords(t *testing.T) {
	seen := make(map[string]FeatureOrigin)
	_, _, err := normalizeClass(fighterRecord(), "2026-08-30T12:00:00Z", "run-1", seen)
	require.NoError(t, err)

	// A second record deriving an already-seen slug fails against the
	// run-scoped map.
	_, _, err = normalizeClass(fighterRecord(), "2026-08-30T12:00:00Z", "run-1", seen)
	var collision *CollisionError
	require.ErrorAs(t, err, &collision)
}
