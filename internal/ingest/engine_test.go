package ingest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthloom/grimoire/internal/store"
	"github.com/hearthloom/grimoire/pkg/types"
)

const fighterJSON = `{
  "srd_id": "class:fighter",
  "name": "Fighter",
  "edition": "5e-2014",
  "license": "CC-BY-4.0",
  "hit_die": 10,
  "primary_abilities": ["Strength", "Dexterity"],
  "features_by_level": [
    {
      "level": 1,
      "features": [
        {"name": "Fighting Style", "description_md": "Adopt a particular style of fighting.", "source": "SRD 5.1 p. 25"},
        {"name": "Second Wind", "description_md": "You have a limited well of stamina.", "source": "SRD 5.1 p. 25"}
      ]
    }
  ]
}`

// setupRun creates an attached backend and a source dir holding the given
// files (name -> content).
func setupRun(t *testing.T, files map[string]string) (*store.Backend, string) {
	t.Helper()
	b := store.NewBackend()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}
	require.NoError(t, b.Attach(cfg))
	t.Cleanup(func() { b.Detach() })

	srcDir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(srcDir, name), []byte(content), 0o644))
	}
	return b, srcDir
}

func TestRunIngestsFighterEndToEnd(t *testing.T) {
	b, srcDir := setupRun(t, map[string]string{"fighter.json": fighterJSON})

	report, err := NewEngine(b).Run(srcDir)
	require.NoError(t, err)
	assert.False(t, report.Failed())

	require.Len(t, report.Classes, 1)
	res := report.Classes[0]
	assert.True(t, res.ClassCreated)
	assert.Equal(t, 2, res.FeaturesCreated)
	assert.Equal(t, 0, res.FeaturesUpdated)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, int64(1), report.ClassTotal)
	assert.Equal(t, int64(2), report.FeatureTotal)

	// Embedded document carries both features inline with derived slugs.
	doc, err := b.GetClass("class:fighter")
	require.NoError(t, err)
	assert.Equal(t, 10, doc.HitDie)
	require.Len(t, doc.FeaturesByLevel, 1)
	require.Len(t, doc.FeaturesByLevel[0].Features, 2)
	assert.Equal(t, "fighter-fighting-style-l1", doc.FeaturesByLevel[0].Features[0].Slug)
	assert.Equal(t, "fighter-second-wind-l1", doc.FeaturesByLevel[0].Features[1].Slug)
	assert.Equal(t, int64(1), doc.Meta.ImportVersion)

	// Both normalized documents exist at import version 1.
	for _, slug := range []string{"fighter-fighting-style-l1", "fighter-second-wind-l1"} {
		fd, err := b.FeatureBySlug(slug)
		require.NoError(t, err)
		assert.Equal(t, int64(1), fd.Meta.ImportVersion)
		assert.Equal(t, "class:fighter", fd.ClassSRDID)
	}
}

func TestRunIsIdempotentExceptImportMetadata(t *testing.T) {
	b, srcDir := setupRun(t, map[string]string{"fighter.json": fighterJSON})

	_, err := NewEngine(b).Run(srcDir)
	require.NoError(t, err)
	first, err := b.FeatureBySlug("fighter-second-wind-l1")
	require.NoError(t, err)

	report, err := NewEngine(b).Run(srcDir)
	require.NoError(t, err)

	require.Len(t, report.Classes, 1)
	res := report.Classes[0]
	assert.False(t, res.ClassCreated)
	assert.Equal(t, 0, res.FeaturesCreated)
	assert.Equal(t, 2, res.FeaturesUpdated)

	// Totals converge: the second run adds no documents.
	assert.Equal(t, int64(1), report.ClassTotal)
	assert.Equal(t, int64(2), report.FeatureTotal)

	second, err := b.FeatureBySlug("fighter-second-wind-l1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Meta.ImportVersion, "version bumps by exactly one per run")

	// Content fields are untouched; only import metadata moved.
	second.Meta = first.Meta
	assert.Equal(t, first, second)
}

func TestRunVersionMonotonicity(t *testing.T) {
	b, srcDir := setupRun(t, map[string]string{"fighter.json": fighterJSON})

	for i := 1; i <= 4; i++ {
		_, err := NewEngine(b).Run(srcDir)
		require.NoError(t, err)

		fd, err := b.FeatureBySlug("fighter-second-wind-l1")
		require.NoError(t, err)
		assert.Equal(t, int64(i), fd.Meta.ImportVersion)
	}
}

func TestRunRejectsRecordMissingHitDie(t *testing.T) {
	noHitDie := `{
  "srd_id": "class:bard",
  "name": "Bard",
  "edition": "5e-2014",
  "license": "CC-BY-4.0",
  "primary_abilities": ["Charisma"],
  "features_by_level": [
    {"level": 1, "features": [{"name": "Bardic Inspiration", "description_md": "Inspire others.", "source": "SRD 5.1"}]}
  ]
}`
	b, srcDir := setupRun(t, map[string]string{"bard.json": noHitDie})

	report, err := NewEngine(b).Run(srcDir)
	require.NoError(t, err)
	assert.True(t, report.Failed())

	require.Len(t, report.Classes, 1)
	require.Error(t, report.Classes[0].Err)
	assert.Contains(t, report.Classes[0].Err.Error(), "hit_die: required field missing")

	// No partial writes for a rejected record.
	assert.Equal(t, int64(0), report.ClassTotal)
	assert.Equal(t, int64(0), report.FeatureTotal)
}

func TestRunCollisionProducesZeroWritesForThatClass(t *testing.T) {
	colliding := `{
  "srd_id": "class:fighter",
  "name": "Fighter",
  "edition": "5e-2014",
  "license": "CC-BY-4.0",
  "hit_die": 10,
  "primary_abilities": ["Strength"],
  "features_by_level": [
    {
      "level": 1,
      "features": [
        {"name": "Second Wind", "description_md": "First copy.", "source": "SRD 5.1"},
        {"name": "Second Wind", "description_md": "Second copy.", "source": "SRD 5.1"}
      ]
    }
  ]
}`
	b, srcDir := setupRun(t, map[string]string{"fighter.json": colliding})

	report, err := NewEngine(b).Run(srcDir)
	require.NoError(t, err)
	assert.True(t, report.Failed())

	require.Len(t, report.Classes, 1)
	var collision *CollisionError
	require.ErrorAs(t, report.Classes[0].Err, &collision)
	assert.Equal(t, "fighter-second-wind-l1", collision.Slug)

	assert.Equal(t, int64(0), report.ClassTotal)
	assert.Equal(t, int64(0), report.FeatureTotal)
}

func TestRunOneBadFileDoesNotBlockOthers(t *testing.T) {
	b, srcDir := setupRun(t, map[string]string{
		"broken.json":  `{"name": `,
		"fighter.json": fighterJSON,
	})

	report, err := NewEngine(b).Run(srcDir)
	require.NoError(t, err)
	assert.True(t, report.Failed())
	assert.Equal(t, 1, report.FailureCount())

	require.Len(t, report.ParseErrors, 1)
	assert.Equal(t, "broken.json", report.ParseErrors[0].Name)

	assert.Equal(t, int64(1), report.ClassTotal)
	assert.Equal(t, int64(2), report.FeatureTotal)
}

func TestRunRejectsDuplicateSRDID(t *testing.T) {
	duplicate := `{
  "srd_id": "class:fighter",
  "name": "Fighter Again",
  "edition": "5e-2014",
  "license": "CC-BY-4.0",
  "hit_die": 10,
  "primary_abilities": ["Strength"],
  "features_by_level": [
    {"level": 1, "features": [{"name": "Other Feature", "description_md": "Other.", "source": "SRD 5.1"}]}
  ]
}`
	b, srcDir := setupRun(t, map[string]string{
		"a_fighter.json": fighterJSON,
		"b_fighter.json": duplicate,
	})

	report, err := NewEngine(b).Run(srcDir)
	require.NoError(t, err)
	assert.True(t, report.Failed())

	require.Len(t, report.Classes, 2)
	assert.NoError(t, report.Classes[0].Err)
	var dup *DuplicateIDError
	require.ErrorAs(t, report.Classes[1].Err, &dup)
	assert.Equal(t, "class:fighter", dup.SRDID)

	// The first declaration won; the duplicate wrote nothing.
	doc, err := b.GetClass("class:fighter")
	require.NoError(t, err)
	assert.Equal(t, "Fighter", doc.Name)
	assert.Equal(t, int64(2), report.FeatureTotal)
}

func TestRenderReportMentionsOutcomes(t *testing.T) {
	b, srcDir := setupRun(t, map[string]string{"fighter.json": fighterJSON})
	report, err := NewEngine(b).Run(srcDir)
	require.NoError(t, err)

	var buf bytes.Buffer
	report.Render(&buf)
	out := buf.String()
	assert.Contains(t, out, "Ingest report")
	assert.Contains(t, out, "fighter.json")
	assert.Contains(t, out, "classes: 1, features: 2")
}

// racingStore interposes a concurrent version bump between the engine's
// version read and its compare-and-swap write for one slug, so the
// engine's update observes a version other than the one it read.
type racingStore struct {
	*store.Backend
	raceSlug string
	raced    bool
}

func (s *racingStore) GetFeatureVersion(classSRDID string, level int, slug string) (int64, error) {
	v, err := s.Backend.GetFeatureVersion(classSRDID, level, slug)
	if err == nil && slug == s.raceSlug && !s.raced {
		s.raced = true
		doc, derr := s.Backend.FeatureBySlug(slug)
		if derr != nil {
			return v, derr
		}
		doc.Meta.ImportVersion = v + 1
		doc.Meta.RunID = "concurrent"
		if werr := s.Backend.UpdateFeatureCAS(doc, v); werr != nil {
			return v, werr
		}
	}
	return v, err
}

func TestRunRecordsCASConflictAndContinues(t *testing.T) {
	b, srcDir := setupRun(t, map[string]string{"fighter.json": fighterJSON})
	_, err := NewEngine(b).Run(srcDir)
	require.NoError(t, err)

	rs := &racingStore{Backend: b, raceSlug: "fighter-second-wind-l1"}
	report, err := NewEngine(rs).Run(srcDir)
	require.NoError(t, err)
	assert.False(t, report.Failed(), "write conflicts do not fail the run")

	require.Len(t, report.Classes, 1)
	res := report.Classes[0]
	assert.Equal(t, []string{"fighter-second-wind-l1"}, res.Conflicts)
	assert.Equal(t, 1, res.FeaturesUpdated, "the remaining feature still proceeds")

	// The concurrent winner's increment stands; the losing write applied
	// nothing on top of it.
	fd, err := b.FeatureBySlug("fighter-second-wind-l1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), fd.Meta.ImportVersion)
	assert.Equal(t, "concurrent", fd.Meta.RunID)

	other, err := b.FeatureBySlug("fighter-fighting-style-l1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), other.Meta.ImportVersion)
}

// preemptingStore interposes a concurrent first-sight insert between the
// engine's not-found read and its own insert for one slug, so the engine's
// insert hits the uniqueness constraint.
type preemptingStore struct {
	*store.Backend
	raceSlug string
	raced    bool
}

func (s *preemptingStore) GetFeatureVersion(classSRDID string, level int, slug string) (int64, error) {
	v, err := s.Backend.GetFeatureVersion(classSRDID, level, slug)
	if errors.Is(err, types.ErrNotFound) && slug == s.raceSlug && !s.raced {
		s.raced = true
		werr := s.Backend.InsertFeature(types.FeatureDocument{
			Slug:          slug,
			ClassSRDID:    classSRDID,
			ClassName:     "Fighter",
			Edition:       types.Edition,
			Level:         level,
			Name:          "Second Wind",
			DescriptionMD: "Won the race.",
			Source:        "SRD 5.1",
			License:       types.License,
			Meta:          types.ImportMeta{ImportedAt: "2026-08-30T00:00:00Z", ImportVersion: 1, RunID: "concurrent"},
		})
		if werr != nil {
			return v, werr
		}
	}
	return v, err
}

func TestRunRecordsInsertConflictAndContinues(t *testing.T) {
	b, srcDir := setupRun(t, map[string]string{"fighter.json": fighterJSON})

	ps := &preemptingStore{Backend: b, raceSlug: "fighter-second-wind-l1"}
	report, err := NewEngine(ps).Run(srcDir)
	require.NoError(t, err)
	assert.False(t, report.Failed(), "write conflicts do not fail the run")

	require.Len(t, report.Classes, 1)
	res := report.Classes[0]
	assert.Equal(t, []string{"fighter-second-wind-l1"}, res.Conflicts)
	assert.Equal(t, 1, res.FeaturesCreated, "the remaining feature still proceeds")

	// The document the concurrent writer created is intact.
	fd, err := b.FeatureBySlug("fighter-second-wind-l1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fd.Meta.ImportVersion)
	assert.Equal(t, "concurrent", fd.Meta.RunID)
	assert.Equal(t, "Won the race.", fd.DescriptionMD)
}
