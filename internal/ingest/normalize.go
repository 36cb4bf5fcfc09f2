// This file transforms one validated class record into its two persisted
// representations: the embedded class document and the ordered sequence of
// normalized feature documents. Both reuse the identical derived slugs, so
// the representations stay in lockstep.
package ingest

import (
	"fmt"

	"github.com/hearthloom/grimoire/internal/slug"
	"github.com/hearthloom/grimoire/pkg/types"
)

// FeatureOrigin identifies one feature occurrence in source, for collision
// reporting.
type FeatureOrigin struct {
	ClassSRDID string
	Level      int
	Name       string
}

// CollisionError reports two source features resolving to the same slug
// within one ingest run. The class record carrying the second occurrence is
// failed wholesale; nothing is written for it.
type CollisionError struct {
	Slug   string
	First  FeatureOrigin
	Second FeatureOrigin
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf(
		"slug collision on %q: %q (%s level %d) and %q (%s level %d) derive the same slug",
		e.Slug,
		e.First.Name, e.First.ClassSRDID, e.First.Level,
		e.Second.Name, e.Second.ClassSRDID, e.Second.Level,
	)
}

// normalizeClass builds the embedded document and feature documents for one
// class record. seen is the run-scoped slug map: it accumulates every slug
// of the current run so duplicates are rejected before any write. On a
// collision the class contributes nothing to seen and no documents are
// returned. Feature documents are stamped at import version 1; the engine
// resolves the real version against prior persisted state.
func normalizeClass(rec types.ClassRecord, importedAt, runID string, seen map[string]FeatureOrigin) (types.ClassDocument, []types.FeatureDocument, error) {
	var features []types.FeatureDocument
	embedded := make([]types.EmbeddedLevel, 0, len(rec.FeaturesByLevel))
	local := make(map[string]FeatureOrigin)

	for _, block := range rec.FeaturesByLevel {
		lvl := types.EmbeddedLevel{Level: block.Level}
		for _, f := range block.Features {
			s := slug.Feature(rec.SRDID, f.Name, block.Level)
			origin := FeatureOrigin{ClassSRDID: rec.SRDID, Level: block.Level, Name: f.Name}
			if first, dup := seen[s]; dup {
				return types.ClassDocument{}, nil, &CollisionError{Slug: s, First: first, Second: origin}
			}
			if first, dup := local[s]; dup {
				return types.ClassDocument{}, nil, &CollisionError{Slug: s, First: first, Second: origin}
			}
			local[s] = origin

			features = append(features, types.FeatureDocument{
				Slug:          s,
				ClassSRDID:    rec.SRDID,
				ClassName:     rec.Name,
				Edition:       rec.Edition,
				Level:         block.Level,
				Name:          f.Name,
				DescriptionMD: f.DescriptionMD,
				Source:        f.Source,
				SRDFeatureID:  f.SRDFeatureID,
				License:       rec.License,
				Meta: types.ImportMeta{
					ImportedAt:    importedAt,
					ImportVersion: 1,
					RunID:         runID,
				},
			})
			lvl.Features = append(lvl.Features, types.EmbeddedFeature{
				Name:          f.Name,
				Slug:          s,
				DescriptionMD: f.DescriptionMD,
				Source:        f.Source,
				SRDFeatureID:  f.SRDFeatureID,
			})
		}
		embedded = append(embedded, lvl)
	}

	for s, origin := range local {
		seen[s] = origin
	}

	doc := types.ClassDocument{
		SRDID:            rec.SRDID,
		Name:             rec.Name,
		Edition:          rec.Edition,
		License:          rec.License,
		HitDie:           rec.HitDie,
		PrimaryAbilities: rec.PrimaryAbilities,
		FeaturesByLevel:  embedded,
		Meta: types.ClassMeta{
			LevelsSupported: rec.Levels(),
			FeatureCount:    rec.FeatureCount(),
			ImportedAt:      importedAt,
			ImportVersion:   1,
			RunID:           runID,
		},
	}
	return doc, features, nil
}
