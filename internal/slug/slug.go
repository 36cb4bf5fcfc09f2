// Package slug derives deterministic, human-readable identifiers for SRD
// records. Every function here is a pure function of its inputs: re-running
// an ingest over identical source regenerates byte-identical slugs, which is
// what makes the keyed upserts idempotent.
package slug

import (
	"fmt"
	"strings"

	"github.com/hearthloom/grimoire/pkg/types"
)

// Make converts free text to a slug fragment: lowercase ASCII, runs of
// non-alphanumeric characters collapsed to single hyphens, leading and
// trailing hyphens stripped.
//
//	"Second Wind"        -> "second-wind"
//	"Rage (2/long rest)" -> "rage-2-long-rest"
func Make(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	hyphenPending := false
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if hyphenPending && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphenPending = false
			b.WriteRune(r)
			continue
		}
		hyphenPending = true
	}
	return b.String()
}

// Feature derives the canonical slug for one class feature:
// "<class>-<feature>-l<level>". classID may be given with or without the
// "class:" namespace prefix; only the fragment participates in the slug.
func Feature(classID, featureName string, level int) string {
	classFrag := Make(strings.TrimPrefix(classID, types.ClassIDPrefix))
	return fmt.Sprintf("%s-%s-l%d", classFrag, Make(featureName), level)
}

// ClassID derives the namespaced class identifier for a display name,
// e.g. "Fighter" -> "class:fighter".
func ClassID(name string) string {
	return types.ClassIDPrefix + Make(name)
}
