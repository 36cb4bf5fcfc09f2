package schema

import (
	"encoding/json"
	"fmt"

	"github.com/hearthloom/grimoire/pkg/types"
)

// DecodeClass converts a validated class document into its typed record.
// Call only after Validate returned no violations; decoding an unvalidated
// document gives undefined field values, not an error list.
func DecodeClass(doc map[string]any) (types.ClassRecord, error) {
	var rec types.ClassRecord
	raw, err := json.Marshal(doc)
	if err != nil {
		return rec, fmt.Errorf("re-encoding class document: %w", err)
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("decoding class record: %w", err)
	}
	return rec, nil
}
