// Feature command shows one feature document by slug.
package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hearthloom/grimoire/pkg/types"
)

var featureCmd = &cobra.Command{
	Use:   "feature <slug>",
	Short: "Show a single feature document by slug",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeature,
}

func runFeature(cmd *cobra.Command, args []string) error {
	slug := args[0]

	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach() //nolint:errcheck

	doc, err := backend.FeatureBySlug(slug)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("no feature with slug %q", slug)
		}
		return sysErrf("get feature: %w", err)
	}

	out := cmd.OutOrStdout()

	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	fmt.Fprintf(out, "%s (%s, level %d)\n", doc.Name, doc.ClassName, doc.Level)
	fmt.Fprintf(out, "slug:    %s\n", doc.Slug)
	fmt.Fprintf(out, "source:  %s\n", doc.Source)
	if doc.SRDFeatureID != "" {
		fmt.Fprintf(out, "srd id:  %s\n", doc.SRDFeatureID)
	}
	fmt.Fprintf(out, "\n%s\n", doc.DescriptionMD)
	return nil
}
