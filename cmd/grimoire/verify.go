// Verify command reports orphaned feature documents, read-only.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Report cross-collection consistency problems",
	Long: `Verify compares the features collection against the features embedded in
the class documents and reports feature documents that no class refers to.
It never modifies the store; orphans are left for inspection.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach() //nolint:errcheck

	orphans, err := backend.OrphanedFeatures()
	if err != nil {
		return sysErrf("find orphans: %w", err)
	}

	out := cmd.OutOrStdout()

	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(orphans)
	}

	if len(orphans) == 0 {
		fmt.Fprintln(out, "Collections are consistent: no orphaned features.")
		return nil
	}

	fmt.Fprintf(out, "Found %d orphaned feature(s):\n", len(orphans))
	for _, o := range orphans {
		fmt.Fprintf(out, "  %s level %d: %s (%s)\n", o.ClassSRDID, o.Level, o.Name, o.Slug)
	}
	return fmt.Errorf("%d orphaned feature(s) found", len(orphans))
}
