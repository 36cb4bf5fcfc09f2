// Features command lists the features a class gains at one level.
package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var featuresCmd = &cobra.Command{
	Use:   "features <class> <level>",
	Short: "List features granted to a class at a level",
	Args:  cobra.ExactArgs(2),
	RunE:  runFeatures,
}

func runFeatures(cmd *cobra.Command, args []string) error {
	className := args[0]

	level, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("level must be an integer, got %q", args[1])
	}
	if level < 1 || level > 20 {
		return fmt.Errorf("level must be between 1 and 20, got %d", level)
	}

	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach() //nolint:errcheck

	refs, err := backend.FeaturesByClassLevel(className, level)
	if err != nil {
		return sysErrf("list features: %w", err)
	}

	out := cmd.OutOrStdout()

	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(refs)
	}

	if len(refs) == 0 {
		fmt.Fprintf(out, "No features for %s at level %d.\n", className, level)
		return nil
	}

	for _, ref := range refs {
		fmt.Fprintf(out, "%-32s %s\n", ref.Name, ref.Slug)
	}
	return nil
}
