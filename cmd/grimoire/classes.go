// Classes command lists imported classes.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List imported classes",
	Args:  cobra.NoArgs,
	RunE:  runClasses,
}

func runClasses(cmd *cobra.Command, args []string) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach() //nolint:errcheck

	infos, err := backend.ListClasses()
	if err != nil {
		return sysErrf("list classes: %w", err)
	}

	out := cmd.OutOrStdout()

	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	if len(infos) == 0 {
		fmt.Fprintln(out, "No classes imported.")
		return nil
	}

	for _, info := range infos {
		fmt.Fprintf(out, "%-16s %-24s d%d\n", info.Name, info.SRDID, info.HitDie)
	}
	return nil
}
