// Ingest command runs the full ingestion pipeline.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearthloom/grimoire/internal/cache"
	"github.com/hearthloom/grimoire/internal/ingest"
	"github.com/hearthloom/grimoire/internal/store"
)

var flagNoCache bool

// ingestFailedError signals that one or more source files were rejected.
// It is a user error, not a system error.
type ingestFailedError struct {
	count int
}

func (e *ingestFailedError) Error() string {
	if e.count == 1 {
		return "ingest failed: 1 file rejected"
	}
	return fmt.Sprintf("ingest failed: %d files rejected", e.count)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Validate and upsert canonical class files into the store",
	Long: `Ingest reads every *.json file from the source directory, validates it
against the class schema, derives feature slugs, and upserts the class and
feature collections in one run. Files that fail validation are skipped and
reported; they never block other files. After every run the cache artifacts
classes.min.json and meta.json are rewritten from the persisted state.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&flagSourceDir, "source-dir", "", "class source directory (default: $(CWD)/data/classes)")
	ingestCmd.Flags().StringVar(&flagCacheDir, "cache-dir", "", "cache artifact directory (default: $(CWD)/cache)")
	ingestCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "skip writing cache artifacts")
}

func runIngest(cmd *cobra.Command, args []string) error {
	sourceDir, err := resolveSourceDir()
	if err != nil {
		return sysErrf("resolve source dir: %w", err)
	}

	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach() //nolint:errcheck

	engine := ingest.NewEngine(backend)
	report, err := engine.Run(sourceDir)
	if report != nil {
		report.Render(cmd.OutOrStdout())
	}
	if err != nil {
		return sysErr(err)
	}

	// The artifacts serialize whatever the store now holds, so rejected
	// files must not leave them stale: the valid classes were upserted.
	if !flagNoCache {
		if err := emitCache(backend, report); err != nil {
			return err
		}
	}

	if report.Failed() {
		return &ingestFailedError{count: report.FailureCount()}
	}

	return nil
}

// emitCache rewrites the cache artifacts from the store's post-run state.
func emitCache(backend *store.Backend, report *ingest.RunReport) error {
	cacheDir, err := resolveCacheDir()
	if err != nil {
		return sysErrf("resolve cache dir: %w", err)
	}

	docs, err := backend.ListClassDocuments()
	if err != nil {
		return sysErrf("list class documents: %w", err)
	}

	err = cache.Emit(cacheDir, docs, report.ClassTotal, report.FeatureTotal, time.Now(), report.RunID)
	if err != nil {
		return sysErrf("emit cache: %w", err)
	}

	return nil
}
