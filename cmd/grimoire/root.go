// Root command for the grimoire CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/hearthloom/grimoire/internal/paths"
	"github.com/hearthloom/grimoire/pkg/grimoire"
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagSourceDir string
	flagCacheDir  string
	flagJSON      bool
)

// Directory values loaded from config.yaml. Set by PersistentPreRunE so
// all subcommands can use them.
var (
	configBackend   string
	configDataDir   string
	configSourceDir string
	configCacheDir  string
)

var rootCmd = &cobra.Command{
	Use:           "grimoire",
	Short:         "Grimoire ingests SRD 5.1 class data into a document store",
	Long: `Grimoire validates canonical SRD 5.1 class files against a declared
schema and ingests them into a local document store, keeping an embedded
classes collection and a normalized features collection mutually consistent.
Ingestion is idempotent: re-running over identical source converges to the
same state, refreshing only import metadata.`,
	Version:       grimoire.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configBackend = cfg.GetString(cfgKeyBackend)
		configDataDir = cfg.GetString(cfgKeyDataDir)
		configSourceDir = cfg.GetString(cfgKeySourceDir)
		configCacheDir = cfg.GetString(cfgKeyCacheDir)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.grimoire-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(classesCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(featureCmd)
	rootCmd.AddCommand(verifyCmd)
}

// resolveConfigDir returns the configuration directory following the
// precedence: --config-dir flag > GRIMOIRE_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// resolveDataDir returns the data directory following the precedence:
// --data-dir flag > config.yaml data_dir > GRIMOIRE_DATA_DIR env > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveSourceDir returns the class source directory following the
// precedence: --source-dir flag > config.yaml source_dir > env > default.
func resolveSourceDir() (string, error) {
	return paths.ResolveSourceDir(flagSourceDir, configSourceDir)
}

// resolveCacheDir returns the cache directory following the precedence:
// --cache-dir flag > config.yaml cache_dir > env > default.
func resolveCacheDir() (string, error) {
	return paths.ResolveCacheDir(flagCacheDir, configCacheDir)
}
