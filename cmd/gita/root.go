package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/anshulchahar/gita"
	"github.com/anshulchahar/gita/internal/app"
)

var (
	cfgFile       string
	cfgContentDir string
	cfgStoreURL   string
	cfgLedgerPath string
	cfgDebug      bool
	outputJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "gita",
	Short: "Gita - lesson content tooling",
	Long: `Gita maintains the Bhagavad Gita course content: units, sections,
lessons and questions stored as unit<N>.json documents.

It generates and reshapes unit documents locally, validates their lesson
chains, and synchronizes them to the remote document store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to YAML config file (default: $GITA_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&cfgContentDir, "content-dir", "", "Directory holding unit<N>.json files (default: ./content)")
	rootCmd.PersistentFlags().StringVar(&cfgStoreURL, "store-url", "", "Document store base URL")
	rootCmd.PersistentFlags().StringVar(&cfgLedgerPath, "ledger", "", "Path to the local run ledger (default: ~/.gita/ledger.db)")
	rootCmd.PersistentFlags().BoolVar(&cfgDebug, "debug", false, "Enable debug logging and HTTP tracing")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output as JSON")
}

// loadConfig layers the config file, environment and flags, in that order.
func loadConfig() (gita.Config, error) {
	var cfg gita.Config

	path := cfgFile
	if path == "" {
		path = os.Getenv("GITA_CONFIG")
	}
	if path != "" {
		fileCfg, err := gita.LoadConfigFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = fileCfg
	}

	cfg = cfg.Merge(gita.ConfigFromEnv())
	cfg = cfg.Merge(gita.Config{
		ContentDir:   cfgContentDir,
		StoreBaseURL: cfgStoreURL,
		LedgerPath:   cfgLedgerPath,
		Debug:        cfgDebug,
	})
	return cfg, nil
}

// openApp builds the application from layered configuration. The caller
// closes the returned App and syncs the logger.
func openApp() (*app.App, *gita.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	mode := cfg.LogMode
	if mode == "" {
		mode = gita.DefaultLogMode
	}
	log, err := gita.NewLogger(mode, cfg.Debug)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(cfg, log)
	if err != nil {
		log.Sync()
		return nil, nil, err
	}
	return a, log, nil
}
