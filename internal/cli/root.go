package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quireproject/quire/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "quire",
	Short: "Quire - claim/fit knowledge base with epistemic governance",
	Long: `Quire maintains a corpus of research records (Claims, Fits, Phases)
as plain-text documents and validates the graph they form.

It does not decide what is true about the manuscript. It guarantees that
the notebook's own rules hold: identifiers are unique, references resolve,
constraint tiers are never loosened or granted silently, and superseded
records always point at their replacement. Summary tables are regenerated
deterministically from the validated corpus, never edited by hand.

Quire is a ledger, not an oracle.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Quire.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("quire v0.2.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.quire/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("strict", false, "promote vocabulary violations to FATAL")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("strict", rootCmd.PersistentFlags().Lookup("strict"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in the working corpus first, then home
		viper.AddConfigPath(".")
		viper.AddConfigPath(home + "/.quire")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match QUIRE_*
	viper.SetEnvPrefix("QUIRE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig materializes the resolved configuration: defaults overlaid by
// config file, environment, and bound flags.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetStringSlice("corpus.roots"); len(v) > 0 {
		cfg.Corpus.Roots = v
	}
	if v := viper.GetStringSlice("corpus.include"); len(v) > 0 {
		cfg.Corpus.Include = v
	}
	if v := viper.GetStringSlice("corpus.exclude"); len(v) > 0 {
		cfg.Corpus.Exclude = v
	}
	if v := viper.GetStringSlice("vocabulary.forbidden"); len(v) > 0 {
		cfg.Vocabulary.Forbidden = v
	}
	if v := viper.GetString("tables.dir"); v != "" {
		cfg.Tables.Dir = v
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetString("cache.dir"); v != "" {
		cfg.Cache.Dir = v
	}
	// The default cache dir lives under the home directory so the disk
	// tier persists across check and rebuild runs.
	if cfg.Cache.Enabled && cfg.Cache.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Cache.Dir = filepath.Join(home, ".quire", "cache")
		}
	}
	if v := viper.GetDuration("cache.ttl"); v > 0 {
		cfg.Cache.TTL = v
	}
	if v := viper.GetInt("concurrency.parse_workers"); v > 0 {
		cfg.Concurrency.ParseWorkers = v
	}

	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetInt("llm.max_tokens"); v > 0 {
		cfg.LLM.MaxTokens = v
	}
	if v := viper.GetFloat64("llm.requests_per_minute"); v > 0 {
		cfg.LLM.RequestsPerMinute = v
	}
	// API keys come from the environment only, never the config file.
	cfg.LLM.APIKey = os.Getenv("QUIRE_LLM_API_KEY")
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	cfg.Strict = viper.GetBool("strict")
	cfg.Verbose = viper.GetBool("verbose")
	return cfg
}

func vlogf(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// timed runs fn and reports its duration on the verbose stream
func timed(label string, fn func() error) error {
	start := time.Now()
	err := fn()
	vlogf("%s took %v\n", label, time.Since(start).Round(time.Millisecond))
	return err
}
