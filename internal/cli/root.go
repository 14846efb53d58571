package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/selfatlas/selfatlas/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "selfatlas",
	Short: "Selfatlas - local inference triage over your own digital traces",
	Long: `Selfatlas ingests personal digital-trace data (chat exports, browsing
history), turns it into natural-language inferences via a local language
model, and routes every inference through a quality gate, a priority
ranking, and a human triage step before anything can be exported.

Everything runs locally. Nothing leaves the machine without passing the
export security gate, and nothing reaches the export set without a human
approving it.`,
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
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("selfatlas v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.selfatlas/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.selfatlas")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match SELFATLAS_*
	viper.SetEnvPrefix("SELFATLAS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the effective configuration: defaults overridden by the
// config file and SELFATLAS_* environment variables
func loadConfig() model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("data.sqlite_path"); v != "" {
		cfg.Data.SQLitePath = v
	}
	if v := viper.GetString("data.legacy_inferences_json"); v != "" {
		cfg.Data.LegacyInferencesJSON = v
	}
	if v := viper.GetString("brain.provider"); v != "" {
		cfg.Brain.Provider = v
	}
	if v := viper.GetString("brain.model"); v != "" {
		cfg.Brain.Model = v
	}
	if v := viper.GetString("brain.base_url"); v != "" {
		cfg.Brain.BaseURL = v
	}
	if v := viper.GetString("brain.api_key"); v != "" {
		cfg.Brain.APIKey = v
	}
	if v := viper.GetDuration("brain.timeout"); v != 0 {
		cfg.Brain.Timeout = v
	}
	if v := viper.GetDuration("brain.probe_timeout"); v != 0 {
		cfg.Brain.ProbeTimeout = v
	}
	if v := viper.GetDuration("brain.probe_ttl"); v != 0 {
		cfg.Brain.ProbeTTL = v
	}
	if v := viper.GetFloat64("brain.requests_per_second"); v != 0 {
		cfg.Brain.RequestsPerSecond = v
	}
	if v := viper.GetInt("pipeline.batch_size"); v != 0 {
		cfg.Pipeline.BatchSize = v
	}
	if viper.IsSet("pipeline.lint_enabled") {
		cfg.Pipeline.LintEnabled = viper.GetBool("pipeline.lint_enabled")
	}
	if v := viper.GetString("server.host"); v != "" {
		cfg.Server.Host = v
	}
	if v := viper.GetInt("server.port"); v != 0 {
		cfg.Server.Port = v
	}
	if v := viper.GetString("logging.level"); v != "" {
		cfg.Logging.Level = v
	}
	if verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}
	return cfg
}

// commandTimeout bounds one-shot CLI operations
const commandTimeout = 5 * time.Minute
