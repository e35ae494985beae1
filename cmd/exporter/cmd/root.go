package cmd

import (
	"fmt"
	"os"

	"finance-export-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "exporter",
	Short: "Financial report export tool",
	Long: `Exporter aggregates transaction journals into periodized financial
summaries and renders them as styled spreadsheet workbooks with embedded
charts.

Examples:
  exporter export --journal-file journals.csv --accounts 1,2 --start-date 2024-01-01 --end-date 2024-03-31
  exporter export --journal-file journals.csv --report-type budget --accounts 1 --budgets groceries,rent --start-date 2024-01-01 --end-date 2024-12-31
  exporter status`,
	Version: getVersionString(),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)

		// If a config file is specified, read it in.
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
			os.Exit(1)
		}

		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}

	// Read environment variables that match
	viper.SetEnvPrefix("EXPORTER")
	viper.AutomaticEnv()

	if viper.GetBool("verbose") {
		log, err := logger.NewLogger(&logger.Config{
			Level:  logger.DebugLevel,
			Format: logger.TextFormat,
			Output: logger.StderrOutput,
		})
		if err == nil {
			logger.SetGlobalLogger(log)
		}
	}
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
