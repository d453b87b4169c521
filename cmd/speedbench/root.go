package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"speedbench/internal/config"
)

var exit = os.Exit
var cfgFile string

// rootCmd builds the benchmark, sweeps it and writes the record and chart.
var rootCmd = &cobra.Command{
	Use:   "speedbench",
	Short: "Measure thread scaling of a parallel benchmark and chart the speedup",
	Long: `speedbench compiles the benchmark program, runs it for every variant and
thread count from the minimum up to a multiple of the logical CPU count, and
saves the measured speedups as a timestamped data file and chart.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runSweep,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	pf.BoolP("verbose", "v", false, "Enable verbose/debug logging")
	pf.String("log-file", "", "Also write JSON logs to this file")

	f := rootCmd.Flags()
	f.Int("procs", 0, "Logical CPU count used for the thread range (0 detects it)")
	f.Int("variants", 2, "Number of program variants to sweep")
	f.Duration("timeout", 0, "Per-invocation timeout (overrides config)")
	f.Int("retries", 0, "Retries for failed or timed out invocations")
	f.String("output-dir", ".", "Directory for the data file and chart")
	f.String("format", "json", "Data file format (json or yaml)")
	f.String("image-format", "jpg", "Chart image format")
	f.String("metrics-file", "", "Write Prometheus metrics to this textfile")
	f.Bool("allow-stderr", false, "Do not treat diagnostic output as a failure")
	f.Bool("no-progress", false, "Disable the progress bar")

	bindFlags()

	initHistoryCmd(rootCmd)
}

// bindFlags maps command line flags onto configuration keys.
func bindFlags() {
	pf := rootCmd.PersistentFlags()
	f := rootCmd.Flags()
	viper.BindPFlag("verbose", pf.Lookup("verbose"))
	viper.BindPFlag("log_file", pf.Lookup("log-file"))
	viper.BindPFlag("procs", f.Lookup("procs"))
	viper.BindPFlag("variants", f.Lookup("variants"))
	viper.BindPFlag("timeout", f.Lookup("timeout"))
	viper.BindPFlag("retries", f.Lookup("retries"))
	viper.BindPFlag("output_dir", f.Lookup("output-dir"))
	viper.BindPFlag("format", f.Lookup("format"))
	viper.BindPFlag("image_format", f.Lookup("image-format"))
	viper.BindPFlag("metrics_file", f.Lookup("metrics-file"))
	viper.BindPFlag("allow_stderr", f.Lookup("allow-stderr"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}
