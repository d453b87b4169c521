package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override, e.g. SPEEDBENCH_PROCS.
const EnvPrefix = "SPEEDBENCH"

// Load initializes the configuration from file and environment variables.
func Load(cfgFile string) error {
	// a missing .env is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	return nil
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	// build and binary
	viper.SetDefault("work_dir", ".")
	viper.SetDefault("project_dir", "prog1_mandelbrot_threads")
	viper.SetDefault("binary", "mandelbrot")
	viper.SetDefault("build_tool", "make")
	viper.SetDefault("build_args", []string{})
	viper.SetDefault("variant_flag", "-v")
	viper.SetDefault("thread_flag", "-t")

	// sweep
	viper.SetDefault("variants", 2)
	viper.SetDefault("min_threads", 2)
	viper.SetDefault("thread_multiplier", 3)
	viper.SetDefault("procs", 0)
	viper.SetDefault("timeout", 10*time.Minute)
	viper.SetDefault("build_timeout", 10*time.Minute)
	viper.SetDefault("retries", 0)
	viper.SetDefault("retry_backoff", time.Second)
	viper.SetDefault("allow_stderr", false)

	// outputs
	viper.SetDefault("output_dir", ".")
	viper.SetDefault("file_prefix", "prog1")
	viper.SetDefault("format", "json")
	viper.SetDefault("image_format", "jpg")
	viper.SetDefault("caption", "Prog1 Speedup vs Number of threads")
	viper.SetDefault("variant_label", "view")
	viper.SetDefault("metrics_file", "")
	viper.SetDefault("history.type", "")
	viper.SetDefault("history.dsn", "")

	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")
	viper.SetDefault("progress", true)
}
