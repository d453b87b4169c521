package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config is the typed view of the loaded configuration.
type Config struct {
	WorkDir     string
	ProjectDir  string
	Binary      string
	BuildTool   string
	BuildArgs   []string
	VariantFlag string
	ThreadFlag  string

	Variants         int
	MinThreads       int
	ThreadMultiplier int
	Procs            int
	Timeout          time.Duration
	BuildTimeout     time.Duration
	Retries          int
	RetryBackoff     time.Duration
	AllowStderr      bool

	OutputDir    string
	FilePrefix   string
	Format       string
	ImageFormat  string
	Caption      string
	VariantLabel string
	MetricsFile  string
	HistoryType  string
	HistoryDSN   string

	Verbose  bool
	LogFile  string
	Progress bool
}

// ProjectPath returns the directory the build runs in and the binary lives in.
func (c *Config) ProjectPath() string {
	if filepath.IsAbs(c.ProjectDir) {
		return c.ProjectDir
	}
	return filepath.Join(c.WorkDir, c.ProjectDir)
}

// Current validates the loaded configuration and returns it.
func Current() (*Config, error) {
	if err := ValidateConfig(); err != nil {
		return nil, err
	}

	return &Config{
		WorkDir:     viper.GetString("work_dir"),
		ProjectDir:  viper.GetString("project_dir"),
		Binary:      viper.GetString("binary"),
		BuildTool:   viper.GetString("build_tool"),
		BuildArgs:   viper.GetStringSlice("build_args"),
		VariantFlag: viper.GetString("variant_flag"),
		ThreadFlag:  viper.GetString("thread_flag"),

		Variants:         viper.GetInt("variants"),
		MinThreads:       viper.GetInt("min_threads"),
		ThreadMultiplier: viper.GetInt("thread_multiplier"),
		Procs:            viper.GetInt("procs"),
		Timeout:          durationValue("timeout"),
		BuildTimeout:     durationValue("build_timeout"),
		Retries:          viper.GetInt("retries"),
		RetryBackoff:     durationValue("retry_backoff"),
		AllowStderr:      viper.GetBool("allow_stderr"),

		OutputDir:    viper.GetString("output_dir"),
		FilePrefix:   viper.GetString("file_prefix"),
		Format:       strings.ToLower(viper.GetString("format")),
		ImageFormat:  strings.ToLower(viper.GetString("image_format")),
		Caption:      viper.GetString("caption"),
		VariantLabel: viper.GetString("variant_label"),
		MetricsFile:  viper.GetString("metrics_file"),
		HistoryType:  strings.ToLower(viper.GetString("history.type")),
		HistoryDSN:   viper.GetString("history.dsn"),

		Verbose:  viper.GetBool("verbose"),
		LogFile:  viper.GetString("log_file"),
		Progress: viper.GetBool("progress"),
	}, nil
}

// durationValue reads key as a duration; bare numbers are seconds.
func durationValue(key string) time.Duration {
	switch v := viper.Get(key).(type) {
	case time.Duration:
		return v
	case int, int32, int64, float32, float64:
		return time.Duration(cast.ToFloat64(v) * float64(time.Second))
	case string:
		if secs, err := cast.ToFloat64E(v); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
		return viper.GetDuration(key)
	default:
		return viper.GetDuration(key)
	}
}
