package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var (
	recordFormats = []string{"json", "yaml"}
	imageFormats  = []string{"jpg", "jpeg", "png", "svg", "pdf", "tif", "tiff"}
	historyTypes  = []string{"", "sqlite", "sqlite3", "postgres", "postgresql"}
)

// ValidateConfig validates configuration values and returns an error if any are invalid.
// This function should be called after viper has loaded the configuration.
func ValidateConfig() error {
	var errors []string

	for _, key := range []string{"variants", "min_threads", "thread_multiplier"} {
		if n := viper.GetInt(key); n < 1 {
			errors = append(errors, fmt.Sprintf("%s must be at least 1, got: %d", key, n))
		}
	}

	if n := viper.GetInt("procs"); n < 0 {
		errors = append(errors, fmt.Sprintf("procs must not be negative, got: %d", n))
	}
	if n := viper.GetInt("retries"); n < 0 {
		errors = append(errors, fmt.Sprintf("retries must not be negative, got: %d", n))
	}

	// a zero timeout disables the deadline
	for _, key := range []string{"timeout", "build_timeout", "retry_backoff"} {
		if d := durationValue(key); d < 0 {
			errors = append(errors, fmt.Sprintf("%s must not be negative, got: %v", key, d))
		}
	}

	for _, key := range []string{"binary", "build_tool", "file_prefix"} {
		if strings.TrimSpace(viper.GetString(key)) == "" {
			errors = append(errors, fmt.Sprintf("%s must not be empty", key))
		}
	}

	if f := strings.ToLower(viper.GetString("format")); !contains(recordFormats, f) {
		errors = append(errors, fmt.Sprintf("format must be one of %v, got: %q", recordFormats, f))
	}
	if f := strings.ToLower(viper.GetString("image_format")); !contains(imageFormats, f) {
		errors = append(errors, fmt.Sprintf("image_format must be one of %v, got: %q", imageFormats, f))
	}
	if h := strings.ToLower(viper.GetString("history.type")); !contains(historyTypes, h) {
		errors = append(errors, fmt.Sprintf("history.type must be sqlite or postgres, got: %q", h))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errors, "\n  "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
