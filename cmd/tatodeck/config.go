package main

import (
	"fmt"

	"github.com/franz/tatodeck/internal/util"
	"github.com/spf13/viper"
)

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (TATODECK_*)
// 3. Config file
// 4. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigInt retrieves an int config value with proper precedence
func GetConfigInt(key string, defaultValue int) int {
	val := viper.GetInt(key)
	if val == 0 {
		return defaultValue
	}
	return val
}

// GetConfigBool retrieves a bool config value
func GetConfigBool(key string) bool {
	return viper.GetBool(key)
}

// languagePair reads the target/base language pair, which every
// deck-producing command requires.
func languagePair() (target, base string, err error) {
	target = viper.GetString("target")
	base = viper.GetString("base")
	if target == "" {
		return "", "", fmt.Errorf("target language is required (use --target/-t or set in config)")
	}
	if base == "" {
		return "", "", fmt.Errorf("base language is required (use --base/-b or set in config)")
	}
	if target == base {
		return "", "", fmt.Errorf("target and base language must differ (both %q)", target)
	}
	return target, base, nil
}

// applyLogLevel sets the logger from the global verbose/quiet flags
func applyLogLevel() {
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))
}
