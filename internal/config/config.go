package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings shared by every explorer command.
type Config struct {
	RPCURL          string
	DeploymentsFile string
	AbisFolder      string
	Network         string
	Deployment      string
	Contract        string
	LogLevel        string
	LogFile         string
	AbiPollInterval time.Duration
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, nil)
	if err != nil {
		return Config{}, err
	}
	return baseConfig(v), nil
}

// newViper builds a viper instance with the EXPLORER env prefix, the
// shared defaults plus extra, the bound flags and the optional config file.
func newViper(cfgFile string, flags *pflag.FlagSet, extra map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("EXPLORER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// The manifest and ABI folder keep their historical unprefixed names.
	if err := v.BindEnv("deployments", "DEPLOYMENTS_FILE", "EXPLORER_DEPLOYMENTS"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("abis", "ABIS_FOLDER", "EXPLORER_ABIS"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	v.SetDefault("deployments", "./deployments.json")
	v.SetDefault("abis", "./abis")
	v.SetDefault("log-level", "info")
	v.SetDefault("abi-poll-interval", time.Duration(0))
	for key, value := range extra {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func baseConfig(v *viper.Viper) Config {
	return Config{
		RPCURL:          v.GetString("rpc"),
		DeploymentsFile: v.GetString("deployments"),
		AbisFolder:      v.GetString("abis"),
		Network:         v.GetString("network"),
		Deployment:      v.GetString("deployment"),
		Contract:        v.GetString("contract"),
		LogLevel:        v.GetString("log-level"),
		LogFile:         v.GetString("log-file"),
		AbiPollInterval: v.GetDuration("abi-poll-interval"),
	}
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
