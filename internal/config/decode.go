package config

import (
	"github.com/spf13/pflag"
)

// DecodeConfig holds configuration for the decode-logs command.
type DecodeConfig struct {
	Config
	In     string
	Out    string
	Errors string
}

// LoadDecode merges config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"out":    "./data/decoded_events.jsonl",
		"errors": "./data/decode_errors.jsonl",
	})
	if err != nil {
		return DecodeConfig{}, err
	}

	return DecodeConfig{
		Config: baseConfig(v),
		In:     v.GetString("in"),
		Out:    v.GetString("out"),
		Errors: v.GetString("errors"),
	}, nil
}
