// Package config defines the CLI structure and configuration for padlink.
package config

import (
	"padlink/internal/cmd"
)

type Log struct {
	Level   string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"PADLINK_LOG_LEVEL"`
	File    string `help:"Log file path (default: none; logs only to console)" env:"PADLINK_LOG_FILE"`
	RawFile string `help:"Raw serial traffic log file path (default: none)" env:"PADLINK_LOG_RAW_FILE"`
}

// CLI is the root command structure for Kong CLI parsing.
type CLI struct {
	Log `embed:"" prefix:"log."`

	Config string `help:"Path to an additional config file" env:"PADLINK_CONFIG"`

	Relay cmd.Relay `cmd:"" help:"Relay controller state to the firmware over serial"`
	Play  cmd.Play  `cmd:"" help:"Play back a recording of native 8-byte frames"`
}
