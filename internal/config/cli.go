// Package config holds the top-level command line definition.
package config

import "github.com/Alia5/factorygen/internal/cmd"

type Log struct {
	Level      string `help:"Log level: trace, debug, info, warn, error" default:"info" enum:"trace,debug,info,warn,error" env:"FACTORYGEN_LOG_LEVEL"`
	File       string `help:"Also write logs to this file" type:"path" env:"FACTORYGEN_LOG_FILE"`
	SourceFile string `help:"Write every generated source to this file" type:"path" env:"FACTORYGEN_LOG_SOURCE_FILE"`
}

type CLI struct {
	Config string `help:"Config file (json, yaml or toml)" type:"path" env:"FACTORYGEN_CONFIG"`
	Log    Log    `embed:"" prefix:"log."`

	Generate  cmd.Generate      `cmd:"" default:"withargs" help:"Generate factory dispatchers for tagged producer types"`
	List      cmd.List          `cmd:"" help:"Print the dispatch table without writing anything"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
	Version   cmd.Version       `cmd:"" help:"Print the factorygen version"`
}
