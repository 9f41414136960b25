package cmd

import "github.com/alecthomas/kong"

// CLI is the root command tree parsed by kong.
type CLI struct {
	Config string    `help:"Configuration file (json, yaml or toml)" type:"path" env:"PIMGEN_CONFIG"`
	Log    LogConfig `embed:"" prefix:"log."`

	Version kong.VersionFlag `help:"Print version and exit"`

	Generate  Generate      `cmd:"" default:"withargs" help:"Generate the aggregate source and interface bindings"`
	ConfigCmd ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}

type LogConfig struct {
	Level string `help:"Log level" default:"info" enum:"trace,debug,info,warn,error" env:"PIMGEN_LOG_LEVEL"`
	File  string `help:"Also write logs to this file" type:"path" env:"PIMGEN_LOG_FILE"`
}
