package config

import (
	"github.com/alecthomas/kong"

	"github.com/ceresdb/protogen/internal/cmd"
)

// CLI is the root of the protogen command line.
type CLI struct {
	ConfigFile string           `name:"config" help:"Configuration file (json, yaml or toml); searched in the working and config directories when unset" env:"PROTOGEN_CONFIG"`
	Version    kong.VersionFlag `help:"Print version and exit"`

	Log struct {
		Level   string `help:"Log level" default:"info" enum:"trace,debug,info,warn,error" env:"PROTOGEN_LOG_LEVEL"`
		Format  string `help:"Log format; auto uses text on a terminal and json otherwise" default:"auto" enum:"auto,text,json" env:"PROTOGEN_LOG_FORMAT"`
		File    string `help:"Also write logs to this file" env:"PROTOGEN_LOG_FILE"`
		RawFile string `help:"Write raw schema compiler output to this file" env:"PROTOGEN_LOG_RAW_FILE"`
	} `embed:"" prefix:"log."`

	Generate cmd.Generate      `cmd:"" default:"withargs" help:"Compile schema files and write the module manifest"`
	Config   cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
}
