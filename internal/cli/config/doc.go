// Package config holds the confhelper CLI's own settings.
//
// Settings are read through a service.ConfigHelper like any other
// configuration: the schema fragment below supplies defaults and
// validation, the optional file ~/.config/confhelper/cli.yaml and
// CONFHELPER_CLI_* environment variables override them, and the processed
// tree is decoded into CLIConfig.
package config
