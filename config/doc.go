// Package config loads and validates padflow configuration.
//
// Configuration comes from a YAML file (explicit path or discovered in the
// standard locations), an optional .env file, and PADFLOW_* environment
// variables, merged with Viper. Struct tags are checked with
// go-playground/validator.
//
// # Usage
//
//	var cfg config.Config
//	if err := config.LoadConfig("padflow", &cfg, config.WithConfigFile(path)); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
