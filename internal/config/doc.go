// Package config provides configuration loading for declcat.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (DECLCAT_*), including those from a .env file
//  2. Project config (.declcat/config.yml)
//  3. Built-in defaults
//
// Environment Variable Convention:
//   - Prefix: DECLCAT_
//   - Nested fields: Use underscores (DECLCAT_ANALYSIS_ON_PARSE_ERROR)
//   - Automatic mapping via Viper's SetEnvKeyReplacer
//
// Example usage:
//
//	cfg, err := config.NewLoader(projectRoot).Load()
//	if err != nil {
//	    return err
//	}
//	addr := cfg.Server.Addr
package config
