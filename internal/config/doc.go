// Package config handles configuration file parsing and validation for netcfgd.
//
// This package reads TOML configuration files and provides strongly-typed
// structures for accessing configuration data: daemon-wide settings, the
// external program paths (global options) and the declarative per-interface
// configurations the compiler consumes.
//
// # Configuration Structure
//
// The configuration file defines:
//   - General settings (temp directory, API listen address, retry policy)
//   - External program paths (ifup, ifdown, wpa_supplicant, pppd, ...)
//   - Declarative interface blocks tagged with a technology
//     (ethernet, wifi or mobile) and a technology-specific payload
//
// # Example Usage
//
// Loading and validating a configuration file:
//
//	cfg, err := config.LoadConfig("/etc/netcfgd.conf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.ValidateConfig(); err != nil {
//	    log.Fatal(err)
//	}
//
// Accessing configuration:
//
//	for _, iface := range cfg.Interfaces {
//	    fmt.Printf("Interface: %s, Type: %s\n", iface.Name, iface.Type)
//	}
//
// The package fills unset fields with daemon defaults on load and provides
// clear error messages for validation failures.
package config
