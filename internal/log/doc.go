// Package log provides simple leveled logging for netcfgd.
//
// This package implements a lightweight logging system with colored output
// and support for different log levels: DEBUG, INFO, WARN, and ERROR.
// It provides global logging functions that can be used throughout the daemon.
//
// # Log Levels
//
//   - DEBUG: Detailed diagnostic information (only shown in verbose mode)
//   - INFO: General informational messages
//   - WARN: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures and exceptions
//
// # Example Usage
//
// Basic logging:
//
//	log.Infof("Starting interface supervisor for %s", ifname)
//	log.Warnf("Teardown command failed: %v", err)
//	log.Errorf("Failed to compile configuration: %v", err)
//
// Enabling verbose mode for debug output:
//
//	log.SetVerbose(true)
//	log.Debugf("Raw configuration: %+v", raw)
//
// The package uses global state for simplicity but is safe for concurrent
// use across goroutines.
package log
