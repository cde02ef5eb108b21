// Package commands implements CLI command handlers for netcfgd.
//
// Each subcommand implements the Runner interface:
//   - Init(): Parse arguments and load/validate configuration
//   - Run(): Execute the command
//   - Name(): Return the command name for routing
//
// # Available Commands
//
//   - service: Run as a daemon (lifecycle engines, link monitor,
//     connectivity prober, REST API)
//   - interfaces: Print the kernel link list
//   - check: Dry-run compile every declared interface
//   - verify: Check that the external programs required by the declared
//     technologies exist
//   - dhcp-event: udhcpc script entry point for lease events
package commands
