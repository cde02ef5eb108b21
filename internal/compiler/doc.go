// Package compiler turns declarative interface configurations into
// executable plans.
//
// The single entry point is Compile, a pure function from
// (interface name, declarative configuration, global options) to a
// RawConfig: an ordered list of file materializations plus ordered up and
// down command lists. Dispatch is on the configuration's technology tag;
// the technology set (ethernet, wifi, mobile) is closed.
//
// Each technology handler independently validates that every global
// option it needs is present before producing its plan, so a missing
// program path is a compile-time MISSING_OPTION error rather than a
// runtime crash.
//
// Generated file paths are deterministic functions of the interface name
// under the configured temp directory. The package also provides
// VerifySystem, which checks that the external programs a technology
// launches are actually installed, and Validate, a dry-run compile used
// to answer "would this configuration compile?" without applying anything.
package compiler
