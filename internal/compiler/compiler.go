package compiler

import (
	"path/filepath"
	"strings"

	"github.com/netcfgd/netcfgd/internal/config"
	"github.com/netcfgd/netcfgd/internal/errors"
)

// Command is a single external program invocation: program path plus
// ordered argument list.
type Command struct {
	Program string   `json:"program"`
	Args    []string `json:"args"`
}

// String returns the CLI form of the command for logging and debugging.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Program
	}
	return c.Program + " " + strings.Join(c.Args, " ")
}

// File is a single file materialization: path and full content.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// RawConfig is the compiler's sole output: a technology-agnostic execution
// plan of files to materialize and ordered command lists. It is immutable
// once produced; a reconfigure produces a brand-new RawConfig.
type RawConfig struct {
	Ifname       string            `json:"ifname"`
	Technology   config.Technology `json:"technology"`
	Files        []File            `json:"files"`
	UpCmds       []Command         `json:"up_cmds"`
	DownCmds     []Command         `json:"down_cmds"`
	CleanupPaths []string          `json:"cleanup_paths,omitempty"`
}

// Compile turns a declarative interface configuration into a RawConfig.
// It is a pure function of its inputs: identical (ifname, cfg, opts)
// triples yield byte-identical output and no side effects occur during
// compilation. Dispatch is on the configuration's technology tag.
func Compile(ifname string, cfg *config.InterfaceConfig, opts *config.Options) (*RawConfig, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeConfig, "nil interface configuration")
	}

	switch cfg.Type {
	case config.TechnologyEthernet:
		return compileEthernet(ifname, cfg, opts)
	case config.TechnologyWifi:
		return compileWifi(ifname, cfg, opts)
	case config.TechnologyMobile:
		return compileMobile(ifname, cfg, opts)
	default:
		return nil, errors.NewUnsupportedTechnologyError(string(cfg.Type))
	}
}

// Validate dry-run compiles a configuration without applying it. Any
// compile error collapses to false.
func Validate(ifname string, cfg *config.InterfaceConfig, opts *config.Options) bool {
	_, err := Compile(ifname, cfg, opts)
	return err == nil
}

// requireOptions resolves each named global option to its path, failing
// with MISSING_OPTION on the first absent one.
func requireOptions(opts *config.Options, names ...string) (map[string]string, error) {
	paths := make(map[string]string, len(names))
	for _, name := range names {
		path := opts.Get(name)
		if path == "" {
			return nil, errors.NewMissingOptionError(name)
		}
		paths[name] = path
	}
	return paths, nil
}

// File paths are deterministic functions of the interface name under the
// configured temp directory, so concurrent compiles for different
// interfaces never collide and recompiles overwrite rather than accumulate.

func stanzaPath(tmpdir, ifname string) string {
	return filepath.Join(tmpdir, "network_interfaces."+ifname)
}

func supplicantPath(tmpdir, ifname string) string {
	return filepath.Join(tmpdir, "wpa_supplicant.conf."+ifname)
}

func chatScriptPath(tmpdir, ifname string) string {
	return filepath.Join(tmpdir, "chat_script."+ifname)
}
