package compiler

import (
	"fmt"

	"github.com/netcfgd/netcfgd/internal/config"
	"github.com/netcfgd/netcfgd/internal/errors"
)

// Exister reports whether an external program is installed at a path.
type Exister interface {
	Exists(path string) bool
}

// RequiredPrograms returns the global option names of every external
// program the named technology launches, in a fixed order.
func RequiredPrograms(tech config.Technology) ([]string, error) {
	switch tech {
	case config.TechnologyEthernet:
		return []string{"ifup", "ifdown"}, nil
	case config.TechnologyWifi:
		return []string{"ifup", "ifdown", "wpa_supplicant", "wpa_cli", "killall"}, nil
	case config.TechnologyMobile:
		return []string{"mknod", "pppd", "chat", "killall"}, nil
	default:
		return nil, errors.NewUnsupportedTechnologyError(string(tech))
	}
}

// VerifySystem checks that every external program the technology requires
// is configured and present on the system.
func VerifySystem(tech config.Technology, opts *config.Options, ex Exister) error {
	names, err := RequiredPrograms(tech)
	if err != nil {
		return err
	}
	for _, name := range names {
		path := opts.Get(name)
		if path == "" {
			return errors.NewMissingOptionError(name)
		}
		if !ex.Exists(path) {
			return errors.New(errors.ErrCodeConfig,
				fmt.Sprintf("required program %q not found at %s", name, path))
		}
	}
	return nil
}

// VerifySystemAll verifies a list of technologies, stopping at the first failure.
func VerifySystemAll(techs []config.Technology, opts *config.Options, ex Exister) error {
	for _, tech := range techs {
		if err := VerifySystem(tech, opts, ex); err != nil {
			return err
		}
	}
	return nil
}
