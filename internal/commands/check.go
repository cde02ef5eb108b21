package commands

import (
	"flag"
	"fmt"

	"github.com/netcfgd/netcfgd/internal/compiler"
	"github.com/netcfgd/netcfgd/internal/config"
	"github.com/netcfgd/netcfgd/internal/log"
)

func CreateCheckCommand() *CheckCommand {
	gc := &CheckCommand{
		fs: flag.NewFlagSet("check", flag.ExitOnError),
	}
	return gc
}

// CheckCommand dry-run compiles every declared interface without
// touching the system.
type CheckCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config
}

func (g *CheckCommand) Name() string {
	return g.fs.Name()
}

func (g *CheckCommand) Init(args []string, ctx *AppContext) error {
	g.ctx = ctx

	if err := g.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	g.cfg = cfg

	return nil
}

func (g *CheckCommand) Run() error {
	opts := g.cfg.Options()
	failed := 0

	for _, iface := range g.cfg.Interfaces {
		if _, err := compiler.Compile(iface.Name, iface, opts); err != nil {
			log.Errorf("%s: %v", iface.Name, err)
			failed++
			continue
		}
		log.Infof("%s: ok", iface.Name)
	}

	if failed > 0 {
		return fmt.Errorf("%d interface(s) failed to compile", failed)
	}
	log.Infof("Configuration is valid")
	return nil
}
