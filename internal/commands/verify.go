package commands

import (
	"flag"
	"fmt"

	"github.com/netcfgd/netcfgd/internal/compiler"
	"github.com/netcfgd/netcfgd/internal/config"
	"github.com/netcfgd/netcfgd/internal/exec"
	"github.com/netcfgd/netcfgd/internal/log"
)

func CreateVerifyCommand() *VerifyCommand {
	gc := &VerifyCommand{
		fs: flag.NewFlagSet("verify", flag.ExitOnError),
	}
	return gc
}

// VerifyCommand checks that every external program required by the
// declared technologies is present on the system.
type VerifyCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config
}

func (g *VerifyCommand) Name() string {
	return g.fs.Name()
}

func (g *VerifyCommand) Init(args []string, ctx *AppContext) error {
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

func (g *VerifyCommand) Run() error {
	seen := make(map[config.Technology]struct{})
	var techs []config.Technology
	for _, iface := range g.cfg.Interfaces {
		if _, ok := seen[iface.Type]; ok {
			continue
		}
		seen[iface.Type] = struct{}{}
		techs = append(techs, iface.Type)
	}

	if err := compiler.VerifySystemAll(techs, g.cfg.Options(), &exec.SystemExister{}); err != nil {
		return fmt.Errorf("system verification failed: %v", err)
	}

	log.Infof("All required programs are present")
	return nil
}
