package commands

import (
	"flag"
	"fmt"

	"github.com/netcfgd/netcfgd/internal/netmon"
)

func CreateInterfacesCommand() *InterfacesCommand {
	gc := &InterfacesCommand{
		fs: flag.NewFlagSet("interfaces", flag.ExitOnError),
	}
	return gc
}

// InterfacesCommand prints the kernel link list.
type InterfacesCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
}

func (g *InterfacesCommand) Name() string {
	return g.fs.Name()
}

func (g *InterfacesCommand) Init(args []string, ctx *AppContext) error {
	g.ctx = ctx
	return g.fs.Parse(args)
}

func (g *InterfacesCommand) Run() error {
	links, err := netmon.List()
	if err != nil {
		return fmt.Errorf("failed to get interfaces: %v", err)
	}

	fmt.Printf("%-4s %-16s %-18s %-8s %s\n", "IDX", "NAME", "MAC", "ADMIN", "CARRIER")
	for _, link := range links {
		fmt.Printf("%-4d %-16s %-18s %-8s %s\n",
			link.Index, link.Name, link.MAC,
			upDown(link.AdminUp), upDown(link.LowerUp))
	}
	return nil
}

func upDown(up bool) string {
	if up {
		return "up"
	}
	return "down"
}
