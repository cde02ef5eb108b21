package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/netcfgd/netcfgd/internal/dhcp"
)

// leaseEnvFields are the udhcpc environment variables carried into the
// lease info map when set.
var leaseEnvFields = []string{
	"ip", "subnet", "router", "dns", "domain", "lease",
	"serverid", "hostname", "mask",
}

func CreateDHCPEventCommand() *DHCPEventCommand {
	gc := &DHCPEventCommand{
		fs: flag.NewFlagSet("dhcp-event", flag.ExitOnError),
	}
	return gc
}

// DHCPEventCommand is the udhcpc script entry point: udhcpc invokes
// `netcfgd dhcp-event <event> <ifname>` with the lease details in the
// environment.
type DHCPEventCommand struct {
	fs     *flag.FlagSet
	ctx    *AppContext
	event  string
	ifname string
}

func (g *DHCPEventCommand) Name() string {
	return g.fs.Name()
}

func (g *DHCPEventCommand) Init(args []string, ctx *AppContext) error {
	g.ctx = ctx

	if err := g.fs.Parse(args); err != nil {
		return err
	}
	rest := g.fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("usage: dhcp-event <event> <ifname>")
	}
	g.event, g.ifname = rest[0], rest[1]

	return nil
}

func (g *DHCPEventCommand) Run() error {
	info := make(map[string]string)
	for _, field := range leaseEnvFields {
		if value := os.Getenv(field); value != "" {
			info[field] = value
		}
	}

	_, err := dhcp.Dispatch(dhcp.LoggingHandler{}, g.event, g.ifname, info)
	return err
}
