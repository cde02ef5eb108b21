package compiler

import (
	"github.com/valyala/fasttemplate"

	"github.com/netcfgd/netcfgd/internal/config"
)

const stanzaTemplate = "iface {{ifname}} inet dhcp\n"

// renderStanza produces the interface-definition stanza for an interface.
func renderStanza(ifname string) string {
	t := fasttemplate.New(stanzaTemplate, "{{", "}}")
	return t.ExecuteString(map[string]interface{}{
		"ifname": ifname,
	})
}

// compileEthernet produces the plan for a wired interface: one stanza
// file and a matching ifup/ifdown command pair.
func compileEthernet(ifname string, _ *config.InterfaceConfig, opts *config.Options) (*RawConfig, error) {
	paths, err := requireOptions(opts, "ifup", "ifdown", "tmpdir")
	if err != nil {
		return nil, err
	}

	stanza := stanzaPath(paths["tmpdir"], ifname)

	return &RawConfig{
		Ifname:     ifname,
		Technology: config.TechnologyEthernet,
		Files: []File{
			{Path: stanza, Content: renderStanza(ifname)},
		},
		UpCmds: []Command{
			{Program: paths["ifup"], Args: []string{"-i", stanza, ifname}},
		},
		DownCmds: []Command{
			{Program: paths["ifdown"], Args: []string{"-i", stanza, ifname}},
		},
		CleanupPaths: []string{stanza},
	}, nil
}
