package compiler

import (
	"strconv"

	"github.com/netcfgd/netcfgd/internal/config"
	"github.com/netcfgd/netcfgd/internal/errors"
)

// pppdOptionTokens maps declared PPP option flags to pppd command-line
// tokens. The set is closed; unknown flags are a configuration error.
var pppdOptionTokens = map[string]string{
	"default_route": "defaultroute",
	"use_peer_dns":  "usepeerdns",
	"persist":       "persist",
	"no_detach":     "nodetach",
	"debug":         "debug",
	"crtscts":       "crtscts",
	"local":         "local",
	"noauth":        "noauth",
}

// translatePPPOptions converts declared option flags to pppd tokens in
// declaration order. Any "noauth" the caller supplies is dropped here:
// the compiler appends exactly one trailing noauth itself, so the token
// never duplicates.
func translatePPPOptions(options []string) ([]string, error) {
	tokens := make([]string, 0, len(options))
	for _, opt := range options {
		token, ok := pppdOptionTokens[opt]
		if !ok {
			return nil, errors.New(errors.ErrCodeConfig, "unknown pppd option: "+strconv.Quote(opt))
		}
		if token == "noauth" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// compileMobile produces the plan for a cellular PPP interface: a chat
// script file, the PPP device node creation, and the pppd invocation.
// A trailing noauth is appended unconditionally; authentication is never
// permitted on this path regardless of caller-declared flags.
func compileMobile(ifname string, cfg *config.InterfaceConfig, opts *config.Options) (*RawConfig, error) {
	paths, err := requireOptions(opts, "mknod", "pppd", "chat", "killall", "tmpdir")
	if err != nil {
		return nil, err
	}

	tokens, err := translatePPPOptions(cfg.PPPOptions)
	if err != nil {
		return nil, err
	}

	chatScript := chatScriptPath(paths["tmpdir"], ifname)

	// The connect argument is a single argv token passed straight to
	// execve, so it must not carry shell quoting.
	pppdArgs := []string{
		"connect", paths["chat"] + " -v -f " + chatScript,
		cfg.Device,
		strconv.Itoa(cfg.Speed),
	}
	pppdArgs = append(pppdArgs, tokens...)
	pppdArgs = append(pppdArgs, "noauth")

	return &RawConfig{
		Ifname:     ifname,
		Technology: config.TechnologyMobile,
		Files: []File{
			{Path: chatScript, Content: cfg.ChatScript},
		},
		UpCmds: []Command{
			{Program: paths["mknod"], Args: []string{"/dev/ppp", "c", "108", "0"}},
			{Program: paths["pppd"], Args: pppdArgs},
		},
		DownCmds: []Command{
			{Program: paths["killall"], Args: []string{"-q", "pppd"}},
		},
		CleanupPaths: []string{chatScript},
	}, nil
}
