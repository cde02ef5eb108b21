package compiler

import (
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/netcfgd/netcfgd/internal/config"
	"github.com/netcfgd/netcfgd/internal/errors"
)

const supplicantHeaderTemplate = "ctrl_interface=/var/run/wpa_supplicant\ncountry={{regulatory_domain}}\n"

// keyMgmtToken maps a declared key management mode to the supplicant's token.
func keyMgmtToken(mode string) (string, error) {
	switch mode {
	case "none", "wep":
		return "NONE", nil
	case "wpa_psk":
		return "WPA-PSK", nil
	default:
		return "", errors.New(errors.ErrCodeConfig, "unknown key management mode: "+strconv.Quote(mode))
	}
}

// renderSupplicantConfig produces the wireless supplicant configuration:
// the fixed control-socket directive, the regulatory domain, and exactly
// one network block. Absent fields produce no line at all.
func renderSupplicantConfig(cfg *config.InterfaceConfig) (string, error) {
	header := fasttemplate.New(supplicantHeaderTemplate, "{{", "}}")

	var sb strings.Builder
	sb.WriteString(header.ExecuteString(map[string]interface{}{
		"regulatory_domain": cfg.RegulatoryDomain,
	}))

	sb.WriteString("network={\n")

	if cfg.KeyMgmt == "wep" {
		// WEP keys go into wep_key0 unquoted and verbatim; scan_ssid is
		// never emitted in this mode.
		if cfg.SSID != "" {
			sb.WriteString("ssid=\"" + cfg.SSID + "\"\n")
		}
		sb.WriteString("key_mgmt=NONE\n")
		sb.WriteString("wep_tx_keyidx=0\n")
		if cfg.PSK != "" {
			sb.WriteString("wep_key0=" + cfg.PSK + "\n")
		}
	} else {
		if cfg.SSID != "" {
			sb.WriteString("ssid=\"" + cfg.SSID + "\"\n")
		}
		if cfg.PSK != "" {
			sb.WriteString("psk=" + cfg.PSK + "\n")
		}
		if cfg.KeyMgmt != "" {
			token, err := keyMgmtToken(cfg.KeyMgmt)
			if err != nil {
				return "", err
			}
			sb.WriteString("key_mgmt=" + token + "\n")
		}
		if cfg.ScanSSID != nil {
			sb.WriteString("scan_ssid=" + strconv.Itoa(*cfg.ScanSSID) + "\n")
		}
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

// compileWifi produces the plan for a wireless interface: the stanza file
// plus a generated supplicant file. The supplicant must be running before
// the interface-up command is issued, and teardown reverses that order.
func compileWifi(ifname string, cfg *config.InterfaceConfig, opts *config.Options) (*RawConfig, error) {
	paths, err := requireOptions(opts, "ifup", "ifdown", "wpa_supplicant", "killall", "tmpdir")
	if err != nil {
		return nil, err
	}

	supplicantConf, err := renderSupplicantConfig(cfg)
	if err != nil {
		return nil, err
	}

	stanza := stanzaPath(paths["tmpdir"], ifname)
	supplicant := supplicantPath(paths["tmpdir"], ifname)

	return &RawConfig{
		Ifname:     ifname,
		Technology: config.TechnologyWifi,
		Files: []File{
			{Path: stanza, Content: renderStanza(ifname)},
			{Path: supplicant, Content: supplicantConf},
		},
		UpCmds: []Command{
			{Program: paths["wpa_supplicant"], Args: []string{"-B", "-i", ifname, "-c", supplicant}},
			{Program: paths["ifup"], Args: []string{"-i", stanza, ifname}},
		},
		DownCmds: []Command{
			{Program: paths["ifdown"], Args: []string{"-i", stanza, ifname}},
			{Program: paths["killall"], Args: []string{"-q", "wpa_supplicant"}},
		},
		CleanupPaths: []string{stanza, supplicant},
	}, nil
}
