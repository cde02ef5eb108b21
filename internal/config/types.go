package config

import (
	"path/filepath"
)

// Technology identifies which compiler handler and external programs
// apply to an interface.
type Technology string

const (
	TechnologyEthernet Technology = "ethernet"
	TechnologyWifi     Technology = "wifi"
	TechnologyMobile   Technology = "mobile"
)

type Config struct {
	// ConfigVersion is the configuration file version.
	ConfigVersion uint8 `toml:"config_version" json:"config_version"`
	// General holds general daemon configuration.
	General *GeneralConfig `toml:"general"`
	// Programs maps external program names to their absolute paths.
	Programs *ProgramsConfig `toml:"programs"`
	// Interfaces holds the declarative per-interface configurations.
	Interfaces []*InterfaceConfig `toml:"interface,omitempty"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// TmpDir is the directory where generated interface files are materialized.
	TmpDir string `toml:"tmpdir" json:"tmpdir" validate:"required"`
	// APIListen is the REST API listen address (empty = API disabled).
	APIListen string `toml:"api_listen" json:"api_listen" validate:"hostport_or_empty"`
	// MaxRetries is the number of apply attempts before an interface settles into the failed state (default: 5).
	MaxRetries int `toml:"max_retries" json:"max_retries" validate:"gte=1"`
	// RetryBackoffMs is the initial retry backoff in milliseconds; it doubles per attempt (default: 1000).
	RetryBackoffMs int `toml:"retry_backoff_ms" json:"retry_backoff_ms" validate:"gte=1"`
	// MaxBackoffMs caps the exponential retry backoff in milliseconds (default: 30000).
	MaxBackoffMs int `toml:"max_backoff_ms" json:"max_backoff_ms" validate:"gte=1"`

	// Connectivity holds internet connectivity probe settings.
	Connectivity *ConnectivityConfig `toml:"connectivity" json:"connectivity"`
}

type ConnectivityConfig struct {
	// Enable enables periodic internet connectivity probing of configured interfaces (default: true).
	Enable bool `toml:"enable" json:"enable"`
	// ProbeServer is the DNS server used for connectivity probes (default: 1.1.1.1:53).
	ProbeServer string `toml:"probe_server" json:"probe_server" validate:"hostport_or_empty"`
	// ProbeName is the domain name resolved as the connectivity probe (default: example.com.).
	ProbeName string `toml:"probe_name" json:"probe_name"`
	// IntervalSeconds is the probe interval in seconds (default: 30).
	IntervalSeconds int `toml:"interval_seconds" json:"interval_seconds" validate:"gte=1"`
}

// ProgramsConfig holds the absolute paths of the external programs the
// daemon launches. Supplied once at process start; read-only afterwards.
type ProgramsConfig struct {
	// IfUp is the path to the interface-up program.
	IfUp string `toml:"ifup" json:"ifup"`
	// IfDown is the path to the interface-down program.
	IfDown string `toml:"ifdown" json:"ifdown"`
	// WpaSupplicant is the path to the wireless supplicant daemon.
	WpaSupplicant string `toml:"wpa_supplicant" json:"wpa_supplicant"`
	// WpaCli is the path to the supplicant control utility used for scanning.
	WpaCli string `toml:"wpa_cli" json:"wpa_cli"`
	// Killall is the path to the program used to terminate daemons by name.
	Killall string `toml:"killall" json:"killall"`
	// Chat is the path to the chat program used for modem dialogs.
	Chat string `toml:"chat" json:"chat"`
	// Pppd is the path to the PPP daemon.
	Pppd string `toml:"pppd" json:"pppd"`
	// Mknod is the path to the mknod program used to create the PPP device node.
	Mknod string `toml:"mknod" json:"mknod"`
}

// InterfaceConfig is the declarative configuration for a single interface.
// It is immutable input to the compiler: a reconfigure supplies a fresh value.
type InterfaceConfig struct {
	// Name is the interface name (e.g. eth0, wlan0, ppp0).
	Name string `toml:"name" json:"name" validate:"required,ifname"`
	// Type selects the technology: ethernet, wifi or mobile.
	Type Technology `toml:"type" json:"type" validate:"required"`

	// RegulatoryDomain is the wireless regulatory domain country code (wifi).
	RegulatoryDomain string `toml:"regulatory_domain,omitempty" json:"regulatory_domain,omitempty"`
	// SSID is the wireless network name (wifi).
	SSID string `toml:"ssid,omitempty" json:"ssid,omitempty"`
	// KeyMgmt is the key management mode: none, wep or wpa_psk (wifi).
	KeyMgmt string `toml:"key_mgmt,omitempty" json:"key_mgmt,omitempty" validate:"omitempty,oneof=none wep wpa_psk"`
	// PSK is the pre-shared key or WEP key (wifi).
	PSK string `toml:"psk,omitempty" json:"psk,omitempty"`
	// ScanSSID enables scanning for hidden networks when set (wifi).
	ScanSSID *int `toml:"scan_ssid,omitempty" json:"scan_ssid,omitempty" validate:"omitempty"`

	// Device is the modem TTY device path (mobile).
	Device string `toml:"device,omitempty" json:"device,omitempty"`
	// Speed is the modem baud rate (mobile).
	Speed int `toml:"speed,omitempty" json:"speed,omitempty" validate:"omitempty,gte=1"`
	// ChatScript is the chat script text sent to the modem (mobile).
	ChatScript string `toml:"chat_script,omitempty" json:"chat_script,omitempty"`
	// PPPOptions are PPP daemon option flags, translated to command-line tokens in declaration order (mobile).
	PPPOptions []string `toml:"ppp_options,omitempty" json:"ppp_options,omitempty"`

	// ShareInternet enables NAT masquerading of this interface's traffic through Uplink.
	ShareInternet bool `toml:"share_internet,omitempty" json:"share_internet,omitempty"`
	// Uplink is the upstream interface used when ShareInternet is enabled.
	Uplink string `toml:"uplink,omitempty" json:"uplink,omitempty" validate:"required_if=ShareInternet true,omitempty,ifname"`
}

// Options is the immutable global option set handed to the compiler and
// the system verifier: program paths plus the temp directory. Constructed
// once at process start and safe for concurrent reads.
type Options struct {
	Programs *ProgramsConfig
	TmpDir   string
}

// Get returns the path configured for a named option, or the empty string
// if the option is unset. Option names mirror the [programs] keys, plus
// "tmpdir".
func (o *Options) Get(name string) string {
	if o == nil {
		return ""
	}
	if name == "tmpdir" {
		return o.TmpDir
	}
	if o.Programs == nil {
		return ""
	}
	switch name {
	case "ifup":
		return o.Programs.IfUp
	case "ifdown":
		return o.Programs.IfDown
	case "wpa_supplicant":
		return o.Programs.WpaSupplicant
	case "wpa_cli":
		return o.Programs.WpaCli
	case "killall":
		return o.Programs.Killall
	case "chat":
		return o.Programs.Chat
	case "pppd":
		return o.Programs.Pppd
	case "mknod":
		return o.Programs.Mknod
	default:
		return ""
	}
}

// Options builds the global option set from the loaded configuration.
func (c *Config) Options() *Options {
	opts := &Options{Programs: c.Programs}
	if c.General != nil {
		opts.TmpDir = c.General.TmpDir
	}
	return opts
}

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

// InterfaceByName returns the declared configuration for an interface
// name, or nil if the configuration does not mention it.
func (c *Config) InterfaceByName(name string) *InterfaceConfig {
	for _, iface := range c.Interfaces {
		if iface.Name == name {
			return iface
		}
	}
	return nil
}
