package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "netcfgd.toml")
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return configFile
}

func TestLoadConfig_NonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/file.toml")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	configFile := writeConfigFile(t, `[general
tmpdir = "/tmp"`)

	_, err := LoadConfig(configFile)
	if err == nil {
		t.Error("Expected error for invalid TOML")
	}
}

func TestLoadConfig_ValidConfig(t *testing.T) {
	configFile := writeConfigFile(t, `[general]
tmpdir = "/run/netcfgd"
max_retries = 3

[programs]
ifup = "/usr/local/sbin/ifup"

[[interface]]
name = "eth0"
type = "ethernet"

[[interface]]
name = "wlan0"
type = "wifi"
regulatory_domain = "US"
ssid = "home"
key_mgmt = "wpa_psk"
psk = "secret1234"
`)

	cfg, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.General.TmpDir != "/run/netcfgd" {
		t.Errorf("Expected tmpdir /run/netcfgd, got %s", cfg.General.TmpDir)
	}
	if cfg.General.MaxRetries != 3 {
		t.Errorf("Expected max_retries 3, got %d", cfg.General.MaxRetries)
	}
	if len(cfg.Interfaces) != 2 {
		t.Fatalf("Expected 2 interfaces, got %d", len(cfg.Interfaces))
	}
	if cfg.Interfaces[1].Type != TechnologyWifi {
		t.Errorf("Expected wifi, got %s", cfg.Interfaces[1].Type)
	}

	if err := cfg.ValidateConfig(); err != nil {
		t.Errorf("Expected valid config, got: %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	configFile := writeConfigFile(t, `[general]
tmpdir = "/tmp"
`)

	cfg, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Programs.IfUp != DefaultIfUp {
		t.Errorf("Expected default ifup %s, got %s", DefaultIfUp, cfg.Programs.IfUp)
	}
	if cfg.Programs.Pppd != DefaultPppd {
		t.Errorf("Expected default pppd %s, got %s", DefaultPppd, cfg.Programs.Pppd)
	}
	if cfg.General.MaxRetries != 5 {
		t.Errorf("Expected default max_retries 5, got %d", cfg.General.MaxRetries)
	}
	if cfg.General.RetryBackoffMs != 1000 {
		t.Errorf("Expected default retry_backoff_ms 1000, got %d", cfg.General.RetryBackoffMs)
	}
	if !cfg.General.Connectivity.Enable {
		t.Errorf("Expected connectivity probing enabled by default")
	}
	if cfg.General.Connectivity.ProbeServer != "1.1.1.1:53" {
		t.Errorf("Unexpected default probe server: %s", cfg.General.Connectivity.ProbeServer)
	}
}

func TestOptions_Get(t *testing.T) {
	cfg := &Config{
		General:  &GeneralConfig{TmpDir: "/tmp"},
		Programs: &ProgramsConfig{IfUp: "/sbin/ifup", Killall: "/usr/bin/killall"},
	}
	opts := cfg.Options()

	tests := []struct {
		name     string
		option   string
		expected string
	}{
		{name: "ifup", option: "ifup", expected: "/sbin/ifup"},
		{name: "killall", option: "killall", expected: "/usr/bin/killall"},
		{name: "tmpdir", option: "tmpdir", expected: "/tmp"},
		{name: "unset program", option: "pppd", expected: ""},
		{name: "unknown option", option: "frobnicator", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := opts.Get(tt.option); got != tt.expected {
				t.Errorf("Get(%q) = %q, want %q", tt.option, got, tt.expected)
			}
		})
	}
}

func TestValidateConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{
			name: "missing general section",
			cfg:  &Config{},
		},
		{
			name: "unknown technology",
			cfg: &Config{
				General: &GeneralConfig{TmpDir: "/tmp", MaxRetries: 5, RetryBackoffMs: 1000, MaxBackoffMs: 30000},
				Interfaces: []*InterfaceConfig{
					{Name: "eth0", Type: "token-ring"},
				},
			},
		},
		{
			name: "duplicate interface name",
			cfg: &Config{
				General: &GeneralConfig{TmpDir: "/tmp", MaxRetries: 5, RetryBackoffMs: 1000, MaxBackoffMs: 30000},
				Interfaces: []*InterfaceConfig{
					{Name: "eth0", Type: TechnologyEthernet},
					{Name: "eth0", Type: TechnologyEthernet},
				},
			},
		},
		{
			name: "wifi without ssid",
			cfg: &Config{
				General: &GeneralConfig{TmpDir: "/tmp", MaxRetries: 5, RetryBackoffMs: 1000, MaxBackoffMs: 30000},
				Interfaces: []*InterfaceConfig{
					{Name: "wlan0", Type: TechnologyWifi, RegulatoryDomain: "US"},
				},
			},
		},
		{
			name: "mobile without device",
			cfg: &Config{
				General: &GeneralConfig{TmpDir: "/tmp", MaxRetries: 5, RetryBackoffMs: 1000, MaxBackoffMs: 30000},
				Interfaces: []*InterfaceConfig{
					{Name: "ppp0", Type: TechnologyMobile, Speed: 115200, ChatScript: "ABORT BUSY"},
				},
			},
		},
		{
			name: "share_internet without uplink",
			cfg: &Config{
				General: &GeneralConfig{TmpDir: "/tmp", MaxRetries: 5, RetryBackoffMs: 1000, MaxBackoffMs: 30000},
				Interfaces: []*InterfaceConfig{
					{Name: "eth0", Type: TechnologyEthernet, ShareInternet: true},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.ValidateConfig(); err == nil {
				t.Errorf("Expected validation error")
			}
		})
	}
}

func TestInterfaceByName(t *testing.T) {
	cfg := &Config{
		Interfaces: []*InterfaceConfig{
			{Name: "eth0", Type: TechnologyEthernet},
			{Name: "wlan0", Type: TechnologyWifi},
		},
	}

	if got := cfg.InterfaceByName("wlan0"); got == nil || got.Type != TechnologyWifi {
		t.Errorf("Expected wlan0 wifi config, got %+v", got)
	}
	if got := cfg.InterfaceByName("eth9"); got != nil {
		t.Errorf("Expected nil for unknown interface, got %+v", got)
	}
}
