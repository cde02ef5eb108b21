package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/netcfgd/netcfgd/internal/log"
)

// Default program paths, used when the [programs] section omits an entry.
const (
	DefaultIfUp          = "/sbin/ifup"
	DefaultIfDown        = "/sbin/ifdown"
	DefaultWpaSupplicant = "/usr/sbin/wpa_supplicant"
	DefaultWpaCli        = "/usr/sbin/wpa_cli"
	DefaultKillall       = "/usr/bin/killall"
	DefaultChat          = "/usr/sbin/chat"
	DefaultPppd          = "/usr/sbin/pppd"
	DefaultMknod         = "/bin/mknod"
	DefaultTmpDir        = "/tmp"
)

// LoadConfig reads and parses the TOML configuration file and fills in
// defaults. Validation is a separate step (ValidateConfig).
func LoadConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)

	if !filepath.IsAbs(configFile) {
		if path, err := filepath.Abs(configFile); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %v", err)
		} else {
			configFile = path
		}
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var config Config
	if err := toml.Unmarshal(content, &config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			log.Errorf(derr.String())
			row, col := derr.Position()
			log.Errorf("Error at line %d, column %d", row, col)
			return nil, fmt.Errorf("failed to parse config file")
		}
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	config._absConfigFilePath = configFile
	config.applyDefaults()

	log.Debugf("Configuration file path: %s", configFile)
	log.Debugf("Temp directory: %s", config.General.TmpDir)

	return &config, nil
}

// applyDefaults fills unset fields with the daemon defaults.
func (c *Config) applyDefaults() {
	if c.General == nil {
		c.General = &GeneralConfig{}
	}
	if c.General.TmpDir == "" {
		c.General.TmpDir = DefaultTmpDir
	}
	if c.General.MaxRetries == 0 {
		c.General.MaxRetries = 5
	}
	if c.General.RetryBackoffMs == 0 {
		c.General.RetryBackoffMs = 1000
	}
	if c.General.MaxBackoffMs == 0 {
		c.General.MaxBackoffMs = 30000
	}
	if c.General.Connectivity == nil {
		c.General.Connectivity = &ConnectivityConfig{Enable: true}
	}
	if c.General.Connectivity.ProbeServer == "" {
		c.General.Connectivity.ProbeServer = "1.1.1.1:53"
	}
	if c.General.Connectivity.ProbeName == "" {
		c.General.Connectivity.ProbeName = "example.com."
	}
	if c.General.Connectivity.IntervalSeconds == 0 {
		c.General.Connectivity.IntervalSeconds = 30
	}

	if c.Programs == nil {
		c.Programs = &ProgramsConfig{}
	}
	p := c.Programs
	if p.IfUp == "" {
		p.IfUp = DefaultIfUp
	}
	if p.IfDown == "" {
		p.IfDown = DefaultIfDown
	}
	if p.WpaSupplicant == "" {
		p.WpaSupplicant = DefaultWpaSupplicant
	}
	if p.WpaCli == "" {
		p.WpaCli = DefaultWpaCli
	}
	if p.Killall == "" {
		p.Killall = DefaultKillall
	}
	if p.Chat == "" {
		p.Chat = DefaultChat
	}
	if p.Pppd == "" {
		p.Pppd = DefaultPppd
	}
	if p.Mknod == "" {
		p.Mknod = DefaultMknod
	}
}

// SerializeConfig renders the configuration back to TOML.
func (c *Config) SerializeConfig() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return &buf, nil
}

// WriteConfig writes the serialized configuration back to its file.
func (c *Config) WriteConfig() error {
	config, err := c.SerializeConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(c._absConfigFilePath, config.Bytes(), 0644); err != nil {
		return err
	}
	return nil
}
