package lifecycle

import (
	"sort"
	"sync"
	"time"

	"github.com/netcfgd/netcfgd/internal/compiler"
	"github.com/netcfgd/netcfgd/internal/config"
	neterrors "github.com/netcfgd/netcfgd/internal/errors"
	"github.com/netcfgd/netcfgd/internal/exec"
	"github.com/netcfgd/netcfgd/internal/registry"
)

// Manager owns the per-interface engines. Engines are created lazily on
// first use and live until Stop; reconfiguration never replaces an
// engine, it only feeds it a new declarative configuration.
type Manager struct {
	opts     *config.Options
	reg      *registry.Registry
	launcher exec.Launcher
	settings Settings
	sharer   InternetSharer

	mu      sync.Mutex
	engines map[string]*Engine
}

// SettingsFromGeneral derives the retry policy from the daemon
// configuration.
func SettingsFromGeneral(general *config.GeneralConfig) Settings {
	return Settings{
		MaxRetries:   general.MaxRetries,
		RetryBackoff: time.Duration(general.RetryBackoffMs) * time.Millisecond,
		MaxBackoff:   time.Duration(general.MaxBackoffMs) * time.Millisecond,
	}
}

func NewManager(opts *config.Options, reg *registry.Registry, launcher exec.Launcher, settings Settings) *Manager {
	return &Manager{
		opts:     opts,
		reg:      reg,
		launcher: launcher,
		settings: settings,
		engines:  make(map[string]*Engine),
	}
}

// SetInternetSharer installs the NAT backend handed to newly created
// engines. Must be called before the first Configure.
func (m *Manager) SetInternetSharer(sharer InternetSharer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sharer = sharer
}

// EnsureStarted returns the engine for ifname, creating and starting it
// on first use. Concurrent callers always observe the same instance.
func (m *Manager) EnsureStarted(ifname string) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()

	eng, ok := m.engines[ifname]
	if !ok {
		eng = newEngine(ifname, m.opts, m.reg, m.launcher, m.settings, m.sharer)
		m.engines[ifname] = eng
	}
	return eng
}

// Configure submits a declarative configuration for ifname, starting its
// engine if necessary.
func (m *Manager) Configure(ifname string, cfg *config.InterfaceConfig) error {
	if ifname == "" {
		return neterrors.NewInterfaceError("interface name must not be empty", nil)
	}
	m.EnsureStarted(ifname).Configure(cfg)
	return nil
}

// Engine returns the running engine for ifname, if any.
func (m *Manager) Engine(ifname string) (*Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, ok := m.engines[ifname]
	return eng, ok
}

// GetConfiguration returns the last accepted configuration for ifname.
// Unknown interfaces yield an empty configuration, never nil.
func (m *Manager) GetConfiguration(ifname string) *config.InterfaceConfig {
	eng, ok := m.Engine(ifname)
	if !ok {
		return &config.InterfaceConfig{Name: ifname}
	}
	return eng.Configuration()
}

// ConfigurationValid reports whether cfg would compile for ifname. The
// dry-run never touches the system or the engine.
func (m *Manager) ConfigurationValid(ifname string, cfg *config.InterfaceConfig) bool {
	return compiler.Validate(ifname, cfg, m.opts)
}

// Interfaces lists every interface name that has registry status
// entries, sorted.
func (m *Manager) Interfaces() []string {
	seen := make(map[string]struct{})
	for _, entry := range m.reg.GetByPrefix(registry.Path{"interface"}) {
		if len(entry.Path) < 2 {
			continue
		}
		seen[entry.Path[1]] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stop tears down every engine and waits for their goroutines to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	engines := make([]*Engine, 0, len(m.engines))
	for _, eng := range m.engines {
		engines = append(engines, eng)
	}
	m.mu.Unlock()

	for _, eng := range engines {
		eng.Stop()
	}
}
