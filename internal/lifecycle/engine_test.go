package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/netcfgd/netcfgd/internal/config"
	neterrors "github.com/netcfgd/netcfgd/internal/errors"
	"github.com/netcfgd/netcfgd/internal/registry"
)

// mockLauncher records every launched program (by base name) and can be
// told to fail or block specific programs.
type mockLauncher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]int // remaining failures, -1 fails forever
	gate  map[string]chan struct{}
	out   map[string]string // RunOutput result keyed by last argument
}

func newMockLauncher() *mockLauncher {
	return &mockLauncher{
		fail: make(map[string]int),
		gate: make(map[string]chan struct{}),
		out:  make(map[string]string),
	}
}

func (m *mockLauncher) Run(ctx context.Context, program string, args ...string) error {
	name := filepath.Base(program)

	m.mu.Lock()
	m.calls = append(m.calls, name)
	gate := m.gate[name]
	failing := false
	if n, ok := m.fail[name]; ok {
		if n == -1 {
			failing = true
		} else if n > 0 {
			failing = true
			m.fail[name] = n - 1
		}
	}
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if failing {
		return neterrors.NewNonZeroExitError(program, 1, errors.New("exit status 1"))
	}
	return nil
}

func (m *mockLauncher) RunOutput(ctx context.Context, program string, args ...string) (string, error) {
	if err := m.Run(ctx, program, args...); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(args) == 0 {
		return "", nil
	}
	return m.out[args[len(args)-1]], nil
}

func (m *mockLauncher) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func testOptions(t *testing.T) *config.Options {
	t.Helper()
	return &config.Options{
		Programs: &config.ProgramsConfig{
			IfUp:          "/sbin/ifup",
			IfDown:        "/sbin/ifdown",
			WpaSupplicant: "/usr/sbin/wpa_supplicant",
			WpaCli:        "/usr/sbin/wpa_cli",
			Killall:       "/usr/bin/killall",
			Chat:          "/usr/sbin/chat",
			Pppd:          "/usr/sbin/pppd",
			Mknod:         "/bin/mknod",
		},
		TmpDir: t.TempDir(),
	}
}

func testSettings() Settings {
	return Settings{
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
		MaxBackoff:   5 * time.Millisecond,
	}
}

func newTestManager(t *testing.T) (*Manager, *mockLauncher, *registry.Registry) {
	t.Helper()
	launcher := newMockLauncher()
	reg := registry.New()
	mgr := NewManager(testOptions(t), reg, launcher, testSettings())
	t.Cleanup(mgr.Stop)
	return mgr, launcher, reg
}

func ethernetConfig(name string) *config.InterfaceConfig {
	return &config.InterfaceConfig{Name: name, Type: config.TechnologyEthernet}
}

func wifiConfig(name, ssid string) *config.InterfaceConfig {
	return &config.InterfaceConfig{
		Name:             name,
		Type:             config.TechnologyWifi,
		RegulatoryDomain: "US",
		SSID:             ssid,
		KeyMgmt:          "wpa_psk",
		PSK:              "secretpass",
	}
}

func waitForState(t *testing.T, reg *registry.Registry, ifname string, want State) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if v, ok := reg.Get(registry.Path{"interface", ifname, "state"}); ok && v == string(want) {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	v, _ := reg.Get(registry.Path{"interface", ifname, "state"})
	t.Fatalf("interface %s never reached state %q (last: %v)", ifname, want, v)
}

func waitForCalls(t *testing.T, launcher *mockLauncher, want []string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if reflect.DeepEqual(launcher.snapshot(), want) {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("launcher calls = %v, want %v", launcher.snapshot(), want)
}

func TestEngineConfigureEthernet(t *testing.T) {
	mgr, launcher, reg := newTestManager(t)

	if err := mgr.Configure("eth0", ethernetConfig("eth0")); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	waitForState(t, reg, "eth0", StateConfigured)

	if got := launcher.snapshot(); !reflect.DeepEqual(got, []string{"ifup"}) {
		t.Errorf("launcher calls = %v, want [ifup]", got)
	}

	stanza := filepath.Join(mgr.opts.TmpDir, "network_interfaces.eth0")
	content, err := os.ReadFile(stanza)
	if err != nil {
		t.Fatalf("stanza file not materialized: %v", err)
	}
	if string(content) != "iface eth0 inet dhcp\n" {
		t.Errorf("stanza content = %q", content)
	}

	if v, _ := reg.Get(registry.Path{"interface", "eth0", "type"}); v != "ethernet" {
		t.Errorf("type entry = %v, want ethernet", v)
	}
	if v, _ := reg.Get(registry.Path{"interface", "eth0", "retries"}); v != 0 {
		t.Errorf("retries entry = %v, want 0", v)
	}
	if _, ok := reg.Get(registry.Path{"interface", "eth0", "error"}); ok {
		t.Error("error entry should be absent after a clean apply")
	}
}

func TestEngineReconfigureRunsDownFirst(t *testing.T) {
	mgr, launcher, reg := newTestManager(t)

	mgr.Configure("eth0", ethernetConfig("eth0"))
	waitForState(t, reg, "eth0", StateConfigured)

	mgr.Configure("eth0", ethernetConfig("eth0"))
	waitForCalls(t, launcher, []string{"ifup", "ifdown", "ifup"})
	waitForState(t, reg, "eth0", StateConfigured)
}

func TestEngineRetryBudgetExhausted(t *testing.T) {
	mgr, launcher, reg := newTestManager(t)
	mgr.settings.MaxRetries = 2
	launcher.fail["wpa_supplicant"] = -1

	mgr.Configure("wlan0", wifiConfig("wlan0", "homenet"))
	waitForState(t, reg, "wlan0", StateFailed)

	// Each failed attempt is rolled back with the plan's down commands.
	want := []string{
		"wpa_supplicant", "ifdown", "killall",
		"wpa_supplicant", "ifdown", "killall",
	}
	if got := launcher.snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("launcher calls = %v, want %v", got, want)
	}
	if v, _ := reg.Get(registry.Path{"interface", "wlan0", "retries"}); v != 2 {
		t.Errorf("retries entry = %v, want 2", v)
	}
	if _, ok := reg.Get(registry.Path{"interface", "wlan0", "error"}); !ok {
		t.Error("error entry should be present after exhausting retries")
	}
}

func TestEngineRecoversAfterTransientFailure(t *testing.T) {
	mgr, launcher, reg := newTestManager(t)
	launcher.fail["wpa_supplicant"] = 1

	mgr.Configure("wlan0", wifiConfig("wlan0", "homenet"))
	waitForState(t, reg, "wlan0", StateConfigured)

	want := []string{"wpa_supplicant", "ifdown", "killall", "wpa_supplicant", "ifup"}
	if got := launcher.snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("launcher calls = %v, want %v", got, want)
	}
	if v, _ := reg.Get(registry.Path{"interface", "wlan0", "retries"}); v != 0 {
		t.Errorf("retries entry = %v, want 0 after recovery", v)
	}
	if _, ok := reg.Get(registry.Path{"interface", "wlan0", "error"}); ok {
		t.Error("error entry should be cleared after recovery")
	}
}

func TestEngineDownFailureDoesNotAbortTeardown(t *testing.T) {
	mgr, launcher, reg := newTestManager(t)

	mgr.Configure("wlan0", wifiConfig("wlan0", "homenet"))
	waitForState(t, reg, "wlan0", StateConfigured)

	launcher.mu.Lock()
	launcher.fail["ifdown"] = -1
	launcher.mu.Unlock()

	mgr.Configure("wlan0", ethernetConfig("wlan0"))
	want := []string{"wpa_supplicant", "ifup", "ifdown", "killall", "ifup"}
	waitForCalls(t, launcher, want)
	waitForState(t, reg, "wlan0", StateConfigured)

	if v, _ := reg.Get(registry.Path{"interface", "wlan0", "type"}); v != "ethernet" {
		t.Errorf("type entry = %v, want ethernet", v)
	}
}

func TestEngineSupersedeMidApply(t *testing.T) {
	mgr, launcher, reg := newTestManager(t)

	gate := make(chan struct{})
	launcher.gate["wpa_supplicant"] = gate

	mgr.Configure("wlan0", wifiConfig("wlan0", "oldnet"))

	// Wait until the first up command is in flight.
	deadline := time.Now().Add(3 * time.Second)
	for len(launcher.snapshot()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first up command never started")
		}
		time.Sleep(2 * time.Millisecond)
	}

	mgr.Configure("wlan0", wifiConfig("wlan0", "newnet"))
	close(gate)

	// The superseded generation is rolled back before the new plan runs.
	want := []string{"wpa_supplicant", "ifdown", "killall", "wpa_supplicant", "ifup"}
	waitForCalls(t, launcher, want)
	waitForState(t, reg, "wlan0", StateConfigured)

	got := mgr.GetConfiguration("wlan0")
	if got.SSID != "newnet" {
		t.Errorf("declared SSID = %q, want newnet", got.SSID)
	}
}

func TestEngineCompileErrorFailsImmediately(t *testing.T) {
	mgr, launcher, reg := newTestManager(t)

	mgr.Configure("eth0", &config.InterfaceConfig{Name: "eth0", Type: "token-ring"})
	waitForState(t, reg, "eth0", StateFailed)

	if got := launcher.snapshot(); len(got) != 0 {
		t.Errorf("no commands should run on a compile error, got %v", got)
	}
	if _, ok := reg.Get(registry.Path{"interface", "eth0", "error"}); !ok {
		t.Error("error entry should be present after a compile error")
	}
}

func TestEngineStopTearsDown(t *testing.T) {
	mgr, launcher, reg := newTestManager(t)

	mgr.Configure("eth0", ethernetConfig("eth0"))
	waitForState(t, reg, "eth0", StateConfigured)

	eng, ok := mgr.Engine("eth0")
	if !ok {
		t.Fatal("engine not found")
	}
	eng.Stop()

	if got := launcher.snapshot(); !reflect.DeepEqual(got, []string{"ifup", "ifdown"}) {
		t.Errorf("launcher calls = %v, want [ifup ifdown]", got)
	}
	if v, _ := reg.Get(registry.Path{"interface", "eth0", "state"}); v != string(StateUnconfigured) {
		t.Errorf("state after stop = %v, want unconfigured", v)
	}

	stanza := filepath.Join(mgr.opts.TmpDir, "network_interfaces.eth0")
	if _, err := os.Stat(stanza); !os.IsNotExist(err) {
		t.Errorf("stanza file should be removed on teardown, stat err = %v", err)
	}
}

type mockSharer struct {
	mu       sync.Mutex
	enabled  []string
	disabled []string
}

func (s *mockSharer) Enable(uplink string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = append(s.enabled, uplink)
	return nil
}

func (s *mockSharer) Disable(uplink string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled = append(s.disabled, uplink)
	return nil
}

func TestEngineInternetSharing(t *testing.T) {
	mgr, _, reg := newTestManager(t)
	sharer := &mockSharer{}
	mgr.SetInternetSharer(sharer)

	cfg := wifiConfig("wlan0", "homenet")
	cfg.ShareInternet = true
	cfg.Uplink = "eth0"

	mgr.Configure("wlan0", cfg)
	waitForState(t, reg, "wlan0", StateConfigured)

	sharer.mu.Lock()
	enabled := append([]string(nil), sharer.enabled...)
	sharer.mu.Unlock()
	if !reflect.DeepEqual(enabled, []string{"eth0"}) {
		t.Fatalf("sharer enabled = %v, want [eth0]", enabled)
	}

	eng, _ := mgr.Engine("wlan0")
	eng.Stop()

	sharer.mu.Lock()
	disabled := append([]string(nil), sharer.disabled...)
	sharer.mu.Unlock()
	if !reflect.DeepEqual(disabled, []string{"eth0"}) {
		t.Errorf("sharer disabled = %v, want [eth0]", disabled)
	}
}
