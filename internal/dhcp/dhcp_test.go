package dhcp

import (
	"testing"

	"github.com/netcfgd/netcfgd/internal/registry"
)

type recordingHandler struct {
	LoggingHandler
	events []string
}

func (h *recordingHandler) Bound(ifname string, info map[string]string) bool {
	h.events = append(h.events, "bound:"+ifname)
	return true
}

func (h *recordingHandler) Deconfig(ifname string, info map[string]string) bool {
	h.events = append(h.events, "deconfig:"+ifname)
	return false
}

func TestDispatch(t *testing.T) {
	h := &recordingHandler{}

	ok, err := Dispatch(h, EventBound, "eth0", map[string]string{"ip": "192.168.1.5"})
	if err != nil || !ok {
		t.Fatalf("Dispatch(bound) = %v, %v", ok, err)
	}

	ok, err = Dispatch(h, EventDeconfig, "eth0", nil)
	if err != nil {
		t.Fatalf("Dispatch(deconfig) error: %v", err)
	}
	if ok {
		t.Error("handler declined the event, Dispatch should report false")
	}

	if len(h.events) != 2 || h.events[0] != "bound:eth0" || h.events[1] != "deconfig:eth0" {
		t.Errorf("events = %v", h.events)
	}

	if _, err := Dispatch(h, "reboot", "eth0", nil); err == nil {
		t.Error("unknown event should be an error")
	}
}

func TestRegistryHandlerLeaseRoundtrip(t *testing.T) {
	reg := registry.New()
	h := NewRegistryHandler(reg)

	info := map[string]string{
		"ip":     "192.168.1.5",
		"subnet": "255.255.255.0",
		"router": "192.168.1.1",
		"dns":    "192.168.1.1 1.1.1.1",
	}
	if ok, err := Dispatch(h, EventBound, "eth0", info); err != nil || !ok {
		t.Fatalf("Dispatch(bound) = %v, %v", ok, err)
	}

	if v, _ := reg.Get(registry.Path{"interface", "eth0", "lease", "ip"}); v != "192.168.1.5" {
		t.Errorf("lease ip = %v", v)
	}
	if v, _ := reg.Get(registry.Path{"interface", "eth0", "lease", "router"}); v != "192.168.1.1" {
		t.Errorf("lease router = %v", v)
	}
	if v, _ := reg.Get(registry.Path{"interface", "eth0", "lease", "prefix_length"}); v != 24 {
		t.Errorf("lease prefix_length = %v, want 24", v)
	}

	// Renew with fewer fields replaces the lease entirely.
	if _, err := Dispatch(h, EventRenew, "eth0", map[string]string{"ip": "192.168.1.6"}); err != nil {
		t.Fatal(err)
	}
	if v, _ := reg.Get(registry.Path{"interface", "eth0", "lease", "ip"}); v != "192.168.1.6" {
		t.Errorf("lease ip after renew = %v", v)
	}
	if _, ok := reg.Get(registry.Path{"interface", "eth0", "lease", "router"}); ok {
		t.Error("stale router entry should be gone after renew")
	}

	if _, err := Dispatch(h, EventDeconfig, "eth0", nil); err != nil {
		t.Fatal(err)
	}
	if entries := reg.GetByPrefix(registry.Path{"interface", "eth0", "lease"}); len(entries) != 0 {
		t.Errorf("lease entries after deconfig = %v", entries)
	}
}
