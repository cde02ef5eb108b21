// Package dhcp handles udhcpc-style lease events. The DHCP client
// invokes its script with an event name and lease details in the
// environment; Dispatch routes those callbacks to a Handler.
package dhcp

import (
	"fmt"

	"github.com/netcfgd/netcfgd/internal/addr"
	"github.com/netcfgd/netcfgd/internal/log"
	"github.com/netcfgd/netcfgd/internal/registry"
)

// Lease event names as emitted by udhcpc.
const (
	EventDeconfig  = "deconfig"
	EventLeaseFail = "leasefail"
	EventNak       = "nak"
	EventRenew     = "renew"
	EventBound     = "bound"
)

// Handler reacts to lease events. Each method receives the interface
// name and the lease info map (udhcpc environment fields such as ip,
// subnet, router, dns, lease) and reports whether it accepted the event.
type Handler interface {
	Deconfig(ifname string, info map[string]string) bool
	LeaseFail(ifname string, info map[string]string) bool
	Nak(ifname string, info map[string]string) bool
	Renew(ifname string, info map[string]string) bool
	Bound(ifname string, info map[string]string) bool
}

// Dispatch routes one lease event to the handler. Unknown event names
// are an error; a handler declining an event is not.
func Dispatch(h Handler, event, ifname string, info map[string]string) (bool, error) {
	switch event {
	case EventDeconfig:
		return h.Deconfig(ifname, info), nil
	case EventLeaseFail:
		return h.LeaseFail(ifname, info), nil
	case EventNak:
		return h.Nak(ifname, info), nil
	case EventRenew:
		return h.Renew(ifname, info), nil
	case EventBound:
		return h.Bound(ifname, info), nil
	default:
		return false, fmt.Errorf("unknown lease event %q", event)
	}
}

// LoggingHandler accepts every event and only logs it.
type LoggingHandler struct{}

func (LoggingHandler) Deconfig(ifname string, info map[string]string) bool {
	log.Infof("dhcp: %s deconfigured", ifname)
	return true
}

func (LoggingHandler) LeaseFail(ifname string, info map[string]string) bool {
	log.Warnf("dhcp: %s failed to obtain a lease", ifname)
	return true
}

func (LoggingHandler) Nak(ifname string, info map[string]string) bool {
	log.Warnf("dhcp: %s received NAK", ifname)
	return true
}

func (LoggingHandler) Renew(ifname string, info map[string]string) bool {
	log.Infof("dhcp: %s renewed lease: %s", ifname, info["ip"])
	return true
}

func (LoggingHandler) Bound(ifname string, info map[string]string) bool {
	log.Infof("dhcp: %s bound: %s", ifname, info["ip"])
	return true
}

// RegistryHandler mirrors lease state into the property registry under
// interface.<ifname>.lease.<field>. Deconfig, lease failure and NAK
// clear the lease entries.
type RegistryHandler struct {
	reg *registry.Registry
}

func NewRegistryHandler(reg *registry.Registry) *RegistryHandler {
	return &RegistryHandler{reg: reg}
}

func (h *RegistryHandler) leasePath(ifname, field string) registry.Path {
	return registry.Path{"interface", ifname, "lease", field}
}

func (h *RegistryHandler) clear(ifname string) {
	for _, entry := range h.reg.GetByPrefix(registry.Path{"interface", ifname, "lease"}) {
		h.reg.Delete(entry.Path)
	}
}

func (h *RegistryHandler) store(ifname string, info map[string]string) {
	h.clear(ifname)
	for field, value := range info {
		h.reg.Put(h.leasePath(ifname, field), value)
	}
	if subnet, ok := info["subnet"]; ok {
		if length, err := maskToPrefixLength(subnet); err == nil {
			h.reg.Put(h.leasePath(ifname, "prefix_length"), length)
		}
	}
}

// maskToPrefixLength converts a dotted-quad subnet mask to its prefix
// length. Non-canonical masks are left out of the lease entries.
func maskToPrefixLength(mask string) (int, error) {
	tuple, err := addr.IPToTuple(mask)
	if err != nil {
		return 0, err
	}
	return addr.SubnetMaskToPrefixLength(tuple)
}

func (h *RegistryHandler) Deconfig(ifname string, info map[string]string) bool {
	log.Infof("dhcp: %s deconfigured", ifname)
	h.clear(ifname)
	return true
}

func (h *RegistryHandler) LeaseFail(ifname string, info map[string]string) bool {
	log.Warnf("dhcp: %s failed to obtain a lease", ifname)
	h.clear(ifname)
	return true
}

func (h *RegistryHandler) Nak(ifname string, info map[string]string) bool {
	log.Warnf("dhcp: %s received NAK", ifname)
	h.clear(ifname)
	return true
}

func (h *RegistryHandler) Renew(ifname string, info map[string]string) bool {
	log.Infof("dhcp: %s renewed lease: %s", ifname, info["ip"])
	h.store(ifname, info)
	return true
}

func (h *RegistryHandler) Bound(ifname string, info map[string]string) bool {
	log.Infof("dhcp: %s bound: %s", ifname, info["ip"])
	h.store(ifname, info)
	return true
}
