// Package netmon mirrors kernel link state into the property registry.
//
// The monitor subscribes to rtnetlink link notifications and keeps one
// group of entries per interface under interface.<ifname>: present,
// lower_up, ifindex and mac. A periodic full resync via LinkList guards
// against missed notifications.
package netmon

import (
	"sync"
	"time"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	neterrors "github.com/netcfgd/netcfgd/internal/errors"
	"github.com/netcfgd/netcfgd/internal/log"
	"github.com/netcfgd/netcfgd/internal/registry"
)

// LinkInfo is the registry-facing view of one kernel link.
type LinkInfo struct {
	Name    string `json:"name"`
	Index   int    `json:"ifindex"`
	MAC     string `json:"mac,omitempty"`
	AdminUp bool   `json:"admin_up"`
	LowerUp bool   `json:"lower_up"`
}

// Monitor publishes kernel link state into the registry.
type Monitor struct {
	reg      *registry.Registry
	interval time.Duration

	mu    sync.Mutex
	known map[string]struct{}

	done     chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
}

// New creates a monitor that resyncs the full link list every interval.
func New(reg *registry.Registry, interval time.Duration) *Monitor {
	return &Monitor{
		reg:      reg,
		interval: interval,
		known:    make(map[string]struct{}),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start subscribes to rtnetlink and launches the monitor goroutine.
func (m *Monitor) Start() error {
	updates := make(chan netlink.LinkUpdate, 64)
	if err := netlink.LinkSubscribe(updates, m.done); err != nil {
		return neterrors.NewInterfaceError("failed to subscribe to link updates", err)
	}
	if err := m.refresh(); err != nil {
		log.Warnf("netmon: initial link list failed: %v", err)
	}

	go m.loop(updates)
	return nil
}

// Stop terminates the monitor goroutine and the netlink subscription.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
	<-m.stopped
}

func (m *Monitor) loop(updates chan netlink.LinkUpdate) {
	defer close(m.stopped)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			m.handleUpdate(update)
		case <-ticker.C:
			if err := m.refresh(); err != nil {
				log.Warnf("netmon: link list failed: %v", err)
			}
		}
	}
}

func (m *Monitor) handleUpdate(update netlink.LinkUpdate) {
	attrs := update.Link.Attrs()
	if attrs == nil {
		return
	}
	if update.Header.Type == unix.RTM_DELLINK {
		log.Debugf("netmon: link %s removed", attrs.Name)
		m.publishAbsent(attrs.Name)
		return
	}
	m.publish(infoFromAttrs(attrs))
}

// refresh reconciles the registry against a full LinkList snapshot,
// marking links that disappeared since the last pass as absent.
func (m *Monitor) refresh() error {
	links, err := netlink.LinkList()
	if err != nil {
		return err
	}

	current := make(map[string]struct{}, len(links))
	for _, link := range links {
		attrs := link.Attrs()
		if attrs == nil {
			continue
		}
		current[attrs.Name] = struct{}{}
		m.publish(infoFromAttrs(attrs))
	}

	m.mu.Lock()
	var gone []string
	for name := range m.known {
		if _, ok := current[name]; !ok {
			gone = append(gone, name)
		}
	}
	m.mu.Unlock()

	for _, name := range gone {
		m.publishAbsent(name)
	}
	return nil
}

func infoFromAttrs(attrs *netlink.LinkAttrs) LinkInfo {
	info := LinkInfo{
		Name:    attrs.Name,
		Index:   attrs.Index,
		AdminUp: attrs.RawFlags&unix.IFF_UP != 0,
		LowerUp: attrs.RawFlags&unix.IFF_LOWER_UP != 0,
	}
	if len(attrs.HardwareAddr) > 0 {
		info.MAC = attrs.HardwareAddr.String()
	}
	return info
}

func (m *Monitor) publish(info LinkInfo) {
	m.mu.Lock()
	m.known[info.Name] = struct{}{}
	m.mu.Unlock()

	m.reg.Put(registry.Path{"interface", info.Name, "present"}, true)
	m.reg.Put(registry.Path{"interface", info.Name, "lower_up"}, info.LowerUp)
	m.reg.Put(registry.Path{"interface", info.Name, "ifindex"}, info.Index)
	if info.MAC != "" {
		m.reg.Put(registry.Path{"interface", info.Name, "mac"}, info.MAC)
	}
}

func (m *Monitor) publishAbsent(name string) {
	m.mu.Lock()
	delete(m.known, name)
	m.mu.Unlock()

	m.reg.Put(registry.Path{"interface", name, "present"}, false)
	m.reg.Put(registry.Path{"interface", name, "lower_up"}, false)
	m.reg.Delete(registry.Path{"interface", name, "ifindex"})
	m.reg.Delete(registry.Path{"interface", name, "mac"})
}

// List returns a snapshot of all kernel links.
func List() ([]LinkInfo, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, neterrors.NewInterfaceError("failed to list links", err)
	}

	infos := make([]LinkInfo, 0, len(links))
	for _, link := range links {
		attrs := link.Attrs()
		if attrs == nil {
			continue
		}
		infos = append(infos, infoFromAttrs(attrs))
	}
	return infos, nil
}
