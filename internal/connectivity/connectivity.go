// Package connectivity periodically probes internet reachability for
// configured interfaces and publishes the verdict into the property
// registry as interface.<ifname>.connection.
package connectivity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/netcfgd/netcfgd/internal/log"
	"github.com/netcfgd/netcfgd/internal/registry"
)

// Status is the connectivity verdict for one interface.
type Status string

const (
	// StatusInternet means the probe name resolved through the probe server.
	StatusInternet Status = "internet"
	// StatusLAN means the interface is configured but the probe failed.
	StatusLAN Status = "lan"
	// StatusDisconnected means the interface is not in the configured state.
	StatusDisconnected Status = "disconnected"
)

// Resolver answers a single probe query. Satisfied by the DNS resolver
// and by test fakes.
type Resolver interface {
	Resolve(ctx context.Context, server, name string) error
}

// DNSResolver probes through a DNS server using miekg/dns.
type DNSResolver struct {
	client *dns.Client
}

func NewDNSResolver(timeout time.Duration) *DNSResolver {
	client := new(dns.Client)
	client.Timeout = timeout
	return &DNSResolver{client: client}
}

func (r *DNSResolver) Resolve(ctx context.Context, server, name string) error {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeA)

	resp, _, err := r.client.ExchangeContext(ctx, m, server)
	if err != nil {
		return err
	}
	if resp.Rcode != dns.RcodeSuccess {
		return fmt.Errorf("probe query returned %s", dns.RcodeToString[resp.Rcode])
	}
	return nil
}

// Prober runs the periodic connectivity check. It discovers interfaces
// through their lifecycle state entries in the registry, so it needs no
// reference to the lifecycle engines themselves.
type Prober struct {
	reg      *registry.Registry
	resolver Resolver
	server   string
	name     string
	interval time.Duration

	done     chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
}

func NewProber(reg *registry.Registry, resolver Resolver, server, name string, interval time.Duration) *Prober {
	return &Prober{
		reg:      reg,
		resolver: resolver,
		server:   server,
		name:     name,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start launches the probe goroutine. The first pass runs immediately.
func (p *Prober) Start() {
	go p.loop()
}

func (p *Prober) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	<-p.stopped
}

func (p *Prober) loop() {
	defer close(p.stopped)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.probeAll()
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.probeAll()
		}
	}
}

// probeAll re-evaluates every interface that has a lifecycle state entry.
func (p *Prober) probeAll() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	for _, entry := range p.reg.GetByPrefix(registry.Path{"interface"}) {
		if len(entry.Path) != 3 || entry.Path[2] != "state" {
			continue
		}
		ifname := entry.Path[1]
		state, _ := entry.Value.(string)

		status := p.probe(ctx, state)
		log.Debugf("connectivity: %s is %s", ifname, status)
		p.reg.Put(registry.Path{"interface", ifname, "connection"}, string(status))
	}
}

func (p *Prober) probe(ctx context.Context, state string) Status {
	if state != "configured" {
		return StatusDisconnected
	}
	if err := p.resolver.Resolve(ctx, p.server, p.name); err != nil {
		log.Debugf("connectivity: probe of %s via %s failed: %v", p.name, p.server, err)
		return StatusLAN
	}
	return StatusInternet
}
