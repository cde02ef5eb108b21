// Package sharing manages NAT masquerading for interfaces declared
// with share_internet: traffic leaving through the uplink is
// masqueraded via a dedicated POSTROUTING chain.
package sharing

import (
	"fmt"
	"sync"

	"github.com/coreos/go-iptables/iptables"

	"github.com/netcfgd/netcfgd/internal/log"
)

// chainName is the NAT chain holding the masquerade rules.
const chainName = "NETCFGD_SHARE"

// IPTablesSharer implements lifecycle.InternetSharer on top of
// go-iptables. Enable/Disable calls are reference-counted per uplink so
// two shared interfaces behind one uplink do not fight over the rule.
type IPTablesSharer struct {
	mu      sync.Mutex
	ipt     *iptables.IPTables
	uplinks map[string]int
}

func NewIPTablesSharer() (*IPTablesSharer, error) {
	ipt, err := iptables.NewWithProtocol(iptables.ProtocolIPv4)
	if err != nil {
		return nil, fmt.Errorf("failed to create iptables: %w", err)
	}
	return &IPTablesSharer{ipt: ipt, uplinks: make(map[string]int)}, nil
}

// Enable installs a MASQUERADE rule for traffic leaving through uplink.
func (s *IPTablesSharer) Enable(uplink string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.uplinks[uplink] > 0 {
		s.uplinks[uplink]++
		return nil
	}

	if err := s.ensureChain(); err != nil {
		return err
	}
	rule := masqueradeRule(uplink)
	if err := s.ipt.AppendUnique("nat", chainName, rule...); err != nil {
		return fmt.Errorf("failed to add masquerade rule for %s: %w", uplink, err)
	}

	s.uplinks[uplink] = 1
	log.Infof("internet sharing enabled via %s", uplink)
	return nil
}

// Disable removes the MASQUERADE rule for uplink once its last user is
// gone. The chain itself stays linked; an empty chain is harmless.
func (s *IPTablesSharer) Disable(uplink string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.uplinks[uplink] == 0 {
		return nil
	}
	s.uplinks[uplink]--
	if s.uplinks[uplink] > 0 {
		return nil
	}
	delete(s.uplinks, uplink)

	rule := masqueradeRule(uplink)
	if err := s.ipt.DeleteIfExists("nat", chainName, rule...); err != nil {
		return fmt.Errorf("failed to remove masquerade rule for %s: %w", uplink, err)
	}

	log.Infof("internet sharing disabled via %s", uplink)
	return nil
}

// Teardown removes the chain and every rule in it.
func (s *IPTablesSharer) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ipt.DeleteIfExists("nat", "POSTROUTING", "-j", chainName); err != nil {
		log.Debugf("failed to unlink chain: %v", err)
	}
	if err := s.ipt.ClearChain("nat", chainName); err != nil {
		log.Debugf("failed to clear chain: %v", err)
	}
	if err := s.ipt.DeleteChain("nat", chainName); err != nil {
		log.Debugf("failed to delete chain: %v", err)
	}
	s.uplinks = make(map[string]int)
}

func (s *IPTablesSharer) ensureChain() error {
	if err := s.ipt.NewChain("nat", chainName); err != nil {
		if eerr, ok := err.(*iptables.Error); !(ok && eerr.ExitStatus() == 1) {
			return fmt.Errorf("failed to create chain: %w", err)
		}
	}
	if err := s.ipt.InsertUnique("nat", "POSTROUTING", 1, "-j", chainName); err != nil {
		return fmt.Errorf("failed to link chain: %w", err)
	}
	return nil
}

func masqueradeRule(uplink string) []string {
	return []string{"-o", uplink, "-j", "MASQUERADE"}
}
