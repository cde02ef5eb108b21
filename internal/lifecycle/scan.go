package lifecycle

import (
	"context"
	"strings"

	"github.com/netcfgd/netcfgd/internal/config"
	neterrors "github.com/netcfgd/netcfgd/internal/errors"
)

// Scan triggers a wifi scan on ifname through wpa_cli and returns the
// SSIDs of the visible networks. The interface must be running and
// declared as wifi; the supplicant started by the apply plan owns the
// control socket wpa_cli talks to.
func (m *Manager) Scan(ctx context.Context, ifname string) ([]string, error) {
	eng, ok := m.Engine(ifname)
	if !ok {
		return nil, neterrors.NewScanFailureError("interface "+ifname+" is not running", nil)
	}
	if eng.Configuration().Type != config.TechnologyWifi {
		return nil, neterrors.NewScanFailureError("scanning requires a wifi interface", nil)
	}

	wpaCli := m.opts.Get("wpa_cli")
	if wpaCli == "" {
		return nil, neterrors.NewMissingOptionError("wpa_cli")
	}

	if _, err := m.launcher.RunOutput(ctx, wpaCli, "-i", ifname, "scan"); err != nil {
		return nil, neterrors.NewScanFailureError("failed to trigger scan on "+ifname, err)
	}
	out, err := m.launcher.RunOutput(ctx, wpaCli, "-i", ifname, "scan_results")
	if err != nil {
		return nil, neterrors.NewScanFailureError("failed to read scan results on "+ifname, err)
	}

	return parseScanResults(out), nil
}

// parseScanResults extracts the SSID column from wpa_cli scan_results
// output. The format is one header line followed by tab-separated rows:
//
//	bssid / frequency / signal level / flags / ssid
//	aa:bb:cc:dd:ee:ff	2412	-54	[WPA2-PSK-CCMP][ESS]	homenet
//
// Hidden networks report an empty SSID and are skipped; duplicates
// (multiple BSSIDs of one network) are collapsed, first occurrence wins.
func parseScanResults(out string) []string {
	seen := make(map[string]struct{})
	ssids := []string{}

	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "bssid") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			continue
		}
		ssid := strings.TrimSpace(fields[4])
		if ssid == "" {
			continue
		}
		if _, ok := seen[ssid]; ok {
			continue
		}
		seen[ssid] = struct{}{}
		ssids = append(ssids, ssid)
	}
	return ssids
}
