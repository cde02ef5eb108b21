package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/netcfgd/netcfgd/internal/config"
	"github.com/netcfgd/netcfgd/internal/lifecycle"
	"github.com/netcfgd/netcfgd/internal/registry"
)

type noopLauncher struct{}

func (noopLauncher) Run(ctx context.Context, program string, args ...string) error {
	return nil
}

func (noopLauncher) RunOutput(ctx context.Context, program string, args ...string) (string, error) {
	return "", nil
}

func newTestServer(t *testing.T) (*Server, *registry.Registry) {
	t.Helper()

	opts := &config.Options{
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
	reg := registry.New()
	mgr := lifecycle.NewManager(opts, reg, noopLauncher{}, lifecycle.Settings{
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
		MaxBackoff:   5 * time.Millisecond,
	})
	t.Cleanup(mgr.Stop)

	return NewServer("127.0.0.1:0", NewHandler(mgr, reg, opts)), reg
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
}

func TestGetInterfacesEmpty(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/interfaces", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var statuses []InterfaceStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &statuses); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(statuses) != 0 {
		t.Errorf("statuses = %v, want empty", statuses)
	}
}

func TestConfigureInterface(t *testing.T) {
	s, reg := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/v1/interfaces/eth0",
		`{"type": "ethernet"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("configure status = %d, body %s", rec.Code, rec.Body.String())
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		if v, ok := reg.Get(registry.Path{"interface", "eth0", "state"}); ok && v == "configured" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("interface never became configured")
		}
		time.Sleep(2 * time.Millisecond)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/interfaces/eth0", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var status InterfaceStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if status.Name != "eth0" || status.Status["state"] != "configured" {
		t.Errorf("status = %+v", status)
	}
	if status.Config == nil || status.Config.Type != config.TechnologyEthernet {
		t.Errorf("config = %+v", status.Config)
	}
}

func TestConfigureInterfaceRejectsBadInput(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/v1/interfaces/eth0", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPut, "/api/v1/interfaces/eth0",
		`{"type": "token-ring"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad technology status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("error code = %s, want %s", resp.Error.Code, ErrCodeValidationFailed)
	}
}

func TestGetInterfaceNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/interfaces/eth9", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestScanRequiresWifiInterface(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/v1/interfaces/eth0",
		`{"type": "ethernet"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("configure status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/interfaces/eth0/scan", "")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("scan status = %d, want 502", rec.Code)
	}
}
