package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/netcfgd/netcfgd/internal/compiler"
	"github.com/netcfgd/netcfgd/internal/config"
	"github.com/netcfgd/netcfgd/internal/lifecycle"
	"github.com/netcfgd/netcfgd/internal/registry"
)

// Handler serves the interface management endpoints.
type Handler struct {
	mgr  *lifecycle.Manager
	reg  *registry.Registry
	opts *config.Options
}

func NewHandler(mgr *lifecycle.Manager, reg *registry.Registry, opts *config.Options) *Handler {
	return &Handler{mgr: mgr, reg: reg, opts: opts}
}

// InterfaceStatus is the API view of one interface: its declarative
// configuration plus the registry status entries beneath its prefix.
type InterfaceStatus struct {
	Name   string                  `json:"name"`
	Config *config.InterfaceConfig `json:"config"`
	Status map[string]interface{}  `json:"status"`
}

func (h *Handler) status(ifname string) InterfaceStatus {
	status := make(map[string]interface{})
	for _, entry := range h.reg.GetByPrefix(registry.Path{"interface", ifname}) {
		if len(entry.Path) < 3 {
			continue
		}
		status[strings.Join(entry.Path[2:], ".")] = entry.Value
	}
	return InterfaceStatus{
		Name:   ifname,
		Config: h.mgr.GetConfiguration(ifname),
		Status: status,
	}
}

// GetInterfaces returns the status of every known interface.
func (h *Handler) GetInterfaces(w http.ResponseWriter, r *http.Request) {
	names := h.mgr.Interfaces()
	statuses := make([]InterfaceStatus, 0, len(names))
	for _, name := range names {
		statuses = append(statuses, h.status(name))
	}
	WriteJSON(w, http.StatusOK, statuses)
}

// GetInterface returns the status of a single interface.
func (h *Handler) GetInterface(w http.ResponseWriter, r *http.Request) {
	ifname := chi.URLParam(r, "ifname")
	for _, name := range h.mgr.Interfaces() {
		if name == ifname {
			WriteJSON(w, http.StatusOK, h.status(ifname))
			return
		}
	}
	WriteNotFound(w, "interface "+ifname)
}

// ConfigureInterface validates the submitted configuration with a
// dry-run compile and hands it to the lifecycle manager. The apply
// happens asynchronously; its outcome is visible through the status
// entries, so a successful submit answers 202.
func (h *Handler) ConfigureInterface(w http.ResponseWriter, r *http.Request) {
	ifname := chi.URLParam(r, "ifname")

	var cfg config.InterfaceConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		WriteInvalidRequest(w, "Invalid JSON: "+err.Error())
		return
	}
	cfg.Name = ifname

	if _, err := compiler.Compile(ifname, &cfg, h.opts); err != nil {
		WriteValidationError(w, "Configuration does not compile",
			map[string]interface{}{"reason": err.Error()})
		return
	}

	if err := h.mgr.Configure(ifname, &cfg); err != nil {
		WriteInternalError(w, err.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// ScanInterface triggers a wireless scan and returns the visible SSIDs.
func (h *Handler) ScanInterface(w http.ResponseWriter, r *http.Request) {
	ifname := chi.URLParam(r, "ifname")

	ssids, err := h.mgr.Scan(r.Context(), ifname)
	if err != nil {
		WriteError(w, http.StatusBadGateway, NewAPIError(ErrCodeScanFailed, err.Error()))
		return
	}
	WriteJSON(w, http.StatusOK, map[string][]string{"ssids": ssids})
}

// CheckHealth answers liveness probes.
func (h *Handler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
