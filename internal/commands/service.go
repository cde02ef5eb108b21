package commands

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/netcfgd/netcfgd/internal/api"
	"github.com/netcfgd/netcfgd/internal/config"
	"github.com/netcfgd/netcfgd/internal/connectivity"
	"github.com/netcfgd/netcfgd/internal/exec"
	"github.com/netcfgd/netcfgd/internal/lifecycle"
	"github.com/netcfgd/netcfgd/internal/log"
	"github.com/netcfgd/netcfgd/internal/netmon"
	"github.com/netcfgd/netcfgd/internal/registry"
	"github.com/netcfgd/netcfgd/internal/sharing"
)

func CreateServiceCommand() *ServiceCommand {
	sc := &ServiceCommand{
		fs: flag.NewFlagSet("service", flag.ExitOnError),
	}

	sc.fs.IntVar(&sc.MonitorInterval, "monitor-interval", 10, "Interval in seconds to resync the kernel link list")

	return sc
}

// ServiceCommand runs the daemon: the lifecycle engines, the link
// monitor, the connectivity prober and the REST API.
type ServiceCommand struct {
	fs              *flag.FlagSet
	ctx             *AppContext
	cfg             *config.Config
	MonitorInterval int

	reg    *registry.Registry
	mgr    *lifecycle.Manager
	mon    *netmon.Monitor
	prober *connectivity.Prober
	server *api.Server
}

func (s *ServiceCommand) Name() string {
	return s.fs.Name()
}

func (s *ServiceCommand) Init(args []string, ctx *AppContext) error {
	s.ctx = ctx

	if err := s.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	s.cfg = cfg

	s.reg = registry.New()
	s.mgr = lifecycle.NewManager(cfg.Options(), s.reg, &exec.SystemLauncher{},
		lifecycle.SettingsFromGeneral(cfg.General))

	return nil
}

func (s *ServiceCommand) Run() error {
	log.Infof("Starting netcfgd service...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	if sharer, err := sharing.NewIPTablesSharer(); err != nil {
		log.Warnf("iptables not available, internet sharing disabled: %v", err)
	} else {
		s.mgr.SetInternetSharer(sharer)
	}

	s.mon = netmon.New(s.reg, time.Duration(s.MonitorInterval)*time.Second)
	if err := s.mon.Start(); err != nil {
		log.Errorf("Failed to start link monitor: %v", err)
		log.Warnf("Service will continue without link state tracking")
		s.mon = nil
	}

	if conn := s.cfg.General.Connectivity; conn != nil && conn.Enable {
		interval := time.Duration(conn.IntervalSeconds) * time.Second
		s.prober = connectivity.NewProber(s.reg,
			connectivity.NewDNSResolver(5*time.Second),
			conn.ProbeServer, conn.ProbeName, interval)
		s.prober.Start()
	} else {
		log.Infof("Connectivity probing is disabled")
	}

	if s.cfg.General.APIListen != "" {
		s.server = api.NewServer(s.cfg.General.APIListen,
			api.NewHandler(s.mgr, s.reg, s.cfg.Options()))
		go func() {
			if err := s.server.Start(); err != nil {
				log.Errorf("API server failed: %v", err)
			}
		}()
	} else {
		log.Infof("REST API is disabled")
	}

	s.configureAll()

	log.Infof("Service started successfully.")
	log.Infof("Send SIGHUP to reload configuration")

	for sig := range sigChan {
		switch sig {
		case syscall.SIGHUP:
			log.Infof("Received SIGHUP signal, reloading configuration...")
			if err := s.reload(); err != nil {
				log.Errorf("Failed to reload configuration: %v", err)
			} else {
				log.Infof("Configuration reloaded successfully")
			}

		case syscall.SIGINT, syscall.SIGTERM:
			log.Infof("Received signal %v, shutting down...", sig)
			return s.shutdown()
		}
	}
	return nil
}

// configureAll submits every declared interface to its lifecycle engine.
func (s *ServiceCommand) configureAll() {
	for _, iface := range s.cfg.Interfaces {
		if err := s.mgr.Configure(iface.Name, iface); err != nil {
			log.Errorf("Failed to configure %s: %v", iface.Name, err)
		}
	}
}

func (s *ServiceCommand) reload() error {
	cfg, err := loadAndValidateConfigOrFail(s.ctx.ConfigPath)
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.configureAll()
	return nil
}

func (s *ServiceCommand) shutdown() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Stop(ctx); err != nil {
			log.Errorf("Failed to stop API server: %v", err)
		}
	}
	if s.prober != nil {
		s.prober.Stop()
	}
	if s.mon != nil {
		s.mon.Stop()
	}

	s.mgr.Stop()
	log.Infof("Service stopped")
	return nil
}
