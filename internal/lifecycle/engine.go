package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/netcfgd/netcfgd/internal/compiler"
	"github.com/netcfgd/netcfgd/internal/config"
	"github.com/netcfgd/netcfgd/internal/exec"
	"github.com/netcfgd/netcfgd/internal/log"
	"github.com/netcfgd/netcfgd/internal/registry"
)

// State is the lifecycle state of a supervised interface.
type State string

const (
	StateUnconfigured  State = "unconfigured"
	StateCompiling     State = "compiling"
	StateApplying      State = "applying"
	StateConfigured    State = "configured"
	StateRetryWait     State = "retry_wait"
	StateUnconfiguring State = "unconfiguring"
	StateFailed        State = "failed"
)

// Settings holds the retry policy for failed applies.
type Settings struct {
	MaxRetries   int
	RetryBackoff time.Duration
	MaxBackoff   time.Duration
}

// InternetSharer sets up and removes NAT masquerading through an uplink
// interface. Implemented by the sharing package; nil disables the feature.
type InternetSharer interface {
	Enable(uplink string) error
	Disable(uplink string) error
}

// errSuperseded aborts an in-flight apply when a newer configure request
// arrives or the engine is stopping.
var errSuperseded = errors.New("apply superseded")

// Engine is the per-interface lifecycle state machine. It exclusively
// owns the currently-applied RawConfig and the retry counter; requests
// against one interface are processed strictly sequentially by its
// engine goroutine. Status becomes observable only through registry writes.
type Engine struct {
	ifname   string
	opts     *config.Options
	reg      *registry.Registry
	launcher exec.Launcher
	settings Settings
	sharer   InternetSharer

	mu       sync.Mutex
	state    State
	declared *config.InterfaceConfig
	pending  *config.InterfaceConfig

	kick     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	done     chan struct{}

	// Owned by the engine goroutine; never touched by any other instance.
	applied      *compiler.RawConfig
	sharedUplink string
}

func newEngine(ifname string, opts *config.Options, reg *registry.Registry,
	launcher exec.Launcher, settings Settings, sharer InternetSharer) *Engine {

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		ifname:   ifname,
		opts:     opts,
		reg:      reg,
		launcher: launcher,
		settings: settings,
		sharer:   sharer,
		state:    StateUnconfigured,
		kick:     make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go e.run()
	return e
}

// Configure submits a fresh declarative configuration. It returns
// immediately; compilation and apply happen asynchronously and any later
// failure is surfaced through the registry, not to this caller. A request
// arriving mid-apply supersedes the in-flight attempt.
func (e *Engine) Configure(cfg *config.InterfaceConfig) {
	e.mu.Lock()
	e.pending = cfg
	e.mu.Unlock()

	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// Stop tears down the applied configuration and terminates the engine
// goroutine. Used only on deliberate process teardown, never on
// reconfiguration.
func (e *Engine) Stop() {
	e.stopOnce.Do(e.cancel)
	<-e.done
}

// Configuration returns the last accepted declarative configuration, or
// an empty configuration if none was ever submitted.
func (e *Engine) Configuration() *config.InterfaceConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.declared == nil {
		return &config.InterfaceConfig{Name: e.ifname}
	}
	return e.declared
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) run() {
	defer close(e.done)

	e.publishState(StateUnconfigured)

	for {
		select {
		case <-e.ctx.Done():
			e.teardown()
			e.publishState(StateUnconfigured)
			return
		case <-e.kick:
			for {
				cfg := e.takePending()
				if cfg == nil {
					break
				}
				e.configureCycle(cfg)
			}
		}
	}
}

func (e *Engine) takePending() *config.InterfaceConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	cfg := e.pending
	e.pending = nil
	if cfg != nil {
		e.declared = cfg
	}
	return cfg
}

func (e *Engine) hasPending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending != nil
}

// configureCycle drives one declarative configuration through teardown,
// compile and apply, retrying failed applies with exponential backoff up
// to the configured budget.
func (e *Engine) configureCycle(cfg *config.InterfaceConfig) {
	for attempt := 0; ; attempt++ {
		// Strict ordering: the previous generation's down commands run
		// to completion before any new up command is issued.
		e.teardown()

		e.publishState(StateCompiling)
		raw, err := compiler.Compile(e.ifname, cfg, e.opts)
		if err != nil {
			log.Errorf("%s: compile failed: %v", e.ifname, err)
			e.publishError(err)
			e.publishState(StateFailed)
			return
		}
		e.reg.Put(statusPath(e.ifname, "type"), string(raw.Technology))

		e.publishState(StateApplying)
		err = e.apply(raw)
		if err == nil {
			e.applied = raw
			e.enableSharing(cfg)
			e.publishRetries(0)
			e.publishError(nil)
			e.publishState(StateConfigured)
			log.Infof("%s: configured", e.ifname)
			return
		}
		if errors.Is(err, errSuperseded) {
			log.Debugf("%s: apply superseded", e.ifname)
			return
		}

		retries := attempt + 1
		e.publishRetries(retries)
		e.publishError(err)

		if retries >= e.settings.MaxRetries {
			log.Errorf("%s: giving up after %d attempt(s): %v", e.ifname, retries, err)
			e.publishState(StateFailed)
			return
		}

		e.publishState(StateRetryWait)
		log.Warnf("%s: apply failed (attempt %d): %v", e.ifname, retries, err)
		if !e.waitBackoff(attempt) {
			return
		}
	}
}

// apply materializes the plan's files and runs its up commands in order.
// An up command failure aborts the remaining commands and rolls back via
// the down commands before the error is returned for retry scheduling.
func (e *Engine) apply(raw *compiler.RawConfig) error {
	if err := e.materialize(raw); err != nil {
		return err
	}

	for _, cmd := range raw.UpCmds {
		if e.ctx.Err() != nil || e.hasPending() {
			e.runDownCmds(raw)
			return errSuperseded
		}
		if err := e.launcher.Run(e.ctx, cmd.Program, cmd.Args...); err != nil {
			log.Errorf("%s: up command failed [%s]: %v", e.ifname, cmd, err)
			e.runDownCmds(raw)
			return err
		}
	}
	return nil
}

// materialize writes the plan's files, overwriting earlier generations.
func (e *Engine) materialize(raw *compiler.RawConfig) error {
	for _, f := range raw.Files {
		if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(f.Path, []byte(f.Content), 0644); err != nil {
			return err
		}
	}
	return nil
}

// teardown undoes the currently-applied RawConfig, if any. Teardown is
// best-effort: individual command failures are logged and never abort
// the remaining commands.
func (e *Engine) teardown() {
	if e.applied == nil {
		return
	}

	e.publishState(StateUnconfiguring)
	e.disableSharing()
	e.runDownCmds(e.applied)

	for _, path := range e.applied.CleanupPaths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warnf("%s: failed to remove %s: %v", e.ifname, path, err)
		}
	}
	e.applied = nil
}

// runDownCmds must still work after the engine context is canceled,
// since Stop tears down through this path.
func (e *Engine) runDownCmds(raw *compiler.RawConfig) {
	for _, cmd := range raw.DownCmds {
		if err := e.launcher.Run(context.Background(), cmd.Program, cmd.Args...); err != nil {
			log.Warnf("%s: down command failed [%s]: %v", e.ifname, cmd, err)
		}
	}
}

// waitBackoff sleeps for the exponential backoff of the given attempt.
// It returns false when the wait was cut short by a stop or a newer
// configure request.
func (e *Engine) waitBackoff(attempt int) bool {
	backoff := e.settings.RetryBackoff << uint(attempt)
	if backoff > e.settings.MaxBackoff || backoff <= 0 {
		backoff = e.settings.MaxBackoff
	}

	timer := time.NewTimer(backoff)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-e.ctx.Done():
		return false
	case <-e.kick:
		// A fresh configure request supersedes the retry.
		return false
	}
}

func (e *Engine) enableSharing(cfg *config.InterfaceConfig) {
	if e.sharer == nil || !cfg.ShareInternet || cfg.Uplink == "" {
		return
	}
	if err := e.sharer.Enable(cfg.Uplink); err != nil {
		log.Warnf("%s: failed to enable internet sharing via %s: %v", e.ifname, cfg.Uplink, err)
		return
	}
	e.sharedUplink = cfg.Uplink
}

func (e *Engine) disableSharing() {
	if e.sharer == nil || e.sharedUplink == "" {
		return
	}
	if err := e.sharer.Disable(e.sharedUplink); err != nil {
		log.Warnf("%s: failed to disable internet sharing via %s: %v", e.ifname, e.sharedUplink, err)
	}
	e.sharedUplink = ""
}

func statusPath(ifname, key string) registry.Path {
	return registry.Path{"interface", ifname, key}
}

func (e *Engine) publishState(state State) {
	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
	e.reg.Put(statusPath(e.ifname, "state"), string(state))
}

func (e *Engine) publishRetries(n int) {
	e.reg.Put(statusPath(e.ifname, "retries"), n)
}

func (e *Engine) publishError(err error) {
	if err == nil {
		e.reg.Delete(statusPath(e.ifname, "error"))
		return
	}
	e.reg.Put(statusPath(e.ifname, "error"), err.Error())
}
