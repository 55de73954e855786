package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rafaelrc7/wayland-pipewire-idle-inhibit/logger"
)

var lg = logger.Slog

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := LoadSettings(args)
	if err != nil {
		lg.Error("Failed to load settings", "error", err)
		return 1
	}

	if cfg.Quiet {
		logger.SetLevel(slog.LevelError + 4)
	} else {
		logger.SetLogLevel(cfg.Verbosity)
	}

	backends := setupBackends(cfg)
	defer closeBackends(backends)

	monitor, err := NewPipeWireMonitor()
	if err != nil {
		lg.Error("Failed to start PipeWire monitor", "error", err)
		return 1
	}
	defer monitor.Close()

	graph := NewGraph(cfg.SinkWhitelist, cfg.NodeBlacklist)
	state := NewInhibitState(cfg.MediaMinimumDuration)

	// Buffered so manual-override requests arriving while the loop is busy
	// with another event are queued, never dropped.
	controlRequests := make(chan ControlRequest, 16)
	control, err := NewControlService(func(req ControlRequest) {
		controlRequests <- req
	})
	if err != nil {
		lg.Error("Failed to export D-Bus control service", "error", err)
		return 1
	}
	defer control.Close()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	apply := func(tr Transition) {
		if tr.Changed {
			applyBackends(backends, tr.Combined)
		}
		control.Publish(state.Manual(), state.Combined())
	}

	lg.Info("Started", "wayland", cfg.Wayland, "dbus", cfg.DBus, "dry-run", cfg.DryRun,
		"media-minimum-duration", cfg.MediaMinimumDuration)

	for {
		select {
		case ev := <-monitor.Events():
			changed, playing := graph.Apply(ev)
			if changed {
				apply(state.SetPlaying(playing))
			}
		case te := <-state.TimerC():
			apply(state.TimerFired(te))
		case req := <-controlRequests:
			switch req {
			case ManualOn:
				apply(state.SetManual(true))
			case ManualOff:
				apply(state.SetManual(false))
			case ManualToggle:
				apply(state.ToggleManual())
			}
		case err := <-monitor.Done():
			lg.Error("PipeWire monitor exited", "error", err)
			releaseBackends(backends)
			return 1
		case sig := <-signalChannel:
			lg.Info("Got shutdown signal", "signal", sig)
			releaseBackends(backends)
			return 0
		}
	}
}

// setupBackends builds the enabled backends. A backend whose constructor
// fails is disabled for the whole process (compositor capabilities and bus
// availability are static for a session); the daemon keeps running with
// whatever remains.
func setupBackends(cfg *Settings) []IdleInhibitor {
	if cfg.DryRun {
		return []IdleInhibitor{&DryRunInhibitor{}}
	}
	var backends []IdleInhibitor
	if cfg.Wayland {
		if wl, err := NewWaylandInhibitor(); err != nil {
			lg.Warn("Wayland idle inhibitor unavailable, continuing without it", "error", err)
		} else {
			backends = append(backends, wl)
		}
	}
	if cfg.DBus {
		if ss, err := NewScreenSaverInhibitor(); err != nil {
			lg.Warn("ScreenSaver idle inhibitor unavailable, continuing without it", "error", err)
		} else {
			backends = append(backends, ss)
		}
	}
	if len(backends) == 0 {
		lg.Warn("No idle inhibitor backend active, only logging state changes")
	}
	return backends
}

func applyBackends(backends []IdleInhibitor, inhibit bool) {
	if inhibit {
		lg.Info("Idle inhibit enabled")
	} else {
		lg.Info("Idle inhibit disabled")
	}
	for _, b := range backends {
		if err := b.Apply(inhibit); err != nil {
			lg.Error("Failed to apply idle inhibitor state", "backend", b.Name(), "error", err)
		}
	}
}

// releaseBackends makes sure no inhibition outlives the daemon.
func releaseBackends(backends []IdleInhibitor) {
	for _, b := range backends {
		if err := b.Apply(false); err != nil {
			lg.Error("Failed to release idle inhibitor", "backend", b.Name(), "error", err)
		}
	}
}

func closeBackends(backends []IdleInhibitor) {
	for _, b := range backends {
		if closer, ok := b.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}
