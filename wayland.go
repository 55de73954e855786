package main

import (
	"fmt"
	"sync"

	"github.com/rajveermalviya/go-wayland/wayland/client"

	"github.com/rafaelrc7/wayland-pipewire-idle-inhibit/idleinhibit"
)

// WaylandInhibitor drives the zwp_idle_inhibit_manager_v1 protocol. It owns
// a bare surface the inhibitor object is attached to. A compositor without
// the global fails construction; the backend is then disabled for the whole
// process since compositor capabilities are static for a session.
type WaylandInhibitor struct {
	display    *client.Display
	registry   *client.Registry
	compositor *client.Compositor
	surface    *client.Surface
	manager    *idleinhibit.IdleInhibitManagerV1
	inhibitor  *idleinhibit.IdleInhibitorV1

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewWaylandInhibitor() (*WaylandInhibitor, error) {
	display, err := client.Connect("")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Wayland display: %w", err)
	}

	registry, err := display.GetRegistry()
	if err != nil {
		display.Context().Close()
		return nil, err
	}

	w := &WaylandInhibitor{
		display:  display,
		registry: registry,
	}

	if err := w.initialize(); err != nil {
		display.Context().Close()
		return nil, err
	}

	w.startEventLoop()

	return w, nil
}

func (w *WaylandInhibitor) Name() string { return "wayland" }

func (w *WaylandInhibitor) initialize() error {
	var compositorName, compositorVersion uint32
	var managerName, managerVersion uint32

	w.registry.SetGlobalHandler(func(e client.RegistryGlobalEvent) {
		switch e.Interface {
		case "wl_compositor":
			compositorName = e.Name
			compositorVersion = e.Version
		case "zwp_idle_inhibit_manager_v1":
			managerName = e.Name
			managerVersion = e.Version
		}
	})

	// Perform roundtrips to ensure all global handlers are called
	w.displayRoundTrip()
	w.displayRoundTrip()

	if compositorName == 0 {
		return fmt.Errorf("failed to find wl_compositor interface")
	}
	if managerName == 0 {
		return fmt.Errorf("compositor does not support zwp_idle_inhibit_manager_v1")
	}

	w.compositor = client.NewCompositor(w.display.Context())
	if err := w.registry.Bind(compositorName, "wl_compositor", compositorVersion, w.compositor); err != nil {
		return fmt.Errorf("failed to bind compositor: %w", err)
	}

	w.manager = idleinhibit.NewIdleInhibitManagerV1(w.display.Context())
	if err := w.registry.Bind(managerName, "zwp_idle_inhibit_manager_v1", managerVersion, w.manager); err != nil {
		return fmt.Errorf("failed to bind idle inhibit manager: %w", err)
	}

	surface, err := w.compositor.CreateSurface()
	if err != nil {
		return fmt.Errorf("failed to create surface: %w", err)
	}
	w.surface = surface

	return nil
}

func (w *WaylandInhibitor) displayRoundTrip() {
	callback, err := w.display.Sync()
	if err != nil {
		lg.Error("unable to get sync callback", "error", err.Error())
		return
	}
	defer func() {
		if err2 := callback.Destroy(); err2 != nil {
			lg.Error("unable to destroy callback", "error", err2.Error())
		}
	}()

	done := false
	callback.SetDoneHandler(func(_ client.CallbackDoneEvent) {
		done = true
	})

	for !done {
		w.display.Context().Dispatch()
	}
}

// Apply creates or destroys the protocol inhibitor object. Idempotent.
func (w *WaylandInhibitor) Apply(inhibit bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if inhibit {
		if w.inhibitor != nil {
			return nil
		}
		inhibitor, err := w.manager.CreateInhibitor(w.surface)
		if err != nil {
			return fmt.Errorf("failed to create idle inhibitor: %w", err)
		}
		w.inhibitor = inhibitor
		lg.Info("idle inhibitor ENABLED", "backend", w.Name())
		return nil
	}

	if w.inhibitor == nil {
		return nil
	}
	if err := w.inhibitor.Destroy(); err != nil {
		w.inhibitor = nil
		return fmt.Errorf("failed to destroy idle inhibitor: %w", err)
	}
	w.inhibitor = nil
	lg.Info("idle inhibitor DISABLED", "backend", w.Name())
	return nil
}

func (w *WaylandInhibitor) startEventLoop() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	go func() {
		for {
			select {
			case <-w.stopCh:
				return
			default:
				w.display.Context().Dispatch()
			}
		}
	}()
}

func (w *WaylandInhibitor) stopEventLoop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	close(w.stopCh)
	w.running = false
}

func (w *WaylandInhibitor) Close() {
	w.stopEventLoop()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.inhibitor != nil {
		if err := w.inhibitor.Destroy(); err != nil {
			lg.Error("failed to destroy idle inhibitor", "error", err.Error())
		}
		w.inhibitor = nil
	}
	if w.manager != nil {
		if err := w.manager.Destroy(); err != nil {
			lg.Error("failed to destroy idle inhibit manager", "error", err.Error())
		}
	}
	w.display.Context().Close()
}
