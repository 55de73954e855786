package main

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	screensaverService = "org.freedesktop.ScreenSaver"
	screensaverPath    = "/org/freedesktop/ScreenSaver"
	screensaverIface   = "org.freedesktop.ScreenSaver"

	inhibitReason = "Media is being played"
)

// ScreenSaverInhibitor drives the org.freedesktop.ScreenSaver desktop
// service, keeping the cookie its Inhibit call hands out. The service may
// appear after the daemon starts, so a failed call is never cached as a
// permanent failure; the next rising edge retries.
type ScreenSaverInhibitor struct {
	conn   *dbus.Conn
	cookie uint32
	held   bool
}

func NewScreenSaverInhibitor() (*ScreenSaverInhibitor, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &ScreenSaverInhibitor{conn: conn}, nil
}

func (s *ScreenSaverInhibitor) Name() string { return "screensaver" }

// Apply calls Inhibit or UnInhibit on the remote service. Idempotent.
func (s *ScreenSaverInhibitor) Apply(inhibit bool) error {
	obj := s.conn.Object(screensaverService, screensaverPath)

	if inhibit {
		if s.held {
			return nil
		}
		call := obj.Call(screensaverIface+".Inhibit", 0, appName, inhibitReason)
		if call.Err != nil {
			return fmt.Errorf("ScreenSaver.Inhibit failed: %w", call.Err)
		}
		if err := call.Store(&s.cookie); err != nil {
			return fmt.Errorf("ScreenSaver.Inhibit returned unexpected reply: %w", err)
		}
		s.held = true
		lg.Info("idle inhibitor ENABLED", "backend", s.Name(), "cookie", s.cookie)
		return nil
	}

	if !s.held {
		return nil
	}
	cookie := s.cookie
	// The cookie is gone either way; a dead service cannot honor it later.
	s.held = false
	s.cookie = 0
	if call := obj.Call(screensaverIface+".UnInhibit", 0, cookie); call.Err != nil {
		return fmt.Errorf("ScreenSaver.UnInhibit failed: %w", call.Err)
	}
	lg.Info("idle inhibitor DISABLED", "backend", s.Name())
	return nil
}
