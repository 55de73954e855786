package main

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
)

const (
	controlName  = "com.rafaelrc.WaylandPipewireIdleInhibit"
	controlPath  = "/com/rafaelrc/WaylandPipewireIdleInhibit"
	controlIface = "com.rafaelrc.WaylandPipewireIdleInhibit"
)

// propertyStore is the slice of prop.Properties the service publishes
// through. SetMust emits PropertiesChanged on the bus.
type propertyStore interface {
	GetMust(iface, property string) interface{}
	SetMust(iface, property string, v interface{})
}

// ControlService exposes the daemon state on the session bus for status bars
// and scripts: the combined inhibit flag, the manual override (writable) and
// a toggle method. It holds no decision logic; writes are forwarded into the
// main loop and the loop publishes results back. PropertiesChanged signals
// are emitted by the prop layer on every value change.
type ControlService struct {
	conn    *dbus.Conn
	props   propertyStore
	request func(ControlRequest)
}

func NewControlService(requestFunc func(ControlRequest)) (*ControlService, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	reply, err := conn.RequestName(controlName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return nil, fmt.Errorf("bus name %s already taken, is another instance running?", controlName)
	}

	svc := &ControlService{
		conn:    conn,
		request: requestFunc,
	}

	propsSpec := map[string]map[string]*prop.Prop{
		controlIface: {
			"IsIdleInhibited": {
				Value:    false,
				Writable: false,
				Emit:     prop.EmitTrue,
			},
			"ManualInhibit": {
				Value:    false,
				Writable: true,
				Emit:     prop.EmitTrue,
				Callback: svc.onManualWrite,
			},
		},
	}
	props, err := prop.Export(conn, controlPath, propsSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to export properties: %w", err)
	}
	svc.props = props

	if err := conn.Export(svc, controlPath, controlIface); err != nil {
		return nil, fmt.Errorf("failed to export control object: %w", err)
	}

	node := &introspect.Node{
		Name: controlPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:    controlIface,
				Methods: []introspect.Method{{Name: "ToggleManualInhibit"}},
				Properties: []introspect.Property{
					{Name: "IsIdleInhibited", Type: "b", Access: "read"},
					{Name: "ManualInhibit", Type: "b", Access: "readwrite"},
				},
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), controlPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return nil, fmt.Errorf("failed to export introspection: %w", err)
	}

	lg.Debug("listening on D-Bus", "name", controlName, "path", controlPath)
	return svc, nil
}

// ToggleManualInhibit flips the manual override.
func (c *ControlService) ToggleManualInhibit() *dbus.Error {
	lg.Debug("D-Bus ToggleManualInhibit called")
	c.request(ManualToggle)
	return nil
}

func (c *ControlService) onManualWrite(change *prop.Change) *dbus.Error {
	value, ok := change.Value.(bool)
	if !ok {
		return dbus.MakeFailedError(fmt.Errorf("ManualInhibit expects a boolean"))
	}
	lg.Debug("D-Bus ManualInhibit written", "value", value)
	if value {
		c.request(ManualOn)
	} else {
		c.request(ManualOff)
	}
	return nil
}

// Publish updates the exposed properties from the decision engine's state.
// Unchanged values are left alone so no redundant PropertiesChanged signal
// goes out.
func (c *ControlService) Publish(manual, combined bool) {
	if cur, ok := c.props.GetMust(controlIface, "ManualInhibit").(bool); !ok || cur != manual {
		c.props.SetMust(controlIface, "ManualInhibit", manual)
	}
	if cur, ok := c.props.GetMust(controlIface, "IsIdleInhibited").(bool); !ok || cur != combined {
		c.props.SetMust(controlIface, "IsIdleInhibited", combined)
	}
}

func (c *ControlService) Close() {
	if _, err := c.conn.ReleaseName(controlName); err != nil {
		lg.Debug("failed to release bus name", "error", err.Error())
	}
}
