package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

const (
	pwNodeType = "PipeWire:Interface:Node"
	pwLinkType = "PipeWire:Interface:Link"
)

// PipeWireMonitor streams the live object graph out of `pw-dump --monitor`
// and translates it into GraphEvents. The subprocess is the audio-server
// transport; if it dies the daemon cannot observe playback anymore and
// reports that on Done.
type PipeWireMonitor struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	events chan GraphEvent
	done   chan error
	seen   map[uint32]ObjectKind
}

func NewPipeWireMonitor() (*PipeWireMonitor, error) {
	cmd := exec.Command("pw-dump", "--monitor", "--no-colors")
	// Tie the child to our lifetime so a crashed daemon does not leave a
	// monitor process behind.
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: unix.SIGTERM}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start pw-dump, is PipeWire installed? %w", err)
	}

	m := &PipeWireMonitor{
		cmd:    cmd,
		stdout: stdout,
		events: make(chan GraphEvent, 64),
		done:   make(chan error, 1),
		seen:   make(map[uint32]ObjectKind),
	}

	go m.run()

	lg.Debug("pw-dump monitor started", "pid", cmd.Process.Pid)
	return m, nil
}

func (m *PipeWireMonitor) Events() <-chan GraphEvent { return m.events }

// Done reports the terminal error of the monitor stream.
func (m *PipeWireMonitor) Done() <-chan error { return m.done }

func (m *PipeWireMonitor) Close() {
	if m.cmd.Process != nil {
		if err := m.cmd.Process.Signal(unix.SIGTERM); err != nil {
			lg.Debug("failed to signal pw-dump", "error", err.Error())
		}
	}
	m.stdout.Close()
}

func (m *PipeWireMonitor) run() {
	dec := json.NewDecoder(m.stdout)
	for {
		// pw-dump --monitor emits one JSON array per change batch.
		var batch []pwObject
		if err := dec.Decode(&batch); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				m.done <- m.cmd.Wait()
			} else {
				m.done <- fmt.Errorf("failed to decode pw-dump stream: %w", err)
			}
			return
		}
		for _, obj := range batch {
			if ev, ok := m.translate(obj); ok {
				m.events <- ev
			}
		}
	}
}

// pwObject is one element of a pw-dump batch. Removed objects carry a null
// info.
type pwObject struct {
	ID   uint32          `json:"id"`
	Type string          `json:"type"`
	Info json.RawMessage `json:"info"`
}

type pwNodeInfo struct {
	State string         `json:"state"`
	Props map[string]any `json:"props"`
}

type pwLinkInfo struct {
	OutputNode *uint32 `json:"output-node-id"`
	OutputPort *uint32 `json:"output-port-id"`
	InputNode  *uint32 `json:"input-node-id"`
	InputPort  *uint32 `json:"input-port-id"`
}

func (m *PipeWireMonitor) translate(obj pwObject) (GraphEvent, bool) {
	if len(obj.Info) == 0 || string(obj.Info) == "null" {
		kind, ok := m.seen[obj.ID]
		if !ok {
			return GraphEvent{}, false
		}
		delete(m.seen, obj.ID)
		return GraphEvent{Op: OpRemove, Kind: kind, ID: obj.ID}, true
	}

	switch obj.Type {
	case pwNodeType:
		return m.translateNode(obj)
	case pwLinkType:
		return m.translateLink(obj)
	default:
		return GraphEvent{}, false
	}
}

func (m *PipeWireMonitor) translateNode(obj pwObject) (GraphEvent, bool) {
	var info pwNodeInfo
	if err := json.Unmarshal(obj.Info, &info); err != nil {
		lg.Debug("skipping malformed node object", "id", obj.ID, "error", err.Error())
		return GraphEvent{}, false
	}

	mediaClass := stringProp(info.Props, "media.class")

	kind := KindNode
	if strings.Contains(mediaClass, "Sink") {
		kind = KindSink
	}

	state := parseNodeState(info.State)
	props := &NodeProps{
		Name:  prettyNodeName(info.Props),
		State: &state,
	}
	if v, ok := lookupProp(info.Props, "application.name"); ok {
		props.AppName = &v
	}
	if v, ok := lookupProp(info.Props, "media.class"); ok {
		props.MediaClass = &v
	}
	if v, ok := lookupProp(info.Props, "media.role"); ok {
		props.MediaRole = &v
	}
	if v, ok := lookupProp(info.Props, "media.software"); ok {
		props.MediaSoftware = &v
	}

	return m.emitUpsert(kind, obj.ID, GraphEvent{Kind: kind, ID: obj.ID, Node: props}), true
}

func (m *PipeWireMonitor) translateLink(obj pwObject) (GraphEvent, bool) {
	var info pwLinkInfo
	if err := json.Unmarshal(obj.Info, &info); err != nil {
		lg.Debug("skipping malformed link object", "id", obj.ID, "error", err.Error())
		return GraphEvent{}, false
	}

	props := &LinkProps{
		OutputNode: info.OutputNode,
		OutputPort: info.OutputPort,
		InputNode:  info.InputNode,
		InputPort:  info.InputPort,
	}
	return m.emitUpsert(KindLink, obj.ID, GraphEvent{Kind: KindLink, ID: obj.ID, Link: props}), true
}

func (m *PipeWireMonitor) emitUpsert(kind ObjectKind, id uint32, ev GraphEvent) GraphEvent {
	if _, ok := m.seen[id]; ok {
		ev.Op = OpUpdate
	} else {
		ev.Op = OpAdd
	}
	m.seen[id] = kind
	return ev
}

// prettyNodeName picks the node name the way Helvum displays it, so filters
// written against what users see in a patchbay keep matching:
// description > nick > name.
func prettyNodeName(props map[string]any) *string {
	for _, key := range []string{"node.description", "node.nick", "node.name"} {
		if v, ok := lookupProp(props, key); ok {
			return &v
		}
	}
	return nil
}

func parseNodeState(state string) NodeState {
	switch state {
	case "running":
		return StateRunning
	case "suspended":
		return StateSuspended
	case "error":
		return StateError
	default:
		return StateIdle
	}
}

func lookupProp(props map[string]any, key string) (string, bool) {
	v, ok := props[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func stringProp(props map[string]any, key string) string {
	s, _ := lookupProp(props, key)
	return s
}
