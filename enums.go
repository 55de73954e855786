package main

import (
	"strconv"
)

func (t NodeState) String() string {
	switch t {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateError:
		return "error"
	default:
		return strconv.Itoa(int(t))
	}
}

func (t GraphOp) String() string {
	switch t {
	case OpAdd:
		return "add"
	case OpUpdate:
		return "update"
	case OpRemove:
		return "remove"
	default:
		return strconv.Itoa(int(t))
	}
}

func (t ObjectKind) String() string {
	switch t {
	case KindNode:
		return "node"
	case KindSink:
		return "sink"
	case KindLink:
		return "link"
	default:
		return strconv.Itoa(int(t))
	}
}

func (t ControlRequest) String() string {
	switch t {
	case ManualOn:
		return "ManualOn"
	case ManualOff:
		return "ManualOff"
	case ManualToggle:
		return "ManualToggle"
	default:
		return strconv.Itoa(int(t))
	}
}

func (t Phase) String() string {
	switch t {
	case PhaseIdle:
		return "Idle"
	case PhasePending:
		return "PendingInhibit"
	case PhaseInhibited:
		return "Inhibited"
	default:
		return strconv.Itoa(int(t))
	}
}

type NodeState int
type GraphOp int
type ObjectKind int
type ControlRequest int
type Phase int

const (
	StateIdle NodeState = iota
	StateRunning
	StateSuspended
	StateError
)

const (
	OpAdd GraphOp = iota
	OpUpdate
	OpRemove
)

const (
	KindNode ObjectKind = iota
	KindSink
	KindLink
)

const (
	ManualOn ControlRequest = iota
	ManualOff
	ManualToggle
)

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseInhibited
)
