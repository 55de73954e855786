package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string         { return &s }
func u32Ptr(v uint32) *uint32         { return &v }
func statePtr(s NodeState) *NodeState { return &s }

func nodeEvent(op GraphOp, id uint32, name string, state NodeState) GraphEvent {
	return GraphEvent{
		Op:   op,
		Kind: KindNode,
		ID:   id,
		Node: &NodeProps{Name: strPtr(name), State: statePtr(state)},
	}
}

func sinkEvent(op GraphOp, id uint32, name string) GraphEvent {
	return GraphEvent{
		Op:   op,
		Kind: KindSink,
		ID:   id,
		Node: &NodeProps{Name: strPtr(name)},
	}
}

func linkEvent(op GraphOp, id, output, input uint32) GraphEvent {
	return GraphEvent{
		Op:   op,
		Kind: KindLink,
		ID:   id,
		Link: &LinkProps{OutputNode: u32Ptr(output), InputNode: u32Ptr(input)},
	}
}

func TestGraph_RunningNodeStartsPlayback(t *testing.T) {
	g := NewGraph(nil, nil)

	changed, playing := g.Apply(nodeEvent(OpAdd, 40, "mpv", StateIdle))
	assert.False(t, changed)
	assert.False(t, playing)

	changed, playing = g.Apply(nodeEvent(OpUpdate, 40, "mpv", StateRunning))
	assert.True(t, changed)
	assert.True(t, playing)
}

func TestGraph_EdgeTriggeredChangedFlag(t *testing.T) {
	g := NewGraph(nil, nil)

	g.Apply(nodeEvent(OpAdd, 40, "mpv", StateRunning))

	// Second running node keeps the signal high without another edge.
	changed, playing := g.Apply(nodeEvent(OpAdd, 41, "spotify", StateRunning))
	assert.False(t, changed)
	assert.True(t, playing)

	changed, playing = g.Apply(nodeEvent(OpUpdate, 40, "mpv", StateSuspended))
	assert.False(t, changed)
	assert.True(t, playing)

	changed, playing = g.Apply(nodeEvent(OpUpdate, 41, "spotify", StateIdle))
	assert.True(t, changed)
	assert.False(t, playing)
}

func TestGraph_EmptyWhitelistNeedsNoLink(t *testing.T) {
	g := NewGraph(nil, nil)

	_, playing := g.Apply(nodeEvent(OpAdd, 40, "mpv", StateRunning))
	assert.True(t, playing)
}

func TestGraph_WhitelistRequiresLinkedSink(t *testing.T) {
	whitelist := []SinkFilter{{Name: mustRegex(t, "^Headphones$")}}
	g := NewGraph(whitelist, nil)

	g.Apply(sinkEvent(OpAdd, 50, "Headphones"))
	g.Apply(sinkEvent(OpAdd, 51, "Speakers"))

	_, playing := g.Apply(nodeEvent(OpAdd, 40, "mpv", StateRunning))
	assert.False(t, playing, "running but unrouted node must not inhibit")

	_, playing = g.Apply(linkEvent(OpAdd, 60, 40, 51))
	assert.False(t, playing, "routed to a non-whitelisted sink")

	changed, playing := g.Apply(linkEvent(OpAdd, 61, 40, 50))
	assert.True(t, changed)
	assert.True(t, playing)
}

func TestGraph_BlacklistedNodeNeverInhibits(t *testing.T) {
	blacklist := []NodeFilter{{AppName: mustRegex(t, "^Mumble$")}}
	g := NewGraph(nil, blacklist)

	ev := GraphEvent{
		Op:   OpAdd,
		Kind: KindNode,
		ID:   40,
		Node: &NodeProps{
			Name:    strPtr("mumble out"),
			AppName: strPtr("Mumble"),
			State:   statePtr(StateRunning),
		},
	}
	_, playing := g.Apply(ev)
	assert.False(t, playing)

	// A second, non-blacklisted running node still inhibits.
	_, playing = g.Apply(nodeEvent(OpAdd, 41, "mpv", StateRunning))
	assert.True(t, playing)
}

func TestGraph_NodeRemovalDropsItsLinks(t *testing.T) {
	whitelist := []SinkFilter{{Name: mustRegex(t, "Headphones")}}
	g := NewGraph(whitelist, nil)

	g.Apply(sinkEvent(OpAdd, 50, "Headphones"))
	g.Apply(nodeEvent(OpAdd, 40, "mpv", StateRunning))
	_, playing := g.Apply(linkEvent(OpAdd, 60, 40, 50))
	assert.True(t, playing)

	changed, playing := g.Apply(GraphEvent{Op: OpRemove, ID: 40})
	assert.True(t, changed)
	assert.False(t, playing)
	assert.Empty(t, g.links)
}

func TestGraph_SinkRemovalDropsItsLinks(t *testing.T) {
	whitelist := []SinkFilter{{Name: mustRegex(t, "Headphones")}}
	g := NewGraph(whitelist, nil)

	g.Apply(nodeEvent(OpAdd, 40, "mpv", StateRunning))
	g.Apply(sinkEvent(OpAdd, 50, "Headphones"))
	g.Apply(linkEvent(OpAdd, 60, 40, 50))

	_, playing := g.Apply(GraphEvent{Op: OpRemove, ID: 50})
	assert.False(t, playing)
	assert.Empty(t, g.links)
}

func TestGraph_UnknownUpdateAndRemoveTolerated(t *testing.T) {
	g := NewGraph(nil, nil)

	changed, playing := g.Apply(nodeEvent(OpUpdate, 99, "ghost", StateRunning))
	assert.True(t, changed, "an update for an unseen id still creates the object")
	assert.True(t, playing)

	changed, _ = g.Apply(GraphEvent{Op: OpRemove, ID: 1234})
	assert.False(t, changed)
}

func TestGraph_LinkBeforeEndpointsOrderIndependent(t *testing.T) {
	whitelist := []SinkFilter{{Name: mustRegex(t, "Headphones")}}

	// The same final topology must yield the same signal regardless of the
	// order the server announces the pieces in.
	orders := map[string][]GraphEvent{
		"link-first": {
			linkEvent(OpAdd, 60, 40, 50),
			sinkEvent(OpAdd, 50, "Headphones"),
			nodeEvent(OpAdd, 40, "mpv", StateRunning),
		},
		"sink-first": {
			sinkEvent(OpAdd, 50, "Headphones"),
			nodeEvent(OpAdd, 40, "mpv", StateRunning),
			linkEvent(OpAdd, 60, 40, 50),
		},
		"node-first": {
			nodeEvent(OpAdd, 40, "mpv", StateRunning),
			linkEvent(OpAdd, 60, 40, 50),
			sinkEvent(OpAdd, 50, "Headphones"),
		},
	}

	for name, events := range orders {
		t.Run(name, func(t *testing.T) {
			g := NewGraph(whitelist, nil)
			var playing bool
			for _, ev := range events {
				_, playing = g.Apply(ev)
			}
			assert.True(t, playing)
		})
	}
}

func TestGraph_KindMigrationKeepsLinks(t *testing.T) {
	whitelist := []SinkFilter{{Name: mustRegex(t, "loopback")}}
	g := NewGraph(whitelist, nil)

	// Object 50 first shows up as a plain node, then a media.class update
	// reclassifies it as a sink. Links through it must survive.
	g.Apply(nodeEvent(OpAdd, 50, "loopback", StateIdle))
	g.Apply(nodeEvent(OpAdd, 40, "mpv", StateRunning))
	g.Apply(linkEvent(OpAdd, 60, 40, 50))

	_, playing := g.Apply(sinkEvent(OpUpdate, 50, "loopback"))
	assert.True(t, playing)
	assert.Len(t, g.links, 1)
	assert.Empty(t, g.nodes[50])
}

func TestGraph_PartialUpdateMergesProps(t *testing.T) {
	g := NewGraph(nil, nil)

	g.Apply(GraphEvent{
		Op:   OpAdd,
		Kind: KindNode,
		ID:   40,
		Node: &NodeProps{
			Name:    strPtr("mpv"),
			AppName: strPtr("mpv"),
			State:   statePtr(StateIdle),
		},
	})

	// A state-only update must keep the previously seen properties.
	g.Apply(GraphEvent{
		Op:   OpUpdate,
		Kind: KindNode,
		ID:   40,
		Node: &NodeProps{State: statePtr(StateRunning)},
	})

	node := g.nodes[40]
	assert.Equal(t, "mpv", node.AppName)
	assert.Equal(t, StateRunning, node.State)
}
