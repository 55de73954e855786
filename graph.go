package main

// Node is an audio stream endpoint tracked from the PipeWire graph.
type Node struct {
	ID            uint32
	Name          string
	AppName       string
	MediaClass    string
	MediaRole     string
	MediaSoftware string
	State         NodeState
}

// Sink is an audio output endpoint a node may be routed to.
type Sink struct {
	ID   uint32
	Name string
}

// Link routes a node's output into another node's input.
type Link struct {
	ID         uint32
	OutputNode uint32
	OutputPort uint32
	InputNode  uint32
	InputPort  uint32
}

// NodeProps carries the optional fields of a node add/update event. Nil
// fields were not present in the payload and leave the tracked value alone.
type NodeProps struct {
	Name          *string
	AppName       *string
	MediaClass    *string
	MediaRole     *string
	MediaSoftware *string
	State         *NodeState
}

// LinkProps carries the endpoint ids of a link add/update event.
type LinkProps struct {
	OutputNode *uint32
	OutputPort *uint32
	InputNode  *uint32
	InputPort  *uint32
}

// GraphEvent is one add/update/remove notification from the audio server.
// Kind is meaningless for removals; the tracker knows which map holds the id.
type GraphEvent struct {
	Op   GraphOp
	Kind ObjectKind
	ID   uint32
	Node *NodeProps
	Link *LinkProps
}

// Graph mirrors the live node/sink/link state of the audio server and
// derives the playback signal from it. It is owned by the main loop and is
// never mutated concurrently.
type Graph struct {
	nodes map[uint32]*Node
	sinks map[uint32]*Sink
	links map[uint32]*Link

	sinkWhitelist []SinkFilter
	nodeBlacklist []NodeFilter

	playing bool
}

func NewGraph(sinkWhitelist []SinkFilter, nodeBlacklist []NodeFilter) *Graph {
	return &Graph{
		nodes:         make(map[uint32]*Node),
		sinks:         make(map[uint32]*Sink),
		links:         make(map[uint32]*Link),
		sinkWhitelist: sinkWhitelist,
		nodeBlacklist: nodeBlacklist,
	}
}

// Apply mutates the graph with one event and recomputes the playback signal.
// changed is true only when the signal flipped, so downstream work is
// edge-triggered.
func (g *Graph) Apply(ev GraphEvent) (changed, playing bool) {
	switch ev.Op {
	case OpAdd, OpUpdate:
		g.upsert(ev)
	case OpRemove:
		g.remove(ev.ID)
	}

	playing = g.computePlaying()
	changed = playing != g.playing
	g.playing = playing
	return changed, playing
}

// Playing returns the last computed playback signal.
func (g *Graph) Playing() bool {
	return g.playing
}

func (g *Graph) upsert(ev GraphEvent) {
	switch ev.Kind {
	case KindNode:
		if ev.Node == nil {
			lg.Debug("node event without payload", "id", ev.ID, "op", ev.Op.String())
			return
		}
		// A media.class change may reclassify a sink as a plain node. Links
		// keep their endpoints; only removal drops them.
		if _, ok := g.sinks[ev.ID]; ok {
			delete(g.sinks, ev.ID)
		}
		node, ok := g.nodes[ev.ID]
		if !ok {
			if ev.Op == OpUpdate {
				lg.Debug("update for unknown node", "id", ev.ID)
			}
			node = &Node{ID: ev.ID}
			g.nodes[ev.ID] = node
		}
		node.merge(ev.Node)
	case KindSink:
		if ev.Node == nil {
			lg.Debug("sink event without payload", "id", ev.ID, "op", ev.Op.String())
			return
		}
		if _, ok := g.nodes[ev.ID]; ok {
			delete(g.nodes, ev.ID)
		}
		sink, ok := g.sinks[ev.ID]
		if !ok {
			if ev.Op == OpUpdate {
				lg.Debug("update for unknown sink", "id", ev.ID)
			}
			sink = &Sink{ID: ev.ID}
			g.sinks[ev.ID] = sink
		}
		if ev.Node.Name != nil {
			sink.Name = *ev.Node.Name
		}
	case KindLink:
		if ev.Link == nil {
			lg.Debug("link event without payload", "id", ev.ID, "op", ev.Op.String())
			return
		}
		link, ok := g.links[ev.ID]
		if !ok {
			if ev.Op == OpUpdate {
				lg.Debug("update for unknown link", "id", ev.ID)
			}
			link = &Link{ID: ev.ID}
			g.links[ev.ID] = link
		}
		link.merge(ev.Link)
	}
}

func (g *Graph) remove(id uint32) {
	if _, ok := g.nodes[id]; ok {
		delete(g.nodes, id)
		g.dropLinksFor(id)
		return
	}
	if _, ok := g.sinks[id]; ok {
		delete(g.sinks, id)
		g.dropLinksFor(id)
		return
	}
	if _, ok := g.links[id]; ok {
		delete(g.links, id)
		return
	}
	lg.Debug("remove for unknown object", "id", id)
}

// dropLinksFor removes links referencing a departed node or sink, so no
// dangling routing survives the object it pointed at.
func (g *Graph) dropLinksFor(id uint32) {
	for lid, l := range g.links {
		if l.OutputNode == id || l.InputNode == id {
			delete(g.links, lid)
		}
	}
}

// computePlaying derives the playback signal: some node is running, is not
// blacklisted, and, when a whitelist is configured, is linked to a
// whitelisted sink.
func (g *Graph) computePlaying() bool {
	for _, node := range g.nodes {
		if node.State != StateRunning {
			continue
		}
		if MatchesAnyNode(g.nodeBlacklist, node) {
			continue
		}
		if len(g.sinkWhitelist) == 0 {
			return true
		}
		if g.linkedToWhitelistedSink(node.ID) {
			return true
		}
	}
	return false
}

func (g *Graph) linkedToWhitelistedSink(nodeID uint32) bool {
	for _, l := range g.links {
		if l.OutputNode != nodeID {
			continue
		}
		sink, ok := g.sinks[l.InputNode]
		if !ok {
			continue
		}
		if MatchesAnySink(g.sinkWhitelist, sink.Name) {
			return true
		}
	}
	return false
}

func (n *Node) merge(p *NodeProps) {
	if p.Name != nil {
		n.Name = *p.Name
	}
	if p.AppName != nil {
		n.AppName = *p.AppName
	}
	if p.MediaClass != nil {
		n.MediaClass = *p.MediaClass
	}
	if p.MediaRole != nil {
		n.MediaRole = *p.MediaRole
	}
	if p.MediaSoftware != nil {
		n.MediaSoftware = *p.MediaSoftware
	}
	if p.State != nil {
		n.State = *p.State
	}
}

func (l *Link) merge(p *LinkProps) {
	if p.OutputNode != nil {
		l.OutputNode = *p.OutputNode
	}
	if p.OutputPort != nil {
		l.OutputPort = *p.OutputPort
	}
	if p.InputNode != nil {
		l.InputNode = *p.InputNode
	}
	if p.InputPort != nil {
		l.InputPort = *p.InputPort
	}
}
