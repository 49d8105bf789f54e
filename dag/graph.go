package dag

import "fmt"

// Edge is a pad-level link: Sink consumes what Source produces.
type Edge struct {
	Source PadID
	Sink   PadID
}

// Dependency is an element-level edge: To depends on From.
type Dependency struct {
	From ElementID
	To   ElementID
}

// LinkConflict is returned when a sink pad already has a different producer.
type LinkConflict struct {
	Sink      PadID
	Existing  PadID
	Requested PadID
}

func (c *LinkConflict) Error() string {
	return fmt.Sprintf("dag: sink pad %d already linked to %d, cannot link to %d", c.Sink, c.Existing, c.Requested)
}

// Graph is the link registry: each source pad maps to the sink pads it
// feeds and each sink pad has at most one producer.
type Graph struct {
	producer  map[PadID]PadID
	consumers map[PadID][]PadID
	edges     []Edge
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		producer:  make(map[PadID]PadID),
		consumers: make(map[PadID][]PadID),
	}
}

// Register adds an edge. Registering the same pair twice is a no-op.
// Returns a *LinkConflict if sink already has a different producer.
func (g *Graph) Register(src, sink PadID) error {
	if err := g.check(src, sink); err != nil {
		return err
	}
	g.add(src, sink)
	return nil
}

// Merge adds every edge of other. Nothing is added if any edge conflicts.
func (g *Graph) Merge(other *Graph) error {
	for _, e := range other.edges {
		if err := g.check(e.Source, e.Sink); err != nil {
			return err
		}
	}
	for _, e := range other.edges {
		g.add(e.Source, e.Sink)
	}
	return nil
}

func (g *Graph) check(src, sink PadID) error {
	if existing, ok := g.producer[sink]; ok && existing != src {
		return &LinkConflict{Sink: sink, Existing: existing, Requested: src}
	}
	return nil
}

func (g *Graph) add(src, sink PadID) {
	if _, ok := g.producer[sink]; ok {
		return
	}
	g.producer[sink] = src
	g.consumers[src] = append(g.consumers[src], sink)
	g.edges = append(g.edges, Edge{Source: src, Sink: sink})
}

// Producer returns the source pad feeding sink.
func (g *Graph) Producer(sink PadID) (PadID, bool) {
	src, ok := g.producer[sink]
	return src, ok
}

// Consumers returns the sink pads fed by src in link order.
func (g *Graph) Consumers(src PadID) []PadID {
	return append([]PadID(nil), g.consumers[src]...)
}

// Edges returns all edges in registration order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Len returns the number of edges.
func (g *Graph) Len() int { return len(g.edges) }

// Clone returns an independent copy of g.
func (g *Graph) Clone() *Graph {
	c := NewGraph()
	for _, e := range g.edges {
		c.add(e.Source, e.Sink)
	}
	return c
}

// Dependencies collapses pad edges into element edges using owner to map
// a pad to its element. Parallel pad edges between two elements yield a
// single dependency.
func (g *Graph) Dependencies(owner func(PadID) ElementID) []Dependency {
	seen := make(map[Dependency]bool, len(g.edges))
	deps := make([]Dependency, 0, len(g.edges))
	for _, e := range g.edges {
		d := Dependency{From: owner(e.Source), To: owner(e.Sink)}
		if seen[d] {
			continue
		}
		seen[d] = true
		deps = append(deps, d)
	}
	return deps
}
