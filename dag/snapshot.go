package dag

// Snapshot is a point-in-time view of a pipeline for tooling.
type Snapshot struct {
	Name     string        `json:"name"`
	State    string        `json:"state"`
	RunID    string        `json:"run_id,omitempty"`
	Tick     int           `json:"tick"`
	Elements []ElementInfo `json:"elements"`
	Links    []LinkInfo    `json:"links"`
	// Waves is empty while the graph cannot be scheduled.
	Waves [][]string `json:"waves,omitempty"`
}

// ElementInfo describes one element.
type ElementInfo struct {
	Name       string       `json:"name"`
	Role       string       `json:"role"`
	SourcePads []string     `json:"source_pads,omitempty"`
	SinkPads   []string     `json:"sink_pads,omitempty"`
	AtEOS      bool         `json:"at_eos,omitempty"`
	Stats      ElementStats `json:"stats"`
}

// LinkInfo is one pad-level link by full pad names.
type LinkInfo struct {
	Source string `json:"source"`
	Sink   string `json:"sink"`
}

// Snapshot returns the structure and progress of the pipeline. It is safe
// to call while Run is executing.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snap := Snapshot{
		Name:     p.name,
		State:    p.State().String(),
		RunID:    p.runID,
		Tick:     int(p.tick.Load()),
		Elements: make([]ElementInfo, 0, len(p.elements)),
		Links:    make([]LinkInfo, 0, p.graph.Len()),
	}

	for _, es := range p.elements {
		snap.Elements = append(snap.Elements, ElementInfo{
			Name:       es.name,
			Role:       es.role.String(),
			SourcePads: p.locals(es.src),
			SinkPads:   p.locals(es.sink),
			AtEOS:      es.role == RoleSink && es.atEOS.Load(),
			Stats:      es.snapshotStats(),
		})
	}
	for _, e := range p.graph.Edges() {
		snap.Links = append(snap.Links, LinkInfo{Source: p.pads[e.Source].name, Sink: p.pads[e.Sink].name})
	}

	waves := p.waves
	if waves == nil {
		nodes := make([]ElementID, len(p.elements))
		for i := range p.elements {
			nodes[i] = ElementID(i)
		}
		waves, _ = Schedule(nodes, p.graph.Dependencies(func(id PadID) ElementID { return p.pads[id].owner }))
	}
	snap.Waves = p.waveNames(waves)
	return snap
}
