package dag

import (
	stderrors "errors"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/kbukum/padflow/errors"
	"github.com/kbukum/padflow/logger"
	"github.com/kbukum/padflow/observability"
)

// State is the runner state of a Pipeline.
type State int32

const (
	StateAssembling State = iota
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAssembling:
		return "assembling"
	case StateRunning:
		return "running"
	default:
		return "terminated"
	}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithName sets the pipeline name used in logs, spans and metrics.
func WithName(name string) Option {
	return func(p *Pipeline) { p.name = name }
}

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithMaxParallel limits concurrent elements per wave (0 = unlimited).
func WithMaxParallel(n int) Option {
	return func(p *Pipeline) { p.maxParallel = n }
}

// WithMaxTicks aborts a run that has not terminated after n ticks (0 = unlimited).
func WithMaxTicks(n int) Option {
	return func(p *Pipeline) { p.maxTicks = n }
}

// WithTracing creates spans for the run, every tick and every invocation.
func WithTracing(enabled bool) Option {
	return func(p *Pipeline) { p.tracing = enabled }
}

// WithMetrics records scheduler metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

type elementState struct {
	id   ElementID
	name string
	elem Element
	role Role
	src  []PadID
	sink []PadID

	atEOS       atomic.Bool
	invocations atomic.Int64
	skips       atomic.Int64
	busy        atomic.Int64
}

// padState embeds the structural pad and carries its per-tick buffer.
// A source pad buffer is written only by its owner; a sink pad's ended flag
// only by the consuming element.
type padState struct {
	Pad
	frame Frame
	tick  int
	ended bool
}

type entry struct {
	pad bool
	id  int
}

// Pipeline owns the element and pad arenas, the name registry, the link
// graph and the runner state.
type Pipeline struct {
	mu sync.RWMutex

	name        string
	log         *logger.Logger
	maxParallel int
	maxTicks    int
	tracing     bool
	metrics     *observability.Metrics

	state    atomic.Int32
	elements []*elementState
	pads     []*padState
	names    map[string]entry
	graph    *Graph
	sinks    []ElementID

	runID string
	waves [][]ElementID
	tick  atomic.Int64
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		name:  "pipeline",
		names: make(map[string]entry),
		graph: NewGraph(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get(logger.ComponentDAG)
	}
	return p
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// State returns the current runner state.
func (p *Pipeline) State() State { return State(p.state.Load()) }

// Insert registers elements and their pads, then merges the links the
// elements declare. Nothing is registered if any element is rejected.
func (p *Pipeline) Insert(elements ...Element) (*Pipeline, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st := p.State(); st != StateAssembling {
		return p, errors.Misuse("insert", st.String())
	}

	roles, err := p.validate(elements)
	if err != nil {
		return p, err
	}

	nElems, nPads := len(p.elements), len(p.pads)
	for i, e := range elements {
		p.register(e, roles[i])
	}

	local, err := p.declaredLinks(p.elements[nElems:])
	if err == nil {
		err = p.merge(local)
	}
	if err != nil {
		p.rollback(nElems, nPads)
		return p, err
	}

	for _, es := range p.elements[nElems:] {
		p.log.Debug("element inserted", logger.Fields(
			logger.FieldElement, es.name,
			logger.FieldRole, es.role.String(),
		))
	}
	return p, nil
}

func (p *Pipeline) validate(elements []Element) ([]Role, error) {
	taken := make(map[string]bool)
	roles := make([]Role, len(elements))

	for i, e := range elements {
		if e == nil {
			return nil, errors.Configuration("cannot insert a nil element")
		}
		name := e.Name()
		if reason := validName(name); reason != "" {
			return nil, errors.InvalidName(errors.DetailElement, name, reason)
		}
		if _, ok := p.names[name]; ok || taken[name] {
			return nil, errors.DuplicateName(errors.DetailElement, name)
		}
		taken[name] = true

		role, reason := roleOf(e)
		if reason != "" {
			return nil, errors.RoleMismatch(name, reason)
		}
		roles[i] = role

		for _, local := range slices.Concat(e.SourcePads(), e.SinkPads()) {
			full := PadName(name, local)
			if reason := validName(local); reason != "" {
				return nil, errors.InvalidName(errors.DetailPad, full, reason)
			}
			if _, ok := p.names[full]; ok || taken[full] {
				return nil, errors.DuplicateName(errors.DetailPad, full)
			}
			taken[full] = true
		}
	}
	return roles, nil
}

func (p *Pipeline) register(e Element, role Role) {
	es := &elementState{
		id:   ElementID(len(p.elements)),
		name: e.Name(),
		elem: e,
		role: role,
	}
	p.elements = append(p.elements, es)
	p.names[es.name] = entry{id: int(es.id)}

	for _, local := range e.SourcePads() {
		es.src = append(es.src, p.addPad(es, local, SourcePad))
	}
	for _, local := range e.SinkPads() {
		es.sink = append(es.sink, p.addPad(es, local, SinkPad))
	}
	if role == RoleSink {
		p.sinks = append(p.sinks, es.id)
	}
}

func (p *Pipeline) addPad(es *elementState, local string, dir Direction) PadID {
	ps := &padState{Pad: Pad{
		id:    PadID(len(p.pads)),
		name:  PadName(es.name, local),
		local: local,
		dir:   dir,
		owner: es.id,
		p:     p,
	}}
	p.pads = append(p.pads, ps)
	p.names[ps.name] = entry{pad: true, id: int(ps.id)}
	return ps.id
}

func (p *Pipeline) rollback(nElems, nPads int) {
	for _, es := range p.elements[nElems:] {
		delete(p.names, es.name)
	}
	for _, ps := range p.pads[nPads:] {
		delete(p.names, ps.name)
	}
	p.elements = p.elements[:nElems]
	p.pads = p.pads[:nPads]

	sinks := p.sinks[:0]
	for _, id := range p.sinks {
		if int(id) < nElems {
			sinks = append(sinks, id)
		}
	}
	p.sinks = sinks
}

func (p *Pipeline) declaredLinks(added []*elementState) (*Graph, error) {
	local := NewGraph()
	for _, es := range added {
		decl, ok := es.elem.(LinkDeclarer)
		if !ok {
			continue
		}
		links := decl.Links()
		for _, sinkLocal := range sortedKeys(links) {
			if err := p.stage(local, PadName(es.name, sinkLocal), links[sinkLocal]); err != nil {
				return nil, err
			}
		}
	}
	return local, nil
}

// Link registers sink pad -> source pad links given by full pad names.
// Nothing is linked if any entry is rejected.
func (p *Pipeline) Link(links map[string]string) (*Pipeline, error) {
	pairs := make([][2]string, 0, len(links))
	for _, sink := range sortedKeys(links) {
		pairs = append(pairs, [2]string{sink, links[sink]})
	}
	return p, p.link(pairs)
}

func (p *Pipeline) link(pairs [][2]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st := p.State(); st != StateAssembling {
		return errors.Misuse("link", st.String())
	}

	local := NewGraph()
	for _, pair := range pairs {
		if err := p.stage(local, pair[0], pair[1]); err != nil {
			return err
		}
	}
	return p.merge(local)
}

// stage resolves one link into g.
func (p *Pipeline) stage(g *Graph, sink, src string) error {
	sinkID, err := p.resolvePad(sink, SinkPad)
	if err != nil {
		return err
	}
	srcID, err := p.resolvePad(src, SourcePad)
	if err != nil {
		return err
	}
	return p.conflict(g.Register(srcID, sinkID))
}

func (p *Pipeline) merge(g *Graph) error {
	return p.conflict(p.graph.Merge(g))
}

func (p *Pipeline) conflict(err error) error {
	var c *LinkConflict
	if stderrors.As(err, &c) {
		return errors.AlreadyLinked(p.pads[c.Sink].name, p.pads[c.Existing].name, p.pads[c.Requested].name)
	}
	return err
}

func (p *Pipeline) resolvePad(name string, dir Direction) (PadID, error) {
	ent, ok := p.names[name]
	if !ok || !ent.pad {
		return 0, errors.UnknownPad(name)
	}
	ps := p.pads[ent.id]
	if ps.dir != dir {
		return 0, errors.WrongDirection(name, dir.String())
	}
	return ps.id, nil
}

// Pad looks up a pad by full name.
func (p *Pipeline) Pad(name string) (*Pad, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ent, ok := p.names[name]
	if !ok || !ent.pad {
		return nil, false
	}
	return &p.pads[ent.id].Pad, true
}

// Element looks up an element by name.
func (p *Pipeline) Element(name string) (Element, bool) {
	es, ok := p.lookup(name)
	if !ok {
		return nil, false
	}
	return es.elem, true
}

func (p *Pipeline) lookup(name string) (*elementState, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ent, ok := p.names[name]
	if !ok || ent.pad {
		return nil, false
	}
	return p.elements[ent.id], true
}

// Elements returns element names in insertion order.
func (p *Pipeline) Elements() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, len(p.elements))
	for i, es := range p.elements {
		names[i] = es.name
	}
	return names
}

// Sinks returns the names of sink elements in insertion order.
func (p *Pipeline) Sinks() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, len(p.sinks))
	for i, id := range p.sinks {
		names[i] = p.elements[id].name
	}
	return names
}

// Graph returns a copy of the link graph.
func (p *Pipeline) Graph() *Graph {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.graph.Clone()
}

// AtEOS reports whether the named sink has seen end-of-stream on all pads.
func (p *Pipeline) AtEOS(sink string) bool {
	es, ok := p.lookup(sink)
	return ok && es.role == RoleSink && es.atEOS.Load()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
