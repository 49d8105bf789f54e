package dag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/padflow/errors"
	"github.com/kbukum/padflow/logger"
	"github.com/kbukum/padflow/observability"
)

// Run validates the graph and executes ticks until every sink is at
// end-of-stream. It can be called once; the pipeline is terminated
// afterwards whatever the outcome. The returned Result is non-nil whenever
// ticks were attempted, also on failure.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.mu.Lock()
	if !p.state.CompareAndSwap(int32(StateAssembling), int32(StateRunning)) {
		st := p.State()
		p.mu.Unlock()
		return nil, errors.Misuse("run", st.String())
	}
	runID := uuid.NewString()
	p.runID = runID
	p.mu.Unlock()
	defer p.state.Store(int32(StateTerminated))

	start := time.Now()
	log := p.log.WithFields(logger.Fields(logger.FieldPipeline, p.name, logger.FieldRunID, runID))

	waves, err := p.prepare()
	if err != nil {
		log.Error("pipeline rejected", logger.Fields(logger.FieldError, err.Error()))
		p.recordRun(ctx, observability.StatusError)
		return nil, err
	}
	p.mu.Lock()
	p.waves = waves
	p.mu.Unlock()

	ctx, end := p.startSpan(ctx, observability.SpanRun,
		attribute.String(observability.AttrPipeline, p.name),
		attribute.String(observability.AttrRunID, runID),
	)

	log.Info("pipeline started", logger.Fields("elements", len(p.elements), "waves", len(waves)))

	started, err := p.start(ctx)
	if err == nil {
		err = p.loop(ctx, waves, log)
	}
	if stopErr := p.stop(context.WithoutCancel(ctx), started); err == nil {
		err = stopErr
	}
	observability.SetSpanAttribute(ctx, observability.AttrTicks, int(p.tick.Load()))
	end(err)

	res := &Result{
		RunID:    runID,
		Ticks:    int(p.tick.Load()),
		Waves:    p.waveNames(waves),
		Duration: time.Since(start),
		Elements: p.stats(),
	}

	if err != nil {
		log.Error("pipeline failed", logger.Fields(
			logger.FieldTick, res.Ticks,
			logger.FieldError, err.Error(),
		))
		p.recordRun(ctx, observability.StatusError)
		return res, err
	}
	fields := logger.DurationFields("run", res.Duration)
	fields["ticks"] = res.Ticks
	log.Info("pipeline finished", fields)
	p.recordRun(ctx, observability.StatusOK)
	return res, nil
}

// prepare checks the graph and computes the waves.
func (p *Pipeline) prepare() ([][]ElementID, error) {
	nodes := make([]ElementID, len(p.elements))
	for i, es := range p.elements {
		nodes[i] = es.id
	}
	deps := p.graph.Dependencies(func(id PadID) ElementID { return p.pads[id].owner })

	waves, err := Schedule(nodes, deps)
	if err != nil {
		if cycle, ok := err.(*CycleError); ok {
			path := make([]string, 0, len(cycle.Path)+1)
			for _, id := range cycle.Path {
				path = append(path, p.elements[id].name)
			}
			if len(path) > 0 {
				path = append(path, path[0])
			}
			return nil, errors.CycleDetected(path)
		}
		return nil, errors.Configuration(err.Error())
	}

	for _, es := range p.elements {
		for _, id := range es.sink {
			if _, ok := p.graph.Producer(id); !ok {
				return nil, errors.Unlinked(p.pads[id].name)
			}
		}
	}
	if len(p.sinks) == 0 {
		return nil, errors.NoSinks()
	}
	return waves, nil
}

// start calls Start on every element in insertion order and returns the
// elements that got past it.
func (p *Pipeline) start(ctx context.Context) ([]*elementState, error) {
	started := make([]*elementState, 0, len(p.elements))
	for _, es := range p.elements {
		if s, ok := es.elem.(Starter); ok {
			if err := hook(es.name, "start", func() error { return s.Start(ctx) }); err != nil {
				return started, err
			}
		}
		started = append(started, es)
	}
	return started, nil
}

// stop calls Stop in reverse start order and joins the failures.
func (p *Pipeline) stop(ctx context.Context, started []*elementState) error {
	var errs []error
	for i := len(started) - 1; i >= 0; i-- {
		es := started[i]
		s, ok := es.elem.(Stopper)
		if !ok {
			continue
		}
		if err := hook(es.name, "stop", func() error { return s.Stop(ctx) }); err != nil {
			p.log.Warn("element stop failed", logger.ErrorFields(es.name, err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// hook runs a lifecycle hook, turning failures and panics into execution
// errors of the element.
func hook(element, phase string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Execution(element, fmt.Errorf("%s: panic: %v", phase, r))
		}
	}()
	if err := fn(); err != nil {
		return errors.Execution(element, fmt.Errorf("%s: %w", phase, err))
	}
	return nil
}

func (p *Pipeline) loop(ctx context.Context, waves [][]ElementID, log *logger.Logger) error {
	for tick := 1; ; tick++ {
		if p.maxTicks > 0 && tick > p.maxTicks {
			return errors.TickLimit(p.maxTicks)
		}
		if err := p.runTick(ctx, tick, waves, log); err != nil {
			return err
		}
		p.tick.Store(int64(tick))
		if p.metrics != nil {
			p.metrics.RecordTick(ctx, p.name)
		}
		if p.done() {
			return nil
		}
	}
}

// runTick runs every wave in order. Each wave is a barrier: all pad writes
// of wave n are visible to wave n+1.
func (p *Pipeline) runTick(ctx context.Context, tick int, waves [][]ElementID, log *logger.Logger) (err error) {
	ctx, end := p.startSpan(ctx, observability.SpanTick, attribute.Int(observability.AttrTick, tick))
	defer func() { end(err) }()

	for w, wave := range waves {
		if err := ctx.Err(); err != nil {
			return errors.Cancelled(err)
		}
		start := time.Now()
		err := runWave(ctx, wave, p.maxParallel, func(ctx context.Context, id ElementID) error {
			return p.invoke(ctx, tick, w, p.elements[id])
		})
		if p.metrics != nil {
			p.metrics.RecordWave(ctx, p.name, w, time.Since(start))
		}
		if err != nil {
			return err
		}
	}

	log.Debug("tick completed", logger.Fields(logger.FieldTick, tick))
	return nil
}

// done reports whether every sink is at end-of-stream.
func (p *Pipeline) done() bool {
	for _, id := range p.sinks {
		if !p.elements[id].atEOS.Load() {
			return false
		}
	}
	return true
}

// invoke runs one element for one wave. Panics become execution errors.
func (p *Pipeline) invoke(ctx context.Context, tick, wave int, es *elementState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Execution(es.name, fmt.Errorf("panic: %v", r))
		}
	}()

	if es.role == RoleSource {
		return p.invokeSource(ctx, tick, wave, es)
	}
	return p.invokeConsumer(ctx, tick, wave, es)
}

func (p *Pipeline) invokeSource(ctx context.Context, tick, wave int, es *elementState) error {
	if p.ended(es.src) {
		return nil
	}

	out := newOutput(tick, es.name, p.locals(es.src), p.endedPads(es.src))
	err := p.call(ctx, tick, wave, es, func(ctx context.Context) error {
		return es.elem.(Source).Produce(ctx, out)
	})
	if errors.Is(err, ErrExhausted) {
		out.endAll()
		err = nil
		p.log.Debug("source exhausted", logger.Fields(logger.FieldElement, es.name, logger.FieldTick, tick))
	}
	if err != nil {
		return errors.Execution(es.name, err)
	}
	p.publish(tick, es, out)
	return nil
}

func (p *Pipeline) invokeConsumer(ctx context.Context, tick, wave int, es *elementState) error {
	if p.finished(es) {
		return nil
	}

	in, eos, ready := p.gather(tick, es)
	if !ready {
		// Data of present pads is dropped; their end-of-stream is kept.
		p.markEnded(eos)
		es.skips.Add(1)
		if p.metrics != nil {
			p.metrics.RecordElement(ctx, p.name, es.name, observability.StatusSkipped, 0)
		}
		p.log.Debug("element skipped", logger.Fields(logger.FieldElement, es.name, logger.FieldTick, tick))
		return nil
	}

	var out *Output
	err := p.call(ctx, tick, wave, es, func(ctx context.Context) error {
		if es.role == RoleTransform {
			out = newOutput(tick, es.name, p.locals(es.src), p.endedPads(es.src))
			return es.elem.(Transform).Transform(ctx, in, out)
		}
		return es.elem.(Sink).Consume(ctx, in)
	})
	if err != nil {
		return errors.Execution(es.name, err)
	}

	p.markEnded(eos)
	if p.ended(es.sink) {
		if es.role == RoleTransform {
			out.endAll()
		} else {
			es.atEOS.Store(true)
			p.log.Debug("sink reached end-of-stream", logger.Fields(logger.FieldElement, es.name, logger.FieldTick, tick))
		}
	}
	if out != nil {
		p.publish(tick, es, out)
	}
	return nil
}

// gather classifies every sink pad as fresh, ended or missing. It returns
// the input, the fresh pads carrying EOS, and whether the element may run.
func (p *Pipeline) gather(tick int, es *elementState) (*Input, []PadID, bool) {
	in := &Input{tick: tick, pads: p.locals(es.sink), frames: make(map[string]Frame, len(es.sink))}
	var eos []PadID
	fresh, missing := false, false

	for _, id := range es.sink {
		ps := p.pads[id]
		if ps.ended {
			in.frames[ps.local] = Frame{EOS: true}
			continue
		}
		srcID, _ := p.graph.Producer(id)
		src := p.pads[srcID]
		if src.tick != tick {
			missing = true
			continue
		}
		in.frames[ps.local] = src.frame
		fresh = true
		if src.frame.EOS {
			eos = append(eos, id)
		}
	}
	return in, eos, fresh && !missing
}

// call times one invocation and records it.
func (p *Pipeline) call(ctx context.Context, tick, wave int, es *elementState, fn func(context.Context) error) error {
	ctx, end := p.startSpan(ctx, observability.SpanElement,
		attribute.String(observability.AttrElement, es.name),
		attribute.String(observability.AttrRole, es.role.String()),
		attribute.Int(observability.AttrTick, tick),
		attribute.Int(observability.AttrWave, wave),
	)
	start := time.Now()
	err := fn(ctx)
	d := time.Since(start)

	es.invocations.Add(1)
	es.busy.Add(int64(d))

	status := observability.StatusOK
	if err != nil && !errors.Is(err, ErrExhausted) {
		status = observability.StatusError
		end(err)
	} else {
		end(nil)
	}
	if p.metrics != nil {
		p.metrics.RecordElement(ctx, p.name, es.name, status, d)
	}
	return err
}

// publish copies the frames written this tick into the source pad buffers.
func (p *Pipeline) publish(tick int, es *elementState, out *Output) {
	for _, id := range es.src {
		ps := p.pads[id]
		f, ok := out.frames[ps.local]
		if !ok {
			continue
		}
		ps.frame, ps.tick = f, tick
		if f.EOS {
			ps.ended = true
		}
	}
}

func (p *Pipeline) markEnded(ids []PadID) {
	for _, id := range ids {
		p.pads[id].ended = true
	}
}

func (p *Pipeline) ended(ids []PadID) bool {
	for _, id := range ids {
		if !p.pads[id].ended {
			return false
		}
	}
	return true
}

// finished reports whether a transform or sink has nothing left to do.
func (p *Pipeline) finished(es *elementState) bool {
	if es.role == RoleSink {
		return es.atEOS.Load()
	}
	return p.ended(es.src)
}

func (p *Pipeline) locals(ids []PadID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = p.pads[id].local
	}
	return names
}

func (p *Pipeline) endedPads(ids []PadID) map[string]bool {
	ended := make(map[string]bool)
	for _, id := range ids {
		if ps := p.pads[id]; ps.ended {
			ended[ps.local] = true
		}
	}
	return ended
}

func (p *Pipeline) waveNames(waves [][]ElementID) [][]string {
	out := make([][]string, len(waves))
	for i, wave := range waves {
		out[i] = make([]string, len(wave))
		for j, id := range wave {
			out[i][j] = p.elements[id].name
		}
	}
	return out
}

func (p *Pipeline) stats() map[string]ElementStats {
	stats := make(map[string]ElementStats, len(p.elements))
	for _, es := range p.elements {
		stats[es.name] = es.snapshotStats()
	}
	return stats
}

func (es *elementState) snapshotStats() ElementStats {
	return ElementStats{
		Invocations: es.invocations.Load(),
		Skips:       es.skips.Load(),
		Duration:    time.Duration(es.busy.Load()),
	}
}

func (p *Pipeline) recordRun(ctx context.Context, status string) {
	if p.metrics != nil {
		p.metrics.RecordRun(ctx, p.name, status)
	}
}

// startSpan starts a span when tracing is enabled. The returned func ends
// it and records err when non-nil.
func (p *Pipeline) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	if !p.tracing {
		return ctx, func(error) {}
	}
	ctx, span := observability.StartSpan(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			observability.SetSpanError(ctx, err)
		}
		span.End()
	}
}
