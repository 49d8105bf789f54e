// Package dag provides a tick-driven streaming scheduler over a graph of
// Elements connected through Pads.
//
// Elements are inserted into a Pipeline, their pads are linked, and Run
// executes the graph tick by tick. Each tick walks the topological waves of
// the element dependency graph; elements of one wave run concurrently and a
// wave barrier separates them from the next. The run ends once every sink
// element has observed end-of-stream on all of its pads.
//
//	p := dag.New(dag.WithMaxParallel(4))
//	if _, err := p.Insert(src, upper, sink); err != nil {
//	    return err
//	}
//	if _, err := p.Link(map[string]string{
//	    "upper:in": "src:out",
//	    "sink:in":  "upper:out",
//	}); err != nil {
//	    return err
//	}
//	res, err := p.Run(ctx)
//
// Sources end a stream in one of two ways. Pushing a frame with EOS set
// ends that pad in the same tick. Returning ErrExhausted ends every open pad
// with an empty EOS frame, which costs one more tick.
//
// Transforms and sinks never block on a missing input: if a linked pad has
// neither a frame from the current tick nor a past end-of-stream, the
// element is skipped for that wave.
package dag
