// Package elements contains ready-made sources, transforms and sinks for
// dag pipelines, plus wrappers that add retries and timeouts to any
// transform.
//
// Sources:
//   - Slice emits a fixed list, marking the last item EOS.
//   - Func calls a function every tick until it returns dag.ErrExhausted.
//   - Lines reads a file or reader line by line.
//
// Transforms: Map, Combine, and the Retry and Timeout wrappers.
//
// Sinks: Collect, JSONLines, Log and Null.
package elements
