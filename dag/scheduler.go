package dag

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// CycleError is returned by Schedule when the dependencies contain a cycle.
// Path lists the elements of one cycle in dependency order.
type CycleError struct {
	Path []ElementID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dag: cycle detected through %v", e.Path)
}

// Schedule groups nodes into waves using Kahn's algorithm. Every node of a
// wave depends only on nodes of earlier waves, so a wave can run
// concurrently. Nodes inside a wave keep their relative order in nodes.
func Schedule(nodes []ElementID, deps []Dependency) ([][]ElementID, error) {
	inDegree := make(map[ElementID]int, len(nodes))
	dependents := make(map[ElementID][]ElementID)
	order := make(map[ElementID]int, len(nodes))

	for i, id := range nodes {
		inDegree[id] = 0
		order[id] = i
	}
	for _, d := range deps {
		if _, ok := inDegree[d.From]; !ok {
			return nil, fmt.Errorf("dag: dependency references unknown element %d", d.From)
		}
		if _, ok := inDegree[d.To]; !ok {
			return nil, fmt.Errorf("dag: dependency references unknown element %d", d.To)
		}
		inDegree[d.To]++
		dependents[d.From] = append(dependents[d.From], d.To)
	}

	var queue []ElementID
	for _, id := range nodes {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	var waves [][]ElementID
	visited := 0
	for len(queue) > 0 {
		waves = append(waves, queue)
		visited += len(queue)

		var next []ElementID
		for _, id := range queue {
			for _, dep := range dependents[id] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		slices.SortFunc(next, func(a, b ElementID) int { return order[a] - order[b] })
		queue = next
	}

	if visited != len(nodes) {
		return nil, &CycleError{Path: findCycle(nodes, deps, inDegree, order)}
	}
	return waves, nil
}

// findCycle walks backwards from a blocked node through blocked
// predecessors. Every blocked node has one, so the walk must revisit a node.
func findCycle(nodes []ElementID, deps []Dependency, inDegree map[ElementID]int, order map[ElementID]int) []ElementID {
	blocked := func(id ElementID) bool { return inDegree[id] > 0 }

	preds := make(map[ElementID][]ElementID)
	for _, d := range deps {
		if blocked(d.From) && blocked(d.To) {
			preds[d.To] = append(preds[d.To], d.From)
		}
	}

	var cur ElementID = -1
	for _, id := range nodes {
		if blocked(id) {
			cur = id
			break
		}
	}
	if cur < 0 {
		return nil
	}

	seenAt := make(map[ElementID]int)
	var walk []ElementID
	for {
		if idx, ok := seenAt[cur]; ok {
			walk = walk[idx:]
			break
		}
		seenAt[cur] = len(walk)
		walk = append(walk, cur)
		p := preds[cur]
		if len(p) == 0 {
			return walk
		}
		cur = slices.MinFunc(p, func(a, b ElementID) int { return order[a] - order[b] })
	}

	slices.Reverse(walk)
	start := 0
	for i, id := range walk {
		if order[id] < order[walk[start]] {
			start = i
		}
	}
	return slices.Concat(walk[start:], walk[:start])
}

// runWave runs fn for every element of a wave concurrently and waits for all
// of them. The first error cancels the context passed to the others and is
// returned. limit bounds concurrency; 0 means unlimited.
func runWave(ctx context.Context, wave []ElementID, limit int, fn func(context.Context, ElementID) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, id := range wave {
		g.Go(func() error {
			return fn(gctx, id)
		})
	}
	return g.Wait()
}
