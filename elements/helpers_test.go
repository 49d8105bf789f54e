package elements

import (
	"context"
	"strings"
	"testing"

	"github.com/kbukum/padflow/dag"
	"github.com/kbukum/padflow/logger"
)

func newTestPipeline(t *testing.T, elems ...dag.Element) *dag.Pipeline {
	t.Helper()
	p := dag.New(dag.WithLogger(logger.NewNop()))
	if _, err := p.Insert(elems...); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return p
}

func link(t *testing.T, p *dag.Pipeline, links map[string]string) {
	t.Helper()
	if _, err := p.Link(links); err != nil {
		t.Fatalf("link: %v", err)
	}
}

func run(t *testing.T, p *dag.Pipeline) *dag.Result {
	t.Helper()
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func upper(_ context.Context, s string) (string, error) {
	return strings.ToUpper(s), nil
}
