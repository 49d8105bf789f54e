// Package inspect serves a read-only HTTP view of a running pipeline:
// its structure, progress and rendered graph.
package inspect

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kbukum/padflow/dag"
	"github.com/kbukum/padflow/errors"
	"github.com/kbukum/padflow/logger"
	"github.com/kbukum/padflow/version"
	"github.com/kbukum/padflow/visualize"
)

// Routes.
const (
	pathHealth   = "/healthz"
	pathVersion  = "/version"
	pathPipeline = "/pipeline"
	pathDOT      = "/pipeline/dot"
	pathMermaid  = "/pipeline/mermaid"
	pathElement  = "/pipeline/elements/:name"
)

// Option configures the router.
type Option func(*options)

type options struct {
	log *logger.Logger
}

// WithLogger sets the request logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// NewRouter returns a gin engine exposing p.
func NewRouter(p *dag.Pipeline, opts ...Option) *gin.Engine {
	o := options{log: logger.Get(logger.ComponentInspect)}
	for _, opt := range opts {
		opt(&o)
	}

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(recovery(o.log), requestID(), requestLogger(o.log))

	h := &handlers{p: p, log: o.log}
	r.GET(pathHealth, h.health)
	r.GET(pathVersion, h.version)
	r.GET(pathPipeline, h.snapshot)
	r.GET(pathDOT, h.render(visualize.FormatDOT, "text/vnd.graphviz; charset=utf-8"))
	r.GET(pathMermaid, h.render(visualize.FormatMermaid, "text/plain; charset=utf-8"))
	r.GET(pathElement, h.element)
	r.GET(pathEvents, h.events)
	return r
}

type handlers struct {
	p   *dag.Pipeline
	log *logger.Logger
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"pipeline":  h.p.Name(),
		"state":     h.p.State().String(),
		"version":   version.Get().Short(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handlers) version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

func (h *handlers) snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.p.Snapshot())
}

func (h *handlers) render(format visualize.Format, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := visualize.Write(&buf, h.p.Snapshot(), format); err != nil {
			abort(c, errors.Internal(err.Error()).WithCause(err))
			return
		}
		c.Data(http.StatusOK, contentType, buf.Bytes())
	}
}

func (h *handlers) element(c *gin.Context) {
	name := c.Param("name")
	for _, e := range h.p.Snapshot().Elements {
		if e.Name == name {
			c.JSON(http.StatusOK, e)
			return
		}
	}
	abort(c, errors.NotFound("element", name))
}
