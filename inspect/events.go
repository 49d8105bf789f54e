package inspect

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/padflow/dag"
	"github.com/kbukum/padflow/errors"
	"github.com/kbukum/padflow/logger"
)

const (
	pathEvents = "/pipeline/events"

	eventSnapshot = "snapshot"
	eventDone     = "done"

	defaultEventInterval = 500 * time.Millisecond
	minEventInterval     = 50 * time.Millisecond
)

// events streams snapshots as server-sent events until the pipeline
// terminates or the client goes away. ?interval= sets the period.
func (h *handlers) events(c *gin.Context) {
	interval := defaultEventInterval
	if raw := c.Query("interval"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			abort(c, errors.InvalidInput("interval", err.Error()))
			return
		}
		interval = max(d, minEventInterval)
	}

	w := c.Writer
	flusher, ok := w.(http.Flusher)
	if !ok {
		abort(c, errors.Internal("streaming not supported"))
		return
	}

	// The stream outlives the server's WriteTimeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.log.Debug("could not clear write deadline", logger.Fields(logger.FieldError, err.Error()))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snap := h.p.Snapshot()
		if err := writeEvent(w, eventSnapshot, snap); err != nil {
			return
		}
		if snap.State == dag.StateTerminated.String() {
			_ = writeEvent(w, eventDone, gin.H{"run_id": snap.RunID, "ticks": snap.Tick})
			flusher.Flush()
			return
		}
		flusher.Flush()

		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
