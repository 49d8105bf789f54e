package dag

import (
	"strings"

	"github.com/kbukum/padflow/errors"
)

// PadID is the arena index of a pad inside its Pipeline.
type PadID int

// ElementID is the arena index of an element inside its Pipeline.
type ElementID int

// Direction says whether a pad produces or consumes frames.
type Direction int

const (
	// SourcePad produces frames.
	SourcePad Direction = iota
	// SinkPad consumes frames.
	SinkPad
)

func (d Direction) String() string {
	if d == SourcePad {
		return "source"
	}
	return "sink"
}

// PadSeparator joins an element name and a local pad name.
const PadSeparator = ":"

// PadName builds the full name of a pad.
func PadName(element, pad string) string {
	return element + PadSeparator + pad
}

// SplitPadName splits a full pad name into element and local pad name.
func SplitPadName(full string) (element, pad string, ok bool) {
	return strings.Cut(full, PadSeparator)
}

// Pad is a named, directional attachment point on an element.
// Pads refer to their owner and pipeline by handle only.
type Pad struct {
	id    PadID
	name  string
	local string
	dir   Direction
	owner ElementID
	p     *Pipeline
}

// ID returns the arena handle of the pad.
func (pad *Pad) ID() PadID { return pad.id }

// Name returns the full pad name, "element:pad".
func (pad *Pad) Name() string { return pad.name }

// Local returns the pad name as declared by its element.
func (pad *Pad) Local() string { return pad.local }

// Direction returns whether the pad is a source or a sink pad.
func (pad *Pad) Direction() Direction { return pad.dir }

// Owner returns the handle of the owning element.
func (pad *Pad) Owner() ElementID { return pad.owner }

// Link connects this sink pad to the source pad src and returns a copy of
// the updated graph. It fails if this pad is not a sink pad, src is not a
// source pad of the same pipeline, the pad already has another producer,
// or the pipeline is no longer assembling.
func (pad *Pad) Link(src *Pad) (*Graph, error) {
	if src == nil || src.p != pad.p {
		return nil, errors.UnknownPad(padNameOf(src))
	}
	if err := pad.p.link([][2]string{{pad.name, src.name}}); err != nil {
		return nil, err
	}
	return pad.p.Graph(), nil
}

func padNameOf(pad *Pad) string {
	if pad == nil {
		return ""
	}
	return pad.name
}

// validName checks element and pad names.
func validName(name string) string {
	switch {
	case name == "":
		return "must not be empty"
	case strings.Contains(name, PadSeparator):
		return "must not contain " + PadSeparator
	case strings.TrimSpace(name) != name:
		return "must not have surrounding whitespace"
	}
	return ""
}
