package dag

import "context"

// Element is a named processing unit that owns a fixed set of pads.
// Pad names are local to the element and must not change after insertion.
type Element interface {
	Name() string
	SourcePads() []string
	SinkPads() []string
}

// Source produces frames and has no sink pads.
type Source interface {
	Element
	// Produce is called once per tick until every source pad has ended.
	Produce(ctx context.Context, out *Output) error
}

// Transform reads frames from its sink pads and writes to its source pads.
type Transform interface {
	Element
	Transform(ctx context.Context, in *Input, out *Output) error
}

// Sink consumes frames and has no source pads.
type Sink interface {
	Element
	Consume(ctx context.Context, in *Input) error
}

// Starter is implemented by elements that acquire resources before the first tick.
type Starter interface {
	Start(ctx context.Context) error
}

// Stopper is implemented by elements that release resources after the run.
// Stop is called for every started element, also when the run fails.
type Stopper interface {
	Stop(ctx context.Context) error
}

// LinkDeclarer is implemented by elements that declare their own upstream
// links. Keys are local sink pad names, values full source pad names.
type LinkDeclarer interface {
	Links() map[string]string
}

// Role is the execution contract of an element, derived from its pads.
type Role int

const (
	RoleSource Role = iota
	RoleTransform
	RoleSink
)

func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleTransform:
		return "transform"
	default:
		return "sink"
	}
}

// roleOf picks the role from the pad shape and checks that e implements it.
func roleOf(e Element) (Role, string) {
	hasSrc, hasSink := len(e.SourcePads()) > 0, len(e.SinkPads()) > 0
	switch {
	case hasSrc && !hasSink:
		if _, ok := e.(Source); !ok {
			return 0, "has only source pads but does not implement Source"
		}
		return RoleSource, ""
	case hasSrc && hasSink:
		if _, ok := e.(Transform); !ok {
			return 0, "has source and sink pads but does not implement Transform"
		}
		return RoleTransform, ""
	case hasSink:
		if _, ok := e.(Sink); !ok {
			return 0, "has only sink pads but does not implement Sink"
		}
		return RoleSink, ""
	default:
		return 0, "has no pads"
	}
}
