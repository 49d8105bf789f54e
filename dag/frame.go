package dag

import (
	"errors"
	"fmt"
)

// ErrExhausted is returned by a Source that has nothing more to produce.
// Every pad of the source that has not ended receives an empty EOS frame.
var ErrExhausted = errors.New("dag: source exhausted")

// Frame is the unit of data carried by a pad for one tick.
type Frame struct {
	Data any
	// EOS marks the last frame a pad will carry.
	EOS bool
}

// Empty reports whether the frame carries no data.
func (f Frame) Empty() bool { return f.Data == nil }

// As reads the frame payload as T.
// Returns an error if the frame is empty or the type doesn't match.
func As[T any](f Frame) (T, error) {
	var zero T
	if f.Data == nil {
		return zero, fmt.Errorf("dag: frame has no data (eos=%v)", f.EOS)
	}
	val, ok := f.Data.(T)
	if !ok {
		return zero, fmt.Errorf("dag: frame: expected %T, got %T", zero, f.Data)
	}
	return val, nil
}
