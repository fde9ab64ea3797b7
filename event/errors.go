package event

import (
	"fmt"

	"github.com/opd-ai/toxsession/interfaces"
)

// SkewError reports engine input this layer cannot represent: an unknown
// event tag or an out-of-range enum value. It indicates the engine and the
// session were built against different protocol versions. The dispatcher
// raises it with panic instead of guessing a default.
type SkewError struct {
	Tag   interfaces.EventTag
	Field string
	Value uint32
}

func (e *SkewError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("event: engine version skew: unknown event tag %d", e.Tag)
	}
	return fmt.Sprintf("event: engine version skew: unknown %s value %d in event tag %d", e.Field, e.Value, e.Tag)
}
