package toxsession

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Instances is a table of sessions addressed by small integer handles, for
// callers that cannot hold Go pointers. Handles are dense: Create returns the
// smallest free index. The zero value is ready to use.
//
// Like Session, an Instances value is owned by one goroutine.
type Instances struct {
	slots []*Session
}

// Create builds a session with New and stores it.
func (t *Instances) Create(opts *Options) (int, error) {
	s, err := New(opts)
	if err != nil {
		return -1, err
	}

	for i, slot := range t.slots {
		if slot == nil {
			t.slots[i] = s
			return i, nil
		}
	}
	t.slots = append(t.slots, s)
	return len(t.slots) - 1, nil
}

// Get returns the session stored under handle n.
func (t *Instances) Get(n int) (*Session, error) {
	if n < 0 || n >= len(t.slots) || t.slots[n] == nil {
		return nil, fmt.Errorf("%w: handle %d", ErrInstanceNotFound, n)
	}
	return t.slots[n], nil
}

// Kill closes the session under handle n and frees the handle. The handle
// is freed even when Close reports an error.
func (t *Instances) Kill(n int) error {
	s, err := t.Get(n)
	if err != nil {
		return err
	}
	t.slots[n] = nil
	for len(t.slots) > 0 && t.slots[len(t.slots)-1] == nil {
		t.slots = t.slots[:len(t.slots)-1]
	}

	if err := s.Close(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Kill",
			"handle":   n,
			"error":    err.Error(),
		}).Warn("Session close reported errors")
		return err
	}
	return nil
}

// Len returns the number of live sessions.
func (t *Instances) Len() int {
	live := 0
	for _, s := range t.slots {
		if s != nil {
			live++
		}
	}
	return live
}
