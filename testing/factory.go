package testing

import (
	"sync"

	"github.com/opd-ai/toxsession/interfaces"
)

// Factory creates SimulatedEngines and remembers them, so a test can reach
// the engine behind a session. Its New method is an interfaces.EngineFactory.
type Factory struct {
	mu      sync.Mutex
	engines []*SimulatedEngine
	failure error
}

// NewFactory returns an empty factory.
func NewFactory() *Factory {
	return &Factory{}
}

// FailWith makes later New calls return err. A nil err clears the failure.
func (f *Factory) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failure = err
}

// New implements interfaces.EngineFactory.
func (f *Factory) New(cfg interfaces.EngineConfig) (interfaces.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failure != nil {
		return nil, f.failure
	}
	e, err := NewSimulatedEngine(cfg)
	if err != nil {
		return nil, err
	}
	f.engines = append(f.engines, e)
	return e, nil
}

// Last returns the most recently created engine, or nil.
func (f *Factory) Last() *SimulatedEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.engines) == 0 {
		return nil
	}
	return f.engines[len(f.engines)-1]
}

// Engines returns every engine created so far.
func (f *Factory) Engines() []*SimulatedEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*SimulatedEngine, len(f.engines))
	copy(out, f.engines)
	return out
}
