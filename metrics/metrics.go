// Package metrics exposes Prometheus collectors describing a session: poll
// iterations, dispatched events by kind, friend count and live file
// transfers.
//
// Collectors are registered on a caller-supplied prometheus.Registerer. A
// nil registerer yields working but unregistered collectors, which keeps the
// session free of global state. Metrics is safe for concurrent use.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const namespace = "toxsession"

// Metrics holds the collectors of one session.
type Metrics struct {
	registerer prometheus.Registerer
	registered []prometheus.Collector

	Iterations      prometheus.Counter
	IterationErrors prometheus.Counter
	Events          *prometheus.CounterVec
	DroppedEvents   *prometheus.CounterVec
	Friends         prometheus.Gauge
	Transfers       prometheus.Gauge
}

// New creates the collectors and registers them on reg. When another
// session already registered identical collectors on reg, those are shared.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{registerer: reg}
	var err error

	if m.Iterations, err = register(m, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "iterations_total",
		Help:      "Number of completed poll iterations.",
	})); err != nil {
		return nil, err
	}
	if m.IterationErrors, err = register(m, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "iteration_errors_total",
		Help:      "Number of poll iterations where the engine reported an error.",
	})); err != nil {
		return nil, err
	}
	if m.Events, err = register(m, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Events delivered to the listener, by kind.",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if m.DroppedEvents, err = register(m, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Engine events dropped before delivery, by kind.",
	}, []string{"kind"})); err != nil {
		return nil, err
	}
	if m.Friends, err = register(m, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "friends",
		Help:      "Number of friends in the registry.",
	})); err != nil {
		return nil, err
	}
	if m.Transfers, err = register(m, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "file_transfers_active",
		Help:      "Number of live file transfers.",
	})); err != nil {
		return nil, err
	}

	return m, nil
}

// register adds c to the registerer of m, returning the collector already
// registered under the same descriptor if there is one.
func register[C prometheus.Collector](m *Metrics, c C) (C, error) {
	if m.registerer == nil {
		return c, nil
	}

	err := m.registerer.Register(c)
	if err == nil {
		m.registered = append(m.registered, c)
		return c, nil
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}

	logrus.WithFields(logrus.Fields{
		"function": "metrics.register",
		"error":    err.Error(),
	}).Error("Failed to register collector")
	return c, fmt.Errorf("register collector: %w", err)
}

// Unregister removes the collectors this instance registered.
func (m *Metrics) Unregister() error {
	if m.registerer == nil {
		return nil
	}
	var failed int
	for _, c := range m.registered {
		if !m.registerer.Unregister(c) {
			failed++
		}
	}
	m.registered = nil
	if failed > 0 {
		return fmt.Errorf("unregister: %d collectors were not registered", failed)
	}
	return nil
}

// ObserveIteration records one poll iteration.
func (m *Metrics) ObserveIteration(err error) {
	m.Iterations.Inc()
	if err != nil {
		m.IterationErrors.Inc()
	}
}

// ObserveEvent counts a delivered event of the given kind.
func (m *Metrics) ObserveEvent(kind string) {
	m.Events.WithLabelValues(kind).Inc()
}

// ObserveDropped counts an engine event that was not delivered.
func (m *Metrics) ObserveDropped(kind string) {
	m.DroppedEvents.WithLabelValues(kind).Inc()
}

// SetFriends records the registry size.
func (m *Metrics) SetFriends(n int) {
	m.Friends.Set(float64(n))
}

// SetTransfers records the number of live file transfers.
func (m *Metrics) SetTransfers(n int) {
	m.Transfers.Set(float64(n))
}
