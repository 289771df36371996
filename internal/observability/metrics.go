// Package observability carries the lab's Prometheus metrics and OpenTelemetry tracing setup.
package observability

import (
	"context"
	"fmt"
	"net/http"

	"ohms_lab/internal/lab"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zoobzio/capitan"
)

// LabCollector bundles the lab's Prometheus metrics.
type LabCollector struct {
	gatherer prometheus.Gatherer

	SessionsActive          prometheus.Gauge
	SectionChanges          *prometheus.CounterVec
	CircuitUpdates          prometheus.Counter
	ShortCircuitTransitions *prometheus.CounterVec
	QuizToggles             prometheus.Counter
	NarrationOutcomes       *prometheus.CounterVec
}

// NewLabCollector registers lab metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewLabCollector(reg prometheus.Registerer) (*LabCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	active, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ohmslab_sessions_active",
		Help: "Number of live lab sessions.",
	}), "ohmslab_sessions_active")
	if err != nil {
		return nil, err
	}
	sections, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ohmslab_section_changes_total",
		Help: "Lesson section switches, labeled by the section switched to.",
	}, []string{"section"}), "ohmslab_section_changes_total")
	if err != nil {
		return nil, err
	}
	circuit, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ohmslab_circuit_updates_total",
		Help: "Accepted voltage/resistance slider changes.",
	}), "ohmslab_circuit_updates_total")
	if err != nil {
		return nil, err
	}
	short, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ohmslab_short_circuit_transitions_total",
		Help: "Short-circuit demonstration transitions, labeled by target state.",
	}, []string{"to"}), "ohmslab_short_circuit_transitions_total")
	if err != nil {
		return nil, err
	}
	quiz, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ohmslab_quiz_toggles_total",
		Help: "Quiz answers shown or hidden.",
	}), "ohmslab_quiz_toggles_total")
	if err != nil {
		return nil, err
	}
	narration, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ohmslab_narrations_total",
		Help: "Narration requests, labeled by outcome (played, failed, busy).",
	}, []string{"outcome"}), "ohmslab_narrations_total")
	if err != nil {
		return nil, err
	}

	return &LabCollector{
		gatherer:                gatherer,
		SessionsActive:          active,
		SectionChanges:          sections,
		CircuitUpdates:          circuit,
		ShortCircuitTransitions: short,
		QuizToggles:             quiz,
		NarrationOutcomes:       narration,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *LabCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *LabCollector) SessionOpened() { c.SessionsActive.Inc() }
func (c *LabCollector) SessionClosed() { c.SessionsActive.Dec() }

func (c *LabCollector) SectionChanged(section string) {
	c.SectionChanges.WithLabelValues(section).Inc()
}

func (c *LabCollector) CircuitChanged() { c.CircuitUpdates.Inc() }

func (c *LabCollector) ShortCircuit(to string) {
	c.ShortCircuitTransitions.WithLabelValues(to).Inc()
}

func (c *LabCollector) QuizToggled() { c.QuizToggles.Inc() }

func (c *LabCollector) Narration(outcome string) {
	c.NarrationOutcomes.WithLabelValues(outcome).Inc()
}

// HookLabSignals feeds the collector from the lab signal bus. Delivery is
// asynchronous, so counts trail the operations slightly.
func (c *LabCollector) HookLabSignals() {
	capitan.Hook(lab.SessionOpened, func(_ context.Context, _ *capitan.Event) { c.SessionOpened() })
	capitan.Hook(lab.SessionClosed, func(_ context.Context, _ *capitan.Event) { c.SessionClosed() })
	capitan.Hook(lab.SectionChanged, func(_ context.Context, e *capitan.Event) {
		to, _ := lab.KeyTo.From(e)
		c.SectionChanged(to)
	})
	capitan.Hook(lab.CircuitChanged, func(_ context.Context, _ *capitan.Event) { c.CircuitChanged() })
	capitan.Hook(lab.ShortCircuitTransition, func(_ context.Context, e *capitan.Event) {
		to, _ := lab.KeyTo.From(e)
		c.ShortCircuit(to)
	})
	capitan.Hook(lab.QuizToggled, func(_ context.Context, _ *capitan.Event) { c.QuizToggled() })
	capitan.Hook(lab.NarrationFinished, func(_ context.Context, e *capitan.Event) {
		outcome, _ := lab.KeyOutcome.From(e)
		c.Narration(outcome)
	})
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return g, nil
}
