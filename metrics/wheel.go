package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Wheel collects counters of the wheel state machine. All methods are nil-safe
type Wheel struct {
	initializations prometheus.Counter
	commits         prometheus.Counter
	spins           *prometheus.CounterVec
	claims          prometheus.Counter
	rejections      *prometheus.CounterVec
}

func NewWheel(reg prometheus.Registerer) *Wheel {
	ret := &Wheel{
		initializations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fairwheel",
			Name:      "initializations_total",
			Help:      "number of initialized wheels",
		}),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fairwheel",
			Name:      "commits_total",
			Help:      "number of accepted commitments",
		}),
		spins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fairwheel",
			Name:      "spins_total",
			Help:      "number of successful reveals by prize",
		}, []string{"prize"}),
		claims: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fairwheel",
			Name:      "claims_total",
			Help:      "number of claims",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fairwheel",
			Name:      "rejections_total",
			Help:      "number of rejected calls by operation and reason",
		}, []string{"op", "reason"}),
	}
	reg.MustRegister(ret.initializations, ret.commits, ret.spins, ret.claims, ret.rejections)
	return ret
}

func (w *Wheel) ObserveInitialize() {
	if w != nil {
		w.initializations.Inc()
	}
}

func (w *Wheel) ObserveCommit() {
	if w != nil {
		w.commits.Inc()
	}
}

func (w *Wheel) ObserveSpin(prize string) {
	if w != nil {
		w.spins.WithLabelValues(prize).Inc()
	}
}

func (w *Wheel) ObserveClaim() {
	if w != nil {
		w.claims.Inc()
	}
}

func (w *Wheel) ObserveRejection(op, reason string) {
	if w != nil {
		w.rejections.WithLabelValues(op, reason).Inc()
	}
}
