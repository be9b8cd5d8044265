package threshold

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeAccepted       = "accepted"
	OutcomeThreshold      = "threshold"
	OutcomeLocalThreshold = "local_threshold"
	OutcomeIntent         = "intent"
	OutcomeRejected       = "rejected"
	OutcomeNetwork        = "network"
	OutcomeRefreeze       = "refreeze"
)

// Metrics counts coordinator activity. A nil *Metrics records nothing.
type Metrics struct {
	SignaturesCollected prometheus.Counter
	Submissions         *prometheus.CounterVec
}

// NewMetrics creates the coordinator collectors and registers them with
// registerer when it is not nil.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		SignaturesCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "multisig",
			Name:      "signatures_collected_total",
			Help:      "Signatures added to pending transactions.",
		}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "multisig",
			Name:      "submissions_total",
			Help:      "Submission attempts by outcome.",
		}, []string{"outcome"}),
	}
	if registerer == nil {
		return metrics, nil
	}
	for _, collector := range []prometheus.Collector{metrics.SignaturesCollected, metrics.Submissions} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return metrics, nil
}

func (m *Metrics) signatureAdded() {
	if m == nil {
		return
	}
	m.SignaturesCollected.Inc()
}

func (m *Metrics) submission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}
