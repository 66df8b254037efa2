package waitlist

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type SubmissionMetrics struct {
	submissions *prometheus.CounterVec
}

// NewSubmissionMetrics registers waitlist_submissions_total on reg. A nil
// registerer yields a working but unexported counter.
func NewSubmissionMetrics(reg prometheus.Registerer) *SubmissionMetrics {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlist_submissions_total",
			Help: "Waitlist submissions by final outcome.",
		},
		[]string{"outcome"},
	)

	if reg != nil {
		if err := reg.Register(counter); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
					counter = existing
				}
			}
		}
	}

	return &SubmissionMetrics{submissions: counter}
}

func (m *SubmissionMetrics) Observe(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}
