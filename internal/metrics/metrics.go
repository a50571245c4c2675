// Package metrics records remote call outcomes for the applicants view.
package metrics

import (
	"time"

	"github.com/aanand-mishra/applicants/internal/remote"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeDiscarded = "discarded"
)

// Recorder counts remote calls by op and outcome and times them by op.
type Recorder struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "applicants",
			Name:      "remote_requests_total",
			Help:      "Remote calls to the students collaborator by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "applicants",
			Name:      "remote_request_duration_seconds",
			Help:      "Latency of remote calls to the students collaborator.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}

	for _, c := range []prometheus.Collector{r.requests, r.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveRemote records one finished call. err is classified with
// remote.KindOf; errors that are not remote errors count as transport
// failures since no response was seen.
func (r *Recorder) ObserveRemote(op string, elapsed time.Duration, err error) {
	r.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	r.requests.WithLabelValues(op, outcome(err)).Inc()
}

// ObserveDiscarded records a successful call whose result was dropped
// because the store had been closed.
func (r *Recorder) ObserveDiscarded(op string) {
	r.requests.WithLabelValues(op, OutcomeDiscarded).Inc()
}

func outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if kind := remote.KindOf(err); kind != "" {
		return string(kind)
	}
	return string(remote.TransportFailure)
}
