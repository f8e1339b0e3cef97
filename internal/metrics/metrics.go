package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jask/safeflow/internal/assistant"
)

// Assistant metrics
var (
	CompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "safeflow",
			Subsystem: "assistant",
			Name:      "completions_total",
			Help:      "Completion calls by profile and outcome",
		},
		[]string{"profile", "outcome"},
	)

	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "safeflow",
			Subsystem: "assistant",
			Name:      "completion_duration_seconds",
			Help:      "Wall time of completion calls",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"profile"},
	)

	RepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "safeflow",
			Subsystem: "assistant",
			Name:      "replies_total",
			Help:      "Assistant turns appended, by classification tag",
		},
		[]string{"profile", "tag"},
	)

	RejectedSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "safeflow",
			Subsystem: "assistant",
			Name:      "rejected_submissions_total",
			Help:      "Submissions dropped without a turn (empty, busy, listening)",
		},
		[]string{"reason"},
	)
)

// Observer feeds conversation events into the assistant metrics.
type Observer struct{}

func (Observer) TurnCompleted(ev assistant.TurnEvent) {
	CompletionsTotal.WithLabelValues(ev.Profile, ev.Outcome.String()).Inc()
	CompletionDuration.WithLabelValues(ev.Profile).Observe(ev.Latency.Seconds())
	RepliesTotal.WithLabelValues(ev.Profile, string(ev.Tag)).Inc()
}

func (Observer) SubmissionRejected(_ string, reason string) {
	RejectedSubmissionsTotal.WithLabelValues(reason).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "metrics server")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

var _ assistant.Observer = Observer{}
