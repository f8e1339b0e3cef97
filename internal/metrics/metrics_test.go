package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/jask/safeflow/internal/assistant"
	"github.com/jask/safeflow/internal/llm"
)

func TestObserverCountsTurns(t *testing.T) {
	okBefore := testutil.ToFloat64(CompletionsTotal.WithLabelValues("metrics-test", "ok"))
	failedBefore := testutil.ToFloat64(CompletionsTotal.WithLabelValues("metrics-test", "failed"))
	warnBefore := testutil.ToFloat64(RepliesTotal.WithLabelValues("metrics-test", "warning"))

	var o Observer
	o.TurnCompleted(assistant.TurnEvent{Profile: "metrics-test", Outcome: llm.OutcomeOK, Tag: assistant.TagSuccess, Latency: time.Second})
	o.TurnCompleted(assistant.TurnEvent{Profile: "metrics-test", Outcome: llm.OutcomeFailed, Tag: assistant.TagWarning, Latency: 2 * time.Second})

	require.Equal(t, okBefore+1, testutil.ToFloat64(CompletionsTotal.WithLabelValues("metrics-test", "ok")))
	require.Equal(t, failedBefore+1, testutil.ToFloat64(CompletionsTotal.WithLabelValues("metrics-test", "failed")))
	require.Equal(t, warnBefore+1, testutil.ToFloat64(RepliesTotal.WithLabelValues("metrics-test", "warning")))
}

func TestObserverCountsRejections(t *testing.T) {
	before := testutil.ToFloat64(RejectedSubmissionsTotal.WithLabelValues(assistant.RejectBusy))
	Observer{}.SubmissionRejected("conv", assistant.RejectBusy)
	require.Equal(t, before+1, testutil.ToFloat64(RejectedSubmissionsTotal.WithLabelValues(assistant.RejectBusy)))
}

func TestHandlerExposesAssistantMetrics(t *testing.T) {
	Observer{}.SubmissionRejected("conv", assistant.RejectEmpty)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "safeflow_assistant_rejected_submissions_total")
}

func TestServeStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeReportsListenErrors(t *testing.T) {
	err := Serve(context.Background(), "256.0.0.1:bad")
	require.ErrorContains(t, err, "metrics server")
}
