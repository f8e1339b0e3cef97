package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jask/safeflow/internal/assistant"
	"github.com/jask/safeflow/internal/database"
	"github.com/jask/safeflow/internal/database/repository"
)

// UsageService writes completed turns to the usage ledger. Only call
// metadata is kept; turn text never reaches the database.
type UsageService struct {
	Usage *repository.UsageRepo
	Log   zerolog.Logger

	// WriteTimeout bounds each ledger write. Zero means two seconds.
	WriteTimeout time.Duration
}

// TurnCompleted records ev. Failures are logged and swallowed so a broken
// ledger never disturbs the conversation.
func (s *UsageService) TurnCompleted(ev assistant.TurnEvent) {
	if s == nil || s.Usage == nil {
		return
	}
	timeout := s.WriteTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	at := ev.At
	if at.IsZero() {
		at = database.Now()
	}
	rec := repository.UsageRecord{
		ID:             uuid.NewString(),
		ConversationID: ev.ConversationID,
		Profile:        ev.Profile,
		Outcome:        ev.Outcome.String(),
		StatusCode:     ev.StatusCode,
		Tag:            string(ev.Tag),
		Latency:        ev.Latency,
		CreatedAt:      at.UTC().Truncate(time.Millisecond),
	}
	if err := s.Usage.Add(ctx, rec); err != nil {
		s.Log.Warn().Err(err).Str("conversation_id", ev.ConversationID).Msg("record usage")
	}
}

// SubmissionRejected is a no-op; rejections are only counted in metrics.
func (s *UsageService) SubmissionRejected(string, string) {}

// Summary aggregates usage recorded within the last window.
func (s *UsageService) Summary(ctx context.Context, window time.Duration) ([]repository.UsageSummary, error) {
	if s == nil || s.Usage == nil {
		return nil, errors.New("usage: ledger not configured")
	}
	since := database.Now().Add(-window)
	out, err := s.Usage.Summarize(ctx, since)
	return out, errors.Wrap(err, "summarize usage")
}

// Recent lists the newest ledger entries.
func (s *UsageService) Recent(ctx context.Context, limit int) ([]repository.UsageRecord, error) {
	if s == nil || s.Usage == nil {
		return nil, errors.New("usage: ledger not configured")
	}
	out, err := s.Usage.Recent(ctx, limit)
	return out, errors.Wrap(err, "list usage")
}

// Prune drops ledger entries older than keep.
func (s *UsageService) Prune(ctx context.Context, keep time.Duration) (int64, error) {
	if s == nil || s.Usage == nil {
		return 0, errors.New("usage: ledger not configured")
	}
	n, err := s.Usage.Prune(ctx, database.Now().Add(-keep))
	return n, errors.Wrap(err, "prune usage")
}

var _ assistant.Observer = (*UsageService)(nil)
