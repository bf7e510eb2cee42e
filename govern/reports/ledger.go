package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Ledger validates and records citizen reports.
type Ledger struct {
	Store  ReportStore
	Clock  *RIDClock
	Logger *slog.Logger
}

func NewLedger(store ReportStore, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	clock := NewRIDClock(0)
	return &Ledger{
		Store:  store,
		Clock:  &clock,
		Logger: logger,
	}
}

// Submit validates the report and persists it with StatusPending.
//
// Requires a reporter identity plus contentID, reason, and category; nothing
// is persisted when validation fails. Duplicate reports from the same
// reporter against the same content are accepted as separate records: dedup,
// if wanted, belongs to the review tooling, which sees the whole ledger.
// Submitting a report never alters the reported content's visibility.
func (l *Ledger) Submit(ctx context.Context, contentID, reporterID, reason, category string) (*Report, error) {
	if reporterID == "" {
		return nil, &ReportError{
			Kind:    KindUnauthenticated,
			Message: "reporter identity is required",
		}
	}
	if contentID == "" || reason == "" || category == "" {
		return nil, &ReportError{
			Kind:    KindMissingFields,
			Message: "contentId, reason, and category are required",
		}
	}

	report := &Report{
		ID:         l.Clock.Next().String(),
		ContentID:  contentID,
		ReporterID: reporterID,
		Reason:     reason,
		Category:   category,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.Store.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("persisting report: %w", err)
	}

	reportCreatedCount.WithLabelValues(report.Category).Inc()
	l.Logger.Info("report filed", "reportID", report.ID, "contentID", contentID, "category", category)
	return report, nil
}
