package reports

import "context"

type ReportStore interface {
	Create(ctx context.Context, report *Report) error
	Get(ctx context.Context, id string) (*Report, error)
	// ListByContent returns all reports filed against a piece of content,
	// oldest first.
	ListByContent(ctx context.Context, contentID string) ([]Report, error)
	// UpdateStatus is the hook for external review tooling; the ledger itself
	// never calls it.
	UpdateStatus(ctx context.Context, id string, status Status) error
}
