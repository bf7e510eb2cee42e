// Package reports is the citizen-report ledger: it accepts user reports
// against published content, validates them, and issues tracking records.
// It is independent of the submission pipeline.
package reports

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewed  Status = "reviewed"
	StatusDismissed Status = "dismissed"
)

// Report is a single citizen report against a piece of published content.
// Created with StatusPending; transitions to reviewed/dismissed only through
// the review tooling, never through this ledger.
type Report struct {
	ID         string `gorm:"primarykey"`
	ContentID  string `gorm:"index"`
	ReporterID string `gorm:"index"`
	Reason     string
	Category   string
	Status     Status
	CreatedAt  time.Time
}

type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindMissingFields   ErrorKind = "missing_fields"
)

type ReportError struct {
	Kind    ErrorKind
	Message string
}

func (e *ReportError) Error() string {
	return e.Message
}
