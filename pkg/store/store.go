// Package store persists audit reports so API clients can fetch them
// later by id.
package store

import (
	"context"

	"github.com/tkoester/pinset/pkg/audit"
	"github.com/tkoester/pinset/pkg/errors"
)

// ErrNotFound is returned when no report exists for the requested id.
var ErrNotFound = errors.New(errors.ErrCodeReportNotFound, "report not found")

// ReportStore persists audit reports.
type ReportStore interface {
	// Save stores a report, overwriting any report with the same id.
	Save(ctx context.Context, report *audit.Report) error
	// Get retrieves a report by id. Returns [ErrNotFound] if absent.
	Get(ctx context.Context, id string) (*audit.Report, error)
	// List returns stored reports, newest first, at most limit entries.
	// A limit of zero or less returns everything.
	List(ctx context.Context, limit int) ([]*audit.Report, error)
	// Close releases the store's resources.
	Close(ctx context.Context) error
}
