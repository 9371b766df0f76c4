// File: internal/output/multi.go
package output

import (
	"context"
	"errors"

	"github.com/nullpath9/droidforge/internal/diagnosis"
)

// Multi fans a report out to several reporters. Every reporter sees the
// report even when an earlier one fails; the errors come back joined.
type Multi struct {
	reporters []Reporter
}

// NewMulti creates a fan-out reporter. A nil or empty list is valid and
// discards reports.
func NewMulti(reporters ...Reporter) *Multi {
	return &Multi{reporters: reporters}
}

func (m *Multi) Write(ctx context.Context, report *diagnosis.Report) error {
	var errs []error
	for _, r := range m.reporters {
		if err := r.Write(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every underlying reporter, collecting all failures.
func (m *Multi) Close() error {
	var errs []error
	for _, r := range m.reporters {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
