package analyzer

import (
	"time"

	"hookdeps/internal/core/errors"
)

// Budget bounds a single call-site analysis. Exceeding it must abort the
// whole call site; partial results are never reported.
type Budget struct {
	maxNodes int
	deadline time.Time
	visited  int
}

func newBudget(opts *Options) *Budget {
	b := &Budget{}
	if opts != nil {
		b.maxNodes = opts.MaxNodes
		if opts.MaxTime > 0 {
			b.deadline = time.Now().Add(opts.MaxTime)
		}
	}
	return b
}

// Visit accounts one unit of work. The wall clock is sampled every 64
// visits to keep the check cheap.
func (b *Budget) Visit() error {
	b.visited++
	if b.maxNodes > 0 && b.visited > b.maxNodes {
		return errors.New(errors.CodeBudgetExceeded, "node budget exhausted")
	}
	if !b.deadline.IsZero() && b.visited%64 == 0 && time.Now().After(b.deadline) {
		return errors.New(errors.CodeBudgetExceeded, "time budget exhausted")
	}
	return nil
}

func (b *Budget) Visited() int {
	return b.visited
}
