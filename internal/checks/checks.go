package checks

import (
	"context"

	"ozzus/check-jenkins-agent/internal/domain"
)

// Checker produces a single outcome per run.
type Checker interface {
	Run(ctx context.Context) domain.CheckOutcome
}
