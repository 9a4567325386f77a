package storage

import (
	"context"

	"poolrebalancer/internal/model"
)

// Sink receives plan records as they are produced.
type Sink interface {
	PutPlanBatch(ctx context.Context, records []model.PlanRecord) error
}
