// Package display derives the operator view from an immutable snapshot of
// session state and renders it as text.
package display

import "poolrebalancer/internal/model"

// Snapshot is the operator input plus the latest accepted fetch result.
// State is nil while the first fetch for PoolID is in flight.
type Snapshot struct {
	PoolID     string
	TargetText string
	State      *model.PoolState
	FetchErr   error
}
