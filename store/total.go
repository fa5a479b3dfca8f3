// api/store/total.go
package store

import (
	"context"
	"fmt"

	"visitcounter/api/config"
	"visitcounter/api/database"
	"visitcounter/api/models"
)

// TotalStrategy produces the all-time visitor count. ComputeTotal is
// invoked exactly once per counted visit, after the daily counter has been
// written, so recomputing strategies include the just-counted visit.
// The result is non-negative and, under correct operation, never decreases.
type TotalStrategy interface {
	ComputeTotal(ctx context.Context) (int64, error)
}

// NewTotalStrategy selects the configured strategy.
func NewTotalStrategy(name string, counters *CounterStore, client DocumentClient) (TotalStrategy, error) {
	switch name {
	case config.StrategyCached:
		return &CachedTotal{counters: counters}, nil
	case config.StrategyQuery:
		return &QueryTotal{client: client}, nil
	case config.StrategyScan:
		return &ScanTotal{client: client}, nil
	default:
		return nil, fmt.Errorf("unknown total strategy %q", name)
	}
}

// CachedTotal keeps the running total in a sentinel counter document and
// bumps it alongside every daily increment. Cheapest to read. The sentinel
// write and the daily write are two independent upserts, so a crash between
// them leaves the total behind by one until an operator switches to a
// recomputing strategy.
type CachedTotal struct {
	counters *CounterStore
}

func (t *CachedTotal) ComputeTotal(ctx context.Context) (int64, error) {
	// The sentinel read propagates failures instead of degrading to zero:
	// a transient outage must not rewrite the all-time total to 1. Only a
	// genuinely absent sentinel starts the total from scratch.
	current, err := t.counters.Get(ctx, models.TotalCounterID)
	if err != nil {
		return 0, err
	}

	total := current + 1
	if err := t.counters.SetCount(ctx, models.TotalCounterID, total); err != nil {
		return 0, err
	}
	return total, nil
}

// QueryTotal sums all daily counters server-side on every request. Always
// consistent with the stored daily documents; pays a cross-partition query
// per read.
type QueryTotal struct {
	client DocumentClient
}

func (t *QueryTotal) ComputeTotal(ctx context.Context) (int64, error) {
	// A cross-partition SUM can come back as one partial aggregate per
	// page, which the caller adds up. SUM over zero documents yields an
	// empty result set, not a zero row.
	var partials []*int64
	query := `SELECT VALUE SUM(c.count) FROM c WHERE c.id != @totalID`
	params := []database.QueryParameter{{Name: "@totalID", Value: models.TotalCounterID}}
	if err := t.client.QueryDocuments(ctx, query, params, &partials); err != nil {
		return 0, fmt.Errorf("total aggregation query failed: %w", err)
	}

	var total int64
	for _, partial := range partials {
		if partial != nil {
			total += *partial
		}
	}
	return total, nil
}

// ScanTotal fetches every counter document and sums client-side. Same
// answer as QueryTotal, strictly more expensive; fallback for stores whose
// query surface is unavailable.
type ScanTotal struct {
	client DocumentClient
}

func (t *ScanTotal) ComputeTotal(ctx context.Context) (int64, error) {
	var docs []models.CounterDocument
	if err := t.client.QueryDocuments(ctx, `SELECT c.id, c.count FROM c`, nil, &docs); err != nil {
		return 0, fmt.Errorf("counter scan failed: %w", err)
	}

	var total int64
	for _, doc := range docs {
		if doc.ID == models.TotalCounterID {
			continue
		}
		total += doc.Count
	}
	return total, nil
}
