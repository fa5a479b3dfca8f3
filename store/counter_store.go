// api/store/counter_store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"visitcounter/api/database"
	"visitcounter/api/metrics"
	"visitcounter/api/models"
)

// DocumentClient is the slice of the document store the counter side needs.
// Satisfied by database.CosmosClient; tests inject fakes.
type DocumentClient interface {
	ReadDocument(ctx context.Context, id, partitionKey string, out any) error
	UpsertDocument(ctx context.Context, partitionKey string, doc any) error
	QueryDocuments(ctx context.Context, query string, params []database.QueryParameter, out any) error
}

// CounterStore provides create-or-increment counter semantics on top of a
// partitioned document store. The store has no atomic increment, so callers
// read, add one in memory and write back; concurrent increments on the same
// partition can lose updates (accepted, see DESIGN.md).
type CounterStore struct {
	client DocumentClient
}

func NewCounterStore(client DocumentClient) *CounterStore {
	return &CounterStore{client: client}
}

// GetOrZero returns the stored count for partitionKey, or 0 when the
// document does not exist. Any other read failure also degrades to 0 so
// the counter keeps serving; the degradation is logged and counted.
func (s *CounterStore) GetOrZero(ctx context.Context, partitionKey string) int64 {
	var doc models.CounterDocument
	err := s.client.ReadDocument(ctx, partitionKey, partitionKey, &doc)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			log.Printf("Error reading counter %q, defaulting to 0: %v", partitionKey, err)
			metrics.StoreReadDegradations.Inc()
		}
		return 0
	}
	if doc.Count < 0 {
		log.Printf("Counter %q holds negative count %d, defaulting to 0", partitionKey, doc.Count)
		return 0
	}
	return doc.Count
}

// Get returns the stored count for partitionKey, mapping only NotFound to
// 0 and propagating every other read failure. Used where degrading to zero
// would rewrite a long-lived counter, such as the cached all-time total.
func (s *CounterStore) Get(ctx context.Context, partitionKey string) (int64, error) {
	var doc models.CounterDocument
	err := s.client.ReadDocument(ctx, partitionKey, partitionKey, &doc)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read counter %q: %w", partitionKey, err)
	}
	return doc.Count, nil
}

// SetCount upserts the counter document for partitionKey. Writing the same
// value twice leaves the stored state unchanged; write failures are hard
// errors, never swallowed.
func (s *CounterStore) SetCount(ctx context.Context, partitionKey string, count int64) error {
	doc := models.CounterDocument{
		ID:           partitionKey,
		PartitionKey: partitionKey,
		Count:        count,
	}
	if err := s.client.UpsertDocument(ctx, partitionKey, doc); err != nil {
		metrics.StoreWriteFailures.Inc()
		return fmt.Errorf("failed to upsert counter %q: %w", partitionKey, err)
	}
	return nil
}
