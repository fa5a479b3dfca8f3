package store

import (
	"context"
	"errors"
	"strings"

	"visitcounter/api/database"
	"visitcounter/api/models"
)

// fakeDocumentClient is an in-memory DocumentClient with injectable
// failures. It mirrors the real client's contract: absent documents are
// database.ErrNotFound, queries answer either the sum aggregation or a
// full scan depending on the destination type.
type fakeDocumentClient struct {
	docs     map[string]models.CounterDocument
	readErr  error
	writeErr error
	queryErr error
	writes   int

	// When set, aggregation queries answer with these partial sums
	// instead of one combined sum, mimicking a paged cross-partition
	// aggregate.
	partialSums []*int64
}

func newFakeDocumentClient() *fakeDocumentClient {
	return &fakeDocumentClient{docs: make(map[string]models.CounterDocument)}
}

func (f *fakeDocumentClient) seed(counts map[string]int64) *fakeDocumentClient {
	for id, count := range counts {
		f.docs[id] = models.CounterDocument{ID: id, PartitionKey: id, Count: count}
	}
	return f
}

func (f *fakeDocumentClient) ReadDocument(_ context.Context, id, _ string, out any) error {
	if f.readErr != nil {
		return f.readErr
	}
	doc, ok := f.docs[id]
	if !ok {
		return database.ErrNotFound
	}
	*(out.(*models.CounterDocument)) = doc
	return nil
}

func (f *fakeDocumentClient) UpsertDocument(_ context.Context, _ string, doc any) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	counter := doc.(models.CounterDocument)
	f.docs[counter.ID] = counter
	f.writes++
	return nil
}

func (f *fakeDocumentClient) QueryDocuments(_ context.Context, query string, _ []database.QueryParameter, out any) error {
	if f.queryErr != nil {
		return f.queryErr
	}
	switch dest := out.(type) {
	case *[]*int64:
		// Aggregation query: sum the daily counters, sentinel excluded.
		if !strings.Contains(query, "SUM") {
			return errors.New("fake: expected an aggregation query")
		}
		if f.partialSums != nil {
			*dest = f.partialSums
			return nil
		}
		var sum int64
		var found bool
		for id, doc := range f.docs {
			if id == models.TotalCounterID {
				continue
			}
			sum += doc.Count
			found = true
		}
		if found {
			*dest = []*int64{&sum}
		}
		return nil
	case *[]models.CounterDocument:
		for _, doc := range f.docs {
			*dest = append(*dest, doc)
		}
		return nil
	default:
		return errors.New("fake: unsupported query destination")
	}
}
