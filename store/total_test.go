package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitcounter/api/config"
	"visitcounter/api/models"
)

func TestNewTotalStrategy(t *testing.T) {
	fake := newFakeDocumentClient()
	counters := NewCounterStore(fake)

	for _, name := range []string{config.StrategyCached, config.StrategyQuery, config.StrategyScan} {
		strategy, err := NewTotalStrategy(name, counters, fake)
		require.NoError(t, err, name)
		require.NotNil(t, strategy, name)
	}

	_, err := NewTotalStrategy("majority-vote", counters, fake)
	assert.Error(t, err)
}

func TestStrategiesAgreeAfterDailyWrite(t *testing.T) {
	// State as it stands right after a daily increment has been written:
	// dailies sum to 8, the cached sentinel still holds the pre-visit 7.
	// All three strategies must then report 8 for this visit.
	seedState := func() *fakeDocumentClient {
		return newFakeDocumentClient().seed(map[string]int64{
			"2024-01-01":          5,
			"2024-01-02":          3,
			models.TotalCounterID: 7,
		})
	}

	fakeCached := seedState()
	cached, err := NewTotalStrategy(config.StrategyCached, NewCounterStore(fakeCached), fakeCached)
	require.NoError(t, err)

	fakeQuery := seedState()
	query, err := NewTotalStrategy(config.StrategyQuery, NewCounterStore(fakeQuery), fakeQuery)
	require.NoError(t, err)

	fakeScan := seedState()
	scan, err := NewTotalStrategy(config.StrategyScan, NewCounterStore(fakeScan), fakeScan)
	require.NoError(t, err)

	ctx := context.Background()
	for name, strategy := range map[string]TotalStrategy{"cached": cached, "query": query, "scan": scan} {
		total, err := strategy.ComputeTotal(ctx)
		require.NoError(t, err, name)
		assert.Equal(t, int64(8), total, name)
	}
}

func TestCachedTotalPersistsSentinel(t *testing.T) {
	fake := newFakeDocumentClient().seed(map[string]int64{models.TotalCounterID: 7})
	cached := &CachedTotal{counters: NewCounterStore(fake)}

	total, err := cached.ComputeTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)
	assert.Equal(t, int64(8), fake.docs[models.TotalCounterID].Count)
}

func TestCachedTotalFirstVisit(t *testing.T) {
	fake := newFakeDocumentClient()
	cached := &CachedTotal{counters: NewCounterStore(fake)}

	total, err := cached.ComputeTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestCachedTotalReadFailurePropagates(t *testing.T) {
	// Degrading a failed sentinel read to zero would rewrite the all-time
	// total to 1; the cached strategy must fail instead and leave the
	// stored sentinel untouched.
	fake := newFakeDocumentClient().seed(map[string]int64{models.TotalCounterID: 7})
	fake.readErr = errors.New("connection reset by peer")
	cached := &CachedTotal{counters: NewCounterStore(fake)}

	_, err := cached.ComputeTotal(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(7), fake.docs[models.TotalCounterID].Count)
}

func TestCachedTotalWriteFailure(t *testing.T) {
	fake := newFakeDocumentClient()
	fake.writeErr = errors.New("store unavailable")
	cached := &CachedTotal{counters: NewCounterStore(fake)}

	_, err := cached.ComputeTotal(context.Background())
	require.Error(t, err)
}

func TestQueryTotalEmptyStore(t *testing.T) {
	query := &QueryTotal{client: newFakeDocumentClient()}

	total, err := query.ComputeTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestQueryTotalExcludesSentinel(t *testing.T) {
	fake := newFakeDocumentClient().seed(map[string]int64{
		"2024-01-01":          5,
		models.TotalCounterID: 5,
	})
	query := &QueryTotal{client: fake}

	total, err := query.ComputeTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), total, "the cached sentinel must not be double counted")
}

func TestQueryTotalSumsPartialAggregates(t *testing.T) {
	// A paged cross-partition SUM yields one partial aggregate per page;
	// the strategy must add them all, not take the first.
	five, three := int64(5), int64(3)
	fake := newFakeDocumentClient()
	fake.partialSums = []*int64{&five, &three}
	query := &QueryTotal{client: fake}

	total, err := query.ComputeTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)
}

func TestQueryTotalPropagatesFailure(t *testing.T) {
	fake := newFakeDocumentClient()
	fake.queryErr = errors.New("query surface unavailable")
	query := &QueryTotal{client: fake}

	_, err := query.ComputeTotal(context.Background())
	require.Error(t, err)
}

func TestScanTotalEmptyStore(t *testing.T) {
	scan := &ScanTotal{client: newFakeDocumentClient()}

	total, err := scan.ComputeTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestScanTotalExcludesSentinel(t *testing.T) {
	fake := newFakeDocumentClient().seed(map[string]int64{
		"2024-01-01":          5,
		"2024-01-02":          3,
		models.TotalCounterID: 8,
	})
	scan := &ScanTotal{client: fake}

	total, err := scan.ComputeTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)
}
