package sheets

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientreport/internal/shared/testutil"
)

type sleepRecorder struct {
	delays []time.Duration
	err    error
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return s.err
}

func TestFetchSucceedsFirstAttempt(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	rec := &sleepRecorder{}
	table := &MemoryTable{TableName: "PRODUCTS", Values: testutil.ListingsGrid()}

	f := NewFetcher(5, 2*time.Second, logger, WithSleep(rec.sleep))
	res := f.FetchDetailed(context.Background(), table)

	assert.False(t, res.Exhausted)
	assert.NoError(t, res.LastErr)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, testutil.ListingsGrid(), [][]string(res.Grid))
	assert.Empty(t, rec.delays)
	assert.Equal(t, 0, logs.CountMessage("fetch attempt failed"))
}

func TestFetchRetriesWithDoublingDelay(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	rec := &sleepRecorder{}
	table := &MemoryTable{
		TableName: "ORDERS",
		Values:    testutil.OrdersGrid(),
		Err:       errors.New("quota exceeded"),
		Failures:  2,
	}

	f := NewFetcher(5, 2*time.Second, logger, WithSleep(rec.sleep))
	res := f.FetchDetailed(context.Background(), table)

	require.False(t, res.Exhausted)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, table.Reads())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.delays)
	assert.Equal(t, 2, logs.CountMessage("fetch attempt failed"))
	testutil.AssertLogAttr(t, logs, "table", "ORDERS")
	testutil.AssertNoErrors(t, logs)
}

func TestFetchExhaustedReturnsEmptyGrid(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	rec := &sleepRecorder{}
	boom := errors.New("backend unavailable")
	table := &MemoryTable{TableName: "HOURSWORKED", Err: boom, Failures: -1}

	f := NewFetcher(3, time.Second, logger, WithSleep(rec.sleep))

	grid := f.Fetch(context.Background(), table)
	assert.NotNil(t, grid)
	assert.Len(t, grid, 0)

	// Sleeps follow every failure, the last one included.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, rec.delays)
	assert.Equal(t, 3, table.Reads())
	assert.Equal(t, 3, logs.CountMessage("fetch attempt failed"))
	testutil.AssertLogContains(t, logs, slog.LevelError, "fetch exhausted")

	res := NewFetcher(2, time.Millisecond, logger, WithSleep(rec.sleep)).FetchDetailed(context.Background(), table)
	assert.True(t, res.Exhausted)
	assert.Equal(t, 2, res.Attempts)
	assert.ErrorIs(t, res.LastErr, boom)
}

func TestFetchStopsOnCancelledBackoff(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	rec := &sleepRecorder{err: context.Canceled}
	table := &MemoryTable{TableName: "PRODUCTS", Err: errors.New("timeout"), Failures: -1}

	res := NewFetcher(5, time.Second, logger, WithSleep(rec.sleep)).FetchDetailed(context.Background(), table)

	assert.True(t, res.Exhausted)
	assert.Equal(t, 1, res.Attempts)
	assert.ErrorIs(t, res.LastErr, context.Canceled)
	assert.Len(t, rec.delays, 1)
}

func TestFetchDefaults(t *testing.T) {
	f := NewFetcher(0, -time.Second, nil)
	assert.Equal(t, DefaultRetries, f.Retries())
	assert.Equal(t, time.Duration(0), f.delay)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
	assert.NoError(t, sleepContext(context.Background(), 0))
}

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(60)
	require.NotNil(t, l)
	assert.InDelta(t, 1.0, float64(l.Limit()), 1e-9)

	f := NewFetcher(1, 0, nil, WithLimiter(l))
	assert.Same(t, l, f.limiter)

	assert.Nil(t, NewLimiter(0))
	assert.Nil(t, NewLimiter(-5))
	assert.Nil(t, NewFetcher(1, 0, nil, WithLimiter(NewLimiter(0))).limiter)
}
