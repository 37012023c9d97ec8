package prefetch_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/engine/prefetch"
)

func pageValue(id int64) domain.Value {
	return domain.Object(map[string]domain.Value{"page": domain.Int(id)})
}

func TestEvaluatePrefetch_TriggersNearEnd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := prefetch.New(5)
		calls := 0

		// 20 items, viewing index 15: 4 remaining, within the threshold.
		c.EvaluatePrefetch(context.Background(), 15, 20, true, func(context.Context) (domain.Value, error) {
			calls++
			return pageValue(2), nil
		})

		synctest.Wait()

		assert.Equal(t, 1, calls)
		v, ok := c.ConsumePrefetched()
		require.True(t, ok)
		page, _ := v.Field("page")
		id, _ := page.AsInt()
		assert.Equal(t, int64(2), id)

		// The slot is single-use.
		_, ok = c.ConsumePrefetched()
		assert.False(t, ok)
	})
}

func TestEvaluatePrefetch_NotNearEnd(t *testing.T) {
	c := prefetch.New(5)

	// 20 items, viewing index 5: 14 remaining, well above the threshold.
	c.EvaluatePrefetch(context.Background(), 5, 20, true, func(context.Context) (domain.Value, error) {
		t.Error("load must not be called")
		return domain.Value{}, nil
	})

	assert.False(t, c.InProgress())
}

func TestEvaluatePrefetch_NoMorePages(t *testing.T) {
	c := prefetch.New(5)

	c.EvaluatePrefetch(context.Background(), 19, 20, false, func(context.Context) (domain.Value, error) {
		t.Error("load must not be called")
		return domain.Value{}, nil
	})

	assert.False(t, c.InProgress())
}

func TestEvaluatePrefetch_SingleFlight(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := prefetch.New(5)
		release := make(chan struct{})
		calls := 0

		c.EvaluatePrefetch(context.Background(), 19, 20, true, func(context.Context) (domain.Value, error) {
			calls++
			<-release
			return pageValue(1), nil
		})

		require.True(t, c.InProgress())

		// While one prefetch is in flight, further evaluations are no-ops.
		c.EvaluatePrefetch(context.Background(), 19, 20, true, func(context.Context) (domain.Value, error) {
			calls++
			return pageValue(99), nil
		})

		close(release)
		synctest.Wait()

		assert.Equal(t, 1, calls)
		assert.False(t, c.InProgress())
	})
}

func TestEvaluatePrefetch_BufferedBlocksRetrigger(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := prefetch.New(5)

		c.EvaluatePrefetch(context.Background(), 19, 20, true, func(context.Context) (domain.Value, error) {
			return pageValue(1), nil
		})
		synctest.Wait()

		// An unconsumed result blocks a new prefetch.
		c.EvaluatePrefetch(context.Background(), 19, 20, true, func(context.Context) (domain.Value, error) {
			t.Error("load must not be called while a result is buffered")
			return domain.Value{}, nil
		})
		synctest.Wait()

		_, ok := c.ConsumePrefetched()
		require.True(t, ok)

		// Consuming frees the slot for the next trigger.
		c.EvaluatePrefetch(context.Background(), 19, 20, true, func(context.Context) (domain.Value, error) {
			return pageValue(2), nil
		})
		synctest.Wait()

		_, ok = c.ConsumePrefetched()
		assert.True(t, ok)
	})
}

func TestCancelPrefetch_DiscardsLateResult(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := prefetch.New(5)
		release := make(chan struct{})

		c.EvaluatePrefetch(context.Background(), 19, 20, true, func(ctx context.Context) (domain.Value, error) {
			<-release
			return pageValue(1), nil
		})
		require.True(t, c.InProgress())

		c.CancelPrefetch()
		assert.False(t, c.InProgress())

		// The load completes after cancellation; its result must not surface.
		close(release)
		synctest.Wait()

		_, ok := c.ConsumePrefetched()
		assert.False(t, ok)
	})
}

func TestCancelPrefetch_CancelsLoadContext(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := prefetch.New(5)
		observed := make(chan error, 1)

		c.EvaluatePrefetch(context.Background(), 19, 20, true, func(ctx context.Context) (domain.Value, error) {
			<-ctx.Done()
			observed <- ctx.Err()
			return domain.Value{}, ctx.Err()
		})

		c.CancelPrefetch()
		synctest.Wait()

		assert.ErrorIs(t, <-observed, context.Canceled)
	})
}

func TestEvaluatePrefetch_LoadErrorLeavesSlotEmpty(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := prefetch.New(5)

		c.EvaluatePrefetch(context.Background(), 19, 20, true, func(context.Context) (domain.Value, error) {
			return domain.Value{}, errors.New("boom")
		})
		synctest.Wait()

		_, ok := c.ConsumePrefetched()
		assert.False(t, ok)
		assert.False(t, c.InProgress())

		// A failed prefetch does not poison the coordinator.
		c.EvaluatePrefetch(context.Background(), 19, 20, true, func(context.Context) (domain.Value, error) {
			return pageValue(1), nil
		})
		synctest.Wait()

		_, ok = c.ConsumePrefetched()
		assert.True(t, ok)
	})
}

func TestCancelPrefetch_IdleIsSafe(t *testing.T) {
	c := prefetch.New(5)
	c.CancelPrefetch()
	assert.False(t, c.InProgress())
}
